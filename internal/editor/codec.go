package editor

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"resumeEditor/internal/resume"
)

// ErrUnknownAction is returned by DecodeAction for unrecognised type tags.
var ErrUnknownAction = errors.New("unknown action type")

// Envelope 是动作的 JSON 形式：{"type": "...", "payload": {...}}。
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type addSectionPayload struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Title   string          `json:"title"`
	Data    json.RawMessage `json:"data"`
	Visible *bool           `json:"isVisible"`
	Index   *int            `json:"index"`
}

type updateSectionPayload struct {
	ID          string          `json:"id"`
	SectionType string          `json:"sectionType"`
	Title       *string         `json:"title"`
	Data        json.RawMessage `json:"data"`
	Visible     *bool           `json:"isVisible"`
}

// DecodeAction 把 JSON 动作解码为 Action。AddSection 缺少 id 时生成新的 id。
func DecodeAction(b []byte) (Action, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode action envelope: %w", err)
	}

	switch env.Type {
	case "setResume":
		var r resume.Resume
		if err := decodePayload(env, &r); err != nil {
			return nil, err
		}
		return SetResume{Resume: &r}, nil
	case "updateTitle":
		return decodeAs[UpdateTitle](env)
	case "updateStyleConfig":
		var p resume.StylePatch
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return UpdateStyleConfig{Patch: p}, nil
	case "updateTemplate":
		return decodeAs[UpdateTemplate](env)
	case "setPublic":
		return decodeAs[SetPublic](env)
	case "addSection":
		return decodeAddSection(env)
	case "updateSection":
		return decodeUpdateSection(env)
	case "deleteSection":
		return decodeAs[DeleteSection](env)
	case "reorderSections":
		return decodeAs[ReorderSections](env)
	case "toggleSectionVisibility":
		return decodeAs[ToggleSectionVisibility](env)
	case "setSections":
		var sections []resume.Section
		if err := decodePayload(env, &sections); err != nil {
			return nil, err
		}
		return SetSections{Sections: sections}, nil
	case "setStyle":
		var s resume.StyleConfig
		if err := decodePayload(env, &s); err != nil {
			return nil, err
		}
		return SetStyle{Style: s}, nil
	case "updateStyle":
		var p resume.StylePatch
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return UpdateStyle{Patch: p}, nil
	case "applyTheme":
		return decodeAs[ApplyTheme](env)
	case "resetStyle":
		return ResetStyle{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
}

func decodeAs[T Action](env Envelope) (Action, error) {
	var v T
	if err := decodePayload(env, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodePayload(env Envelope, v any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("action %s: missing payload", env.Type)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("action %s: decode payload: %w", env.Type, err)
	}
	return nil
}

func decodeAddSection(env Envelope) (Action, error) {
	var p addSectionPayload
	if err := decodePayload(env, &p); err != nil {
		return nil, err
	}
	t, err := resume.ParseSectionType(p.Type)
	if err != nil {
		return nil, fmt.Errorf("action %s: %w", env.Type, err)
	}
	data, err := resume.DecodeData(t, p.Data)
	if err != nil {
		return nil, fmt.Errorf("action %s: %w", env.Type, err)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Title == "" {
		p.Title = resume.DefaultSectionTitle(t)
	}
	visible := true
	if p.Visible != nil {
		visible = *p.Visible
	}
	return AddSection{
		Section: resume.Section{ID: p.ID, Type: t, Title: p.Title, Data: data, Visible: visible},
		Index:   p.Index,
	}, nil
}

func decodeUpdateSection(env Envelope) (Action, error) {
	var p updateSectionPayload
	if err := decodePayload(env, &p); err != nil {
		return nil, err
	}
	patch := resume.SectionPatch{Title: p.Title, Visible: p.Visible}
	if len(p.Data) > 0 {
		t, err := resume.ParseSectionType(p.SectionType)
		if err != nil {
			return nil, fmt.Errorf("action %s: sectionType is required with data: %w", env.Type, err)
		}
		data, err := resume.DecodeData(t, p.Data)
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", env.Type, err)
		}
		patch.Data = data
	}
	return UpdateSection{ID: p.ID, Patch: patch}, nil
}
