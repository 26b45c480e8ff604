package database

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"resumeEditor/internal/resume"
)

func resumeToDomain(m Resume) (*resume.Resume, error) {
	style := resume.DefaultStyle()
	if len(m.StyleConfig) > 0 {
		if err := json.Unmarshal(m.StyleConfig, &style); err != nil {
			return nil, fmt.Errorf("decode style config of %s: %w", m.ID, err)
		}
	}
	sections := make([]resume.Section, 0, len(m.Sections))
	for _, s := range m.Sections {
		sec, err := sectionToDomain(s)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return &resume.Resume{
		ID:           m.ID,
		UserID:       m.UserID,
		Title:        m.Title,
		TemplateID:   m.TemplateID,
		StyleConfig:  style,
		IsPublic:     m.IsPublic,
		Sections:     sections,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		LastEditedAt: m.LastEditedAt,
	}, nil
}

func sectionToDomain(m Section) (resume.Section, error) {
	t, err := resume.ParseSectionType(m.Type)
	if err != nil {
		return resume.Section{}, err
	}
	data, err := resume.DecodeData(t, m.Data)
	if err != nil {
		return resume.Section{}, fmt.Errorf("section %s: %w", m.ID, err)
	}
	return resume.Section{
		ID:       m.ID,
		ResumeID: m.ResumeID,
		Type:     t,
		Title:    m.Title,
		Data:     data,
		Order:    m.Order,
		Visible:  m.Visible,
	}, nil
}

func encodeStyle(s resume.StyleConfig) (datatypes.JSON, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode style config: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// sectionRows 按切片下标重写 Order，保证落库顺序稠密。
func sectionRows(resumeID string, sections []resume.Section) ([]Section, error) {
	rows := make([]Section, 0, len(sections))
	for i, s := range sections {
		raw, err := resume.EncodeData(s.Data)
		if err != nil {
			return nil, fmt.Errorf("encode section %s: %w", s.ID, err)
		}
		rows = append(rows, Section{
			ResumeID: resumeID,
			ID:       s.ID,
			Type:     string(s.Type),
			Title:    s.Title,
			Data:     datatypes.JSON(raw),
			Order:    i,
			Visible:  s.Visible,
		})
	}
	return rows, nil
}

func shareToDomain(m ShareLink) resume.ShareLink {
	return resume.ShareLink{
		ID:           m.ID,
		ResumeID:     m.ResumeID,
		Slug:         m.Slug,
		IsActive:     m.IsActive,
		ExpiresAt:    m.ExpiresAt,
		PasswordHash: m.PasswordHash,
		HasPassword:  m.PasswordHash != "",
		ViewCount:    m.ViewCount,
		LastViewedAt: m.LastViewedAt,
		CreatedAt:    m.CreatedAt,
	}
}
