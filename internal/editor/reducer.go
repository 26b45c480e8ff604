package editor

import (
	"slices"
	"time"

	"resumeEditor/internal/resume"
)

// DocumentState 是简历切片：当前文档与保存状态。
type DocumentState struct {
	Resume *resume.Resume
	// Dirty 表示内存状态与最近一次成功保存的状态不一致。
	Dirty bool
	// Revision 随每次改变文档的动作递增，用于判断保存期间是否又有编辑。
	Revision  uint64
	Saving    bool
	LastSaved time.Time
	Err       string
}

// StyleState 是独立于简历的样式切片，供界面即时响应。
type StyleState struct {
	Current resume.StyleConfig
	Theme   string
}

// ReduceDocument applies a to d. It never performs I/O and never panics on
// well-typed input; malformed payloads (unknown ids, out-of-range indices,
// duplicate or empty section ids) are no-ops and report changed == false.
func ReduceDocument(d DocumentState, a Action) (DocumentState, bool) {
	if load, ok := a.(SetResume); ok {
		return DocumentState{
			Resume:   load.Resume.Clone(),
			Revision: d.Revision + 1,
		}, true
	}
	if d.Resume == nil {
		return d, false
	}

	next, changed := reduceResume(d.Resume, a)
	if !changed {
		return d, false
	}
	d.Resume = next
	d.Dirty = true
	d.Revision++
	return d, true
}

func reduceResume(r *resume.Resume, a Action) (*resume.Resume, bool) {
	switch a := a.(type) {
	case UpdateTitle:
		out := r.Clone()
		out.Title = a.Title
		return out, true

	case UpdateStyleConfig:
		out := r.Clone()
		out.StyleConfig = a.Patch.Apply(out.StyleConfig)
		return out, true

	case UpdateTemplate:
		if a.TemplateID == "" {
			return r, false
		}
		out := r.Clone()
		out.TemplateID = a.TemplateID
		return out, true

	case SetPublic:
		out := r.Clone()
		out.IsPublic = a.IsPublic
		return out, true

	case AddSection:
		if a.Section.ID == "" || indexOf(r.Sections, a.Section.ID) >= 0 {
			return r, false
		}
		out := r.Clone()
		s := a.Section.Clone()
		s.ResumeID = out.ID
		at := len(out.Sections)
		if a.Index != nil {
			at = min(max(*a.Index, 0), len(out.Sections))
		}
		out.Sections = slices.Insert(out.Sections, at, s)
		resume.Renumber(out.Sections)
		return out, true

	case UpdateSection:
		i := indexOf(r.Sections, a.ID)
		if i < 0 {
			return r, false
		}
		out := r.Clone()
		out.Sections[i] = a.Patch.Apply(out.Sections[i])
		return out, true

	case DeleteSection:
		i := indexOf(r.Sections, a.ID)
		if i < 0 {
			return r, false
		}
		out := r.Clone()
		out.Sections = slices.Delete(out.Sections, i, i+1)
		resume.Renumber(out.Sections)
		return out, true

	case ReorderSections:
		n := len(r.Sections)
		if a.From < 0 || a.From >= n || a.To < 0 || a.To >= n || a.From == a.To {
			return r, false
		}
		out := r.Clone()
		moved := out.Sections[a.From]
		out.Sections = slices.Delete(out.Sections, a.From, a.From+1)
		out.Sections = slices.Insert(out.Sections, a.To, moved)
		resume.Renumber(out.Sections)
		return out, true

	case ToggleSectionVisibility:
		i := indexOf(r.Sections, a.ID)
		if i < 0 {
			return r, false
		}
		out := r.Clone()
		out.Sections[i].Visible = !out.Sections[i].Visible
		return out, true

	case SetSections:
		// 与保存路径同一套校验，否则非法 id 会让之后每次保存都失败
		if resume.ValidateSections(a.Sections) != nil {
			return r, false
		}
		out := r.Clone()
		out.Sections = resume.CloneSections(a.Sections)
		if out.Sections == nil {
			out.Sections = []resume.Section{}
		}
		for i := range out.Sections {
			out.Sections[i].ResumeID = out.ID
		}
		resume.Renumber(out.Sections)
		return out, true
	}
	return r, false
}

// ReduceStyle applies a to the independent style slice.
func ReduceStyle(s StyleState, a Action) (StyleState, bool) {
	switch a := a.(type) {
	case SetResume:
		if a.Resume == nil {
			return StyleState{Current: resume.DefaultStyle()}, true
		}
		return StyleState{Current: a.Resume.StyleConfig.Clone()}, true
	case UpdateStyleConfig:
		s.Current = a.Patch.Apply(s.Current)
		return s, true
	case SetStyle:
		return StyleState{Current: a.Style.Clone()}, true
	case UpdateStyle:
		s.Current = a.Patch.Apply(s.Current)
		return s, true
	case ApplyTheme:
		style, err := resume.ThemePreset(a.Name)
		if err != nil {
			return s, false
		}
		return StyleState{Current: style, Theme: a.Name}, true
	case ResetStyle:
		return StyleState{Current: resume.DefaultStyle()}, true
	}
	return s, false
}

// syncStyle 把样式切片原样写入当前简历；没有加载简历时不做任何事。
func syncStyle(d DocumentState, s StyleState) DocumentState {
	if d.Resume == nil {
		return d
	}
	out := d.Resume.Clone()
	out.StyleConfig = s.Current.Clone()
	d.Resume = out
	d.Dirty = true
	d.Revision++
	return d
}

func indexOf(sections []resume.Section, id string) int {
	return slices.IndexFunc(sections, func(s resume.Section) bool { return s.ID == id })
}
