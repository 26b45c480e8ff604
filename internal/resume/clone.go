package resume

import "slices"

// Clone 返回 StyleConfig 的深拷贝。
func (s StyleConfig) Clone() StyleConfig {
	if s.BorderStyle != nil {
		v := *s.BorderStyle
		s.BorderStyle = &v
	}
	if s.BorderColor != nil {
		v := *s.BorderColor
		s.BorderColor = &v
	}
	if s.FontSizes != nil {
		v := *s.FontSizes
		s.FontSizes = &v
	}
	return s
}

// Clone 返回 Section 的深拷贝。
func (s Section) Clone() Section {
	if s.Data != nil {
		s.Data = s.Data.clone()
	}
	return s
}

// CloneSections deep-copies a section slice. A nil input yields nil.
func CloneSections(sections []Section) []Section {
	if sections == nil {
		return nil
	}
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = s.Clone()
	}
	return out
}

// Clone 返回 Resume 的深拷贝。
func (r *Resume) Clone() *Resume {
	if r == nil {
		return nil
	}
	out := *r
	out.StyleConfig = r.StyleConfig.Clone()
	out.Sections = CloneSections(r.Sections)
	return &out
}

// Renumber sets every section's order to its index.
func Renumber(sections []Section) {
	for i := range sections {
		sections[i].Order = i
	}
}

// VisibleSections 返回按顺序排列的可见 Section 副本。
func VisibleSections(sections []Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		if s.Visible {
			out = append(out, s.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b Section) int { return a.Order - b.Order })
	return out
}
