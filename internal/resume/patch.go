package resume

// StylePatch 是 StyleConfig 的部分更新，nil 字段保持不变。
// BorderStyle/BorderColor 传入空字符串表示清除。
type StylePatch struct {
	PrimaryColor    *string    `json:"primaryColor,omitempty"`
	SecondaryColor  *string    `json:"secondaryColor,omitempty"`
	AccentColor     *string    `json:"accentColor,omitempty"`
	TextColor       *string    `json:"textColor,omitempty"`
	BackgroundColor *string    `json:"backgroundColor,omitempty"`
	FontFamily      *string    `json:"fontFamily,omitempty"`
	FontSize        *float64   `json:"fontSize,omitempty"`
	LineHeight      *float64   `json:"lineHeight,omitempty"`
	Spacing         *Spacing   `json:"spacing,omitempty"`
	BorderStyle     *string    `json:"borderStyle,omitempty"`
	BorderColor     *string    `json:"borderColor,omitempty"`
	FontSizes       *FontSizes `json:"fontSizes,omitempty"`
}

// Apply returns a copy of s with the patch merged in.
func (p StylePatch) Apply(s StyleConfig) StyleConfig {
	out := s.Clone()
	setIf(&out.PrimaryColor, p.PrimaryColor)
	setIf(&out.SecondaryColor, p.SecondaryColor)
	setIf(&out.AccentColor, p.AccentColor)
	setIf(&out.TextColor, p.TextColor)
	setIf(&out.BackgroundColor, p.BackgroundColor)
	setIf(&out.FontFamily, p.FontFamily)
	setIf(&out.FontSize, p.FontSize)
	setIf(&out.LineHeight, p.LineHeight)
	setIf(&out.Spacing, p.Spacing)
	out.BorderStyle = optional(out.BorderStyle, p.BorderStyle)
	out.BorderColor = optional(out.BorderColor, p.BorderColor)
	if p.FontSizes != nil {
		v := *p.FontSizes
		out.FontSizes = &v
	}
	return out
}

// Empty reports whether the patch changes nothing.
func (p StylePatch) Empty() bool {
	return p == StylePatch{}
}

// SectionPatch 是 Section 的部分更新。Data 的类型必须与 Section.Type 一致，否则被忽略。
type SectionPatch struct {
	Title   *string
	Data    SectionData
	Visible *bool
}

// Apply returns a copy of s with the patch merged in.
func (p SectionPatch) Apply(s Section) Section {
	out := s.Clone()
	setIf(&out.Title, p.Title)
	setIf(&out.Visible, p.Visible)
	if p.Data != nil && p.Data.SectionType() == out.Type {
		out.Data = p.Data.clone()
	}
	return out
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func optional(cur, patch *string) *string {
	if patch == nil {
		return cur
	}
	if *patch == "" {
		return nil
	}
	v := *patch
	return &v
}
