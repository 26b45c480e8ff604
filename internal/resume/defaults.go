package resume

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

const (
	DefaultTitle      = "Untitled Resume"
	DefaultTemplateID = "modern"
)

// DefaultStyle 返回新简历使用的样式。
func DefaultStyle() StyleConfig {
	return StyleConfig{
		PrimaryColor:    "#2563eb",
		SecondaryColor:  "#64748b",
		AccentColor:     "#0ea5e9",
		TextColor:       "#1f2937",
		BackgroundColor: "#ffffff",
		FontFamily:      "Inter",
		FontSize:        11,
		LineHeight:      1.5,
		Spacing:         SpacingNormal,
	}
}

var themePresets = map[string]StylePatch{
	"classic": {
		PrimaryColor:    ptr("#111827"),
		SecondaryColor:  ptr("#4b5563"),
		AccentColor:     ptr("#9ca3af"),
		TextColor:       ptr("#111827"),
		BackgroundColor: ptr("#ffffff"),
		FontFamily:      ptr("Georgia"),
	},
	"ocean": {
		PrimaryColor:   ptr("#0f766e"),
		SecondaryColor: ptr("#115e59"),
		AccentColor:    ptr("#14b8a6"),
		TextColor:      ptr("#134e4a"),
	},
	"sunset": {
		PrimaryColor:   ptr("#c2410c"),
		SecondaryColor: ptr("#9a3412"),
		AccentColor:    ptr("#fb923c"),
		TextColor:      ptr("#431407"),
	},
	"compact": {
		FontSize:   ptr(10.0),
		LineHeight: ptr(1.3),
		Spacing:    ptr(SpacingCompact),
	},
}

// ThemePreset 返回命名主题在默认样式之上叠加后的完整样式。
func ThemePreset(name string) (StyleConfig, error) {
	patch, ok := themePresets[name]
	if !ok {
		return StyleConfig{}, fmt.Errorf("unknown theme preset %q", name)
	}
	return patch.Apply(DefaultStyle()), nil
}

// ThemeNames lists the available presets in lexical order.
func ThemeNames() []string {
	names := make([]string, 0, len(themePresets))
	for name := range themePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultSectionTitles = map[SectionType]string{
	SectionPersonalInfo:   "Personal Information",
	SectionSummary:        "Summary",
	SectionExperience:     "Experience",
	SectionEducation:      "Education",
	SectionSkills:         "Skills",
	SectionProjects:       "Projects",
	SectionCertifications: "Certifications",
	SectionLanguages:      "Languages",
	SectionInterests:      "Interests",
	SectionCustom:         "Custom Section",
}

// DefaultSectionTitle returns the display title for a section type.
func DefaultSectionTitle(t SectionType) string {
	if title, ok := defaultSectionTitles[t]; ok {
		return title
	}
	return string(t)
}

// NewSection 创建一个带空负载的可见 Section，Order 由调用方在插入后重排。
func NewSection(t SectionType) (Section, error) {
	data, err := EmptyData(t)
	if err != nil {
		return Section{}, err
	}
	return Section{
		ID:      uuid.NewString(),
		Type:    t,
		Title:   DefaultSectionTitle(t),
		Data:    data,
		Visible: true,
	}, nil
}

// NewResume 返回一份只含个人信息与简介的新简历。
func NewResume(userID, title string) *Resume {
	if title == "" {
		title = DefaultTitle
	}
	id := uuid.NewString()
	sections := []Section{
		{
			ID:       uuid.NewString(),
			ResumeID: id,
			Type:     SectionPersonalInfo,
			Title:    DefaultSectionTitle(SectionPersonalInfo),
			Data:     PersonalInfo{FullName: "Your Name", JobTitle: "Your Title"},
			Visible:  true,
		},
		{
			ID:       uuid.NewString(),
			ResumeID: id,
			Type:     SectionSummary,
			Title:    DefaultSectionTitle(SectionSummary),
			Data:     Summary{},
			Visible:  true,
		},
	}
	Renumber(sections)
	return &Resume{
		ID:          id,
		UserID:      userID,
		Title:       title,
		TemplateID:  DefaultTemplateID,
		StyleConfig: DefaultStyle(),
		Sections:    sections,
	}
}

func ptr[T any](v T) *T { return &v }
