package resume

import (
	"fmt"
	"time"
)

// Resume 是编辑器中的顶层聚合：元信息 + 有序 Section + 样式 + 模板。
type Resume struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	Title        string      `json:"title"`
	TemplateID   string      `json:"templateId"`
	StyleConfig  StyleConfig `json:"styleConfig"`
	IsPublic     bool        `json:"isPublic"`
	Sections     []Section   `json:"sections"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	LastEditedAt time.Time   `json:"lastEditedAt"`
}

// SectionType 枚举 Section 的内容类型。
type SectionType string

const (
	SectionPersonalInfo   SectionType = "personal-info"
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionProjects       SectionType = "projects"
	SectionCertifications SectionType = "certifications"
	SectionLanguages      SectionType = "languages"
	SectionInterests      SectionType = "interests"
	SectionCustom         SectionType = "custom"
)

// ParseSectionType converts a raw string to a SectionType.
func ParseSectionType(s string) (SectionType, error) {
	st := SectionType(s)
	switch st {
	case SectionPersonalInfo, SectionSummary, SectionExperience, SectionEducation, SectionSkills,
		SectionProjects, SectionCertifications, SectionLanguages, SectionInterests, SectionCustom:
		return st, nil
	}
	return "", fmt.Errorf("unknown section type %q", s)
}

// Section 表示简历中的一个内容块。Order 必须等于其在切片中的下标。
type Section struct {
	ID       string      `json:"id"`
	ResumeID string      `json:"resumeId"`
	Type     SectionType `json:"type"`
	Title    string      `json:"title"`
	Data     SectionData `json:"data"`
	Order    int         `json:"order"`
	Visible  bool        `json:"isVisible"`
}

// Spacing 是命名的间距档位。
type Spacing string

const (
	SpacingCompact Spacing = "compact"
	SpacingNormal  Spacing = "normal"
	SpacingRelaxed Spacing = "relaxed"
)

// StyleConfig 描述简历的视觉配置。
type StyleConfig struct {
	PrimaryColor    string     `json:"primaryColor"`
	SecondaryColor  string     `json:"secondaryColor"`
	AccentColor     string     `json:"accentColor"`
	TextColor       string     `json:"textColor"`
	BackgroundColor string     `json:"backgroundColor"`
	FontFamily      string     `json:"fontFamily"`
	FontSize        float64    `json:"fontSize"`
	LineHeight      float64    `json:"lineHeight"`
	Spacing         Spacing    `json:"spacing"`
	BorderStyle     *string    `json:"borderStyle,omitempty"`
	BorderColor     *string    `json:"borderColor,omitempty"`
	FontSizes       *FontSizes `json:"fontSizes,omitempty"`
}

// FontSizes 是按元素覆盖的字号，0 表示沿用基础字号。
type FontSizes struct {
	Name         float64 `json:"name,omitempty"`
	JobTitle     float64 `json:"jobTitle,omitempty"`
	SectionTitle float64 `json:"sectionTitle,omitempty"`
	Body         float64 `json:"body,omitempty"`
	Small        float64 `json:"small,omitempty"`
}

// ShareLink 是简历的公开分享链接。
type ShareLink struct {
	ID           string     `json:"id"`
	ResumeID     string     `json:"resumeId"`
	Slug         string     `json:"slug"`
	IsActive     bool       `json:"isActive"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	PasswordHash string     `json:"-"`
	HasPassword  bool       `json:"hasPassword"`
	ViewCount    int64      `json:"viewCount"`
	LastViewedAt *time.Time `json:"lastViewedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	URL          string     `json:"url,omitempty"`
}

// Expired reports whether the link is past its expiration at the given instant.
func (l ShareLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}
