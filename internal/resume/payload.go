package resume

import (
	"encoding/json"
	"fmt"
	"slices"
)

// SectionData 是 Section 的类型相关负载，按 SectionType 区分。
type SectionData interface {
	SectionType() SectionType
	clone() SectionData
}

// DateRange 用于经历、教育等条目的起止时间，End 为空且 Current 为 true 表示至今。
type DateRange struct {
	Start   string `json:"startDate,omitempty"`
	End     string `json:"endDate,omitempty"`
	Current bool   `json:"current,omitempty"`
}

type PersonalInfo struct {
	FullName string   `json:"fullName"`
	JobTitle string   `json:"jobTitle,omitempty"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Location string   `json:"location,omitempty"`
	Website  string   `json:"website,omitempty"`
	Links    []string `json:"links,omitempty"`
	PhotoURL string   `json:"photoUrl,omitempty"`
}

type Summary struct {
	Content string `json:"content"`
}

type ExperienceItem struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	Location    string    `json:"location,omitempty"`
	Dates       DateRange `json:"dates"`
	Description string    `json:"description,omitempty"`
	Highlights  []string  `json:"highlights,omitempty"`
}

type Experience struct {
	Items []ExperienceItem `json:"items"`
}

type EducationItem struct {
	ID          string    `json:"id"`
	Institution string    `json:"institution"`
	Degree      string    `json:"degree"`
	Field       string    `json:"field,omitempty"`
	Dates       DateRange `json:"dates"`
	GPA         string    `json:"gpa,omitempty"`
	Highlights  []string  `json:"highlights,omitempty"`
}

type Education struct {
	Items []EducationItem `json:"items"`
}

type SkillCategory struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// Skills 支持两种形态：分组（Categories）或扁平列表（Items）。
type Skills struct {
	Categories []SkillCategory `json:"categories,omitempty"`
	Items      []string        `json:"items,omitempty"`
}

type ProjectItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role,omitempty"`
	URL          string    `json:"url,omitempty"`
	Dates        DateRange `json:"dates"`
	Description  string    `json:"description,omitempty"`
	Technologies []string  `json:"technologies,omitempty"`
	Highlights   []string  `json:"highlights,omitempty"`
}

type Projects struct {
	Items []ProjectItem `json:"items"`
}

type CertificationItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
	URL    string `json:"url,omitempty"`
}

type Certifications struct {
	Items []CertificationItem `json:"items"`
}

type LanguageItem struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency,omitempty"`
}

type Languages struct {
	Items []LanguageItem `json:"items"`
}

type Interests struct {
	Items []string `json:"items"`
}

type CustomItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

type Custom struct {
	Content string       `json:"content,omitempty"`
	Items   []CustomItem `json:"items,omitempty"`
}

func (PersonalInfo) SectionType() SectionType   { return SectionPersonalInfo }
func (Summary) SectionType() SectionType        { return SectionSummary }
func (Experience) SectionType() SectionType     { return SectionExperience }
func (Education) SectionType() SectionType      { return SectionEducation }
func (Skills) SectionType() SectionType         { return SectionSkills }
func (Projects) SectionType() SectionType       { return SectionProjects }
func (Certifications) SectionType() SectionType { return SectionCertifications }
func (Languages) SectionType() SectionType      { return SectionLanguages }
func (Interests) SectionType() SectionType      { return SectionInterests }
func (Custom) SectionType() SectionType         { return SectionCustom }

func (p PersonalInfo) clone() SectionData {
	p.Links = slices.Clone(p.Links)
	return p
}

func (s Summary) clone() SectionData { return s }

func (e Experience) clone() SectionData {
	items := slices.Clone(e.Items)
	for i := range items {
		items[i].Highlights = slices.Clone(items[i].Highlights)
	}
	return Experience{Items: items}
}

func (e Education) clone() SectionData {
	items := slices.Clone(e.Items)
	for i := range items {
		items[i].Highlights = slices.Clone(items[i].Highlights)
	}
	return Education{Items: items}
}

func (s Skills) clone() SectionData {
	cats := slices.Clone(s.Categories)
	for i := range cats {
		cats[i].Skills = slices.Clone(cats[i].Skills)
	}
	return Skills{Categories: cats, Items: slices.Clone(s.Items)}
}

func (p Projects) clone() SectionData {
	items := slices.Clone(p.Items)
	for i := range items {
		items[i].Technologies = slices.Clone(items[i].Technologies)
		items[i].Highlights = slices.Clone(items[i].Highlights)
	}
	return Projects{Items: items}
}

func (c Certifications) clone() SectionData { return Certifications{Items: slices.Clone(c.Items)} }
func (l Languages) clone() SectionData      { return Languages{Items: slices.Clone(l.Items)} }
func (i Interests) clone() SectionData      { return Interests{Items: slices.Clone(i.Items)} }
func (c Custom) clone() SectionData         { return Custom{Content: c.Content, Items: slices.Clone(c.Items)} }

// EmptyData 返回指定类型的空负载。
func EmptyData(t SectionType) (SectionData, error) {
	switch t {
	case SectionPersonalInfo:
		return PersonalInfo{}, nil
	case SectionSummary:
		return Summary{}, nil
	case SectionExperience:
		return Experience{Items: []ExperienceItem{}}, nil
	case SectionEducation:
		return Education{Items: []EducationItem{}}, nil
	case SectionSkills:
		return Skills{}, nil
	case SectionProjects:
		return Projects{Items: []ProjectItem{}}, nil
	case SectionCertifications:
		return Certifications{Items: []CertificationItem{}}, nil
	case SectionLanguages:
		return Languages{Items: []LanguageItem{}}, nil
	case SectionInterests:
		return Interests{Items: []string{}}, nil
	case SectionCustom:
		return Custom{}, nil
	}
	return nil, fmt.Errorf("unknown section type %q", t)
}

// DecodeData 按类型解码负载 JSON；空输入得到空负载。
func DecodeData(t SectionType, raw []byte) (SectionData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return EmptyData(t)
	}

	var (
		data SectionData
		err  error
	)
	switch t {
	case SectionPersonalInfo:
		data, err = decodeAs[PersonalInfo](raw)
	case SectionSummary:
		data, err = decodeAs[Summary](raw)
	case SectionExperience:
		data, err = decodeAs[Experience](raw)
	case SectionEducation:
		data, err = decodeAs[Education](raw)
	case SectionSkills:
		data, err = decodeAs[Skills](raw)
	case SectionProjects:
		data, err = decodeAs[Projects](raw)
	case SectionCertifications:
		data, err = decodeAs[Certifications](raw)
	case SectionLanguages:
		data, err = decodeAs[Languages](raw)
	case SectionInterests:
		data, err = decodeAs[Interests](raw)
	case SectionCustom:
		data, err = decodeAs[Custom](raw)
	default:
		return nil, fmt.Errorf("unknown section type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return data, nil
}

func decodeAs[T SectionData](raw []byte) (SectionData, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

type sectionJSON struct {
	ID       string          `json:"id"`
	ResumeID string          `json:"resumeId"`
	Type     SectionType     `json:"type"`
	Title    string          `json:"title"`
	Data     json.RawMessage `json:"data"`
	Order    int             `json:"order"`
	Visible  bool            `json:"isVisible"`
}

// UnmarshalJSON 根据 type 字段选择负载的具体类型。
func (s *Section) UnmarshalJSON(b []byte) error {
	var raw sectionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if _, err := ParseSectionType(string(raw.Type)); err != nil {
		return err
	}
	data, err := DecodeData(raw.Type, raw.Data)
	if err != nil {
		return err
	}
	*s = Section{
		ID:       raw.ID,
		ResumeID: raw.ResumeID,
		Type:     raw.Type,
		Title:    raw.Title,
		Data:     data,
		Order:    raw.Order,
		Visible:  raw.Visible,
	}
	return nil
}

// EncodeData 序列化负载；nil 负载写为 {}。
func EncodeData(d SectionData) ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}
