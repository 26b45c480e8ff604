package resume

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// 持久化接口上共用的错误，服务端 store 与 HTTP 客户端都映射到这几个值。
var (
	ErrNotFound = errors.New("resume not found")
	ErrInvalid  = errors.New("invalid resume payload")
	ErrConflict = errors.New("resume conflict")
)

// FullUpdate 是整份简历的替换请求，也用于创建。
type FullUpdate struct {
	Title       string      `json:"title"`
	TemplateID  string      `json:"templateId"`
	StyleConfig StyleConfig `json:"styleConfig"`
	Sections    []Section   `json:"sections"`
	IsPublic    bool        `json:"isPublic"`
}

// FullUpdate returns the replace-wholesale payload of r.
func (r *Resume) FullUpdate() FullUpdate {
	return FullUpdate{
		Title:       r.Title,
		TemplateID:  r.TemplateID,
		StyleConfig: r.StyleConfig.Clone(),
		Sections:    CloneSections(r.Sections),
		IsPublic:    r.IsPublic,
	}
}

// Validate 检查 Section id 唯一且类型合法，空标题与模板回落到默认值。
func (u *FullUpdate) Validate() error {
	if strings.TrimSpace(u.Title) == "" {
		u.Title = DefaultTitle
	}
	if u.TemplateID == "" {
		u.TemplateID = DefaultTemplateID
	}
	if u.Sections == nil {
		u.Sections = []Section{}
	}
	return ValidateSections(u.Sections)
}

// ValidateSections rejects duplicate or empty ids and unknown types.
func ValidateSections(sections []Section) error {
	seen := make(map[string]struct{}, len(sections))
	for i, s := range sections {
		if s.ID == "" {
			return fmt.Errorf("%w: section %d has no id", ErrInvalid, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate section id %q", ErrInvalid, s.ID)
		}
		seen[s.ID] = struct{}{}
		if _, err := ParseSectionType(string(s.Type)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return nil
}

// MetadataUpdate 是不含 Section 的部分更新，nil 字段不修改。
type MetadataUpdate struct {
	Title       *string      `json:"title,omitempty"`
	TemplateID  *string      `json:"templateId,omitempty"`
	StyleConfig *StyleConfig `json:"styleConfig,omitempty"`
	IsPublic    *bool        `json:"isPublic,omitempty"`
}

// Metadata returns a metadata patch carrying every metadata field of r.
func (r *Resume) Metadata() MetadataUpdate {
	style := r.StyleConfig.Clone()
	return MetadataUpdate{
		Title:       ptr(r.Title),
		TemplateID:  ptr(r.TemplateID),
		StyleConfig: &style,
		IsPublic:    ptr(r.IsPublic),
	}
}

func (m MetadataUpdate) Empty() bool {
	return m.Title == nil && m.TemplateID == nil && m.StyleConfig == nil && m.IsPublic == nil
}

// Apply 把补丁写到 r 上。
func (m MetadataUpdate) Apply(r *Resume) {
	setIf(&r.Title, m.Title)
	setIf(&r.TemplateID, m.TemplateID)
	setIf(&r.IsPublic, m.IsPublic)
	if m.StyleConfig != nil {
		r.StyleConfig = m.StyleConfig.Clone()
	}
}

// 列表排序字段与默认分页参数。
const (
	SortUpdatedAt = "updatedAt"
	SortCreatedAt = "createdAt"
	SortTitle     = "title"

	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery 是列表接口的查询参数。
type ListQuery struct {
	Page      int    `form:"page" json:"page"`
	Limit     int    `form:"limit" json:"limit"`
	Search    string `form:"search" json:"search,omitempty"`
	SortBy    string `form:"sortBy" json:"sortBy,omitempty"`
	SortOrder string `form:"sortOrder" json:"sortOrder,omitempty"`
}

// Normalize clamps paging and falls back to updatedAt desc for unknown sort keys.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	switch q.SortBy {
	case SortUpdatedAt, SortCreatedAt, SortTitle:
	default:
		q.SortBy = SortUpdatedAt
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination derives the page count from total.
func NewPagination(q ListQuery, total int64) Pagination {
	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return Pagination{Page: q.Page, Limit: q.Limit, Total: total, TotalPages: pages}
}

type ResumeList struct {
	Resumes    []Resume   `json:"resumes"`
	Pagination Pagination `json:"pagination"`
}

// Detail 是单份简历的完整读取结果。
type Detail struct {
	Resume
	ShareLinks []ShareLink `json:"shareLinks"`
}

// ShareOptions 是创建分享链接的可选参数。
type ShareOptions struct {
	ExpiresInDays *int   `json:"expiresInDays,omitempty"`
	Password      string `json:"password,omitempty"`
}

// PublicView 是公开访问返回的脱敏结果：只含可见 Section。
type PublicView struct {
	ShareLink ShareLink `json:"shareLink"`
	Resume    *Resume   `json:"resume"`
}

// ExportJob 是导出请求入队后的回执。
type ExportJob struct {
	TaskID string `json:"taskId"`
	Queue  string `json:"queue"`
}

// ExportFile 是对象存储中的一份 JSON 导出，URL 为限时下载地址。
type ExportFile struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	URL          string    `json:"url"`
}
