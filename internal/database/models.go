package database

import (
	"time"

	"gorm.io/datatypes"
)

// Resume 是简历的持久化形态，样式以 JSONB 存储。
type Resume struct {
	ID           string         `gorm:"primaryKey;size:36"`
	UserID       string         `gorm:"index;size:64;not null"`
	Title        string         `gorm:"size:255"`
	TemplateID   string         `gorm:"size:64"`
	StyleConfig  datatypes.JSON `gorm:"type:jsonb"`
	IsPublic     bool
	Sections     []Section   `gorm:"constraint:OnDelete:CASCADE"`
	ShareLinks   []ShareLink `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastEditedAt time.Time
}

// Section 的 id 由客户端生成，因此以 (resume_id, id) 作为联合主键。
type Section struct {
	ResumeID string         `gorm:"primaryKey;size:36"`
	ID       string         `gorm:"primaryKey;size:64"`
	Type     string         `gorm:"size:32"`
	Title    string         `gorm:"size:255"`
	Data     datatypes.JSON `gorm:"type:jsonb"`
	Order    int            `gorm:"column:sort_order"`
	Visible  bool
}

// ShareLink 是分享链接；过期只在读取时判断，不回写 IsActive。
type ShareLink struct {
	ID           string `gorm:"primaryKey;size:36"`
	ResumeID     string `gorm:"index;size:36;not null"`
	Slug         string `gorm:"uniqueIndex;size:32;not null"`
	IsActive     bool
	ExpiresAt    *time.Time
	PasswordHash string `gorm:"size:255"`
	ViewCount    int64
	LastViewedAt *time.Time
	CreatedAt    time.Time
}

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{&Resume{}, &Section{}, &ShareLink{}}
}
