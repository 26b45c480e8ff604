package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"resumeEditor/internal/resume"
)

// ResumeStore 是简历与 Section 的持久化实现，所有读写都限定在 owner 名下。
type ResumeStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewResumeStore(db *gorm.DB) *ResumeStore {
	return &ResumeStore{db: db, now: time.Now}
}

var sortColumns = map[string]string{
	resume.SortUpdatedAt: "updated_at",
	resume.SortCreatedAt: "created_at",
	resume.SortTitle:     "title",
}

// notFound translates gorm's missing-row error at the store boundary.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return resume.ErrNotFound
	}
	return err
}

func orderedSections(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// findResume 读取简历及其有序 Section；owner 为空时不校验归属。
func findResume(db *gorm.DB, ownerID, id string) (*Resume, error) {
	q := db.Preload("Sections", orderedSections).Where("id = ?", id)
	if ownerID != "" {
		q = q.Where("user_id = ?", ownerID)
	}
	var row Resume
	if err := q.First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}

// Create 保存一份新简历，缺省的 id 由 uuid 生成。
func (s *ResumeStore) Create(ctx context.Context, r *resume.Resume) (*resume.Resume, error) {
	if err := resume.ValidateSections(r.Sections); err != nil {
		return nil, err
	}
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	style, err := encodeStyle(r.StyleConfig)
	if err != nil {
		return nil, err
	}
	sections, err := sectionRows(id, r.Sections)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	row := Resume{
		ID:           id,
		UserID:       r.UserID,
		Title:        r.Title,
		TemplateID:   r.TemplateID,
		StyleConfig:  style,
		IsPublic:     r.IsPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastEditedAt: now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Sections", "ShareLinks").Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: resume %s already exists", resume.ErrConflict, id)
			}
			return fmt.Errorf("create resume: %w", err)
		}
		if len(sections) == 0 {
			return nil
		}
		if err := tx.Create(&sections).Error; err != nil {
			return fmt.Errorf("create sections: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, r.UserID, id)
}

// List 分页列出 owner 的简历，不含 Section。
func (s *ResumeStore) List(ctx context.Context, ownerID string, q resume.ListQuery) (*resume.ResumeList, error) {
	q = q.Normalize()
	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&Resume{}).Where("user_id = ?", ownerID)
		if q.Search != "" {
			db = db.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Scopes(filter).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count resumes: %w", err)
	}

	var rows []Resume
	order := fmt.Sprintf("%s %s, id ASC", sortColumns[q.SortBy], strings.ToUpper(q.SortOrder))
	if err := s.db.WithContext(ctx).Scopes(filter).
		Order(order).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}

	out := &resume.ResumeList{Resumes: make([]resume.Resume, 0, len(rows)), Pagination: resume.NewPagination(q, total)}
	for _, row := range rows {
		r, err := resumeToDomain(row)
		if err != nil {
			return nil, err
		}
		out.Resumes = append(out.Resumes, *r)
	}
	return out, nil
}

// Get 返回简历、有序 Section 以及全部分享链接。
func (s *ResumeStore) Get(ctx context.Context, ownerID, id string) (*resume.Detail, error) {
	r, err := s.get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	var links []ShareLink
	if err := s.db.WithContext(ctx).
		Where("resume_id = ?", id).
		Order("created_at DESC").
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list share links: %w", err)
	}
	detail := &resume.Detail{Resume: *r, ShareLinks: make([]resume.ShareLink, 0, len(links))}
	for _, l := range links {
		detail.ShareLinks = append(detail.ShareLinks, shareToDomain(l))
	}
	return detail, nil
}

func (s *ResumeStore) get(ctx context.Context, ownerID, id string) (*resume.Resume, error) {
	row, err := findResume(s.db.WithContext(ctx), ownerID, id)
	if err != nil {
		return nil, err
	}
	return resumeToDomain(*row)
}

// UpdateFull 在一个事务内替换元信息与全部 Section。
func (s *ResumeStore) UpdateFull(ctx context.Context, ownerID, id string, u resume.FullUpdate) (*resume.Resume, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	style, err := encodeStyle(u.StyleConfig)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findResume(tx, ownerID, id); err != nil {
			return err
		}
		if err := tx.Model(&Resume{ID: id}).Updates(map[string]any{
			"title":          u.Title,
			"template_id":    u.TemplateID,
			"style_config":   style,
			"is_public":      u.IsPublic,
			"last_edited_at": s.now().UTC(),
		}).Error; err != nil {
			return fmt.Errorf("update resume: %w", err)
		}
		return replaceSections(tx, id, u.Sections)
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, ownerID, id)
}

// UpdateMetadata 只写补丁中出现的字段。
func (s *ResumeStore) UpdateMetadata(ctx context.Context, ownerID, id string, m resume.MetadataUpdate) (*resume.Resume, error) {
	updates := map[string]any{"last_edited_at": s.now().UTC()}
	if m.Title != nil {
		title := strings.TrimSpace(*m.Title)
		if title == "" {
			title = resume.DefaultTitle
		}
		updates["title"] = title
	}
	if m.TemplateID != nil {
		updates["template_id"] = *m.TemplateID
	}
	if m.IsPublic != nil {
		updates["is_public"] = *m.IsPublic
	}
	if m.StyleConfig != nil {
		style, err := encodeStyle(*m.StyleConfig)
		if err != nil {
			return nil, err
		}
		updates["style_config"] = style
	}

	res := s.db.WithContext(ctx).
		Model(&Resume{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update resume metadata: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, resume.ErrNotFound
	}
	return s.get(ctx, ownerID, id)
}

// ReplaceSections 删除全部 Section 后按顺序重新插入，同一事务内完成。
func (s *ResumeStore) ReplaceSections(ctx context.Context, ownerID, id string, sections []resume.Section) (*resume.Resume, error) {
	if err := resume.ValidateSections(sections); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findResume(tx, ownerID, id); err != nil {
			return err
		}
		if err := tx.Model(&Resume{ID: id}).Update("last_edited_at", s.now().UTC()).Error; err != nil {
			return fmt.Errorf("touch resume: %w", err)
		}
		return replaceSections(tx, id, sections)
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, ownerID, id)
}

func replaceSections(tx *gorm.DB, resumeID string, sections []resume.Section) error {
	rows, err := sectionRows(resumeID, sections)
	if err != nil {
		return err
	}
	if err := tx.Where("resume_id = ?", resumeID).Delete(&Section{}).Error; err != nil {
		return fmt.Errorf("delete sections: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert sections: %w", err)
	}
	return nil
}

// Delete 删除简历并级联删除 Section 与分享链接。
func (s *ResumeStore) Delete(ctx context.Context, ownerID, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Resume
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&row).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("resume_id = ?", id).Delete(&ShareLink{}).Error; err != nil {
			return fmt.Errorf("delete share links: %w", err)
		}
		if err := tx.Where("resume_id = ?", id).Delete(&Section{}).Error; err != nil {
			return fmt.Errorf("delete sections: %w", err)
		}
		if err := tx.Delete(&row).Error; err != nil {
			return fmt.Errorf("delete resume: %w", err)
		}
		return nil
	})
}
