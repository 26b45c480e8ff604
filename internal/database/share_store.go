package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"resumeEditor/internal/resume"
	"resumeEditor/internal/share"
)

// ShareStore implements share.Store over gorm.
type ShareStore struct {
	db *gorm.DB
}

var _ share.Store = (*ShareStore)(nil)

func NewShareStore(db *gorm.DB) *ShareStore {
	return &ShareStore{db: db}
}

func (s *ShareStore) ResumeOwnedBy(ctx context.Context, ownerID, resumeID string) error {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&Resume{}).
		Where("id = ? AND user_id = ?", resumeID, ownerID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check resume owner: %w", err)
	}
	if count == 0 {
		return resume.ErrNotFound
	}
	return nil
}

func (s *ShareStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&ShareLink{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateShareLink 写入链接并回填 ID；slug 唯一索引冲突返回 share.ErrSlugTaken。
func (s *ShareStore) CreateShareLink(ctx context.Context, link *resume.ShareLink) error {
	row := ShareLink{
		ID:           uuid.NewString(),
		ResumeID:     link.ResumeID,
		Slug:         link.Slug,
		IsActive:     link.IsActive,
		ExpiresAt:    link.ExpiresAt,
		PasswordHash: link.PasswordHash,
		CreatedAt:    link.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return share.ErrSlugTaken
		}
		return err
	}
	link.ID = row.ID
	return nil
}

func (s *ShareStore) ListShareLinks(ctx context.Context, resumeID string) ([]resume.ShareLink, error) {
	var rows []ShareLink
	if err := s.db.WithContext(ctx).
		Where("resume_id = ?", resumeID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list share links: %w", err)
	}
	out := make([]resume.ShareLink, 0, len(rows))
	for _, r := range rows {
		out = append(out, shareToDomain(r))
	}
	return out, nil
}

// DeactivateShareLink 只停用 owner 名下简历的链接，否则按不存在处理。
func (s *ShareStore) DeactivateShareLink(ctx context.Context, ownerID, shareID string) (*resume.ShareLink, error) {
	var row ShareLink
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Joins("JOIN resumes ON resumes.id = share_links.resume_id").
			Where("share_links.id = ? AND resumes.user_id = ?", shareID, ownerID).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return share.ErrNotFound
			}
			return err
		}
		if !row.IsActive {
			return nil
		}
		row.IsActive = false
		return tx.Model(&ShareLink{ID: row.ID}).Update("is_active", false).Error
	})
	if err != nil {
		return nil, err
	}
	link := shareToDomain(row)
	return &link, nil
}

func (s *ShareStore) FindBySlug(ctx context.Context, slug string) (*resume.ShareLink, error) {
	var row ShareLink
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, share.ErrNotFound
		}
		return nil, err
	}
	link := shareToDomain(row)
	return &link, nil
}

// RecordView 以 view_count + 1 原子递增，并在同一事务中读回递增后的值。
func (s *ShareStore) RecordView(ctx context.Context, shareID string, at time.Time) (*resume.ShareLink, error) {
	var row ShareLink
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ShareLink{}).
			Where("id = ?", shareID).
			Updates(map[string]any{
				"view_count":     gorm.Expr("view_count + ?", 1),
				"last_viewed_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return share.ErrNotFound
		}
		return tx.Where("id = ?", shareID).First(&row).Error
	})
	if err != nil {
		return nil, err
	}
	link := shareToDomain(row)
	return &link, nil
}

// LoadResume 读取分享链接指向的简历，不校验归属。
func (s *ShareStore) LoadResume(ctx context.Context, resumeID string) (*resume.Resume, error) {
	row, err := findResume(s.db.WithContext(ctx), "", resumeID)
	if err != nil {
		return nil, err
	}
	return resumeToDomain(*row)
}
