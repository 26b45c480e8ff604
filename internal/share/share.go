// Package share implements share links: collision-checked slug allocation,
// expiry evaluated at read time, optional password gate and the public,
// redacted resume view.
package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"resumeEditor/internal/metrics"
	"resumeEditor/internal/resume"
)

const (
	DefaultSlugRetries = 5
	MaxExpiresInDays   = 365
)

var (
	ErrNotFound         = errors.New("share link not found")
	ErrInactive         = errors.New("share link is inactive")
	ErrExpired          = errors.New("share link has expired")
	ErrPasswordRequired = errors.New("share link requires a password")
	ErrPasswordMismatch = errors.New("share link password mismatch")
	// ErrSlugExhausted 表示所有候选 slug 都已被占用，与网络失败区分。
	ErrSlugExhausted = errors.New("could not allocate a unique share slug")
	// ErrSlugTaken is returned by Store.CreateShareLink on a unique-index race.
	ErrSlugTaken = errors.New("share slug already taken")
)

// Store 是分享链接的持久化接口，由 database.ShareStore 实现。
type Store interface {
	// ResumeOwnedBy returns resume.ErrNotFound when the resume is absent or not owned.
	ResumeOwnedBy(ctx context.Context, ownerID, resumeID string) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateShareLink(ctx context.Context, link *resume.ShareLink) error
	ListShareLinks(ctx context.Context, resumeID string) ([]resume.ShareLink, error)
	DeactivateShareLink(ctx context.Context, ownerID, shareID string) (*resume.ShareLink, error)
	FindBySlug(ctx context.Context, slug string) (*resume.ShareLink, error)
	// RecordView 在同一事务内递增计数并返回递增后的链接。
	RecordView(ctx context.Context, shareID string, at time.Time) (*resume.ShareLink, error)
	LoadResume(ctx context.Context, resumeID string) (*resume.Resume, error)
}

// Service 是分享链接的业务入口。
type Service struct {
	store   Store
	baseURL string
	retries int
	slugs   SlugGenerator
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Service)

func WithSlugRetries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retries = n
		}
	}
}

// WithSlugGenerator replaces the random generator, mainly for collision tests.
func WithSlugGenerator(g SlugGenerator) Option {
	return func(s *Service) { s.slugs = g }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService 构造服务；baseURL 用于拼接 <baseURL>/s/<slug>。
func NewService(store Store, baseURL string, opts ...Option) *Service {
	s := &Service{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		retries: DefaultSlugRetries,
		slugs:   RandomSlug,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create 为简历新建分享链接。
func (s *Service) Create(ctx context.Context, ownerID, resumeID string, opts resume.ShareOptions) (*resume.ShareLink, error) {
	if err := s.store.ResumeOwnedBy(ctx, ownerID, resumeID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	link := &resume.ShareLink{
		ResumeID:  resumeID,
		IsActive:  true,
		CreatedAt: now,
	}
	if opts.ExpiresInDays != nil {
		days := *opts.ExpiresInDays
		if days < 1 || days > MaxExpiresInDays {
			return nil, fmt.Errorf("%w: expiresInDays must be between 1 and %d", resume.ErrInvalid, MaxExpiresInDays)
		}
		expires := now.Add(time.Duration(days) * 24 * time.Hour)
		link.ExpiresAt = &expires
	}
	if opts.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash share password: %w", err)
		}
		link.PasswordHash = string(hash)
		link.HasPassword = true
	}

	for attempt := 1; attempt <= s.retries; attempt++ {
		slug, err := s.slugs()
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		exists, err := s.store.SlugExists(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if exists {
			s.logger.Debug("share slug collision", slog.Int("attempt", attempt))
			continue
		}

		link.Slug = slug
		switch err := s.store.CreateShareLink(ctx, link); {
		case err == nil:
			link.URL = s.LinkURL(slug)
			return link, nil
		case errors.Is(err, ErrSlugTaken):
			continue
		default:
			return nil, fmt.Errorf("create share link: %w", err)
		}
	}

	s.logger.Warn("share slug retries exhausted",
		slog.String("resume_id", resumeID),
		slog.Int("retries", s.retries),
	)
	return nil, ErrSlugExhausted
}

// List 返回简历的全部链接（含停用），按创建时间倒序。
func (s *Service) List(ctx context.Context, ownerID, resumeID string) ([]resume.ShareLink, error) {
	if err := s.store.ResumeOwnedBy(ctx, ownerID, resumeID); err != nil {
		return nil, err
	}
	links, err := s.store.ListShareLinks(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(links, func(a, b resume.ShareLink) int { return b.CreatedAt.Compare(a.CreatedAt) })
	for i := range links {
		links[i].URL = s.LinkURL(links[i].Slug)
	}
	return links, nil
}

// Deactivate 停用链接，已停用的链接再次停用直接返回当前状态。
func (s *Service) Deactivate(ctx context.Context, ownerID, shareID string) (*resume.ShareLink, error) {
	link, err := s.store.DeactivateShareLink(ctx, ownerID, shareID)
	if err != nil {
		return nil, err
	}
	link.URL = s.LinkURL(link.Slug)
	return link, nil
}

// Resolve 是公开访问入口：校验存在、启用、未过期与密码后递增访问计数，
// 返回的计数是递增之后的值。
func (s *Service) Resolve(ctx context.Context, slug, password string) (*resume.PublicView, error) {
	view, err := s.resolve(ctx, slug, password)
	metrics.ObserveShareResolve(string(StatusOf(err)))
	return view, err
}

func (s *Service) resolve(ctx context.Context, slug, password string) (*resume.PublicView, error) {
	link, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if !link.IsActive {
		return nil, ErrInactive
	}
	if link.Expired(now) {
		return nil, ErrExpired
	}
	if link.PasswordHash != "" {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		if bcrypt.CompareHashAndPassword([]byte(link.PasswordHash), []byte(password)) != nil {
			return nil, ErrPasswordMismatch
		}
	}

	// 先读简历，读不到的访问不计数
	res, err := s.store.LoadResume(ctx, link.ResumeID)
	if err != nil {
		if errors.Is(err, resume.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	viewed, err := s.store.RecordView(ctx, link.ID, now)
	if err != nil {
		return nil, fmt.Errorf("record view: %w", err)
	}

	viewed.URL = s.LinkURL(viewed.Slug)
	viewed.PasswordHash = ""
	return &resume.PublicView{ShareLink: *viewed, Resume: Redact(res)}, nil
}

// Redact 去掉隐藏的 Section 与所有者信息。
func Redact(r *resume.Resume) *resume.Resume {
	out := r.Clone()
	out.UserID = ""
	out.Sections = resume.VisibleSections(r.Sections)
	return out
}

// LinkURL 返回 slug 对应的公开访问地址。
func (s *Service) LinkURL(slug string) string {
	return s.baseURL + "/s/" + slug
}
