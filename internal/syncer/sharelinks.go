package syncer

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"resumeEditor/internal/resume"
	"resumeEditor/internal/share"
)

// RequestStatus 是一次分享操作的异步状态。
type RequestStatus string

const (
	StatusIdle      RequestStatus = "idle"
	StatusLoading   RequestStatus = "loading"
	StatusSucceeded RequestStatus = "succeeded"
	StatusFailed    RequestStatus = "failed"
)

// LinkState 是某份简历分享状态的汇总视图。
type LinkState string

const (
	LinkNone     LinkState = "no-link"
	LinkActive   LinkState = "active"
	LinkInactive LinkState = "inactive"
)

// ShareState 是单份简历的分享链接状态快照。
type ShareState struct {
	Status RequestStatus
	Links  []resume.ShareLink
	Error  string
	// SlugExhausted 区分 slug 重试耗尽与普通失败，界面据此提示用户手动重试。
	SlugExhausted bool
}

// ShareLinks 维护每份简历的分享链接列表与请求状态。失败只写入状态，不向上抛出。
type ShareLinks struct {
	api    ShareAPI
	clock  Clock
	logger *slog.Logger

	mu     sync.Mutex
	states map[string]*ShareState
}

func NewShareLinks(api ShareAPI, clock Clock, logger *slog.Logger) *ShareLinks {
	if clock == nil {
		clock = RealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ShareLinks{api: api, clock: clock, logger: logger, states: make(map[string]*ShareState)}
}

// Load 拉取简历的全部链接（含已停用的）。
func (s *ShareLinks) Load(ctx context.Context, resumeID string) error {
	s.start(resumeID)
	links, err := s.api.ListShareLinks(ctx, resumeID)
	if err != nil {
		s.fail(resumeID, err)
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(resumeID)
	st.Links = slices.Clone(links)
	st.Status = StatusSucceeded
	return nil
}

// Create 新建链接并放到列表最前。
func (s *ShareLinks) Create(ctx context.Context, resumeID string, opts resume.ShareOptions) (*resume.ShareLink, error) {
	s.start(resumeID)
	link, err := s.api.CreateShareLink(ctx, resumeID, opts)
	if err != nil {
		s.fail(resumeID, err)
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(resumeID)
	st.Links = append([]resume.ShareLink{*link}, st.Links...)
	st.Status = StatusSucceeded
	return link, nil
}

// Deactivate 停用链接；重复停用同一链接不是错误。
func (s *ShareLinks) Deactivate(ctx context.Context, resumeID, shareID string) error {
	s.start(resumeID)
	link, err := s.api.DeactivateShareLink(ctx, shareID)
	if err != nil {
		s.fail(resumeID, err)
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(resumeID)
	for i := range st.Links {
		if st.Links[i].ID == shareID {
			st.Links[i] = *link
		}
	}
	st.Status = StatusSucceeded
	return nil
}

// State returns a copy of the resume's share state.
func (s *ShareLinks) State(resumeID string) ShareState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[resumeID]
	if !ok {
		return ShareState{Status: StatusIdle}
	}
	out := *st
	out.Links = slices.Clone(st.Links)
	return out
}

// LinkState 在读取时判断过期：过期的链接即使 IsActive 仍为 true 也视为停用。
func (s *ShareLinks) LinkState(resumeID string) LinkState {
	st := s.State(resumeID)
	if len(st.Links) == 0 {
		return LinkNone
	}
	now := s.clock.Now()
	for _, l := range st.Links {
		if l.IsActive && !l.Expired(now) {
			return LinkActive
		}
	}
	return LinkInactive
}

func (s *ShareLinks) start(resumeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(resumeID)
	st.Status = StatusLoading
	st.Error = ""
	st.SlugExhausted = false
}

func (s *ShareLinks) fail(resumeID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(resumeID)
	st.Status = StatusFailed
	st.Error = err.Error()
	st.SlugExhausted = errors.Is(err, share.ErrSlugExhausted)
	s.logger.Warn("share link request failed",
		slog.String("resume_id", resumeID),
		slog.Bool("slug_exhausted", st.SlugExhausted),
		slog.Any("error", err),
	)
}

func (s *ShareLinks) stateLocked(resumeID string) *ShareState {
	st, ok := s.states[resumeID]
	if !ok {
		st = &ShareState{Status: StatusIdle}
		s.states[resumeID] = st
	}
	return st
}
