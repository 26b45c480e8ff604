package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"resumeEditor/internal/editor"
	"resumeEditor/internal/metrics"
	"resumeEditor/internal/resume"
)

// DefaultSyncInterval is the minimum gap between two sync starts.
const DefaultSyncInterval = time.Second

// Kind 是一次同步使用的接口粒度。
type Kind int

const (
	KindFull Kind = iota + 1
	KindMetadata
	KindSections
)

func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindMetadata:
		return "metadata"
	case KindSections:
		return "sections"
	}
	return "unknown"
}

// Route 为动作选择最小且足够的同步接口。
func Route(a editor.Action) (Kind, bool) {
	switch a.(type) {
	case editor.SetResume, editor.SetSections, editor.Restore:
		return KindFull, true
	case editor.UpdateTitle, editor.UpdateStyleConfig, editor.UpdateTemplate, editor.SetPublic,
		editor.SetStyle, editor.UpdateStyle, editor.ApplyTheme, editor.ResetStyle:
		return KindMetadata, true
	case editor.AddSection, editor.UpdateSection, editor.DeleteSection,
		editor.ReorderSections, editor.ToggleSectionVisibility:
		return KindSections, true
	}
	return 0, false
}

// Entry 是离线队列中的一项。
type Entry struct {
	Kind   Kind
	Action editor.Action
	At     time.Time
}

// RemoteSync 把每次变更按粒度推送到服务端。
//
// 检查顺序：离线 → 入队；已有请求在途 → 丢弃；距上次开始不足间隔 → 丢弃；
// 否则异步发送，发送时才读取 store 中的最新状态。
// 在线时某次同步成功后，队列中残留的条目会紧接着重放一遍。
type RemoteSync struct {
	doc     Document
	api     ResumeAPI
	clock   Clock
	limiter *rate.Limiter
	logger  *slog.Logger

	mu       sync.Mutex
	online   bool
	inFlight chan struct{}
	queue    []Entry

	// replayWanted 记录在途期间收到的恢复在线信号或一次成功的发送，
	// 在途请求结束后补做重放。
	replayWanted bool
}

type RemoteOption func(*RemoteSync)

func WithSyncInterval(d time.Duration) RemoteOption {
	return func(s *RemoteSync) {
		if d > 0 {
			s.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

func WithSyncClock(c Clock) RemoteOption {
	return func(s *RemoteSync) { s.clock = c }
}

func WithSyncLogger(l *slog.Logger) RemoteOption {
	return func(s *RemoteSync) { s.logger = l }
}

// NewRemoteSync starts online.
func NewRemoteSync(doc Document, api ResumeAPI, opts ...RemoteOption) *RemoteSync {
	s := &RemoteSync{
		doc:     doc,
		api:     api,
		clock:   RealClock(),
		limiter: rate.NewLimiter(rate.Every(DefaultSyncInterval), 1),
		logger:  slog.Default(),
		online:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RemoteSync) Observe(a editor.Action) {
	kind, ok := Route(a)
	if !ok {
		return
	}

	s.mu.Lock()
	switch {
	case !s.online:
		s.queue = append(s.queue, Entry{Kind: kind, Action: a, At: s.clock.Now()})
		depth := len(s.queue)
		s.mu.Unlock()
		metrics.SkipSync("offline")
		metrics.SetOfflineQueueDepth(depth)
		return
	case s.inFlight != nil:
		s.mu.Unlock()
		metrics.SkipSync("in_flight")
		s.logger.Debug("sync dropped, request in flight", slog.String("kind", kind.String()))
		return
	case !s.limiter.AllowN(s.clock.Now(), 1):
		s.mu.Unlock()
		metrics.SkipSync("throttled")
		return
	}
	done := s.beginLocked()
	s.mu.Unlock()

	go func() {
		defer s.end(done)
		s.deliver(context.Background(), Entry{Kind: kind, Action: a, At: s.clock.Now()})
	}()
}

func (s *RemoteSync) beginLocked() chan struct{} {
	s.inFlight = make(chan struct{})
	return s.inFlight
}

func (s *RemoteSync) end(done chan struct{}) {
	for {
		s.mu.Lock()
		if s.replayWanted && s.online && len(s.queue) > 0 {
			pending := s.queue
			s.queue = nil
			s.replayWanted = false
			s.mu.Unlock()
			s.replay(context.Background(), pending)
			continue
		}
		s.replayWanted = false
		s.inFlight = nil
		s.mu.Unlock()
		close(done)
		return
	}
}

// deliver 发送单个条目；暂时性失败重新入队，终止性失败只记录错误。
func (s *RemoteSync) deliver(ctx context.Context, e Entry) bool {
	err := s.send(ctx, e.Kind)
	if err == nil {
		s.mu.Lock()
		if len(s.queue) > 0 {
			s.replayWanted = true
		}
		s.mu.Unlock()
		return true
	}
	s.doc.MarkError(err)
	if Terminal(err) {
		s.logger.Warn("sync rejected", slog.String("kind", e.Kind.String()), slog.Any("error", err))
		return true
	}
	s.logger.Warn("sync failed, queued for replay", slog.String("kind", e.Kind.String()), slog.Any("error", err))
	s.mu.Lock()
	s.queue = append(s.queue, e)
	depth := len(s.queue)
	s.mu.Unlock()
	metrics.SetOfflineQueueDepth(depth)
	return false
}

func (s *RemoteSync) send(ctx context.Context, kind Kind) error {
	res := s.doc.Resume()
	if res == nil {
		return nil
	}

	var err error
	switch kind {
	case KindFull:
		_, err = s.api.UpdateResumeFull(ctx, res.ID, res.FullUpdate())
	case KindMetadata:
		_, err = s.api.UpdateResumeMetadata(ctx, res.ID, res.Metadata())
	case KindSections:
		_, err = s.api.ReplaceSections(ctx, res.ID, res.Sections)
	}
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
	}
	metrics.ObserveSync(kind.String(), result)
	return err
}

// Enqueue appends a failed sync or save for later replay.
func (s *RemoteSync) Enqueue(kind Kind, a editor.Action) {
	s.mu.Lock()
	s.queue = append(s.queue, Entry{Kind: kind, Action: a, At: s.clock.Now()})
	depth := len(s.queue)
	s.mu.Unlock()
	metrics.SetOfflineQueueDepth(depth)
}

// SetOnline 切换连通状态。恢复在线且队列非空时，按入队顺序重放整个队列一次；
// 再次失败的条目按原顺序回到队首。
func (s *RemoteSync) SetOnline(online bool) {
	s.mu.Lock()
	s.online = online
	if !online || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	if s.inFlight != nil {
		s.replayWanted = true
		s.mu.Unlock()
		return
	}
	pending := s.queue
	s.queue = nil
	done := s.beginLocked()
	s.mu.Unlock()

	go func() {
		defer s.end(done)
		s.replay(context.Background(), pending)
	}()
}

func (s *RemoteSync) replay(ctx context.Context, pending []Entry) {
	var failed []Entry
	for i, e := range pending {
		if !s.Online() {
			failed = append(failed, pending[i:]...)
			break
		}
		if err := s.send(ctx, e.Kind); err != nil {
			s.doc.MarkError(err)
			if Terminal(err) {
				continue
			}
			failed = append(failed, e)
		}
	}

	s.mu.Lock()
	s.queue = append(failed, s.queue...)
	depth := len(s.queue)
	s.mu.Unlock()
	metrics.SetOfflineQueueDepth(depth)
	s.logger.Info("offline queue replayed",
		slog.Int("sent", len(pending)-len(failed)),
		slog.Int("requeued", len(failed)),
	)
}

func (s *RemoteSync) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// Queue returns a copy of the offline queue in replay order.
func (s *RemoteSync) Queue() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.queue))
	copy(out, s.queue)
	return out
}

// Wait blocks until the in-flight sync or replay completes.
func (s *RemoteSync) Wait() {
	s.mu.Lock()
	done := s.inFlight
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Terminal 判断失败是否不应重试：目标不存在、冲突或请求本身非法。
func Terminal(err error) bool {
	return errors.Is(err, resume.ErrNotFound) ||
		errors.Is(err, resume.ErrConflict) ||
		errors.Is(err, resume.ErrInvalid)
}
