package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"resumeEditor/internal/editor"
	"resumeEditor/internal/metrics"
)

// DefaultSaveDelay is the quiet period after the last edit before a save fires.
const DefaultSaveDelay = 2 * time.Second

// AutoSave 对编辑做防抖，安静期结束后用整份简历调用全量更新。
// 每个实例只持有一个定时器；新的编辑会停止并替换它。
type AutoSave struct {
	doc    Document
	api    ResumeAPI
	clock  Clock
	delay  time.Duration
	logger *slog.Logger

	// queue 接收暂时性失败的保存，为 nil 时失败只体现在状态里。
	queue FailureQueue

	mu    sync.Mutex
	timer Timer
	last  editor.Action

	// gen 在每次重新计时时递增，过期的定时回调据此放弃执行。
	gen  uint64
	done chan struct{}
}

// FailureQueue 接收失败的保存，由 *RemoteSync 实现。
type FailureQueue interface {
	Enqueue(kind Kind, a editor.Action)
}

type AutoSaveOption func(*AutoSave)

func WithSaveDelay(d time.Duration) AutoSaveOption {
	return func(s *AutoSave) {
		if d > 0 {
			s.delay = d
		}
	}
}

func WithSaveClock(c Clock) AutoSaveOption {
	return func(s *AutoSave) { s.clock = c }
}

func WithSaveLogger(l *slog.Logger) AutoSaveOption {
	return func(s *AutoSave) { s.logger = l }
}

// WithFailureQueue routes transient save failures into q as full syncs.
func WithFailureQueue(q FailureQueue) AutoSaveOption {
	return func(s *AutoSave) { s.queue = q }
}

func NewAutoSave(doc Document, api ResumeAPI, opts ...AutoSaveOption) *AutoSave {
	s := &AutoSave{
		doc:    doc,
		api:    api,
		clock:  RealClock(),
		delay:  DefaultSaveDelay,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe restarts the debounce timer for user edits and history restores.
func (s *AutoSave) Observe(a editor.Action) {
	if !triggersSave(a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = a
	s.armLocked()
}

func triggersSave(a editor.Action) bool {
	switch a.(type) {
	case editor.UpdateTitle, editor.UpdateStyleConfig, editor.UpdateTemplate, editor.SetPublic,
		editor.AddSection, editor.UpdateSection, editor.DeleteSection, editor.ReorderSections,
		editor.ToggleSectionVisibility, editor.SetSections,
		editor.SetStyle, editor.UpdateStyle, editor.ApplyTheme, editor.ResetStyle,
		editor.Restore:
		return true
	}
	return false
}

func (s *AutoSave) armLocked() {
	s.stopLocked()
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.delay, func() { s.fire(gen) })
}

func (s *AutoSave) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *AutoSave) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	if s.done != nil {
		// 上一次保存仍在进行，重新计时而不是并发发出第二个请求。
		s.armLocked()
		s.mu.Unlock()
		return
	}
	done := s.beginLocked()
	s.mu.Unlock()

	defer s.end(done)
	_ = s.save(context.Background())
}

func (s *AutoSave) beginLocked() chan struct{} {
	s.done = make(chan struct{})
	return s.done
}

func (s *AutoSave) end(done chan struct{}) {
	s.mu.Lock()
	s.done = nil
	s.mu.Unlock()
	close(done)
}

// Flush 取消挂起的定时器并立即保存；已有保存在途时先等待其完成。
func (s *AutoSave) Flush(ctx context.Context) error {
	for {
		s.mu.Lock()
		s.stopLocked()
		inFlight := s.done
		if inFlight == nil {
			done := s.beginLocked()
			s.mu.Unlock()
			defer s.end(done)
			return s.save(ctx)
		}
		s.mu.Unlock()

		select {
		case <-inFlight:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pending reports whether a debounce timer is armed.
func (s *AutoSave) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Wait blocks until the in-flight save, if any, completes.
func (s *AutoSave) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Stop cancels the pending timer without saving.
func (s *AutoSave) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *AutoSave) save(ctx context.Context) error {
	res, revision, dirty := s.doc.Pending()
	if res == nil || !dirty {
		return nil
	}

	s.doc.MarkSaving()
	start := s.clock.Now()
	if _, err := s.api.UpdateResumeFull(ctx, res.ID, res.FullUpdate()); err != nil {
		s.doc.MarkSaveFailed(err)
		metrics.ObserveSave(metrics.ResultFailure)
		queued := s.queue != nil && !Terminal(err)
		if queued {
			s.mu.Lock()
			last := s.last
			s.mu.Unlock()
			s.queue.Enqueue(KindFull, last)
		}
		s.logger.Warn("auto-save failed",
			slog.String("resume_id", res.ID),
			slog.Bool("queued", queued),
			slog.Any("error", err),
		)
		return err
	}

	now := s.clock.Now()
	s.doc.MarkSaved(revision, now)
	metrics.ObserveSave(metrics.ResultSuccess)
	s.logger.Info("auto-save completed",
		slog.String("resume_id", res.ID),
		slog.Uint64("revision", revision),
		slog.Duration("latency", now.Sub(start)),
	)
	return nil
}
