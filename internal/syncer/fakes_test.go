package syncer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"resumeEditor/internal/resume"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeClock 只在 Advance 时触发到期的定时器，回调在调用方 goroutine 中同步执行。
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock *fakeClock
	at    time.Time
	f     func()
	done  bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.done
	t.done = true
	return was
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	end := c.now.Add(d)
	for {
		var due []*fakeTimer
		for _, t := range c.timers {
			if !t.done && !t.at.After(end) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			break
		}
		sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
		next := due[0]
		next.done = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = end
	c.mu.Unlock()
}

// armed counts timers that have not fired or been stopped.
func (c *fakeClock) armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

type apiCall struct {
	Kind  Kind
	ID    string
	Title string
	At    time.Time
}

var errOffline = errors.New("connection refused")

// fakeAPI 记录调用；failNext 排队的错误按调用顺序逐个返回。
type fakeAPI struct {
	mu       sync.Mutex
	clock    Clock
	calls    []apiCall
	failures []error

	// block 非 nil 时每次调用在返回前等待它被关闭；entered 在调用进入时收到信号。
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeAPI) record(kind Kind, id, title string) error {
	f.mu.Lock()
	at := time.Time{}
	if f.clock != nil {
		at = f.clock.Now()
	}
	f.calls = append(f.calls, apiCall{Kind: kind, ID: id, Title: title, At: at})
	var err error
	if len(f.failures) > 0 {
		err = f.failures[0]
		f.failures = f.failures[1:]
	}
	block, entered := f.block, f.entered
	f.mu.Unlock()
	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeAPI) failNext(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, errs...)
}

func (f *fakeAPI) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]apiCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeAPI) UpdateResumeFull(_ context.Context, id string, u resume.FullUpdate) (*resume.Resume, error) {
	if err := f.record(KindFull, id, u.Title); err != nil {
		return nil, err
	}
	return &resume.Resume{ID: id, Title: u.Title}, nil
}

func (f *fakeAPI) UpdateResumeMetadata(_ context.Context, id string, u resume.MetadataUpdate) (*resume.Resume, error) {
	title := ""
	if u.Title != nil {
		title = *u.Title
	}
	if err := f.record(KindMetadata, id, title); err != nil {
		return nil, err
	}
	return &resume.Resume{ID: id, Title: title}, nil
}

func (f *fakeAPI) ReplaceSections(_ context.Context, id string, _ []resume.Section) (*resume.Resume, error) {
	if err := f.record(KindSections, id, ""); err != nil {
		return nil, err
	}
	return &resume.Resume{ID: id}, nil
}
