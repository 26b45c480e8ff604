package editor

import (
	"log/slog"
	"sync"
	"time"

	"resumeEditor/internal/history"
	"resumeEditor/internal/resume"
)

// Stage 在一次变更提交后被通知。Observe 在 store 锁之外同步调用，
// 需要 I/O 的阶段必须自行转为异步。
type Stage interface {
	Observe(a Action)
}

// StageFunc adapts a function to Stage.
type StageFunc func(a Action)

func (f StageFunc) Observe(a Action) { f(a) }

// Status 是界面需要随时观察的保存状态。
type Status struct {
	Loaded            bool
	IsSaving          bool
	HasUnsavedChanges bool
	LastSaved         time.Time
	Error             string
	CanUndo           bool
	CanRedo           bool
	LastAction        string
}

// State 是 store 的只读快照。
type State struct {
	Document DocumentState
	Style    StyleState
}

// Editor 是单个编辑会话的 store：文档切片、样式切片、历史与阶段流水线。
// 多个 Editor 实例互不共享可变状态。
type Editor struct {
	mu      sync.Mutex
	doc     DocumentState
	style   StyleState
	history *history.Engine
	stages  []Stage
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithHistoryLimit bounds the undo/redo stacks.
func WithHistoryLimit(n int) Option {
	return func(e *Editor) { e.history = history.New(n) }
}

// WithClock overrides the time source used for snapshots and save timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// New 构造空的编辑器，尚未加载任何简历。
func New(opts ...Option) *Editor {
	e := &Editor{
		style:   StyleState{Current: resume.DefaultStyle()},
		history: history.New(history.DefaultLimit),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Use appends stages to the pipeline. Stages are notified in registration order.
func (e *Editor) Use(stages ...Stage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stages = append(e.stages, stages...)
}

// Dispatch 是用户变更入口：reducer → 历史记录 → 样式同步 → 通知异步阶段。
// 返回值表示状态是否发生变化；未变化的动作不会通知任何阶段。
func (e *Editor) Dispatch(a Action) bool {
	if _, ok := a.(Restore); ok || a == nil {
		return false
	}

	e.mu.Lock()
	doc, docChanged := ReduceDocument(e.doc, a)
	style, styleChanged := ReduceStyle(e.style, a)
	if !docChanged && !styleChanged {
		e.mu.Unlock()
		return false
	}
	e.doc, e.style = doc, style

	// 样式同步必须在异步阶段读取 resume.StyleConfig 之前完成。
	if syncsStyle(a) {
		e.doc = syncStyle(e.doc, e.style)
	}

	switch a := a.(type) {
	case SetResume:
		if a.Resume == nil {
			e.history.Clear()
		} else {
			e.history.Initialize(e.snapshotLocked(Describe(a)))
		}
	default:
		if tracksHistory(a) && e.doc.Resume != nil {
			e.history.Record(e.snapshotLocked(Describe(a)))
		}
	}
	stages := e.stagesLocked()
	e.mu.Unlock()

	for _, s := range stages {
		s.Observe(a)
	}
	return true
}

// Undo restores the previous snapshot through the apply entry point, which
// never reaches history recording.
func (e *Editor) Undo() bool {
	return e.restore(false)
}

// Redo re-applies the next snapshot.
func (e *Editor) Redo() bool {
	return e.restore(true)
}

func (e *Editor) restore(redo bool) bool {
	e.mu.Lock()
	label := e.history.LastAction()
	var (
		snap history.Snapshot
		ok   bool
	)
	if redo {
		snap, ok = e.history.Redo()
		label = snap.Label
	} else {
		snap, ok = e.history.Undo()
	}
	if !ok || snap.Resume == nil {
		e.mu.Unlock()
		return false
	}
	e.applyLocked(snap)
	stages := e.stagesLocked()
	e.mu.Unlock()

	e.logger.Debug("history restored", slog.Bool("redo", redo), slog.String("action", label))

	ev := Restore{Redo: redo, Label: label}
	for _, s := range stages {
		s.Observe(ev)
	}
	return true
}

// applyLocked 直接写入快照内容，文档与样式切片一并恢复，因此无需样式同步。
func (e *Editor) applyLocked(s history.Snapshot) {
	e.doc.Resume = s.Resume
	e.style = StyleState{Current: s.Style, Theme: s.Theme}
	e.doc.Dirty = true
	e.doc.Revision++
}

func (e *Editor) snapshotLocked(label string) history.Snapshot {
	snap := history.NewSnapshot(e.doc.Resume, e.style.Current, label, e.now())
	snap.Theme = e.style.Theme
	return snap
}

func (e *Editor) stagesLocked() []Stage {
	out := make([]Stage, len(e.stages))
	copy(out, e.stages)
	return out
}

// State returns a deep copy of the store.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc := e.doc
	doc.Resume = e.doc.Resume.Clone()
	return State{
		Document: doc,
		Style:    StyleState{Current: e.style.Current.Clone(), Theme: e.style.Theme},
	}
}

// Resume returns a copy of the current resume, or nil when none is loaded.
func (e *Editor) Resume() *resume.Resume {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Resume.Clone()
}

// Status 返回界面渲染所需的状态。
func (e *Editor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Loaded:            e.doc.Resume != nil,
		IsSaving:          e.doc.Saving,
		HasUnsavedChanges: e.doc.Dirty,
		LastSaved:         e.doc.LastSaved,
		Error:             e.doc.Err,
		CanUndo:           e.history.CanUndo(),
		CanRedo:           e.history.CanRedo(),
		LastAction:        e.history.LastAction(),
	}
}

// Pending 原子地返回待保存的简历副本、修订号与脏标记。
func (e *Editor) Pending() (*resume.Resume, uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Resume.Clone(), e.doc.Revision, e.doc.Dirty
}

// Revision returns the current document revision.
func (e *Editor) Revision() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Revision
}

// MarkSaving 标记保存进行中。
func (e *Editor) MarkSaving() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc.Saving = true
}

// MarkSaved 记录保存成功。只有保存期间没有新的编辑时才清除脏标记。
func (e *Editor) MarkSaved(revision uint64, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc.Saving = false
	e.doc.LastSaved = at
	e.doc.Err = ""
	if e.doc.Revision == revision {
		e.doc.Dirty = false
	}
}

// MarkSaveFailed 记录保存失败，脏标记保持，等待下一次编辑触发重试。
func (e *Editor) MarkSaveFailed(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc.Saving = false
	if err != nil {
		e.doc.Err = err.Error()
	}
}

// MarkError surfaces a non-save failure (sync, share) to the status.
func (e *Editor) MarkError(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc.Err = err.Error()
}

// ClearError resets the error field.
func (e *Editor) ClearError() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc.Err = ""
}
