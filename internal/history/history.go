// Package history implements the bounded undo/redo engine over document snapshots.
//
// State layout:
//
//	past (oldest first) ── present ── future (nearest first)
//
// Record is the only transition that clears future. The engine is not safe for
// concurrent use; the editor store serialises access.
package history

import (
	"time"

	"resumeEditor/internal/resume"
)

// DefaultLimit bounds both the past and future stacks.
const DefaultLimit = 50

// Snapshot 是某一时刻文档的不可变深拷贝。
type Snapshot struct {
	Resume *resume.Resume
	Style  resume.StyleConfig
	// Theme 是样式来自的预设名，自定义样式时为空。
	Theme string
	Label string
	At    time.Time
}

// NewSnapshot deep-copies the given state.
func NewSnapshot(r *resume.Resume, style resume.StyleConfig, label string, at time.Time) Snapshot {
	return Snapshot{
		Resume: r.Clone(),
		Style:  style.Clone(),
		Label:  label,
		At:     at,
	}
}

// Clone returns an independent copy so callers can't reach into engine storage.
func (s Snapshot) Clone() Snapshot {
	s.Resume = s.Resume.Clone()
	s.Style = s.Style.Clone()
	return s
}

// Engine 维护 past/present/future 三个槽位。
type Engine struct {
	past    []Snapshot
	present *Snapshot
	future  []Snapshot
	limit   int
}

// New returns an engine bounded by limit; limit <= 0 uses DefaultLimit.
func New(limit int) *Engine {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Engine{limit: limit}
}

// Initialize 用刚加载完成的状态作为 present，并清空两侧栈。
func (e *Engine) Initialize(s Snapshot) {
	e.past = nil
	e.future = nil
	e.present = &s
}

// Record 在一次允许记录的变更提交后调用。
func (e *Engine) Record(s Snapshot) {
	if e.present != nil {
		e.pushPast(*e.present)
	}
	e.present = &s
	e.future = nil
}

// Undo moves present onto future and restores the top of past.
// The returned snapshot is what the document must be reset to.
func (e *Engine) Undo() (Snapshot, bool) {
	if len(e.past) == 0 {
		return Snapshot{}, false
	}
	if e.present != nil {
		e.future = append([]Snapshot{*e.present}, e.future...)
		if len(e.future) > e.limit {
			e.future = e.future[:e.limit]
		}
	}
	last := len(e.past) - 1
	restored := e.past[last]
	e.past[last] = Snapshot{}
	e.past = e.past[:last]
	e.present = &restored
	return restored.Clone(), true
}

// Redo is the mirror of Undo.
func (e *Engine) Redo() (Snapshot, bool) {
	if len(e.future) == 0 {
		return Snapshot{}, false
	}
	if e.present != nil {
		e.pushPast(*e.present)
	}
	restored := e.future[0]
	e.future[0] = Snapshot{}
	e.future = e.future[1:]
	e.present = &restored
	return restored.Clone(), true
}

// Clear drops all history including present.
func (e *Engine) Clear() {
	e.past = nil
	e.present = nil
	e.future = nil
}

func (e *Engine) CanUndo() bool { return len(e.past) > 0 }
func (e *Engine) CanRedo() bool { return len(e.future) > 0 }

// Present 返回当前快照的副本。
func (e *Engine) Present() (Snapshot, bool) {
	if e.present == nil {
		return Snapshot{}, false
	}
	return e.present.Clone(), true
}

// LastAction 返回当前快照的动作描述，用于“上一步操作”提示。
func (e *Engine) LastAction() string {
	if e.present == nil {
		return ""
	}
	return e.present.Label
}

// Depth reports the sizes of past and future.
func (e *Engine) Depth() (past, future int) {
	return len(e.past), len(e.future)
}

func (e *Engine) pushPast(s Snapshot) {
	e.past = append(e.past, s)
	if over := len(e.past) - e.limit; over > 0 {
		clear(e.past[:over])
		e.past = e.past[over:]
	}
}
