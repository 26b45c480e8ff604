// Package editor holds the in-memory resume document, its reducers and the
// dispatch pipeline that feeds history, style sync and the persistence stages.
package editor

import "resumeEditor/internal/resume"

// Action 是封闭的用户意图集合；只有本包内的类型可以实现它。
type Action interface {
	isAction()
}

// SetResume 加载（或以 nil 卸载）当前简历，初始化历史，不置脏。
type SetResume struct {
	Resume *resume.Resume
}

type UpdateTitle struct {
	Title string `json:"title"`
}

// UpdateStyleConfig 直接修改简历内嵌样式，同时镜像到样式状态。
type UpdateStyleConfig struct {
	Patch resume.StylePatch
}

type UpdateTemplate struct {
	TemplateID string `json:"templateId"`
}

type SetPublic struct {
	IsPublic bool `json:"isPublic"`
}

// AddSection 追加 Section；Index 非空时插入到该位置（越界时夹到末尾）。
// Section.ID 必须非空且唯一，否则为 no-op。
type AddSection struct {
	Section resume.Section
	Index   *int
}

type UpdateSection struct {
	ID    string
	Patch resume.SectionPatch
}

type DeleteSection struct {
	ID string `json:"id"`
}

// ReorderSections 按 splice 语义移动：先从 From 取出，再插入到删除后数组的 To 位置。
type ReorderSections struct {
	From int `json:"fromIndex"`
	To   int `json:"toIndex"`
}

type ToggleSectionVisibility struct {
	ID string `json:"id"`
}

type SetSections struct {
	Sections []resume.Section
}

// 以下动作作用于独立的样式状态，由样式同步阶段写回简历。

type SetStyle struct {
	Style resume.StyleConfig
}

type UpdateStyle struct {
	Patch resume.StylePatch
}

type ApplyTheme struct {
	Name string `json:"name"`
}

type ResetStyle struct{}

// Restore 由撤销/重做产生，只通知异步阶段，不能通过 Dispatch 生效。
type Restore struct {
	Redo  bool
	Label string
}

func (SetResume) isAction()               {}
func (UpdateTitle) isAction()             {}
func (UpdateStyleConfig) isAction()       {}
func (UpdateTemplate) isAction()          {}
func (SetPublic) isAction()               {}
func (AddSection) isAction()              {}
func (UpdateSection) isAction()           {}
func (DeleteSection) isAction()           {}
func (ReorderSections) isAction()         {}
func (ToggleSectionVisibility) isAction() {}
func (SetSections) isAction()             {}
func (SetStyle) isAction()                {}
func (UpdateStyle) isAction()             {}
func (ApplyTheme) isAction()              {}
func (ResetStyle) isAction()              {}
func (Restore) isAction()                 {}

// NewAddSection builds an AddSection for a fresh, empty section of type t.
func NewAddSection(t resume.SectionType) (AddSection, error) {
	s, err := resume.NewSection(t)
	if err != nil {
		return AddSection{}, err
	}
	return AddSection{Section: s}, nil
}

// tracksHistory 列出会被历史记录的动作。加载与恢复不在其中。
func tracksHistory(a Action) bool {
	switch a.(type) {
	case UpdateTitle, UpdateStyleConfig, UpdateTemplate, SetPublic,
		AddSection, UpdateSection, DeleteSection, ReorderSections, ToggleSectionVisibility, SetSections,
		SetStyle, UpdateStyle, ApplyTheme, ResetStyle:
		return true
	}
	return false
}

// syncsStyle 列出样式同步阶段响应的动作。
func syncsStyle(a Action) bool {
	switch a.(type) {
	case SetStyle, UpdateStyle, ApplyTheme, ResetStyle, UpdateStyleConfig:
		return true
	}
	return false
}
