// Package syncer contains the asynchronous persistence stages of an editing
// session: debounced auto-save, routed remote sync with an offline queue, and
// the client-side share link state.
package syncer

import (
	"context"
	"time"

	"resumeEditor/internal/resume"
)

// ResumeAPI 是同步阶段消费的持久化接口子集。
type ResumeAPI interface {
	UpdateResumeFull(ctx context.Context, id string, u resume.FullUpdate) (*resume.Resume, error)
	UpdateResumeMetadata(ctx context.Context, id string, u resume.MetadataUpdate) (*resume.Resume, error)
	ReplaceSections(ctx context.Context, id string, sections []resume.Section) (*resume.Resume, error)
}

// ShareAPI 是分享链接管理接口。
type ShareAPI interface {
	CreateShareLink(ctx context.Context, resumeID string, opts resume.ShareOptions) (*resume.ShareLink, error)
	ListShareLinks(ctx context.Context, resumeID string) ([]resume.ShareLink, error)
	DeactivateShareLink(ctx context.Context, shareID string) (*resume.ShareLink, error)
}

// Document 是阶段对编辑器 store 的读写需求，由 *editor.Editor 实现。
type Document interface {
	Resume() *resume.Resume
	Pending() (*resume.Resume, uint64, bool)
	MarkSaving()
	MarkSaved(revision uint64, at time.Time)
	MarkSaveFailed(err error)
	MarkError(err error)
}
