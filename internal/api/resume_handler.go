package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumeEditor/internal/api/middleware"
	"resumeEditor/internal/resume"
)

// ResumeStore 是 ResumeHandler 需要的持久化能力，由 database.ResumeStore 实现。
type ResumeStore interface {
	Create(ctx context.Context, r *resume.Resume) (*resume.Resume, error)
	List(ctx context.Context, ownerID string, q resume.ListQuery) (*resume.ResumeList, error)
	Get(ctx context.Context, ownerID, id string) (*resume.Detail, error)
	UpdateFull(ctx context.Context, ownerID, id string, u resume.FullUpdate) (*resume.Resume, error)
	UpdateMetadata(ctx context.Context, ownerID, id string, m resume.MetadataUpdate) (*resume.Resume, error)
	ReplaceSections(ctx context.Context, ownerID, id string, sections []resume.Section) (*resume.Resume, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// ResumeHandler 负责处理与简历相关的 API 请求。
type ResumeHandler struct {
	store   ResumeStore
	linkURL func(slug string) string

	afterDelete func(ctx context.Context, ownerID, id string)
}

// NewResumeHandler 构造 ResumeHandler；linkURL 用于给详情中的分享链接补全地址。
func NewResumeHandler(store ResumeStore, linkURL func(slug string) string) *ResumeHandler {
	return &ResumeHandler{store: store, linkURL: linkURL}
}

type createResumeRequest struct {
	Title       string              `json:"title"`
	TemplateID  string              `json:"templateId"`
	StyleConfig *resume.StyleConfig `json:"styleConfig"`
	Sections    []resume.Section    `json:"sections"`
	IsPublic    bool                `json:"isPublic"`
}

type replaceSectionsRequest struct {
	Sections []resume.Section `json:"sections"`
}

// bindOptionalJSON 允许空请求体。
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// CreateResume 新建简历；未提供 sections 时使用个人信息与简介两个默认 Section。
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req createResumeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	r := resume.NewResume(userID, strings.TrimSpace(req.Title))
	if req.TemplateID != "" {
		r.TemplateID = req.TemplateID
	}
	if req.StyleConfig != nil {
		r.StyleConfig = req.StyleConfig.Clone()
	}
	if req.Sections != nil {
		r.Sections = resume.CloneSections(req.Sections)
		for i := range r.Sections {
			r.Sections[i].ResumeID = r.ID
		}
		resume.Renumber(r.Sections)
	}
	r.IsPublic = req.IsPublic

	created, err := h.store.Create(c.Request.Context(), r)
	if err != nil {
		RespondError(c, err)
		return
	}
	OK(c, http.StatusCreated, created)
}

// ListResumes 分页列出当前用户的简历。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var q resume.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, err.Error())
		return
	}
	list, err := h.store.List(c.Request.Context(), userID, q)
	if err != nil {
		RespondError(c, err)
		return
	}
	OK(c, http.StatusOK, list)
}

// GetResume 返回简历、Section 与分享链接。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	detail, err := h.store.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	for i := range detail.ShareLinks {
		detail.ShareLinks[i].URL = h.linkURL(detail.ShareLinks[i].Slug)
	}
	OK(c, http.StatusOK, detail)
}

// UpdateResume 整体替换简历（PUT）。
func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req resume.FullUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	updated, err := h.store.UpdateFull(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	OK(c, http.StatusOK, updated)
}

// PatchResume 只更新元信息（PATCH），空补丁视为非法请求。
func (h *ResumeHandler) PatchResume(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req resume.MetadataUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Empty() {
		BadRequest(c, "patch has no fields")
		return
	}
	updated, err := h.store.UpdateMetadata(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	OK(c, http.StatusOK, updated)
}

// ReplaceSections 以请求中的顺序替换全部 Section。
func (h *ResumeHandler) ReplaceSections(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req replaceSectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Sections == nil {
		req.Sections = []resume.Section{}
	}
	updated, err := h.store.ReplaceSections(c.Request.Context(), userID, c.Param("id"), req.Sections)
	if err != nil {
		RespondError(c, err)
		return
	}
	OK(c, http.StatusOK, updated)
}

// DeleteResume 删除简历及其 Section 与分享链接。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	if err := h.store.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	if h.afterDelete != nil {
		h.afterDelete(c.Request.Context(), userID, c.Param("id"))
	}
	OK(c, http.StatusOK, nil)
}

// OnDelete registers a hook run after a resume was deleted.
func (h *ResumeHandler) OnDelete(fn func(ctx context.Context, ownerID, id string)) {
	h.afterDelete = fn
}
