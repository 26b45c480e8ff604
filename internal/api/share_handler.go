package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resumeEditor/internal/api/middleware"
	"resumeEditor/internal/errcode"
	"resumeEditor/internal/resume"
)

// SharePasswordHeader 携带受密码保护链接的访问密码。
const SharePasswordHeader = "X-Share-Password"

const publicRateWindow = time.Minute

// ShareService 由 share.Service 实现。
type ShareService interface {
	Create(ctx context.Context, ownerID, resumeID string, opts resume.ShareOptions) (*resume.ShareLink, error)
	List(ctx context.Context, ownerID, resumeID string) ([]resume.ShareLink, error)
	Deactivate(ctx context.Context, ownerID, shareID string) (*resume.ShareLink, error)
	Resolve(ctx context.Context, slug, password string) (*resume.PublicView, error)
}

// ShareHandler 处理分享链接管理与公开访问。
type ShareHandler struct {
	service ShareService
	limiter *fixedWindow
}

// NewShareHandler 构造处理器；counter 为 nil 时公开访问不限流。
func NewShareHandler(service ShareService, counter RateCounter, perMinute int) *ShareHandler {
	return &ShareHandler{
		service: service,
		limiter: newFixedWindow(counter, "share:public:", perMinute, publicRateWindow),
	}
}

// CreateShare 为简历创建分享链接，请求体可选。
func (h *ShareHandler) CreateShare(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var opts resume.ShareOptions
	if err := bindOptionalJSON(c, &opts); err != nil {
		BadRequest(c, err.Error())
		return
	}
	link, err := h.service.Create(c.Request.Context(), userID, c.Param("id"), opts)
	if err != nil {
		RespondError(c, err)
		return
	}
	OK(c, http.StatusCreated, link)
}

// ListShares 列出简历的全部分享链接（含已停用）。
func (h *ShareHandler) ListShares(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	links, err := h.service.List(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	OK(c, http.StatusOK, links)
}

func (h *ShareHandler) DeactivateShare(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	link, err := h.service.Deactivate(c.Request.Context(), userID, c.Param("shareId"))
	if err != nil {
		RespondError(c, err)
		return
	}
	OK(c, http.StatusOK, link)
}

// ResolvePublic 是无需登录的公开访问入口，按客户端 IP 每分钟限流。
func (h *ShareHandler) ResolvePublic(c *gin.Context) {
	if h.limited(c) {
		Fail(c, errcode.RateLimited, "too many requests")
		return
	}

	view, err := h.service.Resolve(c.Request.Context(), c.Param("slug"), c.GetHeader(SharePasswordHeader))
	if err != nil {
		RespondError(c, err)
		return
	}
	OK(c, http.StatusOK, view)
}

// limited 在 Redis 不可用时放行请求，只记录告警。
func (h *ShareHandler) limited(c *gin.Context) bool {
	if h.limiter == nil {
		return false
	}
	ok, remaining, err := h.limiter.Allow(c.Request.Context(), c.ClientIP())
	if err != nil {
		middleware.LoggerFromContext(c).Warn("public rate limit unavailable", slog.Any("error", err))
	}
	c.Header("X-RateLimit-Limit", strconv.FormatInt(h.limiter.limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	return !ok
}
