package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"resumeEditor/internal/api/middleware"
)

// Deps 汇总注册路由所需的依赖。
type Deps struct {
	Resumes ResumeStore
	Shares  ShareService
	Auth    middleware.TokenValidator
	// LinkURL 拼接分享地址，通常是 share.Service.LinkURL。
	LinkURL func(slug string) string

	// RateCounter 为 nil 时公开访问不限流。
	RateCounter     RateCounter
	PublicRateLimit int

	// Queue 与 Exports 同时配置时才注册导出路由。
	Queue         TaskEnqueuer
	Exports       ExportObjects
	ExportRetries int

	// Notifier 为 nil 时不提供 /v1/ws。
	Notifier       Subscriber
	AllowedOrigins []string
	Logger         *slog.Logger
}

// RegisterRoutes 注册 /v1 下的简历、分享、导出与通知路由。
func RegisterRoutes(router *gin.Engine, deps Deps) {
	resumeHandler := NewResumeHandler(deps.Resumes, deps.LinkURL)
	shareHandler := NewShareHandler(deps.Shares, deps.RateCounter, deps.PublicRateLimit)
	authMiddleware := middleware.AuthMiddleware(deps.Auth)
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/public/:slug", shareHandler.ResolvePublic)

		resumeGroup := v1.Group("/resumes")
		resumeGroup.Use(authMiddleware)
		{
			resumeGroup.POST("", resumeHandler.CreateResume)
			resumeGroup.GET("", resumeHandler.ListResumes)
			resumeGroup.GET("/:id", resumeHandler.GetResume)
			resumeGroup.PUT("/:id", resumeHandler.UpdateResume)
			resumeGroup.PATCH("/:id", resumeHandler.PatchResume)
			resumeGroup.DELETE("/:id", resumeHandler.DeleteResume)
			resumeGroup.PUT("/:id/sections", resumeHandler.ReplaceSections)
			resumeGroup.POST("/:id/share", shareHandler.CreateShare)
			resumeGroup.GET("/:id/share", shareHandler.ListShares)

			if deps.Queue != nil && deps.Exports != nil {
				exportHandler := NewExportHandler(deps.Resumes, deps.Queue, deps.Exports, deps.ExportRetries)
				resumeHandler.OnDelete(exportHandler.PurgeExports)
				resumeGroup.POST("/:id/export", exportHandler.RequestExport)
				resumeGroup.GET("/:id/exports", exportHandler.ListExports)
			}
		}

		v1.DELETE("/share/:shareId", authMiddleware, shareHandler.DeactivateShare)

		if deps.Notifier != nil {
			notifyHandler := NewNotifyHandler(deps.Notifier, deps.Auth, logger, deps.AllowedOrigins)
			v1.GET("/ws", notifyHandler.HandleConnection)
		}
	}
}
