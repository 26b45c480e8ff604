package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"resumeEditor/internal/api/middleware"
	"resumeEditor/internal/resume"
	"resumeEditor/internal/storage"
	"resumeEditor/internal/tasks"
)

const (
	exportURLTTL    = 10 * time.Minute
	exportListLimit = 50
	exportTimeout   = 2 * time.Minute
)

// TaskEnqueuer 是 *asynq.Client 的子集。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ExportObjects 由 storage.Client 实现。
type ExportObjects interface {
	ListObjects(ctx context.Context, prefix string, limit int) ([]storage.ObjectMeta, error)
	GeneratePresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

// ExportHandler 受理导出请求并列出已生成的导出文件。
type ExportHandler struct {
	resumes  ResumeStore
	queue    TaskEnqueuer
	objects  ExportObjects
	maxRetry int
}

func NewExportHandler(resumes ResumeStore, queue TaskEnqueuer, objects ExportObjects, maxRetry int) *ExportHandler {
	return &ExportHandler{resumes: resumes, queue: queue, objects: objects, maxRetry: maxRetry}
}

// RequestExport 为当前用户的简历排队一次 JSON 导出，完成后经通知 WebSocket 推送。
func (h *ExportHandler) RequestExport(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.resumes.Get(ctx, userID, id); err != nil {
		RespondError(c, err)
		return
	}

	task, err := tasks.NewResumeExportTask(tasks.ResumeExportPayload{
		ResumeID:      id,
		UserID:        userID,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	info, err := h.queue.EnqueueContext(ctx, task, asynq.MaxRetry(h.maxRetry), asynq.Timeout(exportTimeout))
	if err != nil {
		RespondError(c, err)
		return
	}
	OK(c, http.StatusAccepted, resume.ExportJob{TaskID: info.ID, Queue: info.Queue})
}

// ListExports 返回最新的导出文件及其限时下载地址。
func (h *ExportHandler) ListExports(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.resumes.Get(ctx, userID, id); err != nil {
		RespondError(c, err)
		return
	}

	objects, err := h.objects.ListObjects(ctx, tasks.ExportPrefix(userID, id), exportListLimit)
	if err != nil {
		RespondError(c, err)
		return
	}
	files := make([]resume.ExportFile, 0, len(objects))
	for _, obj := range objects {
		url, err := h.objects.GeneratePresignedURL(ctx, obj.Key, exportURLTTL)
		if err != nil {
			middleware.LoggerFromContext(c).Error("presign export failed", slog.String("object_key", obj.Key), slog.Any("error", err))
			continue
		}
		files = append(files, resume.ExportFile{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified, URL: url})
	}
	OK(c, http.StatusOK, files)
}

// PurgeExports 在简历删除后清理其导出文件，失败只记录日志。
func (h *ExportHandler) PurgeExports(ctx context.Context, ownerID, id string) {
	if err := h.objects.DeletePrefix(ctx, tasks.ExportPrefix(ownerID, id)); err != nil {
		slog.Default().Warn("purge exports failed",
			slog.String("resume_id", id),
			slog.Any("error", err),
		)
	}
}
