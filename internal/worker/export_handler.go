// Package worker 消费后台任务：把简历导出为 JSON 文档写入对象存储，并通知用户。
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"

	"resumeEditor/internal/errcode"
	"resumeEditor/internal/metrics"
	"resumeEditor/internal/resume"
	"resumeEditor/internal/tasks"
)

// ExportFormatVersion 写入每份导出文档，导入方据此判断结构。
const ExportFormatVersion = 1

// ResumeReader 由 database.ResumeStore 实现。
type ResumeReader interface {
	Get(ctx context.Context, ownerID, id string) (*resume.Detail, error)
}

// ObjectWriter 由 storage.Client 实现。
type ObjectWriter interface {
	UploadFile(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
}

// ExportDocument 是导出文件的内容，不包含分享链接。
type ExportDocument struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exportedAt"`
	Resume     *resume.Resume `json:"resume"`
}

// ExportHandler 负责消费简历导出任务。
type ExportHandler struct {
	resumes   ResumeReader
	objects   ObjectWriter
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewExportHandler(resumes ResumeReader, objects ObjectWriter, publisher Publisher, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		resumes:   resumes,
		objects:   objects,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessTask 实现 asynq.Handler。简历已被删除时直接结束任务，不再重试。
func (h *ExportHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	var payload tasks.ResumeExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("resume_id", payload.ResumeID),
		slog.String("user_id", payload.UserID),
	)
	log.Info("starting resume export")

	defer func() {
		result := metrics.ResultSuccess
		if retErr != nil {
			result = metrics.ResultFailure
		}
		metrics.ObserveExport(result)

		if retErr == nil || !isFinalAttempt(ctx) {
			return
		}
		notify := ExportNotifyMessage{
			Status:        StatusFailed,
			ResumeID:      payload.ResumeID,
			CorrelationID: payload.CorrelationID,
			Error:         errcode.Internal,
			Message:       retErr.Error(),
		}
		if err := publish(ctx, h.publisher, payload.UserID, notify); err != nil {
			log.Error("publish export failure notification failed", slog.Any("error", err))
		}
	}()

	detail, err := h.resumes.Get(ctx, payload.UserID, payload.ResumeID)
	if err != nil {
		if errors.Is(err, resume.ErrNotFound) {
			log.Warn("resume not found, skipping export")
			return nil
		}
		log.Error("load resume failed", slog.Any("error", err))
		return err
	}

	at := h.now()
	body, err := json.MarshalIndent(ExportDocument{
		Version:    ExportFormatVersion,
		ExportedAt: at.UTC(),
		Resume:     &detail.Resume,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	key := tasks.ExportObjectKey(payload.UserID, payload.ResumeID, at)
	if _, err := h.objects.UploadFile(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		log.Error("upload export failed", slog.Any("error", err))
		return err
	}

	notify := ExportNotifyMessage{
		Status:        StatusCompleted,
		ResumeID:      payload.ResumeID,
		CorrelationID: payload.CorrelationID,
		ObjectKey:     key,
	}
	// 文件已经写入，通知失败不再重试整个任务。
	if err := publish(ctx, h.publisher, payload.UserID, notify); err != nil {
		log.Warn("publish export notification failed", slog.Any("error", err))
	}

	log.Info("resume export completed", slog.String("object_key", key), slog.Int("bytes", len(body)))
	return nil
}

func isFinalAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
