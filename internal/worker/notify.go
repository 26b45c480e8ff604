package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"resumeEditor/internal/errcode"
	"resumeEditor/internal/tasks"
)

// 导出状态取值。
const (
	StatusCompleted = "completed"
	StatusFailed    = "error"
)

// ExportNotifyMessage 通过 Redis Pub/Sub 转发给已连接的通知 WebSocket。
type ExportNotifyMessage struct {
	Type          string       `json:"type"`
	Status        string       `json:"status"`
	ResumeID      string       `json:"resumeId"`
	CorrelationID string       `json:"correlationId"`
	ObjectKey     string       `json:"objectKey,omitempty"`
	Error         errcode.Code `json:"error,omitempty"`
	Message       string       `json:"message,omitempty"`
}

// Publisher 是 *redis.Client 的子集。
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

func publish(ctx context.Context, p Publisher, userID string, msg ExportNotifyMessage) error {
	msg.Type = tasks.TypeResumeExport
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := tasks.NotifyChannel(userID)
	if err := p.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish notification to %q: %w", channel, err)
	}
	return nil
}
