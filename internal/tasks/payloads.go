package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeResumeExport = "resume:export"
)

// ResumeExportPayload 描述导出一份简历所需的最小信息。
type ResumeExportPayload struct {
	ResumeID      string `json:"resume_id"`
	UserID        string `json:"user_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewResumeExportTask 构造一个新的简历导出任务。
func NewResumeExportTask(p ResumeExportPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeResumeExport, payload), nil
}

// ExportPrefix 是某份简历全部导出对象的公共前缀。
func ExportPrefix(userID, resumeID string) string {
	return fmt.Sprintf("exports/%s/%s/", userID, resumeID)
}

// ExportObjectKey 按导出时间命名对象，同一前缀下按 key 排序即按时间排序。
func ExportObjectKey(userID, resumeID string, at time.Time) string {
	return ExportPrefix(userID, resumeID) + at.UTC().Format("20060102T150405.000Z") + ".json"
}

// NotifyChannel 是用户通知在 Redis Pub/Sub 上的频道名。
func NotifyChannel(userID string) string {
	return "user_notify:" + userID
}
