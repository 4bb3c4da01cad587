package queue

import (
	"encoding/json"

	"github.com/buildlab-academy/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskVerificationApprovedEmail 认证通过通知邮件
	TaskVerificationApprovedEmail = constants.TaskVerificationApprovedEmail
	// TaskNewsletterWelcomeEmail 订阅欢迎邮件
	TaskNewsletterWelcomeEmail = constants.TaskNewsletterWelcomeEmail
	// TaskNewsletterBroadcastBatch 群发批次
	TaskNewsletterBroadcastBatch = constants.TaskNewsletterBroadcastBatch
)

// VerificationApprovedEmailPayload 认证通过邮件载荷，只携带 ID，发送时回查最新数据
type VerificationApprovedEmailPayload struct {
	VerificationID uint   `json:"verification_id"`
	Locale         string `json:"locale,omitempty"`
}

// NewsletterWelcomeEmailPayload 订阅欢迎邮件载荷
type NewsletterWelcomeEmailPayload struct {
	SubscriptionID uint   `json:"subscription_id"`
	Locale         string `json:"locale,omitempty"`
}

// NewsletterBroadcastBatchPayload 群发批次载荷
type NewsletterBroadcastBatchPayload struct {
	BroadcastID string   `json:"broadcast_id"`
	Subject     string   `json:"subject"`
	Content     string   `json:"content"`
	Recipients  []string `json:"recipients"`
}

// NewVerificationApprovedEmailTask 创建认证通过邮件任务
func NewVerificationApprovedEmailTask(payload VerificationApprovedEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskVerificationApprovedEmail, payload)
}

// NewNewsletterWelcomeEmailTask 创建欢迎邮件任务
func NewNewsletterWelcomeEmailTask(payload NewsletterWelcomeEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskNewsletterWelcomeEmail, payload)
}

// NewNewsletterBroadcastBatchTask 创建群发批次任务
func NewNewsletterBroadcastBatchTask(payload NewsletterBroadcastBatchPayload) (*asynq.Task, error) {
	return newJSONTask(TaskNewsletterBroadcastBatch, payload)
}

func newJSONTask(taskType string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body), nil
}
