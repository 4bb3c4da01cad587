package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/logger"
	"github.com/buildlab-academy/internal/provider"
	"github.com/buildlab-academy/internal/queue"
	"github.com/buildlab-academy/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskVerificationApprovedEmail, c.handleVerificationApprovedEmail)
	mux.HandleFunc(queue.TaskNewsletterWelcomeEmail, c.handleNewsletterWelcomeEmail)
	mux.HandleFunc(queue.TaskNewsletterBroadcastBatch, c.handleNewsletterBroadcastBatch)
}

func (c *Consumer) handleVerificationApprovedEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_approved_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.VerificationApprovedEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_approved_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.VerificationID == 0 {
		logger.Debugw("worker_approved_email_skip_invalid_payload")
		return nil
	}
	verification, err := c.StudentVerificationRepo.GetByID(payload.VerificationID)
	if err != nil {
		logger.Warnw("worker_approved_email_fetch_failed", "verification_id", payload.VerificationID, "error", err)
		return err
	}
	// 任务执行前可能已被重置或驳回
	if verification == nil || verification.Status != constants.StudentVerificationStatusVerified || verification.Code() == "" {
		logger.Debugw("worker_approved_email_skip_not_verified", "verification_id", payload.VerificationID)
		return nil
	}
	expiresAt := time.Time{}
	if verification.ExpiresAt != nil {
		expiresAt = *verification.ExpiresAt
	}
	err = c.EmailService.SendVerificationApproved(strings.TrimSpace(verification.Email), service.VerificationApprovedEmail{
		FullName:     verification.FullName,
		DiscountCode: verification.Code(),
		Percentage:   verification.DiscountPercentage,
		ExpiresAt:    expiresAt,
	}, payload.Locale)
	return finishEmailTask("worker_approved_email", err, "verification_id", verification.ID)
}

func (c *Consumer) handleNewsletterWelcomeEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_newsletter_welcome_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NewsletterWelcomeEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_newsletter_welcome_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.SubscriptionID == 0 {
		logger.Debugw("worker_newsletter_welcome_skip_invalid_payload")
		return nil
	}
	err := c.NewsletterService.SendWelcome(payload.SubscriptionID, payload.Locale)
	return finishEmailTask("worker_newsletter_welcome", err, "subscription_id", payload.SubscriptionID)
}

func (c *Consumer) handleNewsletterBroadcastBatch(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_newsletter_broadcast_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NewsletterBroadcastBatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_newsletter_broadcast_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if len(payload.Recipients) == 0 {
		return nil
	}
	sent, failed := c.NewsletterService.SendBroadcastBatch(ctx, payload)
	logger.Infow("worker_newsletter_broadcast_batch_done",
		"broadcast_id", payload.BroadcastID,
		"sent", sent,
		"failed", failed,
	)
	return nil
}

// finishEmailTask 邮件未启用或收件人被拒时不再重试，其余错误交给 asynq 重试
func finishEmailTask(event string, err error, kv ...interface{}) error {
	if err == nil {
		return nil
	}
	fields := append(kv, "error", err)
	switch {
	case errors.Is(err, service.ErrEmailServiceDisabled), errors.Is(err, service.ErrEmailServiceNotConfigured):
		logger.Debugw(event+"_skip_email_disabled", fields...)
		return nil
	case errors.Is(err, service.ErrEmailRecipientRejected), errors.Is(err, service.ErrInvalidEmail):
		logger.Warnw(event+"_recipient_rejected", fields...)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	default:
		logger.Warnw(event+"_send_failed", fields...)
		return err
	}
}
