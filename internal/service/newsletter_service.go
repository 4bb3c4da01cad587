package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/i18n"
	"github.com/buildlab-academy/internal/logger"
	"github.com/buildlab-academy/internal/models"
	"github.com/buildlab-academy/internal/queue"
	"github.com/buildlab-academy/internal/repository"

	"github.com/oklog/ulid/v2"
)

const (
	newsletterRecentLimit   = 10
	defaultBroadcastBatch   = 50
	newsletterUnsubscribeAt = "/api/v1/public/newsletter/unsubscribe"
)

// NewsletterService 邮件订阅
type NewsletterService struct {
	repo           repository.NewsletterRepository
	emailService   *EmailService
	queueClient    *queue.Client
	publicURL      string
	defaultSource  string
	broadcastBatch int
	now            func() time.Time
}

// NewNewsletterService 创建订阅服务
func NewNewsletterService(repo repository.NewsletterRepository, emailService *EmailService, queueClient *queue.Client, publicURL, defaultSource string, broadcastBatch int) *NewsletterService {
	if strings.TrimSpace(defaultSource) == "" {
		defaultSource = constants.NewsletterSourceWebsite
	}
	if broadcastBatch <= 0 {
		broadcastBatch = defaultBroadcastBatch
	}
	return &NewsletterService{
		repo:           repo,
		emailService:   emailService,
		queueClient:    queueClient,
		publicURL:      strings.TrimRight(strings.TrimSpace(publicURL), "/"),
		defaultSource:  defaultSource,
		broadcastBatch: broadcastBatch,
		now:            time.Now,
	}
}

// SubscribeResult 订阅结果
type SubscribeResult struct {
	Email       string `json:"email"`
	Reactivated bool   `json:"reactivated"`
	Message     string `json:"message"`
}

// Subscribe 订阅；已退订的邮箱重新启用，已订阅返回冲突
func (s *NewsletterService) Subscribe(email, source, locale string) (*SubscribeResult, error) {
	email = NormalizeEmail(email)
	if !IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = s.defaultSource
	}

	existing, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if existing != nil {
		if existing.IsActive {
			return nil, ErrNewsletterAlreadySubscribed
		}
		existing.IsActive = true
		existing.SubscribedAt = now
		existing.UnsubscribedAt = nil
		existing.Source = source
		if err := s.repo.Update(existing); err != nil {
			return nil, err
		}
		logger.Infow("newsletter_reactivated", "subscription_id", existing.ID)
		return &SubscribeResult{Email: email, Reactivated: true, Message: i18n.T(locale, "newsletter.reactivated")}, nil
	}

	sub := &models.NewsletterSubscription{
		Email:            email,
		IsActive:         true,
		Source:           source,
		UnsubscribeToken: strings.ToLower(ulid.Make().String()),
		SubscribedAt:     now,
	}
	if err := s.repo.Create(sub); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNewsletterAlreadySubscribed
		}
		return nil, err
	}
	logger.Infow("newsletter_subscribed", "subscription_id", sub.ID, "source", source)
	if err := s.queueClient.EnqueueNewsletterWelcomeEmail(queue.NewsletterWelcomeEmailPayload{
		SubscriptionID: sub.ID,
		Locale:         locale,
	}); err != nil {
		logger.Warnw("newsletter_welcome_enqueue_failed", "subscription_id", sub.ID, "error", err)
	}
	return &SubscribeResult{Email: email, Message: i18n.T(locale, "newsletter.subscribed")}, nil
}

// Unsubscribe 按令牌或邮箱退订，令牌优先
func (s *NewsletterService) Unsubscribe(token, email string) (string, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	email = NormalizeEmail(email)
	var (
		sub *models.NewsletterSubscription
		err error
	)
	switch {
	case token != "":
		sub, err = s.repo.GetByToken(token)
	case email != "":
		sub, err = s.repo.GetByEmail(email)
	default:
		return "", ErrInvalidEmail
	}
	if err != nil {
		return "", err
	}
	if sub == nil || !sub.IsActive {
		return "", ErrNewsletterSubscriptionNotFound
	}
	now := s.now()
	sub.IsActive = false
	sub.UnsubscribedAt = &now
	if err := s.repo.Update(sub); err != nil {
		return "", err
	}
	logger.Infow("newsletter_unsubscribed", "subscription_id", sub.ID)
	return sub.Email, nil
}

// NewsletterStatistics 订阅统计
type NewsletterStatistics struct {
	ActiveSubscribers       int64                                `json:"active_subscribers"`
	TotalSubscribers        int64                                `json:"total_subscribers"`
	UnsubscribedSubscribers int64                                `json:"unsubscribed_subscribers"`
	RecentSubscribers       []repository.NewsletterSubscriberRow `json:"recent_subscribers"`
}

// Statistics 订阅统计
func (s *NewsletterService) Statistics() (*NewsletterStatistics, error) {
	active, err := s.repo.CountActive()
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountTotal()
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.ListRecentActive(newsletterRecentLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []repository.NewsletterSubscriberRow{}
	}
	return &NewsletterStatistics{
		ActiveSubscribers:       active,
		TotalSubscribers:        total,
		UnsubscribedSubscribers: total - active,
		RecentSubscribers:       recent,
	}, nil
}

// BroadcastResult 群发投递结果
type BroadcastResult struct {
	BroadcastID string `json:"broadcast_id"`
	Recipients  int    `json:"recipients"`
	Batches     int    `json:"batches"`
}

// Broadcast 按批次投递群发任务，实际发送由 worker 完成
func (s *NewsletterService) Broadcast(subject, content string) (*BroadcastResult, error) {
	subject = strings.TrimSpace(subject)
	content = strings.TrimSpace(content)
	if subject == "" || content == "" {
		return nil, ErrNewsletterContentRequired
	}
	if !s.queueClient.Enabled() {
		return nil, ErrQueueUnavailable
	}

	result := &BroadcastResult{BroadcastID: ulid.Make().String()}
	err := s.repo.EachActiveEmailBatch(s.broadcastBatch, func(emails []string) error {
		if len(emails) == 0 {
			return nil
		}
		if err := s.queueClient.EnqueueNewsletterBroadcastBatch(queue.NewsletterBroadcastBatchPayload{
			BroadcastID: result.BroadcastID,
			Subject:     subject,
			Content:     content,
			Recipients:  emails,
		}); err != nil {
			return err
		}
		result.Recipients += len(emails)
		result.Batches++
		return nil
	})
	if err != nil {
		logger.Errorw("newsletter_broadcast_enqueue_failed",
			"broadcast_id", result.BroadcastID,
			"enqueued_batches", result.Batches,
			"error", err,
		)
		return nil, err
	}
	logger.Infow("newsletter_broadcast_enqueued",
		"broadcast_id", result.BroadcastID,
		"recipients", result.Recipients,
		"batches", result.Batches,
	)
	return result, nil
}

// SendWelcome worker 调用：发送欢迎邮件，已退订则跳过
func (s *NewsletterService) SendWelcome(subscriptionID uint, locale string) error {
	sub, err := s.repo.GetByID(subscriptionID)
	if err != nil {
		return err
	}
	if sub == nil || !sub.IsActive {
		return nil
	}
	return s.emailService.SendNewsletterWelcome(sub.Email, s.UnsubscribeURL(sub.UnsubscribeToken), locale)
}

// SendBroadcastBatch worker 调用：逐个发送，返回失败数
func (s *NewsletterService) SendBroadcastBatch(ctx context.Context, payload queue.NewsletterBroadcastBatchPayload) (sent, failed int) {
	for _, recipient := range payload.Recipients {
		if ctx.Err() != nil {
			failed += len(payload.Recipients) - sent - failed
			break
		}
		if err := s.emailService.SendNewsletterBroadcast(recipient, payload.Subject, payload.Content); err != nil {
			failed++
			logger.Warnw("newsletter_broadcast_send_failed",
				"broadcast_id", payload.BroadcastID,
				"recipient", recipient,
				"error", err,
			)
			continue
		}
		sent++
	}
	return sent, failed
}

// UnsubscribeURL 退订链接
func (s *NewsletterService) UnsubscribeURL(token string) string {
	return s.publicURL + newsletterUnsubscribeAt + "?token=" + url.QueryEscape(token)
}
