package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/events"
	"github.com/buildlab-academy/internal/i18n"
	"github.com/buildlab-academy/internal/logger"
	"github.com/buildlab-academy/internal/metrics"
	"github.com/buildlab-academy/internal/models"
	"github.com/buildlab-academy/internal/repository"
)

// StudentDiscountService 折扣码校验与使用登记
type StudentDiscountService struct {
	repo            repository.StudentVerificationRepository
	logRepo         repository.StudentVerificationLogRepository
	usageRepo       repository.DiscountUsageRepository
	publisher       events.Publisher
	defaultCurrency string
	now             func() time.Time
}

// NewStudentDiscountService 创建折扣服务
func NewStudentDiscountService(
	repo repository.StudentVerificationRepository,
	logRepo repository.StudentVerificationLogRepository,
	usageRepo repository.DiscountUsageRepository,
	publisher events.Publisher,
	cfg config.StudentDiscountConfig,
) *StudentDiscountService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	currency := strings.ToUpper(strings.TrimSpace(cfg.DefaultCurrency))
	if currency == "" {
		currency = "USD"
	}
	return &StudentDiscountService{
		repo:            repo,
		logRepo:         logRepo,
		usageRepo:       usageRepo,
		publisher:       publisher,
		defaultCurrency: currency,
		now:             time.Now,
	}
}

// DiscountValidation 折扣码校验结果
type DiscountValidation struct {
	Valid              bool         `json:"valid"`
	VerificationID     uint         `json:"verification_id"`
	DiscountPercentage int          `json:"discount_percentage"`
	OriginalAmount     models.Money `json:"original_amount"`
	DiscountAmount     models.Money `json:"discount_amount"`
	FinalAmount        models.Money `json:"final_amount"`
	StudentName        string       `json:"student_name"`
	Message            string       `json:"message"`
}

// ValidateCode 校验折扣码并计算优惠
// 未认证与不存在的折扣码统一返回 ErrDiscountCodeInvalid；过期单独返回 ErrDiscountCodeExpired
func (s *StudentDiscountService) ValidateCode(code string, orderAmount models.Money, locale string) (*DiscountValidation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		metrics.DiscountValidated("invalid")
		return nil, ErrDiscountCodeInvalid
	}
	if !orderAmount.IsPositive() {
		return nil, ErrInvalidOrderAmount
	}

	verification, err := s.repo.GetVerifiedByCode(code)
	if err != nil {
		return nil, err
	}
	if verification == nil {
		metrics.DiscountValidated("invalid")
		return nil, ErrDiscountCodeInvalid
	}
	if verification.IsExpired(s.now()) {
		metrics.DiscountValidated("expired")
		return nil, ErrDiscountCodeExpired
	}

	original := models.NewMoneyFromDecimal(orderAmount.Decimal)
	discount := original.Percent(verification.DiscountPercentage)
	metrics.DiscountValidated("valid")
	return &DiscountValidation{
		Valid:              true,
		VerificationID:     verification.ID,
		DiscountPercentage: verification.DiscountPercentage,
		OriginalAmount:     original,
		DiscountAmount:     discount,
		FinalAmount:        original.Sub(discount),
		StudentName:        verification.FullName,
		Message:            i18n.T(locale, "student.discount.valid"),
	}, nil
}

// RecordUsageInput 折扣使用登记
type RecordUsageInput struct {
	VerificationID uint
	UserID         string
	OrderID        string
	OriginalAmount models.Money
	DiscountAmount models.Money
	FinalAmount    models.Money
	Currency       string
}

// RecordUsageResult 登记结果
type RecordUsageResult struct {
	UsageID uint         `json:"usage_id"`
	Savings models.Money `json:"savings"`
	Message string       `json:"message"`
}

// RecordUsage 登记折扣使用
// 同一 (订单, 用户) 只记录一次：查询只做快速判断，唯一索引兜底
// 使用记录为准，流水追加失败只记日志
func (s *StudentDiscountService) RecordUsage(ctx context.Context, input RecordUsageInput, locale string) (*RecordUsageResult, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, ErrUserIdentityRequired
	}
	orderID := strings.TrimSpace(input.OrderID)
	if input.VerificationID == 0 || orderID == "" {
		return nil, ErrUsageFieldsRequired
	}
	original := models.NewMoneyFromDecimal(input.OriginalAmount.Decimal)
	discount := models.NewMoneyFromDecimal(input.DiscountAmount.Decimal)
	final := models.NewMoneyFromDecimal(input.FinalAmount.Decimal)
	if original.IsNegative() || discount.IsNegative() || final.IsNegative() || !original.Sub(discount).Equal(final.Decimal) {
		return nil, ErrUsageAmountsInvalid
	}

	verification, err := s.repo.GetByID(input.VerificationID)
	if err != nil {
		return nil, err
	}
	if verification == nil || verification.UserID != userID {
		return nil, ErrVerificationNotOwned
	}

	count, err := s.usageRepo.CountByOrderAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		metrics.DiscountRedeemed("duplicate")
		return nil, ErrDiscountUsageRecorded
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}
	usage := &models.DiscountUsage{
		VerificationID: verification.ID,
		UserID:         userID,
		OrderID:        orderID,
		OriginalAmount: original,
		DiscountAmount: discount,
		FinalAmount:    final,
		Currency:       currency,
		UsedAt:         s.now(),
	}
	if err := s.usageRepo.Create(usage); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.DiscountRedeemed("duplicate")
			return nil, ErrDiscountUsageRecorded
		}
		return nil, err
	}
	metrics.DiscountRedeemed("recorded")

	details := map[string]interface{}{
		"order_id":        orderID,
		"original_amount": original.String(),
		"discount_amount": discount.String(),
		"final_amount":    final.String(),
		"currency":        currency,
	}
	if err := writeVerificationLog(s.logRepo, verification.ID, constants.VerificationLogDiscountUsed, constants.ActorUser, userID, details); err != nil {
		logger.Warnw("discount_usage_log_failed", "verification_id", verification.ID, "order_id", orderID, "error", err)
	}
	if err := s.publisher.Publish(ctx, events.Event{
		Type:           constants.EventDiscountUsed,
		VerificationID: verification.ID,
		UserID:         userID,
		OccurredAt:     usage.UsedAt,
		Data:           details,
	}); err != nil {
		logger.Warnw("discount_usage_event_publish_failed", "usage_id", usage.ID, "error", err)
	}
	logger.Infow("discount_usage_recorded",
		"usage_id", usage.ID,
		"verification_id", verification.ID,
		"order_id", orderID,
		"discount_amount", discount.String(),
	)

	return &RecordUsageResult{
		UsageID: usage.ID,
		Savings: discount,
		Message: i18n.T(locale, "student.usage.recorded"),
	}, nil
}
