package service

import (
	"context"
	"time"

	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/events"
	"github.com/buildlab-academy/internal/logger"
	"github.com/buildlab-academy/internal/models"
	"github.com/buildlab-academy/internal/repository"
)

const defaultDiscountPercentage = 20

var confidenceRank = map[string]int{
	constants.ConfidenceLow:    1,
	constants.ConfidenceMedium: 2,
	constants.ConfidenceHigh:   3,
}

// verificationPolicy 认证通过时的折扣参数与签发规则，申请与后台审核共用
type verificationPolicy struct {
	percentage      int
	validDays       int
	autoVerifyLevel string
	issuer          *discountCodeIssuer
}

func newVerificationPolicy(cfg config.StudentDiscountConfig) *verificationPolicy {
	policy := &verificationPolicy{
		percentage:      cfg.Percentage,
		validDays:       cfg.ValidDays,
		autoVerifyLevel: cfg.AutoVerifyLevel,
		issuer:          newDiscountCodeIssuer(cfg.CodeIssueRetries),
	}
	if policy.percentage <= 0 || policy.percentage > 100 {
		policy.percentage = defaultDiscountPercentage
	}
	if policy.validDays <= 0 {
		policy.validDays = 365
	}
	if _, ok := confidenceRank[policy.autoVerifyLevel]; !ok {
		policy.autoVerifyLevel = constants.ConfidenceHigh
	}
	return policy
}

// autoVerifies 识别为学生邮箱且置信度达到阈值时自动通过
func (p *verificationPolicy) autoVerifies(result DomainClassification) bool {
	return result.IsStudentEmail && confidenceRank[result.Confidence] >= confidenceRank[p.autoVerifyLevel]
}

// promote 置为 verified：缺少折扣码时签发，刷新认证与过期时间
// repo 必须绑定当前事务
func (p *verificationPolicy) promote(repo repository.StudentVerificationRepository, v *models.StudentVerification, now time.Time) error {
	if v.Code() == "" {
		code, err := p.issuer.Issue(repo, v.UserID)
		if err != nil {
			return err
		}
		v.DiscountCode = &code
	}
	verifiedAt := now
	expiresAt := now.AddDate(0, 0, p.validDays)
	v.Status = constants.StudentVerificationStatusVerified
	v.VerifiedAt = &verifiedAt
	v.ExpiresAt = &expiresAt
	v.DiscountPercentage = p.percentage
	return nil
}

// publishStatusChanged 事件投递失败只记日志
func publishStatusChanged(ctx context.Context, publisher events.Publisher, v *models.StudentVerification, from, actor string) {
	if publisher == nil || v == nil {
		return
	}
	err := publisher.Publish(ctx, events.Event{
		Type:           constants.EventVerificationStatusChanged,
		VerificationID: v.ID,
		UserID:         v.UserID,
		OccurredAt:     time.Now(),
		Data: map[string]interface{}{
			"from":  from,
			"to":    v.Status,
			"actor": actor,
		},
	})
	if err != nil {
		logger.Warnw("student_verification_event_publish_failed", "verification_id", v.ID, "error", err)
	}
}

func writeVerificationLog(repo repository.StudentVerificationLogRepository, verificationID uint, action, actor, actorID string, details map[string]interface{}) error {
	return repo.Create(&models.StudentVerificationLog{
		VerificationID: verificationID,
		Action:         action,
		Actor:          actor,
		ActorID:        actorID,
		Details:        details,
	})
}
