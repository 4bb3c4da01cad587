package service

import "errors"

// 通用错误
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrQueueUnavailable = errors.New("queue unavailable")
)

// 管理员认证
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrCaptchaRequired    = errors.New("captcha required")
	ErrCaptchaInvalid     = errors.New("captcha invalid")
	ErrWeakPassword       = errors.New("weak password")
)

// 学生认证
var (
	ErrApplicantFieldsRequired       = errors.New("email, first name and last name are required")
	ErrVerificationMethodInvalid     = errors.New("verification method invalid")
	ErrGraduationDateInvalid         = errors.New("graduation date invalid")
	ErrVerificationNotFound          = errors.New("verification not found")
	ErrVerificationActiveExists      = errors.New("another active verification exists")
	ErrAdminActionInvalid            = errors.New("admin action invalid")
	ErrIdentityProviderNotConfigured = errors.New("identity provider not configured")
	ErrDiscountCodeIssueFailed       = errors.New("discount code issue failed")
	ErrUserIdentityRequired          = errors.New("user identity required")
)

// 学校域名登记
var (
	ErrStudentDomainInvalid = errors.New("student domain invalid")
	ErrStudentDomainExists  = errors.New("student domain exists")
)

// 折扣码校验与使用
var (
	ErrDiscountCodeInvalid   = errors.New("invalid or expired discount code")
	ErrDiscountCodeExpired   = errors.New("discount code expired")
	ErrInvalidOrderAmount    = errors.New("invalid order amount")
	ErrUsageFieldsRequired   = errors.New("usage fields required")
	ErrUsageAmountsInvalid   = errors.New("usage amounts invalid")
	ErrVerificationNotOwned  = errors.New("invalid verification id")
	ErrDiscountUsageRecorded = errors.New("discount usage already recorded")
)

// 邮件订阅
var (
	ErrNewsletterAlreadySubscribed    = errors.New("already subscribed")
	ErrNewsletterSubscriptionNotFound = errors.New("subscription not found")
	ErrNewsletterContentRequired      = errors.New("subject and content are required")
)

// 邮件发送
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
