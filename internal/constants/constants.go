package constants

// 学生认证状态常量
const (
	StudentVerificationStatusPending  = "pending"
	StudentVerificationStatusVerified = "verified"
	StudentVerificationStatusRejected = "rejected"
)

// 学生认证方式常量
const (
	StudentVerificationMethodEmail      = "email"
	StudentVerificationMethodThirdParty = "third-party"
)

// 认证元数据来源（带标签变体）
const (
	VerificationEvidenceEmail              = "email"
	VerificationEvidenceThirdParty         = "third-party"
	VerificationEvidenceThirdPartyFallback = "third-party-fallback"
)

// 邮箱识别置信度常量
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// 学校域名登记级别
const (
	DomainLevelVerified  = "verified"
	DomainLevelHeuristic = "heuristic"
)

// 第三方核验会话状态
const (
	ThirdPartyStatusPending  = "pending"
	ThirdPartyStatusVerified = "verified"
	ThirdPartyStatusRejected = "rejected"
	ThirdPartyStatusExpired  = "expired"
)

// 认证日志动作常量
const (
	VerificationLogCreated          = "created"
	VerificationLogManuallyApproved = "manually_approved"
	VerificationLogManuallyRejected = "manually_rejected"
	VerificationLogManuallyReset    = "manually_reset"
	VerificationLogDiscountUsed     = "discount_used"
	VerificationLogProviderVerified = "provider_verified"
	VerificationLogProviderRejected = "provider_rejected"
)

// 操作者类型
const (
	ActorSystem = "system"
	ActorAdmin  = "admin"
	ActorUser   = "user"
)

// 后台人工审核动作
const (
	AdminActionApprove = "approve"
	AdminActionReject  = "reject"
	AdminActionReset   = "reset"
)

// 折扣码格式
const (
	DiscountCodePrefix = "STUDENT"
)

// 第三方核验服务商
const (
	IdentityProviderSheerID = "sheerid"
)

// 邮件订阅来源
const (
	NewsletterSourceWebsite = "website"
	NewsletterSourceAdmin   = "admin"
)

// 验证码场景常量
const (
	CaptchaSceneAdminLogin          = "admin_login"
	CaptchaSceneNewsletterSubscribe = "newsletter_subscribe"
)

// 领域事件类型
const (
	EventVerificationStatusChanged = "student_verification.status_changed"
	EventDiscountUsed              = "student_discount.used"
)

// 异步队列与任务类型
const (
	QueueDefault = "default"
	QueueMail    = "mail"
	QueueBulk    = "bulk"

	TaskVerificationApprovedEmail = "student_verification:approved_email"
	TaskNewsletterWelcomeEmail    = "newsletter:welcome_email"
	TaskNewsletterBroadcastBatch  = "newsletter:broadcast_batch"
)
