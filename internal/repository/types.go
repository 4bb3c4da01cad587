package repository

import "time"

// StudentVerificationListFilter 认证记录列表过滤条件
type StudentVerificationListFilter struct {
	Page     int
	PageSize int
	Status   string
	Method   string
	Evidence string // 元数据变体，如 third-party-fallback
	Keyword  string
}

// StudentEmailDomainListFilter 学校域名列表过滤条件
type StudentEmailDomainListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Country  string
	IsActive *bool
}

// VerificationStatusCountRow 按状态统计
type VerificationStatusCountRow struct {
	Status string
	Total  int64
}

// SchoolRankingRow 学校认证排行
type SchoolRankingRow struct {
	SchoolName string `json:"school_name"`
	Total      int64  `json:"count"`
}

// DiscountUsageSummaryRow 折扣使用汇总
type DiscountUsageSummaryRow struct {
	TotalUsage          int64
	TotalDiscountAmount float64
	UniqueUsers         int64
}

// VerificationUsageRow 单条认证的使用汇总
type VerificationUsageRow struct {
	UsageCount   int64      `json:"usage_count"`
	TotalSavings float64    `json:"total_savings"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
}

// NewsletterSubscriberRow 最近订阅者
type NewsletterSubscriberRow struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
	Source       string    `json:"source"`
}
