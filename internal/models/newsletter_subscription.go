package models

import "time"

// NewsletterSubscription 邮件订阅
type NewsletterSubscription struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	Email            string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	IsActive         bool       `gorm:"not null;default:true;index" json:"is_active"`
	Source           string     `gorm:"type:varchar(50);not null;default:'website'" json:"source"`
	UnsubscribeToken string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	SubscribedAt     time.Time  `gorm:"index" json:"subscribed_at"`
	UnsubscribedAt   *time.Time `json:"unsubscribed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// TableName 指定表名
func (NewsletterSubscription) TableName() string {
	return "newsletter_subscriptions"
}
