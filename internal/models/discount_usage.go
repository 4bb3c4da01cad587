package models

import "time"

// DiscountUsage 学生折扣使用记录
// (order_id, user_id) 唯一，同一订单只记录一次
type DiscountUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                                                                 // 主键
	VerificationID uint      `gorm:"index;not null" json:"verification_id"`                                                                // 关联认证记录
	UserID         string    `gorm:"type:varchar(64);not null;uniqueIndex:uniq_discount_usage_order_user,priority:2;index" json:"user_id"` // 使用用户
	OrderID        string    `gorm:"type:varchar(128);not null;uniqueIndex:uniq_discount_usage_order_user,priority:1" json:"order_id"`     // 外部订单号
	OriginalAmount Money     `gorm:"type:decimal(20,2);not null" json:"original_amount"`                                                   // 原价
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null" json:"discount_amount"`                                                   // 优惠金额
	FinalAmount    Money     `gorm:"type:decimal(20,2);not null" json:"final_amount"`                                                      // 实付金额
	Currency       string    `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`                                              // 币种
	UsedAt         time.Time `gorm:"index" json:"used_at"`                                                                                 // 使用时间
}

// TableName 指定表名
func (DiscountUsage) TableName() string {
	return "discount_usages"
}
