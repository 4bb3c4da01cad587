package models

import (
	"time"

	"github.com/buildlab-academy/internal/constants"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StudentVerification 学生身份认证记录
// 同一用户可有多条历史记录，但 pending/verified 状态的记录至多一条（部分唯一索引保证）
type StudentVerification struct {
	ID                 uint                                     `gorm:"primarykey" json:"id"`                                                                                                                                      // 主键
	UserID             string                                   `gorm:"type:varchar(64);not null;index:idx_student_verification_user;uniqueIndex:uniq_student_verification_active_user,where:status <> 'rejected'" json:"user_id"` // 外部认证用户 ID
	Email              string                                   `gorm:"type:varchar(255);not null;index" json:"email"`                                                                                                             // 申请邮箱
	FullName           string                                   `gorm:"type:varchar(255);not null" json:"full_name"`                                                                                                               // 姓名
	SchoolName         string                                   `gorm:"type:varchar(255);not null;default:''" json:"school_name"`                                                                                                  // 学校名称
	GraduationDate     *time.Time                               `gorm:"type:date" json:"graduation_date,omitempty"`                                                                                                                // 预计毕业日期
	StudentNumber      string                                   `gorm:"type:varchar(100);not null;default:''" json:"student_id"`                                                                                                   // 学号
	VerificationMethod string                                   `gorm:"type:varchar(32);not null" json:"verification_method"`                                                                                                      // email / third-party
	Status             string                                   `gorm:"type:varchar(32);not null;index" json:"status"`                                                                                                             // pending / verified / rejected
	VerificationToken  string                                   `gorm:"type:varchar(128);not null;default:'';index" json:"-"`                                                                                                      // 第三方核验会话令牌
	Evidence           string                                   `gorm:"type:varchar(32);not null;default:'';index" json:"evidence"`                                                                                                // 元数据变体标签，随 Metadata 同步
	Metadata           datatypes.JSONType[VerificationMetadata] `json:"verification_metadata"`                                                                                                                                     // 认证依据
	DiscountCode       *string                                  `gorm:"type:varchar(64);uniqueIndex" json:"discount_code"`                                                                                                         // 折扣码（认证通过后签发）
	DiscountPercentage int                                      `gorm:"not null;default:0" json:"discount_percentage"`                                                                                                             // 折扣比例
	VerifiedAt         *time.Time                               `json:"verified_at"`                                                                                                                                               // 认证通过时间
	ExpiresAt          *time.Time                               `gorm:"index" json:"expires_at"`                                                                                                                                   // 折扣过期时间
	CreatedAt          time.Time                                `gorm:"index" json:"created_at"`                                                                                                                                   // 创建时间
	UpdatedAt          time.Time                                `json:"updated_at"`                                                                                                                                                // 更新时间
}

// TableName 指定表名
func (StudentVerification) TableName() string {
	return "student_verifications"
}

// BeforeSave 同步元数据变体标签，便于按降级路径检索
func (v *StudentVerification) BeforeSave(_ *gorm.DB) error {
	v.Evidence = v.Metadata.Data().Kind
	return nil
}

// IsActive pending 与 verified 视为有效记录，阻止重复申请
func (v *StudentVerification) IsActive() bool {
	return v != nil && (v.Status == constants.StudentVerificationStatusPending || v.Status == constants.StudentVerificationStatusVerified)
}

// IsExpired 读取时判断是否过期，不修改状态
func (v *StudentVerification) IsExpired(now time.Time) bool {
	return v != nil && v.ExpiresAt != nil && v.ExpiresAt.Before(now)
}

// Code 返回折扣码，未签发时为空
func (v *StudentVerification) Code() string {
	if v == nil || v.DiscountCode == nil {
		return ""
	}
	return *v.DiscountCode
}
