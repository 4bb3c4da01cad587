package models

import "time"

// StudentEmailDomain 学校邮箱域名登记表，Domain 含前导 @
type StudentEmailDomain struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	Domain            string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"domain"`
	SchoolName        string    `gorm:"type:varchar(255);not null" json:"school_name"`
	Country           string    `gorm:"type:varchar(100);not null;default:''" json:"country"`
	VerificationLevel string    `gorm:"type:varchar(20);not null;default:'heuristic'" json:"verification_level"` // verified / heuristic
	IsActive          bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName 指定表名
func (StudentEmailDomain) TableName() string {
	return "student_email_domains"
}
