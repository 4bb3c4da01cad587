package models

import (
	"time"

	"gorm.io/datatypes"
)

// StudentVerificationLog 认证操作流水（只追加）
type StudentVerificationLog struct {
	ID             uint              `gorm:"primarykey" json:"id"`
	VerificationID uint              `gorm:"index;not null" json:"verification_id"`
	Action         string            `gorm:"type:varchar(50);index;not null" json:"action"`
	Actor          string            `gorm:"type:varchar(20);not null" json:"actor"`
	ActorID        string            `gorm:"type:varchar(64);not null;default:''" json:"actor_id"`
	Details        datatypes.JSONMap `json:"details"`
	CreatedAt      time.Time         `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (StudentVerificationLog) TableName() string {
	return "student_verification_logs"
}
