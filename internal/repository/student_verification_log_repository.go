package repository

import (
	"github.com/buildlab-academy/internal/models"

	"gorm.io/gorm"
)

// StudentVerificationLogRepository 认证流水数据访问接口
type StudentVerificationLogRepository interface {
	Create(entry *models.StudentVerificationLog) error
	ListByVerification(verificationID uint) ([]models.StudentVerificationLog, error)
	WithTx(tx *gorm.DB) StudentVerificationLogRepository
}

// GormStudentVerificationLogRepository GORM 实现
type GormStudentVerificationLogRepository struct {
	db *gorm.DB
}

// NewStudentVerificationLogRepository 创建认证流水仓库
func NewStudentVerificationLogRepository(db *gorm.DB) *GormStudentVerificationLogRepository {
	return &GormStudentVerificationLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStudentVerificationLogRepository) WithTx(tx *gorm.DB) StudentVerificationLogRepository {
	if tx == nil {
		return r
	}
	return &GormStudentVerificationLogRepository{db: tx}
}

// Create 追加流水
func (r *GormStudentVerificationLogRepository) Create(entry *models.StudentVerificationLog) error {
	return r.db.Create(entry).Error
}

// ListByVerification 按时间顺序返回流水
func (r *GormStudentVerificationLogRepository) ListByVerification(verificationID uint) ([]models.StudentVerificationLog, error) {
	entries := make([]models.StudentVerificationLog, 0)
	if err := r.db.Where("verification_id = ?", verificationID).Order("created_at ASC").Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
