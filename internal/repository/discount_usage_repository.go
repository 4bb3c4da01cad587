package repository

import (
	"github.com/buildlab-academy/internal/models"

	"gorm.io/gorm"
)

// DiscountUsageRepository 折扣使用记录数据访问接口
type DiscountUsageRepository interface {
	Create(usage *models.DiscountUsage) error
	SummarizeByVerification(verificationID uint) (VerificationUsageRow, error)
	Summary() (DiscountUsageSummaryRow, error)
	CountByOrderAndUser(orderID, userID string) (int64, error)
}

// GormDiscountUsageRepository GORM 实现
type GormDiscountUsageRepository struct {
	db *gorm.DB
}

// NewDiscountUsageRepository 创建折扣使用仓库
func NewDiscountUsageRepository(db *gorm.DB) *GormDiscountUsageRepository {
	return &GormDiscountUsageRepository{db: db}
}

// Create 写入使用记录，(order_id, user_id) 冲突返回 ErrDuplicate
func (r *GormDiscountUsageRepository) Create(usage *models.DiscountUsage) error {
	return translateWriteError(r.db.Create(usage).Error)
}

// CountByOrderAndUser 订单使用记录数
func (r *GormDiscountUsageRepository) CountByOrderAndUser(orderID, userID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.DiscountUsage{}).Where("order_id = ? AND user_id = ?", orderID, userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SummarizeByVerification 单个认证的使用次数与累计优惠
func (r *GormDiscountUsageRepository) SummarizeByVerification(verificationID uint) (VerificationUsageRow, error) {
	var row struct {
		UsageCount   int64
		TotalSavings float64
	}
	err := r.db.Model(&models.DiscountUsage{}).
		Select("COUNT(*) AS usage_count, COALESCE(SUM(discount_amount), 0) AS total_savings").
		Where("verification_id = ?", verificationID).
		Scan(&row).Error
	if err != nil {
		return VerificationUsageRow{}, err
	}
	result := VerificationUsageRow{UsageCount: row.UsageCount, TotalSavings: row.TotalSavings}
	if row.UsageCount > 0 {
		var last models.DiscountUsage
		if err := r.db.Where("verification_id = ?", verificationID).Order("used_at DESC").First(&last).Error; err == nil {
			result.LastUsedAt = &last.UsedAt
		}
	}
	return result, nil
}

// Summary 全局使用汇总
func (r *GormDiscountUsageRepository) Summary() (DiscountUsageSummaryRow, error) {
	var row DiscountUsageSummaryRow
	err := r.db.Model(&models.DiscountUsage{}).
		Select("COUNT(*) AS total_usage, COALESCE(SUM(discount_amount), 0) AS total_discount_amount, COUNT(DISTINCT user_id) AS unique_users").
		Scan(&row).Error
	if err != nil {
		return DiscountUsageSummaryRow{}, err
	}
	return row, nil
}
