package repository

import (
	"errors"

	"github.com/buildlab-academy/internal/models"

	"gorm.io/gorm"
)

// NewsletterRepository 邮件订阅数据访问接口
type NewsletterRepository interface {
	GetByID(id uint) (*models.NewsletterSubscription, error)
	GetByEmail(email string) (*models.NewsletterSubscription, error)
	GetByToken(token string) (*models.NewsletterSubscription, error)
	Create(sub *models.NewsletterSubscription) error
	Update(sub *models.NewsletterSubscription) error
	CountActive() (int64, error)
	CountTotal() (int64, error)
	ListRecentActive(limit int) ([]NewsletterSubscriberRow, error)
	EachActiveEmailBatch(batchSize int, fn func(emails []string) error) error
}

// GormNewsletterRepository GORM 实现
type GormNewsletterRepository struct {
	db *gorm.DB
}

// NewNewsletterRepository 创建订阅仓库
func NewNewsletterRepository(db *gorm.DB) *GormNewsletterRepository {
	return &GormNewsletterRepository{db: db}
}

func (r *GormNewsletterRepository) first(query *gorm.DB) (*models.NewsletterSubscription, error) {
	var sub models.NewsletterSubscription
	if err := query.First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// GetByID 根据 ID 获取
func (r *GormNewsletterRepository) GetByID(id uint) (*models.NewsletterSubscription, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("id = ?", id))
}

// GetByEmail 按邮箱查询
func (r *GormNewsletterRepository) GetByEmail(email string) (*models.NewsletterSubscription, error) {
	return r.first(r.db.Where("email = ?", email))
}

// GetByToken 按退订令牌查询
func (r *GormNewsletterRepository) GetByToken(token string) (*models.NewsletterSubscription, error) {
	return r.first(r.db.Where("unsubscribe_token = ?", token))
}

// Create 新增订阅
func (r *GormNewsletterRepository) Create(sub *models.NewsletterSubscription) error {
	return translateWriteError(r.db.Create(sub).Error)
}

// Update 更新订阅
func (r *GormNewsletterRepository) Update(sub *models.NewsletterSubscription) error {
	return r.db.Save(sub).Error
}

// CountActive 活跃订阅数
func (r *GormNewsletterRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.NewsletterSubscription{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

// CountTotal 订阅总数
func (r *GormNewsletterRepository) CountTotal() (int64, error) {
	var count int64
	err := r.db.Model(&models.NewsletterSubscription{}).Count(&count).Error
	return count, err
}

// ListRecentActive 最近订阅的活跃用户
func (r *GormNewsletterRepository) ListRecentActive(limit int) ([]NewsletterSubscriberRow, error) {
	rows := make([]NewsletterSubscriberRow, 0)
	err := r.db.Model(&models.NewsletterSubscription{}).
		Select("email, subscribed_at, source").
		Where("is_active = ?", true).
		Order("subscribed_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// EachActiveEmailBatch 分批遍历活跃订阅邮箱
func (r *GormNewsletterRepository) EachActiveEmailBatch(batchSize int, fn func(emails []string) error) error {
	if batchSize <= 0 {
		batchSize = 50
	}
	var subs []models.NewsletterSubscription
	return r.db.Model(&models.NewsletterSubscription{}).
		Select("id", "email").
		Where("is_active = ?", true).
		FindInBatches(&subs, batchSize, func(tx *gorm.DB, _ int) error {
			emails := make([]string, 0, len(subs))
			for _, sub := range subs {
				emails = append(emails, sub.Email)
			}
			return fn(emails)
		}).Error
}
