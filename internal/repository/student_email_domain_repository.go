package repository

import (
	"errors"

	"github.com/buildlab-academy/internal/models"

	"gorm.io/gorm"
)

// StudentEmailDomainRepository 学校域名登记数据访问接口
type StudentEmailDomainRepository interface {
	GetActiveByDomain(domain string) (*models.StudentEmailDomain, error)
	GetByID(id uint) (*models.StudentEmailDomain, error)
	List(filter StudentEmailDomainListFilter) ([]models.StudentEmailDomain, int64, error)
	Create(domain *models.StudentEmailDomain) error
	Update(domain *models.StudentEmailDomain) error
	Delete(id uint) error
}

// GormStudentEmailDomainRepository GORM 实现
type GormStudentEmailDomainRepository struct {
	db *gorm.DB
}

// NewStudentEmailDomainRepository 创建域名仓库
func NewStudentEmailDomainRepository(db *gorm.DB) *GormStudentEmailDomainRepository {
	return &GormStudentEmailDomainRepository{db: db}
}

// GetActiveByDomain 精确匹配启用中的域名（含前导 @）
func (r *GormStudentEmailDomainRepository) GetActiveByDomain(domain string) (*models.StudentEmailDomain, error) {
	var row models.StudentEmailDomain
	if err := r.db.Where("domain = ? AND is_active = ?", domain, true).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByID 根据 ID 获取
func (r *GormStudentEmailDomainRepository) GetByID(id uint) (*models.StudentEmailDomain, error) {
	var row models.StudentEmailDomain
	if err := r.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// List 域名列表
func (r *GormStudentEmailDomainRepository) List(filter StudentEmailDomainListFilter) ([]models.StudentEmailDomain, int64, error) {
	query := r.db.Model(&models.StudentEmailDomain{})
	if cond, args := buildKeywordCondition(dbDialectName(r.db), filter.Keyword, "domain", "school_name"); cond != "" {
		query = query.Where(cond, args...)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StudentEmailDomain
	if err := applyPagination(query, filter.Page, filter.PageSize).Order("domain ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create 新增域名
func (r *GormStudentEmailDomainRepository) Create(domain *models.StudentEmailDomain) error {
	return translateWriteError(r.db.Create(domain).Error)
}

// Update 更新域名
func (r *GormStudentEmailDomainRepository) Update(domain *models.StudentEmailDomain) error {
	return translateWriteError(r.db.Save(domain).Error)
}

// Delete 删除域名
func (r *GormStudentEmailDomainRepository) Delete(id uint) error {
	return r.db.Delete(&models.StudentEmailDomain{}, id).Error
}
