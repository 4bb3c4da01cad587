package repository

import (
	"errors"
	"time"

	"github.com/buildlab-academy/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 后台审核员账号访问接口
type AdminRepository interface {
	GetByUsername(username string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	Create(admin *models.Admin) error
	TouchLogin(id uint, ip string, at time.Time) error
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

func (r *GormAdminRepository) first(query *gorm.DB) (*models.Admin, error) {
	var admin models.Admin
	if err := query.First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByUsername 用户名精确匹配
func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	return r.first(r.db.Where("username = ?", username))
}

// GetByID 根据 ID 获取
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	return r.first(r.db.Where("id = ?", id))
}

// Create 创建账号，用户名冲突返回 ErrDuplicate
func (r *GormAdminRepository) Create(admin *models.Admin) error {
	return translateWriteError(r.db.Create(admin).Error)
}

// TouchLogin 记录最近登录时间与 IP，不触发 updated_at
func (r *GormAdminRepository) TouchLogin(id uint, ip string, at time.Time) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"last_login_at": at,
		"last_login_ip": ip,
	}).Error
}
