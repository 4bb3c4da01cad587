package repository

import (
	"errors"
	"time"

	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StudentVerificationRepository 学生认证数据访问接口
type StudentVerificationRepository interface {
	GetByID(id uint) (*models.StudentVerification, error)
	GetByIDForUpdate(id uint) (*models.StudentVerification, error)
	GetLatestByUser(userID string) (*models.StudentVerification, error)
	GetActiveByUserForUpdate(userID string) (*models.StudentVerification, error)
	GetLatestVerifiedByUser(userID string) (*models.StudentVerification, error)
	GetVerifiedByCode(code string) (*models.StudentVerification, error)
	CodeExists(code string) (bool, error)
	Create(verification *models.StudentVerification) error
	Update(verification *models.StudentVerification) error
	List(filter StudentVerificationListFilter) ([]models.StudentVerification, int64, error)
	CountByStatus() ([]VerificationStatusCountRow, error)
	CountCreatedSince(since time.Time) (int64, error)
	TopVerifiedSchools(limit int) ([]SchoolRankingRow, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) StudentVerificationRepository
}

// GormStudentVerificationRepository GORM 实现
type GormStudentVerificationRepository struct {
	db *gorm.DB
}

// NewStudentVerificationRepository 创建学生认证仓库
func NewStudentVerificationRepository(db *gorm.DB) *GormStudentVerificationRepository {
	return &GormStudentVerificationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStudentVerificationRepository) WithTx(tx *gorm.DB) StudentVerificationRepository {
	if tx == nil {
		return r
	}
	return &GormStudentVerificationRepository{db: tx}
}

// Transaction 执行事务
func (r *GormStudentVerificationRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func (r *GormStudentVerificationRepository) first(query *gorm.DB) (*models.StudentVerification, error) {
	var verification models.StudentVerification
	if err := query.First(&verification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &verification, nil
}

// GetByID 根据 ID 获取
func (r *GormStudentVerificationRepository) GetByID(id uint) (*models.StudentVerification, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("id = ?", id))
}

// GetByIDForUpdate 加行锁读取（sqlite 下忽略锁）
func (r *GormStudentVerificationRepository) GetByIDForUpdate(id uint) (*models.StudentVerification, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

// GetLatestByUser 获取用户最近一条记录（任意状态）
func (r *GormStudentVerificationRepository) GetLatestByUser(userID string) (*models.StudentVerification, error) {
	return r.first(r.db.Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC"))
}

// GetActiveByUserForUpdate 获取用户 pending/verified 记录并加锁
func (r *GormStudentVerificationRepository) GetActiveByUserForUpdate(userID string) (*models.StudentVerification, error) {
	return r.first(r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Where("status IN ?", []string{constants.StudentVerificationStatusPending, constants.StudentVerificationStatusVerified}).
		Order("created_at DESC").Order("id DESC"))
}

// GetLatestVerifiedByUser 获取用户最近一条已认证记录
func (r *GormStudentVerificationRepository) GetLatestVerifiedByUser(userID string) (*models.StudentVerification, error) {
	return r.first(r.db.Where("user_id = ? AND status = ?", userID, constants.StudentVerificationStatusVerified).
		Order("verified_at DESC").Order("id DESC"))
}

// GetVerifiedByCode 按折扣码查找已认证记录；未认证的记录视同不存在
func (r *GormStudentVerificationRepository) GetVerifiedByCode(code string) (*models.StudentVerification, error) {
	if code == "" {
		return nil, nil
	}
	return r.first(r.db.Where("discount_code = ? AND status = ?", code, constants.StudentVerificationStatusVerified))
}

// CodeExists 折扣码是否已被占用（任意状态）
func (r *GormStudentVerificationRepository) CodeExists(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.StudentVerification{}).Where("discount_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 创建记录
func (r *GormStudentVerificationRepository) Create(verification *models.StudentVerification) error {
	return translateWriteError(r.db.Create(verification).Error)
}

// Update 保存记录
func (r *GormStudentVerificationRepository) Update(verification *models.StudentVerification) error {
	return translateWriteError(r.db.Save(verification).Error)
}

// List 后台列表
func (r *GormStudentVerificationRepository) List(filter StudentVerificationListFilter) ([]models.StudentVerification, int64, error) {
	query := r.db.Model(&models.StudentVerification{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Method != "" {
		query = query.Where("verification_method = ?", filter.Method)
	}
	if filter.Evidence != "" {
		query = query.Where("evidence = ?", filter.Evidence)
	}
	if cond, args := buildKeywordCondition(dbDialectName(r.db), filter.Keyword, "email", "full_name", "school_name", "discount_code"); cond != "" {
		query = query.Where(cond, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StudentVerification
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountByStatus 按状态计数
func (r *GormStudentVerificationRepository) CountByStatus() ([]VerificationStatusCountRow, error) {
	var rows []VerificationStatusCountRow
	err := r.db.Model(&models.StudentVerification{}).
		Select("status AS status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountCreatedSince 统计某时间之后创建的记录数
func (r *GormStudentVerificationRepository) CountCreatedSince(since time.Time) (int64, error) {
	var count int64
	if err := r.db.Model(&models.StudentVerification{}).Where("created_at >= ?", since).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// TopVerifiedSchools 已认证人数最多的学校
func (r *GormStudentVerificationRepository) TopVerifiedSchools(limit int) ([]SchoolRankingRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []SchoolRankingRow
	err := r.db.Model(&models.StudentVerification{}).
		Select("school_name AS school_name, COUNT(*) AS total").
		Where("status = ? AND school_name <> ''", constants.StudentVerificationStatusVerified).
		Group("school_name").
		Order("total DESC").
		Order("school_name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
