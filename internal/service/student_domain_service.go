package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/buildlab-academy/internal/cache"
	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/i18n"
	"github.com/buildlab-academy/internal/logger"
	"github.com/buildlab-academy/internal/models"
	"github.com/buildlab-academy/internal/repository"
)

// 启发式学校域名特征，按顺序匹配
var studentDomainPatterns = []struct {
	suffix bool
	value  string
}{
	{suffix: true, value: ".edu"},
	{value: ".edu."},
	{value: ".ac."},
	{value: "student."},
	{value: "uni."},
	{value: "college."},
	{value: "school."},
	{value: ".edu.au"},
	{value: ".edu.ca"},
	{value: ".edu.uk"},
}

// DomainClassification 邮箱识别结果
type DomainClassification struct {
	IsStudentEmail bool   `json:"is_student_email"`
	Domain         string `json:"domain,omitempty"`
	SchoolName     string `json:"school_name,omitempty"`
	Country        string `json:"country,omitempty"`
	Confidence     string `json:"confidence"`
}

// EmailCheckResult 公开检测接口返回
type EmailCheckResult struct {
	DomainClassification
	Message string `json:"message"`
}

// StudentDomainService 学校邮箱识别与域名登记维护
type StudentDomainService struct {
	repo     repository.StudentEmailDomainRepository
	cacheTTL time.Duration
}

// NewStudentDomainService 创建域名服务
func NewStudentDomainService(repo repository.StudentEmailDomainRepository, cacheTTL time.Duration) *StudentDomainService {
	return &StudentDomainService{repo: repo, cacheTTL: cacheTTL}
}

// Classify 识别邮箱是否为学生邮箱
// 查询失败按低置信度的否定结果处理，不向上返回错误
func (s *StudentDomainService) Classify(ctx context.Context, email string) DomainClassification {
	domain, ok := extractEmailDomain(email)
	if !ok {
		return DomainClassification{IsStudentEmail: false, Confidence: constants.ConfidenceHigh}
	}

	entry, err := s.lookup(ctx, domain)
	if err != nil {
		logger.Warnw("student_domain_lookup_failed", "domain", domain, "error", err)
		return DomainClassification{IsStudentEmail: false, Domain: domain, Confidence: constants.ConfidenceLow}
	}
	if entry.Found {
		confidence := constants.ConfidenceMedium
		if entry.VerificationLevel == constants.DomainLevelVerified {
			confidence = constants.ConfidenceHigh
		}
		return DomainClassification{
			IsStudentEmail: true,
			Domain:         domain,
			SchoolName:     entry.SchoolName,
			Country:        entry.Country,
			Confidence:     confidence,
		}
	}

	if matchesStudentPattern(domain) {
		return DomainClassification{IsStudentEmail: true, Domain: domain, Confidence: constants.ConfidenceLow}
	}
	return DomainClassification{IsStudentEmail: false, Domain: domain, Confidence: constants.ConfidenceHigh}
}

// CheckEmail 公开检测，附带提示语
func (s *StudentDomainService) CheckEmail(ctx context.Context, email, locale string) (*EmailCheckResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || !IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	result := s.Classify(ctx, email)
	out := &EmailCheckResult{DomainClassification: result}
	switch {
	case result.IsStudentEmail && result.SchoolName != "":
		out.Message = i18n.Sprintf(locale, "student.check.recognized_school", email, result.SchoolName)
	case result.IsStudentEmail:
		out.Message = i18n.Sprintf(locale, "student.check.recognized", email)
	default:
		out.Message = i18n.T(locale, "student.check.unrecognized")
	}
	return out, nil
}

func (s *StudentDomainService) lookup(ctx context.Context, domain string) (cache.StudentDomainEntry, error) {
	key := "@" + domain
	if cached, hit, err := cache.GetStudentDomain(ctx, key); err == nil && hit && cached != nil {
		return *cached, nil
	} else if err != nil {
		logger.Debugw("student_domain_cache_get_failed", "domain", domain, "error", err)
	}

	row, err := s.repo.GetActiveByDomain(key)
	if err != nil {
		return cache.StudentDomainEntry{}, err
	}
	entry := cache.StudentDomainEntry{}
	if row != nil {
		entry = cache.StudentDomainEntry{
			Found:             true,
			SchoolName:        row.SchoolName,
			Country:           row.Country,
			VerificationLevel: row.VerificationLevel,
		}
	}
	if err := cache.SetStudentDomain(ctx, key, entry, s.cacheTTL); err != nil {
		logger.Debugw("student_domain_cache_set_failed", "domain", domain, "error", err)
	}
	return entry, nil
}

// extractEmailDomain 取最后一个 @ 之后的部分并转小写
func extractEmailDomain(email string) (string, bool) {
	idx := strings.LastIndex(email, "@")
	if idx < 0 {
		return "", false
	}
	domain := strings.ToLower(strings.TrimSpace(email[idx+1:]))
	if domain == "" {
		return "", false
	}
	return domain, true
}

func matchesStudentPattern(domain string) bool {
	for _, pattern := range studentDomainPatterns {
		if pattern.suffix {
			if strings.HasSuffix(domain, pattern.value) {
				return true
			}
			continue
		}
		if strings.Contains(domain, pattern.value) {
			return true
		}
	}
	return false
}

// StudentDomainInput 域名登记维护入参
type StudentDomainInput struct {
	Domain            string `json:"domain" binding:"required"`
	SchoolName        string `json:"school_name" binding:"required"`
	Country           string `json:"country"`
	VerificationLevel string `json:"verification_level"`
	IsActive          *bool  `json:"is_active"`
}

// ListDomains 后台域名列表
func (s *StudentDomainService) ListDomains(filter repository.StudentEmailDomainListFilter) ([]models.StudentEmailDomain, int64, error) {
	return s.repo.List(filter)
}

// CreateDomain 新增域名登记
func (s *StudentDomainService) CreateDomain(ctx context.Context, input StudentDomainInput) (*models.StudentEmailDomain, error) {
	row := &models.StudentEmailDomain{IsActive: true}
	if err := applyStudentDomainInput(row, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(row); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrStudentDomainExists
		}
		return nil, err
	}
	s.invalidate(ctx, row.Domain)
	return row, nil
}

// UpdateDomain 更新域名登记
func (s *StudentDomainService) UpdateDomain(ctx context.Context, id uint, input StudentDomainInput) (*models.StudentEmailDomain, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	previous := row.Domain
	if err := applyStudentDomainInput(row, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(row); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrStudentDomainExists
		}
		return nil, err
	}
	s.invalidate(ctx, previous)
	s.invalidate(ctx, row.Domain)
	return row, nil
}

// DeleteDomain 删除域名登记
func (s *StudentDomainService) DeleteDomain(ctx context.Context, id uint) error {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, row.Domain)
	return nil
}

func (s *StudentDomainService) invalidate(ctx context.Context, domain string) {
	if err := cache.DelStudentDomain(ctx, domain); err != nil {
		logger.Warnw("student_domain_cache_invalidate_failed", "domain", domain, "error", err)
	}
}

// NormalizeStudentDomain 统一为带前导 @ 的小写形式
func NormalizeStudentDomain(raw string) (string, error) {
	domain := strings.ToLower(strings.TrimSpace(raw))
	domain = strings.TrimPrefix(domain, "@")
	if domain == "" || strings.ContainsAny(domain, "@ /") || !strings.Contains(domain, ".") {
		return "", ErrStudentDomainInvalid
	}
	if err := validate.Var(domain, "fqdn"); err != nil {
		return "", ErrStudentDomainInvalid
	}
	return "@" + domain, nil
}

func applyStudentDomainInput(row *models.StudentEmailDomain, input StudentDomainInput) error {
	domain, err := NormalizeStudentDomain(input.Domain)
	if err != nil {
		return err
	}
	school := strings.TrimSpace(input.SchoolName)
	if school == "" {
		return ErrStudentDomainInvalid
	}
	level := strings.ToLower(strings.TrimSpace(input.VerificationLevel))
	switch level {
	case "":
		level = constants.DomainLevelHeuristic
	case constants.DomainLevelVerified, constants.DomainLevelHeuristic:
	default:
		return ErrStudentDomainInvalid
	}
	row.Domain = domain
	row.SchoolName = school
	row.Country = strings.TrimSpace(input.Country)
	row.VerificationLevel = level
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}
	return nil
}
