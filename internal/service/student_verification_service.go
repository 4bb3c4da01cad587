package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/events"
	"github.com/buildlab-academy/internal/i18n"
	"github.com/buildlab-academy/internal/logger"
	"github.com/buildlab-academy/internal/metrics"
	"github.com/buildlab-academy/internal/models"
	"github.com/buildlab-academy/internal/queue"
	"github.com/buildlab-academy/internal/repository"
	"github.com/buildlab-academy/internal/verification/sheerid"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IdentityVerifier 第三方学生身份核验
type IdentityVerifier interface {
	Configured() bool
	Initiate(ctx context.Context, input sheerid.InitiateInput) (*sheerid.Result, error)
	Status(ctx context.Context, token string) (*sheerid.Result, error)
}

// StudentVerificationService 学生认证申请与查询
type StudentVerificationService struct {
	repo        repository.StudentVerificationRepository
	logRepo     repository.StudentVerificationLogRepository
	usageRepo   repository.DiscountUsageRepository
	domainSvc   *StudentDomainService
	identity    IdentityVerifier
	queueClient *queue.Client
	publisher   events.Publisher
	policy      *verificationPolicy
	now         func() time.Time
}

// NewStudentVerificationService 创建学生认证服务
func NewStudentVerificationService(
	repo repository.StudentVerificationRepository,
	logRepo repository.StudentVerificationLogRepository,
	usageRepo repository.DiscountUsageRepository,
	domainSvc *StudentDomainService,
	identity IdentityVerifier,
	queueClient *queue.Client,
	publisher events.Publisher,
	cfg config.StudentDiscountConfig,
) *StudentVerificationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &StudentVerificationService{
		repo:        repo,
		logRepo:     logRepo,
		usageRepo:   usageRepo,
		domainSvc:   domainSvc,
		identity:    identity,
		queueClient: queueClient,
		publisher:   publisher,
		policy:      newVerificationPolicy(cfg),
		now:         time.Now,
	}
}

// ApplyInput 认证申请
type ApplyInput struct {
	UserID         string
	Email          string
	FirstName      string
	LastName       string
	SchoolName     string
	GraduationDate string // YYYY-MM-DD，可选
	StudentID      string
	Method         string // email / third-party，默认 email
	Locale         string
}

// ApplyResult 认证申请结果
type ApplyResult struct {
	VerificationID     uint   `json:"verification_id"`
	Status             string `json:"status"`
	DiscountCode       string `json:"discount_code,omitempty"`
	DiscountPercentage int    `json:"discount_percentage,omitempty"`
	VerificationURL    string `json:"verification_url,omitempty"`
	Message            string `json:"message"`
	Existing           bool   `json:"existing"`
}

type applicant struct {
	userID         string
	email          string
	firstName      string
	lastName       string
	schoolName     string
	graduationDate *time.Time
	studentID      string
	method         string
}

type classifiedApplication struct {
	metadata        models.VerificationMetadata
	verified        bool
	schoolName      string
	token           string
	verificationURL string
}

// Apply 提交认证申请
// 已有 pending/verified 记录时直接返回该记录，不重复创建
func (s *StudentVerificationService) Apply(ctx context.Context, input ApplyInput) (*ApplyResult, error) {
	app, err := normalizeApplicant(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetActiveByUserForUpdate(app.userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existingApplyResult(existing, input.Locale), nil
	}

	// 第三方调用可能较慢，放在事务外
	classified, err := s.classify(ctx, app)
	if err != nil {
		return nil, err
	}

	record := &models.StudentVerification{
		UserID:             app.userID,
		Email:              app.email,
		FullName:           app.firstName + " " + app.lastName,
		SchoolName:         classified.schoolName,
		GraduationDate:     app.graduationDate,
		StudentNumber:      app.studentID,
		VerificationMethod: app.method,
		Status:             constants.StudentVerificationStatusPending,
		VerificationToken:  classified.token,
		Metadata:           datatypes.NewJSONType(classified.metadata),
		DiscountPercentage: s.policy.percentage,
	}

	var shortCircuit *models.StudentVerification
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		active, err := repo.GetActiveByUserForUpdate(app.userID)
		if err != nil {
			return err
		}
		if active != nil {
			shortCircuit = active
			return nil
		}
		if classified.verified {
			if err := s.policy.promote(repo, record, s.now()); err != nil {
				return err
			}
		}
		if err := repo.Create(record); err != nil {
			return err
		}
		return writeVerificationLog(s.logRepo.WithTx(tx), record.ID, constants.VerificationLogCreated,
			constants.ActorUser, app.userID, map[string]interface{}{
				"method":   app.method,
				"status":   record.Status,
				"evidence": record.Evidence,
			})
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// 并发申请被唯一索引拦下
		active, readErr := s.repo.GetActiveByUserForUpdate(app.userID)
		if readErr != nil {
			return nil, readErr
		}
		if active == nil {
			return nil, ErrDiscountCodeIssueFailed
		}
		shortCircuit = active
		err = nil
	}
	if err != nil {
		return nil, err
	}
	if shortCircuit != nil {
		return existingApplyResult(shortCircuit, input.Locale), nil
	}

	metrics.VerificationCreated(record.VerificationMethod, record.Status)
	logger.Infow("student_verification_created",
		"verification_id", record.ID,
		"user_id", record.UserID,
		"method", record.VerificationMethod,
		"evidence", record.Evidence,
		"status", record.Status,
	)
	publishStatusChanged(ctx, s.publisher, record, "", constants.ActorSystem)
	if record.Status == constants.StudentVerificationStatusVerified {
		s.enqueueApprovedEmail(record.ID, input.Locale)
	}

	result := &ApplyResult{
		VerificationID:  record.ID,
		Status:          record.Status,
		DiscountCode:    record.Code(),
		VerificationURL: classified.verificationURL,
	}
	if record.Status == constants.StudentVerificationStatusVerified {
		result.DiscountPercentage = record.DiscountPercentage
		result.Message = i18n.Sprintf(input.Locale, "student.apply.verified", record.DiscountPercentage)
	} else {
		result.Message = i18n.T(input.Locale, "student.apply.pending")
		if classified.verificationURL != "" {
			result.Message += i18n.T(input.Locale, "student.apply.pending_url")
		}
	}
	return result, nil
}

func (s *StudentVerificationService) classify(ctx context.Context, app applicant) (classifiedApplication, error) {
	if app.method == constants.StudentVerificationMethodThirdParty {
		return s.classifyThirdParty(ctx, app)
	}
	result := s.domainSvc.Classify(ctx, app.email)
	return classifiedApplication{
		metadata: models.NewEmailMetadata(models.EmailEvidence{
			Confidence: result.Confidence,
			Domain:     result.Domain,
			SchoolName: result.SchoolName,
			Country:    result.Country,
		}),
		verified:   s.policy.autoVerifies(result),
		schoolName: firstNonEmpty(app.schoolName, result.SchoolName),
	}, nil
}

// classifyThirdParty 第三方失败时降级为邮箱识别；缺少凭据属于配置错误，不降级
func (s *StudentVerificationService) classifyThirdParty(ctx context.Context, app applicant) (classifiedApplication, error) {
	if s.identity == nil {
		return classifiedApplication{}, ErrIdentityProviderNotConfigured
	}
	graduation := ""
	if app.graduationDate != nil {
		graduation = app.graduationDate.Format(time.DateOnly)
	}
	res, err := s.identity.Initiate(ctx, sheerid.InitiateInput{
		Person: sheerid.PersonInfo{
			FirstName: app.firstName,
			LastName:  app.lastName,
			Email:     app.email,
		},
		SchoolName:     app.schoolName,
		StudentID:      app.studentID,
		GraduationDate: graduation,
	})
	if err == nil {
		return classifiedApplication{
			metadata: models.NewThirdPartyMetadata(models.ThirdPartyEvidence{
				Provider:        constants.IdentityProviderSheerID,
				Token:           res.Token,
				Status:          res.Status,
				VerificationURL: res.VerificationURL,
			}),
			verified:        res.Status == constants.ThirdPartyStatusVerified,
			schoolName:      firstNonEmpty(app.schoolName, res.SchoolName),
			token:           res.Token,
			verificationURL: res.VerificationURL,
		}, nil
	}
	if errors.Is(err, sheerid.ErrConfigMissing) {
		logger.Errorw("sheerid_config_missing", "user_id", app.userID)
		return classifiedApplication{}, fmt.Errorf("%w: %v", ErrIdentityProviderNotConfigured, err)
	}

	metrics.ProviderFallback()
	logger.Warnw("sheerid_fallback", "user_id", app.userID, "error", err)
	result := s.domainSvc.Classify(ctx, app.email)
	return classifiedApplication{
		metadata: models.NewFallbackMetadata(models.FallbackEvidence{
			Confidence:    result.Confidence,
			Domain:        result.Domain,
			SchoolName:    result.SchoolName,
			ProviderError: err.Error(),
		}),
		verified:   s.policy.autoVerifies(result),
		schoolName: firstNonEmpty(app.schoolName, result.SchoolName),
	}, nil
}

func existingApplyResult(v *models.StudentVerification, locale string) *ApplyResult {
	result := &ApplyResult{
		VerificationID: v.ID,
		Status:         v.Status,
		DiscountCode:   v.Code(),
		Existing:       true,
	}
	if v.Status == constants.StudentVerificationStatusVerified {
		result.DiscountPercentage = v.DiscountPercentage
		result.Message = i18n.T(locale, "student.apply.already_verified")
	} else {
		result.Message = i18n.T(locale, "student.apply.already_pending")
	}
	return result
}

func normalizeApplicant(input ApplyInput) (applicant, error) {
	app := applicant{
		userID:     strings.TrimSpace(input.UserID),
		email:      NormalizeEmail(input.Email),
		firstName:  strings.TrimSpace(input.FirstName),
		lastName:   strings.TrimSpace(input.LastName),
		schoolName: strings.TrimSpace(input.SchoolName),
		studentID:  strings.TrimSpace(input.StudentID),
		method:     strings.ToLower(strings.TrimSpace(input.Method)),
	}
	if app.userID == "" {
		return applicant{}, ErrUserIdentityRequired
	}
	if app.email == "" || app.firstName == "" || app.lastName == "" {
		return applicant{}, ErrApplicantFieldsRequired
	}
	if !IsValidEmail(app.email) {
		return applicant{}, ErrInvalidEmail
	}
	switch app.method {
	case "":
		app.method = constants.StudentVerificationMethodEmail
	case constants.StudentVerificationMethodEmail, constants.StudentVerificationMethodThirdParty:
	default:
		return applicant{}, ErrVerificationMethodInvalid
	}
	if raw := strings.TrimSpace(input.GraduationDate); raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return applicant{}, ErrGraduationDateInvalid
		}
		app.graduationDate = &date
	}
	return app, nil
}

// VerificationStatusResult 当前用户认证状态
type VerificationStatusResult struct {
	HasVerification    bool       `json:"has_verification"`
	VerificationID     uint       `json:"verification_id,omitempty"`
	Status             string     `json:"status,omitempty"`
	VerificationMethod string     `json:"verification_method,omitempty"`
	DiscountCode       string     `json:"discount_code,omitempty"`
	DiscountPercentage int        `json:"discount_percentage,omitempty"`
	SchoolName         string     `json:"school_name,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	IsExpired          bool       `json:"is_expired"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
}

// Status 查询用户最近一条认证记录，过期只在读取时计算
// 第三方待核验记录会实时向服务商查询一次
func (s *StudentVerificationService) Status(ctx context.Context, userID string) (*VerificationStatusResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIdentityRequired
	}
	latest, err := s.repo.GetLatestByUser(userID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return &VerificationStatusResult{HasVerification: false}, nil
	}
	if refreshed := s.refreshThirdParty(ctx, latest); refreshed != nil {
		latest = refreshed
	}

	createdAt := latest.CreatedAt
	result := &VerificationStatusResult{
		HasVerification:    true,
		VerificationID:     latest.ID,
		Status:             latest.Status,
		VerificationMethod: latest.VerificationMethod,
		DiscountCode:       latest.Code(),
		SchoolName:         latest.SchoolName,
		VerifiedAt:         latest.VerifiedAt,
		ExpiresAt:          latest.ExpiresAt,
		IsExpired:          latest.IsExpired(s.now()),
		CreatedAt:          &createdAt,
	}
	if latest.Status == constants.StudentVerificationStatusVerified {
		result.DiscountPercentage = latest.DiscountPercentage
	}
	return result, nil
}

// refreshThirdParty 服务商结论为 verified/rejected 时同步状态；查询失败沿用库内状态
func (s *StudentVerificationService) refreshThirdParty(ctx context.Context, v *models.StudentVerification) *models.StudentVerification {
	if v.Status != constants.StudentVerificationStatusPending ||
		v.VerificationMethod != constants.StudentVerificationMethodThirdParty ||
		v.VerificationToken == "" || s.identity == nil || !s.identity.Configured() {
		return nil
	}
	res, err := s.identity.Status(ctx, v.VerificationToken)
	if err != nil {
		logger.Warnw("sheerid_status_check_failed", "verification_id", v.ID, "error", err)
		return nil
	}
	if res.Status != constants.ThirdPartyStatusVerified && res.Status != constants.ThirdPartyStatusRejected {
		return nil
	}

	var updated *models.StudentVerification
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetByIDForUpdate(v.ID)
		if err != nil {
			return err
		}
		if current == nil || current.Status != constants.StudentVerificationStatusPending {
			updated = current
			return nil
		}
		action := constants.VerificationLogProviderRejected
		if res.Status == constants.ThirdPartyStatusVerified {
			action = constants.VerificationLogProviderVerified
			if err := s.policy.promote(repo, current, s.now()); err != nil {
				return err
			}
		} else {
			current.Status = constants.StudentVerificationStatusRejected
		}
		meta := current.Metadata.Data()
		if meta.ThirdParty != nil {
			meta.ThirdParty.Status = res.Status
			current.Metadata = datatypes.NewJSONType(meta)
		}
		if err := repo.Update(current); err != nil {
			return err
		}
		updated = current
		return writeVerificationLog(s.logRepo.WithTx(tx), current.ID, action, constants.ActorSystem, "",
			map[string]interface{}{"provider": constants.IdentityProviderSheerID, "provider_status": res.Status})
	})
	if err != nil {
		logger.Warnw("sheerid_status_sync_failed", "verification_id", v.ID, "error", err)
		return nil
	}
	if updated != nil && updated.Status != constants.StudentVerificationStatusPending {
		publishStatusChanged(ctx, s.publisher, updated, constants.StudentVerificationStatusPending, constants.ActorSystem)
		if updated.Status == constants.StudentVerificationStatusVerified {
			s.enqueueApprovedEmail(updated.ID, "")
		}
	}
	return updated
}

// UserDiscountSummary 用户折扣概览
type UserDiscountSummary struct {
	HasDiscount        bool       `json:"has_discount"`
	VerificationID     uint       `json:"verification_id,omitempty"`
	DiscountCode       string     `json:"discount_code,omitempty"`
	DiscountPercentage int        `json:"discount_percentage,omitempty"`
	SchoolName         string     `json:"school_name,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	IsExpired          bool       `json:"is_expired"`
	UsageCount         int64      `json:"usage_count"`
	TotalSavings       string     `json:"total_savings"`
	LastUsedAt         *time.Time `json:"last_used_at,omitempty"`
}

// UserDiscount 最近一条已认证记录及使用汇总
func (s *StudentVerificationService) UserDiscount(userID string) (*UserDiscountSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIdentityRequired
	}
	verified, err := s.repo.GetLatestVerifiedByUser(userID)
	if err != nil {
		return nil, err
	}
	if verified == nil {
		return &UserDiscountSummary{HasDiscount: false, TotalSavings: models.Money{}.String()}, nil
	}
	usage, err := s.usageRepo.SummarizeByVerification(verified.ID)
	if err != nil {
		return nil, err
	}
	return &UserDiscountSummary{
		HasDiscount:        true,
		VerificationID:     verified.ID,
		DiscountCode:       verified.Code(),
		DiscountPercentage: verified.DiscountPercentage,
		SchoolName:         verified.SchoolName,
		VerifiedAt:         verified.VerifiedAt,
		ExpiresAt:          verified.ExpiresAt,
		IsExpired:          verified.IsExpired(s.now()),
		UsageCount:         usage.UsageCount,
		TotalSavings:       models.NewMoneyFromFloat(usage.TotalSavings).String(),
		LastUsedAt:         usage.LastUsedAt,
	}, nil
}

func (s *StudentVerificationService) enqueueApprovedEmail(verificationID uint, locale string) {
	if err := s.queueClient.EnqueueVerificationApprovedEmail(queue.VerificationApprovedEmailPayload{
		VerificationID: verificationID,
		Locale:         locale,
	}); err != nil {
		logger.Warnw("student_verification_email_enqueue_failed", "verification_id", verificationID, "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
