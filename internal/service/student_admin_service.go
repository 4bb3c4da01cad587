package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/events"
	"github.com/buildlab-academy/internal/logger"
	"github.com/buildlab-academy/internal/metrics"
	"github.com/buildlab-academy/internal/models"
	"github.com/buildlab-academy/internal/queue"
	"github.com/buildlab-academy/internal/repository"

	"gorm.io/gorm"
)

const (
	statisticsRecentDays = 30
	statisticsTopSchools = 10
)

// 后台动作允许的起始状态
var adminActionTransitions = map[string]struct {
	from   []string
	to     string
	logKey string
}{
	constants.AdminActionApprove: {
		from:   []string{constants.StudentVerificationStatusPending, constants.StudentVerificationStatusRejected},
		to:     constants.StudentVerificationStatusVerified,
		logKey: constants.VerificationLogManuallyApproved,
	},
	constants.AdminActionReject: {
		from:   []string{constants.StudentVerificationStatusPending},
		to:     constants.StudentVerificationStatusRejected,
		logKey: constants.VerificationLogManuallyRejected,
	},
	constants.AdminActionReset: {
		from:   []string{constants.StudentVerificationStatusVerified},
		to:     constants.StudentVerificationStatusPending,
		logKey: constants.VerificationLogManuallyReset,
	},
}

// StudentAdminService 后台认证审核与统计
// 权限校验在路由层完成，这里只信任调用方已具备审核能力
type StudentAdminService struct {
	repo        repository.StudentVerificationRepository
	logRepo     repository.StudentVerificationLogRepository
	usageRepo   repository.DiscountUsageRepository
	queueClient *queue.Client
	publisher   events.Publisher
	policy      *verificationPolicy
	now         func() time.Time
}

// NewStudentAdminService 创建后台审核服务，与申请流程共用签发规则
func NewStudentAdminService(
	repo repository.StudentVerificationRepository,
	logRepo repository.StudentVerificationLogRepository,
	usageRepo repository.DiscountUsageRepository,
	queueClient *queue.Client,
	publisher events.Publisher,
	verificationSvc *StudentVerificationService,
) *StudentAdminService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &StudentAdminService{
		repo:        repo,
		logRepo:     logRepo,
		usageRepo:   usageRepo,
		queueClient: queueClient,
		publisher:   publisher,
		policy:      verificationSvc.policy,
		now:         time.Now,
	}
}

// List 认证记录列表
func (s *StudentAdminService) List(filter repository.StudentVerificationListFilter) ([]models.StudentVerification, int64, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	filter.Method = strings.ToLower(strings.TrimSpace(filter.Method))
	filter.Evidence = strings.ToLower(strings.TrimSpace(filter.Evidence))
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	return s.repo.List(filter)
}

// VerificationDetail 认证详情
type VerificationDetail struct {
	Verification *models.StudentVerification     `json:"verification"`
	IsExpired    bool                            `json:"is_expired"`
	Logs         []models.StudentVerificationLog `json:"logs"`
	Usage        repository.VerificationUsageRow `json:"usage"`
}

// Detail 认证详情及流水
func (s *StudentAdminService) Detail(id uint) (*VerificationDetail, error) {
	verification, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if verification == nil {
		return nil, ErrVerificationNotFound
	}
	logs, err := s.logRepo.ListByVerification(id)
	if err != nil {
		return nil, err
	}
	usage, err := s.usageRepo.SummarizeByVerification(id)
	if err != nil {
		return nil, err
	}
	return &VerificationDetail{
		Verification: verification,
		IsExpired:    verification.IsExpired(s.now()),
		Logs:         logs,
		Usage:        usage,
	}, nil
}

// AdminActionInput 后台审核动作
type AdminActionInput struct {
	VerificationID uint
	Action         string
	Notes          string
	AdminID        uint
}

// PerformAction 执行 approve / reject / reset
func (s *StudentAdminService) PerformAction(ctx context.Context, input AdminActionInput) (*models.StudentVerification, error) {
	action := strings.ToLower(strings.TrimSpace(input.Action))
	transition, ok := adminActionTransitions[action]
	if !ok {
		return nil, ErrAdminActionInvalid
	}
	if input.VerificationID == 0 {
		return nil, ErrVerificationNotFound
	}

	var (
		updated *models.StudentVerification
		from    string
	)
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetByIDForUpdate(input.VerificationID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrVerificationNotFound
		}
		if !containsString(transition.from, current.Status) {
			return ErrAdminActionInvalid
		}
		from = current.Status

		switch action {
		case constants.AdminActionApprove:
			if err := s.policy.promote(repo, current, s.now()); err != nil {
				return err
			}
		case constants.AdminActionReject:
			current.Status = constants.StudentVerificationStatusRejected
		case constants.AdminActionReset:
			current.Status = constants.StudentVerificationStatusPending
			current.VerifiedAt = nil
		}
		if err := repo.Update(current); err != nil {
			return err
		}
		updated = current
		return writeVerificationLog(s.logRepo.WithTx(tx), current.ID, transition.logKey,
			constants.ActorAdmin, adminActorID(input.AdminID), map[string]interface{}{
				"adminAction": true,
				"notes":       strings.TrimSpace(input.Notes),
				"from":        from,
				"to":          transition.to,
			})
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// 重新通过被驳回记录时，用户已有其他有效记录
			return nil, ErrVerificationActiveExists
		}
		return nil, err
	}

	metrics.AdminAction(action)
	logger.Infow("student_verification_admin_action",
		"verification_id", updated.ID,
		"action", action,
		"admin_id", input.AdminID,
		"from", from,
		"to", updated.Status,
	)
	publishStatusChanged(ctx, s.publisher, updated, from, constants.ActorAdmin)
	if updated.Status == constants.StudentVerificationStatusVerified {
		if err := s.queueClient.EnqueueVerificationApprovedEmail(queue.VerificationApprovedEmailPayload{VerificationID: updated.ID}); err != nil {
			logger.Warnw("student_verification_email_enqueue_failed", "verification_id", updated.ID, "error", err)
		}
	}
	return updated, nil
}

// VerificationStatistics 后台统计
type VerificationStatistics struct {
	PendingCount        int64                         `json:"pending_count"`
	VerifiedCount       int64                         `json:"verified_count"`
	RejectedCount       int64                         `json:"rejected_count"`
	TotalCount          int64                         `json:"total_count"`
	RecentCount         int64                         `json:"recent_count"`
	TotalUsage          int64                         `json:"total_usage"`
	TotalDiscountAmount models.Money                  `json:"total_discount_amount"`
	UniqueUsers         int64                         `json:"unique_users"`
	TopSchools          []repository.SchoolRankingRow `json:"top_schools"`
}

// Statistics 认证与使用统计
func (s *StudentAdminService) Statistics() (*VerificationStatistics, error) {
	counts, err := s.repo.CountByStatus()
	if err != nil {
		return nil, err
	}
	stats := &VerificationStatistics{}
	for _, row := range counts {
		switch row.Status {
		case constants.StudentVerificationStatusPending:
			stats.PendingCount = row.Total
		case constants.StudentVerificationStatusVerified:
			stats.VerifiedCount = row.Total
		case constants.StudentVerificationStatusRejected:
			stats.RejectedCount = row.Total
		}
		stats.TotalCount += row.Total
	}
	recent, err := s.repo.CountCreatedSince(s.now().AddDate(0, 0, -statisticsRecentDays))
	if err != nil {
		return nil, err
	}
	stats.RecentCount = recent

	usage, err := s.usageRepo.Summary()
	if err != nil {
		return nil, err
	}
	stats.TotalUsage = usage.TotalUsage
	stats.TotalDiscountAmount = models.NewMoneyFromFloat(usage.TotalDiscountAmount)
	stats.UniqueUsers = usage.UniqueUsers

	schools, err := s.repo.TopVerifiedSchools(statisticsTopSchools)
	if err != nil {
		return nil, err
	}
	if schools == nil {
		schools = []repository.SchoolRankingRow{}
	}
	stats.TopSchools = schools
	return stats, nil
}

func adminActorID(adminID uint) string {
	if adminID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(adminID), 10)
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
