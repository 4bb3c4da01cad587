package provider

import (
	"time"

	"github.com/buildlab-academy/internal/authz"
	"github.com/buildlab-academy/internal/cache"
	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/events"
	"github.com/buildlab-academy/internal/logger"
	"github.com/buildlab-academy/internal/models"
	"github.com/buildlab-academy/internal/queue"
	"github.com/buildlab-academy/internal/repository"
	"github.com/buildlab-academy/internal/service"
	"github.com/buildlab-academy/internal/verification/sheerid"
)

// Container 依赖注入容器
type Container struct {
	Config         *config.Config
	QueueClient    *queue.Client
	EventPublisher events.Publisher

	// Repositories
	AdminRepo               repository.AdminRepository
	StudentVerificationRepo repository.StudentVerificationRepository
	StudentLogRepo          repository.StudentVerificationLogRepository
	DiscountUsageRepo       repository.DiscountUsageRepository
	StudentDomainRepo       repository.StudentEmailDomainRepository
	NewsletterRepo          repository.NewsletterRepository

	// Services
	AuthzService               *authz.Service
	AuthService                *service.AuthService
	EmailService               *service.EmailService
	CaptchaService             *service.CaptchaService
	StudentDomainService       *service.StudentDomainService
	StudentVerificationService *service.StudentVerificationService
	StudentDiscountService     *service.StudentDiscountService
	StudentAdminService        *service.StudentAdminService
	NewsletterService          *service.NewsletterService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c := &Container{
		Config:         cfg,
		QueueClient:    queueClient,
		EventPublisher: events.NewPublisher(cfg.Kafka),
	}
	c.initRepositories()
	c.initServices()
	return c
}

// Close 释放队列与事件投递连接
func (c *Container) Close() {
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			logger.Warnw("provider_close_event_publisher_failed", "error", err)
		}
	}
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.StudentVerificationRepo = repository.NewStudentVerificationRepository(db)
	c.StudentLogRepo = repository.NewStudentVerificationLogRepository(db)
	c.DiscountUsageRepo = repository.NewDiscountUsageRepository(db)
	c.StudentDomainRepo = repository.NewStudentEmailDomainRepository(db)
	c.NewsletterRepo = repository.NewNewsletterRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService

	cfg := c.Config
	c.AuthService = service.NewAuthService(cfg, c.AdminRepo)
	c.EmailService = service.NewEmailService(&cfg.Email)
	c.CaptchaService = service.NewCaptchaService(cfg.Captcha)

	c.StudentDomainService = service.NewStudentDomainService(
		c.StudentDomainRepo,
		time.Duration(cfg.StudentDiscount.DomainCacheTTL)*time.Second,
	)
	c.StudentVerificationService = service.NewStudentVerificationService(
		c.StudentVerificationRepo,
		c.StudentLogRepo,
		c.DiscountUsageRepo,
		c.StudentDomainService,
		newIdentityVerifier(cfg.SheerID),
		c.QueueClient,
		c.EventPublisher,
		cfg.StudentDiscount,
	)
	c.StudentDiscountService = service.NewStudentDiscountService(
		c.StudentVerificationRepo,
		c.StudentLogRepo,
		c.DiscountUsageRepo,
		c.EventPublisher,
		cfg.StudentDiscount,
	)
	c.StudentAdminService = service.NewStudentAdminService(
		c.StudentVerificationRepo,
		c.StudentLogRepo,
		c.DiscountUsageRepo,
		c.QueueClient,
		c.EventPublisher,
		c.StudentVerificationService,
	)
	c.NewsletterService = service.NewNewsletterService(
		c.NewsletterRepo,
		c.EmailService,
		c.QueueClient,
		cfg.Server.PublicURL,
		cfg.Newsletter.Source,
		cfg.Newsletter.BroadcastBatch,
	)
}

// newIdentityVerifier 未启用时返回 nil，第三方申请直接报未配置
func newIdentityVerifier(cfg config.SheerIDConfig) service.IdentityVerifier {
	if !cfg.Enabled {
		return nil
	}
	client := sheerid.New(sheerid.Config{
		APIBaseURL: cfg.APIURL,
		APIToken:   cfg.APIToken,
		ProgramID:  cfg.ProgramID,
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.MaxRetries,
	})
	if !client.Configured() {
		logger.Warnw("sheerid_credentials_missing")
	}
	return client
}
