package main

import (
	"errors"
	"flag"
	"strings"
	"time"

	"github.com/buildlab-academy/internal/authz"
	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/logger"
	"github.com/buildlab-academy/internal/models"
	"github.com/buildlab-academy/internal/repository"
	"github.com/buildlab-academy/internal/service"

	"gorm.io/gorm"
)

// domainSeeds 初始学校域名，verified 为人工确认的学校，heuristic 仅做提示
var domainSeeds = []models.StudentEmailDomain{
	{Domain: "@mit.edu", SchoolName: "Massachusetts Institute of Technology", Country: "US", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@stanford.edu", SchoolName: "Stanford University", Country: "US", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@berkeley.edu", SchoolName: "University of California, Berkeley", Country: "US", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@cmu.edu", SchoolName: "Carnegie Mellon University", Country: "US", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@harvard.edu", SchoolName: "Harvard University", Country: "US", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@umich.edu", SchoolName: "University of Michigan", Country: "US", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@gatech.edu", SchoolName: "Georgia Institute of Technology", Country: "US", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@utexas.edu", SchoolName: "The University of Texas at Austin", Country: "US", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@cam.ac.uk", SchoolName: "University of Cambridge", Country: "GB", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@ox.ac.uk", SchoolName: "University of Oxford", Country: "GB", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@imperial.ac.uk", SchoolName: "Imperial College London", Country: "GB", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@ucl.ac.uk", SchoolName: "University College London", Country: "GB", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@utoronto.ca", SchoolName: "University of Toronto", Country: "CA", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@unimelb.edu.au", SchoolName: "The University of Melbourne", Country: "AU", VerificationLevel: constants.DomainLevelVerified},
	{Domain: "@student.tudelft.nl", SchoolName: "Delft University of Technology", Country: "NL", VerificationLevel: constants.DomainLevelHeuristic},
	{Domain: "@student.ethz.ch", SchoolName: "ETH Zurich", Country: "CH", VerificationLevel: constants.DomainLevelHeuristic},
	{Domain: "@tum.de", SchoolName: "Technical University of Munich", Country: "DE", VerificationLevel: constants.DomainLevelHeuristic},
}

func main() {
	var (
		adminUser  string
		adminPass  string
		adminRoles string
		devUserID  string
		devEmail   string
		skipDomain bool
	)
	flag.StringVar(&adminUser, "admin", "", "创建后台管理员用户名，留空跳过")
	flag.StringVar(&adminPass, "admin-password", "", "管理员密码，需满足密码策略")
	flag.StringVar(&adminRoles, "admin-roles", authz.RoleReviewer, "管理员角色，逗号分隔")
	flag.StringVar(&devUserID, "dev-user", "", "签发开发用用户 token 的用户 ID，留空跳过")
	flag.StringVar(&devEmail, "dev-email", "", "开发用用户 token 携带的邮箱")
	flag.BoolVar(&skipDomain, "skip-domains", false, "跳过学校域名初始化")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, false, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if !skipDomain {
		created, existing := seedDomains(models.DB)
		logger.Infow("seed_domains_done", "created", created, "existing", existing)
	}

	adminRepo := repository.NewAdminRepository(models.DB)
	authService := service.NewAuthService(cfg, adminRepo)

	if strings.TrimSpace(adminUser) != "" {
		authzService, err := authz.NewService(models.DB)
		if err != nil {
			stdLog.Fatalf("Failed to init authz: %v", err)
		}
		if err := authzService.BootstrapBuiltinRoles(); err != nil {
			stdLog.Fatalf("Failed to bootstrap roles: %v", err)
		}
		if err := seedAdmin(adminRepo, authService, authzService, adminUser, adminPass, splitRoles(adminRoles)); err != nil {
			stdLog.Fatalf("Failed to seed admin %s: %v", adminUser, err)
		}
	}

	if strings.TrimSpace(devUserID) != "" {
		token, err := authService.IssueUserJWT(strings.TrimSpace(devUserID), strings.TrimSpace(devEmail), 24*time.Hour)
		if err != nil {
			stdLog.Fatalf("Failed to issue dev token: %v", err)
		}
		stdLog.Printf("Dev user token (24h): %s", token)
	}
}

func seedDomains(db *gorm.DB) (created, existing int) {
	for _, seed := range domainSeeds {
		var row models.StudentEmailDomain
		err := db.Where("domain = ?", seed.Domain).First(&row).Error
		if err == nil {
			existing++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warnw("seed_domain_lookup_failed", "domain", seed.Domain, "error", err)
			continue
		}
		seed.IsActive = true
		if err := db.Create(&seed).Error; err != nil {
			logger.Warnw("seed_domain_create_failed", "domain", seed.Domain, "error", err)
			continue
		}
		created++
	}
	return created, existing
}

func seedAdmin(repo repository.AdminRepository, authService *service.AuthService, authzService *authz.Service, username, password string, roles []string) error {
	username = strings.TrimSpace(username)
	admin, err := repo.GetByUsername(username)
	if err != nil {
		return err
	}
	if admin != nil {
		logger.Infow("seed_admin_exists", "username", username)
	} else {
		if err := authService.ValidatePassword(password); err != nil {
			return err
		}
		hash, err := authService.HashPassword(password)
		if err != nil {
			return err
		}
		admin = &models.Admin{Username: username, PasswordHash: hash}
		if err := repo.Create(admin); err != nil {
			return err
		}
		logger.Infow("seed_admin_created", "username", username, "admin_id", admin.ID)
	}

	if admin.IsSuper || len(roles) == 0 {
		return nil
	}
	return authzService.SetAdminRoles(admin.ID, roles)
}

func splitRoles(raw string) []string {
	parts := strings.Split(raw, ",")
	roles := make([]string, 0, len(parts))
	for _, part := range parts {
		if role := strings.TrimSpace(part); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
