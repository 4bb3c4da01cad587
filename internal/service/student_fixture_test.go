package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/buildlab-academy/internal/cache"
	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/models"
	"github.com/buildlab-academy/internal/repository"
	"github.com/buildlab-academy/internal/verification/sheerid"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type studentFixture struct {
	db               *gorm.DB
	verificationRepo *repository.GormStudentVerificationRepository
	logRepo          *repository.GormStudentVerificationLogRepository
	usageRepo        *repository.GormDiscountUsageRepository
	domainRepo       *repository.GormStudentEmailDomainRepository
	domainSvc        *StudentDomainService
	verificationSvc  *StudentVerificationService
	discountSvc      *StudentDiscountService
	adminSvc         *StudentAdminService
}

func setupStudentServiceTest(t *testing.T, identity IdentityVerifier) *studentFixture {
	t.Helper()
	cache.Use(nil, "")

	dsn := fmt.Sprintf("file:student_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := config.StudentDiscountConfig{
		Percentage:      20,
		ValidDays:       365,
		AutoVerifyLevel: "high",
		DefaultCurrency: "USD",
	}
	f := &studentFixture{
		db:               db,
		verificationRepo: repository.NewStudentVerificationRepository(db),
		logRepo:          repository.NewStudentVerificationLogRepository(db),
		usageRepo:        repository.NewDiscountUsageRepository(db),
		domainRepo:       repository.NewStudentEmailDomainRepository(db),
	}
	f.domainSvc = NewStudentDomainService(f.domainRepo, time.Minute)
	f.verificationSvc = NewStudentVerificationService(f.verificationRepo, f.logRepo, f.usageRepo, f.domainSvc, identity, nil, nil, cfg)
	f.discountSvc = NewStudentDiscountService(f.verificationRepo, f.logRepo, f.usageRepo, nil, cfg)
	f.adminSvc = NewStudentAdminService(f.verificationRepo, f.logRepo, f.usageRepo, nil, nil, f.verificationSvc)
	return f
}

// withClock 固定所有服务的当前时间
func (f *studentFixture) withClock(now time.Time) {
	clock := func() time.Time { return now }
	f.verificationSvc.now = clock
	f.verificationSvc.policy.issuer.now = clock
	f.discountSvc.now = clock
	f.adminSvc.now = clock
}

func (f *studentFixture) seedDomain(t *testing.T, domain, school, level string) {
	t.Helper()
	if _, err := f.domainSvc.CreateDomain(context.Background(), StudentDomainInput{
		Domain:            domain,
		SchoolName:        school,
		Country:           "US",
		VerificationLevel: level,
	}); err != nil {
		t.Fatalf("seed domain failed: %v", err)
	}
}

func (f *studentFixture) apply(t *testing.T, userID, email string) *ApplyResult {
	t.Helper()
	result, err := f.verificationSvc.Apply(context.Background(), ApplyInput{
		UserID:    userID,
		Email:     email,
		FirstName: "Jane",
		LastName:  "Doe",
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	return result
}

func (f *studentFixture) logActions(t *testing.T, verificationID uint) []string {
	t.Helper()
	logs, err := f.logRepo.ListByVerification(verificationID)
	if err != nil {
		t.Fatalf("list logs failed: %v", err)
	}
	actions := make([]string, 0, len(logs))
	for _, row := range logs {
		actions = append(actions, row.Action)
	}
	return actions
}

func money(t *testing.T, raw string) models.Money {
	t.Helper()
	var m models.Money
	if err := m.UnmarshalJSON([]byte(raw)); err != nil {
		t.Fatalf("parse money %q failed: %v", raw, err)
	}
	return m
}

type fakeIdentityVerifier struct {
	mu          sync.Mutex
	configured  bool
	initiate    *sheerid.Result
	initiateErr error
	status      *sheerid.Result
	statusErr   error
	statusCalls int
}

func (f *fakeIdentityVerifier) Configured() bool { return f.configured }

func (f *fakeIdentityVerifier) Initiate(_ context.Context, _ sheerid.InitiateInput) (*sheerid.Result, error) {
	if f.initiateErr != nil {
		return nil, f.initiateErr
	}
	return f.initiate, nil
}

func (f *fakeIdentityVerifier) Status(_ context.Context, _ string) (*sheerid.Result, error) {
	f.mu.Lock()
	f.statusCalls++
	f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}
