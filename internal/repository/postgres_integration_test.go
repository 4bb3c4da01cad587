//go:build integration
// +build integration

package repository

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	_ = db.Migrator().DropTable(models.AllModels()...)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(models.AllModels()...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresDomainKeywordSearchIsCaseInsensitive(t *testing.T) {
	repo := NewStudentEmailDomainRepository(setupPostgresIntegrationDB(t))

	if err := repo.Create(&models.StudentEmailDomain{
		Domain:            "@mit.edu",
		SchoolName:        "Massachusetts Institute of Technology",
		Country:           "US",
		VerificationLevel: constants.DomainLevelVerified,
		IsActive:          true,
	}); err != nil {
		t.Fatalf("create domain failed: %v", err)
	}

	rows, total, err := repo.List(StudentEmailDomainListFilter{Page: 1, PageSize: 20, Keyword: "MASSACHUSETTS"})
	if err != nil {
		t.Fatalf("list domains failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("keyword search want 1 got total=%d len=%d", total, len(rows))
	}

	err = repo.Create(&models.StudentEmailDomain{Domain: "@mit.edu", SchoolName: "dup", IsActive: true})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate from pg unique violation, got %v", err)
	}
}

func TestPostgresActiveVerificationPartialIndex(t *testing.T) {
	repo := NewStudentVerificationRepository(setupPostgresIntegrationDB(t))

	rejected := newVerification("pg-user", constants.StudentVerificationStatusRejected, "")
	if err := repo.Create(rejected); err != nil {
		t.Fatalf("create rejected failed: %v", err)
	}
	if err := repo.Create(newVerification("pg-user", constants.StudentVerificationStatusPending, "")); err != nil {
		t.Fatalf("create pending failed: %v", err)
	}
	err := repo.Create(newVerification("pg-user", constants.StudentVerificationStatusVerified, ""))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for second active record, got %v", err)
	}
}

func TestPostgresDiscountUsageSummary(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewDiscountUsageRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	for i, order := range []string{"PG-ORDER-001", "PG-ORDER-002"} {
		usage := &models.DiscountUsage{
			VerificationID: 1,
			UserID:         "pg-user",
			OrderID:        order,
			OriginalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			FinalAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
			Currency:       "USD",
			UsedAt:         now.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(usage); err != nil {
			t.Fatalf("create usage failed: %v", err)
		}
	}

	summary, err := repo.Summary()
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalUsage != 2 || summary.UniqueUsers != 1 || summary.TotalDiscountAmount != 40 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	row, err := repo.SummarizeByVerification(1)
	if err != nil {
		t.Fatalf("summarize by verification failed: %v", err)
	}
	if row.UsageCount != 2 || row.LastUsedAt == nil || !row.LastUsedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected verification usage: %+v", row)
	}
}
