package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupStudentRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:student_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newVerification(userID, status, school string) *models.StudentVerification {
	return &models.StudentVerification{
		UserID:             userID,
		Email:              userID + "@college.edu",
		FullName:           "Test " + userID,
		SchoolName:         school,
		VerificationMethod: constants.StudentVerificationMethodEmail,
		Status:             status,
	}
}

func TestActiveVerificationUniquePerUser(t *testing.T) {
	repo := NewStudentVerificationRepository(setupStudentRepositoryTest(t))

	if err := repo.Create(newVerification("u1", constants.StudentVerificationStatusRejected, "")); err != nil {
		t.Fatalf("create rejected failed: %v", err)
	}
	if err := repo.Create(newVerification("u1", constants.StudentVerificationStatusRejected, "")); err != nil {
		t.Fatalf("second rejected should be allowed: %v", err)
	}
	if err := repo.Create(newVerification("u1", constants.StudentVerificationStatusPending, "")); err != nil {
		t.Fatalf("create pending failed: %v", err)
	}
	err := repo.Create(newVerification("u1", constants.StudentVerificationStatusVerified, ""))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for second active record, got %v", err)
	}

	active, err := repo.GetActiveByUserForUpdate("u1")
	if err != nil || active == nil {
		t.Fatalf("expected active record, got %v %v", active, err)
	}
	if active.Status != constants.StudentVerificationStatusPending {
		t.Fatalf("unexpected active status: %s", active.Status)
	}
}

func TestGetVerifiedByCodeIgnoresOtherStatuses(t *testing.T) {
	repo := NewStudentVerificationRepository(setupStudentRepositoryTest(t))

	code := "STUDENT-PENDING-1"
	pending := newVerification("u2", constants.StudentVerificationStatusPending, "")
	pending.DiscountCode = &code
	if err := repo.Create(pending); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := repo.GetVerifiedByCode(code)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got != nil {
		t.Fatalf("pending record must not resolve by code")
	}
	exists, err := repo.CodeExists(code)
	if err != nil || !exists {
		t.Fatalf("code should be reported as taken: %v %v", exists, err)
	}
}

func TestListAndStatistics(t *testing.T) {
	db := setupStudentRepositoryTest(t)
	repo := NewStudentVerificationRepository(db)

	fixtures := []*models.StudentVerification{
		newVerification("a", constants.StudentVerificationStatusVerified, "MIT"),
		newVerification("b", constants.StudentVerificationStatusVerified, "MIT"),
		newVerification("c", constants.StudentVerificationStatusVerified, "Stanford"),
		newVerification("d", constants.StudentVerificationStatusPending, ""),
		newVerification("e", constants.StudentVerificationStatusRejected, "Harvard"),
	}
	fixtures[3].Metadata = datatypes.NewJSONType(models.NewFallbackMetadata(models.FallbackEvidence{Confidence: constants.ConfidenceLow, ProviderError: "timeout"}))
	for _, item := range fixtures {
		if err := repo.Create(item); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	rows, total, err := repo.List(StudentVerificationListFilter{Status: constants.StudentVerificationStatusVerified, Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(rows) != 2 {
		t.Fatalf("unexpected page: total=%d len=%d", total, len(rows))
	}

	fallback, total, err := repo.List(StudentVerificationListFilter{Evidence: constants.VerificationEvidenceThirdPartyFallback})
	if err != nil {
		t.Fatalf("evidence filter failed: %v", err)
	}
	if total != 1 || fallback[0].UserID != "d" {
		t.Fatalf("unexpected evidence filter result: %d", total)
	}

	counts, err := repo.CountByStatus()
	if err != nil {
		t.Fatalf("count by status failed: %v", err)
	}
	byStatus := map[string]int64{}
	for _, row := range counts {
		byStatus[row.Status] = row.Total
	}
	if byStatus[constants.StudentVerificationStatusVerified] != 3 || byStatus[constants.StudentVerificationStatusPending] != 1 {
		t.Fatalf("unexpected counts: %+v", byStatus)
	}

	schools, err := repo.TopVerifiedSchools(10)
	if err != nil {
		t.Fatalf("top schools failed: %v", err)
	}
	if len(schools) != 2 || schools[0].SchoolName != "MIT" || schools[0].Total != 2 {
		t.Fatalf("unexpected ranking: %+v", schools)
	}
}

func TestDiscountUsageUniquePerOrderAndUser(t *testing.T) {
	repo := NewDiscountUsageRepository(setupStudentRepositoryTest(t))

	usage := func() *models.DiscountUsage {
		return &models.DiscountUsage{
			VerificationID: 1,
			UserID:         "u1",
			OrderID:        "order-1",
			OriginalAmount: models.NewMoneyFromFloat(500),
			DiscountAmount: models.NewMoneyFromFloat(100),
			FinalAmount:    models.NewMoneyFromFloat(400),
			Currency:       "USD",
			UsedAt:         time.Now(),
		}
	}
	if err := repo.Create(usage()); err != nil {
		t.Fatalf("first usage failed: %v", err)
	}
	if err := repo.Create(usage()); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if count, err := repo.CountByOrderAndUser("order-1", "u1"); err != nil || count != 1 {
		t.Fatalf("expected one usage for order-1, got %d err=%v", count, err)
	}
	if count, err := repo.CountByOrderAndUser("order-1", "u2"); err != nil || count != 0 {
		t.Fatalf("expected no usage for another user, got %d err=%v", count, err)
	}

	summary, err := repo.SummarizeByVerification(1)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if summary.UsageCount != 1 || summary.TotalSavings != 100 || summary.LastUsedAt == nil {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
