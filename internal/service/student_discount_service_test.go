package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/buildlab-academy/internal/constants"
)

func TestStudentDiscountEndToEnd(t *testing.T) {
	f := setupStudentServiceTest(t, nil)
	ctx := context.Background()

	applied := f.apply(t, "user-jane", "jane@college.edu")
	if applied.Status != constants.StudentVerificationStatusPending {
		t.Fatalf("expected pending, got %s", applied.Status)
	}

	approved, err := f.adminSvc.PerformAction(ctx, AdminActionInput{
		VerificationID: applied.VerificationID,
		Action:         constants.AdminActionApprove,
		Notes:          "enrollment letter checked",
		AdminID:        7,
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	code := approved.Code()
	if code == "" {
		t.Fatalf("approval should issue a code")
	}

	validation, err := f.discountSvc.ValidateCode(code, money(t, "500"), "")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !validation.Valid || validation.DiscountAmount.String() != "100.00" || validation.FinalAmount.String() != "400.00" {
		t.Fatalf("unexpected validation: %+v", validation)
	}
	if validation.StudentName != "Jane Doe" {
		t.Fatalf("unexpected student name: %s", validation.StudentName)
	}

	usage, err := f.discountSvc.RecordUsage(ctx, RecordUsageInput{
		VerificationID: applied.VerificationID,
		UserID:         "user-jane",
		OrderID:        "order-500",
		OriginalAmount: validation.OriginalAmount,
		DiscountAmount: validation.DiscountAmount,
		FinalAmount:    validation.FinalAmount,
	}, "")
	if err != nil {
		t.Fatalf("record usage failed: %v", err)
	}
	if usage.Savings.String() != "100.00" {
		t.Fatalf("unexpected savings: %s", usage.Savings)
	}

	actions := f.logActions(t, applied.VerificationID)
	want := []string{constants.VerificationLogCreated, constants.VerificationLogManuallyApproved, constants.VerificationLogDiscountUsed}
	if len(actions) != len(want) {
		t.Fatalf("unexpected logs: %v", actions)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("unexpected logs: %v", actions)
		}
	}
}

func TestValidateCodeRoundsHalfUp(t *testing.T) {
	f := setupStudentServiceTest(t, nil)
	f.seedDomain(t, "mit.edu", "MIT", constants.DomainLevelVerified)
	applied := f.apply(t, "user-round", "kai@mit.edu")

	validation, err := f.discountSvc.ValidateCode(applied.DiscountCode, money(t, "537.49"), "")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if validation.DiscountAmount.String() != "107.50" || validation.FinalAmount.String() != "429.99" {
		t.Fatalf("unexpected amounts: discount=%s final=%s", validation.DiscountAmount, validation.FinalAmount)
	}
}

func TestValidateCodeIsCaseInsensitive(t *testing.T) {
	f := setupStudentServiceTest(t, nil)
	f.seedDomain(t, "mit.edu", "MIT", constants.DomainLevelVerified)
	applied := f.apply(t, "user-case", "lee@mit.edu")

	lower := " " + strings.ToLower(applied.DiscountCode) + " "
	if _, err := f.discountSvc.ValidateCode(lower, money(t, "10"), ""); err != nil {
		t.Fatalf("lowercase code should validate: %v", err)
	}
}

func TestValidateCodeRejectsUnusableCodes(t *testing.T) {
	f := setupStudentServiceTest(t, nil)
	ctx := context.Background()
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.withClock(issued)
	f.seedDomain(t, "mit.edu", "MIT", constants.DomainLevelVerified)

	verified := f.apply(t, "user-a", "a@mit.edu")
	pending := f.apply(t, "user-b", "b@college.edu")

	if _, err := f.discountSvc.ValidateCode("STUDENT-UNKNOWN-1", money(t, "10"), ""); !errors.Is(err, ErrDiscountCodeInvalid) {
		t.Fatalf("unknown code: expected ErrDiscountCodeInvalid, got %v", err)
	}
	if _, err := f.discountSvc.ValidateCode(verified.DiscountCode, money(t, "0"), ""); !errors.Is(err, ErrInvalidOrderAmount) {
		t.Fatalf("zero amount: expected ErrInvalidOrderAmount, got %v", err)
	}

	// 驳回后折扣码保留，但不可再使用
	approved, err := f.adminSvc.PerformAction(ctx, AdminActionInput{VerificationID: pending.VerificationID, Action: constants.AdminActionApprove})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := f.adminSvc.PerformAction(ctx, AdminActionInput{VerificationID: pending.VerificationID, Action: constants.AdminActionReset}); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if _, err := f.discountSvc.ValidateCode(approved.Code(), money(t, "10"), ""); !errors.Is(err, ErrDiscountCodeInvalid) {
		t.Fatalf("pending code: expected ErrDiscountCodeInvalid, got %v", err)
	}
	if _, err := f.adminSvc.PerformAction(ctx, AdminActionInput{VerificationID: pending.VerificationID, Action: constants.AdminActionReject}); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if _, err := f.discountSvc.ValidateCode(approved.Code(), money(t, "10"), ""); !errors.Is(err, ErrDiscountCodeInvalid) {
		t.Fatalf("rejected code: expected ErrDiscountCodeInvalid, got %v", err)
	}

	f.withClock(issued.AddDate(0, 0, 366))
	if _, err := f.discountSvc.ValidateCode(verified.DiscountCode, money(t, "10"), ""); !errors.Is(err, ErrDiscountCodeExpired) {
		t.Fatalf("expired code: expected ErrDiscountCodeExpired, got %v", err)
	}
}

func TestRecordUsageRules(t *testing.T) {
	f := setupStudentServiceTest(t, nil)
	ctx := context.Background()
	f.seedDomain(t, "mit.edu", "MIT", constants.DomainLevelVerified)
	applied := f.apply(t, "user-owner", "owner@mit.edu")

	base := RecordUsageInput{
		VerificationID: applied.VerificationID,
		UserID:         "user-owner",
		OrderID:        "order-1",
		OriginalAmount: money(t, "50"),
		DiscountAmount: money(t, "10"),
		FinalAmount:    money(t, "40"),
	}

	mismatch := base
	mismatch.FinalAmount = money(t, "41")
	if _, err := f.discountSvc.RecordUsage(ctx, mismatch, ""); !errors.Is(err, ErrUsageAmountsInvalid) {
		t.Fatalf("expected ErrUsageAmountsInvalid, got %v", err)
	}

	stranger := base
	stranger.UserID = "user-other"
	if _, err := f.discountSvc.RecordUsage(ctx, stranger, ""); !errors.Is(err, ErrVerificationNotOwned) {
		t.Fatalf("expected ErrVerificationNotOwned, got %v", err)
	}

	missing := base
	missing.OrderID = " "
	if _, err := f.discountSvc.RecordUsage(ctx, missing, ""); !errors.Is(err, ErrUsageFieldsRequired) {
		t.Fatalf("expected ErrUsageFieldsRequired, got %v", err)
	}

	if _, err := f.discountSvc.RecordUsage(ctx, base, ""); err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	if _, err := f.discountSvc.RecordUsage(ctx, base, ""); !errors.Is(err, ErrDiscountUsageRecorded) {
		t.Fatalf("expected ErrDiscountUsageRecorded, got %v", err)
	}

	var count int64
	f.db.Table("discount_usages").Where("order_id = ?", "order-1").Count(&count)
	if count != 1 {
		t.Fatalf("expected single usage row, got %d", count)
	}
}
