package service

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/buildlab-academy/internal/repository"
)

func TestGenerateDiscountCodeFormat(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	got := GenerateDiscountCode("user_abcdefghij", now)
	want := "STUDENT-USER_ABC-" + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	short := GenerateDiscountCode("ab", now)
	if !strings.HasPrefix(short, "STUDENT-AB-") {
		t.Fatalf("unexpected short code: %s", short)
	}
}

type takenCodes struct {
	repository.StudentVerificationRepository
	taken map[string]bool
	calls int
}

func (r *takenCodes) CodeExists(code string) (bool, error) {
	r.calls++
	if r.taken[code] {
		return true, nil
	}
	return false, nil
}

func TestDiscountCodeIssuerRetriesWithSuffix(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	issuer := newDiscountCodeIssuer(3)
	issuer.now = func() time.Time { return now }

	base := GenerateDiscountCode("user-1", now)
	repo := &takenCodes{taken: map[string]bool{base: true}}
	code, err := issuer.Issue(repo, "user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if !strings.HasPrefix(code, base) || len(code) != len(base)+discountCodeSuffixLen {
		t.Fatalf("expected suffixed code, got %s", code)
	}
	if repo.calls != 2 {
		t.Fatalf("expected 2 lookups, got %d", repo.calls)
	}
}

type allTaken struct {
	repository.StudentVerificationRepository
}

func (allTaken) CodeExists(string) (bool, error) { return true, nil }

func TestDiscountCodeIssuerGivesUp(t *testing.T) {
	issuer := newDiscountCodeIssuer(2)
	if _, err := issuer.Issue(allTaken{}, "user-1"); !errors.Is(err, ErrDiscountCodeIssueFailed) {
		t.Fatalf("expected ErrDiscountCodeIssueFailed, got %v", err)
	}
}
