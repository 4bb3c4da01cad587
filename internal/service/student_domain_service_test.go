package service

import (
	"context"
	"errors"
	"testing"

	"github.com/buildlab-academy/internal/cache"
	"github.com/buildlab-academy/internal/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMatchesStudentPattern(t *testing.T) {
	cases := map[string]bool{
		"college.edu":        true,
		"cs.stanford.edu":    true,
		"ox.ac.uk":           true,
		"student.tafe.org":   true,
		"uni.example.com":    true,
		"school.example.net": true,
		"unsw.edu.au":        true,
		"gmail.com":          false,
		"education.com":      false,
		"edu.example.com":    false,
	}
	for domain, want := range cases {
		if got := matchesStudentPattern(domain); got != want {
			t.Fatalf("%s: expected %v, got %v", domain, want, got)
		}
	}
}

func TestClassifyConfidenceLevels(t *testing.T) {
	f := setupStudentServiceTest(t, nil)
	ctx := context.Background()
	f.seedDomain(t, "mit.edu", "MIT", constants.DomainLevelVerified)
	f.seedDomain(t, "tafe.org", "TAFE", constants.DomainLevelHeuristic)

	cases := []struct {
		email      string
		student    bool
		confidence string
		school     string
	}{
		{"Alice@MIT.edu", true, constants.ConfidenceHigh, "MIT"},
		{"bob@tafe.org", true, constants.ConfidenceMedium, "TAFE"},
		{"carol@college.edu", true, constants.ConfidenceLow, ""},
		{"dave@gmail.com", false, constants.ConfidenceHigh, ""},
		{"no-at-sign", false, constants.ConfidenceHigh, ""},
	}
	for _, tc := range cases {
		got := f.domainSvc.Classify(ctx, tc.email)
		if got.IsStudentEmail != tc.student || got.Confidence != tc.confidence || got.SchoolName != tc.school {
			t.Fatalf("%s: unexpected classification %+v", tc.email, got)
		}
	}
}

func TestCheckEmailMessages(t *testing.T) {
	f := setupStudentServiceTest(t, nil)
	ctx := context.Background()
	f.seedDomain(t, "mit.edu", "MIT", constants.DomainLevelVerified)

	for _, email := range []string{"  ", "not-an-email", "a@b", "x y@uni.edu"} {
		if _, err := f.domainSvc.CheckEmail(ctx, email, ""); !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("expected ErrInvalidEmail for %q, got %v", email, err)
		}
	}
	known, err := f.domainSvc.CheckEmail(ctx, "a@mit.edu", "")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if known.Message == "" || known.SchoolName != "MIT" {
		t.Fatalf("unexpected result: %+v", known)
	}
	unknown, err := f.domainSvc.CheckEmail(ctx, "a@gmail.com", "")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if unknown.IsStudentEmail || unknown.Message == known.Message {
		t.Fatalf("unexpected result: %+v", unknown)
	}
}

func TestClassifyUsesCacheAndInvalidatesOnWrite(t *testing.T) {
	f := setupStudentServiceTest(t, nil)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cache.Use(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	t.Cleanup(func() { cache.Use(nil, "") })

	first := f.domainSvc.Classify(ctx, "x@acmeacademy.org")
	if first.IsStudentEmail {
		t.Fatalf("unregistered domain should not be a student email: %+v", first)
	}
	if !mr.Exists("test:student_domain:@acmeacademy.org") {
		t.Fatalf("negative result should be cached, keys=%v", mr.Keys())
	}

	row, err := f.domainSvc.CreateDomain(ctx, StudentDomainInput{
		Domain:            "AcmeAcademy.org",
		SchoolName:        "New School",
		VerificationLevel: constants.DomainLevelVerified,
	})
	if err != nil {
		t.Fatalf("create domain failed: %v", err)
	}
	if row.Domain != "@acmeacademy.org" {
		t.Fatalf("domain should be normalized, got %s", row.Domain)
	}

	second := f.domainSvc.Classify(ctx, "x@acmeacademy.org")
	if !second.IsStudentEmail || second.Confidence != constants.ConfidenceHigh {
		t.Fatalf("cache should be invalidated after create: %+v", second)
	}

	inactive := false
	if _, err := f.domainSvc.UpdateDomain(ctx, row.ID, StudentDomainInput{
		Domain:     "acmeacademy.org",
		SchoolName: "New School",
		IsActive:   &inactive,
	}); err != nil {
		t.Fatalf("update domain failed: %v", err)
	}
	third := f.domainSvc.Classify(ctx, "x@acmeacademy.org")
	if third.IsStudentEmail {
		t.Fatalf("inactive domain should not match: %+v", third)
	}
}

func TestStudentDomainCRUDValidation(t *testing.T) {
	f := setupStudentServiceTest(t, nil)
	ctx := context.Background()

	if _, err := f.domainSvc.CreateDomain(ctx, StudentDomainInput{Domain: "not a domain", SchoolName: "X"}); !errors.Is(err, ErrStudentDomainInvalid) {
		t.Fatalf("expected ErrStudentDomainInvalid, got %v", err)
	}
	if _, err := f.domainSvc.CreateDomain(ctx, StudentDomainInput{Domain: "x.edu", SchoolName: "X", VerificationLevel: "gold"}); !errors.Is(err, ErrStudentDomainInvalid) {
		t.Fatalf("expected ErrStudentDomainInvalid for level, got %v", err)
	}
	row, err := f.domainSvc.CreateDomain(ctx, StudentDomainInput{Domain: "@x.edu", SchoolName: "X"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if row.VerificationLevel != constants.DomainLevelHeuristic || !row.IsActive {
		t.Fatalf("unexpected defaults: %+v", row)
	}
	if _, err := f.domainSvc.CreateDomain(ctx, StudentDomainInput{Domain: "X.EDU", SchoolName: "Other"}); !errors.Is(err, ErrStudentDomainExists) {
		t.Fatalf("expected ErrStudentDomainExists, got %v", err)
	}
	if err := f.domainSvc.DeleteDomain(ctx, row.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := f.domainSvc.DeleteDomain(ctx, row.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
