package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/buildlab-academy/internal/cache"
	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/models"
	"github.com/buildlab-academy/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func newAuthTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{SecretKey: "admin-secret", ExpireHours: 2, Issuer: "buildlab-admin"}
	cfg.UserJWT = config.JWTConfig{SecretKey: "user-secret", ExpireHours: 1}
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{
		MinLength:     10,
		RequireUpper:  true,
		RequireLower:  true,
		RequireNumber: true,
	}
	return cfg
}

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	cache.Use(nil, "")
	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewAuthService(newAuthTestConfig(), repository.NewAdminRepository(db)), db
}

func TestValidatePasswordPolicy(t *testing.T) {
	svc := NewAuthService(newAuthTestConfig(), nil)

	cases := []struct {
		password string
		key      string
	}{
		{"Short1", "error.password_min_length"},
		{"alllowercase123", "error.password_require_upper"},
		{"ALLUPPERCASE123", "error.password_require_lower"},
		{"NoDigitsHereAtAll", "error.password_require_number"},
	}
	for _, tc := range cases {
		err := svc.ValidatePassword(tc.password)
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("%s: expected ErrWeakPassword, got %v", tc.password, err)
		}
		var policyErr PasswordPolicyError
		if !errors.As(err, &policyErr) || policyErr.key != tc.key {
			t.Fatalf("%s: expected key %s, got %v", tc.password, tc.key, err)
		}
	}
	if err := svc.ValidatePassword("Str0ngEnough"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}

	err := svc.ValidatePassword("Short1")
	var policyErr PasswordPolicyError
	errors.As(err, &policyErr)
	if got := policyErr.Message("en-US"); got != "Password must be at least 10 characters" {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestAdminLoginAndJWT(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	hash, err := svc.HashPassword("Str0ngEnough")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	admin := &models.Admin{Username: "reviewer", PasswordHash: hash}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	if _, err := svc.Login("reviewer", "wrong", "127.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("nobody", "Str0ngEnough", "127.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	result, err := svc.Login(" reviewer ", "Str0ngEnough", "10.0.0.1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	claims, err := svc.ParseJWT(result.Token)
	if err != nil {
		t.Fatalf("parse jwt failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "reviewer" || claims.Issuer != "buildlab-admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	var stored models.Admin
	db.First(&stored, admin.ID)
	if stored.LastLoginIP != "10.0.0.1" || stored.LastLoginAt == nil {
		t.Fatalf("login should be recorded: %+v", stored)
	}

	// 用户令牌不能冒充管理员令牌
	userToken, err := svc.IssueUserJWT("user-1", "u@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue user jwt failed: %v", err)
	}
	if _, err := svc.ParseJWT(userToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseUserJWT(t *testing.T) {
	svc := NewAuthService(newAuthTestConfig(), nil)

	token, err := svc.IssueUserJWT("user-42", "s@college.edu", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != "user-42" || claims.Email != "s@college.edu" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	subOnly, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-sub",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("user-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	claims, err = svc.ParseUserJWT(subOnly)
	if err != nil {
		t.Fatalf("parse sub-only failed: %v", err)
	}
	if claims.UserID != "user-sub" {
		t.Fatalf("expected sub fallback, got %q", claims.UserID)
	}

	stale, err := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		UserID: "user-42",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("user-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := svc.ParseUserJWT(stale); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
	if _, err := svc.ParseUserJWT("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
