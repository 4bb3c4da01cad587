package service

import (
	"unicode"

	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/i18n"
)

// PasswordPolicyError 密码不满足策略，携带 i18n key
type PasswordPolicyError struct {
	key  string
	args []interface{}
}

func (e PasswordPolicyError) Error() string {
	return e.key
}

// Is 归类为 ErrWeakPassword
func (e PasswordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

// Message 本地化提示
func (e PasswordPolicyError) Message(locale string) string {
	return i18n.Sprintf(locale, e.key, e.args...)
}

// validatePassword 管理员密码策略，播种和改密时使用
func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return PasswordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		default:
			hasSpecial = true
		}
	}

	checks := []struct {
		required bool
		present  bool
		key      string
	}{
		{policy.RequireUpper, hasUpper, "error.password_require_upper"},
		{policy.RequireLower, hasLower, "error.password_require_lower"},
		{policy.RequireNumber, hasNumber, "error.password_require_number"},
		{policy.RequireSpecial, hasSpecial, "error.password_require_special"},
	}
	for _, check := range checks {
		if check.required && !check.present {
			return PasswordPolicyError{key: check.key}
		}
	}
	return nil
}
