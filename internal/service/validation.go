package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// StudentEmailTag 自定义邮箱校验标签
const StudentEmailTag = "student_email"

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = RegisterValidations(v)
	return v
}

// RegisterValidations 注册业务自定义校验规则
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation(StudentEmailTag, func(fl validator.FieldLevel) bool {
		return wellFormedEmail(v, fl.Field().String())
	})
}

// Validator 共享校验器，供 HTTP 层注册到 gin binding
func Validator() *validator.Validate {
	return validate
}

// NormalizeEmail 去空格并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail 邮箱格式校验
func IsValidEmail(email string) bool {
	return wellFormedEmail(validate, email)
}

func wellFormedEmail(v *validator.Validate, email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	if v.Var(email, "email") != nil {
		return false
	}
	_, domain, _ := strings.Cut(email, "@")
	return strings.Contains(domain, ".")
}
