package shared

import (
	"errors"

	"github.com/buildlab-academy/internal/http/response"
	"github.com/buildlab-academy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON 绑定请求体；邮箱格式错误单独返回 invalid_email，其余为 bad_request。
func BindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			if fieldErr.Tag() == service.StudentEmailTag {
				RespondError(c, response.CodeBadRequest, "error.invalid_email", nil)
				return false
			}
		}
	}
	RespondError(c, response.CodeBadRequest, "error.bad_request", err)
	return false
}
