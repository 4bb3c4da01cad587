package shared

import (
	"strings"

	"github.com/buildlab-academy/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 中间件写入上下文的键
const (
	ContextKeyAdminID   = "admin_id"
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyRequestID = response.RequestIDKey
)

// GetContextUintWithKeys 从上下文读取 uint 值并统一处理错误响应。
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}
}

// GetContextUserID 读取外部用户 ID（字符串），缺失时返回 401。
func GetContextUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextKeyUserID)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return "", false
	}
	userID, ok := value.(string)
	if !ok || strings.TrimSpace(userID) == "" {
		RespondError(c, response.CodeUnauthorized, "error.user_identity_required", nil)
		return "", false
	}
	return userID, true
}

// GetContextUserEmail 读取用户令牌中的邮箱，可能为空。
func GetContextUserEmail(c *gin.Context) string {
	if value, ok := c.Get(ContextKeyUserEmail); ok {
		if email, ok := value.(string); ok {
			return email
		}
	}
	return ""
}
