package public

import (
	handlershared "github.com/buildlab-academy/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func getUserID(c *gin.Context) (string, bool) {
	return handlershared.GetContextUserID(c)
}

func getUserEmail(c *gin.Context) string {
	return handlershared.GetContextUserEmail(c)
}
