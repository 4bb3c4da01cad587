package admin

import (
	handlershared "github.com/buildlab-academy/internal/http/handlers/shared"
	"github.com/buildlab-academy/internal/http/response"
	"github.com/buildlab-academy/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

type mappedHandlerError = handlershared.MappedError

var loginErrorRules = []mappedHandlerError{
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.login_invalid"},
}

var verificationActionErrorRules = []mappedHandlerError{
	{Target: service.ErrVerificationNotFound, Code: response.CodeNotFound, Key: "error.verification_not_found"},
	{Target: service.ErrAdminActionInvalid, Code: response.CodeBadRequest, Key: "error.admin_action_invalid"},
	{Target: service.ErrVerificationActiveExists, Code: response.CodeConflict, Key: "error.verification_conflict"},
	{Target: service.ErrDiscountCodeIssueFailed, Code: response.CodeInternal, Key: "error.code_issue_failed"},
}

var studentDomainErrorRules = []mappedHandlerError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrStudentDomainInvalid, Code: response.CodeBadRequest, Key: "error.domain_invalid"},
	{Target: service.ErrStudentDomainExists, Code: response.CodeConflict, Key: "error.domain_exists"},
}

var newsletterBroadcastErrorRules = []mappedHandlerError{
	{Target: service.ErrNewsletterContentRequired, Code: response.CodeBadRequest, Key: "error.newsletter_content"},
	{Target: service.ErrQueueUnavailable, Code: response.CodeInternal, Key: "error.queue_unavailable"},
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError) {
	handlershared.RespondMappedError(c, err, rules, response.CodeInternal, "error.internal")
}
