package public

import (
	handlershared "github.com/buildlab-academy/internal/http/handlers/shared"
	"github.com/buildlab-academy/internal/http/response"
	"github.com/buildlab-academy/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.MappedError

var userIdentityErrorRules = []mappedHandlerError{
	{Target: service.ErrUserIdentityRequired, Code: response.CodeUnauthorized, Key: "error.user_identity_required"},
}

var checkEmailErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.invalid_email"},
}

var studentApplyErrorRules = []mappedHandlerError{
	{Target: service.ErrApplicantFieldsRequired, Code: response.CodeBadRequest, Key: "error.applicant_required"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.invalid_email"},
	{Target: service.ErrVerificationMethodInvalid, Code: response.CodeBadRequest, Key: "error.method_invalid"},
	{Target: service.ErrGraduationDateInvalid, Code: response.CodeBadRequest, Key: "error.graduation_date_invalid"},
	{Target: service.ErrVerificationActiveExists, Code: response.CodeConflict, Key: "error.verification_conflict"},
	{Target: service.ErrIdentityProviderNotConfigured, Code: response.CodeInternal, Key: "error.provider_not_configured"},
	{Target: service.ErrDiscountCodeIssueFailed, Code: response.CodeInternal, Key: "error.code_issue_failed"},
}

// 未认证与不存在统一为 invalid，过期单独返回
var discountValidateErrorRules = []mappedHandlerError{
	{Target: service.ErrDiscountCodeInvalid, Code: response.CodeNotFound, Key: "error.discount_code_invalid"},
	{Target: service.ErrDiscountCodeExpired, Code: response.CodeExpired, Key: "error.discount_code_expired"},
	{Target: service.ErrInvalidOrderAmount, Code: response.CodeBadRequest, Key: "error.order_amount_invalid"},
}

var discountUsageErrorRules = []mappedHandlerError{
	{Target: service.ErrUsageFieldsRequired, Code: response.CodeBadRequest, Key: "error.usage_fields_required"},
	{Target: service.ErrUsageAmountsInvalid, Code: response.CodeBadRequest, Key: "error.usage_amounts_invalid"},
	{Target: service.ErrVerificationNotOwned, Code: response.CodeForbidden, Key: "error.usage_not_owned"},
	{Target: service.ErrDiscountCodeExpired, Code: response.CodeExpired, Key: "error.discount_code_expired"},
	{Target: service.ErrDiscountUsageRecorded, Code: response.CodeConflict, Key: "error.usage_recorded"},
}

var newsletterErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.invalid_email"},
	{Target: service.ErrNewsletterAlreadySubscribed, Code: response.CodeConflict, Key: "error.newsletter_subscribed"},
	{Target: service.ErrNewsletterSubscriptionNotFound, Code: response.CodeNotFound, Key: "error.newsletter_not_found"},
}

var captchaErrorRules = []mappedHandlerError{
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError) {
	handlershared.RespondMappedError(c, err, rules, response.CodeInternal, "error.internal")
}

func respondStudentApplyError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(userIdentityErrorRules, studentApplyErrorRules))
}

func respondDiscountUsageError(c *gin.Context, err error) {
	respondWithMappedError(c, err, handlershared.ConcatMappedErrors(userIdentityErrorRules, discountUsageErrorRules))
}
