package public

import (
	"net/http"
	"strings"

	"github.com/buildlab-academy/internal/constants"
	handlershared "github.com/buildlab-academy/internal/http/handlers/shared"
	"github.com/buildlab-academy/internal/http/response"
	"github.com/buildlab-academy/internal/i18n"

	"github.com/gin-gonic/gin"
)

// NewsletterSubscribeRequest 订阅请求
type NewsletterSubscribeRequest struct {
	Email          string                              `json:"email" binding:"required,student_email"`
	Source         string                              `json:"source"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// SubscribeNewsletter 订阅邮件通讯
func (h *Handler) SubscribeNewsletter(c *gin.Context) {
	var req NewsletterSubscribeRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	if err := h.CaptchaService.Verify(constants.CaptchaSceneNewsletterSubscribe, req.CaptchaPayload.ToServicePayload()); err != nil {
		respondWithMappedError(c, err, captchaErrorRules)
		return
	}

	result, err := h.NewsletterService.Subscribe(req.Email, req.Source, i18n.ResolveLocale(c))
	if err != nil {
		respondWithMappedError(c, err, newsletterErrorRules)
		return
	}
	response.SuccessWithMsg(c, result.Message, result)
}

// NewsletterUnsubscribeRequest 退订请求，令牌或邮箱二选一
type NewsletterUnsubscribeRequest struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// UnsubscribeNewsletter 退订；GET 供邮件中的退订链接使用
func (h *Handler) UnsubscribeNewsletter(c *gin.Context) {
	var req NewsletterUnsubscribeRequest
	if c.Request.Method == http.MethodGet {
		req.Token = c.Query("token")
		req.Email = c.Query("email")
	} else if !handlershared.BindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Token) == "" && strings.TrimSpace(req.Email) == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	email, err := h.NewsletterService.Unsubscribe(req.Token, req.Email)
	if err != nil {
		respondWithMappedError(c, err, newsletterErrorRules)
		return
	}
	locale := i18n.ResolveLocale(c)
	response.SuccessWithMsg(c, i18n.T(locale, "newsletter.unsubscribed"), gin.H{"email": email})
}
