package admin

import (
	handlershared "github.com/buildlab-academy/internal/http/handlers/shared"
	"github.com/buildlab-academy/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetNewsletterStatistics 订阅统计
func (h *Handler) GetNewsletterStatistics(c *gin.Context) {
	stats, err := h.NewsletterService.Statistics()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, stats)
}

// NewsletterBroadcastRequest 群发请求
type NewsletterBroadcastRequest struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// BroadcastNewsletter 投递群发任务
func (h *Handler) BroadcastNewsletter(c *gin.Context) {
	var req NewsletterBroadcastRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	result, err := h.NewsletterService.Broadcast(req.Subject, req.Content)
	if err != nil {
		respondWithMappedError(c, err, newsletterBroadcastErrorRules)
		return
	}
	if adminID, ok := c.Get(handlershared.ContextKeyAdminID); ok {
		requestLog(c).Infow("newsletter_broadcast_requested", "admin_id", adminID, "broadcast_id", result.BroadcastID)
	}
	response.Success(c, result)
}
