package admin

import (
	handlershared "github.com/buildlab-academy/internal/http/handlers/shared"
	"github.com/buildlab-academy/internal/http/response"
	"github.com/buildlab-academy/internal/repository"
	"github.com/buildlab-academy/internal/service"

	"github.com/gin-gonic/gin"
)

// GetStudentVerifications 认证记录列表
func (h *Handler) GetStudentVerifications(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	rows, total, err := h.StudentAdminService.List(repository.StudentVerificationListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		Method:   c.Query("method"),
		Evidence: c.Query("evidence"),
		Keyword:  c.Query("keyword"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, rows, handlershared.BuildPagination(page, pageSize, total))
}

// GetStudentVerification 认证详情与流水
func (h *Handler) GetStudentVerification(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	detail, err := h.StudentAdminService.Detail(id)
	if err != nil {
		respondWithMappedError(c, err, verificationActionErrorRules)
		return
	}
	response.Success(c, detail)
}

// VerificationActionRequest 审核动作
type VerificationActionRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject reset"`
	Notes  string `json:"notes" binding:"max=1000"`
}

// PerformVerificationAction 人工审核：approve / reject / reset
func (h *Handler) PerformVerificationAction(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req VerificationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.admin_action_invalid", nil)
		return
	}

	updated, err := h.StudentAdminService.PerformAction(c.Request.Context(), service.AdminActionInput{
		VerificationID: id,
		Action:         req.Action,
		Notes:          req.Notes,
		AdminID:        adminID,
	})
	if err != nil {
		respondWithMappedError(c, err, verificationActionErrorRules)
		return
	}
	response.Success(c, updated)
}

// GetStudentVerificationStatistics 认证与使用统计
func (h *Handler) GetStudentVerificationStatistics(c *gin.Context) {
	stats, err := h.StudentAdminService.Statistics()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, stats)
}
