package admin

import (
	"strconv"

	handlershared "github.com/buildlab-academy/internal/http/handlers/shared"
	"github.com/buildlab-academy/internal/http/response"
	"github.com/buildlab-academy/internal/repository"
	"github.com/buildlab-academy/internal/service"

	"github.com/gin-gonic/gin"
)

// GetStudentDomains 学校域名列表
func (h *Handler) GetStudentDomains(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.StudentEmailDomainListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Country:  c.Query("country"),
	}
	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		filter.IsActive = &active
	}

	rows, total, err := h.StudentDomainService.ListDomains(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, rows, handlershared.BuildPagination(page, pageSize, total))
}

// CreateStudentDomain 新增域名登记
func (h *Handler) CreateStudentDomain(c *gin.Context) {
	var req service.StudentDomainInput
	if !handlershared.BindJSON(c, &req) {
		return
	}
	row, err := h.StudentDomainService.CreateDomain(c.Request.Context(), req)
	if err != nil {
		respondWithMappedError(c, err, studentDomainErrorRules)
		return
	}
	response.Success(c, row)
}

// UpdateStudentDomain 更新域名登记
func (h *Handler) UpdateStudentDomain(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req service.StudentDomainInput
	if !handlershared.BindJSON(c, &req) {
		return
	}
	row, err := h.StudentDomainService.UpdateDomain(c.Request.Context(), id, req)
	if err != nil {
		respondWithMappedError(c, err, studentDomainErrorRules)
		return
	}
	response.Success(c, row)
}

// DeleteStudentDomain 删除域名登记
func (h *Handler) DeleteStudentDomain(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.StudentDomainService.DeleteDomain(c.Request.Context(), id); err != nil {
		respondWithMappedError(c, err, studentDomainErrorRules)
		return
	}
	response.Success(c, nil)
}
