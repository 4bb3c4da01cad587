package public

import (
	"strings"

	handlershared "github.com/buildlab-academy/internal/http/handlers/shared"
	"github.com/buildlab-academy/internal/http/response"
	"github.com/buildlab-academy/internal/i18n"
	"github.com/buildlab-academy/internal/models"
	"github.com/buildlab-academy/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckEmailRequest 学生邮箱检测请求
type CheckEmailRequest struct {
	Email string `json:"email" binding:"required,student_email"`
}

// CheckStudentEmail 检测邮箱是否属于已知学校
func (h *Handler) CheckStudentEmail(c *gin.Context) {
	var req CheckEmailRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	result, err := h.StudentDomainService.CheckEmail(c.Request.Context(), req.Email, i18n.ResolveLocale(c))
	if err != nil {
		respondWithMappedError(c, err, checkEmailErrorRules)
		return
	}
	response.Success(c, result)
}

// ValidateDiscountRequest 折扣码校验请求
type ValidateDiscountRequest struct {
	DiscountCode string       `json:"discount_code"`
	OrderAmount  models.Money `json:"order_amount"`
}

// ValidateDiscountCode 校验折扣码并计算订单优惠
func (h *Handler) ValidateDiscountCode(c *gin.Context) {
	var req ValidateDiscountRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.DiscountCode) == "" {
		respondError(c, response.CodeBadRequest, "error.discount_code_required", nil)
		return
	}
	result, err := h.StudentDiscountService.ValidateCode(req.DiscountCode, req.OrderAmount, i18n.ResolveLocale(c))
	if err != nil {
		respondWithMappedError(c, err, discountValidateErrorRules)
		return
	}
	response.Success(c, result)
}

// ApplyVerificationRequest 学生认证申请
type ApplyVerificationRequest struct {
	Email              string `json:"email" binding:"omitempty,student_email"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	SchoolName         string `json:"school_name"`
	GraduationDate     string `json:"graduation_date"`
	StudentID          string `json:"student_id"`
	VerificationMethod string `json:"verification_method"`
}

// ApplyStudentVerification 提交学生认证申请
// 请求体未带邮箱时使用令牌中的邮箱
func (h *Handler) ApplyStudentVerification(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req ApplyVerificationRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = getUserEmail(c)
	}

	result, err := h.StudentVerificationService.Apply(c.Request.Context(), service.ApplyInput{
		UserID:         userID,
		Email:          email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		SchoolName:     req.SchoolName,
		GraduationDate: req.GraduationDate,
		StudentID:      req.StudentID,
		Method:         req.VerificationMethod,
		Locale:         i18n.ResolveLocale(c),
	})
	if err != nil {
		respondStudentApplyError(c, err)
		return
	}
	response.SuccessWithMsg(c, result.Message, result)
}

// GetVerificationStatus 查询当前用户最近一次认证
func (h *Handler) GetVerificationStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	result, err := h.StudentVerificationService.Status(c.Request.Context(), userID)
	if err != nil {
		respondWithMappedError(c, err, userIdentityErrorRules)
		return
	}
	response.Success(c, result)
}

// GetUserDiscount 当前用户折扣码及累计节省
func (h *Handler) GetUserDiscount(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	result, err := h.StudentVerificationService.UserDiscount(userID)
	if err != nil {
		respondWithMappedError(c, err, userIdentityErrorRules)
		return
	}
	response.Success(c, result)
}

// RecordUsageRequest 折扣使用登记
type RecordUsageRequest struct {
	VerificationID uint         `json:"verification_id"`
	OrderID        string       `json:"order_id"`
	OriginalAmount models.Money `json:"original_amount"`
	DiscountAmount models.Money `json:"discount_amount"`
	FinalAmount    models.Money `json:"final_amount"`
	Currency       string       `json:"currency"`
}

// RecordDiscountUsage 订单完成后登记折扣使用
func (h *Handler) RecordDiscountUsage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req RecordUsageRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	locale := i18n.ResolveLocale(c)
	result, err := h.StudentDiscountService.RecordUsage(c.Request.Context(), service.RecordUsageInput{
		VerificationID: req.VerificationID,
		UserID:         userID,
		OrderID:        req.OrderID,
		OriginalAmount: req.OriginalAmount,
		DiscountAmount: req.DiscountAmount,
		FinalAmount:    req.FinalAmount,
		Currency:       req.Currency,
	}, locale)
	if err != nil {
		respondDiscountUsageError(c, err)
		return
	}
	response.SuccessWithMsg(c, result.Message, result)
}
