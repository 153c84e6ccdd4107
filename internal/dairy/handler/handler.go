package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/repository"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/service"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/sse"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handlers 处理器集合
type Handlers struct {
	Auth         *AuthHandler
	PO           *POHandler
	Distribution *DistributionHandler
	Invoice      *InvoiceHandler
	Coordinator  *CoordinatorHandler
	Kitchen      *KitchenHandler
	Dashboard    *DashboardHandler
	Document     *DocumentHandler
	SSE          *SSEHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, hub *sse.Hub, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		Auth:         NewAuthHandler(svc.Auth),
		PO:           NewPOHandler(svc.Procurement),
		Distribution: NewDistributionHandler(svc.Distribution),
		Invoice:      NewInvoiceHandler(svc.Invoice),
		Coordinator:  NewCoordinatorHandler(svc.Coordinator),
		Kitchen:      NewKitchenHandler(svc.Kitchen),
		Dashboard:    NewDashboardHandler(svc.Dashboard, svc.State),
		Document:     NewDocumentHandler(svc.Document, logger),
		SSE:          NewSSEHandler(hub),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func newPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &Pagination{Page: page, PageSize: pageSize, Total: int(total), TotalPages: totalPages}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.AbortWithStatusJSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict 业务冲突响应
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

// bindError 参数绑定失败，校验错误展开为 字段:规则
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, strings.ToLower(fe.Field())+": "+fe.Tag())
		}
		BadRequest(c, "invalid parameters: "+strings.Join(parts, ", "))
		return
	}
	BadRequest(c, "invalid parameters: "+err.Error())
}

// handleError 业务错误映射为响应码
func handleError(c *gin.Context, action string, err error) {
	var terr *service.TransitionError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, action+": not found")
	case errors.As(err, &terr):
		Conflict(c, action+": "+terr.Error())
	case service.IsValidation(err):
		BadRequest(c, action+": "+err.Error())
	case service.IsConflict(err):
		Conflict(c, action+": "+err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrTokenRevoked):
		Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrSignupDisabled):
		Forbidden(c, err.Error())
	default:
		_ = c.Error(err)
		InternalError(c, action+" failed")
	}
}

// attachment 以附件形式返回文件
func attachment(c *gin.Context, doc *service.Document) {
	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.Data(200, doc.ContentType, doc.Data)
}

// inline 浏览器内打开（打印）
func inline(c *gin.Context, doc *service.Document) {
	c.Header("Content-Disposition", `inline; filename="`+doc.FileName+`"`)
	c.Data(200, doc.ContentType, doc.Data)
}
