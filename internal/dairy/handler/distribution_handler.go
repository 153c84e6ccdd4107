package handler

import (
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/service"
	"github.com/gin-gonic/gin"
)

// DistributionHandler 配送处理器
type DistributionHandler struct {
	svc *service.DistributionService
}

func NewDistributionHandler(svc *service.DistributionService) *DistributionHandler {
	return &DistributionHandler{svc: svc}
}

// List 配送单列表
// GET /api/v1/distributions?status=xxx&coordinator_id=xxx&sppg_id=xxx&search=xxx
func (h *DistributionHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":         c.Query("status"),
		"coordinator_id": c.Query("coordinator_id"),
		"sppg_id":        c.Query("sppg_id"),
		"search":         c.Query("search"),
	}

	items, total, err := h.svc.ListDistributions(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		handleError(c, "list distributions", err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: newPagination(page, pageSize, total)})
}

// ListInvoiceable 可开票的配送单
// GET /api/v1/distributions/invoiceable
func (h *DistributionHandler) ListInvoiceable(c *gin.Context) {
	items, err := h.svc.ListInvoiceable(c.Request.Context())
	if err != nil {
		handleError(c, "list invoiceable distributions", err)
		return
	}
	Success(c, gin.H{"items": items})
}

// Get 配送单详情
// GET /api/v1/distributions/:id
func (h *DistributionHandler) Get(c *gin.Context) {
	d, err := h.svc.GetDistribution(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, "get distribution", err)
		return
	}
	Success(c, d)
}

// Create 创建配送单
// POST /api/v1/distributions
func (h *DistributionHandler) Create(c *gin.Context) {
	var req service.CreateDistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	d, err := h.svc.CreateDistribution(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		handleError(c, "create distribution", err)
		return
	}
	Created(c, d)
}

// UpdateStatus 更新配送状态
// PUT /api/v1/distributions/:id/status
func (h *DistributionHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	d, err := h.svc.UpdateDistributionStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		handleError(c, "update distribution status", err)
		return
	}
	Success(c, d)
}

// InvoiceHandler 发票处理器
type InvoiceHandler struct {
	svc *service.InvoiceService
}

func NewInvoiceHandler(svc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// List 发票列表
// GET /api/v1/invoices?status=xxx&sppg_id=xxx&search=xxx
func (h *InvoiceHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":  c.Query("status"),
		"sppg_id": c.Query("sppg_id"),
		"search":  c.Query("search"),
	}

	items, total, err := h.svc.ListInvoices(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		handleError(c, "list invoices", err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: newPagination(page, pageSize, total)})
}

// Get 发票详情
// GET /api/v1/invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.svc.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, "get invoice", err)
		return
	}
	Success(c, inv)
}

// Create 开票
// POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	inv, err := h.svc.CreateInvoice(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		handleError(c, "create invoice", err)
		return
	}
	Created(c, inv)
}

// UpdateStatus 更新发票状态
// PUT /api/v1/invoices/:id/status
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	inv, err := h.svc.UpdateInvoiceStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		handleError(c, "update invoice status", err)
		return
	}
	Success(c, inv)
}
