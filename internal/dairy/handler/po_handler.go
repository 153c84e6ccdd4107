package handler

import (
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/service"
	"github.com/gin-gonic/gin"
)

// POHandler 采购订单处理器
type POHandler struct {
	svc *service.ProcurementService
}

func NewPOHandler(svc *service.ProcurementService) *POHandler {
	return &POHandler{svc: svc}
}

// ListPOs 采购订单列表
// GET /api/v1/purchase-orders?status=xxx&search=xxx
func (h *POHandler) ListPOs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"search": c.Query("search"),
	}

	items, total, err := h.svc.ListPurchaseOrders(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		handleError(c, "list purchase orders", err)
		return
	}

	Success(c, ListResponse{
		Items:      items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetPO 采购订单详情
// GET /api/v1/purchase-orders/:id
func (h *POHandler) GetPO(c *gin.Context) {
	po, err := h.svc.GetPurchaseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, "get purchase order", err)
		return
	}
	Success(c, po)
}

// CreatePO 创建采购订单
// POST /api/v1/purchase-orders
func (h *POHandler) CreatePO(c *gin.Context) {
	var req service.CreatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	po, err := h.svc.CreatePurchaseOrder(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		handleError(c, "create purchase order", err)
		return
	}
	Created(c, po)
}

// UpdateStatus 更新PO状态
// PUT /api/v1/purchase-orders/:id/status
func (h *POHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	po, err := h.svc.UpdatePurchaseOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		handleError(c, "update purchase order status", err)
		return
	}
	Success(c, po)
}

// Allocate 分配库存给协调员
// POST /api/v1/purchase-orders/:id/allocations
func (h *POHandler) Allocate(c *gin.Context) {
	var req service.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.svc.AllocateStock(c.Request.Context(), c.Param("id"), req.Allocations)
	if err != nil {
		handleError(c, "allocate stock", err)
		return
	}
	Success(c, result)
}

// DeletePO 删除采购订单并回滚分配
// DELETE /api/v1/purchase-orders/:id
func (h *POHandler) DeletePO(c *gin.Context) {
	if err := h.svc.DeletePurchaseOrder(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, "delete purchase order", err)
		return
	}
	Success(c, nil)
}

// ListAllocations 分配记录
// GET /api/v1/allocations?po_id=xxx&coordinator_id=xxx
func (h *POHandler) ListAllocations(c *gin.Context) {
	items, err := h.svc.ListAllocations(c.Request.Context(), map[string]string{
		"po_id":          c.Query("po_id"),
		"coordinator_id": c.Query("coordinator_id"),
	})
	if err != nil {
		handleError(c, "list allocations", err)
		return
	}
	Success(c, gin.H{"items": items})
}
