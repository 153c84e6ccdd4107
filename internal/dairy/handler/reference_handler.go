package handler

import (
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/service"
	"github.com/gin-gonic/gin"
)

// CoordinatorHandler 协调员处理器
type CoordinatorHandler struct {
	svc *service.CoordinatorService
}

func NewCoordinatorHandler(svc *service.CoordinatorService) *CoordinatorHandler {
	return &CoordinatorHandler{svc: svc}
}

// List GET /api/v1/coordinators?search=xxx
func (h *CoordinatorHandler) List(c *gin.Context) {
	items, err := h.svc.ListCoordinators(c.Request.Context(), c.Query("search"))
	if err != nil {
		handleError(c, "list coordinators", err)
		return
	}
	Success(c, gin.H{"items": items})
}

// Get GET /api/v1/coordinators/:id
func (h *CoordinatorHandler) Get(c *gin.Context) {
	item, err := h.svc.GetCoordinator(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, "get coordinator", err)
		return
	}
	Success(c, item)
}

// Create POST /api/v1/coordinators
func (h *CoordinatorHandler) Create(c *gin.Context) {
	var req service.CreateCoordinatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.svc.CreateCoordinator(c.Request.Context(), &req)
	if err != nil {
		handleError(c, "create coordinator", err)
		return
	}
	Created(c, item)
}

// Update PUT /api/v1/coordinators/:id
func (h *CoordinatorHandler) Update(c *gin.Context) {
	var req service.UpdateCoordinatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.svc.UpdateCoordinator(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, "update coordinator", err)
		return
	}
	Success(c, item)
}

// KitchenHandler 厨房(SPPG)处理器
type KitchenHandler struct {
	svc *service.KitchenService
}

func NewKitchenHandler(svc *service.KitchenService) *KitchenHandler {
	return &KitchenHandler{svc: svc}
}

// List GET /api/v1/sppgs?search=xxx
func (h *KitchenHandler) List(c *gin.Context) {
	items, err := h.svc.ListKitchens(c.Request.Context(), c.Query("search"))
	if err != nil {
		handleError(c, "list sppgs", err)
		return
	}
	Success(c, gin.H{"items": items})
}

// Get GET /api/v1/sppgs/:id
func (h *KitchenHandler) Get(c *gin.Context) {
	item, err := h.svc.GetKitchen(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, "get sppg", err)
		return
	}
	Success(c, item)
}

// Create POST /api/v1/sppgs
func (h *KitchenHandler) Create(c *gin.Context) {
	var req service.CreateKitchenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.svc.CreateKitchen(c.Request.Context(), &req)
	if err != nil {
		handleError(c, "create sppg", err)
		return
	}
	Created(c, item)
}

// Update PUT /api/v1/sppgs/:id
func (h *KitchenHandler) Update(c *gin.Context) {
	var req service.UpdateKitchenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.svc.UpdateKitchen(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, "update sppg", err)
		return
	}
	Success(c, item)
}
