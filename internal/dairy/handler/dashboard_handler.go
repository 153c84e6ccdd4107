package handler

import (
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler 仪表盘与全量状态
type DashboardHandler struct {
	dashboard *service.DashboardService
	state     *service.StateService
}

func NewDashboardHandler(dashboard *service.DashboardService, state *service.StateService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, state: state}
}

// Summary GET /api/v1/dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		handleError(c, "load dashboard", err)
		return
	}
	Success(c, summary)
}

// State GET /api/v1/state
func (h *DashboardHandler) State(c *gin.Context) {
	snap, err := h.state.Snapshot(c.Request.Context())
	if err != nil {
		handleError(c, "load state", err)
		return
	}
	Success(c, snap)
}
