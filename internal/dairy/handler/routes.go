package handler

import (
	"net/http"

	"github.com/Eman21-ctr/milk-management-app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册 /api/v1 路由
func RegisterRoutes(r *gin.Engine, h *Handlers, jwtSecret string, revoked middleware.RevocationChecker) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/sign-up", h.Auth.SignUp)
	auth.POST("/sign-in", h.Auth.SignIn)

	api := v1.Group("")
	api.Use(middleware.JWTAuth(jwtSecret, revoked))
	{
		api.POST("/auth/sign-out", h.Auth.SignOut)
		api.GET("/auth/me", h.Auth.Me)

		api.GET("/state", h.Dashboard.State)
		api.GET("/dashboard", h.Dashboard.Summary)
		api.GET("/events", h.SSE.Stream)

		// 采购与分配
		api.GET("/purchase-orders", h.PO.ListPOs)
		api.POST("/purchase-orders", h.PO.CreatePO)
		api.GET("/purchase-orders/:id", h.PO.GetPO)
		api.DELETE("/purchase-orders/:id", h.PO.DeletePO)
		api.PUT("/purchase-orders/:id/status", h.PO.UpdateStatus)
		api.POST("/purchase-orders/:id/allocations", h.PO.Allocate)
		api.GET("/allocations", h.PO.ListAllocations)

		// 配送
		api.GET("/distributions", h.Distribution.List)
		api.POST("/distributions", h.Distribution.Create)
		api.GET("/distributions/invoiceable", h.Distribution.ListInvoiceable)
		api.GET("/distributions/:id", h.Distribution.Get)
		api.PUT("/distributions/:id/status", h.Distribution.UpdateStatus)
		api.GET("/distributions/:id/shipment-note", h.Document.ShipmentNote)
		api.GET("/distributions/:id/handover-note", h.Document.HandoverNote)

		// 发票
		api.GET("/invoices", h.Invoice.List)
		api.POST("/invoices", h.Invoice.Create)
		api.GET("/invoices/:id", h.Invoice.Get)
		api.PUT("/invoices/:id/status", h.Invoice.UpdateStatus)
		api.GET("/invoices/:id/print", h.Document.InvoicePrint)

		// 基础资料
		api.GET("/sppgs", h.Kitchen.List)
		api.POST("/sppgs", h.Kitchen.Create)
		api.GET("/sppgs/:id", h.Kitchen.Get)
		api.PUT("/sppgs/:id", h.Kitchen.Update)
		api.GET("/coordinators", h.Coordinator.List)
		api.POST("/coordinators", h.Coordinator.Create)
		api.GET("/coordinators/:id", h.Coordinator.Get)
		api.PUT("/coordinators/:id", h.Coordinator.Update)

		// 导出与报表
		api.GET("/exports/:dataset", h.Document.Export)
		api.GET("/reports/financial", h.Document.FinancialReport)
		api.GET("/reports/distributions", h.Document.DistributionReport)
	}
}
