package handler

import (
	"strconv"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DocumentHandler 导出、报表与打印
type DocumentHandler struct {
	svc    *service.DocumentService
	logger *zap.Logger
}

func NewDocumentHandler(svc *service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{svc: svc, logger: logger}
}

func archiveRequested(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("archive"))
	return v
}

// respond 归档时返回地址，否则直接下载
func (h *DocumentHandler) respond(c *gin.Context, doc *service.Document) {
	if doc.URL != "" {
		Success(c, doc)
		return
	}
	attachment(c, doc)
}

// Export 数据集导出
// GET /api/v1/exports/:dataset?format=csv|pdf|xlsx&archive=true
func (h *DocumentHandler) Export(c *gin.Context) {
	dataset := c.Param("dataset")
	doc, err := h.svc.Export(c.Request.Context(), dataset, c.DefaultQuery("format", service.FormatCSV), archiveRequested(c))
	if err != nil {
		handleError(c, "export "+dataset, err)
		return
	}
	h.logger.Info("dataset exported",
		zap.String("dataset", dataset),
		zap.String("file", doc.FileName),
		zap.Int("bytes", len(doc.Data)),
		zap.String("user_id", GetUserID(c)))
	h.respond(c, doc)
}

// FinancialReport 财务报表
// GET /api/v1/reports/financial?start=2026-10-01&end=2026-10-31&format=csv|pdf
func (h *DocumentHandler) FinancialReport(c *gin.Context) {
	doc, err := h.svc.FinancialReport(c.Request.Context(), c.Query("start"), c.Query("end"),
		c.DefaultQuery("format", service.FormatPDF), archiveRequested(c))
	if err != nil {
		handleError(c, "financial report", err)
		return
	}
	h.respond(c, doc)
}

// DistributionReport 配送报表
// GET /api/v1/reports/distributions?start=2026-10-01&end=2026-10-31
func (h *DocumentHandler) DistributionReport(c *gin.Context) {
	doc, err := h.svc.DistributionReport(c.Request.Context(), c.Query("start"), c.Query("end"), archiveRequested(c))
	if err != nil {
		handleError(c, "distribution report", err)
		return
	}
	h.respond(c, doc)
}

// ShipmentNote 送货单
// GET /api/v1/distributions/:id/shipment-note
func (h *DocumentHandler) ShipmentNote(c *gin.Context) {
	doc, err := h.svc.ShipmentNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, "shipment note", err)
		return
	}
	inline(c, doc)
}

// HandoverNote 交接单
// GET /api/v1/distributions/:id/handover-note
func (h *DocumentHandler) HandoverNote(c *gin.Context) {
	doc, err := h.svc.HandoverNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, "handover note", err)
		return
	}
	inline(c, doc)
}

// InvoicePrint 发票打印
// GET /api/v1/invoices/:id/print
func (h *DocumentHandler) InvoicePrint(c *gin.Context) {
	doc, err := h.svc.InvoicePrint(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, "print invoice", err)
		return
	}
	inline(c, doc)
}
