package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openaccounting/backend/internal/application/reporting"
)

// ReportHandler exposes the monthly bill and the distribution report
type ReportHandler struct {
	BaseHandler
	billing      *reporting.BillingService
	distribution *reporting.DistributionService
}

func NewReportHandler(billing *reporting.BillingService, distribution *reporting.DistributionService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:  NewBaseHandler(logger),
		billing:      billing,
		distribution: distribution,
	}
}

func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/distribution", h.Distribution)
		reports.GET("/monthly-bill/:year/:month", h.MonthlyBillHTML)
		reports.GET("/monthly-bill/:year/:month/pdf", h.MonthlyBillPDF)
	}
}

func (h *ReportHandler) Distribution(c *gin.Context) {
	entries, err := h.distribution.Distribution(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

func (h *ReportHandler) MonthlyBillHTML(c *gin.Context) {
	year, month, ok := h.parseMonthPath(c)
	if !ok {
		return
	}

	html, err := h.billing.MonthlyBillHTML(c.Request.Context(), year, month)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *ReportHandler) MonthlyBillPDF(c *gin.Context) {
	year, month, ok := h.parseMonthPath(c)
	if !ok {
		return
	}

	pdf, err := h.billing.MonthlyBillPDF(c.Request.Context(), year, month)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("bill-%04d-%02d.pdf", year, month)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *ReportHandler) parseMonthPath(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.BadRequest(c, "invalid year")
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		h.BadRequest(c, "invalid month")
		return 0, 0, false
	}
	return year, month, true
}
