package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
)

// AccountingMonthHandler exposes the month lifecycle
type AccountingMonthHandler struct {
	BaseHandler
	months *appbooking.AccountingMonthService
}

func NewAccountingMonthHandler(months *appbooking.AccountingMonthService, logger *zap.Logger) *AccountingMonthHandler {
	return &AccountingMonthHandler{
		BaseHandler: NewBaseHandler(logger),
		months:      months,
	}
}

func (h *AccountingMonthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	months := rg.Group("/accounting-months")
	{
		months.GET("", h.List)
		months.POST("", h.Create)
		months.GET("/last", h.Last)
		months.GET("/next", h.Next)
		months.GET("/years", h.Years)
		months.GET("/years/:year", h.MonthsOfYear)
		months.PUT("/:year/:month/lock", h.SetLockStatus)
	}
}

type createMonthRequest struct {
	Year  int `json:"year" binding:"required,min=2000,max=2200"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

type setLockStatusRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}

func (h *AccountingMonthHandler) Create(c *gin.Context) {
	var req createMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.months.Create(c.Request.Context(), req.Year, req.Month); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appbooking.MonthKey{Year: req.Year, Month: req.Month})
}

func (h *AccountingMonthHandler) SetLockStatus(c *gin.Context) {
	year, month, ok := h.parseMonthParams(c)
	if !ok {
		return
	}

	var req setLockStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.months.SetLockStatus(c.Request.Context(), year, month, *req.Locked); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *AccountingMonthHandler) List(c *gin.Context) {
	result, err := h.months.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *AccountingMonthHandler) Years(c *gin.Context) {
	years, err := h.months.Years(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, years)
}

func (h *AccountingMonthHandler) MonthsOfYear(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		h.BadRequest(c, "invalid year")
		return
	}

	result, err := h.months.MonthsOfYear(c.Request.Context(), year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *AccountingMonthHandler) Last(c *gin.Context) {
	key, err := h.months.Last(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, key)
}

func (h *AccountingMonthHandler) Next(c *gin.Context) {
	key, err := h.months.Next(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, key)
}

func (h *AccountingMonthHandler) parseMonthParams(c *gin.Context) (int, int, bool) {
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
