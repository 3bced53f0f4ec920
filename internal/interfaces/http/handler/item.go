package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	"github.com/openaccounting/backend/internal/domain/booking"
)

// ItemHandler exposes sellable items and their open balance
type ItemHandler struct {
	BaseHandler
	items          *appbooking.ItemService
	timeZone       *time.Location
	nativeCurrency string
}

func NewItemHandler(items *appbooking.ItemService, timeZone *time.Location, nativeCurrency string, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{
		BaseHandler:    NewBaseHandler(logger),
		items:          items,
		timeZone:       timeZone,
		nativeCurrency: nativeCurrency,
	}
}

func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	{
		items.GET("", h.ListByMonth)
		items.GET("/open", h.ListOpen)
		items.GET("/:id", h.Get)
		items.POST("/manual", h.CreateManual)
		items.POST("/product-sales", h.CreateProductSale)
		items.POST("/subscription-sales", h.CreateSubscriptionSale)
	}
}

type createManualItemRequest struct {
	DebtorID uuid.UUID `json:"debtorId" binding:"required"`
	BookedAt time.Time `json:"bookedAt" binding:"required"`
	Amount   string    `json:"amount" binding:"required,amount"`
	Currency string    `json:"currency" binding:"omitempty,currency"`
	Note     string    `json:"note"`
}

type createProductSaleRequest struct {
	DebtorID  uuid.UUID `json:"debtorId" binding:"required"`
	ProductID uuid.UUID `json:"productId" binding:"required"`
	BookedAt  time.Time `json:"bookedAt" binding:"required"`
	Note      string    `json:"note"`
}

type createSubscriptionSaleRequest struct {
	DebtorID       uuid.UUID `json:"debtorId" binding:"required"`
	SubscriptionID uuid.UUID `json:"subscriptionId" binding:"required"`
	BookedAt       time.Time `json:"bookedAt" binding:"required"`
}

func (h *ItemHandler) CreateManual(c *gin.Context) {
	var req createManualItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	amount, err := parseMoney(req.Amount, req.Currency, h.nativeCurrency)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	item, err := h.items.CreateManual(c.Request.Context(), req.DebtorID, req.BookedAt, amount, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

func (h *ItemHandler) CreateProductSale(c *gin.Context) {
	var req createProductSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.items.CreateProductSale(c.Request.Context(), req.DebtorID, req.ProductID, req.BookedAt, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

func (h *ItemHandler) CreateSubscriptionSale(c *gin.Context) {
	var req createSubscriptionSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.items.CreateSubscriptionSale(c.Request.Context(), req.DebtorID, req.SubscriptionID, req.BookedAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	details, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}

// ListByMonth answers the items booked in one accounting month
func (h *ItemHandler) ListByMonth(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		h.BadRequest(c, "invalid year")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		h.BadRequest(c, "invalid month")
		return
	}

	start, end := booking.MonthRange(year, month, h.timeZone)
	items, err := h.items.ListByRange(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

func (h *ItemHandler) ListOpen(c *gin.Context) {
	items, err := h.items.ListOpen(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
