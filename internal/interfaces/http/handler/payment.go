package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	"github.com/openaccounting/backend/internal/application/payments"
	"github.com/openaccounting/backend/internal/domain/booking"
)

// PaymentHandler exposes payments, their settlement edges and the
// activity import.
type PaymentHandler struct {
	BaseHandler
	payments       *payments.PaymentService
	associations   *appbooking.AssociationService
	importer       *payments.ImportService
	timeZone       *time.Location
	nativeCurrency string
}

func NewPaymentHandler(
	paymentService *payments.PaymentService,
	associations *appbooking.AssociationService,
	importer *payments.ImportService,
	timeZone *time.Location,
	nativeCurrency string,
	logger *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    NewBaseHandler(logger),
		payments:       paymentService,
		associations:   associations,
		importer:       importer,
		timeZone:       timeZone,
		nativeCurrency: nativeCurrency,
	}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	paymentsGroup := rg.Group("/payments")
	{
		paymentsGroup.GET("", h.List)
		paymentsGroup.POST("", h.CreateManual)
		paymentsGroup.GET("/:id", h.Get)
		paymentsGroup.PUT("/:id", h.UpdateManual)
		paymentsGroup.POST("/:id/items", h.AssociateItem)
		paymentsGroup.POST("/:id/links", h.Link)
		paymentsGroup.POST("/:id/recompute", h.Recompute)
	}

	rg.GET("/payment-services", h.Services)
	rg.GET("/payment-services/:code", h.ServiceByCode)
	rg.POST("/imports/:service", h.Import)
}

type createPaymentRequest struct {
	Type            string    `json:"type" binding:"required"`
	ServiceID       uuid.UUID `json:"serviceId" binding:"required"`
	TransactionCode string    `json:"transactionCode"`
	SenderID        uuid.UUID `json:"senderId"`
	ReceiverID      uuid.UUID `json:"receiverId"`
	BookedAt        time.Time `json:"bookedAt" binding:"required"`
	GrossAmount     string    `json:"grossAmount" binding:"required,amount"`
	Currency        string    `json:"currency" binding:"omitempty,currency"`
	Note            string    `json:"note"`
}

type updatePaymentRequest struct {
	SenderID    uuid.UUID `json:"senderId"`
	ReceiverID  uuid.UUID `json:"receiverId"`
	BookedAt    time.Time `json:"bookedAt" binding:"required"`
	GrossAmount string    `json:"grossAmount" binding:"required,amount"`
	Currency    string    `json:"currency" binding:"omitempty,currency"`
	Note        string    `json:"note"`
}

type associateItemRequest struct {
	ItemID uuid.UUID `json:"itemId" binding:"required"`
}

type linkPaymentRequest struct {
	TargetPaymentID uuid.UUID `json:"targetPaymentId" binding:"required"`
	Amount          string    `json:"amount" binding:"required,amount"`
	Currency        string    `json:"currency" binding:"omitempty,currency"`
	Reason          string    `json:"reason" binding:"required"`
}

func (h *PaymentHandler) CreateManual(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	gross, err := parseMoney(req.GrossAmount, req.Currency, h.nativeCurrency)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	payment, err := h.payments.CreateManual(c.Request.Context(), payments.ManualPaymentRequest{
		Type:            booking.PaymentType(req.Type),
		ServiceID:       req.ServiceID,
		TransactionCode: req.TransactionCode,
		SenderID:        req.SenderID,
		ReceiverID:      req.ReceiverID,
		BookedAt:        req.BookedAt,
		GrossAmount:     gross,
		Note:            req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

func (h *PaymentHandler) UpdateManual(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	gross, err := parseMoney(req.GrossAmount, req.Currency, h.nativeCurrency)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	payment, err := h.payments.UpdateManual(c.Request.Context(), id, payments.ManualPaymentUpdate{
		SenderID:    req.SenderID,
		ReceiverID:  req.ReceiverID,
		BookedAt:    req.BookedAt,
		GrossAmount: gross,
		Note:        req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	details, err := h.payments.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}

// List answers payments by accounting month, or by open/closed status
// when the status query parameter is present.
func (h *PaymentHandler) List(c *gin.Context) {
	switch status := c.Query("status"); status {
	case "open":
		result, err := h.payments.ListOpen(c.Request.Context())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
	case "closed":
		result, err := h.payments.ListClosed(c.Request.Context())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
	case "":
		h.listByMonth(c)
	default:
		h.BadRequest(c, "invalid status")
	}
}

func (h *PaymentHandler) listByMonth(c *gin.Context) {
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
	result, err := h.payments.ListByRange(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *PaymentHandler) AssociateItem(c *gin.Context) {
	paymentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req associateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.associations.AssociateItem(c.Request.Context(), paymentID, req.ItemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *PaymentHandler) Link(c *gin.Context) {
	paymentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req linkPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	amount, err := parseMoney(req.Amount, req.Currency, h.nativeCurrency)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	err = h.associations.LinkPayments(c.Request.Context(), paymentID, appbooking.LinkRequest{
		TargetPaymentID: req.TargetPaymentID,
		Amount:          amount,
		Reason:          booking.LinkReason(req.Reason),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *PaymentHandler) Recompute(c *gin.Context) {
	paymentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.associations.RecomputeOpenStatus(c.Request.Context(), paymentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *PaymentHandler) Services(c *gin.Context) {
	services, err := h.payments.Services(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, services)
}

func (h *PaymentHandler) ServiceByCode(c *gin.Context) {
	service, err := h.payments.ServiceByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, service)
}

// Import books every unknown record of an uploaded activity export
func (h *PaymentHandler) Import(c *gin.Context) {
	serviceCode := c.Param("service")

	file, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "missing file upload")
		return
	}

	reader, err := file.Open()
	if err != nil {
		h.BadRequest(c, "unreadable file upload")
		return
	}
	defer reader.Close()

	result, err := h.importer.Import(c.Request.Context(), serviceCode, reader)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
