package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appidentity "github.com/openaccounting/backend/internal/application/identity"
)

// IdentityHandler exposes the people and organizations payments are
// booked against.
type IdentityHandler struct {
	BaseHandler
	identities *appidentity.IdentityService
}

func NewIdentityHandler(identities *appidentity.IdentityService, logger *zap.Logger) *IdentityHandler {
	return &IdentityHandler{
		BaseHandler: NewBaseHandler(logger),
		identities:  identities,
	}
}

func (h *IdentityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	identities := rg.Group("/identities")
	{
		identities.GET("", h.List)
		identities.POST("", h.Create)
		identities.GET("/:id", h.Get)
		identities.PUT("/:id", h.Update)
		identities.POST("/:id/accounts", h.AddPaymentAccount)
		identities.POST("/:id/subscriptions", h.AssignSubscription)
	}

	rg.PUT("/subscription-assignments/:id/end", h.EndAssignment)
}

type identityRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Note      string `json:"note"`
}

type addPaymentAccountRequest struct {
	ServiceID       uuid.UUID `json:"serviceId" binding:"required"`
	ExternalAccount string    `json:"externalAccount" binding:"required"`
}

type assignSubscriptionRequest struct {
	SubscriptionID uuid.UUID  `json:"subscriptionId" binding:"required"`
	BeginsAt       time.Time  `json:"beginsAt" binding:"required"`
	EndsAt         *time.Time `json:"endsAt"`
}

type endAssignmentRequest struct {
	EndsAt time.Time `json:"endsAt" binding:"required"`
}

func (h *IdentityHandler) Create(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	created, err := h.identities.Create(c.Request.Context(), req.FirstName, req.LastName, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

func (h *IdentityHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	updated, err := h.identities.Update(c.Request.Context(), id, req.FirstName, req.LastName, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

func (h *IdentityHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	details, err := h.identities.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}

func (h *IdentityHandler) List(c *gin.Context) {
	result, err := h.identities.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *IdentityHandler) AddPaymentAccount(c *gin.Context) {
	identityID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req addPaymentAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.identities.AddPaymentAccount(c.Request.Context(), identityID, req.ServiceID, req.ExternalAccount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

func (h *IdentityHandler) AssignSubscription(c *gin.Context) {
	identityID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req assignSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	assignment, err := h.identities.AssignSubscription(c.Request.Context(), identityID, req.SubscriptionID, req.BeginsAt, req.EndsAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, assignment)
}

func (h *IdentityHandler) EndAssignment(c *gin.Context) {
	assignmentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req endAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	assignment, err := h.identities.EndAssignment(c.Request.Context(), assignmentID, req.EndsAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, assignment)
}
