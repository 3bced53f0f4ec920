package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openaccounting/backend/internal/domain/shared"
	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
	"github.com/openaccounting/backend/internal/interfaces/http/dto"
)

// BaseHandler provides the response helpers shared by every handler
type BaseHandler struct {
	logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse("BAD_REQUEST", message))
}

// HandleError translates a domain error into the envelope; anything
// that is not a DomainError surfaces as an opaque 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Unmapped domain error",
				zap.String("code", domainErr.Code),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
		}
		c.JSON(status, dto.NewErrorResponse(domainErr.Code, domainErr.Message))
		return
	}

	h.logger.Error("Unhandled error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("INTERNAL_ERROR", "internal server error"))
}

// parseUUIDParam reads a path parameter as UUID, answering 400 itself
// when the value does not parse. The bool reports success.
func (h *BaseHandler) parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// parseMoney builds a Money from the amount and currency of a request
// body, falling back to the handler's native currency.
func parseMoney(amount, currency, nativeCurrency string) (valueobject.Money, error) {
	if currency == "" {
		currency = nativeCurrency
	}
	return valueobject.NewMoneyFromString(amount, valueobject.Currency(currency))
}
