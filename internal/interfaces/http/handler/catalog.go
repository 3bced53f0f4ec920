package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcatalog "github.com/openaccounting/backend/internal/application/catalog"
)

// CatalogHandler exposes the sellable products and subscriptions
type CatalogHandler struct {
	BaseHandler
	catalog        *appcatalog.CatalogService
	nativeCurrency string
}

func NewCatalogHandler(catalog *appcatalog.CatalogService, nativeCurrency string, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalog:        catalog,
		nativeCurrency: nativeCurrency,
	}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
	}

	subscriptions := rg.Group("/subscriptions")
	{
		subscriptions.GET("", h.ListSubscriptions)
		subscriptions.POST("", h.CreateSubscription)
		subscriptions.GET("/:id", h.GetSubscription)
		subscriptions.PUT("/:id", h.UpdateSubscription)
	}
}

type productRequest struct {
	Title    string `json:"title" binding:"required"`
	Price    string `json:"price" binding:"required,amount"`
	Currency string `json:"currency" binding:"omitempty,currency"`
}

type subscriptionRequest struct {
	Name     string `json:"name" binding:"required"`
	Price    string `json:"price" binding:"required,amount"`
	Currency string `json:"currency" binding:"omitempty,currency"`
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	price, err := parseMoney(req.Price, req.Currency, h.nativeCurrency)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), req.Title, price)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	price, err := parseMoney(req.Price, req.Currency, h.nativeCurrency)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, req.Title, price)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	result, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *CatalogHandler) CreateSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	price, err := parseMoney(req.Price, req.Currency, h.nativeCurrency)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	subscription, err := h.catalog.CreateSubscription(c.Request.Context(), req.Name, price)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, subscription)
}

func (h *CatalogHandler) UpdateSubscription(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	price, err := parseMoney(req.Price, req.Currency, h.nativeCurrency)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	subscription, err := h.catalog.UpdateSubscription(c.Request.Context(), id, req.Name, price)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subscription)
}

func (h *CatalogHandler) GetSubscription(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	subscription, err := h.catalog.GetSubscription(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subscription)
}

func (h *CatalogHandler) ListSubscriptions(c *gin.Context) {
	result, err := h.catalog.ListSubscriptions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
