package http

import (
	"errors"
	"net/http"

	"cncraft/internal/cart"
	"cncraft/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartHandler struct {
	carts *service.CartService
	log   *zap.Logger
}

func NewCartHandler(carts *service.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: log}
}

type cartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  string `json:"quantity" binding:"required"`
}

// GetCart returns the priced summary of the current cart.
func (h *CartHandler) GetCart(c *gin.Context) {
	totals, state, err := h.carts.Summary(c.Request.Context(), sessionID(c), cartCookie(c))
	if err != nil {
		h.log.Error("cart summary failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}
	if state != nil {
		setCartCookie(c, state.CookieValue)
	}
	c.JSON(http.StatusOK, toTotalsResponse(totals))
}

// Count returns cheap badge counts without pricing the cart.
func (h *CartHandler) Count(c *gin.Context) {
	products, lines, err := h.carts.Count(c.Request.Context(), sessionID(c), cartCookie(c))
	if err != nil {
		h.log.Error("cart count failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, countResponse{ProductCount: products, LineCount: lines})
}

// AddItem adds quantity of a product to the cart.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id and quantity are required"})
		return
	}
	qty, err := service.ParseQuantity(req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a positive whole number"})
		return
	}
	state, err := h.carts.AddItem(c.Request.Context(), sessionID(c), cartCookie(c), req.ProductID, qty)
	if err != nil {
		h.cartError(c, err)
		return
	}
	setCartCookie(c, state.CookieValue)
	c.JSON(http.StatusOK, gin.H{"message": "added to cart"})
}

// AdjustItem sets the quantity of a cart line. Zero or negative removes it.
func (h *CartHandler) AdjustItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id and quantity are required"})
		return
	}
	qty, err := service.ParseQuantity(req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a whole number"})
		return
	}
	state, err := h.carts.AdjustItem(c.Request.Context(), sessionID(c), cartCookie(c), req.ProductID, qty)
	if err != nil {
		h.cartError(c, err)
		return
	}
	setCartCookie(c, state.CookieValue)
	c.JSON(http.StatusOK, gin.H{"message": "cart updated"})
}

// RemoveItem deletes a product line from the cart.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID := c.Param("product_id")
	state, err := h.carts.RemoveItem(c.Request.Context(), sessionID(c), cartCookie(c), productID)
	if err != nil {
		h.cartError(c, err)
		return
	}
	setCartCookie(c, state.CookieValue)
	c.JSON(http.StatusOK, gin.H{"message": "removed from cart"})
}

// ClearCart empties both replicas.
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.carts.ClearCart(c.Request.Context(), sessionID(c)); err != nil {
		h.log.Error("cart clear failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}
	expireCartCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

// MergeCart unions the cookie cart into the session cart on login.
func (h *CartHandler) MergeCart(c *gin.Context) {
	if !requireAuth(c) {
		return
	}
	merged, err := h.carts.MergeOnLogin(c.Request.Context(), sessionID(c), cartCookie(c))
	if err != nil {
		h.log.Error("cart merge failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to merge cart"})
		return
	}
	expireCartCookie(c)
	products, lines := merged.Count()
	c.JSON(http.StatusOK, countResponse{ProductCount: products, LineCount: lines})
}

func (h *CartHandler) cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a positive whole number"})
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "that item is not in your cart"})
	case errors.Is(err, cart.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	default:
		h.log.Error("cart mutation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
	}
}
