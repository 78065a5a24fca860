package http

import (
	"errors"
	"io"
	"net/http"

	"cncraft/internal/cart"
	"cncraft/internal/payment"
	"cncraft/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 64 << 10

type CheckoutHandler struct {
	checkout  service.CheckoutService
	carts     *service.CartService
	profiles  *service.ProfileService
	provider  payment.Provider
	publicKey string
	log       *zap.Logger
}

func NewCheckoutHandler(checkout service.CheckoutService, carts *service.CartService, profiles *service.ProfileService, provider payment.Provider, publicKey string, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:  checkout,
		carts:     carts,
		profiles:  profiles,
		provider:  provider,
		publicKey: publicKey,
		log:       log,
	}
}

// Preview prices the cart for the checkout page and hands the frontend
// the publishable key it needs to mount the payment element.
func (h *CheckoutHandler) Preview(c *gin.Context) {
	totals, state, err := h.carts.Summary(c.Request.Context(), sessionID(c), cartCookie(c))
	if err != nil {
		h.log.Error("checkout preview failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}
	if state != nil {
		setCartCookie(c, state.CookieValue)
	}
	if len(totals.Lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrCartEmpty.Error(), "redirect": "/products"})
		return
	}
	key := h.publicKey
	if key == "" {
		key = "pk_test_placeholder"
	}
	c.JSON(http.StatusOK, gin.H{
		"totals":            toTotalsResponse(totals),
		"stripe_public_key": key,
	})
}

// PlaceOrder materializes the cart into an order and authorizes payment.
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req orderDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout payload"})
		return
	}

	placed, err := h.checkout.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		SessionID:  sessionID(c),
		CookieCart: cartCookie(c),
		Details:    req.toDetails(),
	})
	if err != nil {
		h.placeOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":         toOrderResponse(placed.Order),
		"totals":        toTotalsResponse(placed.Totals),
		"client_secret": placed.Payment.ClientSecret,
		"save_info":     req.SaveInfo,
	})
}

func (h *CheckoutHandler) placeOrderError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "please correct the highlighted fields", "fields": vErr.Fields})
	case errors.Is(err, service.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrCartEmpty.Error(), "redirect": "/products"})
	case errors.Is(err, cart.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":    "one of the products in your cart wasn't found in our database; please call us for assistance",
			"redirect": "/cart",
		})
	case errors.Is(err, payment.ErrDeclined), errors.Is(err, payment.ErrTransport):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "sorry, your payment cannot be processed right now, please try again later"})
	default:
		h.log.Error("checkout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
	}
}

// Success is the landing endpoint after a processed payment. It clears
// both cart replicas, attaches the shopper's profile when authenticated
// and, when save_info was requested, saves the order's delivery details
// as the profile defaults.
func (h *CheckoutHandler) Success(c *gin.Context) {
	orderNumber := c.Param("order_number")
	order, err := h.checkout.CompleteOrder(c.Request.Context(), orderNumber, sessionID(c))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		h.log.Error("order completion failed", zap.String("order_number", orderNumber), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}

	if c.Query("save_info") == "true" {
		if _, ok := service.UserIDFromContext(c.Request.Context()); ok {
			// Delivery defaults only; the notification preference is not
			// part of the checkout form and must survive unchanged.
			_, err := h.profiles.UpdateProfile(c.Request.Context(), service.ProfileDetails{
				DefaultPhoneNumber:    order.PhoneNumber,
				DefaultCountry:        order.Country,
				DefaultPostcode:       deref(order.Postcode),
				DefaultTownOrCity:     order.TownOrCity,
				DefaultStreetAddress1: order.StreetAddress1,
				DefaultStreetAddress2: deref(order.StreetAddress2),
				DefaultCounty:         deref(order.County),
			})
			if err != nil {
				h.log.Warn("saving delivery info failed", zap.String("order_number", orderNumber), zap.Error(err))
			}
		}
	}

	expireCartCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "order successfully processed",
		"order":   toOrderResponse(order),
	})
}

// Webhook receives provider events. The signature is verified before
// anything is trusted; handled or unrecognized events are acknowledged
// with 200 so the provider stops retrying.
func (h *CheckoutHandler) Webhook(c *gin.Context) {
	payloadBody, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	ev, err := h.provider.VerifyWebhook(payloadBody, c.GetHeader("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		case errors.Is(err, payment.ErrPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		default:
			h.log.Error("webhook verification failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		}
		return
	}

	if err := h.checkout.HandleWebhookEvent(c.Request.Context(), ev); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			// Non-2xx so the provider can alert or retry per its own policy.
			h.log.Warn("webhook for unknown order", zap.String("order_number", ev.OrderNumber))
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		h.log.Error("webhook handling failed", zap.String("type", ev.Type), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook handling failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "webhook received: " + ev.Type})
}
