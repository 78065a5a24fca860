package http

import (
	"errors"
	"net/http"

	"cncraft/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profiles *service.ProfileService
	log      *zap.Logger
}

func NewProfileHandler(profiles *service.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, log: log}
}

type profileRequest struct {
	DefaultPhoneNumber    string `json:"default_phone_number"`
	DefaultCountry        string `json:"default_country"`
	DefaultPostcode       string `json:"default_postcode"`
	DefaultTownOrCity     string `json:"default_town_or_city"`
	DefaultStreetAddress1 string `json:"default_street_address1"`
	DefaultStreetAddress2 string `json:"default_street_address2"`
	DefaultCounty         string `json:"default_county"`
	// Pointer so an omitted field leaves the stored preference alone.
	EmailNotifications *bool `json:"email_notifications"`
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context())
	if err != nil {
		h.profileError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(profile))
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile payload"})
		return
	}
	profile, err := h.profiles.UpdateProfile(c.Request.Context(), service.ProfileDetails{
		DefaultPhoneNumber:    req.DefaultPhoneNumber,
		DefaultCountry:        req.DefaultCountry,
		DefaultPostcode:       req.DefaultPostcode,
		DefaultTownOrCity:     req.DefaultTownOrCity,
		DefaultStreetAddress1: req.DefaultStreetAddress1,
		DefaultStreetAddress2: req.DefaultStreetAddress2,
		DefaultCounty:         req.DefaultCounty,
		EmailNotifications:    req.EmailNotifications,
	})
	if err != nil {
		h.profileError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(profile))
}

// OrderHistory lists the shopper's past orders, newest first.
func (h *ProfileHandler) OrderHistory(c *gin.Context) {
	orders, err := h.profiles.OrderHistory(c.Request.Context())
	if err != nil {
		h.profileError(c, err)
		return
	}
	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{"orders": resp})
}

// OrderConfirmation re-renders a past order's confirmation from the
// shopper's history.
func (h *ProfileHandler) OrderConfirmation(c *gin.Context) {
	order, err := h.profiles.OrderConfirmation(c.Request.Context(), c.Param("order_number"))
	if err != nil {
		h.profileError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "this is a past confirmation for order " + order.OrderNumber,
		"order":   toOrderResponse(order),
	})
}

func (h *ProfileHandler) profileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	default:
		h.log.Error("profile request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile request failed"})
	}
}
