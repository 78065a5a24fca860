package http

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

func Router(carts *CartHandler, checkout *CheckoutHandler, profiles *ProfileHandler, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-User-ID", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Webhooks carry no shopper session; keep them outside the session
	// middleware.
	r.POST("/checkout/wh", checkout.Webhook)

	shop := r.Group("/", SessionMiddleware(), IdentityMiddleware())
	{
		shop.GET("/cart", carts.GetCart)
		shop.GET("/cart/count", carts.Count)
		shop.POST("/cart/items", carts.AddItem)
		shop.PUT("/cart/items", carts.AdjustItem)
		shop.DELETE("/cart/items/:product_id", carts.RemoveItem)
		shop.DELETE("/cart", carts.ClearCart)
		shop.POST("/cart/merge", carts.MergeCart)

		shop.GET("/checkout", checkout.Preview)
		shop.POST("/checkout", checkout.PlaceOrder)
		shop.GET("/checkout/success/:order_number", checkout.Success)

		shop.GET("/profile", profiles.GetProfile)
		shop.PUT("/profile", profiles.UpdateProfile)
		shop.GET("/profile/orders", profiles.OrderHistory)
		shop.GET("/profile/orders/:order_number", profiles.OrderConfirmation)
	}

	return r
}
