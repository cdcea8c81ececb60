package routes

import (
	"time"

	"github.com/01moynul/medistore/internal/handlers"
	"github.com/01moynul/medistore/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// corsConfig allows the configured frontends to send bearer tokens.
func corsConfig(allowedOrigins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func SetupRouter(h *handlers.Handlers, allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	// --- CORS first, so preflights never reach auth ---
	router.Use(cors.New(corsConfig(allowedOrigins)))
	router.Use(middleware.PrometheusMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// --- Public Routes ---
		v1.GET("/health", h.Health)
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)
		v1.GET("/products/:productId", h.GetProduct)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(h.Users))
		{
			auth.GET("/auth/me", h.Me)

			// --- Cart ---
			auth.GET("/cart/me", h.GetMyCart)
			auth.POST("/cart/add", h.AddToCart)
			auth.PATCH("/cart/item/:itemId", h.UpdateCartItem)
			auth.DELETE("/cart/item/:itemId", h.RemoveCartItem)
			auth.DELETE("/cart/clear", h.ClearMyCart)

			// --- Customer Orders ---
			auth.POST("/orders/checkout", h.Checkout)
			auth.GET("/orders/me", h.GetMyOrders)
			auth.GET("/orders/me/:orderId", h.GetMyOrderByID)
			auth.PATCH("/orders/me/:orderId/cancel", h.CancelMyOrder)

			// --- Notifications ---
			auth.GET("/notifications", h.GetMyNotifications)
			auth.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)
		}

		// --- Seller Routes (admins pass too) ---
		seller := v1.Group("/")
		seller.Use(middleware.AuthMiddleware(h.Users))
		seller.Use(middleware.SellerMiddleware())
		{
			seller.GET("/orders/seller/my-orders", h.GetSellerOrders)
			seller.GET("/orders/seller/my-orders/:orderId", h.GetSellerOrder)
			seller.PATCH("/orders/seller/order-items/:orderItemId/status", h.UpdateOrderItemStatus)

			seller.POST("/seller/products", h.CreateProduct)
			seller.GET("/seller/products", h.ListMyProducts)
			seller.PUT("/seller/products/:productId", h.UpdateProduct)
			seller.DELETE("/seller/products/:productId", h.DeleteProduct)

			seller.GET("/seller/dashboard-stats", h.GetSellerStats)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(h.Users))
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/orders/:orderId", h.GetOrderByID)
			admin.PATCH("/orders/:orderId/status", h.UpdateOrderStatus)
			admin.PATCH("/users/:userId/status", h.UpdateUserStatus)

			admin.GET("/stats/overview", h.GetOverviewStats)
			admin.GET("/stats/monthly-sales", h.GetMonthlySales)
		}
	}

	return router
}
