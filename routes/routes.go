package routes

import (
	"pizza-delivery-api/handlers"
	"pizza-delivery-api/middleware"
	"pizza-delivery-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		// Coverage & delivery pricing
		public.GET("/coverage/areas", h.ListCoverageAreas)
		public.GET("/coverage/areas/geojson", h.CoverageAreasGeoJSON)
		public.GET("/coverage/areas/:id", h.GetCoverageArea)
		public.GET("/coverage/areas/:id/districts", h.GetDistricts)
		public.GET("/coverage/check", h.CheckCoverage)
		public.GET("/coverage/delivery-info", h.GetDeliveryInfo)

		// Address lookups
		public.GET("/locations/geocode", h.Geocode)
		public.GET("/locations/reverse", h.ReverseGeocode)
		public.GET("/locations/search", h.SearchLocations)

		// Catalog
		public.GET("/menu", h.GetMenu)
		public.GET("/menu/categories", h.MenuCategories)
		public.GET("/menu/search", h.SearchMenu)
		public.POST("/menu/availability", h.CheckAvailability)
		public.GET("/promos/code/:code", h.GetPromoByCode)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", handlers.GetStateMachineInfo)

		// Payment gateway callback
		public.POST("/payments/webhook", h.PaymentWebhook)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired(h.JWTSecret))
	{
		auth.GET("/profile", h.GetProfile)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(h.JWTSecret), middleware.RoleRequired(models.RoleCustomer))
	{
		// Cart
		customer.GET("/cart", h.GetCart)
		customer.DELETE("/cart", h.ClearCart)
		customer.POST("/cart/items", h.AddCartItem)
		customer.PUT("/cart/items/:itemId", h.UpdateCartItem)
		customer.DELETE("/cart/items/:itemId", h.RemoveCartItem)
		customer.POST("/cart/promo", h.ApplyCartPromo)
		customer.DELETE("/cart/promo", h.RemoveCartPromo)

		// Promos
		customer.GET("/promos", h.ListPromos)
		customer.POST("/promos/validate", h.ValidatePromo)
		customer.GET("/promos/history", h.PromoHistory)

		// Orders & tracking
		customer.POST("/orders", h.PlaceOrder)
		customer.GET("/orders", h.GetMyOrders)
		customer.GET("/orders/stats", h.GetOrderStats)
		customer.GET("/orders/:id", h.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", h.CancelOrder)
		customer.GET("/orders/:id/tracking", h.GetTracking)
		customer.GET("/orders/:id/tracking/stream", h.StreamTracking)

		customer.GET("/payments/:externalId", h.GetPayment)

		// Notifications
		customer.GET("/notifications", h.ListNotifications)
		customer.PUT("/notifications/read-all", h.MarkAllNotificationsRead)
		customer.PUT("/notifications/:id/read", h.MarkNotificationRead)
		customer.DELETE("/notifications/:id", h.DeleteNotification)
		customer.GET("/notifications/preferences", h.GetNotificationPreferences)
		customer.PUT("/notifications/preferences", h.UpdateNotificationPreferences)
	}

	// ── Driver routes ──────────────────────────────────────────────
	driver := r.Group("/api/driver")
	driver.Use(middleware.AuthRequired(h.JWTSecret), middleware.RoleRequired(models.RoleDriver))
	{
		driver.GET("/profile", h.GetDriverProfile)
		driver.PUT("/status", h.UpdateDriverStatus)
		driver.PUT("/location", h.UpdateDriverLocation)
		driver.GET("/available", h.AvailableDrivers)

		driver.GET("/orders", h.GetDriverOrders)
		driver.GET("/orders/active", h.GetActiveOrders)
		driver.PUT("/orders/:id/status", h.UpdateOrderStatus)
		driver.PUT("/orders/:id/simulate", h.SimulateDriver)
	}
}
