package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pizza-delivery-api/cart"
	"pizza-delivery-api/config"
	"pizza-delivery-api/dispatch"
	"pizza-delivery-api/geolocation"
	"pizza-delivery-api/handlers"
	"pizza-delivery-api/location"
	"pizza-delivery-api/menu"
	"pizza-delivery-api/notification"
	"pizza-delivery-api/order"
	"pizza-delivery-api/payment"
	"pizza-delivery-api/promo"
	"pizza-delivery-api/repository"
	"pizza-delivery-api/routes"
	"pizza-delivery-api/tracking"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := config.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	catalog := repository.NewGormCatalog(db)
	if cfg.SeedCatalog {
		if err := catalog.Seed(context.Background(), repository.DefaultCatalog()); err != nil {
			log.Fatal("Failed to seed catalog: ", err)
		}
		log.Println("🌱 Catalog seeded")
	}

	// Carts live in redis when configured, otherwise in process memory
	var carts cart.Store = cart.NewMemoryStore(cfg.CartTTL)
	if cfg.RedisAddr != "" {
		client, err := cart.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		carts = cart.NewRedisStore(client, cfg.CartTTL)
		log.Printf("🛒 Cart store: redis at %s", cfg.RedisAddr)
	}

	users := repository.NewGormUsers(db)
	promos := promo.NewService(catalog, repository.NewGormUsage(db))
	locations := location.NewService(catalog, cfg.Fallback(), cfg.SimulationSeed)
	payments := payment.NewService(repository.NewGormPayments(db), payment.NewSimulatedProvider())
	tracker := tracking.NewTracker(cfg.DriverTickInterval, cfg.SimulationSeed)
	drivers := dispatch.NewService(repository.NewGormDrivers(db), users)
	notifications := notification.NewService(repository.NewGormNotifications(db))
	orders := order.NewService(order.Dependencies{
		Orders:    repository.NewGormOrders(db),
		Carts:     cart.NewService(carts, catalog, promos),
		Locations: locations,
		Promos:    promos,
		Payments:  payments,
		Tracker:   tracker,
		Locator:   geolocation.NewLocator(cfg.GeolocationTimeout, cfg.Fallback()),
		Drivers:   drivers,
		Notifier:  notifications,
	})

	h := &handlers.Handler{
		Users:         users,
		Menu:          menu.NewService(catalog),
		Locations:     locations,
		Promos:        promos,
		Carts:         orders.Carts,
		Orders:        orders,
		Payments:      payments,
		Drivers:       drivers,
		Notifications: notifications,
		JWTSecret:     []byte(cfg.JWTSecret),
	}

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Pizza Delivery Geo & Promo API",
			"version": "1.0.0",
		})
	})

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "🍕 Welcome to the Pizza Delivery API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []string{"customer", "driver"},
		})
	})

	// Register all routes
	routes.SetupRoutes(r, h)

	// Background workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	paymentWatcher := payments.StartWatcher(workerCtx, cfg.PaymentPollInterval)
	orderWatcher := orders.StartWatcher(workerCtx, cfg.OrderPollInterval)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 Server running on http://localhost:%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	workerCancel()
	paymentWatcher.Stop()
	orderWatcher.Stop()
	tracker.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
