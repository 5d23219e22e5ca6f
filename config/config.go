package config

import (
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pizza-delivery-api/models"
	"pizza-delivery-api/repository"
)

type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`
	GinMode  string `envconfig:"GIN_MODE" default:"debug"`
	DBPath   string `envconfig:"DB_PATH" default:"pizza_delivery.db"`

	// JWTSecret signs customer and driver tokens
	JWTSecret string `envconfig:"JWT_SECRET" default:"pizza_delivery_dev_secret"`

	// RedisAddr selects the redis cart store; empty keeps carts in memory
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CartTTL       time.Duration `envconfig:"CART_TTL" default:"24h"`

	OrderPollInterval   time.Duration `envconfig:"ORDER_POLL_INTERVAL" default:"30s"`
	PaymentPollInterval time.Duration `envconfig:"PAYMENT_POLL_INTERVAL" default:"30s"`
	DriverTickInterval  time.Duration `envconfig:"DRIVER_TICK_INTERVAL" default:"10s"`

	GeolocationTimeout time.Duration `envconfig:"GEOLOCATION_TIMEOUT" default:"10s"`
	FallbackLat        float64       `envconfig:"FALLBACK_LAT" default:"-7.2575"`
	FallbackLng        float64       `envconfig:"FALLBACK_LNG" default:"112.7521"`

	// SimulationSeed fixes the driver simulator randomness; 0 seeds from the clock
	SimulationSeed int64 `envconfig:"SIMULATION_SEED" default:"0"`
	SeedCatalog    bool  `envconfig:"SEED_CATALOG" default:"true"`
}

// Fallback is the coordinate used when the customer location cannot be resolved.
func (c *Config) Fallback() models.Coordinate {
	return models.Coordinate{Lat: c.FallbackLat, Lng: c.FallbackLng}
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if cfg.CartTTL <= 0 {
		return nil, fmt.Errorf("CART_TTL must be positive, got %s", cfg.CartTTL)
	}
	for name, d := range map[string]time.Duration{
		"ORDER_POLL_INTERVAL":   cfg.OrderPollInterval,
		"PAYMENT_POLL_INTERVAL": cfg.PaymentPollInterval,
		"DRIVER_TICK_INTERVAL":  cfg.DriverTickInterval,
		"GEOLOCATION_TIMEOUT":   cfg.GeolocationTimeout,
	} {
		if d <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return &cfg, nil
}

// OpenDB opens the sqlite database at path and migrates every model.
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(repository.AllModels()...); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	log.Println("✅ Database connected and migrated successfully")
	return db, nil
}
