package config

import (
	"context"
	"testing"
	"time"

	"pizza-delivery-api/repository"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q", cfg.HTTPPort)
	}
	if cfg.CartTTL != 24*time.Hour {
		t.Errorf("CartTTL = %s", cfg.CartTTL)
	}
	if cfg.OrderPollInterval != 30*time.Second || cfg.PaymentPollInterval != 30*time.Second {
		t.Errorf("poll intervals = %s/%s", cfg.OrderPollInterval, cfg.PaymentPollInterval)
	}
	if cfg.DriverTickInterval != 10*time.Second || cfg.GeolocationTimeout != 10*time.Second {
		t.Errorf("tick/timeout = %s/%s", cfg.DriverTickInterval, cfg.GeolocationTimeout)
	}
	if fb := cfg.Fallback(); fb.Lat != -7.2575 || fb.Lng != 112.7521 {
		t.Errorf("Fallback = %+v", fb)
	}
	if !cfg.SeedCatalog {
		t.Error("SeedCatalog should default to true")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CART_TTL", "2h")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SIMULATION_SEED", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "9090" || cfg.CartTTL != 2*time.Hour || cfg.RedisAddr != "localhost:6379" || cfg.SimulationSeed != 42 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_RejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("DRIVER_TICK_INTERVAL", "0s")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero tick interval")
	}
}

func TestOpenDB_MigratesAndSeeds(t *testing.T) {
	db, err := OpenDB("file:config_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	catalog := repository.NewGormCatalog(db)
	if err := catalog.Seed(context.Background(), repository.DefaultCatalog()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	areas, err := catalog.Areas(context.Background())
	if err != nil || len(areas) != 2 {
		t.Errorf("Areas = %d, %v", len(areas), err)
	}
}
