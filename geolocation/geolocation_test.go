package geolocation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pizza-delivery-api/models"
)

var (
	fallback = models.Coordinate{Lat: -7.2575, Lng: 112.7521}
	bintaro  = models.Coordinate{Lat: -6.2758, Lng: 106.7614}
)

func TestLocate(t *testing.T) {
	denied := ProviderFunc(func(ctx context.Context) (models.Coordinate, error) {
		return models.Coordinate{}, errors.New("user denied geolocation")
	})
	hangs := ProviderFunc(func(ctx context.Context) (models.Coordinate, error) {
		<-ctx.Done()
		return models.Coordinate{}, ctx.Err()
	})
	ignoresCtx := ProviderFunc(func(ctx context.Context) (models.Coordinate, error) {
		time.Sleep(200 * time.Millisecond)
		return bintaro, nil
	})
	garbage := Fixed(models.Coordinate{Lat: 123, Lng: 0})

	tests := []struct {
		name         string
		provider     Provider
		want         models.Coordinate
		wantFallback bool
	}{
		{"success", Fixed(bintaro), bintaro, false},
		{"denied", denied, fallback, true},
		{"timeout", hangs, fallback, true},
		{"provider ignores context", ignoresCtx, fallback, true},
		{"invalid coordinate", garbage, fallback, true},
		{"no provider", nil, fallback, true},
	}
	l := NewLocator(20*time.Millisecond, fallback)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			got := l.Locate(context.Background(), tt.provider)
			if got.Coordinate != tt.want || got.Fallback != tt.wantFallback {
				t.Errorf("Locate() = %+v, want %v fallback=%v", got, tt.want, tt.wantFallback)
			}
			if tt.wantFallback && !strings.Contains(got.Reason, ErrUnavailable.Error()) {
				t.Errorf("reason %q does not mention unavailability", got.Reason)
			}
			if time.Since(start) > 150*time.Millisecond {
				t.Errorf("Locate took %s, longer than the bounded wait", time.Since(start))
			}
		})
	}
}

func TestNewLocator_DefaultTimeout(t *testing.T) {
	if l := NewLocator(0, fallback); l.timeout != DefaultTimeout {
		t.Errorf("timeout = %s, want %s", l.timeout, DefaultTimeout)
	}
}
