// Package geolocation resolves the customer's position with a bounded wait.
// A lookup never leaves the caller without a coordinate: failures, denials
// and timeouts fall back to a configured point.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pizza-delivery-api/geo"
	"pizza-delivery-api/models"
)

// ErrUnavailable is logged when the provider cannot produce a position.
// Locate recovers from it and never returns it.
var ErrUnavailable = errors.New("geolocation unavailable")

// DefaultTimeout bounds a single lookup.
const DefaultTimeout = 10 * time.Second

// Provider produces the device or address position.
type Provider interface {
	Locate(ctx context.Context) (models.Coordinate, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (models.Coordinate, error)

func (f ProviderFunc) Locate(ctx context.Context) (models.Coordinate, error) { return f(ctx) }

// Fixed is a provider that always answers c.
func Fixed(c models.Coordinate) Provider {
	return ProviderFunc(func(context.Context) (models.Coordinate, error) { return c, nil })
}

// Result is a resolved position. Fallback is set when the provider failed.
type Result struct {
	Coordinate models.Coordinate `json:"coordinates"`
	Fallback   bool              `json:"fallback"`
	Reason     string            `json:"reason,omitempty"`
}

type Locator struct {
	timeout  time.Duration
	fallback models.Coordinate
}

func NewLocator(timeout time.Duration, fallback models.Coordinate) *Locator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Locator{timeout: timeout, fallback: fallback}
}

func (l *Locator) FallbackCoordinate() models.Coordinate { return l.fallback }

type answer struct {
	c   models.Coordinate
	err error
}

// Locate asks p for a position and waits at most the locator timeout.
func (l *Locator) Locate(ctx context.Context, p Provider) Result {
	if p == nil {
		return l.fail(fmt.Errorf("%w: no provider", ErrUnavailable))
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	ch := make(chan answer, 1)
	go func() {
		c, err := p.Locate(ctx)
		ch <- answer{c: c, err: err}
	}()

	select {
	case a := <-ch:
		if a.err != nil {
			return l.fail(fmt.Errorf("%w: %v", ErrUnavailable, a.err))
		}
		if err := geo.ValidCoordinate(a.c); err != nil {
			return l.fail(fmt.Errorf("%w: %v", ErrUnavailable, err))
		}
		return Result{Coordinate: a.c}
	case <-ctx.Done():
		return l.fail(fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err()))
	}
}

func (l *Locator) fail(err error) Result {
	log.Printf("Geolocation error, using fallback (%.4f, %.4f): %v", l.fallback.Lat, l.fallback.Lng, err)
	return Result{Coordinate: l.fallback, Fallback: true, Reason: err.Error()}
}
