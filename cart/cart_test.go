package cart

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"pizza-delivery-api/models"
	"pizza-delivery-api/promo"
	"pizza-delivery-api/repository"
)

var wednesday = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

func newTestService() *Service {
	catalog := repository.NewMemoryCatalog(repository.DefaultCatalog())
	promos := promo.NewService(catalog, repository.NewMemoryUsage()).WithClock(func() time.Time { return wednesday })
	return NewService(NewMemoryStore(time.Hour), catalog, promos)
}

func TestService_AddMergesAndTotals(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Add(ctx, 1, "pizza_margherita", 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(ctx, 1, "bev_cola", 2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	v, err := svc.Add(ctx, 1, "pizza_margherita", 1)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if len(v.Items) != 2 || v.Items[0].Quantity != 2 {
		t.Fatalf("items = %+v", v.Items)
	}
	if v.Subtotal != 154000 || v.FinalTotal != 154000 || v.TotalItems != 4 {
		t.Errorf("totals subtotal=%d final=%d items=%d", v.Subtotal, v.FinalTotal, v.TotalItems)
	}
	if len(v.Categories) != 2 || v.Categories[0] != "Classic Pizza" || v.Categories[1] != "Soft Drink" {
		t.Errorf("categories = %v", v.Categories)
	}
}

func TestService_AddErrors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name      string
		productID string
		quantity  int
		want      error
	}{
		{"unknown product", "pizza_hawaiian", 1, ErrProductNotFound},
		{"zero quantity", "pizza_margherita", 0, ErrInvalidQuantity},
		{"negative quantity", "pizza_margherita", -2, ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Add(ctx, 1, tt.productID, tt.quantity); !errors.Is(err, tt.want) {
				t.Errorf("Add() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestService_UpdateQuantityAndRemove(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.Add(ctx, 1, "pizza_pepperoni", 1)
	svc.Add(ctx, 1, "side_garlic_bread", 1)

	v, err := svc.UpdateQuantity(ctx, 1, "pizza_pepperoni", 3)
	if err != nil || v.Subtotal != 250000 {
		t.Fatalf("UpdateQuantity = %+v, %v", v, err)
	}
	v, err = svc.UpdateQuantity(ctx, 1, "side_garlic_bread", 0)
	if err != nil || len(v.Items) != 1 {
		t.Fatalf("quantity 0 should remove the item: %+v, %v", v, err)
	}
	if _, err := svc.Remove(ctx, 1, "side_garlic_bread"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if _, err := svc.UpdateQuantity(ctx, 1, "bev_cola", 2); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	if err := svc.Clear(ctx, 1); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	v, _ = svc.Get(ctx, 1)
	if !v.IsEmpty() || v.Subtotal != 0 {
		t.Errorf("cart not cleared: %+v", v)
	}
}

func TestService_ApplyPromo(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, _, err := svc.ApplyPromo(ctx, 1, "PIZZA30"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	svc.Add(ctx, 1, "bev_iced_tea", 1)
	if _, _, err := svc.ApplyPromo(ctx, 1, "PIZZA30"); !errors.Is(err, promo.ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}

	svc.Add(ctx, 1, "pizza_margherita", 2)
	v, val, err := svc.ApplyPromo(ctx, 1, "pizza30")
	if err != nil {
		t.Fatalf("ApplyPromo: %v", err)
	}
	// 30% of 145000, under the 50000 cap
	if val.Discount.Amount != 43500 || v.Discount != 43500 || v.FinalTotal != 101500 {
		t.Errorf("discount=%d view=%+v", val.Discount.Amount, v)
	}
	if v.AppliedPromo == nil || v.AppliedPromo.Code != "PIZZA30" {
		t.Errorf("applied promo = %+v", v.AppliedPromo)
	}
}

func TestService_MutationInvalidatesPromo(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.Add(ctx, 1, "pizza_truffle", 1)
	if _, _, err := svc.ApplyPromo(ctx, 1, "FLAT15K"); err != nil {
		t.Fatalf("ApplyPromo: %v", err)
	}

	v, err := svc.Add(ctx, 1, "bev_cola", 1)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !v.PromoInvalidated || v.AppliedPromo != nil || v.Discount != 0 {
		t.Errorf("promo should be dropped after mutation: %+v", v)
	}

	v, _ = svc.Add(ctx, 1, "bev_cola", 1)
	if v.PromoInvalidated {
		t.Error("nothing to invalidate on the second mutation")
	}
}

func TestService_RemovePromo(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.Add(ctx, 1, "pizza_truffle", 1)
	svc.ApplyPromo(ctx, 1, "FLAT15K")

	v, err := svc.RemovePromo(ctx, 1)
	if err != nil {
		t.Fatalf("RemovePromo: %v", err)
	}
	if v.AppliedPromo != nil || v.FinalTotal != 120000 || v.PromoInvalidated {
		t.Errorf("view = %+v", v)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	now := wednesday
	store := NewMemoryStore(24 * time.Hour).WithClock(func() time.Time { return now })
	ctx := context.Background()

	c := &models.Cart{UserID: 7, Items: []models.CartItem{{ID: "bev_cola", Price: 12000, Quantity: 1}}}
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c.Items[0].Quantity = 9

	now = now.Add(23 * time.Hour)
	got, _ := store.Get(ctx, 7)
	if len(got.Items) != 1 || got.Items[0].Quantity != 1 {
		t.Fatalf("stored cart = %+v", got)
	}

	now = now.Add(time.Hour)
	got, _ = store.Get(ctx, 7)
	if !got.IsEmpty() || got.UserID != 7 {
		t.Errorf("expired cart should read as empty, got %+v", got)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()
	store := NewRedisStore(client, time.Minute)

	const userID = 424242
	defer store.Delete(ctx, userID)

	got, err := store.Get(ctx, userID)
	if err != nil || !got.IsEmpty() {
		t.Fatalf("missing cart = %+v, %v", got, err)
	}
	c := &models.Cart{UserID: userID, Items: []models.CartItem{{ID: "bev_cola", Price: 12000, Quantity: 2}}}
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = store.Get(ctx, userID)
	if err != nil || got.Subtotal() != 24000 {
		t.Fatalf("round trip = %+v, %v", got, err)
	}
	ttl, err := client.TTL(ctx, key(userID)).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %s, %v", ttl, err)
	}
}
