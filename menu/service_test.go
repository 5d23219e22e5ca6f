package menu

import (
	"context"
	"errors"
	"testing"

	"pizza-delivery-api/models"
	"pizza-delivery-api/repository"
)

func newTestService() *Service {
	cat := repository.DefaultCatalog()
	cat.Products = append(cat.Products, models.Product{
		ID: "pizza_seasonal", Name: "Seasonal Durian", Description: "Only in durian season",
		Price: 99000, Category: "Specialty Pizza", Available: false, Position: 8,
	})
	return NewService(repository.NewMemoryCatalog(cat))
}

func TestList(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	all, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all.Count != 7 {
		t.Errorf("unavailable product listed: count = %d", all.Count)
	}
	if len(all.Categories) != 6 || all.Categories[0] != "Classic Pizza" {
		t.Errorf("categories = %v", all.Categories)
	}

	classic, _ := svc.List(ctx, Filter{Category: "classic pizza"})
	if classic.Count != 2 || len(classic.Categories) != 6 {
		t.Errorf("classic = %d items, %d categories", classic.Count, len(classic.Categories))
	}
	popular, _ := svc.List(ctx, Filter{PopularOnly: true})
	if popular.Count != 2 {
		t.Errorf("popular = %d", popular.Count)
	}
}

func TestCategories(t *testing.T) {
	got, err := newTestService().Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	want := []Category{
		{"Classic Pizza", 2}, {"Premium Pizza", 1}, {"Specialty Pizza", 1},
		{"Beverage", 1}, {"Soft Drink", 1}, {"Sides", 1},
	}
	if len(got) != len(want) {
		t.Fatalf("categories = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("categories[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSearch(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		query    string
		category string
		want     []string
	}{
		{"mozzarella", "", []string{"pizza_margherita", "pizza_pepperoni"}},
		{"  PEPPERONI ", "", []string{"pizza_pepperoni"}},
		{"pizza", "Premium Pizza", []string{"pizza_bbq_chicken"}},
		{"drink", "", []string{"bev_cola"}},
		{"durian", "", nil},
		{"anchovy", "", nil},
	}
	for _, tt := range tests {
		res, err := svc.Search(ctx, tt.query, tt.category)
		if err != nil {
			t.Fatalf("Search(%q): %v", tt.query, err)
		}
		if res.Total != len(tt.want) {
			t.Errorf("Search(%q, %q) = %d results, want %v", tt.query, tt.category, res.Total, tt.want)
			continue
		}
		for i, id := range tt.want {
			if res.Results[i].ID != id {
				t.Errorf("Search(%q)[%d] = %s, want %s", tt.query, i, res.Results[i].ID, id)
			}
		}
	}

	if _, err := svc.Search(ctx, "   ", ""); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	res, err := newTestService().CheckAvailability(context.Background(), []Item{
		{ProductID: "pizza_margherita", Quantity: 2},
		{ProductID: "pizza_seasonal", Quantity: 1},
		{ProductID: "pizza_hawaiian"},
	})
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if res.AllAvailable || res.UnavailableCount != 2 || len(res.Items) != 3 {
		t.Fatalf("availability = %+v", res)
	}
	if !res.Items[0].Available || res.Items[0].Requested != 2 || res.Items[0].Name != "Margherita" {
		t.Errorf("margherita = %+v", res.Items[0])
	}
	if res.Items[1].Reason != ReasonUnavailable || res.Items[2].Reason != ReasonNotFound || res.Items[2].Requested != 1 {
		t.Errorf("unavailable items = %+v", res.Items[1:])
	}

	ok, _ := newTestService().CheckAvailability(context.Background(), []Item{{ProductID: "bev_cola", Quantity: 3}})
	if !ok.AllAvailable {
		t.Errorf("cola should be available: %+v", ok)
	}
}
