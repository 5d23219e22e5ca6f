package location

import (
	"context"
	"errors"
	"math"
	"testing"

	"pizza-delivery-api/geo"
	"pizza-delivery-api/models"
	"pizza-delivery-api/pricing"
	"pizza-delivery-api/repository"
)

var (
	surabayaCenter = models.Coordinate{Lat: -7.2575, Lng: 112.7521}
	jakarta        = models.Coordinate{Lat: -6.2, Lng: 106.85}
)

func newTestService() *Service {
	return NewService(repository.NewMemoryCatalog(repository.DefaultCatalog()), surabayaCenter, 1)
}

type failingCatalog struct {
	repository.CatalogRepository
}

func (failingCatalog) Areas(ctx context.Context) ([]models.CoverageArea, error) {
	return nil, &repository.ProviderError{Op: "list coverage areas", Err: errors.New("timeout")}
}

func TestCheckCoverage(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	res, err := svc.CheckCoverage(ctx, surabayaCenter)
	if err != nil {
		t.Fatalf("CheckCoverage: %v", err)
	}
	if !res.IsWithinCoverage || res.CoverageArea.ID != "surabaya" {
		t.Fatalf("expected surabaya coverage, got %+v", res.Result)
	}
	if res.NearestDistrict.ID != "district_001" || *res.DeliveryFee != 5000 || *res.EstimatedDeliveryTime != 25 {
		t.Errorf("district resolution %+v", res.Result)
	}

	res, err = svc.CheckCoverage(ctx, jakarta)
	if err != nil {
		t.Fatalf("CheckCoverage: %v", err)
	}
	if res.IsWithinCoverage || res.CoverageArea != nil || res.DeliveryFee != nil {
		t.Errorf("jakarta should be outside coverage: %+v", res.Result)
	}

	if _, err := svc.CheckCoverage(ctx, models.Coordinate{Lat: 100}); !errors.Is(err, geo.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestCheckCoverage_ProviderError(t *testing.T) {
	svc := NewService(failingCatalog{}, surabayaCenter, 1)
	_, err := svc.CheckCoverage(context.Background(), surabayaCenter)
	var pe *repository.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestCalculateDeliveryInfo(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	bintaro := models.Coordinate{Lat: -6.2758, Lng: 106.7614}

	tests := []struct {
		name         string
		point        models.Coordinate
		subtotal     int64
		wantFee      int64
		wantMinMet   bool
		wantArea     string
		wantDistrict string
	}{
		{"surabaya below minimum", surabayaCenter, 40000, 5000, false, "surabaya", "district_001"},
		{"surabaya free delivery", surabayaCenter, 150000, 0, true, "surabaya", "district_001"},
		{"bintaro minimum is higher", bintaro, 60000, 8000, false, "tangerang_selatan", "district_004"},
		{"bintaro met", bintaro, 80000, 8000, true, "tangerang_selatan", "district_004"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CalculateDeliveryInfo(ctx, tt.point, tt.subtotal)
			if err != nil {
				t.Fatalf("CalculateDeliveryInfo: %v", err)
			}
			if info.DeliveryFee != tt.wantFee || info.MinimumOrderMet != tt.wantMinMet {
				t.Errorf("fee=%d minMet=%v, want %d/%v", info.DeliveryFee, info.MinimumOrderMet, tt.wantFee, tt.wantMinMet)
			}
			if info.CoverageArea.ID != tt.wantArea || info.District == nil || info.District.ID != tt.wantDistrict {
				t.Errorf("area=%+v district=%+v", info.CoverageArea, info.District)
			}
			if info.FreeDeliveryThreshold != pricing.FreeDeliveryThreshold {
				t.Errorf("threshold = %d", info.FreeDeliveryThreshold)
			}
		})
	}

	_, err := svc.CalculateDeliveryInfo(ctx, jakarta, 150000)
	var oce *pricing.OutsideCoverageError
	if !errors.As(err, &oce) {
		t.Errorf("expected OutsideCoverageError, got %v", err)
	}
}

func TestCoverageAreasAndDistricts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	all, _ := svc.CoverageAreas(ctx, AreaFilter{})
	if len(all) != 2 {
		t.Fatalf("areas = %d", len(all))
	}
	banten, _ := svc.CoverageAreas(ctx, AreaFilter{Province: "banten"})
	if len(banten) != 1 || banten[0].ID != "tangerang_selatan" {
		t.Errorf("province filter = %+v", banten)
	}
	inactive := false
	none, _ := svc.CoverageAreas(ctx, AreaFilter{Active: &inactive})
	if len(none) != 0 {
		t.Errorf("inactive filter returned %d", len(none))
	}

	detail, err := svc.CoverageArea(ctx, "surabaya")
	if err != nil || detail.TotalDistricts != 2 {
		t.Fatalf("CoverageArea = %+v, %v", detail, err)
	}
	if _, err := svc.CoverageArea(ctx, "bandung"); !errors.Is(err, ErrAreaNotFound) {
		t.Errorf("expected ErrAreaNotFound, got %v", err)
	}

	districts, _ := svc.Districts(ctx, "tangerang_selatan", DistrictFilter{Name: "aren"})
	if len(districts) != 1 || districts[0].Name != "Pondok Aren" {
		t.Errorf("district filter = %+v", districts)
	}
}

func TestGeocode(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	res, err := svc.Geocode(ctx, "basuki rahmat")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if res.IsApproximate || res.Confidence != 0.95 || res.Components.PostalCode != "60271" {
		t.Errorf("known address result %+v", res)
	}

	res, err = svc.Geocode(ctx, "Jl. Tidak Dikenal 1")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if !res.IsApproximate || res.Confidence != 0.7 {
		t.Errorf("unknown address result %+v", res)
	}
	if math.Abs(res.Coordinates.Lat-surabayaCenter.Lat) > 0.05 || math.Abs(res.Coordinates.Lng-surabayaCenter.Lng) > 0.05 {
		t.Errorf("approximate coordinate %v too far from fallback", res.Coordinates)
	}
	if res.Components.City != "Surabaya" {
		t.Errorf("approximate city = %q", res.Components.City)
	}

	if _, err := svc.Geocode(ctx, "   "); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestReverseGeocode(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	near := geo.Destination(models.Coordinate{Lat: -7.2504, Lng: 112.7688}, 90, 0.3)
	res, err := svc.ReverseGeocode(ctx, near)
	if err != nil {
		t.Fatalf("ReverseGeocode: %v", err)
	}
	if res.IsApproximate || res.Components.StreetAddress != "Jl. Basuki Rahmat No. 456, Surabaya" {
		t.Errorf("expected basuki rahmat, got %+v", res)
	}
	if res.DistanceKm == nil || math.Abs(*res.DistanceKm-0.3) > 0.01 {
		t.Errorf("distance = %v", res.DistanceKm)
	}

	far := geo.Destination(surabayaCenter, 200, 8)
	res, _ = svc.ReverseGeocode(ctx, far)
	if !res.IsApproximate || res.Confidence != 0.6 || res.Components.City != "Surabaya" {
		t.Errorf("expected approximate surabaya address, got %+v", res)
	}
}

func TestSearch(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	results, err := svc.Search(ctx, "surabaya", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 2 addresses and 2 districts, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Relevance > results[i-1].Relevance {
			t.Errorf("results not sorted by relevance: %+v", results)
		}
	}

	results, _ = svc.Search(ctx, "Gubeng", 1)
	if len(results) != 1 || results[0].Type != "district" || results[0].Relevance != 1.0 {
		t.Errorf("exact district match = %+v", results)
	}
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		query, text string
		want        float64
	}{
		{"gubeng", "Gubeng", 1.0},
		{"jl. diponegoro", "Jl. Diponegoro No. 123", 0.9},
		{"diponegoro", "Jl. Diponegoro No. 123", 0.7},
		{"diponegoro bintaro", "Jl. Diponegoro No. 123", 0.25},
		{"xyz", "Gubeng", 0},
	}
	for _, tt := range tests {
		if got := Relevance(tt.query, tt.text); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Relevance(%q, %q) = %v, want %v", tt.query, tt.text, got, tt.want)
		}
	}
}

func TestAreasGeoJSON(t *testing.T) {
	fc, err := newTestService().AreasGeoJSON(context.Background())
	if err != nil {
		t.Fatalf("AreasGeoJSON: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("collection %+v", fc)
	}
	ring := fc.Features[0].Geometry.Coordinates[0]
	if ring[0] != [2]float64{112.6094, -7.1554} {
		t.Errorf("first position = %v, want [lng lat]", ring[0])
	}
	if ring[0] != ring[len(ring)-1] {
		t.Error("ring not closed")
	}
}

func TestAddressProvider(t *testing.T) {
	svc := newTestService()
	c, err := svc.AddressProvider("Bintaro Raya").Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if c.Lat != -6.2758 || c.Lng != 106.7614 {
		t.Errorf("coordinate = %v", c)
	}
}
