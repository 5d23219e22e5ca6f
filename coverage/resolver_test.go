package coverage

import (
	"testing"

	"pizza-delivery-api/models"
)

func rect(minLat, minLng, maxLat, maxLng float64) []models.Coordinate {
	return []models.Coordinate{
		{Lat: maxLat, Lng: minLng},
		{Lat: maxLat, Lng: maxLng},
		{Lat: minLat, Lng: maxLng},
		{Lat: minLat, Lng: minLng},
	}
}

func testCatalog() ([]models.CoverageArea, []models.District) {
	areas := []models.CoverageArea{
		{
			ID:                    "surabaya",
			Name:                  "Surabaya",
			Active:                true,
			Polygon:               rect(-7.3549, 112.6094, -7.1554, 112.8375),
			Center:                models.Coordinate{Lat: -7.2575, Lng: 112.7521},
			DeliveryFee:           5000,
			MinimumOrder:          50000,
			EstimatedDeliveryTime: 30,
		},
		{
			ID:                    "tangerang_selatan",
			Name:                  "Tangerang Selatan",
			Active:                true,
			Polygon:               rect(-6.3676, 106.6924, -6.1840, 106.8304),
			Center:                models.Coordinate{Lat: -6.2758, Lng: 106.7614},
			DeliveryFee:           8000,
			MinimumOrder:          75000,
			EstimatedDeliveryTime: 35,
		},
	}
	districts := []models.District{
		{ID: "district_001", Name: "Gubeng", CoverageAreaID: "surabaya", Active: true,
			Center: models.Coordinate{Lat: -7.2652, Lng: 112.7519}, DeliveryFee: 5000, EstimatedDeliveryTime: 25},
		{ID: "district_002", Name: "Wonokromo", CoverageAreaID: "surabaya", Active: true,
			Center: models.Coordinate{Lat: -7.2951, Lng: 112.7214}, DeliveryFee: 5000, EstimatedDeliveryTime: 30},
		{ID: "district_003", Name: "Pondok Aren", CoverageAreaID: "tangerang_selatan", Active: true,
			Center: models.Coordinate{Lat: -6.2654, Lng: 106.6990}, DeliveryFee: 8000, EstimatedDeliveryTime: 30},
		{ID: "district_004", Name: "Bintaro", CoverageAreaID: "tangerang_selatan", Active: true,
			Center: models.Coordinate{Lat: -6.2758, Lng: 106.7614}, DeliveryFee: 8000, EstimatedDeliveryTime: 35},
	}
	return areas, districts
}

func TestResolve_AreaCenter(t *testing.T) {
	areas, districts := testCatalog()
	for _, area := range areas {
		res := Resolve(area.Center, areas, districts)
		if !res.IsWithinCoverage {
			t.Fatalf("center of %s not covered", area.ID)
		}
		if res.CoverageArea.ID != area.ID {
			t.Errorf("center of %s resolved to %s", area.ID, res.CoverageArea.ID)
		}
	}
}

func TestResolve_NearestDistrict(t *testing.T) {
	areas, districts := testCatalog()
	tests := []struct {
		name         string
		point        models.Coordinate
		wantDistrict string
		wantETA      int
		wantFee      int64
	}{
		{"near gubeng", models.Coordinate{Lat: -7.2600, Lng: 112.7520}, "district_001", 25, 5000},
		{"near wonokromo", models.Coordinate{Lat: -7.3000, Lng: 112.7200}, "district_002", 30, 5000},
		{"bintaro center", models.Coordinate{Lat: -6.2758, Lng: 106.7614}, "district_004", 35, 8000},
		{"pondok aren", models.Coordinate{Lat: -6.2650, Lng: 106.7000}, "district_003", 30, 8000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.point, areas, districts)
			if !res.IsWithinCoverage || res.NearestDistrict == nil {
				t.Fatalf("expected coverage with district, got %+v", res)
			}
			if res.NearestDistrict.ID != tt.wantDistrict {
				t.Errorf("district = %s, want %s", res.NearestDistrict.ID, tt.wantDistrict)
			}
			if *res.EstimatedDeliveryTime != tt.wantETA {
				t.Errorf("eta = %d, want %d", *res.EstimatedDeliveryTime, tt.wantETA)
			}
			if *res.DeliveryFee != tt.wantFee {
				t.Errorf("fee = %d, want %d", *res.DeliveryFee, tt.wantFee)
			}
		})
	}
}

func TestResolve_OutsideCoverage(t *testing.T) {
	areas, districts := testCatalog()
	jakartaNorth := models.Coordinate{Lat: -6.1000, Lng: 106.8800}

	res := Resolve(jakartaNorth, areas, districts)
	if res.IsWithinCoverage {
		t.Fatal("expected point to be outside coverage")
	}
	if res.CoverageArea != nil || res.NearestDistrict != nil || res.DeliveryFee != nil || res.EstimatedDeliveryTime != nil {
		t.Errorf("expected all fields nil, got %+v", res)
	}
}

func TestResolve_InactiveAreaSkipped(t *testing.T) {
	areas, districts := testCatalog()
	areas[0].Active = false

	res := Resolve(areas[0].Center, areas, districts)
	if res.IsWithinCoverage {
		t.Errorf("inactive area should not cover its center, got %+v", res.CoverageArea)
	}
}

func TestResolve_FallsBackToAreaValues(t *testing.T) {
	areas, districts := testCatalog()
	for i := range districts {
		if districts[i].CoverageAreaID == "surabaya" {
			districts[i].Active = false
		}
	}

	res := Resolve(areas[0].Center, areas, districts)
	if res.NearestDistrict != nil {
		t.Fatalf("expected no district, got %s", res.NearestDistrict.ID)
	}
	if *res.DeliveryFee != 5000 || *res.EstimatedDeliveryTime != 30 {
		t.Errorf("expected area fee/eta 5000/30, got %d/%d", *res.DeliveryFee, *res.EstimatedDeliveryTime)
	}
}

func TestResolve_TieGoesToFirstDistrict(t *testing.T) {
	areas, _ := testCatalog()
	center := areas[0].Center
	districts := []models.District{
		{ID: "first", CoverageAreaID: "surabaya", Active: true, Center: center, DeliveryFee: 1000, EstimatedDeliveryTime: 10},
		{ID: "second", CoverageAreaID: "surabaya", Active: true, Center: center, DeliveryFee: 2000, EstimatedDeliveryTime: 20},
	}

	res := Resolve(center, areas, districts)
	if res.NearestDistrict == nil || res.NearestDistrict.ID != "first" {
		t.Errorf("expected tie to resolve to first district, got %+v", res.NearestDistrict)
	}
}

func TestResolve_FirstMatchingAreaWins(t *testing.T) {
	areas, districts := testCatalog()
	overlap := areas[0]
	overlap.ID = "surabaya_overlay"
	overlap.DeliveryFee = 1
	areas = append(areas, overlap)

	res := Resolve(areas[0].Center, areas, districts)
	if res.CoverageArea.ID != "surabaya" {
		t.Errorf("expected catalog order to win, got %s", res.CoverageArea.ID)
	}
}
