package repository

import (
	"time"

	"pizza-delivery-api/models"
)

// Catalog is the full static data set the service starts with.
type Catalog struct {
	Areas     []models.CoverageArea
	Districts []models.District
	Addresses []models.Address
	Products  []models.Product
	Promos    []models.PromoCode
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}

// DefaultCatalog returns the Surabaya / Tangerang Selatan launch catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Areas: []models.CoverageArea{
			{
				ID: "surabaya", Name: "Surabaya", City: "Surabaya", Province: "Jawa Timur",
				Timezone: "Asia/Jakarta", Currency: "IDR", Active: true,
				Polygon: []models.Coordinate{
					{Lat: -7.1554, Lng: 112.6094},
					{Lat: -7.1554, Lng: 112.8375},
					{Lat: -7.3549, Lng: 112.8375},
					{Lat: -7.3549, Lng: 112.6094},
					{Lat: -7.1554, Lng: 112.6094},
				},
				Center:       models.Coordinate{Lat: -7.2575, Lng: 112.7521},
				DeliveryFee:  5000,
				MinimumOrder: 50000, EstimatedDeliveryTime: 30, MaxDeliveryRadius: 15,
				Position: 1,
			},
			{
				ID: "tangerang_selatan", Name: "Tangerang Selatan", City: "Tangerang Selatan", Province: "Banten",
				Timezone: "Asia/Jakarta", Currency: "IDR", Active: true,
				Polygon: []models.Coordinate{
					{Lat: -6.1840, Lng: 106.6924},
					{Lat: -6.1840, Lng: 106.8304},
					{Lat: -6.3676, Lng: 106.8304},
					{Lat: -6.3676, Lng: 106.6924},
					{Lat: -6.1840, Lng: 106.6924},
				},
				Center:       models.Coordinate{Lat: -6.2758, Lng: 106.7614},
				DeliveryFee:  8000,
				MinimumOrder: 75000, EstimatedDeliveryTime: 35, MaxDeliveryRadius: 20,
				Position: 2,
			},
		},
		Districts: []models.District{
			{ID: "district_001", Name: "Gubeng", City: "Surabaya", CoverageAreaID: "surabaya", Active: true,
				Center: models.Coordinate{Lat: -7.2652, Lng: 112.7519}, DeliveryFee: 5000, EstimatedDeliveryTime: 25, Position: 1},
			{ID: "district_002", Name: "Wonokromo", City: "Surabaya", CoverageAreaID: "surabaya", Active: true,
				Center: models.Coordinate{Lat: -7.2951, Lng: 112.7214}, DeliveryFee: 5000, EstimatedDeliveryTime: 30, Position: 2},
			{ID: "district_003", Name: "Pondok Aren", City: "Tangerang Selatan", CoverageAreaID: "tangerang_selatan", Active: true,
				Center: models.Coordinate{Lat: -6.2654, Lng: 106.6990}, DeliveryFee: 8000, EstimatedDeliveryTime: 30, Position: 3},
			{ID: "district_004", Name: "Bintaro", City: "Tangerang Selatan", CoverageAreaID: "tangerang_selatan", Active: true,
				Center: models.Coordinate{Lat: -6.2758, Lng: 106.7614}, DeliveryFee: 8000, EstimatedDeliveryTime: 35, Position: 4},
		},
		Addresses: []models.Address{
			{ID: "addr_001", Address: "Jl. Diponegoro No. 123, Surabaya",
				Formatted: "Jl. Diponegoro No. 123, Surabaya, Jawa Timur 60245",
				City:      "Surabaya", Province: "Jawa Timur", PostalCode: "60245", Country: "Indonesia", Type: "street_address",
				Coordinates: models.Coordinate{Lat: -7.2575, Lng: 112.7521}},
			{ID: "addr_002", Address: "Jl. Basuki Rahmat No. 456, Surabaya",
				Formatted: "Jl. Basuki Rahmat No. 456, Surabaya, Jawa Timur 60271",
				City:      "Surabaya", Province: "Jawa Timur", PostalCode: "60271", Country: "Indonesia", Type: "street_address",
				Coordinates: models.Coordinate{Lat: -7.2504, Lng: 112.7688}},
			{ID: "addr_003", Address: "Jl. Bintaro Raya No. 789, Tangerang Selatan",
				Formatted: "Jl. Bintaro Raya No. 789, Tangerang Selatan, Banten 15221",
				City:      "Tangerang Selatan", Province: "Banten", PostalCode: "15221", Country: "Indonesia", Type: "street_address",
				Coordinates: models.Coordinate{Lat: -6.2758, Lng: 106.7614}},
		},
		Products: []models.Product{
			{ID: "pizza_margherita", Name: "Margherita", Description: "Tomato, mozzarella, basil",
				Price: 65000, Category: "Classic Pizza", Available: true, Popular: true, Position: 1},
			{ID: "pizza_pepperoni", Name: "Pepperoni", Description: "Double pepperoni, mozzarella",
				Price: 75000, Category: "Classic Pizza", Available: true, Popular: true, Position: 2},
			{ID: "pizza_bbq_chicken", Name: "BBQ Chicken", Description: "Smoked chicken, BBQ sauce, red onion",
				Price: 95000, Category: "Premium Pizza", Available: true, Position: 3},
			{ID: "pizza_truffle", Name: "Truffle Mushroom", Description: "Mixed mushrooms, truffle oil",
				Price: 120000, Category: "Specialty Pizza", Available: true, Position: 4},
			{ID: "bev_iced_tea", Name: "Iced Lemon Tea", Price: 15000, Category: "Beverage", Available: true, Position: 5},
			{ID: "bev_cola", Name: "Cola", Price: 12000, Category: "Soft Drink", Available: true, Position: 6},
			{ID: "side_garlic_bread", Name: "Garlic Bread", Price: 25000, Category: "Sides", Available: true, Position: 7},
		},
		Promos: []models.PromoCode{
			{
				ID: "promo_001", Code: "WELCOME20", Title: "Welcome Discount",
				Description: "Get 20% off on your first order",
				Type:        models.DiscountPercentage, Value: 20,
				MinOrderAmount: 50000, MaxDiscountAmount: int64Ptr(25000), Active: true,
				ValidFrom: day(2025, time.January, 1), ValidUntil: endOfDay(2027, time.December, 31),
				Restrictions: models.UserRestrictions{FirstOrderOnly: true, MaxUsagePerUser: intPtr(1)},
				Featured:     true, Position: 1,
			},
			{
				ID: "promo_002", Code: "PIZZA30", Title: "Pizza Lover Special",
				Description: "30% off on all pizza orders above Rp75.000",
				Type:        models.DiscountPercentage, Value: 30,
				MinOrderAmount: 75000, MaxDiscountAmount: int64Ptr(50000), Active: true,
				ValidFrom: day(2025, time.January, 1), ValidUntil: endOfDay(2027, time.September, 30),
				ApplicableCategories: []string{"Classic Pizza", "Premium Pizza", "Specialty Pizza"},
				Restrictions:         models.UserRestrictions{MaxUsagePerUser: intPtr(3)},
				Featured:             true, Position: 2,
			},
			{
				ID: "promo_003", Code: "FLAT15K", Title: "Flat Discount",
				Description: "Flat Rp15.000 off on orders above Rp100.000",
				Type:        models.DiscountFixed, Value: 15000,
				MinOrderAmount: 100000, MaxDiscountAmount: int64Ptr(15000), Active: true,
				ValidFrom: day(2025, time.January, 1), ValidUntil: endOfDay(2027, time.December, 29),
				Restrictions: models.UserRestrictions{MaxUsagePerUser: intPtr(2)},
				Featured:     true, Position: 3,
			},
			{
				ID: "promo_004", Code: "WEEKEND50", Title: "Weekend Special",
				Description: "50% off on weekend orders (Saturday & Sunday)",
				Type:        models.DiscountPercentage, Value: 50,
				MinOrderAmount: 60000, MaxDiscountAmount: int64Ptr(40000), Active: true,
				ValidFrom: day(2025, time.January, 1), ValidUntil: endOfDay(2027, time.December, 31),
				Restrictions: models.UserRestrictions{WeekendOnly: true},
				Featured:     true, Position: 4,
			},
			{
				ID: "promo_005", Code: "COMBO25", Title: "Combo Deal",
				Description: "25% off when you order pizza + beverage",
				Type:        models.DiscountPercentage, Value: 25,
				MinOrderAmount: 70000, MaxDiscountAmount: int64Ptr(30000), Active: true,
				ValidFrom: day(2025, time.January, 1), ValidUntil: endOfDay(2027, time.June, 30),
				Restrictions: models.UserRestrictions{MaxUsagePerUser: intPtr(5), RequiresBothPizzaAndBeverage: true},
				Position:     5,
			},
			{
				ID: "promo_006", Code: "STUDENT15", Title: "Student Discount",
				Description: "15% off for students (valid with student ID)",
				Type:        models.DiscountPercentage, Value: 15,
				MinOrderAmount: 40000, MaxDiscountAmount: int64Ptr(20000), Active: true,
				ValidFrom: day(2024, time.January, 1), ValidUntil: endOfDay(2024, time.December, 31),
				Position: 6,
			},
		},
	}
}
