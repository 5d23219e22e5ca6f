// Package location answers coverage, delivery-pricing and address lookups
// against the live catalog.
package location

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"pizza-delivery-api/coverage"
	"pizza-delivery-api/geo"
	"pizza-delivery-api/models"
	"pizza-delivery-api/pricing"
	"pizza-delivery-api/repository"
)

var (
	ErrAreaNotFound = errors.New("coverage area not found")
	ErrEmptyQuery   = errors.New("query must not be empty")
)

const (
	// ReverseMatchKm is how close a known address must be to answer a
	// reverse lookup.
	ReverseMatchKm = 1.0
	// approximateJitterDeg spreads unknown addresses around the fallback.
	approximateJitterDeg = 0.1
	defaultSearchLimit   = 10
)

type Service struct {
	catalog  repository.CatalogRepository
	fallback models.Coordinate
	now      func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService uses fallback as the anchor for addresses it cannot resolve.
// A zero seed seeds from the clock.
func NewService(catalog repository.CatalogRepository, fallback models.Coordinate, seed int64) *Service {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		catalog:  catalog,
		fallback: fallback,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (s *Service) coverageData(ctx context.Context) ([]models.CoverageArea, []models.District, error) {
	areas, err := s.catalog.Areas(ctx)
	if err != nil {
		return nil, nil, err
	}
	districts, err := s.catalog.Districts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return areas, districts, nil
}

type CoverageCheck struct {
	coverage.Result
	Location  models.Coordinate `json:"location"`
	CheckedAt time.Time         `json:"checked_at"`
}

// CheckCoverage resolves the area and district serving point.
func (s *Service) CheckCoverage(ctx context.Context, point models.Coordinate) (*CoverageCheck, error) {
	if err := geo.ValidCoordinate(point); err != nil {
		return nil, err
	}
	areas, districts, err := s.coverageData(ctx)
	if err != nil {
		return nil, err
	}
	return &CoverageCheck{
		Result:    coverage.Resolve(point, areas, districts),
		Location:  point,
		CheckedAt: s.now(),
	}, nil
}

// Quote prices delivery of subtotal to point. It returns
// *pricing.OutsideCoverageError when nothing serves the point.
func (s *Service) Quote(ctx context.Context, point models.Coordinate, subtotal int64) (*pricing.Quote, error) {
	if err := geo.ValidCoordinate(point); err != nil {
		return nil, err
	}
	areas, districts, err := s.coverageData(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.Calculate(point, subtotal, areas, districts)
}

type AreaSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Province string `json:"province"`
}

type DistrictSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DeliveryInfo struct {
	*pricing.Quote
	Location     models.Coordinate `json:"location"`
	CoverageArea AreaSummary       `json:"coverage_area"`
	District     *DistrictSummary  `json:"district"`
}

// CalculateDeliveryInfo is Quote plus the area and district it was priced in.
func (s *Service) CalculateDeliveryInfo(ctx context.Context, point models.Coordinate, subtotal int64) (*DeliveryInfo, error) {
	q, err := s.Quote(ctx, point, subtotal)
	if err != nil {
		return nil, err
	}
	info := &DeliveryInfo{
		Quote:    q,
		Location: point,
		CoverageArea: AreaSummary{
			ID:       q.Area.ID,
			Name:     q.Area.Name,
			City:     q.Area.City,
			Province: q.Area.Province,
		},
	}
	if q.District != nil {
		info.District = &DistrictSummary{ID: q.District.ID, Name: q.District.Name}
	}
	return info, nil
}

// AreaFilter narrows CoverageAreas. City and Province match as
// case-insensitive substrings; a nil Active keeps both states.
type AreaFilter struct {
	Active   *bool
	City     string
	Province string
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (s *Service) CoverageAreas(ctx context.Context, f AreaFilter) ([]models.CoverageArea, error) {
	areas, err := s.catalog.Areas(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.CoverageArea, 0, len(areas))
	for _, a := range areas {
		if f.Active != nil && a.Active != *f.Active {
			continue
		}
		if f.City != "" && !containsFold(a.City, f.City) {
			continue
		}
		if f.Province != "" && !containsFold(a.Province, f.Province) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type AreaDetail struct {
	CoverageArea   models.CoverageArea `json:"coverage_area"`
	Districts      []models.District   `json:"districts"`
	TotalDistricts int                 `json:"total_districts"`
}

func (s *Service) CoverageArea(ctx context.Context, id string) (*AreaDetail, error) {
	areas, districts, err := s.coverageData(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range areas {
		if a.ID != id {
			continue
		}
		d := &AreaDetail{CoverageArea: a, Districts: []models.District{}}
		for _, dist := range districts {
			if dist.CoverageAreaID == id {
				d.Districts = append(d.Districts, dist)
			}
		}
		d.TotalDistricts = len(d.Districts)
		return d, nil
	}
	return nil, ErrAreaNotFound
}

type DistrictFilter struct {
	Active *bool
	Name   string
}

func (s *Service) Districts(ctx context.Context, areaID string, f DistrictFilter) ([]models.District, error) {
	districts, err := s.catalog.Districts(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.District{}
	for _, d := range districts {
		if d.CoverageAreaID != areaID {
			continue
		}
		if f.Active != nil && d.Active != *f.Active {
			continue
		}
		if f.Name != "" && !containsFold(d.Name, f.Name) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

type AddressComponents struct {
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

type GeocodeResult struct {
	Coordinates      models.Coordinate `json:"coordinates"`
	FormattedAddress string            `json:"formatted_address"`
	Components       AddressComponents `json:"address_components"`
	Confidence       float64           `json:"confidence"`
	DistanceKm       *float64          `json:"distance_km,omitempty"`
	IsApproximate    bool              `json:"is_approximate"`
}

func components(a models.Address) AddressComponents {
	return AddressComponents{
		StreetAddress: a.Address,
		City:          a.City,
		Province:      a.Province,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
	}
}

// Geocode matches address against the known addresses. Unknown addresses
// get an approximate coordinate near the fallback point.
func (s *Service) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyQuery
	}
	known, err := s.catalog.Addresses(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range known {
		if containsFold(a.Address, address) || containsFold(a.Formatted, address) {
			return &GeocodeResult{
				Coordinates:      a.Coordinates,
				FormattedAddress: a.Formatted,
				Components:       components(a),
				Confidence:       0.95,
			}, nil
		}
	}

	s.mu.Lock()
	c := models.Coordinate{
		Lat: s.fallback.Lat + (s.rng.Float64()-0.5)*approximateJitterDeg,
		Lng: s.fallback.Lng + (s.rng.Float64()-0.5)*approximateJitterDeg,
	}
	s.mu.Unlock()

	res := &GeocodeResult{
		Coordinates:      c,
		FormattedAddress: address,
		Components:       AddressComponents{StreetAddress: address, Country: "Indonesia"},
		Confidence:       0.7,
		IsApproximate:    true,
	}
	if area := s.areaFor(ctx, c); area != nil {
		res.Components.City, res.Components.Province = area.City, area.Province
	}
	return res, nil
}

// ReverseGeocode answers the nearest known address within ReverseMatchKm,
// otherwise an approximate address in the serving area.
func (s *Service) ReverseGeocode(ctx context.Context, point models.Coordinate) (*GeocodeResult, error) {
	if err := geo.ValidCoordinate(point); err != nil {
		return nil, err
	}
	known, err := s.catalog.Addresses(ctx)
	if err != nil {
		return nil, err
	}

	var (
		nearest *models.Address
		minKm   float64
	)
	for i := range known {
		d := geo.HaversineKm(point, known[i].Coordinates)
		if nearest == nil || d < minKm {
			nearest, minKm = &known[i], d
		}
	}
	if nearest != nil && minKm < ReverseMatchKm {
		dist := minKm
		return &GeocodeResult{
			Coordinates:      point,
			FormattedAddress: nearest.Formatted,
			Components:       components(*nearest),
			Confidence:       0.9,
			DistanceKm:       &dist,
		}, nil
	}

	res := &GeocodeResult{
		Coordinates:      point,
		FormattedAddress: fmt.Sprintf("Unnamed Road (%.5f, %.5f)", point.Lat, point.Lng),
		Components:       AddressComponents{StreetAddress: "Unnamed Road", Country: "Indonesia"},
		Confidence:       0.6,
		IsApproximate:    true,
	}
	if area := s.areaFor(ctx, point); area != nil {
		res.Components.City, res.Components.Province = area.City, area.Province
		res.FormattedAddress = fmt.Sprintf("Unnamed Road, %s, %s", area.City, area.Province)
	}
	return res, nil
}

func (s *Service) areaFor(ctx context.Context, point models.Coordinate) *models.CoverageArea {
	areas, districts, err := s.coverageData(ctx)
	if err != nil {
		return nil
	}
	return coverage.Resolve(point, areas, districts).CoverageArea
}

type SearchResult struct {
	Type        string            `json:"type"`
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Address     string            `json:"address"`
	Coordinates models.Coordinate `json:"coordinates"`
	City        string            `json:"city"`
	Province    string            `json:"province,omitempty"`
	Relevance   float64           `json:"relevance"`
}

// Search looks through addresses and districts, best match first.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	addresses, err := s.catalog.Addresses(ctx)
	if err != nil {
		return nil, err
	}
	districts, err := s.catalog.Districts(ctx)
	if err != nil {
		return nil, err
	}

	results := []SearchResult{}
	for _, a := range addresses {
		if !containsFold(a.Address, q) && !containsFold(a.Formatted, q) &&
			!containsFold(a.City, q) && !containsFold(a.Province, q) {
			continue
		}
		results = append(results, SearchResult{
			Type:        "address",
			ID:          a.ID,
			Name:        a.Formatted,
			Address:     a.Address,
			Coordinates: a.Coordinates,
			City:        a.City,
			Province:    a.Province,
			Relevance:   Relevance(q, a.Formatted),
		})
	}
	for _, d := range districts {
		if !containsFold(d.Name, q) && !containsFold(d.City, q) {
			continue
		}
		results = append(results, SearchResult{
			Type:        "district",
			ID:          d.ID,
			Name:        d.Name,
			Address:     d.Name + ", " + d.City,
			Coordinates: d.Center,
			City:        d.City,
			Relevance:   Relevance(q, d.Name),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Relevance > results[j].Relevance })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Relevance scores text against a lower-cased query: exact 1.0, prefix 0.9,
// substring 0.7, otherwise half the fraction of query words found.
func Relevance(query, text string) float64 {
	text = strings.ToLower(text)
	switch {
	case text == query:
		return 1.0
	case strings.HasPrefix(text, query):
		return 0.9
	case strings.Contains(text, query):
		return 0.7
	}
	words := strings.Fields(query)
	if len(words) == 0 {
		return 0
	}
	textWords := strings.Fields(text)
	matched := 0
	for _, w := range words {
		for _, tw := range textWords {
			if strings.Contains(tw, w) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(words)) * 0.5
}
