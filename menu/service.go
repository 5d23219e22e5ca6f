// Package menu serves the product catalog to customers: listing, search,
// categories and stock checks.
package menu

import (
	"context"
	"errors"
	"strings"

	"pizza-delivery-api/models"
	"pizza-delivery-api/repository"
)

var ErrEmptyQuery = errors.New("search query must not be empty")

type Service struct {
	catalog repository.CatalogRepository
}

func NewService(catalog repository.CatalogRepository) *Service {
	return &Service{catalog: catalog}
}

type Filter struct {
	Category    string
	PopularOnly bool
}

type Menu struct {
	Count      int              `json:"count"`
	Categories []string         `json:"categories"`
	Menu       []models.Product `json:"menu"`
}

// Category is a menu section with the number of products it offers.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// available returns the orderable products in catalog order.
func (s *Service) available(ctx context.Context) ([]models.Product, error) {
	products, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Available {
			out = append(out, p)
		}
	}
	return out, nil
}

// List returns the orderable products. Categories always lists every
// section, whatever the filter.
func (s *Service) List(ctx context.Context, f Filter) (*Menu, error) {
	products, err := s.available(ctx)
	if err != nil {
		return nil, err
	}
	m := &Menu{Menu: []models.Product{}, Categories: categoryNames(products)}
	for _, p := range products {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.PopularOnly && !p.Popular {
			continue
		}
		m.Menu = append(m.Menu, p)
	}
	m.Count = len(m.Menu)
	return m, nil
}

func categoryNames(products []models.Product) []string {
	names := []string{}
	for _, c := range categories(products) {
		names = append(names, c.Name)
	}
	return names
}

func categories(products []models.Product) []Category {
	index := map[string]int{}
	var out []Category
	for _, p := range products {
		i, ok := index[p.Category]
		if !ok {
			i = len(out)
			index[p.Category] = i
			out = append(out, Category{Name: p.Category})
		}
		out[i].Count++
	}
	return out
}

// Categories lists the menu sections in the order they first appear.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	products, err := s.available(ctx)
	if err != nil {
		return nil, err
	}
	out := categories(products)
	if out == nil {
		out = []Category{}
	}
	return out, nil
}

type SearchResult struct {
	Query    string           `json:"query"`
	Category string           `json:"category,omitempty"`
	Results  []models.Product `json:"results"`
	Total    int              `json:"total"`
}

// Search matches query case-insensitively against product name,
// description and category.
func (s *Service) Search(ctx context.Context, query, category string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	products, err := s.available(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	res := &SearchResult{Query: query, Category: category, Results: []models.Product{}}
	for _, p := range products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) {
			res.Results = append(res.Results, p)
		}
	}
	res.Total = len(res.Results)
	return res, nil
}

type Item struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"min=0"`
}

// Unavailability reasons.
const (
	ReasonNotFound    = "not_found"
	ReasonUnavailable = "unavailable"
)

type ItemAvailability struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Requested int    `json:"requested"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type Availability struct {
	AllAvailable     bool               `json:"all_available"`
	Items            []ItemAvailability `json:"items"`
	UnavailableCount int                `json:"unavailable_count"`
}

// CheckAvailability reports which items can be ordered right now. A zero
// quantity counts as one.
func (s *Service) CheckAvailability(ctx context.Context, items []Item) (*Availability, error) {
	products, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	res := &Availability{Items: make([]ItemAvailability, 0, len(items))}
	for _, it := range items {
		a := ItemAvailability{ProductID: it.ProductID, Requested: it.Quantity}
		if a.Requested == 0 {
			a.Requested = 1
		}
		p, ok := byID[it.ProductID]
		switch {
		case !ok:
			a.Reason = ReasonNotFound
		case !p.Available:
			a.Name, a.Reason = p.Name, ReasonUnavailable
		default:
			a.Name, a.Available = p.Name, true
		}
		if !a.Available {
			res.UnavailableCount++
		}
		res.Items = append(res.Items, a)
	}
	res.AllAvailable = res.UnavailableCount == 0
	return res, nil
}
