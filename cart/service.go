package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"pizza-delivery-api/models"
	"pizza-delivery-api/promo"
	"pizza-delivery-api/repository"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrItemNotFound       = errors.New("item not in cart")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrEmptyCart          = errors.New("cart is empty")
)

// View is a cart plus the totals derived from it.
type View struct {
	*models.Cart
	Subtotal   int64    `json:"subtotal"`
	Discount   int64    `json:"discount"`
	FinalTotal int64    `json:"final_total"`
	TotalItems int      `json:"total_items"`
	Categories []string `json:"categories"`
	// PromoInvalidated is set when this call dropped a previously applied promo.
	PromoInvalidated bool `json:"promo_invalidated,omitempty"`
}

func newView(c *models.Cart, invalidated bool) *View {
	return &View{
		Cart:             c,
		Subtotal:         c.Subtotal(),
		Discount:         c.DiscountAmount(),
		FinalTotal:       c.FinalTotal(),
		TotalItems:       c.TotalItems(),
		Categories:       c.Categories(),
		PromoInvalidated: invalidated,
	}
}

type Service struct {
	store   Store
	catalog repository.CatalogRepository
	promos  *promo.Service
	now     func() time.Time

	// guards read-modify-write of a cart
	mu sync.Mutex
}

func NewService(store Store, catalog repository.CatalogRepository, promos *promo.Service) *Service {
	return &Service{store: store, catalog: catalog, promos: promos, now: time.Now}
}

func (s *Service) Get(ctx context.Context, userID uint) (*View, error) {
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newView(c, false), nil
}

// mutate loads the cart, applies fn and saves it. Any item change drops the
// applied promo since its discount was computed for the old contents.
func (s *Service) mutate(ctx context.Context, userID uint, fn func(c *models.Cart) error) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	invalidated := c.AppliedPromo != nil
	c.AppliedPromo = nil
	c.UpdatedAt = s.now()
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return newView(c, invalidated), nil
}

func (s *Service) product(ctx context.Context, productID string) (*models.Product, error) {
	products, err := s.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == productID {
			if !products[i].Available {
				return nil, ErrProductUnavailable
			}
			return &products[i], nil
		}
	}
	return nil, ErrProductNotFound
}

// Add puts quantity units of a menu product into the cart, merging with an
// existing line for the same product.
func (s *Service) Add(ctx context.Context, userID uint, productID string, quantity int) (*View, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		for i := range c.Items {
			if c.Items[i].ID == p.ID {
				c.Items[i].Quantity += quantity
				return nil
			}
		}
		c.Items = append(c.Items, models.CartItem{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Category: p.Category,
			Quantity: quantity,
		})
		return nil
	})
}

func (s *Service) Remove(ctx context.Context, userID uint, itemID string) (*View, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				return nil
			}
		}
		return ErrItemNotFound
	})
}

// UpdateQuantity sets an item's quantity; zero or less removes the item.
func (s *Service) UpdateQuantity(ctx context.Context, userID uint, itemID string, quantity int) (*View, error) {
	if quantity <= 0 {
		return s.Remove(ctx, userID, itemID)
	}
	return s.mutate(ctx, userID, func(c *models.Cart) error {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items[i].Quantity = quantity
				return nil
			}
		}
		return ErrItemNotFound
	})
}

func (s *Service) Clear(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, userID)
}

// ApplyPromo validates code against the current contents and stores the
// discount snapshot. Nothing is recorded in the usage log until checkout.
func (s *Service) ApplyPromo(ctx context.Context, userID uint, code string) (*View, *promo.Validation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if c.IsEmpty() {
		return nil, nil, ErrEmptyCart
	}
	v, err := s.promos.ValidatePromoCode(ctx, code, promo.Request{
		UserID:      userID,
		OrderAmount: c.Subtotal(),
		Categories:  c.Categories(),
	})
	if err != nil {
		return nil, nil, err
	}
	c.AppliedPromo = &models.AppliedPromo{
		Code:       v.Promo.Code,
		PromoID:    v.Promo.ID,
		Title:      v.Promo.Title,
		Amount:     v.Discount.Amount,
		Percentage: v.Discount.Percentage,
	}
	c.UpdatedAt = s.now()
	if err := s.store.Save(ctx, c); err != nil {
		return nil, nil, err
	}
	return newView(c, false), v, nil
}

func (s *Service) RemovePromo(ctx context.Context, userID uint) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.AppliedPromo == nil {
		return newView(c, false), nil
	}
	c.AppliedPromo = nil
	c.UpdatedAt = s.now()
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return newView(c, false), nil
}
