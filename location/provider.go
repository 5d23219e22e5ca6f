package location

import (
	"context"

	"pizza-delivery-api/geolocation"
	"pizza-delivery-api/models"
)

// AddressProvider resolves a typed delivery address through Geocode.
func (s *Service) AddressProvider(address string) geolocation.Provider {
	return geolocation.ProviderFunc(func(ctx context.Context) (models.Coordinate, error) {
		res, err := s.Geocode(ctx, address)
		if err != nil {
			return models.Coordinate{}, err
		}
		return res.Coordinates, nil
	})
}
