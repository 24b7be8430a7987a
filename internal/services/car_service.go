package services

import (
	"context"
	"time"

	"dealership/internal/domain"
	"dealership/internal/repos"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CarService is inventory intake and search. Availability is not edited
// here; only SaleService flips the sold flag.
type CarService struct {
	Cars  *repos.CarRepo
	Clock func() time.Time
}

func NewCarService(cars *repos.CarRepo) *CarService {
	return &CarService{Cars: cars, Clock: func() time.Time { return time.Now().UTC() }}
}

func (s *CarService) Get(ctx context.Context, id string) (domain.Car, error) {
	c, err := s.Cars.Get(ctx, id)
	return c, classify("get car", domain.KindCar, id, err)
}

func (s *CarService) GetByVIN(ctx context.Context, vin string) (domain.Car, error) {
	c, err := s.Cars.GetByVIN(ctx, vin)
	return c, classify("get car by vin", domain.KindCar, "vin "+vin, err)
}

func (s *CarService) list(ctx context.Context, f repos.CarFilter) ([]domain.Car, error) {
	out, err := s.Cars.List(ctx, f)
	return out, classify("list cars", domain.KindCar, "", err)
}

func (s *CarService) List(ctx context.Context) ([]domain.Car, error) {
	return s.list(ctx, repos.CarFilter{})
}

func (s *CarService) Available(ctx context.Context) ([]domain.Car, error) {
	return s.list(ctx, repos.CarFilter{AvailableOnly: true})
}

// Search matches any combination of make, model and year; zero values are
// wildcards.
func (s *CarService) Search(ctx context.Context, carMake, model string, year int) ([]domain.Car, error) {
	return s.list(ctx, repos.CarFilter{Make: carMake, Model: model, Year: year})
}

func (s *CarService) ByMake(ctx context.Context, carMake string) ([]domain.Car, error) {
	return s.list(ctx, repos.CarFilter{Make: carMake})
}

func (s *CarService) ByModel(ctx context.Context, model string) ([]domain.Car, error) {
	return s.list(ctx, repos.CarFilter{Model: model})
}

func (s *CarService) ByYear(ctx context.Context, year int) ([]domain.Car, error) {
	return s.list(ctx, repos.CarFilter{Year: year})
}

func (s *CarService) ByPriceRange(ctx context.Context, lo, hi decimal.Decimal) ([]domain.Car, error) {
	if lo.GreaterThan(hi) {
		return nil, invalidInput("min price %s is above max price %s", lo, hi)
	}
	return s.list(ctx, repos.CarFilter{
		MinPrice: decimal.NewNullDecimal(lo),
		MaxPrice: decimal.NewNullDecimal(hi),
	})
}

func (s *CarService) ByCondition(ctx context.Context, c domain.Condition) ([]domain.Car, error) {
	return s.list(ctx, repos.CarFilter{Condition: c})
}

// LowMileage lists cars with mileage strictly below the limit.
func (s *CarService) LowMileage(ctx context.Context, hi int) ([]domain.Car, error) {
	if hi <= 0 {
		return []domain.Car{}, nil
	}
	return s.list(ctx, repos.CarFilter{MaxMileage: hi})
}

func (s *CarService) RecentlyAdded(ctx context.Context) ([]domain.Car, error) {
	return s.list(ctx, repos.CarFilter{NewestFirst: true})
}

// Create adds a car to the lot. New cars are always available and dated
// today unless the caller supplies an intake date.
func (s *CarService) Create(ctx context.Context, c domain.Car) (domain.Car, error) {
	c.ID = uuid.NewString()
	c.Sold = false
	if c.DateAdded == "" {
		c.DateAdded = domain.Today(s.Clock())
	}
	if err := s.Cars.Insert(ctx, c); err != nil {
		return domain.Car{}, classify("create car", domain.KindCar, c.ID, err)
	}
	return c, nil
}

// Update replaces the descriptive fields. The returned car carries the
// stored sold flag, whatever the caller sent.
func (s *CarService) Update(ctx context.Context, id string, c domain.Car) (domain.Car, error) {
	c.ID = id
	if err := s.Cars.Update(ctx, c); err != nil {
		return domain.Car{}, classify("update car", domain.KindCar, id, err)
	}
	return s.Get(ctx, id)
}

// Delete refuses cars that appear on any sale.
func (s *CarService) Delete(ctx context.Context, id string) error {
	return classify("delete car", domain.KindCar, id, s.Cars.Delete(ctx, id))
}
