package services

import (
	"context"
	"time"

	"dealership/internal/domain"
	"dealership/internal/repos"

	"github.com/google/uuid"
)

type CustomerService struct {
	Customers *repos.CustomerRepo
	Clock     func() time.Time
}

func NewCustomerService(customers *repos.CustomerRepo) *CustomerService {
	return &CustomerService{Customers: customers, Clock: func() time.Time { return time.Now().UTC() }}
}

func (s *CustomerService) Get(ctx context.Context, id string) (domain.Customer, error) {
	c, err := s.Customers.Get(ctx, id)
	return c, classify("get customer", domain.KindCustomer, id, err)
}

func (s *CustomerService) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	c, err := s.Customers.GetByEmail(ctx, email)
	return c, classify("get customer by email", domain.KindCustomer, "email "+email, err)
}

func (s *CustomerService) GetByPhone(ctx context.Context, phone string) (domain.Customer, error) {
	c, err := s.Customers.GetByPhone(ctx, phone)
	return c, classify("get customer by phone", domain.KindCustomer, "phone "+phone, err)
}

func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	out, err := s.Customers.List(ctx)
	return out, classify("list customers", domain.KindCustomer, "", err)
}

func (s *CustomerService) FindByName(ctx context.Context, first, last string) ([]domain.Customer, error) {
	out, err := s.Customers.FindByName(ctx, first, last)
	return out, classify("find customers", domain.KindCustomer, "", err)
}

func (s *CustomerService) WithPurchases(ctx context.Context) ([]domain.Customer, error) {
	out, err := s.Customers.WithPurchases(ctx)
	return out, classify("customers with purchases", domain.KindCustomer, "", err)
}

func (s *CustomerService) RegisteredAfter(ctx context.Context, date string) ([]domain.Customer, error) {
	out, err := s.Customers.RegisteredAfter(ctx, date)
	return out, classify("customers registered after", domain.KindCustomer, "", err)
}

func (s *CustomerService) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	c.ID = uuid.NewString()
	if c.RegistrationDate == "" {
		c.RegistrationDate = domain.Today(s.Clock())
	}
	if err := s.Customers.Insert(ctx, c); err != nil {
		return domain.Customer{}, classify("create customer", domain.KindCustomer, c.ID, err)
	}
	return c, nil
}

// Update keeps the registration date on file.
func (s *CustomerService) Update(ctx context.Context, id string, c domain.Customer) (domain.Customer, error) {
	c.ID = id
	if err := s.Customers.Update(ctx, c); err != nil {
		return domain.Customer{}, classify("update customer", domain.KindCustomer, id, err)
	}
	return s.Get(ctx, id)
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	return classify("delete customer", domain.KindCustomer, id, s.Customers.Delete(ctx, id))
}
