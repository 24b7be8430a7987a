package services

import (
	"context"
	"time"

	"dealership/internal/domain"
	"dealership/internal/repos"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EmployeeService struct {
	Employees *repos.EmployeeRepo
	Clock     func() time.Time
}

func NewEmployeeService(employees *repos.EmployeeRepo) *EmployeeService {
	return &EmployeeService{Employees: employees, Clock: func() time.Time { return time.Now().UTC() }}
}

func (s *EmployeeService) Get(ctx context.Context, id string) (domain.Employee, error) {
	e, err := s.Employees.Get(ctx, id)
	return e, classify("get employee", domain.KindEmployee, id, err)
}

func (s *EmployeeService) GetByEmail(ctx context.Context, email string) (domain.Employee, error) {
	e, err := s.Employees.GetByEmail(ctx, email)
	return e, classify("get employee by email", domain.KindEmployee, "email "+email, err)
}

func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	out, err := s.Employees.List(ctx)
	return out, classify("list employees", domain.KindEmployee, "", err)
}

func (s *EmployeeService) FindByName(ctx context.Context, first, last string) ([]domain.Employee, error) {
	out, err := s.Employees.FindByName(ctx, first, last)
	return out, classify("find employees", domain.KindEmployee, "", err)
}

func (s *EmployeeService) ByPosition(ctx context.Context, p domain.Position) ([]domain.Employee, error) {
	out, err := s.Employees.ByPosition(ctx, p)
	return out, classify("employees by position", domain.KindEmployee, "", err)
}

func (s *EmployeeService) ByHireDateRange(ctx context.Context, start, end string) ([]domain.Employee, error) {
	if start > end {
		return nil, invalidInput("start date %s is after end date %s", start, end)
	}
	out, err := s.Employees.HireDateBetween(ctx, start, end)
	return out, classify("employees by hire date", domain.KindEmployee, "", err)
}

func (s *EmployeeService) BySalaryRange(ctx context.Context, lo, hi decimal.Decimal) ([]domain.Employee, error) {
	if lo.GreaterThan(hi) {
		return nil, invalidInput("min salary %s is above max salary %s", lo, hi)
	}
	out, err := s.Employees.SalaryBetween(ctx, lo, hi)
	return out, classify("employees by salary", domain.KindEmployee, "", err)
}

func (s *EmployeeService) SalespeopleWithNoSales(ctx context.Context) ([]domain.Employee, error) {
	out, err := s.Employees.SalespeopleWithNoSales(ctx)
	return out, classify("idle salespeople", domain.KindEmployee, "", err)
}

func (s *EmployeeService) SalespeopleActiveBetween(ctx context.Context, start, end string) ([]domain.Employee, error) {
	if start > end {
		return nil, invalidInput("start date %s is after end date %s", start, end)
	}
	out, err := s.Employees.SalespeopleActiveBetween(ctx, start, end)
	return out, classify("active salespeople", domain.KindEmployee, "", err)
}

func (s *EmployeeService) Create(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	e.ID = uuid.NewString()
	if e.HireDate == "" {
		e.HireDate = domain.Today(s.Clock())
	}
	if err := s.Employees.Insert(ctx, e); err != nil {
		return domain.Employee{}, classify("create employee", domain.KindEmployee, e.ID, err)
	}
	return e, nil
}

// Update keeps the hire date on file.
func (s *EmployeeService) Update(ctx context.Context, id string, e domain.Employee) (domain.Employee, error) {
	e.ID = id
	if err := s.Employees.Update(ctx, e); err != nil {
		return domain.Employee{}, classify("update employee", domain.KindEmployee, id, err)
	}
	return s.Get(ctx, id)
}

// Delete refuses employees that appear on any sale.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	return classify("delete employee", domain.KindEmployee, id, s.Employees.Delete(ctx, id))
}
