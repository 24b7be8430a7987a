package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealership/internal/domain"
	"dealership/internal/events"
	applog "dealership/internal/log"
	"dealership/internal/repos"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type SaleService struct {
	Store  *repos.Store
	Events events.Publisher
	Clock  func() time.Time
	Tracer trace.Tracer
}

func NewSaleService(store *repos.Store, pub events.Publisher) *SaleService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &SaleService{
		Store:  store,
		Events: pub,
		Clock:  func() time.Time { return time.Now().UTC() },
		Tracer: otel.Tracer("dealership/sales"),
	}
}

func (s *SaleService) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.Tracer.Start(ctx, "sales."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish runs after commit. A lost event never undoes a sale.
func (s *SaleService) publish(ctx context.Context, t events.Type, sale domain.Sale) {
	if err := s.Events.Publish(ctx, events.FromSale(t, sale, s.Clock())); err != nil {
		applog.Error(nil, "event.publish", err, map[string]any{"type": string(t), "sale_id": sale.ID})
	}
}

// ProcessSale sells an available car to a customer through a salesperson.
// Every lookup, the availability flip and the insert share one transaction;
// any error leaves the store untouched.
func (s *SaleService) ProcessSale(ctx context.Context, carID, customerID, employeeID string, salePrice, tax decimal.Decimal, paymentMethod string) (sale domain.Sale, err error) {
	ctx, span := s.start(ctx, "process",
		attribute.String("car.id", carID),
		attribute.String("customer.id", customerID),
		attribute.String("employee.id", employeeID))
	defer func() { finish(span, err) }()

	err = s.Store.WithTx(ctx, func(tx *repos.Tx) error {
		car, err := tx.Cars.Get(ctx, carID)
		if err != nil {
			return classify("load car", domain.KindCar, carID, err)
		}
		if car.Sold {
			return invalidState("car %s is already sold", carID)
		}
		if _, err := tx.Customers.Get(ctx, customerID); err != nil {
			return classify("load customer", domain.KindCustomer, customerID, err)
		}
		emp, err := tx.Employees.Get(ctx, employeeID)
		if err != nil {
			return classify("load employee", domain.KindEmployee, employeeID, err)
		}
		if !emp.Position.IsSalesperson() {
			return fmt.Errorf("%w: employee %s is a %s, not a salesperson", ErrInvalidRole, emp.ID, emp.Position)
		}

		sale = domain.NewSale(carID, customerID, employeeID, salePrice, tax, paymentMethod, s.Clock())
		sale.ID = uuid.NewString()

		if err := tx.Cars.MarkSold(ctx, carID); err != nil {
			if errors.Is(err, repos.ErrConflict) {
				return invalidState("car %s is already sold", carID)
			}
			return classify("mark car sold", domain.KindCar, carID, err)
		}
		if err := tx.Sales.Insert(ctx, sale); err != nil {
			return classify("insert sale", domain.KindSale, sale.ID, err)
		}
		return nil
	})
	if err != nil {
		return domain.Sale{}, classify("process sale", domain.KindSale, "", err)
	}
	span.SetAttributes(attribute.String("sale.id", sale.ID))
	s.publish(ctx, events.SaleProcessed, sale)
	return sale, nil
}

// releaseCar puts the car back on the market unless another live sale
// still holds it.
func releaseCar(ctx context.Context, tx *repos.Tx, carID, saleID string) error {
	others, err := tx.Sales.ActiveByCar(ctx, carID, saleID)
	if err != nil {
		return classify("check car sales", domain.KindCar, carID, err)
	}
	if len(others) > 0 {
		return nil
	}
	if _, err := tx.Cars.MarkAvailable(ctx, carID); err != nil {
		return classify("release car", domain.KindCar, carID, err)
	}
	return nil
}

// DeleteSale removes a sale of any status and returns its car to the lot.
func (s *SaleService) DeleteSale(ctx context.Context, saleID string) (err error) {
	ctx, span := s.start(ctx, "delete", attribute.String("sale.id", saleID))
	defer func() { finish(span, err) }()

	var sale domain.Sale
	err = s.Store.WithTx(ctx, func(tx *repos.Tx) error {
		var err error
		sale, err = tx.Sales.Get(ctx, saleID)
		if err != nil {
			return classify("load sale", domain.KindSale, saleID, err)
		}
		if err := releaseCar(ctx, tx, sale.CarID, sale.ID); err != nil {
			return err
		}
		if err := tx.Sales.Delete(ctx, saleID); err != nil {
			return classify("delete sale", domain.KindSale, saleID, err)
		}
		return nil
	})
	if err != nil {
		return classify("delete sale", domain.KindSale, saleID, err)
	}
	s.publish(ctx, events.SaleDeleted, sale)
	return nil
}

// ChangeStatus moves a sale along Pending -> Completed -> Cancelled.
// Setting the current status again is a no-op. Cancelling releases the car.
func (s *SaleService) ChangeStatus(ctx context.Context, saleID string, next domain.SaleStatus) (sale domain.Sale, err error) {
	ctx, span := s.start(ctx, "status",
		attribute.String("sale.id", saleID),
		attribute.String("sale.status", string(next)))
	defer func() { finish(span, err) }()

	changed := false
	err = s.Store.WithTx(ctx, func(tx *repos.Tx) error {
		var err error
		sale, err = tx.Sales.Get(ctx, saleID)
		if err != nil {
			return classify("load sale", domain.KindSale, saleID, err)
		}
		if sale.Status == next {
			return nil
		}
		if !sale.Status.CanTransitionTo(next) {
			return invalidState("sale %s cannot move from %s to %s", saleID, sale.Status, next)
		}
		if err := tx.Sales.UpdateStatus(ctx, saleID, next); err != nil {
			return classify("update sale status", domain.KindSale, saleID, err)
		}
		if !next.Holds() {
			if err := releaseCar(ctx, tx, sale.CarID, sale.ID); err != nil {
				return err
			}
		}
		sale.Status = next
		changed = true
		return nil
	})
	if err != nil {
		return domain.Sale{}, classify("change sale status", domain.KindSale, saleID, err)
	}
	if changed {
		t := events.SaleStatusChanged
		if next == domain.SaleStatusCancelled {
			t = events.SaleCancelled
		}
		s.publish(ctx, t, sale)
	}
	return sale, nil
}

func (s *SaleService) CancelSale(ctx context.Context, saleID string) (domain.Sale, error) {
	return s.ChangeStatus(ctx, saleID, domain.SaleStatusCancelled)
}

// RecordSale stores a sale entered by back office staff: any status, any
// employee. A sale that is not Cancelled claims its car like ProcessSale.
// Empty SaleDate means today.
func (s *SaleService) RecordSale(ctx context.Context, in domain.Sale) (sale domain.Sale, err error) {
	ctx, span := s.start(ctx, "record",
		attribute.String("car.id", in.CarID),
		attribute.String("sale.status", string(in.Status)))
	defer func() { finish(span, err) }()

	sale = in
	sale.ID = uuid.NewString()
	sale.SetTerms(in.SalePrice, in.Tax)
	if sale.SaleDate == "" {
		sale.SaleDate = domain.Today(s.Clock())
	}
	if sale.Status == "" {
		sale.Status = domain.SaleStatusPending
	}

	err = s.Store.WithTx(ctx, func(tx *repos.Tx) error {
		if _, err := tx.Cars.Get(ctx, sale.CarID); err != nil {
			return classify("load car", domain.KindCar, sale.CarID, err)
		}
		if _, err := tx.Customers.Get(ctx, sale.CustomerID); err != nil {
			return classify("load customer", domain.KindCustomer, sale.CustomerID, err)
		}
		if _, err := tx.Employees.Get(ctx, sale.SalespersonID); err != nil {
			return classify("load employee", domain.KindEmployee, sale.SalespersonID, err)
		}
		if sale.Status.Holds() {
			if err := tx.Cars.MarkSold(ctx, sale.CarID); err != nil {
				if errors.Is(err, repos.ErrConflict) {
					return invalidState("car %s is already sold", sale.CarID)
				}
				return classify("mark car sold", domain.KindCar, sale.CarID, err)
			}
		}
		if err := tx.Sales.Insert(ctx, sale); err != nil {
			return classify("insert sale", domain.KindSale, sale.ID, err)
		}
		return nil
	})
	if err != nil {
		return domain.Sale{}, classify("record sale", domain.KindSale, "", err)
	}
	s.publish(ctx, events.SaleRecorded, sale)
	return sale, nil
}

// SaleTerms are the fields of a sale that may be corrected after the fact.
// The parties and the status are not among them.
type SaleTerms struct {
	SalePrice     decimal.Decimal
	Tax           decimal.Decimal
	PaymentMethod string
	SaleDate      string // empty keeps the current date
}

func (s *SaleService) UpdateSale(ctx context.Context, saleID string, terms SaleTerms) (sale domain.Sale, err error) {
	ctx, span := s.start(ctx, "update", attribute.String("sale.id", saleID))
	defer func() { finish(span, err) }()

	err = s.Store.WithTx(ctx, func(tx *repos.Tx) error {
		var err error
		sale, err = tx.Sales.Get(ctx, saleID)
		if err != nil {
			return classify("load sale", domain.KindSale, saleID, err)
		}
		sale.SetTerms(terms.SalePrice, terms.Tax)
		sale.PaymentMethod = terms.PaymentMethod
		if terms.SaleDate != "" {
			sale.SaleDate = terms.SaleDate
		}
		if err := tx.Sales.Update(ctx, sale); err != nil {
			return classify("update sale", domain.KindSale, saleID, err)
		}
		return nil
	})
	if err != nil {
		return domain.Sale{}, classify("update sale", domain.KindSale, saleID, err)
	}
	return sale, nil
}

// Commission is the pure salePrice * rate calculation.
func (s *SaleService) Commission(sale domain.Sale, salesperson *domain.Employee) decimal.Decimal {
	return sale.Commission(salesperson)
}

// CommissionFor loads a sale and its salesperson and computes the commission.
func (s *SaleService) CommissionFor(ctx context.Context, saleID string) (decimal.Decimal, error) {
	sale, err := s.Get(ctx, saleID)
	if err != nil {
		return decimal.Zero, err
	}
	emp, err := s.Store.Employees.Get(ctx, sale.SalespersonID)
	if err != nil {
		err = classify("load employee", domain.KindEmployee, sale.SalespersonID, err)
		if errors.Is(err, ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return sale.Commission(&emp), nil
}

// ---- queries ----

func (s *SaleService) Get(ctx context.Context, id string) (domain.Sale, error) {
	sale, err := s.Store.Sales.Get(ctx, id)
	return sale, classify("get sale", domain.KindSale, id, err)
}

func (s *SaleService) List(ctx context.Context) ([]domain.Sale, error) {
	out, err := s.Store.Sales.List(ctx)
	return out, classify("list sales", domain.KindSale, "", err)
}

func (s *SaleService) ByCustomer(ctx context.Context, customerID string) ([]domain.Sale, error) {
	if _, err := s.Store.Customers.Get(ctx, customerID); err != nil {
		return nil, classify("get customer", domain.KindCustomer, customerID, err)
	}
	out, err := s.Store.Sales.ByCustomer(ctx, customerID)
	return out, classify("sales by customer", domain.KindSale, "", err)
}

func (s *SaleService) BySalesperson(ctx context.Context, employeeID string) ([]domain.Sale, error) {
	if _, err := s.Store.Employees.Get(ctx, employeeID); err != nil {
		return nil, classify("get employee", domain.KindEmployee, employeeID, err)
	}
	out, err := s.Store.Sales.BySalesperson(ctx, employeeID)
	return out, classify("sales by salesperson", domain.KindSale, "", err)
}

// ByCar returns the most recent sale of a car, preferring one that still
// holds it over cancelled ones.
func (s *SaleService) ByCar(ctx context.Context, carID string) (domain.Sale, error) {
	if _, err := s.Store.Cars.Get(ctx, carID); err != nil {
		return domain.Sale{}, classify("get car", domain.KindCar, carID, err)
	}
	sales, err := s.Store.Sales.ByCar(ctx, carID)
	if err != nil {
		return domain.Sale{}, classify("sales by car", domain.KindSale, "", err)
	}
	if len(sales) == 0 {
		return domain.Sale{}, notFound(domain.KindSale, "car "+carID)
	}
	for _, sale := range sales {
		if sale.Status.Holds() {
			return sale, nil
		}
	}
	return sales[0], nil
}

func (s *SaleService) ByDate(ctx context.Context, date string) ([]domain.Sale, error) {
	out, err := s.Store.Sales.ByDate(ctx, date)
	return out, classify("sales by date", domain.KindSale, "", err)
}

func (s *SaleService) ByDateRange(ctx context.Context, start, end string) ([]domain.Sale, error) {
	if start > end {
		return nil, invalidInput("start date %s is after end date %s", start, end)
	}
	out, err := s.Store.Sales.ByDateRange(ctx, start, end)
	return out, classify("sales by date range", domain.KindSale, "", err)
}

func (s *SaleService) ByPaymentMethod(ctx context.Context, method string) ([]domain.Sale, error) {
	out, err := s.Store.Sales.ByPaymentMethod(ctx, method)
	return out, classify("sales by payment method", domain.KindSale, "", err)
}

func (s *SaleService) ByStatus(ctx context.Context, status domain.SaleStatus) ([]domain.Sale, error) {
	out, err := s.Store.Sales.ByStatus(ctx, status)
	return out, classify("sales by status", domain.KindSale, "", err)
}

func (s *SaleService) TotalAbove(ctx context.Context, floor decimal.Decimal) ([]domain.Sale, error) {
	out, err := s.Store.Sales.TotalAbove(ctx, floor)
	return out, classify("sales above total", domain.KindSale, "", err)
}

func (s *SaleService) Today(ctx context.Context) ([]domain.Sale, error) {
	return s.ByDate(ctx, domain.Today(s.Clock()))
}
