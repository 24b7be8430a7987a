package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Car struct {
	ID        string          `db:"id" json:"id"`
	Make      string          `db:"make" json:"make"`
	Model     string          `db:"model" json:"model"`
	Year      int             `db:"year" json:"year"`
	VIN       string          `db:"vin" json:"vin"`
	Color     string          `db:"color" json:"color"`
	Condition Condition       `db:"condition" json:"condition"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Mileage   int             `db:"mileage" json:"mileage"`
	DateAdded string          `db:"date_added" json:"dateAdded"`
	Sold      bool            `db:"sold" json:"sold"`
}

type Customer struct {
	ID               string `db:"id" json:"id"`
	FirstName        string `db:"first_name" json:"firstName"`
	LastName         string `db:"last_name" json:"lastName"`
	Email            string `db:"email" json:"email"`
	Phone            string `db:"phone" json:"phone"`
	Address          string `db:"address" json:"address"`
	RegistrationDate string `db:"registration_date" json:"registrationDate"`
}

func (c Customer) FullName() string { return c.FirstName + " " + c.LastName }

type Employee struct {
	ID             string              `db:"id" json:"id"`
	FirstName      string              `db:"first_name" json:"firstName"`
	LastName       string              `db:"last_name" json:"lastName"`
	Email          string              `db:"email" json:"email"`
	Phone          string              `db:"phone" json:"phone"`
	Position       Position            `db:"position" json:"position"`
	HireDate       string              `db:"hire_date" json:"hireDate"`
	Salary         decimal.Decimal     `db:"salary" json:"salary"`
	CommissionRate decimal.NullDecimal `db:"commission_rate" json:"commissionRate"`
}

func (e Employee) FullName() string { return e.FirstName + " " + e.LastName }

// Sale links one car, one customer and one salesperson by id. TotalPrice is
// always SalePrice + Tax; use SetTerms to change either.
type Sale struct {
	ID            string          `db:"id" json:"id"`
	CarID         string          `db:"car_id" json:"carId"`
	CustomerID    string          `db:"customer_id" json:"customerId"`
	SalespersonID string          `db:"salesperson_id" json:"salespersonId"`
	SaleDate      string          `db:"sale_date" json:"saleDate"`
	SalePrice     decimal.Decimal `db:"sale_price" json:"salePrice"`
	Tax           decimal.Decimal `db:"tax" json:"tax"`
	TotalPrice    decimal.Decimal `db:"total_price" json:"totalPrice"`
	PaymentMethod string          `db:"payment_method" json:"paymentMethod"`
	Status        SaleStatus      `db:"sale_status" json:"saleStatus"`
}

// NewSale builds a completed sale dated on the given day.
func NewSale(carID, customerID, salespersonID string, salePrice, tax decimal.Decimal, paymentMethod string, now time.Time) Sale {
	s := Sale{
		CarID:         carID,
		CustomerID:    customerID,
		SalespersonID: salespersonID,
		SaleDate:      now.Format(DateLayout),
		PaymentMethod: paymentMethod,
		Status:        SaleStatusCompleted,
	}
	s.SetTerms(salePrice, tax)
	return s
}

// SetTerms stores price and tax at cent precision, the scale they are
// persisted at, and derives the total from the rounded amounts.
func (s *Sale) SetTerms(salePrice, tax decimal.Decimal) {
	s.SalePrice = salePrice.Round(2)
	s.Tax = tax.Round(2)
	s.TotalPrice = s.SalePrice.Add(s.Tax)
}

// Commission is SalePrice times the salesperson's commission rate, or zero
// when there is no salesperson or no rate on file.
func (s Sale) Commission(salesperson *Employee) decimal.Decimal {
	if salesperson == nil || !salesperson.CommissionRate.Valid {
		return decimal.Zero
	}
	return s.SalePrice.Mul(salesperson.CommissionRate.Decimal)
}

// Money fields go out at cent scale ("16200.00"); decimal's own encoder
// trims trailing zeros.

func (c Car) MarshalJSON() ([]byte, error) {
	type plain Car
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(c), c.Price.StringFixed(2)})
}

func (e Employee) MarshalJSON() ([]byte, error) {
	type plain Employee
	return json.Marshal(struct {
		plain
		Salary string `json:"salary"`
	}{plain(e), e.Salary.StringFixed(2)})
}

func (s Sale) MarshalJSON() ([]byte, error) {
	type plain Sale
	return json.Marshal(struct {
		plain
		SalePrice  string `json:"salePrice"`
		Tax        string `json:"tax"`
		TotalPrice string `json:"totalPrice"`
	}{plain(s), s.SalePrice.StringFixed(2), s.Tax.StringFixed(2), s.TotalPrice.StringFixed(2)})
}

func Today(now time.Time) string { return now.Format(DateLayout) }
