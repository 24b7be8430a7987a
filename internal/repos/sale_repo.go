package repos

import (
	"context"

	"dealership/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type SaleRepo struct{ db sqlx.ExtContext }

func NewSaleRepo(db sqlx.ExtContext) *SaleRepo { return &SaleRepo{db: db} }

const saleColumns = `id, car_id, customer_id, salesperson_id, sale_date, sale_price, tax, total_price, payment_method, sale_status`

func (r *SaleRepo) Get(ctx context.Context, id string) (domain.Sale, error) {
	var s domain.Sale
	err := sqlx.GetContext(ctx, r.db, &s, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id)
	return s, err
}

func (r *SaleRepo) selectWhere(ctx context.Context, where string, args ...any) ([]domain.Sale, error) {
	out := []domain.Sale{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+saleColumns+` FROM sales
		WHERE `+where+`
		ORDER BY sale_date DESC, id`, args...)
	return out, err
}

func (r *SaleRepo) List(ctx context.Context) ([]domain.Sale, error) {
	return r.selectWhere(ctx, `1 = 1`)
}

func (r *SaleRepo) ByCustomer(ctx context.Context, customerID string) ([]domain.Sale, error) {
	return r.selectWhere(ctx, `customer_id = ?`, customerID)
}

func (r *SaleRepo) BySalesperson(ctx context.Context, employeeID string) ([]domain.Sale, error) {
	return r.selectWhere(ctx, `salesperson_id = ?`, employeeID)
}

func (r *SaleRepo) ByCar(ctx context.Context, carID string) ([]domain.Sale, error) {
	return r.selectWhere(ctx, `car_id = ?`, carID)
}

// ActiveByCar returns the non-cancelled sales of a car, skipping exceptID.
func (r *SaleRepo) ActiveByCar(ctx context.Context, carID, exceptID string) ([]domain.Sale, error) {
	return r.selectWhere(ctx, `car_id = ? AND id <> ? AND sale_status <> ?`,
		carID, exceptID, string(domain.SaleStatusCancelled))
}

func (r *SaleRepo) ByDate(ctx context.Context, date string) ([]domain.Sale, error) {
	return r.selectWhere(ctx, `sale_date = ?`, date)
}

// ByDateRange is inclusive on both ends.
func (r *SaleRepo) ByDateRange(ctx context.Context, start, end string) ([]domain.Sale, error) {
	return r.selectWhere(ctx, `sale_date BETWEEN ? AND ?`, start, end)
}

func (r *SaleRepo) ByPaymentMethod(ctx context.Context, method string) ([]domain.Sale, error) {
	return r.selectWhere(ctx, `LOWER(payment_method) = LOWER(?)`, method)
}

func (r *SaleRepo) ByStatus(ctx context.Context, status domain.SaleStatus) ([]domain.Sale, error) {
	return r.selectWhere(ctx, `sale_status = ?`, string(status))
}

// TotalAbove lists sales whose total price is strictly greater than floor.
func (r *SaleRepo) TotalAbove(ctx context.Context, floor decimal.Decimal) ([]domain.Sale, error) {
	return r.selectWhere(ctx, `CAST(total_price AS REAL) > ?`, floor.InexactFloat64())
}

func (r *SaleRepo) Insert(ctx context.Context, s domain.Sale) error {
	price, tax := s.SalePrice.Round(2), s.Tax.Round(2)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sales(id, car_id, customer_id, salesperson_id, sale_date, sale_price, tax, total_price, payment_method, sale_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.CarID, s.CustomerID, s.SalespersonID, s.SaleDate,
		price.StringFixed(2), tax.StringFixed(2), price.Add(tax).StringFixed(2),
		s.PaymentMethod, string(s.Status))
	return err
}

// Update rewrites every column but the id. total_price is recomputed from
// sale_price and tax regardless of what the caller set.
func (r *SaleRepo) Update(ctx context.Context, s domain.Sale) error {
	price, tax := s.SalePrice.Round(2), s.Tax.Round(2)
	res, err := r.db.ExecContext(ctx, `
		UPDATE sales
		SET car_id = ?, customer_id = ?, salesperson_id = ?, sale_date = ?,
		    sale_price = ?, tax = ?, total_price = ?, payment_method = ?, sale_status = ?
		WHERE id = ?
	`, s.CarID, s.CustomerID, s.SalespersonID, s.SaleDate,
		price.StringFixed(2), tax.StringFixed(2), price.Add(tax).StringFixed(2),
		s.PaymentMethod, string(s.Status), s.ID)
	return expectOne(res, err)
}

func (r *SaleRepo) UpdateStatus(ctx context.Context, id string, status domain.SaleStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sales SET sale_status = ? WHERE id = ?`, string(status), id)
	return expectOne(res, err)
}

func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	return expectOne(res, err)
}
