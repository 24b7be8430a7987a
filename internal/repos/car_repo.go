package repos

import (
	"context"
	"database/sql"
	"fmt"

	"dealership/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CarRepo struct{ db sqlx.ExtContext }

func NewCarRepo(db sqlx.ExtContext) *CarRepo { return &CarRepo{db: db} }

const carColumns = `id, make, model, year, vin, color, condition, price, mileage, date_added, sold`

// CarFilter narrows List. Zero values are ignored.
type CarFilter struct {
	Make          string
	Model         string
	Year          int
	Condition     domain.Condition
	MinPrice      decimal.NullDecimal
	MaxPrice      decimal.NullDecimal
	MaxMileage    int // exclusive upper bound
	AvailableOnly bool
	NewestFirst   bool
}

func (r *CarRepo) Get(ctx context.Context, id string) (domain.Car, error) {
	var c domain.Car
	err := sqlx.GetContext(ctx, r.db, &c, `SELECT `+carColumns+` FROM cars WHERE id = ?`, id)
	return c, err
}

func (r *CarRepo) GetByVIN(ctx context.Context, vin string) (domain.Car, error) {
	var c domain.Car
	err := sqlx.GetContext(ctx, r.db, &c, `SELECT `+carColumns+` FROM cars WHERE vin = ?`, vin)
	return c, err
}

func (r *CarRepo) List(ctx context.Context, f CarFilter) ([]domain.Car, error) {
	where := `1 = 1`
	args := []any{}
	if f.Make != "" {
		where += ` AND LOWER(make) = LOWER(?)`
		args = append(args, f.Make)
	}
	if f.Model != "" {
		where += ` AND LOWER(model) = LOWER(?)`
		args = append(args, f.Model)
	}
	if f.Year != 0 {
		where += ` AND year = ?`
		args = append(args, f.Year)
	}
	if f.Condition != "" {
		where += ` AND condition = ?`
		args = append(args, string(f.Condition))
	}
	if f.MinPrice.Valid {
		where += ` AND CAST(price AS REAL) >= ?`
		args = append(args, f.MinPrice.Decimal.InexactFloat64())
	}
	if f.MaxPrice.Valid {
		where += ` AND CAST(price AS REAL) <= ?`
		args = append(args, f.MaxPrice.Decimal.InexactFloat64())
	}
	if f.MaxMileage > 0 {
		where += ` AND mileage < ?`
		args = append(args, f.MaxMileage)
	}
	if f.AvailableOnly {
		where += ` AND sold = 0`
	}
	order := `make, model, year`
	if f.NewestFirst {
		order = `date_added DESC, id`
	}

	out := []domain.Car{}
	err := sqlx.SelectContext(ctx, r.db, &out, `SELECT `+carColumns+` FROM cars WHERE `+where+` ORDER BY `+order, args...)
	return out, err
}

func (r *CarRepo) Insert(ctx context.Context, c domain.Car) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cars(id, make, model, year, vin, color, condition, price, mileage, date_added, sold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Make, c.Model, c.Year, c.VIN, c.Color, string(c.Condition), c.Price.StringFixed(2), c.Mileage, c.DateAdded, c.Sold)
	return err
}

// Update rewrites the descriptive fields. The sold flag is left alone; it
// only moves through MarkSold and MarkAvailable.
func (r *CarRepo) Update(ctx context.Context, c domain.Car) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cars
		SET make = ?, model = ?, year = ?, vin = ?, color = ?, condition = ?, price = ?, mileage = ?
		WHERE id = ?
	`, c.Make, c.Model, c.Year, c.VIN, c.Color, string(c.Condition), c.Price.StringFixed(2), c.Mileage, c.ID)
	return expectOne(res, err)
}

func (r *CarRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = ?`, id)
	return expectOne(res, err)
}

// MarkSold flips an available car to sold. Returns ErrConflict when the car
// was already sold by the time the update ran.
func (r *CarRepo) MarkSold(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cars SET sold = 1 WHERE id = ? AND sold = 0`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("car %s: %w", id, ErrConflict)
	}
	return nil
}

// MarkAvailable clears the sold flag. Reports whether anything changed.
func (r *CarRepo) MarkAvailable(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE cars SET sold = 0 WHERE id = ? AND sold = 1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// expectOne turns "no row matched" into sql.ErrNoRows so callers can treat
// updates and deletes like lookups.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
