package repos

import (
	"context"

	"dealership/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CustomerRepo struct{ db sqlx.ExtContext }

func NewCustomerRepo(db sqlx.ExtContext) *CustomerRepo { return &CustomerRepo{db: db} }

const customerColumns = `id, first_name, last_name, email, phone, address, registration_date`

func (r *CustomerRepo) Get(ctx context.Context, id string) (domain.Customer, error) {
	var c domain.Customer
	err := sqlx.GetContext(ctx, r.db, &c, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	return c, err
}

func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	var c domain.Customer
	err := sqlx.GetContext(ctx, r.db, &c, `SELECT `+customerColumns+` FROM customers WHERE email = ?`, email)
	return c, err
}

func (r *CustomerRepo) GetByPhone(ctx context.Context, phone string) (domain.Customer, error) {
	var c domain.Customer
	err := sqlx.GetContext(ctx, r.db, &c, `SELECT `+customerColumns+` FROM customers WHERE phone = ? ORDER BY id LIMIT 1`, phone)
	return c, err
}

func (r *CustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	return r.FindByName(ctx, "", "")
}

// FindByName matches first and/or last name case-insensitively; empty
// arguments are ignored.
func (r *CustomerRepo) FindByName(ctx context.Context, first, last string) ([]domain.Customer, error) {
	where := `1 = 1`
	args := []any{}
	if first != "" {
		where += ` AND LOWER(first_name) = LOWER(?)`
		args = append(args, first)
	}
	if last != "" {
		where += ` AND LOWER(last_name) = LOWER(?)`
		args = append(args, last)
	}
	out := []domain.Customer{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+customerColumns+` FROM customers
		WHERE `+where+`
		ORDER BY last_name, first_name`, args...)
	return out, err
}

// WithPurchases lists customers that appear on at least one sale.
func (r *CustomerRepo) WithPurchases(ctx context.Context) ([]domain.Customer, error) {
	out := []domain.Customer{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+customerColumns+` FROM customers c
		WHERE EXISTS (SELECT 1 FROM sales s WHERE s.customer_id = c.id)
		ORDER BY last_name, first_name`)
	return out, err
}

func (r *CustomerRepo) RegisteredAfter(ctx context.Context, date string) ([]domain.Customer, error) {
	out := []domain.Customer{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+customerColumns+` FROM customers
		WHERE registration_date > ?
		ORDER BY registration_date`, date)
	return out, err
}

func (r *CustomerRepo) Insert(ctx context.Context, c domain.Customer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers(id, first_name, last_name, email, phone, address, registration_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.RegistrationDate)
	return err
}

func (r *CustomerRepo) Update(ctx context.Context, c domain.Customer) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE customers
		SET first_name = ?, last_name = ?, email = ?, phone = ?, address = ?
		WHERE id = ?
	`, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.ID)
	return expectOne(res, err)
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	return expectOne(res, err)
}
