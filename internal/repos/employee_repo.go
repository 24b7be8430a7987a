package repos

import (
	"context"

	"dealership/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type EmployeeRepo struct{ db sqlx.ExtContext }

func NewEmployeeRepo(db sqlx.ExtContext) *EmployeeRepo { return &EmployeeRepo{db: db} }

const employeeColumns = `id, first_name, last_name, email, phone, position, hire_date, salary, commission_rate`

func (r *EmployeeRepo) Get(ctx context.Context, id string) (domain.Employee, error) {
	var e domain.Employee
	err := sqlx.GetContext(ctx, r.db, &e, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	return e, err
}

func (r *EmployeeRepo) GetByEmail(ctx context.Context, email string) (domain.Employee, error) {
	var e domain.Employee
	err := sqlx.GetContext(ctx, r.db, &e, `SELECT `+employeeColumns+` FROM employees WHERE email = ?`, email)
	return e, err
}

func (r *EmployeeRepo) List(ctx context.Context) ([]domain.Employee, error) {
	return r.FindByName(ctx, "", "")
}

func (r *EmployeeRepo) FindByName(ctx context.Context, first, last string) ([]domain.Employee, error) {
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
	out := []domain.Employee{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+employeeColumns+` FROM employees
		WHERE `+where+`
		ORDER BY last_name, first_name`, args...)
	return out, err
}

func (r *EmployeeRepo) ByPosition(ctx context.Context, p domain.Position) ([]domain.Employee, error) {
	out := []domain.Employee{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+employeeColumns+` FROM employees
		WHERE LOWER(position) = LOWER(?)
		ORDER BY last_name, first_name`, string(p))
	return out, err
}

func (r *EmployeeRepo) HireDateBetween(ctx context.Context, start, end string) ([]domain.Employee, error) {
	out := []domain.Employee{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+employeeColumns+` FROM employees
		WHERE hire_date BETWEEN ? AND ?
		ORDER BY hire_date`, start, end)
	return out, err
}

func (r *EmployeeRepo) SalaryBetween(ctx context.Context, lo, hi decimal.Decimal) ([]domain.Employee, error) {
	out := []domain.Employee{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+employeeColumns+` FROM employees
		WHERE CAST(salary AS REAL) BETWEEN ? AND ?
		ORDER BY CAST(salary AS REAL)`, lo.InexactFloat64(), hi.InexactFloat64())
	return out, err
}

// SalespeopleWithNoSales lists salespeople who are on no sale at all.
func (r *EmployeeRepo) SalespeopleWithNoSales(ctx context.Context) ([]domain.Employee, error) {
	out := []domain.Employee{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+employeeColumns+` FROM employees e
		WHERE LOWER(e.position) = 'salesperson'
		  AND NOT EXISTS (SELECT 1 FROM sales s WHERE s.salesperson_id = e.id)
		ORDER BY last_name, first_name`)
	return out, err
}

// SalespeopleActiveBetween lists employees with a sale dated in [start, end].
func (r *EmployeeRepo) SalespeopleActiveBetween(ctx context.Context, start, end string) ([]domain.Employee, error) {
	out := []domain.Employee{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+employeeColumns+` FROM employees e
		WHERE EXISTS (
		  SELECT 1 FROM sales s
		  WHERE s.salesperson_id = e.id AND s.sale_date BETWEEN ? AND ?
		)
		ORDER BY last_name, first_name`, start, end)
	return out, err
}

func (r *EmployeeRepo) Insert(ctx context.Context, e domain.Employee) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO employees(id, first_name, last_name, email, phone, position, hire_date, salary, commission_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.FirstName, e.LastName, e.Email, e.Phone, string(e.Position), e.HireDate, e.Salary.StringFixed(2), e.CommissionRate)
	return err
}

func (r *EmployeeRepo) Update(ctx context.Context, e domain.Employee) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE employees
		SET first_name = ?, last_name = ?, email = ?, phone = ?, position = ?, salary = ?, commission_rate = ?
		WHERE id = ?
	`, e.FirstName, e.LastName, e.Email, e.Phone, string(e.Position), e.Salary.StringFixed(2), e.CommissionRate, e.ID)
	return expectOne(res, err)
}

func (r *EmployeeRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	return expectOne(res, err)
}
