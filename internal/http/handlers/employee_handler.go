package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"dealership/internal/domain"
	applog "dealership/internal/log"
	"dealership/internal/services"
	"dealership/internal/validate"
)

type EmployeeHandler struct {
	Employees *services.EmployeeService
}

type employeeRequest struct {
	FirstName      string              `json:"firstName"`
	LastName       string              `json:"lastName"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	Position       string              `json:"position"`
	HireDate       string              `json:"hireDate"`
	Salary         decimal.NullDecimal `json:"salary"`
	CommissionRate decimal.NullDecimal `json:"commissionRate"`
}

func (r employeeRequest) employee() (domain.Employee, string) {
	var e domain.Employee
	var ok bool
	if e.FirstName, ok = validate.Name(r.FirstName); !ok {
		return e, "firstName"
	}
	if e.LastName, ok = validate.Name(r.LastName); !ok {
		return e, "lastName"
	}
	if e.Email, ok = validate.Email(r.Email); !ok {
		return e, "email"
	}
	if e.Phone, ok = validate.Phone(r.Phone); !ok {
		return e, "phone"
	}
	pos, err := domain.ParsePosition(r.Position)
	if err != nil {
		return e, "position"
	}
	e.Position = pos
	if r.HireDate != "" {
		if e.HireDate, ok = validate.Date(r.HireDate); !ok {
			return e, "hireDate"
		}
	}
	if !r.Salary.Valid || !validate.MoneyOK(r.Salary.Decimal) {
		return e, "salary"
	}
	e.Salary = r.Salary.Decimal
	if r.CommissionRate.Valid && !validate.Rate(r.CommissionRate.Decimal) {
		return e, "commissionRate"
	}
	e.CommissionRate = r.CommissionRate
	return e, ""
}

func (h *EmployeeHandler) Create(c *fiber.Ctx) error {
	const action = "employee.create"
	var req employeeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, action, "body")
	}
	in, bad := req.employee()
	if bad != "" {
		return invalid(c, action, bad)
	}
	emp, err := h.Employees.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, action, err, nil)
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, action, map[string]any{"employee_id": emp.ID, "position": emp.Position})
	return c.JSON(emp)
}

func (h *EmployeeHandler) Update(c *fiber.Ctx) error {
	const action = "employee.update"
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, action, "id")
	}
	var req employeeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, action, "body")
	}
	in, bad := req.employee()
	if bad != "" {
		return invalid(c, action, bad)
	}
	emp, err := h.Employees.Update(c.UserContext(), id, in)
	if err != nil {
		return fail(c, action, err, map[string]any{"employee_id": id})
	}
	applog.Audit(c, action, map[string]any{"employee_id": id, "position": emp.Position})
	return c.JSON(emp)
}

func (h *EmployeeHandler) Delete(c *fiber.Ctx) error {
	const action = "employee.delete"
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, action, "id")
	}
	if err := h.Employees.Delete(c.UserContext(), id); err != nil {
		return fail(c, action, err, map[string]any{"employee_id": id})
	}
	c.Status(fiber.StatusNoContent)
	applog.Audit(c, action, map[string]any{"employee_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *EmployeeHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, "employee.get", "id")
	}
	emp, err := h.Employees.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "employee.get", err, map[string]any{"employee_id": id})
	}
	return c.JSON(emp)
}

func (h *EmployeeHandler) ByEmail(c *fiber.Ctx) error {
	email, ok := validate.Email(c.Params("email"))
	if !ok {
		return invalid(c, "employee.by_email", "email")
	}
	emp, err := h.Employees.GetByEmail(c.UserContext(), email)
	if err != nil {
		return fail(c, "employee.by_email", err, nil)
	}
	return c.JSON(emp)
}

func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	out, err := h.Employees.List(c.UserContext())
	if err != nil {
		return fail(c, "employee.list", err, nil)
	}
	return c.JSON(out)
}

func (h *EmployeeHandler) Search(c *fiber.Ctx) error {
	first, last, bad := nameQuery(c)
	if bad != "" {
		return invalid(c, "employee.search", bad)
	}
	out, err := h.Employees.FindByName(c.UserContext(), first, last)
	if err != nil {
		return fail(c, "employee.search", err, nil)
	}
	return c.JSON(out)
}

func (h *EmployeeHandler) ByPosition(c *fiber.Ctx) error {
	pos, err := domain.ParsePosition(c.Params("position"))
	if err != nil {
		return invalid(c, "employee.by_position", "position")
	}
	out, err := h.Employees.ByPosition(c.UserContext(), pos)
	if err != nil {
		return fail(c, "employee.by_position", err, nil)
	}
	return c.JSON(out)
}

// dateRange reads the startDate/endDate query pair.
func dateRange(c *fiber.Ctx) (start, end, bad string) {
	var ok bool
	if start, ok = validate.Date(c.Query("startDate")); !ok {
		return "", "", "startDate"
	}
	if end, ok = validate.Date(c.Query("endDate")); !ok {
		return "", "", "endDate"
	}
	return start, end, ""
}

func (h *EmployeeHandler) ByHireDateRange(c *fiber.Ctx) error {
	start, end, bad := dateRange(c)
	if bad != "" {
		return invalid(c, "employee.by_hire_date", bad)
	}
	out, err := h.Employees.ByHireDateRange(c.UserContext(), start, end)
	if err != nil {
		return fail(c, "employee.by_hire_date", err, nil)
	}
	return c.JSON(out)
}

// GET /api/employees/salary-range?minSalary=&maxSalary=
func (h *EmployeeHandler) BySalaryRange(c *fiber.Ctx) error {
	lo, ok := validate.Money(c.Query("minSalary"))
	if !ok {
		return invalid(c, "employee.by_salary", "minSalary")
	}
	hi, ok := validate.Money(c.Query("maxSalary"))
	if !ok {
		return invalid(c, "employee.by_salary", "maxSalary")
	}
	out, err := h.Employees.BySalaryRange(c.UserContext(), lo, hi)
	if err != nil {
		return fail(c, "employee.by_salary", err, nil)
	}
	return c.JSON(out)
}

func (h *EmployeeHandler) SalespeopleWithNoSales(c *fiber.Ctx) error {
	out, err := h.Employees.SalespeopleWithNoSales(c.UserContext())
	if err != nil {
		return fail(c, "employee.no_sales", err, nil)
	}
	return c.JSON(out)
}

// GET /api/employees/salespeople/active?startDate=&endDate=
func (h *EmployeeHandler) SalespeopleActive(c *fiber.Ctx) error {
	start, end, bad := dateRange(c)
	if bad != "" {
		return invalid(c, "employee.active", bad)
	}
	out, err := h.Employees.SalespeopleActiveBetween(c.UserContext(), start, end)
	if err != nil {
		return fail(c, "employee.active", err, nil)
	}
	return c.JSON(out)
}
