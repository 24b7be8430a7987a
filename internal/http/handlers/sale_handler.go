package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"dealership/internal/domain"
	applog "dealership/internal/log"
	"dealership/internal/services"
	"dealership/internal/validate"
)

type SaleHandler struct {
	Sales *services.SaleService
}

type processSaleRequest struct {
	CarID         string              `json:"carId"`
	CustomerID    string              `json:"customerId"`
	SalespersonID string              `json:"salespersonId"`
	EmployeeID    string              `json:"employeeId"` // older clients
	SalePrice     decimal.NullDecimal `json:"salePrice"`
	Tax           decimal.NullDecimal `json:"tax"`
	PaymentMethod string              `json:"paymentMethod"`
}

// POST /api/sales/process
func (h *SaleHandler) Process(c *fiber.Ctx) error {
	const action = "sale.process"
	var req processSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, action, "body")
	}
	if req.SalespersonID == "" {
		req.SalespersonID = req.EmployeeID
	}
	carID, ok := validate.ID(req.CarID)
	if !ok {
		return invalid(c, action, "carId")
	}
	customerID, ok := validate.ID(req.CustomerID)
	if !ok {
		return invalid(c, action, "customerId")
	}
	employeeID, ok := validate.ID(req.SalespersonID)
	if !ok {
		return invalid(c, action, "salespersonId")
	}
	if !req.SalePrice.Valid || !validate.MoneyOK(req.SalePrice.Decimal) {
		return invalid(c, action, "salePrice")
	}
	if !req.Tax.Valid || !validate.MoneyOK(req.Tax.Decimal) {
		return invalid(c, action, "tax")
	}
	method, ok := validate.PaymentMethod(req.PaymentMethod)
	if !ok {
		return invalid(c, action, "paymentMethod")
	}

	fields := map[string]any{"car_id": carID, "customer_id": customerID, "salesperson_id": employeeID}
	sale, err := h.Sales.ProcessSale(c.UserContext(), carID, customerID, employeeID, req.SalePrice.Decimal, req.Tax.Decimal, method)
	if err != nil {
		return fail(c, action, err, fields)
	}
	c.Status(fiber.StatusCreated)
	fields["sale_id"] = sale.ID
	fields["total"] = sale.TotalPrice.StringFixed(2)
	applog.Audit(c, action, fields)
	return c.JSON(sale)
}

type saleRequest struct {
	CarID         string              `json:"carId"`
	CustomerID    string              `json:"customerId"`
	SalespersonID string              `json:"salespersonId"`
	SaleDate      string              `json:"saleDate"`
	SalePrice     decimal.NullDecimal `json:"salePrice"`
	Tax           decimal.NullDecimal `json:"tax"`
	PaymentMethod string              `json:"paymentMethod"`
	SaleStatus    string              `json:"saleStatus"`
}

// terms validates the fields shared by create and update. It returns the
// name of the first bad field, or "".
func (r saleRequest) terms() (services.SaleTerms, string) {
	var t services.SaleTerms
	if !r.SalePrice.Valid || !validate.MoneyOK(r.SalePrice.Decimal) {
		return t, "salePrice"
	}
	if !r.Tax.Valid || !validate.MoneyOK(r.Tax.Decimal) {
		return t, "tax"
	}
	method, ok := validate.PaymentMethod(r.PaymentMethod)
	if !ok {
		return t, "paymentMethod"
	}
	if r.SaleDate != "" {
		d, ok := validate.Date(r.SaleDate)
		if !ok {
			return t, "saleDate"
		}
		t.SaleDate = d
	}
	t.SalePrice, t.Tax, t.PaymentMethod = r.SalePrice.Decimal, r.Tax.Decimal, method
	return t, ""
}

// POST /api/sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	const action = "sale.record"
	var req saleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, action, "body")
	}
	in := domain.Sale{}
	var ok bool
	if in.CarID, ok = validate.ID(req.CarID); !ok {
		return invalid(c, action, "carId")
	}
	if in.CustomerID, ok = validate.ID(req.CustomerID); !ok {
		return invalid(c, action, "customerId")
	}
	if in.SalespersonID, ok = validate.ID(req.SalespersonID); !ok {
		return invalid(c, action, "salespersonId")
	}
	if req.SaleStatus != "" {
		st, err := domain.ParseSaleStatus(req.SaleStatus)
		if err != nil {
			return invalid(c, action, "saleStatus")
		}
		in.Status = st
	}
	t, bad := req.terms()
	if bad != "" {
		return invalid(c, action, bad)
	}
	in.SetTerms(t.SalePrice, t.Tax)
	in.PaymentMethod, in.SaleDate = t.PaymentMethod, t.SaleDate

	sale, err := h.Sales.RecordSale(c.UserContext(), in)
	if err != nil {
		return fail(c, action, err, map[string]any{"car_id": in.CarID})
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, action, map[string]any{"sale_id": sale.ID, "car_id": sale.CarID, "status": sale.Status})
	return c.JSON(sale)
}

// PUT /api/sales/:id
func (h *SaleHandler) Update(c *fiber.Ctx) error {
	const action = "sale.update"
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, action, "id")
	}
	var req saleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, action, "body")
	}
	t, bad := req.terms()
	if bad != "" {
		return invalid(c, action, bad)
	}
	sale, err := h.Sales.UpdateSale(c.UserContext(), id, t)
	if err != nil {
		return fail(c, action, err, map[string]any{"sale_id": id})
	}
	applog.Audit(c, action, map[string]any{"sale_id": id, "total": sale.TotalPrice.StringFixed(2)})
	return c.JSON(sale)
}

// DELETE /api/sales/:id
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	const action = "sale.delete"
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, action, "id")
	}
	if err := h.Sales.DeleteSale(c.UserContext(), id); err != nil {
		return fail(c, action, err, map[string]any{"sale_id": id})
	}
	c.Status(fiber.StatusNoContent)
	applog.Audit(c, action, map[string]any{"sale_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/sales/:id/status  {"status": "Completed"}
func (h *SaleHandler) ChangeStatus(c *fiber.Ctx) error {
	const action = "sale.status"
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, action, "id")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, action, "body")
	}
	next, err := domain.ParseSaleStatus(req.Status)
	if err != nil {
		return invalid(c, action, "status")
	}
	sale, err := h.Sales.ChangeStatus(c.UserContext(), id, next)
	if err != nil {
		return fail(c, action, err, map[string]any{"sale_id": id, "status": next})
	}
	applog.Audit(c, action, map[string]any{"sale_id": id, "status": sale.Status})
	return c.JSON(sale)
}

// POST /api/sales/:id/cancel
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	const action = "sale.cancel"
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, action, "id")
	}
	sale, err := h.Sales.CancelSale(c.UserContext(), id)
	if err != nil {
		return fail(c, action, err, map[string]any{"sale_id": id})
	}
	applog.Audit(c, action, map[string]any{"sale_id": id, "car_id": sale.CarID})
	return c.JSON(sale)
}

// GET /api/sales/:id/commission
func (h *SaleHandler) Commission(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, "sale.commission", "id")
	}
	amt, err := h.Sales.CommissionFor(c.UserContext(), id)
	if err != nil {
		return fail(c, "sale.commission", err, map[string]any{"sale_id": id})
	}
	return c.JSON(fiber.Map{"saleId": id, "commission": amt.StringFixed(2)})
}

// GET /api/sales/:id
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, "sale.get", "id")
	}
	sale, err := h.Sales.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "sale.get", err, map[string]any{"sale_id": id})
	}
	return c.JSON(sale)
}

func (h *SaleHandler) List(c *fiber.Ctx) error {
	out, err := h.Sales.List(c.UserContext())
	if err != nil {
		return fail(c, "sale.list", err, nil)
	}
	return c.JSON(out)
}

func (h *SaleHandler) ByCustomer(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, "sale.by_customer", "id")
	}
	out, err := h.Sales.ByCustomer(c.UserContext(), id)
	if err != nil {
		return fail(c, "sale.by_customer", err, map[string]any{"customer_id": id})
	}
	return c.JSON(out)
}

func (h *SaleHandler) BySalesperson(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, "sale.by_salesperson", "id")
	}
	out, err := h.Sales.BySalesperson(c.UserContext(), id)
	if err != nil {
		return fail(c, "sale.by_salesperson", err, map[string]any{"employee_id": id})
	}
	return c.JSON(out)
}

func (h *SaleHandler) ByCar(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, "sale.by_car", "id")
	}
	sale, err := h.Sales.ByCar(c.UserContext(), id)
	if err != nil {
		return fail(c, "sale.by_car", err, map[string]any{"car_id": id})
	}
	return c.JSON(sale)
}

func (h *SaleHandler) ByDate(c *fiber.Ctx) error {
	date, ok := validate.Date(c.Params("date"))
	if !ok {
		return invalid(c, "sale.by_date", "date")
	}
	out, err := h.Sales.ByDate(c.UserContext(), date)
	if err != nil {
		return fail(c, "sale.by_date", err, nil)
	}
	return c.JSON(out)
}

// GET /api/sales/date-range?startDate=&endDate=
func (h *SaleHandler) ByDateRange(c *fiber.Ctx) error {
	start, ok := validate.Date(c.Query("startDate"))
	if !ok {
		return invalid(c, "sale.by_date_range", "startDate")
	}
	end, ok := validate.Date(c.Query("endDate"))
	if !ok {
		return invalid(c, "sale.by_date_range", "endDate")
	}
	out, err := h.Sales.ByDateRange(c.UserContext(), start, end)
	if err != nil {
		return fail(c, "sale.by_date_range", err, nil)
	}
	return c.JSON(out)
}

func (h *SaleHandler) ByPaymentMethod(c *fiber.Ctx) error {
	method, ok := validate.PaymentMethod(c.Params("method"))
	if !ok {
		return invalid(c, "sale.by_payment", "method")
	}
	out, err := h.Sales.ByPaymentMethod(c.UserContext(), method)
	if err != nil {
		return fail(c, "sale.by_payment", err, nil)
	}
	return c.JSON(out)
}

func (h *SaleHandler) ByStatus(c *fiber.Ctx) error {
	st, err := domain.ParseSaleStatus(c.Params("status"))
	if err != nil {
		return invalid(c, "sale.by_status", "status")
	}
	out, err := h.Sales.ByStatus(c.UserContext(), st)
	if err != nil {
		return fail(c, "sale.by_status", err, nil)
	}
	return c.JSON(out)
}

func (h *SaleHandler) TotalAbove(c *fiber.Ctx) error {
	floor, ok := validate.Money(c.Params("price"))
	if !ok {
		return invalid(c, "sale.total_above", "price")
	}
	out, err := h.Sales.TotalAbove(c.UserContext(), floor)
	if err != nil {
		return fail(c, "sale.total_above", err, nil)
	}
	return c.JSON(out)
}

func (h *SaleHandler) Today(c *fiber.Ctx) error {
	out, err := h.Sales.Today(c.UserContext())
	if err != nil {
		return fail(c, "sale.today", err, nil)
	}
	return c.JSON(out)
}
