package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"dealership/internal/domain"
	applog "dealership/internal/log"
	"dealership/internal/services"
	"dealership/internal/validate"
)

type CustomerHandler struct {
	Customers *services.CustomerService
}

type customerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (r customerRequest) customer() (domain.Customer, string) {
	var c domain.Customer
	var ok bool
	if c.FirstName, ok = validate.Name(r.FirstName); !ok {
		return c, "firstName"
	}
	if c.LastName, ok = validate.Name(r.LastName); !ok {
		return c, "lastName"
	}
	if c.Email, ok = validate.Email(r.Email); !ok {
		return c, "email"
	}
	if c.Phone, ok = validate.Phone(r.Phone); !ok {
		return c, "phone"
	}
	if c.Address, ok = validate.Text(r.Address, 200); !ok {
		return c, "address"
	}
	return c, ""
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	const action = "customer.create"
	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, action, "body")
	}
	in, bad := req.customer()
	if bad != "" {
		return invalid(c, action, bad)
	}
	cust, err := h.Customers.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, action, err, nil)
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, action, map[string]any{"customer_id": cust.ID})
	return c.JSON(cust)
}

func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	const action = "customer.update"
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, action, "id")
	}
	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, action, "body")
	}
	in, bad := req.customer()
	if bad != "" {
		return invalid(c, action, bad)
	}
	cust, err := h.Customers.Update(c.UserContext(), id, in)
	if err != nil {
		return fail(c, action, err, map[string]any{"customer_id": id})
	}
	applog.Audit(c, action, map[string]any{"customer_id": id})
	return c.JSON(cust)
}

func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	const action = "customer.delete"
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, action, "id")
	}
	if err := h.Customers.Delete(c.UserContext(), id); err != nil {
		return fail(c, action, err, map[string]any{"customer_id": id})
	}
	c.Status(fiber.StatusNoContent)
	applog.Audit(c, action, map[string]any{"customer_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, "customer.get", "id")
	}
	cust, err := h.Customers.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "customer.get", err, map[string]any{"customer_id": id})
	}
	return c.JSON(cust)
}

func (h *CustomerHandler) ByEmail(c *fiber.Ctx) error {
	email, ok := validate.Email(c.Params("email"))
	if !ok {
		return invalid(c, "customer.by_email", "email")
	}
	cust, err := h.Customers.GetByEmail(c.UserContext(), email)
	if err != nil {
		return fail(c, "customer.by_email", err, nil)
	}
	return c.JSON(cust)
}

func (h *CustomerHandler) ByPhone(c *fiber.Ctx) error {
	phone, ok := validate.Phone(c.Params("phone"))
	if !ok || phone == "" {
		return invalid(c, "customer.by_phone", "phone")
	}
	cust, err := h.Customers.GetByPhone(c.UserContext(), phone)
	if err != nil {
		return fail(c, "customer.by_phone", err, nil)
	}
	return c.JSON(cust)
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	out, err := h.Customers.List(c.UserContext())
	if err != nil {
		return fail(c, "customer.list", err, nil)
	}
	return c.JSON(out)
}

// GET /api/customers/search?firstName=&lastName=
func (h *CustomerHandler) Search(c *fiber.Ctx) error {
	first, last, bad := nameQuery(c)
	if bad != "" {
		return invalid(c, "customer.search", bad)
	}
	out, err := h.Customers.FindByName(c.UserContext(), first, last)
	if err != nil {
		return fail(c, "customer.search", err, nil)
	}
	return c.JSON(out)
}

// nameQuery reads the optional firstName/lastName query pair.
func nameQuery(c *fiber.Ctx) (first, last, bad string) {
	first, last = strings.TrimSpace(c.Query("firstName")), strings.TrimSpace(c.Query("lastName"))
	if first != "" {
		if _, ok := validate.Name(first); !ok {
			return "", "", "firstName"
		}
	}
	if last != "" {
		if _, ok := validate.Name(last); !ok {
			return "", "", "lastName"
		}
	}
	return first, last, ""
}

func (h *CustomerHandler) WithPurchases(c *fiber.Ctx) error {
	out, err := h.Customers.WithPurchases(c.UserContext())
	if err != nil {
		return fail(c, "customer.with_purchases", err, nil)
	}
	return c.JSON(out)
}

func (h *CustomerHandler) RegisteredAfter(c *fiber.Ctx) error {
	date, ok := validate.Date(c.Params("date"))
	if !ok {
		return invalid(c, "customer.registered_after", "date")
	}
	out, err := h.Customers.RegisteredAfter(c.UserContext(), date)
	if err != nil {
		return fail(c, "customer.registered_after", err, nil)
	}
	return c.JSON(out)
}
