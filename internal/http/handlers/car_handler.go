package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"dealership/internal/domain"
	applog "dealership/internal/log"
	"dealership/internal/services"
	"dealership/internal/validate"
)

type CarHandler struct {
	Cars *services.CarService
}

type carRequest struct {
	Make      string              `json:"make"`
	Model     string              `json:"model"`
	Year      int                 `json:"year"`
	VIN       string              `json:"vin"`
	Color     string              `json:"color"`
	Condition string              `json:"condition"`
	Price     decimal.NullDecimal `json:"price"`
	Mileage   int                 `json:"mileage"`
	DateAdded string              `json:"dateAdded"`
}

// car returns the validated car, or the name of the first bad field.
func (r carRequest) car() (domain.Car, string) {
	var c domain.Car
	var ok bool
	if c.Make, ok = validate.Name(r.Make); !ok {
		return c, "make"
	}
	if c.Model, ok = validate.Text(r.Model, 50); !ok || c.Model == "" {
		return c, "model"
	}
	if !validate.YearOK(r.Year) {
		return c, "year"
	}
	c.Year = r.Year
	if c.VIN, ok = validate.VIN(r.VIN); !ok {
		return c, "vin"
	}
	if c.Color, ok = validate.Text(r.Color, 30); !ok {
		return c, "color"
	}
	cond, err := domain.ParseCondition(r.Condition)
	if err != nil {
		return c, "condition"
	}
	c.Condition = cond
	if !r.Price.Valid || !validate.MoneyOK(r.Price.Decimal) {
		return c, "price"
	}
	c.Price = r.Price.Decimal
	if r.Mileage < 0 {
		return c, "mileage"
	}
	c.Mileage = r.Mileage
	if r.DateAdded != "" {
		if c.DateAdded, ok = validate.Date(r.DateAdded); !ok {
			return c, "dateAdded"
		}
	}
	return c, ""
}

// POST /api/cars
func (h *CarHandler) Create(c *fiber.Ctx) error {
	const action = "car.create"
	var req carRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, action, "body")
	}
	in, bad := req.car()
	if bad != "" {
		return invalid(c, action, bad)
	}
	car, err := h.Cars.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, action, err, map[string]any{"vin": in.VIN})
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, action, map[string]any{"car_id": car.ID, "vin": car.VIN})
	return c.JSON(car)
}

// PUT /api/cars/:id
func (h *CarHandler) Update(c *fiber.Ctx) error {
	const action = "car.update"
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, action, "id")
	}
	var req carRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, action, "body")
	}
	in, bad := req.car()
	if bad != "" {
		return invalid(c, action, bad)
	}
	car, err := h.Cars.Update(c.UserContext(), id, in)
	if err != nil {
		return fail(c, action, err, map[string]any{"car_id": id})
	}
	applog.Audit(c, action, map[string]any{"car_id": id})
	return c.JSON(car)
}

// DELETE /api/cars/:id
func (h *CarHandler) Delete(c *fiber.Ctx) error {
	const action = "car.delete"
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, action, "id")
	}
	if err := h.Cars.Delete(c.UserContext(), id); err != nil {
		return fail(c, action, err, map[string]any{"car_id": id})
	}
	c.Status(fiber.StatusNoContent)
	applog.Audit(c, action, map[string]any{"car_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CarHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return invalid(c, "car.get", "id")
	}
	car, err := h.Cars.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "car.get", err, map[string]any{"car_id": id})
	}
	return c.JSON(car)
}

func (h *CarHandler) ByVIN(c *fiber.Ctx) error {
	vin, ok := validate.VIN(c.Params("vin"))
	if !ok {
		return invalid(c, "car.by_vin", "vin")
	}
	car, err := h.Cars.GetByVIN(c.UserContext(), vin)
	if err != nil {
		return fail(c, "car.by_vin", err, map[string]any{"vin": vin})
	}
	return c.JSON(car)
}

func (h *CarHandler) List(c *fiber.Ctx) error {
	out, err := h.Cars.List(c.UserContext())
	if err != nil {
		return fail(c, "car.list", err, nil)
	}
	return c.JSON(out)
}

func (h *CarHandler) Available(c *fiber.Ctx) error {
	out, err := h.Cars.Available(c.UserContext())
	if err != nil {
		return fail(c, "car.available", err, nil)
	}
	return c.JSON(out)
}

// GET /api/cars/search?make=&model=&year=
func (h *CarHandler) Search(c *fiber.Ctx) error {
	const action = "car.search"
	carMake, model := strings.TrimSpace(c.Query("make")), strings.TrimSpace(c.Query("model"))
	if carMake != "" {
		if _, ok := validate.Name(carMake); !ok {
			return invalid(c, action, "make")
		}
	}
	if len(model) > 50 {
		return invalid(c, action, "model")
	}
	year := 0
	if ys := c.Query("year"); ys != "" {
		y, ok := validate.Year(ys)
		if !ok {
			return invalid(c, action, "year")
		}
		year = y
	}
	out, err := h.Cars.Search(c.UserContext(), carMake, model, year)
	if err != nil {
		return fail(c, action, err, nil)
	}
	return c.JSON(out)
}

func (h *CarHandler) ByMake(c *fiber.Ctx) error {
	carMake, ok := validate.Name(c.Params("make"))
	if !ok {
		return invalid(c, "car.by_make", "make")
	}
	out, err := h.Cars.ByMake(c.UserContext(), carMake)
	if err != nil {
		return fail(c, "car.by_make", err, nil)
	}
	return c.JSON(out)
}

func (h *CarHandler) ByModel(c *fiber.Ctx) error {
	model, ok := validate.Text(c.Params("model"), 50)
	if !ok || model == "" {
		return invalid(c, "car.by_model", "model")
	}
	out, err := h.Cars.ByModel(c.UserContext(), model)
	if err != nil {
		return fail(c, "car.by_model", err, nil)
	}
	return c.JSON(out)
}

func (h *CarHandler) ByYear(c *fiber.Ctx) error {
	year, ok := validate.Year(c.Params("year"))
	if !ok {
		return invalid(c, "car.by_year", "year")
	}
	out, err := h.Cars.ByYear(c.UserContext(), year)
	if err != nil {
		return fail(c, "car.by_year", err, nil)
	}
	return c.JSON(out)
}

// GET /api/cars/price-range?minPrice=&maxPrice=
func (h *CarHandler) ByPriceRange(c *fiber.Ctx) error {
	lo, ok := validate.Money(c.Query("minPrice"))
	if !ok {
		return invalid(c, "car.by_price", "minPrice")
	}
	hi, ok := validate.Money(c.Query("maxPrice"))
	if !ok {
		return invalid(c, "car.by_price", "maxPrice")
	}
	out, err := h.Cars.ByPriceRange(c.UserContext(), lo, hi)
	if err != nil {
		return fail(c, "car.by_price", err, nil)
	}
	return c.JSON(out)
}

func (h *CarHandler) ByCondition(c *fiber.Ctx) error {
	cond, err := domain.ParseCondition(c.Params("condition"))
	if err != nil {
		return invalid(c, "car.by_condition", "condition")
	}
	out, err := h.Cars.ByCondition(c.UserContext(), cond)
	if err != nil {
		return fail(c, "car.by_condition", err, nil)
	}
	return c.JSON(out)
}

func (h *CarHandler) LowMileage(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Params("max"))
	if err != nil || limit < 0 {
		return invalid(c, "car.low_mileage", "max")
	}
	out, err := h.Cars.LowMileage(c.UserContext(), limit)
	if err != nil {
		return fail(c, "car.low_mileage", err, nil)
	}
	return c.JSON(out)
}

func (h *CarHandler) RecentlyAdded(c *fiber.Ctx) error {
	out, err := h.Cars.RecentlyAdded(c.UserContext())
	if err != nil {
		return fail(c, "car.recent", err, nil)
	}
	return c.JSON(out)
}
