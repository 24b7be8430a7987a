package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "dealership/internal/log"
)

// Register mounts the JSON API under /api plus /healthz and the catch-all
// 404. Fixed paths go before ":id" paths, fiber matches in order.
func (d *Deps) Register(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api", Timeout(d.RequestTimeout))

	processLimiter := limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|sale.process"
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Status(fiber.StatusTooManyRequests)
			applog.Security(c, "rate.sale.process.hit", nil)
			return errorJSON(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
		},
	})

	sales := api.Group("/sales")
	sh := d.SaleHandler
	sales.Get("/", sh.List)
	sales.Post("/", sh.Create)
	sales.Post("/process", processLimiter, sh.Process)
	sales.Get("/today", sh.Today)
	sales.Get("/date-range", sh.ByDateRange)
	sales.Get("/date/:date", sh.ByDate)
	sales.Get("/customer/:id", sh.ByCustomer)
	sales.Get("/salesperson/:id", sh.BySalesperson)
	sales.Get("/car/:id", sh.ByCar)
	sales.Get("/payment-method/:method", sh.ByPaymentMethod)
	sales.Get("/status/:status", sh.ByStatus)
	sales.Get("/total-price-greater-than/:price", sh.TotalAbove)
	sales.Get("/:id/commission", sh.Commission)
	sales.Post("/:id/status", sh.ChangeStatus)
	sales.Post("/:id/cancel", sh.Cancel)
	sales.Get("/:id", sh.Get)
	sales.Put("/:id", sh.Update)
	sales.Delete("/:id", sh.Delete)

	cars := api.Group("/cars")
	ch := d.CarHandler
	cars.Get("/", ch.List)
	cars.Post("/", ch.Create)
	cars.Get("/available", ch.Available)
	cars.Get("/search", ch.Search)
	cars.Get("/recently-added", ch.RecentlyAdded)
	cars.Get("/price-range", ch.ByPriceRange)
	cars.Get("/make/:make", ch.ByMake)
	cars.Get("/model/:model", ch.ByModel)
	cars.Get("/year/:year", ch.ByYear)
	cars.Get("/condition/:condition", ch.ByCondition)
	cars.Get("/vin/:vin", ch.ByVIN)
	cars.Get("/low-mileage/:max", ch.LowMileage)
	cars.Get("/:id", ch.Get)
	cars.Put("/:id", ch.Update)
	cars.Delete("/:id", ch.Delete)

	customers := api.Group("/customers")
	cu := d.CustomerHandler
	customers.Get("/", cu.List)
	customers.Post("/", cu.Create)
	customers.Get("/search", cu.Search)
	customers.Get("/with-purchases", cu.WithPurchases)
	customers.Get("/email/:email", cu.ByEmail)
	customers.Get("/phone/:phone", cu.ByPhone)
	customers.Get("/registered-after/:date", cu.RegisteredAfter)
	customers.Get("/:id", cu.Get)
	customers.Put("/:id", cu.Update)
	customers.Delete("/:id", cu.Delete)

	employees := api.Group("/employees")
	eh := d.EmployeeHandler
	employees.Get("/", eh.List)
	employees.Post("/", eh.Create)
	employees.Get("/search", eh.Search)
	employees.Get("/hire-date-range", eh.ByHireDateRange)
	employees.Get("/salary-range", eh.BySalaryRange)
	employees.Get("/salespeople/no-sales", eh.SalespeopleWithNoSales)
	employees.Get("/salespeople/active", eh.SalespeopleActive)
	employees.Get("/email/:email", eh.ByEmail)
	employees.Get("/position/:position", eh.ByPosition)
	employees.Get("/:id", eh.Get)
	employees.Put("/:id", eh.Update)
	employees.Delete("/:id", eh.Delete)

	app.Use(NotFound)
}
