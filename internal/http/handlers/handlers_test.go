package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealership/internal/config"
	"dealership/internal/events"
	"dealership/internal/http/handlers"
	"dealership/internal/repos"
)

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	ReqID  string         `json:"req_id"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) *logEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}

// newApp wires the real routes over a seeded in-memory store. extra runs
// before the catch-all 404 is mounted.
func newApp(t *testing.T, extra func(app *fiber.App)) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	if extra != nil {
		extra(app)
	}
	handlers.NewDeps(db, config.Config{RequestTimeout: time.Second}, events.Nop{}).Register(app)
	return app, db
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	return resp.StatusCode, m, raw
}

const processBody = `{"carId":"car-001","customerId":"cust-002","salespersonId":"emp-001","salePrice":15000,"tax":1200,"paymentMethod":"Cash"}`

func TestProcessSaleHTTP(t *testing.T) {
	app, _ := newApp(t, nil)

	var status int
	var body map[string]any
	entries := captureLogs(t, func() {
		status, body, _ = do(t, app, http.MethodPost, "/api/sales/process", processBody)
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "car-001", body["carId"])
	assert.Equal(t, "16200.00", body["totalPrice"])
	assert.Equal(t, "Completed", body["saleStatus"])

	audit := findAction(entries, "sale.process")
	require.NotNil(t, audit, "expected audit entry")
	assert.Equal(t, "audit", audit.Level)
	assert.NotEmpty(t, audit.ReqID)
	assert.Equal(t, "16200.00", audit.Fields["total"])

	_, car, _ := do(t, app, http.MethodGet, "/api/cars/car-001", "")
	assert.Equal(t, true, car["sold"])

	status, body, _ = do(t, app, http.MethodPost, "/api/sales/process", processBody)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.EqualValues(t, fiber.StatusConflict, body["status"])
	assert.Equal(t, "Conflict", body["error"])
}

func TestProcessSaleRejections(t *testing.T) {
	app, _ := newApp(t, nil)

	status, body, _ := do(t, app, http.MethodPost, "/api/sales/process",
		`{"carId":"car-002","customerId":"cust-002","employeeId":"emp-004","salePrice":1,"tax":0,"paymentMethod":"Cash"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body["message"], "not a salesperson")

	status, body, _ = do(t, app, http.MethodPost, "/api/sales/process",
		`{"carId":"car-999","customerId":"cust-002","salespersonId":"emp-001","salePrice":1,"tax":0,"paymentMethod":"Cash"}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Car not found with id: car-999", body["message"])

	entries := captureLogs(t, func() {
		status, body, _ = do(t, app, http.MethodPost, "/api/sales/process",
			`{"carId":"car-002","customerId":"cust-002","salespersonId":"emp-001","salePrice":-5,"tax":0,"paymentMethod":"Cash"}`)
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid salePrice", body["message"])
	e := findAction(entries, "validation.fail")
	require.NotNil(t, e)
	assert.Equal(t, "warn", e.Level)
	assert.Equal(t, "salePrice", e.Fields["field"])

	status, _, _ = do(t, app, http.MethodPost, "/api/sales/process", `{"carId":`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, car, _ := do(t, app, http.MethodGet, "/api/cars/car-002", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, car["sold"], "rejected sales leave the car available")
}

func TestDeleteSaleReleasesCar(t *testing.T) {
	app, _ := newApp(t, nil)

	status, _, _ := do(t, app, http.MethodDelete, "/api/sales/sale-001", "")
	require.Equal(t, fiber.StatusNoContent, status)

	_, car, _ := do(t, app, http.MethodGet, "/api/cars/car-005", "")
	assert.Equal(t, false, car["sold"])

	status, _, _ = do(t, app, http.MethodDelete, "/api/sales/sale-001", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCarRoutes(t *testing.T) {
	app, _ := newApp(t, nil)

	status, body, _ := do(t, app, http.MethodDelete, "/api/cars/car-005", "")
	assert.Equal(t, fiber.StatusConflict, status, "car is referenced by a sale")
	assert.NotNil(t, body["message"])

	status, _, raw := do(t, app, http.MethodGet, "/api/cars/available", "")
	require.Equal(t, fiber.StatusOK, status)
	var avail []map[string]any
	require.NoError(t, json.Unmarshal(raw, &avail))
	assert.Len(t, avail, 4)

	status, _, _ = do(t, app, http.MethodGet, "/api/cars/price-range?minPrice=30000&maxPrice=20000", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _, raw = do(t, app, http.MethodGet, "/api/cars/search?make=honda", "")
	require.Equal(t, fiber.StatusOK, status)
	var found []map[string]any
	require.NoError(t, json.Unmarshal(raw, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "car-002", found[0]["id"])
}

func TestSaleStatusRoutes(t *testing.T) {
	app, _ := newApp(t, nil)

	status, body, _ := do(t, app, http.MethodPost, "/api/sales/sale-001/cancel", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Cancelled", body["saleStatus"])

	status, _, _ = do(t, app, http.MethodPost, "/api/sales/sale-001/status", `{"status":"Completed"}`)
	assert.Equal(t, fiber.StatusConflict, status, "cancelled is terminal")

	status, _, _ = do(t, app, http.MethodPost, "/api/sales/sale-001/status", `{"status":"Shipped"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body, _ = do(t, app, http.MethodGet, "/api/sales/sale-001/commission", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "900.00", body["commission"])
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	app, _ := newApp(t, nil)

	status, body, _ := do(t, app, http.MethodGet, "/nope", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Not Found", body["error"])
	assert.Equal(t, "Page not found", body["message"])
}

func TestErrorHandlerFriendlyMessage(t *testing.T) {
	app, _ := newApp(t, func(app *fiber.App) {
		app.Get("/err", func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
		})
	})

	var status int
	var raw []byte
	entries := captureLogs(t, func() {
		status, _, raw = do(t, app, http.MethodGet, "/err", "")
	})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	s := string(raw)
	assert.Contains(t, s, "Something went wrong")
	assert.NotContains(t, s, "db timeout")
	assert.NotContains(t, s, "secret")
	assert.NotNil(t, findAction(entries, "server.error"))
}

func TestStorageFailureIs503(t *testing.T) {
	app, db := newApp(t, nil)
	require.NoError(t, db.Close())

	status, body, _ := do(t, app, http.MethodGet, "/api/sales/sale-001", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.NotContains(t, body["message"], "sql")
}

func TestProcessRateLimit(t *testing.T) {
	app, _ := newApp(t, nil)

	var last int
	entries := captureLogs(t, func() {
		for i := 0; i < 31; i++ {
			last, _, _ = do(t, app, http.MethodPost, "/api/sales/process", `{}`)
			if i < 30 && last == fiber.StatusTooManyRequests {
				t.Fatalf("hit rate limit too early at %d", i)
			}
		}
	})
	assert.Equal(t, fiber.StatusTooManyRequests, last)
	hit := findAction(entries, "rate.sale.process.hit")
	require.NotNil(t, hit)
	assert.Equal(t, "warn", hit.Level)

	status, _, _ := do(t, app, http.MethodGet, "/api/sales/", "")
	assert.Equal(t, fiber.StatusOK, status, "other routes keep their own budget")
}
