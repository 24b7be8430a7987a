package repos_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealership/internal/domain"
	"dealership/internal/repos"
)

func seeded(t *testing.T) (*sqlx.DB, *repos.Store) {
	t.Helper()
	db, err := repos.OpenDB(":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, repos.NewStore(db)
}

func TestSeedLoadsDemoData(t *testing.T) {
	_, st := seeded(t)
	ctx := context.Background()

	cars, err := st.Cars.List(ctx, repos.CarFilter{})
	require.NoError(t, err)
	assert.Len(t, cars, 5)

	avail, err := st.Cars.List(ctx, repos.CarFilter{AvailableOnly: true})
	require.NoError(t, err)
	assert.Len(t, avail, 4)

	emp, err := st.Employees.Get(ctx, "emp-001")
	require.NoError(t, err)
	require.True(t, emp.CommissionRate.Valid)
	assert.True(t, emp.CommissionRate.Decimal.Equal(decimal.RequireFromString("0.05")))

	noRate, err := st.Employees.Get(ctx, "emp-002")
	require.NoError(t, err)
	assert.False(t, noRate.CommissionRate.Valid)

	sale, err := st.Sales.Get(ctx, "sale-001")
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusCompleted, sale.Status)
	assert.True(t, sale.TotalPrice.Equal(decimal.RequireFromString("19440")))
}

func TestOpenDBWithoutSeedIsEmpty(t *testing.T) {
	db, err := repos.OpenDB(":memory:", false)
	require.NoError(t, err)
	defer db.Close()

	cars, err := repos.NewCarRepo(db).List(context.Background(), repos.CarFilter{})
	require.NoError(t, err)
	assert.NotNil(t, cars)
	assert.Empty(t, cars)
}

func TestCarFilter(t *testing.T) {
	_, st := seeded(t)
	ctx := context.Background()

	got, err := st.Cars.List(ctx, repos.CarFilter{Make: "toyota"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "car-001", got[0].ID)

	got, err = st.Cars.List(ctx, repos.CarFilter{
		MinPrice: decimal.NewNullDecimal(decimal.RequireFromString("19000")),
		MaxPrice: decimal.NewNullDecimal(decimal.RequireFromString("32000")),
	})
	require.NoError(t, err)
	assert.Len(t, got, 3) // Camry, Civic, Model 3

	got, err = st.Cars.List(ctx, repos.CarFilter{MaxMileage: 9800})
	require.NoError(t, err)
	require.Len(t, got, 1, "bound is exclusive")
	assert.Equal(t, "car-001", got[0].ID)

	got, err = st.Cars.List(ctx, repos.CarFilter{NewestFirst: true})
	require.NoError(t, err)
	assert.Equal(t, "car-001", got[0].ID)

	car, err := st.Cars.GetByVIN(ctx, "4t1bf1fk5cu123456")
	require.NoError(t, err)
	assert.Equal(t, "car-001", car.ID)
}

func TestMarkSoldIsCompareAndSet(t *testing.T) {
	_, st := seeded(t)
	ctx := context.Background()

	require.NoError(t, st.Cars.MarkSold(ctx, "car-001"))
	err := st.Cars.MarkSold(ctx, "car-001")
	assert.True(t, errors.Is(err, repos.ErrConflict), "got %v", err)

	changed, err := st.Cars.MarkAvailable(ctx, "car-001")
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = st.Cars.MarkAvailable(ctx, "car-001")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCarUpdateLeavesSoldFlag(t *testing.T) {
	_, st := seeded(t)
	ctx := context.Background()

	car, err := st.Cars.Get(ctx, "car-005")
	require.NoError(t, err)
	require.True(t, car.Sold)

	car.Sold = false
	car.Color = "Soul Red"
	require.NoError(t, st.Cars.Update(ctx, car))

	again, err := st.Cars.Get(ctx, "car-005")
	require.NoError(t, err)
	assert.True(t, again.Sold)
	assert.Equal(t, "Soul Red", again.Color)

	car.ID = "car-404"
	assert.ErrorIs(t, st.Cars.Update(ctx, car), sql.ErrNoRows)
}

func TestConstraintViolations(t *testing.T) {
	_, st := seeded(t)
	ctx := context.Background()

	err := st.Cars.Delete(ctx, "car-005")
	require.Error(t, err)
	assert.True(t, repos.IsForeignKeyViolation(err), "got %v", err)

	dup, err := st.Cars.Get(ctx, "car-001")
	require.NoError(t, err)
	dup.ID = "car-dup"
	err = st.Cars.Insert(ctx, dup)
	require.Error(t, err)
	assert.True(t, repos.IsUniqueViolation(err), "got %v", err)
	assert.False(t, repos.IsForeignKeyViolation(err))
}

func TestForeignKeysHoldOnFreshConnections(t *testing.T) {
	db, err := repos.OpenDB(filepath.Join(t.TempDir(), "dealer.db"), true)
	require.NoError(t, err)
	defer db.Close()
	// drop the connection after every use so each call dials a new one
	db.SetMaxIdleConns(0)

	err = repos.NewCarRepo(db).Delete(context.Background(), "car-005")
	require.Error(t, err)
	assert.True(t, repos.IsForeignKeyViolation(err), "got %v", err)
}

func TestSaleTotalAlwaysDerived(t *testing.T) {
	_, st := seeded(t)
	ctx := context.Background()

	s := domain.Sale{
		ID: "sale-x", CarID: "car-001", CustomerID: "cust-002", SalespersonID: "emp-001",
		SaleDate: "2025-01-02", SalePrice: decimal.RequireFromString("100"), Tax: decimal.RequireFromString("8"),
		TotalPrice:    decimal.RequireFromString("999"), // ignored
		PaymentMethod: "Cash", Status: domain.SaleStatusPending,
	}
	require.NoError(t, st.Sales.Insert(ctx, s))
	got, err := st.Sales.Get(ctx, "sale-x")
	require.NoError(t, err)
	assert.True(t, got.TotalPrice.Equal(decimal.RequireFromString("108")))

	s.ID = "sale-y"
	s.SalePrice, s.Tax = decimal.RequireFromString("0.005"), decimal.RequireFromString("0.005")
	require.NoError(t, st.Sales.Insert(ctx, s))
	got, err = st.Sales.Get(ctx, "sale-y")
	require.NoError(t, err)
	assert.True(t, got.TotalPrice.Equal(got.SalePrice.Add(got.Tax)), "stored total %s", got.TotalPrice)
	require.NoError(t, st.Sales.Delete(ctx, "sale-y"))

	above, err := st.Sales.TotalAbove(ctx, decimal.RequireFromString("108"))
	require.NoError(t, err)
	require.Len(t, above, 1)
	assert.Equal(t, "sale-001", above[0].ID)

	byMethod, err := st.Sales.ByPaymentMethod(ctx, "cash")
	require.NoError(t, err)
	assert.Len(t, byMethod, 1)

	active, err := st.Sales.ActiveByCar(ctx, "car-005", "")
	require.NoError(t, err)
	assert.Len(t, active, 1)
	active, err = st.Sales.ActiveByCar(ctx, "car-005", "sale-001")
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestWithTxRollsBack(t *testing.T) {
	_, st := seeded(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx *repos.Tx) error {
		require.NoError(t, tx.Cars.MarkSold(ctx, "car-002"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	car, err := st.Cars.Get(ctx, "car-002")
	require.NoError(t, err)
	assert.False(t, car.Sold, "write inside failed tx must not persist")

	require.NoError(t, st.WithTx(ctx, func(tx *repos.Tx) error {
		return tx.Cars.MarkSold(ctx, "car-002")
	}))
	car, err = st.Cars.Get(ctx, "car-002")
	require.NoError(t, err)
	assert.True(t, car.Sold)
}

func TestEmployeeQueries(t *testing.T) {
	_, st := seeded(t)
	ctx := context.Background()

	idle, err := st.Employees.SalespeopleWithNoSales(ctx)
	require.NoError(t, err)
	require.Len(t, idle, 1)
	assert.Equal(t, "emp-002", idle[0].ID)

	sp, err := st.Employees.ByPosition(ctx, domain.PositionSalesperson)
	require.NoError(t, err)
	assert.Len(t, sp, 2)

	rich, err := st.Employees.SalaryBetween(ctx, decimal.RequireFromString("50000"), decimal.RequireFromString("80000"))
	require.NoError(t, err)
	assert.Len(t, rich, 2)

	hired, err := st.Employees.HireDateBetween(ctx, "2019-01-01", "2021-12-31")
	require.NoError(t, err)
	assert.Len(t, hired, 2)

	buyers, err := st.Customers.WithPurchases(ctx)
	require.NoError(t, err)
	require.Len(t, buyers, 1)
	assert.Equal(t, "cust-001", buyers[0].ID)

	named, err := st.Customers.FindByName(ctx, "", "NGUYEN")
	require.NoError(t, err)
	require.Len(t, named, 1)
	assert.Equal(t, "cust-003", named[0].ID)
}
