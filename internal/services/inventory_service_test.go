package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealership/internal/domain"
	"dealership/internal/repos"
	"dealership/internal/services"
)

func newStore(t *testing.T) *repos.Store {
	t.Helper()
	db, err := repos.OpenDB(":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewStore(db)
}

func TestCarService_CreateUpdateDelete(t *testing.T) {
	st := newStore(t)
	svc := services.NewCarService(st.Cars)
	svc.Clock = func() time.Time { return fixedNow }
	ctx := context.Background()

	car, err := svc.Create(ctx, domain.Car{
		Make: "Subaru", Model: "Outback", Year: 2022, VIN: "4S4BTAFC5N3123456",
		Color: "Green", Condition: domain.ConditionUsed, Price: money("26900"), Mileage: 21000,
		Sold: true, // ignored on intake
	})
	require.NoError(t, err)
	assert.NotEmpty(t, car.ID)
	assert.False(t, car.Sold)
	assert.Equal(t, "2025-03-14", car.DateAdded)

	_, err = svc.Create(ctx, domain.Car{
		Make: "Subaru", Model: "Outback", Year: 2022, VIN: "4s4btafc5n3123456",
		Condition: domain.ConditionUsed, Price: money("1"),
	})
	assert.ErrorIs(t, err, services.ErrInvalidState, "duplicate VIN")

	car.Price = money("25900")
	car.Sold = true
	updated, err := svc.Update(ctx, car.ID, car)
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(money("25900")))
	assert.False(t, updated.Sold, "update cannot flip availability")

	_, err = svc.Update(ctx, "car-404", car)
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, car.ID))
	_, err = svc.Get(ctx, car.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	err = svc.Delete(ctx, "car-005")
	assert.ErrorIs(t, err, services.ErrInvalidState, "car on a sale")
}

func TestCarService_Queries(t *testing.T) {
	st := newStore(t)
	svc := services.NewCarService(st.Cars)
	ctx := context.Background()

	avail, err := svc.Available(ctx)
	require.NoError(t, err)
	assert.Len(t, avail, 4)
	for _, c := range avail {
		assert.False(t, c.Sold)
	}

	found, err := svc.Search(ctx, "ford", "", 2022)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "car-003", found[0].ID)

	used, err := svc.ByCondition(ctx, domain.ConditionUsed)
	require.NoError(t, err)
	assert.Len(t, used, 3)

	_, err = svc.ByPriceRange(ctx, money("30000"), money("20000"))
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	low, err := svc.LowMileage(ctx, 10000)
	require.NoError(t, err)
	assert.Len(t, low, 2)

	byVIN, err := svc.GetByVIN(ctx, "JM3KFBCM1L0123460")
	require.NoError(t, err)
	assert.Equal(t, "car-005", byVIN.ID)
	_, err = svc.GetByVIN(ctx, "JM3KFBCM1L0000000")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCustomerAndEmployeeServices(t *testing.T) {
	st := newStore(t)
	customers := services.NewCustomerService(st.Customers)
	employees := services.NewEmployeeService(st.Employees)
	ctx := context.Background()

	cust, err := customers.Create(ctx, domain.Customer{
		FirstName: "Ana", LastName: "Silva", Email: "ana.silva@example.test", Phone: "555-0199",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cust.RegistrationDate)

	_, err = customers.Create(ctx, domain.Customer{FirstName: "X", LastName: "Y", Email: "ANA.SILVA@example.test"})
	assert.ErrorIs(t, err, services.ErrInvalidState, "email is unique ignoring case")

	byEmail, err := customers.GetByEmail(ctx, "ana.silva@example.test")
	require.NoError(t, err)
	assert.Equal(t, cust.ID, byEmail.ID)

	err = customers.Delete(ctx, "cust-001")
	assert.ErrorIs(t, err, services.ErrInvalidState, "customer on a sale")
	require.NoError(t, customers.Delete(ctx, cust.ID))

	emp, err := employees.Create(ctx, domain.Employee{
		FirstName: "Max", LastName: "Ortiz", Email: "max.ortiz@dealer.test",
		Position: domain.PositionSalesperson, Salary: money("40000"),
	})
	require.NoError(t, err)

	idle, err := employees.SalespeopleWithNoSales(ctx)
	require.NoError(t, err)
	assert.Len(t, idle, 2) // emp-002 and the new hire

	_, err = employees.ByHireDateRange(ctx, "2025-01-01", "2024-01-01")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	err = employees.Delete(ctx, "emp-001")
	assert.ErrorIs(t, err, services.ErrInvalidState, "employee on a sale")
	require.NoError(t, employees.Delete(ctx, emp.ID))
	_, err = employees.Get(ctx, emp.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
