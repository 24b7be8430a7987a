package validate_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"dealership/internal/validate"
)

func TestVIN(t *testing.T) {
	v, ok := validate.VIN(" 4t1bf1fk5cu123456 ")
	assert.True(t, ok)
	assert.Equal(t, "4T1BF1FK5CU123456", v)

	for _, bad := range []string{"", "4T1BF1FK5CU12345", "4T1BF1FK5CU1234567", "4T1BF1FK5CU12345O", "IT1BF1FK5CU123456"} {
		_, ok := validate.VIN(bad)
		assert.False(t, ok, bad)
	}
}

func TestMoney(t *testing.T) {
	d, ok := validate.Money("15000.00")
	assert.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromInt(15000)))

	for _, bad := range []string{"", "-1", "abc", "1.005"} {
		_, ok := validate.Money(bad)
		assert.False(t, ok, bad)
	}
	assert.True(t, validate.MoneyOK(decimal.Zero))
}

func TestRate(t *testing.T) {
	assert.True(t, validate.Rate(decimal.RequireFromString("0.05")))
	assert.True(t, validate.Rate(decimal.NewFromInt(1)))
	assert.False(t, validate.Rate(decimal.RequireFromString("1.5")))
	assert.False(t, validate.Rate(decimal.RequireFromString("-0.1")))
}

func TestDateAndYear(t *testing.T) {
	d, ok := validate.Date("2025-03-14")
	assert.True(t, ok)
	assert.Equal(t, "2025-03-14", d)
	_, ok = validate.Date("14/03/2025")
	assert.False(t, ok)
	_, ok = validate.Date("2025-02-30")
	assert.False(t, ok)

	_, ok = validate.Year("1885")
	assert.False(t, ok)
	y, ok := validate.Year("2024")
	assert.True(t, ok)
	assert.Equal(t, 2024, y)
	assert.True(t, validate.YearOK(time.Now().Year()+1))
	assert.False(t, validate.YearOK(time.Now().Year()+2))
}

func TestPeopleFields(t *testing.T) {
	_, ok := validate.Email("dana.reyes@example.test")
	assert.True(t, ok)
	_, ok = validate.Email("dana.reyes")
	assert.False(t, ok)

	_, ok = validate.Name("O'Brien-Smith")
	assert.True(t, ok)
	_, ok = validate.Name("<script>")
	assert.False(t, ok)

	p, ok := validate.Phone("")
	assert.True(t, ok)
	assert.Empty(t, p)
	_, ok = validate.Phone("(555) 010-1234")
	assert.True(t, ok)
	_, ok = validate.Phone("call me")
	assert.False(t, ok)

	_, ok = validate.ID("car-001")
	assert.True(t, ok)
	_, ok = validate.ID("../etc")
	assert.False(t, ok)

	_, ok = validate.PaymentMethod("Credit Card")
	assert.True(t, ok)
	_, ok = validate.PaymentMethod("")
	assert.False(t, ok)

	_, ok = validate.Text("12 Elm St", 200)
	assert.True(t, ok)
	_, ok = validate.Text("<b>", 200)
	assert.False(t, ok)
}
