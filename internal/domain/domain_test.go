package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealership/internal/domain"
)

func TestParseCondition(t *testing.T) {
	cases := map[string]domain.Condition{
		"new":                 domain.ConditionNew,
		"USED":                domain.ConditionUsed,
		"CertifiedPreOwned":   domain.ConditionCertifiedPreOwned,
		"certified pre-owned": domain.ConditionCertifiedPreOwned,
		"cpo":                 domain.ConditionCertifiedPreOwned,
	}
	for in, want := range cases {
		got, err := domain.ParseCondition(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := domain.ParseCondition("salvage")
	assert.Error(t, err)
}

func TestParsePositionAndSalespersonCheck(t *testing.T) {
	p, err := domain.ParsePosition("sales_manager")
	require.NoError(t, err)
	assert.Equal(t, domain.PositionSalesManager, p)
	assert.False(t, p.IsSalesperson())

	assert.True(t, domain.Position("salesperson").IsSalesperson())
	assert.True(t, domain.Position("SALESPERSON").IsSalesperson())
	assert.False(t, domain.Position("Sales").IsSalesperson())

	_, err = domain.ParsePosition("astronaut")
	assert.Error(t, err)
}

func TestSaleStatusTransitions(t *testing.T) {
	st, err := domain.ParseSaleStatus("canceled")
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusCancelled, st)

	assert.True(t, domain.SaleStatusPending.CanTransitionTo(domain.SaleStatusCompleted))
	assert.True(t, domain.SaleStatusPending.CanTransitionTo(domain.SaleStatusCancelled))
	assert.True(t, domain.SaleStatusCompleted.CanTransitionTo(domain.SaleStatusCancelled))
	assert.False(t, domain.SaleStatusCompleted.CanTransitionTo(domain.SaleStatusPending))
	assert.False(t, domain.SaleStatusCancelled.CanTransitionTo(domain.SaleStatusCompleted))

	assert.True(t, domain.SaleStatusPending.Holds())
	assert.True(t, domain.SaleStatusCompleted.Holds())
	assert.False(t, domain.SaleStatusCancelled.Holds())
}

func TestNewSaleComputesTotal(t *testing.T) {
	now := time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)
	s := domain.NewSale("car-1", "cust-1", "emp-1",
		decimal.RequireFromString("15000.00"), decimal.RequireFromString("1200.00"), "Cash", now)

	assert.Equal(t, domain.SaleStatusCompleted, s.Status)
	assert.Equal(t, "2025-03-14", s.SaleDate)
	assert.True(t, s.TotalPrice.Equal(decimal.RequireFromString("16200.00")), s.TotalPrice.String())

	s.SetTerms(decimal.RequireFromString("14000"), decimal.RequireFromString("1120.50"))
	assert.True(t, s.TotalPrice.Equal(decimal.RequireFromString("15120.50")))
}

func TestCommission(t *testing.T) {
	s := domain.Sale{SalePrice: decimal.RequireFromString("20000.00")}

	rated := &domain.Employee{CommissionRate: decimal.NewNullDecimal(decimal.RequireFromString("0.05"))}
	assert.True(t, s.Commission(rated).Equal(decimal.RequireFromString("1000.00")))

	assert.True(t, s.Commission(&domain.Employee{}).IsZero(), "no rate on file")
	assert.True(t, s.Commission(nil).IsZero(), "no salesperson")
}

func TestCommissionKeepsFullPrecision(t *testing.T) {
	s := domain.Sale{SalePrice: decimal.RequireFromString("199.99")}
	rated := &domain.Employee{CommissionRate: decimal.NewNullDecimal(decimal.RequireFromString("0.035"))}

	got := s.Commission(rated)
	assert.True(t, got.Equal(decimal.RequireFromString("6.99965")), got.String())
	assert.Equal(t, "7.00", got.StringFixed(2))
}

func TestSetTermsRoundsToCents(t *testing.T) {
	var s domain.Sale
	s.SetTerms(decimal.RequireFromString("0.005"), decimal.RequireFromString("0.005"))

	assert.True(t, s.SalePrice.Equal(decimal.RequireFromString("0.01")), s.SalePrice.String())
	assert.True(t, s.Tax.Equal(decimal.RequireFromString("0.01")), s.Tax.String())
	assert.True(t, s.TotalPrice.Equal(s.SalePrice.Add(s.Tax)), s.TotalPrice.String())
}

func TestMoneyEncodesAtCentScale(t *testing.T) {
	s := domain.NewSale("car-1", "cust-1", "emp-1",
		decimal.RequireFromString("15000"), decimal.RequireFromString("1200"), "Cash", time.Now())
	s.ID = "sale-1"
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "15000.00", got["salePrice"])
	assert.Equal(t, "1200.00", got["tax"])
	assert.Equal(t, "16200.00", got["totalPrice"])
	assert.Equal(t, "sale-1", got["id"])
	assert.Equal(t, "Completed", got["saleStatus"])

	b, err = json.Marshal(domain.Car{ID: "car-1", Price: decimal.RequireFromString("27500")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"price":"27500.00"`)
	assert.Contains(t, string(b), `"id":"car-1"`)
}
