package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	// 17 characters, letters I, O and Q are never used
	reVIN     = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	rePhone   = regexp.MustCompile(`^\+?[0-9 ().-]{7,20}$`)
	reName    = regexp.MustCompile(`^[\p{L}][\p{L} .'-]*$`)
	rePayment = regexp.MustCompile(`^[A-Za-z][A-Za-z /-]{0,29}$`)
)

// ID validates a resource identifier: uuids and the seeded "car-001" style.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// VIN upper-cases before checking.
func VIN(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reVIN.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a person's first or last name, or a make or model.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, reName.MatchString(s)
}

// Phone is optional; empty passes.
func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return s, rePhone.MatchString(s)
}

// Year accepts model years from the first automobile to next year.
func Year(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, YearOK(n)
}

func YearOK(n int) bool {
	return n >= 1886 && n <= time.Now().Year()+1
}

func Mileage(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Money parses a non-negative amount with at most two decimal places.
func Money(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, MoneyOK(d)
}

func MoneyOK(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(2))
}

// Rate is a commission rate between 0 and 1 inclusive.
func Rate(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}

// Date checks YYYY-MM-DD and returns it normalized.
func Date(s string) (string, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func PaymentMethod(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePayment.MatchString(s)
}

// Text validates free text such as a color or an address; empty passes.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > max {
		return "", false
	}
	return s, !strings.ContainsAny(s, "<>\x00")
}
