package domain

import (
	"fmt"
	"strings"
)

// DateLayout is how every calendar date is stored and exchanged.
const DateLayout = "2006-01-02"

type EntityKind string

const (
	KindCar      EntityKind = "Car"
	KindCustomer EntityKind = "Customer"
	KindEmployee EntityKind = "Employee"
	KindSale     EntityKind = "Sale"
)

// fold lowercases and strips separators so "Certified Pre-Owned",
// "certified_pre_owned" and "CertifiedPreOwned" compare equal.
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

// Condition of a car on the lot.
type Condition string

const (
	ConditionNew               Condition = "New"
	ConditionUsed              Condition = "Used"
	ConditionCertifiedPreOwned Condition = "CertifiedPreOwned"
)

func ParseCondition(s string) (Condition, error) {
	switch fold(s) {
	case "new":
		return ConditionNew, nil
	case "used":
		return ConditionUsed, nil
	case "certifiedpreowned", "cpo":
		return ConditionCertifiedPreOwned, nil
	}
	return "", fmt.Errorf("unknown condition %q", s)
}

// Position is an employee's job title. Only Salesperson may be attached to
// a processed sale.
type Position string

const (
	PositionSalesperson    Position = "Salesperson"
	PositionSalesManager   Position = "SalesManager"
	PositionFinanceManager Position = "FinanceManager"
	PositionGeneralManager Position = "GeneralManager"
	PositionMechanic       Position = "Mechanic"
	PositionReceptionist   Position = "Receptionist"
	PositionAdministrator  Position = "Administrator"
)

var positions = []Position{
	PositionSalesperson,
	PositionSalesManager,
	PositionFinanceManager,
	PositionGeneralManager,
	PositionMechanic,
	PositionReceptionist,
	PositionAdministrator,
}

func ParsePosition(s string) (Position, error) {
	f := fold(s)
	for _, p := range positions {
		if fold(string(p)) == f {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown position %q", s)
}

// IsSalesperson reports whether the position is exactly "Salesperson",
// ignoring case.
func (p Position) IsSalesperson() bool {
	return strings.EqualFold(strings.TrimSpace(string(p)), string(PositionSalesperson))
}

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "Pending"
	SaleStatusCompleted SaleStatus = "Completed"
	SaleStatusCancelled SaleStatus = "Cancelled"
)

func ParseSaleStatus(s string) (SaleStatus, error) {
	switch fold(s) {
	case "pending":
		return SaleStatusPending, nil
	case "completed":
		return SaleStatusCompleted, nil
	case "cancelled", "canceled":
		return SaleStatusCancelled, nil
	}
	return "", fmt.Errorf("unknown sale status %q", s)
}

// Holds reports whether a sale in this status keeps its car off the market.
func (s SaleStatus) Holds() bool { return s != SaleStatusCancelled }

// CanTransitionTo: Pending -> Completed | Cancelled, Completed -> Cancelled.
// Cancelled is terminal.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	switch s {
	case SaleStatusPending:
		return next == SaleStatusCompleted || next == SaleStatusCancelled
	case SaleStatusCompleted:
		return next == SaleStatusCancelled
	}
	return false
}
