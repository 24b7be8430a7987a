// Package events carries sale lifecycle notifications out of the service
// layer. Publishing happens after commit and is best effort.
package events

import (
	"context"
	"encoding/json"
	"time"

	"dealership/internal/domain"
)

type Type string

const (
	SaleProcessed     Type = "sale.processed"
	SaleRecorded      Type = "sale.recorded"
	SaleStatusChanged Type = "sale.status_changed"
	SaleCancelled     Type = "sale.cancelled"
	SaleDeleted       Type = "sale.deleted"
)

type SaleEvent struct {
	Type          Type              `json:"type"`
	SaleID        string            `json:"saleId"`
	CarID         string            `json:"carId"`
	CustomerID    string            `json:"customerId"`
	SalespersonID string            `json:"salespersonId"`
	TotalPrice    string            `json:"totalPrice"`
	Status        domain.SaleStatus `json:"status"`
	OccurredAt    time.Time         `json:"occurredAt"`
}

func FromSale(t Type, s domain.Sale, at time.Time) SaleEvent {
	return SaleEvent{
		Type:          t,
		SaleID:        s.ID,
		CarID:         s.CarID,
		CustomerID:    s.CustomerID,
		SalespersonID: s.SalespersonID,
		TotalPrice:    s.TotalPrice.StringFixed(2),
		Status:        s.Status,
		OccurredAt:    at.UTC(),
	}
}

func (e SaleEvent) encode() ([]byte, error) { return json.Marshal(e) }

func decode(b []byte) (SaleEvent, error) {
	var e SaleEvent
	err := json.Unmarshal(b, &e)
	return e, err
}

type Publisher interface {
	Publish(ctx context.Context, evt SaleEvent) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, SaleEvent) error { return nil }
func (Nop) Close() error                             { return nil }
