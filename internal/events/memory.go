package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	applog "dealership/internal/log"
)

// MemoryBus is an in-process pub/sub on a watermill go channel. Events
// published with no subscriber attached are dropped.
type MemoryBus struct {
	topic string
	ch    *gochannel.GoChannel
}

func NewMemoryBus(topic string) *MemoryBus {
	return &MemoryBus{
		topic: topic,
		ch: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		),
	}
}

func (b *MemoryBus) Publish(_ context.Context, evt SaleEvent) error {
	payload, err := evt.encode()
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", string(evt.Type))
	return b.ch.Publish(b.topic, msg)
}

// Subscribe returns decoded events until ctx is done or the bus is closed.
// Messages that fail to decode are acked and skipped.
func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan SaleEvent, error) {
	msgs, err := b.ch.Subscribe(ctx, b.topic)
	if err != nil {
		return nil, err
	}
	out := make(chan SaleEvent)
	go func() {
		defer close(out)
		for msg := range msgs {
			evt, err := decode(msg.Payload)
			msg.Ack()
			if err != nil {
				applog.Error(nil, "event.decode", err, map[string]any{"msg_id": msg.UUID})
				continue
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *MemoryBus) Close() error { return b.ch.Close() }

// RunAuditLog writes one audit line per event until the subscription ends.
// It blocks; run it in its own goroutine.
func RunAuditLog(ctx context.Context, bus *MemoryBus) error {
	evts, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	for evt := range evts {
		applog.Audit(nil, "event."+string(evt.Type), map[string]any{
			"sale_id":        evt.SaleID,
			"car_id":         evt.CarID,
			"customer_id":    evt.CustomerID,
			"salesperson_id": evt.SalespersonID,
			"total":          evt.TotalPrice,
			"status":         evt.Status,
		})
	}
	return nil
}
