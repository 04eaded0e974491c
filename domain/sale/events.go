package sale

import (
	"time"

	"salesvc/domain/shared"
)

// Event names as they appear on the wire and in logs.
const (
	EventSaleCreated   = "sale.created"
	EventSaleCancelled = "sale.cancelled"
	EventItemCancelled = "sale.item_cancelled"
)

// SaleCreatedEvent is recorded when a sale is created.
type SaleCreatedEvent struct {
	sale       *Sale
	occurredOn time.Time
}

func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{sale: s, occurredOn: time.Now().UTC()}
}

func (e *SaleCreatedEvent) EventName() string      { return EventSaleCreated }
func (e *SaleCreatedEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *SaleCreatedEvent) GetAggregateID() string { return e.sale.ID() }
func (e *SaleCreatedEvent) Sale() *Sale            { return e.sale }

// SaleCancelledEvent is recorded when a sale is cancelled, whether directly
// or automatically after its last active item was removed.
type SaleCancelledEvent struct {
	sale       *Sale
	occurredOn time.Time
}

func NewSaleCancelledEvent(s *Sale) *SaleCancelledEvent {
	return &SaleCancelledEvent{sale: s, occurredOn: time.Now().UTC()}
}

func (e *SaleCancelledEvent) EventName() string      { return EventSaleCancelled }
func (e *SaleCancelledEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *SaleCancelledEvent) GetAggregateID() string { return e.sale.ID() }
func (e *SaleCancelledEvent) Sale() *Sale            { return e.sale }

// ItemCancelledEvent is recorded when a line item is removed from a sale.
// When the removal triggers the auto-cancel cascade, a SaleCancelledEvent
// is recorded right after this one.
type ItemCancelledEvent struct {
	sale       *Sale
	itemID     string
	occurredOn time.Time
}

func NewItemCancelledEvent(s *Sale, itemID string) *ItemCancelledEvent {
	return &ItemCancelledEvent{sale: s, itemID: itemID, occurredOn: time.Now().UTC()}
}

func (e *ItemCancelledEvent) EventName() string      { return EventItemCancelled }
func (e *ItemCancelledEvent) OccurredOn() time.Time  { return e.occurredOn }
func (e *ItemCancelledEvent) GetAggregateID() string { return e.sale.ID() }
func (e *ItemCancelledEvent) Sale() *Sale            { return e.sale }
func (e *ItemCancelledEvent) ItemID() string         { return e.itemID }

var (
	_ shared.DomainEvent = (*SaleCreatedEvent)(nil)
	_ shared.DomainEvent = (*SaleCancelledEvent)(nil)
	_ shared.DomainEvent = (*ItemCancelledEvent)(nil)
)
