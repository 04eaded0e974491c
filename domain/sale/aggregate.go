/*
Package sale - the sales subdomain.

The Sale aggregate root owns its line items: items are created, removed and
recalculated only through the aggregate's methods, never mutated directly.
All fields are private; state is exposed through read-only accessors so the
aggregate's invariants can only be broken by a bug inside this package.

Invariant: TotalAmount always equals the sum of TotalAmount over items whose
status is Active. Cancellation is a soft, terminal state for both the sale
and its items; nothing is ever hard-deleted.
*/
package sale

import (
	"strings"
	"time"

	"salesvc/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxItemQuantity is the business ceiling for identical items per line.
const maxItemQuantity = 20

// Status is the sale lifecycle state.
type Status string

const (
	StatusActive    Status = "Active"
	StatusCancelled Status = "Cancelled" // terminal
)

// ItemStatus is the line-item lifecycle state.
type ItemStatus string

const (
	ItemStatusActive  ItemStatus = "Active"
	ItemStatusRemoved ItemStatus = "Removed" // terminal
)

// Sale is the aggregate root for one commercial transaction.
type Sale struct {
	id          string
	saleNumber  string
	saleDate    time.Time
	customer    string
	branch      string
	items       []SaleItem
	totalAmount decimal.Decimal
	status      Status
	version     int // optimistic lock version, managed by the repository
	createdAt   time.Time
	updatedAt   *time.Time

	events []shared.DomainEvent
	isNew  bool
}

// SaleItem is one product line within a sale. It is part of the aggregate
// and can only be reached through the Sale.
type SaleItem struct {
	id          string
	saleID      string
	product     string
	quantity    int
	unitPrice   decimal.Decimal
	discount    decimal.Decimal // percentage, derived from quantity
	totalAmount decimal.Decimal
	status      ItemStatus
}

// NewSale creates an active sale with no items. Sale date and creation
// timestamp are set to the current time, and a unique sale number is
// generated. Structural validation happens separately via Validate, after
// the items have been added.
func NewSale(customer, branch string) *Sale {
	now := time.Now().UTC()
	s := &Sale{
		id:          uuid.NewString(),
		saleNumber:  generateSaleNumber(now),
		saleDate:    now,
		customer:    customer,
		branch:      branch,
		items:       make([]SaleItem, 0),
		totalAmount: decimal.Zero,
		status:      StatusActive,
		version:     0,
		createdAt:   now,
		events:      make([]shared.DomainEvent, 0),
		isNew:       true,
	}

	s.events = append(s.events, NewSaleCreatedEvent(s))
	return s
}

// generateSaleNumber builds SALE-<YYYYMMDD>-<8 uppercase hex chars>.
func generateSaleNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "SALE-" + now.Format("20060102") + "-" + suffix
}

// AddItem appends a line item after enforcing the quantity and discount
// rules, computes the item total from the calculated discount, and
// recalculates the sale total.
func (s *Sale) AddItem(product string, quantity int, unitPrice, discount decimal.Decimal) error {
	if quantity > maxItemQuantity {
		return ErrTooManyItems
	}

	// Manual discounts are only rejected below the first tier; at or above
	// it the supplied value is ignored in favor of the calculated one.
	if quantity < tier1Threshold && discount.IsPositive() {
		return ErrDiscountNotAllowed
	}

	calculated := CalculateDiscount(quantity)

	item := SaleItem{
		id:          uuid.NewString(),
		saleID:      s.id,
		product:     product,
		quantity:    quantity,
		unitPrice:   unitPrice,
		discount:    calculated,
		totalAmount: calculateItemTotal(quantity, unitPrice, calculated),
		status:      ItemStatusActive,
	}

	s.items = append(s.items, item)
	s.RecalculateTotal()

	return nil
}

// calculateItemTotal computes quantity * unitPrice * (1 - discount/100).
func calculateItemTotal(quantity int, unitPrice, discount decimal.Decimal) decimal.Decimal {
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	discountAmount := subtotal.Mul(discount).Div(hundred)
	return subtotal.Sub(discountAmount)
}

// Cancel terminates the sale. Cancelling an already-cancelled sale is
// rejected rather than ignored.
func (s *Sale) Cancel() error {
	if s.status == StatusCancelled {
		return ErrSaleAlreadyCancelled
	}

	s.status = StatusCancelled
	s.touch()
	s.events = append(s.events, NewSaleCancelledEvent(s))

	return nil
}

// CancelItem marks the item as removed, recalculates the total, and
// auto-cancels the sale when no active items remain. It reports whether
// that automatic cancellation happened.
//
// Re-cancelling an item that is already removed is rejected with
// ErrItemAlreadyRemoved; removal is terminal just like sale cancellation.
func (s *Sale) CancelItem(itemID string) (bool, error) {
	idx := -1
	for i := range s.items {
		if s.items[i].id == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, ErrItemNotFound
	}

	if s.items[idx].status == ItemStatusRemoved {
		return false, ErrItemAlreadyRemoved
	}

	s.items[idx].status = ItemStatusRemoved
	s.RecalculateTotal()
	s.touch()
	s.events = append(s.events, NewItemCancelledEvent(s, itemID))

	if s.ActiveItemsCount() == 0 && s.status != StatusCancelled {
		// Cancel cannot fail here: the status was just checked.
		_ = s.Cancel()
		return true, nil
	}

	return false, nil
}

// RecalculateTotal sets the sale total to the sum of active item totals.
// It must run after every item status change.
func (s *Sale) RecalculateTotal() {
	total := decimal.Zero
	for i := range s.items {
		if s.items[i].status == ItemStatusActive {
			total = total.Add(s.items[i].totalAmount)
		}
	}
	s.totalAmount = total
}

// ActiveItemsCount returns the number of items still counting toward the total.
func (s *Sale) ActiveItemsCount() int {
	count := 0
	for i := range s.items {
		if s.items[i].status == ItemStatusActive {
			count++
		}
	}
	return count
}

// RemovedItemsCount returns the number of removed items.
func (s *Sale) RemovedItemsCount() int {
	count := 0
	for i := range s.items {
		if s.items[i].status == ItemStatusRemoved {
			count++
		}
	}
	return count
}

func (s *Sale) touch() {
	now := time.Now().UTC()
	s.updatedAt = &now
}

// IncrementVersionForSave advances the optimistic lock version after a
// successful persistence operation. Called by repositories only.
func (s *Sale) IncrementVersionForSave() {
	s.version++
	s.isNew = false
}

// IsNew reports whether the aggregate was created in this process rather
// than loaded from the repository.
func (s *Sale) IsNew() bool { return s.isNew }

func (s *Sale) ID() string         { return s.id }
func (s *Sale) SaleNumber() string { return s.saleNumber }
func (s *Sale) SaleDate() time.Time {
	return s.saleDate
}
func (s *Sale) Customer() string { return s.customer }
func (s *Sale) Branch() string   { return s.branch }

// Items returns a copy of the item collection, removed items included.
func (s *Sale) Items() []SaleItem {
	items := make([]SaleItem, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Sale) TotalAmount() decimal.Decimal { return s.totalAmount }
func (s *Sale) Status() Status               { return s.status }
func (s *Sale) Version() int                 { return s.version }
func (s *Sale) CreatedAt() time.Time         { return s.createdAt }

// UpdatedAt returns the last mutation time, or nil if the sale was never
// changed after creation.
func (s *Sale) UpdatedAt() *time.Time {
	if s.updatedAt == nil {
		return nil
	}
	t := *s.updatedAt
	return &t
}

// PullEvents returns and clears the recorded domain events. The application
// service calls this after a successful save and hands the events to the
// publisher.
func (s *Sale) PullEvents() []shared.DomainEvent {
	events := make([]shared.DomainEvent, len(s.events))
	copy(events, s.events)
	s.events = make([]shared.DomainEvent, 0)
	return events
}

func (item SaleItem) ID() string                   { return item.id }
func (item SaleItem) SaleID() string               { return item.saleID }
func (item SaleItem) Product() string              { return item.product }
func (item SaleItem) Quantity() int                { return item.quantity }
func (item SaleItem) UnitPrice() decimal.Decimal   { return item.unitPrice }
func (item SaleItem) Discount() decimal.Decimal    { return item.discount }
func (item SaleItem) TotalAmount() decimal.Decimal { return item.totalAmount }
func (item SaleItem) ItemStatus() ItemStatus       { return item.status }

// ReconstructionDTO rebuilds a Sale from storage. Repository use only; it
// bypasses the business rules on purpose and must reproduce persisted state
// exactly, with no recomputation.
type ReconstructionDTO struct {
	ID          string
	SaleNumber  string
	SaleDate    time.Time
	Customer    string
	Branch      string
	Items       []SaleItem
	TotalAmount decimal.Decimal
	Status      Status
	Version     int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// RebuildFromDTO reconstructs a Sale aggregate from persisted state.
func RebuildFromDTO(dto ReconstructionDTO) *Sale {
	return &Sale{
		id:          dto.ID,
		saleNumber:  dto.SaleNumber,
		saleDate:    dto.SaleDate,
		customer:    dto.Customer,
		branch:      dto.Branch,
		items:       dto.Items,
		totalAmount: dto.TotalAmount,
		status:      dto.Status,
		version:     dto.Version,
		createdAt:   dto.CreatedAt,
		updatedAt:   dto.UpdatedAt,
		events:      nil,
		isNew:       false,
	}
}

// ItemReconstructionDTO rebuilds a SaleItem from storage. Repository use only.
type ItemReconstructionDTO struct {
	ID          string
	SaleID      string
	Product     string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TotalAmount decimal.Decimal
	Status      ItemStatus
}

// RebuildItemFromDTO reconstructs a SaleItem from persisted state.
func RebuildItemFromDTO(dto ItemReconstructionDTO) SaleItem {
	return SaleItem{
		id:          dto.ID,
		saleID:      dto.SaleID,
		product:     dto.Product,
		quantity:    dto.Quantity,
		unitPrice:   dto.UnitPrice,
		discount:    dto.Discount,
		totalAmount: dto.TotalAmount,
		status:      dto.Status,
	}
}

// Compile-time check that Sale implements AggregateRoot.
var _ shared.AggregateRoot = (*Sale)(nil)
