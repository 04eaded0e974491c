package sale

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimalEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}

func TestNewSale(t *testing.T) {
	s := NewSale("John Doe", "Downtown")

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, "John Doe", s.Customer())
	assert.Equal(t, "Downtown", s.Branch())
	assert.Equal(t, StatusActive, s.Status())
	assert.Equal(t, 0, s.Version())
	assert.True(t, s.IsNew())
	assert.Empty(t, s.Items())
	assertDecimalEqual(t, "0", s.TotalAmount())
	assert.Nil(t, s.UpdatedAt())
}

func TestNewSaleNumberFormat(t *testing.T) {
	s := NewSale("John Doe", "Downtown")

	parts := strings.Split(s.SaleNumber(), "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "SALE", parts[0])
	assert.Equal(t, time.Now().UTC().Format("20060102"), parts[1])
	assert.Len(t, parts[2], 8)
	assert.Equal(t, strings.ToUpper(parts[2]), parts[2])
}

func TestNewSaleRecordsCreatedEvent(t *testing.T) {
	s := NewSale("John Doe", "Downtown")

	events := s.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventSaleCreated, events[0].EventName())
	assert.Equal(t, s.ID(), events[0].GetAggregateID())

	// Pulling drains the buffer.
	assert.Empty(t, s.PullEvents())
}

func TestAddItemDiscountTiers(t *testing.T) {
	tests := []struct {
		name         string
		quantity     int
		unitPrice    string
		wantDiscount string
		wantTotal    string
	}{
		{"no discount below 4 units", 3, "20.00", "0", "60.00"},
		{"10 percent from 4 units", 4, "10.00", "10", "36.00"},
		{"10 percent up to 9 units", 9, "10.00", "10", "81.00"},
		{"20 percent from 10 units", 10, "10.00", "20", "80.00"},
		{"20 percent at the 20 unit cap", 20, "10.00", "20", "160.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSale("John Doe", "Downtown")
			require.NoError(t, s.AddItem("Beer", tt.quantity, dec(tt.unitPrice), decimal.Zero))

			items := s.Items()
			require.Len(t, items, 1)
			assertDecimalEqual(t, tt.wantDiscount, items[0].Discount())
			assertDecimalEqual(t, tt.wantTotal, items[0].TotalAmount())
			assertDecimalEqual(t, tt.wantTotal, s.TotalAmount())
		})
	}
}

func TestAddItemRejectsMoreThanTwentyUnits(t *testing.T) {
	s := NewSale("John Doe", "Downtown")

	err := s.AddItem("Beer", 21, dec("10.00"), decimal.Zero)
	assert.ErrorIs(t, err, ErrTooManyItems)
	assert.Empty(t, s.Items())
}

func TestAddItemRejectsManualDiscountBelowFourUnits(t *testing.T) {
	s := NewSale("John Doe", "Downtown")

	err := s.AddItem("Beer", 3, dec("10.00"), dec("5"))
	assert.ErrorIs(t, err, ErrDiscountNotAllowed)
	assert.Empty(t, s.Items())
}

func TestAddItemOverridesSuppliedDiscount(t *testing.T) {
	s := NewSale("John Doe", "Downtown")

	// Caller asks for 50% on 5 units; the policy says 10%.
	require.NoError(t, s.AddItem("Beer", 5, dec("10.00"), dec("50")))

	items := s.Items()
	require.Len(t, items, 1)
	assertDecimalEqual(t, "10", items[0].Discount())
	assertDecimalEqual(t, "45.00", items[0].TotalAmount())
}

func TestCancelSale(t *testing.T) {
	s := NewSale("John Doe", "Downtown")
	require.NoError(t, s.AddItem("Beer", 2, dec("10.00"), decimal.Zero))
	s.PullEvents()

	require.NoError(t, s.Cancel())
	assert.Equal(t, StatusCancelled, s.Status())
	assert.NotNil(t, s.UpdatedAt())

	events := s.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventSaleCancelled, events[0].EventName())
}

func TestCancelIsTerminal(t *testing.T) {
	s := NewSale("John Doe", "Downtown")
	require.NoError(t, s.Cancel())

	err := s.Cancel()
	assert.ErrorIs(t, err, ErrSaleAlreadyCancelled)
}

func TestCancelItemRecalculatesTotal(t *testing.T) {
	// 5 Beer at 10.00 with 10% discount is 45.00; 3 Wine at 20.00 with no
	// discount is 60.00; the sale totals 105.00.
	s := NewSale("John Doe", "Downtown")
	require.NoError(t, s.AddItem("Beer", 5, dec("10.00"), decimal.Zero))
	require.NoError(t, s.AddItem("Wine", 3, dec("20.00"), decimal.Zero))
	assertDecimalEqual(t, "105.00", s.TotalAmount())

	items := s.Items()
	beer := items[0]

	autoCancelled, err := s.CancelItem(beer.ID())
	require.NoError(t, err)
	assert.False(t, autoCancelled)
	assertDecimalEqual(t, "60.00", s.TotalAmount())
	assert.Equal(t, StatusActive, s.Status())
	assert.Equal(t, 1, s.ActiveItemsCount())
	assert.Equal(t, 1, s.RemovedItemsCount())
}

func TestCancelLastItemAutoCancelsSale(t *testing.T) {
	s := NewSale("John Doe", "Downtown")
	require.NoError(t, s.AddItem("Beer", 5, dec("10.00"), decimal.Zero))
	require.NoError(t, s.AddItem("Wine", 3, dec("20.00"), decimal.Zero))
	s.PullEvents()

	items := s.Items()

	autoCancelled, err := s.CancelItem(items[0].ID())
	require.NoError(t, err)
	assert.False(t, autoCancelled)

	autoCancelled, err = s.CancelItem(items[1].ID())
	require.NoError(t, err)
	assert.True(t, autoCancelled)
	assert.Equal(t, StatusCancelled, s.Status())
	assertDecimalEqual(t, "0", s.TotalAmount())

	// Two item events plus the final sale cancellation.
	names := make([]string, 0)
	for _, e := range s.PullEvents() {
		names = append(names, e.EventName())
	}
	assert.Equal(t, []string{
		EventItemCancelled,
		EventItemCancelled,
		EventSaleCancelled,
	}, names)
}

func TestCancelItemUnknownID(t *testing.T) {
	s := NewSale("John Doe", "Downtown")
	require.NoError(t, s.AddItem("Beer", 2, dec("10.00"), decimal.Zero))

	_, err := s.CancelItem("missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCancelItemTwiceRejected(t *testing.T) {
	s := NewSale("John Doe", "Downtown")
	require.NoError(t, s.AddItem("Beer", 2, dec("10.00"), decimal.Zero))
	require.NoError(t, s.AddItem("Wine", 2, dec("20.00"), decimal.Zero))

	itemID := s.Items()[0].ID()
	_, err := s.CancelItem(itemID)
	require.NoError(t, err)

	_, err = s.CancelItem(itemID)
	assert.ErrorIs(t, err, ErrItemAlreadyRemoved)
}

func TestCancelItemOnCancelledSaleDoesNotReCancel(t *testing.T) {
	s := NewSale("John Doe", "Downtown")
	require.NoError(t, s.AddItem("Beer", 2, dec("10.00"), decimal.Zero))
	require.NoError(t, s.AddItem("Wine", 2, dec("20.00"), decimal.Zero))
	require.NoError(t, s.Cancel())
	s.PullEvents()

	// Items can still be removed for bookkeeping, but the already-cancelled
	// sale must not emit a second cancellation.
	autoCancelled, err := s.CancelItem(s.Items()[0].ID())
	require.NoError(t, err)
	assert.False(t, autoCancelled)

	autoCancelled, err = s.CancelItem(s.Items()[1].ID())
	require.NoError(t, err)
	assert.False(t, autoCancelled)

	for _, e := range s.PullEvents() {
		assert.NotEqual(t, EventSaleCancelled, e.EventName())
	}
}

func TestTotalAlwaysSumOfActiveItems(t *testing.T) {
	s := NewSale("John Doe", "Downtown")
	require.NoError(t, s.AddItem("Beer", 5, dec("10.00"), decimal.Zero))
	require.NoError(t, s.AddItem("Wine", 10, dec("5.50"), decimal.Zero))
	require.NoError(t, s.AddItem("Rum", 1, dec("99.99"), decimal.Zero))

	expected := decimal.Zero
	for _, item := range s.Items() {
		if item.ItemStatus() == ItemStatusActive {
			expected = expected.Add(item.TotalAmount())
		}
	}
	assert.True(t, s.TotalAmount().Equal(expected))

	_, err := s.CancelItem(s.Items()[1].ID())
	require.NoError(t, err)

	expected = decimal.Zero
	for _, item := range s.Items() {
		if item.ItemStatus() == ItemStatusActive {
			expected = expected.Add(item.TotalAmount())
		}
	}
	assert.True(t, s.TotalAmount().Equal(expected))
}

func TestRebuildRoundTrip(t *testing.T) {
	s := NewSale("John Doe", "Downtown")
	require.NoError(t, s.AddItem("Beer", 5, dec("10.00"), decimal.Zero))
	s.IncrementVersionForSave()

	items := s.Items()
	itemDTOs := make([]SaleItem, len(items))
	for i, item := range items {
		itemDTOs[i] = RebuildItemFromDTO(ItemReconstructionDTO{
			ID:          item.ID(),
			SaleID:      item.SaleID(),
			Product:     item.Product(),
			Quantity:    item.Quantity(),
			UnitPrice:   item.UnitPrice(),
			Discount:    item.Discount(),
			TotalAmount: item.TotalAmount(),
			Status:      item.ItemStatus(),
		})
	}

	rebuilt := RebuildFromDTO(ReconstructionDTO{
		ID:          s.ID(),
		SaleNumber:  s.SaleNumber(),
		SaleDate:    s.SaleDate(),
		Customer:    s.Customer(),
		Branch:      s.Branch(),
		Items:       itemDTOs,
		TotalAmount: s.TotalAmount(),
		Status:      s.Status(),
		Version:     s.Version(),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	})

	assert.Equal(t, s.ID(), rebuilt.ID())
	assert.Equal(t, s.SaleNumber(), rebuilt.SaleNumber())
	assert.Equal(t, s.Version(), rebuilt.Version())
	assert.False(t, rebuilt.IsNew())
	assert.Empty(t, rebuilt.PullEvents(), "rebuilding must not record events")
	assert.True(t, s.TotalAmount().Equal(rebuilt.TotalAmount()))
	assert.Len(t, rebuilt.Items(), len(items))
}

func TestIncrementVersionForSave(t *testing.T) {
	s := NewSale("John Doe", "Downtown")
	require.True(t, s.IsNew())

	s.IncrementVersionForSave()
	assert.Equal(t, 1, s.Version())
	assert.False(t, s.IsNew())

	s.IncrementVersionForSave()
	assert.Equal(t, 2, s.Version())
}
