package sale

import (
	"context"
	"errors"
	"testing"

	domainsale "salesvc/domain/sale"
	"salesvc/infrastructure/persistence/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *mocks.MockSaleRepository, *mocks.MockEventPublisher) {
	repo := mocks.NewMockSaleRepository()
	publisher := mocks.NewMockEventPublisher()
	return NewService(repo, publisher), repo, publisher
}

func createRequest() *CreateSaleRequest {
	return &CreateSaleRequest{
		Customer: "John Doe",
		Branch:   "Downtown",
		Items: []SaleItemRequest{
			{Product: "Beer", Quantity: 5, UnitPrice: "10.00"},
			{Product: "Wine", Quantity: 3, UnitPrice: "20.00"},
		},
	}
}

func TestCreateSale(t *testing.T) {
	svc, repo, publisher := newTestService()

	resp, err := svc.CreateSale(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Equal(t, "John Doe", resp.Customer)
	assert.Equal(t, "Active", resp.Status)
	assert.Equal(t, "105.00", resp.TotalAmount)
	assert.Equal(t, 1, resp.Version)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "45.00", resp.Items[0].TotalAmount)
	assert.Equal(t, "10.00", resp.Items[0].Discount)
	assert.Equal(t, "60.00", resp.Items[1].TotalAmount)
	assert.Equal(t, "0.00", resp.Items[1].Discount)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, []string{domainsale.EventSaleCreated}, publisher.EventNames())
}

func TestCreateSaleRejectsOversizedQuantity(t *testing.T) {
	svc, repo, publisher := newTestService()

	req := createRequest()
	req.Items[0].Quantity = 21

	_, err := svc.CreateSale(context.Background(), req)
	assert.ErrorIs(t, err, domainsale.ErrTooManyItems)
	assert.EqualError(t, err, "cannot sell more than 20 identical items")

	// All-or-nothing: nothing persisted, nothing published.
	count, _ := repo.Count(context.Background())
	assert.Equal(t, int64(0), count)
	assert.Empty(t, publisher.Events())
}

func TestCreateSaleRejectsManualDiscountBelowTier(t *testing.T) {
	svc, _, _ := newTestService()

	req := createRequest()
	req.Items[1].Discount = "5"

	_, err := svc.CreateSale(context.Background(), req)
	assert.ErrorIs(t, err, domainsale.ErrDiscountNotAllowed)
}

func TestCreateSaleValidationFailure(t *testing.T) {
	svc, repo, _ := newTestService()

	req := createRequest()
	req.Customer = ""

	_, err := svc.CreateSale(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainsale.ErrValidationFailed)
	assert.Contains(t, err.Error(), "Sale validation failed: ")
	assert.Contains(t, err.Error(), "Customer is required")

	count, _ := repo.Count(context.Background())
	assert.Equal(t, int64(0), count)
}

func TestCreateSaleRejectsMalformedDecimal(t *testing.T) {
	svc, _, _ := newTestService()

	req := createRequest()
	req.Items[0].UnitPrice = "ten"

	_, err := svc.CreateSale(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit price must be a decimal number")
}

func TestGetSale(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateSale(context.Background(), createRequest())
	require.NoError(t, err)

	got, err := svc.GetSale(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.SaleNumber, got.SaleNumber)
}

func TestGetSaleNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetSale(context.Background(), "missing")
	assert.ErrorIs(t, err, domainsale.ErrSaleNotFound)
}

func TestGetSaleByNumber(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateSale(context.Background(), createRequest())
	require.NoError(t, err)

	got, err := svc.GetSaleByNumber(context.Background(), created.SaleNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestCancelSale(t *testing.T) {
	svc, _, publisher := newTestService()

	created, err := svc.CreateSale(context.Background(), createRequest())
	require.NoError(t, err)

	resp, err := svc.CancelSale(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", resp.Status)
	assert.Equal(t, 2, resp.Version)

	assert.Equal(t, []string{
		domainsale.EventSaleCreated,
		domainsale.EventSaleCancelled,
	}, publisher.EventNames())
}

func TestCancelSaleTwiceRejected(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateSale(context.Background(), createRequest())
	require.NoError(t, err)

	_, err = svc.CancelSale(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = svc.CancelSale(context.Background(), created.ID)
	assert.ErrorIs(t, err, domainsale.ErrSaleAlreadyCancelled)
	assert.EqualError(t, err, "sale is already cancelled")
}

func TestCancelItem(t *testing.T) {
	svc, _, publisher := newTestService()

	created, err := svc.CreateSale(context.Background(), createRequest())
	require.NoError(t, err)

	resp, autoCancelled, err := svc.CancelItem(context.Background(), created.ID, created.Items[0].ID)
	require.NoError(t, err)
	assert.False(t, autoCancelled)
	assert.Equal(t, "60.00", resp.TotalAmount)
	assert.Equal(t, "Active", resp.Status)
	assert.Equal(t, "Removed", resp.Items[0].Status)

	assert.Equal(t, []string{
		domainsale.EventSaleCreated,
		domainsale.EventItemCancelled,
	}, publisher.EventNames())
}

func TestCancelLastItemCascades(t *testing.T) {
	svc, _, publisher := newTestService()

	created, err := svc.CreateSale(context.Background(), createRequest())
	require.NoError(t, err)

	_, autoCancelled, err := svc.CancelItem(context.Background(), created.ID, created.Items[0].ID)
	require.NoError(t, err)
	require.False(t, autoCancelled)

	resp, autoCancelled, err := svc.CancelItem(context.Background(), created.ID, created.Items[1].ID)
	require.NoError(t, err)
	assert.True(t, autoCancelled)
	assert.Equal(t, "Cancelled", resp.Status)
	assert.Equal(t, "0.00", resp.TotalAmount)

	// The cascade publishes both the item removal and the sale cancellation.
	names := publisher.EventNames()
	assert.Equal(t, []string{
		domainsale.EventSaleCreated,
		domainsale.EventItemCancelled,
		domainsale.EventItemCancelled,
		domainsale.EventSaleCancelled,
	}, names)
}

func TestCancelItemNotFoundListsAvailableItems(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateSale(context.Background(), createRequest())
	require.NoError(t, err)

	_, _, err = svc.CancelItem(context.Background(), created.ID, "missing-item")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainsale.ErrItemNotFound)
	assert.Contains(t, err.Error(), "Available items: ")
	assert.Contains(t, err.Error(), "Beer (ID: "+created.Items[0].ID+")")
	assert.Contains(t, err.Error(), "Wine (ID: "+created.Items[1].ID+")")
}

func TestCancelItemUnknownSale(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.CancelItem(context.Background(), "missing", "item")
	assert.ErrorIs(t, err, domainsale.ErrSaleNotFound)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	svc, repo, publisher := newTestService()
	publisher.FailWith = errors.New("broker down")

	resp, err := svc.CreateSale(context.Background(), createRequest())
	require.NoError(t, err)

	// The sale is persisted even though publishing failed.
	_, err = repo.FindByID(context.Background(), resp.ID)
	assert.NoError(t, err)
}

func TestDeleteSale(t *testing.T) {
	svc, repo, _ := newTestService()

	created, err := svc.CreateSale(context.Background(), createRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(context.Background(), created.ID))

	count, _ := repo.Count(context.Background())
	assert.Equal(t, int64(0), count)

	err = svc.DeleteSale(context.Background(), created.ID)
	assert.ErrorIs(t, err, domainsale.ErrSaleNotFound)
}

func TestListSales(t *testing.T) {
	svc, _, _ := newTestService()

	for i := 0; i < 3; i++ {
		req := createRequest()
		if i == 2 {
			req.Customer = "Jane Roe"
		}
		_, err := svc.CreateSale(context.Background(), req)
		require.NoError(t, err)
	}

	sales, total, err := svc.ListSales(context.Background(), &ListSalesRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, sales, 3)

	sales, total, err = svc.ListSales(context.Background(), &ListSalesRequest{Customer: "jane", Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, sales, 1)
	assert.Equal(t, "Jane Roe", sales[0].Customer)
}

func TestListSalesPagination(t *testing.T) {
	svc, _, _ := newTestService()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateSale(context.Background(), createRequest())
		require.NoError(t, err)
	}

	sales, total, err := svc.ListSales(context.Background(), &ListSalesRequest{Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, sales, 2)

	sales, _, err = svc.ListSales(context.Background(), &ListSalesRequest{Page: 4, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestListSalesRejectsBadFilterValues(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.ListSales(context.Background(), &ListSalesRequest{MinDate: "09/01/2026"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_date must be in YYYY-MM-DD format")

	_, _, err = svc.ListSales(context.Background(), &ListSalesRequest{MinTotalAmount: "lots"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_total_amount must be a decimal number")
}
