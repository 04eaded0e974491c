// Package sale (application) orchestrates use cases over the sale domain:
// it validates input, drives the aggregate, persists through the repository
// and publishes the recorded domain events after a successful save.
package sale

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salesvc/domain/sale"
	"salesvc/domain/shared"
	"salesvc/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service exposes the sale use cases to the transport layer.
type Service struct {
	repo      sale.Repository
	publisher shared.EventPublisher
}

// NewService creates a Service. The publisher may not be nil; wire the
// logging publisher when no real broker is configured.
func NewService(repo sale.Repository, publisher shared.EventPublisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// CreateSaleRequest is the payload for creating a sale.
type CreateSaleRequest struct {
	Customer string            `json:"customer" binding:"required"`
	Branch   string            `json:"branch" binding:"required"`
	Items    []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SaleItemRequest is one line item in a create request. UnitPrice and
// Discount arrive as strings so decimal values survive the trip without
// float rounding.
type SaleItemRequest struct {
	Product   string `json:"product" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	UnitPrice string `json:"unit_price" binding:"required"`
	Discount  string `json:"discount"`
}

// ListSalesRequest carries the listing filters and pagination.
type ListSalesRequest struct {
	Customer       string `form:"customer"`
	Branch         string `form:"branch"`
	Status         string `form:"status"`
	MinDate        string `form:"min_date"`
	MaxDate        string `form:"max_date"`
	MinTotalAmount string `form:"min_total_amount"`
	MaxTotalAmount string `form:"max_total_amount"`
	Page           int    `form:"page,default=1"`
	Size           int    `form:"size,default=10"`
}

// SaleResponse is the outward representation of a sale.
type SaleResponse struct {
	ID          string             `json:"id"`
	SaleNumber  string             `json:"sale_number"`
	SaleDate    time.Time          `json:"sale_date"`
	Customer    string             `json:"customer"`
	Branch      string             `json:"branch"`
	Items       []SaleItemResponse `json:"items"`
	TotalAmount string             `json:"total_amount"`
	Status      string             `json:"status"`
	Version     int                `json:"version"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   *time.Time         `json:"updated_at,omitempty"`
}

// SaleItemResponse is the outward representation of a line item.
type SaleItemResponse struct {
	ID          string `json:"id"`
	Product     string `json:"product"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Discount    string `json:"discount"`
	TotalAmount string `json:"total_amount"`
	Status      string `json:"status"`
}

// CreateSale builds the aggregate from the request, validates it and
// persists it. The operation is all-or-nothing: any rejected item or
// validation failure leaves nothing behind.
func (svc *Service) CreateSale(ctx context.Context, req *CreateSaleRequest) (*SaleResponse, error) {
	s := sale.NewSale(req.Customer, req.Branch)

	for i, item := range req.Items {
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return nil, shared.NewValidationError("sale", fmt.Sprintf("items[%d].unit_price", i), "unit price must be a decimal number")
		}

		discount := decimal.Zero
		if item.Discount != "" {
			discount, err = decimal.NewFromString(item.Discount)
			if err != nil {
				return nil, shared.NewValidationError("sale", fmt.Sprintf("items[%d].discount", i), "discount must be a decimal number")
			}
		}

		if err := s.AddItem(item.Product, item.Quantity, unitPrice, discount); err != nil {
			return nil, err
		}
	}

	if result := s.Validate(); !result.IsValid() {
		return nil, sale.NewValidationFailedError(result.JoinedMessages())
	}

	if err := svc.repo.Create(ctx, s); err != nil {
		return nil, err
	}

	svc.publishEvents(s)

	return convertToResponse(s), nil
}

// GetSale returns one sale by ID.
func (svc *Service) GetSale(ctx context.Context, saleID string) (*SaleResponse, error) {
	s, err := svc.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	return convertToResponse(s), nil
}

// GetSaleByNumber returns one sale by its business sale number.
func (svc *Service) GetSaleByNumber(ctx context.Context, saleNumber string) (*SaleResponse, error) {
	s, err := svc.repo.FindBySaleNumber(ctx, saleNumber)
	if err != nil {
		return nil, err
	}

	return convertToResponse(s), nil
}

// ListSales returns a filtered, paginated page of sales plus the total count
// matching the filters.
func (svc *Service) ListSales(ctx context.Context, req *ListSalesRequest) ([]*SaleResponse, int64, error) {
	filters, err := buildFilters(req)
	if err != nil {
		return nil, 0, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.Size
	if size < 1 {
		size = 10
	}
	if size > 100 {
		size = 100
	}

	sales, err := svc.repo.FindFiltered(ctx, filters, page, size)
	if err != nil {
		return nil, 0, err
	}

	total, err := svc.repo.CountFiltered(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*SaleResponse, len(sales))
	for i, s := range sales {
		responses[i] = convertToResponse(s)
	}

	return responses, total, nil
}

// CancelSale cancels the whole sale. Cancelling an already-cancelled sale
// fails with sale.ErrSaleAlreadyCancelled.
func (svc *Service) CancelSale(ctx context.Context, saleID string) (*SaleResponse, error) {
	s, err := svc.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if err := s.Cancel(); err != nil {
		return nil, err
	}

	if err := svc.repo.Update(ctx, s); err != nil {
		return nil, err
	}

	svc.publishEvents(s)

	return convertToResponse(s), nil
}

// CancelItem removes one item from the sale. When the last active item goes,
// the sale auto-cancels; the second return value reports that cascade.
func (svc *Service) CancelItem(ctx context.Context, saleID, itemID string) (*SaleResponse, bool, error) {
	s, err := svc.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, false, err
	}

	autoCancelled, err := s.CancelItem(itemID)
	if err != nil {
		if errors.Is(err, sale.ErrItemNotFound) {
			return nil, false, sale.NewItemNotFoundError(saleID, itemID, describeItems(s))
		}
		return nil, false, err
	}

	if err := svc.repo.Update(ctx, s); err != nil {
		return nil, false, err
	}

	svc.publishEvents(s)

	return convertToResponse(s), autoCancelled, nil
}

// DeleteSale removes the sale record entirely. It reports whether anything
// was deleted.
func (svc *Service) DeleteSale(ctx context.Context, saleID string) error {
	deleted, err := svc.repo.Delete(ctx, saleID)
	if err != nil {
		return err
	}
	if !deleted {
		return sale.NewSaleNotFoundError(saleID)
	}
	return nil
}

// publishEvents drains the aggregate's recorded events and hands them to the
// publisher. Failures are logged and swallowed: the state change is already
// persisted and must not be reported as failed.
func (svc *Service) publishEvents(s *sale.Sale) {
	for _, event := range s.PullEvents() {
		if err := shared.ValidateEvent(event); err != nil {
			logger.Error("dropping invalid domain event",
				zap.String("event", event.EventName()),
				zap.Error(err))
			continue
		}
		if err := svc.publisher.Publish(event); err != nil {
			logger.Error("failed to publish domain event",
				zap.String("event", event.EventName()),
				zap.String("sale_id", event.GetAggregateID()),
				zap.Error(err))
		}
	}
}

// describeItems renders the sale's items for the rich not-found message.
func describeItems(s *sale.Sale) string {
	items := s.Items()
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (ID: %s)", item.Product(), item.ID()))
	}
	return strings.Join(parts, ", ")
}

func buildFilters(req *ListSalesRequest) (sale.Filters, error) {
	f := sale.Filters{
		Customer: req.Customer,
		Branch:   req.Branch,
		Status:   req.Status,
	}

	if req.MinDate != "" {
		t, err := time.Parse("2006-01-02", req.MinDate)
		if err != nil {
			return f, shared.NewValidationError("sale", "min_date", "min_date must be in YYYY-MM-DD format")
		}
		f.MinDate = &t
	}

	if req.MaxDate != "" {
		t, err := time.Parse("2006-01-02", req.MaxDate)
		if err != nil {
			return f, shared.NewValidationError("sale", "max_date", "max_date must be in YYYY-MM-DD format")
		}
		f.MaxDate = &t
	}

	if req.MinTotalAmount != "" {
		d, err := decimal.NewFromString(req.MinTotalAmount)
		if err != nil {
			return f, shared.NewValidationError("sale", "min_total_amount", "min_total_amount must be a decimal number")
		}
		f.MinTotalAmount = &d
	}

	if req.MaxTotalAmount != "" {
		d, err := decimal.NewFromString(req.MaxTotalAmount)
		if err != nil {
			return f, shared.NewValidationError("sale", "max_total_amount", "max_total_amount must be a decimal number")
		}
		f.MaxTotalAmount = &d
	}

	return f, nil
}

func convertToResponse(s *sale.Sale) *SaleResponse {
	items := s.Items()
	itemResponses := make([]SaleItemResponse, len(items))
	for i, item := range items {
		itemResponses[i] = SaleItemResponse{
			ID:          item.ID(),
			Product:     item.Product(),
			Quantity:    item.Quantity(),
			UnitPrice:   item.UnitPrice().StringFixed(2),
			Discount:    item.Discount().StringFixed(2),
			TotalAmount: item.TotalAmount().StringFixed(2),
			Status:      string(item.ItemStatus()),
		}
	}

	return &SaleResponse{
		ID:          s.ID(),
		SaleNumber:  s.SaleNumber(),
		SaleDate:    s.SaleDate(),
		Customer:    s.Customer(),
		Branch:      s.Branch(),
		Items:       itemResponses,
		TotalAmount: s.TotalAmount().StringFixed(2),
		Status:      string(s.Status()),
		Version:     s.Version(),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}
}
