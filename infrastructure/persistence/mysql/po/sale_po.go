// Package po holds the persistence objects for the MySQL store. They map
// rows to the domain and back; no business logic, no GORM associations.
package po

import (
	"time"

	"salesvc/domain/sale"

	"github.com/shopspring/decimal"
)

// SalePO is the row shape of a sale. Money columns use decimal(18,2) so
// values round-trip exactly.
type SalePO struct {
	ID          string          `gorm:"primaryKey;size:64"`
	SaleNumber  string          `gorm:"size:50;uniqueIndex;not null"`
	SaleDate    time.Time       `gorm:"index;not null"`
	Customer    string          `gorm:"size:200;index;not null"`
	Branch      string          `gorm:"size:200;index;not null"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status      string          `gorm:"size:20;index;not null"`
	Version     int             `gorm:"default:0;not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   *time.Time
}

func (SalePO) TableName() string {
	return "sales"
}

// SaleItemPO is the row shape of a line item. SaleID is a plain column, not
// a GORM association.
type SaleItemPO struct {
	ID          string          `gorm:"primaryKey;size:64"`
	SaleID      string          `gorm:"size:64;index;not null"`
	Product     string          `gorm:"size:200;not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status      string          `gorm:"size:20;not null"`
}

func (SaleItemPO) TableName() string {
	return "sale_items"
}

// FromSaleDomain converts the aggregate into persistence objects.
func FromSaleDomain(s *sale.Sale) (*SalePO, []SaleItemPO) {
	salePO := &SalePO{
		ID:          s.ID(),
		SaleNumber:  s.SaleNumber(),
		SaleDate:    s.SaleDate(),
		Customer:    s.Customer(),
		Branch:      s.Branch(),
		TotalAmount: s.TotalAmount(),
		Status:      string(s.Status()),
		Version:     s.Version(),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}

	items := s.Items()
	itemPOs := make([]SaleItemPO, len(items))
	for i, item := range items {
		itemPOs[i] = SaleItemPO{
			ID:          item.ID(),
			SaleID:      s.ID(),
			Product:     item.Product(),
			Quantity:    item.Quantity(),
			UnitPrice:   item.UnitPrice(),
			Discount:    item.Discount(),
			TotalAmount: item.TotalAmount(),
			Status:      string(item.ItemStatus()),
		}
	}

	return salePO, itemPOs
}

// ToDomain rehydrates the aggregate from rows, items included.
func (p *SalePO) ToDomain(itemPOs []SaleItemPO) *sale.Sale {
	items := make([]sale.SaleItem, len(itemPOs))
	for i, itemPO := range itemPOs {
		items[i] = sale.RebuildItemFromDTO(sale.ItemReconstructionDTO{
			ID:          itemPO.ID,
			SaleID:      itemPO.SaleID,
			Product:     itemPO.Product,
			Quantity:    itemPO.Quantity,
			UnitPrice:   itemPO.UnitPrice,
			Discount:    itemPO.Discount,
			TotalAmount: itemPO.TotalAmount,
			Status:      sale.ItemStatus(itemPO.Status),
		})
	}

	return sale.RebuildFromDTO(sale.ReconstructionDTO{
		ID:          p.ID,
		SaleNumber:  p.SaleNumber,
		SaleDate:    p.SaleDate,
		Customer:    p.Customer,
		Branch:      p.Branch,
		Items:       items,
		TotalAmount: p.TotalAmount,
		Status:      sale.Status(p.Status),
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
}
