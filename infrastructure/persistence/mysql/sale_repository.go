package mysql

import (
	"context"
	"errors"

	"salesvc/domain/sale"
	"salesvc/domain/shared"
	"salesvc/infrastructure/persistence/mysql/po"
	"salesvc/infrastructure/persistence/retry"

	"gorm.io/gorm"
)

// SaleRepository is the MySQL/GORM implementation of sale.Repository.
//
// The repository only persists aggregate state; events stay with the
// aggregate until the application service publishes them. GORM associations
// are not used so the aggregate boundary stays explicit: items are loaded
// and saved by hand.
//
// Concurrency control is optimistic: every sale row carries a version
// column, updates are guarded by WHERE version = ?, and a missed match is
// reported as a concurrent modification, never retried here.
type SaleRepository struct {
	db    *gorm.DB
	retry retry.Config
}

func NewSaleRepository(db *gorm.DB, retryCfg retry.Config) *SaleRepository {
	return &SaleRepository{db: db, retry: retryCfg}
}

func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	salePO, itemPOs := po.FromSaleDomain(s)

	err := retry.ExecuteWithRetry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(salePO).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return shared.NewConflictError("sale", "sale number already exists: "+s.SaleNumber())
				}
				return err
			}
			if len(itemPOs) > 0 {
				if err := tx.Create(&itemPOs).Error; err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.IncrementVersionForSave()
	return nil
}

// Update writes the sale guarded by the optimistic lock and replaces the
// item rows (delete then insert, the items travel with the aggregate).
func (r *SaleRepository) Update(ctx context.Context, s *sale.Sale) error {
	salePO, itemPOs := po.FromSaleDomain(s)

	err := retry.ExecuteWithRetry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&po.SalePO{}).
				Where("id = ? AND version = ?", s.ID(), s.Version()).
				Updates(map[string]any{
					"sale_number":  salePO.SaleNumber,
					"sale_date":    salePO.SaleDate,
					"customer":     salePO.Customer,
					"branch":       salePO.Branch,
					"total_amount": salePO.TotalAmount,
					"status":       salePO.Status,
					"version":      s.Version() + 1,
					"updated_at":   salePO.UpdatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Row is gone or someone else bumped the version first.
				var count int64
				if err := tx.Model(&po.SalePO{}).Where("id = ?", s.ID()).Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return sale.NewSaleNotFoundError(s.ID())
				}
				return sale.NewConcurrentModificationError(s.ID())
			}

			if err := tx.Where("sale_id = ?", s.ID()).Delete(&po.SaleItemPO{}).Error; err != nil {
				return err
			}
			if len(itemPOs) > 0 {
				if err := tx.Create(&itemPOs).Error; err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.IncrementVersionForSave()
	return nil
}

func (r *SaleRepository) FindByID(ctx context.Context, id string) (*sale.Sale, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *SaleRepository) FindBySaleNumber(ctx context.Context, saleNumber string) (*sale.Sale, error) {
	return r.findOne(ctx, "sale_number = ?", saleNumber)
}

func (r *SaleRepository) findOne(ctx context.Context, query string, arg any) (*sale.Sale, error) {
	db := r.db.WithContext(ctx)

	var salePO po.SalePO
	result := db.First(&salePO, query, arg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, sale.NewSaleNotFoundError(arg.(string))
		}
		return nil, result.Error
	}

	// Items are loaded by hand, no Preload.
	var itemPOs []po.SaleItemPO
	if err := db.Where("sale_id = ?", salePO.ID).Find(&itemPOs).Error; err != nil {
		return nil, err
	}

	return salePO.ToDomain(itemPOs), nil
}

func (r *SaleRepository) FindAll(ctx context.Context, page, size int) ([]*sale.Sale, error) {
	return r.FindFiltered(ctx, sale.Filters{}, page, size)
}

func (r *SaleRepository) FindFiltered(ctx context.Context, f sale.Filters, page, size int) ([]*sale.Sale, error) {
	db := r.db.WithContext(ctx)

	var salePOs []po.SalePO
	query := applyFilters(db.Model(&po.SalePO{}), f).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size)
	if err := query.Find(&salePOs).Error; err != nil {
		return nil, err
	}

	sales := make([]*sale.Sale, len(salePOs))
	for i, salePO := range salePOs {
		var itemPOs []po.SaleItemPO
		if err := db.Where("sale_id = ?", salePO.ID).Find(&itemPOs).Error; err != nil {
			return nil, err
		}
		sales[i] = salePO.ToDomain(itemPOs)
	}

	return sales, nil
}

func (r *SaleRepository) CountFiltered(ctx context.Context, f sale.Filters) (int64, error) {
	var count int64
	err := applyFilters(r.db.WithContext(ctx).Model(&po.SalePO{}), f).Count(&count).Error
	return count, err
}

func (r *SaleRepository) Count(ctx context.Context) (int64, error) {
	return r.CountFiltered(ctx, sale.Filters{})
}

// Delete removes the sale and its items. The domain treats cancellation as
// the business-level removal; physical deletion exists for the admin API.
func (r *SaleRepository) Delete(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&po.SalePO{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("sale_id = ?", id).Delete(&po.SaleItemPO{}).Error
	})
	return deleted, err
}

// applyFilters translates sale.Filters into WHERE clauses, mirroring
// Filters.Matches.
func applyFilters(db *gorm.DB, f sale.Filters) *gorm.DB {
	if f.Customer != "" {
		db = db.Where("customer LIKE ?", "%"+f.Customer+"%")
	}
	if f.Branch != "" {
		db = db.Where("branch LIKE ?", "%"+f.Branch+"%")
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if lb := f.DateLowerBound(); lb != nil {
		db = db.Where("sale_date >= ?", *lb)
	}
	if ub := f.DateUpperBound(); ub != nil {
		db = db.Where("sale_date < ?", *ub)
	}
	if f.MinTotalAmount != nil {
		db = db.Where("total_amount >= ?", *f.MinTotalAmount)
	}
	if f.MaxTotalAmount != nil {
		db = db.Where("total_amount <= ?", *f.MaxTotalAmount)
	}
	return db
}

var _ sale.Repository = (*SaleRepository)(nil)
