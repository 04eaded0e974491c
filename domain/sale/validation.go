package sale

import (
	"fmt"
	"time"

	"salesvc/domain/shared"
)

const (
	maxSaleNumberLen = 50
	maxCustomerLen   = 200
	maxBranchLen     = 200
	maxProductLen    = 200
)

// Validate checks the structural rules of the sale and its items. It never
// mutates state; callers decide what to do with an invalid result. The
// business rules (quantity ceiling, discount tiers) are enforced earlier by
// AddItem and are not re-checked here.
func (s *Sale) Validate() *shared.ValidationResult {
	result := &shared.ValidationResult{}

	if s.saleNumber == "" {
		result.AddError("saleNumber", "Sale number is required")
	} else if len(s.saleNumber) > maxSaleNumberLen {
		result.AddError("saleNumber", fmt.Sprintf("Sale number cannot be longer than %d characters", maxSaleNumberLen))
	}

	if s.saleDate.After(time.Now().UTC()) {
		result.AddError("saleDate", "Sale date cannot be in the future")
	}

	if s.customer == "" {
		result.AddError("customer", "Customer is required")
	} else if len(s.customer) > maxCustomerLen {
		result.AddError("customer", fmt.Sprintf("Customer cannot be longer than %d characters", maxCustomerLen))
	}

	if s.branch == "" {
		result.AddError("branch", "Branch is required")
	} else if len(s.branch) > maxBranchLen {
		result.AddError("branch", fmt.Sprintf("Branch cannot be longer than %d characters", maxBranchLen))
	}

	if len(s.items) == 0 {
		result.AddError("items", "Sale must have at least one item")
	}

	if s.totalAmount.IsNegative() {
		result.AddError("totalAmount", "Total amount cannot be negative")
	}

	for i := range s.items {
		s.items[i].validate(result, i)
	}

	return result
}

func (item *SaleItem) validate(result *shared.ValidationResult, index int) {
	field := func(name string) string {
		return fmt.Sprintf("items[%d].%s", index, name)
	}

	if item.product == "" {
		result.AddError(field("product"), "Product name is required")
	} else if len(item.product) > maxProductLen {
		result.AddError(field("product"), fmt.Sprintf("Product name cannot be longer than %d characters", maxProductLen))
	}

	if item.quantity <= 0 {
		result.AddError(field("quantity"), "Quantity must be greater than zero")
	} else if item.quantity > maxItemQuantity {
		result.AddError(field("quantity"), fmt.Sprintf("Quantity cannot be greater than %d", maxItemQuantity))
	}

	if !item.unitPrice.IsPositive() {
		result.AddError(field("unitPrice"), "Unit price must be greater than zero")
	}

	if item.discount.IsNegative() || item.discount.GreaterThan(hundred) {
		result.AddError(field("discount"), "Discount must be between 0 and 100 percent")
	}

	if item.totalAmount.IsNegative() {
		result.AddError(field("totalAmount"), "Item total amount cannot be negative")
	}
}
