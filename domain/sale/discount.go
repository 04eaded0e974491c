package sale

import "github.com/shopspring/decimal"

// Discount tiers by quantity. Quantities above 20 never reach the policy;
// AddItem rejects them first.
var (
	discountNone   = decimal.Zero
	discountTier1  = decimal.NewFromInt(10) // 4-9 units
	discountTier2  = decimal.NewFromInt(20) // 10-20 units
	tier1Threshold = 4
	tier2Threshold = 10

	hundred = decimal.NewFromInt(100)
)

// CalculateDiscount maps a quantity to its discount percentage. It is the
// single source of truth for discounts: AddItem always overrides any
// caller-supplied value with this result.
func CalculateDiscount(quantity int) decimal.Decimal {
	switch {
	case quantity >= tier2Threshold:
		return discountTier2
	case quantity >= tier1Threshold:
		return discountTier1
	default:
		return discountNone
	}
}
