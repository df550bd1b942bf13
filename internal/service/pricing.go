package service

import (
	"github.com/shopspring/decimal"

	"storefront-backend/internal/dto"
)

const (
	DeliveryOptionStandard = "standard"
	DeliveryOptionExpress  = "express"
)

type PriceBreakdown struct {
	Subtotal          decimal.Decimal
	DeliverySurcharge decimal.Decimal
	Total             decimal.Decimal
}

// ComputePricing sums the reconciled items and applies the delivery
// surcharge. Values are exact; rounding to two places happens once, at the
// point of persistence.
func ComputePricing(items []dto.Item, deliveryOption string, expressSurcharge decimal.Decimal) PriceBreakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		unit := decimal.NewFromFloat(item.CurrentPrice)
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	surcharge := decimal.Zero
	if deliveryOption == DeliveryOptionExpress {
		surcharge = expressSurcharge
	}

	return PriceBreakdown{
		Subtotal:          subtotal,
		DeliverySurcharge: surcharge,
		Total:             subtotal.Add(surcharge),
	}
}
