package ledger

import (
	"github.com/shopspring/decimal"

	"fuelbook/backend/internal/domain"
)

// QtyDelta returns the signed stock effect of an invoice: purchases fill,
// sales drain, returns invert.
func QtyDelta(kind domain.InvoiceKind, qty decimal.Decimal) decimal.Decimal {
	switch kind {
	case domain.InvoicePurchase, domain.InvoiceSaleReturn:
		return qty
	case domain.InvoicePurchaseReturn, domain.InvoiceSale:
		return qty.Neg()
	}
	return decimal.Zero
}

// InvoiceCashflow maps an invoice kind to the direction of the mirrored
// cash entry. Purchases pay money out, sales bring it in; returns invert.
func InvoiceCashflow(kind domain.InvoiceKind) domain.CashflowType {
	switch kind {
	case domain.InvoicePurchase, domain.InvoiceSaleReturn:
		return domain.CashflowOut
	default:
		return domain.CashflowIn
	}
}

// StockTargetKind says whether an invoice adjusts a tank or a product row.
type StockTargetKind string

const (
	TargetTank    StockTargetKind = "tank"
	TargetProduct StockTargetKind = "product"
)

// StockTarget is the current state of the counter an invoice adjusts.
// Fuel-category products are metered on their tank, everything else on the
// product row. Capacity zero means unbounded.
type StockTarget struct {
	Kind     StockTargetKind
	ID       string
	Current  decimal.Decimal
	Capacity decimal.Decimal
}

// ApplyStockDelta computes the stock level after a signed adjustment with
// the floor-zero guard and the tank capacity guard. The failed adjustment
// leaves stock untouched.
func ApplyStockDelta(target StockTarget, delta decimal.Decimal) (decimal.Decimal, error) {
	next := target.Current.Add(delta)
	if next.IsNegative() {
		return target.Current, ErrInsufficientStock
	}
	if target.Kind == TargetTank && target.Capacity.IsPositive() && next.GreaterThan(target.Capacity) {
		return target.Current, ErrCapacityExceeded
	}
	return next, nil
}
