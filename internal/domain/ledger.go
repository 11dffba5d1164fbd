package domain

import "github.com/shopspring/decimal"

// LedgerSum pairs a vendor's stored balance with the sum of its recorded
// transactions, as read in one aggregate query.
type LedgerSum struct {
	VendorID      int64
	TotalAmount   decimal.Decimal
	PendingAmount decimal.Decimal
	PaidSum       decimal.Decimal
}

// ExpectedPending derives what the pending balance should be from the ledger
// alone: total minus the transaction sum, clamped into [0, total].
func (s LedgerSum) ExpectedPending() decimal.Decimal {
	return ClampPending(s.TotalAmount.Sub(s.PaidSum), s.TotalAmount)
}

// Consistent reports whether the stored pending balance matches the ledger.
func (s LedgerSum) Consistent() bool {
	return s.PendingAmount.Equal(s.ExpectedPending())
}
