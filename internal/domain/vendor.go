package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type VendorStatus string

const (
	VendorStatusPending VendorStatus = "Pending"
	VendorStatusPartial VendorStatus = "Partial"
	VendorStatusPaid    VendorStatus = "Paid"
)

// Vendor is the aggregate root for balance invariants: pending_amount is a
// denormalized running balance that must stay within [0, total_amount] after
// every transaction mutation.
type Vendor struct {
	ID            int64
	Name          string
	Contact       string
	Address       string
	BillURL       *string
	TotalAmount   decimal.Decimal
	PendingAmount decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DeriveStatus is a pure function of (pending, total). Paid wins over
// Pending when both amounts are zero.
func DeriveStatus(pending, total decimal.Decimal) VendorStatus {
	if pending.IsZero() {
		return VendorStatusPaid
	}
	if pending.Equal(total) {
		return VendorStatusPending
	}
	return VendorStatusPartial
}

// ClampPending bounds a computed pending balance into [0, total].
func ClampPending(pending, total decimal.Decimal) decimal.Decimal {
	if pending.IsNegative() {
		return decimal.Zero
	}
	if pending.GreaterThan(total) {
		return total
	}
	return pending
}

func (v *Vendor) Status() VendorStatus {
	return DeriveStatus(v.PendingAmount, v.TotalAmount)
}

func (v *Vendor) PaidAmount() decimal.Decimal {
	return v.TotalAmount.Sub(v.PendingAmount)
}
