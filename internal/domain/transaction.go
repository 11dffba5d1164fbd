package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single payment against a vendor's bill. Status is a
// historical snapshot of the vendor's derived status at the time the payment
// was recorded, distinct from the vendor's current status.
type Transaction struct {
	ID              int64
	VendorID        int64
	Amount          decimal.Decimal
	TransactionDate time.Time
	Note            *string
	Status          VendorStatus
	CreatedAt       time.Time
}
