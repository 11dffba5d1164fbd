package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/damilare-ade/vendor-ledger/internal/domain"
)

type vendorRepo interface {
	Create(ctx context.Context, v *domain.Vendor) error
	List(ctx context.Context) ([]domain.Vendor, error)
	GetByID(ctx context.Context, id int64) (*domain.Vendor, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Vendor, error)
	UpdatePending(ctx context.Context, tx *sql.Tx, id int64, pending decimal.Decimal, updatedAt time.Time) error
	Update(ctx context.Context, tx *sql.Tx, v *domain.Vendor) error
	Delete(ctx context.Context, id int64) (*domain.Vendor, error)
	LedgerSums(ctx context.Context) ([]domain.LedgerSum, error)
}

type transactionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
	ListByVendor(ctx context.Context, vendorID int64) ([]domain.Transaction, error)
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Transaction, error)
	Update(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
}

// Service owns every balance-mutating path. All of them follow the same
// pattern: begin a database transaction, SELECT ... FOR UPDATE the vendor
// row, read, compute, write, commit. Concurrent mutations against the same
// vendor serialize at the row lock.
type Service struct {
	vendors      vendorRepo
	transactions transactionRepo
	db           *sql.DB
}

func NewService(vendors vendorRepo, transactions transactionRepo, db *sql.DB) *Service {
	return &Service{
		vendors:      vendors,
		transactions: transactions,
		db:           db,
	}
}
