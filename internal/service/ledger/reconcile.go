package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/damilare-ade/vendor-ledger/internal/domain"
	"github.com/damilare-ade/vendor-ledger/internal/logging"
)

type AddTransactionRequest struct {
	VendorID        int64
	Amount          decimal.Decimal
	TransactionDate time.Time
	Note            *string
}

type AddTransactionResult struct {
	Transaction *domain.Transaction
	Vendor      *domain.Vendor
	Overpayment decimal.Decimal
}

// AddTransaction records a payment against the vendor's bill. The vendor row
// is locked for the duration, the pending balance is reduced by the payment
// amount and floored at zero, and any excess beyond the owed balance is
// reported as overpayment rather than rejected. The transaction row carries
// a snapshot of the vendor's status after the payment applied.
func (s *Service) AddTransaction(ctx context.Context, req AddTransactionRequest) (*AddTransactionResult, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("AddTransaction: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("AddTransaction: begin tx: %w", err)
	}
	defer tx.Rollback()

	v, err := s.vendors.GetForUpdate(ctx, tx, req.VendorID)
	if err != nil {
		return nil, fmt.Errorf("AddTransaction: %w", err)
	}

	currentPending := v.PendingAmount
	newPending := domain.ClampPending(currentPending.Sub(req.Amount), v.TotalAmount)
	overpayment := decimal.Max(req.Amount.Sub(currentPending), decimal.Zero)
	status := domain.DeriveStatus(newPending, v.TotalAmount)

	now := time.Now().UTC()
	date := req.TransactionDate
	if date.IsZero() {
		date = now
	}

	t := &domain.Transaction{
		VendorID:        v.ID,
		Amount:          req.Amount,
		TransactionDate: date,
		Note:            req.Note,
		Status:          status,
		CreatedAt:       now,
	}
	if err := s.transactions.Create(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("AddTransaction: %w", err)
	}

	if err := s.vendors.UpdatePending(ctx, tx, v.ID, newPending, now); err != nil {
		return nil, fmt.Errorf("AddTransaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("AddTransaction: commit: %w", err)
	}

	v.PendingAmount = newPending
	v.UpdatedAt = now

	logging.FromContext(ctx).Info("payment recorded",
		"vendor_id", v.ID,
		"transaction_id", t.ID,
		"amount", req.Amount,
		"pending_amount", newPending,
		"overpayment", overpayment,
	)

	return &AddTransactionResult{
		Transaction: t,
		Vendor:      v,
		Overpayment: overpayment,
	}, nil
}

type UpdateTransactionRequest struct {
	TransactionID   int64
	Amount          decimal.Decimal
	TransactionDate *time.Time
	Note            *string
}

type UpdateTransactionResult struct {
	Transaction *domain.Transaction
	Vendor      *domain.Vendor
}

// UpdateTransaction replaces a recorded payment's amount: the old amount is
// reversed and the new one applied in a single step against the locked
// vendor row. The vendor row is always locked before the transaction row so
// every mutating path acquires locks in the same order.
func (s *Service) UpdateTransaction(ctx context.Context, req UpdateTransactionRequest) (*UpdateTransactionResult, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("UpdateTransaction: %w", domain.ErrInvalidAmount)
	}

	// Unlocked read to learn the owning vendor; the amount is re-read
	// under the lock below.
	peek, err := s.transactions.GetByID(ctx, req.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("UpdateTransaction: begin tx: %w", err)
	}
	defer tx.Rollback()

	v, err := s.vendors.GetForUpdate(ctx, tx, peek.VendorID)
	if err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}

	t, err := s.transactions.GetForUpdate(ctx, tx, req.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}
	if t.VendorID != v.ID {
		// The transaction moved vendors between the peek and the lock;
		// nothing does that today, but fail closed.
		return nil, fmt.Errorf("UpdateTransaction: %w", domain.ErrTransactionNotFound)
	}

	oldAmount := t.Amount
	newPending := domain.ClampPending(
		v.PendingAmount.Add(oldAmount).Sub(req.Amount), v.TotalAmount,
	)
	status := domain.DeriveStatus(newPending, v.TotalAmount)

	t.Amount = req.Amount
	if req.TransactionDate != nil {
		t.TransactionDate = *req.TransactionDate
	}
	if req.Note != nil {
		t.Note = req.Note
	}
	t.Status = status

	if err := s.transactions.Update(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}

	now := time.Now().UTC()
	if err := s.vendors.UpdatePending(ctx, tx, v.ID, newPending, now); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("UpdateTransaction: commit: %w", err)
	}

	v.PendingAmount = newPending
	v.UpdatedAt = now

	logging.FromContext(ctx).Info("payment amended",
		"vendor_id", v.ID,
		"transaction_id", t.ID,
		"old_amount", oldAmount,
		"new_amount", req.Amount,
		"pending_amount", newPending,
	)

	return &UpdateTransactionResult{Transaction: t, Vendor: v}, nil
}

// DeleteTransaction removes a recorded payment and restores the vendor's
// pending balance. It takes the vendor row lock before reading the
// transaction amount, so concurrent deletes against the same vendor
// serialize the same way adds and edits do.
func (s *Service) DeleteTransaction(ctx context.Context, vendorID, transactionID int64) (*domain.Vendor, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("DeleteTransaction: begin tx: %w", err)
	}
	defer tx.Rollback()

	v, err := s.vendors.GetForUpdate(ctx, tx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("DeleteTransaction: %w", err)
	}

	t, err := s.transactions.GetForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("DeleteTransaction: %w", err)
	}
	if t.VendorID != vendorID {
		return nil, fmt.Errorf("DeleteTransaction: vendor mismatch: %w", domain.ErrTransactionNotFound)
	}

	if err := s.transactions.Delete(ctx, tx, transactionID); err != nil {
		return nil, fmt.Errorf("DeleteTransaction: %w", err)
	}

	newPending := domain.ClampPending(v.PendingAmount.Add(t.Amount), v.TotalAmount)
	now := time.Now().UTC()
	if err := s.vendors.UpdatePending(ctx, tx, v.ID, newPending, now); err != nil {
		return nil, fmt.Errorf("DeleteTransaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("DeleteTransaction: commit: %w", err)
	}

	v.PendingAmount = newPending
	v.UpdatedAt = now

	logging.FromContext(ctx).Info("payment removed",
		"vendor_id", v.ID,
		"transaction_id", transactionID,
		"restored_amount", t.Amount,
		"pending_amount", newPending,
	)

	return v, nil
}
