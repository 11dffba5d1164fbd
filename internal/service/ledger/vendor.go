package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/damilare-ade/vendor-ledger/internal/domain"
	"github.com/damilare-ade/vendor-ledger/internal/logging"
)

type CreateVendorRequest struct {
	Name        string
	Contact     string
	Address     string
	TotalAmount decimal.Decimal
	BillURL     *string
}

func (s *Service) CreateVendor(ctx context.Context, req CreateVendorRequest) (*domain.Vendor, error) {
	if err := validateCreateVendor(req); err != nil {
		return nil, fmt.Errorf("CreateVendor: %w", err)
	}

	now := time.Now().UTC()
	v := &domain.Vendor{
		Name:          req.Name,
		Contact:       req.Contact,
		Address:       req.Address,
		BillURL:       req.BillURL,
		TotalAmount:   req.TotalAmount,
		PendingAmount: req.TotalAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.vendors.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("CreateVendor: %w", err)
	}

	logging.FromContext(ctx).Info("vendor created",
		"vendor_id", v.ID,
		"total_amount", v.TotalAmount,
	)
	return v, nil
}

func validateCreateVendor(req CreateVendorRequest) error {
	if req.Name == "" {
		return fmt.Errorf("validateCreateVendor: name: %w", domain.ErrMissingField)
	}
	if req.Contact == "" {
		return fmt.Errorf("validateCreateVendor: contact: %w", domain.ErrMissingField)
	}
	if req.TotalAmount.IsNegative() {
		return fmt.Errorf("validateCreateVendor: %w", domain.ErrInvalidTotal)
	}
	return nil
}

func (s *Service) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	vendors, err := s.vendors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListVendors: %w", err)
	}
	return vendors, nil
}

// GetVendor returns the vendor and its full transaction history.
func (s *Service) GetVendor(ctx context.Context, id int64) (*domain.Vendor, []domain.Transaction, error) {
	v, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("GetVendor: %w", err)
	}

	transactions, err := s.transactions.ListByVendor(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("GetVendor: %w", err)
	}

	return v, transactions, nil
}

type UpdateVendorRequest struct {
	ID              int64
	Name            *string
	Contact         *string
	Address         *string
	BillURL         *string
	TotalAmount     *decimal.Decimal
	NewPaidAmount   *decimal.Decimal
	TransactionDate *time.Time
	Note            *string
}

// UpdateVendor merges the provided fields over the stored vendor under the
// vendor row lock. A supplied new_paid_amount is added to what was already
// paid against the pre-update total, the pending balance is re-derived from
// the merged total, and a synthetic transaction recording the payment is
// appended inside the same database transaction.
func (s *Service) UpdateVendor(ctx context.Context, req UpdateVendorRequest) (*domain.Vendor, error) {
	if err := validateUpdateVendor(req); err != nil {
		return nil, fmt.Errorf("UpdateVendor: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("UpdateVendor: begin tx: %w", err)
	}
	defer tx.Rollback()

	v, err := s.vendors.GetForUpdate(ctx, tx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("UpdateVendor: %w", err)
	}

	// alreadyPaid is computed against the pre-update total before any
	// merged field takes effect.
	alreadyPaid := v.TotalAmount.Sub(v.PendingAmount)

	if req.Name != nil {
		v.Name = *req.Name
	}
	if req.Contact != nil {
		v.Contact = *req.Contact
	}
	if req.Address != nil {
		v.Address = *req.Address
	}
	if req.BillURL != nil {
		v.BillURL = req.BillURL
	}
	if req.TotalAmount != nil {
		v.TotalAmount = *req.TotalAmount
	}

	newPaid := decimal.Zero
	if req.NewPaidAmount != nil {
		newPaid = *req.NewPaidAmount
	}
	totalPaid := alreadyPaid.Add(newPaid)

	v.PendingAmount = domain.ClampPending(v.TotalAmount.Sub(totalPaid), v.TotalAmount)
	now := time.Now().UTC()
	v.UpdatedAt = now

	if newPaid.IsPositive() {
		date := now
		if req.TransactionDate != nil {
			date = *req.TransactionDate
		}
		t := &domain.Transaction{
			VendorID:        v.ID,
			Amount:          newPaid,
			TransactionDate: date,
			Note:            req.Note,
			Status:          v.Status(),
			CreatedAt:       now,
		}
		if err := s.transactions.Create(ctx, tx, t); err != nil {
			return nil, fmt.Errorf("UpdateVendor: record payment: %w", err)
		}
	}

	if err := s.vendors.Update(ctx, tx, v); err != nil {
		return nil, fmt.Errorf("UpdateVendor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("UpdateVendor: commit: %w", err)
	}

	logging.FromContext(ctx).Info("vendor updated",
		"vendor_id", v.ID,
		"new_paid_amount", newPaid,
		"pending_amount", v.PendingAmount,
	)
	return v, nil
}

func validateUpdateVendor(req UpdateVendorRequest) error {
	if req.Name != nil && *req.Name == "" {
		return fmt.Errorf("validateUpdateVendor: name: %w", domain.ErrMissingField)
	}
	if req.Contact != nil && *req.Contact == "" {
		return fmt.Errorf("validateUpdateVendor: contact: %w", domain.ErrMissingField)
	}
	if req.TotalAmount != nil && req.TotalAmount.IsNegative() {
		return fmt.Errorf("validateUpdateVendor: %w", domain.ErrInvalidTotal)
	}
	if req.NewPaidAmount != nil && req.NewPaidAmount.IsNegative() {
		return fmt.Errorf("validateUpdateVendor: %w", domain.ErrInvalidAmount)
	}
	return nil
}

// DeleteVendor hard-deletes the vendor and returns the deleted row. The
// vendor's transactions are removed with it: the ledger has no meaning
// without its aggregate root, so the schema cascades the delete.
func (s *Service) DeleteVendor(ctx context.Context, id int64) (*domain.Vendor, error) {
	v, err := s.vendors.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("DeleteVendor: %w", err)
	}

	logging.FromContext(ctx).Info("vendor deleted", "vendor_id", id)
	return v, nil
}
