package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/damilare-ade/vendor-ledger/internal/domain"
)

const vendorColumns = `id, name, contact, address, bill_url,
	total_amount, pending_amount, created_at, updated_at`

type VendorRepository struct {
	db *sql.DB
}

func NewVendorRepository(db *sql.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) Create(ctx context.Context, v *domain.Vendor) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO vendors (name, contact, address, bill_url, total_amount, pending_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		v.Name, v.Contact, v.Address, v.BillURL,
		v.TotalAmount, v.PendingAmount, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *VendorRepository) List(ctx context.Context) ([]domain.Vendor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		vendors = append(vendors, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return vendors, nil
}

func (r *VendorRepository) GetByID(ctx context.Context, id int64) (*domain.Vendor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id,
	)
	v, err := scanVendor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrVendorNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return v, nil
}

func (r *VendorRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Vendor, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE id = $1 FOR UPDATE`, id,
	)
	v, err := scanVendor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrVendorNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return v, nil
}

func (r *VendorRepository) UpdatePending(ctx context.Context, tx *sql.Tx, id int64, pending decimal.Decimal, updatedAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE vendors SET pending_amount = $1, updated_at = $2 WHERE id = $3`,
		pending, updatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("UpdatePending: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdatePending: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdatePending: %w", domain.ErrVendorNotFound)
	}
	return nil
}

func (r *VendorRepository) Update(ctx context.Context, tx *sql.Tx, v *domain.Vendor) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE vendors SET name = $1, contact = $2, address = $3, bill_url = $4,
			total_amount = $5, pending_amount = $6, updated_at = $7
		WHERE id = $8`,
		v.Name, v.Contact, v.Address, v.BillURL,
		v.TotalAmount, v.PendingAmount, v.UpdatedAt, v.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Update: %w", domain.ErrVendorNotFound)
	}
	return nil
}

// Delete hard-deletes the vendor and returns the deleted row. Transactions
// cascade at the schema level.
func (r *VendorRepository) Delete(ctx context.Context, id int64) (*domain.Vendor, error) {
	row := r.db.QueryRowContext(ctx,
		`DELETE FROM vendors WHERE id = $1 RETURNING `+vendorColumns, id,
	)
	v, err := scanVendor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Delete: %w", domain.ErrVendorNotFound)
		}
		return nil, fmt.Errorf("Delete: %w", err)
	}
	return v, nil
}

// LedgerSums joins each vendor against the sum of its recorded transactions,
// for reconciliation of the denormalized pending balance.
func (r *VendorRepository) LedgerSums(ctx context.Context) ([]domain.LedgerSum, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT v.id, v.total_amount, v.pending_amount, COALESCE(SUM(t.amount), 0)
		FROM vendors v
		LEFT JOIN transactions t ON t.vendor_id = v.id
		GROUP BY v.id, v.total_amount, v.pending_amount
		ORDER BY v.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("LedgerSums: %w", err)
	}
	defer rows.Close()

	var sums []domain.LedgerSum
	for rows.Next() {
		var s domain.LedgerSum
		if err := rows.Scan(&s.VendorID, &s.TotalAmount, &s.PendingAmount, &s.PaidSum); err != nil {
			return nil, fmt.Errorf("LedgerSums: scan: %w", err)
		}
		sums = append(sums, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LedgerSums: rows: %w", err)
	}
	return sums, nil
}

func scanVendor(s scanner) (*domain.Vendor, error) {
	var v domain.Vendor
	err := s.Scan(
		&v.ID, &v.Name, &v.Contact, &v.Address, &v.BillURL,
		&v.TotalAmount, &v.PendingAmount, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
