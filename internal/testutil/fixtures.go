package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/damilare-ade/vendor-ledger/internal/domain"
)

func SeedTestUser(t *testing.T, db *sql.DB, email, name string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

func SeedTestVendor(t *testing.T, db *sql.DB, name string, total decimal.Decimal) *domain.Vendor {
	t.Helper()

	now := time.Now().UTC()
	v := &domain.Vendor{
		Name:          name,
		Contact:       "0800000000",
		Address:       "12 Depot Road",
		TotalAmount:   total,
		PendingAmount: total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := db.QueryRow(
		`INSERT INTO vendors (name, contact, address, total_amount, pending_amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		v.Name, v.Contact, v.Address, v.TotalAmount, v.PendingAmount, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		t.Fatalf("seed test vendor %s: %v", name, err)
	}
	return v
}

func GetVendorPending(t *testing.T, db *sql.DB, vendorID int64) decimal.Decimal {
	t.Helper()

	var pending decimal.Decimal
	err := db.QueryRow(`SELECT pending_amount FROM vendors WHERE id = $1`, vendorID).Scan(&pending)
	if err != nil {
		t.Fatalf("get vendor pending %d: %v", vendorID, err)
	}
	return pending
}

func CountTransactions(t *testing.T, db *sql.DB, vendorID int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE vendor_id = $1`, vendorID).Scan(&count)
	if err != nil {
		t.Fatalf("count transactions for vendor %d: %v", vendorID, err)
	}
	return count
}

func CountVendors(t *testing.T, db *sql.DB) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM vendors`).Scan(&count)
	if err != nil {
		t.Fatalf("count vendors: %v", err)
	}
	return count
}
