package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damilare-ade/vendor-ledger/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestValidateCreateVendor(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateVendorRequest
		wantErr error
	}{
		{
			name: "valid",
			req:  CreateVendorRequest{Name: "Acme Supplies", Contact: "0800000000", TotalAmount: dec("1000")},
		},
		{
			name: "zero total is allowed",
			req:  CreateVendorRequest{Name: "Acme Supplies", Contact: "0800000000", TotalAmount: dec("0")},
		},
		{
			name:    "missing name",
			req:     CreateVendorRequest{Contact: "0800000000", TotalAmount: dec("1000")},
			wantErr: domain.ErrMissingField,
		},
		{
			name:    "missing contact",
			req:     CreateVendorRequest{Name: "Acme Supplies", TotalAmount: dec("1000")},
			wantErr: domain.ErrMissingField,
		},
		{
			name:    "negative total",
			req:     CreateVendorRequest{Name: "Acme Supplies", Contact: "0800000000", TotalAmount: dec("-5")},
			wantErr: domain.ErrInvalidTotal,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateCreateVendor(tc.req)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidateUpdateVendor(t *testing.T) {
	tests := []struct {
		name    string
		req     UpdateVendorRequest
		wantErr error
	}{
		{
			name: "valid merge",
			req:  UpdateVendorRequest{ID: 1, Name: strPtr("New Name"), NewPaidAmount: decPtr("100")},
		},
		{
			name:    "name cannot be blanked",
			req:     UpdateVendorRequest{ID: 1, Name: strPtr("")},
			wantErr: domain.ErrMissingField,
		},
		{
			name:    "contact cannot be blanked",
			req:     UpdateVendorRequest{ID: 1, Contact: strPtr("")},
			wantErr: domain.ErrMissingField,
		},
		{
			name:    "negative total",
			req:     UpdateVendorRequest{ID: 1, TotalAmount: decPtr("-1")},
			wantErr: domain.ErrInvalidTotal,
		},
		{
			name:    "negative paid amount",
			req:     UpdateVendorRequest{ID: 1, NewPaidAmount: decPtr("-50")},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateUpdateVendor(tc.req)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// Amount validation runs before any database work, so a bare Service is
// enough to exercise the rejection paths.
func TestAddTransactionRejectsNonPositiveAmount(t *testing.T) {
	svc := &Service{}
	ctx := context.Background()

	for _, amount := range []string{"0", "-1", "-0.01"} {
		t.Run(amount, func(t *testing.T) {
			_, err := svc.AddTransaction(ctx, AddTransactionRequest{VendorID: 1, Amount: dec(amount)})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		})
	}
}

func TestUpdateTransactionRejectsNonPositiveAmount(t *testing.T) {
	svc := &Service{}
	ctx := context.Background()

	for _, amount := range []string{"0", "-300"} {
		t.Run(amount, func(t *testing.T) {
			_, err := svc.UpdateTransaction(ctx, UpdateTransactionRequest{TransactionID: 1, Amount: dec(amount)})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		})
	}
}
