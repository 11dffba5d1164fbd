package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damilare-ade/vendor-ledger/internal/domain"
	"github.com/damilare-ade/vendor-ledger/internal/service/ledger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type stubVendorService struct {
	created *ledger.CreateVendorRequest
	vendor  *domain.Vendor
	err     error
}

func (s *stubVendorService) CreateVendor(_ context.Context, req ledger.CreateVendorRequest) (*domain.Vendor, error) {
	s.created = &req
	return s.vendor, s.err
}

func (s *stubVendorService) ListVendors(context.Context) ([]domain.Vendor, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Vendor{*s.vendor}, nil
}

func (s *stubVendorService) GetVendor(context.Context, int64) (*domain.Vendor, []domain.Transaction, error) {
	return s.vendor, nil, s.err
}

func (s *stubVendorService) UpdateVendor(context.Context, ledger.UpdateVendorRequest) (*domain.Vendor, error) {
	return s.vendor, s.err
}

func (s *stubVendorService) DeleteVendor(context.Context, int64) (*domain.Vendor, error) {
	return s.vendor, s.err
}

type stubMedia struct {
	url string
	err error
}

func (s *stubMedia) UploadFile(context.Context, string, string) (string, error) {
	return s.url, s.err
}

func testVendor() *domain.Vendor {
	now := time.Now().UTC()
	return &domain.Vendor{
		ID:            1,
		Name:          "Acme Supplies",
		Contact:       "0800000000",
		TotalAmount:   dec("1000"),
		PendingAmount: dec("1000"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestVendorCreate_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing name",
			body:       `{"contact":"0800000000","total_amount":1000}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "missing contact",
			body:       `{"name":"Acme","total_amount":1000}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "missing total",
			body:       `{"name":"Acme","contact":"0800000000"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "negative total",
			body:       `{"name":"Acme","contact":"0800000000","total_amount":-5}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "malformed body",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubVendorService{vendor: testVendor()}
			h := NewVendorHandler(svc, &stubMedia{})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/vendors", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
			assert.Nil(t, svc.created, "service must not be reached on invalid input")
		})
	}
}

func TestVendorCreate_Success(t *testing.T) {
	svc := &stubVendorService{vendor: testVendor()}
	h := NewVendorHandler(svc, &stubMedia{})

	body := `{"name":"Acme Supplies","contact":"0800000000","address":"12 Depot Road","total_amount":1000}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vendors", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/v1/vendors/1", rec.Header().Get("Location"))
	require.NotNil(t, svc.created)
	assert.Equal(t, "Acme Supplies", svc.created.Name)
	assert.True(t, dec("1000").Equal(svc.created.TotalAmount))

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestVendorGet_InvalidID(t *testing.T) {
	h := NewVendorHandler(&stubVendorService{vendor: testVendor()}, &stubMedia{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vendors/abc", nil)
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_ID", resp.Error.Code)
}

func TestVendorGet_NotFound(t *testing.T) {
	svc := &stubVendorService{err: domain.ErrVendorNotFound}
	h := NewVendorHandler(svc, &stubMedia{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vendors/42", nil)
	req.SetPathValue("id", "42")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VENDOR_NOT_FOUND", resp.Error.Code)
}

func TestVendorUpdate_ValidationRejectsBadDate(t *testing.T) {
	h := NewVendorHandler(&stubVendorService{vendor: testVendor()}, &stubMedia{})

	body := `{"new_paid_amount":100,"transaction_date":"20-01-2026"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/vendors/1", strings.NewReader(body))
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
