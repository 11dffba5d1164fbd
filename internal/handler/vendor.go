package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/damilare-ade/vendor-ledger/internal/domain"
	"github.com/damilare-ade/vendor-ledger/internal/logging"
	"github.com/damilare-ade/vendor-ledger/internal/service/ledger"
)

const dateLayout = "2006-01-02"

type vendorService interface {
	CreateVendor(ctx context.Context, req ledger.CreateVendorRequest) (*domain.Vendor, error)
	ListVendors(ctx context.Context) ([]domain.Vendor, error)
	GetVendor(ctx context.Context, id int64) (*domain.Vendor, []domain.Transaction, error)
	UpdateVendor(ctx context.Context, req ledger.UpdateVendorRequest) (*domain.Vendor, error)
	DeleteVendor(ctx context.Context, id int64) (*domain.Vendor, error)
}

type mediaUploader interface {
	UploadFile(ctx context.Context, path, filename string) (string, error)
}

type VendorHandler struct {
	vendors vendorService
	media   mediaUploader
}

func NewVendorHandler(vendors vendorService, media mediaUploader) *VendorHandler {
	return &VendorHandler{vendors: vendors, media: media}
}

type vendorDTO struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Contact       string          `json:"contact"`
	Address       string          `json:"address"`
	BillURL       *string         `json:"bill_url,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toVendorDTO(v *domain.Vendor) vendorDTO {
	return vendorDTO{
		ID:            v.ID,
		Name:          v.Name,
		Contact:       v.Contact,
		Address:       v.Address,
		BillURL:       v.BillURL,
		TotalAmount:   v.TotalAmount,
		PendingAmount: v.PendingAmount,
		PaidAmount:    v.PaidAmount(),
		Status:        string(v.Status()),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

type createVendorRequest struct {
	Name        string           `json:"name"`
	Contact     string           `json:"contact"`
	Address     string           `json:"address"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
}

func (r createVendorRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Contact == "" {
		errs = append(errs, FieldError{Field: "contact", Message: "required"})
	}
	if r.TotalAmount == nil {
		errs = append(errs, FieldError{Field: "total_amount", Message: "required"})
	} else if r.TotalAmount.IsNegative() {
		errs = append(errs, FieldError{Field: "total_amount", Message: "must be non-negative"})
	}

	return errs
}

func (h *VendorHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req createVendorRequest
	var billFile *multipart.FileHeader

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			RespondAppError(w, ErrInvalidRequest, nil)
			return
		}
		req.Name = r.FormValue("name")
		req.Contact = r.FormValue("contact")
		req.Address = r.FormValue("address")

		if raw := r.FormValue("total_amount"); raw != "" {
			total, err := decimal.NewFromString(raw)
			if err != nil {
				RespondValidationError(w, []FieldError{{Field: "total_amount", Message: "must be a number"}})
				return
			}
			req.TotalAmount = &total
		}

		if fhs := r.MultipartForm.File["bill"]; len(fhs) > 0 {
			billFile = fhs[0]
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondAppError(w, ErrInvalidRequest, nil)
			return
		}
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	var billURL *string
	if billFile != nil {
		url, err := h.uploadBill(r.Context(), billFile)
		if err != nil {
			log.Error("bill upload failed", "error", err)
			RespondAppError(w, ErrInternalError, nil)
			return
		}
		billURL = &url
	}

	v, err := h.vendors.CreateVendor(r.Context(), ledger.CreateVendorRequest{
		Name:        req.Name,
		Contact:     req.Contact,
		Address:     req.Address,
		TotalAmount: *req.TotalAmount,
		BillURL:     billURL,
	})
	if err != nil {
		log.Warn("vendor creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/vendors/%d", v.ID))
	RespondSuccess(w, http.StatusCreated, toVendorDTO(v))
}

// uploadBill spools the multipart file to a temp file, pushes it to the
// media service, and always removes the temp file afterwards.
func (h *VendorHandler) uploadBill(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("uploadBill: open part: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "bill-*")
	if err != nil {
		return "", fmt.Errorf("uploadBill: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", fmt.Errorf("uploadBill: spool: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("uploadBill: close temp: %w", err)
	}

	url, err := h.media.UploadFile(ctx, tmp.Name(), fh.Filename)
	if err != nil {
		return "", fmt.Errorf("uploadBill: %w", err)
	}
	return url, nil
}

func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.vendors.ListVendors(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("vendor listing failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]vendorDTO, 0, len(vendors))
	for i := range vendors {
		dtos = append(dtos, toVendorDTO(&vendors[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type vendorDetailDTO struct {
	vendorDTO
	Transactions []transactionDTO `json:"transactions"`
}

func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	v, transactions, err := h.vendors.GetVendor(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("vendor lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	detail := vendorDetailDTO{
		vendorDTO:    toVendorDTO(v),
		Transactions: make([]transactionDTO, 0, len(transactions)),
	}
	for i := range transactions {
		detail.Transactions = append(detail.Transactions, toTransactionDTO(&transactions[i]))
	}
	RespondSuccess(w, http.StatusOK, detail)
}

type updateVendorRequest struct {
	Name            *string          `json:"name"`
	Contact         *string          `json:"contact"`
	Address         *string          `json:"address"`
	BillURL         *string          `json:"bill_url"`
	TotalAmount     *decimal.Decimal `json:"total_amount"`
	NewPaidAmount   *decimal.Decimal `json:"new_paid_amount"`
	TransactionDate *string          `json:"transaction_date"`
	Note            *string          `json:"note"`
}

func (r updateVendorRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Name != nil && *r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "must not be empty"})
	}
	if r.Contact != nil && *r.Contact == "" {
		errs = append(errs, FieldError{Field: "contact", Message: "must not be empty"})
	}
	if r.TotalAmount != nil && r.TotalAmount.IsNegative() {
		errs = append(errs, FieldError{Field: "total_amount", Message: "must be non-negative"})
	}
	if r.NewPaidAmount != nil && r.NewPaidAmount.IsNegative() {
		errs = append(errs, FieldError{Field: "new_paid_amount", Message: "must be non-negative"})
	}
	if r.TransactionDate != nil {
		if _, err := time.Parse(dateLayout, *r.TransactionDate); err != nil {
			errs = append(errs, FieldError{Field: "transaction_date", Message: "must be YYYY-MM-DD"})
		}
	}

	return errs
}

func (h *VendorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	update := ledger.UpdateVendorRequest{
		ID:            id,
		Name:          req.Name,
		Contact:       req.Contact,
		Address:       req.Address,
		BillURL:       req.BillURL,
		TotalAmount:   req.TotalAmount,
		NewPaidAmount: req.NewPaidAmount,
		Note:          req.Note,
	}
	if req.TransactionDate != nil {
		date, _ := time.Parse(dateLayout, *req.TransactionDate)
		update.TransactionDate = &date
	}

	v, err := h.vendors.UpdateVendor(r.Context(), update)
	if err != nil {
		logging.FromContext(r.Context()).Warn("vendor update failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toVendorDTO(v))
}

func (h *VendorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	v, err := h.vendors.DeleteVendor(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("vendor delete failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toVendorDTO(v))
}

// pathID parses an integer path value, responding 400 on anything else.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		RespondAppError(w, ErrInvalidID, nil)
		return 0, false
	}
	return id, true
}
