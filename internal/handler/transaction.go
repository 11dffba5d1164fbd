package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/damilare-ade/vendor-ledger/internal/domain"
	"github.com/damilare-ade/vendor-ledger/internal/logging"
	"github.com/damilare-ade/vendor-ledger/internal/service/ledger"
)

type transactionService interface {
	AddTransaction(ctx context.Context, req ledger.AddTransactionRequest) (*ledger.AddTransactionResult, error)
	UpdateTransaction(ctx context.Context, req ledger.UpdateTransactionRequest) (*ledger.UpdateTransactionResult, error)
	DeleteTransaction(ctx context.Context, vendorID, transactionID int64) (*domain.Vendor, error)
}

type TransactionHandler struct {
	transactions transactionService
}

func NewTransactionHandler(transactions transactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type transactionDTO struct {
	ID              int64           `json:"id"`
	VendorID        int64           `json:"vendor_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate string          `json:"transaction_date"`
	Note            *string         `json:"note,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:              t.ID,
		VendorID:        t.VendorID,
		Amount:          t.Amount,
		TransactionDate: t.TransactionDate.Format(dateLayout),
		Note:            t.Note,
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt,
	}
}

type addTransactionRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	TransactionDate *string          `json:"transaction_date"`
	Note            *string          `json:"note"`
}

func (r addTransactionRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Amount == nil {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if !r.Amount.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	if r.TransactionDate != nil {
		if _, err := time.Parse(dateLayout, *r.TransactionDate); err != nil {
			errs = append(errs, FieldError{Field: "transaction_date", Message: "must be YYYY-MM-DD"})
		}
	}

	return errs
}

type addTransactionResponse struct {
	Transaction transactionDTO  `json:"transaction"`
	Vendor      vendorDTO       `json:"vendor"`
	Status      string          `json:"status"`
	Overpayment decimal.Decimal `json:"overpayment"`
}

func (h *TransactionHandler) Add(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := pathID(w, r, "vendorId")
	if !ok {
		return
	}

	var req addTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	add := ledger.AddTransactionRequest{
		VendorID: vendorID,
		Amount:   *req.Amount,
		Note:     req.Note,
	}
	if req.TransactionDate != nil {
		add.TransactionDate, _ = time.Parse(dateLayout, *req.TransactionDate)
	}

	res, err := h.transactions.AddTransaction(r.Context(), add)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payment recording failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, addTransactionResponse{
		Transaction: toTransactionDTO(res.Transaction),
		Vendor:      toVendorDTO(res.Vendor),
		Status:      string(res.Vendor.Status()),
		Overpayment: res.Overpayment,
	})
}

type updateTransactionRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	TransactionDate *string          `json:"transaction_date"`
	Note            *string          `json:"note"`
}

func (r updateTransactionRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Amount == nil {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if !r.Amount.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	if r.TransactionDate != nil {
		if _, err := time.Parse(dateLayout, *r.TransactionDate); err != nil {
			errs = append(errs, FieldError{Field: "transaction_date", Message: "must be YYYY-MM-DD"})
		}
	}

	return errs
}

type updateTransactionResponse struct {
	Transaction transactionDTO `json:"transaction"`
	Vendor      vendorDTO      `json:"vendor"`
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := pathID(w, r, "transactionId")
	if !ok {
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	update := ledger.UpdateTransactionRequest{
		TransactionID: transactionID,
		Amount:        *req.Amount,
		Note:          req.Note,
	}
	if req.TransactionDate != nil {
		date, _ := time.Parse(dateLayout, *req.TransactionDate)
		update.TransactionDate = &date
	}

	res, err := h.transactions.UpdateTransaction(r.Context(), update)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payment amendment failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, updateTransactionResponse{
		Transaction: toTransactionDTO(res.Transaction),
		Vendor:      toVendorDTO(res.Vendor),
	})
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := pathID(w, r, "vendorId")
	if !ok {
		return
	}
	transactionID, ok := pathID(w, r, "transactionId")
	if !ok {
		return
	}

	v, err := h.transactions.DeleteTransaction(r.Context(), vendorID, transactionID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payment removal failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toVendorDTO(v))
}
