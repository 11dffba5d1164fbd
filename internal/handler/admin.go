package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/damilare-ade/vendor-ledger/internal/logging"
	"github.com/damilare-ade/vendor-ledger/internal/service/ledger"
)

type auditService interface {
	AuditLedger(ctx context.Context) ([]ledger.DriftReport, error)
}

type AdminHandler struct {
	audit auditService
}

func NewAdminHandler(audit auditService) *AdminHandler {
	return &AdminHandler{audit: audit}
}

type driftDTO struct {
	VendorID        int64           `json:"vendor_id"`
	StoredPending   decimal.Decimal `json:"stored_pending"`
	ExpectedPending decimal.Decimal `json:"expected_pending"`
}

type auditResponse struct {
	Consistent bool       `json:"consistent"`
	Drifts     []driftDTO `json:"drifts"`
}

// LedgerAudit re-derives pending balances from the transaction sums and
// reports any vendor whose stored balance disagrees.
func (h *AdminHandler) LedgerAudit(w http.ResponseWriter, r *http.Request) {
	drifts, err := h.audit.AuditLedger(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("ledger audit failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	resp := auditResponse{
		Consistent: len(drifts) == 0,
		Drifts:     make([]driftDTO, 0, len(drifts)),
	}
	for _, d := range drifts {
		resp.Drifts = append(resp.Drifts, driftDTO{
			VendorID:        d.VendorID,
			StoredPending:   d.StoredPending,
			ExpectedPending: d.ExpectedPending,
		})
	}
	RespondSuccess(w, http.StatusOK, resp)
}
