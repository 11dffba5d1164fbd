package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/damilare-ade/vendor-ledger/internal/logging"
)

type DriftReport struct {
	VendorID        int64
	StoredPending   decimal.Decimal
	ExpectedPending decimal.Decimal
}

// AuditLedger re-derives every vendor's pending balance from the transaction
// sum and reports vendors whose stored balance disagrees. An empty slice
// means the denormalized balances are consistent with the ledger.
func (s *Service) AuditLedger(ctx context.Context) ([]DriftReport, error) {
	sums, err := s.vendors.LedgerSums(ctx)
	if err != nil {
		return nil, fmt.Errorf("AuditLedger: %w", err)
	}

	var drifts []DriftReport
	for _, sum := range sums {
		if sum.Consistent() {
			continue
		}
		drifts = append(drifts, DriftReport{
			VendorID:        sum.VendorID,
			StoredPending:   sum.PendingAmount,
			ExpectedPending: sum.ExpectedPending(),
		})
	}
	return drifts, nil
}

// RunAuditor periodically asserts the pending-balance invariant against the
// ledger sum until the context is cancelled. Drift is logged, not repaired.
func (s *Service) RunAuditor(ctx context.Context, interval time.Duration) {
	log := logging.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			drifts, err := s.AuditLedger(ctx)
			if err != nil {
				log.Error("ledger audit failed", "error", err)
				continue
			}
			for _, d := range drifts {
				log.Error("pending balance drifted from ledger",
					"vendor_id", d.VendorID,
					"stored_pending", d.StoredPending,
					"expected_pending", d.ExpectedPending,
				)
			}
			if len(drifts) == 0 {
				log.Debug("ledger audit clean")
			}
		}
	}
}
