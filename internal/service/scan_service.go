package service

import (
	"log/slog"

	"github.com/mybillport/billport/internal/billmail"
	"github.com/mybillport/billport/internal/metrics"
	"github.com/mybillport/billport/internal/models"
	"github.com/mybillport/billport/internal/recurring"
)

// ScanService runs the stateless detectors over caller-supplied data.
// Nothing here touches storage; candidates only become bills once the
// user confirms them through the bill endpoints.
type ScanService struct {
	metrics *metrics.Metrics
}

// NewScanService builds a ScanService.
func NewScanService(m *metrics.Metrics) *ScanService {
	return &ScanService{metrics: m}
}

// DetectRecurring finds repeating charges in a transaction export.
func (s *ScanService) DetectRecurring(userID string, txs []recurring.Transaction) []models.RecurringBillCandidate {
	candidates := recurring.Detect(txs)
	if s.metrics != nil {
		s.metrics.RecurringCandidates.Add(float64(len(candidates)))
	}
	slog.Info("recurring scan finished",
		"user_id", userID,
		"transactions", len(txs),
		"candidates", len(candidates),
	)
	return candidates
}

// ScanEmails extracts bill candidates from email metadata.
func (s *ScanService) ScanEmails(userID string, msgs []billmail.Message) []models.EmailBillCandidate {
	candidates := billmail.ScanMessages(msgs)
	if s.metrics != nil {
		s.metrics.EmailCandidates.Add(float64(len(candidates)))
	}
	slog.Info("email scan finished",
		"user_id", userID,
		"messages", len(msgs),
		"candidates", len(candidates),
	)
	return candidates
}
