// Package service wires the pure cores to storage and transport.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mybillport/billport/internal/duestatus"
	"github.com/mybillport/billport/internal/insights"
	"github.com/mybillport/billport/internal/metrics"
	"github.com/mybillport/billport/internal/models"
	"github.com/mybillport/billport/internal/storage"
)

// BillView is a bill annotated with its derived statuses for display.
type BillView struct {
	models.Bill
	Status       models.PaymentStatus `json:"status"`
	DueStatus    duestatus.Status     `json:"dueStatus"`
	DaysUntilDue int                  `json:"daysUntilDue"`
}

// InsightAnalyzer produces an Insight for a biller's history. The
// deterministic analyzer and the AI-backed one both satisfy it.
type InsightAnalyzer interface {
	Analyze(ctx context.Context, history []insights.BillRecord) models.Insight
}

// DeterministicAnalyzer adapts the pure insights.Analyze to InsightAnalyzer.
type DeterministicAnalyzer struct{}

// Analyze implements InsightAnalyzer.
func (DeterministicAnalyzer) Analyze(_ context.Context, history []insights.BillRecord) models.Insight {
	return insights.Analyze(history)
}

// BillService owns the bill lifecycle: CRUD, payments, insights.
type BillService struct {
	store      storage.Store
	analyzer   InsightAnalyzer
	aiEnabled  bool
	windowDays int
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewBillService builds a BillService. windowDays is the due-soon window
// every classification uses; analyzer decides the insight path.
func NewBillService(store storage.Store, analyzer InsightAnalyzer, aiEnabled bool, windowDays int, m *metrics.Metrics) *BillService {
	return &BillService{
		store:      store,
		analyzer:   analyzer,
		aiEnabled:  aiEnabled,
		windowDays: windowDays,
		metrics:    m,
		now:        time.Now,
	}
}

// Create normalizes the input payload into a canonical bill and persists it.
func (s *BillService) Create(ctx context.Context, userID string, input models.BillInput) (*BillView, error) {
	bill, err := models.NormalizeBill(input)
	if err != nil {
		return nil, err
	}
	bill.UserID = userID

	if err := s.store.CreateBill(ctx, &bill); err != nil {
		slog.Error("create bill failed", "user_id", userID, "error", err)
		return nil, err
	}
	slog.Info("bill created", "bill_id", bill.ID, "user_id", userID, "company", bill.Company)
	return s.view(&bill), nil
}

// Get returns one annotated bill.
func (s *BillService) Get(ctx context.Context, userID, billID string) (*BillView, error) {
	bill, err := s.store.GetBill(ctx, userID, billID)
	if err != nil {
		return nil, err
	}
	return s.view(bill), nil
}

// List returns the user's bills annotated with their statuses.
func (s *BillService) List(ctx context.Context, userID string) ([]*BillView, error) {
	bills, err := s.store.ListBills(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]*BillView, len(bills))
	for i, bill := range bills {
		views[i] = s.view(bill)
	}
	return views, nil
}

// Update replaces the bill's user-editable fields. PaidAmount moves only
// through payments; an update that tries to lower it below the recorded
// payments is rejected by normalization (paidAmount > totalAmount) or
// ignored when absent from the payload.
func (s *BillService) Update(ctx context.Context, userID, billID string, input models.BillInput) (*BillView, error) {
	existing, err := s.store.GetBill(ctx, userID, billID)
	if err != nil {
		return nil, err
	}

	if input.PaidAmount == nil {
		input.PaidAmount = &existing.PaidAmount
	}
	bill, err := models.NormalizeBill(input)
	if err != nil {
		return nil, err
	}
	bill.ID = existing.ID
	bill.UserID = existing.UserID
	bill.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateBill(ctx, &bill); err != nil {
		return nil, err
	}
	return s.view(&bill), nil
}

// Delete removes a bill. Only ever called from an explicit user action.
func (s *BillService) Delete(ctx context.Context, userID, billID string) error {
	if err := s.store.DeleteBill(ctx, userID, billID); err != nil {
		return err
	}
	slog.Info("bill deleted", "bill_id", billID, "user_id", userID)
	return nil
}

// Pay applies a payment to a bill and returns the updated view plus the
// audit record.
func (s *BillService) Pay(ctx context.Context, req storage.PaymentRequest) (*BillView, *models.Payment, error) {
	res, err := s.store.ApplyPayment(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if s.metrics != nil {
		s.metrics.PaymentsApplied.Inc()
		if res.Clamped {
			s.metrics.PaymentsClamped.Inc()
		}
	}
	slog.Info("payment applied",
		"bill_id", req.BillID,
		"user_id", req.UserID,
		"amount", res.Payment.AmountPaid,
		"clamped", res.Clamped,
	)
	return s.view(res.Bill), res.Payment, nil
}

// Payments returns the payment history for a bill.
func (s *BillService) Payments(ctx context.Context, userID, billID string) ([]*models.Payment, error) {
	if _, err := s.store.GetBill(ctx, userID, billID); err != nil {
		return nil, err
	}
	return s.store.ListPayments(ctx, userID, billID)
}

// Insights analyzes the history of the biller behind billID.
func (s *BillService) Insights(ctx context.Context, userID, billID string) (*models.Insight, error) {
	bill, err := s.store.GetBill(ctx, userID, billID)
	if err != nil {
		return nil, err
	}
	history, err := s.store.ListBillsByCompany(ctx, userID, bill.Company)
	if err != nil {
		return nil, fmt.Errorf("failed to load biller history: %w", err)
	}

	records := make([]insights.BillRecord, len(history))
	for i, b := range history {
		records[i] = insights.BillRecord{
			Amount:      b.TotalAmount,
			DueDate:     b.DueDate,
			Status:      string(b.PaymentStatus()),
			IsRecurring: b.IsRecurring,
		}
	}

	insight := s.analyzer.Analyze(ctx, records)
	if s.aiEnabled && insight.Source == models.SourceDeterministic && len(records) >= 2 {
		// The AI path was configured but did not produce this result.
		if s.metrics != nil {
			s.metrics.InsightAIFallbacks.Inc()
		}
	}
	return &insight, nil
}

func (s *BillService) view(bill *models.Bill) *BillView {
	now := s.now()
	status := bill.PaymentStatus()
	return &BillView{
		Bill:         *bill,
		Status:       status,
		DueStatus:    duestatus.Classify(bill.DueDate, status == models.StatusPaid, now, s.windowDays),
		DaysUntilDue: duestatus.DaysUntil(bill.DueDate, now),
	}
}
