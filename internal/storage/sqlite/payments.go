package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mybillport/billport/internal/models"
	"github.com/mybillport/billport/internal/storage"
)

// ApplyPayment applies a payment to a bill inside one transaction:
// read the current amounts, clamp the applied amount to the remaining
// balance, write the new paid amount and the audit row together. Two
// concurrent partial payments can therefore never push paid_amount past
// total_amount.
func (s *SQLiteStore) ApplyPayment(ctx context.Context, req storage.PaymentRequest) (*storage.PaymentResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive, got %.2f", req.Amount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+billColumns+` FROM bills WHERE id = ? AND user_id = ?`,
		req.BillID, req.UserID,
	)
	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bill: %w", err)
	}

	remaining := bill.TotalAmount - bill.PaidAmount
	if remaining <= 0 {
		return nil, storage.ErrBillSettled
	}

	applied := req.Amount
	clamped := false
	if applied > remaining {
		applied = remaining
		clamped = true
	}

	now := time.Now().Unix()
	bill.PaidAmount += applied
	bill.UpdatedAt = now

	if _, err := tx.ExecContext(ctx,
		"UPDATE bills SET paid_amount = ?, updated_at = ? WHERE id = ?",
		bill.PaidAmount, now, bill.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to update bill amounts: %w", err)
	}

	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = "manual"
	}
	payment := &models.Payment{
		ID:           uuid.New().String(),
		BillID:       bill.ID,
		UserID:       req.UserID,
		AmountPaid:   applied,
		PaymentType:  paymentType,
		ProcessorRef: req.ProcessorRef,
		CreatedAt:    now,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payments (id, bill_id, user_id, amount_paid, payment_type, processor_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.BillID, payment.UserID, payment.AmountPaid,
		payment.PaymentType, payment.ProcessorRef, payment.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &storage.PaymentResult{Payment: payment, Bill: bill, Clamped: clamped}, nil
}

// ListPayments returns a bill's payment history, oldest first.
func (s *SQLiteStore) ListPayments(ctx context.Context, userID, billID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bill_id, user_id, amount_paid, payment_type, processor_ref, created_at
		FROM payments
		WHERE bill_id = ? AND user_id = ?
		ORDER BY created_at, id`,
		billID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.BillID, &p.UserID, &p.AmountPaid,
			&p.PaymentType, &p.ProcessorRef, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}
