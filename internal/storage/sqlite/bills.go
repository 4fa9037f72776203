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

const dateLayout = "2006-01-02"

const billColumns = `id, user_id, name, company, total_amount, paid_amount,
	due_date, category, is_recurring, recurring_frequency, created_at, updated_at`

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if bill.CreatedAt == 0 {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bills (`+billColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.UserID, bill.Name, bill.Company,
		bill.TotalAmount, bill.PaidAmount, bill.DueDate.Format(dateLayout),
		bill.Category, boolToInt(bill.IsRecurring), bill.RecurringFrequency,
		bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

// GetBill retrieves one of the user's bills by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, userID, billID string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+billColumns+` FROM bills WHERE id = ? AND user_id = ?`,
		billID, userID,
	)
	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// ListBills returns all of the user's bills ordered by due date.
func (s *SQLiteStore) ListBills(ctx context.Context, userID string) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+billColumns+` FROM bills WHERE user_id = ? ORDER BY due_date, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()
	return collectBills(rows)
}

// ListBillsByCompany returns the user's bill history for one biller,
// oldest due date first.
func (s *SQLiteStore) ListBillsByCompany(ctx context.Context, userID, company string) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE user_id = ? AND company = ? COLLATE NOCASE
		ORDER BY due_date, created_at`,
		userID, company,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills by company: %w", err)
	}
	defer rows.Close()
	return collectBills(rows)
}

// UpdateBill updates an existing bill's mutable fields.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	bill.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx, `
		UPDATE bills
		SET name = ?, company = ?, total_amount = ?, paid_amount = ?,
		    due_date = ?, category = ?, is_recurring = ?, recurring_frequency = ?,
		    updated_at = ?
		WHERE id = ? AND user_id = ?`,
		bill.Name, bill.Company, bill.TotalAmount, bill.PaidAmount,
		bill.DueDate.Format(dateLayout), bill.Category,
		boolToInt(bill.IsRecurring), bill.RecurringFrequency,
		bill.UpdatedAt, bill.ID, bill.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteBill removes a bill; payments cascade.
func (s *SQLiteStore) DeleteBill(ctx context.Context, userID, billID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM bills WHERE id = ? AND user_id = ?", billID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var dueDate string
	var isRecurring int
	if err := row.Scan(
		&bill.ID, &bill.UserID, &bill.Name, &bill.Company,
		&bill.TotalAmount, &bill.PaidAmount, &dueDate,
		&bill.Category, &isRecurring, &bill.RecurringFrequency,
		&bill.CreatedAt, &bill.UpdatedAt,
	); err != nil {
		return nil, err
	}
	due, err := time.Parse(dateLayout, dueDate)
	if err != nil {
		return nil, fmt.Errorf("corrupt due_date %q: %w", dueDate, err)
	}
	bill.DueDate = due
	bill.IsRecurring = isRecurring != 0
	return bill, nil
}

func collectBills(rows *sql.Rows) ([]*models.Bill, error) {
	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
