package recurring

import (
	"math"
	"testing"
	"time"

	"github.com/mybillport/billport/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// series builds n transactions for a merchant spaced gapDays apart.
func series(merchant string, amount float64, start time.Time, gapDays, n int) []Transaction {
	txs := make([]Transaction, n)
	for i := 0; i < n; i++ {
		txs[i] = Transaction{
			Merchant: merchant,
			Amount:   amount,
			Date:     start.AddDate(0, 0, i*gapDays),
		}
	}
	return txs
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name         string
		txs          []Transaction
		validateFunc func(t *testing.T, got []models.RecurringBillCandidate)
	}{
		{
			name: "empty input yields empty result",
			txs:  nil,
			validateFunc: func(t *testing.T, got []models.RecurringBillCandidate) {
				if len(got) != 0 {
					t.Errorf("expected no candidates, got %d", len(got))
				}
			},
		},
		{
			name: "single occurrence never qualifies",
			txs: []Transaction{
				{Merchant: "Netflix", Amount: 16.99, Date: day(2025, 1, 5)},
			},
			validateFunc: func(t *testing.T, got []models.RecurringBillCandidate) {
				if len(got) != 0 {
					t.Errorf("one transaction produced %d candidates, want 0", len(got))
				}
			},
		},
		{
			name: "monthly cadence with identical amounts",
			txs:  series("Netflix", 16.99, day(2025, 1, 5), 30, 5),
			validateFunc: func(t *testing.T, got []models.RecurringBillCandidate) {
				if len(got) != 1 {
					t.Fatalf("got %d candidates, want 1", len(got))
				}
				c := got[0]
				if c.Frequency != FreqMonthly {
					t.Errorf("frequency = %q, want monthly", c.Frequency)
				}
				if math.Abs(c.AverageAmount-16.99) > 0.001 {
					t.Errorf("averageAmount = %v, want 16.99", c.AverageAmount)
				}
				if c.Occurrences != 5 {
					t.Errorf("occurrences = %d, want 5", c.Occurrences)
				}
				// Perfect spacing, identical amounts, 5 occurrences: full marks.
				if c.Confidence < 0.99 {
					t.Errorf("confidence = %v, want ~1.0", c.Confidence)
				}
				if c.Band != models.ConfidenceHigh {
					t.Errorf("band = %q, want high", c.Band)
				}
				if c.Category != "subscription" {
					t.Errorf("category = %q, want subscription", c.Category)
				}
			},
		},
		{
			name: "weekly cadence detected",
			txs:  series("GoodLife Fitness", 12.50, day(2025, 3, 1), 7, 4),
			validateFunc: func(t *testing.T, got []models.RecurringBillCandidate) {
				if len(got) != 1 || got[0].Frequency != FreqWeekly {
					t.Fatalf("got %+v, want one weekly candidate", got)
				}
			},
		},
		{
			name: "irregular spacing has no cadence",
			txs: []Transaction{
				{Merchant: "Corner Store", Amount: 12, Date: day(2025, 1, 1)},
				{Merchant: "Corner Store", Amount: 45, Date: day(2025, 1, 4)},
				{Merchant: "Corner Store", Amount: 8, Date: day(2025, 3, 20)},
			},
			validateFunc: func(t *testing.T, got []models.RecurringBillCandidate) {
				if len(got) != 0 {
					t.Errorf("irregular merchant produced %d candidates, want 0", len(got))
				}
			},
		},
		{
			name: "merchant grouping is case-insensitive",
			txs: []Transaction{
				{Merchant: "Rogers", Amount: 85, Date: day(2025, 1, 10)},
				{Merchant: "ROGERS", Amount: 85, Date: day(2025, 2, 9)},
				{Merchant: "rogers", Amount: 85, Date: day(2025, 3, 11)},
			},
			validateFunc: func(t *testing.T, got []models.RecurringBillCandidate) {
				if len(got) != 1 {
					t.Fatalf("got %d candidates, want 1 merged group", len(got))
				}
				if got[0].Occurrences != 3 {
					t.Errorf("occurrences = %d, want 3", got[0].Occurrences)
				}
			},
		},
		{
			name: "output sorted by descending confidence",
			txs: append(
				// Tight monthly series.
				series("Netflix", 16.99, day(2025, 1, 5), 30, 5),
				// Looser series: varying amounts, wobbly spacing.
				Transaction{Merchant: "Hydro One", Amount: 60, Date: day(2025, 1, 2)},
				Transaction{Merchant: "Hydro One", Amount: 110, Date: day(2025, 2, 4)},
				Transaction{Merchant: "Hydro One", Amount: 75, Date: day(2025, 3, 2)},
			),
			validateFunc: func(t *testing.T, got []models.RecurringBillCandidate) {
				if len(got) != 2 {
					t.Fatalf("got %d candidates, want 2", len(got))
				}
				if got[0].Merchant != "Netflix" {
					t.Errorf("first candidate = %q, want Netflix (higher confidence)", got[0].Merchant)
				}
				if got[0].Confidence < got[1].Confidence {
					t.Errorf("candidates not sorted: %v < %v", got[0].Confidence, got[1].Confidence)
				}
			},
		},
		{
			name: "more occurrences raise confidence",
			txs: append(
				series("Spotify", 11.99, day(2024, 6, 1), 30, 8),
				series("Crave", 19.99, day(2025, 4, 1), 30, 2)...,
			),
			validateFunc: func(t *testing.T, got []models.RecurringBillCandidate) {
				if len(got) != 2 {
					t.Fatalf("got %d candidates, want 2", len(got))
				}
				var spotify, crave models.RecurringBillCandidate
				for _, c := range got {
					switch c.Merchant {
					case "Spotify":
						spotify = c
					case "Crave":
						crave = c
					}
				}
				if spotify.Confidence <= crave.Confidence {
					t.Errorf("8 occurrences (%v) should outscore 2 (%v)", spotify.Confidence, crave.Confidence)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, Detect(tt.txs))
		})
	}
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name      string
		last      time.Time
		frequency string
		want      time.Time
	}{
		{"weekly adds 7 days", day(2025, 8, 1), FreqWeekly, day(2025, 8, 8)},
		{"bi-weekly adds 14 days", day(2025, 8, 1), FreqBiWeekly, day(2025, 8, 15)},
		{"monthly uses calendar month", day(2025, 1, 31), FreqMonthly, day(2025, 3, 3)},
		{"monthly mid-month", day(2025, 4, 15), FreqMonthly, day(2025, 5, 15)},
		{"quarterly adds 3 calendar months", day(2025, 1, 15), FreqQuarterly, day(2025, 4, 15)},
		{"annual preserves month and day", day(2025, 2, 28), FreqAnnual, day(2026, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextDueDate(tt.last, tt.frequency); !got.Equal(tt.want) {
				t.Errorf("NextDueDate(%v, %s) = %v, want %v",
					tt.last.Format("2006-01-02"), tt.frequency,
					got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}
