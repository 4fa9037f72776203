// Package insights computes spending analysis for a biller's bill history.
//
// The deterministic computation in Analyze is the floor: it needs no
// external service and always produces a usable Insight. An optional
// generative-text path (AIAnalyzer) may rephrase the same shape; every
// failure of that path lands back here.
package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mybillport/billport/internal/models"
)

// BillRecord is one historical bill for a single biller.
type BillRecord struct {
	Amount      float64   `json:"amount"`
	DueDate     time.Time `json:"dueDate"`
	Status      string    `json:"status"`
	IsRecurring bool      `json:"isRecurring"`
}

// Threshold constants for trend and tip rules. Behavior-matching tests
// depend on these exact values; confirm with product before tuning.
const (
	// trendDeadbandPct keeps near-zero changes labeled "stable" instead of
	// flip-flopping between increased and decreased.
	trendDeadbandPct = 2.0

	// spikeTipPct triggers the cost-spike tip.
	spikeTipPct = 15.0

	// variabilityRatio triggers the variability tip when the amount spread
	// exceeds this fraction of the average.
	variabilityRatio = 0.3
)

// TrendNotEnoughData is the trend label for histories below two bills.
const TrendNotEnoughData = "not enough data"

// Analyze computes the deterministic Insight for a biller's history.
// The history is sorted ascending by due date before any computation;
// trend direction depends on that order. Calling Analyze twice on the
// same history yields identical output.
func Analyze(history []BillRecord) models.Insight {
	if len(history) < 2 {
		return minimalInsight(history)
	}

	sorted := make([]BillRecord, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DueDate.Before(sorted[j].DueDate)
	})

	var sum float64
	minAmt, maxAmt := sorted[0].Amount, sorted[0].Amount
	for _, rec := range sorted {
		sum += rec.Amount
		if rec.Amount < minAmt {
			minAmt = rec.Amount
		}
		if rec.Amount > maxAmt {
			maxAmt = rec.Amount
		}
	}
	avg := roundCents(sum / float64(len(sorted)))

	latest := sorted[len(sorted)-1].Amount
	previous := sorted[len(sorted)-2].Amount
	pct := 0.0
	if previous > 0 {
		pct = (latest - previous) / previous * 100
	}
	pct = math.Round(pct*10) / 10

	trend := trendLabel(pct)

	last3 := sorted
	if len(last3) > 3 {
		last3 = sorted[len(sorted)-3:]
	}
	var last3Sum float64
	for _, rec := range last3 {
		last3Sum += rec.Amount
	}
	last3Avg := roundCents(last3Sum / float64(len(last3)))

	insight := models.Insight{
		Summary: fmt.Sprintf(
			"Across %d bills you averaged $%.2f; your last %d averaged $%.2f and the trend is %s.",
			len(sorted), avg, len(last3), last3Avg, trend),
		Trend:         trend,
		Tips:          buildTips(sorted, pct, avg, minAmt, maxAmt),
		PercentChange: &pct,
		AvgAmount:     avg,
		MinAmount:     minAmt,
		MaxAmount:     maxAmt,
		Source:        models.SourceDeterministic,
	}
	return insight
}

// minimalInsight is the mandatory fallback floor for tiny histories.
func minimalInsight(history []BillRecord) models.Insight {
	insight := models.Insight{
		Summary: "Not enough history yet to spot a trend. Keep tracking this biller.",
		Trend:   TrendNotEnoughData,
		Tips:    []string{"Add a couple more bills from this biller to unlock trend analysis."},
		Source:  models.SourceDeterministic,
	}
	if len(history) == 1 {
		amt := history[0].Amount
		insight.Summary = fmt.Sprintf("One bill on record for $%.2f. More history unlocks trends.", amt)
		insight.AvgAmount = amt
		insight.MinAmount = amt
		insight.MaxAmount = amt
	}
	return insight
}

func trendLabel(pct float64) string {
	switch {
	case math.Abs(pct) < trendDeadbandPct:
		return "stable"
	case pct > 0:
		return fmt.Sprintf("increased %.1f%%", pct)
	default:
		return fmt.Sprintf("decreased %.1f%%", math.Abs(pct))
	}
}

// buildTips applies the rule table. At least one tip is always returned.
func buildTips(history []BillRecord, pct, avg, minAmt, maxAmt float64) []string {
	var tips []string
	if pct > spikeTipPct {
		tips = append(tips, fmt.Sprintf(
			"Your latest bill jumped %.1f%% over the previous one. Check the statement for one-time charges.", pct))
	}
	if maxAmt-minAmt > avg*variabilityRatio {
		tips = append(tips, fmt.Sprintf(
			"Amounts swing between $%.2f and $%.2f. A usage-based plan review could smooth this out.", minAmt, maxAmt))
	}
	for _, rec := range history {
		if rec.IsRecurring {
			tips = append(tips, "This looks like a recurring bill. Setting up auto-pay avoids missed due dates.")
			break
		}
	}
	if len(tips) == 0 {
		tips = append(tips, "Spending with this biller looks steady. Nice work keeping it predictable.")
	}
	return tips
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
