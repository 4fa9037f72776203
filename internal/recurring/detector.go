// Package recurring infers recurring charges from dated transaction history.
//
// Detection is purely statistical: group by merchant, look at the spacing
// and amounts of the group, and score how subscription-like it is. Two
// legally distinct merchants sharing a display string will collapse into
// one group; that is an accepted limitation of name-based grouping.
package recurring

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mybillport/billport/internal/billmail"
	"github.com/mybillport/billport/internal/models"
)

// Transaction is one dated charge attributed to a merchant.
type Transaction struct {
	Merchant string    `json:"merchant"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"`
}

// Frequency labels for detected cadences.
const (
	FreqWeekly    = "weekly"
	FreqBiWeekly  = "bi-weekly"
	FreqMonthly   = "monthly"
	FreqQuarterly = "quarterly"
	FreqAnnual    = "annual"
)

// frequencyBucket maps a mean inter-occurrence gap to a cadence label.
// The day ranges are the documented tolerance bands; gaps outside every
// band mean the group has no recognizable cadence.
type frequencyBucket struct {
	label    string
	minDays  float64
	maxDays  float64
	expected float64
}

var frequencyBuckets = []frequencyBucket{
	{FreqWeekly, 5, 9, 7},
	{FreqBiWeekly, 12, 18, 14},
	{FreqMonthly, 25, 35, 30},
	{FreqQuarterly, 80, 100, 91},
	{FreqAnnual, 340, 390, 365},
}

// MinOccurrences is the qualification floor: a merchant seen once is never
// a candidate.
const MinOccurrences = 2

// Detect groups transactions by normalized merchant name and returns one
// candidate per group that shows a recognizable cadence. Output is sorted
// by descending confidence (merchant name breaks ties so runs are
// deterministic). An empty input yields an empty result, not an error.
func Detect(txs []Transaction) []models.RecurringBillCandidate {
	groups := make(map[string][]Transaction)
	display := make(map[string]string)
	for _, tx := range txs {
		key := normalizeMerchant(tx.Merchant)
		if key == "" {
			continue
		}
		if _, seen := display[key]; !seen {
			display[key] = strings.TrimSpace(tx.Merchant)
		}
		groups[key] = append(groups[key], tx)
	}

	var candidates []models.RecurringBillCandidate
	for key, group := range groups {
		if cand, ok := analyzeGroup(display[key], group); ok {
			candidates = append(candidates, cand)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Merchant < candidates[j].Merchant
	})
	return candidates
}

// analyzeGroup decides whether one merchant's transactions look recurring.
func analyzeGroup(merchant string, group []Transaction) (models.RecurringBillCandidate, bool) {
	if len(group) < MinOccurrences {
		return models.RecurringBillCandidate{}, false
	}

	sort.Slice(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })

	gaps := make([]float64, 0, len(group)-1)
	for i := 1; i < len(group); i++ {
		gaps = append(gaps, group[i].Date.Sub(group[i-1].Date).Hours()/24)
	}
	meanGap := mean(gaps)

	bucket, ok := bucketFor(meanGap)
	if !ok {
		return models.RecurringBillCandidate{}, false
	}

	amounts := make([]float64, len(group))
	for i, tx := range group {
		amounts[i] = tx.Amount
	}
	avgAmount := mean(amounts)

	// Consistency terms are 1 - (stddev relative to scale), floored at 0.
	amountConsistency := 1.0
	if avgAmount > 0 {
		amountConsistency = 1 - math.Min(stddev(amounts, avgAmount)/avgAmount, 1)
	}
	intervalConsistency := 1 - math.Min(stddev(gaps, meanGap)/bucket.expected, 1)

	confidence := 0.4*amountConsistency + 0.4*intervalConsistency + 0.2*math.Min(float64(len(group))/5, 1)
	confidence = math.Min(math.Max(confidence, 0), 1)

	last := group[len(group)-1].Date
	return models.RecurringBillCandidate{
		Merchant:      merchant,
		Category:      billmail.Categorize(merchant),
		AverageAmount: roundCents(avgAmount),
		Frequency:     bucket.label,
		Occurrences:   len(group),
		LastDate:      last.Format("2006-01-02"),
		NextDueDate:   NextDueDate(last, bucket.label).Format("2006-01-02"),
		Confidence:    confidence,
		Band:          models.BandForConfidence(confidence),
	}, true
}

// NextDueDate projects the next occurrence from the last one.
// Monthly, quarterly and annual cadences use calendar arithmetic ("+1
// month", not "+30 days") so the projection does not drift across months
// of different lengths.
func NextDueDate(last time.Time, frequency string) time.Time {
	switch frequency {
	case FreqWeekly:
		return last.AddDate(0, 0, 7)
	case FreqBiWeekly:
		return last.AddDate(0, 0, 14)
	case FreqMonthly:
		return last.AddDate(0, 1, 0)
	case FreqQuarterly:
		return last.AddDate(0, 3, 0)
	case FreqAnnual:
		return last.AddDate(1, 0, 0)
	default:
		return last.AddDate(0, 1, 0)
	}
}

func bucketFor(meanGap float64) (frequencyBucket, bool) {
	for _, b := range frequencyBuckets {
		if meanGap >= b.minDays && meanGap <= b.maxDays {
			return b, true
		}
	}
	return frequencyBucket{}, false
}

func normalizeMerchant(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
