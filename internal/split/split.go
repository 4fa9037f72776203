// Package split implements BillPort's session-local bill splitting.
//
// Splits are ephemeral: a list of named people sharing one bill amount,
// each independently markable paid. They live in a TTL session store,
// never in the durable data model, and people are plain names with no
// link to user accounts.
package split

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Person is one participant in a split and their allocated share.
type Person struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Paid   bool    `json:"paid"`
}

// SplitBill is one splitting session.
type SplitBill struct {
	ID        string   `json:"id"`
	BillName  string   `json:"billName"`
	Total     float64  `json:"total"`
	People    []Person `json:"people"`
	CreatedAt int64    `json:"createdAt"`
}

// New allocates total equally among the named people and returns a fresh
// session. Shares are computed in cents; leftover cents after even division
// go to the earliest participants so the shares always sum to the total.
func New(billName string, total float64, names []string) (*SplitBill, error) {
	shares, err := EqualShares(total, len(names))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(names))
	people := make([]Person, 0, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("participant name cannot be empty")
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("duplicate participant %q", name)
		}
		seen[strings.ToLower(name)] = true
		people = append(people, Person{Name: name, Amount: shares[i]})
	}

	return &SplitBill{
		ID:        uuid.New().String(),
		BillName:  billName,
		Total:     total,
		People:    people,
		CreatedAt: time.Now().Unix(),
	}, nil
}

// EqualShares divides total among n participants in cent-exact amounts.
// The first (total*100 mod n) shares carry one extra cent.
func EqualShares(total float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	if total < 0 {
		return nil, fmt.Errorf("total cannot be negative")
	}

	totalCents := int64(math.Round(total * 100))
	base := totalCents / int64(n)
	remainder := totalCents % int64(n)

	shares := make([]float64, n)
	for i := range shares {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		shares[i] = float64(cents) / 100
	}
	return shares, nil
}

// Share is an explicit allocation for one participant.
type Share struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// NewCustom builds a session from explicit per-person amounts. The shares
// must sum to total within half a cent.
func NewCustom(billName string, total float64, shares []Share) (*SplitBill, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	if total < 0 {
		return nil, fmt.Errorf("total cannot be negative")
	}

	seen := make(map[string]bool, len(shares))
	people := make([]Person, 0, len(shares))
	var sum float64
	for _, share := range shares {
		name := strings.TrimSpace(share.Name)
		if name == "" {
			return nil, fmt.Errorf("participant name cannot be empty")
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("duplicate participant %q", name)
		}
		if share.Amount < 0 {
			return nil, fmt.Errorf("share for %q cannot be negative", name)
		}
		seen[strings.ToLower(name)] = true
		people = append(people, Person{Name: name, Amount: roundCents(share.Amount)})
		sum += share.Amount
	}
	if math.Abs(sum-total) > 0.005 {
		return nil, fmt.Errorf("shares sum to %.2f, total is %.2f", sum, total)
	}

	return &SplitBill{
		ID:        uuid.New().String(),
		BillName:  billName,
		Total:     total,
		People:    people,
		CreatedAt: time.Now().Unix(),
	}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// MarkPaid flips the paid flag for the named person.
// Matching is case-insensitive to mirror how names were deduplicated.
func (s *SplitBill) MarkPaid(name string, paid bool) error {
	for i := range s.People {
		if strings.EqualFold(s.People[i].Name, strings.TrimSpace(name)) {
			s.People[i].Paid = paid
			return nil
		}
	}
	return fmt.Errorf("no participant named %q", name)
}

// Settled reports whether every participant has paid.
func (s *SplitBill) Settled() bool {
	for _, p := range s.People {
		if !p.Paid {
			return false
		}
	}
	return len(s.People) > 0
}

// Outstanding returns the unpaid people sorted by descending amount, the
// order the UI nags in.
func (s *SplitBill) Outstanding() []Person {
	var out []Person
	for _, p := range s.People {
		if !p.Paid {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}
