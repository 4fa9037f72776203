package split

import (
	"math"
	"testing"
)

func TestEqualShares(t *testing.T) {
	tests := []struct {
		name    string
		total   float64
		n       int
		want    []float64
		wantErr bool
	}{
		{
			name:  "even division",
			total: 90.00,
			n:     3,
			want:  []float64{30, 30, 30},
		},
		{
			name:  "remainder cents go to earliest participants",
			total: 100.00,
			n:     3,
			want:  []float64{33.34, 33.33, 33.33},
		},
		{
			name:  "two cents of remainder",
			total: 0.05,
			n:     3,
			want:  []float64{0.02, 0.02, 0.01},
		},
		{
			name:    "zero participants errors",
			total:   50,
			n:       0,
			wantErr: true,
		},
		{
			name:    "negative total errors",
			total:   -10,
			n:       2,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EqualShares(tt.total, tt.n)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("EqualShares failed: %v", err)
			}
			var sum float64
			for i, share := range got {
				if math.Abs(share-tt.want[i]) > 0.0001 {
					t.Errorf("share[%d] = %v, want %v", i, share, tt.want[i])
				}
				sum += share
			}
			if math.Abs(sum-tt.total) > 0.0001 {
				t.Errorf("shares sum to %v, want %v", sum, tt.total)
			}
		})
	}
}

func TestNewSplit(t *testing.T) {
	s, err := New("Cottage weekend", 100, []string{"Alice", "Bob", "Charlie"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.ID == "" {
		t.Error("expected generated ID")
	}
	if len(s.People) != 3 {
		t.Fatalf("got %d people, want 3", len(s.People))
	}
	if s.People[0].Amount != 33.34 || s.People[1].Amount != 33.33 {
		t.Errorf("shares = %v/%v, want 33.34/33.33", s.People[0].Amount, s.People[1].Amount)
	}

	if _, err := New("x", 10, []string{"Alice", "alice"}); err == nil {
		t.Error("expected error for duplicate names")
	}
	if _, err := New("x", 10, []string{"Alice", " "}); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestNewCustom(t *testing.T) {
	s, err := NewCustom("Utilities", 150, []Share{
		{Name: "Alice", Amount: 100},
		{Name: "Bob", Amount: 50},
	})
	if err != nil {
		t.Fatalf("NewCustom failed: %v", err)
	}
	if s.People[0].Amount != 100 || s.People[1].Amount != 50 {
		t.Errorf("shares = %v/%v, want 100/50", s.People[0].Amount, s.People[1].Amount)
	}

	if _, err := NewCustom("x", 100, []Share{{Name: "Alice", Amount: 60}, {Name: "Bob", Amount: 30}}); err == nil {
		t.Error("expected error when shares do not sum to total")
	}
	if _, err := NewCustom("x", 10, []Share{{Name: "Alice", Amount: 15}, {Name: "Bob", Amount: -5}}); err == nil {
		t.Error("expected error for negative share")
	}
	if _, err := NewCustom("x", 10, nil); err == nil {
		t.Error("expected error for no participants")
	}
}

func TestMarkPaidAndSettled(t *testing.T) {
	s, err := New("Dinner", 60, []string{"Alice", "Bob"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if s.Settled() {
		t.Error("fresh split should not be settled")
	}
	if err := s.MarkPaid("alice", true); err != nil {
		t.Fatalf("MarkPaid case-insensitive failed: %v", err)
	}
	if s.Settled() {
		t.Error("one unpaid participant left, should not be settled")
	}

	out := s.Outstanding()
	if len(out) != 1 || out[0].Name != "Bob" {
		t.Errorf("Outstanding = %v, want just Bob", out)
	}

	if err := s.MarkPaid("Bob", true); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if !s.Settled() {
		t.Error("all paid, should be settled")
	}

	if err := s.MarkPaid("Mallory", true); err == nil {
		t.Error("expected error for unknown participant")
	}
}
