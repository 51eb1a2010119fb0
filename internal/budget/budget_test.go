package budget

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 0.001 }

func TestDefaultSplit(t *testing.T) {
	tests := []struct {
		name       string
		total      float64
		transport  float64
		lodging    float64
		activities float64
	}{
		{"small budget caps transport", 500, 50, 270, 150},
		{"activities floor applies", 600, 50, 330, 150},
		{"large budget assumes flying", 3000, 600, 1440, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := DefaultSplit(tt.total)
			if !almostEqual(a.Transport, tt.transport) {
				t.Errorf("transport = %.2f, want %.2f", a.Transport, tt.transport)
			}
			if !almostEqual(a.Lodging, tt.lodging) {
				t.Errorf("lodging = %.2f, want %.2f", a.Lodging, tt.lodging)
			}
			if !almostEqual(a.Activities, tt.activities) {
				t.Errorf("activities = %.2f, want %.2f", a.Activities, tt.activities)
			}
			if a.Total() > tt.total {
				t.Errorf("allocation total %.2f exceeds budget %.2f", a.Total(), tt.total)
			}
		})
	}
}

func TestAllocationValidate(t *testing.T) {
	if err := (Allocation{Transport: 100, Lodging: 300, Activities: 100}).Validate(500); err != nil {
		t.Errorf("valid allocation rejected: %v", err)
	}
	if err := (Allocation{Transport: -1}).Validate(500); err == nil {
		t.Error("negative allocation accepted")
	}
	if err := (Allocation{Transport: 400, Lodging: 400}).Validate(500); err == nil {
		t.Error("over-budget allocation accepted")
	}
}

func TestAllocationRescale(t *testing.T) {
	a := Allocation{Transport: 200, Lodging: 600, Activities: 200}.Rescale(500)
	if !almostEqual(a.Total(), 500) {
		t.Fatalf("rescaled total = %.2f, want 500", a.Total())
	}
	// Proportions must survive the rescale.
	if !almostEqual(a.Lodging/a.Transport, 3) {
		t.Errorf("lodging/transport ratio = %.2f, want 3", a.Lodging/a.Transport)
	}

	// An empty allocation becomes the default split.
	b := Allocation{}.Rescale(500)
	if b.Total() == 0 {
		t.Error("empty allocation not replaced by default split")
	}
}

func TestLedgerCeiling(t *testing.T) {
	l := NewLedger(500, Allocation{Transport: 50, Lodging: 270, Activities: 150})

	if err := l.Add(CategoryTransport, 30); err != nil {
		t.Fatalf("within-ceiling add errored: %v", err)
	}
	err := l.Add(CategoryLodging, 300)
	var exceeded ErrCeilingExceeded
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected ErrCeilingExceeded, got %v", err)
	}
	if exceeded.Category != CategoryLodging {
		t.Errorf("exceeded category = %s, want lodging", exceeded.Category)
	}

	// The overrun is still recorded.
	if got := l.Spent(CategoryLodging); !almostEqual(got, 300) {
		t.Errorf("lodging spent = %.2f, want 300", got)
	}
	if got := l.Remaining(); !almostEqual(got, 170) {
		t.Errorf("remaining = %.2f, want 170", got)
	}
}

func TestLedgerSnapshot(t *testing.T) {
	alloc := Allocation{Transport: 50, Lodging: 270, Activities: 150}
	l := NewLedger(500, alloc)
	_ = l.Add(CategoryTransport, 27.30)
	_ = l.Add(CategoryActivities, 60)

	snap := l.Snapshot()
	sum := snap.Remaining
	for _, v := range snap.Spent {
		sum += v
	}
	if !almostEqual(sum, snap.Total) {
		t.Errorf("spent + remaining = %.2f, want %.2f", sum, snap.Total)
	}
	if snap.Allocation != alloc {
		t.Errorf("snapshot allocation = %+v, want %+v", snap.Allocation, alloc)
	}
}
