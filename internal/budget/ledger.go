package budget

import (
	"fmt"
	"sync"
)

// Ledger tracks realized spend per category against an allocation during
// execution. Only the executor mutates it, one tool result at a time.
type Ledger struct {
	total      float64
	allocation Allocation
	spent      map[Category]float64
	mu         sync.Mutex
}

// NewLedger starts tracking spend for one request.
func NewLedger(budgetTotal float64, alloc Allocation) *Ledger {
	return &Ledger{
		total:      budgetTotal,
		allocation: alloc,
		spent:      make(map[Category]float64, 3),
	}
}

// Add records a realized cost against a category. It returns
// ErrCeilingExceeded when the category total passes its planned ceiling;
// the spend is still recorded, since overrun is a detectable condition
// rather than a hard constraint.
func (l *Ledger) Add(c Category, cost float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.spent[c] += cost
	ceiling := l.allocation.Ceiling(c)
	if c != CategoryNone && ceiling > 0 && l.spent[c] > ceiling {
		return ErrCeilingExceeded{
			Category: c,
			Spent:    l.spent[c],
			Ceiling:  ceiling,
		}
	}
	return nil
}

// Spent returns the realized total for a category.
func (l *Ledger) Spent(c Category) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.spent[c]
}

// Remaining returns budget_total minus the sum of all realized costs. It
// may be negative when the run overran.
func (l *Ledger) Remaining() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	remaining := l.total
	for _, cost := range l.spent {
		remaining -= cost
	}
	return remaining
}

// Allocation returns the planned ceilings the ledger tracks against.
func (l *Ledger) Allocation() Allocation { return l.allocation }

// Total returns the trip budget total.
func (l *Ledger) Total() float64 { return l.total }

// Snapshot captures the ledger for inclusion in the final agent state.
type Snapshot struct {
	Total      float64              `json:"total"`
	Allocation Allocation           `json:"allocation"`
	Spent      map[Category]float64 `json:"spent"`
	Remaining  float64              `json:"remaining"`
}

// Snapshot returns an immutable copy of the current ledger state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	spent := make(map[Category]float64, len(l.spent))
	remaining := l.total
	for c, cost := range l.spent {
		spent[c] = cost
		remaining -= cost
	}
	return Snapshot{
		Total:      l.total,
		Allocation: l.allocation,
		Spent:      spent,
		Remaining:  remaining,
	}
}

// ErrCeilingExceeded is returned when a category's realized spend passes
// its planned ceiling.
type ErrCeilingExceeded struct {
	Category Category
	Spent    float64
	Ceiling  float64
}

func (e ErrCeilingExceeded) Error() string {
	return fmt.Sprintf("budget %s exceeded: spent=$%.2f ceiling=$%.2f", e.Category, e.Spent, e.Ceiling)
}
