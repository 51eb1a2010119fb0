package budget

import "fmt"

// Category identifies which slice of the trip budget a cost belongs to.
type Category string

const (
	CategoryTransport  Category = "transport"
	CategoryLodging    Category = "lodging"
	CategoryActivities Category = "activities"
	CategoryNone       Category = "none"
)

// Valid reports whether c is a known budget category.
func (c Category) Valid() bool {
	switch c {
	case CategoryTransport, CategoryLodging, CategoryActivities, CategoryNone:
		return true
	}
	return false
}

// Categories lists the spend-bearing categories in a stable order.
func Categories() []Category {
	return []Category{CategoryTransport, CategoryLodging, CategoryActivities}
}

// Allocation holds the per-category planned ceilings decided at planning
// time. It is created once by the planner and read-only afterwards.
type Allocation struct {
	Transport  float64 `json:"transport"`
	Lodging    float64 `json:"lodging"`
	Activities float64 `json:"activities"`
}

// Ceiling returns the planned ceiling for a category. Uncategorised spend
// has no ceiling.
func (a Allocation) Ceiling(c Category) float64 {
	switch c {
	case CategoryTransport:
		return a.Transport
	case CategoryLodging:
		return a.Lodging
	case CategoryActivities:
		return a.Activities
	}
	return 0
}

// Total returns the sum of all category ceilings.
func (a Allocation) Total() float64 {
	return a.Transport + a.Lodging + a.Activities
}

// Validate ensures the allocation is sane against the total trip budget.
func (a Allocation) Validate(budgetTotal float64) error {
	if a.Transport < 0 || a.Lodging < 0 || a.Activities < 0 {
		return fmt.Errorf("allocation categories cannot be negative")
	}
	if a.Total() > budgetTotal {
		return fmt.Errorf("allocation total $%.2f exceeds budget $%.2f", a.Total(), budgetTotal)
	}
	return nil
}

// Rescale proportionally shrinks the allocation so its total fits within
// budgetTotal. A zero-total allocation is replaced by the default split.
func (a Allocation) Rescale(budgetTotal float64) Allocation {
	if a.Transport < 0 {
		a.Transport = 0
	}
	if a.Lodging < 0 {
		a.Lodging = 0
	}
	if a.Activities < 0 {
		a.Activities = 0
	}
	total := a.Total()
	if total == 0 {
		return DefaultSplit(budgetTotal)
	}
	if total <= budgetTotal {
		return a
	}
	factor := budgetTotal / total
	return Allocation{
		Transport:  a.Transport * factor,
		Lodging:    a.Lodging * factor,
		Activities: a.Activities * factor,
	}
}

// DefaultSplit produces the deterministic fallback allocation: roughly 15%
// transport, 50% lodging, 35% activities, mirroring the template plan.
func DefaultSplit(budgetTotal float64) Allocation {
	transport := budgetTotal * 0.10
	if transport > 50 {
		transport = 50
	}
	// Larger budgets usually imply flying distances.
	if budgetTotal > 2000 {
		transport = budgetTotal * 0.20
		if transport > 800 {
			transport = 800
		}
	}
	remaining := budgetTotal - transport
	lodging := remaining * 0.60
	activities := budgetTotal * 0.20
	if activities < 150 {
		activities = 150
	}
	if transport+lodging+activities > budgetTotal {
		return Allocation{Transport: transport, Lodging: lodging, Activities: activities}.Rescale(budgetTotal)
	}
	return Allocation{Transport: transport, Lodging: lodging, Activities: activities}
}
