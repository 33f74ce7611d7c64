package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	"github.com/angelmondragon/storegoals-backend/pkg/types"
)

var (
	hundred     = decimal.NewFromInt(100)
	progressCap = hundred
)

// Sale is the slice of a sale row the aggregation reads.
type Sale struct {
	Category string
	Value    decimal.Decimal
	Quantity int
}

// GoalSet holds the period targets. Total is the geral target.
type GoalSet struct {
	Total      decimal.Decimal
	Categories map[enums.SaleCategory]decimal.Decimal
}

func (g GoalSet) target(c enums.SaleCategory) decimal.Decimal {
	if c == enums.CategoryGeneral {
		return g.Total
	}
	return g.Categories[c]
}

// CategoryMetric is the progress of one category against its target.
type CategoryMetric struct {
	Category   string             `json:"category"`
	Code       enums.SaleCategory `json:"code"`
	Title      string             `json:"title"`
	Realized   types.Money        `json:"realized"`
	Target     types.Money        `json:"target"`
	Remaining  types.Money        `json:"remaining"`
	Progress   float64            `json:"progress"`
	Status     enums.MetricStatus `json:"status"`
	SalesCount int                `json:"sales_count"`
	Quantity   int                `json:"quantity"`
}

type bucket struct {
	realized decimal.Decimal
	count    int
	quantity int
}

// Aggregate reduces sales into one metric per fixed category, in display
// order. Sales whose category is not one of the fixed codes are ignored.
// Inputs are not modified.
func Aggregate(goal GoalSet, sales []Sale) []CategoryMetric {
	buckets := make(map[enums.SaleCategory]*bucket, len(enums.Categories))
	for _, c := range enums.Categories {
		buckets[c] = &bucket{realized: decimal.Zero}
	}
	for _, sale := range sales {
		b, ok := buckets[enums.SaleCategory(sale.Category)]
		if !ok {
			continue
		}
		b.realized = b.realized.Add(sale.Value)
		b.count++
		b.quantity += sale.Quantity
	}

	out := make([]CategoryMetric, 0, len(enums.Categories))
	for _, c := range enums.Categories {
		b := buckets[c]
		target := goal.target(c)
		realized := b.realized.Round(2)
		out = append(out, CategoryMetric{
			Category:   c.Display(),
			Code:       c,
			Title:      c.Title(),
			Realized:   types.NewMoney(realized),
			Target:     types.NewMoney(target),
			Remaining:  types.NewMoney(Remaining(target, realized)),
			Progress:   Progress(target, realized),
			Status:     Status(target, realized),
			SalesCount: b.count,
			Quantity:   b.quantity,
		})
	}
	return out
}

// Remaining is max(0, target - realized).
func Remaining(target, realized decimal.Decimal) decimal.Decimal {
	diff := target.Sub(realized)
	if diff.IsNegative() {
		return decimal.Zero
	}
	return diff
}

// Status classifies realized against target. A zero target is always pending.
func Status(target, realized decimal.Decimal) enums.MetricStatus {
	if !target.IsPositive() {
		return enums.MetricStatusPending
	}
	switch realized.Cmp(target) {
	case 0:
		return enums.MetricStatusMet
	case 1:
		return enums.MetricStatusExceeded
	default:
		return enums.MetricStatusPending
	}
}

// Progress is realized/target as a percentage with two decimals, capped at 100.
func Progress(target, realized decimal.Decimal) float64 {
	if !target.IsPositive() {
		return 0
	}
	pct := realized.Mul(hundred).Div(target)
	if pct.GreaterThan(progressCap) {
		pct = progressCap
	}
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	return pct.Round(2).InexactFloat64()
}
