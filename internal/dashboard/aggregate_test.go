package dashboard

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storegoals-backend/pkg/enums"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func metricFor(t *testing.T, metrics []CategoryMetric, code enums.SaleCategory) CategoryMetric {
	t.Helper()
	for _, m := range metrics {
		if m.Code == code {
			return m
		}
	}
	t.Fatalf("metric %s missing", code)
	return CategoryMetric{}
}

func TestAggregateStoreScenario(t *testing.T) {
	goal := GoalSet{Total: dec("10000")}
	sales := []Sale{
		{Category: "geral", Value: dec("1000.05"), Quantity: 3},
		{Category: "geral", Value: dec("2083.02"), Quantity: 5},
	}

	got := metricFor(t, Aggregate(goal, sales), enums.CategoryGeneral)
	if got.Realized.String() != "3083.07" {
		t.Fatalf("realized = %s", got.Realized)
	}
	if got.Target.String() != "10000.00" {
		t.Fatalf("target = %s", got.Target)
	}
	if got.Remaining.String() != "6916.93" {
		t.Fatalf("remaining = %s", got.Remaining)
	}
	if got.Status != enums.MetricStatusPending {
		t.Fatalf("status = %s", got.Status)
	}
	if got.Progress != 30.83 {
		t.Fatalf("progress = %v", got.Progress)
	}
	if got.SalesCount != 2 || got.Quantity != 8 {
		t.Fatalf("count/quantity = %d/%d", got.SalesCount, got.Quantity)
	}
}

func TestAggregateMetAndExceeded(t *testing.T) {
	goal := GoalSet{
		Total: dec("100"),
		Categories: map[enums.SaleCategory]decimal.Decimal{
			enums.CategoryHealth:    dec("500"),
			enums.CategoryPerfumery: dec("50"),
		},
	}
	sales := []Sale{
		{Category: "saude", Value: dec("500")},
		{Category: "perfumaria_r_mais", Value: dec("80")},
	}
	out := Aggregate(goal, sales)

	health := metricFor(t, out, enums.CategoryHealth)
	if health.Status != enums.MetricStatusMet || !health.Remaining.IsZero() || health.Progress != 100 {
		t.Fatalf("health = %+v", health)
	}
	perf := metricFor(t, out, enums.CategoryPerfumery)
	if perf.Status != enums.MetricStatusExceeded || !perf.Remaining.IsZero() {
		t.Fatalf("perfumery = %+v", perf)
	}
	if perf.Progress != 100 {
		t.Fatalf("progress should cap at 100, got %v", perf.Progress)
	}
}

func TestAggregateZeroTargetIsAlwaysPending(t *testing.T) {
	out := Aggregate(GoalSet{}, []Sale{{Category: "r_mais", Value: dec("999")}})
	for _, m := range out {
		if m.Status != enums.MetricStatusPending {
			t.Fatalf("%s status = %s", m.Code, m.Status)
		}
		if m.Progress != 0 {
			t.Fatalf("%s progress = %v", m.Code, m.Progress)
		}
		if m.Remaining.IsNegative() {
			t.Fatalf("%s remaining negative", m.Code)
		}
	}
}

func TestAggregateOrderAndDisplayCodes(t *testing.T) {
	out := Aggregate(GoalSet{}, nil)
	want := []string{"geral", "rentavel", "perfumaria", "conveniencia", "goodlife"}
	if len(out) != len(want) {
		t.Fatalf("expected %d metrics, got %d", len(want), len(out))
	}
	for i, m := range out {
		if m.Category != want[i] {
			t.Fatalf("position %d = %s, want %s", i, m.Category, want[i])
		}
	}
}

func TestAggregateIsPureAndIdempotent(t *testing.T) {
	goal := GoalSet{Total: dec("10"), Categories: map[enums.SaleCategory]decimal.Decimal{enums.CategoryProfitable: dec("4")}}
	sales := []Sale{
		{Category: "geral", Value: dec("3")},
		{Category: "r_mais", Value: dec("5"), Quantity: 1},
		{Category: "unknown", Value: dec("7")},
	}
	snapshot := append([]Sale(nil), sales...)

	first := Aggregate(goal, sales)
	second := Aggregate(goal, sales)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregate not idempotent")
	}
	if !reflect.DeepEqual(sales, snapshot) {
		t.Fatalf("aggregate mutated its input")
	}
	if metricFor(t, first, enums.CategoryGeneral).Realized.String() != "3.00" {
		t.Fatalf("unknown category leaked into geral")
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	cases := [][2]string{{"0", "10"}, {"10", "0"}, {"10", "10"}, {"10", "10.01"}}
	for _, c := range cases {
		if Remaining(dec(c[0]), dec(c[1])).IsNegative() {
			t.Fatalf("remaining(%s, %s) negative", c[0], c[1])
		}
	}
}
