package shareline

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func fundRegistry(t *testing.T) *Registry {
	t.Helper()
	jan := NewDate(2024, time.January, 1)
	feb := NewDate(2024, time.February, 1)
	return NewRegistry().
		Merge(jan, records(
			rec("AQUA FUND SERIES 1", "AAACA0001A", "Mutual Funds", 1000),
			rec("AQUA FUND SERIES 2", "AAACA0002A", "Mutual Funds", 2000),
			rec("BLUEPOOL CAPITAL", "AAACB0001B", "FII", 500),
		)).
		Merge(feb, records(
			// series 2 skips feb on purpose
			rec("AQUA FUND SERIES 1", "AAACA0001A", "Mutual Funds", 1500),
			rec("BLUEPOOL CAPITAL", "AAACB0001B", "FII", 700),
		))
}

func TestGroupByFundAggregates(t *testing.T) {
	jan := NewDate(2024, time.January, 1)
	feb := NewDate(2024, time.February, 1)
	grouped := fundRegistry(t).GroupByFund()

	agg, ok := grouped.Get("AQUA FUND")
	if !ok {
		t.Fatal("aggregate AQUA FUND not found")
	}
	if !agg.IsAggregate() || len(agg.Members()) != 2 {
		t.Fatalf("aggregate has %d members", len(agg.Members()))
	}
	if q, _ := agg.SharesOn(jan); !q.Equal(Q(3000)) {
		t.Errorf("jan sum = %s, want 3000", q)
	}
	// absent member dates count as zero in the sum only
	if q, _ := agg.SharesOn(feb); !q.Equal(Q(1500)) {
		t.Errorf("feb sum = %s, want 1500", q)
	}

	// singletons pass through unchanged
	blue, ok := grouped.Get("AAACB0001B")
	if !ok || blue.IsAggregate() {
		t.Error("singleton BLUEPOOL was wrapped")
	}
}

func TestUngroupIsTrueInverse(t *testing.T) {
	reg := fundRegistry(t)
	back := reg.GroupByFund().Ungroup()

	if diff := cmp.Diff(dump(reg), dump(back)); diff != "" {
		t.Errorf("ungroup(group(reg)) differs from reg (-want +got):\n%s", diff)
	}
}

func TestGroupByFundIsIdempotent(t *testing.T) {
	once := fundRegistry(t).GroupByFund()
	twice := once.GroupByFund()

	if diff := cmp.Diff(dump(once), dump(twice)); diff != "" {
		t.Errorf("grouping twice differs from once (-want +got):\n%s", diff)
	}
}

// dump flattens a registry into a comparable shape: key -> date -> shares.
func dump(r *Registry) map[string]map[string]string {
	out := make(map[string]map[string]string, r.Len())
	for e := range r.Entities() {
		m := make(map[string]string, e.Shares().Len())
		for on, q := range e.Shares().Values() {
			m[on.String()] = q.String()
		}
		out[e.Key] = m
	}
	return out
}
