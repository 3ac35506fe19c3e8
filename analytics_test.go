package shareline

import (
	"testing"
	"time"
)

func analyticsRegistry() *Registry {
	jan := NewDate(2024, time.January, 1)
	mar := NewDate(2024, time.March, 1)
	jun := NewDate(2024, time.June, 1)
	return NewRegistry().
		Merge(jan, records(
			rec("AQUA FUND", "AAACA0001A", "Mutual Funds", 10000),
			rec("BLUEPOOL", "AAACB0001B", "FII", 50000),
			rec("CREST TRUST", "AAACC0001C", "Trust", 30000),
		)).
		Merge(mar, records(
			rec("AQUA FUND", "AAACA0001A", "Mutual Funds", 15000),
			rec("BLUEPOOL", "AAACB0001B", "FII", 42000),
			rec("CREST TRUST", "AAACC0001C", "Trust", 30000),
		)).
		Merge(jun, records(
			rec("AQUA FUND", "AAACA0001A", "Mutual Funds", 18000),
			rec("BLUEPOOL", "AAACB0001B", "FII", 40000),
			rec("CREST TRUST", "AAACC0001C", "Trust", 30500),
		))
}

func TestResolveWindowAsymmetry(t *testing.T) {
	reg := analyticsRegistry() // dates: 2024-01-01, 2024-03-01, 2024-06-01
	tests := []struct {
		start, end string
		wantStart  string
		wantEnd    string
		wantOK     bool
	}{
		// start rounds forward, end rounds backward
		{start: "2024-02-01", end: "2024-05-01", wantStart: "2024-03-01", wantEnd: "2024-03-01", wantOK: true},
		{start: "2024-01-01", end: "2024-06-01", wantStart: "2024-01-01", wantEnd: "2024-06-01", wantOK: true},
		{start: "2023-12-01", end: "2024-02-01", wantStart: "2024-01-01", wantEnd: "2024-01-01", wantOK: true},
		// no date on or after the start
		{start: "2024-07-01", end: "2024-12-31", wantOK: false},
		// no date on or before the end
		{start: "2023-01-01", end: "2023-12-31", wantOK: false},
		// boundaries cross after resolution
		{start: "2024-03-02", end: "2024-05-31", wantOK: false},
	}
	for _, tc := range tests {
		w, ok := reg.ResolveWindow(MustParse(tc.start), MustParse(tc.end))
		if ok != tc.wantOK {
			t.Errorf("ResolveWindow(%s, %s) ok = %v, want %v", tc.start, tc.end, ok, tc.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if w.Start.String() != tc.wantStart || w.End.String() != tc.wantEnd {
			t.Errorf("ResolveWindow(%s, %s) = [%s, %s], want [%s, %s]",
				tc.start, tc.end, w.Start, w.End, tc.wantStart, tc.wantEnd)
		}
	}
}

func TestRankBuyersAndSellers(t *testing.T) {
	reg := analyticsRegistry()
	w, ok := reg.ResolveWindow(MustParse("2024-01-01"), MustParse("2024-06-01"))
	if !ok {
		t.Fatal("window did not resolve")
	}
	entities := reg.Select(nil)

	buyers := Rank(entities, w, Buyers)
	if buyers[0].Entity.Name != "AQUA FUND" || !buyers[0].Change.Equal(Q(8000)) {
		t.Errorf("top buyer = %s %s", buyers[0].Entity.Name, buyers[0].Change)
	}

	sellers := Rank(entities, w, Sellers)
	if sellers[0].Entity.Name != "BLUEPOOL" || !sellers[0].Change.Equal(Q(-10000)) {
		t.Errorf("top seller = %s %s", sellers[0].Entity.Name, sellers[0].Change)
	}
}

func TestRankIsStableOnTies(t *testing.T) {
	jan := NewDate(2024, time.January, 1)
	feb := NewDate(2024, time.February, 1)
	reg := NewRegistry().
		Merge(jan, records(
			rec("FIRST", "AAACF0001F", "FII", 100),
			rec("SECOND", "AAACS0001S", "FII", 200),
			rec("THIRD", "AAACT0001T", "FII", 300),
		)).
		Merge(feb, records(
			rec("FIRST", "AAACF0001F", "FII", 100),
			rec("SECOND", "AAACS0001S", "FII", 200),
			rec("THIRD", "AAACT0001T", "FII", 300),
		))

	w, _ := reg.ResolveWindow(jan, feb)
	deltas := Rank(reg.Select(nil), w, Buyers)
	want := []string{"FIRST", "SECOND", "THIRD"}
	for i, d := range deltas {
		if d.Entity.Name != want[i] {
			t.Errorf("tie order broken at %d: got %s, want %s", i, d.Entity.Name, want[i])
		}
	}
}

func TestClassifyTrend(t *testing.T) {
	p := DefaultPolicy() // threshold 1000
	tests := []struct {
		change int64
		want   Behavior
	}{
		{change: 1001, want: Buyer},
		{change: 1000, want: Holder}, // strictly greater than
		{change: 0, want: Holder},
		{change: -1000, want: Holder},
		{change: -1001, want: Seller},
	}
	for _, tc := range tests {
		if got := ClassifyTrend(Q(tc.change), p); got != tc.want {
			t.Errorf("ClassifyTrend(%d) = %s, want %s", tc.change, got, tc.want)
		}
	}
}

func TestClassifyTwoPoint(t *testing.T) {
	p := DefaultPolicy()
	month1 := PointSnapshot{
		"steady": Q(0),
		"rising": Q(500),
		"gone":   Q(100),
		"fallen": Q(2000),
	}
	month2 := PointSnapshot{
		"steady":  Q(200),
		"rising":  Q(2000),
		"fallen":  Q(-500),
		"arrived": Q(9000),
	}
	want := map[string]Behavior{
		"steady":  Holder,
		"rising":  Buyer,
		"fallen":  Seller,
		"gone":    Exited,
		"arrived": New,
	}
	got := ClassifyTwoPoint(month1, month2, p)
	for key, behavior := range want {
		if got[key] != behavior {
			t.Errorf("%s classified %s, want %s", key, got[key], behavior)
		}
	}
	if len(got) != len(want) {
		t.Errorf("classified %d keys, want %d", len(got), len(want))
	}
}

func TestFiltersCompose(t *testing.T) {
	reg := analyticsRegistry()
	p := DefaultPolicy()

	// all three pass the default activity gate
	if got := len(reg.Select(Active(p))); got != 3 {
		t.Errorf("Active selected %d, want 3", got)
	}

	f := And(Active(p), ByCategory("FII"), ByMatch("blue"))
	selected := reg.Select(f)
	if len(selected) != 1 || selected[0].Name != "BLUEPOOL" {
		t.Errorf("composed filter selected %v", selected)
	}

	on := MustParse("2024-06-01")
	between := reg.Select(BySharesBetween(on, Q(30000), Q(41000)))
	if len(between) != 2 {
		t.Errorf("BySharesBetween selected %d, want 2", len(between))
	}
}

func TestActiveGate(t *testing.T) {
	p := DefaultPolicy() // min 20000 since 2021-07-19
	old := NewDate(2021, time.January, 1)
	now := NewDate(2024, time.January, 1)
	reg := NewRegistry().
		Merge(old, records(rec("FORMER GIANT", "AAACF0001F", "FII", 90000))).
		Merge(now, records(
			rec("FORMER GIANT", "AAACF0001F", "FII", 100),
			rec("SMALL FRY", "AAACS0001S", "FII", 1000),
			rec("BIG FISH", "AAACB0001B", "FII", 25000),
		))

	names := make(map[string]bool)
	for _, e := range reg.Select(Active(p)) {
		names[e.Name] = true
	}
	if names["FORMER GIANT"] {
		t.Error("pre-cutoff peak should not count")
	}
	if names["SMALL FRY"] {
		t.Error("never reached the minimum")
	}
	if !names["BIG FISH"] {
		t.Error("BIG FISH holds above the minimum now")
	}
}
