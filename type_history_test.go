package shareline

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) Date { return NewDate(y, m, d) }

func TestHistoryAppendKeepsOrder(t *testing.T) {
	h := &History[Quantity]{}
	h.Append(day(2024, 3, 1), Q(300))
	h.Append(day(2024, 1, 1), Q(100))
	h.Append(day(2024, 2, 1), Q(200))

	want := []string{"2024-01-01", "2024-02-01", "2024-03-01"}
	got := h.Days()
	if len(got) != len(want) {
		t.Fatalf("got %d days, want %d", len(got), len(want))
	}
	for i, d := range got {
		if d.String() != want[i] {
			t.Errorf("day[%d] = %s, want %s", i, d, want[i])
		}
	}
}

func TestHistoryAppendOverwritesSameDay(t *testing.T) {
	h := &History[Quantity]{}
	h.Append(day(2024, 1, 1), Q(100))
	h.Append(day(2024, 1, 1), Q(150))

	if h.Len() != 1 {
		t.Fatalf("got %d entries, want 1", h.Len())
	}
	if q, _ := h.Get(day(2024, 1, 1)); !q.Equal(Q(150)) {
		t.Errorf("got %s, want 150", q)
	}
}

func TestHistoryAsOf(t *testing.T) {
	h := &History[Quantity]{}
	h.Append(day(2024, 1, 1), Q(100))
	h.Append(day(2024, 3, 1), Q(300))
	h.Append(day(2024, 6, 1), Q(600))

	tests := []struct {
		on     string
		want   string
		wantOK bool
	}{
		{on: "2024-06-15", want: "2024-06-01", wantOK: true},
		{on: "2024-03-01", want: "2024-03-01", wantOK: true},
		{on: "2024-02-15", want: "2024-01-01", wantOK: true},
		{on: "2023-12-31", wantOK: false},
	}
	for _, tc := range tests {
		got, ok := h.DayAsOf(MustParse(tc.on))
		if ok != tc.wantOK {
			t.Errorf("DayAsOf(%s) ok = %v, want %v", tc.on, ok, tc.wantOK)
			continue
		}
		if ok && got.String() != tc.want {
			t.Errorf("DayAsOf(%s) = %s, want %s", tc.on, got, tc.want)
		}
	}
}

func TestHistoryOnOrAfter(t *testing.T) {
	h := &History[Quantity]{}
	h.Append(day(2024, 1, 1), Q(100))
	h.Append(day(2024, 3, 1), Q(300))

	if got, ok := h.DayOnOrAfter(MustParse("2024-02-01")); !ok || got.String() != "2024-03-01" {
		t.Errorf("DayOnOrAfter(2024-02-01) = %s, %v", got, ok)
	}
	if _, ok := h.DayOnOrAfter(MustParse("2024-03-02")); ok {
		t.Error("DayOnOrAfter past the end should not resolve")
	}
}

func TestHistoryLatestAndClone(t *testing.T) {
	h := &History[Quantity]{}
	h.Append(day(2024, 1, 1), Q(100))
	h.Append(day(2024, 2, 1), Q(200))

	on, q := h.Latest()
	if on.String() != "2024-02-01" || !q.Equal(Q(200)) {
		t.Errorf("Latest = %s %s", on, q)
	}

	c := h.Clone()
	c.Append(day(2024, 3, 1), Q(300))
	if h.Len() != 2 {
		t.Errorf("clone mutated the original: len=%d", h.Len())
	}
}
