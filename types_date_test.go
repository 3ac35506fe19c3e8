package shareline

import (
	"testing"
	"time"
)

func TestDateOrdering(t *testing.T) {
	// the string form must sort like the dates themselves
	days := []Date{
		NewDate(2021, time.July, 19),
		NewDate(2021, time.December, 31),
		NewDate(2022, time.January, 1),
		NewDate(2022, time.October, 9),
	}
	for i := 1; i < len(days); i++ {
		if !days[i-1].Before(days[i]) {
			t.Errorf("expected %s < %s", days[i-1], days[i])
		}
		if days[i-1].String() >= days[i].String() {
			t.Errorf("string order broken: %q >= %q", days[i-1], days[i])
		}
	}
}

func TestDateNormalizes(t *testing.T) {
	// out-of-range components roll over like time.Date
	d := NewDate(2024, time.January, 32)
	if got, want := d.String(), "2024-02-01"; got != want {
		t.Errorf("NewDate(2024, 1, 32) = %s, want %s", got, want)
	}
	if got, want := NewDate(2024, time.February, 1).Add(-1).String(), "2024-01-31"; got != want {
		t.Errorf("Add(-1) = %s, want %s", got, want)
	}
	if got, want := NewDate(2024, time.January, 31).AddMonth(1).String(), "2024-03-02"; got != want {
		t.Errorf("AddMonth(1) = %s, want %s", got, want)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-03-01", want: "2024-03-01"},
		{in: "2024-3-1", want: "2024-03-01"},
		{in: "2024-03", wantErr: true},
		{in: "01/03/2024", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q) expected error, got %s", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestQuarterBounds(t *testing.T) {
	d := NewDate(2024, time.May, 15)
	if got, want := d.StartOfQuarter().String(), "2024-04-01"; got != want {
		t.Errorf("StartOfQuarter = %s, want %s", got, want)
	}
	if got, want := d.EndOfQuarter().String(), "2024-06-30"; got != want {
		t.Errorf("EndOfQuarter = %s, want %s", got, want)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.March, 1)
	data, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(data) != `"2024-03-01"` {
		t.Errorf("MarshalJSON = %s", data)
	}
	var back Date
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if back != d {
		t.Errorf("round trip lost the date: %s != %s", back, d)
	}
}
