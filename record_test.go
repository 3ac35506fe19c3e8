package shareline

import "testing"

func TestNormalizePAN(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "aabcf1234k", want: "AABCF1234K"},
		{in: " AAB CF1234K ", want: "AABCF1234K"},
		{in: "\tAABCF1234K\n", want: "AABCF1234K"},
		{in: "   ", want: ""},
		{in: "", want: ""},
	}
	for _, tc := range tests {
		if got := NormalizePAN(tc.in); got != tc.want {
			t.Errorf("NormalizePAN(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalKey(t *testing.T) {
	// PAN wins over name when present
	if got := CanonicalKey("aabcf1234k", "AQUA FUND"); got != "AABCF1234K" {
		t.Errorf("key = %q, want the normalized PAN", got)
	}
	// blank PAN falls back to the trimmed name
	if got := CanonicalKey("  ", "  AQUA FUND  "); got != "AQUA FUND" {
		t.Errorf("key = %q, want the trimmed name", got)
	}
	// the same holder with and without a PAN yields two identities,
	// surfaced by Registry.NameOnlyKeys rather than papered over
	if CanonicalKey("AABCF1234K", "AQUA FUND") == CanonicalKey("", "AQUA FUND") {
		t.Error("PAN and name identities must stay distinct")
	}
}

func TestFundGroupKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "AQUA FUND SERIES 1", want: "AQUA FUND"},
		{in: "aqua fund series 2", want: "AQUA FUND"},
		{in: "BLUEPOOL", want: "BLUEPOOL"},
		{in: "  spaced   name  here ", want: "SPACED NAME"},
		{in: "", want: ""},
	}
	for _, tc := range tests {
		if got := FundGroupKey(tc.in); got != tc.want {
			t.Errorf("FundGroupKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
