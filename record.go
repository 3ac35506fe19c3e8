package shareline

import "strings"

// Record is one validated row of a snapshot upload. It is the closed shape
// every downstream component operates on: raw workbook rows are mapped to
// Records once, by the normalizer, and never inspected again.
type Record struct {
	Name        string
	PAN         string // normalized, may be empty
	Category    string
	Description string
	Shares      Quantity
	FundGroup   string // derived display label, never an identity
}

// Key returns the canonical key of the record, see [CanonicalKey].
func (r Record) Key() string { return CanonicalKey(r.PAN, r.Name) }

// NormalizePAN uppercases a PAN and strips all whitespace from it.
// A blank PAN normalizes to the empty string.
func NormalizePAN(pan string) string {
	return strings.ToUpper(strings.Join(strings.Fields(pan), ""))
}

// CanonicalKey is the identity used to match an entity across snapshots:
// the normalized PAN when present, the trimmed name otherwise.
//
// Name-only identity is fragile: the same legal entity spelled two ways in
// two uploads yields two distinct entities. [Registry.NameOnlyKeys] lists
// the keys exposed to that risk.
func CanonicalKey(pan, name string) string {
	if p := NormalizePAN(pan); p != "" {
		return p
	}
	return strings.TrimSpace(name)
}

// FundGroupKey clusters entity names by their first two whitespace-delimited
// tokens, uppercased (or the single token if only one exists). It is a pure
// display-level label: "HDFC MUTUAL FUND A" and "HDFC MUTUAL FUND B" both
// map to "HDFC MUTUAL". It is never used as a canonical key.
func FundGroupKey(name string) string {
	tokens := strings.Fields(name)
	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(tokens[0])
	default:
		return strings.ToUpper(tokens[0] + " " + tokens[1])
	}
}
