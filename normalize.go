package shareline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RawTable is the untyped first stage of ingestion: the header row and the
// data rows of one uploaded workbook sheet, as string cells keyed by header.
// A workbook reader capability (see the xlsx package) produces RawTables;
// the normalizer turns them into typed Records.
type RawTable struct {
	Headers []string
	Rows    []map[string]string
}

// ParseReason discriminates the ways a whole upload can be rejected.
type ParseReason int

const (
	// NoDateHeader means no "SHARES AS ON <date>" column was found.
	NoDateHeader ParseReason = iota
	// UnreadableWorkbook means the workbook bytes could not be read at all.
	UnreadableWorkbook
)

func (r ParseReason) String() string {
	switch r {
	case NoDateHeader:
		return "no date header"
	case UnreadableWorkbook:
		return "unreadable workbook"
	default:
		return "unknown"
	}
}

// ParseError rejects an upload wholesale. Row-level defects never produce a
// ParseError: a file whose snapshot date cannot be determined is refused in
// full, everything else is ingested with defaults.
type ParseError struct {
	Reason ParseReason
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse upload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot parse upload: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// dateHeaderRE matches the column carrying the snapshot date, e.g.
// "SHARES AS ON 30th Sep 2024". The captured text is the date to parse.
var dateHeaderRE = regexp.MustCompile(`(?i)^\s*shares\s+as\s+on\b(.*)$`)

// ordinalRE strips day ordinal suffixes: 1st, 2nd, 3rd, 30th.
var ordinalRE = regexp.MustCompile(`(?i)(\d+)(st|nd|rd|th)\b`)

// header aliases, checked case-insensitively and in order.
var (
	nameHeaders        = []string{"name", "name of shareholder", "shareholder name", "name of the shareholder"}
	panHeaders         = []string{"pan", "pan no", "pan no.", "pan number"}
	categoryHeaders    = []string{"category", "investor category", "category of shareholder", "type"}
	descriptionHeaders = []string{"description", "remarks"}
)

const (
	defaultCategory = "Unknown"
)

// Normalize turns one raw upload into its snapshot date and typed records.
//
// The only fatal condition is a missing date header: every row-level defect
// (absent name, malformed share count, missing category) is replaced by a
// defined default so that a sloppy upload still merges.
func Normalize(table RawTable) (Date, []Record, error) {
	dateHeader, dateText, ok := findDateHeader(table.Headers)
	if !ok {
		return Date{}, nil, &ParseError{Reason: NoDateHeader}
	}
	on := parseDateText(dateText, Today())

	records := make([]Record, 0, len(table.Rows))
	for i, row := range table.Rows {
		records = append(records, normalizeRow(row, i, dateHeader))
	}
	return on, records, nil
}

// findDateHeader locates the "SHARES AS ON <text>" column and returns the
// exact header (to address row cells) plus the date text after the prefix.
func findDateHeader(headers []string) (header, dateText string, ok bool) {
	for _, h := range headers {
		if m := dateHeaderRE.FindStringSubmatch(h); m != nil {
			return h, strings.TrimSpace(m[1]), true
		}
	}
	return "", "", false
}

// directDateLayouts are tried in order for a literal parse of the date text.
var directDateLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
}

// parseDateText resolves free-form date text to a Date. Registrars type
// these headers by hand, so the chain falls back further than a strict
// parser would.
//
//  1. Strip ordinal suffixes (1st, 22nd, ...).
//  2. Attempt a direct parse against known layouts.
//  3. Tokenize: a 3-letter month-name prefix, a 1-2 digit day and a 4 digit
//     year may appear in any order; the year defaults to the current year.
//  4. If still unresolved, default to the current date.
func parseDateText(text string, today Date) Date {
	text = strings.TrimSpace(ordinalRE.ReplaceAllString(text, "$1"))
	if text == "" {
		return today
	}

	for _, layout := range directDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return NewDate(t.Date())
		}
	}

	var (
		month time.Month
		day   int
		year  = today.Year()
	)
	for _, token := range strings.Fields(text) {
		token = strings.Trim(token, ",.")
		if m, ok := monthFromToken(token); ok && month == 0 {
			month = m
			continue
		}
		if n, err := strconv.Atoi(token); err == nil {
			switch {
			case len(token) == 4 && n >= 1000:
				year = n
			case n >= 1 && n <= 31 && day == 0:
				day = n
			}
		}
	}
	if month != 0 && day != 0 {
		return NewDate(year, month, day)
	}
	return today
}

// monthFromToken matches a token against the 3-letter prefixes of the twelve
// canonical month names, case-insensitively.
func monthFromToken(token string) (time.Month, bool) {
	if len(token) < 3 {
		return 0, false
	}
	prefix := strings.ToLower(token[:3])
	for m := time.January; m <= time.December; m++ {
		if strings.ToLower(m.String()[:3]) == prefix {
			return m, true
		}
	}
	return 0, false
}

// UnknownName is the placeholder name given to a row uploaded without one.
func UnknownName(rowIndex int) string { return fmt.Sprintf("Unknown-%d", rowIndex) }

// normalizeRow maps one raw row to a Record, defaulting every defect.
func normalizeRow(row map[string]string, index int, sharesHeader string) Record {
	name := firstCell(row, nameHeaders)
	if name == "" {
		name = UnknownName(index)
	}
	category := firstCell(row, categoryHeaders)
	if category == "" {
		category = defaultCategory
	}
	return Record{
		Name:        name,
		PAN:         NormalizePAN(firstCell(row, panHeaders)),
		Category:    category,
		Description: firstCell(row, descriptionHeaders),
		Shares:      ParseShares(cell(row, sharesHeader)),
		FundGroup:   FundGroupKey(name),
	}
}

// cell returns the trimmed value of a column, tolerating header-case drift.
func cell(row map[string]string, header string) string {
	if v, ok := row[header]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range row {
		if strings.EqualFold(strings.TrimSpace(k), strings.TrimSpace(header)) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// firstCell returns the first non-empty cell among the aliased headers.
func firstCell(row map[string]string, aliases []string) string {
	for _, h := range aliases {
		if v := cell(row, h); v != "" {
			return v
		}
	}
	return ""
}
