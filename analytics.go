package shareline

import (
	"slices"
	"strings"
)

// Behavior classifies how a holder moved between two labeled snapshots.
type Behavior string

const (
	Buyer  Behavior = "buyer"
	Seller Behavior = "seller"
	Holder Behavior = "holder"
	New    Behavior = "new"    // present only in the later snapshot
	Exited Behavior = "exited" // present only in the earlier snapshot
)

// PointSnapshot is one labeled snapshot of net changes per canonical key,
// as used by the two-point behavior classification. The net change of an
// entity is sold minus bought when the upload carries explicit bought/sold
// columns (the legacy two-file flow), or the end minus start position when
// derived from the share history.
type PointSnapshot map[string]Quantity

// ClassifyTrend buckets a trend change against the policy threshold.
func ClassifyTrend(trendChange Quantity, p Policy) Behavior {
	threshold := Q(p.TrendThreshold)
	switch {
	case trendChange.GreaterThan(threshold):
		return Buyer
	case trendChange.LessThan(threshold.Neg()):
		return Seller
	default:
		return Holder
	}
}

// ClassifyTwoPoint compares exactly two labeled snapshots (e.g. "month1" and
// "month2") and classifies every key present in either. For keys present in
// both, the trend change is netChange(month2) − netChange(month1), bucketed
// by [ClassifyTrend]. A key present only in the later snapshot is new, only
// in the earlier one exited.
func ClassifyTwoPoint(month1, month2 PointSnapshot, p Policy) map[string]Behavior {
	out := make(map[string]Behavior, len(month2))
	for key, late := range month2 {
		early, ok := month1[key]
		if !ok {
			out[key] = New
			continue
		}
		out[key] = ClassifyTrend(late.Sub(early), p)
	}
	for key := range month1 {
		if _, ok := month2[key]; !ok {
			out[key] = Exited
		}
	}
	return out
}

// NetChanges derives a PointSnapshot from the share history between two
// snapshot dates: netChange = end − start position. Entities with no value
// at either date are absent from the result, which is what feeds the
// new/exited classification.
func (r *Registry) NetChanges(start, end Date) PointSnapshot {
	out := make(PointSnapshot)
	for e := range r.Entities() {
		s, okStart := e.SharesOn(start)
		q, okEnd := e.SharesOn(end)
		if !okStart && !okEnd {
			continue
		}
		out[e.Key] = q.Sub(s)
	}
	return out
}

// --- time-window delta ranking ---

// Window is a resolved pair of snapshot dates.
type Window struct {
	Start, End Date
}

// ResolveWindow maps a requested date pair onto available snapshot dates:
// the start resolves forward to the first available date on or after it, the
// end resolves backward to the last available date on or before it. The
// window never stretches to include data from before its requested start or
// after its requested end.
//
// When either boundary resolves to nothing, ResolveWindow reports false and
// ranking is skipped entirely; callers fall back to their baseline order.
// That fallback is defined behavior, not an error.
func (r *Registry) ResolveWindow(start, end Date) (Window, bool) {
	i, _ := slices.BinarySearchFunc(r.dates, start, Date.Compare)
	if i == len(r.dates) {
		return Window{}, false
	}
	resolvedStart := r.dates[i]

	j, found := slices.BinarySearchFunc(r.dates, end, Date.Compare)
	if !found {
		if j == 0 {
			return Window{}, false
		}
		j--
	}
	resolvedEnd := r.dates[j]
	if resolvedEnd.Before(resolvedStart) {
		// the requested range sits between two snapshots
		return Window{}, false
	}
	return Window{Start: resolvedStart, End: resolvedEnd}, true
}

// LastDays returns the requested window covering the n days up to the latest
// available snapshot date, or false on an empty store.
func (r *Registry) LastDays(n int) (start, end Date, ok bool) {
	latest, ok := r.LatestDate()
	if !ok {
		return Date{}, Date{}, false
	}
	return latest.Add(-n), latest, true
}

// Quarter returns the requested window covering the calendar quarter of the
// latest available snapshot date, or false on an empty store.
func (r *Registry) Quarter() (start, end Date, ok bool) {
	latest, ok := r.LatestDate()
	if !ok {
		return Date{}, Date{}, false
	}
	return latest.StartOfQuarter(), latest.EndOfQuarter(), true
}

// RankMode selects the ranking direction.
type RankMode int

const (
	// Buyers ranks by descending window delta.
	Buyers RankMode = iota
	// Sellers ranks by ascending window delta.
	Sellers
)

// Delta is one ranked row: an entity and its share delta over a window.
type Delta struct {
	Entity *Entity
	Change Quantity
}

// Rank computes per-entity deltas over a resolved window and sorts them,
// descending for Buyers and ascending for Sellers. The sort is stable: ties
// keep the prior relative order of entities, so the incoming baseline order
// is what breaks them.
func Rank(entities []*Entity, w Window, mode RankMode) []Delta {
	out := make([]Delta, 0, len(entities))
	for _, e := range entities {
		out = append(out, Delta{
			Entity: e,
			Change: e.sharesOrZero(w.End).Sub(e.sharesOrZero(w.Start)),
		})
	}
	slices.SortStableFunc(out, func(a, b Delta) int {
		if mode == Sellers {
			return a.Change.Cmp(b.Change)
		}
		return b.Change.Cmp(a.Change)
	})
	return out
}

// --- composable filters ---

// Filter selects entities; filters compose with [And].
type Filter func(*Entity) bool

// And composes filters with logical AND.
func And(filters ...Filter) Filter {
	return func(e *Entity) bool {
		for _, f := range filters {
			if !f(e) {
				return false
			}
		}
		return true
	}
}

// ByCategory matches entities of exactly that category.
func ByCategory(category string) Filter {
	return func(e *Entity) bool { return e.Category == category }
}

// ByMatch matches entities whose name or description contains the text,
// case-insensitively.
func ByMatch(text string) Filter {
	needle := strings.ToLower(text)
	return func(e *Entity) bool {
		return strings.Contains(strings.ToLower(e.Name), needle) ||
			strings.Contains(strings.ToLower(e.Description), needle)
	}
}

// BySharesBetween matches entities whose share count at the reference date
// lies within [min, max]. An entity with no value at that date does not
// match.
func BySharesBetween(on Date, min, max Quantity) Filter {
	return func(e *Entity) bool {
		q, ok := e.SharesOn(on)
		if !ok {
			return false
		}
		return !q.LessThan(min) && !q.GreaterThan(max)
	}
}

// Active is the minimum-activity gate: only entities that ever held at least
// Policy.MinActiveShares on or after Policy.ActivitySince take part in
// comparison and ranking views.
func Active(p Policy) Filter {
	min := Q(p.MinActiveShares)
	return func(e *Entity) bool { return e.EverHeldAtLeast(min, p.ActivitySince) }
}

// Select returns the top-level entities matching the filter, in store order.
func (r *Registry) Select(f Filter) []*Entity {
	var out []*Entity
	for e := range r.Entities() {
		if f == nil || f(e) {
			out = append(out, e)
		}
	}
	return out
}
