package shareline

import (
	"iter"
	"slices"
	"sort"
)

// History stores a chronological series of values, each associated with a
// snapshot date. Dates are unique and the series is always sorted, so the
// formatted keys are in lexicographic (hence chronological) order.
type History[T any] struct {
	days   []Date
	values []T
}

// Len returns the number of points in the history.
func (h *History[T]) Len() int { return len(h.days) }

// Latest returns the latest date and value in the history.
// If the history is empty, it returns zero values.
func (h *History[T]) Latest() (day Date, value T) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, *new(T)
	}
	return h.days[last], h.values[last]
}

// chronological is a private implementation to make this history chronologically sorted.
type chronological[T any] struct{ *History[T] }

func (s chronological[T]) Len() int           { return len(s.days) }
func (s chronological[T]) Less(i, j int) bool { return s.days[i].Before(s.days[j]) }
func (s chronological[T]) Swap(i, j int) {
	s.days[i], s.days[j] = s.days[j], s.days[i]
	s.values[i], s.values[j] = s.values[j], s.values[i]
}

func (h *History[T]) sort() { sort.Sort(chronological[T]{h}) }

// Append adds a point to the history.
//
// An existing value at that date is overwritten: the last upload for a given
// snapshot date wins, values never accumulate.
func (h *History[T]) Append(on Date, v T) *History[T] {
	if i := slices.Index(h.days, on); i >= 0 {
		h.values[i] = v
		return h
	}
	h.days, h.values = append(h.days, on), append(h.values, v)
	h.sort()
	return h
}

// Get returns the value at 'day' and true, or a zero value and false.
func (h *History[T]) Get(day Date) (T, bool) {
	if i := slices.Index(h.days, day); i >= 0 {
		return h.values[i], true
	}
	var zero T
	return zero, false
}

// Values returns an iterator over all date/value pairs, in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Days returns the dates of the history, in chronological order.
func (h *History[T]) Days() []Date { return slices.Clone(h.days) }

// Clone returns an independent copy of the history.
func (h *History[T]) Clone() *History[T] {
	return &History[T]{days: slices.Clone(h.days), values: slices.Clone(h.values)}
}

// search locates day in the sorted day slice, returning the insertion index
// and whether the day is present.
func (h *History[T]) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, Date.Compare)
}

// ValueAsOf returns the value on a given day, or the most recent value before
// it. It returns the value and true if found, otherwise zero value and false.
func (h *History[T]) ValueAsOf(day Date) (T, bool) {
	i, found := h.search(day)
	if found {
		return h.values[i], true
	}
	if i == 0 {
		var zero T
		return zero, false // no point on or before that day
	}
	return h.values[i-1], true
}

// DayAsOf returns the last history date on or before day, or false if the
// history starts after it.
func (h *History[T]) DayAsOf(day Date) (Date, bool) {
	i, found := h.search(day)
	if found {
		return h.days[i], true
	}
	if i == 0 {
		return Date{}, false
	}
	return h.days[i-1], true
}

// DayOnOrAfter returns the first history date on or after day, or false if
// the history ends before it. Together with DayAsOf it gives the asymmetric
// boundary resolution ranking windows rely on: requested starts round
// forward, requested ends round backward.
func (h *History[T]) DayOnOrAfter(day Date) (Date, bool) {
	i, found := h.search(day)
	if found {
		return h.days[i], true
	}
	if i == len(h.days) {
		return Date{}, false
	}
	return h.days[i], true
}
