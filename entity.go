package shareline

import "strings"

// Entity is one logical shareholder, or a synthetic aggregate of
// shareholders clustered by fund group. It owns the full longitudinal share
// history for its canonical key.
type Entity struct {
	Key         string // canonical key, unique among top-level entities
	Name        string
	PAN         string
	Category    string
	Description string
	FundGroup   string

	shares  *History[Quantity]
	members []*Entity // set only on synthetic aggregates
}

// newEntity creates an entity from the first record seen for its key.
func newEntity(r Record) *Entity {
	return &Entity{
		Key:         r.Key(),
		Name:        strings.TrimSpace(r.Name),
		PAN:         r.PAN,
		Category:    r.Category,
		Description: r.Description,
		FundGroup:   r.FundGroup,
		shares:      &History[Quantity]{},
	}
}

// Shares returns the entity's dated share history.
func (e *Entity) Shares() *History[Quantity] { return e.shares }

// SharesOn returns the share count at an exact snapshot date. A date the
// entity was never uploaded for reports false: absence is only treated as
// zero by aggregation, it is never stored as zero.
func (e *Entity) SharesOn(on Date) (Quantity, bool) { return e.shares.Get(on) }

// sharesOrZero is the aggregation-only reading of an absent date.
func (e *Entity) sharesOrZero(on Date) Quantity {
	q, _ := e.shares.Get(on)
	return q
}

// Latest returns the most recent snapshot date and share count.
func (e *Entity) Latest() (Date, Quantity) { return e.shares.Latest() }

// IsAggregate reports whether the entity is a synthetic fund-group aggregate.
func (e *Entity) IsAggregate() bool { return len(e.members) > 0 }

// Members returns the individual entities absorbed into an aggregate, in
// their original order, or nil for a plain entity.
func (e *Entity) Members() []*Entity { return e.members }

// EverHeldAtLeast reports whether the entity held at least min shares on any
// snapshot date on or after since. This is the minimum-activity gate used by
// comparison and ranking views.
func (e *Entity) EverHeldAtLeast(min Quantity, since Date) bool {
	for on, q := range e.shares.Values() {
		if on.Before(since) {
			continue
		}
		if !q.LessThan(min) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the entity, including members.
func (e *Entity) Clone() *Entity {
	c := *e
	c.shares = e.shares.Clone()
	if e.members != nil {
		c.members = make([]*Entity, len(e.members))
		for i, m := range e.members {
			c.members[i] = m.Clone()
		}
	}
	return &c
}

func cloneEntities(entities []*Entity) []*Entity {
	out := make([]*Entity, len(entities))
	for i, e := range entities {
		out[i] = e.Clone()
	}
	return out
}
