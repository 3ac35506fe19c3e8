package shareline

// This file implements the automatic fund-group clustering pass. Clustering
// is a display concern: it folds entities whose names share a two-word
// prefix into one synthetic aggregate so that "HDFC MUTUAL FUND PLAN A" and
// "HDFC MUTUAL FUND PLAN B" rank as one holder. The pass is reversible and
// loses nothing: every member is kept inside its aggregate for drill-down.

// GroupByFund partitions top-level entities by fund group and returns the
// rebuilt store. Singleton partitions pass through unchanged. A partition
// with several members is replaced by one synthetic aggregate whose share
// history is the per-date sum over members (a date absent from a member
// counts as zero in the sum only, it is never written back to the member),
// and whose category and description come from a representative member.
//
// The pass is idempotent: grouping an already-grouped store leaves it
// unchanged, because aggregates are expanded before partitioning.
func (r *Registry) GroupByFund() *Registry {
	flat := r.Ungroup()

	// partition in first-seen order
	partitions := make(map[string][]*Entity)
	var order []string
	for e := range flat.Entities() {
		g := e.FundGroup
		if _, seen := partitions[g]; !seen {
			order = append(order, g)
		}
		partitions[g] = append(partitions[g], e)
	}

	c := &Registry{
		entities: make(map[string]*Entity),
		dates:    flat.Dates(),
		uploads:  flat.Uploads(),
	}
	for _, g := range order {
		members := partitions[g]
		if len(members) == 1 {
			e := members[0].Clone()
			c.entities[e.Key] = e
			c.keys = append(c.keys, e.Key)
			continue
		}
		agg := aggregate(g, cloneEntities(members))
		c.entities[agg.Key] = agg
		c.keys = append(c.keys, agg.Key)
	}
	return c
}

// Ungroup re-expands every aggregate into its members and discards the
// synthetic wrappers, reconstructing the flat entity list. It is the true
// inverse of GroupByFund on the member set: ungroup(group(store)) holds
// exactly the entities of store, with identical histories. Share counts are
// integral so no summation rounding can leak into members.
func (r *Registry) Ungroup() *Registry {
	c := &Registry{
		entities: make(map[string]*Entity),
		dates:    r.Dates(),
		uploads:  r.Uploads(),
	}
	for e := range r.Entities() {
		if !e.IsAggregate() {
			m := e.Clone()
			c.entities[m.Key] = m
			c.keys = append(c.keys, m.Key)
			continue
		}
		for _, member := range e.Members() {
			m := member.Clone()
			c.entities[m.Key] = m
			c.keys = append(c.keys, m.Key)
		}
	}
	return c
}

// aggregate builds the synthetic entity for one multi-member partition.
// It takes ownership of the member copies it is given.
func aggregate(group string, members []*Entity) *Entity {
	agg := &Entity{
		Key:         group,
		Name:        group,
		Category:    members[0].Category,
		Description: members[0].Description,
		FundGroup:   group,
		shares:      &History[Quantity]{},
		members:     members,
	}
	// sum members over the union of their date sets
	for _, m := range members {
		for on := range m.shares.Values() {
			if _, done := agg.shares.Get(on); done {
				continue
			}
			total := Quantity{}
			for _, x := range members {
				total = total.Add(x.sharesOrZero(on))
			}
			agg.shares.Append(on, total)
		}
	}
	return agg
}
