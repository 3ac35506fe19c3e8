package shareline

import (
	"iter"
	"slices"
	"time"
)

// UploadRecord is the audit trail of one ingested workbook. Uploading a new
// file for an already-known snapshot date replaces its audit entry.
type UploadRecord struct {
	On         Date      `json:"date"`
	FileName   string    `json:"file"`
	UploadedAt time.Time `json:"uploaded_at"`
	Records    int       `json:"records"`
}

// Registry is the longitudinal store: every entity ever ingested, keyed by
// canonical key, with the full per-date share history of each.
//
// A Registry value is never mutated once built. Merge, grouping and audit
// operations return a rebuilt Registry, so an old value can keep being read
// (or compared against) while a new one is written. Callers that race a
// read-modify-write sequence against another writer must serialize
// themselves; the last write wins.
type Registry struct {
	entities map[string]*Entity
	keys     []string       // top-level keys in first-seen order
	dates    []Date         // sorted distinct snapshot dates ever ingested
	uploads  []UploadRecord // audit, one entry per snapshot date
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]*Entity)}
}

// Len returns the number of top-level entities.
func (r *Registry) Len() int { return len(r.keys) }

// Get returns the top-level entity for a canonical key.
func (r *Registry) Get(key string) (*Entity, bool) {
	e, ok := r.entities[key]
	return e, ok
}

// Entities iterates over top-level entities in first-seen order.
func (r *Registry) Entities() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, k := range r.keys {
			if !yield(r.entities[k]) {
				return
			}
		}
	}
}

// Dates returns every snapshot date ever ingested, in chronological order.
func (r *Registry) Dates() []Date { return slices.Clone(r.dates) }

// LatestDate returns the most recent snapshot date, or false when nothing
// has been ingested yet.
func (r *Registry) LatestDate() (Date, bool) {
	if len(r.dates) == 0 {
		return Date{}, false
	}
	return r.dates[len(r.dates)-1], true
}

// Uploads returns the audit trail, in chronological snapshot-date order.
func (r *Registry) Uploads() []UploadRecord { return slices.Clone(r.uploads) }

// clone returns a deep copy, the starting point of every rebuild.
func (r *Registry) clone() *Registry {
	c := &Registry{
		entities: make(map[string]*Entity, len(r.entities)),
		keys:     slices.Clone(r.keys),
		dates:    slices.Clone(r.dates),
		uploads:  slices.Clone(r.uploads),
	}
	for k, e := range r.entities {
		c.entities[k] = e.Clone()
	}
	return c
}

// Merge folds one dated upload into the store and returns the rebuilt store.
//
// For each record: a known canonical key gets its share history appended (an
// existing value at that date is overwritten, never accumulated) and its
// category and description refreshed to the incoming values; an unknown key
// becomes a new entity with a singleton history. Entities absent from the
// upload are untouched: a merge can only add or overwrite the dates it
// explicitly mentions, it never erases history. The whole pass is
// O(|store| + |records|).
//
// Merging the same (date, records) twice yields the same store as merging it
// once, which is what makes accidental double uploads harmless.
func (r *Registry) Merge(on Date, records []Record) *Registry {
	c := r.clone()
	for _, rec := range records {
		key := rec.Key()
		e, ok := c.entities[key]
		if !ok {
			e = newEntity(rec)
			c.entities[key] = e
			c.keys = append(c.keys, key)
		} else {
			// last upload wins for the descriptive fields too
			e.Category = rec.Category
			e.Description = rec.Description
		}
		e.shares.Append(on, rec.Shares)
	}
	c.addDate(on)
	return c
}

// LogUpload records the audit entry for a merged file, replacing any prior
// entry for the same snapshot date.
func (r *Registry) LogUpload(u UploadRecord) *Registry {
	c := r.clone()
	if i := slices.IndexFunc(c.uploads, func(x UploadRecord) bool { return x.On == u.On }); i >= 0 {
		c.uploads[i] = u
	} else {
		c.uploads = append(c.uploads, u)
		slices.SortStableFunc(c.uploads, func(a, b UploadRecord) int { return a.On.Compare(b.On) })
	}
	return c
}

func (r *Registry) addDate(on Date) {
	i, found := slices.BinarySearchFunc(r.dates, on, Date.Compare)
	if found {
		return
	}
	r.dates = slices.Insert(r.dates, i, on)
}

// NameOnlyKeys returns the canonical keys that are plain names, i.e. the
// entities ingested without a PAN. These are the keys at risk of splitting
// one legal entity across spellings (or merging two entities that share a
// display name); callers can surface them for manual reconciliation.
func (r *Registry) NameOnlyKeys() []string {
	var keys []string
	for e := range r.Entities() {
		if e.PAN == "" && !e.IsAggregate() {
			keys = append(keys, e.Key)
		}
	}
	return keys
}
