package shareline

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// GroupMember identifies one entity inside a manual group. Key is the
// canonical key; PAN and Name are kept as uploaded for display, either may
// be empty.
type GroupMember struct {
	Key  string `json:"key"`
	PAN  string `json:"pan,omitempty"`
	Name string `json:"name,omitempty"`
}

// GroupDef is a user-curated named set of canonical keys. It is entirely
// independent of the automatic fund-group aggregates: deleting a definition
// never touches the underlying entities or their history.
type GroupDef struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Category string        `json:"category,omitempty"`
	Members  []GroupMember `json:"members"`
}

// DuplicateNameError rejects saving a group under a name another group
// already holds.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a group named %q already exists", e.Name)
}

// AmbiguousCategoryError rejects saving a group whose members span several
// categories when the caller did not pick one. Categories carries the sorted
// distinct candidates so the caller can re-prompt instead of having a
// default silently chosen for them.
type AmbiguousCategoryError struct {
	Categories []string
}

func (e *AmbiguousCategoryError) Error() string {
	return fmt.Sprintf("group members span several categories, pick one of %s",
		strings.Join(e.Categories, ", "))
}

// GroupSet holds the manual group definitions. Like Registry it is rebuilt,
// not mutated: Save and Delete return the new set.
type GroupSet struct {
	groups []GroupDef // in creation order
}

// NewGroupSet creates an empty group set.
func NewGroupSet() *GroupSet { return &GroupSet{} }

// Len returns the number of definitions.
func (s *GroupSet) Len() int { return len(s.groups) }

// Groups iterates over the definitions in creation order.
func (s *GroupSet) Groups() iter.Seq[GroupDef] {
	return func(yield func(GroupDef) bool) {
		for _, g := range s.groups {
			if !yield(g) {
				return
			}
		}
	}
}

// Get returns a definition by id.
func (s *GroupSet) Get(id string) (GroupDef, bool) {
	for _, g := range s.groups {
		if g.ID == id {
			return g, true
		}
	}
	return GroupDef{}, false
}

// Save validates and stores a group definition, returning the rebuilt set.
//
// A new definition (empty ID) gets a fresh id. The name must not collide
// with another group's, or Save fails with a [DuplicateNameError]. When the
// members' categories (resolved against reg) are not all equal the caller
// must pass an explicit category, otherwise Save fails with an
// [AmbiguousCategoryError] listing the sorted candidates; when the members
// agree on a single category it is adopted automatically.
func (s *GroupSet) Save(reg *Registry, def GroupDef, category string) (*GroupSet, error) {
	def.Name = strings.TrimSpace(def.Name)
	for _, g := range s.groups {
		if g.ID != def.ID && strings.EqualFold(g.Name, def.Name) {
			return nil, &DuplicateNameError{Name: def.Name}
		}
	}

	resolved, err := resolveCategory(reg, def.Members, category)
	if err != nil {
		return nil, err
	}
	def.Category = resolved

	if def.ID == "" {
		def.ID = uuid.NewString()
	}

	c := &GroupSet{groups: slices.Clone(s.groups)}
	if i := slices.IndexFunc(c.groups, func(g GroupDef) bool { return g.ID == def.ID }); i >= 0 {
		c.groups[i] = def
	} else {
		c.groups = append(c.groups, def)
	}
	return c, nil
}

// Delete removes a definition by id, returning the rebuilt set. Deleting an
// unknown id is a no-op. Only the definition goes away; member entities are
// not touched.
func (s *GroupSet) Delete(id string) *GroupSet {
	c := &GroupSet{groups: slices.Clone(s.groups)}
	c.groups = slices.DeleteFunc(c.groups, func(g GroupDef) bool { return g.ID == id })
	return c
}

// resolveCategory applies the save-path category rule.
func resolveCategory(reg *Registry, members []GroupMember, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	seen := make(map[string]struct{})
	var categories []string
	for _, m := range members {
		e, ok := reg.Get(m.Key)
		if !ok {
			continue
		}
		if _, dup := seen[e.Category]; !dup {
			seen[e.Category] = struct{}{}
			categories = append(categories, e.Category)
		}
	}
	switch len(categories) {
	case 0:
		return "", nil
	case 1:
		return categories[0], nil
	default:
		slices.Sort(categories)
		return "", &AmbiguousCategoryError{Categories: categories}
	}
}
