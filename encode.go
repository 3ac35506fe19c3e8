package shareline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// This file contains the import/export format of the store. It is a JSONL
// format: human readable, single file per concern, easy to diff and merge.

// jentity is the line form of an Entity. History keys are ISO dates and the
// values decimal share counts, written exactly as held so large counts
// survive the round trip; members appear inline on aggregates only.
type jentity struct {
	Key         string              `json:"key"`
	Name        string              `json:"name"`
	PAN         string              `json:"pan,omitempty"`
	Category    string              `json:"category"`
	Description string              `json:"description,omitempty"`
	FundGroup   string              `json:"fund_group,omitempty"`
	History     map[string]Quantity `json:"history"`
	Members     []jentity           `json:"members,omitempty"`
}

func toJEntity(e *Entity) jentity {
	je := jentity{
		Key:         e.Key,
		Name:        e.Name,
		PAN:         e.PAN,
		Category:    e.Category,
		Description: e.Description,
		FundGroup:   e.FundGroup,
		History:     make(map[string]Quantity, e.shares.Len()),
	}
	for on, q := range e.shares.Values() {
		je.History[on.String()] = q
	}
	for _, m := range e.members {
		je.Members = append(je.Members, toJEntity(m))
	}
	return je
}

func fromJEntity(je jentity) (*Entity, error) {
	e := &Entity{
		Key:         je.Key,
		Name:        je.Name,
		PAN:         je.PAN,
		Category:    je.Category,
		Description: je.Description,
		FundGroup:   je.FundGroup,
		shares:      &History[Quantity]{},
	}
	for day, value := range je.History {
		on, err := ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", je.Key, err)
		}
		e.shares.Append(on, value)
	}
	for _, jm := range je.Members {
		m, err := fromJEntity(jm)
		if err != nil {
			return nil, err
		}
		e.members = append(e.members, m)
	}
	return e, nil
}

// EncodeRegistry exports the store to 'w', one entity per line followed by
// one line per upload audit record.
func EncodeRegistry(w io.Writer, r *Registry) error {
	type jline struct {
		Entity *jentity      `json:"entity,omitempty"`
		Upload *UploadRecord `json:"upload,omitempty"`
	}
	write := func(l jline) error {
		data, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("cannot marshal store line: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write store line: %w", err)
		}
		return nil
	}
	for e := range r.Entities() {
		je := toJEntity(e)
		if err := write(jline{Entity: &je}); err != nil {
			return err
		}
	}
	for _, u := range r.Uploads() {
		u := u
		if err := write(jline{Upload: &u}); err != nil {
			return err
		}
	}
	return nil
}

// DecodeRegistry imports a store written by [EncodeRegistry]. Blank lines
// are skipped; a malformed line fails the whole decode with its content in
// the error.
func DecodeRegistry(r io.Reader) (*Registry, error) {
	type jline struct {
		Entity *jentity      `json:"entity,omitempty"`
		Upload *UploadRecord `json:"upload,omitempty"`
	}

	reg := NewRegistry()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var jl jline
		if err := json.Unmarshal(line, &jl); err != nil {
			return nil, fmt.Errorf("cannot parse store line %q: %w", string(line), err)
		}
		switch {
		case jl.Entity != nil:
			e, err := fromJEntity(*jl.Entity)
			if err != nil {
				return nil, err
			}
			if _, dup := reg.entities[e.Key]; dup {
				return nil, fmt.Errorf("entity %q is defined twice", e.Key)
			}
			reg.entities[e.Key] = e
			reg.keys = append(reg.keys, e.Key)
			for on := range e.shares.Values() {
				reg.addDate(on)
			}
		case jl.Upload != nil:
			reg.uploads = append(reg.uploads, *jl.Upload)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read store: %w", err)
	}
	return reg, nil
}

// EncodeGroups exports manual group definitions to 'w', one per line.
func EncodeGroups(w io.Writer, s *GroupSet) error {
	for g := range s.Groups() {
		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("cannot marshal group %q: %w", g.Name, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write group %q: %w", g.Name, err)
		}
	}
	return nil
}

// DecodeGroups imports group definitions written by [EncodeGroups].
func DecodeGroups(r io.Reader) (*GroupSet, error) {
	s := NewGroupSet()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var g GroupDef
		if err := json.Unmarshal(line, &g); err != nil {
			return nil, fmt.Errorf("cannot parse group line %q: %w", string(line), err)
		}
		s.groups = append(s.groups, g)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read groups: %w", err)
	}
	return s, nil
}
