package shareline

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// memStore is the minimal in-memory Store for tests.
type memStore map[string][]byte

func (m memStore) Get(_ context.Context, ns, key string) ([]byte, bool, error) {
	v, ok := m[ns+"/"+key]
	return v, ok, nil
}

func (m memStore) Put(_ context.Context, ns, key string, value []byte) error {
	m[ns+"/"+key] = value
	return nil
}

func TestRegistryPersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memStore{}

	empty, err := LoadRegistry(ctx, kv)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if empty.Len() != 0 {
		t.Errorf("fresh store yielded %d entities", empty.Len())
	}

	jan := NewDate(2024, time.January, 1)
	reg := empty.Merge(jan, records(rec("AQUA FUND", "AAACA0001A", "Mutual Funds", 1000)))
	if err := SaveRegistry(ctx, kv, reg); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := LoadRegistry(ctx, kv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(dump(reg), dump(back)); diff != "" {
		t.Errorf("registry differs after persist (-want +got):\n%s", diff)
	}
}

func TestGroupsPersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memStore{}

	set, err := LoadGroups(ctx, kv)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("fresh store yielded %d groups", set.Len())
	}

	reg := groupsRegistry()
	set, err = set.Save(reg, GroupDef{
		Name:    "Desks",
		Members: []GroupMember{member(reg, "AAACA0001A")},
	}, "")
	if err != nil {
		t.Fatalf("group save: %v", err)
	}
	if err := SaveGroups(ctx, kv, set); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := LoadGroups(ctx, kv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if back.Len() != 1 {
		t.Errorf("got %d groups after persist, want 1", back.Len())
	}
}
