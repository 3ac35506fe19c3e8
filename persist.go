package shareline

import (
	"bytes"
	"context"
	"fmt"
)

// Store is the persistence capability the engine consumes. It is satisfied
// by store.Tiered, and by anything else with the same narrow surface: the
// engine never reaches for a concrete database itself.
type Store interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
}

// Store namespaces. One store holds the longitudinal registry and the
// manual group definitions side by side.
const (
	NamespaceRegistry = "registry"
	NamespaceGroups   = "groups"
)

const storeKey = "store" // single-blob layout inside each namespace

// LoadRegistry reads the persisted registry, or returns an empty one when
// nothing has been persisted yet.
func LoadRegistry(ctx context.Context, kv Store) (*Registry, error) {
	data, ok, err := kv.Get(ctx, NamespaceRegistry, storeKey)
	if err != nil {
		return nil, fmt.Errorf("cannot load registry: %w", err)
	}
	if !ok {
		return NewRegistry(), nil
	}
	reg, err := DecodeRegistry(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode registry: %w", err)
	}
	return reg, nil
}

// SaveRegistry persists the registry. Two callers racing a
// read-modify-write sequence are not detected: the later save wins.
func SaveRegistry(ctx context.Context, kv Store, reg *Registry) error {
	var buf bytes.Buffer
	if err := EncodeRegistry(&buf, reg); err != nil {
		return fmt.Errorf("cannot encode registry: %w", err)
	}
	if err := kv.Put(ctx, NamespaceRegistry, storeKey, buf.Bytes()); err != nil {
		return fmt.Errorf("cannot save registry: %w", err)
	}
	return nil
}

// LoadGroups reads the persisted manual group definitions, or returns an
// empty set when nothing has been persisted yet.
func LoadGroups(ctx context.Context, kv Store) (*GroupSet, error) {
	data, ok, err := kv.Get(ctx, NamespaceGroups, storeKey)
	if err != nil {
		return nil, fmt.Errorf("cannot load groups: %w", err)
	}
	if !ok {
		return NewGroupSet(), nil
	}
	set, err := DecodeGroups(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode groups: %w", err)
	}
	return set, nil
}

// SaveGroups persists the manual group definitions.
func SaveGroups(ctx context.Context, kv Store, set *GroupSet) error {
	var buf bytes.Buffer
	if err := EncodeGroups(&buf, set); err != nil {
		return fmt.Errorf("cannot encode groups: %w", err)
	}
	if err := kv.Put(ctx, NamespaceGroups, storeKey, buf.Bytes()); err != nil {
		return fmt.Errorf("cannot save groups: %w", err)
	}
	return nil
}
