// Package cmd implements the CLI application to track shareholder registries.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"shareline"
	"shareline/store"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&ingestCmd{}, "registry")
	c.Register(&watchCmd{}, "registry")
	c.Register(&uploadsCmd{}, "registry")

	c.Register(&rankCmd{}, "analytics")
	c.Register(&compareCmd{}, "analytics")
	c.Register(&entitiesCmd{}, "analytics")
	c.Register(&fundCmd{}, "analytics")

	c.Register(&groupsCmd{}, "groups")

	c.Register(&serveCmd{}, "server")
	c.Register(&assistCmd{}, "assistant")
	c.Register(&topicCmd{}, "documentation")
}

// CommandNames lists the registered subcommand names, for shell completion.
func CommandNames() []string {
	return []string{
		"ingest", "watch", "uploads",
		"rank", "compare", "entities", "fund",
		"groups", "serve", "assist", "topic",
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var fastDir = flag.String("fast-dir", ".shareline/fast", "Path to the fast tier folder")
var fastQuota = flag.Int64("fast-quota", 256<<20, "Disk quota of the fast tier, in bytes")
var durableDir = flag.String("durable-dir", ".shareline/durable", "Path to the durable tier database folder")
var policyFile = flag.String("policy", "", "Path to the policy file (YAML). Built-in defaults when empty.")

// OpenStore is the central function to open the tiered store.
func OpenStore(policy shareline.Policy) (*store.Tiered, error) {
	fast, err := store.NewFileTier(*fastDir, *fastQuota)
	if err != nil {
		return nil, fmt.Errorf("opening fast tier %q: %w", *fastDir, err)
	}
	durable, err := store.NewBadgerTier(store.DefaultBadgerConfig(*durableDir))
	if err != nil {
		return nil, fmt.Errorf("opening durable tier %q: %w", *durableDir, err)
	}
	return store.NewTiered(fast, durable, store.WithLimit(policy.FastTierLimit))
}

// LoadPolicy loads the policy file given on the command line, or the defaults.
func LoadPolicy() (shareline.Policy, error) {
	if *policyFile == "" {
		return shareline.DefaultPolicy(), nil
	}
	return shareline.LoadPolicy(*policyFile)
}

// DecodeRegistry loads the registry from the store. A missing registry is
// an empty one.
func DecodeRegistry(ctx context.Context, kv shareline.Store) (*shareline.Registry, error) {
	return shareline.LoadRegistry(ctx, kv)
}

// newLogger builds the logger used by the long-running subcommands.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func usageError(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitUsageError
}
