package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"shareline"
	"shareline/renderer"
)

// entitiesCmd holds the flags for the 'entities' subcommand.
type entitiesCmd struct {
	category string
	match    string
	active   bool
	on       string
	min      int64
	max      int64
}

func (*entitiesCmd) Name() string     { return "entities" }
func (*entitiesCmd) Synopsis() string { return "list the holders in the registry" }
func (*entitiesCmd) Usage() string {
	return `shl entities [-category <cat>] [-match <text>] [-active] [-on <date> -min <n> [-max <n>]]

  Lists the holders currently in the registry, with their latest position.
  Filters compose; a holder must pass all of them.

Usage Examples:
# Mutual funds holding between 50k and 200k shares on a given date.
$ shl entities -category "Mutual Funds" -on 2024-03-01 -min 50000 -max 200000

`
}

func (c *entitiesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", "", "Only holders of this category")
	f.StringVar(&c.match, "match", "", "Only holders whose name or description contains this text")
	f.BoolVar(&c.active, "active", false, "Only holders that ever held the policy minimum since the activity date")
	f.StringVar(&c.on, "on", "", "Date for the -min/-max position filter")
	f.Int64Var(&c.min, "min", -1, "Minimum position on the -on date")
	f.Int64Var(&c.max, "max", -1, "Maximum position on the -on date")
}

func (c *entitiesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	policy, err := LoadPolicy()
	if err != nil {
		return fail(err)
	}
	kv, err := OpenStore(policy)
	if err != nil {
		return fail(err)
	}
	defer kv.Close()

	reg, err := DecodeRegistry(ctx, kv)
	if err != nil {
		return fail(err)
	}

	var filters []shareline.Filter
	if c.category != "" {
		filters = append(filters, shareline.ByCategory(c.category))
	}
	if c.match != "" {
		filters = append(filters, shareline.ByMatch(c.match))
	}
	if c.active {
		filters = append(filters, shareline.Active(policy))
	}
	if c.min >= 0 || c.max >= 0 {
		if c.on == "" {
			return usageError(fmt.Errorf("-min/-max need an -on date"))
		}
		on, err := shareline.ParseDate(c.on)
		if err != nil {
			return usageError(fmt.Errorf("parsing -on: %w", err))
		}
		min := shareline.Q(max(c.min, int64(0)))
		max := shareline.Q(int64(1) << 62)
		if c.max >= 0 {
			max = shareline.Q(c.max)
		}
		filters = append(filters, shareline.BySharesBetween(on, min, max))
	}

	entities := reg.Select(shareline.And(filters...))
	printMarkdown(renderer.EntitiesMarkdown(fmt.Sprintf("Holders (%d)", len(entities)), entities))
	return subcommands.ExitSuccess
}
