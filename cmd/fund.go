package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"shareline"
	"shareline/renderer"
)

// fundCmd holds the flags for the 'fund' subcommand.
type fundCmd struct {
	all bool
}

func (*fundCmd) Name() string     { return "fund" }
func (*fundCmd) Synopsis() string { return "show holders folded into fund families" }
func (*fundCmd) Usage() string {
	return `shl fund [-all]

  Folds holders that share the first two words of their name into one
  aggregate holder per fund family, and lists the aggregates with their
  members. The registry itself is not modified.

Usage Examples:
$ shl fund

`
}

func (c *fundCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "Also list holders that fold alone")
}

func (c *fundCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	grouped := reg.GroupByFund()
	var families []*shareline.Entity
	for e := range grouped.Entities() {
		if c.all || e.IsAggregate() {
			families = append(families, e)
		}
	}

	title := fmt.Sprintf("Fund families (%d)", len(families))
	printMarkdown(renderer.FamiliesMarkdown(title, families))
	return subcommands.ExitSuccess
}
