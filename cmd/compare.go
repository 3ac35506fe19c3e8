package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"shareline"
	"shareline/renderer"
)

// compareCmd holds the flags for the 'compare' subcommand.
type compareCmd struct {
	month1 string
	month2 string
	funds  bool
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "classify holders between two months" }
func (*compareCmd) Usage() string {
	return `shl compare -m1 <date> -m2 <date>

  Computes each holder's net share change inside each of the two months
  and buckets them as buyer, seller, holder, new or exited. Any date
  inside a month designates it.

Usage Examples:
$ shl compare -m1 2024-01 -m2 2024-02-15

`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month1, "m1", "", "Any date inside the earlier month")
	f.StringVar(&c.month2, "m2", "", "Any date inside the later month")
	f.BoolVar(&c.funds, "funds", false, "Fold fund families into aggregate holders first")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.month1 == "" || c.month2 == "" {
		return usageError(fmt.Errorf("both -m1 and -m2 are required"))
	}
	d1, err := shareline.ParseDate(c.month1)
	if err != nil {
		return usageError(fmt.Errorf("parsing -m1: %w", err))
	}
	d2, err := shareline.ParseDate(c.month2)
	if err != nil {
		return usageError(fmt.Errorf("parsing -m2: %w", err))
	}

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
	if c.funds {
		reg = reg.GroupByFund()
	}

	m1, err := monthChanges(reg, d1)
	if err != nil {
		return fail(err)
	}
	m2, err := monthChanges(reg, d2)
	if err != nil {
		return fail(err)
	}

	behaviors := shareline.ClassifyTwoPoint(m1, m2, policy)
	names := make(map[string]string, len(behaviors))
	for e := range reg.Entities() {
		names[e.Key] = e.Name
	}

	printMarkdown(renderer.CompareMarkdown(&renderer.CompareReport{
		Month1:    d1,
		Month2:    d2,
		Names:     names,
		Behaviors: behaviors,
	}))
	return subcommands.ExitSuccess
}

// monthChanges snaps the month containing d onto the recorded snapshot
// dates and derives the per-holder net change inside it.
func monthChanges(reg *shareline.Registry, d shareline.Date) (shareline.PointSnapshot, error) {
	first := shareline.NewDate(d.Year(), d.Month(), 1)
	last := first.AddMonth(1).Add(-1)
	w, ok := reg.ResolveWindow(first, last)
	if !ok {
		return nil, fmt.Errorf("no snapshot recorded in the month of %s", d)
	}
	return reg.NetChanges(w.Start, w.End), nil
}
