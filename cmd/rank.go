package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"shareline"
	"shareline/renderer"
)

// rankCmd holds the flags for the 'rank' subcommand.
type rankCmd struct {
	start    string
	end      string
	lastDays int
	quarter  bool
	sellers  bool
	top      int
	category string
	match    string
	funds    bool
	// processed
	window   shareline.Window
	resolved bool
	reg      *shareline.Registry
	policy   shareline.Policy
}

func (*rankCmd) Name() string     { return "rank" }
func (*rankCmd) Synopsis() string { return "rank buyers or sellers over a period" }
func (*rankCmd) Usage() string {
	return `shl rank [-start <date> -end <date> | -last-days <n> | -quarter] [-sellers] [-top <n>]

  Ranks holders by net share change between the two registry snapshots
  closest to the requested period. The start rounds forward, the end
  rounds backward.

Usage Examples:
# Top 10 buyers of the last quarter.
$ shl rank -quarter -top 10

`
}

func (c *rankCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "Start of the period. See 'shl topic dates' for formats.")
	f.StringVar(&c.end, "end", "", "End of the period. Today by default.")
	f.IntVar(&c.lastDays, "last-days", 0, "Period of the last n days. Overrides -start and -end.")
	f.BoolVar(&c.quarter, "quarter", false, "Current quarter period. Overrides -start and -end.")
	f.BoolVar(&c.sellers, "sellers", false, "Rank sellers instead of buyers")
	f.IntVar(&c.top, "top", 20, "Number of rows to show, 0 for all")
	f.StringVar(&c.category, "category", "", "Only holders of this category")
	f.StringVar(&c.match, "match", "", "Only holders whose name or description contains this text")
	f.BoolVar(&c.funds, "funds", false, "Fold fund families into aggregate holders first")
}

func (c *rankCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.init(ctx); err != nil {
		return usageError(err)
	}

	mode := shareline.Buyers
	if c.sellers {
		mode = shareline.Sellers
	}

	filters := []shareline.Filter{shareline.Active(c.policy)}
	if c.category != "" {
		filters = append(filters, shareline.ByCategory(c.category))
	}
	if c.match != "" {
		filters = append(filters, shareline.ByMatch(c.match))
	}
	entities := c.reg.Select(shareline.And(filters...))

	md := renderer.RankMarkdown(&renderer.RankReport{
		Mode:     mode,
		Window:   c.window,
		Resolved: c.resolved,
		Deltas:   shareline.Rank(entities, c.window, mode),
		Limit:    c.top,
	})
	printMarkdown(md)
	return subcommands.ExitSuccess
}

func (c *rankCmd) init(ctx context.Context) error {
	policy, err := LoadPolicy()
	if err != nil {
		return err
	}
	c.policy = policy

	kv, err := OpenStore(policy)
	if err != nil {
		return err
	}
	defer kv.Close()

	c.reg, err = DecodeRegistry(ctx, kv)
	if err != nil {
		return err
	}
	if c.funds {
		c.reg = c.reg.GroupByFund()
	}

	start, end, err := c.period()
	if err != nil {
		return err
	}
	c.window, c.resolved = c.reg.ResolveWindow(start, end)
	return nil
}

// period derives the requested period from the flags, before snapping.
func (c *rankCmd) period() (start, end shareline.Date, err error) {
	switch {
	case c.quarter:
		start, end, _ = c.reg.Quarter()
		return start, end, nil
	case c.lastDays > 0:
		start, end, _ = c.reg.LastDays(c.lastDays)
		return start, end, nil
	}
	if c.start == "" {
		return start, end, fmt.Errorf("a period is required: -start, -last-days or -quarter")
	}
	if start, err = shareline.ParseDate(c.start); err != nil {
		return start, end, fmt.Errorf("parsing start date: %w", err)
	}
	if c.end == "" {
		return start, shareline.Today(), nil
	}
	if end, err = shareline.ParseDate(c.end); err != nil {
		return start, end, fmt.Errorf("parsing end date: %w", err)
	}
	return start, end, nil
}
