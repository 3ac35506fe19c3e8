package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"shareline/renderer"
)

type uploadsCmd struct{}

func (*uploadsCmd) Name() string     { return "uploads" }
func (*uploadsCmd) Synopsis() string { return "show the snapshot upload history" }
func (*uploadsCmd) Usage() string {
	return `shl uploads

  Lists the snapshot files the registry was built from, one line per
  snapshot date, with the most recent ingestion of each.
`
}

func (*uploadsCmd) SetFlags(*flag.FlagSet) {}

func (c *uploadsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printMarkdown(renderer.UploadsMarkdown(reg.Uploads()))
	return subcommands.ExitSuccess
}
