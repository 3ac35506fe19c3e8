package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"shareline"
	"shareline/xlsx"
)

type ingestCmd struct {
	jobs int
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "ingest snapshot workbooks into the registry" }
func (*ingestCmd) Usage() string {
	return `shl ingest <file.xlsx|file.csv>...

  Reads each workbook, finds its snapshot date in the "Shares as on" column
  header, and merges the rows into the registry. Files can be given in any
  order; each carries its own date.

Usage Examples:
# Ingest a whole quarter at once.
$ shl ingest snapshots/2024-*.xlsx

`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.jobs, "jobs", 4, "Number of workbooks parsed in parallel")
}

// parsed is one workbook reduced to its snapshot.
type parsed struct {
	file    string
	on      shareline.Date
	records []shareline.Record
}

func (c *ingestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usageError(fmt.Errorf("no file to ingest"))
	}

	snapshots, err := parseAll(ctx, f.Args(), c.jobs)
	if err != nil {
		return fail(err)
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

	// Merge in chronological order so the upload log reads naturally.
	// The registry itself is order-independent.
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].on.Before(snapshots[j].on) })
	for _, s := range snapshots {
		reg = reg.Merge(s.on, s.records)
		reg = reg.LogUpload(shareline.UploadRecord{
			On:         s.on,
			FileName:   filepath.Base(s.file),
			UploadedAt: time.Now().UTC(),
			Records:    len(s.records),
		})
		fmt.Printf("ingested %s: %d holders as on %s\n", filepath.Base(s.file), len(s.records), s.on)
	}

	if err := shareline.SaveRegistry(ctx, kv, reg); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// parseAll reads and normalizes the workbooks, a few at a time.
func parseAll(ctx context.Context, files []string, jobs int) ([]parsed, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))

	out := make([]parsed, len(files))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %q: %w", file, err)
			}
			table, err := xlsx.ReadFile(file, data)
			if err != nil {
				return fmt.Errorf("reading %q: %w", file, err)
			}
			on, records, err := shareline.Normalize(table)
			if err != nil {
				return fmt.Errorf("normalizing %q: %w", file, err)
			}
			out[i] = parsed{file: file, on: on, records: records}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
