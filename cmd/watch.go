package cmd

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/subcommands"
	"go.uber.org/zap"

	"shareline"
	"shareline/xlsx"
)

type watchCmd struct {
	dir     string
	settle  time.Duration
	verbose bool
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "watch a folder and ingest workbooks dropped into it" }
func (*watchCmd) Usage() string {
	return `shl watch [-dir <inbox>]

  Watches the inbox folder and ingests every workbook dropped into it,
  as soon as the file stops growing. Runs until interrupted.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", "inbox", "Folder to watch for new workbooks")
	f.DurationVar(&c.settle, "settle", 500*time.Millisecond, "Quiet delay before a new file is considered complete")
	f.BoolVar(&c.verbose, "v", false, "Verbose logging")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log, err := newLogger(c.verbose)
	if err != nil {
		return fail(err)
	}
	defer log.Sync()

	policy, err := LoadPolicy()
	if err != nil {
		return fail(err)
	}
	kv, err := OpenStore(policy)
	if err != nil {
		return fail(err)
	}
	defer kv.Close()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fail(err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fail(err)
	}
	defer watcher.Close()
	if err := watcher.Add(c.dir); err != nil {
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("watching inbox", zap.String("dir", c.dir))
	if err := watchLoop(ctx, watcher, kv, log, c.settle); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// watchLoop ingests each workbook once its write events have settled.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, kv shareline.Store, log *zap.Logger, settle time.Duration) error {
	pending := map[string]*time.Timer{}
	done := make(chan string)

	for {
		select {
		case <-ctx.Done():
			for _, t := range pending {
				t.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isWorkbook(event.Name) {
				continue
			}
			// restart the settle timer on every write
			if t, ok := pending[event.Name]; ok {
				t.Stop()
			}
			name := event.Name
			pending[name] = time.AfterFunc(settle, func() {
				select {
				case done <- name:
				case <-ctx.Done():
				}
			})

		case name := <-done:
			delete(pending, name)
			if err := ingestOne(ctx, kv, name); err != nil {
				log.Warn("skipping workbook", zap.String("file", name), zap.Error(err))
				continue
			}
			log.Info("ingested workbook", zap.String("file", name))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", zap.Error(err))
		}
	}
}

func isWorkbook(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

// ingestOne reads, normalizes and merges a single workbook.
func ingestOne(ctx context.Context, kv shareline.Store, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	table, err := xlsx.ReadFile(file, data)
	if err != nil {
		return err
	}
	on, records, err := shareline.Normalize(table)
	if err != nil {
		return err
	}
	reg, err := shareline.LoadRegistry(ctx, kv)
	if err != nil {
		return err
	}
	reg = reg.Merge(on, records)
	reg = reg.LogUpload(shareline.UploadRecord{
		On:         on,
		FileName:   filepath.Base(file),
		UploadedAt: time.Now().UTC(),
		Records:    len(records),
	})
	return shareline.SaveRegistry(ctx, kv, reg)
}
