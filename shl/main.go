package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"shareline/cmd"
)

func main() {
	// shell completion, a no-op outside of completion mode
	subs := map[string]*complete.Command{}
	for _, name := range cmd.CommandNames() {
		subs[name] = &complete.Command{Flags: map[string]complete.Predictor{}}
	}
	subs["ingest"].Args = predict.Files("*.xlsx")
	subs["topic"].Args = predict.Set{"dates", "ingest", "grouping", "windows", "readme"}
	completion := &complete.Command{
		Sub: subs,
		Flags: map[string]complete.Predictor{
			"fast-dir":    predict.Dirs("*"),
			"durable-dir": predict.Dirs("*"),
			"policy":      predict.Files("*.yaml"),
		},
	}
	completion.Complete("shl")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
