package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/subcommands"

	"shareline"
	"shareline/renderer"
)

// groupsCmd holds the flags for the 'groups' subcommand.
type groupsCmd struct {
	create   bool
	delete   string
	pull     string
	name     string
	category string
	members  string
}

func (*groupsCmd) Name() string     { return "groups" }
func (*groupsCmd) Synopsis() string { return "list, create or delete manual holder groups" }
func (*groupsCmd) Usage() string {
	return `shl groups [-create -name <name> -members <m1,m2,...> [-category <cat>]] [-delete <id>] [-pull <url>]

  Without flags, lists the manual groups. With -create, records a new
  group of holders; each member is an exact holder key or a text that
  matches a single holder. When the members span several categories the
  candidates are listed and -category must pick one. With -pull, imports
  the definitions published by a remote 'shl serve' instance.

Usage Examples:
$ shl groups -create -name "Quant desks" -members "AQUA FUND,BLUEPOOL"
$ shl groups -pull http://reports.example.com:8080

`
}

func (c *groupsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.create, "create", false, "Create a group")
	f.StringVar(&c.delete, "delete", "", "Delete the group with this id")
	f.StringVar(&c.pull, "pull", "", "Import group definitions from this remote base URL")
	f.StringVar(&c.name, "name", "", "Name of the group to create")
	f.StringVar(&c.category, "category", "", "Category of the group, when the members disagree")
	f.StringVar(&c.members, "members", "", "Comma-separated holder keys or match texts")
}

func (c *groupsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	policy, err := LoadPolicy()
	if err != nil {
		return fail(err)
	}
	kv, err := OpenStore(policy)
	if err != nil {
		return fail(err)
	}
	defer kv.Close()

	set, err := shareline.LoadGroups(ctx, kv)
	if err != nil {
		return fail(err)
	}

	switch {
	case c.create:
		return c.runCreate(ctx, kv, set)
	case c.pull != "":
		return c.runPull(ctx, kv, set)
	case c.delete != "":
		if _, ok := set.Get(c.delete); !ok {
			return fail(fmt.Errorf("no group with id %q", c.delete))
		}
		if err := shareline.SaveGroups(ctx, kv, set.Delete(c.delete)); err != nil {
			return fail(err)
		}
		fmt.Printf("deleted group %s\n", c.delete)
		return subcommands.ExitSuccess
	default:
		printMarkdown(renderer.GroupsMarkdown(set))
		return subcommands.ExitSuccess
	}
}

func (c *groupsCmd) runCreate(ctx context.Context, kv shareline.Store, set *shareline.GroupSet) subcommands.ExitStatus {
	if c.name == "" || c.members == "" {
		return usageError(fmt.Errorf("-create needs -name and -members"))
	}
	reg, err := DecodeRegistry(ctx, kv)
	if err != nil {
		return fail(err)
	}

	members, err := resolveMembers(reg, strings.Split(c.members, ","))
	if err != nil {
		return fail(err)
	}

	next, err := set.Save(reg, shareline.GroupDef{Name: c.name, Members: members}, c.category)
	if err != nil {
		var ambiguous *shareline.AmbiguousCategoryError
		if errors.As(err, &ambiguous) {
			fmt.Printf("The members span several categories, pick one with -category:\n")
			for _, cat := range ambiguous.Categories {
				fmt.Printf("  - %s\n", cat)
			}
			return subcommands.ExitUsageError
		}
		return fail(err)
	}
	if err := shareline.SaveGroups(ctx, kv, next); err != nil {
		return fail(err)
	}
	fmt.Printf("created group %q with %d members\n", c.name, len(members))
	return subcommands.ExitSuccess
}

// runPull imports the group definitions served by a remote instance,
// overwriting local definitions that share an id and skipping the rest on
// name collisions.
func (c *groupsCmd) runPull(ctx context.Context, kv shareline.Store, set *shareline.GroupSet) subcommands.ExitStatus {
	reg, err := DecodeRegistry(ctx, kv)
	if err != nil {
		return fail(err)
	}
	remote, err := shareline.FetchGroups(http.DefaultClient, strings.TrimRight(c.pull, "/"))
	if err != nil {
		return fail(err)
	}

	var imported, skipped int
	for g := range remote.Groups() {
		next, err := set.Save(reg, g, g.Category)
		if err != nil {
			var dup *shareline.DuplicateNameError
			if errors.As(err, &dup) {
				fmt.Printf("skipping %q: a local group already uses that name\n", g.Name)
				skipped++
				continue
			}
			return fail(err)
		}
		set = next
		imported++
	}
	if err := shareline.SaveGroups(ctx, kv, set); err != nil {
		return fail(err)
	}
	fmt.Printf("imported %d groups from %s (%d skipped)\n", imported, c.pull, skipped)
	return subcommands.ExitSuccess
}

// resolveMembers maps each given text onto exactly one holder, by exact
// key first, then by unique name match.
func resolveMembers(reg *shareline.Registry, texts []string) ([]shareline.GroupMember, error) {
	members := make([]shareline.GroupMember, 0, len(texts))
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if e, ok := reg.Get(text); ok {
			members = append(members, shareline.GroupMember{Key: e.Key, PAN: e.PAN, Name: e.Name})
			continue
		}
		matches := reg.Select(shareline.ByMatch(text))
		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("no holder matches %q", text)
		case 1:
			e := matches[0]
			members = append(members, shareline.GroupMember{Key: e.Key, PAN: e.PAN, Name: e.Name})
		default:
			names := make([]string, 0, len(matches))
			for _, e := range matches {
				names = append(names, e.Name)
			}
			return nil, fmt.Errorf("%q matches several holders: %s", text, strings.Join(names, ", "))
		}
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("no members resolved")
	}
	return members, nil
}
