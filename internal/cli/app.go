package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

var ErrUsage = errors.New("invalid usage")

// App runs one command line against an open service.
type App struct {
	Out     io.Writer
	Err     io.Writer
	Service *services.FinanceService
	Config  *config.Config
	Now     func() time.Time
}

type command struct {
	name    string
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = []command{
	{"account", "add | list | update | delete accounts", (*App).runAccount},
	{"category", "add | list | update | delete categories", (*App).runCategory},
	{"tx", "add | list | update | delete transactions", (*App).runTransaction},
	{"report", "month | year | breakdown | trend | balances", (*App).runReport},
	{"import", "import transactions from a CSV file", (*App).runImport},
	{"export", "export transactions as CSV or a JSON snapshot", (*App).runExport},
	{"backup", "create | list | restore | delete | info", (*App).runBackup},
	{"reconcile", "recompute stored account balances", (*App).runReconcile},
}

// Run dispatches args[0] to its command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}
	switch args[0] {
	case "help", "-h", "--help":
		a.usage()
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(a, ctx, args[1:])
		}
	}
	fmt.Fprintf(a.Err, "Unknown command: %s\n\n", args[0])
	a.usage()
	return ErrUsage
}

func (a *App) usage() {
	fmt.Fprintln(a.Err, "Personal finance tracker")
	fmt.Fprintln(a.Err, "\nUsage:")
	fmt.Fprintln(a.Err, "  fintrack <command> [subcommand] [options]")
	fmt.Fprintln(a.Err, "\nCommands:")
	for _, c := range commands {
		fmt.Fprintf(a.Err, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(a.Err, "\nRun 'fintrack <command> <subcommand> -h' for options.")
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Err)
	return fs
}

// parse wraps FlagSet.Parse, treating -h as success.
func parse(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return true, nil
}

// subcommand splits "add -x 1" into "add" and its flags.
func subcommand(args []string, group string, names ...string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%w: %s needs one of %s", ErrUsage, group, strings.Join(names, ", "))
	}
	for _, n := range names {
		if args[0] == n {
			return n, args[1:], nil
		}
	}
	return "", nil, fmt.Errorf("%w: unknown %s subcommand %q", ErrUsage, group, args[0])
}

func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func required(name string, ok bool) error {
	if !ok {
		return fmt.Errorf("%w: -%s is required", ErrUsage, name)
	}
	return nil
}

func parseMoney(s string) (core.Money, error) {
	d, err := core.ParseAmount(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("amount %q: %w", s, err)
	}
	m, err := core.NewMoneyFromDecimal(d)
	if err != nil {
		return core.Money{}, fmt.Errorf("amount %q: %w", s, err)
	}
	return m, nil
}

// parseOptionalDate accepts any ParseDate layout; "" yields the zero Date.
func parseOptionalDate(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("date %q: %w", s, err)
	}
	return d, nil
}

// resolveCategory accepts a category name or numeric id.
func (a *App) resolveCategory(ctx context.Context, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	store, err := a.Service.Store()
	if err != nil {
		return 0, err
	}
	lookup, err := store.CategoryLookup(ctx)
	if err != nil {
		return 0, err
	}
	if id, ok := lookup[ref]; ok {
		return id, nil
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if _, err := store.GetCategory(ctx, id); err != nil {
			return 0, err
		}
		return id, nil
	}
	return 0, fmt.Errorf("unknown category %q", ref)
}
