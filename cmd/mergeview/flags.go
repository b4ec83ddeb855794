package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"mergeview/internal/config"
)

// cliFlags holds the command-line values. Only flags the user set override
// the config file.
type cliFlags struct {
	ConfigPath   string
	Ignore       string
	Highlight    string
	Algorithm    string
	LogLevel     string
	LogFile      string
	Patch        bool
	NoSyncScroll bool
	Context      int
	Paths        []string

	set *pflag.FlagSet
}

func parseFlags(args []string, out io.Writer) (*cliFlags, error) {
	f := &cliFlags{}
	fs := pflag.NewFlagSet("mergeview", pflag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "Config file (default: $XDG_CONFIG_HOME/mergeview/config.json).")
	fs.StringVarP(&f.Ignore, "ignore", "w", "", "Whitespace policy: default, trim or whitespace.")
	fs.StringVar(&f.Highlight, "highlight", "", "Highlight policy: word, line, char or none.")
	fs.StringVarP(&f.Algorithm, "algorithm", "a", "", "Comparison algorithm: myers, sequence or git.")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn or error.")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file.")
	fs.BoolVarP(&f.Patch, "patch", "p", false, "Print a unified diff and exit.")
	fs.BoolVar(&f.NoSyncScroll, "no-sync-scroll", false, "Scroll the panes independently.")
	fs.IntVarP(&f.Context, "context", "U", 3, "Context lines for --patch.")

	fs.Usage = func() {
		fmt.Fprintln(out, "Usage: mergeview [flags] LEFT [RIGHT]")
		fmt.Fprintln(out, "\nCompare two files side by side and move changes between them.")
		fmt.Fprintln(out, "With a single file, compare its git HEAD version against the working copy.")
		fmt.Fprintln(out, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.Paths = fs.Args()
	if len(f.Paths) < 1 || len(f.Paths) > 2 {
		fs.Usage()
		return nil, fmt.Errorf("expected one or two files, got %d", len(f.Paths))
	}
	f.set = fs
	return f, nil
}

// apply overrides cfg with every flag given on the command line and
// validates the result.
func (f *cliFlags) apply(cfg *config.AppConfig) error {
	f.set.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "ignore":
			cfg.IgnorePolicy = f.Ignore
		case "highlight":
			cfg.HighlightPolicy = f.Highlight
		case "algorithm":
			cfg.Algorithm = f.Algorithm
		case "log-level":
			cfg.LogLevel = f.LogLevel
		case "log-file":
			cfg.LogFile = f.LogFile
		case "no-sync-scroll":
			cfg.SyncScroll = !f.NoSyncScroll
		case "context":
			cfg.ContextLines = f.Context
		}
	})
	return cfg.Normalize()
}
