package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"mergeview/internal/anchors"
	"mergeview/internal/app"
	"mergeview/internal/compare"
	"mergeview/internal/config"
	"mergeview/internal/diffview"
	"mergeview/internal/document"
	"mergeview/internal/fragment"
	gitint "mergeview/internal/git"
	"mergeview/internal/logging"
	"mergeview/internal/session"
)

func main() {
	flags, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "failed to parse arguments: %v\n", err)
		os.Exit(2)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	ctx := logging.NewContext(context.Background(), log)

	sides, err := loadSides(ctx, flags.Paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load files: %v\n", err)
		os.Exit(1)
	}

	policy, err := cfg.Policy()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	oracle, err := compare.NewOracle(cfg.Algorithm,
		compare.WithMaxLines(cfg.MaxLines),
		compare.WithFileName(sides.fileName()),
		compare.WithLogger(log),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize comparison: %v\n", err)
		os.Exit(1)
	}

	if flags.Patch {
		if err := printPatch(ctx, oracle, policy, sides, cfg.ContextLines); err != nil {
			fmt.Fprintf(os.Stderr, "failed to compare: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, policy, oracle, sides, log); err != nil {
		fmt.Fprintf(os.Stderr, "application error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(flags *cliFlags) (config.AppConfig, error) {
	var (
		cfg config.AppConfig
		err error
	)
	if flags.ConfigPath != "" {
		cfg, err = config.LoadFromPath(flags.ConfigPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return config.AppConfig{}, err
	}
	if err := flags.apply(&cfg); err != nil {
		return config.AppConfig{}, err
	}
	return cfg, nil
}

func printPatch(ctx context.Context, oracle compare.Oracle, policy compare.Policy, sides loadedSides, contextLines int) error {
	text1, text2 := sides.text(fragment.Side1), sides.text(fragment.Side2)
	frs, err := oracle.Compare(ctx, text1, text2, policy)
	if err != nil {
		return err
	}
	out, err := compare.FormatPatch(sides.labels[0], sides.labels[1], text1, text2, frs, contextLines)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func run(ctx context.Context, cfg config.AppConfig, policy compare.Policy, oracle compare.Oracle, sides loadedSides, log *zap.Logger) error {
	marks := diffview.NewHighlights()
	sess := session.New(sides.docs[0], sides.docs[1],
		session.WithOracle(oracle),
		session.WithPolicy(policy),
		session.WithLogger(log),
		session.WithDecorator(marks),
	)
	defer sess.Close()

	opts := app.Options{
		Paths:  sides.paths,
		Labels: sides.labels,
		Config: cfg,
		Watch:  true,
		Log:    log,
	}
	if store, rel, ok := anchorStore(ctx, sides.anchorTarget()); ok {
		opts.Anchors = &store
		opts.AnchorPath = rel
	}

	model, err := app.NewModel(ctx, sess, marks, opts)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if m, ok := final.(app.Model); ok {
		m.Close()
	} else {
		model.Close()
	}
	return err
}

// anchorStore finds the git repository holding path. Anchors are keyed by
// the path relative to the repository root.
func anchorStore(ctx context.Context, path string) (anchors.Store, string, bool) {
	if path == "" {
		return anchors.Store{}, "", false
	}
	dir := filepath.Dir(path)
	gitDir, err := gitint.DiscoverGitDir(ctx, dir)
	if err != nil {
		logging.L(ctx).Debug("anchors disabled", zap.Error(err))
		return anchors.Store{}, "", false
	}
	rel := filepath.Base(path)
	if root, err := gitint.DiscoverRepoRoot(ctx, dir); err == nil {
		if abs, err := filepath.Abs(path); err == nil {
			if r, err := filepath.Rel(root, abs); err == nil {
				rel = filepath.ToSlash(r)
			}
		}
	}
	return anchors.NewStore(gitDir), rel, true
}

// loadedSides are the two documents to compare. A nil document is absent.
type loadedSides struct {
	docs   [2]*document.Document
	paths  [2]string
	labels [2]string
}

func (s loadedSides) text(side fragment.Side) string {
	if d := s.docs[side.Index()]; d != nil {
		return d.Text()
	}
	return ""
}

func (s loadedSides) fileName() string {
	for _, i := range []int{1, 0} {
		if s.labels[i] != "" {
			return s.labels[i]
		}
	}
	return ""
}

// anchorTarget is the file anchors attach to: the right-hand file on disk.
func (s loadedSides) anchorTarget() string {
	return s.paths[1]
}

// loadSides reads LEFT and RIGHT. A single path is compared against its
// version at HEAD, which is read-only and absent for untracked files.
func loadSides(ctx context.Context, paths []string) (loadedSides, error) {
	var s loadedSides
	if len(paths) == 1 {
		path := paths[0]
		text, err := os.ReadFile(path)
		if err != nil {
			return s, err
		}
		s.docs[1] = document.New(path, string(text))
		s.paths[1] = path
		s.labels = [2]string{path + " (HEAD)", path}

		head, ok, err := gitint.HeadVersion(ctx, path)
		if err != nil {
			return s, err
		}
		if ok {
			s.docs[0] = document.New(s.labels[0], head)
			s.docs[0].SetReadOnly(true)
		}
		return s, nil
	}

	for i, path := range paths {
		s.labels[i] = path
		text, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return s, err
		}
		s.docs[i] = document.New(path, string(text))
		s.paths[i] = path
	}
	if s.docs[0] == nil && s.docs[1] == nil {
		return s, fmt.Errorf("neither %s nor %s exists", paths[0], paths[1])
	}
	return s, nil
}
