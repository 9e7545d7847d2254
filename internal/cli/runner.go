package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/roster/internal/config"
	"github.com/Makepad-fr/roster/internal/logging"
	"github.com/Makepad-fr/roster/internal/roster"
	"github.com/Makepad-fr/roster/internal/store"
	"github.com/Makepad-fr/roster/internal/tui"
	"github.com/Makepad-fr/roster/internal/ui"
)

// Options are the root flags; they override the config file and env.
type Options struct {
	ConfigPath string
	Backend    string
	Dir        string
	Theme      string
	LogLevel   string
}

// usageError maps to exit code 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error { return &usageError{msg: fmt.Sprintf(format, a...)} }

// app is what every subcommand works against.
type app struct {
	logger *log.Logger
	kv     store.KV
	ctrl   *roster.Controller
	closer io.Closer
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		a.logger.Error("close storage", "err", err)
	}
	if a.closer != nil {
		a.closer.Close()
	}
}

func resolveConfig(opt *Options) (config.Config, error) {
	cfg, _, err := config.Load(opt.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opt.Backend != "" {
		cfg.Storage.Backend = opt.Backend
	}
	if opt.Dir != "" {
		cfg.Storage.Dir = opt.Dir
	}
	if opt.Theme != "" {
		cfg.UI.Theme = opt.Theme
	}
	if opt.LogLevel != "" {
		cfg.Log.Level = opt.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, usagef("config: %v", err)
	}
	return cfg, nil
}

func openApp(ctx context.Context, opt *Options) (*app, error) {
	cfg, err := resolveConfig(opt)
	if err != nil {
		return nil, err
	}
	ui.SetTheme(cfg.UI.Theme)

	logger, closer, err := logging.OpenFile(cfg.LogPath(), cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	kv, err := store.Open(ctx, cfg.Storage.Backend, cfg.Storage.Dir, logger)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}
	logger.Debug("opened storage", "backend", cfg.Storage.Backend, "dir", cfg.Storage.Dir)

	return &app{
		logger: logger,
		kv:     kv,
		ctrl:   roster.New(ctx, kv, logger),
		closer: closer,
	}, nil
}

// NewRootCommand builds the command tree. Without a subcommand the
// interactive form starts.
func NewRootCommand() *cobra.Command {
	opt := &Options{}

	root := &cobra.Command{
		Use:   "roster",
		Short: "roster - a student to-do list",
		Long: `roster keeps a small list of students (name, email, to-do) and saves it
on every change. Run without a subcommand to open the interactive form.`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opt)
			if err != nil {
				return err
			}
			defer a.Close()
			return tui.Run(cmd.Context(), a.ctrl, a.logger)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opt.ConfigPath, "config", "", "config file (default ./roster.toml or ~/.config/roster/roster.toml)")
	pf.StringVar(&opt.Backend, "backend", "", "storage backend: json, sqlite or memory")
	pf.StringVar(&opt.Dir, "data", "", "data directory")
	pf.StringVar(&opt.Theme, "theme", "", "theme: classic, neon or mono")
	pf.StringVar(&opt.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newListCommand(opt),
		newAddCommand(opt),
		newUpdateCommand(opt),
		newRemoveCommand(opt),
		newConfigCommand(opt),
	)
	return root
}

// Execute runs the command line and returns an exit code (0 ok, 1 error,
// 2 usage or validation).
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	ui.Fail(stderr, err.Error())

	var ue *usageError
	switch {
	case errors.As(err, &ue):
		fmt.Fprintln(stderr)
		fmt.Fprint(stderr, root.UsageString())
		return 2
	case errors.Is(err, roster.ErrNoRecord):
		ui.Hint(stderr, "Hint: run `roster ls` to see valid indexes")
		return 2
	case roster.IsValidation(err):
		return 2
	}
	return 1
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{msg: err.Error()}
		}
		return nil
	}
}

func newListCommand(opt *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List students",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opt)
			if err != nil {
				return err
			}
			defer a.Close()

			recs := a.ctrl.Records()
			t := ui.Current()
			header := fmt.Sprintf("%s  %s %d", t.Title.Render("Students"), t.Accent.Render("Total"), len(recs))
			lines := []string{header, ""}
			lines = append(lines, ui.RecordLines(recs)...)
			lines = append(lines, "", t.Muted.Render("Tip: add with `roster add --name Al --email a@b.co --todo Read`"))
			ui.Panel(cmd.OutOrStdout(), lines)
			return nil
		},
	}
}

func newAddCommand(opt *Options) *cobra.Command {
	var d roster.Draft
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), opt)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ctrl.Add(cmd.Context(), d); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("added %s (#%d)", d.Name, a.ctrl.Len()))
			return nil
		},
	}
	draftFlags(cmd, &d)
	return cmd
}

func newUpdateCommand(opt *Options) *cobra.Command {
	var d roster.Draft
	cmd := &cobra.Command{
		Use:   "update <index>",
		Short: "Update the student at a 1-based index; omitted fields keep their value",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opt)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ctrl.SelectForEdit(idx); err != nil {
				return outOfRange(a.ctrl.Len(), idx)
			}
			next := a.ctrl.Draft()
			flags := cmd.Flags()
			if flags.Changed("name") {
				next.Name = d.Name
			}
			if flags.Changed("email") {
				next.Email = d.Email
			}
			if flags.Changed("todo") {
				next.ToDo = d.ToDo
			}
			if err := a.ctrl.Update(cmd.Context(), next, idx); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("updated #%d", idx+1))
			return nil
		},
	}
	draftFlags(cmd, &d)
	return cmd
}

func newRemoveCommand(opt *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <index>",
		Aliases: []string{"delete"},
		Short:   "Remove the student at a 1-based index",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opt)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, ok := a.ctrl.Record(idx); !ok {
				return outOfRange(a.ctrl.Len(), idx)
			}
			if err := a.ctrl.Delete(cmd.Context(), idx); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "removed")
			return nil
		},
	}
}

func newConfigCommand(opt *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(opt)
			if err != nil {
				return err
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}
}

func draftFlags(cmd *cobra.Command, d *roster.Draft) {
	f := cmd.Flags()
	f.StringVar(&d.Name, "name", "", "student name")
	f.StringVar(&d.Email, "email", "", "student email")
	f.StringVar(&d.ToDo, "todo", "", "what the student has to do")
}

// parseIndex converts a 1-based command line index to a position.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, usagef("not a number: %s", s)
	}
	return n - 1, nil
}

func outOfRange(have, idx int) error {
	return fmt.Errorf("%w: have %d, got %d", roster.ErrNoRecord, have, idx+1)
}
