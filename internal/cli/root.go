// Package cli is the taskmaster command line. With no subcommand it starts the
// terminal UI.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskmaster/internal/app"
	"github.com/sandeepkv93/taskmaster/internal/config"
	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
)

func SetVersionInfo(version, commit string) {
	appVersion = version
	appCommit = commit
}

type rootOptions struct {
	configPath string
	dataDir    string
	backend    string
	slot       string
	app        *app.App
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	root, _ := newRootCmd()
	return root
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "taskmaster",
		Short: "Task Master - keep track of what needs doing",
		Long: `Task Master keeps an ordered list of tasks with optional due dates and
priorities. Run it without arguments for the interactive terminal UI, or use
the subcommands below from scripts.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return opts.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts.app)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: ./config.yaml or <data dir>/config.yaml)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory holding tasks, database and log")
	flags.StringVar(&opts.backend, "backend", "", "storage backend: file, sqlite or memory")
	flags.StringVar(&opts.slot, "slot", "", "name of the task list to use")

	root.AddCommand(
		newVersionCmd(),
		newAddCmd(opts),
		newListCmd(opts),
		newToggleCmd(opts),
		newDeleteCmd(opts),
		newPriorityCmd(opts),
		newReorderCmd(opts),
		newClearCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
	)
	return root, opts
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskmaster %s\ncommit: %s\n", appVersion, appCommit)
		},
	}
}

// open resolves config with flag overrides and opens the App. The TUI logs to
// the log file; subcommands log warnings and up to stderr.
func (o *rootOptions) open(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.backend != "" {
		cfg.Backend = config.Backend(o.backend)
	}
	if o.slot != "" {
		cfg.Slot = o.slot
	}

	logOut := cmd.ErrOrStderr()
	if !cmd.HasParent() {
		logOut = nil
	} else if cfg.LogLevel < log.WarnLevel {
		cfg.LogLevel = log.WarnLevel
	}

	a, err := app.Open(cmd.Context(), cfg, logOut)
	if err != nil {
		return err
	}
	if a.LoadErr != nil && cmd.HasParent() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", a.LoadErr)
	}
	o.app = a
	return nil
}

// close is safe to call more than once.
func (o *rootOptions) close() error {
	if o.app == nil {
		return nil
	}
	err := o.app.Close()
	o.app = nil
	return err
}

// execute runs root and closes the App afterwards. cobra skips
// PersistentPostRunE when RunE fails, so the close here covers that path.
func execute(ctx context.Context, root *cobra.Command, opts *rootOptions) error {
	err := root.ExecuteContext(ctx)
	if closeErr := opts.close(); err == nil {
		err = closeErr
	}
	return err
}

// Execute runs the command tree and reports errors on stderr.
func Execute(ctx context.Context) int {
	root, opts := newRootCmd()
	if err := execute(ctx, root, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
