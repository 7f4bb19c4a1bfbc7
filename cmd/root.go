package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/devscripts/devscripts/core/config"
	"github.com/devscripts/devscripts/core/logger"
	"github.com/devscripts/devscripts/core/paths"
	"github.com/devscripts/devscripts/core/scripts"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "devel"

// ExitUsage is returned for invalid flags.
const ExitUsage = 2

// errorColor returns the color for error messages written to w. Color is
// only used when w is a terminal and NO_COLOR is unset.
func errorColor(w io.Writer) *color.Color {
	c := color.New(color.FgRed, color.Bold)
	if logger.IsTerminal(w) && os.Getenv("NO_COLOR") == "" {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// App holds everything the command reads from or writes to the host.
type App struct {
	Fs  afero.Fs
	Env paths.Environment
	// Sources lists the configuration files read before any --config file.
	Sources func(paths.Environment) []config.Source

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Environ is passed to scripts, nil inherits the environment.
	Environ []string

	IgnoreInterrupts bool
}

// NewApp creates an App bound to the running process.
func NewApp() *App {
	return &App{
		Fs:               afero.NewOsFs(),
		Env:              paths.System(),
		Sources:          config.DefaultSources,
		Stdin:            os.Stdin,
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		IgnoreInterrupts: true,
	}
}

type options struct {
	list        bool
	showConfig  bool
	verbose     bool
	format      string
	completion  string
	configFiles []string
}

// usageError marks errors caused by the command line itself.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func (a *App) rootCommand(exitCode *int) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "dev [flags] [SCRIPT [ARGS...]]",
		Short: "Run shell scripts conveniently.",
		Long: `Run shell scripts conveniently.

Scripts are looked up by name in the repository, user and system script
directories, in that order. Everything after the script name is passed to
the script unchanged.`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveDefault
			}
			return a.completeScripts(&opts, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.completion != "" {
				return writeCompletion(cmd.Root(), cmd.OutOrStdout(), opts.completion)
			}

			locator := a.locator(&opts)
			cfg, err := a.loadConfig(&opts)
			if err != nil {
				return err
			}

			switch {
			case opts.showConfig:
				return showConfig(cmd.OutOrStdout(), cfg, opts.format)
			case opts.list:
				return listScripts(cmd.OutOrStdout(), locator, cfg)
			case len(args) == 0:
				return cmd.Help()
			}

			runner := &scripts.Runner{
				Locator:          locator,
				Stdin:            a.Stdin,
				Stdout:           a.Stdout,
				Stderr:           a.Stderr,
				Env:              a.Environ,
				IgnoreInterrupts: a.IgnoreInterrupts,
			}

			outcome, err := runner.Run(args[0], cfg, args[1:])
			if err != nil {
				return err
			}

			*exitCode = outcome.ExitCode()
			return nil
		},
	}

	// Flags after the script name belong to the script.
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "list available scripts")
	cmd.Flags().StringArrayVarP(&opts.configFiles, "config", "c", nil, "additional config file, may be repeated")
	cmd.Flags().BoolVar(&opts.showConfig, "show-config", false, "print the effective configuration")
	cmd.Flags().StringVar(&opts.format, "format", string(config.FormatTOML), fmt.Sprintf("format for --show-config, one of %q", config.Formats))
	cmd.Flags().StringVar(&opts.completion, "completion", "", fmt.Sprintf("print a completion script for a shell, one of %q", completionShells))
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostics to stderr")

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	return cmd
}

func (a *App) locator(opts *options) *scripts.Locator {
	return &scripts.Locator{
		Fs:  a.Fs,
		Env: a.Env,
		Log: logger.New(a.Stderr, opts.verbose),
	}
}

func (a *App) loadConfig(opts *options) (*config.Configuration, error) {
	reader := config.NewReader(a.Fs)
	if a.Sources != nil {
		reader.AddSources(a.Sources(a.Env)...)
	}
	for _, path := range opts.configFiles {
		reader.Add(a.Env.ExtendHome(path), true)
	}
	return reader.Read()
}

func (a *App) completeScripts(opts *options, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	names, err := a.locator(opts).AllScripts(cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func listScripts(w io.Writer, locator *scripts.Locator, cfg *config.Configuration) error {
	names, err := locator.AllScripts(cfg)
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}

func showConfig(w io.Writer, cfg *config.Configuration, format string) error {
	out, err := cfg.Encode(config.Format(format))
	if err != nil {
		return &usageError{err: err}
	}

	_, err = w.Write(out)
	return err
}

// Run executes the command line args and returns the process exit code.
func (a *App) Run(args []string) int {
	exitCode := 0
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}

	cmd := a.rootCommand(&exitCode)
	cmd.SetArgs(args)
	cmd.SetIn(a.Stdin)
	cmd.SetOut(a.Stdout)
	cmd.SetErr(a.Stderr)

	if err := cmd.Execute(); err != nil {
		errorColor(a.Stderr).Fprintln(a.Stderr, err)
		return exitCodeFor(err)
	}

	return exitCode
}

func exitCodeFor(err error) int {
	var runErr *scripts.RunError
	if errors.As(err, &runErr) {
		return runErr.ExitCode()
	}

	var usageErr *usageError
	if errors.As(err, &usageErr) {
		return ExitUsage
	}

	return scripts.ExitFailure
}

// Execute runs the command line of this process and exits with the script's
// status. This is called by main.main().
func Execute() {
	os.Exit(NewApp().Run(os.Args[1:]))
}
