package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Version information, set at build time.
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp(afero.NewOsFs(), "")).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgHiRed, color.Bold).Sprint("error:"), err)
		os.Exit(1)
	}
}

// app holds the state shared by every subcommand.
type app struct {
	fs  afero.Fs
	cwd string

	configPath string
	logLevel   string
	logFormat  string
	strict     bool
	quiet      bool
	noColor    bool

	logger *zap.Logger
}

func newApp(fs afero.Fs, cwd string) *app {
	return &app{fs: fs, cwd: cwd}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tsmeta",
		Short: "Extract API metadata and OpenAPI documents from decorated TypeScript controllers",
		Long: `tsmeta statically analyzes @Route-decorated TypeScript controllers and produces
a metadata model of their routes, parameters, responses and referenced types,
or an OpenAPI 3 document built from it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default: tsmeta.{yaml,json,toml} in the working directory)")
	flags.StringVarP(&a.cwd, "cwd", "C", a.cwd, "working directory")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "console", "log format: console or json")
	flags.BoolVar(&a.strict, "strict", false, "treat warnings as errors")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "only report errors")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newMetadataCmd(a),
		newSpecCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init() error {
	if a.noColor {
		color.NoColor = true
	}
	if a.cwd == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("could not get working directory: %w", err)
		}
		a.cwd = cwd
	}
	if a.logger == nil {
		logger, err := newLogger(a.logLevel, a.logFormat)
		if err != nil {
			return err
		}
		a.logger = logger
	}
	return nil
}
