package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsgonest/tsmeta/internal/metadata"
	"github.com/tsgonest/tsmeta/internal/watcher"
)

func newMetadataCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Print the controller metadata model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			md, err := a.analyze(cmd.Context(), cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			data, err := md.Encode(metadata.Format(format))
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return a.writeFile(output, data)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func newSpecCmd(a *app) *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Write the OpenAPI 3 document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			return a.generateSpec(cmd.Context(), cmd.ErrOrStderr(), cfg, output, force)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <outputDirectory>/openapi.<specFormat>)")
	cmd.Flags().BoolVar(&force, "force", false, "regenerate even when nothing changed since the last run")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rewrite the OpenAPI document whenever a source file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.ErrOrStderr()
			regenerate := func(ctx context.Context) {
				cfg, err := a.loadConfig()
				if err == nil {
					err = a.generateSpec(ctx, out, cfg, "", false)
				}
				if err != nil {
					fmt.Fprintf(out, "%s %v\n", color.New(color.FgHiRed, color.Bold).Sprint("error:"), err)
					fmt.Fprintln(out, "waiting for changes...")
				}
			}

			// Config errors are fatal only before the first run.
			if _, err := a.loadConfig(); err != nil {
				return err
			}
			regenerate(cmd.Context())

			w := watcher.New([]string{a.cwd}, watcher.SourceExtensions, watcher.DefaultDebounce,
				func(ctx context.Context, events []watcher.Event) {
					a.logger.Info("sources changed", zap.Int("events", len(events)))
					fmt.Fprintf(out, "\n%s\n", faintColor.Sprintf("detected %d change(s), regenerating...", len(events)))
					regenerate(ctx)
				}, a.logger)
			fmt.Fprintln(out, "watching for changes...")
			return w.Run(cmd.Context())
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(),
				"tsmeta\n  Version   %s\n  Commit    %s\n  BuildDate %s\n  Go        %s\n",
				Version, GitCommit, BuildDate, runtime.Version())
			return err
		},
	}
}
