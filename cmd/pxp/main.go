package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pixelprobe/pxp/internal/config"
	"github.com/pixelprobe/pxp/internal/logging"
	"github.com/pixelprobe/pxp/internal/runner"
	"github.com/pixelprobe/pxp/internal/scenario"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(ctx)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close logger: %v\n", closeErr)
		}
	}()

	cmd := newRootCommand(cfg, logger.Logger)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(cfg *config.Config, logger *log.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "pxp",
		Short:         "Scripted test driver for the interactive image processor",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")
	root.AddCommand(
		newRunCommand(cfg, logger),
		newScenariosCommand(),
	)
	return root
}

func newRunCommand(cfg *config.Config, logger *log.Logger) *cobra.Command {
	opts := *cfg
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full scenario set against the target program",
		RunE: func(cmd *cobra.Command, _ []string) error {
			coordinator := runner.New(opts, logger, cmd.OutOrStdout())
			_, err := coordinator.Run(cmd.Context(), scenario.Catalogue())
			// Per-scenario failures are in the report; only preflight-level
			// problems surface here and flip the exit status.
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Target, "target", cfg.Target, "path to the image processor executable")
	flags.StringVar(&opts.Image, "image", cfg.Image, "path to the input image artifact")
	flags.StringVar(&opts.ResultsDir, "results", cfg.ResultsDir, "directory for produced artifacts")
	flags.DurationVar(&opts.SessionTimeout, "timeout", cfg.SessionTimeout, "wall-clock ceiling per scenario")
	flags.DurationVar(&opts.Cooldown, "cooldown", cfg.Cooldown, "pause between scenarios")
	return cmd
}

func newScenariosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the fixed scenario catalogue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, sc := range scenario.Catalogue() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", sc.Name)
				fmt.Fprintf(cmd.OutOrStdout(), "  script:   %s\n", strings.Join(sc.Inputs, " "))
				if artifact := sc.Artifact(); artifact != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  artifact: %s\n", artifact)
				}
			}
			return nil
		},
	}
}
