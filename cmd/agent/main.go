package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/petasbytes/job-agent/internal/config"
)

var (
	configFlag  string
	messageFlag string
)

var rootCmd = &cobra.Command{
	Use:           "agent",
	Short:         "Job application assistant (REPL or single message)",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAgent,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the stored job seeker profile",
}

var profileImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import a profile from YAML; personal fields are encrypted at rest",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileImport,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored profile as the model sees it",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to a YAML config file")
	rootCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Single message to send")
	profileCmd.AddCommand(profileImportCmd, profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves and validates the configuration and builds the
// diagnostic logger on w.
func loadConfig(w io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("log_level: %w", err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(level).With().Timestamp().Logger()
	return cfg, log, nil
}

func runAgent(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return errors.New("API key not set; export ANTHROPIC_API_KEY")
	}
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if messageFlag != "" {
		return a.single(ctx, messageFlag, cmd.OutOrStdout())
	}
	return runREPL(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout())
}
