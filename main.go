// main.go
//
// Entry point for the idiom guessing game.
// Subcommands:
//   - serve : HTTP API for the browser client (default when no subcommand is given).
//   - play  : interactive terminal session.
//   - idiom : print one generated idiom as JSON.
//   - score : score a single guess against a meaning.
//
// Every subcommand reads the same environment (see internal/config) and builds
// the same provider-backed generator and evaluator through loadApp.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/idioms/apps/go-server/internal/config"
	"github.com/robalobadob/idioms/apps/go-server/internal/idiom"
	"github.com/robalobadob/idioms/apps/go-server/internal/prompts"
	"github.com/robalobadob/idioms/apps/go-server/internal/provider"
	"github.com/robalobadob/idioms/apps/go-server/internal/scoring"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "idioms",
		Short:         "Guess the meaning of invented idioms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	serve := newServeCmd(&envFile)
	root.RunE = serve.RunE

	root.AddCommand(serve)
	root.AddCommand(newPlayCmd(&envFile))
	root.AddCommand(newIdiomCmd(&envFile))
	root.AddCommand(newScoreCmd(&envFile))
	return root
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg       config.Config
	prompts   *prompts.Set
	generator *idiom.Generator
	evaluator *scoring.Evaluator
}

// loadApp reads configuration, sets up logging and builds the provider chain.
// Logs go to logOut; the terminal client passes a file or io.Discard so the
// screen is left to the UI.
func loadApp(envFile string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg, logOut)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ps, err := prompts.Load(cfg.PromptsDir, cfg.Language)
	if err != nil {
		return nil, err
	}
	p, err := provider.New(cfg, nil)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("provider", cfg.Provider).
		Str("language", ps.Language()).
		Dur("timeout", cfg.ProviderTimeout).
		Msg("provider ready")

	return &app{
		cfg:       cfg,
		prompts:   ps,
		generator: idiom.NewGenerator(p, ps),
		evaluator: scoring.NewEvaluator(p, ps, scoring.WithClamp(cfg.ClampScores)),
	}, nil
}

// setupLogging configures the global zerolog logger from LOG_LEVEL / LOG_FORMAT.
func setupLogging(cfg config.Config, out io.Writer) {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if out == nil {
		out = os.Stderr
	}
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}
