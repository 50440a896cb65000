package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/robalobadob/idioms/apps/go-server/internal/game"
	"github.com/robalobadob/idioms/apps/go-server/internal/tui"
)

func newPlayCmd(envFile *string) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var logOut io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				logOut = f
			}
			a, err := loadApp(*envFile, logOut)
			if err != nil {
				return err
			}
			sess := game.New(a.generator, a.evaluator, game.WithRevealThreshold(a.cfg.RevealThreshold))
			return tui.Run(cmd.Context(), sess)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of discarding them")
	return cmd
}
