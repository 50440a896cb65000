package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/robalobadob/idioms/apps/go-server/internal/scoring"
)

func newScoreCmd(envFile *string) *cobra.Command {
	var meaning, guess string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a guess against a meaning",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(*envFile, os.Stderr)
			if err != nil {
				return err
			}
			score, err := a.evaluator.Evaluate(cmd.Context(), meaning, guess)
			if err != nil {
				return err
			}
			band := scoring.BandFor(score)
			c := color.New(bandColor(band))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", c.Sprint(score), band)
			return err
		},
	}
	cmd.Flags().StringVar(&meaning, "meaning", "", "the true meaning")
	cmd.Flags().StringVar(&guess, "guess", "", "the guess to score")
	_ = cmd.MarkFlagRequired("meaning")
	_ = cmd.MarkFlagRequired("guess")
	return cmd
}

// bandColor picks the terminal colour for a score band.
func bandColor(b scoring.Band) color.Attribute {
	switch b {
	case scoring.BandExcellent, scoring.BandGood:
		return color.FgGreen
	case scoring.BandFair:
		return color.FgYellow
	case scoring.BandWeak:
		return color.FgHiRed
	default:
		return color.FgRed
	}
}
