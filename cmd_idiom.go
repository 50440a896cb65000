package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newIdiomCmd(envFile *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "idiom",
		Short: "Print one generated idiom",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown --format %q (want json or yaml)", format)
			}
			a, err := loadApp(*envFile, os.Stderr)
			if err != nil {
				return err
			}
			id, err := a.generator.Generate(cmd.Context())
			if err != nil {
				return err
			}
			if format == "yaml" {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				return enc.Encode(id)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(id)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}
