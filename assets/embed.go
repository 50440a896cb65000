// Package assets embeds the default prompt templates shipped with the server.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed generate.tmpl score.tmpl score_user.tmpl
var FS embed.FS

// Prompt template file names. A PROMPTS_DIR override must use the same names.
const (
	GenerateTemplate  = "generate.tmpl"
	ScoreTemplate     = "score.tmpl"
	ScoreUserTemplate = "score_user.tmpl"
)

// Names lists every template the prompts package expects to find.
func Names() []string {
	return []string{GenerateTemplate, ScoreTemplate, ScoreUserTemplate}
}

// Read returns the embedded contents of a template.
func Read(name string) (string, error) {
	b, err := fs.ReadFile(FS, name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
