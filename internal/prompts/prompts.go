// internal/prompts/prompts.go
//
// Prompt template management for the two provider calls.
//
// Responsibilities:
//   - Load prompt templates from PROMPTS_DIR or fall back to the embedded defaults in assets.
//   - Parse them once as text/template so a broken override fails at startup, not mid-game.
//   - Render the idiom generation and guess scoring prompts.
//
// Loading behavior (Load):
//   1. If dir is set, every template is read from dir/<name>; a missing file falls back
//      to the embedded default of the same name.
//   2. If dir is empty, only embedded defaults are used.
//
// Template data:
//   generate.tmpl    {{.Language}}
//   score.tmpl       {{.Language}}
//   score_user.tmpl  {{.Language}} {{.Meaning}} {{.Guess}}

package prompts

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/robalobadob/idioms/apps/go-server/assets"
)

// Set is a parsed collection of prompt templates bound to one language.
type Set struct {
	language  string
	generate  *template.Template
	score     *template.Template
	scoreUser *template.Template
}

// Prompt is a rendered system + user message pair.
type Prompt struct {
	System string
	User   string
}

type data struct {
	Language string
	Meaning  string
	Guess    string
}

// Load reads and parses all templates. language defaults to "Russian".
func Load(dir, language string) (*Set, error) {
	language = strings.TrimSpace(language)
	if language == "" {
		language = "Russian"
	}
	parsed := make(map[string]*template.Template, len(assets.Names()))
	for _, name := range assets.Names() {
		text, err := readTemplate(dir, name)
		if err != nil {
			return nil, err
		}
		t, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("prompts: parse %s: %w", name, err)
		}
		parsed[name] = t
	}
	return &Set{
		language:  language,
		generate:  parsed[assets.GenerateTemplate],
		score:     parsed[assets.ScoreTemplate],
		scoreUser: parsed[assets.ScoreUserTemplate],
	}, nil
}

// MustDefault returns the embedded templates; it panics only if the embedded assets are broken.
func MustDefault(language string) *Set {
	s, err := Load("", language)
	if err != nil {
		panic(err)
	}
	return s
}

// readTemplate prefers dir/name and falls back to the embedded copy.
func readTemplate(dir, name string) (string, error) {
	if dir != "" {
		b, err := os.ReadFile(filepath.Join(dir, name))
		switch {
		case err == nil:
			return string(b), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("prompts: read %s: %w", name, err)
		}
	}
	text, err := assets.Read(name)
	if err != nil {
		return "", fmt.Errorf("prompts: embedded %s: %w", name, err)
	}
	return text, nil
}

// Language reports the language the prompts are rendered for.
func (s *Set) Language() string { return s.language }

// Generation renders the idiom generation prompt. It has no user part.
func (s *Set) Generation() (Prompt, error) {
	sys, err := render(s.generate, data{Language: s.language})
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: sys}, nil
}

// Scoring renders the judge prompt for one guess.
func (s *Set) Scoring(meaning, guess string) (Prompt, error) {
	d := data{Language: s.language, Meaning: meaning, Guess: guess}
	sys, err := render(s.score, d)
	if err != nil {
		return Prompt{}, err
	}
	user, err := render(s.scoreUser, d)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: sys, User: user}, nil
}

func render(t *template.Template, d data) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("prompts: render %s: %w", t.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
