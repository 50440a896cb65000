package idiom

import (
	"context"
	"errors"
	"testing"

	"github.com/robalobadob/idioms/apps/go-server/internal/prompts"
	"github.com/robalobadob/idioms/apps/go-server/internal/provider"
)

type fakeProvider struct {
	reply  string
	err    error
	calls  int
	prompt prompts.Prompt
}

func (f *fakeProvider) CompleteIdiomGeneration(_ context.Context, p prompts.Prompt) (string, error) {
	f.calls++
	f.prompt = p
	return f.reply, f.err
}

func (f *fakeProvider) CompleteGuessScoring(context.Context, prompts.Prompt) (string, error) {
	panic("generator must not score")
}

func TestGenerateParsesIdiom(t *testing.T) {
	fp := &fakeProvider{reply: `{"idiom":"to milk the hedgehog","meaning":"to try something pointless"}`}
	g := NewGenerator(fp, prompts.MustDefault("English"))

	got, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got.Phrase != "to milk the hedgehog" || got.Meaning != "to try something pointless" {
		t.Fatalf("unexpected idiom %+v", got)
	}
	if fp.calls != 1 {
		t.Fatalf("expected one provider call, got %d", fp.calls)
	}
	if fp.prompt.System == "" {
		t.Fatal("expected a rendered generation prompt")
	}
}

func TestGenerateMissingFieldsIsGenerationError(t *testing.T) {
	g := NewGenerator(&fakeProvider{reply: `{}`}, prompts.MustDefault(""))
	if _, err := g.Generate(context.Background()); !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestGenerateProviderFailurePassesThrough(t *testing.T) {
	fp := &fakeProvider{err: errors.Join(provider.ErrUnavailable, errors.New("dial tcp: refused"))}
	g := NewGenerator(fp, prompts.MustDefault(""))
	_, err := g.Generate(context.Background())
	if !errors.Is(err, provider.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if errors.Is(err, ErrGeneration) {
		t.Fatalf("transport failure must not be reported as a generation error: %v", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		phrase  string
		wantErr bool
	}{
		{name: "plain", raw: `{"idiom":"a","meaning":"b"}`, phrase: "a"},
		{name: "fenced", raw: "```json\n{\"idiom\":\"a\",\"meaning\":\"b\"}\n```", phrase: "a"},
		{name: "chatter", raw: `Sure! {"idiom":" a ","meaning":"b"} Enjoy.`, phrase: "a"},
		{name: "empty", raw: "", wantErr: true},
		{name: "empty object", raw: "{}", wantErr: true},
		{name: "blank meaning", raw: `{"idiom":"a","meaning":"  "}`, wantErr: true},
		{name: "not json", raw: "no idea", wantErr: true},
		{name: "wrong types", raw: `{"idiom":1,"meaning":2}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrGeneration) {
					t.Fatalf("expected ErrGeneration, got %v (%+v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Phrase != tt.phrase {
				t.Fatalf("expected phrase %q, got %q", tt.phrase, got.Phrase)
			}
		})
	}
}
