// Package tui is the terminal front end for one idiom guessing session.
//
// The model never holds game state of its own: every frame is rendered from a
// game.Session snapshot, and provider calls run as tea.Cmds so the UI keeps
// animating while a request is outstanding.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/idioms/apps/go-server/internal/game"
)

// idiomLoadedMsg reports the end of a StartNew call.
type idiomLoadedMsg struct {
	err error
}

// guessScoredMsg reports the end of a SubmitGuess call.
type guessScoredMsg struct {
	out game.Outcome
	err error
}

// Model drives a game.Session from the keyboard.
type Model struct {
	ctx     context.Context
	session *game.Session

	keys    keyMap
	help    help.Model
	input   textinput.Model
	spinner spinner.Model

	pending  bool   // a provider call is running
	errLine  string // last failure, cleared by the next accepted action
	width    int
	quitting bool
}

// New builds a Model around sess. ctx cancels outstanding provider calls.
func New(ctx context.Context, sess *game.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "What do you think it means?"
	ti.Focus()
	ti.CharLimit = 300
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	return Model{
		ctx:     ctx,
		session: sess,
		keys:    defaultKeyMap(),
		help:    help.New(),
		input:   ti,
		spinner: sp,
		pending: true, // Init starts the first load
		width:   80,
	}
}

// Run starts the program on the terminal and blocks until the player quits.
func Run(ctx context.Context, sess *game.Session) error {
	_, err := tea.NewProgram(New(ctx, sess), tea.WithContext(ctx)).Run()
	return err
}

// Init loads the first idiom.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.loadIdiomCmd())
}

func (m Model) loadIdiomCmd() tea.Cmd {
	ctx, sess := m.ctx, m.session
	return func() tea.Msg {
		_, err := sess.StartNew(ctx)
		return idiomLoadedMsg{err: err}
	}
}

func (m Model) submitGuessCmd(text string) tea.Cmd {
	ctx, sess := m.ctx, m.session
	return func() tea.Msg {
		out, err := sess.SubmitGuess(ctx, text)
		return guessScoredMsg{out: out, err: err}
	}
}

// Update handles key presses and provider results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		if msg.Width > 8 {
			m.input.Width = msg.Width - 8
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.New):
			if m.pending {
				return m, nil
			}
			m.pending = true
			m.errLine = ""
			return m, tea.Batch(m.spinner.Tick, m.loadIdiomCmd())

		case key.Matches(msg, m.keys.Forfeit):
			if m.pending {
				return m, nil
			}
			if _, err := m.session.Forfeit(); err == nil {
				m.errLine = ""
				m.input.Reset()
			}
			return m, nil

		case key.Matches(msg, m.keys.Submit):
			text := m.input.Value()
			if m.pending || strings.TrimSpace(text) == "" {
				return m, nil
			}
			if m.session.Snapshot().State.Revealed {
				return m, nil
			}
			m.pending = true
			m.input.Reset()
			return m, tea.Batch(m.spinner.Tick, m.submitGuessCmd(text))
		}

	case idiomLoadedMsg:
		m.pending = false
		if msg.err != nil {
			m.errLine = "Could not load an idiom: " + msg.err.Error()
		} else {
			m.errLine = ""
		}
		return m, nil

	case guessScoredMsg:
		m.pending = false
		switch {
		case msg.err == nil:
			m.errLine = ""
		case errors.Is(msg.err, game.ErrIgnored):
			// State is unchanged; nothing to report.
		default:
			m.errLine = "Could not score that guess: " + msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the current session snapshot.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.session.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Guess the idiom"))
	b.WriteString("\n\n")

	switch {
	case snap.Idiom != nil:
		b.WriteString(phraseStyle.Render(snap.Idiom.Phrase))
		b.WriteString("\n")
		if snap.State.Revealed {
			b.WriteString(meaningStyle.Render("Meaning: " + snap.Idiom.Meaning))
			b.WriteString("\n")
		}
	case !m.pending:
		b.WriteString(mutedStyle.Render("No idiom yet. Press ctrl+n to fetch one."))
		b.WriteString("\n")
	}

	if len(snap.State.History) > 0 {
		b.WriteString("\n")
		for i, a := range snap.State.History {
			score := scoreStyle(a.Score).Render(fmt.Sprintf("%3d", a.Score))
			text := a.Text
			if a.Forfeit {
				text = mutedStyle.Render(text)
			}
			fmt.Fprintf(&b, "%2d. %s  %s\n", i+1, score, text)
		}
		b.WriteString(mutedStyle.Render(fmt.Sprintf("attempts %d · best %d", snap.State.AttemptCount, snap.State.BestScore)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.pending {
		b.WriteString(m.spinner.View() + " Thinking…\n")
	}
	if snap.Notice != "" && snap.State.Revealed {
		b.WriteString(noticeStyle.Render(snap.Notice) + "\n")
	}
	if m.errLine != "" {
		b.WriteString(errorStyle.Render(m.errLine) + "\n")
	}

	if !snap.State.Revealed {
		b.WriteString(inputBoxStyle.Width(max(m.width-2, 20)).Render(m.input.View()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
