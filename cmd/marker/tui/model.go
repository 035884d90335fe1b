// Package tui provides the interactive terminal interface for the marker.
// The program is split across files in the usual bubbletea fashion:
//   - model.go: types, construction, Init (this file)
//   - update.go: the Update loop and key handling
//   - view.go: rendering
//
// The TUI is deliberately thin: every invariant lives in the session, store,
// and reconcile packages; this layer only collects input and renders state.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"marker/cmd/marker/ui"
	"marker/internal/session"
	"marker/internal/types"
)

// Tab identifies the three top-level views, mirroring the original
// applicability / evaluation / results flow.
type Tab int

const (
	TabApplicability Tab = iota
	TabEvaluation
	TabResults
)

func (t Tab) String() string {
	switch t {
	case TabApplicability:
		return "Applicability"
	case TabEvaluation:
		return "Evaluation"
	default:
		return "Results"
	}
}

// inputFocus says which text area, if any, is capturing keystrokes.
type inputFocus int

const (
	focusNone inputFocus = iota
	focusQuery
	focusCase
	focusInstructions
	focusTranscript
	focusImport
)

// tickMsg drives the cosmetic elapsed timer.
type tickMsg time.Time

// timeNow is swappable in tests.
var timeNow = time.Now

// Model is the bubbletea model for the whole program.
type Model struct {
	sess   *session.Session
	log    *zap.Logger
	styles ui.Styles

	tab           Tab
	width, height int

	// Applicability step. parsed is the pre-commit instruction list the
	// operator is marking; markIdx walks it.
	queryInput textarea.Model
	caseInput  textarea.Model
	instrInput textarea.Model
	focus      inputFocus
	parsed     []types.Instruction
	markIdx    int

	// Cosmetic timer, started when instructions first parse.
	timerOn    bool
	timerStart time.Time

	// Evaluation step. activeModel indexes types.ModelOrder().
	activeModel     int
	transcriptVP    viewport.Model
	transcriptInput textarea.Model
	renderer        *glamour.TermRenderer

	// Results step import box.
	importInput textarea.Model
	importModel int

	status string
	errMsg string
}

// New builds the TUI around an existing session, which may already be
// populated (demo mode).
func New(sess *session.Session, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}

	mkArea := func(placeholder string, height int) textarea.Model {
		ta := textarea.New()
		ta.Placeholder = placeholder
		ta.SetHeight(height)
		ta.CharLimit = 0
		ta.Blur()
		return ta
	}

	m := Model{
		sess:            sess,
		log:             log,
		styles:          ui.NewStyles(),
		queryInput:      mkArea("Paste the query here...", 3),
		caseInput:       mkArea("Paste the case description here...", 3),
		instrInput:      mkArea("Paste the instructions JSON here...", 6),
		transcriptInput: mkArea("Paste the model response here...", 10),
		importInput:     mkArea("Paste the evaluated JSON here...", 8),
		transcriptVP:    viewport.New(0, 0),
	}

	m.queryInput.SetValue(sess.Query)
	m.caseInput.SetValue(sess.CaseDescription)
	if sess.Store().Committed() {
		// A pre-populated session (demo) skips straight to marking done.
		m.parsed = sess.Store().Instructions()
		m.timerOn = true
		m.timerStart = time.Now()
	}

	if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80)); err == nil {
		m.renderer = r
	}
	m.transcriptVP.SetContent(m.renderMarkdown(sess.Response(m.activeModelID())))

	return m
}

// Init starts the timer tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// activeModelID maps the selected index to its model identity.
func (m Model) activeModelID() types.ModelID {
	order := types.ModelOrder()
	return order[m.activeModel%len(order)]
}

// importModelID maps the import target index to its model identity.
func (m Model) importModelID() types.ModelID {
	order := types.ModelOrder()
	return order[m.importModel%len(order)]
}

// renderMarkdown renders a transcript through glamour, falling back to the
// raw text when the renderer is unavailable or fails.
func (m Model) renderMarkdown(s string) string {
	if m.renderer == nil {
		return s
	}
	out, err := m.renderer.Render(s)
	if err != nil {
		return s
	}
	return out
}
