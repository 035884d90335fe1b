package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"marker/internal/export"
	"marker/internal/nav"
	"marker/internal/store"
	"marker/internal/types"
)

// Update is the bubbletea event loop. All session mutation happens here,
// synchronously, one user action at a time.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w := msg.Width - 6
		if w < 20 {
			w = 20
		}
		m.queryInput.SetWidth(w)
		m.caseInput.SetWidth(w)
		m.instrInput.SetWidth(w)
		m.importInput.SetWidth(w)
		m.transcriptInput.SetWidth(w / 2)
		m.transcriptVP.Width = w / 2
		m.transcriptVP.Height = msg.Height - 12
		if m.transcriptVP.Height < 5 {
			m.transcriptVP.Height = 5
		}
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case tea.KeyMsg:
		if m.focus != focusNone {
			return m.updateFocused(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

// updateFocused routes keystrokes into whichever text area owns the focus.
func (m Model) updateFocused(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		switch m.focus {
		case focusQuery:
			m.sess.Query = m.queryInput.Value()
		case focusCase:
			m.sess.CaseDescription = m.caseInput.Value()
		case focusTranscript:
			m.sess.SetResponse(m.activeModelID(), m.transcriptInput.Value())
			m.transcriptVP.SetContent(m.renderMarkdown(m.transcriptInput.Value()))
		}
		m.blurAll()
		m.focus = focusNone
		return m, nil

	case tea.KeyCtrlP:
		if m.focus == focusInstructions {
			m = m.parseInstructions()
			return m, nil
		}

	case tea.KeyCtrlD:
		if m.focus == focusImport {
			m = m.runImport()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusQuery:
		m.queryInput, cmd = m.queryInput.Update(msg)
	case focusCase:
		m.caseInput, cmd = m.caseInput.Update(msg)
	case focusInstructions:
		m.instrInput, cmd = m.instrInput.Update(msg)
	case focusTranscript:
		m.transcriptInput, cmd = m.transcriptInput.Update(msg)
	case focusImport:
		m.importInput, cmd = m.importInput.Update(msg)
	}
	return m, cmd
}

// updateKeys handles navigation-mode keystrokes.
func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "tab":
		m.tab = (m.tab + 1) % 3
		return m, nil

	case "shift+tab":
		m.tab = (m.tab + 2) % 3
		return m, nil
	}

	switch m.tab {
	case TabApplicability:
		return m.updateApplicability(msg)
	case TabEvaluation:
		return m.updateEvaluation(msg)
	default:
		return m.updateResults(msg)
	}
}

func (m *Model) blurAll() {
	m.queryInput.Blur()
	m.caseInput.Blur()
	m.instrInput.Blur()
	m.transcriptInput.Blur()
	m.importInput.Blur()
}

func (m *Model) setFocus(f inputFocus) tea.Cmd {
	m.blurAll()
	m.focus = f
	switch f {
	case focusQuery:
		return m.queryInput.Focus()
	case focusCase:
		return m.caseInput.Focus()
	case focusInstructions:
		return m.instrInput.Focus()
	case focusTranscript:
		m.transcriptInput.SetValue(m.sess.Response(m.activeModelID()))
		return m.transcriptInput.Focus()
	case focusImport:
		m.importInput.SetValue("")
		return m.importInput.Focus()
	}
	return nil
}

// =============================================================================
// APPLICABILITY STEP
// =============================================================================

func (m Model) updateApplicability(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "Q":
		return m, m.setFocus(focusQuery)
	case "C":
		return m, m.setFocus(focusCase)
	case "I":
		return m, m.setFocus(focusInstructions)

	case "left", "h":
		if m.markIdx > 0 {
			m.markIdx--
		}
		return m, nil

	case "right", "l":
		if m.markIdx < len(m.parsed)-1 {
			m.markIdx++
		}
		return m, nil

	case "a":
		return m.mark(true), nil
	case "x":
		return m.mark(false), nil

	case "t":
		if in := m.currentParsed(); in != nil {
			if in.Type == types.TypeBusinessLogic {
				in.Type = types.TypeExpertDeveloper
			} else {
				in.Type = types.TypeBusinessLogic
			}
		}
		return m, nil

	case "u":
		if in := m.currentParsed(); in != nil {
			in.SetLabel("User Confirmation", !in.HasLabel("User Confirmation"))
		}
		return m, nil

	case "enter":
		return m.commitApplicability(), nil
	}
	return m, nil
}

func (m Model) currentParsed() *types.Instruction {
	if m.markIdx < 0 || m.markIdx >= len(m.parsed) {
		return nil
	}
	return &m.parsed[m.markIdx]
}

func (m Model) mark(applicable bool) Model {
	if in := m.currentParsed(); in != nil {
		in.Applicable = types.Bool(applicable)
	}
	return m
}

func (m Model) parseInstructions() Model {
	insts, err := store.Parse([]byte(m.instrInput.Value()))
	if err != nil {
		m.errMsg = err.Error()
		return m
	}
	m.parsed = insts
	m.markIdx = 0
	m.errMsg = ""
	m.status = fmt.Sprintf("Parsed %d instruction(s); mark applicability", len(insts))
	m.blurAll()
	m.focus = focusNone
	if !m.timerOn {
		m.timerOn = true
		m.timerStart = timeNow()
	}
	return m
}

func (m Model) commitApplicability() Model {
	if len(m.parsed) == 0 {
		m.errMsg = "Please parse instructions first"
		return m
	}
	m.sess.Query = m.queryInput.Value()
	m.sess.CaseDescription = m.caseInput.Value()

	if err := m.sess.CommitApplicability(m.parsed); err != nil {
		m.errMsg = err.Error()
		return m
	}
	m.parsed = m.sess.Store().Instructions()
	m.status = "Applicability committed; evaluation states seeded"
	m.tab = TabEvaluation
	return m
}

// =============================================================================
// EVALUATION STEP
// =============================================================================

func (m Model) updateEvaluation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1", "2", "3":
		m.activeModel = int(msg.String()[0] - '1')
		m.transcriptVP.SetContent(m.renderMarkdown(m.sess.Response(m.activeModelID())))
		m.transcriptVP.GotoTop()
		return m, nil

	case "e":
		return m, m.setFocus(focusTranscript)

	case "up", "k", "down", "j", "pgup", "pgdown":
		// Transcript scrolling is delegated to the viewport's own key map.
		var cmd tea.Cmd
		m.transcriptVP, cmd = m.transcriptVP.Update(msg)
		return m, cmd

	case "left", "h":
		if err := m.sess.Retreat(m.activeModelID()); err != nil {
			m.errMsg = readyMessage(err)
		}
		return m, nil

	case "right", "l":
		if err := m.sess.Advance(m.activeModelID()); err != nil {
			m.errMsg = readyMessage(err)
		}
		return m, nil

	case "y":
		return m.score(types.VerdictYes), nil
	case "n":
		return m.score(types.VerdictNo), nil
	case "x":
		return m.score(types.VerdictNotApplicable), nil

	case "s":
		return m.resolveConflict(true), nil
	case "i":
		return m.resolveConflict(false), nil
	}
	return m, nil
}

// position resolves the active model's display list and clamped cursor.
func (m Model) position() ([]types.Instruction, nav.Cursor, error) {
	model := m.activeModelID()
	list, err := m.sess.DisplayList(model)
	if err != nil {
		return nil, nav.Cursor{}, err
	}
	c, err := m.sess.Cursor(model)
	if err != nil {
		return nil, nav.Cursor{}, err
	}
	return list, nav.Clamp(c, list), nil
}

func (m Model) score(v types.Verdict) Model {
	list, c, err := m.position()
	if err != nil {
		m.errMsg = readyMessage(err)
		return m
	}
	in := list[c.Instruction]
	if err := m.sess.SetVerdict(m.activeModelID(), in.Key, c.Rubric, v); err != nil {
		m.errMsg = err.Error()
		return m
	}
	m.status = fmt.Sprintf("%s: %q on rubric %d", m.activeModelID(), v, c.Rubric+1)
	return m
}

// resolveConflict finalizes the current instruction's type, keeping either
// the store value or the imported one.
func (m Model) resolveConflict(keepStore bool) Model {
	list, c, err := m.position()
	if err != nil {
		m.errMsg = readyMessage(err)
		return m
	}
	in := list[c.Instruction]

	for _, conflict := range m.sess.Conflicts(m.activeModelID()) {
		if conflict.Instruction != in.Text {
			continue
		}
		final := conflict.StoreType
		if !keepStore {
			final = conflict.ImportedType
		}
		if err := m.sess.ResolveTypeConflict(m.activeModelID(), in.Text, final); err != nil {
			m.errMsg = err.Error()
			return m
		}
		m.status = fmt.Sprintf("Type conflict resolved: %q", final)
		return m
	}
	return m
}

// =============================================================================
// RESULTS STEP
// =============================================================================

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		data, err := export.Instructions(m.sess.Store().Instructions())
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		export.Copy(m.log, "Final Instructions", data)
		m.status = "Final Instructions copied to clipboard"
		return m, nil

	case "1", "2", "3":
		model := types.ModelOrder()[int(msg.String()[0]-'1')]
		data, err := export.Instructions(m.sess.EvaluatedInstructions(model))
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		export.Copy(m.log, string(model)+" Evaluation", data)
		m.status = fmt.Sprintf("%s evaluated instructions copied to clipboard", model)
		return m, nil

	case "m":
		m.importModel = (m.importModel + 1) % len(types.ModelOrder())
		return m, nil

	case "i":
		return m, m.setFocus(focusImport)
	}
	return m, nil
}

func (m Model) runImport() Model {
	model := m.importModelID()
	res, err := m.sess.ImportEvaluation(model, []byte(m.importInput.Value()))
	if err != nil {
		m.errMsg = err.Error()
		return m
	}
	m.status = res.Summary(model)
	m.blurAll()
	m.focus = focusNone
	return m
}

// readyMessage maps the not-ready signal to the operator-facing hint; other
// errors pass through unchanged.
func readyMessage(err error) string {
	var empty *types.EmptyListError
	if errors.As(err, &empty) {
		return "No applicable instructions found. Please complete the applicability step first."
	}
	return err.Error()
}
