package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"marker/internal/reconcile"
	"marker/internal/types"
)

// View renders the whole screen: tab bar, active step, status line, help.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.tab {
	case TabApplicability:
		b.WriteString(m.renderApplicability())
	case TabEvaluation:
		b.WriteString(m.renderEvaluation())
	default:
		b.WriteString(m.renderResults())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("Instruction Marker")

	var tabs []string
	for _, t := range []Tab{TabApplicability, TabEvaluation, TabResults} {
		if t == m.tab {
			tabs = append(tabs, m.styles.TabActive.Render(t.String()))
		} else {
			tabs = append(tabs, m.styles.TabIdle.Render(t.String()))
		}
	}

	timer := ""
	if m.timerOn {
		elapsed := time.Since(m.timerStart).Round(time.Second)
		timer = m.styles.Success.Render(fmt.Sprintf("● %s", elapsed))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		title, "  ", lipgloss.JoinHorizontal(lipgloss.Center, tabs...), "  ", timer)
}

func (m Model) renderStatus() string {
	if m.errMsg != "" {
		return m.styles.Error.Render("Validation Error: " + m.errMsg)
	}
	if m.status != "" {
		return m.styles.Success.Render(m.status)
	}
	return ""
}

func (m Model) renderHelp() string {
	var help string
	if m.focus != focusNone {
		help = "esc done"
		if m.focus == focusInstructions {
			help += " • ctrl+p parse"
		}
		if m.focus == focusImport {
			help += " • ctrl+d import"
		}
	} else {
		switch m.tab {
		case TabApplicability:
			help = "Q/C/I edit fields • ←/→ instruction • a applicable • x not applicable • t type • u user-confirmation • enter commit • tab next view • q quit"
		case TabEvaluation:
			help = "1/2/3 model • ←/→ rubric • y/n/x verdict • s/i resolve type • e edit transcript • ↑/↓ scroll • q quit"
		default:
			help = "c copy final • 1/2/3 copy model JSON • m import target • i import • q quit"
		}
	}
	return m.styles.Help.Render(help)
}

// =============================================================================
// APPLICABILITY
// =============================================================================

func (m Model) renderApplicability() string {
	var b strings.Builder

	b.WriteString(m.styles.Label.Render("Query") + "\n")
	b.WriteString(m.queryInput.View() + "\n")
	b.WriteString(m.styles.Label.Render("Case Description") + "\n")
	b.WriteString(m.caseInput.View() + "\n")
	b.WriteString(m.styles.Label.Render("Instructions JSON") + "\n")
	b.WriteString(m.instrInput.View() + "\n")

	if len(m.parsed) == 0 {
		b.WriteString(m.styles.Muted.Render("Parse instructions to begin marking applicability.") + "\n")
		return b.String()
	}

	in := m.parsed[m.markIdx]
	var card strings.Builder
	fmt.Fprintf(&card, "%s (%d of %d)\n\n",
		m.styles.Label.Render("Mark Applicability"), m.markIdx+1, len(m.parsed))
	card.WriteString(wrap(in.Text, m.width-8) + "\n\n")

	fmt.Fprintf(&card, "%s (%d):\n", m.styles.Label.Render("Rubrics"), len(in.Rubrics))
	for i, r := range in.Rubrics {
		fmt.Fprintf(&card, "  %d. %s  %s\n", i+1, wrap(r.Text, m.width-12),
			m.styles.Muted.Render("["+r.Verifier+"]"))
	}
	card.WriteString("\n")

	card.WriteString(renderChoice("Applicable", in.Determined() && *in.Applicable))
	card.WriteString("  ")
	card.WriteString(renderChoice("Not Applicable", in.Determined() && !*in.Applicable))
	if !in.Determined() {
		card.WriteString("  " + m.styles.Warn.Render("(undecided)"))
	}
	card.WriteString("\n\n")

	fmt.Fprintf(&card, "%s %s\n", m.styles.Label.Render("Type:"), in.Type)
	fmt.Fprintf(&card, "%s %s\n", m.styles.Label.Render("Labels:"), strings.Join(in.Labels, ", "))

	b.WriteString(m.styles.Card.Render(card.String()))
	return b.String()
}

func renderChoice(label string, selected bool) string {
	if selected {
		return "(•) " + label
	}
	return "( ) " + label
}

// =============================================================================
// EVALUATION
// =============================================================================

func (m Model) renderEvaluation() string {
	model := m.activeModelID()

	var modelTabs []string
	for i, id := range types.ModelOrder() {
		label := fmt.Sprintf("%d:%s", i+1, id)
		if i == m.activeModel%len(types.ModelOrder()) {
			modelTabs = append(modelTabs, m.styles.Selected.Render(label))
		} else {
			modelTabs = append(modelTabs, m.styles.Muted.Render(label))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(modelTabs, "  "))

	list, c, err := m.position()
	if err != nil {
		return header + "\n\n" + m.styles.Muted.Render(readyMessage(err))
	}

	if m.focus == focusTranscript {
		return header + "\n" + m.styles.Label.Render(string(model)+" Response") + "\n" +
			m.transcriptInput.View()
	}

	in := list[c.Instruction]

	left := m.styles.Label.Render(string(model)+" Response") + "\n" + m.transcriptVP.View()

	var right strings.Builder
	fmt.Fprintf(&right, "%s (%d of %d)\n\n",
		m.styles.Label.Render("Instruction"), c.Instruction+1, len(list))
	right.WriteString(wrap(in.Text, m.width/2-6) + "\n")
	fmt.Fprintf(&right, "%s %s\n", m.styles.Muted.Render("Type:"), in.Type)
	fmt.Fprintf(&right, "%s %s\n\n", m.styles.Muted.Render("Labels:"), strings.Join(in.Labels, ", "))

	if conflict := m.conflictFor(in.Text); conflict != nil {
		right.WriteString(m.styles.Warn.Render("Type conflict") + "\n")
		fmt.Fprintf(&right, "  [s] keep %s\n  [i] keep %s\n\n",
			conflict.StoreType, conflict.ImportedType)
	}

	// An instruction can legitimately carry zero rubrics; there is nothing
	// to score, so navigation skips straight past it.
	if len(in.Rubrics) == 0 {
		right.WriteString(m.styles.Muted.Render("No rubrics to score for this instruction.") + "\n")
	} else {
		rubric := in.Rubrics[c.Rubric]
		fmt.Fprintf(&right, "%s %d of %d\n", m.styles.Label.Render("Rubric"), c.Rubric+1, len(in.Rubrics))
		right.WriteString(wrap(rubric.Text, m.width/2-6) + "\n")
		fmt.Fprintf(&right, "%s %s\n\n", m.styles.Muted.Render("Verifier:"), rubric.Verifier)

		for _, v := range []types.Verdict{types.VerdictYes, types.VerdictNo, types.VerdictNotApplicable} {
			right.WriteString(renderChoice(string(v), rubric.Verdict == v) + "\n")
		}
	}

	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top,
		left, "  ", m.styles.Card.Render(right.String()))
}

// conflictFor returns the active model's open conflict for one instruction,
// if any.
func (m Model) conflictFor(instructionText string) *reconcile.Conflict {
	for _, c := range m.sess.Conflicts(m.activeModelID()) {
		if c.Instruction == instructionText {
			found := c
			return &found
		}
	}
	return nil
}

// =============================================================================
// RESULTS
// =============================================================================

func (m Model) renderResults() string {
	var b strings.Builder

	total := m.sess.Store().Len()
	applicable := m.sess.ApplicableCount()
	rubrics := m.sess.TotalRubrics()

	var sum strings.Builder
	sum.WriteString(m.styles.Label.Render("Evaluation Summary") + "\n\n")
	fmt.Fprintf(&sum, "Total Instructions:      %d\n", total)
	fmt.Fprintf(&sum, "Applicable Instructions: %d\n", applicable)
	fmt.Fprintf(&sum, "Total Rubrics:           %d\n\n", rubrics)

	for _, id := range types.ModelOrder() {
		open := len(m.sess.Conflicts(id))
		line := fmt.Sprintf("%-7s %d rubric(s) completed", id, m.sess.CompletedRubrics(id))
		if open > 0 {
			line += m.styles.Warn.Render(fmt.Sprintf("  %d type conflict(s) open", open))
		} else if m.sess.Store().Committed() {
			line += m.styles.Success.Render("  no conflicts")
		}
		sum.WriteString(line + "\n")
	}
	b.WriteString(m.styles.Card.Render(sum.String()) + "\n")

	var exp strings.Builder
	exp.WriteString(m.styles.Label.Render("Export / Import") + "\n\n")
	exp.WriteString("c  copy Final Instructions JSON\n")
	for i, id := range types.ModelOrder() {
		fmt.Fprintf(&exp, "%d  copy %s evaluated instructions JSON\n", i+1, id)
	}
	fmt.Fprintf(&exp, "\nImport target: %s (press m to change, i to paste)\n",
		m.styles.Selected.Render(string(m.importModelID())))
	b.WriteString(m.styles.Card.Render(exp.String()))

	if m.focus == focusImport {
		b.WriteString("\n" + m.styles.Label.Render("Paste "+string(m.importModelID())+" evaluated JSON") + "\n")
		b.WriteString(m.importInput.View())
	}
	return b.String()
}

// wrap wraps card content to a display width. lipgloss measures in terminal
// cells, so multibyte and wide runes wrap correctly.
func wrap(s string, width int) string {
	if width < 20 {
		width = 20
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
