// Package tui provides the live terminal view of a production run.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kwhitfield/quorum/internal/production"
	"github.com/kwhitfield/quorum/pkg/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// iterationRow is one rendered loop pass.
type iterationRow struct {
	index int
	score float64
	note  string
	done  bool
}

// EventMsg wraps a readiness-loop event for the TUI.
type EventMsg struct {
	Event production.Event
}

// DoneMsg signals that the production run finished.
type DoneMsg struct {
	Result *models.ProductionResult
}

// App is the bubbletea model for a production run.
type App struct {
	taskDesc string
	tier     models.ProductionTier
	spinner  spinner.Model

	events <-chan production.Event

	rows      []iterationRow
	hardening []string
	result    *models.ProductionResult
	quitting  bool
}

// New creates the TUI model for one run.
func New(taskDesc string, tier models.ProductionTier, events <-chan production.Event) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	return &App{
		taskDesc: taskDesc,
		tier:     tier,
		spinner:  sp,
		events:   events,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.waitForEvent())
}

// waitForEvent blocks on the loop's event channel.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.events
		if !ok {
			return nil
		}
		return EventMsg{Event: ev}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		}

	case EventMsg:
		a.apply(msg.Event)
		return a, a.waitForEvent()

	case DoneMsg:
		a.result = msg.Result
		return a, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}
	return a, nil
}

// apply folds one loop event into the view state.
func (a *App) apply(ev production.Event) {
	switch ev.Type {
	case production.EventIterationStarted:
		a.rows = append(a.rows, iterationRow{index: ev.Iteration})
	case production.EventIterationValidated:
		if i := a.rowFor(ev.Iteration); i >= 0 {
			a.rows[i].score = ev.Score
			a.rows[i].note = ev.Message
			a.rows[i].done = true
		}
	case production.EventConverged:
		if i := a.rowFor(ev.Iteration); i >= 0 {
			a.rows[i].note = "converged"
		}
	case production.EventExhausted:
		if len(a.rows) > 0 {
			a.rows[len(a.rows)-1].note += " (iterations exhausted)"
		}
	case production.EventHardening:
		a.hardening = append(a.hardening, fmt.Sprintf("%s %.2f", ev.Message, ev.Score))
	}
}

func (a *App) rowFor(iteration int) int {
	for i := range a.rows {
		if a.rows[i].index == iteration {
			return i
		}
	}
	return -1
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting && a.result == nil {
		return "aborted\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("quorum · %s tier", a.tier)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(truncate(a.taskDesc, 70)))
	b.WriteString("\n\n")

	for _, row := range a.rows {
		if row.done {
			mark := okStyle.Render("✓")
			if row.score < models.ReadinessThreshold(a.tier) {
				mark = warnStyle.Render("•")
			}
			fmt.Fprintf(&b, " %s iteration %d  score %.2f  %s\n", mark, row.index, row.score, dimStyle.Render(row.note))
		} else {
			fmt.Fprintf(&b, " %s iteration %d running\n", a.spinner.View(), row.index)
		}
	}

	if len(a.hardening) > 0 {
		b.WriteString("\n" + dimStyle.Render("hardening: "+strings.Join(a.hardening, ", ")) + "\n")
	}

	if a.result != nil {
		b.WriteString("\n" + borderStyle.Render(a.renderResult()) + "\n")
	}
	return b.String()
}

func (a *App) renderResult() string {
	r := a.result
	var status string
	switch r.Status {
	case models.ProductionStatusReady:
		status = okStyle.Render("READY")
	case models.ProductionStatusNotReady:
		status = warnStyle.Render("NOT READY")
	default:
		status = failStyle.Render("FAILED")
	}
	out := fmt.Sprintf("%s  confidence %.2f  iterations %d", status, r.Confidence, r.Iterations)
	if r.FailureReason != "" {
		out += "\n" + failStyle.Render(r.FailureReason)
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
