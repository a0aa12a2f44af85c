package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/database-playground/account-eraser/internal/erasure"
)

// Resume erases again every account with an unfinished erasure.
func (c *Context) Resume(ctx context.Context, dryRun bool) error {
	checkpoints, err := c.Pending(ctx)
	if err != nil {
		return err
	}

	if len(checkpoints) == 0 {
		fmt.Println("No unfinished erasures found.")
		return nil
	}

	if dryRun {
		c.displayDryRun(checkpoints)
		return nil
	}

	model := newResumeModel(ctx, c.eraser, checkpoints)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}

	return nil
}

func (c *Context) displayDryRun(checkpoints []erasure.Checkpoint) {
	fmt.Println("\n🔍 Dry Run Mode - Preview of erasures to be resumed:")
	fmt.Println()
	fmt.Printf("Total erasures to resume: %d\n\n", len(checkpoints))

	for _, checkpoint := range checkpoints {
		fmt.Printf("User: %s\n", checkpoint.UserID)
		fmt.Printf("  - Stopped in: %s (%d targets done)\n", checkpoint.Phase, checkpoint.Completed)
		if checkpoint.FailedCollection != "" {
			fmt.Printf("  - Failed collection: %s\n", checkpoint.FailedCollection)
		}
		if checkpoint.Failed() {
			fmt.Printf("  - Error: %s\n", truncateString(checkpoint.Error, 80))
		}
		fmt.Printf("  - Last update: %s\n", checkpoint.UpdatedAt.Format(time.RFC3339))
		fmt.Println()
	}

	fmt.Println("To actually resume these erasures, run without --dry-run flag.")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// resumeModel is the Bubble Tea model for the resume progress UI
type resumeModel struct {
	ctx          context.Context
	eraser       Eraser
	checkpoints  []erasure.Checkpoint
	currentIndex int
	completed    int
	failed       int
	progress     progress.Model
	spinner      spinner.Model
	status       string
	err          error
	done         bool
	mu           sync.Mutex
}

func newResumeModel(ctx context.Context, eraser Eraser, checkpoints []erasure.Checkpoint) *resumeModel {
	prog := progress.New(progress.WithScaledGradient("#FF7CCB", "#FDFF8C"))
	prog.Width = 50

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &resumeModel{
		ctx:         ctx,
		eraser:      eraser,
		checkpoints: checkpoints,
		progress:    prog,
		spinner:     s,
		status:      "Initializing...",
	}
}

func (m *resumeModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startResume,
	)
}

func (m *resumeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.done {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case resumeProgressMsg:
		m.mu.Lock()
		m.currentIndex = msg.Index
		m.completed = msg.Completed
		m.failed = msg.Failed
		m.status = msg.Status
		if msg.Err != nil {
			m.err = msg.Err
		}
		m.done = msg.Done
		m.mu.Unlock()

		if m.done {
			return m, nil
		}

		return m, m.processNext()

	case resumeStartMsg:
		return m, m.processNext()

	default:
		return m, nil
	}
}

func (m *resumeModel) View() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		var result string
		result += "\n"
		result += lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")).
			Render("✅ Resume Complete!") + "\n\n"
		result += fmt.Sprintf("Total: %d\n", len(m.checkpoints))
		result += lipgloss.NewStyle().Foreground(lipgloss.Color("2")).
			Render(fmt.Sprintf("Erased: %d", m.completed)) + "\n"
		if m.failed > 0 {
			result += lipgloss.NewStyle().Foreground(lipgloss.Color("1")).
				Render(fmt.Sprintf("Failed: %d", m.failed)) + "\n"
			result += fmt.Sprintf("Last error: %v\n", m.err)
			result += "\nRun \"pending\" to see what is left.\n"
		}
		result += "\nPress 'q' to quit.\n"
		return result
	}

	var s string
	s += "\n"
	s += lipgloss.NewStyle().Bold(true).Render("🔄 Resuming Unfinished Erasures") + "\n\n"

	percent := float64(m.completed+m.failed) / float64(len(m.checkpoints))
	s += fmt.Sprintf("Progress: %s %.1f%%\n", m.progress.ViewAs(percent), percent*100)
	s += "\n"

	s += m.spinner.View() + " " + m.status + "\n"
	s += "\n"

	s += fmt.Sprintf("Total: %d | ", len(m.checkpoints))
	s += lipgloss.NewStyle().Foreground(lipgloss.Color("2")).
		Render(fmt.Sprintf("Erased: %d", m.completed))
	if m.failed > 0 {
		s += " | " + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).
			Render(fmt.Sprintf("Failed: %d", m.failed))
	}
	s += "\n\n"

	if m.currentIndex < len(m.checkpoints) {
		s += fmt.Sprintf("Processing: User %s\n", m.checkpoints[m.currentIndex].UserID)
	}

	s += "\nPress 'q' to quit.\n"

	return s
}

type resumeStartMsg struct{}

type resumeProgressMsg struct {
	Index     int
	Completed int
	Failed    int
	Status    string
	Err       error
	Done      bool
}

func (m *resumeModel) startResume() tea.Msg {
	return resumeStartMsg{}
}

func (m *resumeModel) processNext() tea.Cmd {
	return func() tea.Msg {
		m.mu.Lock()
		index := m.currentIndex
		completed := m.completed
		failed := m.failed
		m.mu.Unlock()

		if index >= len(m.checkpoints) {
			return resumeProgressMsg{
				Index:     index,
				Completed: completed,
				Failed:    failed,
				Status:    "All done!",
				Done:      true,
			}
		}

		checkpoint := m.checkpoints[index]
		statusMsg := fmt.Sprintf("Erasing account %d/%d (User %s)...",
			index+1, len(m.checkpoints), checkpoint.UserID)

		if _, err := m.eraser.EraseAccount(m.ctx, checkpoint.UserID); err != nil {
			failed++
			return resumeProgressMsg{
				Index:     index + 1,
				Completed: completed,
				Failed:    failed,
				Status:    fmt.Sprintf("Failed: %v", err),
				Err:       err,
			}
		}

		completed++
		return resumeProgressMsg{
			Index:     index + 1,
			Completed: completed,
			Failed:    failed,
			Status:    statusMsg + " ✓",
		}
	}
}
