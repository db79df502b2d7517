package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Task is a blocking operation shown behind a progress indicator. The
// returned string is printed on success.
type Task func(ctx context.Context) (string, error)

type taskDoneMsg struct {
	result string
	err    error
}

var quitKey = key.NewBinding(
	key.WithKeys("ctrl+c", "esc"),
	key.WithHelp("ctrl+c", "cancel"),
)

// progressModel animates a spinner until the task reports back.
type progressModel struct {
	spinner spinner.Model
	message string
	task    Task
	ctx     context.Context
	cancel  context.CancelFunc

	done   bool
	result string
	err    error
}

func newProgressModel(ctx context.Context, message string, task Task) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ctx, cancel := context.WithCancel(ctx)
	return progressModel{
		spinner: s,
		message: message,
		task:    task,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (m progressModel) run() tea.Msg {
	result, err := m.task(m.ctx)
	return taskDoneMsg{result: result, err: err}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		m.cancel()
		return m, tea.Quit
	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			// The task observes the cancellation and reports back.
			m.cancel()
			m.message = "cancelling..."
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		if m.err != nil {
			return ErrorStyle.Render(SymbolCross+" "+m.err.Error()) + "\n"
		}
		return SuccessStyle.Render(SymbolCheck+" "+m.result) + "\n"
	}
	return m.spinner.View() + " " + m.message + "\n"
}

// RunWithProgress runs task, animating a spinner on out when the terminal is
// interactive and printing a single status line otherwise.
func RunWithProgress(ctx context.Context, out io.Writer, message string, task Task) (string, error) {
	if !IsInteractive() {
		fmt.Fprintln(out, MutedStyle.Render(message))
		return task(ctx)
	}

	model := newProgressModel(ctx, message, task)
	final, err := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx)).Run()
	if err != nil {
		model.cancel()
		return "", fmt.Errorf("progress display failed: %w", err)
	}
	m := final.(progressModel)
	return m.result, m.err
}
