package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithProgress_NonInteractive(t *testing.T) {
	t.Setenv("IRONPAGE_NON_INTERACTIVE", "1")
	var out bytes.Buffer

	result, err := RunWithProgress(context.Background(), &out, "publishing", func(ctx context.Context) (string, error) {
		return "published", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "published", result)
	assert.Contains(t, out.String(), "publishing")
}

func TestRunWithProgress_NonInteractiveError(t *testing.T) {
	t.Setenv("IRONPAGE_NON_INTERACTIVE", "1")
	boom := errors.New("boom")

	_, err := RunWithProgress(context.Background(), &bytes.Buffer{}, "publishing", func(ctx context.Context) (string, error) {
		return "", boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestProgressModel_DoneQuits(t *testing.T) {
	m := newProgressModel(context.Background(), "working", func(ctx context.Context) (string, error) {
		return "ok", nil
	})

	assert.Contains(t, m.View(), "working")

	msg := m.run()
	next, cmd := m.Update(msg)
	final := next.(progressModel)

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, final.done)
	assert.Equal(t, "ok", final.result)
	assert.Contains(t, final.View(), SymbolCheck+" ok")
}

func TestProgressModel_CancelKey(t *testing.T) {
	m := newProgressModel(context.Background(), "working", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	cancelled := next.(progressModel)
	assert.Contains(t, cancelled.View(), "cancelling")

	done, _ := cancelled.Update(cancelled.run())
	final := done.(progressModel)
	assert.ErrorIs(t, final.err, context.Canceled)
	assert.Contains(t, final.View(), SymbolCross)
}
