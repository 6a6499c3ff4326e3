package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestKeyHandler_QuitKeys(t *testing.T) {
	for _, k := range []string{"q", "Q"} {
		h := newHarness(t)
		h.press(t, tea.KeyMsg{Type: tea.KeyEsc})
		assert.True(t, isQuit(h.pressKey(t, k)), k)
	}
}

func TestKeyHandler_CtrlCQuitsFromEveryMode(t *testing.T) {
	for _, mode := range []Mode{ModeNormal, ModeInput, ModeSorting, ModeFind, ModeDetails} {
		h := newHarness(t)
		h.app.mode = mode
		assert.True(t, isQuit(h.press(t, tea.KeyMsg{Type: tea.KeyCtrlC})), "mode %d", mode)
	}
}

func TestKeyHandler_PromptCapturesLetters(t *testing.T) {
	h := newHarness(t)

	cmd := h.pressKey(t, "q")
	assert.False(t, isQuit(cmd))
	assert.Equal(t, ModeInput, h.app.Mode())
	assert.Equal(t, "q", h.app.textInput.Value())
}

func TestKeyHandler_HelpToggle(t *testing.T) {
	h := newHarness(t)
	h.press(t, tea.KeyMsg{Type: tea.KeyEsc})

	short := h.app.View()
	h.pressKey(t, "?")
	require.True(t, h.app.help.ShowAll)
	full := h.app.View()
	assert.NotEqual(t, short, full)
	assert.Contains(t, full, "copy toml")

	h.pressKey(t, "?")
	assert.False(t, h.app.help.ShowAll)
}

func TestKeyHandler_EnterOnEmptyResultsStaysNormal(t *testing.T) {
	h := newHarness(t)
	h.press(t, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, h.press(t, tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Equal(t, ModeNormal, h.app.Mode())
}

func TestKeyMap_HelpForMode(t *testing.T) {
	k := DefaultKeyMap()

	assert.Len(t, k.helpFor(ModeInput).ShortHelp(), 2)
	assert.Len(t, k.helpFor(ModeSorting).ShortHelp(), 4)
	assert.NotEmpty(t, k.helpFor(ModeNormal).FullHelp())
	assert.Empty(t, k.helpFor(ModeDetails).FullHelp())
}
