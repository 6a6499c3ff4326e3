package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/cratuity/internal/crates"
	"github.com/pders01/cratuity/internal/validation"
)

type KeyHandler struct {
	app  *App
	keys KeyMap
}

func NewKeyHandler(app *App) *KeyHandler {
	return &KeyHandler{app: app, keys: app.keys}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, kh.keys.ForceQuit) {
		return kh.app, tea.Quit
	}

	switch kh.app.mode {
	case ModeInput:
		return kh.handleInputMode(msg)
	case ModeSorting:
		return kh.handleSortingMode(msg)
	case ModeFind:
		return kh.handleFindMode(msg)
	case ModeDetails:
		return kh.handleDetailsMode(msg)
	default:
		return kh.handleNormalMode(msg)
	}
}

func (kh *KeyHandler) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	k := kh.keys

	switch {
	case key.Matches(msg, k.Quit):
		return a, tea.Quit
	case key.Matches(msg, k.NextPage):
		a.nextPage()
		return a, nil
	case key.Matches(msg, k.PrevPage):
		a.prevPage()
		return a, nil
	case key.Matches(msg, k.NextItem):
		a.nextItem()
		return a, nil
	case key.Matches(msg, k.PrevItem):
		a.prevItem()
		return a, nil
	case key.Matches(msg, k.Home):
		a.home()
		return a, nil
	case key.Matches(msg, k.End):
		a.end()
		return a, nil
	case key.Matches(msg, k.Retry):
		a.retry()
		return a, nil
	case key.Matches(msg, k.Search):
		return kh.enterInputMode()
	case key.Matches(msg, k.Sort):
		a.mode = ModeSorting
		a.sortSelection = int(a.sort)
		return a, nil
	case key.Matches(msg, k.Find):
		return kh.enterFindMode()
	case key.Matches(msg, k.Details):
		if c, ok := a.selectedCrate(); ok {
			return a, a.showDetails(c)
		}
		return a, nil
	case key.Matches(msg, k.Copy):
		return a, kh.withSelection(a.copyCrate)
	case key.Matches(msg, k.Open):
		return a, kh.withSelection(a.openCrate)
	case key.Matches(msg, k.MorePerPage):
		a.setPageSize(a.pageSize + 1)
		return a, nil
	case key.Matches(msg, k.LessPerPage):
		a.setPageSize(a.pageSize - 1)
		return a, nil
	case key.Matches(msg, k.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	}
	return a, nil
}

func (kh *KeyHandler) withSelection(run func(crates.Crate) tea.Cmd) tea.Cmd {
	c, ok := kh.app.selectedCrate()
	if !ok {
		kh.app.toasts.push(StatusWarn, "", MsgNoSelection, kh.app.config.UI.ToastDuration)
		return nil
	}
	return run(c)
}

func (kh *KeyHandler) enterInputMode() (tea.Model, tea.Cmd) {
	a := kh.app
	a.mode = ModeInput
	a.textInput.SetValue(a.query)
	a.textInput.CursorEnd()
	return a, a.textInput.Focus()
}

func (kh *KeyHandler) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch msg.Type {
	case tea.KeyEsc:
		a.mode = ModeNormal
		a.textInput.Blur()
		return a, nil
	case tea.KeyEnter:
		query := validation.SanitizeQuery(a.textInput.Value())
		a.mode = ModeNormal
		a.textInput.Blur()
		a.search(query)
		return a, nil
	}

	var cmd tea.Cmd
	a.textInput, cmd = a.textInput.Update(msg)
	return a, cmd
}

func (kh *KeyHandler) handleSortingMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	k := kh.keys

	switch {
	case key.Matches(msg, k.Back):
		a.mode = ModeNormal
		return a, nil
	case key.Matches(msg, k.Confirm):
		a.mode = ModeNormal
		a.setSort(crates.AllSorts[a.sortSelection])
		return a, nil
	case key.Matches(msg, k.OptionDown):
		if a.sortSelection < len(crates.AllSorts)-1 {
			a.sortSelection++
		}
	case key.Matches(msg, k.OptionUp):
		if a.sortSelection > 0 {
			a.sortSelection--
		}
	}
	return a, nil
}

func (kh *KeyHandler) enterFindMode() (tea.Model, tea.Cmd) {
	a := kh.app
	a.mode = ModeFind
	a.findInput.Reset()
	a.findResults = nil
	a.findSelection = 0
	return a, a.findInput.Focus()
}

func (kh *KeyHandler) handleFindMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch msg.Type {
	case tea.KeyEsc:
		a.mode = ModeNormal
		a.findInput.Blur()
		return a, nil
	case tea.KeyEnter:
		if a.findSelection < len(a.findResults) {
			a.findInput.Blur()
			return a, a.showDetails(a.findResults[a.findSelection])
		}
		return a, nil
	case tea.KeyDown, tea.KeyTab:
		if a.findSelection < len(a.findResults)-1 {
			a.findSelection++
		}
		return a, nil
	case tea.KeyUp, tea.KeyShiftTab:
		if a.findSelection > 0 {
			a.findSelection--
		}
		return a, nil
	}

	before := a.findInput.Value()
	var cmd tea.Cmd
	a.findInput, cmd = a.findInput.Update(msg)

	query := a.findInput.Value()
	if query == before {
		return a, cmd
	}
	a.findSelection = 0
	if len(strings.TrimSpace(query)) < 2 {
		a.findResults = nil
		return a, cmd
	}
	return a, tea.Batch(cmd, a.findCrates(query))
}

func (kh *KeyHandler) handleDetailsMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	k := kh.keys

	switch {
	case key.Matches(msg, k.Back), msg.String() == "backspace", msg.String() == "q":
		a.mode = a.detailsReturn
		if a.mode == ModeFind {
			return a, a.findInput.Focus()
		}
		return a, nil
	case key.Matches(msg, k.Copy):
		if a.detailsCrate != nil {
			return a, a.copyCrate(*a.detailsCrate)
		}
		return a, nil
	case key.Matches(msg, k.Open):
		if a.detailsCrate != nil {
			return a, a.openCrate(*a.detailsCrate)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}
