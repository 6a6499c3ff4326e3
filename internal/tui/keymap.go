package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	NextPage     key.Binding
	PrevPage     key.Binding
	NextItem     key.Binding
	PrevItem     key.Binding
	Home         key.Binding
	End          key.Binding
	Search       key.Binding
	Sort         key.Binding
	Find         key.Binding
	Retry        key.Binding
	Details      key.Binding
	Copy         key.Binding
	Open         key.Binding
	MorePerPage  key.Binding
	LessPerPage  key.Binding
	Help         key.Binding
	Quit         key.Binding
	Confirm      key.Binding
	Back         key.Binding
	OptionDown   key.Binding
	OptionUp     key.Binding
	ForceQuit    key.Binding
	ScrollDown   key.Binding
	ScrollUp     key.Binding
	ResultsFocus key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPage: key.NewBinding(
			key.WithKeys("n", "N", "right", "pgdown"),
			key.WithHelp("n/→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "P", "left", "pgup"),
			key.WithHelp("p/←", "prev page"),
		),
		NextItem: key.NewBinding(
			key.WithKeys("j", "J", "down"),
			key.WithHelp("j/↓", "next crate"),
		),
		PrevItem: key.NewBinding(
			key.WithKeys("k", "K", "up"),
			key.WithHelp("k/↑", "prev crate"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home", "first page"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end", "last page"),
		),
		Search: key.NewBinding(
			key.WithKeys("f", "F"),
			key.WithHelp("f", "search"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s", "S"),
			key.WithHelp("s", "sort"),
		),
		Find: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "find seen"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r", "R"),
			key.WithHelp("r", "retry"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter", "d"),
			key.WithHelp("enter", "details"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c", "C"),
			key.WithHelp("c", "copy toml"),
		),
		Open: key.NewBinding(
			key.WithKeys("o", "O"),
			key.WithHelp("o", "open docs"),
		),
		MorePerPage: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+/-", "page size"),
		),
		LessPerPage: key.NewBinding(
			key.WithKeys("-", "_"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		OptionDown: key.NewBinding(
			key.WithKeys("j", "J", "n", "N", "down", "right"),
			key.WithHelp("j/↓", "next"),
		),
		OptionUp: key.NewBinding(
			key.WithKeys("k", "K", "p", "P", "up", "left"),
			key.WithHelp("k/↑", "prev"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down", "pgdown", " "),
			key.WithHelp("j/↓", "scroll"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up", "pgup"),
		),
		ResultsFocus: key.NewBinding(
			key.WithKeys("down", "up", "tab"),
			key.WithHelp("↑/↓", "choose"),
		),
	}
}

// modeHelp adapts the bindings relevant to one mode to help.KeyMap.
type modeHelp struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h modeHelp) ShortHelp() []key.Binding  { return h.short }
func (h modeHelp) FullHelp() [][]key.Binding { return h.full }

func (k KeyMap) helpFor(mode Mode) modeHelp {
	switch mode {
	case ModeInput:
		return modeHelp{short: []key.Binding{k.Confirm, k.Back}}
	case ModeSorting:
		return modeHelp{short: []key.Binding{k.OptionDown, k.OptionUp, k.Confirm, k.Back}}
	case ModeFind:
		return modeHelp{short: []key.Binding{k.ResultsFocus, k.Confirm, k.Back}}
	case ModeDetails:
		back := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
		return modeHelp{short: []key.Binding{k.ScrollDown, k.Copy, k.Open, back}}
	default:
		return modeHelp{
			short: []key.Binding{k.NextPage, k.PrevPage, k.NextItem, k.PrevItem, k.Search, k.Sort, k.Help, k.Quit},
			full: [][]key.Binding{
				{k.NextPage, k.PrevPage, k.Home, k.End},
				{k.NextItem, k.PrevItem, k.Details, k.MorePerPage},
				{k.Search, k.Sort, k.Find, k.Retry},
				{k.Copy, k.Open, k.Help, k.Quit},
			},
		}
	}
}
