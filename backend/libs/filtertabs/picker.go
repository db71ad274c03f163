package filtertabs

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrAborted is returned by Pick when the user quits without confirming.
var ErrAborted = errors.New("filtertabs: selection aborted")

var helpStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#888888")).
	MarginTop(1)

// Picker drives a Bar interactively: arrows move, enter confirms, q/esc quits.
// The cursor is a position, so repeated labels stay reachable.
type Picker struct {
	tabs      []string
	cursor    int
	onChange  func(string)
	confirmed bool
	aborted   bool
}

// NewPicker starts on the first tab labelled active, or on the first tab.
func NewPicker(tabs []string, active string, onChange func(string)) Picker {
	p := Picker{tabs: tabs, onChange: onChange}
	if idx := (Bar{Tabs: tabs, Active: active}).Index(); idx > 0 {
		p.cursor = idx
	}
	return p
}

func (p Picker) active() string {
	if len(p.tabs) == 0 {
		return ""
	}
	return p.tabs[p.cursor]
}

func (p Picker) bar() Bar {
	return Bar{Tabs: p.tabs, Active: p.active(), OnTabChange: p.onChange}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "right", "l", "tab":
		return p.move(1), nil
	case "left", "h", "shift+tab":
		return p.move(-1), nil
	case "enter":
		p.confirmed = true
		return p, tea.Quit
	case "q", "esc", "ctrl+c":
		p.aborted = true
		return p, tea.Quit
	}
	return p, nil
}

func (p Picker) move(delta int) Picker {
	n := len(p.tabs)
	if n == 0 {
		return p
	}
	p.cursor = (p.cursor + delta) % n
	if p.cursor < 0 {
		p.cursor += n
	}
	p.bar().Select(p.active())
	return p
}

// View implements tea.Model.
func (p Picker) View() string {
	if p.confirmed || p.aborted {
		return ""
	}
	return p.bar().View() + "\n" + helpStyle.Render("←/→ switch filter • enter select • q quit") + "\n"
}

// Selected returns the active tab and whether the user confirmed it.
func (p Picker) Selected() (string, bool) {
	return p.active(), p.confirmed
}

// Pick runs an interactive picker and returns the confirmed tab.
func Pick(tabs []string, active string, onChange func(string), opts ...tea.ProgramOption) (string, error) {
	final, err := tea.NewProgram(NewPicker(tabs, active, onChange), opts...).Run()
	if err != nil {
		return "", err
	}
	picker, ok := final.(Picker)
	if !ok {
		return "", errors.New("filtertabs: unexpected model")
	}
	tab, confirmed := picker.Selected()
	if !confirmed {
		return "", ErrAborted
	}
	return tab, nil
}
