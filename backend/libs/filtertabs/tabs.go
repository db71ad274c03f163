// Package filtertabs renders the document filter tab bar in a terminal.
package filtertabs

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6B7280")).
				Padding(0, 2)
)

// DefaultTabs are the filters offered when none are configured.
var DefaultTabs = []string{"All", "Pending", "Approved", "Rejected"}

// Bar is a horizontal list of filter labels with one highlighted entry. It holds no
// state of its own: the owner passes Active in and learns about selections through
// OnTabChange.
type Bar struct {
	Tabs        []string
	Active      string
	OnTabChange func(tab string)
}

// View renders the labels side by side, highlighting the active one.
func (b Bar) View() string {
	rendered := make([]string, 0, len(b.Tabs))
	for _, tab := range b.Tabs {
		if tab == b.Active {
			rendered = append(rendered, activeTabStyle.Render(tab))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Select reports a click on tab.
func (b Bar) Select(tab string) {
	if b.OnTabChange != nil {
		b.OnTabChange(tab)
	}
}

// Index returns the position of the active tab, or -1.
func (b Bar) Index() int {
	for i, tab := range b.Tabs {
		if tab == b.Active {
			return i
		}
	}
	return -1
}
