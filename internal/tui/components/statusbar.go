package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/blesense/blesense/internal/tui/theme"
)

// KeyHint represents a single keybinding hint shown in the status bar.
type KeyHint struct {
	Key  string // e.g. "s"
	Desc string // e.g. "Scan"
}

// StatusBarModel renders a bottom status bar with keybinding hints on the
// left and adapter info on the right.
type StatusBarModel struct {
	Hints []KeyHint
	State string // adapter state, e.g. "powered on"
	Extra string // additional status text (e.g. connected device)
	width int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar as a single line.
func (m StatusBarModel) View() string {
	// Left side: keybinding hints.
	var hints []string
	for _, h := range m.Hints {
		key := theme.StatusKey.Render(h.Key)
		hints = append(hints, key+": "+h.Desc)
	}
	left := strings.Join(hints, "  "+theme.Dim.Render("|")+"  ")

	// Right side: adapter state and extra info.
	var right string
	if m.State != "" {
		right = theme.TextMuted.Render(m.State)
	}
	if m.Extra != "" {
		if right != "" {
			right = theme.TextInfo.Render(m.Extra) + theme.TextMuted.Render(" "+theme.SymbolBullet+" ") + right
		} else {
			right = theme.TextInfo.Render(m.Extra)
		}
	}

	// Join left and right, padding the gap.
	leftW := lipgloss.Width(left)
	rightW := lipgloss.Width(right)
	gap := m.width - leftW - rightW
	if gap < 1 {
		gap = 1
	}

	bar := left + strings.Repeat(" ", gap) + right
	return theme.StatusBar.Width(m.width).Render(bar)
}
