package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/blesense/blesense/internal/sensor"
	"github.com/blesense/blesense/internal/tui/theme"
)

// noValue is shown while a measurement has not arrived yet.
const noValue = "—"

// ReadingCard renders one measurement as a bordered card.
func ReadingCard(label, value string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.StatValue.Render(value),
		theme.StatLabel.Render(label),
	)
	return theme.StatCard.Render(content)
}

// ReadingsView renders the snapshot as temperature and humidity cards with
// a freshness line underneath. Fields the device has not reported yet show
// a placeholder.
func ReadingsView(snap sensor.Snapshot, now time.Time) string {
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		ReadingCard("Temperature", FormatTemperature(snap.Temperature)),
		"  ",
		ReadingCard("Humidity", FormatHumidity(snap.Humidity)),
	)

	var footer string
	if snap.HasData() {
		age := now.Sub(snap.UpdatedAt).Round(time.Second)
		footer = theme.TextMuted.Render(fmt.Sprintf("  Updated %s ago", age))
	} else {
		footer = theme.TextMuted.Render("  Waiting for notifications...")
	}

	return lipgloss.JoinVertical(lipgloss.Left, cards, footer)
}

// FormatTemperature renders a temperature in °C, or a placeholder when the
// device has not reported one.
func FormatTemperature(v *float64) string {
	if v == nil {
		return noValue
	}
	return fmt.Sprintf("%.1f °C", *v)
}

// FormatHumidity renders a relative humidity percentage, or a placeholder
// when the device has not reported one.
func FormatHumidity(v *float64) string {
	if v == nil {
		return noValue
	}
	return fmt.Sprintf("%.1f %%", *v)
}
