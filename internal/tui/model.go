package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blesense/blesense/internal/ble"
	"github.com/blesense/blesense/internal/sensor"
	"github.com/blesense/blesense/internal/tui/components"
	"github.com/blesense/blesense/internal/tui/theme"
)

// Ensure Model satisfies tea.Model.
var _ tea.Model = Model{}

// deviceItem adapts a discovered device to the bubbles list.
type deviceItem struct {
	dev ble.Device
}

func (i deviceItem) Title() string {
	if i.dev.Name == "" {
		return "(unnamed)"
	}
	return i.dev.Name
}

func (i deviceItem) Description() string {
	return fmt.Sprintf("%s  %s %d dBm", i.dev.Address, theme.SymbolSignal, i.dev.RSSI)
}

func (i deviceItem) FilterValue() string { return i.dev.Name }

// Model is the root Bubble Tea model: one screen that moves between the
// adapter gate, the scan list and the connected readings panel.
type Model struct {
	monitor Monitor

	state         ble.AdapterState
	scanning      bool
	connecting    bool
	connected     bool
	device        ble.Device
	subscriptions int
	snapshot      sensor.Snapshot

	status    string
	statusErr bool

	list    list.Model
	spinner spinner.Model

	width  int
	height int
}

// New creates the model over a monitor.
func New(mon Monitor) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return Model{
		monitor: mon,
		state:   mon.State(),
		list:    l,
		spinner: s,
		status:  "Press s to scan for devices",
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, m.listHeight())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case MonitorEventMsg:
		return m.handleEvent(msg.Event)

	case ScanStartedMsg:
		if msg.Err != nil {
			m.scanning = false
			m.setError("Scan failed: " + compact(msg.Err))
		}
		return m, nil

	case ConnectResultMsg:
		m.connecting = false
		if msg.Err != nil {
			m.setError("Connection failed: " + compact(msg.Err))
			return m, nil
		}
		m.connected = true
		m.device = msg.Device
		m.subscriptions = msg.Subscriptions
		m.snapshot.Clear()
		m.setStatus(fmt.Sprintf("Connected to %s, %d subscriptions", displayName(msg.Device), msg.Subscriptions))
		return m, nil

	case ReadResultMsg:
		if msg.Err != nil {
			m.setError("Read failed: " + compact(msg.Err))
		} else {
			m.setStatus(fmt.Sprintf("Read %d readings", msg.Count))
		}
		return m, nil

	case DisconnectResultMsg:
		if msg.Err != nil {
			m.setError("Disconnect failed: " + compact(msg.Err))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// While the list filter input is open, keys belong to it.
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "s":
		if m.connected || m.connecting {
			return m, nil
		}
		if m.scanning {
			m.monitor.StopScan()
			m.setStatus("Stopping scan...")
			return m, nil
		}
		m.scanning = true
		m.setStatus("Scanning...")
		cmd := m.list.SetItems(nil)
		return m, tea.Batch(cmd, startScanCmd(m.monitor))

	case "enter":
		if m.connected || m.connecting {
			return m, nil
		}
		item, ok := m.list.SelectedItem().(deviceItem)
		if !ok {
			return m, nil
		}
		m.connecting = true
		m.setStatus("Connecting to " + displayName(item.dev) + "...")
		return m, connectCmd(m.monitor, item.dev)

	case "r":
		if !m.connected {
			return m, nil
		}
		return m, readCmd(m.monitor)

	case "d":
		if !m.connected {
			return m, nil
		}
		m.setStatus("Disconnecting...")
		return m, disconnectCmd(m.monitor)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleEvent(ev ble.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case ble.EventStateChanged:
		m.state = ev.State
		if ev.State != ble.StatePoweredOn {
			m.setError(statusForState(ev.State))
		}
		return m, nil

	case ble.EventDeviceFound:
		cmd := m.list.InsertItem(len(m.list.Items()), deviceItem{dev: ev.Device})
		return m, cmd

	case ble.EventScanStopped:
		m.scanning = false
		if n := len(m.list.Items()); n == 0 {
			m.setStatus("No devices found")
		} else {
			m.setStatus(fmt.Sprintf("Found %d devices", n))
		}
		return m, nil

	case ble.EventReading:
		m.snapshot.Apply(ev.Reading, time.Now())
		return m, nil

	case ble.EventDisconnected:
		m.connected = false
		m.connecting = false
		m.subscriptions = 0
		m.snapshot.Clear()
		m.setStatus("Disconnected from " + displayName(ev.Device))
		m.device = ble.Device{}
		return m, nil

	case ble.EventError:
		m.setError(compact(ev.Err))
		return m, nil
	}
	return m, nil
}

// View renders the screen: gate message, scan list or readings panel,
// then the status line and key hints.
func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	title := theme.Title.Render("blesense")

	var body string
	switch {
	case m.state != ble.StatePoweredOn:
		body = "\n  " + theme.TextWarning.Render(statusForState(m.state)) + "\n"
	case m.connected:
		body = m.connectedView()
	default:
		body = m.deviceListView()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		body,
		m.statusLine(),
		m.footer(),
	)
}

func (m Model) deviceListView() string {
	if len(m.list.Items()) == 0 && !m.scanning {
		return "\n" + theme.TextMuted.Render("  No devices. Press s to scan.") + "\n"
	}
	return m.list.View()
}

func (m Model) connectedView() string {
	name := theme.TextAccent.Render(displayName(m.device))
	header := "  Connected to " + name
	if m.device.Name != "" {
		header += theme.TextMuted.Render("  " + m.device.Address)
	}
	subs := theme.TextMuted.Render(fmt.Sprintf("  %d notification subscriptions", m.subscriptions))

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		header,
		subs,
		"",
		components.ReadingsView(m.snapshot, time.Now()),
	)
}

func (m Model) statusLine() string {
	style := theme.TextMuted
	if m.statusErr {
		style = theme.TextError
	}
	if m.scanning || m.connecting {
		return "  " + m.spinner.View() + " " + style.Render(m.status)
	}
	return "  " + style.Render(m.status)
}

func (m Model) footer() string {
	var hints []components.KeyHint
	switch {
	case m.connected:
		hints = []components.KeyHint{
			{Key: "r", Desc: "Read"},
			{Key: "d", Desc: "Disconnect"},
			{Key: "q", Desc: "Quit"},
		}
	case m.scanning:
		hints = []components.KeyHint{
			{Key: "s", Desc: "Stop"},
			{Key: "enter", Desc: "Connect"},
			{Key: "q", Desc: "Quit"},
		}
	default:
		hints = []components.KeyHint{
			{Key: "s", Desc: "Scan"},
			{Key: "enter", Desc: "Connect"},
			{Key: "/", Desc: "Filter"},
			{Key: "q", Desc: "Quit"},
		}
	}

	sb := components.NewStatusBar()
	sb.Hints = hints
	sb.State = m.state.String()
	if m.connected {
		sb.Extra = displayName(m.device)
	}
	sb.SetWidth(m.width)
	return sb.View()
}

func (m Model) listHeight() int {
	return theme.Clamp(m.height-6, 4, 40)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

// statusForState maps adapter availability to the one-line message shown
// while the radio is not usable.
func statusForState(s ble.AdapterState) string {
	switch s {
	case ble.StatePoweredOn:
		return "Bluetooth ready"
	case ble.StatePoweredOff:
		return "Bluetooth is turned off"
	case ble.StateUnavailable:
		return "Bluetooth is unavailable on this system"
	default:
		return "Bluetooth state unknown"
	}
}

func displayName(dev ble.Device) string {
	if dev.Name == "" {
		return dev.Address
	}
	return dev.Name
}

// compact reduces an error to a single status line.
func compact(err error) string {
	if err == nil {
		return ""
	}
	return strings.Join(strings.Fields(err.Error()), " ")
}
