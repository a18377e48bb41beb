package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/blesense/blesense/internal/ble"
)

// Monitor is the slice of the BLE monitor the UI drives. Satisfied by
// *ble.Monitor.
type Monitor interface {
	State() ble.AdapterState
	StartScan() error
	StopScan()
	Connect(dev ble.Device) (int, error)
	ReadOnce() (int, error)
	Disconnect() error
}

// startScanCmd asks the monitor to open a scan session.
func startScanCmd(mon Monitor) tea.Cmd {
	return func() tea.Msg {
		return ScanStartedMsg{Err: mon.StartScan()}
	}
}

// connectCmd dials the device and subscribes to its characteristics.
// Blocks up to the monitor's connect timeout, so it runs as a command.
func connectCmd(mon Monitor, dev ble.Device) tea.Cmd {
	return func() tea.Msg {
		subs, err := mon.Connect(dev)
		return ConnectResultMsg{Device: dev, Subscriptions: subs, Err: err}
	}
}

// readCmd polls every characteristic once.
func readCmd(mon Monitor) tea.Cmd {
	return func() tea.Msg {
		count, err := mon.ReadOnce()
		return ReadResultMsg{Count: count, Err: err}
	}
}

// disconnectCmd tears the connection down.
func disconnectCmd(mon Monitor) tea.Cmd {
	return func() tea.Msg {
		return DisconnectResultMsg{Err: mon.Disconnect()}
	}
}
