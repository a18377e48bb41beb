// Package tui implements the single-screen Bubble Tea interface for blesense.
package tui

import "github.com/blesense/blesense/internal/ble"

// MonitorEventMsg wraps an event from the monitor's stream. The main
// goroutine forwards these into the program via Program.Send.
type MonitorEventMsg struct {
	Event ble.Event
}

// ScanStartedMsg reports whether a scan request was accepted.
type ScanStartedMsg struct {
	Err error
}

// ConnectResultMsg carries the outcome of a connection attempt.
type ConnectResultMsg struct {
	Device        ble.Device
	Subscriptions int
	Err           error
}

// ReadResultMsg carries the outcome of a manual characteristic read.
type ReadResultMsg struct {
	Count int
	Err   error
}

// DisconnectResultMsg reports the outcome of a disconnect request.
type DisconnectResultMsg struct {
	Err error
}
