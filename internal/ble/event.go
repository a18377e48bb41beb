package ble

import "github.com/blesense/blesense/internal/sensor"

// EventKind discriminates monitor events.
type EventKind int

const (
	// EventStateChanged reports a new adapter state.
	EventStateChanged EventKind = iota
	// EventDeviceFound reports a peripheral discovered during a scan.
	EventDeviceFound
	// EventScanStopped reports the end of a scan session, whether the
	// window elapsed, the scan was cancelled, or the radio failed.
	EventScanStopped
	// EventReading reports a decoded sensor payload from the connected
	// peripheral.
	EventReading
	// EventDisconnected reports that the active connection went away.
	EventDisconnected
	// EventError reports an asynchronous failure.
	EventError
)

var eventKindNames = []string{
	"state changed", "device found", "scan stopped",
	"reading", "disconnected", "error",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return "unknown"
	}
	return eventKindNames[k]
}

// Event is a single monitor occurrence. Which fields are set depends on
// Kind: State for EventStateChanged; Device for EventDeviceFound,
// EventReading and EventDisconnected; Reading for EventReading; Err for
// EventError.
type Event struct {
	Kind    EventKind
	State   AdapterState
	Device  Device
	Reading sensor.Reading
	Err     error
}
