package ble

import "strings"

// AdapterState describes the availability of the BLE radio as far as the
// monitor can tell. The platform stacks expose no portable power-state
// stream, so transitions are derived from operation outcomes.
type AdapterState int

const (
	StateUnknown AdapterState = iota
	StateUnavailable
	StatePoweredOff
	StatePoweredOn
)

var stateNames = []string{"unknown", "unavailable", "powered off", "powered on"}

func (s AdapterState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// stateFromError classifies the adapter state implied by a stack error.
// BlueZ reports a powered-down radio as "not ready"; CoreBluetooth says
// "not powered on". Anything else means the stack itself is unusable.
func stateFromError(err error) AdapterState {
	if err == nil {
		return StatePoweredOn
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "not ready") || strings.Contains(msg, "powered") {
		return StatePoweredOff
	}
	return StateUnavailable
}
