package ble

import (
	"errors"
	"testing"
)

func TestStateFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want AdapterState
	}{
		{"no error", nil, StatePoweredOn},
		{"bluez not ready", errors.New("org.bluez.Error.NotReady: Resource Not Ready"), StatePoweredOff},
		{"corebluetooth powered off", errors.New("CBCentralManager not powered on"), StatePoweredOff},
		{"missing adapter", errors.New("dbus: no such object"), StateUnavailable},
		{"permission denied", errors.New("operation not permitted"), StateUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stateFromError(tt.err); got != tt.want {
				t.Errorf("stateFromError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestAdapterStateString(t *testing.T) {
	tests := []struct {
		state AdapterState
		want  string
	}{
		{StateUnknown, "unknown"},
		{StateUnavailable, "unavailable"},
		{StatePoweredOff, "powered off"},
		{StatePoweredOn, "powered on"},
		{AdapterState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("AdapterState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
