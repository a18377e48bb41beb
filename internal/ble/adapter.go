// Package ble wraps the platform Bluetooth Low Energy stack behind small
// interfaces and provides the Monitor that drives scanning, connecting and
// notification handling for sensor peripherals.
package ble

import "context"

// Device is a discovered BLE peripheral.
type Device struct {
	// Address is the stable identifier for the peripheral: a MAC address
	// on Linux, a CoreBluetooth UUID on macOS.
	Address string
	Name    string
	RSSI    int // signal strength at discovery time, in dBm
}

// Characteristic represents a GATT characteristic on a connected peripheral.
type Characteristic interface {
	// UUID returns the characteristic UUID string.
	UUID() string
	// Read reads the characteristic's current value.
	Read() ([]byte, error)
	// Subscribe registers a callback for notifications on this
	// characteristic. Fails if the characteristic does not notify.
	Subscribe(callback func(data []byte)) error
}

// Connection represents an active BLE connection to a peripheral.
type Connection interface {
	// Characteristics discovers every characteristic across all services.
	Characteristics() ([]Characteristic, error)
	// Disconnect terminates the connection.
	Disconnect() error
	// OnDisconnect registers a callback invoked when the connection drops.
	OnDisconnect(callback func())
}

// Adapter abstracts the BLE hardware adapter for testing.
type Adapter interface {
	// Enable powers on the BLE adapter.
	Enable() error
	// Scan streams discovered peripherals to found until ctx is cancelled.
	// Results are raw: the same peripheral may be reported more than once.
	Scan(ctx context.Context, found func(Device)) error
	// Connect establishes a connection to the device at the given address.
	Connect(ctx context.Context, address string) (Connection, error)
}
