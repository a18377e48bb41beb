package ble

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blesense/blesense/internal/sensor"
)

// MonitorOptions configures monitor behavior.
type MonitorOptions struct {
	ScanWindow     time.Duration // how long a scan session runs
	ConnectTimeout time.Duration // upper bound on one connection attempt
	IncludeUnnamed bool          // keep peripherals that advertise no name
	EventBuffer    int           // max pending events before oldest is dropped
}

// DefaultMonitorOptions returns sensible defaults.
func DefaultMonitorOptions() MonitorOptions {
	return MonitorOptions{
		ScanWindow:     10 * time.Second,
		ConnectTimeout: 15 * time.Second,
		EventBuffer:    64,
	}
}

// Monitor drives the scan/connect/notify lifecycle against an Adapter and
// publishes everything that happens on a single event stream. It holds at
// most one connection; a second connect attempt fails instead of
// replacing the first.
type Monitor struct {
	adapter Adapter
	opts    MonitorOptions

	events chan Event

	mu         sync.Mutex
	state      AdapterState
	enabled    bool
	scanCancel context.CancelFunc
	connecting bool
	connected  bool
	conn       Connection
	device     Device
	chars      []Characteristic
	closed     bool
}

// NewMonitor creates a monitor over the given adapter.
func NewMonitor(adapter Adapter, opts MonitorOptions) *Monitor {
	if opts.ScanWindow <= 0 {
		opts.ScanWindow = 10 * time.Second
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 15 * time.Second
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}
	return &Monitor{
		adapter: adapter,
		opts:    opts,
		events:  make(chan Event, opts.EventBuffer),
	}
}

// Events returns the monitor's event stream. The channel closes when the
// monitor does.
func (m *Monitor) Events() <-chan Event { return m.events }

// State returns the current adapter state.
func (m *Monitor) State() AdapterState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Preflight enables the BLE stack and establishes the initial adapter
// state. Safe to call more than once.
func (m *Monitor) Preflight() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureEnabledLocked()
}

func (m *Monitor) ensureEnabledLocked() error {
	if m.closed {
		return fmt.Errorf("ble: monitor closed")
	}
	if m.enabled {
		return nil
	}
	if err := m.adapter.Enable(); err != nil {
		m.setStateLocked(stateFromError(err))
		return fmt.Errorf("ble: enable adapter: %w", err)
	}
	m.enabled = true
	m.setStateLocked(StatePoweredOn)
	return nil
}

func (m *Monitor) setStateLocked(s AdapterState) {
	if m.state == s {
		return
	}
	m.state = s
	slog.Info("[BLE] adapter state", "state", s)
	m.emitLocked(Event{Kind: EventStateChanged, State: s})
}

// StartScan begins a scan session lasting ScanWindow. Discovered devices
// stream out as EventDeviceFound, deduplicated by address; peripherals
// advertising no name are dropped unless IncludeUnnamed is set. The
// session always ends with EventScanStopped, whether the window elapsed,
// StopScan was called, or the radio failed.
func (m *Monitor) StartScan() error {
	m.mu.Lock()
	if err := m.ensureEnabledLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.connected || m.connecting {
		m.mu.Unlock()
		return fmt.Errorf("ble: busy: disconnect before scanning")
	}
	if m.scanCancel != nil {
		m.mu.Unlock()
		return fmt.Errorf("ble: scan already running")
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.opts.ScanWindow)
	m.scanCancel = cancel
	m.mu.Unlock()

	slog.Info("[BLE] scan started", "window", m.opts.ScanWindow)
	go m.runScan(ctx, cancel)
	return nil
}

func (m *Monitor) runScan(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	var mu sync.Mutex
	seen := make(map[string]bool)

	err := m.adapter.Scan(ctx, func(d Device) {
		if d.Name == "" && !m.opts.IncludeUnnamed {
			return
		}
		mu.Lock()
		dup := seen[d.Address]
		seen[d.Address] = true
		mu.Unlock()
		if dup {
			return
		}
		m.emit(Event{Kind: EventDeviceFound, Device: d})
	})

	m.mu.Lock()
	m.scanCancel = nil
	if err != nil {
		// A powered-down radio is the one scan failure worth reflecting
		// in the adapter state; anything else stays a plain error.
		if s := stateFromError(err); s == StatePoweredOff {
			m.setStateLocked(s)
		}
		m.emitLocked(Event{Kind: EventError, Err: err})
	}
	m.emitLocked(Event{Kind: EventScanStopped})
	m.mu.Unlock()

	if err != nil {
		slog.Warn("[BLE] scan failed", "error", err)
	}
	slog.Info("[BLE] scan stopped", "found", len(seen))
}

// StopScan ends the scan session early. No-op when no scan is running.
func (m *Monitor) StopScan() {
	m.mu.Lock()
	cancel := m.scanCancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Connect dials the device, discovers its characteristics and subscribes
// to every one that accepts notifications. It returns the number of
// subscriptions established. A running scan is cancelled first; the radio
// can't do both well at once.
func (m *Monitor) Connect(dev Device) (int, error) {
	m.mu.Lock()
	if err := m.ensureEnabledLocked(); err != nil {
		m.mu.Unlock()
		return 0, err
	}
	if m.connected {
		addr := m.device.Address
		m.mu.Unlock()
		return 0, fmt.Errorf("ble: already connected to %s", addr)
	}
	if m.connecting {
		m.mu.Unlock()
		return 0, fmt.Errorf("ble: connect already in progress")
	}
	m.connecting = true
	cancel := m.scanCancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	ctx, cancelDial := context.WithTimeout(context.Background(), m.opts.ConnectTimeout)
	defer cancelDial()

	conn, err := m.adapter.Connect(ctx, dev.Address)
	if err != nil {
		m.clearConnecting()
		return 0, err
	}

	chars, err := conn.Characteristics()
	if err != nil {
		conn.Disconnect()
		m.clearConnecting()
		return 0, err
	}

	// Subscribe to everything that notifies. Most characteristics don't;
	// those subscriptions simply fail and are skipped.
	subs := 0
	for _, ch := range chars {
		ch := ch
		err := ch.Subscribe(func(data []byte) {
			m.handleNotification(dev, ch, data)
		})
		if err != nil {
			slog.Debug("[BLE] subscribe skipped", "characteristic", ch.UUID(), "error", err)
			continue
		}
		subs++
	}

	m.mu.Lock()
	m.connecting = false
	m.connected = true
	m.conn = conn
	m.device = dev
	m.chars = chars
	m.mu.Unlock()

	conn.OnDisconnect(func() {
		m.handleDisconnect("connection lost")
	})

	slog.Info("[BLE] connected", "address", dev.Address, "name", dev.Name,
		"characteristics", len(chars), "subscriptions", subs)
	return subs, nil
}

func (m *Monitor) clearConnecting() {
	m.mu.Lock()
	m.connecting = false
	m.mu.Unlock()
}

// handleNotification decodes one notification payload and publishes it.
// Runs on the platform stack's callback goroutine.
func (m *Monitor) handleNotification(dev Device, ch Characteristic, data []byte) {
	r, err := sensor.Decode(data)
	if err != nil {
		slog.Debug("[BLE] ignoring payload", "characteristic", ch.UUID(), "error", err)
		return
	}
	if r.Empty() {
		slog.Debug("[BLE] payload carries no known fields", "characteristic", ch.UUID())
		return
	}
	m.emit(Event{Kind: EventReading, Device: dev, Reading: r})
}

// ReadOnce reads the current value of every discovered characteristic and
// publishes the ones that decode as readings. It returns how many did.
func (m *Monitor) ReadOnce() (int, error) {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return 0, fmt.Errorf("ble: not connected")
	}
	dev := m.device
	chars := m.chars
	m.mu.Unlock()

	count := 0
	for _, ch := range chars {
		data, err := ch.Read()
		if err != nil {
			slog.Debug("[BLE] read skipped", "characteristic", ch.UUID(), "error", err)
			continue
		}
		r, err := sensor.Decode(data)
		if err != nil || r.Empty() {
			continue
		}
		m.emit(Event{Kind: EventReading, Device: dev, Reading: r})
		count++
	}
	return count, nil
}

// Disconnect tears down the active connection.
func (m *Monitor) Disconnect() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return fmt.Errorf("ble: not connected")
	}
	conn := m.conn
	m.mu.Unlock()

	if err := conn.Disconnect(); err != nil {
		slog.Warn("[BLE] disconnect", "error", err)
	}
	m.handleDisconnect("disconnected")
	return nil
}

// handleDisconnect clears connection state and publishes the event.
// Idempotent: the explicit Disconnect path and the stack's disconnect
// callback both land here.
func (m *Monitor) handleDisconnect(reason string) {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return
	}
	dev := m.device
	m.connected = false
	m.conn = nil
	m.chars = nil
	m.device = Device{}
	m.emitLocked(Event{Kind: EventDisconnected, Device: dev})
	m.mu.Unlock()

	slog.Info("[BLE] "+reason, "address", dev.Address)
}

// Close stops any scan, drops the connection and closes the event stream.
func (m *Monitor) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	cancel := m.scanCancel
	conn := m.conn
	m.connected = false
	m.conn = nil
	m.chars = nil
	m.closed = true
	close(m.events)
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Disconnect()
	}
	return nil
}

// emit publishes an event, dropping the oldest pending one if the buffer
// is full so the monitor never blocks on a slow consumer.
func (m *Monitor) emit(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitLocked(ev)
}

func (m *Monitor) emitLocked(ev Event) {
	if m.closed {
		return
	}
	for {
		select {
		case m.events <- ev:
			return
		default:
		}
		select {
		case <-m.events:
			slog.Warn("[BLE] event buffer full, dropping oldest")
		default:
		}
	}
}
