package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/blesense/blesense/internal/ble"
	"github.com/blesense/blesense/internal/config"
	"github.com/blesense/blesense/internal/forward"
	"github.com/blesense/blesense/internal/logger"
	"github.com/blesense/blesense/internal/tui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/blesense/config.yaml)")
	broker := flag.String("broker", "", "MQTT broker URL; overrides config and enables forwarding")
	window := flag.Int("window", 0, "scan window in seconds; overrides config")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if *broker != "" {
		cfg.MQTT.Enabled = true
		cfg.MQTT.Broker = *broker
	}
	if *window > 0 {
		cfg.Scan.WindowSeconds = *window
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	// Logging goes wherever the config says; the terminal belongs to the UI.
	slogger, closeLog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer closeLog()
	slog.SetDefault(slogger)

	mon := ble.NewMonitor(ble.NewTinygoAdapter(), ble.MonitorOptions{
		ScanWindow:     cfg.ScanWindow(),
		ConnectTimeout: cfg.ConnectTimeout(),
		IncludeUnnamed: cfg.Scan.IncludeUnnamed,
	})

	// A failed preflight is not fatal: the UI shows the adapter state and
	// scanning can be retried once the radio comes back.
	if err := mon.Preflight(); err != nil {
		slog.Warn("[BLE] preflight", "error", err)
	}

	var pub *forward.Publisher
	if cfg.MQTT.Enabled {
		pub = forward.New(forward.Options{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			QoS:         cfg.MQTT.QoS,
		})
		if err := pub.Connect(); err != nil {
			log.Fatalf("mqtt: %v", err)
		}
	}

	p := tea.NewProgram(tui.New(mon), tea.WithAltScreen())

	// Fan monitor events out to the forwarder and the UI. The goroutine
	// ends when Close shuts the event stream.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range mon.Events() {
			if pub != nil && ev.Kind == ble.EventReading {
				pub.Publish(ev.Device, ev.Reading)
			}
			p.Send(tui.MonitorEventMsg{Event: ev})
		}
	}()

	_, runErr := p.Run()

	mon.Close()
	<-done
	if pub != nil {
		pub.Close()
	}

	if runErr != nil {
		log.Fatalf("ui: %v", runErr)
	}
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	// Try default config path
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, nil
	}

	// First run: leave a default config behind for the user to edit.
	if written, err := config.WriteDefault(); err == nil && written != "" {
		log.Printf("Wrote default config to %s", written)
	}
	return config.Default(), nil
}
