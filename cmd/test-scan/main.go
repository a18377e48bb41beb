// Command test-scan is a manual test for BLE discovery without the TUI.
// Run it near some peripherals to see what the radio reports.
// Press Ctrl+C to exit early.
//
// Usage:
//
//	go run ./cmd/test-scan [--window 10] [--unnamed]
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blesense/blesense/internal/ble"
)

func main() {
	window := flag.Int("window", 10, "scan window in seconds")
	unnamed := flag.Bool("unnamed", false, "include devices that advertise no name")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	mon := ble.NewMonitor(ble.NewTinygoAdapter(), ble.MonitorOptions{
		ScanWindow:     time.Duration(*window) * time.Second,
		IncludeUnnamed: *unnamed,
	})
	defer mon.Close()

	if err := mon.Preflight(); err != nil {
		log.Fatalf("adapter: %v", err)
	}

	// Handle Ctrl+C
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("\nStopping scan...")
		mon.StopScan()
	}()

	fmt.Printf("Scanning for %ds...\n", *window)
	if err := mon.StartScan(); err != nil {
		log.Fatalf("scan: %v", err)
	}

	count := 0
	for ev := range mon.Events() {
		switch ev.Kind {
		case ble.EventDeviceFound:
			count++
			name := ev.Device.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Printf("  %-20s %4d dBm  %s\n", ev.Device.Address, ev.Device.RSSI, name)
		case ble.EventError:
			fmt.Fprintf(os.Stderr, "scan error: %v\n", ev.Err)
		case ble.EventScanStopped:
			fmt.Printf("Done. %d device(s) found.\n", count)
			return
		}
	}
}
