// Package forward publishes decoded sensor readings to an MQTT broker so
// other systems can consume what the monitor sees. Forwarding is best
// effort: failures are logged and never surface in the UI.
package forward

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/blesense/blesense/internal/ble"
	"github.com/blesense/blesense/internal/sensor"
)

const publishTimeout = 2 * time.Second

// Options configures the broker connection.
type Options struct {
	Broker      string // e.g. "tcp://localhost:1883"
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// Publisher forwards readings to <topic-prefix>/<device-address>.
type Publisher struct {
	opts   Options
	client mqtt.Client
}

// New creates a publisher. Call Connect before publishing.
func New(opts Options) *Publisher {
	return &Publisher{opts: opts}
}

// Connect dials the broker. It fails fast when the broker is down so a
// misconfigured setup is caught at startup; once connected, lost links
// reconnect automatically.
func (p *Publisher) Connect() error {
	mqttOpts := mqtt.NewClientOptions().
		AddBroker(p.opts.Broker).
		SetClientID(p.opts.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(false)

	if p.opts.Username != "" {
		mqttOpts.SetUsername(p.opts.Username)
		mqttOpts.SetPassword(p.opts.Password)
	}

	mqttOpts.OnConnect = func(_ mqtt.Client) {
		slog.Info("[MQTT] connected", "broker", p.opts.Broker)
	}
	mqttOpts.OnConnectionLost = func(_ mqtt.Client, err error) {
		slog.Warn("[MQTT] connection lost", "error", err)
	}

	p.client = mqtt.NewClient(mqttOpts)
	if tk := p.client.Connect(); tk.Wait() && tk.Error() != nil {
		return fmt.Errorf("forward: connect %s: %w", p.opts.Broker, tk.Error())
	}
	return nil
}

// Publish forwards one reading. Errors are logged, not returned.
func (p *Publisher) Publish(dev ble.Device, r sensor.Reading) {
	payload, err := encode(dev, r, time.Now().UTC())
	if err != nil {
		slog.Warn("[MQTT] encode reading", "error", err)
		return
	}

	topic := topicFor(p.opts.TopicPrefix, dev.Address)
	if tk := p.client.Publish(topic, p.opts.QoS, false, payload); tk.WaitTimeout(publishTimeout) && tk.Error() != nil {
		slog.Warn("[MQTT] publish failed", "topic", topic, "error", tk.Error())
	}
}

// Close disconnects from the broker, letting in-flight messages drain.
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(500)
	}
}

// message is the JSON payload published for one reading.
type message struct {
	Address     string    `json:"address"`
	Name        string    `json:"name,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty"`
	ReceivedAt  time.Time `json:"received_at"`
}

func topicFor(prefix, address string) string {
	return prefix + "/" + address
}

func encode(dev ble.Device, r sensor.Reading, at time.Time) ([]byte, error) {
	return json.Marshal(message{
		Address:     dev.Address,
		Name:        dev.Name,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		ReceivedAt:  at,
	})
}
