package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"alice-hq/hassil-parser/pkg/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ClientFactory creates the MQTT client for one publish.
type ClientFactory func(opts *mqtt.ClientOptions) mqtt.Client

// MQTTPublisher publishes events to an MQTT broker. Each publish opens a
// connection, sends one message and disconnects.
type MQTTPublisher struct {
	broker   *url.URL
	username string
	password string
	clientID string
	topic    string
	qos      byte
	timeout  time.Duration
	factory  ClientFactory
	logger   *slog.Logger
}

// MQTTOption configures an MQTTPublisher.
type MQTTOption func(*MQTTPublisher)

// WithClientFactory replaces the paho client constructor.
func WithClientFactory(factory ClientFactory) MQTTOption {
	return func(p *MQTTPublisher) {
		if factory != nil {
			p.factory = factory
		}
	}
}

// NewMQTTPublisher creates a publisher for cfg.MQTT.URL. Credentials in
// the URL are used for authentication and stripped from the broker
// address.
func NewMQTTPublisher(cfg *config.EventsConfig, logger *slog.Logger, opts ...MQTTOption) (*MQTTPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	u, err := url.Parse(cfg.MQTT.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT broker URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid MQTT broker URL %q: missing host", u.Redacted())
	}

	p := &MQTTPublisher{
		clientID: cfg.MQTT.ClientID,
		topic:    cfg.Topic,
		qos:      byte(cfg.MQTT.QoS),
		timeout:  cfg.MQTT.Timeout,
		factory:  mqtt.NewClient,
		logger:   logger.With("component", "events", "sink", "mqtt"),
	}
	if p.clientID == "" {
		p.clientID = config.DefaultMQTTClientID
	}
	if p.timeout <= 0 {
		p.timeout = config.DefaultMQTTTimeout
	}
	if u.User != nil {
		p.username = u.User.Username()
		p.password, _ = u.User.Password()
	}

	broker := *u
	broker.User = nil
	if broker.Port() == "" {
		if port := defaultMQTTPort(broker.Scheme); port != "" {
			broker.Host = net.JoinHostPort(broker.Hostname(), port)
		}
	}
	p.broker = &broker

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Broker returns the broker address without credentials.
func (p *MQTTPublisher) Broker() string {
	return p.broker.String()
}

// Publish implements Publisher. The payload is the event without its
// topic and timestamp, e.g. {"event":"templates_updated","source":"github"}.
func (p *MQTTPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	topic := event.Topic
	if topic == "" {
		topic = p.topic
	}

	payload, err := json.Marshal(mqttPayload{
		Event:  event.Event,
		Source: event.Source,
		RunID:  event.RunID,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	client := p.factory(p.clientOptions())
	if err := p.wait(ctx, client.Connect()); err != nil {
		return fmt.Errorf("connect to MQTT broker %s: %w", p.Broker(), err)
	}
	defer client.Disconnect(250)

	if err := p.wait(ctx, client.Publish(topic, p.qos, false, payload)); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.logger.InfoContext(ctx, "event published",
		"topic", topic,
		"event", event.Event,
		"broker", p.Broker(),
	)
	return nil
}

func (p *MQTTPublisher) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(p.broker.String()).
		SetClientID(p.clientID).
		SetProtocolVersion(4).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectTimeout(p.timeout).
		SetWriteTimeout(p.timeout).
		SetKeepAlive(30 * time.Second)
	if p.username != "" {
		opts.SetUsername(p.username)
		opts.SetPassword(p.password)
	}
	return opts
}

// wait blocks until the token completes, the timeout elapses or ctx is
// done.
func (p *MQTTPublisher) wait(ctx context.Context, token mqtt.Token) error {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return fmt.Errorf("timed out after %s", p.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

type mqttPayload struct {
	Event  string `json:"event"`
	Source string `json:"source"`
	RunID  string `json:"run_id,omitempty"`
}

func defaultMQTTPort(scheme string) string {
	switch scheme {
	case "tcp", "mqtt":
		return "1883"
	case "ssl", "tls", "mqtts":
		return "8883"
	}
	return ""
}
