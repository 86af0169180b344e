package events

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rshade/ecotrack/internal/config"
	"github.com/rshade/ecotrack/internal/store"
)

// disconnectQuiesceMs is how long Close waits for in-flight work.
const disconnectQuiesceMs = 250

// MQTTPublisher publishes each record as JSON to "<prefix>/<user_id>".
type MQTTPublisher struct {
	client  mqtt.Client
	prefix  string
	qos     byte
	timeout time.Duration
	logger  zerolog.Logger
}

var _ Publisher = (*MQTTPublisher)(nil)

// NewMQTTPublisher connects to the configured broker. The client reconnects
// automatically after the initial connection succeeds.
func NewMQTTPublisher(cfg config.MQTTConfig, logger zerolog.Logger) (*MQTTPublisher, error) {
	logger = logger.With().Str("component", "events").Str("broker", cfg.Broker).Logger()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info().Msg("MQTT connection established")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn().Err(err).Msg("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return newMQTTPublisher(client, cfg, logger), nil
}

func newMQTTPublisher(client mqtt.Client, cfg config.MQTTConfig, logger zerolog.Logger) *MQTTPublisher {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MQTTPublisher{
		client:  client,
		prefix:  cfg.TopicPrefix,
		qos:     cfg.QoS,
		timeout: timeout,
		logger:  logger,
	}
}

// Publish implements Publisher. It waits for the broker acknowledgement
// required by the QoS level, the publish timeout, or ctx, whichever is first.
func (p *MQTTPublisher) Publish(ctx context.Context, r store.Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode estimate %s: %w", r.ID, err)
	}

	topic := Topic(p.prefix, r.UserID)
	token := p.client.Publish(topic, p.qos, false, payload)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish estimate %s to %s: %w", r.ID, topic, err)
		}
	case <-timer.C:
		return fmt.Errorf("publish estimate %s to %s: timed out after %s", r.ID, topic, p.timeout)
	case <-ctx.Done():
		return fmt.Errorf("publish estimate %s to %s: %w", r.ID, topic, ctx.Err())
	}

	p.logger.Debug().Str("topic", topic).Str("estimate_id", r.ID).Msg("estimate published")
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(disconnectQuiesceMs)
	p.logger.Info().Msg("MQTT client disconnected")
}

// Open returns an MQTT publisher when cfg.Enabled, otherwise a NopPublisher.
func Open(cfg config.MQTTConfig, logger zerolog.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return NopPublisher{}, nil
	}
	return NewMQTTPublisher(cfg, logger)
}
