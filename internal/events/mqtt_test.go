package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ecotrack/internal/carbon"
	"github.com/rshade/ecotrack/internal/config"
	"github.com/rshade/ecotrack/internal/store"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newFakeToken(err error, complete bool) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	if complete {
		close(t.done)
	}
	return t
}

func (t *fakeToken) Wait() bool                       { <-t.done; return true }
func (t *fakeToken) WaitTimeout(d time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}            { return t.done }
func (t *fakeToken) Error() error                     { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient records publishes. Methods not overridden panic via the nil
// embedded interface.
type fakeClient struct {
	mqtt.Client

	mu           sync.Mutex
	messages     []published
	token        *fakeToken
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return c.token
}

func (c *fakeClient) Disconnect(uint) {
	c.disconnected = true
}

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{TopicPrefix: "ecotrack/estimates", QoS: 1, ConnectTimeout: 50 * time.Millisecond}
}

func testRecord() store.Record {
	return store.Record{
		ID:            "rec-1",
		UserID:        "user-42",
		CreatedAt:     time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		FactorVersion: carbon.DefaultFactorVersion,
		Convention:    carbon.ConventionMonthly,
		Breakdown:     carbon.Breakdown{Transport: 12.5, Total: 12.5},
	}
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeClient{token: newFakeToken(nil, true)}
	p := newMQTTPublisher(client, testConfig(), zerolog.Nop())

	require.NoError(t, p.Publish(context.Background(), testRecord()))
	require.Len(t, client.messages, 1)

	msg := client.messages[0]
	assert.Equal(t, "ecotrack/estimates/user-42", msg.topic)
	assert.Equal(t, byte(1), msg.qos)

	var got store.Record
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, 12.5, got.Breakdown.Total)

	p.Close()
	assert.True(t, client.disconnected)
}

func TestMQTTPublisher_BrokerError(t *testing.T) {
	client := &fakeClient{token: newFakeToken(errors.New("not authorized"), true)}
	p := newMQTTPublisher(client, testConfig(), zerolog.Nop())

	err := p.Publish(context.Background(), testRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authorized")
}

func TestMQTTPublisher_Timeout(t *testing.T) {
	client := &fakeClient{token: newFakeToken(nil, false)}
	p := newMQTTPublisher(client, testConfig(), zerolog.Nop())

	err := p.Publish(context.Background(), testRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestMQTTPublisher_ContextCancelled(t *testing.T) {
	client := &fakeClient{token: newFakeToken(nil, false)}
	cfg := testConfig()
	cfg.ConnectTimeout = time.Minute
	p := newMQTTPublisher(client, cfg, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Publish(ctx, testRecord())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTopic(t *testing.T) {
	tests := []struct {
		prefix string
		user   string
		want   string
	}{
		{"ecotrack/estimates", "alice", "ecotrack/estimates/alice"},
		{"ecotrack/estimates/", "alice", "ecotrack/estimates/alice"},
		{"eco", "a/b+c#", "eco/a_b_c_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Topic(tt.prefix, tt.user))
	}
}

func TestOpen_Disabled(t *testing.T) {
	p, err := Open(config.MQTTConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), testRecord()))
	p.Close()
}
