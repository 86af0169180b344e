// Package events publishes computed estimates to downstream consumers.
package events

import (
	"context"
	"strings"

	"github.com/rshade/ecotrack/internal/store"
)

// Publisher announces newly stored estimate records.
type Publisher interface {
	Publish(ctx context.Context, r store.Record) error
	Close()
}

// NopPublisher discards every record. It is used when publication is disabled.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, store.Record) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() {}

var topicReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_")

// Topic returns the topic for userID's estimates: "<prefix>/<user_id>".
// MQTT wildcard and level separator characters in the user ID are replaced
// with underscores.
func Topic(prefix, userID string) string {
	prefix = strings.TrimRight(prefix, "/")
	return prefix + "/" + topicReplacer.Replace(userID)
}
