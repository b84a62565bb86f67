package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published by the visualizer
const (
	TopicFrames = "frames" // per-tick render snapshots
	TopicFocus  = "focus"  // hover and pin changes
	TopicGraph  = "graph"  // rebuilds and source reloads
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // e.g. "frames", "focus"
	Type    string          `json:"type"`    // e.g. "frame", "hover", "pin", "rebuilt"
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // per-topic sequence number
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// ID uniquely identifies the subscription in logs
	ID() string

	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic.
	// Context cancellation will close the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data any) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// FocusChange is the payload of focus topic events
type FocusChange struct {
	Hovered string `json:"hovered"`
	Pinned  string `json:"pinned"`
	Focus   string `json:"focus"`
}

// GraphStatus is the payload of graph topic events
type GraphStatus struct {
	Nodes      int    `json:"nodes"`
	Edges      int    `json:"edges"`
	Categories int    `json:"categories"`
	Cycles     int    `json:"cycles"`
	Reason     string `json:"reason"` // "startup", "filters", "manifest", "request"
}
