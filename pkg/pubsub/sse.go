package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/ritzau/spyglass/pkg/logging"
)

// ErrClosed is returned once the publisher has been shut down
var ErrClosed = errors.New("publisher is closed")

// subscriberBuffer is the per-subscription channel capacity
const subscriberBuffer = 64

// TopicConfig configures buffering behavior for a topic
type TopicConfig struct {
	BufferSize int  // Number of events to keep for replay (0 = none)
	ReplayAll  bool // Replay the whole buffer instead of just the last event

	// LatestOnly makes slow subscribers skip stale events: when a
	// subscriber's channel is full the oldest queued event is discarded.
	// Suited to frame streams where only the newest state matters.
	LatestOnly bool
}

// SSEPublisher implements Publisher for Server-Sent Events clients
type SSEPublisher struct {
	mu            sync.RWMutex
	subscriptions map[string]map[*sseSubscription]bool // topic -> set of subscriptions
	version       map[string]int                       // topic -> version counter
	eventBuffer   map[string][]Event                   // topic -> recent events
	topicConfig   map[string]TopicConfig
	closed        bool
}

// NewSSEPublisher creates a publisher with the visualizer topics configured:
// frames and focus replay their latest event, graph replays its history.
func NewSSEPublisher() *SSEPublisher {
	p := &SSEPublisher{
		subscriptions: make(map[string]map[*sseSubscription]bool),
		version:       make(map[string]int),
		eventBuffer:   make(map[string][]Event),
		topicConfig:   make(map[string]TopicConfig),
	}
	p.topicConfig[TopicFrames] = TopicConfig{BufferSize: 1, LatestOnly: true}
	p.topicConfig[TopicFocus] = TopicConfig{BufferSize: 1}
	p.topicConfig[TopicGraph] = TopicConfig{BufferSize: 8, ReplayAll: true}
	return p
}

// ConfigureTopic sets buffering configuration for a topic
func (p *SSEPublisher) ConfigureTopic(topic string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topicConfig[topic] = config
}

// Subscribe creates a new subscription to a topic and replays buffered
// events according to the topic configuration
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}

	sub := &sseSubscription{
		id:        uuid.NewString(),
		topic:     topic,
		events:    make(chan Event, subscriberBuffer),
		publisher: p,
	}
	if p.subscriptions[topic] == nil {
		p.subscriptions[topic] = make(map[*sseSubscription]bool)
	}
	p.subscriptions[topic][sub] = true

	config := p.topicConfig[topic]
	replay := p.eventBuffer[topic]
	if !config.ReplayAll && len(replay) > 1 {
		replay = replay[len(replay)-1:]
	}
	// Queue replay under the lock so it cannot interleave with a publish
	for _, event := range replay {
		select {
		case sub.events <- event:
		default:
			logging.Warn("could not replay event to new subscriber", "topic", topic, "subscription", sub.id)
		}
	}
	p.mu.Unlock()

	logging.Debug("subscribed", "topic", topic, "subscription", sub.id, "replayed", len(replay))

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish sends an event to all subscribers of a topic
func (p *SSEPublisher) Publish(topic string, eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	p.version[topic]++
	event := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    jsonData,
		Version: p.version[topic],
	}

	config := p.topicConfig[topic]
	if config.BufferSize > 0 {
		buffer := append(p.eventBuffer[topic], event)
		if len(buffer) > config.BufferSize {
			buffer = buffer[len(buffer)-config.BufferSize:]
		}
		p.eventBuffer[topic] = buffer
	}

	for sub := range p.subscriptions[topic] {
		sub.deliver(event, config.LatestOnly)
	}
	return nil
}

// Subscribers returns the number of live subscriptions on a topic
func (p *SSEPublisher) Subscribers(topic string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscriptions[topic])
}

// Close shuts down the publisher and all subscriptions
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, subs := range p.subscriptions {
		for sub := range subs {
			close(sub.events)
		}
	}
	p.subscriptions = make(map[string]map[*sseSubscription]bool)
	return nil
}

// unsubscribe removes a subscription (called by subscription.Close())
func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if subs := p.subscriptions[sub.topic]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(p.subscriptions, sub.topic)
		}
	}
}

// sseSubscription implements Subscription
type sseSubscription struct {
	id        string
	topic     string
	events    chan Event
	publisher *SSEPublisher
	closed    bool
	mu        sync.Mutex
}

// deliver never blocks. Must be called with the publisher lock held, which
// makes it the only sender on the channel.
func (s *sseSubscription) deliver(event Event, latestOnly bool) {
	select {
	case s.events <- event:
		return
	default:
	}

	if !latestOnly {
		logging.Warn("subscription channel full, dropping event", "topic", s.topic, "subscription", s.id)
		return
	}

	// Make room by discarding the oldest queued event
	select {
	case <-s.events:
	default:
	}
	select {
	case s.events <- event:
	default:
	}
}

func (s *sseSubscription) ID() string { return s.id }

func (s *sseSubscription) Topic() string { return s.topic }

func (s *sseSubscription) Events() <-chan Event { return s.events }

// Close detaches the subscription from the publisher
func (s *sseSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.publisher.unsubscribe(s)
	return nil
}

// WriteSSE writes an event to an SSE response writer.
// Format: "event: <type>\ndata: {json}\n\n"
func WriteSSE(w io.Writer, event Event) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, jsonData)
	return err
}
