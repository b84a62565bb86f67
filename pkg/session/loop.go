package session

import (
	"context"
	"errors"
	"time"

	"github.com/ritzau/spyglass/pkg/interact"
	"github.com/ritzau/spyglass/pkg/logging"
	"github.com/ritzau/spyglass/pkg/pubsub"
)

// ErrStopped is returned by Do once the runner's loop has exited
var ErrStopped = errors.New("frame loop stopped")

// Runner drives a session from a single goroutine. Commands submitted with
// Do are applied before the next layout step, so input always lands in the
// frame it arrived in.
type Runner struct {
	s        *Session
	pub      pubsub.Publisher
	interval time.Duration
	cmds     chan command
	done     chan struct{}
}

type command struct {
	fn    func(*Session)
	reply chan struct{}
}

// NewRunner creates a runner ticking at hz frames per second. Frames, focus
// changes and rebuilds are published on pub when it is non-nil.
func NewRunner(s *Session, pub pubsub.Publisher, hz int) *Runner {
	if hz <= 0 {
		hz = 60
	}
	r := &Runner{
		s:        s,
		pub:      pub,
		interval: time.Second / time.Duration(hz),
		cmds:     make(chan command, 64),
		done:     make(chan struct{}),
	}
	if pub != nil {
		s.SetObserver(publishingObserver{pub: pub})
	}
	return r
}

// Do runs fn on the loop goroutine and waits for it to finish
func (r *Runner) Do(ctx context.Context, fn func(*Session)) error {
	cmd := command{fn: fn, reply: make(chan struct{})}
	select {
	case r.cmds <- cmd:
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-cmd.reply:
		return nil
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run ticks until ctx is cancelled
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logging.Info("frame loop started", "interval", r.interval)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			logging.Info("frame loop stopped", "frames", r.s.Frame())
			return ctx.Err()
		case cmd := <-r.cmds:
			r.apply(cmd)
		case now := <-ticker.C:
			r.drain()
			stats := r.s.Tick(now.Sub(last).Seconds())
			last = now
			if stats.Scrubbed > 0 {
				logging.Debug("scrubbed nodes this frame", "frame", r.s.Frame(), "count", stats.Scrubbed)
			}
			r.publishFrame()
		}
	}
}

// drain applies every queued command without blocking
func (r *Runner) drain() {
	for {
		select {
		case cmd := <-r.cmds:
			r.apply(cmd)
		default:
			return
		}
	}
}

func (r *Runner) apply(cmd command) {
	cmd.fn(r.s)
	close(cmd.reply)
}

// subscriberCounter is implemented by publishers that can report whether
// anyone is listening
type subscriberCounter interface {
	Subscribers(topic string) int
}

func (r *Runner) publishFrame() {
	if r.pub == nil {
		return
	}
	if c, ok := r.pub.(subscriberCounter); ok && c.Subscribers(pubsub.TopicFrames) == 0 {
		return
	}
	if err := r.pub.Publish(pubsub.TopicFrames, "frame", r.s.Snapshot()); err != nil && !errors.Is(err, pubsub.ErrClosed) {
		logging.Warn("failed to publish frame", "error", err)
	}
}

// publishingObserver forwards session notifications to pub/sub topics
type publishingObserver struct {
	pub pubsub.Publisher
}

func (o publishingObserver) FocusChanged(change interact.Change, hovered, pinned string) {
	focus := pinned
	if focus == "" {
		focus = hovered
	}
	payload := pubsub.FocusChange{Hovered: hovered, Pinned: pinned, Focus: focus}
	if err := o.pub.Publish(pubsub.TopicFocus, change.Kind.String(), payload); err != nil && !errors.Is(err, pubsub.ErrClosed) {
		logging.Warn("failed to publish focus change", "error", err)
	}
}

func (o publishingObserver) GraphRebuilt(summary Summary) {
	payload := pubsub.GraphStatus{
		Nodes:      summary.Nodes,
		Edges:      summary.Edges,
		Categories: summary.Categories,
		Cycles:     summary.Cycles,
		Reason:     summary.Reason,
	}
	if err := o.pub.Publish(pubsub.TopicGraph, "rebuilt", payload); err != nil && !errors.Is(err, pubsub.ErrClosed) {
		logging.Warn("failed to publish rebuild", "error", err)
	}
}
