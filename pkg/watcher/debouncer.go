package watcher

import (
	"context"
	"time"

	"github.com/ritzau/spyglass/pkg/logging"
)

// Debouncer batches rapid change events. A batch is flushed once no event
// has arrived for quietPeriod, or maxWait after its first event, whichever
// comes first. Flushed events are merged per ChangeType.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 4),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	quiet := time.NewTimer(d.quietPeriod)
	quiet.Stop()
	deadline := time.NewTimer(d.maxWait)
	deadline.Stop()
	defer quiet.Stop()
	defer deadline.Stop()

	pending := make(map[ChangeType][]string)
	order := make([]ChangeType, 0, 2)
	count := 0

	flush := func() {
		quiet.Stop()
		deadline.Stop()
		if count == 0 {
			return
		}
		logging.Debug("flushing accumulated changes", "count", count)
		for _, t := range order {
			select {
			case d.output <- ChangeEvent{Type: t, Paths: pending[t], Timestamp: time.Now()}:
			case <-ctx.Done():
			}
		}
		pending = make(map[ChangeType][]string)
		order = order[:0]
		count = 0
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			if _, seen := pending[event.Type]; !seen {
				order = append(order, event.Type)
			}
			pending[event.Type] = append(pending[event.Type], event.Paths...)
			if count == 0 {
				deadline.Reset(d.maxWait)
			}
			count++
			quiet.Reset(d.quietPeriod)

		case <-quiet.C:
			flush()

		case <-deadline.C:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
