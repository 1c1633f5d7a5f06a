// internal/notifiers/dispatcher.go
package notifiers

import (
	"context"
	"sync"
	"time"

	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/common/metrics"
	"blueprint-leads/internal/lead"
)

// Event names used for logging and metrics labels.
const (
	EventLeadCreated     = "lead_created"
	EventFollowUpFlagged = "follow_up_flagged"
)

// Notifier is a downstream collaborator notified about intake events.
// Implementations must be safe for concurrent use; the dispatcher calls
// them from their own goroutines.
type Notifier interface {
	Name() string
	LeadCreated(ctx context.Context, l *lead.Lead) error
	FollowUpFlagged(ctx context.Context, handle string) error
}

// Dispatcher fans intake events out to all registered notifiers.
// Every call is fire-and-forget: one goroutine per notifier per event,
// a per-call timeout, and exactly one retry after a fixed delay.
// Failures are logged and counted, never surfaced to the caller.
type Dispatcher struct {
	notifiers  []Notifier
	timeout    time.Duration
	retryDelay time.Duration
	log        logger.Logger

	wg sync.WaitGroup
}

// NewDispatcher builds a dispatcher over the given notifiers.
func NewDispatcher(log logger.Logger, timeout, retryDelay time.Duration, ns ...Notifier) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		notifiers:  ns,
		timeout:    timeout,
		retryDelay: retryDelay,
		log:        log,
	}
}

// DispatchLeadCreated notifies every collaborator about a freshly stored lead.
// Returns immediately; delivery happens in the background.
func (d *Dispatcher) DispatchLeadCreated(l *lead.Lead) {
	for _, n := range d.notifiers {
		n := n
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(n, EventLeadCreated, func(ctx context.Context) error {
				return n.LeadCreated(ctx, l)
			})
		}()
	}
}

// DispatchFollowUpFlagged notifies every collaborator that a contact asked
// to be followed up.
func (d *Dispatcher) DispatchFollowUpFlagged(handle string) {
	for _, n := range d.notifiers {
		n := n
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(n, EventFollowUpFlagged, func(ctx context.Context) error {
				return n.FollowUpFlagged(ctx, handle)
			})
		}()
	}
}

// Wait blocks until all in-flight deliveries finish. Used by graceful
// shutdown and tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// deliver runs one notifier call with a timeout, retrying once on failure.
func (d *Dispatcher) deliver(n Notifier, event string, call func(ctx context.Context) error) {
	err := d.attempt(n, event, call)
	if err == nil {
		return
	}

	d.log.Warn("Notifier call failed, retrying", map[string]interface{}{
		"notifier": n.Name(),
		"event":    event,
		"error":    err.Error(),
	})

	time.Sleep(d.retryDelay)

	if err = d.attempt(n, event, call); err == nil {
		return
	}

	metrics.NotifierFailures.WithLabelValues(n.Name(), event).Inc()
	d.log.Error("Notifier call failed after retry", map[string]interface{}{
		"notifier": n.Name(),
		"event":    event,
		"error":    err.Error(),
	})
}

func (d *Dispatcher) attempt(n Notifier, event string, call func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	err := call(ctx)
	metrics.NotifierDuration.WithLabelValues(n.Name(), event).Observe(time.Since(start).Seconds())
	return err
}
