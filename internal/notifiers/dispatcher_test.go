// internal/notifiers/dispatcher_test.go
package notifiers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/lead"
)

type countingNotifier struct {
	name     string
	failures int32
	calls    int32
	events   chan string
}

func (c *countingNotifier) Name() string { return c.name }

func (c *countingNotifier) call(event string) error {
	n := atomic.AddInt32(&c.calls, 1)
	if c.events != nil {
		c.events <- event
	}
	if n <= atomic.LoadInt32(&c.failures) {
		return errors.New("downstream unavailable")
	}
	return nil
}

func (c *countingNotifier) LeadCreated(_ context.Context, _ *lead.Lead) error {
	return c.call(EventLeadCreated)
}

func (c *countingNotifier) FollowUpFlagged(_ context.Context, _ string) error {
	return c.call(EventFollowUpFlagged)
}

func TestDispatcher_LeadCreatedReachesAllNotifiers(t *testing.T) {
	a := &countingNotifier{name: "a"}
	b := &countingNotifier{name: "b"}
	d := NewDispatcher(logger.NewTestLogger(t), time.Second, 0, a, b)

	d.DispatchLeadCreated(&lead.Lead{ID: "PT-1-ABCDEF"})
	d.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&a.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&b.calls))
}

func TestDispatcher_RetriesExactlyOnce(t *testing.T) {
	n := &countingNotifier{name: "flaky", failures: 1}
	d := NewDispatcher(logger.NewTestLogger(t), time.Second, time.Millisecond, n)

	d.DispatchFollowUpFlagged("+6281234567890")
	d.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&n.calls))
}

func TestDispatcher_GivesUpAfterSecondFailure(t *testing.T) {
	n := &countingNotifier{name: "down", failures: 10}
	d := NewDispatcher(logger.NewTestLogger(t), time.Second, time.Millisecond, n)

	d.DispatchLeadCreated(&lead.Lead{ID: "PT-2-ABCDEF"})
	d.Wait()

	// Two attempts total, never a third.
	assert.Equal(t, int32(2), atomic.LoadInt32(&n.calls))
}

func TestDispatcher_DispatchDoesNotBlock(t *testing.T) {
	slow := &countingNotifier{name: "slow", events: make(chan string)}
	d := NewDispatcher(logger.NewTestLogger(t), time.Second, 0, slow)

	done := make(chan struct{})
	go func() {
		d.DispatchLeadCreated(&lead.Lead{ID: "PT-3-ABCDEF"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("dispatch blocked on a slow notifier")
	}

	// Unblock the notifier so Wait can drain.
	<-slow.events
	d.Wait()
}

func TestDispatcher_TimeoutCancelsContext(t *testing.T) {
	blocked := notifierFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	d := NewDispatcher(logger.NewTestLogger(t), 20*time.Millisecond, time.Millisecond, blocked)

	start := time.Now()
	d.DispatchFollowUpFlagged("+6281234567890")
	d.Wait()

	assert.Less(t, time.Since(start), time.Second)
}

type notifierFunc func(ctx context.Context) error

func (f notifierFunc) Name() string { return "func" }

func (f notifierFunc) LeadCreated(ctx context.Context, _ *lead.Lead) error {
	return f(ctx)
}

func (f notifierFunc) FollowUpFlagged(ctx context.Context, _ string) error {
	return f(ctx)
}
