package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/mrz1836/deeplink/internal/wallet"
)

// attemptState is the lifecycle of an Attempt.
type attemptState int

const (
	attemptPending attemptState = iota
	attemptFired
	attemptCancelled
)

// Attempt is an in-flight deeplink navigation with a scheduled fallback
// to the wallet website. The fallback runs at most once and never after
// Cancel returns true.
type Attempt struct {
	// Wallet is the wallet the deeplink targets.
	Wallet wallet.Name
	// Action is the dispatched action.
	Action wallet.Action
	// URL is the deeplink the page was navigated to.
	URL string
	// Fallback is the website opened when the attempt expires.
	Fallback string
	// Deadline is when the fallback fires.
	Deadline time.Time

	mu     sync.Mutex
	state  attemptState
	timer  *clock.Timer
	done   chan struct{}
	err    error
	onDone func(*Attempt, attemptState)
}

func newAttempt(name wallet.Name, action wallet.Action, url, fallback string, onDone func(*Attempt, attemptState)) *Attempt {
	return &Attempt{
		Wallet:   name,
		Action:   action,
		URL:      url,
		Fallback: fallback,
		done:     make(chan struct{}),
		onDone:   onDone,
	}
}

// schedule arms the fallback timer unless the attempt was already cancelled.
func (a *Attempt) schedule(c clock.Clock, delay time.Duration, fire func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != attemptPending {
		return
	}
	a.Deadline = c.Now().Add(delay)
	a.timer = c.AfterFunc(delay, fire)
}

// Cancel stops the fallback. It reports whether the attempt was still
// pending; cancelling a fired or cancelled attempt is a no-op.
func (a *Attempt) Cancel() bool {
	if !a.transition(attemptCancelled) {
		return false
	}
	a.finish(attemptCancelled, nil)
	return true
}

// abandon cancels the attempt without reporting it as a cancelled fallback.
func (a *Attempt) abandon() {
	if a.transition(attemptCancelled) {
		close(a.done)
	}
}

// transition moves a pending attempt to state. Only one caller wins.
func (a *Attempt) transition(to attemptState) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != attemptPending {
		return false
	}
	a.state = to
	if to == attemptCancelled && a.timer != nil {
		a.timer.Stop()
	}
	return true
}

func (a *Attempt) finish(state attemptState, err error) {
	a.mu.Lock()
	a.err = err
	onDone := a.onDone
	a.mu.Unlock()

	if onDone != nil {
		onDone(a, state)
	}
	close(a.done)
}

// Done is closed once the attempt has fired or been cancelled.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Fired reports whether the fallback navigation ran.
func (a *Attempt) Fired() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == attemptFired
}

// Cancelled reports whether the attempt was cancelled before firing.
func (a *Attempt) Cancelled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == attemptCancelled
}

// Wait blocks until the attempt completes or ctx is done.
// It returns the fallback navigation error, if any.
func (a *Attempt) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
