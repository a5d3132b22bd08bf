package assistant

import (
	"context"
	"sync"
	"time"
)

// TypedInput is the Listener for the typed path: Listen installs a
// single-slot waiter that the next submitted line fills.
type TypedInput struct {
	timeout time.Duration

	waiterMu sync.Mutex
	waiter   chan string
}

// NewTypedInput returns a TypedInput whose Listen gives up after timeout.
// A zero timeout waits until a line is submitted or ctx ends.
func NewTypedInput(timeout time.Duration) *TypedInput {
	return &TypedInput{timeout: timeout}
}

func (in *TypedInput) Listen(ctx context.Context) (string, error) {
	w := in.installWaiter()
	defer in.clearWaiter(w)

	var expired <-chan time.Time
	if in.timeout > 0 {
		timer := time.NewTimer(in.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case text := <-w:
		return text, nil
	case <-expired:
		if text, ok := in.abandon(w); ok {
			return text, nil
		}
		return "", ErrListenTimeout
	case <-ctx.Done():
		if text, ok := in.abandon(w); ok {
			return text, nil
		}
		return "", ctx.Err()
	}
}

// Offer hands text to a pending Listen. It reports false when nobody is
// waiting.
func (in *TypedInput) Offer(text string) bool {
	in.waiterMu.Lock()
	defer in.waiterMu.Unlock()

	if in.waiter == nil {
		return false
	}

	in.waiter <- text
	in.waiter = nil
	return true
}

func (in *TypedInput) Waiting() bool {
	in.waiterMu.Lock()
	defer in.waiterMu.Unlock()
	return in.waiter != nil
}

func (in *TypedInput) installWaiter() chan string {
	in.waiterMu.Lock()
	defer in.waiterMu.Unlock()
	in.waiter = make(chan string, 1)
	return in.waiter
}

func (in *TypedInput) clearWaiter(w chan string) {
	in.waiterMu.Lock()
	defer in.waiterMu.Unlock()
	if in.waiter == w {
		in.waiter = nil
	}
}

// abandon withdraws w and returns a line Offer delivered before the
// withdrawal, so an accepted line is never dropped.
func (in *TypedInput) abandon(w chan string) (string, bool) {
	in.waiterMu.Lock()
	defer in.waiterMu.Unlock()
	if in.waiter == w {
		in.waiter = nil
	}

	select {
	case text := <-w:
		return text, true
	default:
		return "", false
	}
}
