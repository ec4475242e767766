package playback

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// State of a playback sequence
type State int

const (
	Idle State = iota
	Playing
	Cancelled
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Cancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Handle controls one playback sequence.
type Handle struct {
	ID uuid.UUID

	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state State
	err   error
}

// Stop cancels the sequence. The segment in progress is interrupted and no
// further segment starts. Calling Stop again is a no-op.
func (h *Handle) Stop() {
	h.cancel()
}

// Done is closed when the sequence has ended
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the sequence ended and returns its error.
// A cancelled sequence returns nil.
func (h *Handle) Wait() error {
	<-h.done
	return h.Err()
}

// State returns the current state
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Err returns the failure that aborted the sequence, if any
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}
