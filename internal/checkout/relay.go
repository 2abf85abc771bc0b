package checkout

import (
	"sync"
	"time"
)

// Source tells which path resolved a relay.
type Source int

const (
	SourcePending Source = iota
	SourceAnimation
	SourceTimeout
	SourceCanceled
)

func (s Source) String() string {
	switch s {
	case SourceAnimation:
		return "animation"
	case SourceTimeout:
		return "timeout"
	case SourceCanceled:
		return "canceled"
	default:
		return "pending"
	}
}

// Relay is a completion that resolves exactly once, by whichever comes first
// of the animation callback and the safety-net timeout. Later calls are no-ops.
// Canceling resolves it without running onResolve.
type Relay struct {
	once      sync.Once
	mu        sync.Mutex
	source    Source
	timer     *time.Timer
	done      chan struct{}
	onResolve func(Source)
}

func NewRelay(timeout time.Duration, onResolve func(Source)) *Relay {
	r := &Relay{
		done:      make(chan struct{}),
		onResolve: onResolve,
	}
	r.mu.Lock()
	r.timer = time.AfterFunc(timeout, func() { r.resolve(SourceTimeout) })
	r.mu.Unlock()
	return r
}

// AnimationDone is the callback handed to the animation collaborator.
func (r *Relay) AnimationDone() {
	r.resolve(SourceAnimation)
}

func (r *Relay) Cancel() {
	r.resolve(SourceCanceled)
}

func (r *Relay) Done() <-chan struct{} {
	return r.done
}

func (r *Relay) Source() Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.source
}

func (r *Relay) resolve(src Source) {
	r.once.Do(func() {
		r.mu.Lock()
		r.source = src
		r.timer.Stop()
		r.mu.Unlock()

		if src != SourceCanceled && r.onResolve != nil {
			r.onResolve(src)
		}
		close(r.done)
	})
}
