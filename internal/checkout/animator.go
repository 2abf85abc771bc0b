package checkout

import (
	"context"
	"time"
)

type AnimationStage string

const (
	AnimationIdle     AnimationStage = "idle"
	AnimationLoading  AnimationStage = "loading"
	AnimationSuccess  AnimationStage = "success"
	AnimationFinished AnimationStage = "finished"
)

const (
	DefaultLoadingDelay = 1500 * time.Millisecond
	DefaultSuccessDelay = 2 * time.Second
)

// Animator drives the confirmation animation. It reports each stage through
// progress and calls done at most once when it finishes. A canceled ctx stops
// it without calling done.
type Animator interface {
	Start(ctx context.Context, progress func(AnimationStage), done func())
}

// TimedAnimator advances through the loading and success stages on fixed delays.
type TimedAnimator struct {
	LoadingDelay time.Duration
	SuccessDelay time.Duration
}

func NewTimedAnimator() *TimedAnimator {
	return &TimedAnimator{
		LoadingDelay: DefaultLoadingDelay,
		SuccessDelay: DefaultSuccessDelay,
	}
}

func (a *TimedAnimator) Start(ctx context.Context, progress func(AnimationStage), done func()) {
	go func() {
		progress(AnimationLoading)
		if !sleep(ctx, a.LoadingDelay) {
			return
		}
		progress(AnimationSuccess)
		if !sleep(ctx, a.SuccessDelay) {
			return
		}
		progress(AnimationFinished)
		done()
	}()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
