package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stageRecorder struct {
	mu     sync.Mutex
	stages []AnimationStage
}

func (r *stageRecorder) record(s AnimationStage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, s)
}

func (r *stageRecorder) get() []AnimationStage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AnimationStage(nil), r.stages...)
}

func TestTimedAnimator_RunsStagesInOrder(t *testing.T) {
	a := &TimedAnimator{LoadingDelay: 5 * time.Millisecond, SuccessDelay: 5 * time.Millisecond}
	rec := &stageRecorder{}
	done := make(chan struct{})

	a.Start(context.Background(), rec.record, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("animation did not finish")
	}
	assert.Equal(t, []AnimationStage{AnimationLoading, AnimationSuccess, AnimationFinished}, rec.get())
}

func TestTimedAnimator_CancelStopsBeforeDone(t *testing.T) {
	a := &TimedAnimator{LoadingDelay: time.Hour, SuccessDelay: time.Hour}
	rec := &stageRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	called := make(chan struct{}, 1)

	a.Start(ctx, rec.record, func() { called <- struct{}{} })
	assert.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, time.Millisecond)
	cancel()

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, called, 0)
	assert.Equal(t, []AnimationStage{AnimationLoading}, rec.get())
}

func TestNewTimedAnimator_Defaults(t *testing.T) {
	a := NewTimedAnimator()

	assert.Equal(t, 1500*time.Millisecond, a.LoadingDelay)
	assert.Equal(t, 2*time.Second, a.SuccessDelay)
}
