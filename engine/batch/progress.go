package batch

import (
	"sync"

	"github.com/dvalderas/playtag/engine"
)

// Tracker aggregates per-item progress into one batch-wide figure. The
// overall value is the arithmetic mean over all items, including those that
// have not started, so the reported number only ever moves forward as work
// completes.
type Tracker struct {
	mu       sync.Mutex
	percents []float64
	emit     engine.ProgressFunc
}

func NewTracker(total int, emit engine.ProgressFunc) *Tracker {
	if emit == nil {
		emit = func(float64) {}
	}
	return &Tracker{
		percents: make([]float64, total),
		emit:     emit,
	}
}

// Update records progress for one item and emits the recomputed mean.
func (t *Tracker) Update(index int, percent float64) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.percents) {
		return
	}
	t.percents[index] = percent
	// Emitting under the lock keeps the reported sequence monotonic.
	t.emit(t.meanLocked())
}

// Overall returns the current mean progress.
func (t *Tracker) Overall() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.meanLocked()
}

func (t *Tracker) meanLocked() float64 {
	if len(t.percents) == 0 {
		return 0
	}
	var sum float64
	for _, p := range t.percents {
		sum += p
	}
	return sum / float64(len(t.percents))
}
