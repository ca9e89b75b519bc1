package window

import (
	"context"
	"time"

	"github.com/stockpredictorai/prediction-backend/internal/models"
)

// Monitor recomputes a prediction type's window status on a fixed cadence
// for as long as its owning view is active. The ticker is owned by the Run
// goroutine and stopped when the context is cancelled, so a monitor cannot
// outlive its screen.
type Monitor struct {
	predictionType models.PredictionType
	interval       time.Duration
	clock          func() time.Time
}

// MonitorOption customizes a Monitor.
type MonitorOption func(*Monitor)

// WithInterval overrides the default 1 s recomputation cadence.
func WithInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithClock substitutes the time source. Tests use this.
func WithClock(clock func() time.Time) MonitorOption {
	return func(m *Monitor) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func NewMonitor(t models.PredictionType, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		predictionType: t,
		interval:       time.Second,
		clock:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run emits the current status immediately, then once per interval, until
// ctx is cancelled. The returned channel is closed on cancellation; no
// status is ever delivered after that, so a disposed subscriber sees no
// late updates.
func (m *Monitor) Run(ctx context.Context) <-chan Status {
	out := make(chan Status, 1)
	out <- Evaluate(m.predictionType, m.clock())

	go func() {
		defer close(out)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				status := Evaluate(m.predictionType, m.clock())
				select {
				case out <- status:
				default:
					// Slow consumer: drop the tick, the next one supersedes it.
				}
			}
		}
	}()
	return out
}
