package world

import (
	"context"
	"time"
)

// RunOptions drive the real-time loop. TickHz is the wall-clock tick rate
// and Speed scales the simulated dt handed to each Tick, so Speed 2 runs
// factory time twice as fast without changing the tick cadence. OnTick,
// when set, runs on the loop goroutine after every tick and is the only
// safe place to touch the world while Run is active.
type RunOptions struct {
	TickHz int
	Speed  float64
	OnTick func(w *World)
}

func (o *RunOptions) applyDefaults() {
	if o.TickHz <= 0 {
		o.TickHz = 60
	}
	if o.Speed <= 0 {
		o.Speed = 1.0
	}
}

// Run ticks the world in real time until the context is cancelled. The dt
// handed to Tick is the fixed tick interval rather than measured wall time,
// so a run's trajectory is reproducible at any machine load.
func (w *World) Run(ctx context.Context, opts RunOptions) error {
	opts.applyDefaults()
	interval := time.Second / time.Duration(opts.TickHz)
	dt := interval.Seconds() * opts.Speed

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Tick(dt)
			if opts.OnTick != nil {
				opts.OnTick(w)
			}
		}
	}
}
