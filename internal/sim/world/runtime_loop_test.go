package world

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRun_StopsWhenContextCancelled(t *testing.T) {
	w := newTestWorld(t, 7)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := 0
	errc := make(chan error, 1)
	go func() {
		errc <- w.Run(ctx, RunOptions{TickHz: 200, OnTick: func(w *World) {
			ticks++
			if ticks == 5 {
				cancel()
			}
		}})
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("run returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
	if w.TickCount() < 5 {
		t.Fatalf("tick count = %d, want at least 5", w.TickCount())
	}
}

func TestRun_SpeedScalesSimulatedTime(t *testing.T) {
	w := newTestWorld(t, 7)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var first float64
	errc := make(chan error, 1)
	go func() {
		errc <- w.Run(ctx, RunOptions{TickHz: 100, Speed: 4.0, OnTick: func(w *World) {
			if first == 0 {
				first = w.Time()
			}
			cancel()
		}})
	}()

	select {
	case <-errc:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
	if want := (time.Second / 100).Seconds() * 4.0; first != want {
		t.Fatalf("simulated time after one tick = %v, want %v", first, want)
	}
}

func TestRunOptions_Defaults(t *testing.T) {
	opts := RunOptions{}
	opts.applyDefaults()
	if opts.TickHz != 60 {
		t.Errorf("TickHz = %d, want 60", opts.TickHz)
	}
	if opts.Speed != 1.0 {
		t.Errorf("Speed = %v, want 1", opts.Speed)
	}
}
