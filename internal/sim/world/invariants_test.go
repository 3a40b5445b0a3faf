package world

import "testing"

// Long-run checks over whole simulated sessions rather than single
// subsystem calls.

func TestInvariant_StageNeverRegresses(t *testing.T) {
	w := newTestWorld(t, 7)
	w.PlaceTile(10, 7, TileAssemblyTable, 0)

	last := map[*Item]int{}
	for i := 0; i < 500; i++ {
		w.Tick(0.1)
		for _, it := range w.items {
			idx := stageIndex(it.Stage)
			if idx < 0 {
				t.Fatalf("tick %d: item carries unknown stage %q", i, it.Stage)
			}
			if prev, seen := last[it]; seen && idx < prev {
				t.Fatalf("tick %d: stage regressed from %s to %s", i, stageOrder[prev], it.Stage)
			}
			last[it] = idx
		}
	}
	if len(last) == 0 {
		t.Fatal("run produced no items")
	}
}

func TestInvariant_ItemsStayInBounds(t *testing.T) {
	w := newTestWorld(t, 7)
	for i := 0; i < 500; i++ {
		w.Tick(0.1)
		for _, it := range w.items {
			if !w.inBounds(it.X, it.Y) {
				t.Fatalf("tick %d: item at (%d,%d) outside the %dx%d grid",
					i, it.X, it.Y, w.cfg.Width, w.cfg.Height)
			}
		}
	}
}

func TestInvariant_OrdersLeaveThePendingSetAtMostOnce(t *testing.T) {
	w := newTestWorld(t, 7)
	w.PlaceTile(10, 7, TileAssemblyTable, 0)

	seen := map[*Order]bool{}
	gone := map[*Order]bool{}
	created, removed := 0, 0
	for i := 0; i < 800; i++ {
		w.Tick(0.1)

		pending := map[*Order]bool{}
		for _, o := range w.orders {
			pending[o] = true
			if gone[o] {
				t.Fatalf("tick %d: order %q re-entered the pending set", i, o.RecipeKey)
			}
			if !seen[o] {
				seen[o] = true
				created++
			}
		}
		for o := range seen {
			if !pending[o] && !gone[o] {
				gone[o] = true
				removed++
			}
		}
	}

	if created == 0 {
		t.Fatal("run produced no orders")
	}
	if removed > created {
		t.Fatalf("removed %d orders but only %d were created", removed, created)
	}
}

func TestInvariant_ReputationStaysInBoundsUnderPressure(t *testing.T) {
	w := newTestWorld(t, 7)

	// Starve the queue so every order expires and reputation is hammered
	// downward every tick.
	for i := 0; i < 400; i++ {
		w.Tick(0.1)
		if r := w.Reputation(); r < 0.0 || r > 100.0 {
			t.Fatalf("tick %d: reputation %v out of [0,100]", i, r)
		}
	}

	// Then force it upward past the cap with a stream of on-time wins.
	w.reputation = 99.0
	for i := 0; i < 50; i++ {
		w.deliveries = append(w.deliveries, &Delivery{Remaining: 0.05, SLA: 5.0, Reward: 12, ChannelKey: "delivery", LateMultiplier: 1.0})
		w.Tick(0.1)
		if r := w.Reputation(); r < 0.0 || r > 100.0 {
			t.Fatalf("tick %d: reputation %v out of [0,100]", i, r)
		}
	}
	if w.Reputation() != 100.0 {
		t.Errorf("reputation = %v, want pinned at 100 after the winning streak", w.Reputation())
	}
}
