package world

import (
	"math"
	"testing"
)

func TestTransport_ConveyorMovesItemAfterDwell(t *testing.T) {
	w := newTestWorld(t, 7)
	item := &Item{X: 2, Y: 7, Progress: 0.99, Stage: StageRaw, IngredientType: "flour"}
	w.items = append(w.items, item)

	w.systemTransport(0.1)

	if item.X != 3 || item.Y != 7 {
		t.Errorf("item at (%d,%d), want (3,7)", item.X, item.Y)
	}
	if item.Progress != 0.0 {
		t.Errorf("progress = %v, want reset to 0", item.Progress)
	}
	if w.Bottleneck() != 0 {
		t.Errorf("bottleneck = %v, want 0", w.Bottleneck())
	}
}

func TestTransport_ItemStaysWhileDwellIncomplete(t *testing.T) {
	w := newTestWorld(t, 7)
	item := &Item{X: 2, Y: 7, Progress: 0.2, Stage: StageRaw, IngredientType: "flour"}
	w.items = append(w.items, item)

	w.systemTransport(0.1)

	if item.X != 2 || item.Y != 7 {
		t.Errorf("item at (%d,%d), want (2,7)", item.X, item.Y)
	}
	if math.Abs(item.Progress-0.3) > 1e-9 {
		t.Errorf("progress = %v, want 0.3", item.Progress)
	}
}

func TestTransport_TurboBeltsShortenDwell(t *testing.T) {
	w := newTestWorld(t, 7)
	w.techTree["turbo_belts"] = true
	item := &Item{X: 2, Y: 7, Progress: 0.88, Stage: StageRaw, IngredientType: "flour"}
	w.items = append(w.items, item)

	w.systemTransport(0.1)

	if item.X != 3 {
		t.Errorf("item x = %d, want 3 with turbo belts", item.X)
	}
}

func TestTransport_ProcessorCooksRawAndPaysResearch(t *testing.T) {
	w := newTestWorld(t, 7)
	item := &Item{X: 7, Y: 7, Progress: 0.99, Stage: StageRaw, IngredientType: "flour"}
	w.items = append(w.items, item)

	w.systemTransport(0.1)

	if item.Stage != StageProcessed {
		t.Errorf("stage = %s, want processed", item.Stage)
	}
	if math.Abs(w.ResearchPoints()-0.12) > 1e-9 {
		t.Errorf("research points = %v, want 0.12", w.ResearchPoints())
	}
	if item.X != 8 {
		t.Errorf("item x = %d, want 8", item.X)
	}
}

func TestTransport_OvenBakesProcessedOnly(t *testing.T) {
	w := newTestWorld(t, 7)
	cooked := &Item{X: 12, Y: 7, Progress: 0.99, Stage: StageProcessed, IngredientType: "flour"}
	w.items = append(w.items, cooked)

	w.systemTransport(0.1)

	if cooked.Stage != StageBaked {
		t.Errorf("stage = %s, want baked", cooked.Stage)
	}
	if math.Abs(w.ResearchPoints()-0.25) > 1e-9 {
		t.Errorf("research points = %v, want 0.25", w.ResearchPoints())
	}

	// A raw item is not the oven's input stage and passes through untouched.
	raw := &Item{X: 12, Y: 7, Progress: 0.99, Stage: StageRaw, IngredientType: "flour"}
	w.items = append(w.items, raw)

	w.systemTransport(0.1)

	if raw.Stage != StageRaw {
		t.Errorf("raw item stage = %s, want raw", raw.Stage)
	}
	if math.Abs(w.ResearchPoints()-0.25) > 1e-9 {
		t.Errorf("research points = %v, want unchanged 0.25", w.ResearchPoints())
	}
}

func TestTransport_TurboOvenFinishesSooner(t *testing.T) {
	plain := newTestWorld(t, 7)
	turbo := newTestWorld(t, 7)
	turbo.techTree["turbo_oven"] = true

	// Oven at hygiene 100 runs at 0.35+100/280; turbo adds 0.18 on top,
	// enough to close a 0.08 progress gap in one 0.1s slice.
	for _, w := range []*World{plain, turbo} {
		w.items = append(w.items, &Item{X: 12, Y: 7, Progress: 0.92, Stage: StageProcessed, IngredientType: "flour"})
	}
	plain.systemTransport(0.1)
	turbo.systemTransport(0.1)

	if plain.items[0].X != 12 {
		t.Errorf("plain oven item x = %d, want still 12", plain.items[0].X)
	}
	if turbo.items[0].X != 13 {
		t.Errorf("turbo oven item x = %d, want 13", turbo.items[0].X)
	}
}

func TestTransport_BotDockStampsDeliveryBoost(t *testing.T) {
	w := newTestWorld(t, 7)
	item := &Item{X: 12, Y: 6, Progress: 0.99, Stage: StageBaked, IngredientType: "flour"}
	w.items = append(w.items, item)

	w.systemTransport(0.1)

	if item.DeliveryBoost != 1.2 {
		t.Errorf("delivery boost = %v, want 1.2", item.DeliveryBoost)
	}
	if item.Stage != StageBaked {
		t.Errorf("stage = %s, want still baked", item.Stage)
	}
	if math.Abs(w.ResearchPoints()-0.06) > 1e-9 {
		t.Errorf("research points = %v, want 0.06", w.ResearchPoints())
	}
	if item.X != 12 || item.Y != 7 {
		t.Errorf("item at (%d,%d), want dropped onto the oven at (12,7)", item.X, item.Y)
	}
}

func TestTransport_EmptyDestinationBlocks(t *testing.T) {
	w := newTestWorld(t, 7)
	w.grid[5][5] = Tile{Kind: TileConveyor}
	item := &Item{X: 5, Y: 5, Progress: 0.99, Stage: StageRaw, IngredientType: "flour"}
	w.items = append(w.items, item)

	w.systemTransport(0.1)

	if item.X != 5 || item.Y != 5 {
		t.Errorf("item at (%d,%d), want stuck at (5,5)", item.X, item.Y)
	}
	if w.Bottleneck() != 100.0 {
		t.Errorf("bottleneck = %v, want 100", w.Bottleneck())
	}
}

func TestTransport_OccupiedDestinationBlocks(t *testing.T) {
	w := newTestWorld(t, 7)
	ahead := &Item{X: 3, Y: 7, Progress: 0.5, Stage: StageRaw, IngredientType: "flour"}
	behind := &Item{X: 2, Y: 7, Progress: 0.99, Stage: StageRaw, IngredientType: "tomato"}
	w.items = append(w.items, ahead, behind)

	w.systemTransport(0.1)

	if behind.X != 2 {
		t.Errorf("blocked item x = %d, want 2", behind.X)
	}
	if w.Bottleneck() != 50.0 {
		t.Errorf("bottleneck = %v, want 50", w.Bottleneck())
	}
}

func TestTransport_ItemOnEmptyGroundCountsBlockedTwice(t *testing.T) {
	w := newTestWorld(t, 7)
	item := &Item{X: 4, Y: 3, Progress: 0.99, Stage: StageRaw, IngredientType: "flour"}
	w.items = append(w.items, item)

	w.systemTransport(0.1)

	if item.X != 4 || item.Y != 3 {
		t.Errorf("item at (%d,%d), want stranded at (4,3)", item.X, item.Y)
	}
	if w.Bottleneck() != 100.0 {
		t.Errorf("bottleneck = %v, want clamped to 100", w.Bottleneck())
	}
}

func TestTransport_OutOfBoundsDestinationCancelsMove(t *testing.T) {
	w := newTestWorld(t, 7)
	w.grid[7][19] = Tile{Kind: TileConveyor}
	item := &Item{X: 19, Y: 7, Progress: 0.99, Stage: StageRaw, IngredientType: "flour"}
	w.items = append(w.items, item)

	w.systemTransport(0.1)

	if len(w.items) != 1 || item.X != 19 {
		t.Fatalf("items = %d at x=%d, want the item kept at 19", len(w.items), item.X)
	}
	if w.Bottleneck() != 0 {
		t.Errorf("bottleneck = %v, want 0 for an edge stall", w.Bottleneck())
	}
}

func TestSink_UnorderedBakeCountsWaste(t *testing.T) {
	w := newTestWorld(t, 7)
	w.items = append(w.items, &Item{X: 17, Y: 7, Progress: 0.99, Stage: StageBaked, IngredientType: "flour"})

	w.systemTransport(0.1)

	if len(w.items) != 0 {
		t.Fatalf("items = %d, want consumed", len(w.items))
	}
	if w.Waste() != 1 {
		t.Errorf("waste = %d, want 1", w.Waste())
	}
	if w.Money() != 1000 {
		t.Errorf("money = %d, want no refund without precision_cooking", w.Money())
	}
}

func TestSink_PrecisionCookingRefundsWaste(t *testing.T) {
	w := newTestWorld(t, 7)
	w.techTree["precision_cooking"] = true
	w.items = append(w.items, &Item{X: 17, Y: 7, Progress: 0.99, Stage: StageBaked, IngredientType: "flour"})

	w.systemTransport(0.1)

	// 40% of the fallback recipe's 12 sell price, truncated.
	if w.Money() != 1004 {
		t.Errorf("money = %d, want 1004", w.Money())
	}
	if w.TotalRevenue() != 4 {
		t.Errorf("total revenue = %d, want 4", w.TotalRevenue())
	}
	if w.Waste() != 1 {
		t.Errorf("waste = %d, want 1", w.Waste())
	}
}

func TestSink_NonBakedItemDiscardedAsWaste(t *testing.T) {
	w := newTestWorld(t, 7)
	w.orders = append(w.orders, testOrder("margherita", "delivery", 11, 12))
	w.items = append(w.items, &Item{X: 17, Y: 7, Progress: 0.99, Stage: StageProcessed, IngredientType: "flour"})

	w.systemTransport(0.1)

	if len(w.items) != 0 {
		t.Fatalf("items = %d, want the unbaked item consumed", len(w.items))
	}
	if w.Waste() != 1 {
		t.Errorf("waste = %d, want 1", w.Waste())
	}
	if len(w.orders) != 1 {
		t.Errorf("orders = %d, want the pending order untouched", len(w.orders))
	}
	if w.Money() != 1000 {
		t.Errorf("money = %d, want no refund without precision_cooking", w.Money())
	}
}

func TestSink_AmbiguousQueueRejectsUntaggedItem(t *testing.T) {
	w := newTestWorld(t, 7)
	w.orders = append(w.orders,
		testOrder("margherita", "delivery", 11, 12),
		testOrder("pepperoni", "delivery", 10, 15),
	)
	w.items = append(w.items, &Item{X: 17, Y: 7, Progress: 0.99, Stage: StageBaked, IngredientType: "flour"})

	w.systemTransport(0.1)

	if len(w.orders) != 2 {
		t.Errorf("orders = %d, want both kept pending", len(w.orders))
	}
	if w.Waste() != 1 {
		t.Errorf("waste = %d, want exactly 1", w.Waste())
	}
	if len(w.deliveries) != 0 {
		t.Errorf("deliveries = %d, want 0", len(w.deliveries))
	}
}

func TestSink_TaggedMismatchRejectedAsWaste(t *testing.T) {
	w := newTestWorld(t, 7)
	w.orders = append(w.orders, testOrder("pepperoni", "delivery", 10, 15))
	w.items = append(w.items, &Item{X: 17, Y: 7, Progress: 0.99, Stage: StageBaked, RecipeKey: "margherita"})

	w.systemTransport(0.1)

	if w.Waste() != 1 {
		t.Errorf("waste = %d, want 1", w.Waste())
	}
	if len(w.orders) != 1 {
		t.Errorf("orders = %d, want the pending order kept", len(w.orders))
	}
	if len(w.deliveries) != 0 {
		t.Errorf("deliveries = %d, want 0", len(w.deliveries))
	}
	if !logContains(w, "Order rejected") {
		t.Error("mismatch not logged")
	}
}

func TestSink_MatchedOrderBecomesDelivery(t *testing.T) {
	w := newTestWorld(t, 7)
	w.orders = append(w.orders, testOrder("margherita", "delivery", 11, 12))
	w.items = append(w.items, &Item{X: 17, Y: 7, Progress: 0.99, Stage: StageBaked, RecipeKey: "margherita"})

	w.systemTransport(0.1)

	if len(w.orders) != 0 {
		t.Errorf("orders = %d, want consumed", len(w.orders))
	}
	if len(w.deliveries) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(w.deliveries))
	}
	if got := w.deliveries[0].RecipeKey; got != "margherita" {
		t.Errorf("delivery recipe = %q, want margherita", got)
	}
	if w.Waste() != 0 {
		t.Errorf("waste = %d, want 0", w.Waste())
	}
}

func TestSink_DeliveryBoostSubtractedOnceAtCreation(t *testing.T) {
	base := newTestWorld(t, 7)
	boosted := newTestWorld(t, 7)
	for _, w := range []*World{base, boosted} {
		w.orders = append(w.orders, testOrder("margherita", "delivery", 11, 12))
	}
	base.items = append(base.items, &Item{X: 17, Y: 7, Progress: 0.99, Stage: StageBaked, RecipeKey: "margherita"})
	boosted.items = append(boosted.items, &Item{X: 17, Y: 7, Progress: 0.99, Stage: StageBaked, RecipeKey: "margherita", DeliveryBoost: 1.2})

	base.systemTransport(0.1)
	boosted.systemTransport(0.1)

	if len(base.deliveries) != 1 || len(boosted.deliveries) != 1 {
		t.Fatalf("deliveries = %d/%d, want 1/1", len(base.deliveries), len(boosted.deliveries))
	}
	got := boosted.deliveries[0].Remaining
	want := math.Max(1.5, base.deliveries[0].Remaining-1.2)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("boosted remaining = %v, want %v", got, want)
	}
	if boosted.deliveries[0].Duration != got {
		t.Errorf("duration = %v, want retimed to %v", boosted.deliveries[0].Duration, got)
	}
}

func TestSink_BoostedEatInSettlesWithoutDelivery(t *testing.T) {
	w := newTestWorld(t, 7)
	w.orders = append(w.orders, testOrder("margherita", "eat_in", 11, 12))
	w.items = append(w.items, &Item{X: 17, Y: 7, Progress: 0.99, Stage: StageBaked, RecipeKey: "margherita", DeliveryBoost: 1.2})

	w.systemTransport(0.1)

	if len(w.deliveries) != 0 {
		t.Errorf("deliveries = %d, want 0 for eat-in", len(w.deliveries))
	}
	if w.Completed() != 1 || w.Ontime() != 1 {
		t.Errorf("completed/ontime = %d/%d, want 1/1", w.Completed(), w.Ontime())
	}
	if w.Money() != 1012 {
		t.Errorf("money = %d, want 1012", w.Money())
	}
}
