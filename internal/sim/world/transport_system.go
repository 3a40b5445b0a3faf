package world

import "math"

// systemTransport advances every item's dwell progress and moves the ones
// that finished. Items are processed in insertion order and land in a
// rebuilt slice; occupancy is checked against already-settled items only,
// so a full belt compacts forward one cell per dwell like a real line.
func (w *World) systemTransport(dt float64) {
	blocked := 0
	next := make([]*Item, 0, len(w.items))
	turbo := 0.0
	if w.techTree["turbo_belts"] {
		turbo = w.bal.TurboBeltBonus
	}

	for _, item := range w.items {
		tile := w.grid[item.Y][item.X]

		speed := w.bal.BeltSpeed + turbo
		switch tile.Kind {
		case TileProcessor:
			speed = w.bal.ProcessorSpeed + w.hygiene/w.bal.ProcessorHygieneScale
		case TileOven:
			bonus := 0.0
			if w.techTree["turbo_oven"] {
				bonus = w.bal.TurboOvenBonus
			}
			speed = w.bal.OvenSpeed + bonus + w.hygiene/w.bal.OvenHygieneScale
		case TileAssemblyTable:
			speed = w.bal.AssemblyTableSpeed
		}
		item.Progress += dt * speed

		if item.Progress < 1.0 {
			next = append(next, item)
			continue
		}
		item.Progress = 0.0
		nx, ny := item.X, item.Y

		switch tile.Kind {
		case TileConveyor, TileSource, TileProcessor, TileOven, TileBotDock, TileAssemblyTable:
			if flow, ok := processFlow[tile.Kind]; ok && item.Stage == flow.From {
				item.Stage = flow.To
				w.researchPoints += flow.ResearchGain
				if flow.DeliveryBoost > 0 {
					item.DeliveryBoost = flow.DeliveryBoost
				}
			}
			if tile.Kind == TileAssemblyTable && item.RecipeKey == "" {
				if order := w.matchOrderForItem(item); order != nil {
					item.RecipeKey = order.RecipeKey
				}
			}
			d := dirOffsets[normRot(tile.Rot)]
			nx, ny = item.X+d[0], item.Y+d[1]
		case TileEmpty:
			blocked++
		}

		// A destination off the grid cancels the move; the item stays put
		// without counting as blocked.
		if !w.inBounds(nx, ny) {
			next = append(next, item)
			continue
		}

		ntile := w.grid[ny][nx]
		if ntile.Kind == TileSink {
			if item.Stage == StageBaked {
				w.consumeAtSink(item)
			} else {
				w.scrapItem()
			}
			continue
		}
		if ntile.Kind == TileEmpty {
			blocked++
			next = append(next, item)
			continue
		}
		if itemAt(next, nx, ny) {
			blocked++
			next = append(next, item)
			continue
		}
		item.X, item.Y = nx, ny
		next = append(next, item)
	}

	w.items = next
	w.bottleneck = clamp(float64(blocked)/math.Max(1.0, float64(len(w.items)))*100.0, 0, 100)
}

func itemAt(items []*Item, x, y int) bool {
	for _, it := range items {
		if it.X == x && it.Y == y {
			return true
		}
	}
	return false
}

// consumeAtSink settles a baked item arriving at the sink: match it to a
// pending order and ship, or count it as waste. A recipe mismatch against
// a live queue is never refunded.
func (w *World) consumeAtSink(item *Item) {
	if len(w.orders) == 0 {
		w.scrapItem()
		return
	}
	order := w.resolveOrderForItem(item)
	if order == nil {
		w.waste++
		w.logEvent("Order rejected: baked item recipe mismatch")
		return
	}
	d := w.enqueueDelivery(order)
	if item.DeliveryBoost > 0 && d != nil {
		d.Remaining = math.Max(1.5, d.Remaining-item.DeliveryBoost)
		d.Duration = d.Remaining
	}
}

// scrapItem books one wasted item. With precision_cooking unlocked the
// kitchen reclaims part of the reference pizza's price.
func (w *World) scrapItem() {
	w.waste++
	if w.techTree["precision_cooking"] {
		if key := w.cats.Recipes.DefaultKey(); key != "" {
			refund := int(float64(w.cats.Recipes.ByKey[key].SellPrice) * w.bal.WasteRefundFraction)
			w.money += refund
			w.totalRevenue += refund
		}
	}
}

// resolveOrderForItem pops the order a finished item fulfills. A tagged
// item takes the oldest order for its recipe. An untagged item is only
// accepted when every pending order wants the same recipe; an ambiguous
// queue rejects it.
func (w *World) resolveOrderForItem(item *Item) *Order {
	if len(w.orders) == 0 {
		return nil
	}
	if item.RecipeKey != "" {
		for i, order := range w.orders {
			if order.RecipeKey == item.RecipeKey {
				w.orders = append(w.orders[:i], w.orders[i+1:]...)
				return order
			}
		}
		return nil
	}
	first := w.orders[0].RecipeKey
	for _, order := range w.orders[1:] {
		if order.RecipeKey != first {
			return nil
		}
	}
	order := w.orders[0]
	w.orders = w.orders[1:]
	return order
}

// Bottleneck is the percentage of items that failed to move last tick.
func (w *World) Bottleneck() float64 { return w.bottleneck }
