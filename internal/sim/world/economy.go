package world

// PlaceTile is the build command. Out-of-bounds cells, the fixed source and
// sink, and machines whose research is still locked are all silent no-ops.
// Placing TileEmpty demolishes whatever stands there, free of charge.
func (w *World) PlaceTile(x, y int, kind TileKind, rot int) {
	if !w.inBounds(x, y) {
		return
	}
	if k := w.grid[y][x].Kind; k == TileSource || k == TileSink {
		return
	}
	if kind == TileEmpty {
		w.grid[y][x] = Tile{Kind: TileEmpty}
		return
	}
	if kind == TileOven && !w.techTree["ovens"] {
		return
	}
	if kind == TileBotDock && !w.techTree["bots"] {
		return
	}
	// Only building on empty ground charges the build cost; replacing an
	// occupied cell is free.
	if w.grid[y][x].Kind == TileEmpty {
		cost := w.bal.BuildCosts[string(kind)]
		if w.money < cost {
			return
		}
		w.money -= cost
		w.totalSpend += cost
	}
	w.grid[y][x] = Tile{Kind: kind, Rot: normRot(rot)}
}

// SetCommercialStrategy switches the active commercial strategy and debits
// its activation cost. Re-selecting the current strategy is a free success.
func (w *World) SetCommercialStrategy(key string) bool {
	return w.setCommercialStrategy(key, true)
}

// setCommercialStrategy carries the charge flag so snapshot restore can
// reinstate a saved strategy without paying its activation cost again.
func (w *World) setCommercialStrategy(key string, charge bool) bool {
	com, ok := w.cats.Commercials.ByKey[key]
	if !ok {
		return false
	}
	if key == w.commercialStrategy {
		return true
	}
	if com.RequiredResearch != "" && !w.techTree[com.RequiredResearch] {
		return false
	}
	if charge {
		if w.money < com.ActivationCost {
			w.logEvent("Commercial %s failed (need $%d)", key, com.ActivationCost)
			return false
		}
		w.money -= com.ActivationCost
		w.totalSpend += com.ActivationCost
		w.logEvent("Commercial %s activated (-$%d)", key, com.ActivationCost)
	}
	w.commercialStrategy = key
	return true
}

func (w *World) Money() int                 { return w.money }
func (w *World) TotalRevenue() int          { return w.totalRevenue }
func (w *World) TotalSpend() int            { return w.totalSpend }
func (w *World) Reputation() float64        { return w.reputation }
func (w *World) CommercialStrategy() string { return w.commercialStrategy }
