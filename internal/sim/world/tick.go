package world

// Tick advances the simulation by dt seconds. Subsystems run in a fixed
// order so identically seeded worlds fed identical dt sequences stay
// byte-for-byte identical:
//
//	clock and timers, item spawn, order spawn (with channel fallback),
//	hygiene, transport and processing, research, bot docks, expansion,
//	order SLA countdown, delivery settlement.
func (w *World) Tick(dt float64) {
	if dt <= 0 {
		return
	}
	w.tickCount++
	w.time += dt
	w.spawnTimer += dt
	w.orderSpawnTimer += dt

	itemInterval := w.bal.ItemSpawnInterval
	if w.techTree["double_spawn"] {
		itemInterval /= w.bal.DoubleSpawnDivisor
	}
	orderInterval := w.bal.OrderSpawnInterval / w.commercialDemandMultiplier()

	if w.spawnTimer >= itemInterval {
		w.spawnTimer = 0.0
		w.spawnItem()
	}
	if w.orderSpawnTimer >= orderInterval {
		w.orderSpawnTimer = 0.0
		w.ensureOrderChannelUnlocked()
		w.spawnOrder()
	}

	w.systemHygiene(dt)
	w.systemTransport(dt)
	w.systemResearch()
	w.systemBotDocks(dt)
	w.systemExpansion(dt)
	w.systemOrderExpiry(dt)
	w.systemSettlement(dt)
}

// Time is the simulated clock in seconds.
func (w *World) Time() float64 { return w.time }

// TickCount is the number of Tick calls since construction. It is not part
// of the persisted state; a resumed run restarts the count.
func (w *World) TickCount() uint64 { return w.tickCount }
