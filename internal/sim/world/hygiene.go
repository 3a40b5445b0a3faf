package world

// systemHygiene either fires a contamination event or recovers passively.
// The event draw is only consumed once the cooldown has elapsed, matching
// the timer-gated draw order the rest of the engine relies on.
func (w *World) systemHygiene(dt float64) {
	recovery := w.bal.HygieneRecoveryRate
	if w.techTree["hygiene_training"] {
		recovery += w.bal.HygieneTrainingBonus
	}
	if w.time-w.lastHygieneEvent > w.bal.HygieneEventCooldown && w.chance(w.bal.HygieneEventChance) {
		w.lastHygieneEvent = w.time
		drop := w.uniform(w.bal.HygieneEventMinDrop, w.bal.HygieneEventMaxDrop)
		w.hygiene = clamp(w.hygiene-drop, 0, 100)
		return
	}
	w.hygiene = clamp(w.hygiene+dt*recovery, 0, 100)
}

// Hygiene is the factory cleanliness score in [0, 100]. It scales
// processor and oven speeds.
func (w *World) Hygiene() float64 { return w.hygiene }
