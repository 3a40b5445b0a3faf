package world

// systemExpansion grows the factory footprint score. Progress accrues
// with time and with the lifetime completed count, multiplied while the
// franchise system is unlocked. Each level needs proportionally more.
func (w *World) systemExpansion(dt float64) {
	mult := 1.0
	if w.techTree["franchise_system"] {
		mult = w.bal.FranchiseExpansion
	}
	w.expansionProgress += dt*w.bal.ExpansionRate + float64(w.completed)*w.bal.ExpansionPerCompleted*mult
	needed := w.bal.ExpansionBaseNeed * float64(w.expansionLevel)
	if w.expansionProgress >= needed {
		w.expansionProgress -= needed
		w.expansionLevel++
	}
}

func (w *World) ExpansionLevel() int        { return w.expansionLevel }
func (w *World) ExpansionProgress() float64 { return w.expansionProgress }
