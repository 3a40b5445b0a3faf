package world

// systemResearch resolves tech unlocks once per tick. A successful focus
// unlock consumes its cost in points and pauses background resolution for
// the tick. Background unlocks are threshold reads against the tech state
// captured at entry, so a tech unlocked this tick cannot satisfy another
// tech's prerequisite until the next one. Background unlocks never spend
// points.
func (w *World) systemResearch() {
	if w.TryUnlockResearchFocus() {
		return
	}

	snapshot := make(map[string]bool, len(w.techTree))
	for key, unlocked := range w.techTree {
		snapshot[key] = unlocked
	}
	for _, key := range w.cats.Research.Keys {
		if snapshot[key] {
			continue
		}
		if !prereqsMetIn(snapshot, w.cats.Research.ByKey[key].Prerequisites) {
			continue
		}
		if w.researchPoints >= w.cats.Research.ByKey[key].Cost {
			w.techTree[key] = true
			w.logEvent("Research auto-unlocked: %s", key)
		}
	}
}

func prereqsMetIn(tech map[string]bool, prereqs []string) bool {
	for _, pre := range prereqs {
		if !tech[pre] {
			return false
		}
	}
	return true
}

func (w *World) researchPrereqsMet(techKey string) bool {
	return prereqsMetIn(w.techTree, w.cats.Research.ByKey[techKey].Prerequisites)
}

// TryUnlockResearchFocus spends points on the focused tech when it is
// affordable and its prerequisites hold.
func (w *World) TryUnlockResearchFocus() bool {
	if w.researchFocus == "" || w.techTree[w.researchFocus] {
		return false
	}
	if !w.researchPrereqsMet(w.researchFocus) {
		return false
	}
	tech, ok := w.cats.Research.ByKey[w.researchFocus]
	if !ok || w.researchPoints < tech.Cost {
		return false
	}
	w.researchPoints -= tech.Cost
	w.techTree[w.researchFocus] = true
	w.logEvent("Research unlocked: %s", w.researchFocus)
	w.researchFocus = ""
	return true
}

// SetResearchFocus points the lab at one locked tech. An empty key clears
// the focus. Unknown, already-unlocked, or prerequisite-blocked techs are
// rejected.
func (w *World) SetResearchFocus(techKey string) bool {
	if techKey == "" {
		w.researchFocus = ""
		w.logEvent("Research focus cleared")
		return true
	}
	if _, ok := w.cats.Research.ByKey[techKey]; !ok || w.techTree[techKey] {
		return false
	}
	if !w.researchPrereqsMet(techKey) {
		return false
	}
	w.researchFocus = techKey
	w.logEvent("Research focus set: %s", techKey)
	return true
}

// AvailableResearchTargets lists locked techs whose prerequisites are met,
// cheapest first.
func (w *World) AvailableResearchTargets() []string {
	out := make([]string, 0, len(w.cats.Research.Keys))
	for _, key := range w.cats.Research.Keys {
		if w.techTree[key] {
			continue
		}
		if w.researchPrereqsMet(key) {
			out = append(out, key)
		}
	}
	return out
}

// CycleResearchFocus steps the focus through the available targets,
// wrapping at the end. With nothing available the focus clears.
func (w *World) CycleResearchFocus() string {
	available := w.AvailableResearchTargets()
	if len(available) == 0 {
		w.researchFocus = ""
		return ""
	}
	idx := -1
	for i, key := range available {
		if key == w.researchFocus {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.researchFocus = available[0]
		return w.researchFocus
	}
	w.researchFocus = available[(idx+1)%len(available)]
	return w.researchFocus
}

func (w *World) ResearchFocus() string   { return w.researchFocus }
func (w *World) ResearchPoints() float64 { return w.researchPoints }

func (w *World) TechUnlocked(key string) bool { return w.techTree[key] }
