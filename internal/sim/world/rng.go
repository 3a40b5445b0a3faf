package world

// The engine owns a single seeded rand.Rand and consumes draws in a fixed
// per-tick order. Helpers below are the only call sites; nothing else may
// touch w.rng, or identically seeded runs drift apart.

// weightedPick draws one key from parallel key/weight slices. Weights must
// be positive; the zero-total case falls back to the first key.
func (w *World) weightedPick(keys []string, weights []float64) string {
	total := 0.0
	for _, wt := range weights {
		total += wt
	}
	r := w.rng.Float64() * total
	if total <= 0 {
		if len(keys) == 0 {
			return ""
		}
		return keys[0]
	}
	acc := 0.0
	for i, wt := range weights {
		acc += wt
		if r < acc {
			return keys[i]
		}
	}
	return keys[len(keys)-1]
}

// uniform draws from [lo, hi).
func (w *World) uniform(lo, hi float64) float64 {
	return lo + w.rng.Float64()*(hi-lo)
}

// pickOne draws one element of a non-empty slice.
func (w *World) pickOne(options []string) string {
	return options[w.rng.Intn(len(options))]
}

// chance draws once and reports whether it fell under p. The draw happens
// unconditionally so callers consume exactly one draw per decision.
func (w *World) chance(p float64) bool {
	return w.rng.Float64() < p
}
