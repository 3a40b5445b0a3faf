package world

import (
	"strings"
	"testing"

	"pizzatorio.dev/internal/sim/catalogs"
	"pizzatorio.dev/internal/sim/tuning"
)

func newTestWorld(t *testing.T, seed int64) *World {
	t.Helper()
	cats := catalogs.Load(t.TempDir())
	w, err := New(WorldConfig{ID: "test", Seed: seed}, cats, tuning.Default())
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return w
}

func testOrder(recipe, channel string, sla float64, reward int) *Order {
	return &Order{RecipeKey: recipe, RemainingSLA: sla, TotalSLA: sla, Reward: reward, ChannelKey: channel}
}

func logContains(w *World, substr string) bool {
	for _, line := range w.eventLog {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
