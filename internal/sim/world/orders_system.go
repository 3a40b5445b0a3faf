package world

import (
	"math"

	"pizzatorio.dev/internal/sim/catalogs"
)

// spawnItem buys one weighted-random ingredient and places it on the
// source tile. The type draw happens before the affordability check so an
// empty wallet never shifts the random stream.
func (w *World) spawnItem() {
	if !w.hasSource {
		return
	}
	key := w.weightedPick(w.ingredientKeys, w.ingredientWeights)
	ing, ok := w.ingredients[key]
	if !ok {
		return
	}
	if w.money < ing.PurchaseCost {
		return
	}
	w.money -= ing.PurchaseCost
	w.totalSpend += ing.PurchaseCost
	w.items = append(w.items, &Item{
		X:              w.sourceX,
		Y:              w.sourceY,
		Stage:          StageRaw,
		IngredientType: key,
	})
}

// ensureOrderChannelUnlocked drops back to the default channel when
// reputation has fallen below the active channel's threshold. It runs just
// before each order spawn so a slipping factory loses the premium channel
// at the next order, not mid-queue.
func (w *World) ensureOrderChannelUnlocked() {
	if w.OrderChannelUnlocked(w.orderChannel) {
		return
	}
	fallback := w.cats.Channels.DefaultKey()
	if fallback == "" || fallback == w.orderChannel {
		return
	}
	w.orderChannel = fallback
	w.logEvent("Order channel auto-switched to %s", fallback)
}

func (w *World) spawnOrder() {
	available := w.availableRecipes(w.orderChannel)
	if len(available) == 0 {
		return
	}
	channel, haveChannel := w.cats.Channels.ByKey[w.orderChannel]
	if haveChannel && w.pendingOrdersFor(w.orderChannel) >= w.orderCapFor(channel) {
		return
	}

	demand := w.commercialDemandMultiplier()
	rewardBonus := w.commercialRewardMultiplier()
	chDemand := 1.0
	chSLA := 1.0
	chReward := 1.0
	if haveChannel {
		chDemand = math.Max(0.01, channel.DemandWeight)
		chSLA = math.Max(0.1, channel.SLAMultiplier)
		chReward = math.Max(0.1, channel.RewardMultiplier)
	}

	weights := make([]float64, len(available))
	for i, key := range available {
		weights[i] = math.Max(0.01, w.cats.Recipes.ByKey[key].DemandWeight*chDemand*demand)
	}
	key := w.weightedPick(available, weights)
	recipe := w.cats.Recipes.ByKey[key]

	sla := recipe.SLA * chSLA
	reward := int(math.Round(float64(recipe.SellPrice) * chReward * rewardBonus))
	if reward < 1 {
		reward = 1
	}
	w.orders = append(w.orders, &Order{
		RecipeKey:    key,
		RemainingSLA: sla,
		TotalSLA:     sla,
		Reward:       reward,
		ChannelKey:   w.orderChannel,
	})
}

func (w *World) pendingOrdersFor(channelKey string) int {
	n := 0
	for _, o := range w.orders {
		if o.ChannelKey == channelKey {
			n++
		}
	}
	return n
}

func (w *World) orderCapFor(channel catalogs.Channel) int {
	limit := channel.MaxActiveOrders
	if w.techTree["second_location"] {
		limit += w.bal.SecondLocationOrderCap
	}
	return limit
}

// availableRecipes filters the menu by expansion tier and research gates,
// then by the channel's difficulty window. A window that matches nothing
// falls back to the unfiltered list so order generation never starves.
func (w *World) availableRecipes(channelKey string) []string {
	available := make([]string, 0, len(w.cats.Recipes.Keys))
	for _, key := range w.cats.Recipes.Keys {
		recipe := w.cats.Recipes.ByKey[key]
		if recipe.UnlockTier > w.expansionLevel-1 {
			continue
		}
		if recipe.RequiredResearch != "" && !w.techTree[recipe.RequiredResearch] {
			continue
		}
		available = append(available, key)
	}
	if channelKey == "" {
		return available
	}
	channel, ok := w.cats.Channels.ByKey[channelKey]
	if !ok {
		return available
	}
	filtered := make([]string, 0, len(available))
	for _, key := range available {
		d := w.cats.Recipes.ByKey[key].Difficulty
		if d >= channel.MinDifficulty && d <= channel.MaxDifficulty {
			filtered = append(filtered, key)
		}
	}
	if len(filtered) == 0 {
		return available
	}
	return filtered
}

func (w *World) commercialDemandMultiplier() float64 {
	cm, ok := w.cats.Commercials.ByKey[w.commercialStrategy]
	if !ok {
		return 1.0
	}
	return math.Max(0.1, cm.DemandMultiplier)
}

func (w *World) commercialRewardMultiplier() float64 {
	cm, ok := w.cats.Commercials.ByKey[w.commercialStrategy]
	if !ok {
		return 1.0
	}
	return math.Max(0.1, cm.RewardMultiplier)
}

// OrderChannelUnlocked reports whether reputation meets the channel's
// threshold. Unknown channels are never unlocked.
func (w *World) OrderChannelUnlocked(channelKey string) bool {
	if _, ok := w.cats.Channels.ByKey[channelKey]; !ok {
		return false
	}
	return w.reputation >= w.OrderChannelMinReputation(channelKey)
}

func (w *World) OrderChannelMinReputation(channelKey string) float64 {
	channel, ok := w.cats.Channels.ByKey[channelKey]
	if !ok {
		return 0.0
	}
	return math.Max(0.0, channel.MinReputation)
}

// UnlockedOrderChannels lists the channels the factory may switch to, in
// catalog key order.
func (w *World) UnlockedOrderChannels() []string {
	out := make([]string, 0, len(w.cats.Channels.Keys))
	for _, key := range w.cats.Channels.Keys {
		if w.OrderChannelUnlocked(key) {
			out = append(out, key)
		}
	}
	return out
}

// SetOrderChannel switches the active intake. Switching to a locked
// channel fails and leaves a note in the event feed; unknown channels fail
// silently.
func (w *World) SetOrderChannel(channelKey string) bool {
	if _, ok := w.cats.Channels.ByKey[channelKey]; !ok {
		return false
	}
	if !w.OrderChannelUnlocked(channelKey) {
		w.logEvent("Order channel %s locked (need rep %.0f)", channelKey, w.OrderChannelMinReputation(channelKey))
		return false
	}
	if channelKey != w.orderChannel {
		w.logEvent("Order channel switched to %s", channelKey)
	}
	w.orderChannel = channelKey
	return true
}

func (w *World) OrderChannel() string { return w.orderChannel }

// systemOrderExpiry runs the SLA countdown. An expired order is missed:
// the channel takes the blame, reputation drops, and a fraction of the
// lost reward is clawed back from the till, never below zero money.
func (w *World) systemOrderExpiry(dt float64) {
	next := make([]*Order, 0, len(w.orders))
	for _, order := range w.orders {
		order.RemainingSLA -= dt
		if order.RemainingSLA > 0 {
			next = append(next, order)
			continue
		}
		st := w.statsFor(order.ChannelKey)
		st.Missed++
		w.reputation = clamp(w.reputation-w.bal.ReputationLossMissed, 0, 100)
		penalty := int(math.Round(float64(order.Reward) * w.bal.MissedPenaltyFraction * w.channelMissedMultiplier(order.ChannelKey)))
		if penalty > w.money {
			penalty = w.money
		}
		if penalty > 0 {
			w.money -= penalty
		}
		w.logEvent("Order missed: %s (-$%d)", order.RecipeKey, penalty)
	}
	w.orders = next
}

func (w *World) channelMissedMultiplier(channelKey string) float64 {
	channel, ok := w.cats.Channels.ByKey[channelKey]
	if !ok || channel.MissedMultiplier <= 0 {
		return 1.0
	}
	return channel.MissedMultiplier
}

func (w *World) statsFor(channelKey string) *ChannelStats {
	st, ok := w.channelStats[channelKey]
	if !ok {
		st = &ChannelStats{}
		w.channelStats[channelKey] = st
	}
	return st
}

// ChannelStatsFor returns a copy of the per-channel settlement counters.
func (w *World) ChannelStatsFor(channelKey string) ChannelStats {
	if st, ok := w.channelStats[channelKey]; ok {
		return *st
	}
	return ChannelStats{}
}
