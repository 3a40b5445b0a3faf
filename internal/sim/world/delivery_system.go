package world

import "math"

// enqueueDelivery turns a fulfilled order into an in-flight shipment and
// returns it so the caller can apply per-item boosts. Eat-in orders are
// handed across the counter: they settle immediately and return nil.
func (w *World) enqueueDelivery(order *Order) *Delivery {
	if order.ChannelKey == "eat_in" {
		w.completed++
		w.ontime++
		w.money += order.Reward
		w.totalRevenue += order.Reward
		w.reputation = clamp(w.reputation+w.bal.ReputationGainOntime, 0, 100)
		st := w.statsFor(order.ChannelKey)
		st.Completed++
		st.Ontime++
		st.Revenue += order.Reward
		return nil
	}

	channel, ok := w.cats.Channels.ByKey[order.ChannelKey]
	if !ok {
		channel = w.cats.Channels.ByKey[w.orderChannel]
	}
	modes := channel.DeliveryModes
	if len(modes) == 0 {
		modes = []string{"drone", "scooter"}
	}
	mode := w.pickOne(modes)
	var travel float64
	if mode == "drone" {
		travel = w.uniform(w.bal.DroneTravelMin, w.bal.DroneTravelMax)
	} else {
		travel = w.uniform(w.bal.ScooterTravelMin, w.bal.ScooterTravelMax)
	}

	reward := order.Reward
	if w.techTree["second_location"] {
		reward = int(float64(reward) * (1.0 + w.bal.SecondLocationBonus))
	}
	lateMult := channel.LateMultiplier
	if lateMult <= 0 {
		lateMult = 1.0
	}

	d := &Delivery{
		Mode:           mode,
		Remaining:      travel,
		SLA:            math.Max(w.bal.DeliverySLAFloor, order.RemainingSLA),
		Duration:       travel,
		RecipeKey:      order.RecipeKey,
		Reward:         reward,
		ChannelKey:     order.ChannelKey,
		LateMultiplier: lateMult,
	}
	w.deliveries = append(w.deliveries, d)
	return d
}

// systemBotDocks accrues bot charge per dock and spends whole charges on
// the delivery with the most road left. Ties go to the earliest shipment.
func (w *World) systemBotDocks(dt float64) {
	docks := 0
	for y := range w.grid {
		for x := range w.grid[y] {
			if w.grid[y][x].Kind == TileBotDock {
				docks++
			}
		}
	}
	if !w.techTree["bots"] || docks == 0 {
		return
	}
	w.autoBotCharge += dt * w.bal.BotChargeRate * float64(docks)
	for w.autoBotCharge >= 1.0 && len(w.deliveries) > 0 {
		target := w.deliveries[0]
		for _, d := range w.deliveries[1:] {
			if d.Remaining > target.Remaining {
				target = d
			}
		}
		target.Remaining = math.Max(w.bal.BotMinRemaining, target.Remaining-w.bal.BotBoostSeconds)
		w.autoBotCharge -= 1.0
	}
}

// systemSettlement ages in-flight deliveries and pays out the ones that
// arrive. On-time pay is the full reward plus reputation; late pay is cut
// by the channel's late factor and the global late fraction, and costs
// reputation.
func (w *World) systemSettlement(dt float64) {
	lateFraction := w.bal.LatePayoutFraction
	if w.techTree["priority_dispatch"] {
		lateFraction = w.bal.PriorityLatePayout
	}

	next := make([]*Delivery, 0, len(w.deliveries))
	for _, d := range w.deliveries {
		d.Elapsed += dt
		d.Remaining -= dt
		if d.Remaining > 0 {
			next = append(next, d)
			continue
		}
		w.completed++
		st := w.statsFor(d.ChannelKey)
		st.Completed++
		if d.Elapsed <= d.SLA {
			w.ontime++
			st.Ontime++
			w.money += d.Reward
			w.totalRevenue += d.Reward
			st.Revenue += d.Reward
			w.reputation = clamp(w.reputation+w.bal.ReputationGainOntime, 0, 100)
		} else {
			lateReward := int(float64(d.Reward) * d.LateMultiplier * lateFraction)
			w.money += lateReward
			w.totalRevenue += lateReward
			st.Revenue += lateReward
			w.reputation = clamp(w.reputation-w.bal.ReputationLossLate, 0, 100)
		}
	}
	w.deliveries = next
}
