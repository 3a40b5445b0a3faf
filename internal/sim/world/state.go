package world

import "encoding/json"

// StateV1 is the persisted snapshot of a World. Wire names are stable.
// Scalars whose zero value is also a legitimate saved value (money and
// hygiene can reach 0) are pointers, so a field absent from an old save
// can still be told apart from zero and default-filled on restore.
type StateV1 struct {
	Grid         [][]TileStateV1           `json:"grid"`
	Items        []ItemStateV1             `json:"items"`
	Deliveries   []DeliveryStateV1         `json:"deliveries"`
	Orders       []OrderStateV1            `json:"orders"`
	ChannelStats map[string]ChannelStatsV1 `json:"channel_stats"`

	Time               float64         `json:"time"`
	SpawnTimer         float64         `json:"spawn_timer"`
	OrderSpawnTimer    float64         `json:"order_spawn_timer"`
	Hygiene            *float64        `json:"hygiene"`
	Bottleneck         float64         `json:"bottleneck"`
	ExpansionLevel     *int            `json:"expansion_level"`
	ExpansionProgress  float64         `json:"expansion_progress"`
	ResearchPoints     float64         `json:"research_points"`
	TechTree           map[string]bool `json:"tech_tree"`
	AutoBotCharge      float64         `json:"auto_bot_charge"`
	Completed          int             `json:"completed"`
	Ontime             int             `json:"ontime"`
	Money              *int            `json:"money"`
	Waste              int             `json:"waste"`
	TotalRevenue       int             `json:"total_revenue"`
	TotalSpend         int             `json:"total_spend"`
	EventLog           []string        `json:"event_log"`
	LastHygieneEvent   float64         `json:"last_hygiene_event"`
	Reputation         *float64        `json:"reputation"`
	OrderChannel       string          `json:"order_channel"`
	CommercialStrategy string          `json:"commercial_strategy"`
	ResearchFocus      string          `json:"research_focus"`
}

type TileStateV1 struct {
	Kind           string `json:"kind"`
	Rot            int    `json:"rot"`
	HygienePenalty int    `json:"hygiene_penalty"`
}

// ItemStateV1 carries one item. Cooked is a legacy flag from saves that
// predate the stage enum; it is read when stage is absent and never written.
type ItemStateV1 struct {
	X              int        `json:"x"`
	Y              int        `json:"y"`
	Progress       float64    `json:"progress"`
	Stage          stageValue `json:"stage"`
	DeliveryBoost  float64    `json:"delivery_boost"`
	IngredientType string     `json:"ingredient_type"`
	RecipeKey      string     `json:"recipe_key"`
	Cooked         *bool      `json:"cooked,omitempty"`
}

type DeliveryStateV1 struct {
	Mode           string  `json:"mode"`
	Remaining      float64 `json:"remaining"`
	SLA            float64 `json:"sla"`
	Duration       float64 `json:"duration"`
	RecipeKey      string  `json:"recipe_key"`
	Reward         int     `json:"reward"`
	Elapsed        float64 `json:"elapsed"`
	LateMultiplier float64 `json:"late_reward_multiplier"`
	ChannelKey     string  `json:"channel_key"`
}

type OrderStateV1 struct {
	RecipeKey    string  `json:"recipe_key"`
	RemainingSLA float64 `json:"remaining_sla"`
	TotalSLA     float64 `json:"total_sla"`
	Reward       int     `json:"reward"`
	ChannelKey   string  `json:"channel_key"`
}

type ChannelStatsV1 struct {
	Completed int `json:"completed"`
	Ontime    int `json:"ontime"`
	Missed    int `json:"missed"`
	Revenue   int `json:"revenue"`
}

// stageValue decodes an item stage from either the current string names or
// the legacy numeric encoding, an index into the stage order clamped to its
// bounds. Unknown stage strings are kept verbatim.
type stageValue string

func (s *stageValue) UnmarshalJSON(data []byte) error {
	var idx int
	if err := json.Unmarshal(data, &idx); err == nil {
		if idx < 0 {
			idx = 0
		}
		if idx > len(stageOrder)-1 {
			idx = len(stageOrder) - 1
		}
		*s = stageValue(stageOrder[idx])
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = stageValue(str)
	return nil
}

// ExportState copies the whole world into a StateV1. The copy shares no
// memory with the live world, so it can be written out while ticking
// resumes.
func (w *World) ExportState() StateV1 {
	grid := make([][]TileStateV1, len(w.grid))
	for y, row := range w.grid {
		out := make([]TileStateV1, len(row))
		for x, t := range row {
			out[x] = TileStateV1{Kind: string(t.Kind), Rot: t.Rot, HygienePenalty: t.HygienePenalty}
		}
		grid[y] = out
	}

	items := make([]ItemStateV1, len(w.items))
	for i, it := range w.items {
		items[i] = ItemStateV1{
			X:              it.X,
			Y:              it.Y,
			Progress:       it.Progress,
			Stage:          stageValue(it.Stage),
			DeliveryBoost:  it.DeliveryBoost,
			IngredientType: it.IngredientType,
			RecipeKey:      it.RecipeKey,
		}
	}

	deliveries := make([]DeliveryStateV1, len(w.deliveries))
	for i, d := range w.deliveries {
		deliveries[i] = DeliveryStateV1{
			Mode:           d.Mode,
			Remaining:      d.Remaining,
			SLA:            d.SLA,
			Duration:       d.Duration,
			RecipeKey:      d.RecipeKey,
			Reward:         d.Reward,
			Elapsed:        d.Elapsed,
			LateMultiplier: d.LateMultiplier,
			ChannelKey:     d.ChannelKey,
		}
	}

	orders := make([]OrderStateV1, len(w.orders))
	for i, o := range w.orders {
		orders[i] = OrderStateV1{
			RecipeKey:    o.RecipeKey,
			RemainingSLA: o.RemainingSLA,
			TotalSLA:     o.TotalSLA,
			Reward:       o.Reward,
			ChannelKey:   o.ChannelKey,
		}
	}

	stats := make(map[string]ChannelStatsV1, len(w.channelStats))
	for key, cs := range w.channelStats {
		stats[key] = ChannelStatsV1{Completed: cs.Completed, Ontime: cs.Ontime, Missed: cs.Missed, Revenue: cs.Revenue}
	}

	hygiene := w.hygiene
	level := w.expansionLevel
	money := w.money
	reputation := w.reputation

	return StateV1{
		Grid:         grid,
		Items:        items,
		Deliveries:   deliveries,
		Orders:       orders,
		ChannelStats: stats,

		Time:               w.time,
		SpawnTimer:         w.spawnTimer,
		OrderSpawnTimer:    w.orderSpawnTimer,
		Hygiene:            &hygiene,
		Bottleneck:         w.bottleneck,
		ExpansionLevel:     &level,
		ExpansionProgress:  w.expansionProgress,
		ResearchPoints:     w.researchPoints,
		TechTree:           copyBoolMap(w.techTree),
		AutoBotCharge:      w.autoBotCharge,
		Completed:          w.completed,
		Ontime:             w.ontime,
		Money:              &money,
		Waste:              w.waste,
		TotalRevenue:       w.totalRevenue,
		TotalSpend:         w.totalSpend,
		EventLog:           append([]string(nil), w.eventLog...),
		LastHygieneEvent:   w.lastHygieneEvent,
		Reputation:         &reputation,
		OrderChannel:       w.orderChannel,
		CommercialStrategy: w.commercialStrategy,
		ResearchFocus:      w.researchFocus,
	}
}

// RestoreState resets the world to a saved snapshot. Every field is
// tolerated: a grid with the wrong dimensions is replaced by the fresh
// starter layout, unknown tech keys are dropped, unknown recipe and channel
// keys fall back to the catalog defaults, and absent scalars take their
// construction defaults. The RNG stream and tick counter are not part of
// snapshots and keep running from wherever they are.
func (w *World) RestoreState(st StateV1) {
	if gridDimsMatch(st.Grid, w.cfg.Width, w.cfg.Height) {
		grid := newGrid(w.cfg.Width, w.cfg.Height)
		for y, row := range st.Grid {
			for x, t := range row {
				grid[y][x] = Tile{
					Kind:           parseTileKind(t.Kind),
					Rot:            normRot(t.Rot),
					HygienePenalty: t.HygienePenalty,
				}
			}
		}
		w.grid = grid
	} else {
		w.grid = newGrid(w.cfg.Width, w.cfg.Height)
		w.placeStaticWorld()
	}
	w.locateSource()

	w.items = make([]*Item, 0, len(st.Items))
	for _, raw := range st.Items {
		stage := Stage(raw.Stage)
		if raw.Stage == "" && raw.Cooked != nil {
			stage = StageRaw
			if *raw.Cooked {
				stage = StageBaked
			}
		}
		if stage == "" {
			stage = StageRaw
		}
		w.items = append(w.items, &Item{
			X:              clampInt(raw.X, 0, w.cfg.Width-1),
			Y:              clampInt(raw.Y, 0, w.cfg.Height-1),
			Progress:       raw.Progress,
			Stage:          stage,
			DeliveryBoost:  raw.DeliveryBoost,
			IngredientType: raw.IngredientType,
			RecipeKey:      raw.RecipeKey,
		})
	}

	w.deliveries = make([]*Delivery, 0, len(st.Deliveries))
	for _, raw := range st.Deliveries {
		recipeKey := raw.RecipeKey
		recipe, ok := w.cats.Recipes.ByKey[recipeKey]
		if !ok {
			recipeKey = w.cats.Recipes.DefaultKey()
			recipe = w.cats.Recipes.ByKey[recipeKey]
		}
		mode := raw.Mode
		if mode == "" {
			mode = "drone"
		}
		sla := raw.SLA
		if sla <= 0 {
			sla = recipe.SLA
		}
		duration := raw.Duration
		if duration <= 0 {
			duration = raw.Remaining
		}
		reward := raw.Reward
		if reward <= 0 {
			reward = recipe.SellPrice
		}
		channelKey := raw.ChannelKey
		if _, known := w.cats.Channels.ByKey[channelKey]; !known {
			channelKey = w.cats.Channels.DefaultKey()
		}
		late := raw.LateMultiplier
		if late <= 0 {
			late = 1.0
		}
		w.deliveries = append(w.deliveries, &Delivery{
			Mode:           mode,
			Remaining:      raw.Remaining,
			SLA:            sla,
			Duration:       duration,
			RecipeKey:      recipeKey,
			Reward:         reward,
			Elapsed:        raw.Elapsed,
			LateMultiplier: late,
			ChannelKey:     channelKey,
		})
	}

	w.orders = make([]*Order, 0, len(st.Orders))
	for _, raw := range st.Orders {
		recipeKey := raw.RecipeKey
		recipe, ok := w.cats.Recipes.ByKey[recipeKey]
		if !ok {
			recipeKey = w.cats.Recipes.DefaultKey()
			recipe = w.cats.Recipes.ByKey[recipeKey]
		}
		totalSLA := raw.TotalSLA
		if totalSLA <= 0 {
			totalSLA = recipe.SLA
		}
		remaining := raw.RemainingSLA
		if remaining <= 0 {
			remaining = totalSLA
		}
		reward := raw.Reward
		if reward <= 0 {
			reward = recipe.SellPrice
		}
		channelKey := raw.ChannelKey
		if _, known := w.cats.Channels.ByKey[channelKey]; !known {
			channelKey = w.cats.Channels.DefaultKey()
		}
		w.orders = append(w.orders, &Order{
			RecipeKey:    recipeKey,
			RemainingSLA: remaining,
			TotalSLA:     totalSLA,
			Reward:       reward,
			ChannelKey:   channelKey,
		})
	}

	w.time = st.Time
	w.spawnTimer = st.SpawnTimer
	w.orderSpawnTimer = st.OrderSpawnTimer
	w.hygiene = floatOr(st.Hygiene, 100.0)
	w.bottleneck = st.Bottleneck
	w.expansionLevel = intOr(st.ExpansionLevel, 1)
	w.expansionProgress = st.ExpansionProgress
	w.researchPoints = st.ResearchPoints
	w.techTree = map[string]bool{}
	for key := range w.cats.Research.ByKey {
		w.techTree[key] = st.TechTree[key]
	}
	w.autoBotCharge = st.AutoBotCharge
	w.completed = st.Completed
	w.ontime = st.Ontime
	w.money = intOr(st.Money, w.bal.StartingMoney)
	w.waste = st.Waste
	w.totalRevenue = st.TotalRevenue
	w.totalSpend = st.TotalSpend
	w.eventLog = append([]string(nil), st.EventLog...)
	if len(w.eventLog) > eventLogCap {
		w.eventLog = w.eventLog[len(w.eventLog)-eventLogCap:]
	}
	w.lastHygieneEvent = st.LastHygieneEvent
	w.reputation = floatOr(st.Reputation, w.bal.ReputationStarting)

	w.channelStats = map[string]*ChannelStats{}
	for key := range w.cats.Channels.ByKey {
		cs := &ChannelStats{}
		if saved, known := st.ChannelStats[key]; known {
			cs.Completed = saved.Completed
			cs.Ontime = saved.Ontime
			cs.Missed = saved.Missed
			cs.Revenue = saved.Revenue
		}
		w.channelStats[key] = cs
	}

	// Channel, strategy and focus are revalidated against the catalogs and
	// the restored reputation and tech tree. A valid saved channel is
	// reinstated without an event-log entry, so restoring a save leaves the
	// log exactly as it was written.
	w.orderChannel = w.cats.Channels.DefaultKey()
	w.commercialStrategy = w.cats.Commercials.DefaultKey()
	w.researchFocus = ""
	if st.OrderChannel != "" {
		if _, known := w.cats.Channels.ByKey[st.OrderChannel]; known {
			if w.OrderChannelUnlocked(st.OrderChannel) {
				w.orderChannel = st.OrderChannel
			} else {
				w.logEvent("Order channel %s locked (need rep %.0f)", st.OrderChannel, w.OrderChannelMinReputation(st.OrderChannel))
			}
		}
	}
	if st.CommercialStrategy != "" {
		w.setCommercialStrategy(st.CommercialStrategy, false)
	}
	if focus := st.ResearchFocus; focus != "" {
		if _, known := w.cats.Research.ByKey[focus]; known && !w.techTree[focus] && w.researchPrereqsMet(focus) {
			w.researchFocus = focus
		}
	}

	w.tickCount = 0
}

func gridDimsMatch(rows [][]TileStateV1, width, height int) bool {
	if len(rows) != height {
		return false
	}
	for _, row := range rows {
		if len(row) != width {
			return false
		}
	}
	return true
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
