package world

// KPIFrame is a point-in-time summary of the world's headline numbers. It
// carries plain copies only, so a frame stays valid after further ticks and
// can be marshalled off the loop goroutine.
type KPIFrame struct {
	Tick           uint64  `json:"tick"`
	Time           float64 `json:"time"`
	Money          int     `json:"money"`
	Reputation     float64 `json:"reputation"`
	Hygiene        float64 `json:"hygiene"`
	Bottleneck     float64 `json:"bottleneck"`
	OntimeRate     float64 `json:"ontime_rate"`
	Completed      int     `json:"completed"`
	Ontime         int     `json:"ontime"`
	Waste          int     `json:"waste"`
	ResearchPoints float64 `json:"research_points"`
	ExpansionLevel int     `json:"expansion_level"`
	Items          int     `json:"items"`
	Orders         int     `json:"orders"`
	Deliveries     int     `json:"deliveries"`
	OrderChannel   string  `json:"order_channel"`
	Commercial     string  `json:"commercial_strategy"`
}

// OntimeRate is the percentage of completed deliveries that met their SLA.
// A world with no completions yet reports 100.
func (w *World) OntimeRate() float64 {
	if w.completed == 0 {
		return 100.0
	}
	return float64(w.ontime) / float64(w.completed) * 100.0
}

func (w *World) Completed() int { return w.completed }
func (w *World) Ontime() int    { return w.ontime }
func (w *World) Waste() int     { return w.waste }

func (w *World) KPI() KPIFrame {
	return KPIFrame{
		Tick:           w.tickCount,
		Time:           w.time,
		Money:          w.money,
		Reputation:     w.reputation,
		Hygiene:        w.hygiene,
		Bottleneck:     w.bottleneck,
		OntimeRate:     w.OntimeRate(),
		Completed:      w.completed,
		Ontime:         w.ontime,
		Waste:          w.waste,
		ResearchPoints: w.researchPoints,
		ExpansionLevel: w.expansionLevel,
		Items:          len(w.items),
		Orders:         len(w.orders),
		Deliveries:     len(w.deliveries),
		OrderChannel:   w.orderChannel,
		Commercial:     w.commercialStrategy,
	}
}
