package world

type Stage string

const (
	StageRaw       Stage = "raw"
	StageProcessed Stage = "processed"
	StageBaked     Stage = "baked"
)

var stageOrder = []Stage{StageRaw, StageProcessed, StageBaked}

func stageIndex(s Stage) int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Item is a physical good travelling the grid. Progress is the dwell
// fraction on the current tile; movement happens only when it reaches 1.
// IngredientType is set at the source and never changes. RecipeKey is
// empty until an assembly table tags the item for a matching order.
type Item struct {
	X, Y           int
	Progress       float64
	Stage          Stage
	DeliveryBoost  float64
	IngredientType string
	RecipeKey      string
}

// Order is a pending customer request. RemainingSLA counts down each tick;
// at zero the order is missed and removed.
type Order struct {
	RecipeKey    string
	RemainingSLA float64
	TotalSLA     float64
	Reward       int
	ChannelKey   string
}

// Delivery is an in-flight shipment. Remaining counts down to settlement,
// Elapsed counts up against SLA to decide on-time payment. LateMultiplier
// carries the channel's late payout factor from creation time so channel
// edits never reprice shipments already on the road.
type Delivery struct {
	Mode           string
	Remaining      float64
	SLA            float64
	Duration       float64
	RecipeKey      string
	Reward         int
	Elapsed        float64
	ChannelKey     string
	LateMultiplier float64
}

// ChannelStats accumulates per-channel settlement counters for the whole
// run. Revenue records amounts actually paid out, late or not.
type ChannelStats struct {
	Completed int
	Ontime    int
	Missed    int
	Revenue   int
}
