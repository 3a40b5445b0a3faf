package world

type TileKind string

const (
	TileEmpty         TileKind = "empty"
	TileConveyor      TileKind = "conveyor"
	TileProcessor     TileKind = "processor"
	TileOven          TileKind = "oven"
	TileBotDock       TileKind = "bot_dock"
	TileAssemblyTable TileKind = "assembly_table"
	TileSource        TileKind = "source"
	TileSink          TileKind = "sink"
)

// Tile is one grid cell. Rot indexes dirOffsets and is only meaningful on
// tiles that move items. HygienePenalty is reserved for per-tile dirt and
// is carried through snapshots unchanged.
type Tile struct {
	Kind           TileKind
	Rot            int
	HygienePenalty int
}

// dirOffsets maps a rotation index to the (dx, dy) an item leaves with.
var dirOffsets = [4][2]int{
	{1, 0},
	{0, 1},
	{-1, 0},
	{0, -1},
}

// parseTileKind normalizes snapshot and build input. The machine kind is
// a legacy alias for processor; anything unknown becomes empty ground.
func parseTileKind(s string) TileKind {
	switch TileKind(s) {
	case TileConveyor, TileProcessor, TileOven, TileBotDock, TileAssemblyTable, TileSource, TileSink:
		return TileKind(s)
	case "machine":
		return TileProcessor
	default:
		return TileEmpty
	}
}

func normRot(rot int) int {
	return ((rot % 4) + 4) % 4
}

// stageFlow is the machine transition table: what stage a machine accepts,
// what it emits, the research points granted per transform, and for bot
// docks the delivery acceleration stamped onto the item.
type stageFlow struct {
	From          Stage
	To            Stage
	ResearchGain  float64
	DeliveryBoost float64
}

var processFlow = map[TileKind]stageFlow{
	TileProcessor: {From: StageRaw, To: StageProcessed, ResearchGain: 0.12},
	TileOven:      {From: StageProcessed, To: StageBaked, ResearchGain: 0.25},
	TileBotDock:   {From: StageBaked, To: StageBaked, ResearchGain: 0.06, DeliveryBoost: 1.2},
}
