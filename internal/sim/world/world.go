package world

import (
	"math/rand"

	"pizzatorio.dev/internal/sim/catalogs"
	"pizzatorio.dev/internal/sim/tuning"
)

// World is a single-threaded authoritative factory simulation. All state
// mutations happen inside Tick and the command methods; none of them are
// safe for concurrent use, so everything must run on the loop goroutine.
type World struct {
	cfg  WorldConfig
	cats *catalogs.Catalogs
	bal  tuning.Balance
	rng  *rand.Rand

	tickCount uint64
	time      float64

	grid       [][]Tile // [y][x]
	items      []*Item
	orders     []*Order
	deliveries []*Delivery

	spawnTimer       float64
	orderSpawnTimer  float64
	hygiene          float64
	lastHygieneEvent float64
	bottleneck       float64

	expansionLevel    int
	expansionProgress float64

	researchPoints float64
	techTree       map[string]bool
	researchFocus  string

	autoBotCharge float64

	money        int
	totalRevenue int
	totalSpend   int
	reputation   float64

	completed int
	ontime    int
	waste     int

	orderChannel       string
	commercialStrategy string
	channelStats       map[string]*ChannelStats

	eventLog []string

	sourceX, sourceY int
	hasSource        bool

	// Ingredient lookups derived from the balance table. The key and
	// weight slices preserve table order for stable weighted draws.
	ingredients       map[string]tuning.Ingredient
	ingredientKeys    []string
	ingredientWeights []float64

	// requiredProducts caches recipeRequiredProducts per recipe key.
	requiredProducts map[string]map[string]bool
}

func New(cfg WorldConfig, cats *catalogs.Catalogs, bal tuning.Balance) (*World, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	w := &World{
		cfg:  cfg,
		cats: cats,
		bal:  bal,
		rng:  rand.New(rand.NewSource(cfg.Seed)),

		hygiene:        100.0,
		expansionLevel: 1,
		money:          bal.StartingMoney,
		reputation:     bal.ReputationStarting,

		techTree:     map[string]bool{},
		channelStats: map[string]*ChannelStats{},
	}
	for key := range cats.Research.ByKey {
		w.techTree[key] = false
	}
	for key := range cats.Channels.ByKey {
		w.channelStats[key] = &ChannelStats{}
	}
	w.orderChannel = cats.Channels.DefaultKey()
	w.commercialStrategy = cats.Commercials.DefaultKey()

	w.ingredients = make(map[string]tuning.Ingredient, len(bal.Ingredients))
	w.ingredientKeys = make([]string, 0, len(bal.Ingredients))
	w.ingredientWeights = make([]float64, 0, len(bal.Ingredients))
	for _, ing := range bal.Ingredients {
		if _, dup := w.ingredients[ing.Key]; dup {
			continue
		}
		w.ingredients[ing.Key] = ing
		w.ingredientKeys = append(w.ingredientKeys, ing.Key)
		w.ingredientWeights = append(w.ingredientWeights, ing.SpawnWeight)
	}
	w.requiredProducts = make(map[string]map[string]bool, len(cats.Recipes.ByKey))
	for key, recipe := range cats.Recipes.ByKey {
		w.requiredProducts[key] = recipeRequiredProducts(recipe)
	}

	w.logEvent("Factory initialized")

	w.grid = newGrid(cfg.Width, cfg.Height)
	w.placeStaticWorld()
	w.locateSource()
	return w, nil
}

func newGrid(width, height int) [][]Tile {
	grid := make([][]Tile, height)
	for y := range grid {
		grid[y] = make([]Tile, width)
		for x := range grid[y] {
			grid[y][x] = Tile{Kind: TileEmpty}
		}
	}
	return grid
}

// placeStaticWorld lays the starter line: a source feeding a conveyor run
// into the sink, with a processor and an oven on the way and a bot dock
// parked over the oven. On the default 20x15 grid this puts the source at
// (1,7), processor (7,7), oven (12,7), dock (12,6) and sink (18,7).
func (w *World) placeStaticWorld() {
	width, height := w.cfg.Width, w.cfg.Height
	y := height / 2
	srcX, sinkX := 1, width-2

	w.grid[y][srcX] = Tile{Kind: TileSource}
	w.grid[y][sinkX] = Tile{Kind: TileSink}
	for x := srcX + 1; x < sinkX; x++ {
		w.grid[y][x] = Tile{Kind: TileConveyor}
	}
	procX := srcX + (sinkX-srcX)*2/5
	ovenX := srcX + (sinkX-srcX)*2/3
	w.grid[y][procX] = Tile{Kind: TileProcessor}
	w.grid[y][ovenX] = Tile{Kind: TileOven}
	if y > 0 {
		w.grid[y-1][ovenX] = Tile{Kind: TileBotDock, Rot: 1}
	}
}

func (w *World) locateSource() {
	w.hasSource = false
	for y := range w.grid {
		for x := range w.grid[y] {
			if w.grid[y][x].Kind == TileSource {
				w.sourceX, w.sourceY = x, y
				w.hasSource = true
				return
			}
		}
	}
}

func (w *World) inBounds(x, y int) bool {
	return x >= 0 && x < w.cfg.Width && y >= 0 && y < w.cfg.Height
}

// TileAt returns a copy of the tile, or a zero empty tile out of bounds.
func (w *World) TileAt(x, y int) Tile {
	if !w.inBounds(x, y) {
		return Tile{Kind: TileEmpty}
	}
	return w.grid[y][x]
}

func (w *World) Config() WorldConfig { return w.cfg }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
