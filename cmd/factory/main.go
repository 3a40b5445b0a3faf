package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"pizzatorio.dev/internal/persistence/indexdb"
	"pizzatorio.dev/internal/persistence/savefile"
	"pizzatorio.dev/internal/sim/catalogs"
	"pizzatorio.dev/internal/sim/tuning"
	"pizzatorio.dev/internal/sim/world"
	"pizzatorio.dev/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8390", "http listen address (observer + diagnostics)")
		seed       = flag.Int64("seed", 1337, "world seed (used only when starting a fresh run)")
		width      = flag.Int("width", 20, "grid width (fresh runs only)")
		height     = flag.Int("height", 15, "grid height (fresh runs only)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to balance.yaml (default: <configs>/balance.yaml)")
		label      = flag.String("label", "", "run label recorded in the index")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite run index")

		savePath   = flag.String("save", "", "path to save file to load (optional)")
		loadLatest = flag.Bool("load_latest_save", true, "load latest save from data dir if present (when -save is empty)")

		tickHz    = flag.Int("tick_hz", 60, "wall-clock tick rate")
		speed     = flag.Float64("speed", 1.0, "simulated-time multiplier per tick")
		saveEvery = flag.Uint64("save_every", 3600, "autosave interval in ticks (0 disables)")
		kpiEvery  = flag.Uint64("kpi_every", 60, "kpi index sample interval in ticks (0 disables)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[factory] ", log.LstdFlags|log.Lmicroseconds)

	cats := catalogs.Load(*configDir)
	for _, warn := range cats.Warnings {
		logger.Printf("catalogs: %s", warn)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "balance.yaml")
	}
	bal, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
		} else {
			logger.Printf("load tuning: %v; using defaults", err)
		}
	}

	saveDir := filepath.Join(*dataDir, "saves")
	_ = os.MkdirAll(saveDir, 0o755)

	// Optional: read-model index (does not affect sim determinism).
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
	}

	// Create world (fresh or resumed from a save).
	saveToLoad := strings.TrimSpace(*savePath)
	if saveToLoad == "" && *loadLatest {
		saveToLoad = latestSave(saveDir)
	}

	var (
		w        *world.World
		runID    string
		baseTick uint64
	)
	if saveToLoad != "" {
		save, err := savefile.Read(saveToLoad)
		if err != nil {
			logger.Fatalf("read save: %v", err)
		}
		w, err = world.New(world.WorldConfig{
			Width:  save.Width,
			Height: save.Height,
			Seed:   save.Header.Seed,
		}, cats, bal)
		if err != nil {
			logger.Fatalf("world: %v", err)
		}
		w.RestoreState(save.State)
		runID = save.Header.RunID
		baseTick = save.Header.Tick
		logger.Printf("resumed from save=%s tick=%d time=%.1fs", filepath.Base(saveToLoad), baseTick, w.Time())
	} else {
		w, err = world.New(world.WorldConfig{
			Width:  *width,
			Height: *height,
			Seed:   *seed,
		}, cats, bal)
		if err != nil {
			logger.Fatalf("world: %v", err)
		}
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	if err := idx.StartRun(runID, w.Config().Seed, *label); err != nil {
		logger.Printf("index: start run: %v", err)
	}

	obs := observer.NewServer(observer.BootstrapInfo{
		RunID:      runID,
		Seed:       w.Config().Seed,
		Width:      w.Config().Width,
		Height:     w.Config().Height,
		TickRateHz: *tickHz,
		CatalogDigests: map[string]string{
			"recipes":        cats.Recipes.Digest,
			"order_channels": cats.Channels.Digest,
			"research":       cats.Research.Digest,
			"commercials":    cats.Commercials.Digest,
		},
	}, logger)

	ctx, cancel := signalContext()
	defer cancel()

	buildSave := func(w *world.World) savefile.SaveV1 {
		return savefile.SaveV1{
			Header: savefile.Header{
				Version: 1,
				RunID:   runID,
				Seed:    w.Config().Seed,
				Tick:    baseTick + w.TickCount(),
				SimTime: w.Time(),
			},
			Width:  w.Config().Width,
			Height: w.Config().Height,
			State:  w.ExportState(),
		}
	}

	// Save writer. Saves are exported on the loop goroutine and written here.
	saveCh := make(chan savefile.SaveV1, 2)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case save := <-saveCh:
				path := filepath.Join(saveDir, fmt.Sprintf("%d.save.zst", save.Header.Tick))
				if err := savefile.Write(path, save); err != nil {
					logger.Printf("save write: %v", err)
				}
			}
		}
	}()

	var lastFrame atomic.Pointer[world.KPIFrame]

	onTick := func(w *world.World) {
		frame := w.KPI()
		// Resumed runs keep counting ticks where the save left off.
		frame.Tick += baseTick

		lastFrame.Store(&frame)
		obs.Publish(frame)

		if idx != nil && *kpiEvery > 0 && frame.Tick%*kpiEvery == 0 {
			idx.WriteKPI(runID, frame)
		}
		if *saveEvery > 0 && frame.Tick%*saveEvery == 0 {
			select {
			case saveCh <- buildSave(w):
			default:
			}
		}
	}

	worldErr := make(chan error, 1)
	go func() {
		worldErr <- w.Run(ctx, world.RunOptions{TickHz: *tickHz, Speed: *speed, OnTick: onTick})
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		frame := lastFrame.Load()
		if frame == nil {
			// No tick yet.
			return
		}

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP pizzatorio_tick Current run tick.\n")
		fmt.Fprintf(rw, "# TYPE pizzatorio_tick gauge\n")
		fmt.Fprintf(rw, "pizzatorio_tick{run=%q} %d\n", runID, frame.Tick)

		fmt.Fprintf(rw, "# HELP pizzatorio_money Cash on hand.\n")
		fmt.Fprintf(rw, "# TYPE pizzatorio_money gauge\n")
		fmt.Fprintf(rw, "pizzatorio_money{run=%q} %d\n", runID, frame.Money)

		fmt.Fprintf(rw, "# HELP pizzatorio_reputation Reputation (0..100).\n")
		fmt.Fprintf(rw, "# TYPE pizzatorio_reputation gauge\n")
		fmt.Fprintf(rw, "pizzatorio_reputation{run=%q} %.2f\n", runID, frame.Reputation)

		fmt.Fprintf(rw, "# HELP pizzatorio_hygiene Hygiene score (0..100).\n")
		fmt.Fprintf(rw, "# TYPE pizzatorio_hygiene gauge\n")
		fmt.Fprintf(rw, "pizzatorio_hygiene{run=%q} %.2f\n", runID, frame.Hygiene)

		fmt.Fprintf(rw, "# HELP pizzatorio_bottleneck Transport congestion (0..100).\n")
		fmt.Fprintf(rw, "# TYPE pizzatorio_bottleneck gauge\n")
		fmt.Fprintf(rw, "pizzatorio_bottleneck{run=%q} %.2f\n", runID, frame.Bottleneck)

		fmt.Fprintf(rw, "# HELP pizzatorio_ontime_rate Percentage of completed deliveries inside SLA.\n")
		fmt.Fprintf(rw, "# TYPE pizzatorio_ontime_rate gauge\n")
		fmt.Fprintf(rw, "pizzatorio_ontime_rate{run=%q} %.2f\n", runID, frame.OntimeRate)

		fmt.Fprintf(rw, "# HELP pizzatorio_research_points Accumulated research points.\n")
		fmt.Fprintf(rw, "# TYPE pizzatorio_research_points gauge\n")
		fmt.Fprintf(rw, "pizzatorio_research_points{run=%q} %.2f\n", runID, frame.ResearchPoints)

		fmt.Fprintf(rw, "# HELP pizzatorio_expansion_level Current expansion level.\n")
		fmt.Fprintf(rw, "# TYPE pizzatorio_expansion_level gauge\n")
		fmt.Fprintf(rw, "pizzatorio_expansion_level{run=%q} %d\n", runID, frame.ExpansionLevel)

		fmt.Fprintf(rw, "# HELP pizzatorio_entities Live entity counts.\n")
		fmt.Fprintf(rw, "# TYPE pizzatorio_entities gauge\n")
		fmt.Fprintf(rw, "pizzatorio_entities{run=%q,kind=%q} %d\n", runID, "items", frame.Items)
		fmt.Fprintf(rw, "pizzatorio_entities{run=%q,kind=%q} %d\n", runID, "orders", frame.Orders)
		fmt.Fprintf(rw, "pizzatorio_entities{run=%q,kind=%q} %d\n", runID, "deliveries", frame.Deliveries)

		fmt.Fprintf(rw, "# HELP pizzatorio_completed_total Completed deliveries.\n")
		fmt.Fprintf(rw, "# TYPE pizzatorio_completed_total counter\n")
		fmt.Fprintf(rw, "pizzatorio_completed_total{run=%q} %d\n", runID, frame.Completed)

		fmt.Fprintf(rw, "# HELP pizzatorio_ontime_total Deliveries completed inside SLA.\n")
		fmt.Fprintf(rw, "# TYPE pizzatorio_ontime_total counter\n")
		fmt.Fprintf(rw, "pizzatorio_ontime_total{run=%q} %d\n", runID, frame.Ontime)

		fmt.Fprintf(rw, "# HELP pizzatorio_waste_total Items discarded as waste.\n")
		fmt.Fprintf(rw, "# TYPE pizzatorio_waste_total counter\n")
		fmt.Fprintf(rw, "pizzatorio_waste_total{run=%q} %d\n", runID, frame.Waste)
	})
	mux.HandleFunc("/v1/observer/bootstrap", obs.BootstrapHandler())
	mux.HandleFunc("/v1/observe", obs.WSHandler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("run=%s listening on %s", runID, *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	if err := <-worldErr; err != nil && err != context.Canceled {
		logger.Printf("world stopped: %v", err)
	}

	final := buildSave(w)
	path := filepath.Join(saveDir, fmt.Sprintf("%d.save.zst", final.Header.Tick))
	if err := savefile.Write(path, final); err != nil {
		logger.Printf("final save: %v", err)
	} else {
		logger.Printf("saved %s (tick=%d time=%.1fs)", filepath.Base(path), final.Header.Tick, final.Header.SimTime)
	}
	if idx != nil {
		idx.Flush()
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func latestSave(saveDir string) string {
	ents, err := os.ReadDir(saveDir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".save.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".save.zst")
		tick, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(saveDir, name)
		}
	}
	return best
}
