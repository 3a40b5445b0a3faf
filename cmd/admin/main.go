package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"pizzatorio.dev/internal/persistence/indexdb"
	"pizzatorio.dev/internal/persistence/savefile"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "runs":
			runsCmd(os.Args[2:])
			return
		case "kpi":
			kpiCmd(os.Args[2:])
			return
		case "prune":
			pruneCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "saves":
			savesCmd(os.Args[2:])
			return
		}
	}
	savesCmd(os.Args[1:])
}

func savesCmd(args []string) {
	fs := flag.NewFlagSet("saves", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	saves, err := listSaves(filepath.Join(*dataDir, "saves"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, path := range saves {
		hdr, err := savefile.ReadHeader(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(path), err)
			continue
		}
		printJSON(struct {
			File    string  `json:"file"`
			Version int     `json:"version"`
			RunID   string  `json:"run_id"`
			Tick    uint64  `json:"tick"`
			Seed    int64   `json:"seed"`
			SimTime float64 `json:"sim_time"`
		}{filepath.Base(path), hdr.Version, hdr.RunID, hdr.Tick, hdr.Seed, hdr.SimTime})
	}
}

func runsCmd(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite index path (default: <data>/index.db)")
	_ = fs.Parse(args)

	idx := openIndex(*dataDir, *dbPath)
	defer idx.Close()

	runs, err := idx.Runs(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, r := range runs {
		printJSON(r)
	}
}

func kpiCmd(args []string) {
	fs := flag.NewFlagSet("kpi", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite index path (default: <data>/index.db)")
	runID := fs.String("run", "", "run id (required)")
	fromTick := fs.Uint64("from_tick", 0, "first tick (inclusive)")
	toTick := fs.Uint64("to_tick", 0, "last tick (inclusive; 0 = no bound)")
	limit := fs.Int("limit", 0, "result limit (0 = all)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*runID) == "" {
		fmt.Fprintln(os.Stderr, "missing -run")
		os.Exit(2)
	}

	idx := openIndex(*dataDir, *dbPath)
	defer idx.Close()

	points, err := idx.KPIHistory(context.Background(), *runID, *fromTick, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	if *limit > 0 && len(points) > *limit {
		points = points[:*limit]
	}
	for _, p := range points {
		printJSON(p)
	}
}

func pruneCmd(args []string) {
	fs := flag.NewFlagSet("prune", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	keep := fs.Int("keep", 5, "number of newest saves to keep")
	_ = fs.Parse(args)

	if *keep < 1 {
		fmt.Fprintln(os.Stderr, "invalid -keep")
		os.Exit(2)
	}

	saves, err := listSaves(filepath.Join(*dataDir, "saves"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	if len(saves) <= *keep {
		fmt.Printf("nothing to prune: %d saves, keeping %d\n", len(saves), *keep)
		return
	}
	for _, path := range saves[:len(saves)-*keep] {
		if err := os.Remove(path); err != nil {
			fmt.Fprintln(os.Stderr, "remove:", err)
			os.Exit(1)
		}
		fmt.Println("removed", path)
	}
}

func openIndex(dataDir, dbPath string) *indexdb.SQLiteIndex {
	path := strings.TrimSpace(dbPath)
	if path == "" {
		path = filepath.Join(dataDir, "index.db")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "index:", err)
		os.Exit(2)
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	return idx
}

// listSaves returns the tick-named save files under dir, oldest first.
func listSaves(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type entry struct {
		tick uint64
		path string
	}
	found := make([]entry, 0, len(ents))
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
		found = append(found, entry{tick: tick, path: filepath.Join(dir, name)})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].tick < found[j].tick })
	out := make([]string, 0, len(found))
	for _, f := range found {
		out = append(out, f.path)
	}
	return out, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
