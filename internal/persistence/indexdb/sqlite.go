// Package indexdb maintains a sqlite read model over factory runs: one row
// per run and an append-only KPI history sampled from the tick loop. The
// index is advisory; save files remain the source of truth for resume.
package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"pizzatorio.dev/internal/sim/world"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan kpiRow
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type kpiRow struct {
	RunID string
	Frame world.KPIFrame

	// flush, when set, marks a barrier: the writer commits everything
	// queued ahead of it, then closes flush to signal completion.
	flush chan struct{}
}

type Run struct {
	RunID       string
	Seed        int64
	StartedUnix int64
	Label       string
}

// KPIPoint is one sampled row of kpi_history.
type KPIPoint struct {
	Tick           uint64
	SimTime        float64
	Money          int
	Reputation     float64
	Hygiene        float64
	Bottleneck     float64
	Completed      int
	Ontime         int
	Waste          int
	ResearchPoints float64
	Orders         int
	Deliveries     int
	Items          int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan kpiRow, 8192),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_unix INTEGER NOT NULL,
			label TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS kpi_history (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			sim_time REAL NOT NULL,
			money INTEGER NOT NULL,
			reputation REAL NOT NULL,
			hygiene REAL NOT NULL,
			bottleneck REAL NOT NULL,
			completed INTEGER NOT NULL,
			ontime INTEGER NOT NULL,
			waste INTEGER NOT NULL,
			research_points REAL NOT NULL,
			orders INTEGER NOT NULL,
			deliveries INTEGER NOT NULL,
			items INTEGER NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_kpi_run_time ON kpi_history(run_id, sim_time);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// StartRun registers a run before its first KPI row. Re-registering the
// same run id overwrites the row, which makes resumed runs idempotent.
func (s *SQLiteIndex) StartRun(runID string, seed int64, label string) error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO runs(run_id,seed,started_unix,label) VALUES(?,?,?,?)`,
		runID, seed, time.Now().Unix(), label,
	)
	return err
}

// WriteKPI queues one KPI sample. The write is asynchronous and is dropped
// when the indexer falls behind, so the tick loop never stalls on sqlite.
func (s *SQLiteIndex) WriteKPI(runID string, frame world.KPIFrame) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- kpiRow{RunID: runID, Frame: frame}:
	default:
	}
}

func (s *SQLiteIndex) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id,seed,started_unix,label FROM runs ORDER BY started_unix,run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Seed, &r.StartedUnix, &r.Label); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// KPIHistory returns the sampled rows of one run in tick order. A zero
// toTick means no upper bound.
func (s *SQLiteIndex) KPIHistory(ctx context.Context, runID string, fromTick, toTick uint64) ([]KPIPoint, error) {
	if toTick == 0 {
		toTick = ^uint64(0) >> 1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick,sim_time,money,reputation,hygiene,bottleneck,completed,ontime,waste,research_points,orders,deliveries,items
		 FROM kpi_history WHERE run_id=? AND tick>=? AND tick<=? ORDER BY tick`,
		runID, int64(fromTick), int64(toTick),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KPIPoint
	for rows.Next() {
		var p KPIPoint
		var tick int64
		if err := rows.Scan(&tick, &p.SimTime, &p.Money, &p.Reputation, &p.Hygiene, &p.Bottleneck,
			&p.Completed, &p.Ontime, &p.Waste, &p.ResearchPoints, &p.Orders, &p.Deliveries, &p.Items); err != nil {
			return nil, err
		}
		p.Tick = uint64(tick)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Flush blocks until every KPI row queued before it has been committed.
// Tests and shutdown paths use it; the tick loop never should.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	done := make(chan struct{})
	s.ch <- kpiRow{flush: done}
	<-done
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertKPI, _ := s.db.Prepare(
		`INSERT OR REPLACE INTO kpi_history(run_id,tick,sim_time,money,reputation,hygiene,bottleneck,completed,ontime,waste,research_points,orders,deliveries,items)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	defer func() {
		if insertKPI != nil {
			_ = insertKPI.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 256
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		if r.flush != nil {
			commit()
			close(r.flush)
			continue
		}
		begin()
		if tx == nil || insertKPI == nil {
			continue
		}
		f := r.Frame
		if _, err := tx.Stmt(insertKPI).Exec(
			r.RunID,
			int64(f.Tick),
			f.Time,
			f.Money,
			f.Reputation,
			f.Hygiene,
			f.Bottleneck,
			f.Completed,
			f.Ontime,
			f.Waste,
			f.ResearchPoints,
			f.Orders,
			f.Deliveries,
			f.Items,
		); err != nil {
			rollback()
			continue
		}
		opCount++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
