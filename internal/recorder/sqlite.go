package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"StockRanker/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so the API can read history while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                TEXT PRIMARY KEY,
			timestamp         INTEGER NOT NULL,
			duration_ms       INTEGER,
			mode              TEXT,
			top_n             INTEGER,
			scored_count      INTEGER,
			unavailable_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS symbol_scores (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL REFERENCES runs(id),
			symbol     TEXT NOT NULL,
			rank       INTEGER,
			total      REAL,
			rsi        REAL,
			macd       REAL,
			bollinger  REAL,
			sar        REAL,
			failed     TEXT,
			has_signal INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_symbol ON symbol_scores(symbol, run_id)`,

		`CREATE TABLE IF NOT EXISTS unavailable_symbols (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			symbol TEXT NOT NULL,
			reason TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run, its scores and its unavailable symbols in one transaction.
func (r *SQLiteRecorder) RecordRun(snap *RunSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ts := snap.StartedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	if _, err := tx.Exec(`INSERT INTO runs
		(id, timestamp, duration_ms, mode, top_n, scored_count, unavailable_count)
		VALUES (?,?,?,?,?,?,?)`,
		snap.ID, ts.Unix(), snap.Duration.Milliseconds(), snap.Mode, snap.TopN,
		len(snap.Scores), len(snap.Unavailable),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	ranks := make(map[string]int, len(snap.Ranking))
	for _, e := range snap.Ranking {
		ranks[e.Symbol] = e.Rank
	}

	for _, sc := range snap.Scores {
		failed := make([]string, 0, 4)
		for _, ind := range sc.Failed() {
			failed = append(failed, string(ind))
		}
		_, err := tx.Exec(`INSERT INTO symbol_scores
			(run_id, symbol, rank, total, rsi, macd, bollinger, sar, failed, has_signal)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			snap.ID, sc.Symbol, ranks[sc.Symbol], sc.Total,
			contribution(sc, model.IndicatorRSI),
			contribution(sc, model.IndicatorMACD),
			contribution(sc, model.IndicatorBollinger),
			contribution(sc, model.IndicatorSAR),
			strings.Join(failed, ","), sc.HasSignal(),
		)
		if err != nil {
			return fmt.Errorf("insert score %s: %w", sc.Symbol, err)
		}
	}

	for _, u := range snap.Unavailable {
		if _, err := tx.Exec(`INSERT INTO unavailable_symbols (run_id, symbol, reason) VALUES (?,?,?)`,
			snap.ID, u.Symbol, u.Reason); err != nil {
			return fmt.Errorf("insert unavailable %s: %w", u.Symbol, err)
		}
	}

	return tx.Commit()
}

// History returns the most recent scores of symbol, newest first.
func (r *SQLiteRecorder) History(symbol string, limit int) ([]HistoryPoint, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.Query(`SELECT s.run_id, r.timestamp, s.rank, s.total, s.has_signal
		FROM symbol_scores s JOIN runs r ON r.id = s.run_id
		WHERE s.symbol = ?
		ORDER BY r.timestamp DESC, s.id DESC
		LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryPoint
	for rows.Next() {
		var (
			p  HistoryPoint
			ts int64
		)
		if err := rows.Scan(&p.RunID, &ts, &p.Rank, &p.Total, &p.HasSignal); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		p.Timestamp = time.Unix(ts, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

// contribution maps a failed or missing indicator to NULL.
func contribution(sc model.SymbolScore, ind model.Indicator) sql.NullFloat64 {
	c, ok := sc.Contribution(ind)
	if !ok || !c.OK() {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: c.Value, Valid: true}
}
