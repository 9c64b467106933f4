package recorder

import (
	"time"

	"github.com/google/uuid"

	"StockRanker/internal/model"
	"StockRanker/internal/screener"
)

// RunSnapshot holds everything persisted for one screening run.
type RunSnapshot struct {
	ID          string
	StartedAt   time.Time
	Duration    time.Duration
	Mode        string
	TopN        int
	Scores      []model.SymbolScore
	Ranking     []model.RankEntry // full ranking, not truncated to TopN
	Unavailable []UnavailableSymbol
}

// UnavailableSymbol is a symbol excluded from a run.
type UnavailableSymbol struct {
	Symbol string
	Reason string
}

// HistoryPoint is one past score of a symbol.
type HistoryPoint struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Rank      int       `json:"rank"`
	Total     float64   `json:"total"`
	HasSignal bool      `json:"has_signal"`
}

// NewRunSnapshot builds a snapshot with a fresh run ID.
func NewRunSnapshot(res *screener.Result, topN int) *RunSnapshot {
	snap := &RunSnapshot{
		ID:        uuid.NewString(),
		StartedAt: res.StartedAt,
		Duration:  res.Duration,
		Mode:      string(res.Mode),
		TopN:      topN,
		Scores:    res.Scores,
		Ranking:   res.Rank(0),
	}
	for _, u := range res.Unavailable {
		snap.Unavailable = append(snap.Unavailable, UnavailableSymbol{Symbol: u.Symbol, Reason: u.Err.Error()})
	}
	return snap
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(snap *RunSnapshot) error
	History(symbol string, limit int) ([]HistoryPoint, error)
	Close() error
}
