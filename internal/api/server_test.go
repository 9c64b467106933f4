package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockRanker/internal/collector"
	"StockRanker/internal/metrics"
	"StockRanker/internal/model"
	"StockRanker/internal/recorder"
	"StockRanker/internal/scheduler"
	"StockRanker/internal/screener"
	"StockRanker/internal/strategy"
)

type fakeRunner struct {
	latest *screener.Result
	err    error
	runs   int
}

func (f *fakeRunner) Latest() *screener.Result { return f.latest }

func (f *fakeRunner) RunNow(_ context.Context) (*screener.Result, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return f.latest, nil
}

type fakeHistory struct {
	recorder.NoopRecorder
	points []recorder.HistoryPoint
	err    error
}

func (f *fakeHistory) History(_ string, limit int) ([]recorder.HistoryPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.points) {
		return f.points[:limit], nil
	}
	return f.points, nil
}

func sampleResult() *screener.Result {
	d0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	nan := math.NaN()
	return &screener.Result{
		StartedAt: d0,
		Mode:      strategy.ModeParity,
		Scores: []model.SymbolScore{
			{
				Symbol: "AAA", Index: 0, Total: 5,
				Contributions: []model.Contribution{
					{Indicator: model.IndicatorRSI, Value: 5},
					{Indicator: model.IndicatorBollinger, Err: &model.IndicatorError{
						Indicator: model.IndicatorBollinger, Err: model.ErrInsufficientHistory}},
				},
				Indicators: &model.IndicatorSet{
					Dates: []time.Time{d0, d0.AddDate(0, 0, 1)},
					RSI:   []float64{nan, 5},
					SAR:   []float64{1, 2},
				},
			},
			{
				Symbol: "BBB", Index: 1, Total: 9,
				Contributions: []model.Contribution{{Indicator: model.IndicatorRSI, Value: 9}},
			},
		},
		Unavailable: []collector.Unavailable{{Symbol: "CCC", Index: 2, Err: model.ErrDataUnavailable}},
	}
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestRankings(t *testing.T) {
	srv := NewServer(":0", &fakeRunner{latest: sampleResult()}, nil, nil, 1)
	h := srv.Handler()

	rec, body := do(t, h, http.MethodGet, "/api/rankings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	rankings := body["rankings"].([]any)
	require.Len(t, rankings, 1)
	assert.Equal(t, "BBB", rankings[0].(map[string]any)["symbol"])
	assert.Equal(t, "parity", body["mode"])
	assert.Len(t, body["unavailable"], 1)

	_, body = do(t, h, http.MethodGet, "/api/rankings?top=0")
	rankings = body["rankings"].([]any)
	require.Len(t, rankings, 2)
	second := rankings[1].(map[string]any)
	assert.Equal(t, "AAA", second["symbol"])
	assert.Equal(t, []any{"bollinger"}, second["failed"])

	rec, body = do(t, h, http.MethodGet, "/api/rankings?top=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_top", body["error"])
}

func TestNoRunYet(t *testing.T) {
	h := NewServer(":0", &fakeRunner{}, nil, nil, 4).Handler()

	rec, body := do(t, h, http.MethodGet, "/api/rankings")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "no_run", body["error"])

	rec, body = do(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotContains(t, body, "last_run")
}

func TestSymbol(t *testing.T) {
	h := NewServer(":0", &fakeRunner{latest: sampleResult()}, nil, nil, 4).Handler()

	rec, body := do(t, h, http.MethodGet, "/api/symbols/aaa")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AAA", body["symbol"])
	assert.Equal(t, 2.0, body["rank"])
	assert.Equal(t, true, body["has_signal"])

	contribs := body["contributions"].([]any)
	require.Len(t, contribs, 2)
	bb := contribs[1].(map[string]any)
	assert.Nil(t, bb["value"])
	assert.Contains(t, bb["error"], "insufficient history")

	rec, body = do(t, h, http.MethodGet, "/api/symbols/CCC")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_symbol", body["error"])
}

func TestIndicators(t *testing.T) {
	h := NewServer(":0", &fakeRunner{latest: sampleResult()}, nil, nil, 4).Handler()

	rec, body := do(t, h, http.MethodGet, "/api/symbols/AAA/indicators")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"2024-05-01", "2024-05-02"}, body["dates"])
	series := body["series"].(map[string]any)
	assert.Equal(t, []any{nil, 5.0}, series["RSI"])
	assert.Equal(t, []any{1.0, 2.0}, series["Parabolic SAR"])
	assert.NotContains(t, series, "MACD")

	rec, body = do(t, h, http.MethodGet, "/api/symbols/BBB/indicators")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["series"])
}

func TestTriggerRun(t *testing.T) {
	runner := &fakeRunner{latest: sampleResult()}
	h := NewServer(":0", runner, nil, nil, 4).Handler()

	rec, body := do(t, h, http.MethodPost, "/api/runs")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, body["rankings"], 2)
	assert.Equal(t, 1, runner.runs)

	runner.err = scheduler.ErrRunInProgress
	rec, body = do(t, h, http.MethodPost, "/api/runs")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "run_in_progress", body["error"])

	runner.err = errors.New("boom")
	rec, _ = do(t, h, http.MethodPost, "/api/runs")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/runs")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHistory(t *testing.T) {
	hist := &fakeHistory{points: []recorder.HistoryPoint{
		{RunID: "r2", Rank: 1, Total: 3, HasSignal: true},
		{RunID: "r1", Rank: 2, Total: 1, HasSignal: true},
	}}
	h := NewServer(":0", &fakeRunner{}, hist, nil, 4).Handler()

	rec, body := do(t, h, http.MethodGet, "/api/symbols/aaa/history?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AAA", body["symbol"])
	points := body["history"].([]any)
	require.Len(t, points, 1)
	assert.Equal(t, "r2", points[0].(map[string]any)["run_id"])

	rec, _ = do(t, h, http.MethodGet, "/api/symbols/AAA/history?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	hist.err = errors.New("db locked")
	rec, _ = do(t, h, http.MethodGet, "/api/symbols/AAA/history")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	_, body = do(t, NewServer(":0", &fakeRunner{}, nil, nil, 4).Handler(), http.MethodGet, "/api/symbols/AAA/history")
	assert.Equal(t, []any{}, body["history"])
}

func TestMetricsAndNotFound(t *testing.T) {
	m := metrics.New()
	m.ObserveRun(1.5, 2, 1, sampleResult().Rank(1))
	h := NewServer(":0", &fakeRunner{}, nil, m, 4).Handler()

	rec, _ := do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stockranker_runs_total 1")

	rec, body := do(t, h, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])
}
