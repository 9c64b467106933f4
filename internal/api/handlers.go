package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"StockRanker/internal/recorder"
	"StockRanker/internal/scheduler"
	"StockRanker/internal/screener"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type rankingEntry struct {
	Rank      int      `json:"rank"`
	Symbol    string   `json:"symbol"`
	Score     float64  `json:"score"`
	Failed    []string `json:"failed,omitempty"`
	HasSignal bool     `json:"has_signal"`
}

type rankingsResponse struct {
	StartedAt   time.Time         `json:"started_at"`
	Mode        string            `json:"mode"`
	Rankings    []rankingEntry    `json:"rankings"`
	Unavailable []unavailableInfo `json:"unavailable"`
}

type unavailableInfo struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

type contributionInfo struct {
	Indicator string   `json:"indicator"`
	Value     *float64 `json:"value"`
	Error     string   `json:"error,omitempty"`
}

type symbolResponse struct {
	Symbol        string             `json:"symbol"`
	Rank          int                `json:"rank"`
	Total         float64            `json:"total"`
	HasSignal     bool               `json:"has_signal"`
	Contributions []contributionInfo `json:"contributions"`
}

type indicatorsResponse struct {
	Symbol string                `json:"symbol"`
	Dates  []string              `json:"dates"`
	Series map[string][]*float64 `json:"series"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok"}
	if res := s.runner.Latest(); res != nil {
		body["last_run"] = res.StartedAt
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) latest(w http.ResponseWriter) (*screener.Result, bool) {
	res := s.runner.Latest()
	if res == nil {
		writeError(w, http.StatusServiceUnavailable, "no_run", "no screening run has completed yet")
		return nil, false
	}
	return res, true
}

func (s *Server) rankings(w http.ResponseWriter, r *http.Request) {
	topN := s.topN
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_top", "top must be a non-negative integer")
			return
		}
		topN = n
	}
	res, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, buildRankings(res, topN))
}

func (s *Server) triggerRun(w http.ResponseWriter, r *http.Request) {
	res, err := s.runner.RunNow(r.Context())
	if errors.Is(err, scheduler.ErrRunInProgress) {
		writeError(w, http.StatusConflict, "run_in_progress", err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("manual run")
		writeError(w, http.StatusInternalServerError, "run_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, buildRankings(res, s.topN))
}

func (s *Server) symbol(w http.ResponseWriter, r *http.Request) {
	res, ok := s.latest(w)
	if !ok {
		return
	}
	sym := strings.ToUpper(mux.Vars(r)["symbol"])
	sc, found := res.Score(sym)
	if !found {
		writeError(w, http.StatusNotFound, "unknown_symbol", sym+" was not scored in the latest run")
		return
	}

	out := symbolResponse{Symbol: sc.Symbol, Total: sc.Total, HasSignal: sc.HasSignal()}
	for _, e := range res.Rank(0) {
		if e.Symbol == sc.Symbol {
			out.Rank = e.Rank
			break
		}
	}
	for _, c := range sc.Contributions {
		info := contributionInfo{Indicator: string(c.Indicator)}
		if c.OK() {
			info.Value = finite(c.Value)
		} else {
			info.Error = c.Err.Error()
		}
		out.Contributions = append(out.Contributions, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) indicators(w http.ResponseWriter, r *http.Request) {
	res, ok := s.latest(w)
	if !ok {
		return
	}
	sym := strings.ToUpper(mux.Vars(r)["symbol"])
	sc, found := res.Score(sym)
	if !found {
		writeError(w, http.StatusNotFound, "unknown_symbol", sym+" was not scored in the latest run")
		return
	}

	out := indicatorsResponse{Symbol: sc.Symbol, Series: make(map[string][]*float64)}
	if sc.Indicators != nil {
		for _, d := range sc.Indicators.Dates {
			out.Dates = append(out.Dates, d.Format("2006-01-02"))
		}
	}
	for name, values := range sc.Indicators.Series() {
		col := make([]*float64, len(values))
		for i, v := range values {
			col[i] = finite(v)
		}
		out.Series[name] = col
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) symbolHistory(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}
	sym := strings.ToUpper(mux.Vars(r)["symbol"])
	points, err := s.history.History(sym, limit)
	if err != nil {
		log.Error().Err(err).Str("symbol", sym).Msg("load history")
		writeError(w, http.StatusInternalServerError, "history_failed", "could not load history")
		return
	}
	if points == nil {
		points = []recorder.HistoryPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbol": sym, "history": points})
}

func buildRankings(res *screener.Result, topN int) rankingsResponse {
	out := rankingsResponse{
		StartedAt:   res.StartedAt,
		Mode:        string(res.Mode),
		Rankings:    []rankingEntry{},
		Unavailable: []unavailableInfo{},
	}
	for _, e := range res.Rank(topN) {
		entry := rankingEntry{Rank: e.Rank, Symbol: e.Symbol, Score: e.Score, HasSignal: e.HasSignal}
		for _, ind := range e.Failed {
			entry.Failed = append(entry.Failed, string(ind))
		}
		out.Rankings = append(out.Rankings, entry)
	}
	for _, u := range res.Unavailable {
		out.Unavailable = append(out.Unavailable, unavailableInfo{Symbol: u.Symbol, Reason: u.Err.Error()})
	}
	return out
}

// finite returns nil for NaN and ±Inf so they encode as null.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}
