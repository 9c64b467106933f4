package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockRanker/internal/collector"
	"StockRanker/internal/model"
	"StockRanker/internal/screener"
	"StockRanker/internal/strategy"
)

func score(sym string, idx int, total float64, failed ...model.Indicator) model.SymbolScore {
	s := model.SymbolScore{Symbol: sym, Index: idx, Total: total}
	for _, ind := range model.Indicators {
		c := model.Contribution{Indicator: ind}
		for _, f := range failed {
			if f == ind {
				c.Err = &model.IndicatorError{Indicator: ind, Err: model.ErrInsufficientHistory}
			}
		}
		s.Contributions = append(s.Contributions, c)
	}
	return s
}

func sampleResult() *screener.Result {
	return &screener.Result{
		StartedAt: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC),
		Duration:  2 * time.Second,
		Mode:      strategy.ModeParity,
		Scores: []model.SymbolScore{
			score("AAA", 0, 10),
			score("BBB", 1, 30, model.IndicatorBollinger),
			score("CCC", 2, 0, model.Indicators...),
		},
		Unavailable: []collector.Unavailable{{Symbol: "DDD", Index: 3, Err: model.ErrDataUnavailable}},
	}
}

func TestFormatConsoleSummary(t *testing.T) {
	out := FormatConsoleSummary(sampleResult().Rank(4))
	lines := strings.Split(strings.TrimSpace(out), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "Top 3 Stocks Based on Indicators:", lines[0])
	assert.Equal(t, "BBB with score: 30.0000 (failed: bollinger)", lines[1])
	assert.Equal(t, "AAA with score: 10.0000", lines[2])
	assert.Equal(t, "CCC with score: 0.0000 (no signal)", lines[3])
}

func TestFormatTelegramSummary(t *testing.T) {
	out := FormatTelegramSummary(sampleResult(), 2)

	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "1. <b>BBB</b>")
	assert.Contains(t, out, "2. <b>AAA</b>")
	assert.NotContains(t, out, "CCC")
	assert.Contains(t, out, "No data: DDD")
	assert.Contains(t, out, "3 scored, 1 unavailable")
}

func TestFormatTelegramSummary_Empty(t *testing.T) {
	out := FormatTelegramSummary(&screener.Result{Mode: strategy.ModeNormalized}, 4)
	assert.Contains(t, out, "No symbols could be scored.")
	assert.Contains(t, out, "normalized")
}

func TestCommands_Handle(t *testing.T) {
	res := sampleResult()
	var runs int32
	c := &Commands{
		Latest: func() *screener.Result { return res },
		Run: func(ctx context.Context) (*screener.Result, error) {
			atomic.AddInt32(&runs, 1)
			return res, nil
		},
		TopN: 1,
	}
	ctx := context.Background()

	top := c.Handle(ctx, "/top")
	assert.Contains(t, top, "BBB")
	assert.NotContains(t, top, "AAA")

	assert.Contains(t, c.Handle(ctx, "/top 2"), "AAA")
	assert.Contains(t, c.Handle(ctx, "/top@RankerBot 3"), "CCC")

	assert.Contains(t, c.Handle(ctx, "/run"), "BBB")
	assert.EqualValues(t, 1, atomic.LoadInt32(&runs))

	assert.Contains(t, c.Handle(ctx, "/help"), "/top")
	assert.Empty(t, c.Handle(ctx, "hello"))
	assert.Empty(t, c.Handle(ctx, "   "))
}

func TestCommands_NoResultAndRunError(t *testing.T) {
	c := &Commands{
		Latest: func() *screener.Result { return nil },
		Run: func(ctx context.Context) (*screener.Result, error) {
			return nil, errors.New("busy <now>")
		},
	}
	ctx := context.Background()
	assert.Contains(t, c.Handle(ctx, "/top"), "No run has completed yet")
	assert.Equal(t, "Run failed: busy &lt;now&gt;", c.Handle(ctx, "/run"))

	c.Run = nil
	assert.Equal(t, "Manual runs are disabled.", c.Handle(ctx, "/run"))
}

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL

	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestTelegramNotifier_SendWithRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, `{"ok":false}`, http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	n.Backoff = time.Millisecond

	require.NoError(t, n.SendWithRetry(context.Background(), "msg", 3))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, -10)
	err := n.SendWithRetry(context.Background(), "msg", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 retries exhausted")
	assert.Contains(t, err.Error(), "status 429")
}

func TestTelegramNotifier_StartPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	replies := make(chan string, 1)
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			if atomic.AddInt32(&polls, 1) == 1 {
				assert.Equal(t, "0", r.URL.Query().Get("offset"))
				w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /top "}},{"update_id":8}]}`))
				return
			}
			assert.Equal(t, "9", r.URL.Query().Get("offset"))
			cancel()
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case "/botTOKEN/sendMessage":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"]
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL

	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(_ context.Context, cmd string) string { return "got " + cmd })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	assert.Equal(t, "got /top", <-replies)
}
