package collector

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartJSON = `{"chart":{"result":[{"timestamp":[1704153600,1704240000,1704326400,1704412800],
"indicators":{"quote":[{"open":[10,11,null,12],"high":[11,12,null,13],"low":[9,10,null,11],
"close":[10.5,11.5,null,12.5],"volume":[100,200,null,300]}]}}],"error":null}}`

func TestYahooFetcher(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	f := NewYahooFetcher("6mo", ".NS", "")
	f.BaseURL = srv.URL

	bars, err := f.FetchDailyBars(context.Background(), "ITC")
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/ITC.NS", gotPath)
	assert.Equal(t, "interval=1d&range=6mo", gotQuery)
	require.Len(t, bars, 3)
	assert.Equal(t, 12.5, bars[2].Close)
	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i].Date.After(bars[i-1].Date))
	}
	assert.False(t, math.IsNaN(bars[1].Volume))
}

func TestYahooFetcher_SymbolMap(t *testing.T) {
	f := NewYahooFetcher("", ".NS", "")
	assert.Equal(t, "INFY.NS", f.yahooSymbol("INFOSYS"))
	assert.Equal(t, "SBIN.NS", f.yahooSymbol("SBIN"))
	assert.Equal(t, "1y", f.Range)
}

func TestYahooFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusNotFound, `{}`},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		{"bad json", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := NewYahooFetcher("1y", "", "")
			f.BaseURL = srv.URL
			_, err := f.FetchDailyBars(context.Background(), "X")
			assert.Error(t, err)
		})
	}
}
