package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"StockRanker/internal/model"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02-Jan-2006",
	"02-01-2006",
	"01/02/2006",
	time.RFC3339,
}

// CSVFetcher reads one CSV file per symbol from Dir. The file is
// <Dir>/<symbol>.csv, or <Dir>/<symbol> when the extension is missing.
// Columns are located by header name: Date, Open, High, Low, Close and an
// optional Volume. Unparsable prices become NaN; unparsable dates fail.
type CSVFetcher struct {
	Dir string
}

// NewCSVFetcher creates a fetcher reading from dir.
func NewCSVFetcher(dir string) *CSVFetcher {
	return &CSVFetcher{Dir: dir}
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) path(symbol string) (string, error) {
	for _, p := range []string{
		filepath.Join(f.Dir, symbol+".csv"),
		filepath.Join(f.Dir, symbol),
	} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("csv: no file for %s in %s", symbol, f.Dir)
}

func (f *CSVFetcher) FetchDailyBars(ctx context.Context, symbol string) ([]model.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := f.path(symbol)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("csv open: %w", err)
	}
	defer file.Close()
	return ParseCSV(file)
}

// ParseCSV decodes daily bars from r. Rows keep file order.
func ParseCSV(r io.Reader) ([]model.Bar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range []string{"date", "open", "high", "low", "close"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv: missing %q column", name)
		}
	}
	volCol, hasVol := cols["volume"]

	var bars []model.Bar
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		field := func(i int) string {
			if i < len(rec) {
				return rec[i]
			}
			return ""
		}
		date, err := parseDate(field(cols["date"]))
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		bar := model.Bar{
			Date:  date,
			Open:  parsePrice(field(cols["open"])),
			High:  parsePrice(field(cols["high"])),
			Low:   parsePrice(field(cols["low"])),
			Close: parsePrice(field(cols["close"])),
		}
		if hasVol {
			bar.Volume = parsePrice(field(volCol))
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, errors.New("csv: no rows")
	}
	return bars, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}

func parsePrice(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
