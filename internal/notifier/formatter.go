package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockRanker/internal/model"
	"StockRanker/internal/screener"
)

// FormatConsoleSummary renders a ranking as plain text for stdout.
func FormatConsoleSummary(entries []model.RankEntry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Top %d Stocks Based on Indicators:\n", len(entries)))
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("%s with score: %.4f", e.Symbol, e.Score))
		b.WriteString(failureNote(e))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatTelegramSummary renders the top of a run as a Telegram HTML message.
func FormatTelegramSummary(res *screener.Result, topN int) string {
	var b strings.Builder
	entries := res.Rank(topN)

	b.WriteString(fmt.Sprintf("📊 <b>StockRanker</b> | %s | %s\n\n",
		res.StartedAt.Format("2006-01-02"), res.Mode))
	if len(entries) == 0 {
		b.WriteString("No symbols could be scored.\n")
	}
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("%d. <b>%s</b>  %.4f", e.Rank, html.EscapeString(e.Symbol), e.Score))
		b.WriteString(html.EscapeString(failureNote(e)))
		b.WriteString("\n")
	}

	if len(res.Unavailable) > 0 {
		names := make([]string, 0, len(res.Unavailable))
		for _, u := range res.Unavailable {
			names = append(names, html.EscapeString(u.Symbol))
		}
		b.WriteString(fmt.Sprintf("\n⚠️ No data: %s\n", strings.Join(names, ", ")))
	}
	b.WriteString(fmt.Sprintf("\n%d scored, %d unavailable, took %s",
		len(res.Scores), len(res.Unavailable), res.Duration.Round(1e6)))
	return b.String()
}

func failureNote(e model.RankEntry) string {
	if !e.HasSignal {
		return " (no signal)"
	}
	if len(e.Failed) == 0 {
		return ""
	}
	names := make([]string, len(e.Failed))
	for i, ind := range e.Failed {
		names[i] = string(ind)
	}
	return fmt.Sprintf(" (failed: %s)", strings.Join(names, ", "))
}
