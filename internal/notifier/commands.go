package notifier

import (
	"context"
	"html"
	"strconv"
	"strings"

	"StockRanker/internal/screener"
)

// Commands answers chat commands from the latest screening result.
type Commands struct {
	Latest func() *screener.Result
	Run    func(ctx context.Context) (*screener.Result, error)
	TopN   int
}

// Handle implements CommandHandler.
//
//	/top [n]  ranking of the latest run
//	/run      start a run now and reply with its ranking
func (c *Commands) Handle(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	// "/top@SomeBot" in group chats
	name, _, _ := strings.Cut(fields[0], "@")

	switch name {
	case "/top":
		n := c.TopN
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
				n = v
			}
		}
		res := c.Latest()
		if res == nil {
			return "No run has completed yet. Send /run to start one."
		}
		return FormatTelegramSummary(res, n)
	case "/run":
		if c.Run == nil {
			return "Manual runs are disabled."
		}
		res, err := c.Run(ctx)
		if err != nil {
			return "Run failed: " + html.EscapeString(err.Error())
		}
		return FormatTelegramSummary(res, c.TopN)
	case "/help", "/start":
		return "/top [n] - latest ranking\n/run - screen the universe now"
	default:
		return ""
	}
}
