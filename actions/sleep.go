package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/gorhill/cronexpr"
)

// Sleep waits "ms" milliseconds (or until the context is done) and
// returns its parameters.
func Sleep(ctx context.Context, x interface{}) (interface{}, error) {
	m, err := params("sleep", x)
	if err != nil {
		return nil, err
	}
	ms, _ := number(m["ms"])
	if ms < 0 {
		return nil, fmt.Errorf("sleep: negative ms %v", ms)
	}

	t := time.NewTimer(time.Duration(ms * float64(time.Millisecond)))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
		return m, nil
	}
}

// CronNext returns the next time (RFC3339, UTC) matching "cron"
// after "from" (RFC3339, default now).
func CronNext(ctx context.Context, x interface{}) (interface{}, error) {
	m, err := params("cron.next", x)
	if err != nil {
		return nil, err
	}
	expr, err := stringParam("cron.next", m, "cron")
	if err != nil {
		return nil, err
	}

	from := time.Now()
	if s, is := m["from"].(string); is && s != "" {
		if from, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return nil, fmt.Errorf("cron.next: %w", err)
		}
	}

	c, err := cronexpr.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("cron.next: %w", err)
	}
	next := c.Next(from)
	if next.IsZero() {
		return nil, nil
	}
	return next.UTC().Format(time.RFC3339), nil
}
