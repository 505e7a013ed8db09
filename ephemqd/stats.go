package ephemqd

import (
	"bytes"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ephemq/ephemq/internal/quantile"
	"github.com/ephemq/ephemq/internal/version"
)

type QueueStats struct {
	Name      string    `json:"name"`
	Depth     int64     `json:"depth"`
	PushCount uint64    `json:"push_count"`
	PopCount  uint64    `json:"pop_count"`
	CreatedAt time.Time `json:"created_at"`
}

type Stats struct {
	Version   string           `json:"version"`
	Health    string           `json:"health"`
	StartTime int64            `json:"start_time"`
	Waiters   int64            `json:"waiters"`
	Queues    []QueueStats     `json:"queues"`
	PopWait   *quantile.Result `json:"pop_wait"`
}

// GetStats snapshots the daemon. A non-empty queue limits the queue list to
// that name.
func (n *EPHEMQD) GetStats(queue string) Stats {
	return Stats{
		Version:   version.Binary,
		Health:    n.GetHealth(),
		StartTime: n.startTime.Unix(),
		Waiters:   atomic.LoadInt64(&n.waiters),
		Queues:    n.registry.Snapshot(queue),
		PopWait:   n.popWait.Result(),
	}
}

func prettyPrintStats(stats Stats) []byte {
	var buf bytes.Buffer
	now := time.Now()
	start := time.Unix(stats.StartTime, 0)

	fmt.Fprintf(&buf, "%s\n", version.String("ephemqd"))
	fmt.Fprintf(&buf, "start_time %v\n", start.Format(time.RFC3339))
	fmt.Fprintf(&buf, "uptime %s\n", now.Sub(start).Truncate(time.Second))
	fmt.Fprintf(&buf, "\nHealth: %s\n", stats.Health)
	fmt.Fprintf(&buf, "Waiters: %d\n", stats.Waiters)
	if stats.PopWait != nil && len(stats.PopWait.Percentiles) > 0 {
		fmt.Fprintf(&buf, "Pop wait: %d samples [%s]\n", stats.PopWait.Count, stats.PopWait)
	}

	if len(stats.Queues) == 0 {
		buf.WriteString("\nNO_QUEUES\n")
		return buf.Bytes()
	}
	for _, q := range stats.Queues {
		fmt.Fprintf(&buf, "\n[%-15s] depth: %-5d pushed: %-9d popped: %-9d created: %s\n",
			q.Name, q.Depth, q.PushCount, q.PopCount, q.CreatedAt.Format(time.RFC3339))
	}
	return buf.Bytes()
}
