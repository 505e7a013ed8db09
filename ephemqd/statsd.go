package ephemqd

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ephemq/ephemq/internal/statsd"
	"github.com/ephemq/ephemq/internal/writers"
)

func (n *EPHEMQD) statsdPrefix() string {
	opts := n.getOpts()
	if !strings.Contains(opts.StatsdPrefix, "%s") {
		return opts.StatsdPrefix
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	host := net.JoinHostPort(hostname, fmt.Sprint(n.RealHTTPAddr().Port))
	return strings.Replace(opts.StatsdPrefix, "%s", statsd.HostKey(host), -1)
}

// writeStatsd emits one round of stats. Counters are sent as the change since
// last.
func writeStatsd(client *statsd.Client, stats Stats, last Stats) {
	lastQueues := make(map[string]QueueStats, len(last.Queues))
	for _, q := range last.Queues {
		lastQueues[q.Name] = q
	}

	for _, q := range stats.Queues {
		lastQueue := lastQueues[q.Name]
		key := statsd.SafeKey(q.Name)

		diff := q.PushCount - lastQueue.PushCount
		client.Incr(fmt.Sprintf("queue.%s.push_count", key), int64(diff))

		diff = q.PopCount - lastQueue.PopCount
		client.Incr(fmt.Sprintf("queue.%s.pop_count", key), int64(diff))

		client.Gauge(fmt.Sprintf("queue.%s.depth", key), q.Depth)
	}

	client.Gauge("queues", int64(len(stats.Queues)))
	client.Gauge("waiters", stats.Waiters)

	if stats.PopWait != nil {
		for _, item := range stats.PopWait.Percentiles {
			stat := fmt.Sprintf("pop_wait_%.0f", item["quantile"]*100.0)
			// values are nanoseconds, so truncating to int64 loses nothing
			client.Gauge(stat, int64(item["value"]))
		}
	}
}

func (n *EPHEMQD) statsdLoop() {
	var lastStats Stats
	interval := n.getOpts().StatsdInterval
	ticker := time.NewTicker(interval)
	for {
		select {
		case <-n.ctx.Done():
			goto exit
		case <-ticker.C:
			addr := n.getOpts().StatsdAddress
			prefix := n.statsdPrefix()
			conn, err := net.DialTimeout("udp", addr, time.Second)
			if err != nil {
				n.logf(LOG_ERROR, "failed to create UDP socket to statsd(%s)", addr)
				continue
			}
			spread := interval - time.Second
			if spread <= 0 {
				spread = interval / 2
			}
			sw := writers.NewSpreadWriter(conn, spread, n.ctx.Done())
			bw := writers.NewBoundaryBufferedWriter(sw, n.getOpts().StatsdUDPPacketSize)
			client := statsd.NewClient(bw, prefix)

			n.logf(LOG_INFO, "STATSD: pushing stats to %s", addr)

			stats := n.GetStats("")
			writeStatsd(client, stats, lastStats)
			lastStats = stats

			bw.Flush()
			sw.Flush()
			conn.Close()
		}
	}

exit:
	ticker.Stop()
	n.logf(LOG_INFO, "STATSD: closing")
}
