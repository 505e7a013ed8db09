package main

import (
	"flag"
	"fmt"

	"github.com/ephemq/ephemq/ephemqd"
	"github.com/ephemq/ephemq/internal/app"
	"github.com/ephemq/ephemq/internal/lg"
)

type config map[string]interface{}

// Validate settings in the config file, and fatal on errors
func (cfg config) Validate() {
	if v, exists := cfg["log_level"]; exists {
		level, err := lg.ParseLogLevel(fmt.Sprintf("%v", v), false)
		if err != nil {
			logFatal("failed parsing log_level %+v", v)
		}
		cfg["log_level"] = level.String()
	}
	if v, exists := cfg["poll_interval"]; exists {
		if _, ok := v.(string); !ok {
			logFatal("poll_interval must be a duration string, got %+v", v)
		}
	}
}

func ephemqdFlagSet(opts *ephemqd.Options) *flag.FlagSet {
	flagSet := flag.NewFlagSet("ephemqd", flag.ExitOnError)

	// basic options
	flagSet.Bool("version", false, "print version string")
	flagSet.String("config", "", "path to config file")

	flagSet.String("log-level", opts.LogLevel, "set log verbosity: debug, info, warn, error, or fatal")
	flagSet.String("log-prefix", opts.LogPrefix, "log message prefix")
	flagSet.Bool("verbose", false, "[deprecated] has no effect, use --log-level")

	flagSet.String("http-address", opts.HTTPAddress, "<addr>:<port> to listen on for queue PUT/GET requests")
	flagSet.String("admin-http-address", opts.AdminHTTPAddress, "<addr>:<port> to listen on for /ping, /info, /stats and /metrics")

	// pop options
	flagSet.Duration("poll-interval", opts.PollInterval, "duration between probes while a timed GET waits for a message")
	flagSet.Bool("strict-timeout", opts.StrictTimeout, "reject GET requests with a malformed timeout (400) instead of ignoring it")

	flagSet.Int("status-every", opts.StatusEvery, "log request timing for PUT and GET every N requests (0 disables)")

	// statsd integration options
	flagSet.String("statsd-address", opts.StatsdAddress, "UDP <addr>:<port> of a statsd daemon for pushing stats")
	flagSet.Duration("statsd-interval", opts.StatsdInterval, "duration between pushing to statsd")
	flagSet.String("statsd-prefix", opts.StatsdPrefix, "prefix used for keys sent to statsd (%s for host replacement)")
	flagSet.Int("statsd-udp-packet-size", opts.StatsdUDPPacketSize, "the size in bytes of statsd UDP packets")

	popWaitPercentiles := app.FloatArray{}
	flagSet.Var(&popWaitPercentiles, "pop-wait-percentile", "timed GET wait percentiles (as float (0, 1.0]) to track (can be specified multiple times or comma separated '1.0,0.99,0.95', default none)")
	flagSet.Duration("pop-wait-window-time", opts.PopWaitWindowTime, "calculate pop wait quantiles for this duration of time (ie: 60s would only show quantile calculations from the past 60 seconds)")

	return flagSet
}
