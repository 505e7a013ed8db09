package ephemqd

import (
	"time"

	"github.com/ephemq/ephemq/internal/lg"
)

type Options struct {
	// basic options
	LogLevel         string `flag:"log-level"`
	LogPrefix        string `flag:"log-prefix"`
	Verbose          bool   `flag:"verbose"` // for backwards compatibility
	HTTPAddress      string `flag:"http-address"`
	AdminHTTPAddress string `flag:"admin-http-address"`

	// pop options
	PollInterval  time.Duration `flag:"poll-interval"`
	StrictTimeout bool          `flag:"strict-timeout"`

	// request timing logged every N requests (0 disables)
	StatusEvery int `flag:"status-every"`

	// statsd integration
	StatsdAddress       string        `flag:"statsd-address"`
	StatsdPrefix        string        `flag:"statsd-prefix"`
	StatsdInterval      time.Duration `flag:"statsd-interval"`
	StatsdUDPPacketSize int           `flag:"statsd-udp-packet-size"`

	// timed pop wait latency
	PopWaitWindowTime  time.Duration `flag:"pop-wait-window-time"`
	PopWaitPercentiles []float64     `flag:"pop-wait-percentile" cfg:"pop_wait_percentiles"`

	Logger   Logger
	logLevel lg.LogLevel // private, not really an option
}

func NewOptions() *Options {
	return &Options{
		LogLevel:  "info",
		LogPrefix: "[ephemqd] ",

		HTTPAddress:      "0.0.0.0:8080",
		AdminHTTPAddress: "0.0.0.0:8081",

		PollInterval: DefaultPollInterval,

		StatsdPrefix:        "ephemq.%s",
		StatsdInterval:      60 * time.Second,
		StatsdUDPPacketSize: 508,

		PopWaitWindowTime:  10 * time.Minute,
		PopWaitPercentiles: make([]float64, 0),
	}
}
