package main

import (
	"os"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ephemq/ephemq/ephemqd"
	"github.com/ephemq/ephemq/internal/test"
	"github.com/mreiferson/go-options"
)

func TestConfigFlagParsing(t *testing.T) {
	opts := ephemqd.NewOptions()
	opts.Logger = test.NewTestLogger(t)

	flagSet := ephemqdFlagSet(opts)
	flagSet.Parse([]string{})

	var cfg config
	f, err := os.Open("../../contrib/ephemqd.cfg.example")
	if err != nil {
		t.Fatalf("%s", err)
	}
	defer f.Close()
	_, err = toml.DecodeReader(f, &cfg)
	test.Nil(t, err)
	cfg["log_level"] = "debug"
	cfg["http_address"] = "127.0.0.1:0"
	cfg["admin_http_address"] = "127.0.0.1:0"
	cfg.Validate()

	options.Resolve(opts, flagSet, cfg)
	daemon, err := ephemqd.New(opts)
	test.Nil(t, err)
	defer daemon.Exit()

	test.Equal(t, "DEBUG", opts.LogLevel)
	test.Equal(t, 10*time.Millisecond, opts.PollInterval)
	test.Equal(t, 10*time.Minute, opts.PopWaitWindowTime)
	test.Equal(t, []float64{1.0, 0.99, 0.95}, opts.PopWaitPercentiles)
	test.Equal(t, false, opts.StrictTimeout)
}

func TestFlagsOverrideConfig(t *testing.T) {
	opts := ephemqd.NewOptions()
	opts.Logger = test.NewTestLogger(t)

	flagSet := ephemqdFlagSet(opts)
	flagSet.Parse([]string{
		"--poll-interval=25ms",
		"--strict-timeout",
		"--pop-wait-percentile=0.5,0.99",
		"--status-every=100",
	})

	cfg := config{
		"poll_interval":  "50ms",
		"strict_timeout": false,
		"log_level":      "warn",
	}
	cfg.Validate()
	options.Resolve(opts, flagSet, cfg)

	test.Equal(t, 25*time.Millisecond, opts.PollInterval)
	test.Equal(t, true, opts.StrictTimeout)
	test.Equal(t, []float64{0.99, 0.5}, opts.PopWaitPercentiles)
	test.Equal(t, 100, opts.StatusEvery)
	test.Equal(t, "WARNING", opts.LogLevel)
}

func TestFlagDefaultsMatchOptions(t *testing.T) {
	defaults := ephemqd.NewOptions()
	opts := ephemqd.NewOptions()

	flagSet := ephemqdFlagSet(opts)
	flagSet.Parse([]string{})
	options.Resolve(opts, flagSet, nil)

	test.Equal(t, defaults.HTTPAddress, opts.HTTPAddress)
	test.Equal(t, defaults.AdminHTTPAddress, opts.AdminHTTPAddress)
	test.Equal(t, defaults.PollInterval, opts.PollInterval)
	test.Equal(t, defaults.LogLevel, opts.LogLevel)
	test.Equal(t, defaults.LogPrefix, opts.LogPrefix)
	test.Equal(t, defaults.PopWaitWindowTime, opts.PopWaitWindowTime)
	test.Equal(t, 0, len(opts.PopWaitPercentiles))
}
