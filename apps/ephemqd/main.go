package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/ephemq/ephemq/ephemqd"
	"github.com/ephemq/ephemq/internal/lg"
	"github.com/ephemq/ephemq/internal/version"
	"github.com/judwhite/go-svc/svc"
	"github.com/mreiferson/go-options"
)

type program struct {
	once    sync.Once
	ephemqd *ephemqd.EPHEMQD
}

func main() {
	prg := &program{}
	if err := svc.Run(prg, syscall.SIGINT, syscall.SIGTERM); err != nil {
		logFatal("%s", err)
	}
}

func (p *program) Init(env svc.Environment) error {
	if env.IsWindowsService() {
		dir := filepath.Dir(os.Args[0])
		return os.Chdir(dir)
	}
	return nil
}

func (p *program) Start() error {
	opts := ephemqd.NewOptions()

	flagSet := ephemqdFlagSet(opts)
	flagSet.Parse(os.Args[1:])

	if flagSet.Lookup("version").Value.(flag.Getter).Get().(bool) {
		fmt.Println(version.String("ephemqd"))
		os.Exit(0)
	}

	var cfg config
	configFile := flagSet.Lookup("config").Value.String()
	if configFile != "" {
		_, err := toml.DecodeFile(configFile, &cfg)
		if err != nil {
			logFatal("failed to load config file %s - %s", configFile, err)
		}
	}
	cfg.Validate()

	options.Resolve(opts, flagSet, cfg)

	daemon, err := ephemqd.New(opts)
	if err != nil {
		logFatal("failed to instantiate ephemqd - %s", err)
	}
	p.ephemqd = daemon

	go func() {
		err := p.ephemqd.Main()
		if err != nil {
			p.Stop()
			os.Exit(1)
		}
	}()

	return nil
}

func (p *program) Stop() error {
	p.once.Do(func() {
		p.ephemqd.Exit()
	})
	return nil
}

func logFatal(f string, args ...interface{}) {
	lg.LogFatal("[ephemqd] ", f, args...)
}
