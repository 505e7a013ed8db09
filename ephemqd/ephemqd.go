package ephemqd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ephemq/ephemq/internal/http_api"
	"github.com/ephemq/ephemq/internal/lg"
	"github.com/ephemq/ephemq/internal/quantile"
	"github.com/ephemq/ephemq/internal/util"
	"github.com/ephemq/ephemq/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type errStore struct {
	err error
}

type EPHEMQD struct {
	// 64bit atomic vars need to be first for proper alignment on 32bit platforms
	waiters int64

	sync.RWMutex

	opts atomic.Value

	errValue  atomic.Value
	startTime time.Time
	isExiting int32

	registry *Registry
	waiter   *PollingWaiter
	popWait  *quantile.Quantile

	promRegistry *prometheus.Registry
	metrics      *Metrics

	httpListener  net.Listener
	adminListener net.Listener

	ctx       context.Context
	ctxCancel context.CancelFunc
	waitGroup util.WaitGroupWrapper
}

func New(opts *Options) (*EPHEMQD, error) {
	var err error

	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, opts.LogPrefix, log.Ldate|log.Ltime|log.Lmicroseconds)
	}
	opts.logLevel, err = lg.ParseLogLevel(opts.LogLevel, opts.Verbose)
	if err != nil {
		return nil, err
	}
	if opts.StatsdAddress != "" && opts.StatsdInterval <= 0 {
		return nil, fmt.Errorf("--statsd-interval must be positive (got %s)", opts.StatsdInterval)
	}
	if opts.PollInterval <= 0 {
		return nil, fmt.Errorf("--poll-interval must be positive (got %s)", opts.PollInterval)
	}
	if len(opts.PopWaitPercentiles) > 0 && opts.PopWaitWindowTime <= 0 {
		return nil, fmt.Errorf("--pop-wait-window-time must be positive (got %s)", opts.PopWaitWindowTime)
	}
	for _, p := range opts.PopWaitPercentiles {
		if p <= 0 || p > 1 {
			return nil, fmt.Errorf("invalid pop-wait percentile: %v", p)
		}
	}

	n := &EPHEMQD{
		startTime:    time.Now(),
		promRegistry: prometheus.NewRegistry(),
	}
	n.ctx, n.ctxCancel = context.WithCancel(context.Background())
	n.swapOpts(opts)
	n.errValue.Store(errStore{})

	n.registry = NewRegistry(n.logf)
	n.waiter = NewPollingWaiter(n.registry, opts.PollInterval)
	if len(opts.PopWaitPercentiles) > 0 {
		n.popWait = quantile.New(opts.PopWaitWindowTime, opts.PopWaitPercentiles)
	}

	err = n.promRegistry.Register(collectors.NewGoCollector())
	if err != nil {
		return nil, fmt.Errorf("failed to register go collector - %w", err)
	}
	n.metrics, err = NewMetrics(n.promRegistry, n.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics - %w", err)
	}

	n.logf(LOG_INFO, "%s", version.String("ephemqd"))

	n.httpListener, err = net.Listen("tcp", opts.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("listen (%s) failed - %w", opts.HTTPAddress, err)
	}
	n.adminListener, err = net.Listen("tcp", opts.AdminHTTPAddress)
	if err != nil {
		n.httpListener.Close()
		return nil, fmt.Errorf("listen (%s) failed - %w", opts.AdminHTTPAddress, err)
	}

	return n, nil
}

func (n *EPHEMQD) getOpts() *Options {
	return n.opts.Load().(*Options)
}

func (n *EPHEMQD) swapOpts(opts *Options) {
	n.opts.Store(opts)
}

func (n *EPHEMQD) RealHTTPAddr() *net.TCPAddr {
	return n.httpListener.Addr().(*net.TCPAddr)
}

func (n *EPHEMQD) RealAdminHTTPAddr() *net.TCPAddr {
	return n.adminListener.Addr().(*net.TCPAddr)
}

func (n *EPHEMQD) SetHealth(err error) {
	n.errValue.Store(errStore{err: err})
}

func (n *EPHEMQD) IsHealthy() bool {
	return n.GetError() == nil
}

func (n *EPHEMQD) GetError() error {
	errValue := n.errValue.Load()
	return errValue.(errStore).err
}

func (n *EPHEMQD) GetHealth() string {
	err := n.GetError()
	if err != nil {
		return fmt.Sprintf("NOK - %s", err)
	}
	return "OK"
}

func (n *EPHEMQD) GetStartTime() time.Time {
	return n.startTime
}

// Main serves both listeners and blocks until one of them stops, either
// because Exit closed it or because serving failed.
func (n *EPHEMQD) Main() error {
	exitCh := make(chan error)
	var once sync.Once
	exitFunc := func(err error) {
		once.Do(func() {
			if err != nil {
				n.logf(LOG_FATAL, "%s", err)
			}
			exitCh <- err
		})
	}

	httpServer := newHTTPServer(n)
	n.waitGroup.Wrap(func() {
		exitFunc(http_api.Serve(n.httpListener, httpServer, "HTTP", n.logf))
	})
	adminServer := newAdminServer(n)
	n.waitGroup.Wrap(func() {
		exitFunc(http_api.Serve(n.adminListener, adminServer, "ADMIN HTTP", n.logf))
	})

	if n.getOpts().StatsdAddress != "" {
		n.waitGroup.Wrap(n.statsdLoop)
	}

	err := <-exitCh
	return err
}

// Exit closes the listeners, ends outstanding timed pops and waits for the
// serving goroutines. It is safe to call more than once.
func (n *EPHEMQD) Exit() {
	if !atomic.CompareAndSwapInt32(&n.isExiting, 0, 1) {
		return
	}
	n.SetHealth(errors.New("exiting"))

	if n.httpListener != nil {
		n.httpListener.Close()
	}
	if n.adminListener != nil {
		n.adminListener.Close()
	}

	n.ctxCancel()
	n.waitGroup.Wait()
	n.logf(LOG_INFO, "EPHEMQD: bye")
}

// Push enqueues body on the named queue.
func (n *EPHEMQD) Push(name string, body []byte) {
	n.registry.Push(name, body)
	n.metrics.Pushed(len(body))
}

// Pop dequeues the head of the named queue. With a non-nil timeout it waits
// for a message until the timeout elapses, ctx is done or the daemon exits.
func (n *EPHEMQD) Pop(ctx context.Context, name string, timeout *time.Duration) ([]byte, bool) {
	if timeout == nil {
		msg, ok := n.waiter.Pop(ctx, name, nil)
		n.metrics.Popped(ok, false, 0)
		return msg, ok
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(n.ctx, cancel)
	defer stop()

	atomic.AddInt64(&n.waiters, 1)
	n.metrics.IncWaiters()
	start := time.Now()

	msg, ok := n.waiter.Pop(ctx, name, timeout)

	elapsed := time.Since(start)
	atomic.AddInt64(&n.waiters, -1)
	n.metrics.DecWaiters()
	n.metrics.Popped(ok, true, elapsed)
	n.popWait.Insert(elapsed)
	return msg, ok
}

func (n *EPHEMQD) Registry() *Registry {
	return n.registry
}

func (n *EPHEMQD) Gatherer() prometheus.Gatherer {
	return n.promRegistry
}
