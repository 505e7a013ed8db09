// This is an ephemq client that pops messages from the specified queue and
// writes them to stdout, one per line.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ephemq/ephemq/client"
	"github.com/ephemq/ephemq/internal/app"
	"github.com/ephemq/ephemq/internal/version"
)

var (
	showVersion   = flag.Bool("version", false, "print version string")
	queue         = flag.String("queue", "", "ephemq queue to pop from")
	timeout       = flag.Duration("timeout", 5*time.Second, "how long each pop waits for a message")
	totalMessages = flag.Int("n", 0, "total messages to show (will wait if starved)")
	useSnappy     = flag.Bool("snappy", false, "ask for snappy encoded responses")

	ephemqdHTTPAddrs = app.StringArray{}
)

func init() {
	flag.Var(&ephemqdHTTPAddrs, "ephemqd-http-address", "ephemqd HTTP address (may be given multiple times)")
}

type popper interface {
	Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, error)
}

// tail pops until ctx is done, total messages were shown (when total > 0) or
// a pop fails for a reason other than an empty queue.
func tail(ctx context.Context, p popper, queue string, timeout time.Duration, total int, w io.Writer) (int, error) {
	shown := 0
	for total <= 0 || shown < total {
		msg, err := p.Pop(ctx, queue, timeout)
		if err != nil {
			if errors.Is(err, client.ErrEmpty) {
				if ctx.Err() != nil {
					return shown, nil
				}
				continue
			}
			if ctx.Err() != nil {
				return shown, nil
			}
			return shown, err
		}
		if _, err := w.Write(msg); err != nil {
			return shown, fmt.Errorf("failed to write to output - %w", err)
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return shown, fmt.Errorf("failed to write to output - %w", err)
		}
		shown++
	}
	return shown, nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("ephemq_tail"))
		return
	}

	if *queue == "" {
		log.Fatal("--queue is required")
	}
	if len(ephemqdHTTPAddrs) == 0 {
		log.Fatal("--ephemqd-http-address required")
	}

	cfg := client.NewConfig()
	cfg.UserAgent = fmt.Sprintf("ephemq_tail/%s", version.Binary)
	cfg.Snappy = *useSnappy
	c, err := client.New(ephemqdHTTPAddrs, cfg)
	if err != nil {
		log.Fatalf("failed to create client - %s", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-termChan
		cancel()
	}()

	_, err = tail(ctx, c, *queue, *timeout, *totalMessages, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
}
