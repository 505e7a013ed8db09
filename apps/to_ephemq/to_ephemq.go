// This is an ephemq client that pushes incoming records from stdin to the
// specified queue.

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ephemq/ephemq/client"
	"github.com/ephemq/ephemq/internal/app"
	"github.com/ephemq/ephemq/internal/version"
)

var (
	showVersion = flag.Bool("version", false, "print version string")
	queue       = flag.String("queue", "", "ephemq queue to push to")
	delimiter   = flag.String("delimiter", "\n", "character to split input from stdin")
	useSnappy   = flag.Bool("snappy", false, "snappy encode request bodies")

	ephemqdHTTPAddrs = app.StringArray{}
)

func init() {
	flag.Var(&ephemqdHTTPAddrs, "ephemqd-http-address", "ephemqd HTTP address (may be given multiple times)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("to_ephemq"))
		return
	}

	if len(*queue) == 0 {
		log.Fatal("--queue required")
	}
	if len(*delimiter) != 1 {
		log.Fatal("--delimiter must be a single byte")
	}
	if len(ephemqdHTTPAddrs) == 0 {
		log.Fatal("--ephemqd-http-address required")
	}

	cfg := client.NewConfig()
	cfg.UserAgent = fmt.Sprintf("to_ephemq/%s", version.Binary)
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

	push := func(body []byte) error {
		return c.Push(ctx, *queue, body)
	}
	r := bufio.NewReader(os.Stdin)
	delim := (*delimiter)[0]
	for {
		err := readAndPush(r, delim, push)
		if err != nil {
			if err != io.EOF {
				log.Fatal(err)
			}
			break
		}
	}
}

// readAndPush reads to the delim from r and pushes the record, without the
// delimiter. Empty records are skipped.
func readAndPush(r *bufio.Reader, delim byte, push func([]byte) error) error {
	line, readErr := r.ReadBytes(delim)
	if readErr != nil && readErr != io.EOF {
		return readErr
	}

	if len(line) > 0 && line[len(line)-1] == delim {
		line = line[:len(line)-1]
	}
	if len(line) == 0 {
		return readErr
	}

	if err := push(line); err != nil {
		return err
	}
	return readErr
}
