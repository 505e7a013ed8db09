package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ephemq/ephemq/client"
)

var (
	num         = flag.Int("num", 100000, "num messages")
	httpAddress = flag.String("ephemqd-http-address", "127.0.0.1:8080", "<addr>:<port> to connect to ephemqd")
	queue       = flag.String("queue", "push_bench", "queue to pop messages from")
	timeout     = flag.Duration("timeout", time.Second, "wait per pop before giving up on a starved queue")
)

func main() {
	flag.Parse()
	var wg sync.WaitGroup

	log.SetPrefix("[bench_pop] ")

	c, err := client.New([]string{*httpAddress}, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	var remaining int64 = int64(*num)
	var totalBytes int64
	var popped int64

	goChan := make(chan int)
	workers := runtime.GOMAXPROCS(0)
	for j := 0; j < workers; j++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-goChan
			for atomic.AddInt64(&remaining, -1) >= 0 {
				msg, err := c.Pop(context.Background(), *queue, *timeout)
				if errors.Is(err, client.ErrEmpty) {
					return
				}
				if err != nil {
					log.Fatal(err)
				}
				atomic.AddInt64(&totalBytes, int64(len(msg)))
				atomic.AddInt64(&popped, 1)
			}
		}()
	}

	start := time.Now()
	close(goChan)
	wg.Wait()
	duration := time.Since(start)
	n := atomic.LoadInt64(&popped)
	log.Printf("duration: %s - %.03fmb/s - %.03fops/s - %.03fus/op",
		duration,
		float64(atomic.LoadInt64(&totalBytes))/duration.Seconds()/1024/1024,
		float64(n)/duration.Seconds(),
		float64(duration/time.Microsecond)/float64(n))
}
