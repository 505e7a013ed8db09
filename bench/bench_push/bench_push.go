package main

import (
	"context"
	"flag"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ephemq/ephemq/client"
)

var (
	runfor      = flag.Duration("runfor", 10*time.Second, "duration of time to run")
	httpAddress = flag.String("ephemqd-http-address", "127.0.0.1:8080", "<addr>:<port> to connect to ephemqd")
	queue       = flag.String("queue", "push_bench", "queue to push messages to")
	size        = flag.Int("size", 200, "size of messages")
	deadline    = flag.String("deadline", "", "deadline to start the benchmark run")
)

var totalMsgCount int64

func main() {
	flag.Parse()
	var wg sync.WaitGroup

	log.SetPrefix("[bench_push] ")

	c, err := client.New([]string{*httpAddress}, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	msg := make([]byte, *size)

	goChan := make(chan int)
	for j := 0; j < runtime.GOMAXPROCS(0); j++ {
		wg.Add(1)
		go func() {
			pushWorker(c, *runfor, msg, *queue, goChan)
			wg.Done()
		}()
	}

	if *deadline != "" {
		t, err := time.Parse("2006-01-02 15:04:05", *deadline)
		if err != nil {
			log.Fatal(err)
		}
		d := time.Until(t)
		log.Printf("sleeping until %s (%s)", t, d)
		time.Sleep(d)
	}

	start := time.Now()
	close(goChan)
	wg.Wait()
	duration := time.Since(start)
	tmc := atomic.LoadInt64(&totalMsgCount)
	log.Printf("duration: %s - %.03fmb/s - %.03fops/s - %.03fus/op",
		duration,
		float64(tmc*int64(*size))/duration.Seconds()/1024/1024,
		float64(tmc)/duration.Seconds(),
		float64(duration/time.Microsecond)/float64(tmc))
}

func pushWorker(c *client.Client, td time.Duration, msg []byte, queue string, goChan chan int) {
	<-goChan
	var msgCount int64
	endTime := time.Now().Add(td)
	for {
		err := c.Push(context.Background(), queue, msg)
		if err != nil {
			log.Fatal(err)
		}
		msgCount++
		if time.Now().After(endTime) {
			break
		}
	}
	atomic.AddInt64(&totalMsgCount, msgCount)
}
