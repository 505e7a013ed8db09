// Package client pushes to and pops from one or more ephemqd daemons over
// HTTP. Daemons do not share queues; each request goes to one host picked
// from a pool that backs off hosts whose requests fail.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bitly/go-hostpool"
	"github.com/ephemq/ephemq/internal/http_api"
	"github.com/ephemq/ephemq/internal/version"
	"github.com/golang/snappy"
)

// ErrEmpty is returned by Pop when no message arrived within the timeout.
var ErrEmpty = errors.New("queue empty")

type Config struct {
	ConnectTimeout time.Duration
	UserAgent      string
	// Snappy block-encodes request bodies and asks for encoded responses.
	Snappy bool
}

func NewConfig() *Config {
	return &Config{
		ConnectTimeout: 2 * time.Second,
		UserAgent:      fmt.Sprintf("ephemq-client/%s", version.Binary),
	}
}

type Client struct {
	cfg        *Config
	hostPool   hostpool.HostPool
	httpClient *http.Client
}

// New returns a Client for the given ephemqd HTTP addresses (<addr>:<port>).
func New(addrs []string, cfg *Config) (*Client, error) {
	if len(addrs) == 0 {
		return nil, errors.New("at least one ephemqd address is required")
	}
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Client{
		cfg:      cfg,
		hostPool: hostpool.New(addrs),
		httpClient: &http.Client{
			Transport: http_api.NewDeadlineTransport(cfg.ConnectTimeout),
		},
	}, nil
}

// Push enqueues body on the named queue of one daemon.
func (c *Client) Push(ctx context.Context, queue string, body []byte) error {
	header := http.Header{}
	if c.cfg.Snappy {
		body = snappy.Encode(nil, body)
		header.Set("Content-Encoding", "snappy")
	}

	hostPoolResponse := c.hostPool.Get()
	code, _, err := c.do(ctx, "PUT", hostPoolResponse.Host(), queue, nil, body, header)
	if err == nil && code != 200 {
		err = fmt.Errorf("PUT %s returned %d", queue, code)
	}
	hostPoolResponse.Mark(err)
	return err
}

// Pop dequeues the head of the named queue on one daemon. A positive timeout
// asks the daemon to wait up to that long. ErrEmpty means no message.
func (c *Client) Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, error) {
	params := url.Values{}
	if timeout > 0 {
		params.Set("timeout", timeout.String())
	}
	header := http.Header{}
	if c.cfg.Snappy {
		header.Set("Accept-Encoding", "snappy")
	}

	hostPoolResponse := c.hostPool.Get()
	code, respBody, err := c.do(ctx, "GET", hostPoolResponse.Host(), queue, params, nil, header)
	if err != nil {
		hostPoolResponse.Mark(err)
		return nil, err
	}
	switch code {
	case 200:
	case 404:
		hostPoolResponse.Mark(nil)
		return nil, ErrEmpty
	default:
		err = fmt.Errorf("GET %s returned %d - %s", queue, code, respBody)
		hostPoolResponse.Mark(err)
		return nil, err
	}
	hostPoolResponse.Mark(nil)

	if c.cfg.Snappy {
		respBody, err = snappy.Decode(nil, respBody)
		if err != nil {
			return nil, fmt.Errorf("failed to decode response - %w", err)
		}
	}
	return respBody, nil
}

func (c *Client) do(ctx context.Context, method string, host string, queue string,
	params url.Values, body []byte, header http.Header) (int, []byte, error) {
	u := url.URL{
		Scheme:   "http",
		Host:     host,
		Path:     "/" + queue,
		RawQuery: params.Encode(),
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// Close releases idle connections and host pool state.
func (c *Client) Close() {
	c.hostPool.Close()
	c.httpClient.CloseIdleConnections()
}
