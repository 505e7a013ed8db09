package http_api

import (
	"net"
	"net/http"
	"time"
)

// NewDeadlineTransport returns an http.Transport bounding connect time. The
// overall request deadline is left to the caller so long-poll requests are
// not cut short.
func NewDeadlineTransport(connectTimeout time.Duration) *http.Transport {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}
	return transport
}
