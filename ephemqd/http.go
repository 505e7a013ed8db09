package ephemqd

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bitly/timer_metrics"
	"github.com/ephemq/ephemq/internal/http_api"
	"github.com/golang/snappy"
	"github.com/julienschmidt/httprouter"
)

const snappyEncoding = "snappy"

type httpServer struct {
	ephemqd *EPHEMQD
	router  http.Handler

	putTimer *timer_metrics.TimerMetrics
	getTimer *timer_metrics.TimerMetrics
}

func newHTTPServer(ephemqd *EPHEMQD) *httpServer {
	log := http_api.Log(ephemqd.logf)

	router := httprouter.New()
	router.HandleMethodNotAllowed = true
	router.HandleOPTIONS = false
	router.PanicHandler = http_api.LogPanicHandler(ephemqd.logf)
	router.NotFound = http_api.LogNotFoundHandler(ephemqd.logf)
	router.MethodNotAllowed = http_api.LogMethodNotAllowedHandler(ephemqd.logf)
	s := &httpServer{
		ephemqd: ephemqd,
		router:  router,
	}

	if statusEvery := ephemqd.getOpts().StatusEvery; statusEvery > 0 {
		s.putTimer = timer_metrics.NewTimerMetrics(statusEvery, "[PUT]:")
		s.getTimer = timer_metrics.NewTimerMetrics(statusEvery, "[GET]:")
	}

	router.Handle("PUT", "/:name", http_api.Decorate(s.doPUT, log, http_api.Raw))
	router.Handle("GET", "/:name", http_api.Decorate(s.doGET, log, http_api.Raw))

	return s
}

func (s *httpServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

func (s *httpServer) doPUT(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
	if s.putTimer != nil {
		defer s.putTimer.Status(time.Now())
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		s.ephemqd.logf(LOG_ERROR, "failed to read request body - %s", err)
		return nil, http_api.Err{Code: 500, Text: "INTERNAL_ERROR"}
	}

	if hasEncoding(req.Header.Get("Content-Encoding"), snappyEncoding) {
		body, err = snappy.Decode(nil, body)
		if err != nil {
			return nil, http_api.Err{Code: 400, Text: "INVALID_BODY"}
		}
	}

	s.ephemqd.Push(ps.ByName("name"), body)
	return nil, nil
}

func (s *httpServer) doGET(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
	if s.getTimer != nil {
		defer s.getTimer.Status(time.Now())
	}

	timeout, err := s.timeoutFromQuery(req)
	if err != nil {
		return nil, err
	}

	msg, ok := s.ephemqd.Pop(req.Context(), ps.ByName("name"), timeout)
	if !ok {
		return nil, http_api.Err{Code: 404, Text: ""}
	}

	if hasEncoding(req.Header.Get("Accept-Encoding"), snappyEncoding) {
		w.Header().Set("Content-Encoding", snappyEncoding)
		msg = snappy.Encode(nil, msg)
	}
	return msg, nil
}

// timeoutFromQuery returns nil when no usable timeout was given. A malformed
// value is ignored unless --strict-timeout is set.
func (s *httpServer) timeoutFromQuery(req *http.Request) (*time.Duration, error) {
	raw := req.URL.Query().Get("timeout")
	if raw == "" {
		return nil, nil
	}
	timeout, err := ParseTimeout(raw)
	if err != nil {
		if s.ephemqd.getOpts().StrictTimeout {
			return nil, http_api.Err{Code: 400, Text: "INVALID_TIMEOUT"}
		}
		s.ephemqd.logf(LOG_DEBUG, "ignoring timeout - %s", err)
		return nil, nil
	}
	return &timeout, nil
}

// hasEncoding reports whether the comma separated header value lists enc,
// ignoring case and any ";q=" parameters.
func hasEncoding(header string, enc string) bool {
	for _, token := range strings.Split(header, ",") {
		if i := strings.IndexByte(token, ';'); i >= 0 {
			token = token[:i]
		}
		if strings.EqualFold(strings.TrimSpace(token), enc) {
			return true
		}
	}
	return false
}
