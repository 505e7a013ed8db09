package ephemqd

import (
	"net/http"

	"github.com/ephemq/ephemq/internal/http_api"
	"github.com/ephemq/ephemq/internal/version"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// adminServer serves introspection endpoints on their own listener, leaving
// every single-segment path on the data listener to queue names.
type adminServer struct {
	ephemqd *EPHEMQD
	router  http.Handler
}

func newAdminServer(ephemqd *EPHEMQD) *adminServer {
	log := http_api.Log(ephemqd.logf)

	router := httprouter.New()
	router.HandleMethodNotAllowed = true
	router.PanicHandler = http_api.LogPanicHandler(ephemqd.logf)
	router.NotFound = http_api.LogNotFoundHandler(ephemqd.logf)
	router.MethodNotAllowed = http_api.LogMethodNotAllowedHandler(ephemqd.logf)
	s := &adminServer{
		ephemqd: ephemqd,
		router:  router,
	}

	router.Handle("GET", "/ping", http_api.Decorate(s.pingHandler, log, http_api.PlainText))
	router.Handle("GET", "/info", http_api.Decorate(s.doInfo, log, http_api.V1))
	router.Handle("GET", "/stats", http_api.Decorate(s.doStats, log, http_api.V1))
	router.Handler("GET", "/metrics", promhttp.HandlerFor(ephemqd.Gatherer(), promhttp.HandlerOpts{}))

	return s
}

func (s *adminServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

func (s *adminServer) pingHandler(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
	health := s.ephemqd.GetHealth()
	if !s.ephemqd.IsHealthy() {
		return nil, http_api.Err{Code: 500, Text: health}
	}
	return health, nil
}

func (s *adminServer) doInfo(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
	return struct {
		Version          string `json:"version"`
		HTTPAddress      string `json:"http_address"`
		AdminHTTPAddress string `json:"admin_http_address"`
		StartTime        int64  `json:"start_time"`
		PollInterval     string `json:"poll_interval"`
	}{
		Version:          version.Binary,
		HTTPAddress:      s.ephemqd.RealHTTPAddr().String(),
		AdminHTTPAddress: s.ephemqd.RealAdminHTTPAddr().String(),
		StartTime:        s.ephemqd.GetStartTime().Unix(),
		PollInterval:     s.ephemqd.waiter.Interval().String(),
	}, nil
}

func (s *adminServer) doStats(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
	reqParams := req.URL.Query()
	formatString := reqParams.Get("format")
	queueName := reqParams.Get("queue")

	stats := s.ephemqd.GetStats(queueName)
	if formatString == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		return prettyPrintStats(stats), nil
	}
	return stats, nil
}

