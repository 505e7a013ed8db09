package http_api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ephemq/ephemq/internal/lg"
	"github.com/ephemq/ephemq/internal/test"
	"github.com/julienschmidt/httprouter"
)

func serve(h httprouter.Handle) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/q", nil)
	h(w, req, nil)
	return w
}

func TestRawBytes(t *testing.T) {
	w := serve(Decorate(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
		return []byte{0x00, 0xff, 'a'}, nil
	}, Raw))
	test.Equal(t, 200, w.Code)
	test.Equal(t, []byte{0x00, 0xff, 'a'}, w.Body.Bytes())
	test.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
}

func TestRawEmptyOK(t *testing.T) {
	w := serve(Decorate(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
		return nil, nil
	}, Raw))
	test.Equal(t, 200, w.Code)
	test.Equal(t, 0, w.Body.Len())
}

func TestRawErrEmptyBody(t *testing.T) {
	w := serve(Decorate(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
		return nil, Err{404, ""}
	}, Raw))
	test.Equal(t, 404, w.Code)
	test.Equal(t, 0, w.Body.Len())

	w = serve(Decorate(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
		return nil, errors.New("boom")
	}, Raw))
	test.Equal(t, 500, w.Code)
	test.Equal(t, "boom", w.Body.String())
}

func TestV1(t *testing.T) {
	w := serve(Decorate(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
		return map[string]int{"depth": 2}, nil
	}, V1))
	test.Equal(t, 200, w.Code)
	test.Equal(t, `{"depth":2}`, w.Body.String())

	w = serve(Decorate(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
		return nil, Err{400, "INVALID_FORMAT"}
	}, V1))
	test.Equal(t, 400, w.Code)
	test.Equal(t, `{"message":"INVALID_FORMAT"}`, w.Body.String())
}

func TestLogSeesHandlerStatus(t *testing.T) {
	var lines []string
	logf := func(lvl lg.LogLevel, f string, args ...interface{}) {
		lines = append(lines, lvl.String()+" "+fmt.Sprintf(f, args...))
	}
	serve(Decorate(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
		return nil, Err{404, ""}
	}, Log(logf), Raw))
	test.Equal(t, 1, len(lines))
	test.Equal(t, "DEBUG 404 GET /q", lines[0][:16])
}

func TestNotFoundHandler(t *testing.T) {
	logf := func(lvl lg.LogLevel, f string, args ...interface{}) {}
	w := httptest.NewRecorder()
	LogNotFoundHandler(logf).ServeHTTP(w, httptest.NewRequest("GET", "/a/b", nil))
	test.Equal(t, 404, w.Code)
	test.Equal(t, `{"message":"NOT_FOUND"}`, w.Body.String())
}
