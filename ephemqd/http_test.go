package ephemqd

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/ephemq/ephemq/internal/test"
	"github.com/golang/snappy"
)

func doRequest(t *testing.T, method string, url string, body []byte, header http.Header) (int, http.Header, []byte) {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	test.Nil(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	test.Nil(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	test.Nil(t, err)
	return resp.StatusCode, resp.Header, respBody
}

func queueURL(addr *net.TCPAddr, name string) string {
	return fmt.Sprintf("http://%s/%s", addr, name)
}

func TestHTTPPutGet(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	for _, body := range []string{"first", "second", ""} {
		code, _, respBody := doRequest(t, "PUT", queueURL(httpAddr, "jobs"), []byte(body), nil)
		test.Equal(t, 200, code)
		test.Equal(t, 0, len(respBody))
	}
	test.Equal(t, int64(3), ephemqd.Registry().Depth("jobs"))

	code, header, body := doRequest(t, "GET", queueURL(httpAddr, "jobs"), nil, nil)
	test.Equal(t, 200, code)
	test.Equal(t, "application/octet-stream", header.Get("Content-Type"))
	test.Equal(t, "first", string(body))

	code, _, body = doRequest(t, "GET", queueURL(httpAddr, "jobs"), nil, nil)
	test.Equal(t, 200, code)
	test.Equal(t, "second", string(body))

	code, _, body = doRequest(t, "GET", queueURL(httpAddr, "jobs"), nil, nil)
	test.Equal(t, 200, code)
	test.Equal(t, 0, len(body))

	code, _, body = doRequest(t, "GET", queueURL(httpAddr, "jobs"), nil, nil)
	test.Equal(t, 404, code)
	test.Equal(t, 0, len(body))
}

func TestHTTPBinaryBody(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	payload := []byte{0x00, 0x01, 0xfe, 0xff, '\n', 0x00}
	code, _, _ := doRequest(t, "PUT", queueURL(httpAddr, "bin"), payload, nil)
	test.Equal(t, 200, code)

	code, _, body := doRequest(t, "GET", queueURL(httpAddr, "bin"), nil, nil)
	test.Equal(t, 200, code)
	test.Equal(t, payload, body)
}

func TestHTTPGetUnknownQueue(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	code, _, body := doRequest(t, "GET", queueURL(httpAddr, "ghost"), nil, nil)
	test.Equal(t, 404, code)
	test.Equal(t, 0, len(body))
	test.Equal(t, false, ephemqd.Registry().Exists("ghost"))
}

func TestHTTPGetTimeoutExpires(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	start := time.Now()
	code, _, _ := doRequest(t, "GET", queueURL(httpAddr, "slow")+"?timeout=100ms", nil, nil)
	test.Equal(t, 404, code)
	test.Between(t, 100*time.Millisecond, time.Second, time.Since(start))

	start = time.Now()
	code, _, _ = doRequest(t, "GET", queueURL(httpAddr, "slow")+"?timeout=0.1", nil, nil)
	test.Equal(t, 404, code)
	test.Between(t, 100*time.Millisecond, time.Second, time.Since(start))
}

func TestHTTPBlockingGet(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	go func() {
		time.Sleep(100 * time.Millisecond)
		ephemqd.Push("late", []byte("arrived"))
	}()

	start := time.Now()
	code, _, body := doRequest(t, "GET", queueURL(httpAddr, "late")+"?timeout=5s", nil, nil)
	test.Equal(t, 200, code)
	test.Equal(t, "arrived", string(body))
	test.Between(t, 100*time.Millisecond, 2*time.Second, time.Since(start))
}

func TestHTTPLenientTimeout(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	// a malformed timeout is ignored and the pop does not wait
	start := time.Now()
	code, _, _ := doRequest(t, "GET", queueURL(httpAddr, "q")+"?timeout=soon", nil, nil)
	test.Equal(t, 404, code)
	test.Between(t, 0, 500*time.Millisecond, time.Since(start))

	ephemqd.Push("q", []byte("x"))
	code, _, body := doRequest(t, "GET", queueURL(httpAddr, "q")+"?timeout=-3", nil, nil)
	test.Equal(t, 200, code)
	test.Equal(t, "x", string(body))
}

func TestHTTPStrictTimeout(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	opts.StrictTimeout = true
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	ephemqd.Push("q", []byte("x"))
	code, _, body := doRequest(t, "GET", queueURL(httpAddr, "q")+"?timeout=soon", nil, nil)
	test.Equal(t, 400, code)
	test.Equal(t, "INVALID_TIMEOUT", string(body))
	// the rejected request left the message in place
	test.Equal(t, int64(1), ephemqd.Registry().Depth("q"))

	code, _, body = doRequest(t, "GET", queueURL(httpAddr, "q")+"?timeout=1s", nil, nil)
	test.Equal(t, 200, code)
	test.Equal(t, "x", string(body))
}

func TestHTTPSnappy(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	payload := bytes.Repeat([]byte("compressible "), 64)
	header := http.Header{}
	header.Set("Content-Encoding", "snappy")
	code, _, _ := doRequest(t, "PUT", queueURL(httpAddr, "z"), snappy.Encode(nil, payload), header)
	test.Equal(t, 200, code)

	// stored decoded
	code, _, body := doRequest(t, "GET", queueURL(httpAddr, "z"), nil, nil)
	test.Equal(t, 200, code)
	test.Equal(t, payload, body)

	ephemqd.Push("z", payload)
	header = http.Header{}
	header.Set("Accept-Encoding", "snappy")
	code, respHeader, body := doRequest(t, "GET", queueURL(httpAddr, "z"), nil, header)
	test.Equal(t, 200, code)
	test.Equal(t, "snappy", respHeader.Get("Content-Encoding"))
	decoded, err := snappy.Decode(nil, body)
	test.Nil(t, err)
	test.Equal(t, payload, decoded)
}

func TestHTTPSnappyInvalidBody(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	header := http.Header{}
	header.Set("Content-Encoding", "snappy")
	code, _, body := doRequest(t, "PUT", queueURL(httpAddr, "z"), []byte{0xff, 0xff, 0xff, 0xff, 0xff}, header)
	test.Equal(t, 400, code)
	test.Equal(t, "INVALID_BODY", string(body))
	test.Equal(t, false, ephemqd.Registry().Exists("z"))
}

func TestHTTPMethodNotAllowed(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	for _, method := range []string{"POST", "DELETE", "PATCH", "OPTIONS"} {
		code, _, body := doRequest(t, method, queueURL(httpAddr, "q"), nil, nil)
		test.Equal(t, 405, code)
		test.Equal(t, `{"message":"METHOD_NOT_ALLOWED"}`, string(body))
	}
}

func TestHTTPNotFound(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	code, _, _ := doRequest(t, "PUT", fmt.Sprintf("http://%s/a/b", httpAddr), []byte("x"), nil)
	test.Equal(t, 404, code)
	code, _, _ = doRequest(t, "GET", fmt.Sprintf("http://%s/", httpAddr), nil, nil)
	test.Equal(t, 404, code)
	test.Equal(t, 0, ephemqd.Registry().Len())
}

func TestHTTPStatusEvery(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	opts.StatusEvery = 2
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	for i := 0; i < 4; i++ {
		code, _, _ := doRequest(t, "PUT", queueURL(httpAddr, "timed"), []byte("x"), nil)
		test.Equal(t, 200, code)
		code, _, _ = doRequest(t, "GET", queueURL(httpAddr, "timed"), nil, nil)
		test.Equal(t, 200, code)
	}
}

func TestHTTPSnappyAcceptEncodingList(t *testing.T) {
	opts := NewOptions()
	opts.Logger = test.NewTestLogger(t)
	httpAddr, _, ephemqd := mustStartEPHEMQD(opts)
	defer ephemqd.Exit()

	payload := []byte("listed among other encodings")
	for _, accept := range []string{"gzip, snappy", "Snappy;q=0.5, identity"} {
		ephemqd.Push("z", payload)
		header := http.Header{}
		header.Set("Accept-Encoding", accept)
		code, respHeader, body := doRequest(t, "GET", queueURL(httpAddr, "z"), nil, header)
		test.Equal(t, 200, code)
		test.Equal(t, "snappy", respHeader.Get("Content-Encoding"))
		decoded, err := snappy.Decode(nil, body)
		test.Nil(t, err)
		test.Equal(t, payload, decoded)
	}

	ephemqd.Push("z", payload)
	header := http.Header{}
	header.Set("Accept-Encoding", "identity")
	code, respHeader, body := doRequest(t, "GET", queueURL(httpAddr, "z"), nil, header)
	test.Equal(t, 200, code)
	test.Equal(t, "", respHeader.Get("Content-Encoding"))
	test.Equal(t, payload, body)
}

func TestHasEncoding(t *testing.T) {
	test.Equal(t, true, hasEncoding("snappy", "snappy"))
	test.Equal(t, true, hasEncoding("gzip, snappy", "snappy"))
	test.Equal(t, true, hasEncoding(" SNAPPY ;q=1", "snappy"))
	test.Equal(t, false, hasEncoding("", "snappy"))
	test.Equal(t, false, hasEncoding("gzip, deflate", "snappy"))
	test.Equal(t, false, hasEncoding("snappyish", "snappy"))
}
