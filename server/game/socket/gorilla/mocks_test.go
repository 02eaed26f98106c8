package gorilla

import (
	"bufio"
	"bytes"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// hijackRecorder is a response recorder that can be hijacked by the upgrader.
// The handshake response is written to the buffer of the connection.
type hijackRecorder struct {
	*httptest.ResponseRecorder
	conn net.Conn
	rw   *bufio.ReadWriter
}

func (h hijackRecorder) Write(p []byte) (int, error) {
	return h.rw.Write(p)
}

func (h hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return h.conn, h.rw, nil
}

// bufferedConn is one end of a pipe that writes to a buffer instead of the other end.
type bufferedConn struct {
	net.Conn
	w *bufio.Writer
}

func (c bufferedConn) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

// newWebsocketResponseWriter creates a response writer that the upgrader can hijack.
func newWebsocketResponseWriter() http.ResponseWriter {
	client, _ := net.Pipe()
	var handshake bytes.Buffer
	w := bufio.NewWriter(&handshake)
	r := bufio.NewReader(strings.NewReader("reader"))
	h := hijackRecorder{
		ResponseRecorder: httptest.NewRecorder(),
		conn: bufferedConn{
			Conn: client,
			w:    w,
		},
		rw: bufio.NewReadWriter(r, w),
	}
	return &h
}

// newWebsocketRequest creates a request for the game socket with the headers needed to upgrade it.
func newWebsocketRequest() *http.Request {
	r := httptest.NewRequest("GET", "/game/socket", nil)
	r.Header.Set("Connection", "upgrade")
	r.Header.Set("Upgrade", "websocket")
	r.Header.Set("Sec-Websocket-Version", "13")
	r.Header.Set("Sec-WebSocket-Key", "3D8mi1hwk11RYYWU8rsdIg==")
	return r
}

// newConnWithMocks upgrades a mock request with the default upgrader.
func newConnWithMocks(t *testing.T) *Conn {
	t.Helper()
	u := UpgraderConfig{}.NewUpgrader()
	conn, err := u.Upgrade(newWebsocketResponseWriter(), newWebsocketRequest())
	if err != nil {
		t.Fatalf("creating Conn: %v", err)
	}
	return conn
}
