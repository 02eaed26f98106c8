package socket

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jacobpatterson1549/prisoners-dilemma/game/message"
)

// mockAddr implements the net.Addr interface
type mockAddr string

func (m mockAddr) Network() string {
	return string(m) + "_NETWORK"
}

func (m mockAddr) String() string {
	return string(m)
}

type mockConn struct {
	ReadMessageFunc      func(m *message.Message) error
	WriteMessageFunc     func(m message.Message) error
	SetReadDeadlineFunc  func(t time.Time) error
	SetWriteDeadlineFunc func(t time.Time) error
	SetPongHandlerFunc   func(h func(appDauta string) error)
	CloseFunc            func() error
	WritePingFunc        func() error
	WriteCloseFunc       func(reason string) error
	IsNormalCloseFunc    func(err error) bool
	RemoteAddrFunc       func() net.Addr
}

func (m *mockConn) ReadMessage(msg *message.Message) error {
	return m.ReadMessageFunc(msg)
}

func (m *mockConn) WriteMessage(msg message.Message) error {
	return m.WriteMessageFunc(msg)
}

func (m *mockConn) SetReadDeadline(t time.Time) error {
	return m.SetReadDeadlineFunc(t)
}

func (m *mockConn) SetWriteDeadline(t time.Time) error {
	return m.SetWriteDeadlineFunc(t)
}

func (m *mockConn) SetPongHandler(h func(appData string) error) {
	m.SetPongHandlerFunc(h)
}

func (m *mockConn) Close() error {
	return m.CloseFunc()
}

func (m *mockConn) WritePing() error {
	return m.WritePingFunc()
}

func (m *mockConn) WriteClose(reason string) error {
	return m.WriteCloseFunc(reason)
}

func (m *mockConn) IsNormalClose(err error) bool {
	return m.IsNormalCloseFunc(err)
}

func (m *mockConn) RemoteAddr() net.Addr {
	return m.RemoteAddrFunc()
}

// pipeConn is a mockConn that reads messages the test sends and records the messages it writes.
type pipeConn struct {
	mockConn
	reads       chan message.Message
	writes      chan message.Message
	closeReason chan string
	closed      chan struct{}
	closeOnce   sync.Once
}

var errConnClosed = errors.New("connection closed")

func newPipeConn(addr string) *pipeConn {
	c := pipeConn{
		reads:       make(chan message.Message),
		writes:      make(chan message.Message, 16),
		closeReason: make(chan string, 1),
		closed:      make(chan struct{}),
	}
	c.mockConn = mockConn{
		ReadMessageFunc: func(m *message.Message) error {
			select {
			case m2 := <-c.reads:
				*m = m2
				return nil
			case <-c.closed:
				return errConnClosed
			}
		},
		WriteMessageFunc: func(m message.Message) error {
			c.writes <- m
			return nil
		},
		SetReadDeadlineFunc: func(t time.Time) error {
			return nil
		},
		SetWriteDeadlineFunc: func(t time.Time) error {
			return nil
		},
		SetPongHandlerFunc: func(h func(appDauta string) error) {
			// NOOP
		},
		CloseFunc: func() error {
			c.closeOnce.Do(func() {
				close(c.closed)
			})
			return nil
		},
		WritePingFunc: func() error {
			return nil
		},
		WriteCloseFunc: func(reason string) error {
			c.closeReason <- reason
			return nil
		},
		IsNormalCloseFunc: func(err error) bool {
			return err == errConnClosed
		},
		RemoteAddrFunc: func() net.Addr {
			return mockAddr(addr)
		},
	}
	return &c
}

// mockUpgrader implements the Upgrader interface.
type mockUpgrader func(w http.ResponseWriter, r *http.Request) (Conn, error)

func (m mockUpgrader) Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error) {
	return m(w, r)
}
