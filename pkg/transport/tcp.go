// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// DefaultConnectTimeout is used when a connect timeout is not configured.
const DefaultConnectTimeout = 5 * time.Second

// TCPConfig holds the configuration for a TCP transport.
type TCPConfig struct {
	Host string
	Port int
	// ConnectTimeout bounds the dial. Defaults to 5 seconds.
	ConnectTimeout time.Duration
}

// TCP is a Transport over a plain TCP connection. Nagle coalescing is
// disabled after connect: BSCP frames are small and latency matters more
// than wire efficiency on these links.
type TCP struct {
	cfg     TCPConfig
	conn    net.Conn
	pending []byte
}

// NewTCP creates a closed TCP transport with the given configuration.
func NewTCP(cfg TCPConfig) *TCP {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	return &TCP{cfg: cfg}
}

// Kind returns KindTCP.
func (t *TCP) Kind() Kind {
	return KindTCP
}

// Addr returns the host:port string the transport dials.
func (t *TCP) Addr() string {
	return net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
}

// Open resolves and connects to the target.
func (t *TCP) Open() error {
	if t.conn != nil {
		return ErrAlreadyOpen
	}
	if t.cfg.Host == "" {
		return fmt.Errorf("tcp: host is required")
	}

	conn, err := net.DialTimeout("tcp", t.Addr(), t.cfg.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("tcp: connect %s: %w", t.Addr(), err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}

	t.conn = conn
	t.pending = nil
	return nil
}

// Close closes the connection. Any blocked Recv returns promptly.
func (t *TCP) Close() error {
	if t.conn == nil {
		return nil
	}
	conn := t.conn
	t.conn = nil
	t.pending = nil
	return conn.Close()
}

// IsOpen reports whether the connection is established.
func (t *TCP) IsOpen() bool {
	return t.conn != nil
}

// Send writes the full buffer, looping until done or an unrecoverable error.
func (t *TCP) Send(data []byte) (int, error) {
	return sendAll(t.conn, data, "tcp")
}

// Recv reads into buf with the given timeout. A zero-byte read from the peer
// signals closure: the handle is invalidated and ErrConnectionClosed is
// returned.
func (t *TCP) Recv(buf []byte, timeout time.Duration) (int, error) {
	n, err := recvDeadline(t.conn, &t.pending, buf, timeout)
	if errors.Is(err, ErrConnectionClosed) {
		t.Close()
	}
	return n, err
}

// Available reports how many bytes can be read without blocking.
func (t *TCP) Available() (int, error) {
	return available(t, &t.pending)
}

// Flush discards any unread input.
func (t *TCP) Flush() error {
	return flush(t, &t.pending)
}

func (t *TCP) String() string {
	return "tcp " + t.Addr()
}

// sendAll implements the shared blocking full-write loop.
func sendAll(conn net.Conn, data []byte, label string) (int, error) {
	if conn == nil {
		return 0, ErrNotOpen
	}
	written := 0
	for written < len(data) {
		n, err := conn.Write(data[written:])
		written += n
		if err != nil {
			return written, fmt.Errorf("%s: write: %w", label, err)
		}
	}
	return written, nil
}

// recvDeadline implements the shared deadline-bounded read: drain pending
// bytes first, then read with the timeout mapped onto a deadline. Timeout is
// a zero return, peer closure is ErrConnectionClosed.
func recvDeadline(conn net.Conn, pending *[]byte, buf []byte, timeout time.Duration) (int, error) {
	if conn == nil {
		return 0, ErrNotOpen
	}
	if len(*pending) > 0 {
		n := copy(buf, *pending)
		*pending = (*pending)[n:]
		return n, nil
	}

	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return 0, fmt.Errorf("set read deadline: %w", err)
	}

	n, err := conn.Read(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return n, nil
		}
		if errors.Is(err, io.EOF) {
			return n, ErrConnectionClosed
		}
		return n, fmt.Errorf("read: %w", err)
	}
	return n, nil
}

// available probes the transport without blocking, buffering whatever the
// peer already sent.
func available(t Transport, pending *[]byte) (int, error) {
	if !t.IsOpen() {
		return 0, ErrNotOpen
	}
	if len(*pending) == 0 {
		scratch := make([]byte, 4096)
		n, err := t.Recv(scratch, pollInterval)
		if err != nil {
			return 0, err
		}
		*pending = append(*pending, scratch[:n]...)
	}
	return len(*pending), nil
}

// flush discards buffered and already-delivered input.
func flush(t Transport, pending *[]byte) error {
	if !t.IsOpen() {
		return ErrNotOpen
	}
	*pending = nil
	scratch := make([]byte, 4096)
	for {
		n, err := t.Recv(scratch, 0)
		if err != nil || n == 0 {
			return err
		}
	}
}
