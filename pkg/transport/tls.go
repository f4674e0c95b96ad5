// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// DefaultHandshakeTimeout bounds the TLS handshake when not configured.
const DefaultHandshakeTimeout = 10 * time.Second

// TLSState tracks the connection lifecycle of a TLS transport.
type TLSState int

const (
	TLSInit TLSState = iota
	TLSHandshaking
	TLSConnected
	TLSClosing
	TLSClosed
	TLSError
)

func (s TLSState) String() string {
	switch s {
	case TLSInit:
		return "INIT"
	case TLSHandshaking:
		return "HANDSHAKING"
	case TLSConnected:
		return "CONNECTED"
	case TLSClosing:
		return "CLOSING"
	case TLSClosed:
		return "CLOSED"
	case TLSError:
		return "ERROR"
	default:
		return "INVALID"
	}
}

// TLSConfig holds the configuration for a mutually-authenticated TLS
// transport. CertFile/KeyFile are optional; when set, the client
// authenticates itself to the station.
type TLSConfig struct {
	Host string
	Port int
	// CAFile is the PEM trust anchor used to verify the station's chain.
	CAFile string
	// CertFile/KeyFile enable mutual authentication when both are set.
	CertFile string
	KeyFile  string
	// ServerName overrides the name verified against the station's
	// certificate. Defaults to Host.
	ServerName string
	// InsecureSkipVerify disables chain verification. Bench use only.
	InsecureSkipVerify bool

	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
}

// TLS is a Transport over TLS-wrapped TCP. A handshake or verification
// failure is terminal for the instance: the caller must discard it and open
// a fresh transport rather than retry in place.
type TLS struct {
	cfg     TLSConfig
	state   TLSState
	conn    *tls.Conn
	pending []byte
}

// NewTLS creates a closed TLS transport with the given configuration.
func NewTLS(cfg TLSConfig) *TLS {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	return &TLS{cfg: cfg, state: TLSInit}
}

// Kind returns KindTLS.
func (t *TLS) Kind() Kind {
	return KindTLS
}

// State returns the transport's lifecycle state.
func (t *TLS) State() TLSState {
	return t.state
}

// Addr returns the host:port string the transport dials.
func (t *TLS) Addr() string {
	return net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
}

// Open connects, performs the handshake and verifies the station's
// certificate chain against the configured trust anchor.
func (t *TLS) Open() error {
	switch t.state {
	case TLSInit, TLSClosed:
	case TLSError:
		return fmt.Errorf("%w: previous handshake failed, open a new transport", ErrHandshakeFailed)
	default:
		return ErrAlreadyOpen
	}
	if t.cfg.Host == "" {
		return fmt.Errorf("tls: host is required")
	}

	tlsCfg, err := t.buildConfig()
	if err != nil {
		return err
	}

	rawConn, err := net.DialTimeout("tcp", t.Addr(), t.cfg.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("tls: connect %s: %w", t.Addr(), err)
	}
	if tc, ok := rawConn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}

	t.state = TLSHandshaking
	conn := tls.Client(rawConn, tlsCfg)
	conn.SetDeadline(time.Now().Add(t.cfg.HandshakeTimeout))

	if err := conn.Handshake(); err != nil {
		conn.Close()
		t.state = TLSError
		if isVerifyError(err) {
			return fmt.Errorf("%w: %v", ErrVerifyFailed, err)
		}
		return fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}
	conn.SetDeadline(time.Time{})

	t.conn = conn
	t.pending = nil
	t.state = TLSConnected
	return nil
}

// buildConfig loads the trust anchor and optional client keypair.
func (t *TLS) buildConfig() (*tls.Config, error) {
	serverName := t.cfg.ServerName
	if serverName == "" {
		serverName = t.cfg.Host
	}

	tlsCfg := &tls.Config{
		ServerName:         serverName,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: t.cfg.InsecureSkipVerify,
	}

	if t.cfg.CAFile != "" {
		caPEM, err := os.ReadFile(t.cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCALoad, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("%w: no certificates in %s", ErrCALoad, t.cfg.CAFile)
		}
		tlsCfg.RootCAs = pool
	}

	if t.cfg.CertFile != "" || t.cfg.KeyFile != "" {
		certPEM, err := os.ReadFile(t.cfg.CertFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCertLoad, err)
		}
		keyPEM, err := os.ReadFile(t.cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
		}
		cert, err := tls.X509KeyPair(certPEM, keyPEM)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCertLoad, err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	return tlsCfg, nil
}

// isVerifyError distinguishes chain/name verification failures from other
// handshake failures.
func isVerifyError(err error) bool {
	var unknownAuthority x509.UnknownAuthorityError
	var certInvalid x509.CertificateInvalidError
	var hostname x509.HostnameError
	var certVerify *tls.CertificateVerificationError
	return errors.As(err, &unknownAuthority) ||
		errors.As(err, &certInvalid) ||
		errors.As(err, &hostname) ||
		errors.As(err, &certVerify)
}

// Close shuts the session down. Any blocked Recv returns promptly.
func (t *TLS) Close() error {
	if t.conn == nil {
		if t.state != TLSError {
			t.state = TLSClosed
		}
		return nil
	}
	t.state = TLSClosing
	conn := t.conn
	t.conn = nil
	t.pending = nil
	err := conn.Close()
	t.state = TLSClosed
	return err
}

// IsOpen reports whether the session is established.
func (t *TLS) IsOpen() bool {
	return t.state == TLSConnected
}

// NegotiatedVersion returns the negotiated TLS version name, or an empty
// string when not connected.
func (t *TLS) NegotiatedVersion() string {
	if t.conn == nil {
		return ""
	}
	return tls.VersionName(t.conn.ConnectionState().Version)
}

// Send writes the full buffer over the session.
func (t *TLS) Send(data []byte) (int, error) {
	if t.state != TLSConnected {
		return 0, ErrNotOpen
	}
	return sendAll(t.conn, data, "tls")
}

// Recv reads into buf with the given timeout. Peer closure invalidates the
// handle and returns ErrConnectionClosed.
func (t *TLS) Recv(buf []byte, timeout time.Duration) (int, error) {
	if t.state != TLSConnected {
		return 0, ErrNotOpen
	}
	var conn net.Conn = t.conn
	n, err := recvDeadline(conn, &t.pending, buf, timeout)
	if errors.Is(err, ErrConnectionClosed) {
		t.Close()
	}
	return n, err
}

// Available reports how many bytes can be read without blocking.
func (t *TLS) Available() (int, error) {
	return available(t, &t.pending)
}

// Flush discards any unread input.
func (t *TLS) Flush() error {
	return flush(t, &t.pending)
}

func (t *TLS) String() string {
	return "tls " + t.Addr()
}
