// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package transport

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// ============================================================
// Test Certificate Authority
// ============================================================

// testCA is a throwaway certificate authority for handshake tests.
type testCA struct {
	cert   *x509.Certificate
	key    *rsa.PrivateKey
	caFile string
}

func newTestCA(t *testing.T, dir, commonName string) *testCA {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate ca key: %v", err)
	}
	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create ca cert: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse ca cert: %v", err)
	}

	caFile := filepath.Join(dir, commonName+"-ca.crt")
	writeTestPEM(t, caFile, "CERTIFICATE", der)

	return &testCA{cert: cert, key: key, caFile: caFile}
}

// issue signs a leaf certificate and returns the cert and key file paths.
func (ca *testCA) issue(t *testing.T, dir, name string, usage x509.ExtKeyUsage, ips []net.IP) (string, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate leaf key: %v", err)
	}
	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: big.NewInt(now.UnixNano()),
		Subject:      pkix.Name{CommonName: name},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{usage},
		DNSNames:     []string{name},
		IPAddresses:  ips,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, ca.cert, &key.PublicKey, ca.key)
	if err != nil {
		t.Fatalf("create leaf cert: %v", err)
	}

	certFile := filepath.Join(dir, name+".crt")
	keyFile := filepath.Join(dir, name+".key")
	writeTestPEM(t, certFile, "CERTIFICATE", der)
	writeTestPEM(t, keyFile, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key))
	return certFile, keyFile
}

func writeTestPEM(t *testing.T, path, blockType string, der []byte) {
	t.Helper()
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// startTLSServer runs an echo server behind the given TLS config and returns
// the bound port.
func startTLSServer(t *testing.T, cfg *tls.Config) int {
	t.Helper()
	ln, err := tls.Listen("tcp", "127.0.0.1:0", cfg)
	if err != nil {
		t.Fatalf("tls listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go echoConn(conn)
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

// serverConfig builds the server side of a test session: a CA-signed server
// certificate for 127.0.0.1.
func serverConfig(t *testing.T, ca *testCA, dir string) *tls.Config {
	t.Helper()
	certFile, keyFile := ca.issue(t, dir, "station", x509.ExtKeyUsageServerAuth,
		[]net.IP{net.ParseIP("127.0.0.1")})
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		t.Fatalf("load server keypair: %v", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}}
}

// ============================================================
// Handshake and Session
// ============================================================

func TestTLS_HandshakeAndEcho(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t, dir, "nexcell-test")
	port := startTLSServer(t, serverConfig(t, ca, dir))

	tr := NewTLS(TLSConfig{
		Host:   "127.0.0.1",
		Port:   port,
		CAFile: ca.caFile,
	})

	if tr.State() != TLSInit {
		t.Fatalf("initial state = %v, want INIT", tr.State())
	}
	if err := tr.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer tr.Close()

	if tr.State() != TLSConnected {
		t.Errorf("state after Open = %v, want CONNECTED", tr.State())
	}
	if !tr.IsOpen() {
		t.Error("IsOpen false after handshake")
	}
	if tr.NegotiatedVersion() == "" {
		t.Error("NegotiatedVersion empty on connected session")
	}

	payload := []byte{0xAA, 0x55, 0x00, 0x00, 0x01, 0x01, 0xCA, 0xFE}
	if _, err := tr.Send(payload); err != nil {
		t.Fatalf("send: %v", err)
	}
	echo := recvExactly(t, tr, len(payload))
	if !bytes.Equal(echo, payload) {
		t.Errorf("echo mismatch:\n got % X\nsent % X", echo, payload)
	}

	if err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if tr.State() != TLSClosed {
		t.Errorf("state after Close = %v, want CLOSED", tr.State())
	}
	if tr.IsOpen() {
		t.Error("IsOpen true after Close")
	}
}

func TestTLS_ReopenAfterClose(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t, dir, "nexcell-test")
	port := startTLSServer(t, serverConfig(t, ca, dir))

	tr := NewTLS(TLSConfig{Host: "127.0.0.1", Port: port, CAFile: ca.caFile})
	for i := 0; i < 2; i++ {
		if err := tr.Open(); err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := tr.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}

func TestTLS_MutualAuth(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t, dir, "nexcell-test")

	cfg := serverConfig(t, ca, dir)
	pool := x509.NewCertPool()
	pool.AddCert(ca.cert)
	cfg.ClientCAs = pool
	cfg.ClientAuth = tls.RequireAndVerifyClientCert
	port := startTLSServer(t, cfg)

	certFile, keyFile := ca.issue(t, dir, "field-laptop", x509.ExtKeyUsageClientAuth, nil)
	tr := NewTLS(TLSConfig{
		Host:     "127.0.0.1",
		Port:     port,
		CAFile:   ca.caFile,
		CertFile: certFile,
		KeyFile:  keyFile,
	})
	if err := tr.Open(); err != nil {
		t.Fatalf("mutual-auth open: %v", err)
	}
	defer tr.Close()

	payload := []byte("authenticated")
	if _, err := tr.Send(payload); err != nil {
		t.Fatalf("send: %v", err)
	}
	echo := recvExactly(t, tr, len(payload))
	if !bytes.Equal(echo, payload) {
		t.Error("echo mismatch over mutually-authenticated session")
	}
}

// ============================================================
// Failure Paths
// ============================================================

func TestTLS_VerifyFailureIsTerminal(t *testing.T) {
	dir := t.TempDir()
	serverCA := newTestCA(t, dir, "station-ca")
	clientCA := newTestCA(t, dir, "unrelated-ca")
	port := startTLSServer(t, serverConfig(t, serverCA, dir))

	// Client trusts a different authority: chain verification must fail.
	tr := NewTLS(TLSConfig{Host: "127.0.0.1", Port: port, CAFile: clientCA.caFile})

	err := tr.Open()
	if !errors.Is(err, ErrVerifyFailed) {
		t.Fatalf("expected ErrVerifyFailed, got %v", err)
	}
	if tr.State() != TLSError {
		t.Errorf("state after verify failure = %v, want ERROR", tr.State())
	}

	// The instance is unusable: a second Open must refuse, not retry.
	if err := tr.Open(); !errors.Is(err, ErrHandshakeFailed) {
		t.Errorf("reopen after verify failure: expected ErrHandshakeFailed, got %v", err)
	}
	if _, err := tr.Send([]byte{0x01}); !errors.Is(err, ErrNotOpen) {
		t.Errorf("send after verify failure: expected ErrNotOpen, got %v", err)
	}
}

func TestTLS_ConfigLoadErrors(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t, dir, "nexcell-test")
	certFile, keyFile := ca.issue(t, dir, "field-laptop", x509.ExtKeyUsageClientAuth, nil)

	tests := []struct {
		name string
		cfg  TLSConfig
		want error
	}{
		{
			name: "missing CA file",
			cfg:  TLSConfig{Host: "127.0.0.1", Port: 1, CAFile: filepath.Join(dir, "no-such-ca.crt")},
			want: ErrCALoad,
		},
		{
			name: "missing cert file",
			cfg: TLSConfig{Host: "127.0.0.1", Port: 1, CAFile: ca.caFile,
				CertFile: filepath.Join(dir, "no-such.crt"), KeyFile: keyFile},
			want: ErrCertLoad,
		},
		{
			name: "missing key file",
			cfg: TLSConfig{Host: "127.0.0.1", Port: 1, CAFile: ca.caFile,
				CertFile: certFile, KeyFile: filepath.Join(dir, "no-such.key")},
			want: ErrKeyLoad,
		},
		{
			name: "garbage CA file",
			cfg:  TLSConfig{Host: "127.0.0.1", Port: 1, CAFile: keyFile},
			want: ErrCALoad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTLS(tt.cfg)
			if err := tr.Open(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTLS_NotOpen(t *testing.T) {
	tr := NewTLS(TLSConfig{Host: "127.0.0.1", Port: 1})

	if _, err := tr.Send([]byte{0x01}); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Send: expected ErrNotOpen, got %v", err)
	}
	if _, err := tr.Recv(make([]byte, 8), 0); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Recv: expected ErrNotOpen, got %v", err)
	}
	if tr.NegotiatedVersion() != "" {
		t.Error("NegotiatedVersion must be empty before Open")
	}
}

func TestTLSState_String(t *testing.T) {
	tests := []struct {
		state TLSState
		want  string
	}{
		{TLSInit, "INIT"},
		{TLSHandshaking, "HANDSHAKING"},
		{TLSConnected, "CONNECTED"},
		{TLSClosing, "CLOSING"},
		{TLSClosed, "CLOSED"},
		{TLSError, "ERROR"},
		{TLSState(42), "INVALID"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("TLSState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
