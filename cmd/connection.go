// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Nexcell Networks

package cmd

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/nexcell/towerwatch/pkg/bscp"
	"github.com/nexcell/towerwatch/pkg/transport"
)

// connSettings is the merged view of profile values and flags. Explicit flags
// win over the profile.
type connSettings struct {
	kind       transport.Kind
	port       string
	baud       int
	host       string
	tcpPort    int
	caFile     string
	certFile   string
	keyFile    string
	serverName string
	insecure   bool
}

// splitHostPort parses a "host:port" address.
func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q (want host:port): %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in %q", addr)
	}
	return host, port, nil
}

// resolveSettings merges the optional station profile with the flags.
func resolveSettings() (*connSettings, error) {
	s := &connSettings{}

	if stationName != "" {
		profile, err := LookupStation(stationName)
		if err != nil {
			return nil, err
		}
		switch profile.Transport {
		case "serial":
			s.kind = transport.KindSerial
		case "tcp":
			s.kind = transport.KindTCP
		case "tls":
			s.kind = transport.KindTLS
		case "":
			return nil, fmt.Errorf("station %q: transport is required", stationName)
		default:
			return nil, fmt.Errorf("station %q: unknown transport %q", stationName, profile.Transport)
		}
		s.port = profile.Port
		s.baud = profile.Baud
		if profile.Host != "" {
			host, port, err := splitHostPort(profile.Host)
			if err != nil {
				return nil, fmt.Errorf("station %q: %v", stationName, err)
			}
			s.host = host
			s.tcpPort = port
		}
		s.caFile = profile.CAFile
		s.certFile = profile.CertFile
		s.keyFile = profile.KeyFile
		s.serverName = profile.ServerName
		s.insecure = profile.Insecure
	}

	// Flags override the profile.
	if portName != "" {
		s.kind = transport.KindSerial
		s.port = portName
	}
	if hostAddr != "" {
		host, port, err := splitHostPort(hostAddr)
		if err != nil {
			return nil, err
		}
		s.host = host
		s.tcpPort = port
		s.kind = transport.KindTCP
	}
	if useTLS {
		s.kind = transport.KindTLS
	}
	if baudRate != 115200 || s.baud == 0 {
		s.baud = baudRate
	}
	if tlsCAFile != "" {
		s.caFile = tlsCAFile
	}
	if tlsCertFile != "" {
		s.certFile = tlsCertFile
	}
	if tlsKeyFile != "" {
		s.keyFile = tlsKeyFile
	}
	if tlsServerName != "" {
		s.serverName = tlsServerName
	}
	if tlsInsecure {
		s.insecure = true
	}

	if s.port == "" && s.host == "" {
		return nil, fmt.Errorf("no connection target: use --port, --host or --station")
	}
	return s, nil
}

// OpenTransport builds and opens a transport from the flags and the optional
// station profile. The returned string describes the connection for banners.
func OpenTransport() (transport.Transport, string, error) {
	s, err := resolveSettings()
	if err != nil {
		return nil, "", err
	}

	var tr transport.Transport
	switch s.kind {
	case transport.KindSerial:
		tr = transport.NewSerial(transport.SerialConfig{
			Port:     s.port,
			BaudRate: s.baud,
		})
	case transport.KindTCP:
		tr = transport.NewTCP(transport.TCPConfig{
			Host: s.host,
			Port: s.tcpPort,
		})
	case transport.KindTLS:
		tr = transport.NewTLS(transport.TLSConfig{
			Host:               s.host,
			Port:               s.tcpPort,
			CAFile:             s.caFile,
			CertFile:           s.certFile,
			KeyFile:            s.keyFile,
			ServerName:         s.serverName,
			InsecureSkipVerify: s.insecure,
		})
	}

	if err := tr.Open(); err != nil {
		return nil, "", err
	}
	return tr, tr.String(), nil
}

// recvTimeout is the poll granularity of the reader loops. Short enough to
// notice closure quickly, long enough to stay off the CPU.
const recvTimeout = 100 * time.Millisecond

// transact sends a request and waits for the matching response (same base
// type, same sequence number). Unrelated traffic such as event frames is
// ignored while waiting.
func transact(tr transport.Transport, parser *bscp.Parser, req *bscp.Message, timeout time.Duration) (*bscp.Message, error) {
	frame, err := bscp.BuildFrame(req)
	if err != nil {
		return nil, err
	}
	if _, err := tr.Send(frame); err != nil {
		return nil, err
	}

	buf := make([]byte, 4096)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		remaining := time.Until(deadline)
		if remaining > recvTimeout {
			remaining = recvTimeout
		}
		n, err := tr.Recv(buf, remaining)
		if err != nil {
			return nil, err
		}
		for _, msg := range parser.Feed(buf[:n]) {
			if msg.IsResponseTo(req) {
				return msg, nil
			}
		}
	}
	return nil, fmt.Errorf("no response within %v", timeout)
}

// GetPassword retrieves a password from the environment or prompts for it.
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv("TOWERWATCH_PASSWORD"); pw != "" {
		return pw, nil
	}

	// Prompt user for password (hide input)
	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}
