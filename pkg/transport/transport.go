// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

// Package transport provides a uniform byte transport over serial lines,
// plain TCP and mutually-authenticated TLS for talking to base-station
// controllers.
//
// A transport is constructed closed; Open establishes the underlying
// connection and Close releases it. Each instance owns its connection
// exclusively and is driven by a single caller-owned loop: poll Recv, feed
// the frame parser, dispatch, repeat. Sharing an instance across goroutines
// requires external synchronization.
package transport

import (
	"errors"
	"time"
)

// Kind identifies the concrete transport variant.
type Kind int

const (
	KindSerial Kind = iota
	KindTCP
	KindTLS
)

func (k Kind) String() string {
	switch k {
	case KindSerial:
		return "serial"
	case KindTCP:
		return "tcp"
	case KindTLS:
		return "tls"
	default:
		return "unknown"
	}
}

// Transport is the capability interface shared by all variants.
//
// Recv blocks for at most the given timeout and returns 0 with a nil error
// when the timeout elapses; a zero return is not an error. A negative timeout
// blocks until data arrives or the transport is closed. Closing the transport
// from another goroutine makes an in-flight Recv return promptly with an
// error.
//
// Send blocks until the full buffer is written or an unrecoverable error
// occurs; there is no internal queueing, so a slow peer lengthens the call
// rather than growing a buffer.
type Transport interface {
	Kind() Kind
	Open() error
	Close() error
	Send(data []byte) (int, error)
	Recv(buf []byte, timeout time.Duration) (int, error)
	Available() (int, error)
	Flush() error
	IsOpen() bool
	String() string
}

// Transport error sentinels. Framing-level problems never appear here; these
// all mean "this connection is dead or unusable" and the caller owns the
// reconnect policy.
var (
	ErrNotOpen          = errors.New("transport: not open")
	ErrAlreadyOpen      = errors.New("transport: already open")
	ErrConnectionClosed = errors.New("transport: connection closed by peer")

	// TLS-specific failures
	ErrCertLoad        = errors.New("transport: cannot load client certificate")
	ErrKeyLoad         = errors.New("transport: cannot load client key")
	ErrCALoad          = errors.New("transport: cannot load CA certificate")
	ErrHandshakeFailed = errors.New("transport: TLS handshake failed")
	ErrVerifyFailed    = errors.New("transport: TLS certificate verification failed")
)

// pollInterval bounds the non-blocking probe used by Available.
const pollInterval = time.Millisecond

// Compile-time interface checks.
var (
	_ Transport = (*Serial)(nil)
	_ Transport = (*TCP)(nil)
	_ Transport = (*TLS)(nil)
)
