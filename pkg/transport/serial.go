// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is used when SerialConfig.BaudRate is zero.
const DefaultBaudRate = 115200

// SerialConfig holds the configuration for a serial transport.
type SerialConfig struct {
	// Port is the serial device path (e.g. "/dev/ttyUSB0" or "COM3").
	Port string
	// BaudRate is the line speed. Defaults to 115200.
	BaudRate int
}

// Serial is a Transport over a raw serial line: 8 data bits, no parity, one
// stop bit, no flow control.
type Serial struct {
	cfg     SerialConfig
	port    serial.Port
	pending []byte
}

// NewSerial creates a closed serial transport with the given configuration.
func NewSerial(cfg SerialConfig) *Serial {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	return &Serial{cfg: cfg}
}

// Kind returns KindSerial.
func (s *Serial) Kind() Kind {
	return KindSerial
}

// Open opens the serial device in raw 8-N-1 mode.
func (s *Serial) Open() error {
	if s.port != nil {
		return ErrAlreadyOpen
	}
	if s.cfg.Port == "" {
		return fmt.Errorf("serial: port is required")
	}

	mode := &serial.Mode{
		BaudRate: s.cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(s.cfg.Port, mode)
	if err != nil {
		return fmt.Errorf("serial: open %s: %w", s.cfg.Port, err)
	}

	s.port = port
	s.pending = nil
	return nil
}

// Close closes the serial device. Any blocked Recv returns with an error.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	port := s.port
	s.port = nil
	s.pending = nil
	return port.Close()
}

// IsOpen reports whether the device is open.
func (s *Serial) IsOpen() bool {
	return s.port != nil
}

// Send writes the full buffer to the line.
func (s *Serial) Send(data []byte) (int, error) {
	if s.port == nil {
		return 0, ErrNotOpen
	}
	written := 0
	for written < len(data) {
		n, err := s.port.Write(data[written:])
		written += n
		if err != nil {
			return written, fmt.Errorf("serial: write: %w", err)
		}
	}
	return written, nil
}

// Recv reads available bytes into buf, waiting at most timeout. Returns 0
// with a nil error when the line stays idle for the whole timeout.
func (s *Serial) Recv(buf []byte, timeout time.Duration) (int, error) {
	if s.port == nil {
		return 0, ErrNotOpen
	}
	if len(s.pending) > 0 {
		n := copy(buf, s.pending)
		s.pending = s.pending[n:]
		return n, nil
	}

	if timeout < 0 {
		timeout = serial.NoTimeout
	}
	if err := s.port.SetReadTimeout(timeout); err != nil {
		return 0, fmt.Errorf("serial: set read timeout: %w", err)
	}

	n, err := s.port.Read(buf)
	if err != nil {
		if s.port == nil {
			return 0, ErrNotOpen
		}
		return n, fmt.Errorf("serial: read: %w", err)
	}
	// go.bug.st/serial returns n == 0 with a nil error on read timeout.
	return n, nil
}

// Available reports how many bytes can be read without blocking, probing the
// line with a short poll.
func (s *Serial) Available() (int, error) {
	if s.port == nil {
		return 0, ErrNotOpen
	}
	if len(s.pending) == 0 {
		scratch := make([]byte, 4096)
		n, err := s.Recv(scratch, pollInterval)
		if err != nil {
			return 0, err
		}
		s.pending = append(s.pending, scratch[:n]...)
	}
	return len(s.pending), nil
}

// Flush discards any unread input.
func (s *Serial) Flush() error {
	if s.port == nil {
		return ErrNotOpen
	}
	s.pending = nil
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("serial: flush: %w", err)
	}
	return nil
}

func (s *Serial) String() string {
	return fmt.Sprintf("serial %s @ %d baud", s.cfg.Port, s.cfg.BaudRate)
}
