// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package transport

import (
	"errors"
	"testing"
)

func TestSerial_DefaultBaudRate(t *testing.T) {
	s := NewSerial(SerialConfig{Port: "/dev/ttyS0"})
	if got := s.String(); got != "serial /dev/ttyS0 @ 115200 baud" {
		t.Errorf("default baud not applied: %q", got)
	}

	s = NewSerial(SerialConfig{Port: "/dev/ttyS0", BaudRate: 9600})
	if got := s.String(); got != "serial /dev/ttyS0 @ 9600 baud" {
		t.Errorf("explicit baud not kept: %q", got)
	}
}

func TestSerial_PortRequired(t *testing.T) {
	s := NewSerial(SerialConfig{})
	if err := s.Open(); err == nil {
		t.Error("Open without port must fail")
	}
	if s.IsOpen() {
		t.Error("IsOpen true after failed Open")
	}
}

func TestSerial_OpenNonexistentDevice(t *testing.T) {
	s := NewSerial(SerialConfig{Port: "/dev/ttyTW-nonexistent"})
	if err := s.Open(); err == nil {
		s.Close()
		t.Fatal("Open on a nonexistent device must fail")
	}
	if s.IsOpen() {
		t.Error("IsOpen true after failed Open")
	}
}

func TestSerial_NotOpen(t *testing.T) {
	s := NewSerial(SerialConfig{Port: "/dev/ttyS0"})

	if _, err := s.Send([]byte{0x01}); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Send: expected ErrNotOpen, got %v", err)
	}
	if _, err := s.Recv(make([]byte, 8), 0); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Recv: expected ErrNotOpen, got %v", err)
	}
	if _, err := s.Available(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Available: expected ErrNotOpen, got %v", err)
	}
	if err := s.Flush(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Flush: expected ErrNotOpen, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close on closed transport must be a no-op, got %v", err)
	}
}
