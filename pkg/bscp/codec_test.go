// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"
)

// ============================================================
// Metrics Codec
// ============================================================

func TestMetrics_RoundTrip(t *testing.T) {
	metrics := []Metric{
		{Type: MetricCPULoad, Value: 73.2},
		{Type: MetricRSRP, Value: -101.5},
		{Type: MetricSINR, Value: 18.25},
		{Type: MetricFanSpeed, Value: 4200},
	}

	payload := EncodeMetrics(metrics)
	if len(payload) != len(metrics)*MetricEntrySize {
		t.Fatalf("encoded %d bytes, want %d", len(payload), len(metrics)*MetricEntrySize)
	}

	decoded, err := DecodeMetrics(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(metrics) {
		t.Fatalf("decoded %d metrics, want %d", len(decoded), len(metrics))
	}
	for i := range metrics {
		if decoded[i].Type != metrics[i].Type {
			t.Errorf("metric %d: type 0x%02X, want 0x%02X", i, decoded[i].Type, metrics[i].Type)
		}
		if math.Float32bits(decoded[i].Value) != math.Float32bits(metrics[i].Value) {
			t.Errorf("metric %d: value %v not bit-identical to %v", i, decoded[i].Value, metrics[i].Value)
		}
	}
}

func TestMetrics_RandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(21))

	for round := 0; round < 200; round++ {
		metrics := make([]Metric, rng.Intn(64))
		for i := range metrics {
			// NaN excluded: NaN payloads are not bit-stable across encodings.
			value := math.Float32frombits(rng.Uint32())
			for math.IsNaN(float64(value)) {
				value = math.Float32frombits(rng.Uint32())
			}
			metrics[i] = Metric{Type: uint8(rng.Intn(256)), Value: value}
		}

		decoded, err := DecodeMetrics(EncodeMetrics(metrics))
		if err != nil {
			t.Fatalf("round %d: decode: %v", round, err)
		}
		for i := range metrics {
			if decoded[i].Type != metrics[i].Type ||
				math.Float32bits(decoded[i].Value) != math.Float32bits(metrics[i].Value) {
				t.Fatalf("round %d: metric %d mismatch", round, i)
			}
		}
	}
}

func TestMetrics_WireLayout(t *testing.T) {
	payload := EncodeMetrics([]Metric{{Type: MetricBoardTemp, Value: 1.0}})
	// 1.0 as big-endian IEEE-754 binary32 is 3F 80 00 00.
	want := []byte{MetricBoardTemp, 0x3F, 0x80, 0x00, 0x00}
	if !bytes.Equal(payload, want) {
		t.Errorf("wire layout % X, want % X", payload, want)
	}
}

func TestMetrics_RejectBadLength(t *testing.T) {
	for _, n := range []int{1, 4, 6, 9, 11} {
		if _, err := DecodeMetrics(make([]byte, n)); !errors.Is(err, ErrLengthMismatch) {
			t.Errorf("length %d: expected ErrLengthMismatch, got %v", n, err)
		}
	}
}

func TestMetrics_EmptyPayload(t *testing.T) {
	decoded, err := DecodeMetrics(nil)
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("decoded %d metrics from empty payload", len(decoded))
	}
}

// ============================================================
// Status Codec
// ============================================================

func TestStatus_RoundTrip(t *testing.T) {
	status := &StatusPayload{
		Status:   StatusDegraded,
		Uptime:   86461,
		Errors:   3,
		Warnings: 17,
	}

	payload := EncodeStatus(status)
	if len(payload) != StatusPayloadSize {
		t.Fatalf("encoded %d bytes, want %d", len(payload), StatusPayloadSize)
	}

	decoded, err := DecodeStatus(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *decoded != *status {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, status)
	}
}

func TestStatus_WireLayout(t *testing.T) {
	payload := EncodeStatus(&StatusPayload{
		Status:   StatusCritical,
		Uptime:   0x01020304,
		Errors:   0x0506,
		Warnings: 0x0708,
	})
	want := []byte{StatusCritical, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	if !bytes.Equal(payload, want) {
		t.Errorf("wire layout % X, want % X", payload, want)
	}
}

func TestStatus_RejectShort(t *testing.T) {
	for n := 0; n < StatusPayloadSize; n++ {
		if _, err := DecodeStatus(make([]byte, n)); !errors.Is(err, ErrShortPayload) {
			t.Errorf("length %d: expected ErrShortPayload, got %v", n, err)
		}
	}
}

// ============================================================
// Command Result Codec
// ============================================================

func TestCommandResult_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		result CommandResult
	}{
		{"with output", CommandResult{Success: 1, ReturnCode: 0, Output: []byte("cell 2 restarted\n")}},
		{"empty output", CommandResult{Success: 0, ReturnCode: 127}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := EncodeCommandResult(&tt.result)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}

			decoded, err := DecodeCommandResult(payload)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if decoded.Success != tt.result.Success || decoded.ReturnCode != tt.result.ReturnCode {
				t.Errorf("header mismatch: got %+v", decoded)
			}
			if !bytes.Equal(decoded.Output, tt.result.Output) {
				t.Errorf("output mismatch: got %q, want %q", decoded.Output, tt.result.Output)
			}
		})
	}
}

func TestCommandResult_RejectShort(t *testing.T) {
	for n := 0; n < CommandResultMinSize; n++ {
		if _, err := DecodeCommandResult(make([]byte, n)); !errors.Is(err, ErrShortPayload) {
			t.Errorf("length %d: expected ErrShortPayload, got %v", n, err)
		}
	}
}

func TestCommandResult_RejectLengthMismatch(t *testing.T) {
	// Declares 5 output bytes but carries 2.
	payload := []byte{0x01, 0x00, 0x00, 0x05, 0xAA, 0xBB}
	if _, err := DecodeCommandResult(payload); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}

	// Declares 1 output byte but carries 3.
	payload = []byte{0x01, 0x00, 0x00, 0x01, 0xAA, 0xBB, 0xCC}
	if _, err := DecodeCommandResult(payload); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

// ============================================================
// Category Derivation
// ============================================================

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		msgType uint8
		want    Category
	}{
		{MsgPingRequest, CategoryRequest},
		{MsgStreamStop, CategoryRequest},
		{MsgEventAlert, CategoryEvent},
		{MsgEventMetricReport, CategoryEvent},
		{MsgPingResponse, CategoryResponse},
		{MsgExecResponse, CategoryResponse},
		{0x00, CategoryUnknown},
	}

	for _, tt := range tests {
		if got := CategoryOf(tt.msgType); got != tt.want {
			t.Errorf("CategoryOf(0x%02X) = %v, want %v", tt.msgType, got, tt.want)
		}
	}
}

func TestMessage_IsResponseTo(t *testing.T) {
	req := NewStatusRequest(42)
	resp := NewMessage(MsgStatusResponse, 42, nil)
	if !resp.IsResponseTo(req) {
		t.Error("matching response not recognized")
	}

	wrongSeq := NewMessage(MsgStatusResponse, 43, nil)
	if wrongSeq.IsResponseTo(req) {
		t.Error("sequence mismatch not detected")
	}

	wrongType := NewMessage(MsgPingResponse, 42, nil)
	if wrongType.IsResponseTo(req) {
		t.Error("type mismatch not detected")
	}
}
