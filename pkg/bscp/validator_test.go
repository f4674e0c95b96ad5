// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

import (
	"math"
	"testing"
)

func hasAnomaly(errs []ValidationError, anomaly AnomalyType) bool {
	for _, e := range errs {
		if e.Type == anomaly {
			return true
		}
	}
	return false
}

func TestValidateMessage_CleanMetrics(t *testing.T) {
	payload := EncodeMetrics([]Metric{
		{Type: MetricCPULoad, Value: 42.0},
		{Type: MetricRSRP, Value: -98.5},
	})
	msg := NewMessage(MsgMetricsResponse, 1, payload)

	if errs := ValidateMessage(msg); len(errs) != 0 {
		t.Errorf("clean metrics flagged: %v", errs)
	}
}

func TestValidateMessage_UnknownType(t *testing.T) {
	msg := NewMessage(0x3A, 1, nil) // request band, no assigned meaning
	errs := ValidateMessage(msg)
	if !hasAnomaly(errs, AnomalyUnknownType) {
		t.Errorf("unknown type not flagged: %v", errs)
	}
}

func TestValidateMessage_UnknownMetric(t *testing.T) {
	payload := EncodeMetrics([]Metric{{Type: 0xEE, Value: 1.0}})
	msg := NewMessage(MsgMetricsResponse, 1, payload)

	errs := ValidateMessage(msg)
	if !hasAnomaly(errs, AnomalyUnknownMetric) {
		t.Errorf("unregistered metric not flagged: %v", errs)
	}
}

func TestValidateMessage_NonFiniteValues(t *testing.T) {
	for _, value := range []float32{
		float32(math.NaN()),
		float32(math.Inf(1)),
		float32(math.Inf(-1)),
	} {
		payload := EncodeMetrics([]Metric{{Type: MetricBoardTemp, Value: value}})
		msg := NewMessage(MsgMetricsResponse, 1, payload)

		errs := ValidateMessage(msg)
		if !hasAnomaly(errs, AnomalyNonFiniteValue) {
			t.Errorf("value %v not flagged as non-finite", value)
		}
	}
}

func TestValidateMessage_PercentageOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		value float32
		bad   bool
	}{
		{"negative", -0.5, true},
		{"over 100", 128.0, true},
		{"zero", 0, false},
		{"full", 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := EncodeMetrics([]Metric{{Type: MetricCPULoad, Value: tt.value}})
			msg := NewMessage(MsgMetricsResponse, 1, payload)

			flagged := hasAnomaly(ValidateMessage(msg), AnomalyOutOfRange)
			if flagged != tt.bad {
				t.Errorf("CPU_LOAD=%v: flagged=%v, want %v", tt.value, flagged, tt.bad)
			}
		})
	}
}

func TestValidateMessage_NonPercentageNotRangeChecked(t *testing.T) {
	// RSRP is dBm; strongly negative values are normal.
	payload := EncodeMetrics([]Metric{{Type: MetricRSRP, Value: -120.0}})
	msg := NewMessage(MsgMetricsResponse, 1, payload)

	if errs := ValidateMessage(msg); len(errs) != 0 {
		t.Errorf("valid dBm value flagged: %v", errs)
	}
}

func TestValidateMessage_TruncatedMetrics(t *testing.T) {
	msg := NewMessage(MsgMetricsResponse, 1, []byte{MetricCPULoad, 0x42})
	errs := ValidateMessage(msg)
	if !hasAnomaly(errs, AnomalyLengthMismatch) {
		t.Errorf("truncated metrics not flagged: %v", errs)
	}
}

func TestValidateMessage_Status(t *testing.T) {
	clean := NewMessage(MsgStatusResponse, 1, EncodeStatus(&StatusPayload{Status: StatusOK, Uptime: 60}))
	if errs := ValidateMessage(clean); len(errs) != 0 {
		t.Errorf("clean status flagged: %v", errs)
	}

	badCode := NewMessage(MsgStatusResponse, 1, EncodeStatus(&StatusPayload{Status: 0x7F}))
	if !hasAnomaly(ValidateMessage(badCode), AnomalyOutOfRange) {
		t.Error("unknown status code not flagged")
	}

	short := NewMessage(MsgStatusResponse, 1, []byte{StatusOK, 0x00})
	if !hasAnomaly(ValidateMessage(short), AnomalyLengthMismatch) {
		t.Error("short status payload not flagged")
	}
}

func TestValidateMessage_CommandResult(t *testing.T) {
	result, err := EncodeCommandResult(&CommandResult{Success: 1, Output: []byte("ok")})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	clean := NewMessage(MsgExecResponse, 1, result)
	if errs := ValidateMessage(clean); len(errs) != 0 {
		t.Errorf("clean command result flagged: %v", errs)
	}

	malformed := NewMessage(MsgExecResponse, 1, []byte{0x01, 0x00, 0x00, 0x09, 0xAA})
	if !hasAnomaly(ValidateMessage(malformed), AnomalyLengthMismatch) {
		t.Error("malformed command result not flagged")
	}
}
