// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

import (
	"fmt"
	"math"
)

// AnomalyType represents different classes of message anomalies
type AnomalyType int

const (
	AnomalyUnknownType AnomalyType = iota
	AnomalyLengthMismatch
	AnomalyUnknownMetric
	AnomalyNonFiniteValue
	AnomalyOutOfRange
	AnomalyCRCError
	AnomalyDecodeError
)

// ValidationError represents a message validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateMessage checks a decoded message for structural problems and
// anomalous values. Returns a slice of validation errors (empty if the
// message is clean).
//
// This is diagnostics for link monitoring, not protocol enforcement: the
// codec accepts anything structurally valid, and physical plausibility
// belongs to the consuming service. The checks here flag what a field tech
// cares about when judging link quality.
func ValidateMessage(m *Message) []ValidationError {
	if CategoryOf(m.Type) == CategoryUnknown || FormatMessageType(m.Type) == "UNKNOWN" {
		return []ValidationError{{
			Type:    AnomalyUnknownType,
			Message: fmt.Sprintf("Unknown message type 0x%02X", m.Type),
			Details: map[string]interface{}{"type": m.Type},
		}}
	}

	switch m.Type {
	case MsgMetricsResponse, MsgEventMetricReport:
		return validateMetricsPayload(m.Payload)
	case MsgStatusResponse:
		return validateStatusPayload(m.Payload)
	case MsgExecResponse:
		return validateCommandResultPayload(m.Payload)
	}

	return []ValidationError{}
}

func validateMetricsPayload(payload []byte) []ValidationError {
	metrics, err := DecodeMetrics(payload)
	if err != nil {
		return []ValidationError{{
			Type:    AnomalyLengthMismatch,
			Message: fmt.Sprintf("Metrics payload length %d is not a multiple of %d", len(payload), MetricEntrySize),
			Details: map[string]interface{}{"length": len(payload)},
		}}
	}

	errors := []ValidationError{}
	for _, metric := range metrics {
		if _, ok := LookupMetric(metric.Type); !ok {
			errors = append(errors, ValidationError{
				Type:    AnomalyUnknownMetric,
				Message: fmt.Sprintf("Metric code 0x%02X not in registry", metric.Type),
				Details: map[string]interface{}{"code": metric.Type},
			})
		}
		value := float64(metric.Value)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			errors = append(errors, ValidationError{
				Type:    AnomalyNonFiniteValue,
				Message: fmt.Sprintf("%s value is not finite", MetricName(metric.Type)),
				Details: map[string]interface{}{"code": metric.Type},
			})
			continue
		}
		if MetricUnit(metric.Type) == "%" && (value < 0 || value > 100) {
			errors = append(errors, ValidationError{
				Type:    AnomalyOutOfRange,
				Message: fmt.Sprintf("%s=%.1f%% outside 0-100", MetricName(metric.Type), value),
				Details: map[string]interface{}{"code": metric.Type, "value": value},
			})
		}
	}
	return errors
}

func validateStatusPayload(payload []byte) []ValidationError {
	status, err := DecodeStatus(payload)
	if err != nil {
		return []ValidationError{{
			Type:    AnomalyLengthMismatch,
			Message: fmt.Sprintf("Status payload too short (%d bytes, expected %d)", len(payload), StatusPayloadSize),
			Details: map[string]interface{}{"length": len(payload), "expected": StatusPayloadSize},
		}}
	}

	if status.Status > StatusMaintenance {
		return []ValidationError{{
			Type:    AnomalyOutOfRange,
			Message: fmt.Sprintf("Unknown status code 0x%02X", status.Status),
			Details: map[string]interface{}{"status": status.Status},
		}}
	}
	return []ValidationError{}
}

func validateCommandResultPayload(payload []byte) []ValidationError {
	if _, err := DecodeCommandResult(payload); err != nil {
		return []ValidationError{{
			Type:    AnomalyLengthMismatch,
			Message: fmt.Sprintf("Malformed command result: %v", err),
			Details: map[string]interface{}{"length": len(payload)},
		}}
	}
	return []ValidationError{}
}
