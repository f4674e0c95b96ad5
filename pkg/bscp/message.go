// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

import (
	"bytes"
	"time"
)

// Message is the decoded, in-memory form of one BSCP frame. Sequence numbers
// are caller-assigned and used for request/response correlation by the
// application layer; this package neither validates nor enforces uniqueness.
type Message struct {
	Type      uint8
	Sequence  uint8
	Payload   []byte
	Timestamp time.Time // set by the parser when the frame completed
}

// NewMessage creates a message with the given type, sequence and payload.
func NewMessage(msgType, sequence uint8, payload []byte) *Message {
	return &Message{
		Type:     msgType,
		Sequence: sequence,
		Payload:  payload,
	}
}

// Category returns the message category derived from the type byte.
func (m *Message) Category() Category {
	return CategoryOf(m.Type)
}

// IsResponseTo reports whether m is the response matching the given request.
func (m *Message) IsResponseTo(req *Message) bool {
	return m.Type == req.Type|ResponseFlag && m.Sequence == req.Sequence
}

// Equal reports whether two messages carry the same type, sequence and
// payload. Timestamps are ignored.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Type == other.Type &&
		m.Sequence == other.Sequence &&
		bytes.Equal(m.Payload, other.Payload)
}

// Metric is a single typed telemetry sample. On the wire it occupies five
// bytes: the type code followed by the value as big-endian IEEE-754 binary32.
type Metric struct {
	Type  uint8
	Value float32
}

// MetricEntrySize is the wire size of one metric entry.
const MetricEntrySize = 5

// StatusPayload is the fixed nine-byte payload of a STATUS_RESPONSE.
type StatusPayload struct {
	Status   uint8
	Uptime   uint32 // seconds since controller boot
	Errors   uint16
	Warnings uint16
}

// StatusPayloadSize is the wire size of a StatusPayload.
const StatusPayloadSize = 9

// StatusName returns the human-readable name for a station status code.
func StatusName(status uint8) string {
	switch status {
	case StatusOK:
		return "OK"
	case StatusDegraded:
		return "DEGRADED"
	case StatusCritical:
		return "CRITICAL"
	case StatusMaintenance:
		return "MAINTENANCE"
	default:
		return "UNKNOWN"
	}
}

// CommandResult is the variable-length payload of an EXEC_RESPONSE. Output
// holds the raw captured command output.
type CommandResult struct {
	Success    uint8
	ReturnCode uint8
	Output     []byte
}

// CommandResultMinSize is the fixed header portion of a CommandResult:
// success(1) + return_code(1) + output_len(2).
const CommandResultMinSize = 4

// Succeeded reports whether the remote command ran successfully.
func (r *CommandResult) Succeeded() bool {
	return r.Success != 0
}
