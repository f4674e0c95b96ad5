// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

import "encoding/binary"

// Request builder functions create Message structs ready for framing.
// These are convenience wrappers that ensure correct payload layout for each
// request type.

// NewPingRequest creates a PING request (0x01) with an empty payload.
// Stations respond with a PING response carrying the same sequence number.
func NewPingRequest(sequence uint8) *Message {
	return NewMessage(MsgPingRequest, sequence, nil)
}

// NewMetricsRequest creates a METRICS request (0x02). The payload lists the
// requested metric type codes; an empty list requests every metric the
// station samples.
func NewMetricsRequest(sequence uint8, types ...uint8) *Message {
	var payload []byte
	if len(types) > 0 {
		payload = make([]byte, len(types))
		copy(payload, types)
	}
	return NewMessage(MsgMetricsRequest, sequence, payload)
}

// NewStatusRequest creates a STATUS request (0x03) with an empty payload.
func NewStatusRequest(sequence uint8) *Message {
	return NewMessage(MsgStatusRequest, sequence, nil)
}

// NewExecCommand creates an EXEC_COMMAND request (0x04). The payload is the
// raw command line handed to the station's command interpreter.
func NewExecCommand(sequence uint8, command string) *Message {
	return NewMessage(MsgExecCommand, sequence, []byte(command))
}

// NewSetConfig creates a SET_CONFIG request (0x05): parameter id followed by
// a big-endian 32-bit value.
func NewSetConfig(sequence uint8, param uint8, value uint32) *Message {
	payload := make([]byte, 0, 5)
	payload = append(payload, param)
	payload = binary.BigEndian.AppendUint32(payload, value)
	return NewMessage(MsgSetConfig, sequence, payload)
}

// NewStreamStart creates a STREAM_START request (0x06): big-endian reporting
// interval in milliseconds, followed by the metric type codes to stream.
// An empty type list streams every metric.
func NewStreamStart(sequence uint8, intervalMs uint16, types ...uint8) *Message {
	payload := make([]byte, 0, 2+len(types))
	payload = binary.BigEndian.AppendUint16(payload, intervalMs)
	payload = append(payload, types...)
	return NewMessage(MsgStreamStart, sequence, payload)
}

// NewStreamStop creates a STREAM_STOP request (0x07) with an empty payload.
func NewStreamStop(sequence uint8) *Message {
	return NewMessage(MsgStreamStop, sequence, nil)
}
