// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeMetrics serializes metrics as a flat concatenation of five-byte
// entries: type code followed by the value as big-endian IEEE-754 binary32.
func EncodeMetrics(metrics []Metric) []byte {
	out := make([]byte, 0, len(metrics)*MetricEntrySize)
	for _, m := range metrics {
		out = append(out, m.Type)
		out = binary.BigEndian.AppendUint32(out, math.Float32bits(m.Value))
	}
	return out
}

// DecodeMetrics parses a metrics payload. The payload length must be an exact
// multiple of the five-byte entry size.
func DecodeMetrics(payload []byte) ([]Metric, error) {
	if len(payload)%MetricEntrySize != 0 {
		return nil, fmt.Errorf("%w: metrics payload %d bytes is not a multiple of %d",
			ErrLengthMismatch, len(payload), MetricEntrySize)
	}
	metrics := make([]Metric, 0, len(payload)/MetricEntrySize)
	for off := 0; off < len(payload); off += MetricEntrySize {
		metrics = append(metrics, Metric{
			Type:  payload[off],
			Value: math.Float32frombits(binary.BigEndian.Uint32(payload[off+1 : off+5])),
		})
	}
	return metrics, nil
}

// EncodeStatus serializes a StatusPayload into its fixed nine-byte layout.
func EncodeStatus(s *StatusPayload) []byte {
	out := make([]byte, 0, StatusPayloadSize)
	out = append(out, s.Status)
	out = binary.BigEndian.AppendUint32(out, s.Uptime)
	out = binary.BigEndian.AppendUint16(out, s.Errors)
	out = binary.BigEndian.AppendUint16(out, s.Warnings)
	return out
}

// DecodeStatus parses a StatusPayload. Trailing bytes beyond the fixed layout
// are ignored for forward compatibility.
func DecodeStatus(payload []byte) (*StatusPayload, error) {
	if len(payload) < StatusPayloadSize {
		return nil, fmt.Errorf("%w: status payload %d bytes (need %d)",
			ErrShortPayload, len(payload), StatusPayloadSize)
	}
	return &StatusPayload{
		Status:   payload[0],
		Uptime:   binary.BigEndian.Uint32(payload[1:5]),
		Errors:   binary.BigEndian.Uint16(payload[5:7]),
		Warnings: binary.BigEndian.Uint16(payload[7:9]),
	}, nil
}

// EncodeCommandResult serializes a CommandResult: success, return code, a
// big-endian output length and the output bytes.
func EncodeCommandResult(r *CommandResult) ([]byte, error) {
	if len(r.Output) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: command output %d bytes", ErrPayloadTooLarge, len(r.Output))
	}
	out := make([]byte, 0, CommandResultMinSize+len(r.Output))
	out = append(out, r.Success, r.ReturnCode)
	out = binary.BigEndian.AppendUint16(out, uint16(len(r.Output)))
	out = append(out, r.Output...)
	return out, nil
}

// DecodeCommandResult parses a CommandResult payload. The declared output
// length must match the bytes actually present.
func DecodeCommandResult(payload []byte) (*CommandResult, error) {
	if len(payload) < CommandResultMinSize {
		return nil, fmt.Errorf("%w: command result %d bytes (need %d)",
			ErrShortPayload, len(payload), CommandResultMinSize)
	}
	outputLen := int(binary.BigEndian.Uint16(payload[2:4]))
	if len(payload)-CommandResultMinSize != outputLen {
		return nil, fmt.Errorf("%w: output_len %d but %d bytes follow",
			ErrLengthMismatch, outputLen, len(payload)-CommandResultMinSize)
	}
	r := &CommandResult{
		Success:    payload[0],
		ReturnCode: payload[1],
	}
	if outputLen > 0 {
		r.Output = make([]byte, outputLen)
		copy(r.Output, payload[CommandResultMinSize:])
	}
	return r, nil
}
