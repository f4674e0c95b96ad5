// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

import (
	"encoding/binary"
	"fmt"
)

// BuildFrame serializes a message into a complete wire frame: magic, length,
// type, sequence, payload and the CRC over everything preceding it.
//
// The payload is validated before any output is produced; a frame is either
// emitted whole or not at all.
func BuildFrame(m *Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil message", ErrInvalidArgument)
	}
	if len(m.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: payload %d bytes (max %d)",
			ErrPayloadTooLarge, len(m.Payload), MaxPayloadSize)
	}

	frame := make([]byte, 0, FrameOverhead+len(m.Payload))
	frame = append(frame, Magic0, Magic1)
	frame = binary.BigEndian.AppendUint16(frame, uint16(len(m.Payload)))
	frame = append(frame, m.Type, m.Sequence)
	frame = append(frame, m.Payload...)

	crc := CRC16(frame)
	frame = binary.BigEndian.AppendUint16(frame, crc)

	return frame, nil
}

// MustBuildFrame is like BuildFrame but panics on error. Intended for
// messages whose payload size is known to be valid.
func MustBuildFrame(m *Message) []byte {
	frame, err := BuildFrame(m)
	if err != nil {
		panic(fmt.Sprintf("bscp: build frame: %v", err))
	}
	return frame
}
