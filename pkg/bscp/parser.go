// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

import (
	"fmt"
	"time"
)

// State identifies the parser's position within the current frame.
type State int

// Parser states
const (
	StateIdle State = iota
	StateMagic
	StateLength
	StateType
	StateSequence
	StatePayload
	StateCRC
	StateComplete
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateMagic:
		return "MAGIC"
	case StateLength:
		return "LENGTH"
	case StateType:
		return "TYPE"
	case StateSequence:
		return "SEQUENCE"
	case StatePayload:
		return "PAYLOAD"
	case StateCRC:
		return "CRC"
	case StateComplete:
		return "COMPLETE"
	case StateError:
		return "ERROR"
	default:
		return "INVALID"
	}
}

// Stats holds parser counters. They are observability only and never affect
// control flow.
type Stats struct {
	FramesParsed uint64
	CRCErrors    uint64
	SyncErrors   uint64
}

// Parser implements the BSCP frame decoder state machine. It converts an
// arbitrary, possibly noisy byte stream into a sequence of integrity-checked
// messages, resynchronizing on the magic preamble after corruption.
//
// A parser holds exactly one in-flight frame. After a frame reaches
// StateComplete or StateError the next byte fed in is treated as a fresh
// potential frame start, so callers may feed a continuous stream without
// resetting between frames.
//
// A parser owns its accumulation buffer exclusively; sharing one across
// goroutines requires external synchronization.
type Parser struct {
	state       State
	length      uint16
	lengthBytes int
	msgType     uint8
	sequence    uint8
	payload     []byte
	recvCRC     uint16
	crcBytes    int
	runningCRC  uint16 // incremental CRC over magic+length+type+sequence+payload
	stats       Stats
}

// NewParser creates a new frame parser in the idle state.
func NewParser() *Parser {
	return &Parser{state: StateIdle}
}

// Reset returns the parser to the idle state, discarding any in-flight frame.
// Counters are preserved.
func (p *Parser) Reset() {
	p.state = StateIdle
	p.length = 0
	p.lengthBytes = 0
	p.msgType = 0
	p.sequence = 0
	p.payload = nil
	p.recvCRC = 0
	p.crcBytes = 0
	p.runningCRC = 0
}

// State returns the parser's current state.
func (p *Parser) State() State {
	return p.state
}

// Stats returns a snapshot of the parser counters.
func (p *Parser) Stats() Stats {
	return p.stats
}

// FeedByte advances the state machine by one byte. It returns a completed
// message when the byte finished a valid frame, or an error when the byte
// terminated a frame unsuccessfully (checksum mismatch, oversize length).
//
// Errors are informational: the parser has already resynchronized and the
// caller may keep feeding the stream.
func (p *Parser) FeedByte(b byte) (*Message, error) {
	// Explicit auto-reset transition out of the terminal states.
	if p.state == StateComplete || p.state == StateError {
		p.Reset()
	}

	switch p.state {
	case StateIdle:
		if b == Magic0 {
			p.runningCRC = CRC16Update(CRCInitial, []byte{b})
			p.state = StateMagic
		}
		return nil, nil

	case StateMagic:
		switch b {
		case Magic1:
			p.runningCRC = CRC16Update(p.runningCRC, []byte{b})
			p.length = 0
			p.lengthBytes = 0
			p.state = StateLength
		case Magic0:
			// Restart sync: treat this byte as a new candidate frame start.
			p.runningCRC = CRC16Update(CRCInitial, []byte{b})
		default:
			p.state = StateIdle
			p.stats.SyncErrors++
		}
		return nil, nil

	case StateLength:
		p.length = p.length<<8 | uint16(b)
		p.lengthBytes++
		p.runningCRC = CRC16Update(p.runningCRC, []byte{b})
		if p.lengthBytes < 2 {
			return nil, nil
		}
		// Validate before any payload byte is accepted or buffered. This
		// bounds worst-case buffer growth independent of the declared length.
		if p.length > MaxPayloadSize {
			length := p.length
			p.Reset()
			p.stats.SyncErrors++
			return nil, fmt.Errorf("%w: declared length %d (max %d)",
				ErrPayloadTooLarge, length, MaxPayloadSize)
		}
		p.state = StateType
		return nil, nil

	case StateType:
		p.msgType = b
		p.runningCRC = CRC16Update(p.runningCRC, []byte{b})
		p.state = StateSequence
		return nil, nil

	case StateSequence:
		p.sequence = b
		p.runningCRC = CRC16Update(p.runningCRC, []byte{b})
		p.recvCRC = 0
		p.crcBytes = 0
		if p.length == 0 {
			p.state = StateCRC
		} else {
			p.payload = make([]byte, 0, p.length)
			p.state = StatePayload
		}
		return nil, nil

	case StatePayload:
		p.payload = append(p.payload, b)
		p.runningCRC = CRC16Update(p.runningCRC, []byte{b})
		if len(p.payload) == int(p.length) {
			p.state = StateCRC
		}
		return nil, nil

	case StateCRC:
		p.recvCRC = p.recvCRC<<8 | uint16(b)
		p.crcBytes++
		if p.crcBytes < 2 {
			return nil, nil
		}
		if p.recvCRC != p.runningCRC {
			p.state = StateError
			p.stats.CRCErrors++
			return nil, fmt.Errorf("%w: expected 0x%04X, got 0x%04X",
				ErrChecksumMismatch, p.runningCRC, p.recvCRC)
		}
		msg := &Message{
			Type:      p.msgType,
			Sequence:  p.sequence,
			Payload:   p.payload,
			Timestamp: time.Now(),
		}
		p.payload = nil
		p.state = StateComplete
		p.stats.FramesParsed++
		return msg, nil

	default:
		p.Reset()
		return nil, fmt.Errorf("%w: invalid parser state", ErrProtocol)
	}
}

// Feed runs a buffer through the state machine and collects every completed
// message. Byte ranges that fail to frame or checksum are skipped silently;
// resynchronization is automatic and never fatal to the stream. The error
// counters record what was discarded.
func (p *Parser) Feed(data []byte) []*Message {
	var msgs []*Message
	for _, b := range data {
		msg, err := p.FeedByte(b)
		if err != nil {
			continue
		}
		if msg != nil {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// ParseOne feeds a buffer to a fresh parser and returns the first completed
// message, or nil if the buffer contains no valid frame.
func ParseOne(data []byte) *Message {
	p := NewParser()
	for _, b := range data {
		msg, err := p.FeedByte(b)
		if err != nil {
			continue
		}
		if msg != nil {
			return msg
		}
	}
	return nil
}
