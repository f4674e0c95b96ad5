// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

// Package bscp provides a reference Go implementation of the Base Station
// Control Protocol (BSCP).
//
// BSCP is a compact binary protocol for communication between the operations
// platform and remote base-station controllers. This package provides frame
// encoding/decoding, CRC validation, the typed metric/status/command codec
// and the metric type registry.
package bscp

// Protocol framing bytes
const (
	Magic0 = 0xAA
	Magic1 = 0x55
)

// MagicWord is the two-byte frame preamble as a big-endian word.
const MagicWord uint16 = uint16(Magic0)<<8 | uint16(Magic1)

// Frame size limits
const (
	MaxPayloadSize = 4096
	HeaderSize     = 6 // magic(2) + length(2) + type(1) + sequence(1)
	ChecksumSize   = 2
	FrameOverhead  = HeaderSize + ChecksumSize
	MaxFrameSize   = MaxPayloadSize + FrameOverhead
)

// CRC-16/CCITT-FALSE configuration
const (
	crcPolynomial = 0x1021

	// CRCInitial is the CRC register seed, exported so callers can chain
	// CRC16Update across buffers.
	CRCInitial uint16 = 0xFFFF
)

// Message types - Requests (Platform → Station) 0x01-0x3F
const (
	MsgPingRequest    = 0x01
	MsgMetricsRequest = 0x02
	MsgStatusRequest  = 0x03
	MsgExecCommand    = 0x04
	MsgSetConfig      = 0x05
	MsgStreamStart    = 0x06
	MsgStreamStop     = 0x07
)

// Message types - Asynchronous events (Station → Platform) 0x40-0x7F
const (
	MsgEventAlert        = 0x40
	MsgEventFault        = 0x41
	MsgEventStateChange  = 0x42
	MsgEventMetricReport = 0x43
)

// Message types - Responses (Station → Platform) carry the request type with
// the high bit set.
const (
	ResponseFlag = 0x80

	MsgPingResponse    = MsgPingRequest | ResponseFlag
	MsgMetricsResponse = MsgMetricsRequest | ResponseFlag
	MsgStatusResponse  = MsgStatusRequest | ResponseFlag
	MsgExecResponse    = MsgExecCommand | ResponseFlag
	MsgConfigResponse  = MsgSetConfig | ResponseFlag
	MsgStreamStartAck  = MsgStreamStart | ResponseFlag
	MsgStreamStopAck   = MsgStreamStop | ResponseFlag
)

// Category classifies a message type by the numeric band it falls in.
type Category int

// Message categories
const (
	CategoryUnknown Category = iota
	CategoryRequest
	CategoryEvent
	CategoryResponse
)

func (c Category) String() string {
	switch c {
	case CategoryRequest:
		return "request"
	case CategoryEvent:
		return "event"
	case CategoryResponse:
		return "response"
	default:
		return "unknown"
	}
}

// CategoryOf derives the message category purely from the type byte.
func CategoryOf(msgType uint8) Category {
	switch {
	case msgType >= 0x01 && msgType <= 0x3F:
		return CategoryRequest
	case msgType >= 0x40 && msgType <= 0x7F:
		return CategoryEvent
	case msgType >= 0x80:
		return CategoryResponse
	default:
		return CategoryUnknown
	}
}

// Station status codes carried in StatusPayload
const (
	StatusOK          = 0x00
	StatusDegraded    = 0x01
	StatusCritical    = 0x02
	StatusMaintenance = 0x03
)

// Configuration parameter identifiers for SET_CONFIG
const (
	CfgReportInterval = 0x01 // metric stream interval, milliseconds
	CfgTxPower        = 0x02 // transmit power, 0.1 dBm steps
	CfgLogLevel       = 0x03
	CfgWatchdog       = 0x04 // watchdog timeout, seconds
)
