// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

import (
	"fmt"
	"strings"
)

// FormatMessage formats a decoded message into a human-readable string
func FormatMessage(m *Message) string {
	timestamp := m.Timestamp.Format("15:04:05.000")
	name := FormatMessageType(m.Type)

	result := fmt.Sprintf("[%s] %s (0x%02X) seq=%d len=%d\n",
		timestamp, name, m.Type, m.Sequence, len(m.Payload))

	if len(m.Payload) > 0 {
		result += FormatPayload(m.Type, m.Payload)
	}

	return result
}

// FormatMessageType returns the human-readable name for a message type
func FormatMessageType(msgType uint8) string {
	switch msgType {
	// Requests (0x01-0x3F)
	case MsgPingRequest:
		return "PING_REQUEST"
	case MsgMetricsRequest:
		return "METRICS_REQUEST"
	case MsgStatusRequest:
		return "STATUS_REQUEST"
	case MsgExecCommand:
		return "EXEC_COMMAND"
	case MsgSetConfig:
		return "SET_CONFIG"
	case MsgStreamStart:
		return "STREAM_START"
	case MsgStreamStop:
		return "STREAM_STOP"

	// Events (0x40-0x7F)
	case MsgEventAlert:
		return "EVENT_ALERT"
	case MsgEventFault:
		return "EVENT_FAULT"
	case MsgEventStateChange:
		return "EVENT_STATE_CHANGE"
	case MsgEventMetricReport:
		return "EVENT_METRIC_REPORT"

	// Responses (0x80-0xFF)
	case MsgPingResponse:
		return "PING_RESPONSE"
	case MsgMetricsResponse:
		return "METRICS_RESPONSE"
	case MsgStatusResponse:
		return "STATUS_RESPONSE"
	case MsgExecResponse:
		return "EXEC_RESPONSE"
	case MsgConfigResponse:
		return "CONFIG_RESPONSE"
	case MsgStreamStartAck:
		return "STREAM_START_ACK"
	case MsgStreamStopAck:
		return "STREAM_STOP_ACK"

	default:
		return "UNKNOWN"
	}
}

// FormatPayload formats a payload according to its message type, falling back
// to a hex dump for unknown layouts.
func FormatPayload(msgType uint8, payload []byte) string {
	switch msgType {
	case MsgMetricsResponse, MsgEventMetricReport:
		metrics, err := DecodeMetrics(payload)
		if err != nil {
			return fmt.Sprintf("  (malformed metrics: %v)\n", err)
		}
		return FormatMetrics(metrics)

	case MsgStatusResponse:
		status, err := DecodeStatus(payload)
		if err != nil {
			return fmt.Sprintf("  (malformed status: %v)\n", err)
		}
		return FormatStatus(status)

	case MsgExecResponse:
		result, err := DecodeCommandResult(payload)
		if err != nil {
			return fmt.Sprintf("  (malformed command result: %v)\n", err)
		}
		return FormatCommandResult(result)

	case MsgExecCommand:
		return fmt.Sprintf("  Command: %q\n", string(payload))

	case MsgSetConfig:
		if len(payload) >= 5 {
			value := uint32(payload[1])<<24 | uint32(payload[2])<<16 |
				uint32(payload[3])<<8 | uint32(payload[4])
			return fmt.Sprintf("  Param: 0x%02X, Value: %d\n", payload[0], value)
		}

	case MsgStreamStart:
		if len(payload) >= 2 {
			interval := uint16(payload[0])<<8 | uint16(payload[1])
			result := fmt.Sprintf("  Interval: %d ms", interval)
			if len(payload) > 2 {
				names := make([]string, 0, len(payload)-2)
				for _, code := range payload[2:] {
					names = append(names, MetricName(code))
				}
				result += ", Metrics: " + strings.Join(names, ", ")
			} else {
				result += ", Metrics: all"
			}
			return result + "\n"
		}

	case MsgMetricsRequest:
		names := make([]string, 0, len(payload))
		for _, code := range payload {
			names = append(names, MetricName(code))
		}
		return "  Requested: " + strings.Join(names, ", ") + "\n"

	case MsgEventAlert, MsgEventFault:
		// First byte is a severity/fault code, remainder is ASCII detail.
		if len(payload) >= 1 {
			return fmt.Sprintf("  Code: 0x%02X, Detail: %q\n", payload[0], string(payload[1:]))
		}
	}

	return formatHexDump(payload)
}

// FormatMetrics renders a decoded metric list using the registry for names
// and units.
func FormatMetrics(metrics []Metric) string {
	var b strings.Builder
	for _, m := range metrics {
		unit := MetricUnit(m.Type)
		if unit != "" {
			fmt.Fprintf(&b, "  %-24s %10.2f %s\n", MetricName(m.Type), m.Value, unit)
		} else {
			fmt.Fprintf(&b, "  %-24s %10.2f\n", MetricName(m.Type), m.Value)
		}
	}
	return b.String()
}

// FormatStatus renders a decoded StatusPayload.
func FormatStatus(s *StatusPayload) string {
	return fmt.Sprintf("  Status: %s (0x%02X), Uptime: %s, Errors: %d, Warnings: %d\n",
		StatusName(s.Status), s.Status, formatUptimeSeconds(s.Uptime), s.Errors, s.Warnings)
}

// FormatCommandResult renders a decoded CommandResult.
func FormatCommandResult(r *CommandResult) string {
	verdict := "FAILED"
	if r.Succeeded() {
		verdict = "OK"
	}
	result := fmt.Sprintf("  Result: %s, ReturnCode: %d, Output: %d bytes\n",
		verdict, r.ReturnCode, len(r.Output))
	if len(r.Output) > 0 {
		for _, line := range strings.Split(strings.TrimRight(string(r.Output), "\n"), "\n") {
			result += "    | " + line + "\n"
		}
	}
	return result
}

func formatUptimeSeconds(seconds uint32) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02dh %02dm %02ds", days, hours, minutes, secs)
	}
	return fmt.Sprintf("%02dh %02dm %02ds", hours, minutes, secs)
}

func formatHexDump(payload []byte) string {
	result := "  Payload: "
	for i, b := range payload {
		if i > 0 && i%16 == 0 {
			result += "\n           "
		}
		result += fmt.Sprintf("%02X ", b)
	}
	return result + "\n"
}
