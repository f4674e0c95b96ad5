// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

import "fmt"

// MetricInfo describes one entry of the metric type registry.
type MetricInfo struct {
	Name string
	Unit string
}

// Metric type codes - Infrastructure 0x01-0x0F
const (
	MetricCPULoad       = 0x01
	MetricMemoryUsage   = 0x02
	MetricBoardTemp     = 0x03
	MetricPATemp        = 0x04
	MetricPSUVoltage    = 0x05
	MetricPSUCurrent    = 0x06
	MetricPowerDraw     = 0x07
	MetricFanSpeed      = 0x08
	MetricDiskUsage     = 0x09
	MetricUptimeRatio   = 0x0A
)

// Metric type codes - Legacy radio (LTE) 0x10-0x1F
const (
	MetricThroughputDL    = 0x10
	MetricThroughputUL    = 0x11
	MetricRSRP            = 0x12
	MetricRSRQ            = 0x13
	MetricSINR            = 0x14
	MetricBLER            = 0x15
	MetricConnectedUEs    = 0x16
	MetricHandoverSuccess = 0x17
	MetricPRBUtilDL       = 0x18
	MetricPRBUtilUL       = 0x19
	MetricRRCSetupSuccess = 0x1A
	MetricPagingLoad      = 0x1B
)

// Metric type codes - 5G NR per-band radio 0x20-0x3F
const (
	MetricNRThroughputDLLow = 0x20 // sub-1 GHz
	MetricNRThroughputULLow = 0x21
	MetricNRRSRPLow         = 0x22
	MetricNRSINRLow         = 0x23
	MetricNRBLERLow         = 0x24
	MetricNRThroughputDLMid = 0x28 // 1-6 GHz
	MetricNRThroughputULMid = 0x29
	MetricNRRSRPMid         = 0x2A
	MetricNRSINRMid         = 0x2B
	MetricNRBLERMid         = 0x2C
	MetricNRThroughputDLHigh = 0x30 // mmWave
	MetricNRThroughputULHigh = 0x31
	MetricNRRSRPHigh         = 0x32
	MetricNRSINRHigh         = 0x33
	MetricNRBLERHigh         = 0x34
	MetricNRBeamFailures     = 0x35
	MetricNRHandoverSuccess  = 0x36
)

// Metric type codes - Power and environment 0x40-0x4F
const (
	MetricBatteryCharge   = 0x40
	MetricBatteryVoltage  = 0x41
	MetricBatteryTemp     = 0x42
	MetricGridVoltage     = 0x43
	MetricRectifierLoad   = 0x44
	MetricAmbientTemp     = 0x45
	MetricHumidity        = 0x46
	MetricDoorOpenCount   = 0x47
	MetricGeneratorFuel   = 0x48
)

// Metric type codes - Backhaul 0x50-0x5F
const (
	MetricBackhaulRTT        = 0x50
	MetricBackhaulJitter     = 0x51
	MetricBackhaulLoss       = 0x52
	MetricBackhaulThroughput = 0x53
	MetricFiberRxPower       = 0x54
	MetricMicrowaveSNR       = 0x55
)

// Metric type codes - Advanced radio 0x60-0x6F
const (
	MetricMIMORank        = 0x60
	MetricBeamformingGain = 0x61
	MetricCAActivation    = 0x62
	MetricInterferenceUL  = 0x63
	MetricTimingAdvance   = 0x64
	MetricVSWR            = 0x65
)

// Metric type codes - Network slicing 0x70-0x7F
const (
	MetricSliceEMBBLoad  = 0x70
	MetricSliceURLLCLoad = 0x71
	MetricSliceMIOTLoad  = 0x72
	MetricSliceSLAMisses = 0x73
)

// Registry aliases. Earlier firmware revisions exported these under different
// names; the codes are identical.
const (
	MetricSignalPower  = MetricRSRP
	MetricSignalNoise  = MetricSINR
	MetricActiveUsers  = MetricConnectedUEs
	MetricCabinetTemp  = MetricAmbientTemp
)

// metricRegistry is the append-only byte -> (name, unit) table. It is a pure
// lookup table consumed by formatting and monitoring; decoding never requires
// a metric code to be registered.
var metricRegistry = map[uint8]MetricInfo{
	MetricCPULoad:     {"CPU_LOAD", "%"},
	MetricMemoryUsage: {"MEMORY_USAGE", "%"},
	MetricBoardTemp:   {"BOARD_TEMP", "°C"},
	MetricPATemp:      {"PA_TEMP", "°C"},
	MetricPSUVoltage:  {"PSU_VOLTAGE", "V"},
	MetricPSUCurrent:  {"PSU_CURRENT", "A"},
	MetricPowerDraw:   {"POWER_DRAW", "W"},
	MetricFanSpeed:    {"FAN_SPEED", "RPM"},
	MetricDiskUsage:   {"DISK_USAGE", "%"},
	MetricUptimeRatio: {"UPTIME_RATIO", "%"},

	MetricThroughputDL:    {"THROUGHPUT_DL", "Mbps"},
	MetricThroughputUL:    {"THROUGHPUT_UL", "Mbps"},
	MetricRSRP:            {"RSRP", "dBm"},
	MetricRSRQ:            {"RSRQ", "dB"},
	MetricSINR:            {"SINR", "dB"},
	MetricBLER:            {"BLER", "%"},
	MetricConnectedUEs:    {"CONNECTED_UES", "count"},
	MetricHandoverSuccess: {"HANDOVER_SUCCESS", "%"},
	MetricPRBUtilDL:       {"PRB_UTIL_DL", "%"},
	MetricPRBUtilUL:       {"PRB_UTIL_UL", "%"},
	MetricRRCSetupSuccess: {"RRC_SETUP_SUCCESS", "%"},
	MetricPagingLoad:      {"PAGING_LOAD", "%"},

	MetricNRThroughputDLLow:  {"NR_THROUGHPUT_DL_LOW", "Mbps"},
	MetricNRThroughputULLow:  {"NR_THROUGHPUT_UL_LOW", "Mbps"},
	MetricNRRSRPLow:          {"NR_RSRP_LOW", "dBm"},
	MetricNRSINRLow:          {"NR_SINR_LOW", "dB"},
	MetricNRBLERLow:          {"NR_BLER_LOW", "%"},
	MetricNRThroughputDLMid:  {"NR_THROUGHPUT_DL_MID", "Mbps"},
	MetricNRThroughputULMid:  {"NR_THROUGHPUT_UL_MID", "Mbps"},
	MetricNRRSRPMid:          {"NR_RSRP_MID", "dBm"},
	MetricNRSINRMid:          {"NR_SINR_MID", "dB"},
	MetricNRBLERMid:          {"NR_BLER_MID", "%"},
	MetricNRThroughputDLHigh: {"NR_THROUGHPUT_DL_HIGH", "Mbps"},
	MetricNRThroughputULHigh: {"NR_THROUGHPUT_UL_HIGH", "Mbps"},
	MetricNRRSRPHigh:         {"NR_RSRP_HIGH", "dBm"},
	MetricNRSINRHigh:         {"NR_SINR_HIGH", "dB"},
	MetricNRBLERHigh:         {"NR_BLER_HIGH", "%"},
	MetricNRBeamFailures:     {"NR_BEAM_FAILURES", "count/s"},
	MetricNRHandoverSuccess:  {"NR_HANDOVER_SUCCESS", "%"},

	MetricBatteryCharge:  {"BATTERY_CHARGE", "%"},
	MetricBatteryVoltage: {"BATTERY_VOLTAGE", "V"},
	MetricBatteryTemp:    {"BATTERY_TEMP", "°C"},
	MetricGridVoltage:    {"GRID_VOLTAGE", "V"},
	MetricRectifierLoad:  {"RECTIFIER_LOAD", "%"},
	MetricAmbientTemp:    {"AMBIENT_TEMP", "°C"},
	MetricHumidity:       {"HUMIDITY", "%"},
	MetricDoorOpenCount:  {"DOOR_OPEN_COUNT", "count"},
	MetricGeneratorFuel:  {"GENERATOR_FUEL", "%"},

	MetricBackhaulRTT:        {"BACKHAUL_RTT", "ms"},
	MetricBackhaulJitter:     {"BACKHAUL_JITTER", "ms"},
	MetricBackhaulLoss:       {"BACKHAUL_LOSS", "%"},
	MetricBackhaulThroughput: {"BACKHAUL_THROUGHPUT", "Mbps"},
	MetricFiberRxPower:       {"FIBER_RX_POWER", "dBm"},
	MetricMicrowaveSNR:       {"MICROWAVE_SNR", "dB"},

	MetricMIMORank:        {"MIMO_RANK", "layers"},
	MetricBeamformingGain: {"BEAMFORMING_GAIN", "dB"},
	MetricCAActivation:    {"CA_ACTIVATION", "%"},
	MetricInterferenceUL:  {"INTERFERENCE_UL", "dBm"},
	MetricTimingAdvance:   {"TIMING_ADVANCE", "µs"},
	MetricVSWR:            {"VSWR", "ratio"},

	MetricSliceEMBBLoad:  {"SLICE_EMBB_LOAD", "%"},
	MetricSliceURLLCLoad: {"SLICE_URLLC_LOAD", "%"},
	MetricSliceMIOTLoad:  {"SLICE_MIOT_LOAD", "%"},
	MetricSliceSLAMisses: {"SLICE_SLA_MISSES", "count"},
}

// LookupMetric returns the registry entry for a metric type code.
func LookupMetric(code uint8) (MetricInfo, bool) {
	info, ok := metricRegistry[code]
	return info, ok
}

// MetricName returns the registered name for a metric type code, or a hex
// placeholder for unregistered codes.
func MetricName(code uint8) string {
	if info, ok := metricRegistry[code]; ok {
		return info.Name
	}
	return fmt.Sprintf("METRIC_0x%02X", code)
}

// MetricUnit returns the registered physical unit for a metric type code, or
// an empty string for unregistered codes.
func MetricUnit(code uint8) string {
	return metricRegistry[code].Unit
}

// RegisterMetric appends an entry to the registry. The table is append-only:
// registering a code that already exists is an error, so firmware revisions
// can extend the table but never silently redefine a code.
func RegisterMetric(code uint8, info MetricInfo) error {
	if info.Name == "" {
		return fmt.Errorf("%w: metric name required", ErrInvalidArgument)
	}
	if existing, ok := metricRegistry[code]; ok {
		return fmt.Errorf("%w: metric 0x%02X already registered as %s",
			ErrBusy, code, existing.Name)
	}
	metricRegistry[code] = info
	return nil
}
