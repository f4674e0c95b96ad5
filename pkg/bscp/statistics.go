// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks frame statistics and error rates for link-quality
// monitoring. A steady trickle of CRC errors on an otherwise-open connection
// is a link-quality signal, not a fatal condition; these counters make that
// signal visible.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames     uint64
	ValidFrames     uint64
	CRCErrors       uint64
	DecodeErrors    uint64
	MalformedFrames uint64
	UnknownTypes    uint64
	UnknownMetrics  uint64
	AnomalousValues uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update updates statistics based on a message and its errors
func (s *Statistics) Update(msg *Message, decodeErr error, validationErrors []ValidationError) {
	s.TotalFrames++

	if decodeErr != nil {
		if errors.Is(decodeErr, ErrChecksumMismatch) {
			s.CRCErrors++
		} else {
			s.DecodeErrors++
		}
		return
	}

	if len(validationErrors) > 0 {
		for _, err := range validationErrors {
			switch err.Type {
			case AnomalyUnknownType:
				s.UnknownTypes++
				s.MalformedFrames++
			case AnomalyLengthMismatch:
				s.MalformedFrames++
			case AnomalyUnknownMetric:
				s.UnknownMetrics++
			case AnomalyNonFiniteValue, AnomalyOutOfRange:
				s.AnomalousValues++
			}
		}
	} else {
		s.ValidFrames++
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		errorCount := s.CRCErrors + s.DecodeErrors + s.MalformedFrames + s.AnomalousValues
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, crcErrorPercent, decodeErrorPercent, malformedPercent, anomalousPercent float64
	if s.TotalFrames > 0 {
		validPercent = float64(s.ValidFrames) * 100.0 / float64(s.TotalFrames)
		crcErrorPercent = float64(s.CRCErrors) * 100.0 / float64(s.TotalFrames)
		decodeErrorPercent = float64(s.DecodeErrors) * 100.0 / float64(s.TotalFrames)
		malformedPercent = float64(s.MalformedFrames) * 100.0 / float64(s.TotalFrames)
		anomalousPercent = float64(s.AnomalousValues) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Link Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, validPercent)

	if s.CRCErrors > 0 {
		result += fmt.Sprintf("CRC Errors:      %8d (%.1f%%)\n", s.CRCErrors, crcErrorPercent)
	}
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d (%.1f%%)\n", s.DecodeErrors, decodeErrorPercent)
	}
	if s.MalformedFrames > 0 {
		result += fmt.Sprintf("Malformed Frames:%8d (%.1f%%)\n", s.MalformedFrames, malformedPercent)
		if s.UnknownTypes > 0 {
			result += fmt.Sprintf("  Unknown Types:    %5d\n", s.UnknownTypes)
		}
	}
	if s.AnomalousValues > 0 {
		result += fmt.Sprintf("Anomalous Values:%8d (%.1f%%)\n", s.AnomalousValues, anomalousPercent)
	}
	if s.UnknownMetrics > 0 {
		result += fmt.Sprintf("Unknown Metrics: %8d\n", s.UnknownMetrics)
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	now := time.Now()
	*s = Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}
