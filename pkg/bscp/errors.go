// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

import "errors"

// Protocol error sentinels. Wrap with %w when adding context so callers can
// match with errors.Is.
var (
	ErrInvalidArgument  = errors.New("bscp: invalid argument")
	ErrPayloadTooLarge  = errors.New("bscp: payload exceeds maximum size")
	ErrChecksumMismatch = errors.New("bscp: checksum mismatch")
	ErrShortPayload     = errors.New("bscp: payload too short")
	ErrLengthMismatch   = errors.New("bscp: declared length does not match payload")
	ErrProtocol         = errors.New("bscp: protocol violation")
	ErrNotFound         = errors.New("bscp: not found")
	ErrBusy             = errors.New("bscp: busy")
)
