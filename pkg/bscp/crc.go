// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Nexcell Networks

package bscp

// CRC16 computes the CRC-16/CCITT-FALSE checksum for the given data
func CRC16(data []byte) uint16 {
	return CRC16Update(CRCInitial, data)
}

// CRC16Update continues a running CRC-16/CCITT-FALSE checksum across buffer
// boundaries. Seeding with CRCInitial and feeding buffers in order yields the
// same value as CRC16 over the concatenation.
func CRC16Update(crc uint16, data []byte) uint16 {
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// crcTable holds the precomputed lookup table for CRC16Table.
var crcTable = buildCRCTable()

func buildCRCTable() *[256]uint16 {
	var table [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return &table
}

// CRC16Table is the table-driven variant of CRC16. Output is identical to the
// byte-wise reference for all inputs.
func CRC16Table(data []byte) uint16 {
	crc := CRCInitial
	for _, b := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>8)^b]
	}
	return crc
}
