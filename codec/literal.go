// Package codec implements the variable-length bit-packed byte format of
// §6.1: the packer serializes (W, symbols) to bytes, the unpacker inverts
// it.
package codec

import (
	"fmt"

	llmpress "github.com/brodiemilliken/LLMPress"
)

const (
	maxLiteral2 = 1 << 13
	maxLiteral3 = 1 << 20
	maxLiteral4 = 1 << 27
)

// encodeLiteral packs val as a multi-byte literal, choosing the narrowest
// width that fits: 2 bytes for values below 2^13, 3 below 2^20, 4 below
// 2^27. A start byte is 10xxxxxx (6-bit payload), a middle byte is
// 0xxxxxxx (7-bit payload), and the stop byte is 1xxxxxxx (7-bit payload,
// bit 6 unconstrained). A stop byte is 0xFF when the low seven bits of val
// are all set; the unpacker consumes it as part of the literal, so 0xFF
// means Break only in lead-byte position.
func encodeLiteral(val uint32) ([]byte, error) {
	switch {
	case val < maxLiteral2:
		start := byte(0x80 | ((val >> 7) & 0x3F))
		stop := byte(0x80 | (val & 0x7F))
		return []byte{start, stop}, nil
	case val < maxLiteral3:
		start := byte(0x80 | ((val >> 14) & 0x3F))
		mid := byte((val >> 7) & 0x7F)
		stop := byte(0x80 | (val & 0x7F))
		return []byte{start, mid, stop}, nil
	case val < maxLiteral4:
		start := byte(0x80 | ((val >> 21) & 0x3F))
		mid1 := byte((val >> 14) & 0x7F)
		mid2 := byte((val >> 7) & 0x7F)
		stop := byte(0x80 | (val & 0x7F))
		return []byte{start, mid1, mid2, stop}, nil
	default:
		return nil, fmt.Errorf("literal value %d exceeds the 2^27 representable width: %w", val, llmpress.ErrEncoding)
	}
}

// literalWidth scans forward from a start byte at data[idx] (the caller
// guarantees data[idx]&0xC0 == 0x80) through zero or more middle bytes
// until it finds a stop byte, returning the total width in bytes (2, 3, or
// 4). It fails if the literal runs off the end of data before a stop byte
// appears.
func literalWidth(data []byte, idx int) (int, error) {
	if idx+1 >= len(data) {
		return 0, fmt.Errorf("truncated literal at offset %d: %w", idx, llmpress.ErrDecoding)
	}
	if data[idx+1]&0x80 != 0 {
		return 2, nil
	}
	if idx+2 >= len(data) {
		return 0, fmt.Errorf("truncated literal at offset %d: %w", idx, llmpress.ErrDecoding)
	}
	if data[idx+2]&0x80 != 0 {
		return 3, nil
	}
	if idx+3 >= len(data) {
		return 0, fmt.Errorf("truncated literal at offset %d: %w", idx, llmpress.ErrDecoding)
	}
	if data[idx+3]&0x80 != 0 {
		return 4, nil
	}
	return 0, fmt.Errorf("truncated literal at offset %d: %w", idx, llmpress.ErrDecoding)
}

// decodeLiteral reconstructs the integer value from a literal's exact
// bytes (a start byte, zero or more middle bytes, a stop byte).
func decodeLiteral(b []byte) uint32 {
	start := uint32(b[0] & 0x3F)
	switch len(b) {
	case 2:
		return (start << 7) | uint32(b[1]&0x7F)
	case 3:
		return (start << 14) | (uint32(b[1]&0x7F) << 7) | uint32(b[2]&0x7F)
	case 4:
		return (start << 21) | (uint32(b[1]&0x7F) << 14) | (uint32(b[2]&0x7F) << 7) | uint32(b[3]&0x7F)
	default:
		return 0
	}
}
