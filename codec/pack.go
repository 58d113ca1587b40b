package codec

import (
	"fmt"

	llmpress "github.com/brodiemilliken/LLMPress"
)

// breakByte is the reserved Break sentinel. No continuous-zero byte (count
// capped at 62), rank byte or literal start byte can produce it, so a 0xFF
// in lead-byte position is always Break. A literal stop byte can be 0xFF;
// the unpacker reads it as part of that literal, never as a lead byte.
const breakByte = 0xFF

// Pack serializes (w, symbols) to bytes per §6.1: a leading literal encoding
// w, followed by one packed group per symbol or symbol pair. It applies the
// packer's three local optimizations in the spec's greedy precedence order:
// Break, then a continuous-zero run, then a double-rank byte, then a single
// rank byte, then a multi-byte literal.
func Pack(w int, symbols []llmpress.Symbol) ([]byte, error) {
	if w <= 0 || w > 64 {
		return nil, fmt.Errorf("window size %d out of range: %w", w, llmpress.ErrEncoding)
	}

	prefix, err := encodeLiteral(uint32(w))
	if err != nil {
		return nil, err
	}
	out := append([]byte{}, prefix...)

	for i := 0; i < len(symbols); {
		s := symbols[i]

		switch {
		case s.Kind == llmpress.SymbolBreak:
			out = append(out, breakByte)
			i++

		case countLeadingZeroRanks(symbols, i) >= 2:
			n := countLeadingZeroRanks(symbols, i)
			out = append(out, encodeZeroRun(n)...)
			i += n

		case i+1 < len(symbols) &&
			s.Kind == llmpress.SymbolRank && s.Rank >= 0 && s.Rank < 8 &&
			symbols[i+1].Kind == llmpress.SymbolRank && symbols[i+1].Rank >= 0 && symbols[i+1].Rank < 8:
			out = append(out, 0x40|byte(s.Rank<<3)|byte(symbols[i+1].Rank))
			i += 2

		case s.Kind == llmpress.SymbolRank && s.Rank >= 0 && s.Rank < 64:
			out = append(out, byte(s.Rank))
			i++

		case s.Kind == llmpress.SymbolLiteral:
			lb, err := encodeLiteral(s.Literal)
			if err != nil {
				return nil, fmt.Errorf("packing symbol %d: %w", i, err)
			}
			out = append(out, lb...)
			i++

		default:
			return nil, fmt.Errorf("packing symbol %d: rank %d out of representable range: %w", i, s.Rank, llmpress.ErrEncoding)
		}
	}

	return out, nil
}

func countLeadingZeroRanks(symbols []llmpress.Symbol, start int) int {
	n := 0
	for i := start; i < len(symbols); i++ {
		if symbols[i].Kind == llmpress.SymbolRank && symbols[i].Rank == 0 {
			n++
		} else {
			break
		}
	}
	return n
}

// encodeZeroRun splits n into continuous-zero bytes of up to 62 each,
// since a count of 63 would collide with the 0xFF Break sentinel.
func encodeZeroRun(n int) []byte {
	var out []byte
	for n > 62 {
		out = append(out, 0xC0|62)
		n -= 62
	}
	out = append(out, byte(0xC0|n))
	return out
}
