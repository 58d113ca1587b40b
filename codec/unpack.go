package codec

import (
	"fmt"

	llmpress "github.com/brodiemilliken/LLMPress"
)

// Unpack is the inverse of Pack. It recovers w from the stream's leading
// literal, then decodes the symbol groups that follow by dispatching on the
// two high bits of each lead byte (and the 0xFF sentinel for Break).
func Unpack(data []byte) (int, []llmpress.Symbol, error) {
	if len(data) == 0 {
		return 0, nil, fmt.Errorf("empty input: %w", llmpress.ErrDecoding)
	}
	if data[0]&0xC0 != 0x80 {
		return 0, nil, fmt.Errorf("invalid window-size prefix at offset 0: %w", llmpress.ErrDecoding)
	}

	width, err := literalWidth(data, 0)
	if err != nil {
		return 0, nil, fmt.Errorf("window-size prefix: %w", err)
	}
	w := int(decodeLiteral(data[:width]))
	pos := width

	var symbols []llmpress.Symbol
	for pos < len(data) {
		b := data[pos]

		switch {
		case b == breakByte:
			symbols = append(symbols, llmpress.NewBreak())
			pos++

		case b&0xC0 == 0x00:
			symbols = append(symbols, llmpress.NewRank(int(b&0x3F)))
			pos++

		case b&0xC0 == 0x40:
			r1 := int((b >> 3) & 0x07)
			r2 := int(b & 0x07)
			symbols = append(symbols, llmpress.NewRank(r1), llmpress.NewRank(r2))
			pos++

		case b&0xC0 == 0x80:
			litWidth, err := literalWidth(data, pos)
			if err != nil {
				return 0, nil, err
			}
			if pos+litWidth > len(data) {
				return 0, nil, fmt.Errorf("truncated literal at offset %d: %w", pos, llmpress.ErrDecoding)
			}
			val := decodeLiteral(data[pos : pos+litWidth])
			symbols = append(symbols, llmpress.NewLiteral(val))
			pos += litWidth

		case b&0xC0 == 0xC0:
			count := int(b & 0x3F)
			for i := 0; i < count; i++ {
				symbols = append(symbols, llmpress.NewRank(0))
			}
			pos++

		default:
			return 0, nil, fmt.Errorf("invalid lead byte 0x%02X at offset %d: %w", b, pos, llmpress.ErrDecoding)
		}
	}

	return w, symbols, nil
}
