package codec

import (
	"errors"
	"reflect"
	"testing"

	llmpress "github.com/brodiemilliken/LLMPress"
)

func TestPackUnpack_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		window  int
		symbols []llmpress.Symbol
	}{
		{
			name:    "empty symbol stream",
			window:  64,
			symbols: nil,
		},
		{
			name:   "single literal",
			window: 64,
			symbols: []llmpress.Symbol{
				llmpress.NewLiteral(42),
			},
		},
		{
			name:   "mixed ranks and literal",
			window: 64,
			symbols: []llmpress.Symbol{
				llmpress.NewLiteral(1000),
				llmpress.NewRank(5),
				llmpress.NewRank(63),
				llmpress.NewLiteral(20000),
			},
		},
		{
			name:   "double rank pair",
			window: 32,
			symbols: []llmpress.Symbol{
				llmpress.NewLiteral(7),
				llmpress.NewRank(2),
				llmpress.NewRank(3),
			},
		},
		{
			name:   "zero run",
			window: 64,
			symbols: []llmpress.Symbol{
				llmpress.NewLiteral(1),
				llmpress.NewRank(0),
				llmpress.NewRank(0),
				llmpress.NewRank(0),
				llmpress.NewRank(0),
				llmpress.NewRank(0),
			},
		},
		{
			name:   "zero run longer than 62",
			window: 64,
			symbols: append([]llmpress.Symbol{llmpress.NewLiteral(1)}, repeatZeroRank(130)...),
		},
		{
			name:   "chunk boundary",
			window: 16,
			symbols: []llmpress.Symbol{
				llmpress.NewLiteral(5),
				llmpress.NewRank(1),
				llmpress.NewBreak(),
				llmpress.NewLiteral(6),
				llmpress.NewRank(2),
			},
		},
		{
			name:   "large literal forcing 4 bytes",
			window: 64,
			symbols: []llmpress.Symbol{
				llmpress.NewLiteral(1 << 24),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed, err := Pack(tt.window, tt.symbols)
			if err != nil {
				t.Fatalf("Pack() error = %v", err)
			}

			w, symbols, err := Unpack(packed)
			if err != nil {
				t.Fatalf("Unpack() error = %v", err)
			}
			if w != tt.window {
				t.Errorf("Unpack() window = %d, want %d", w, tt.window)
			}
			if len(symbols) == 0 {
				symbols = nil
			}
			if !reflect.DeepEqual(symbols, tt.symbols) {
				t.Errorf("Unpack() symbols = %+v, want %+v", symbols, tt.symbols)
			}
		})
	}
}

func TestPack_SentinelExclusivity(t *testing.T) {
	symbols := []llmpress.Symbol{
		llmpress.NewLiteral(1),
		llmpress.NewRank(63),
		llmpress.NewRank(62),
		llmpress.NewBreak(),
	}
	packed, err := Pack(64, symbols)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	breakCount := 0
	for i, b := range packed {
		if b == 0xFF {
			breakCount++
			if i != len(packed)-1 {
				t.Errorf("0xFF found at non-Break position %d", i)
			}
		}
	}
	if breakCount != 1 {
		t.Errorf("expected exactly one 0xFF byte, got %d", breakCount)
	}
}

func TestUnpack_EmptyInput(t *testing.T) {
	_, _, err := Unpack(nil)
	if !errors.Is(err, llmpress.ErrDecoding) {
		t.Fatalf("expected ErrDecoding, got %v", err)
	}
}

func TestUnpack_TruncatedLiteral(t *testing.T) {
	// A start byte with no continuation.
	_, _, err := Unpack([]byte{0x80})
	if !errors.Is(err, llmpress.ErrDecoding) {
		t.Fatalf("expected ErrDecoding, got %v", err)
	}
}

func TestUnpack_ZeroRunCountZero(t *testing.T) {
	prefix, err := encodeLiteral(64)
	if err != nil {
		t.Fatal(err)
	}
	data := append(append([]byte{}, prefix...), 0xC0)

	w, symbols, err := Unpack(data)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if w != 64 {
		t.Fatalf("window = %d, want 64", w)
	}
	if len(symbols) != 0 {
		t.Fatalf("expected no symbols for a zero-count run, got %d", len(symbols))
	}
}

func TestEncodeLiteral_TooLarge(t *testing.T) {
	_, err := encodeLiteral(1 << 27)
	if !errors.Is(err, llmpress.ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
}

func repeatZeroRank(n int) []llmpress.Symbol {
	out := make([]llmpress.Symbol, n)
	for i := range out {
		out[i] = llmpress.NewRank(0)
	}
	return out
}
