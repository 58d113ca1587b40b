package rank

import llmpress "github.com/brodiemilliken/LLMPress"

// SplitRuns splits a full symbol stream at Break symbols into per-chunk
// runs, dropping the Break markers themselves. Break discipline (§8) means
// an N-chunk stream yields exactly N non-empty runs.
func SplitRuns(symbols []llmpress.Symbol) [][]llmpress.Symbol {
	var runs [][]llmpress.Symbol
	var current []llmpress.Symbol

	for _, s := range symbols {
		if s.Kind == llmpress.SymbolBreak {
			runs = append(runs, current)
			current = nil
			continue
		}
		current = append(current, s)
	}
	if len(current) > 0 || len(runs) > 0 {
		runs = append(runs, current)
	}

	return runs
}

// JoinRuns concatenates per-chunk symbol runs back into a single stream,
// inserting Break between adjacent runs but not at either end.
func JoinRuns(runs [][]llmpress.Symbol) []llmpress.Symbol {
	var out []llmpress.Symbol
	for i, run := range runs {
		if i > 0 {
			out = append(out, llmpress.NewBreak())
		}
		out = append(out, run...)
	}
	return out
}
