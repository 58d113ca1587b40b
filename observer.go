package llmpress

// Observer is an optional progress callback. stage names the pipeline stage:
// compression reports "chunk" and "pack" once each and "encode" once per
// chunk; decompression reports "unpack" once and "detokenize" once per
// chunk. index and total describe progress within that stage. Core functions are fully
// usable with a nil Observer.
type Observer func(stage string, index, total int)
