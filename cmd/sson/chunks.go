package main

import "sync/atomic"

// chunkSize is how many bytes feedChunks hands to Process at a time; a
// loaded config file's buffer_size overrides this default (see root.go's
// PersistentPreRunE).
var chunkSize = 32 * 1024

// feedChunks splits data into chunkSize pieces and calls process on each in
// order, updating processed (for --tui) after every chunk. It exists
// mainly to exercise each strategy's documented chunk-boundary robustness
// in the one place a real caller would: a large file read once and fed
// incrementally rather than parsed as a single in-memory document.
func feedChunks(data []byte, processed *int64, process func([]byte) error) error {
	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		if err := process(data[i:end]); err != nil {
			return err
		}
		if processed != nil {
			atomic.StoreInt64(processed, int64(end))
		}
	}
	return nil
}
