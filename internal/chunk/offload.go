package chunk

import "context"

// ExtractSafe runs Extract on its own goroutine and recovers from panics —
// a malformed file can upset a tree-sitter grammar in ways the library
// itself does not guard against. Returns nil on cancellation or panic
// instead of taking down the caller's batch.
func ExtractSafe(ctx context.Context, ex Extractor, content, fileName string, language Language) []Chunk {
	result := make(chan []Chunk, 1)
	go func() {
		defer func() {
			if recover() != nil {
				result <- nil
			}
		}()
		result <- ex.Extract(ctx, content, fileName, language)
	}()

	select {
	case <-ctx.Done():
		return nil
	case chunks := <-result:
		return chunks
	}
}
