// Package text splits transcript text into bounded-size chunks suitable for a
// single model call.
package text

import "errors"

var ErrInvalidChunkConfig = errors.New("chunk size must be positive and greater than overlap")

// Chunk is one window over the source text. Start and End are byte offsets
// into the original string, with Content == text[Start:End].
type Chunk struct {
	Index   int
	Content string
	Start   int
	End     int
}

// Split slices text into windows of at most maxChars bytes. Consecutive
// windows share overlap bytes so sentences cut at a boundary appear whole in
// at least one chunk. Text that fits in a single window is returned as one
// chunk with no overlap. The final chunk always ends exactly at len(text).
func Split(text string, maxChars, overlap int) ([]Chunk, error) {
	if maxChars <= 0 || overlap < 0 || overlap >= maxChars {
		return nil, ErrInvalidChunkConfig
	}

	if len(text) <= maxChars {
		return []Chunk{{Index: 0, Content: text, Start: 0, End: len(text)}}, nil
	}

	step := maxChars - overlap
	var chunks []Chunk
	for start := 0; ; start += step {
		end := start + maxChars
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, Chunk{
			Index:   len(chunks),
			Content: text[start:end],
			Start:   start,
			End:     end,
		})
		if end == len(text) {
			break
		}
	}
	return chunks, nil
}
