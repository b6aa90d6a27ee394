package service

import (
	"regexp"
	"strings"

	"github.com/talentsift/jobdex/internal/domain"
)

// DefaultMaxChunkSize bounds chunk length in characters (not tokens).
const DefaultMaxChunkSize = 500

const (
	paragraphSeparator = "\n\n"
	sentenceSeparator  = " "
)

var paragraphSplitRe = regexp.MustCompile(`\n[ \t]*\n+`)

// ChunkContent splits a document into ordered bounded-size chunks. It is pure
// and deterministic: the same content and limit always yield the same chunks.
//
// Paragraphs (blank-line separated) are packed greedily into buffers joined by
// a blank line. A paragraph that cannot fit on its own is split on sentence
// boundaries and packed the same way with single-space joins. A sentence (or
// unbroken run) longer than maxChunkSize is emitted as-is: the splitter cannot
// subdivide below sentence granularity.
func ChunkContent(content string, maxChunkSize int) []domain.Chunk {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}

	clean := strings.TrimSpace(content)
	if clean == "" {
		return nil
	}

	var texts []string
	var buffer string

	flush := func() {
		if buffer != "" {
			texts = append(texts, buffer)
			buffer = ""
		}
	}

	for _, paragraph := range paragraphSplitRe.Split(clean, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if fits(buffer, paragraph, paragraphSeparator, maxChunkSize) {
			buffer = join(buffer, paragraph, paragraphSeparator)
			continue
		}

		flush()

		if len(paragraph) <= maxChunkSize {
			buffer = paragraph
			continue
		}

		// Oversized paragraph: pack sentences into sub-chunks, flushing all
		// but the last, which seeds the next buffer.
		for _, sentence := range splitSentences(paragraph) {
			if fits(buffer, sentence, sentenceSeparator, maxChunkSize) {
				buffer = join(buffer, sentence, sentenceSeparator)
				continue
			}
			flush()
			buffer = sentence
		}
	}

	flush()

	if len(texts) == 0 {
		texts = []string{clean}
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{Text: text, Index: i}
	}
	return chunks
}

func fits(buffer, piece, sep string, max int) bool {
	if buffer == "" {
		return len(piece) <= max
	}
	return len(buffer)+len(sep)+len(piece) <= max
}

func join(buffer, piece, sep string) string {
	if buffer == "" {
		return piece
	}
	return buffer + sep + piece
}

// splitSentences breaks text at '.', '!' or '?' followed by whitespace. Runs
// without terminators come back whole, so an unbroken word longer than the
// chunk limit survives intact.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 >= len(text) || isSpace(text[i+1]) {
				sentence := strings.TrimSpace(text[start : i+1])
				if sentence != "" {
					sentences = append(sentences, sentence)
				}
				start = i + 1
			}
		}
	}
	if start < len(text) {
		rest := strings.TrimSpace(text[start:])
		if rest != "" {
			sentences = append(sentences, rest)
		}
	}
	return sentences
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
