// Package chunk splits document text into bounded, overlapping segments
// suitable for embedding.
//
// The splitter targets TargetSize characters per segment and prefers natural
// boundaries (sentence end, line break, word break) over hard cuts. Adjacent
// segments share an OverlapSize window so that retrieval never loses context
// straddling a boundary.
package chunk

import (
	"regexp"
	"strings"
)

const (
	// TargetSize is the preferred segment length in characters,
	// roughly 200-300 embedding tokens.
	TargetSize = 1000

	// MinSize is the smallest segment the splitter will emit for any
	// non-final boundary.
	MinSize = 800

	// MaxSize is the single-chunk short-circuit threshold: trimmed input at
	// or below this length is returned whole.
	MaxSize = 2000

	// OverlapSize is the window shared by consecutive segments.
	OverlapSize = 200
)

// Chunk is one segment of a split document.
type Chunk struct {
	// Content is the segment text.
	Content string

	// Position is the 0-based sequence index within the document.
	Position int

	// HasCode reports whether the segment appears to contain source code.
	HasCode bool

	// Language is the detected code language, empty when unknown.
	Language string
}

var (
	fencedBlock = regexp.MustCompile("(?m)^\\s*```")
	inlineCode  = regexp.MustCompile("`[^`\n]+`")
	codeSyntax  = regexp.MustCompile(`(?m)\b(func|function|class|def|interface|struct)\s+\w+`)

	fenceLang = regexp.MustCompile("```([a-zA-Z][a-zA-Z0-9+#_-]*)")
)

// Split divides text into ordered chunks.
//
// Trimmed input of length <= MaxSize yields exactly one chunk. Longer input
// is scanned forward; each boundary prefers, in order, the nearest sentence
// period, newline, or space that still leaves at least MinSize characters
// since the cursor, and falls back to a hard cut at TargetSize. The cursor
// then steps back OverlapSize characters, except at the end of the text.
//
// Whitespace-only input yields a single empty chunk; callers are expected to
// filter empty documents upstream.
func Split(text string) []Chunk {
	text = strings.TrimSpace(text)

	if len(text) <= MaxSize {
		return []Chunk{newChunk(text, 0)}
	}

	var chunks []Chunk
	start := 0

	for start < len(text) {
		end := min(start+TargetSize, len(text))

		if end < len(text) {
			if i := strings.LastIndexByte(text[:end], '.'); i > start+MinSize {
				end = i + 1
			} else if i := strings.LastIndexByte(text[:end], '\n'); i > start+MinSize {
				end = i + 1
			} else if i := strings.LastIndexByte(text[:end], ' '); i > start+MinSize {
				end = i
			}
		}

		var content string
		if end-start < MinSize && start > 0 {
			// Undersized tail: re-slice backward to meet the minimum rather
			// than emitting a fragment. Overlaps the previous chunk further.
			content = text[max(0, end-MinSize):end]
		} else {
			content = text[start:end]
		}

		chunks = append(chunks, newChunk(content, len(chunks)))

		if end >= len(text) {
			break
		}
		start = end - OverlapSize
	}

	return chunks
}

func newChunk(content string, position int) Chunk {
	return Chunk{
		Content:  content,
		Position: position,
		HasCode:  hasCode(content),
		Language: detectLanguage(content),
	}
}

// hasCode is a heuristic: fenced code markers, inline code spans, or
// function/class-like declarations.
func hasCode(s string) bool {
	return fencedBlock.MatchString(s) ||
		inlineCode.MatchString(s) ||
		codeSyntax.MatchString(s)
}

// detectLanguage prefers an explicit fenced-block language tag and falls back
// to keyword heuristics. Returns "" when nothing matches.
func detectLanguage(s string) string {
	if m := fenceLang.FindStringSubmatch(s); m != nil {
		return strings.ToLower(m[1])
	}

	switch {
	case strings.Contains(s, "func ") && (strings.Contains(s, "package ") || strings.Contains(s, ":=")):
		return "go"
	case strings.Contains(s, "def ") && strings.Contains(s, "import "):
		return "python"
	case strings.Contains(s, "function ") || strings.Contains(s, "const ") && strings.Contains(s, "=>"):
		return "javascript"
	}
	return ""
}
