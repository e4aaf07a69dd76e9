package pipeline

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Horizontal whitespace: space, tab, ideographic space, no-break space
	horizontalSpace = regexp.MustCompile("[ \t\u3000\u00a0]+")
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// TextNormalizer dedents pasted text and collapses horizontal whitespace
// outside fenced code blocks.
type TextNormalizer struct{}

// PreprocessMarkdown normalizes content before lexing.
func (p *TextNormalizer) PreprocessMarkdown(ctx context.Context, content string) string {
	// Check for cancellation before processing
	if ctx.Err() != nil {
		return content
	}
	return Normalize(content)
}

// Normalize converts line endings to LF, removes the common leading
// whitespace of all non-blank lines and collapses whitespace runs into a
// single space. Fence lines and fenced content are kept verbatim.
// The result has the same number of lines as the input.
func Normalize(content string) string {
	content = normalizeLineEndings(content)
	lines := strings.Split(content, "\n")

	if k := commonIndent(lines); k > 0 {
		for i, line := range lines {
			lines[i] = dropLeading(line, k)
		}
	}

	inFence := false
	fence := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case !inFence:
				inFence, fence = true, marker
			case strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == "":
				inFence = false
			}
			continue
		}
		if inFence {
			continue
		}
		lines[i] = horizontalSpace.ReplaceAllString(line, " ")
	}

	return strings.Join(lines, "\n")
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// commonIndent returns the minimum count of leading whitespace runes over
// all non-blank lines, or 0 when every line is blank.
func commonIndent(lines []string) int {
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := 0
		for _, r := range line {
			if !unicode.IsSpace(r) {
				break
			}
			n++
		}
		if minIndent < 0 || n < minIndent {
			minIndent = n
		}
	}
	if minIndent < 0 {
		return 0
	}
	return minIndent
}

// dropLeading removes the first k runes of line. Lines with fewer runes
// can only be blank and become empty.
func dropLeading(line string, k int) string {
	if utf8.RuneCountInString(line) < k {
		return ""
	}
	for i := range line {
		if k == 0 {
			return line[i:]
		}
		k--
	}
	return ""
}

// fenceMarker returns the fence run (``` or ~~~, possibly longer) that
// opens trimmed, or "" if the line is not a fence.
func fenceMarker(trimmed string) string {
	for _, c := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == c {
			n++
		}
		if n >= 3 {
			return trimmed[:n]
		}
	}
	return ""
}
