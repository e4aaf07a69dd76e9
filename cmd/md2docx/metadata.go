package main

import (
	"cmp"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	md2docx "github.com/alnah/go-md2docx"
)

// frontMatter is the per-document metadata a Markdown file may carry in a
// leading YAML block. Other keys are ignored.
type frontMatter struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Date   string `yaml:"date"`
}

// documentMeta resolves one document's metadata. Flags beat front matter,
// which beats the config file. The title falls back to the first H1 and
// then to the file name.
func documentMeta(flags documentFlags, fm frontMatter, doc documentDefaults, body, path string) frontMatter {
	title := cmp.Or(flags.title, fm.Title, doc.title, extractFirstHeading(body))
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return frontMatter{
		Title:  truncateRunes(title, md2docx.MaxTitleLength),
		Author: cmp.Or(flags.author, fm.Author, doc.author),
		Date:   cmp.Or(flags.date, fm.Date, doc.date),
	}
}

// documentDefaults is the config file's document section after env vars.
type documentDefaults struct {
	title  string
	author string
	date   string
	footer string
}

// firstHeadingPattern matches the first # heading in markdown content.
var firstHeadingPattern = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)

// extractFirstHeading returns the text of the first level-one ATX heading,
// without a closing sequence.
func extractFirstHeading(markdown string) string {
	m := firstHeadingPattern.FindStringSubmatch(markdown)
	if len(m) < 2 {
		return ""
	}
	text := strings.TrimSpace(m[1])
	if trimmed := strings.TrimRight(text, "#"); trimmed != text && (trimmed == "" || strings.HasSuffix(trimmed, " ")) {
		text = strings.TrimSpace(trimmed)
	}
	return text
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
