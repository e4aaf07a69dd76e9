// Package yamlutil wraps YAML parsing to isolate the external dependency.
// Config files are decoded strictly; Markdown front matter leniently, since
// documents often carry keys meant for other tools.
package yamlutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Unmarshal decodes data into v, ignoring unknown fields.
func Unmarshal(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// Marshal encodes v as YAML.
func Marshal(v any) ([]byte, error) {
	result, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return result, nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

const frontMatterFence = "---"

// SplitFrontMatter decodes a leading "---" delimited YAML block of content
// into v and returns the rest of the document. Content without front
// matter is returned unchanged with found false. The body keeps one blank
// line per front matter line so that positions in diagnostics still match
// the source file.
func SplitFrontMatter(content string, v any) (body string, found bool, err error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontMatterFence+"\n") {
		return content, false, nil
	}

	lines := strings.Split(normalized, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == frontMatterFence {
			end = i
			break
		}
	}
	if end < 0 {
		return content, false, nil
	}

	block := strings.Join(lines[1:end], "\n")
	if strings.TrimSpace(block) != "" {
		if err := Unmarshal([]byte(block), v); err != nil {
			return "", true, err
		}
	}
	return strings.Repeat("\n", end+1) + strings.Join(lines[end+1:], "\n"), true, nil
}
