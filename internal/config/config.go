package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits for multi-tenant safety.
const (
	MaxTitleLength  = 500  // Document title
	MaxNameLength   = 200  // Author
	MaxDateLength   = 30   // "auto:MMMM D, YYYY" or "December 31, 2025"
	MaxTextLength   = 200  // Footer text
	MaxFontLength   = 64   // Font family name
	MaxURLLength    = 2048 // Browser limit
	MaxLangLength   = 32   // Fence language
	MaxStyleLength  = 64   // Style sheet or chroma style name
	MaxPathLength   = 4096 // Directories
	MaxDurationText = 20   // "30s", "1m30s"
)

// Config holds all configuration for document generation.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Document  DocumentConfig  `yaml:"document"`
	Fonts     FontsConfig     `yaml:"fonts"`
	Page      PageConfig      `yaml:"page"`
	Diagram   DiagramConfig   `yaml:"diagram"`
	Formula   FormulaConfig   `yaml:"formula"`
	Table     TableConfig     `yaml:"table"`
	Highlight HighlightConfig `yaml:"highlight"`
	Cache     CacheConfig     `yaml:"cache"`
	Assets    AssetsConfig    `yaml:"assets"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
	Preview    bool   `yaml:"preview"`    // Also write an .html preview next to the .docx
}

// DocumentConfig defines document metadata and look.
type DocumentConfig struct {
	Title  string `yaml:"title"`  // Empty = first H1, then file name
	Author string `yaml:"author"` // Core property
	Date   string `yaml:"date"`   // Footer date: literal, "auto" or "auto:<format>"
	Footer string `yaml:"footer"` // Footer text, joined with the date
	Style  string `yaml:"style"`  // Style sheet name (default: "default")
}

// FontsConfig defines the document fonts. Empty fields keep the defaults.
type FontsConfig struct {
	Latin    string `yaml:"latin"`
	EastAsia string `yaml:"eastAsia"`
	Code     string `yaml:"code"`
}

// PageConfig defines page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "a4", "letter", "legal" (default: "a4")
	Orientation string  `yaml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      float64 `yaml:"margin"`      // inches (default: 0.5)
}

// DiagramConfig defines diagram rendering options.
type DiagramConfig struct {
	Disabled  bool     `yaml:"disabled"`  // Render diagrams as code
	Languages []string `yaml:"languages"` // Fence languages (default: mermaid)
	Script    string   `yaml:"script"`    // mermaid.js URL or file path
	Theme     string   `yaml:"theme"`     // mermaid theme (default: "default")
	MinWidth  int      `yaml:"minWidth"`  // display pixels (default: 300)
	MaxWidth  int      `yaml:"maxWidth"`  // display pixels (default: 600)
	Timeout   string   `yaml:"timeout"`   // per render, Go duration (default: 20s)
}

// FormulaConfig defines math rendering options.
type FormulaConfig struct {
	Disabled   bool    `yaml:"disabled"`   // Render formulas as italic source
	Resolution float64 `yaml:"resolution"` // pixels per millimetre (default: 10)
	Triggers   int     `yaml:"triggers"`   // min operator count for a bare formula span (default: 3)
	MaxLength  int     `yaml:"maxLength"`  // max runes of a bare formula span (default: 200)
}

// TableConfig defines table column sizing.
type TableConfig struct {
	NarrowUnits int `yaml:"narrowUnits"` // width units at or below which a column is narrow (default: 4)
	NarrowWidth int `yaml:"narrowWidth"` // twips given to narrow columns (default: 1200)
}

// HighlightConfig defines code coloring.
type HighlightConfig struct {
	Style string `yaml:"style"` // chroma style name (default: "github")
}

// CacheConfig defines render cache capacities per conversion.
type CacheConfig struct {
	Diagrams int `yaml:"diagrams"` // default: 100
	Formulas int `yaml:"formulas"` // default: 200
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually (e.g., API adapters, library users).
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"document.title", c.Document.Title, MaxTitleLength},
		{"document.author", c.Document.Author, MaxNameLength},
		{"document.date", c.Document.Date, MaxDateLength},
		{"document.footer", c.Document.Footer, MaxTextLength},
		{"document.style", c.Document.Style, MaxStyleLength},
		{"fonts.latin", c.Fonts.Latin, MaxFontLength},
		{"fonts.eastAsia", c.Fonts.EastAsia, MaxFontLength},
		{"fonts.code", c.Fonts.Code, MaxFontLength},
		{"diagram.script", c.Diagram.Script, MaxURLLength},
		{"diagram.theme", c.Diagram.Theme, MaxStyleLength},
		{"diagram.timeout", c.Diagram.Timeout, MaxDurationText},
		{"highlight.style", c.Highlight.Style, MaxStyleLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}
	for i, lang := range c.Diagram.Languages {
		if err := validateFieldLength(fmt.Sprintf("diagram.languages[%d]", i), lang, MaxLangLength); err != nil {
			return err
		}
	}

	if c.Page.Size != "" {
		if _, ok := pageSizes[strings.ToLower(c.Page.Size)]; !ok {
			return fmt.Errorf("%w: page.size %q (must be a4, letter, or legal)", ErrInvalidValue, c.Page.Size)
		}
	}
	switch strings.ToLower(c.Page.Orientation) {
	case "", "portrait", "landscape":
	default:
		return fmt.Errorf("%w: page.orientation %q (must be portrait or landscape)", ErrInvalidValue, c.Page.Orientation)
	}
	if c.Page.Margin != 0 && (c.Page.Margin < MinMargin || c.Page.Margin > MaxMargin) {
		return fmt.Errorf("%w: page.margin %.2f (must be between %.2f and %.2f)", ErrInvalidValue, c.Page.Margin, MinMargin, MaxMargin)
	}

	if c.Diagram.Script != "" && !fileutil.IsURL(c.Diagram.Script) && !strings.HasPrefix(c.Diagram.Script, "file://") {
		return fmt.Errorf("%w: diagram.script %q (must be an http(s) or file:// URL)", ErrInvalidValue, c.Diagram.Script)
	}
	if _, err := c.Diagram.RenderTimeout(); err != nil {
		return err
	}
	if c.Diagram.MinWidth < 0 || c.Diagram.MaxWidth < 0 ||
		(c.Diagram.MinWidth > 0 && c.Diagram.MaxWidth > 0 && c.Diagram.MinWidth > c.Diagram.MaxWidth) {
		return fmt.Errorf("%w: diagram.minWidth %d and maxWidth %d", ErrInvalidValue, c.Diagram.MinWidth, c.Diagram.MaxWidth)
	}

	for _, n := range []struct {
		name  string
		value int
	}{
		{"formula.triggers", c.Formula.Triggers},
		{"formula.maxLength", c.Formula.MaxLength},
		{"table.narrowUnits", c.Table.NarrowUnits},
		{"table.narrowWidth", c.Table.NarrowWidth},
		{"cache.diagrams", c.Cache.Diagrams},
		{"cache.formulas", c.Cache.Formulas},
	} {
		if n.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidValue, n.name, n.value)
		}
	}
	if c.Formula.Resolution < 0 {
		return fmt.Errorf("%w: formula.resolution must not be negative, got %.2f", ErrInvalidValue, c.Formula.Resolution)
	}

	return nil
}

// RenderTimeout parses Timeout. An empty value returns zero.
func (d DiagramConfig) RenderTimeout() (time.Duration, error) {
	if d.Timeout == "" {
		return 0, nil
	}
	t, err := time.ParseDuration(d.Timeout)
	if err != nil || t <= 0 {
		return 0, fmt.Errorf("%w: diagram.timeout %q (must be a positive duration like 30s)", ErrInvalidValue, d.Timeout)
	}
	return t, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration where every field selects the
// library default.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchPaths lists where a config name is looked up, in order:
// ./name.yaml, ./name.yml, then the same under ~/.config/go-md2docx/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-md2docx", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing SearchPaths entry.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
