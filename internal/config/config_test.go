package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
	if cfg.Document.Style != "" || cfg.Diagram.Disabled || cfg.Formula.Disabled {
		t.Errorf("DefaultConfig() = %+v, want zero values", cfg)
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		max     int
		wantErr bool
	}{
		{"empty value is valid", "", 10, false},
		{"value at limit is valid", "1234567890", 10, false},
		{"value over limit returns error", "12345678901", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("test.field", tt.value, tt.max)
			if tt.wantErr != (err != nil) {
				t.Fatalf("validateFieldLength() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				if !strings.Contains(err.Error(), "test.field") {
					t.Errorf("error %q should name the field", err)
				}
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"valid full config", func(c *Config) {
			c.Document = DocumentConfig{Title: "T", Author: "A", Date: "auto", Footer: "Draft", Style: "compact"}
			c.Page = PageConfig{Size: "Letter", Orientation: "landscape", Margin: 1}
			c.Diagram = DiagramConfig{Languages: []string{"mermaid"}, Script: "file:///opt/mermaid.js", MinWidth: 200, MaxWidth: 500, Timeout: "45s"}
		}, nil},
		{"title too long", func(c *Config) { c.Document.Title = strings.Repeat("x", MaxTitleLength+1) }, ErrFieldTooLong},
		{"author too long", func(c *Config) { c.Document.Author = strings.Repeat("x", MaxNameLength+1) }, ErrFieldTooLong},
		{"font too long", func(c *Config) { c.Fonts.Latin = strings.Repeat("x", MaxFontLength+1) }, ErrFieldTooLong},
		{"language too long", func(c *Config) { c.Diagram.Languages = []string{strings.Repeat("x", MaxLangLength+1)} }, ErrFieldTooLong},
		{"unknown page size", func(c *Config) { c.Page.Size = "a3" }, ErrInvalidValue},
		{"unknown orientation", func(c *Config) { c.Page.Orientation = "diagonal" }, ErrInvalidValue},
		{"margin too small", func(c *Config) { c.Page.Margin = 0.1 }, ErrInvalidValue},
		{"margin too large", func(c *Config) { c.Page.Margin = 4 }, ErrInvalidValue},
		{"relative script path", func(c *Config) { c.Diagram.Script = "mermaid.js" }, ErrInvalidValue},
		{"bad timeout", func(c *Config) { c.Diagram.Timeout = "soon" }, ErrInvalidValue},
		{"negative timeout", func(c *Config) { c.Diagram.Timeout = "-5s" }, ErrInvalidValue},
		{"min width above max", func(c *Config) { c.Diagram.MinWidth, c.Diagram.MaxWidth = 700, 600 }, ErrInvalidValue},
		{"negative cache", func(c *Config) { c.Cache.Formulas = -1 }, ErrInvalidValue},
		{"negative narrow width", func(c *Config) { c.Table.NarrowWidth = -1 }, ErrInvalidValue},
		{"negative resolution", func(c *Config) { c.Formula.Resolution = -2 }, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiagramConfig_RenderTimeout(t *testing.T) {
	t.Parallel()

	got, err := DiagramConfig{Timeout: "1m30s"}.RenderTimeout()
	if err != nil || got != 90*time.Second {
		t.Errorf("RenderTimeout() = %v, %v, want 1m30s", got, err)
	}
	got, err = DiagramConfig{}.RenderTimeout()
	if err != nil || got != 0 {
		t.Errorf("empty RenderTimeout() = %v, %v, want 0", got, err)
	}
}

func TestPageConfig_Twips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		page                 PageConfig
		wantW, wantH, wantMg int
	}{
		{"defaults to A4 half inch", PageConfig{}, 11906, 16838, 720},
		{"letter", PageConfig{Size: "letter"}, 12240, 15840, 720},
		{"legal landscape", PageConfig{Size: "LEGAL", Orientation: "Landscape"}, 20160, 12240, 720},
		{"one inch margin", PageConfig{Margin: 1}, 11906, 16838, 1440},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, h, m := tt.page.Twips()
			if w != tt.wantW || h != tt.wantH || m != tt.wantMg {
				t.Errorf("Twips() = %d, %d, %d, want %d, %d, %d", w, h, m, tt.wantW, tt.wantH, tt.wantMg)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads all sections", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `input:
  defaultDir: "./docs"
output:
  defaultDir: "./out"
  preview: true
document:
  title: "Handbook"
  author: "Docs Team"
  date: "auto:long"
  style: "compact"
fonts:
  latin: "Arial"
  eastAsia: "SimSun"
page:
  size: "letter"
diagram:
  languages: ["mermaid", "mmd"]
  theme: "forest"
  timeout: "30s"
formula:
  resolution: 8
  triggers: 4
table:
  narrowUnits: 6
highlight:
  style: "monokai"
cache:
  diagrams: 10
assets:
  basePath: "./assets"
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Document.Title != "Handbook" || cfg.Document.Date != "auto:long" || cfg.Document.Style != "compact" {
			t.Errorf("Document = %+v", cfg.Document)
		}
		if !cfg.Output.Preview || cfg.Output.DefaultDir != "./out" {
			t.Errorf("Output = %+v", cfg.Output)
		}
		if cfg.Fonts.EastAsia != "SimSun" || cfg.Fonts.Code != "" {
			t.Errorf("Fonts = %+v", cfg.Fonts)
		}
		if len(cfg.Diagram.Languages) != 2 || cfg.Diagram.Theme != "forest" {
			t.Errorf("Diagram = %+v", cfg.Diagram)
		}
		if cfg.Formula.Resolution != 8 || cfg.Formula.Triggers != 4 {
			t.Errorf("Formula = %+v", cfg.Formula)
		}
		if cfg.Table.NarrowUnits != 6 || cfg.Highlight.Style != "monokai" || cfg.Cache.Diagrams != 10 {
			t.Errorf("Table/Highlight/Cache = %+v %+v %+v", cfg.Table, cfg.Highlight, cfg.Cache)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig("/nonexistent/path/config.yaml"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("unknown name returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("md2docx-no-such-config")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "md2docx-no-such-config.yaml") {
			t.Errorf("error %q should list tried paths", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig(writeConfig(t, "document: [unclosed")); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "document:\n  title: \"x\"\n  watermark: \"DRAFT\"\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value is rejected at load", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "page:\n  size: \"tabloid\"\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("work")
	if len(paths) < 2 || paths[0] != "work.yaml" || paths[1] != "work.yml" {
		t.Fatalf("SearchPaths() = %v, want local .yaml then .yml first", paths)
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, "go-md2docx") {
			t.Errorf("user path %q should be under go-md2docx", p)
		}
	}
}
