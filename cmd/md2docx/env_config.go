package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-md2docx/internal/config"
)

const envPrefix = "MD2DOCX_"

// envConfig holds configuration from environment variables, for CI jobs
// that cannot ship a YAML file.
type envConfig struct {
	ConfigPath    string // MD2DOCX_CONFIG
	Style         string // MD2DOCX_STYLE
	InputDir      string // MD2DOCX_INPUT_DIR
	OutputDir     string // MD2DOCX_OUTPUT_DIR
	Author        string // MD2DOCX_AUTHOR
	Date          string // MD2DOCX_DATE
	PageSize      string // MD2DOCX_PAGE_SIZE
	RenderTimeout string // MD2DOCX_RENDER_TIMEOUT
	AssetPath     string // MD2DOCX_ASSET_PATH
	Workers       int    // MD2DOCX_WORKERS
}

var knownEnvVars = map[string]bool{
	"MD2DOCX_CONFIG":         true,
	"MD2DOCX_STYLE":          true,
	"MD2DOCX_INPUT_DIR":      true,
	"MD2DOCX_OUTPUT_DIR":     true,
	"MD2DOCX_AUTHOR":         true,
	"MD2DOCX_DATE":           true,
	"MD2DOCX_PAGE_SIZE":      true,
	"MD2DOCX_RENDER_TIMEOUT": true,
	"MD2DOCX_ASSET_PATH":     true,
	"MD2DOCX_WORKERS":        true,
}

// loadEnvConfig reads the recognized MD2DOCX_* variables.
// An unparsable worker count is ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:    os.Getenv("MD2DOCX_CONFIG"),
		Style:         os.Getenv("MD2DOCX_STYLE"),
		InputDir:      os.Getenv("MD2DOCX_INPUT_DIR"),
		OutputDir:     os.Getenv("MD2DOCX_OUTPUT_DIR"),
		Author:        os.Getenv("MD2DOCX_AUTHOR"),
		Date:          os.Getenv("MD2DOCX_DATE"),
		PageSize:      os.Getenv("MD2DOCX_PAGE_SIZE"),
		RenderTimeout: os.Getenv("MD2DOCX_RENDER_TIMEOUT"),
		AssetPath:     os.Getenv("MD2DOCX_ASSET_PATH"),
	}

	if workers := os.Getenv("MD2DOCX_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars reports MD2DOCX_* variables that nothing reads,
// which are usually typos.
func warnUnknownEnvVars(w io.Writer) {
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig fills config fields the file left empty.
// Precedence: flags > environment > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setIfEmpty(&cfg.Document.Style, env.Style)
	setIfEmpty(&cfg.Input.DefaultDir, env.InputDir)
	setIfEmpty(&cfg.Output.DefaultDir, env.OutputDir)
	setIfEmpty(&cfg.Document.Author, env.Author)
	setIfEmpty(&cfg.Document.Date, env.Date)
	setIfEmpty(&cfg.Page.Size, env.PageSize)
	setIfEmpty(&cfg.Diagram.Timeout, env.RenderTimeout)
	setIfEmpty(&cfg.Assets.BasePath, env.AssetPath)
}

func setIfEmpty(dst *string, v string) {
	if v != "" && *dst == "" {
		*dst = v
	}
}
