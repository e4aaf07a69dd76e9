package md2docx

import (
	"errors"

	"github.com/alnah/go-md2docx/internal/assets"
	"github.com/alnah/go-md2docx/internal/docx"
	"github.com/alnah/go-md2docx/internal/pipeline"
	"github.com/alnah/go-md2docx/internal/raster"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown = errors.New("markdown content cannot be empty")
	ErrInvalidUTF8   = errors.New("markdown content is not valid UTF-8")
	ErrFieldTooLong  = errors.New("field exceeds maximum length")

	// Asset loading errors.
	ErrInvalidAssetPath = errors.New("invalid asset path")
)

// Errors raised by the pipeline stages, re-exported so callers can match
// them with errors.Is without importing internal packages.
var (
	ErrLex         = pipeline.ErrLex
	ErrHTMLPreview = pipeline.ErrHTMLPreview
	ErrPackage     = docx.ErrPackage
	ErrSettings    = docx.ErrSettings

	ErrStyleNotFound    = assets.ErrStyleNotFound
	ErrTemplateNotFound = assets.ErrTemplateNotFound

	// Render errors never abort a conversion; they reach callers through
	// custom renderers and log records only.
	ErrBrowserConnect = raster.ErrBrowserConnect
	ErrDiagramRender  = raster.ErrDiagramRender
	ErrFormulaRender  = raster.ErrFormulaRender
	ErrImageDecode    = raster.ErrImageDecode
)
