// Package assets provides the OOXML style sheets and part templates used
// for DOCX generation.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in styles)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// EmbeddedLoader provides the built-in style sheets (default, compact) and
// the numbering, core, app and footer part templates embedded at compile time.
//
// FilesystemLoader allows users to provide custom assets from a directory,
// with path traversal protection and symlink resolution.
//
// AssetResolver is the primary loader used by the packager. It tries the
// custom FilesystemLoader first, falling back to EmbeddedLoader if the asset
// is not found. This enables overriding a single part while keeping defaults.
//
// # Directory Structure
//
// Assets are organized by type:
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.xml           # word/styles.xml templates (e.g., compact.xml)
//	└── templates/
//	    ├── numbering.xml        # word/numbering.xml template
//	    ├── core.xml             # docProps/core.xml template
//	    ├── app.xml              # docProps/app.xml template
//	    └── footer.xml           # word/footer1.xml template
//
// All assets are text/template sources. The docx package executes them with
// the document fonts and properties; the "xml" function escapes a value for
// use in element text or attributes.
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
