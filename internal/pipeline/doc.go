// Package pipeline implements the front half of the Markdown-to-DOCX
// conversion: text normalization, tokenization and the HTML preview.
//
// Stages:
//   - Text normalization (line endings, dedent, whitespace collapsing)
//   - Tokenization via Goldmark into the token tree of package token
//   - Inline re-lexing of text fragments for the mixed-content resolver
//   - Optional HTML preview rendering with chroma highlighting
//
// Document assembly and packaging are handled by the assemble and docx
// packages. This separation keeps the pipeline focused on reading Markdown,
// while the later stages own layout and the OOXML format.
package pipeline
