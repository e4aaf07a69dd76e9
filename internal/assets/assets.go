package assets

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// Built-in asset names.
const (
	// DefaultStyleName is the name of the built-in style sheet.
	DefaultStyleName = "default"

	TemplateNumbering = "numbering"
	TemplateCore      = "core"
	TemplateApp       = "app"
	TemplateFooter    = "footer"
)

// LoadStyle loads a style sheet by name using the default embedded loader.
// The name should not include the .xml extension or path components.
// Returns ErrStyleNotFound if the style does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads a part template by name using the default embedded loader.
// Returns ErrTemplateNotFound if the template does not exist.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// StyleNames lists the embedded style sheets, for hints and validation.
func StyleNames() []string {
	return defaultLoader.StyleNames()
}
