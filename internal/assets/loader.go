package assets

// AssetLoader defines the contract for loading style sheets and part templates.
type AssetLoader interface {
	// LoadStyle loads a word/styles.xml template by name (without .xml extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a part template by name (without .xml extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (string, error)
}
