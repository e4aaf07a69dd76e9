package assets

import "errors"

// AssetResolver serves assets from an optional override directory and
// falls back to the embedded set for anything the directory lacks.
type AssetResolver struct {
	loaders []AssetLoader // tried in order; embedded last
}

var _ AssetLoader = (*AssetResolver)(nil)

// NewAssetResolver creates an AssetResolver. An empty overridePath serves
// embedded assets only; otherwise overridePath must be a readable
// directory (see NewFilesystemLoader).
func NewAssetResolver(overridePath string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if overridePath != "" {
		dir, err := NewFilesystemLoader(overridePath)
		if err != nil {
			return nil, err
		}
		r.loaders = append(r.loaders, dir)
	}
	r.loaders = append(r.loaders, NewEmbeddedLoader())
	return r, nil
}

// LoadStyle returns the first style sheet found under name.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(name, AssetLoader.LoadStyle)
}

// LoadTemplate returns the first part template found under name.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(name, AssetLoader.LoadTemplate)
}

// first asks each loader in turn. Only a not-found error moves on to the
// next one; a bad name or a read failure is returned as is.
func (r *AssetResolver) first(name string, load func(AssetLoader, string) (string, error)) (string, error) {
	var err error
	for _, l := range r.loaders {
		var content string
		content, err = load(l, name)
		if !errors.Is(err, ErrStyleNotFound) && !errors.Is(err, ErrTemplateNotFound) {
			return content, err
		}
	}
	return "", err
}
