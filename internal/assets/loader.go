package assets

// StyleLoader loads CSS stylesheets by name.
type StyleLoader interface {
	// LoadStyle loads a style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)
}
