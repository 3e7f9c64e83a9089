package assets

// DefaultStyleName is the built-in stylesheet used when none is chosen.
const DefaultStyleName = "chtml"

var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in stylesheet by name, without the .css
// extension. Returns ErrStyleNotFound if the style does not exist and
// ErrInvalidAssetName if the name contains path separators or dots.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// Styles lists the built-in style names in sorted order.
func Styles() []string {
	return defaultLoader.Styles()
}
