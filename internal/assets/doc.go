// Package assets provides the stylesheets injected next to rendered math.
//
// # Loader Architecture
//
//	StyleLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in styles compiled in with go:embed
//	    ├── FilesystemLoader  - styles from a directory on disk
//	    └── Resolver          - filesystem first, embedded fallback
//
// Resolver is what the converter uses. A custom directory can override a
// single built-in style and still fall back to the others.
//
// # Directory Structure
//
//	{basePath}/
//	└── styles/
//	    └── {name}.css
//
// # Security
//
// Style names are validated to reject path separators and dots.
// FilesystemLoader resolves symlinks and verifies paths stay within
// basePath.
package assets
