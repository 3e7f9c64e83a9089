// Package mdmath converts Markdown to HTML without damaging the TeX in it.
//
// Markdown treats backslashes, underscores and asterisks as syntax, which
// mangles math. Before goldmark runs, every math span outside code is
// swapped for a placeholder made of Private Use Area characters; after
// rendering, the placeholders are replaced by the escaped original TeX.
// The resulting HTML is ready for math discovery.
//
// An optional YAML front matter block supplies the page title and
// language.
package mdmath
