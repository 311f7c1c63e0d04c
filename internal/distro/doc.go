// Package distro indexes the files of the installed TeX distribution.
//
// Roots come from the configuration or from `kpsewhich -var-value TEXMF`.
// Each root's ls-R database (or, without one, a directory walk) yields a
// name → path table for packages, classes and bibliography files. The table
// is cached on disk in msgpack, keyed by a digest of the ls-R files, so that
// later server starts skip the parsing.
package distro
