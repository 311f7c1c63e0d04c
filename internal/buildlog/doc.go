// Package buildlog extracts errors and warnings from TeX engine log files.
//
// The parser understands the classic log layout: lines hard-wrapped at
// max_print_line (79), the parenthesized file stack that tells which source
// file is being read, "! " errors followed by an "l.<n>" context line,
// -file-line-error messages, LaTeX/package/class warnings and bad boxes.
// It never fails; unrecognized text is ignored.
package buildlog
