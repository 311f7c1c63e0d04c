// Package token defines lexical token kinds and trivia for LaTeX sources.
// Invariants:
//   - Token.Text is a slice of the original source.
//   - Token.Span matches Text exactly (Start..End).
//   - Comments (% ...) and whitespace are leading Trivia and never appear in
//     the main token stream.
//   - Command tokens include the backslash and an optional trailing star.
package token
