package lexer

type Options struct {
	// VerbatimEnvironments are scanned raw: their body produces no tokens.
	VerbatimEnvironments []string
}
