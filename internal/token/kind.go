package token

// Kind represents the category of a LaTeX token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Command is a control sequence: \name, \name*, or a single escaped symbol like \{ or \\.
	Command
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
	Comma    // ,
	Eq       // =
	Dollar   // $ or $$
	// Word is a run of ordinary characters.
	Word
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "Invalid"
	case EOF:
		return "EOF"
	case Command:
		return "Command"
	case LBrace:
		return "LBrace"
	case RBrace:
		return "RBrace"
	case LBracket:
		return "LBracket"
	case RBracket:
		return "RBracket"
	case Comma:
		return "Comma"
	case Eq:
		return "Eq"
	case Dollar:
		return "Dollar"
	case Word:
		return "Word"
	}
	return "Kind(?)"
}
