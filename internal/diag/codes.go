package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Структура LaTeX-документа
	GrmInfo                    Code = 1000
	GrmUnexpectedRCurly        Code = 1001
	GrmExpectingRCurly         Code = 1002
	GrmMismatchedEnvironment   Code = 1003
	GrmUnterminatedEnvironment Code = 1004
	GrmUnexpectedEnd           Code = 1005

	// BibTeX
	BibInfo                Code = 2000
	BibExpectingLCurly     Code = 2001
	BibExpectingKey        Code = 2002
	BibExpectingRCurly     Code = 2003
	BibExpectingEq         Code = 2004
	BibExpectingFieldValue Code = 2005

	// Лог сборки
	LogInfo    Code = 3000
	LogError   Code = 3001
	LogWarning Code = 3002

	// ChkTeX
	ChkInfo    Code = 4000
	ChkFinding Code = 4001

	// Цитаты
	CitInfo           Code = 5000
	CitUndefined      Code = 5001
	CitUnusedEntry    Code = 5002
	CitDuplicateEntry Code = 5003

	// Метки
	LblInfo      Code = 6000
	LblUndefined Code = 6001
	LblUnused    Code = 6002
	LblDuplicate Code = 6003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                "Unknown error",
		GrmInfo:                    "Document structure information",
		GrmUnexpectedRCurly:        "Unexpected closing brace",
		GrmExpectingRCurly:         "Missing closing brace",
		GrmMismatchedEnvironment:   "Mismatched environment",
		GrmUnterminatedEnvironment: "Unterminated environment",
		GrmUnexpectedEnd:           "\\end without matching \\begin",
		BibInfo:                    "Bibliography information",
		BibExpectingLCurly:         "Missing opening brace",
		BibExpectingKey:            "Missing entry key",
		BibExpectingRCurly:         "Missing closing brace",
		BibExpectingEq:             "Missing equality sign",
		BibExpectingFieldValue:     "Missing field value",
		LogInfo:                    "Build log information",
		LogError:                   "Build error",
		LogWarning:                 "Build warning",
		ChkInfo:                    "ChkTeX information",
		ChkFinding:                 "ChkTeX finding",
		CitInfo:                    "Citation information",
		CitUndefined:               "Undefined citation",
		CitUnusedEntry:             "Unused bibliography entry",
		CitDuplicateEntry:          "Duplicate bibliography entry",
		LblInfo:                    "Label information",
		LblUndefined:               "Undefined label",
		LblUnused:                  "Unused label",
		LblDuplicate:               "Duplicate label",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("TEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("BIB%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("LOG%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CHK%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CIT%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("LBL%04d", ic)
	}
	return "E0000"
}

// Origin maps the code range to the analysis that produces it.
func (c Code) Origin() Origin {
	switch ic := int(c); {
	case ic >= 1000 && ic < 3000:
		return OriginGrammar
	case ic >= 3000 && ic < 4000:
		return OriginBuild
	case ic >= 4000 && ic < 5000:
		return OriginChktex
	case ic >= 5000 && ic < 6000:
		return OriginCitation
	case ic >= 6000 && ic < 7000:
		return OriginLabel
	}
	return OriginUnknown
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
