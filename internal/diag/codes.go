package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Нарушения правил
	LintInfo        Code = 1000
	LintOffense     Code = 1001
	LintRuleFailure Code = 1002

	// Парсерные
	ParseInfo   Code = 2000
	ParseSyntax Code = 2001

	// Автоисправление
	FixInfo       Code = 3000
	FixConflict   Code = 3001
	FixStale      Code = 3002
	FixNoConverge Code = 3003

	// Ввод-вывод
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002
)

var codeDescription = map[Code]string{
	UnknownCode:     "Unknown error",
	LintInfo:        "Lint information",
	LintOffense:     "Rule offense",
	LintRuleFailure: "Rule failed",
	ParseInfo:       "Parser information",
	ParseSyntax:     "Syntax error",
	FixInfo:         "Autocorrect information",
	FixConflict:     "Corrections overlap",
	FixStale:        "Correction does not match the source",
	FixNoConverge:   "Autocorrect did not converge",
	IOInfo:          "I/O information",
	IOLoadFileError: "I/O load file error",
	IOCacheError:    "Result cache error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LNT%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FIX%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
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
