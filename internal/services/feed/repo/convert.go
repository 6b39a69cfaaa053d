package repo

import "herald/internal/core/grammar"

func kindFromString(s string) grammar.Kind {
	switch grammar.Kind(s) {
	case grammar.KindRevision, grammar.KindCommit, grammar.KindPaste,
		grammar.KindProject, grammar.KindImageMacro:
		return grammar.Kind(s)
	default:
		return grammar.KindUnknown
	}
}

func actionFromString(s string) grammar.ActionKey {
	if s == "" {
		return grammar.KeyUnknown
	}
	return grammar.ActionKey(s)
}
