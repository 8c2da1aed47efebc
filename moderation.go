package main

import "regexp"

// Topics the assistant may talk about. A keyword only counts as a whole
// word; letters outside ASCII (the á in "olá") are word characters too, which
// RE2's \b does not handle, hence the explicit classes.
var allowedPatterns = []*regexp.Regexp{
	wordPattern(`oi|olá|ola|bom dia|boa tarde|boa noite`),
	wordPattern(`ajuda|suporte|como usar|login|cadastro|senha|módulo|modulo|chat|painel|admin`),
}

func wordPattern(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(?:` + alternatives + `)(?:$|[^\p{L}\p{N}_])`)
}

// isAllowed reports whether text is on topic for the assisted channel.
func isAllowed(text string) bool {
	for _, pattern := range allowedPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
