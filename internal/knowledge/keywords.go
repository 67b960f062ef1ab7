// Package knowledge implements the keyword side of the knowledge-base
// lookup: flat stop-word filtering over customer text. The actual
// relevance query (array overlap against the keywords column) lives in
// the knowledge service.
package knowledge

import (
	"strings"
	"unicode"
)

// stopWords covers Portuguese plus the English fillers that show up in
// mixed-language tickets. Lowercased, accent-sensitive (matching how
// customers actually type).
var stopWords = map[string]struct{}{
	// português
	"a": {}, "o": {}, "as": {}, "os": {}, "um": {}, "uma": {}, "uns": {}, "umas": {},
	"de": {}, "do": {}, "da": {}, "dos": {}, "das": {}, "em": {}, "no": {}, "na": {},
	"nos": {}, "nas": {}, "por": {}, "para": {}, "com": {}, "sem": {}, "sob": {},
	"que": {}, "qual": {}, "quais": {}, "quando": {}, "onde": {}, "como": {}, "porque": {},
	"e": {}, "ou": {}, "mas": {}, "se": {}, "ao": {}, "aos": {}, "à": {}, "às": {},
	"eu": {}, "voce": {}, "você": {}, "ele": {}, "ela": {}, "eles": {}, "elas": {},
	"meu": {}, "minha": {}, "seu": {}, "sua": {}, "isso": {}, "isto": {}, "esse": {},
	"essa": {}, "este": {}, "esta": {}, "aquele": {}, "aquela": {}, "ter": {}, "tem": {},
	"tenho": {}, "estou": {}, "estava": {}, "ser": {}, "sou": {}, "era": {},
	"foi": {}, "são": {}, "nao": {}, "não": {}, "sim": {}, "ja": {}, "já": {},
	"muito": {}, "mais": {}, "menos": {}, "bem": {}, "mal": {}, "aqui": {}, "ali": {},
	"ola": {}, "olá": {}, "oi": {}, "bom": {}, "boa": {}, "dia": {}, "tarde": {},
	"noite": {}, "favor": {}, "obrigado": {}, "obrigada": {},
	"preciso": {}, "quero": {}, "gostaria": {}, "ajuda": {}, "ajudar": {},
	// english
	"the": {}, "an": {}, "and": {}, "or": {}, "but": {}, "if": {}, "of": {}, "to": {},
	"in": {}, "on": {}, "at": {}, "for": {}, "with": {}, "is": {}, "are": {}, "was": {},
	"be": {}, "this": {}, "that": {}, "my": {}, "your": {}, "it": {}, "not": {},
	"have": {}, "has": {}, "can": {}, "please": {}, "help": {}, "need": {}, "want": {},
	"hello": {}, "hi": {},
}

// ExtractKeywords lowercases text, splits it on non-letter/non-digit
// runes and drops stop words and tokens shorter than three runes.
// Order of first occurrence is preserved; duplicates are removed.
func ExtractKeywords(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(tokens))
	var out []string
	for _, tok := range tokens {
		if len([]rune(tok)) < 3 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
