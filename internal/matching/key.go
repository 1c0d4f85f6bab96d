package matching

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

// minTokenLength is the shortest token that can become a key
const minTokenLength = 3

// stopWords are generic corporate and technical terms. A token containing one of them
// never becomes a key.
var stopWords = transliterateAll([]string{
	"electrabel", // BE
	"elektrarn",  // CZ
	"block", "dampf", "energie", "gud", "kraft", "turbine", // DE
	"generat", "power", "station", // EN
	"combinado", "electrica", "espana", "endesa", "generacion", "grupo", "iberdrola", // ES
	"voimalaitos", "lämpökeskus", // FI
	"electrique", // FR
	"limited",    // GB
	"gazturbinas", "eromu", // HU
	"centrale", "energi", "termoelettrica", "turbogas", "combinato", "cogenera", // IT
	"vattenfall", // NL
	"cieplownia", "oddzial", "elektrowni", "energetyczny", "wytwarzanie", // PL
	"central", "termoelectrica", "termoeletrica", "termica", // RO
})

// Key returns the matching key of a plant name: the longest meaningful token of the
// lower-cased ASCII transliteration of the name, or "" when no token qualifies.
//
// Tokens are separated by anything that is not a letter. Tokens shorter than three
// letters and tokens containing a stop word are discarded. When several tokens share the
// maximum length the last one wins.
func Key(name string) string {
	ascii := transliterate(name)
	tokens := strings.FieldsFunc(ascii, func(r rune) bool {
		return r > unicode.MaxASCII || !unicode.IsLetter(r)
	})

	key := ""
	for _, token := range tokens {
		if len(token) < minTokenLength || containsStopWord(token) {
			continue
		}
		if len(token) >= len(key) {
			key = token
		}
	}
	return key
}

func containsStopWord(token string) bool {
	for _, word := range stopWords {
		if strings.Contains(token, word) {
			return true
		}
	}
	return false
}

// transliterate maps s to lower-case ASCII. Diacritics are dropped and letters of
// other scripts such as Greek and Cyrillic are romanized.
func transliterate(s string) string {
	return strings.ToLower(unidecode.Unidecode(strings.ToLower(s)))
}

func transliterateAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = transliterate(w)
	}
	return out
}
