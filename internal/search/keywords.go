// Package search holds the text-side helpers of post search: keyword
// extraction from titles and highlight markup for matched fragments.
package search

import (
	"strings"
	"unicode"

	"inkwell/internal/models"
)

// cjkPunctuation is treated as a word boundary alongside plain spaces when
// tokenizing titles. Titles commonly mix scripts, so both ASCII whitespace
// and fullwidth punctuation delimit keywords.
var cjkPunctuation = strings.NewReplacer(
	"，", " ", // fullwidth comma
	"。", " ", // ideographic full stop
	"！", " ", // fullwidth exclamation mark
	"？", " ", // fullwidth question mark
)

// ExtractKeywords tokenizes each title, counts keyword frequency across all
// of them and returns the top limit keywords by count. Tokens of one rune or
// less are noise and are skipped. Ties keep first-seen order, so a keyword
// that appeared earlier in the corpus ranks ahead of an equally frequent
// latecomer.
func ExtractKeywords(titles []string, limit int) []models.KeywordCount {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, title := range titles {
		normalized := cjkPunctuation.Replace(title)
		for _, token := range strings.Fields(normalized) {
			if len([]rune(token)) <= 1 {
				continue
			}
			if _, seen := counts[token]; !seen {
				order = append(order, token)
			}
			counts[token]++
		}
	}

	ranked := make([]models.KeywordCount, 0, len(order))
	for _, kw := range order {
		ranked = append(ranked, models.KeywordCount{Keyword: kw, Count: counts[kw]})
	}

	// Insertion sort keeps the first-seen tiebreak stable.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].Count > ranked[j-1].Count; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// HighlightKeyword wraps every case-insensitive occurrence of keyword in
// text with <mark> tags, preserving the original casing of the matched
// fragment. Matching walks runes, never byte offsets: lowercasing can
// change a rune's byte length (U+0130, U+023A), so byte positions found in
// a lowered copy do not line up with the original. An empty keyword
// returns the text unchanged.
func HighlightKeyword(text, keyword string) string {
	if keyword == "" {
		return text
	}

	runes := []rune(text)
	kw := []rune(keyword)

	var b strings.Builder
	for i := 0; i < len(runes); {
		if foldPrefix(runes[i:], kw) {
			b.WriteString("<mark>")
			b.WriteString(string(runes[i : i+len(kw)]))
			b.WriteString("</mark>")
			i += len(kw)
			continue
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String()
}

// foldPrefix reports whether runes starts with kw under simple case folding.
func foldPrefix(runes, kw []rune) bool {
	if len(kw) > len(runes) {
		return false
	}
	for i, r := range kw {
		if unicode.ToLower(runes[i]) != unicode.ToLower(r) {
			return false
		}
	}
	return true
}
