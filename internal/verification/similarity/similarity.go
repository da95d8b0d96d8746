// Package similarity scores how alike two submitted/observed strings are.
// All functions are pure and deterministic.
package similarity

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, strips diacritics and drops everything that is not
// a letter or digit.
func Normalize(s string) string {
	return strings.Join(tokens(s), "")
}

// Similarity returns 1 - levenshtein(norm(a), norm(b)) / max(len). Two empty
// strings are identical; an empty and a non-empty string share nothing.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	la, lb := len([]rune(na)), len([]rune(nb))
	switch {
	case la == 0 && lb == 0:
		return 1
	case la == 0 || lb == 0:
		return 0
	}
	longest := max(la, lb)
	d := levenshtein.ComputeDistance(na, nb)
	return clamp(1 - float64(d)/float64(longest))
}

// NameSimilarity compares personal names by token-set overlap so that
// "Lopez Maria" and "Maria Lopez" score 1. The score is
// matchingTokens / max(tokenCount).
func NameSimilarity(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	switch {
	case len(ta) == 0 && len(tb) == 0:
		return 1
	case len(ta) == 0 || len(tb) == 0:
		return 0
	}
	inB := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		inB[t] = struct{}{}
	}
	matching := 0
	for _, t := range ta {
		if _, ok := inB[t]; ok {
			matching++
		}
	}
	return clamp(float64(matching) / float64(max(len(ta), len(tb))))
}

// tokens splits s on whitespace and normalizes each token. Tokens that end
// up empty are dropped.
func tokens(s string) []string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	fields := strings.Fields(strings.ToLower(folded))
	out := fields[:0]
	for _, f := range fields {
		t := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, f)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func tokenSet(s string) []string {
	ts := tokens(s)
	sort.Strings(ts)
	out := make([]string, 0, len(ts))
	for i, t := range ts {
		if i > 0 && t == ts[i-1] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
