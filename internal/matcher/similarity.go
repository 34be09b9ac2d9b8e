package matcher

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]+`)

// tokenSort splits a normalized name into tokens, sorts them, and rejoins.
// Word order then no longer affects similarity ("NATION OF ABC" scores the
// same as "ABC NATION OF").
func tokenSort(s string) string {
	tokens := nonAlnum.Split(s, -1)
	filtered := tokens[:0]
	for _, t := range tokens {
		if t != "" {
			filtered = append(filtered, t)
		}
	}
	sort.Strings(filtered)
	return strings.Join(filtered, " ")
}

// Similarity returns a token-order-insensitive score on a 0-100 scale.
// Inputs are expected to be pre-normalized. Deterministic: the same pair
// always yields the same score.
func Similarity(a, b string) float64 {
	sa, sb := tokenSort(a), tokenSort(b)
	if sa == "" || sb == "" {
		return 0
	}
	return levenshtein.Similarity(sa, sb, levenshtein.NewParams()) * 100
}
