// Package matcher resolves free-text recipient names to canonical nations
// using an exact alias tier and a fuzzy similarity tier.
package matcher

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Corporate and legal designators carried by award recipients (tribal
// enterprises file as LLCs, corporations, authorities) that never appear in
// canonical nation names.
var entitySuffixes = regexp.MustCompile(
	`(?i)\s*,?\s*(LLC|L\.?L\.?C\.?|INC\.?|INCORPORATED|CORP\.?|CORPORATION|` +
		`CO\.?|COMPANY|LTD\.?|LIMITED|L\.?P\.?|LLP|L\.?L\.?P\.?|` +
		`AUTHORITY|ENTERPRISES?|HOLDINGS?|DBA|D/B/A)\s*\.?\s*$`)

var (
	multiSpace = regexp.MustCompile(`\s{2,}`)
	upper      = cases.Upper(language.Und)
)

// Normalize case-folds a raw name, strips entity suffixes and a leading
// "THE", and collapses whitespace. Both sides of every comparison go
// through this so the alias tier is a plain map lookup.
func Normalize(name string) string {
	n := upper.String(strings.TrimSpace(name))
	n = entitySuffixes.ReplaceAllString(n, "")
	n = strings.TrimPrefix(n, "THE ")
	n = multiSpace.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}
