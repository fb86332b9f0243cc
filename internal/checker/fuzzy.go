package checker

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// fuzzyMatch ranks candidates against name and returns the closest one, for
// the "did you mean" help text an undefined-field/function diagnostic
// attaches (SPEC_FULL.md §3's domain-stack wiring for fuzzysearch). It never
// changes what was actually checked — only the suggestion text.
func fuzzyMatch(name string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	ranks := fuzzy.RankFindNormalizedFold(name, candidates)
	if len(ranks) == 0 {
		return "", false
	}
	sort.Sort(ranks)
	return ranks[0].Target, true
}
