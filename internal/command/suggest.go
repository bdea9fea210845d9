package command

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxEditDistance bounds suggestions for tokens that are not a subsequence
// of any candidate.
const maxEditDistance = 2

// suggest picks the closest candidate to token, or "" when nothing is close.
func suggest(token string, candidates []string) string {
	if token == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(token, candidates)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", maxEditDistance+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(token, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
