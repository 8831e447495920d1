package aggregate

import "github.com/foresight/augur/pkg/utils"

// RelevanceScore measures word overlap between the query and a record's
// title/snippet on a 0-100 scale. Title words count once in the union term
// and twice more in the title bonus, so a full title match alone scores 100:
//
//	100 * (|Q ∩ (title ∪ snippet)| + 2*|Q ∩ title|) / (3*|Q|)
//
// clamped to [0, 100]. An empty query scores 0.
func RelevanceScore(query, title, snippet string) float64 {
	queryWords := utils.WordSet(query)
	if len(queryWords) == 0 {
		return 0
	}
	titleWords := utils.WordSet(title)
	snippetWords := utils.WordSet(snippet)

	var union, titleHits float64
	for w := range queryWords {
		if titleWords[w] {
			titleHits++
		}
		if titleWords[w] || snippetWords[w] {
			union++
		}
	}

	score := 100 * (union + 2*titleHits) / (3 * float64(len(queryWords)))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
