package quality

import "strings"

// topicKeywords maps a topic to search keywords, ordered by relevance.
// Topic matching scans in the order listed and stops at the first hit.
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"election", []string{"poll", "vote", "candidate", "campaign", "electoral", "primary", "debate"}},
	{"economy", []string{"GDP", "inflation", "recession", "employment", "market", "stocks", "bonds"}},
	{"crypto", []string{"blockchain", "bitcoin", "ethereum", "cryptocurrency", "DeFi", "NFT"}},
	{"politics", []string{"policy", "legislation", "congress", "senate", "government", "law"}},
	{"tech", []string{"AI", "software", "hardware", "innovation", "startup", "technology"}},
	{"climate", []string{"temperature", "carbon", "emissions", "renewable", "sustainability"}},
	{"health", []string{"disease", "vaccine", "treatment", "medical", "healthcare", "pandemic"}},
}

var recencyQualifiers = []string{"latest", "recent", "current", "update", "news"}

// EnhanceQuery appends topic keywords and a recency qualifier to broaden
// search coverage. A query matches a topic when it contains the topic name or
// one of the topic's first two keywords; the first matching topic contributes
// its first three keywords. "latest" is appended when no recency qualifier is
// already present. At most three words are appended in total. The result is
// deterministic and never shorter than the input.
func EnhanceQuery(query string) string {
	lower := strings.ToLower(query)

	var enhancements []string
	for _, entry := range topicKeywords {
		matched := strings.Contains(lower, entry.topic)
		if !matched {
			for _, kw := range entry.keywords[:2] {
				if strings.Contains(lower, strings.ToLower(kw)) {
					matched = true
					break
				}
			}
		}
		if matched {
			enhancements = append(enhancements, entry.keywords[:3]...)
			break
		}
	}

	hasRecency := false
	for _, qualifier := range recencyQualifiers {
		if strings.Contains(lower, qualifier) {
			hasRecency = true
			break
		}
	}
	if !hasRecency {
		enhancements = append(enhancements, "latest")
	}

	if len(enhancements) == 0 {
		return query
	}
	if len(enhancements) > 3 {
		enhancements = enhancements[:3]
	}
	return query + " " + strings.Join(enhancements, " ")
}
