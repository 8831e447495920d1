// Package quality rates information sources: reputation tiers, blacklisting,
// spam filtering, quality scoring, and query enhancement.
package quality

import "strings"

// Reputation tiers. Matching is case-insensitive substring, tier 1 checked
// before 2 before 3; anything unmatched is tier 4.
var tier1Sources = []string{
	// Wire services and major outlets
	"Reuters", "Associated Press", "Bloomberg", "The Wall Street Journal",
	"The New York Times", "The Washington Post", "NPR", "PBS NewsHour",
	"ProPublica", "The Atlantic", "Foreign Policy",
	// International
	"BBC News", "The Guardian", "Financial Times", "The Economist",
	"Al Jazeera English", "Deutsche Welle", "France 24",
	// Business and finance
	"CNBC", "MarketWatch", "Barron's", "Forbes", "Fortune",
	"Business Insider", "Seeking Alpha",
	// Tech
	"TechCrunch", "The Verge", "Ars Technica", "Wired",
	// Science and research
	"Nature", "Science", "Scientific American", "MIT Technology Review",
	"The Conversation",
	// Fact-checking
	"PolitiFact", "FactCheck.org", "Snopes", "AP Fact Check",
}

var tier2Sources = []string{
	"USA Today", "TIME", "Newsweek", "Axios", "Vox", "Politico",
	"The Hill", "CBS News", "NBC News", "ABC News", "CNN",
	"Fox News", "The Independent", "Daily Mail", "Express",
	"Yahoo Finance", "Investopedia", "CoinDesk", "CoinTelegraph",
	"ZDNet", "CNET", "Engadget", "Mashable",
}

var tier3Sources = []string{
	"Medium", "Substack", "Twitter", "Reddit", "Quora",
	"BuzzFeed News", "HuffPost", "Slate", "Salon",
}

// Domains known for misinformation or clickbait.
var blacklistedDomains = []string{
	"example-fake-news.com",
	"clickbait-site.com",
}

var spamIndicators = []string{
	"click here", "you won't believe", "shocking", "doctors hate",
	"one weird trick", "make money fast", "get rich quick",
	"miracle cure", "lose weight fast", "secret revealed",
}

// Tier returns the reputation tier (1 best) for a source name.
// Unknown or empty names are tier 4.
func Tier(sourceName string) int {
	if sourceName == "" {
		return 4
	}
	lower := strings.ToLower(sourceName)
	for tier, list := range [][]string{tier1Sources, tier2Sources, tier3Sources} {
		for _, name := range list {
			if strings.Contains(lower, strings.ToLower(name)) {
				return tier + 1
			}
		}
	}
	return 4
}

// IsBlacklisted reports whether the URL belongs to a blacklisted domain.
func IsBlacklisted(url string) bool {
	if url == "" {
		return false
	}
	lower := strings.ToLower(url)
	for _, domain := range blacklistedDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// tierScore maps a tier to its base reputation score.
func tierScore(tier int) float64 {
	switch tier {
	case 1:
		return 100
	case 2:
		return 80
	case 3:
		return 60
	default:
		return 40
	}
}

// Score computes the blended quality score in [0, 100]:
// 50% source reputation, up to 30 points relevance (from a 0-10 input),
// up to 20 points recency. recencyDays nil means age unknown (middle score).
func Score(sourceName string, relevance float64, recencyDays *int) float64 {
	base := tierScore(Tier(sourceName)) * 0.5

	if relevance < 0 {
		relevance = 0
	} else if relevance > 10 {
		relevance = 10
	}
	relevanceContribution := (relevance / 10) * 30

	recencyContribution := 10.0
	if recencyDays != nil {
		switch {
		case *recencyDays <= 1:
			recencyContribution = 20
		case *recencyDays <= 7:
			recencyContribution = 15
		case *recencyDays <= 30:
			recencyContribution = 10
		default:
			recencyContribution = 5
		}
	}

	score := base + relevanceContribution + recencyContribution
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// ReputationBadge returns the display label for a source's tier.
func ReputationBadge(sourceName string) string {
	switch Tier(sourceName) {
	case 1:
		return "🏆 Highly Trusted"
	case 2:
		return "✅ Trusted"
	case 3:
		return "⚠️ Verify Claims"
	default:
		return "❓ Unknown Source"
	}
}

// IsSpam reports whether text contains a known clickbait phrase.
func IsSpam(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, indicator := range spamIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
