// Package sentiment classifies free text as positive, negative, or neutral
// using a small polarity lexicon with fixed thresholds.
package sentiment

import (
	"strings"
	"unicode"

	"github.com/foresight/augur/internal/models"
)

// Thresholds on the [-1, 1] polarity scale. Values within (-0.1, 0.1] are
// neutral so that slight imbalances are not misclassified.
const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

var positiveWords = map[string]bool{
	"gain": true, "gains": true, "surge": true, "surges": true, "rally": true,
	"record": true, "growth": true, "strong": true, "boost": true, "boosts": true,
	"win": true, "wins": true, "beat": true, "beats": true, "success": true,
	"successful": true, "bullish": true, "optimistic": true, "positive": true,
	"soar": true, "soars": true, "breakthrough": true, "confidence": true,
	"leading": true, "leads": true, "rise": true, "rises": true, "rising": true,
	"improve": true, "improves": true, "improved": true, "exceed": true,
	"exceeds": true, "exceeded": true, "high": true, "highs": true,
	"momentum": true, "approval": true, "approve": true, "approved": true,
	"good": true, "great": true, "best": true, "upbeat": true, "recovery": true,
}

var negativeWords = map[string]bool{
	"loss": true, "losses": true, "drop": true, "drops": true, "fall": true,
	"falls": true, "falling": true, "crash": true, "crashes": true,
	"decline": true, "declines": true, "weak": true, "fail": true, "fails": true,
	"failed": true, "failure": true, "bearish": true, "pessimistic": true,
	"negative": true, "plunge": true, "plunges": true, "fear": true,
	"fears": true, "concern": true, "concerns": true, "risk": true,
	"risks": true, "lawsuit": true, "fraud": true, "scandal": true,
	"crisis": true, "recession": true, "slump": true, "miss": true,
	"misses": true, "missed": true, "low": true, "lows": true, "bad": true,
	"worst": true, "uncertain": true, "uncertainty": true, "warning": true,
	"layoffs": true, "ban": true, "banned": true, "collapse": true,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "without": true,
}

// Polarity returns a score in [-1, 1] for the text: the mean signed polarity
// of lexicon words found, with a preceding negator flipping the sign.
// Text with no lexicon words scores 0.
func Polarity(text string) float64 {
	tokens := tokenize(text)
	var sum, scored float64
	for i, tok := range tokens {
		var v float64
		switch {
		case positiveWords[tok]:
			v = 1
		case negativeWords[tok]:
			v = -1
		default:
			continue
		}
		if i > 0 && negators[tokens[i-1]] {
			v = -v
		}
		sum += v
		scored++
	}
	if scored == 0 {
		return 0
	}
	return sum / scored
}

// Classify maps text to a sentiment label. Polarity above 0.1 is positive,
// below -0.1 negative, everything else (including empty text) neutral.
func Classify(text string) models.Sentiment {
	p := Polarity(text)
	switch {
	case p > positiveThreshold:
		return models.SentimentPositive
	case p < negativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// tokenize lowercases and splits text into alphanumeric words.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
