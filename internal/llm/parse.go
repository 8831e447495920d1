package llm

import (
	"encoding/json"
	"strings"
)

// ParsedResponse is the structured payload extracted from a model response.
type ParsedResponse struct {
	Prediction      string   `json:"prediction"`
	ConfidenceScore float64  `json:"confidence_score"`
	KeyFactors      []string `json:"key_factors"`
	Caveats         []string `json:"caveats"`
	// Fallback is true when no JSON object could be extracted and the raw
	// text was wrapped instead.
	Fallback bool `json:"-"`
}

const fallbackCaveat = "Response was not in the expected structured format"

// ParseResponse extracts the JSON object from a model response. Models are
// prompted for bare JSON but may wrap it in prose, so the extraction takes
// the substring between the first '{' and the last '}'. When no parseable
// object exists the raw text becomes the prediction with confidence 50 and a
// caveat noting the fallback.
func ParseResponse(raw string) ParsedResponse {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		var parsed ParsedResponse
		if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err == nil {
			if parsed.KeyFactors == nil {
				parsed.KeyFactors = []string{}
			}
			if parsed.Caveats == nil {
				parsed.Caveats = []string{}
			}
			return parsed
		}
	}
	return ParsedResponse{
		Prediction:      strings.TrimSpace(raw),
		ConfidenceScore: 50,
		KeyFactors:      []string{},
		Caveats:         []string{fallbackCaveat},
		Fallback:        true,
	}
}
