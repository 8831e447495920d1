package llm

import "testing"

func TestParseResponse(t *testing.T) {
	t.Run("bare json", func(t *testing.T) {
		parsed := ParseResponse(`{"prediction": "YES - rates hold", "confidence_score": 72, "key_factors": ["fed minutes"], "caveats": []}`)
		if parsed.Fallback {
			t.Fatal("unexpected fallback")
		}
		if parsed.Prediction != "YES - rates hold" || parsed.ConfidenceScore != 72 {
			t.Errorf("parsed: %+v", parsed)
		}
		if len(parsed.KeyFactors) != 1 || parsed.KeyFactors[0] != "fed minutes" {
			t.Errorf("key factors: %v", parsed.KeyFactors)
		}
		if parsed.Caveats == nil {
			t.Error("caveats should be non-nil")
		}
	})

	t.Run("json wrapped in prose", func(t *testing.T) {
		raw := "Here is my analysis:\n{\"prediction\": \"NO\", \"confidence_score\": 40, \"key_factors\": [], \"caveats\": [\"thin data\"]}\nHope that helps."
		parsed := ParseResponse(raw)
		if parsed.Fallback {
			t.Fatal("unexpected fallback")
		}
		if parsed.Prediction != "NO" || parsed.ConfidenceScore != 40 {
			t.Errorf("parsed: %+v", parsed)
		}
	})

	t.Run("prose with no braces falls back", func(t *testing.T) {
		parsed := ParseResponse("I think it is likely to happen based on the sources.")
		if !parsed.Fallback {
			t.Fatal("expected fallback")
		}
		if parsed.ConfidenceScore != 50 {
			t.Errorf("fallback confidence = %v, want 50", parsed.ConfidenceScore)
		}
		if parsed.Prediction != "I think it is likely to happen based on the sources." {
			t.Errorf("fallback prediction = %q", parsed.Prediction)
		}
		if len(parsed.Caveats) != 1 {
			t.Errorf("fallback caveats: %v", parsed.Caveats)
		}
	})

	t.Run("malformed json inside braces falls back", func(t *testing.T) {
		parsed := ParseResponse(`{"prediction": "YES", "confidence_score": }`)
		if !parsed.Fallback {
			t.Fatal("expected fallback")
		}
		if parsed.ConfidenceScore != 50 {
			t.Errorf("fallback confidence = %v, want 50", parsed.ConfidenceScore)
		}
	})

	t.Run("nil lists become empty", func(t *testing.T) {
		parsed := ParseResponse(`{"prediction": "UNLIKELY", "confidence_score": 30}`)
		if parsed.KeyFactors == nil || parsed.Caveats == nil {
			t.Error("lists should default to empty, not nil")
		}
	})
}
