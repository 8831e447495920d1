package quality

import (
	"strings"
	"testing"
)

func TestEnhanceQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "topic name match",
			query: "will the election be close",
			want:  "will the election be close poll vote candidate",
		},
		{
			name:  "keyword match triggers topic",
			query: "bitcoin price forecast",
			want:  "bitcoin price forecast blockchain bitcoin ethereum",
		},
		{
			name:  "no topic appends latest",
			query: "will it rain tomorrow",
			want:  "will it rain tomorrow latest",
		},
		{
			name:  "recency qualifier suppresses latest",
			query: "latest weather forecast",
			want:  "latest weather forecast",
		},
		{
			name:  "first matching topic wins",
			query: "election impact on the economy",
			want:  "election impact on the economy poll vote candidate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnhanceQuery(tt.query); got != tt.want {
				t.Errorf("EnhanceQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestEnhanceQuery_Deterministic(t *testing.T) {
	queries := []string{
		"crypto regulation outlook",
		"GDP growth next quarter",
		"will vaccines be updated",
		"random question",
	}
	for _, q := range queries {
		first := EnhanceQuery(q)
		for i := 0; i < 5; i++ {
			if got := EnhanceQuery(q); got != first {
				t.Fatalf("EnhanceQuery(%q) not deterministic: %q vs %q", q, first, got)
			}
		}
		if len(first) < len(q) || !strings.HasPrefix(first, q) {
			t.Errorf("EnhanceQuery(%q) = %q does not extend the input", q, first)
		}
	}
}

func TestEnhanceQuery_AppendsAtMostThreeWords(t *testing.T) {
	q := "economy outlook"
	enhanced := EnhanceQuery(q)
	added := strings.Fields(strings.TrimPrefix(enhanced, q))
	if len(added) > 3 {
		t.Errorf("appended %d words, want at most 3: %q", len(added), enhanced)
	}
}
