package utils

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
}

func TestWords(t *testing.T) {
	got := Words("Will Bitcoin hit $100k?")
	want := []string{"will", "bitcoin", "hit", "100k"}
	if len(got) != len(want) {
		t.Fatalf("Words: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Words[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWordSet(t *testing.T) {
	set := WordSet("rate rate hike")
	if len(set) != 2 || !set["rate"] || !set["hike"] {
		t.Errorf("WordSet: got %v", set)
	}
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		published string
		want      int
		wantNil   bool
	}{
		{"rfc3339", "2025-11-09T12:00:00Z", 1, false},
		{"plain date", "2025-10-11", 30, false},
		{"future clamps to zero", "2025-11-12T00:00:00Z", 0, false},
		{"empty", "", 0, true},
		{"garbage", "yesterday-ish", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DaysSince(tt.published, now)
			if tt.wantNil {
				if got != nil {
					t.Errorf("DaysSince(%q) = %d, want nil", tt.published, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("DaysSince(%q) = nil, want %d", tt.published, tt.want)
			}
			if *got != tt.want {
				t.Errorf("DaysSince(%q) = %d, want %d", tt.published, *got, tt.want)
			}
		})
	}
}
