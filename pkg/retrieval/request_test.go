package retrieval

import (
	"reflect"
	"testing"

	"github.com/verseprint/backend/pkg/style"
)

func TestParseStructuralHint(t *testing.T) {
	tests := []struct {
		hint string
		want []style.SectionType
	}{
		{"verse-chorus-verse", []style.SectionType{style.SectionVerse, style.SectionChorus, style.SectionVerse}},
		{"verse, chorus, bridge", []style.SectionType{style.SectionVerse, style.SectionChorus, style.SectionBridge}},
		{"pre-chorus > chorus", []style.SectionType{style.SectionPreChorus, style.SectionChorus}},
		{"mukhda antara", []style.SectionType{style.SectionMukhda, style.SectionAntara}},
		{"verse-interstitial-verse", []style.SectionType{style.SectionVerse, style.SectionUnknown, style.SectionVerse}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			got := ParseStructuralHint(tt.hint)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseStructuralHint(%q) = %v, want %v", tt.hint, got, tt.want)
			}
		})
	}
}

func TestParseRequestMoodSignals(t *testing.T) {
	parsed := ParseRequest(Request{
		Topic:       "city lights",
		MoodSignals: []string{"romantic", " nostalgic "},
	})
	if len(parsed.Moods) != 2 {
		t.Fatalf("moods = %d, want 2", len(parsed.Moods))
	}
	if parsed.Moods[0].Label != "romantic" || parsed.Moods[1].Label != "nostalgic" {
		t.Errorf("mood labels = [%s %s]", parsed.Moods[0].Label, parsed.Moods[1].Label)
	}
}

func TestParseRequestNeutralTopicHasNoMood(t *testing.T) {
	parsed := ParseRequest(Request{Topic: "quarterly spreadsheet"})
	if len(parsed.Moods) != 0 {
		t.Errorf("moods = %v, want none for a neutral topic", parsed.Moods)
	}
}

func TestParseRequestTrimsTopic(t *testing.T) {
	parsed := ParseRequest(Request{Topic: "  monsoon  "})
	if parsed.Topic != "monsoon" {
		t.Errorf("topic = %q", parsed.Topic)
	}
	if parsed.Language != style.LanguageEnglish {
		t.Errorf("language = %q, want english", parsed.Language)
	}
}
