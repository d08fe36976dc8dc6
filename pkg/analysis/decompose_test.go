package analysis

import (
	"testing"

	"github.com/verseprint/backend/pkg/style"
)

func TestParseSectionHeader(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    style.SectionType
		matched bool
	}{
		{"bracketed verse with index", "[Verse 2]", style.SectionVerse, true},
		{"parenthesized chorus", "(Chorus)", style.SectionChorus, true},
		{"bare header with colon", "Chorus:", style.SectionChorus, true},
		{"south asian form", "[Antara]", style.SectionAntara, true},
		{"unrecognized bracketed marker", "[Random Tag]", style.SectionUnknown, true},
		{"plain lyric line", "burning bright tonight", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSectionHeader(tt.line)
			if ok != tt.matched {
				t.Fatalf("matched = %v, want %v", ok, tt.matched)
			}
			if ok && got != tt.want {
				t.Errorf("type = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecompose(t *testing.T) {
	raw := "dil ki baatein raat se kehna\n\n[Chorus]\nchand sitara raat\nchand sitara raat\n\n[Verse 2]\nbaarish mein bheegi yaadein"
	sections := Decompose(raw)
	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(sections))
	}
	if sections[0].Type != style.SectionVerse {
		t.Errorf("implicit first section = %q, want verse", sections[0].Type)
	}
	if sections[1].Type != style.SectionChorus {
		t.Errorf("second section = %q, want chorus", sections[1].Type)
	}
	if len(sections[1].Lines) != 2 {
		t.Errorf("chorus line count = %d, want 2", len(sections[1].Lines))
	}
	if sections[1].Lines[0].EndWord != "raat" {
		t.Errorf("end word = %q, want raat", sections[1].Lines[0].EndWord)
	}
}

func TestDecomposeEmpty(t *testing.T) {
	if got := Decompose("\n\n   \n"); got != nil {
		t.Fatalf("expected nil for blank document, got %v", got)
	}
}

func TestHasCodeSwitch(t *testing.T) {
	if !HasCodeSwitch("mera dil है") {
		t.Error("mixed-script line not detected")
	}
	if HasCodeSwitch("hello world") {
		t.Error("pure latin line reported as code-switched")
	}
}

func TestEstimateSyllables(t *testing.T) {
	if got := EstimateSyllables("burning bright"); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want style.Language
	}{
		{"english", "the rain falls on empty streets", style.LanguageEnglish},
		{"hindi", "दिल की बात कभी ना कहना", style.LanguageHindi},
		{"hinglish", "mera दिल tera दीवाना hai रात", style.LanguageHinglish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.text); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
