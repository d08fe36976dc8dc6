// Package analysis derives structure and stylistic facts from raw lyric
// documents: section/line decomposition, phonetics, phrase statistics,
// mood and arc classification, and the aggregate fingerprint.
package analysis

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/verseprint/backend/pkg/style"
)

// sectionHeaderRe matches bracketed or bare section markers such as
// "[Verse 2]", "(Chorus)" or "Antara 1:".
var sectionHeaderRe = regexp.MustCompile(`(?i)^\s*[\[\(]?\s*([a-z\- ]+?)\s*(\d+)?\s*[\]\)]?\s*:?\s*$`)

var sectionTypeMap = map[string]style.SectionType{
	"verse":        style.SectionVerse,
	"chorus":       style.SectionChorus,
	"pre-chorus":   style.SectionPreChorus,
	"pre chorus":   style.SectionPreChorus,
	"prechorus":    style.SectionPreChorus,
	"bridge":       style.SectionBridge,
	"intro":        style.SectionIntro,
	"outro":        style.SectionOutro,
	"hook":         style.SectionHook,
	"refrain":      style.SectionRefrain,
	"mukhda":       style.SectionMukhda,
	"mukhra":       style.SectionMukhda,
	"antara":       style.SectionAntara,
	"sthayi":       style.SectionSthayi,
	"sthai":        style.SectionSthayi,
	"sanchari":     style.SectionSanchari,
	"abhog":        style.SectionAbhog,
	"interlude":    style.SectionUnknown,
	"instrumental": style.SectionUnknown,
}

// RawSection is a decomposed section before graph IDs are assigned.
type RawSection struct {
	Type  style.SectionType
	Lines []RawLine
}

type RawLine struct {
	Text          string
	EndWord       string
	SyllableCount int
	CodeSwitched  bool
}

// ParseSectionHeader reports whether a line is a section marker and, if so,
// its canonical type. Markers of unrecognized form still count as headers
// but map to the generic unknown type.
func ParseSectionHeader(line string) (style.SectionType, bool) {
	m := sectionHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	name := strings.ToLower(strings.TrimSpace(m[1]))
	if name == "" {
		return "", false
	}
	if t, ok := sectionTypeMap[name]; ok {
		return t, true
	}
	// Bare short lines without brackets are lyric text, not markers.
	if !strings.ContainsAny(line, "[]()") && m[2] == "" {
		return "", false
	}
	return style.SectionUnknown, true
}

// Decompose splits a raw document into ordered sections and lines. Text
// before the first header becomes an implicit verse; a document without any
// headers is split into verses on blank-line gaps. A document with zero
// detectable lines returns nil, which the ingestion pipeline reports as a
// skipped input.
func Decompose(raw string) []RawSection {
	var sections []RawSection
	cur := RawSection{Type: style.SectionVerse}

	flush := func() {
		if len(cur.Lines) > 0 {
			sections = append(sections, cur)
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// Blank-line gaps start a new verse unless a header follows.
			flush()
			cur = RawSection{Type: style.SectionVerse}
			continue
		}
		if t, ok := ParseSectionHeader(trimmed); ok {
			flush()
			cur = RawSection{Type: t}
			continue
		}
		cur.Lines = append(cur.Lines, analyzeLine(trimmed))
	}
	flush()
	return sections
}

func analyzeLine(text string) RawLine {
	return RawLine{
		Text:          text,
		EndWord:       EndWord(text),
		SyllableCount: EstimateSyllables(text),
		CodeSwitched:  HasCodeSwitch(text),
	}
}

// EndWord returns the trailing word of a line with punctuation stripped,
// lowercased for Latin script.
func EndWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	w := strings.TrimFunc(fields[len(fields)-1], func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return strings.ToLower(w)
}

// HasCodeSwitch reports whether a line mixes Devanagari and Latin script.
func HasCodeSwitch(line string) bool {
	var hasDeva, hasLatin bool
	for _, r := range line {
		switch {
		case r >= 0x0900 && r <= 0x097F:
			hasDeva = true
		case unicode.Is(unicode.Latin, r):
			hasLatin = true
		}
		if hasDeva && hasLatin {
			return true
		}
	}
	return false
}

// EstimateSyllables approximates the syllable count of a line. Latin words
// count vowel clusters (minimum one per word); Devanagari counts inherent
// and explicit vowels, discounting viramas.
func EstimateSyllables(line string) int {
	total := 0
	for _, word := range strings.Fields(line) {
		if containsDevanagari(word) {
			total += devanagariSyllables(word)
		} else {
			total += latinSyllables(word)
		}
	}
	return total
}

func containsDevanagari(s string) bool {
	for _, r := range s {
		if r >= 0x0900 && r <= 0x097F {
			return true
		}
	}
	return false
}

func latinSyllables(word string) int {
	count := 0
	prevVowel := false
	for _, r := range strings.ToLower(word) {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if count == 0 && len(word) > 0 {
		count = 1
	}
	return count
}

func devanagariSyllables(word string) int {
	count := 0
	runes := []rune(word)
	for i, r := range runes {
		switch {
		case r >= 0x0904 && r <= 0x0914: // independent vowels
			count++
		case r >= 0x093E && r <= 0x094C: // matras
			count++
		case r >= 0x0915 && r <= 0x0939: // consonants, inherent vowel
			next := rune(0)
			if i+1 < len(runes) {
				next = runes[i+1]
			}
			// Skip if followed by matra (counted there) or virama.
			if (next < 0x093E || next > 0x094C) && next != 0x094D {
				count++
			}
		}
	}
	if count == 0 && len(runes) > 0 {
		count = 1
	}
	return count
}

// DetectLanguage classifies a document by script ratio: mostly Devanagari is
// hindi, negligible Devanagari is english, anything mixed is hinglish.
func DetectLanguage(text string) style.Language {
	var deva, latin int
	for _, r := range text {
		switch {
		case r >= 0x0900 && r <= 0x097F:
			deva++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	total := deva + latin
	if total == 0 {
		return style.LanguageEnglish
	}
	ratio := float64(deva) / float64(total)
	switch {
	case ratio > 0.7:
		return style.LanguageHindi
	case ratio < 0.1:
		return style.LanguageEnglish
	default:
		return style.LanguageHinglish
	}
}

// SectionPattern returns the section-type sequence of a decomposed document,
// the unit the structure-template counter aggregates.
func SectionPattern(sections []RawSection) []style.SectionType {
	pattern := make([]style.SectionType, len(sections))
	for i, s := range sections {
		pattern[i] = s.Type
	}
	return pattern
}

// MeterOf returns the per-line syllable counts of one section.
func MeterOf(sec RawSection) []int {
	counts := make([]int, len(sec.Lines))
	for i, l := range sec.Lines {
		counts[i] = l.SyllableCount
	}
	return counts
}
