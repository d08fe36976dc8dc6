package analysis

import (
	"strings"

	"github.com/verseprint/backend/pkg/style"
)

// Rough Devanagari-to-Latin mapping used only for suffix comparison.
// Cross-script rhymes are judged on these normalized romanized suffixes;
// the mapping deliberately collapses aspiration and vowel length since the
// comparison only needs relative phonetic closeness, not transliteration.
var devanagariRoman = map[rune]string{
	'अ': "a", 'आ': "aa", 'इ': "i", 'ई': "i", 'उ': "u", 'ऊ': "u",
	'ए': "e", 'ऐ': "ai", 'ओ': "o", 'औ': "au",
	'क': "ka", 'ख': "ka", 'ग': "ga", 'घ': "ga", 'च': "cha", 'छ': "cha",
	'ज': "ja", 'झ': "ja", 'ट': "ta", 'ठ': "ta", 'ड': "da", 'ढ': "da",
	'ण': "na", 'त': "ta", 'थ': "ta", 'द': "da", 'ध': "da", 'न': "na",
	'प': "pa", 'फ': "pa", 'ब': "ba", 'भ': "ba", 'म': "ma", 'य': "ya",
	'र': "ra", 'ल': "la", 'व': "va", 'श': "sha", 'ष': "sha", 'स': "sa",
	'ह': "ha",
	'ा': "a", 'ि': "i", 'ी': "i", 'ु': "u", 'ू': "u",
	'े': "e", 'ै': "ai", 'ो': "o", 'ौ': "au", 'ं': "n", 'ँ': "n",
}

// Romanize maps Devanagari runes to Latin approximations; Latin runes pass
// through lowercased. A virama cancels the previous inherent vowel.
func Romanize(word string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		if r == 0x094D { // virama
			s := b.String()
			if strings.HasSuffix(s, "a") && len(s) > 1 {
				b.Reset()
				b.WriteString(s[:len(s)-1])
			}
			continue
		}
		if mapped, ok := devanagariRoman[r]; ok {
			b.WriteString(mapped)
			continue
		}
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isLatinWord(w string) bool {
	return !containsDevanagari(w)
}

func lastVowel(w string) rune {
	runes := []rune(w)
	for i := len(runes) - 1; i >= 0; i-- {
		if strings.ContainsRune("aeiou", runes[i]) {
			return runes[i]
		}
	}
	return 0
}

func suffix(w string, n int) string {
	runes := []rune(w)
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[len(runes)-n:])
}

// ClassifyRhyme compares two line-ending words. The same word never rhymes
// with itself. Within Latin script: shared 3-char suffix is perfect, 2-char
// is slant, a shared final vowel is assonance. When either word carries
// Devanagari, both are romanized and a shared 2-char romanized suffix makes
// a cross-language rhyme.
func ClassifyRhyme(a, b string) (style.RhymeType, bool) {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" || a == b {
		return "", false
	}
	if isLatinWord(a) && isLatinWord(b) {
		switch {
		case suffix(a, 3) == suffix(b, 3):
			return style.RhymePerfect, true
		case suffix(a, 2) == suffix(b, 2):
			return style.RhymeSlant, true
		case lastVowel(a) != 0 && lastVowel(a) == lastVowel(b):
			return style.RhymeAssonance, true
		}
		return "", false
	}
	ra, rb := Romanize(a), Romanize(b)
	if ra == "" || rb == "" || ra == rb {
		return "", false
	}
	if suffix(ra, 2) == suffix(rb, 2) {
		return style.RhymeCrossLanguage, true
	}
	return "", false
}

// ObservedRhyme is one detected end-word pair inside a section.
type ObservedRhyme struct {
	WordA, WordB string
	Type         style.RhymeType
	// Gap is 1 for adjacent lines, 2 for alternating.
	Gap int
}

// ScanSection walks a section's end words over adjacent and alternating
// windows and returns every detected rhyme. Word order inside a pair is
// normalized lexicographically so pairs aggregate regardless of direction.
func ScanSection(endWords []string) []ObservedRhyme {
	var out []ObservedRhyme
	for _, gap := range []int{1, 2} {
		for i := 0; i+gap < len(endWords); i++ {
			t, ok := ClassifyRhyme(endWords[i], endWords[i+gap])
			if !ok {
				continue
			}
			a, b := endWords[i], endWords[i+gap]
			if a > b {
				a, b = b, a
			}
			out = append(out, ObservedRhyme{WordA: a, WordB: b, Type: t, Gap: gap})
		}
	}
	return out
}

// DetectScheme labels the rhyme scheme of a four-line stanza; anything else
// is FREE. Letters are assigned by rhyme-group membership.
func DetectScheme(endWords []string) string {
	if len(endWords) != 4 {
		return "FREE"
	}
	rhymes := func(i, j int) bool {
		_, ok := ClassifyRhyme(endWords[i], endWords[j])
		return ok || strings.EqualFold(endWords[i], endWords[j])
	}
	switch {
	case rhymes(0, 1) && rhymes(2, 3) && !rhymes(1, 2):
		return "AABB"
	case rhymes(0, 2) && rhymes(1, 3) && !rhymes(0, 1):
		return "ABAB"
	case rhymes(0, 3) && rhymes(1, 2) && !rhymes(0, 1):
		return "ABBA"
	case rhymes(1, 3) && !rhymes(0, 2) && !rhymes(0, 1):
		return "ABCB"
	}
	return "FREE"
}
