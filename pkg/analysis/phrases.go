package analysis

import (
	"sort"
	"strings"
)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"in": true, "on": true, "to": true, "is": true, "it": true, "my": true,
	"me": true, "i": true, "you": true, "we": true, "he": true, "she": true,
	"for": true, "with": true, "that": true, "this": true, "be": true,
	"ka": true, "ki": true, "ke": true, "ko": true, "se": true, "mein": true,
	"hai": true, "hain": true, "ho": true, "na": true, "ne": true,
	"tu": true, "main": true, "tera": true, "mera": true, "kya": true,
}

// backgroundFreq is a coarse per-million frequency baseline for common
// words; unseen words fall back to backgroundFloor. Signature detection
// only needs the ratio between author usage and this baseline, so a small
// table of frequent words is enough to suppress generic phrases.
var backgroundFreq = map[string]float64{
	"love": 900, "heart": 600, "night": 550, "time": 800, "day": 700,
	"life": 650, "eyes": 400, "dream": 300, "rain": 250, "fire": 220,
	"light": 380, "dil": 500, "pyaar": 350, "ishq": 200, "raat": 280,
	"chand": 150, "baarish": 120, "yaad": 260, "sapna": 110, "dard": 180,
}

const (
	backgroundFloor = 40.0
	// A phrase is a signature when its per-million rate in the author's
	// corpus exceeds the background baseline by this multiplier.
	SignatureRatio = 3.0
	minPhraseFreq  = 3
)

// PhraseStat is an extracted n-gram before graph IDs are assigned.
type PhraseStat struct {
	Text        string
	Frequency   int
	Lift        float64
	IsSignature bool
}

// Tokenize lowercases and splits on non-word runes, keeping Devanagari.
func Tokenize(text string) []string {
	var words []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || (r >= 0x0900 && r <= 0x097F) || r == '\'' {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

// ExtractPhrases counts sliding 2-5 word n-grams per line across the whole
// corpus and keeps those seen at least minPhraseFreq times. Phrases that
// start or end on a stopword, or consist only of stopwords, are dropped.
func ExtractPhrases(lines []string) []PhraseStat {
	counts := make(map[string]int)
	totalWords := 0
	for _, line := range lines {
		words := Tokenize(line)
		totalWords += len(words)
		for n := 2; n <= 5; n++ {
			for i := 0; i+n <= len(words); i++ {
				gram := words[i : i+n]
				if !keepGram(gram) {
					continue
				}
				counts[strings.Join(gram, " ")]++
			}
		}
	}
	if totalWords == 0 {
		return nil
	}

	var out []PhraseStat
	for text, freq := range counts {
		if freq < minPhraseFreq {
			continue
		}
		perMillion := float64(freq) / float64(totalWords) * 1_000_000
		bg := phraseBackground(text)
		lift := perMillion / bg
		out = append(out, PhraseStat{
			Text:        text,
			Frequency:   freq,
			Lift:        lift,
			IsSignature: lift >= SignatureRatio,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Text < out[j].Text
	})
	return out
}

func keepGram(gram []string) bool {
	if stopwords[gram[0]] || stopwords[gram[len(gram)-1]] {
		return false
	}
	for _, w := range gram {
		if !stopwords[w] {
			return true
		}
	}
	return false
}

// phraseBackground estimates a phrase's baseline rate from its rarest word.
func phraseBackground(phrase string) float64 {
	min := 0.0
	for _, w := range strings.Fields(phrase) {
		f, ok := backgroundFreq[w]
		if !ok {
			f = backgroundFloor
		}
		if min == 0 || f < min {
			min = f
		}
	}
	if min == 0 {
		return backgroundFloor
	}
	return min
}

// WordFrequencies counts single tokens over the corpus, used by the
// fingerprint's vocabulary and anti-vocabulary computation.
func WordFrequencies(lines []string) map[string]int {
	freq := make(map[string]int)
	for _, line := range lines {
		for _, w := range Tokenize(line) {
			freq[w]++
		}
	}
	return freq
}

// AntiVocabulary returns common background words the author never uses,
// usable as negative constraints during generation.
func AntiVocabulary(freq map[string]int, limit int) []string {
	type bg struct {
		word string
		rate float64
	}
	var candidates []bg
	for w, rate := range backgroundFreq {
		if freq[w] == 0 {
			candidates = append(candidates, bg{w, rate})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].rate != candidates[j].rate {
			return candidates[i].rate > candidates[j].rate
		}
		return candidates[i].word < candidates[j].word
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.word
	}
	return out
}
