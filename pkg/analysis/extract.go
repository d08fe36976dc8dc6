package analysis

import (
	"sort"
	"strings"
)

// ThemeScore is a lexicon-scored theme over a document or corpus slice.
type ThemeScore struct {
	Name      string
	Frequency int
	Strength  float64
}

// ScoreThemes counts theme-lexicon hits over the given text. Strength is
// the theme's share of all hits, so it stays comparable across corpus sizes.
func ScoreThemes(text string) []ThemeScore {
	lower := strings.ToLower(text)
	var out []ThemeScore
	total := 0
	for name, words := range themeKeywords {
		hits := 0
		for _, w := range words {
			hits += strings.Count(lower, w)
		}
		if hits > 0 {
			out = append(out, ThemeScore{Name: name, Frequency: hits})
			total += hits
		}
	}
	for i := range out {
		out[i].Strength = float64(out[i].Frequency) / float64(total)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ReferenceHit is a spotted cultural reference.
type ReferenceHit struct {
	Text      string
	Category  string
	Frequency int
}

// SpotReferences runs the cultural-reference lexicon over the corpus lines.
func SpotReferences(lines []string) []ReferenceHit {
	counts := make(map[string]*ReferenceHit)
	for _, line := range lines {
		lower := strings.ToLower(line)
		for category, words := range culturalReferences {
			for _, w := range words {
				n := strings.Count(lower, w)
				if n == 0 {
					continue
				}
				if hit, ok := counts[w]; ok {
					hit.Frequency += n
				} else {
					counts[w] = &ReferenceHit{Text: w, Category: category, Frequency: n}
				}
			}
		}
	}
	out := make([]ReferenceHit, 0, len(counts))
	for _, h := range counts {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Text < out[j].Text
	})
	return out
}

// MotifHit is one metaphor observation, either classifier-extracted or
// matched by the keyword fallback.
type MotifHit struct {
	SourceText   string
	SourceDomain string
	TargetDomain string
}

// FallbackMotifs applies the keyword pattern table to a batch of lines,
// used when the classify capability errors or is not configured. Dedup on
// normalized source text happens at the aggregation layer.
func FallbackMotifs(lines []string) []MotifHit {
	var out []MotifHit
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, p := range metaphorPatterns {
			if firstContained(lower, p.SourceWords) == "" {
				continue
			}
			if firstContained(lower, p.TargetWords) == "" {
				continue
			}
			out = append(out, MotifHit{
				SourceText:   strings.TrimSpace(line),
				SourceDomain: p.SourceDomain,
				TargetDomain: p.TargetDomain,
			})
			break
		}
	}
	return out
}

func firstContained(haystack string, words []string) string {
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return w
		}
	}
	return ""
}

// NormalizeMotifKey canonicalizes a motif's source text for deduplication
// across re-runs and across classifier/fallback extraction paths.
func NormalizeMotifKey(sourceText string) string {
	return strings.Join(Tokenize(sourceText), " ")
}
