// Package retrieval turns a style request into a FacetBundle: it parses
// the request, fans out the retrieval facets concurrently against the
// store, fuses hybrid passage rankings and caches the per-author facets
// until the graph version moves.
package retrieval

import (
	"strings"

	"github.com/verseprint/backend/pkg/analysis"
	"github.com/verseprint/backend/pkg/style"
)

// Request is the caller-facing retrieval input.
type Request struct {
	Topic          string
	MoodSignals    []string
	StructuralHint string
}

// ParsedRequest is the decomposed request. Parsing is pure; no I/O happens
// before the facet fan-out.
type ParsedRequest struct {
	Topic    string
	Moods    []style.Mood
	Pattern  []style.SectionType
	Language style.Language
}

// ParseRequest decomposes a request into topic text, mood signals, a
// structural hint and a language preference. Unknown mood labels fall back
// to a lexicon estimate over the topic; an empty hint leaves the pattern
// nil so the assembler uses the author's dominant template.
func ParseRequest(req Request) ParsedRequest {
	parsed := ParsedRequest{
		Topic:    strings.TrimSpace(req.Topic),
		Language: analysis.DetectLanguage(req.Topic),
	}

	for _, label := range req.MoodSignals {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" {
			continue
		}
		parsed.Moods = append(parsed.Moods, analysis.MoodByLabel(label))
	}
	if len(parsed.Moods) == 0 {
		if mood, confidence := analysis.EstimateMood(parsed.Topic); confidence > 0 {
			parsed.Moods = []style.Mood{mood}
		}
	}

	parsed.Pattern = ParseStructuralHint(req.StructuralHint)
	return parsed
}

// ParseStructuralHint reads a section-type sequence like
// "verse-chorus-verse" or "verse, chorus, verse". Unrecognized names map
// to the generic unknown type rather than being dropped, so the requested
// section count survives.
func ParseStructuralHint(hint string) []style.SectionType {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return nil
	}
	tokens := strings.FieldsFunc(hint, func(r rune) bool {
		return r == ',' || r == '>' || r == ' '
	})
	var pattern []style.SectionType
	for _, tok := range tokens {
		// Hyphenated names ("pre-chorus") are single types; only split on
		// hyphens when the whole token is not a known type.
		if t, ok := analysis.ParseSectionHeader(tok + ":"); ok {
			pattern = append(pattern, t)
			continue
		}
		for _, part := range strings.Split(tok, "-") {
			if part == "" {
				continue
			}
			if t, ok := analysis.ParseSectionHeader(part + ":"); ok {
				pattern = append(pattern, t)
			} else {
				pattern = append(pattern, style.SectionUnknown)
			}
		}
	}
	return pattern
}
