// Package prompt assembles retrieved facets into the two-part generation
// payload: a stable identity-and-constraints system block and a
// topic-specific examples-and-task user block, each under its own token
// cap.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verseprint/backend/pkg/style"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultEncoding is the token encoding used for budget math.
	DefaultEncoding = "o200k_base"

	// SystemBlockBudget caps the identity/constraints block.
	SystemBlockBudget = 3500
	// UserBlockBudget caps the examples/task block.
	UserBlockBudget = 8000
	// TotalBudget caps the whole payload.
	TotalBudget = 15000
)

// Payload is one assembled prompt. FacetsUsed names every facet that
// contributed text; Truncated names the facets cut to fit the budget.
type Payload struct {
	SystemBlock string
	UserBlock   string
	TokenCount  int
	FacetsUsed  []string
	Truncated   []string
}

// AssembleInput carries the retrieval output plus the request context into
// the assembler.
type AssembleInput struct {
	AuthorName string
	Bundle     *style.FacetBundle
	Pattern    []style.SectionType
	Moods      []style.Mood
	// NegativeExamples holds failed earlier attempts appended to the task
	// block on full retries.
	NegativeExamples []string
	// RepairLines maps flagged line numbers to their text on partial
	// retries; the task asks to rewrite only these.
	RepairLines map[int]string
	// KeepText is the accepted remainder reused verbatim on partial
	// retries.
	KeepText string
}

// Assembler renders facets into budgeted blocks. Safe for concurrent use.
type Assembler struct {
	enc          *tiktoken.Tiktoken
	systemBudget int
	userBudget   int
}

// NewAssembler loads the token encoding. The zero budgets fall back to the
// package defaults.
func NewAssembler(encoding string, systemBudget, userBudget int) (*Assembler, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load token encoding %q: %w", encoding, err)
	}
	if systemBudget <= 0 {
		systemBudget = SystemBlockBudget
	}
	if userBudget <= 0 {
		userBudget = UserBlockBudget
	}
	return &Assembler{enc: enc, systemBudget: systemBudget, userBudget: userBudget}, nil
}

// CountTokens returns the encoding's token count for the text.
func (a *Assembler) CountTokens(text string) int {
	return len(a.enc.Encode(text, nil, nil))
}

// chunk is one renderable facet with its priority tier. Lower tier numbers
// are included first; within a block chunks are already ordered.
type chunk struct {
	facet string
	text  string
}

// Assemble renders the payload. Chunks are included in priority order per
// block; the chunk that overflows its block budget is truncated line-wise
// to fit and every later chunk in that block is dropped.
func (a *Assembler) Assemble(in AssembleInput) Payload {
	p := Payload{}

	systemChunks := a.systemChunks(in)
	userChunks := a.userChunks(in)

	p.SystemBlock = a.packBlock(systemChunks, a.systemBudget, &p)
	p.UserBlock = a.packBlock(userChunks, a.userBudget, &p)
	p.TokenCount = a.CountTokens(p.SystemBlock) + a.CountTokens(p.UserBlock)
	return p
}

func (a *Assembler) packBlock(chunks []chunk, budget int, p *Payload) string {
	var b strings.Builder
	remaining := budget
	for _, c := range chunks {
		if c.text == "" {
			continue
		}
		if remaining <= 0 {
			break
		}
		n := a.CountTokens(c.text)
		if n > remaining {
			cut := a.truncateToTokens(c.text, remaining)
			if cut != "" {
				b.WriteString(cut)
				b.WriteString("\n")
				p.FacetsUsed = append(p.FacetsUsed, c.facet)
				p.Truncated = append(p.Truncated, c.facet)
			}
			remaining = 0
			break
		}
		b.WriteString(c.text)
		b.WriteString("\n")
		p.FacetsUsed = append(p.FacetsUsed, c.facet)
		remaining -= n
	}
	return strings.TrimRight(b.String(), "\n")
}

// truncateToTokens drops trailing lines until the text fits the budget.
func (a *Assembler) truncateToTokens(text string, budget int) string {
	lines := strings.Split(text, "\n")
	for len(lines) > 0 {
		candidate := strings.Join(lines, "\n")
		if a.CountTokens(candidate) <= budget {
			return candidate
		}
		lines = lines[:len(lines)-1]
	}
	return ""
}

func (a *Assembler) systemChunks(in AssembleInput) []chunk {
	bundle := in.Bundle
	name := in.AuthorName
	if name == "" {
		name = "the author"
	}

	chunks := []chunk{{
		facet: "identity",
		text: fmt.Sprintf(
			"You are writing lyrics in the exact style of %s. Stay inside the stylistic profile below; never drift into a generic register.",
			name),
	}}

	if fp := bundle.Fingerprint; fp != nil {
		chunks = append(chunks, chunk{facet: "fingerprint", text: renderFingerprint(fp)})
	}
	if text := renderStructure(in.Pattern, bundle.Structures); text != "" {
		chunks = append(chunks, chunk{facet: "structure", text: text})
	}
	if len(bundle.Phrases) > 0 {
		chunks = append(chunks, chunk{facet: "phrases", text: renderPhrases(bundle.Phrases)})
	}
	if len(bundle.RhymePairs) > 0 {
		chunks = append(chunks, chunk{facet: "rhyme", text: renderRhymes(bundle.RhymePairs)})
	}
	if text := renderArc(in.Moods, bundle.ArcShapes); text != "" {
		chunks = append(chunks, chunk{facet: "arc", text: text})
	}
	if fp := bundle.Fingerprint; fp != nil && len(fp.AntiVocabulary) > 0 {
		chunks = append(chunks, chunk{
			facet: "anti_vocabulary",
			text:  "Never use these words (foreign to this author): " + strings.Join(fp.AntiVocabulary, ", ") + ".",
		})
	}
	return chunks
}

func (a *Assembler) userChunks(in AssembleInput) []chunk {
	bundle := in.Bundle

	chunks := []chunk{{facet: "task", text: renderTask(in)}}

	if len(bundle.Passages) > 0 {
		chunks = append(chunks, chunk{facet: "passages", text: renderPassages(bundle.Passages)})
	}
	if len(bundle.Motifs) > 0 {
		chunks = append(chunks, chunk{facet: "motifs", text: renderMotifs(bundle.Motifs)})
	}
	if len(bundle.Cultural) > 0 {
		chunks = append(chunks, chunk{facet: "cultural", text: renderCultural(bundle.Cultural)})
	}
	if len(in.NegativeExamples) > 0 {
		var b strings.Builder
		b.WriteString("Earlier attempts were rejected for drifting off-style. Do not repeat them:\n")
		for i, ex := range in.NegativeExamples {
			fmt.Fprintf(&b, "--- rejected attempt %d ---\n%s\n", i+1, ex)
		}
		chunks = append(chunks, chunk{facet: "negative_examples", text: strings.TrimRight(b.String(), "\n")})
	}
	return chunks
}

func renderTask(in AssembleInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write lyrics about: %s\n", in.Bundle.Topic)

	if len(in.RepairLines) > 0 && in.KeepText != "" {
		b.WriteString("Revise the draft below. Rewrite ONLY the flagged lines; keep every other line exactly as written.\n")
		fmt.Fprintf(&b, "Draft:\n%s\n", in.KeepText)
		b.WriteString("Flagged lines:\n")
		for _, n := range sortedKeys(in.RepairLines) {
			fmt.Fprintf(&b, "  line %d: %s\n", n, in.RepairLines[n])
		}
	}
	if len(in.Pattern) > 0 {
		parts := make([]string, len(in.Pattern))
		for i, t := range in.Pattern {
			parts[i] = string(t)
		}
		fmt.Fprintf(&b, "Use exactly this section sequence, with a bracketed header per section: [%s]\n", strings.Join(parts, "] ["))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderFingerprint(fp *style.StyleFingerprint) string {
	var b strings.Builder
	b.WriteString("Stylistic profile:\n")
	fmt.Fprintf(&b, "  vocabulary richness (type/token): %.2f\n", fp.TypeTokenRatio)
	fmt.Fprintf(&b, "  average line length: %.1f words\n", fp.AvgLineLength)
	fmt.Fprintf(&b, "  code-switching frequency: %.0f%% of lines mix scripts\n", fp.CodeSwitchFrequency*100)
	fmt.Fprintf(&b, "  repetition index: %.2f\n", fp.RepetitionIndex)
	fmt.Fprintf(&b, "  metaphor density: %.2f per 100 words\n", fp.MetaphorDensity)
	if len(fp.Vocabulary) > 0 {
		words := make([]string, 0, min(len(fp.Vocabulary), 30))
		for _, wc := range fp.Vocabulary[:min(len(fp.Vocabulary), 30)] {
			words = append(words, wc.Word)
		}
		fmt.Fprintf(&b, "  characteristic vocabulary: %s\n", strings.Join(words, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderStructure(requested []style.SectionType, templates []style.StructureTemplate) string {
	if len(requested) == 0 && len(templates) == 0 {
		return ""
	}
	var b strings.Builder
	if len(requested) > 0 {
		parts := make([]string, len(requested))
		for i, t := range requested {
			parts[i] = string(t)
		}
		fmt.Fprintf(&b, "Required structure: %s\n", strings.Join(parts, " -> "))
	}
	if len(templates) > 0 {
		b.WriteString("The author's common structures:\n")
		for _, tpl := range templates {
			parts := make([]string, len(tpl.Pattern))
			for i, t := range tpl.Pattern {
				parts[i] = string(t)
			}
			fmt.Fprintf(&b, "  %s (used %d times", strings.Join(parts, " -> "), tpl.Frequency)
			if len(tpl.AvgLineCounts) > 0 {
				counts := make([]string, len(tpl.AvgLineCounts))
				for i, c := range tpl.AvgLineCounts {
					counts[i] = fmt.Sprintf("%.0f", c)
				}
				fmt.Fprintf(&b, ", ~%s lines per section", strings.Join(counts, "/"))
			}
			b.WriteString(")\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderPhrases(phrases []style.Phrase) string {
	var b strings.Builder
	b.WriteString("Signature phrases to weave in naturally:\n")
	for _, p := range phrases {
		fmt.Fprintf(&b, "  %q (seen %d times)\n", p.Text, p.Frequency)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderRhymes(pairs []style.RhymePair) string {
	var b strings.Builder
	b.WriteString("Preferred rhyme pairs and types:\n")
	for _, p := range pairs {
		fmt.Fprintf(&b, "  %s / %s (%s)\n", p.WordA, p.WordB, p.Type)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderArc(moods []style.Mood, shapes []style.ArcShape) string {
	if len(moods) == 0 && len(shapes) == 0 {
		return ""
	}
	var b strings.Builder
	if len(moods) > 0 {
		labels := make([]string, len(moods))
		for i, m := range moods {
			labels[i] = m.Label
		}
		fmt.Fprintf(&b, "Requested mood: %s\n", strings.Join(labels, ", "))
	}
	if len(shapes) > 0 {
		parts := make([]string, len(shapes))
		for i, s := range shapes {
			parts[i] = string(s)
		}
		fmt.Fprintf(&b, "Emotional trajectory, author's dominant first: %s\n", strings.Join(parts, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderPassages(passages []style.ScoredSection) string {
	var b strings.Builder
	b.WriteString("Reference passages from the author's own work:\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "--- example %d (%s) ---\n%s\n", i+1, p.Section.Type, p.Section.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderMotifs(motifs []style.Motif) string {
	var b strings.Builder
	b.WriteString("Recurring imagery to draw on:\n")
	for _, m := range motifs {
		fmt.Fprintf(&b, "  %s standing for %s (e.g. %q)\n", m.SourceDomain, m.TargetDomain, m.SourceText)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCultural(refs []style.CulturalReference) string {
	var b strings.Builder
	b.WriteString("Cultural references the author reaches for:\n")
	for _, r := range refs {
		fmt.Fprintf(&b, "  %s (%s)\n", r.Text, r.Category)
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
