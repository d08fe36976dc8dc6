// Package style defines the domain model of the style knowledge graph:
// the containment hierarchy (author, collection, document, section, line),
// the derived per-author entities, and the aggregate fingerprint.
package style

import "time"

type SectionType string

const (
	SectionVerse     SectionType = "verse"
	SectionChorus    SectionType = "chorus"
	SectionPreChorus SectionType = "pre_chorus"
	SectionBridge    SectionType = "bridge"
	SectionIntro     SectionType = "intro"
	SectionOutro     SectionType = "outro"
	SectionHook      SectionType = "hook"
	SectionRefrain   SectionType = "refrain"
	SectionMukhda    SectionType = "mukhda"
	SectionAntara    SectionType = "antara"
	SectionSthayi    SectionType = "sthayi"
	SectionSanchari  SectionType = "sanchari"
	SectionAbhog     SectionType = "abhog"
	SectionUnknown   SectionType = "unknown"
)

type RhymeType string

const (
	RhymePerfect       RhymeType = "perfect"
	RhymeSlant         RhymeType = "slant"
	RhymeAssonance     RhymeType = "assonance"
	RhymeCrossLanguage RhymeType = "cross_language"
)

type ArcShape string

const (
	ArcSteadyMelancholy ArcShape = "steady_melancholy"
	ArcGentleRise       ArcShape = "gentle_rise"
	ArcSlowBuild        ArcShape = "slow_build"
	ArcCrescendoCrash   ArcShape = "crescendo_crash"
	ArcOscillating      ArcShape = "oscillating"
)

type Language string

const (
	LanguageHindi    Language = "hindi"
	LanguageEnglish  Language = "english"
	LanguageHinglish Language = "hinglish"
)

// Author is the root of one graph partition. Everything below it carries
// AuthorID back-references so per-author queries never need tree walks.
type Author struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	GraphVersion int64     `json:"graphVersion"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Collection struct {
	ID       string `json:"id"`
	AuthorID string `json:"authorId"`
	Title    string `json:"title"`
	Year     int    `json:"year,omitempty"`
}

type Document struct {
	ID           string   `json:"id"`
	AuthorID     string   `json:"authorId"`
	CollectionID string   `json:"collectionId,omitempty"`
	Title        string   `json:"title"`
	Language     Language `json:"language"`
	RawText      string   `json:"-"`
}

type Section struct {
	ID         string      `json:"id"`
	AuthorID   string      `json:"authorId"`
	DocumentID string      `json:"documentId"`
	Type       SectionType `json:"type"`
	// Position is the zero-based order among siblings; FOLLOWS edges are
	// materialized from it.
	Position int    `json:"position"`
	Text     string `json:"text"`
}

type Line struct {
	ID            string `json:"id"`
	AuthorID      string `json:"authorId"`
	SectionID     string `json:"sectionId"`
	Position      int    `json:"position"`
	Text          string `json:"text"`
	EndWord       string `json:"endWord"`
	SyllableCount int    `json:"syllableCount"`
	CodeSwitched  bool   `json:"codeSwitched"`
}

// Phrase is a recurring 2-5 word expression. IsSignature holds when the
// in-corpus frequency exceeds the background baseline by SignatureRatio.
type Phrase struct {
	ID          string  `json:"id"`
	AuthorID    string  `json:"authorId"`
	Text        string  `json:"text"`
	Frequency   int     `json:"frequency"`
	IsSignature bool    `json:"isSignature"`
	Lift        float64 `json:"lift"`
}

type Motif struct {
	ID           string `json:"id"`
	AuthorID     string `json:"authorId"`
	SourceText   string `json:"sourceText"`
	SourceDomain string `json:"sourceDomain"`
	TargetDomain string `json:"targetDomain"`
	Frequency    int    `json:"frequency"`
}

type CulturalReference struct {
	ID        string `json:"id"`
	AuthorID  string `json:"authorId"`
	Text      string `json:"text"`
	Category  string `json:"category"`
	Frequency int    `json:"frequency"`
}

// RhymePair is an unordered word pair observed at line-ending position.
// WordA/WordB are stored in lexicographic order so the pair is unique.
type RhymePair struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	WordA     string    `json:"wordA"`
	WordB     string    `json:"wordB"`
	Type      RhymeType `json:"rhymeType"`
	Frequency int       `json:"frequency"`
}

type Theme struct {
	ID        string  `json:"id"`
	AuthorID  string  `json:"authorId"`
	Name      string  `json:"name"`
	Strength  float64 `json:"strength"`
	Frequency int     `json:"frequency"`
}

type Mood struct {
	Label   string  `json:"label"`
	Valence float64 `json:"valence"` // [-1,1]
	Arousal float64 `json:"arousal"` // [0,1]
}

type MeterPattern struct {
	ID        string `json:"id"`
	AuthorID  string `json:"authorId"`
	Syllables []int  `json:"syllables"`
	Frequency int    `json:"frequency"`
}

type StructureTemplate struct {
	ID        string        `json:"id"`
	AuthorID  string        `json:"authorId"`
	Pattern   []SectionType `json:"pattern"`
	Frequency int           `json:"frequency"`
	// AvgLineCounts holds the mean line count per pattern position.
	AvgLineCounts []float64 `json:"avgLineCounts,omitempty"`
}

type ThematicCluster struct {
	ID          string   `json:"id"`
	AuthorID    string   `json:"authorId"`
	Label       string   `json:"label"`
	Keywords    []string `json:"keywords"`
	DocumentIDs []string `json:"documentIds"`
	Cohesion    float64  `json:"cohesion"`
}

// ArcPoint is one section's mood sample inside an EmotionalArc.
type ArcPoint struct {
	SectionID string  `json:"sectionId"`
	Mood      Mood    `json:"mood"`
	Intensity float64 `json:"intensity"`
}

type EmotionalArc struct {
	ID         string     `json:"id"`
	AuthorID   string     `json:"authorId"`
	DocumentID string     `json:"documentId"`
	Shape      ArcShape   `json:"shape"`
	Points     []ArcPoint `json:"points"`
}

type RhymeTypeCount struct {
	Type  RhymeType `json:"type"`
	Count int       `json:"count"`
}

type StructureCount struct {
	Pattern []SectionType `json:"pattern"`
	Count   int           `json:"count"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// StyleFingerprint is the fixed-shape per-author aggregate. Exactly one
// exists per author; rebuilding replaces it atomically.
type StyleFingerprint struct {
	AuthorID            string           `json:"authorId"`
	GraphVersion        int64            `json:"graphVersion"`
	TypeTokenRatio      float64          `json:"typeTokenRatio"`
	Vocabulary          []WordCount      `json:"vocabulary"`
	AntiVocabulary      []string         `json:"antiVocabulary"`
	RepetitionIndex     float64          `json:"repetitionIndex"`
	CodeSwitchFrequency float64          `json:"codeSwitchFrequency"`
	AvgLineLength       float64          `json:"avgLineLength"`
	AvgSectionLength    float64          `json:"avgSectionLength"`
	MoodValenceMean     float64          `json:"moodValenceMean"`
	MoodArousalMean     float64          `json:"moodArousalMean"`
	TopRhymeTypes       []RhymeTypeCount `json:"topRhymeTypes"`
	TopStructures       []StructureCount `json:"topStructures"`
	MetaphorDensity     float64          `json:"metaphorDensity"`
	DocumentCount       int              `json:"documentCount"`
	LineCount           int              `json:"lineCount"`
	BuiltAt             time.Time        `json:"builtAt"`
}

// EmbeddingRecord attaches a fixed-dimension vector to an embeddable node.
type EmbeddingRecord struct {
	OwnerID   string    `json:"ownerId"`
	OwnerType NodeType  `json:"ownerType"`
	AuthorID  string    `json:"authorId"`
	Vector    []float32 `json:"-"`
}

type NodeType string

const (
	NodeAuthor   NodeType = "author"
	NodeDocument NodeType = "document"
	NodeSection  NodeType = "section"
	NodeLine     NodeType = "line"
	NodeTheme    NodeType = "theme"
	NodeCluster  NodeType = "thematic_cluster"
)

// IngestionReport summarizes one ingestion run. Warnings carry every
// degraded document or analyzer step; the run itself never aborts for them.
type IngestionReport struct {
	AuthorID     string         `json:"authorId"`
	GraphVersion int64          `json:"graphVersion"`
	NodeCounts   map[string]int `json:"nodeCounts"`
	SkippedDocs  []string       `json:"skippedDocs,omitempty"`
	Warnings     []string       `json:"warnings,omitempty"`
	Duration     time.Duration  `json:"durationNs"`
}

// RetrievalMode selects the facet strategy for one request.
type RetrievalMode string

const (
	// ModeGraphBacked serves facets from the derived graph entities.
	ModeGraphBacked RetrievalMode = "graphBacked"
	// ModeFlatFallback serves embedding-only passage retrieval when the
	// author has sections but no derived analytics yet.
	ModeFlatFallback RetrievalMode = "flatFallback"
)

// ScoredSection is a retrieval candidate with its fused rank score.
type ScoredSection struct {
	Section Section `json:"section"`
	Score   float64 `json:"score"`
}

// FacetBundle is the fan-in of all retrieval facets for one request.
// Any facet may be empty when its query timed out or the graph lacks data.
type FacetBundle struct {
	AuthorID     string              `json:"authorId"`
	GraphVersion int64               `json:"graphVersion"`
	Mode         RetrievalMode       `json:"mode"`
	Topic        string              `json:"topic"`
	Passages     []ScoredSection     `json:"passages,omitempty"`
	Fingerprint  *StyleFingerprint   `json:"fingerprint,omitempty"`
	Phrases      []Phrase            `json:"phrases,omitempty"`
	RhymePairs   []RhymePair         `json:"rhymePairs,omitempty"`
	ArcShapes    []ArcShape          `json:"arcShapes,omitempty"`
	Motifs       []Motif             `json:"motifs,omitempty"`
	Cultural     []CulturalReference `json:"cultural,omitempty"`
	Structures   []StructureTemplate `json:"structures,omitempty"`
	Timeouts     []string            `json:"timeouts,omitempty"`
}
