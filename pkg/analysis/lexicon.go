package analysis

import "github.com/verseprint/backend/pkg/style"

// moodVA places each mood label in valence/arousal space.
var moodVA = map[string]style.Mood{
	"melancholy": {Label: "melancholy", Valence: -0.6, Arousal: 0.3},
	"longing":    {Label: "longing", Valence: -0.3, Arousal: 0.4},
	"nostalgic":  {Label: "nostalgic", Valence: -0.2, Arousal: 0.3},
	"romantic":   {Label: "romantic", Valence: 0.6, Arousal: 0.5},
	"joyful":     {Label: "joyful", Valence: 0.8, Arousal: 0.7},
	"devotional": {Label: "devotional", Valence: 0.5, Arousal: 0.4},
	"rebellious": {Label: "rebellious", Valence: -0.1, Arousal: 0.8},
	"peaceful":   {Label: "peaceful", Valence: 0.4, Arousal: 0.15},
}

var moodKeywords = map[string][]string{
	"melancholy": {"tears", "alone", "broken", "dard", "gham", "aansoo", "tanha", "cry", "sorrow", "judaai"},
	"longing":    {"yaad", "intezaar", "waiting", "miss", "door", "tadap", "bekarar", "yearn"},
	"nostalgic":  {"remember", "yaadein", "purani", "bachpan", "those days", "woh din", "memories"},
	"romantic":   {"pyaar", "ishq", "mohabbat", "love", "dil", "sanam", "mehboob", "kiss", "jaan"},
	"joyful":     {"khushi", "dance", "nach", "celebration", "smile", "muskan", "happy", "jashn"},
	"devotional": {"rab", "khuda", "bhagwan", "prayer", "dua", "mandir", "sajda", "ram", "maula"},
	"rebellious": {"fight", "azadi", "break", "rise", "inquilab", "baghawat", "rebel", "burn"},
	"peaceful":   {"shanti", "sukoon", "calm", "quiet", "chain", "thehr", "still"},
}

var themeKeywords = map[string][]string{
	"love":         {"pyaar", "ishq", "love", "mohabbat", "dil", "heart"},
	"separation":   {"judaai", "door", "alvida", "goodbye", "bichhadna", "leaving"},
	"devotion":     {"rab", "khuda", "bhakti", "prayer", "dua", "god"},
	"nature":       {"baarish", "rain", "chand", "moon", "hawa", "wind", "darya", "river", "monsoon"},
	"nostalgia":    {"yaadein", "memories", "bachpan", "childhood", "purani"},
	"intoxication": {"nasha", "sharab", "wine", "drunk", "khumaar"},
	"night":        {"raat", "night", "andhera", "dark", "sitara"},
	"journey":      {"safar", "raasta", "road", "manzil", "chalna", "journey"},
}

// culturalReferences is the keyword lexicon for reference spotting, keyed by
// category.
var culturalReferences = map[string][]string{
	"mythology": {"radha", "krishna", "heer", "ranjha", "mirza", "sahiban", "laila", "majnu", "shiv", "ram", "sita"},
	"place":     {"dilli", "delhi", "bombay", "mumbai", "punjab", "ganga", "yamuna", "kashi", "banaras", "lahore"},
	"festival":  {"diwali", "holi", "eid", "lohri", "baisakhi", "karva chauth"},
	"cinema":    {"bollywood", "filmi", "shahrukh", "silver screen"},
	"music":     {"ghazal", "qawwali", "sitar", "tabla", "raag", "sur", "taal"},
}

// metaphorPatterns is the keyword fallback when the classify capability is
// unavailable: presence of a source-domain word alongside a target-domain
// word in one line counts as a motif observation.
type metaphorPattern struct {
	SourceDomain string
	TargetDomain string
	SourceWords  []string
	TargetWords  []string
}

var metaphorPatterns = []metaphorPattern{
	{"fire", "love", []string{"aag", "fire", "flame", "jalna", "burn"}, []string{"ishq", "pyaar", "love", "dil"}},
	{"ocean", "emotion", []string{"samundar", "ocean", "sea", "lehron", "wave"}, []string{"aankhon", "dil", "gham", "tears"}},
	{"moon", "beloved", []string{"chand", "moon", "chandni"}, []string{"chehra", "face", "sanam", "mehboob"}},
	{"rain", "memory", []string{"baarish", "rain", "boond"}, []string{"yaad", "yaadein", "memories"}},
	{"night", "solitude", []string{"raat", "night", "andhera"}, []string{"tanha", "akela", "alone"}},
	{"road", "life", []string{"raasta", "safar", "road", "manzil"}, []string{"zindagi", "life", "umr"}},
}
