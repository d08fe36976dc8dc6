package queue

// IngestDocument is one document reference inside an ingest message.
// Exactly one of Text or ObjectKey is set; object keys are resolved
// against the corpus bucket on the worker.
type IngestDocument struct {
	Title        string `json:"title"`
	CollectionID string `json:"collection_id,omitempty"`
	Text         string `json:"text,omitempty"`
	ObjectKey    string `json:"object_key,omitempty"`
}

type IngestMsg struct {
	AuthorID   string           `json:"author_id"`
	AuthorName string           `json:"author_name"`
	Documents  []IngestDocument `json:"documents"`
}

type DeleteMsg struct {
	AuthorID string `json:"author_id"`
}
