package style

import "errors"

// Only two conditions escalate to the caller: an author with no graph data
// at all, and a generation capability outage after all retries. Everything
// else degrades into report warnings.
var (
	ErrNoAuthorData          = errors.New("no graph data for author")
	ErrAuthorNotFound        = errors.New("author not found")
	ErrGenerationUnavailable = errors.New("generation capability unavailable")
)
