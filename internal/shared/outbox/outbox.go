package outbox

// Status values for audit outbox rows. A row is written pending inside the
// same commit scope as the state change and flipped to published once the
// broker accepts it.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
)
