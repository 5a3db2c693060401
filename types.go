package guide

import "time"

// Submission statuses.
const (
	StatusPending   = "pending"
	StatusSending   = "sending"
	StatusForwarded = "forwarded"
	StatusFailed    = "failed"
)

// Submission is one accepted form post, stored until it has been forwarded
// and kept afterwards for the admin inbox.
type Submission struct {
	ID        string
	Form      string
	Fields    map[string]string
	Status    string
	Attempts  int
	LastError string
	RemoteIP  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
