package domain

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether no further status transitions can occur.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

type JobResult struct {
	ListingID string `json:"listingId"`
}

// Job is the server-side unit of asynchronous work. Created once per
// submission attempt, mutated only by the backend, observed read-only here.
type Job struct {
	ID           string     `json:"jobId"`
	Status       JobStatus  `json:"status"`
	Progress     *int       `json:"progress,omitempty"`
	Result       *JobResult `json:"result,omitempty"`
	ErrorMessage string     `json:"error,omitempty"`
}
