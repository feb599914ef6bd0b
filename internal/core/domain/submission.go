package domain

// SubmissionMetadata is the client-side context block attached to a
// creation job, useful for backend diagnostics.
type SubmissionMetadata struct {
	Source         string `json:"submission_source"`
	DurationMS     int64  `json:"duration_ms"`
	MainImageIndex int    `json:"main_image_index"`
}

// Submission is the fully prepared payload handed to the job service:
// draft fields plus staged image URLs and the resolved category chain.
type Submission struct {
	Draft     ListingDraft
	ImageURLs []string
	Category  CategoryResolution
	ActorID   string
	Metadata  SubmissionMetadata
}
