package domain

import "time"

type ListingStatus string

const (
	StatusPendingApproval ListingStatus = "pending_approval"
	StatusActive          ListingStatus = "active"
	StatusRejected        ListingStatus = "rejected"
	StatusExpired         ListingStatus = "expired"
)

// PremiumFlags carries the named paid-feature toggles a seller can attach
// to a submission. Quota enforcement happens elsewhere.
type PremiumFlags struct {
	Featured      bool `json:"featured"`
	UrgentPremium bool `json:"urgent_premium"`
	Showcase      bool `json:"showcase"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ListingDraft is the immutable client-side input to the submission
// pipeline. Category is the human-readable path; numeric ids are resolved
// during submission.
type ListingDraft struct {
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Price          float64             `json:"price"`
	CategoryPath   []string            `json:"category_path"`
	Location       string              `json:"location"`
	Images         []ImageSource       `json:"images"`
	MainImageIndex int                 `json:"main_image_index"`
	Attributes     map[string][]string `json:"attributes,omitempty"`
	Condition      string              `json:"condition,omitempty"`
	Urgent         bool                `json:"urgent"`
	Premium        PremiumFlags        `json:"premium"`
	Geolocation    *GeoPoint           `json:"geolocation,omitempty"`
	ExpiresAt      *time.Time          `json:"expires_at,omitempty"`
}

// ListingPatch describes an update; nil fields are left untouched.
// Images, when present, replace the stored image set and go through
// staging like a fresh submission.
type ListingPatch struct {
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Price       *float64            `json:"price,omitempty"`
	Location    *string             `json:"location,omitempty"`
	Attributes  map[string][]string `json:"attributes,omitempty"`
	Condition   *string             `json:"condition,omitempty"`
	Urgent      *bool               `json:"urgent,omitempty"`
	Images      []ImageSource       `json:"images,omitempty"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
}

// ListingRecord is the authoritative persisted entity. The pipeline fetches
// it after a completed job; only the direct write path ever constructs one.
type ListingRecord struct {
	ID           string              `json:"id"`
	ActorID      string              `json:"actor_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Price        float64             `json:"price"`
	CategoryID   *int64              `json:"category_id,omitempty"`
	CategoryPath []int64             `json:"category_path,omitempty"`
	Location     string              `json:"location"`
	ImageURLs    []string            `json:"image_urls"`
	Attributes   map[string][]string `json:"attributes,omitempty"`
	Condition    string              `json:"condition,omitempty"`
	Urgent       bool                `json:"urgent"`
	Premium      PremiumFlags        `json:"premium"`
	Status       ListingStatus       `json:"status"`
	ExpiresAt    *time.Time          `json:"expires_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// StubRecord is the degraded result returned when the job succeeded but the
// authoritative read is lagging behind. Callers get the id and the assumed
// initial status instead of an error.
func StubRecord(listingID string) *ListingRecord {
	return &ListingRecord{
		ID:     listingID,
		Status: StatusPendingApproval,
	}
}
