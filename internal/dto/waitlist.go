package dto

import "time"

// EnrollRequest is the raw enrollment payload. Fields stay untyped so the
// validator can reject non-string values with a precise message.
type EnrollRequest struct {
	Email interface{} `json:"email" swaggertype:"string"`
	Name  interface{} `json:"name,omitempty" swaggertype:"string"`
}

// EnrollResult is returned for every successful enrollment, fresh or repeated.
type EnrollResult struct {
	Success         bool `json:"success"`
	Position        int  `json:"position"`
	AlreadyEnrolled bool `json:"alreadyEnrolled"`
}

// RecentSignup is the public projection of a recent entry.
type RecentSignup struct {
	Email     string    `json:"email" db:"email"`
	Name      *string   `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// WaitlistStatsResponse captures the aggregated waitlist overview.
type WaitlistStatsResponse struct {
	TotalCount    int            `json:"totalCount"`
	ThisWeek      int            `json:"thisWeek"`
	WithNames     int            `json:"withNames"`
	RecentSignups []RecentSignup `json:"recentSignups"`
}

// ExportFormat selects the rendering of a waitlist export.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
