package models

import "time"

// WaitlistStatus represents the lifecycle of a waitlist entry.
type WaitlistStatus string

// Possible waitlist statuses. Only pending is ever written by this service.
const (
	WaitlistStatusPending   WaitlistStatus = "pending"
	WaitlistStatusInvited   WaitlistStatus = "invited"
	WaitlistStatusActivated WaitlistStatus = "activated"
)

// Valid reports whether s is a known status.
func (s WaitlistStatus) Valid() bool {
	switch s {
	case WaitlistStatusPending, WaitlistStatusInvited, WaitlistStatusActivated:
		return true
	}
	return false
}

// WaitlistEntry is a single email's signup.
type WaitlistEntry struct {
	ID        string         `db:"id" json:"id"`
	Email     string         `db:"email" json:"email"`
	Name      *string        `db:"name" json:"name"`
	Status    WaitlistStatus `db:"status" json:"status"`
	Notes     *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

// WaitlistFilter provides filters for listing entries.
type WaitlistFilter struct {
	Status   WaitlistStatus
	Page     int
	PageSize int
}

// WaitlistStats aggregates counters for the admin overview.
type WaitlistStats struct {
	TotalCount int `db:"total_count"`
	ThisWeek   int `db:"this_week"`
	WithNames  int `db:"with_names"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}
