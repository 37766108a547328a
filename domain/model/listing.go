package model

import (
	"time"

	"github.com/google/uuid"
)

// ListingType is the employment category of a job posting.
type ListingType string

const (
	ListingTypeFullTime ListingType = "Full-Time"
	ListingTypePartTime ListingType = "Part-Time"
	ListingTypeContract ListingType = "Contract"
)

// ListingStatus controls public visibility of a job posting.
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "Active"
	ListingStatusInactive ListingStatus = "Inactive"
)

// Toggle returns the opposite status.
func (s ListingStatus) Toggle() ListingStatus {
	if s == ListingStatusActive {
		return ListingStatusInactive
	}
	return ListingStatusActive
}

// Listing is a job posting owned by the user who created it.
type Listing struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Company     string        `json:"company"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Type        ListingType   `json:"type"`
	Status      ListingStatus `json:"status"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     *time.Time    `json:"end_date"`
	UserID      uuid.UUID     `json:"user_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ListingEvent is published to the owner after a listing mutation.
type ListingEvent struct {
	Type      string        `json:"type"` // created | updated | deleted | status_toggled
	ListingID uuid.UUID     `json:"listing_id"`
	Status    ListingStatus `json:"status,omitempty"`
}
