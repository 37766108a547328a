package dto

import (
	"math"

	"job-board/domain/model"

	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// ListingFilter is the user-facing filter set. The url tags define the
// canonical encoding used for cache keys, so pagination never appears here.
type ListingFilter struct {
	Type     string `url:"type,omitempty" form:"type"`
	Status   string `url:"status,omitempty" form:"status"`
	Company  string `url:"company,omitempty" form:"company"`
	Location string `url:"location,omitempty" form:"location"`
	Search   string `url:"search,omitempty" form:"search"`
}

func (f ListingFilter) IsEmpty() bool {
	return f == ListingFilter{}
}

type Scope int

const (
	ScopePublic Scope = iota
	ScopeOwner
)

func (s Scope) String() string {
	if s == ScopeOwner {
		return "owner"
	}
	return "public"
}

type ListingQuery struct {
	Filter  ListingFilter
	Page    int
	Limit   int
	Scope   Scope
	OwnerID uuid.UUID
}

func DefaultListingQuery() ListingQuery {
	return ListingQuery{Page: DefaultPage, Limit: DefaultLimit, Scope: ScopePublic}
}

// Clamp forces page >= 1 and limit into [1, MaxLimit].
func (q ListingQuery) Clamp() ListingQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 1
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

// ListingCriteria is what the store filters on once scope defaults are applied.
type ListingCriteria struct {
	Filter  ListingFilter
	OwnerID *uuid.UUID
}

// Criteria resolves the store predicates for the query scope. Public reads
// without an explicit status only see active listings.
func (q ListingQuery) Criteria() ListingCriteria {
	c := ListingCriteria{Filter: q.Filter}
	switch q.Scope {
	case ScopeOwner:
		owner := q.OwnerID
		c.OwnerID = &owner
	default:
		if c.Filter.Status == "" {
			c.Filter.Status = string(model.ListingStatusActive)
		}
	}
	return c
}

type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    limit,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

type ErrorKind string

const (
	ErrorKindBackingStore ErrorKind = "backing_store"
)

type PageError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

type ListingPage struct {
	Data       []model.Listing `json:"data"`
	Pagination Pagination      `json:"pagination"`
	Error      *PageError      `json:"error,omitempty"`
}

// ListingInput carries create and update payloads.
type ListingInput struct {
	Title       string              `json:"title"`
	Company     string              `json:"company"`
	Description string              `json:"description"`
	Location    string              `json:"location"`
	Type        model.ListingType   `json:"type"`
	Status      model.ListingStatus `json:"status"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
}

type GenerateDescriptionRequest struct {
	JobTitle string `json:"jobTitle"`
	Company  string `json:"company"`
	Location string `json:"location"`
	JobType  string `json:"jobType"`
}

type GenerateDescriptionResult struct {
	Success     bool   `json:"success"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// InvalidationResult reports what a cache sweep removed.
type InvalidationResult struct {
	ListingID   *uuid.UUID `json:"listingId,omitempty"`
	OwnerID     *uuid.UUID `json:"ownerId,omitempty"`
	Patterns    []string   `json:"patterns"`
	DeletedKeys int64      `json:"deletedKeys"`
	Failed      []string   `json:"failed,omitempty"`
}

func (r InvalidationResult) OK() bool { return len(r.Failed) == 0 }
