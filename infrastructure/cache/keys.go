package cache

import (
	"encoding/base64"
	"fmt"

	"job-board/domain/dto"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
)

// NoFilter is the hash used when a request carries no filter at all.
const NoFilter = "none"

const (
	PatternGlobalPages  = "jobs:page:*"
	PatternGlobalCounts = "jobs:count:*"
)

// FilterHash encodes the filter in sorted key order and base64s the result.
// Pagination is not part of ListingFilter, so it cannot affect the hash.
func FilterHash(f dto.ListingFilter) string {
	if f.IsEmpty() {
		return NoFilter
	}
	v, err := query.Values(f)
	if err != nil {
		return NoFilter
	}
	encoded := v.Encode()
	if encoded == "" {
		return NoFilter
	}
	return base64.RawURLEncoding.EncodeToString([]byte(encoded))
}

// PageKey returns the cache key for one page of a query. The query is
// expected to be clamped already.
func PageKey(q dto.ListingQuery) string {
	h := FilterHash(q.Filter)
	if q.Scope == dto.ScopeOwner {
		return fmt.Sprintf("user:%s:jobs:page:%d:limit:%d:filters:%s", q.OwnerID, q.Page, q.Limit, h)
	}
	return fmt.Sprintf("jobs:page:%d:limit:%d:filters:%s", q.Page, q.Limit, h)
}

// CountKey is shared by every page of the same filter.
func CountKey(q dto.ListingQuery) string {
	h := FilterHash(q.Filter)
	if q.Scope == dto.ScopeOwner {
		return fmt.Sprintf("user:%s:jobs:count:filters:%s", q.OwnerID, h)
	}
	return fmt.Sprintf("jobs:count:filters:%s", h)
}

func ItemKey(id uuid.UUID) string {
	return fmt.Sprintf("job:%s", id)
}

func OwnerPattern(ownerID uuid.UUID) string {
	return fmt.Sprintf("user:%s:jobs:*", ownerID)
}
