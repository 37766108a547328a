package usecase

import (
	"context"

	"job-board/domain/dto"
	"job-board/infrastructure/cache"

	"github.com/google/uuid"
)

// Invalidate drops every cached page and count, globally and for the owner,
// plus the single-item entry. It outlives cancellation of ctx.
func (u *ListingUsecase) Invalidate(ctx context.Context, listingID, ownerID *uuid.UUID) dto.InvalidationResult {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.cfg.InvalidationTimeout)
	defer cancel()

	patterns := []string{cache.PatternGlobalPages, cache.PatternGlobalCounts}
	if ownerID != nil {
		patterns = append(patterns, cache.OwnerPattern(*ownerID))
	}
	res := dto.InvalidationResult{ListingID: listingID, OwnerID: ownerID, Patterns: patterns}

	for _, p := range patterns {
		n, ok := u.cache.DeletePattern(ctx, p)
		res.DeletedKeys += n
		if !ok {
			res.Failed = append(res.Failed, p)
		}
	}
	if listingID != nil {
		key := cache.ItemKey(*listingID)
		if !u.cache.Delete(ctx, key) {
			res.Failed = append(res.Failed, key)
		}
	}

	if u.observer != nil {
		u.observer.ObserveInvalidation(res.OK())
	}
	return res
}
