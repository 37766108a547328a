package repository

import (
	"context"

	"job-board/domain/dto"
	"job-board/domain/model"

	"github.com/google/uuid"
)

type IListing interface {
	List(ctx context.Context, criteria dto.ListingCriteria, offset, limit int) ([]model.Listing, error)
	Count(ctx context.Context, criteria dto.ListingCriteria) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Listing, error)
	Create(ctx context.Context, listing model.Listing) (model.Listing, error)
	// Update, Delete and SetStatus only touch rows owned by ownerID and
	// return model.ErrListingNotFound otherwise.
	Update(ctx context.Context, ownerID uuid.UUID, listing model.Listing) (model.Listing, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	SetStatus(ctx context.Context, ownerID, id uuid.UUID, status model.ListingStatus) (model.Listing, error)
}
