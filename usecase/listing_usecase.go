package usecase

import (
	"context"
	"time"

	"job-board/domain/dto"
	"job-board/domain/model"
	"job-board/domain/repository"
	"job-board/infrastructure/logger"
	"job-board/infrastructure/metrics"

	"github.com/google/uuid"
)

type IListingUsecase interface {
	GetPage(ctx context.Context, q dto.ListingQuery) dto.ListingPage
	GetByID(ctx context.Context, id uuid.UUID) (model.Listing, error)
	Create(ctx context.Context, ownerID uuid.UUID, in dto.ListingInput) (model.Listing, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, in dto.ListingInput) (model.Listing, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ToggleStatus(ctx context.Context, ownerID, id uuid.UUID) (model.Listing, error)
	Invalidate(ctx context.Context, listingID, ownerID *uuid.UUID) dto.InvalidationResult
}

// ListingObserver is satisfied by *metrics.Recorder.
type ListingObserver interface {
	ObservePageRead(scope string, source metrics.PageSource)
	ObserveInvalidation(ok bool)
}

type ListingCacheConfig struct {
	PageTTL             time.Duration
	CountTTL            time.Duration
	ItemTTL             time.Duration
	InvalidationTimeout time.Duration
}

func DefaultListingCacheConfig() ListingCacheConfig {
	return ListingCacheConfig{
		PageTTL:             300 * time.Second,
		CountTTL:            300 * time.Second,
		ItemTTL:             600 * time.Second,
		InvalidationTimeout: 5 * time.Second,
	}
}

type ListingUsecase struct {
	repo      repository.IListing
	cache     repository.IKeyValueCache
	cfg       ListingCacheConfig
	observer  ListingObserver
	broadcast func(ownerID string, evt model.ListingEvent)
	now       func() time.Time
}

func NewListingUsecase(repo repository.IListing, kv repository.IKeyValueCache, cfg ListingCacheConfig, observer ListingObserver) *ListingUsecase {
	def := DefaultListingCacheConfig()
	if cfg.PageTTL <= 0 {
		cfg.PageTTL = def.PageTTL
	}
	if cfg.CountTTL <= 0 {
		cfg.CountTTL = def.CountTTL
	}
	if cfg.ItemTTL <= 0 {
		cfg.ItemTTL = def.ItemTTL
	}
	if cfg.InvalidationTimeout <= 0 {
		cfg.InvalidationTimeout = def.InvalidationTimeout
	}
	return &ListingUsecase{
		repo:     repo,
		cache:    kv,
		cfg:      cfg,
		observer: observer,
		now:      time.Now,
	}
}

// WithBroadcaster registers a callback invoked after each successful mutation.
func (u *ListingUsecase) WithBroadcaster(fn func(ownerID string, evt model.ListingEvent)) *ListingUsecase {
	u.broadcast = fn
	return u
}

func (u *ListingUsecase) Create(ctx context.Context, ownerID uuid.UUID, in dto.ListingInput) (model.Listing, error) {
	if ownerID == uuid.Nil {
		return model.Listing{}, model.ErrUnauthenticated
	}
	if in.Status == "" {
		in.Status = model.ListingStatusActive
	}
	listing, err := u.buildListing(in)
	if err != nil {
		return model.Listing{}, err
	}
	listing.UserID = ownerID

	created, err := u.repo.Create(ctx, listing)
	if err != nil {
		return model.Listing{}, err
	}
	u.afterMutation(ctx, "created", created.ID, ownerID, created.Status)
	return created, nil
}

// Update replaces the listing's fields. A missing status keeps the current one.
func (u *ListingUsecase) Update(ctx context.Context, ownerID, id uuid.UUID, in dto.ListingInput) (model.Listing, error) {
	if ownerID == uuid.Nil {
		return model.Listing{}, model.ErrUnauthenticated
	}
	if in.Status == "" {
		current, err := u.repo.GetByID(ctx, id)
		if err != nil {
			return model.Listing{}, err
		}
		if current.UserID != ownerID {
			return model.Listing{}, model.ErrListingNotFound
		}
		in.Status = current.Status
	}
	listing, err := u.buildListing(in)
	if err != nil {
		return model.Listing{}, err
	}
	listing.ID = id

	updated, err := u.repo.Update(ctx, ownerID, listing)
	if err != nil {
		return model.Listing{}, err
	}
	u.afterMutation(ctx, "updated", id, ownerID, updated.Status)
	return updated, nil
}

func (u *ListingUsecase) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil {
		return model.ErrUnauthenticated
	}
	if err := u.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	u.afterMutation(ctx, "deleted", id, ownerID, "")
	return nil
}

// ToggleStatus flips Active and Inactive. Listings owned by someone else
// report not found.
func (u *ListingUsecase) ToggleStatus(ctx context.Context, ownerID, id uuid.UUID) (model.Listing, error) {
	if ownerID == uuid.Nil {
		return model.Listing{}, model.ErrUnauthenticated
	}
	current, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return model.Listing{}, err
	}
	if current.UserID != ownerID {
		return model.Listing{}, model.ErrListingNotFound
	}
	updated, err := u.repo.SetStatus(ctx, ownerID, id, current.Status.Toggle())
	if err != nil {
		return model.Listing{}, err
	}
	u.afterMutation(ctx, "status_toggled", id, ownerID, updated.Status)
	return updated, nil
}

func (u *ListingUsecase) buildListing(in dto.ListingInput) (model.Listing, error) {
	in = in.Normalize()
	if err := in.Validate(u.now()); err != nil {
		return model.Listing{}, err
	}
	start, end, err := in.Dates()
	if err != nil {
		return model.Listing{}, err
	}
	return model.Listing{
		Title:       in.Title,
		Company:     in.Company,
		Description: in.Description,
		Location:    in.Location,
		Type:        in.Type,
		Status:      in.Status,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// afterMutation runs once the write has committed. Cache failures are only
// logged; the mutation already succeeded.
func (u *ListingUsecase) afterMutation(ctx context.Context, kind string, id, ownerID uuid.UUID, status model.ListingStatus) {
	res := u.Invalidate(ctx, &id, &ownerID)
	entry := logger.GetLogger().WithFields(map[string]interface{}{
		"event":        kind,
		"listing_id":   id,
		"owner_id":     ownerID,
		"deleted_keys": res.DeletedKeys,
	})
	if !res.OK() {
		entry.WithField("failed", res.Failed).Warn("Cache invalidation incomplete")
	} else {
		entry.Debug("Cache invalidated")
	}

	if u.broadcast != nil {
		u.broadcast(ownerID.String(), model.ListingEvent{Type: kind, ListingID: id, Status: status})
	}
}
