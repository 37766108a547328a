package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"job-board/domain/dto"
	"job-board/domain/model"
	"job-board/infrastructure/cache"
	"job-board/infrastructure/logger"
	"job-board/infrastructure/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const storeFailureMessage = "Failed to load job posts"

// GetPage serves a page of listings, preferring the cache. Page and count are
// cached under separate keys and may hit or miss independently; only a hit on
// both skips the store.
func (u *ListingUsecase) GetPage(ctx context.Context, q dto.ListingQuery) dto.ListingPage {
	q = q.Clamp()
	pageKey, countKey := cache.PageKey(q), cache.CountKey(q)
	log := logger.GetLogger().WithFields(map[string]interface{}{
		"scope":     q.Scope.String(),
		"page_key":  pageKey,
		"count_key": countKey,
	})

	if items, total, ok := u.readCachedPage(ctx, pageKey, countKey); ok {
		log.Debug("Listing page served from cache")
		u.observePage(q.Scope, metrics.PageSourceCache)
		return dto.ListingPage{Data: items, Pagination: dto.NewPagination(q.Page, q.Limit, total)}
	}

	items, total, err := u.readStorePage(ctx, q)
	if err != nil {
		log.WithField("error", err).Error("Error while loading listing page from store")
		u.observePage(q.Scope, metrics.PageSourceError)
		return dto.ListingPage{
			Data:  []model.Listing{},
			Error: &dto.PageError{Kind: dto.ErrorKindBackingStore, Message: storeFailureMessage},
		}
	}
	u.observePage(q.Scope, metrics.PageSourceStore)

	if data, err := json.Marshal(items); err == nil {
		u.cache.Set(ctx, pageKey, data, u.cfg.PageTTL)
	}
	u.cache.Set(ctx, countKey, []byte(strconv.FormatInt(total, 10)), u.cfg.CountTTL)
	log.WithField("total", total).Debug("Listing page loaded from store")

	return dto.ListingPage{Data: items, Pagination: dto.NewPagination(q.Page, q.Limit, total)}
}

func (u *ListingUsecase) readCachedPage(ctx context.Context, pageKey, countKey string) ([]model.Listing, int64, bool) {
	var (
		pageRaw, countRaw []byte
		pageHit, countHit bool
		g                 errgroup.Group
	)
	g.Go(func() error {
		pageRaw, pageHit = u.cache.Get(ctx, pageKey)
		return nil
	})
	g.Go(func() error {
		countRaw, countHit = u.cache.Get(ctx, countKey)
		return nil
	})
	_ = g.Wait()
	if !pageHit || !countHit {
		return nil, 0, false
	}

	var items []model.Listing
	if err := json.Unmarshal(pageRaw, &items); err != nil || items == nil {
		logger.GetLogger().WithFields(map[string]interface{}{"key": pageKey, "error": err}).Warn("Corrupt cached page, treating as miss")
		return nil, 0, false
	}
	total, err := strconv.ParseInt(string(countRaw), 10, 64)
	if err != nil || total < 0 {
		logger.GetLogger().WithFields(map[string]interface{}{"key": countKey, "error": err}).Warn("Corrupt cached count, treating as miss")
		return nil, 0, false
	}
	return items, total, true
}

func (u *ListingUsecase) readStorePage(ctx context.Context, q dto.ListingQuery) ([]model.Listing, int64, error) {
	criteria := q.Criteria()
	offset := (q.Page - 1) * q.Limit

	var (
		items []model.Listing
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = u.repo.List(gctx, criteria, offset, q.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = u.repo.Count(gctx, criteria)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []model.Listing{}
	}
	return items, total, nil
}

// GetByID reads through job:{id}. Missing listings are never cached.
func (u *ListingUsecase) GetByID(ctx context.Context, id uuid.UUID) (model.Listing, error) {
	key := cache.ItemKey(id)
	if raw, ok := u.cache.Get(ctx, key); ok {
		var l model.Listing
		if err := json.Unmarshal(raw, &l); err == nil && l.ID == id {
			return l, nil
		}
		logger.GetLogger().WithField("key", key).Warn("Corrupt cached listing, treating as miss")
	}

	l, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrListingNotFound) {
			logger.GetLogger().WithFields(map[string]interface{}{"id": id, "error": err}).Error("Error while loading listing")
		}
		return model.Listing{}, err
	}
	if data, err := json.Marshal(l); err == nil {
		u.cache.Set(ctx, key, data, u.cfg.ItemTTL)
	}
	return l, nil
}

func (u *ListingUsecase) observePage(scope dto.Scope, source metrics.PageSource) {
	if u.observer != nil {
		u.observer.ObservePageRead(scope.String(), source)
	}
}
