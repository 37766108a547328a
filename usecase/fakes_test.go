package usecase_test

import (
	"context"
	"io"
	"net"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"job-board/domain/dto"
	"job-board/domain/model"
	"job-board/infrastructure/cache"
	"job-board/infrastructure/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryListingRepo is an in-memory IListing with the same ordering and
// filter semantics as the Postgres repository.
type memoryListingRepo struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]model.Listing
	clock    time.Time
	listHits atomic.Int64
	countHit atomic.Int64
}

func newMemoryListingRepo() *memoryListingRepo {
	return &memoryListingRepo{
		rows:  map[uuid.UUID]model.Listing{},
		clock: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func matches(l model.Listing, c dto.ListingCriteria) bool {
	f := c.Filter
	if c.OwnerID != nil && l.UserID != *c.OwnerID {
		return false
	}
	if f.Status != "" && string(l.Status) != f.Status {
		return false
	}
	if f.Type != "" && string(l.Type) != f.Type {
		return false
	}
	if f.Company != "" && !containsFold(l.Company, f.Company) {
		return false
	}
	if f.Location != "" && !containsFold(l.Location, f.Location) {
		return false
	}
	if f.Search != "" && !containsFold(l.Title, f.Search) && !containsFold(l.Description, f.Search) && !containsFold(l.Company, f.Search) {
		return false
	}
	return true
}

func (r *memoryListingRepo) filtered(c dto.ListingCriteria) []model.Listing {
	out := make([]model.Listing, 0, len(r.rows))
	for _, l := range r.rows {
		if matches(l, c) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (r *memoryListingRepo) List(_ context.Context, c dto.ListingCriteria, offset, limit int) ([]model.Listing, error) {
	r.listHits.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filtered(c)
	if offset >= len(all) {
		return []model.Listing{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memoryListingRepo) Count(_ context.Context, c dto.ListingCriteria) (int64, error) {
	r.countHit.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filtered(c))), nil
}

func (r *memoryListingRepo) GetByID(_ context.Context, id uuid.UUID) (model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[id]
	if !ok {
		return model.Listing{}, model.ErrListingNotFound
	}
	return l, nil
}

func (r *memoryListingRepo) Create(_ context.Context, l model.Listing) (model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Minute)
	l.ID = uuid.New()
	l.CreatedAt = r.clock
	l.UpdatedAt = r.clock
	r.rows[l.ID] = l
	return l, nil
}

func (r *memoryListingRepo) Update(_ context.Context, ownerID uuid.UUID, l model.Listing) (model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[l.ID]
	if !ok || cur.UserID != ownerID {
		return model.Listing{}, model.ErrListingNotFound
	}
	l.UserID = cur.UserID
	l.CreatedAt = cur.CreatedAt
	l.UpdatedAt = cur.UpdatedAt.Add(time.Second)
	r.rows[l.ID] = l
	return l, nil
}

func (r *memoryListingRepo) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[id]
	if !ok || cur.UserID != ownerID {
		return model.ErrListingNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memoryListingRepo) SetStatus(_ context.Context, ownerID, id uuid.UUID, status model.ListingStatus) (model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[id]
	if !ok || cur.UserID != ownerID {
		return model.Listing{}, model.ErrListingNotFound
	}
	cur.Status = status
	r.rows[id] = cur
	return cur, nil
}

type MockListingRepo struct {
	mock.Mock
}

func (m *MockListingRepo) List(ctx context.Context, c dto.ListingCriteria, offset, limit int) ([]model.Listing, error) {
	args := m.Called(ctx, c, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Listing), args.Error(1)
}

func (m *MockListingRepo) Count(ctx context.Context, c dto.ListingCriteria) (int64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Listing, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Listing), args.Error(1)
}

func (m *MockListingRepo) Create(ctx context.Context, l model.Listing) (model.Listing, error) {
	args := m.Called(ctx, l)
	return args.Get(0).(model.Listing), args.Error(1)
}

func (m *MockListingRepo) Update(ctx context.Context, ownerID uuid.UUID, l model.Listing) (model.Listing, error) {
	args := m.Called(ctx, ownerID, l)
	return args.Get(0).(model.Listing), args.Error(1)
}

func (m *MockListingRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockListingRepo) SetStatus(ctx context.Context, ownerID, id uuid.UUID, status model.ListingStatus) (model.Listing, error) {
	args := m.Called(ctx, ownerID, id, status)
	return args.Get(0).(model.Listing), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepo) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

type MockCompletion struct {
	mock.Mock
}

func (m *MockCompletion) Complete(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

type pageObserver struct {
	mu            sync.Mutex
	reads         map[string]int
	invalidations map[bool]int
}

func newPageObserver() *pageObserver {
	return &pageObserver{reads: map[string]int{}, invalidations: map[bool]int{}}
}

func (o *pageObserver) ObservePageRead(scope string, source metrics.PageSource) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reads[scope+":"+string(source)]++
}

func (o *pageObserver) ObserveInvalidation(ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.invalidations[ok]++
}

func (o *pageObserver) read(key string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reads[key]
}

func newMiniredisCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	c := cache.NewRedisCache(cache.Options{URL: server.Addr()}, nil)
	t.Cleanup(func() { _ = c.Close() })
	return c, server
}

// newHungCache points the adapter at a listener that accepts connections and
// never replies.
func newHungCache(t *testing.T, opTimeout time.Duration) *cache.RedisCache {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
			go func() { _, _ = io.Copy(io.Discard, conn) }()
		}
	}()

	c := cache.NewRedisCache(cache.Options{
		URL:            ln.Addr().String(),
		ConnectTimeout: 10 * time.Second,
		OpTimeout:      opTimeout,
	}, nil)
	t.Cleanup(func() {
		_ = c.Close()
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range conns {
			_ = conn.Close()
		}
	})
	return c
}

func listingInput(title string) dto.ListingInput {
	return dto.ListingInput{
		Title:       title,
		Company:     "Acme Corp",
		Description: "Build and run things.",
		Location:    "Remote",
		Type:        model.ListingTypeFullTime,
		StartDate:   time.Now().UTC().AddDate(0, 0, 1).Format(dto.DateLayout),
	}
}
