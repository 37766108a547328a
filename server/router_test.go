package server_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"job-board/domain/dto"
	"job-board/domain/model"
	"job-board/infrastructure/cache"
	"job-board/infrastructure/metrics"
	"job-board/infrastructure/realtime"
	httpHandler "job-board/interfaces/http"
	"job-board/server"
	"job-board/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/gavv/httpexpect/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const routerSecret = "router-secret"

type userStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func (s *userStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *userStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *userStore) CreateUser(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	return user, nil
}

// listingStore keeps rows in insertion order; newest first on read.
type listingStore struct {
	mu   sync.Mutex
	rows []model.Listing
}

func (s *listingStore) visible(c dto.ListingCriteria) []model.Listing {
	out := []model.Listing{}
	for i := len(s.rows) - 1; i >= 0; i-- {
		l := s.rows[i]
		if c.OwnerID != nil && l.UserID != *c.OwnerID {
			continue
		}
		if c.Filter.Status != "" && string(l.Status) != c.Filter.Status {
			continue
		}
		if c.Filter.Type != "" && string(l.Type) != c.Filter.Type {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (s *listingStore) List(_ context.Context, c dto.ListingCriteria, offset, limit int) ([]model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.visible(c)
	if offset >= len(all) {
		return []model.Listing{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *listingStore) Count(_ context.Context, c dto.ListingCriteria) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.visible(c))), nil
}

func (s *listingStore) find(id uuid.UUID) int {
	for i, l := range s.rows {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *listingStore) GetByID(_ context.Context, id uuid.UUID) (model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.find(id); i >= 0 {
		return s.rows[i], nil
	}
	return model.Listing{}, model.ErrListingNotFound
}

func (s *listingStore) Create(_ context.Context, l model.Listing) (model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = uuid.New()
	l.CreatedAt = time.Now().UTC()
	l.UpdatedAt = l.CreatedAt
	s.rows = append(s.rows, l)
	return l, nil
}

func (s *listingStore) Update(_ context.Context, ownerID uuid.UUID, l model.Listing) (model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(l.ID)
	if i < 0 || s.rows[i].UserID != ownerID {
		return model.Listing{}, model.ErrListingNotFound
	}
	l.UserID, l.CreatedAt = ownerID, s.rows[i].CreatedAt
	l.UpdatedAt = time.Now().UTC()
	s.rows[i] = l
	return l, nil
}

func (s *listingStore) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(id)
	if i < 0 || s.rows[i].UserID != ownerID {
		return model.ErrListingNotFound
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	return nil
}

func (s *listingStore) SetStatus(_ context.Context, ownerID, id uuid.UUID, status model.ListingStatus) (model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(id)
	if i < 0 || s.rows[i].UserID != ownerID {
		return model.Listing{}, model.ErrListingNotFound
	}
	s.rows[i].Status = status
	return s.rows[i], nil
}

func newTestServer(t *testing.T) (*httpexpect.Expect, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	redisServer := miniredis.RunT(t)
	recorder := metrics.NewRecorder(prometheus.NewRegistry())
	kv := cache.NewRedisCache(cache.Options{URL: redisServer.Addr()}, recorder)
	t.Cleanup(func() { _ = kv.Close() })

	users := &userStore{users: map[uuid.UUID]model.User{}}
	hub := realtime.NewListingHub()
	listingUC := usecase.NewListingUsecase(&listingStore{}, kv, usecase.DefaultListingCacheConfig(), recorder).
		WithBroadcaster(hub.Broadcast)

	router := server.InitiateRouter(
		httpHandler.NewUserHandler(usecase.NewUserUsecase(users, routerSecret, time.Hour)),
		httpHandler.NewListingHandler(listingUC),
		httpHandler.NewDescriptionHandler(usecase.NewDescriptionUsecase(nil)),
		httpHandler.NewHealthHandler(),
		users,
		hub,
		recorder,
		routerSecret,
		nil,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  srv.URL,
		Reporter: httpexpect.NewRequireReporter(t),
		Client:   &http.Client{Timeout: 5 * time.Second},
	}), redisServer
}

func registerAndLogin(e *httpexpect.Expect, email string) string {
	creds := map[string]string{"email": email, "password": "hunter22"}
	e.POST("/register").WithJSON(creds).Expect().Status(http.StatusCreated)
	return e.POST("/login").WithJSON(creds).Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("token").String().NotEmpty().Raw()
}

func jobPayload(title string) map[string]string {
	return map[string]string{
		"title":       title,
		"company":     "Acme Corp",
		"description": "Build and run things.",
		"location":    "Remote",
		"type":        "Full-Time",
		"start_date":  time.Now().UTC().AddDate(0, 0, 1).Format(dto.DateLayout),
	}
}

func TestRouter_AuthFlow(t *testing.T) {
	e, _ := newTestServer(t)

	registerAndLogin(e, "jane@example.com")

	e.POST("/register").WithJSON(map[string]string{"email": "JANE@example.com", "password": "hunter22"}).
		Expect().Status(http.StatusConflict)
	e.POST("/login").WithJSON(map[string]string{"email": "jane@example.com", "password": "nope-nope"}).
		Expect().Status(http.StatusUnauthorized)
	e.POST("/register").WithJSON(map[string]string{"email": "bad", "password": "hunter22"}).
		Expect().Status(http.StatusBadRequest)

	e.POST("/api/jobs").WithJSON(jobPayload("Engineer")).Expect().Status(http.StatusUnauthorized)
	e.POST("/api/jobs").WithHeader("Authorization", "Bearer garbage").WithJSON(jobPayload("Engineer")).
		Expect().Status(http.StatusUnauthorized).
		JSON().Object().Value("response_message").String().IsEqual("That's not even a token")
}

func TestRouter_ListingLifecycle(t *testing.T) {
	e, redisServer := newTestServer(t)
	token := registerAndLogin(e, "owner@example.com")
	auth := "Bearer " + token

	ids := make([]string, 0, 3)
	for _, title := range []string{"First", "Second", "Third"} {
		id := e.POST("/api/jobs").WithHeader("Authorization", auth).WithJSON(jobPayload(title)).
			Expect().Status(http.StatusCreated).
			JSON().Object().Value("data").Object().Value("id").String().Raw()
		ids = append(ids, id)
	}

	page := e.GET("/jobs").WithQuery("limit", 2).Expect().Status(http.StatusOK).JSON().Object()
	page.Value("data").Array().Length().IsEqual(2)
	page.Value("data").Array().Value(0).Object().Value("title").IsEqual("Third")
	pagination := page.Value("pagination").Object()
	pagination.Value("totalItems").IsEqual(3)
	pagination.Value("totalPages").IsEqual(2)
	pagination.Value("hasNextPage").IsEqual(true)
	pagination.Value("hasPreviousPage").IsEqual(false)
	if !redisServer.Exists("jobs:page:1:limit:2:filters:none") {
		t.Fatalf("page was not cached")
	}

	e.PATCH("/api/jobs/{id}/status", ids[0]).WithHeader("Authorization", auth).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("status").IsEqual("Inactive")
	if redisServer.Exists("jobs:page:1:limit:2:filters:none") {
		t.Fatalf("page survived invalidation")
	}

	e.GET("/jobs").Expect().Status(http.StatusOK).
		JSON().Object().Value("pagination").Object().Value("totalItems").IsEqual(2)
	e.GET("/api/jobs").WithQuery("status", "Inactive").WithHeader("Authorization", auth).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("data").Array().Length().IsEqual(1)

	updated := jobPayload("Second, revised")
	e.PUT("/api/jobs/{id}", ids[1]).WithHeader("Authorization", auth).WithJSON(updated).
		Expect().Status(http.StatusOK)
	e.GET("/jobs/{id}", ids[1]).Expect().Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("title").IsEqual("Second, revised")

	e.DELETE("/api/jobs/{id}", ids[2]).WithHeader("Authorization", auth).Expect().Status(http.StatusOK)
	e.GET("/jobs/{id}", ids[2]).Expect().Status(http.StatusNotFound)
	e.GET("/jobs/not-a-uuid").Expect().Status(http.StatusNotFound)
}

func TestRouter_OtherUsersCannotMutate(t *testing.T) {
	e, _ := newTestServer(t)
	owner := "Bearer " + registerAndLogin(e, "owner@example.com")
	intruder := "Bearer " + registerAndLogin(e, "intruder@example.com")

	id := e.POST("/api/jobs").WithHeader("Authorization", owner).WithJSON(jobPayload("Engineer")).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("data").Object().Value("id").String().Raw()

	e.PUT("/api/jobs/{id}", id).WithHeader("Authorization", intruder).WithJSON(jobPayload("Mine now")).
		Expect().Status(http.StatusNotFound)
	e.DELETE("/api/jobs/{id}", id).WithHeader("Authorization", intruder).Expect().Status(http.StatusNotFound)
	e.PATCH("/api/jobs/{id}/status", id).WithHeader("Authorization", intruder).Expect().Status(http.StatusNotFound)
	e.GET("/api/jobs").WithHeader("Authorization", intruder).Expect().Status(http.StatusOK).
		JSON().Object().Value("pagination").Object().Value("totalItems").IsEqual(0)
}

func TestRouter_ValidationAndPaginationDefaults(t *testing.T) {
	e, _ := newTestServer(t)
	auth := "Bearer " + registerAndLogin(e, "owner@example.com")

	past := jobPayload("Engineer")
	past["start_date"] = "2001-01-01"
	e.POST("/api/jobs").WithHeader("Authorization", auth).WithJSON(past).
		Expect().Status(http.StatusBadRequest)

	pagination := e.GET("/jobs").Expect().Status(http.StatusOK).JSON().Object().Value("pagination").Object()
	pagination.Value("currentPage").IsEqual(1)
	pagination.Value("itemsPerPage").IsEqual(10)

	pagination = e.GET("/jobs").WithQuery("page", 0).WithQuery("limit", 1000).
		Expect().Status(http.StatusOK).JSON().Object().Value("pagination").Object()
	pagination.Value("currentPage").IsEqual(1)
	pagination.Value("itemsPerPage").IsEqual(dto.MaxLimit)
}

func TestRouter_CacheDownStillServes(t *testing.T) {
	e, redisServer := newTestServer(t)
	auth := "Bearer " + registerAndLogin(e, "owner@example.com")
	e.POST("/api/jobs").WithHeader("Authorization", auth).WithJSON(jobPayload("Engineer")).
		Expect().Status(http.StatusCreated)

	redisServer.Close()

	e.GET("/jobs").Expect().Status(http.StatusOK).
		JSON().Object().Value("data").Array().Length().IsEqual(1)
}

func TestRouter_DescriptionAndOps(t *testing.T) {
	e, _ := newTestServer(t)
	auth := "Bearer " + registerAndLogin(e, "owner@example.com")

	e.POST("/api/jobs/description").WithHeader("Authorization", auth).
		WithJSON(map[string]string{"jobTitle": ""}).
		Expect().Status(http.StatusBadRequest).
		JSON().Object().Value("error").IsEqual("Job title is required")
	e.POST("/api/jobs/description").WithHeader("Authorization", auth).
		WithJSON(map[string]string{"jobTitle": "Designer"}).
		Expect().Status(http.StatusBadGateway).
		JSON().Object().Value("success").IsEqual(false)

	e.GET("/healthz").Expect().Status(http.StatusOK).JSON().Object().Value("status").IsEqual("ok")
	e.GET("/jobs").Expect().Status(http.StatusOK)

	body := e.GET("/metrics").Expect().Status(http.StatusOK).Body().Raw()
	for _, name := range []string{
		"jobboard_http_requests_total",
		"jobboard_listings_page_reads_total",
		"jobboard_cache_operations_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
	var sawRoute bool
	for _, l := range strings.Split(body, "\n") {
		if strings.HasPrefix(l, "jobboard_http_requests_total") && strings.Contains(l, `route="/jobs"`) {
			sawRoute = true
		}
	}
	if !sawRoute {
		t.Errorf("route template label not recorded")
	}
}
