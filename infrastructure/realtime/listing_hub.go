package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"job-board/domain/model"

	"github.com/gin-gonic/gin"
)

// Hub fans listing events out to the owner's open SSE streams.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[chan model.ListingEvent]struct{}

	done      chan struct{}
	closeOnce sync.Once
}

func NewListingHub() *Hub {
	return &Hub{
		users: make(map[string]map[chan model.ListingEvent]struct{}),
		done:  make(chan struct{}),
	}
}

// Close ends every open stream and makes new ones return at once, so the
// HTTP server can drain the remaining requests.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Serve registers an SSE stream for the authenticated user (user_id set by middleware).
func (h *Hub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ch := make(chan model.ListingEvent, 8)
	h.addSubscriber(userID, ch)
	defer h.removeSubscriber(userID, ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-h.done:
			return
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: listing\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

func (h *Hub) addSubscriber(userID string, ch chan model.ListingEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan model.ListingEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(userID string, ch chan model.ListingEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Broadcast delivers evt to every stream of ownerID without blocking; slow
// subscribers drop events.
func (h *Hub) Broadcast(ownerID string, evt model.ListingEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.users[ownerID] {
		select {
		case ch <- evt:
		default:
		}
	}
}
