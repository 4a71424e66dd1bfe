package room

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/smartsplit/smartsplit/internal/models"
)

// subscriberBuffer is the per-subscriber fan-out queue depth. A
// subscriber that falls further behind misses intermediate documents,
// which is harmless: every frame is a full overwrite, so the next one
// supersedes anything skipped.
const subscriberBuffer = 8

// Hub is the in-memory room server: one full-overwrite document per
// room ID, fanned out to all live subscribers on every publish. Rooms
// exist implicitly — subscribing to or publishing into an unknown ID
// creates it.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*roomState
}

type roomState struct {
	doc    models.RoomDocument
	hasDoc bool
	subs   map[chan models.RoomDocument]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*roomState)}
}

// Routes returns the chi router exposing the room API:
//
//	GET /rooms/{roomID}     current document (404 until first publish)
//	PUT /rooms/{roomID}     full-document overwrite
//	GET /rooms/{roomID}/ws  WebSocket subscribe feed
func (h *Hub) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/rooms/{roomID}", h.handleGet)
	r.Put("/rooms/{roomID}", h.handlePut)
	r.Get("/rooms/{roomID}/ws", h.handleSubscribe)
	return r
}

// Publish replaces the room document and fans it out to subscribers.
func (h *Hub) Publish(roomID string, doc models.RoomDocument) {
	doc.Normalize()
	if doc.UpdatedAt == 0 {
		doc.UpdatedAt = time.Now().UnixMilli()
	}

	h.mu.Lock()
	state := h.room(roomID)
	state.doc = doc
	state.hasDoc = true
	subs := make([]chan models.RoomDocument, 0, len(state.subs))
	for ch := range state.subs {
		subs = append(subs, ch)
	}
	h.mu.Unlock()

	publishesTotal.Inc()

	for _, ch := range subs {
		select {
		case ch <- doc:
		default:
			droppedUpdatesTotal.Inc()
		}
	}
}

// Document returns the current document for the room, if any.
func (h *Hub) Document(roomID string) (models.RoomDocument, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state, ok := h.rooms[roomID]
	if !ok || !state.hasDoc {
		return models.RoomDocument{}, false
	}
	return state.doc, true
}

// room returns the state for roomID, creating it if needed. Callers hold h.mu.
func (h *Hub) room(roomID string) *roomState {
	state, ok := h.rooms[roomID]
	if !ok {
		state = &roomState{subs: make(map[chan models.RoomDocument]struct{})}
		h.rooms[roomID] = state
	}
	return state
}

func (h *Hub) subscribe(roomID string) (<-chan models.RoomDocument, func()) {
	ch := make(chan models.RoomDocument, subscriberBuffer)

	h.mu.Lock()
	state := h.room(roomID)
	state.subs[ch] = struct{}{}
	if state.hasDoc {
		// New subscribers get the current document immediately.
		ch <- state.doc
	}
	h.mu.Unlock()

	subscribersGauge.Inc()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(state.subs, ch)
			h.mu.Unlock()
			subscribersGauge.Dec()
		})
	}
	return ch, unsubscribe
}

func (h *Hub) handleGet(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	doc, ok := h.Document(roomID)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		slog.Error("Failed to write room document", "room_id", roomID, "error", err)
	}
}

func (h *Hub) handlePut(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	var doc models.RoomDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "malformed room document", http.StatusBadRequest)
		return
	}

	h.Publish(roomID, doc)
	w.WriteHeader(http.StatusNoContent)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Rooms have no access control; any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Hub) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "room_id", roomID, "error", err)
		return
	}

	feed, unsubscribe := h.subscribe(roomID)
	defer unsubscribe()
	defer conn.Close()

	slog.Info("Subscriber joined", "room_id", roomID)

	// Reader goroutine: the feed is one-way, but reading is how we
	// learn the peer went away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case doc := <-feed:
			if err := conn.WriteJSON(doc); err != nil {
				slog.Info("Subscriber left", "room_id", roomID, "error", err)
				return
			}
		case <-gone:
			slog.Info("Subscriber left", "room_id", roomID)
			return
		case <-r.Context().Done():
			return
		}
	}
}
