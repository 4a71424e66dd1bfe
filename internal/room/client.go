// Package room implements the shared remote room: a keyed
// full-overwrite document store with subscribe/publish semantics. The
// Hub is the server side; Client is what the sync coordinator talks to.
//
// A room is not a CRDT. Every publish replaces the whole document and
// the last writer wins; concurrent writers within the same debounce
// window can silently drop one side's change. That is the accepted
// consistency model for this system.
package room

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smartsplit/smartsplit/internal/models"
)

// Client connects a local session to a remote room.
type Client interface {
	// Subscribe opens a live feed for the room. onDoc is invoked with
	// the current document as soon as one exists and again after every
	// overwrite, until cancel is called or the transport fails. The
	// returned cancel is idempotent and stops further delivery.
	Subscribe(ctx context.Context, roomID string, onDoc func(models.RoomDocument)) (cancel func(), err error)

	// Publish replaces the room document wholesale.
	Publish(ctx context.Context, roomID string, doc models.RoomDocument) error
}

// WSClient implements Client against a room server over WebSocket
// (inbound feed) and HTTP PUT (outbound overwrite).
type WSClient struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
}

var _ Client = (*WSClient)(nil)

// NewClient creates a room client for the server at baseURL
// (e.g. "http://rooms.example.com").
func NewClient(baseURL string) *WSClient {
	return &WSClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		dialer:  websocket.DefaultDialer,
	}
}

// Subscribe dials the room's WebSocket feed and pumps inbound documents
// to onDoc from a background goroutine. Malformed frames are dropped
// with a warning; a broken connection ends delivery silently (the
// coordinator notices through its own publish failures).
func (c *WSClient) Subscribe(ctx context.Context, roomID string, onDoc func(models.RoomDocument)) (func(), error) {
	wsURL, err := c.feedURL(roomID)
	if err != nil {
		return nil, err
	}

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to room %s: %w", roomID, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() { conn.Close() })
	}

	go func() {
		defer cancel()
		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var doc models.RoomDocument
			if err := json.Unmarshal(frame, &doc); err != nil {
				slog.Warn("Dropping malformed room document", "room_id", roomID, "error", err)
				continue
			}
			doc.Normalize()
			onDoc(doc)
		}
	}()

	return cancel, nil
}

// Publish overwrites the room document with an HTTP PUT.
func (c *WSClient) Publish(ctx context.Context, roomID string, doc models.RoomDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode room document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		fmt.Sprintf("%s/rooms/%s", c.baseURL, url.PathEscape(roomID)),
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("failed to build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish to room %s: %w", roomID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("room server rejected publish: status %d", resp.StatusCode)
	}
	return nil
}

func (c *WSClient) feedURL(roomID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid room server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid room server URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/rooms/" + url.PathEscape(roomID) + "/ws"
	return u.String(), nil
}
