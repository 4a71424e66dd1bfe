// Package share builds and parses the out-of-band transfer surfaces:
// snapshot links carrying the whole state in a query parameter, and the
// room ID parameter that selects a live session.
package share

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/smartsplit/smartsplit/internal/models"
	"github.com/smartsplit/smartsplit/internal/snapshot"
)

const (
	// DataParam carries the encoded snapshot token. Consumed on load
	// and stripped from the URL afterwards.
	DataParam = "data"

	// RoomParam selects a remote room. When present, local storage is
	// bypassed for the whole session.
	RoomParam = "room"
)

// MaxTokenLength caps the snapshot token a link may carry. Oversized
// states must travel as exported files instead; the check runs before
// any network use, never inside the codec.
const MaxTokenLength = 8000

// ErrTokenTooLong reports a state too large for a snapshot link.
var ErrTokenTooLong = errors.New("snapshot too large for a link, use file export")

// SnapshotURL returns baseURL with the full state encoded into the data
// query parameter. Existing query parameters are dropped to keep the
// link clean; the path is preserved.
func SnapshotURL(baseURL string, members []models.Member, bills []models.Bill) (string, error) {
	token, err := snapshot.Encode(members, bills)
	if err != nil {
		return "", err
	}
	if len(token) > MaxTokenLength {
		return "", ErrTokenTooLong
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	q := url.Values{}
	q.Set(DataParam, token)
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// ParseSnapshotParam extracts and decodes the snapshot token from a
// launch URL. Returns nil when the parameter is absent or the token is
// invalid; callers fall back to other state sources.
func ParseSnapshotParam(rawURL string) *snapshot.Data {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	token := u.Query().Get(DataParam)
	if token == "" {
		return nil
	}
	return snapshot.Decode(token)
}

// RoomID extracts the room parameter from a launch URL, or "".
func RoomID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get(RoomParam)
}

// StripDataParam returns the URL with the snapshot parameter removed,
// for rewriting the address after the token has been consumed.
func StripDataParam(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Del(DataParam)
	u.RawQuery = q.Encode()
	return u.String()
}
