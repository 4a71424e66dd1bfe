// Package snapshot encodes the full (members, bills) state into a
// compact URL-safe token and back. Tokens are transient transport only,
// never the canonical store.
//
// The wire form is a minified JSON document of fixed-position tuples,
//
//	{"m": [[id, name], ...],
//	 "b": [[id, title, amount, payerId, involvedIds, createdAt], ...]}
//
// base64-encoded. Field positions must never change: tokens embedded in
// old share links have to keep decoding.
package snapshot

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/smartsplit/smartsplit/internal/models"
)

// Data is a decoded snapshot.
type Data struct {
	Members []models.Member
	Bills   []models.Bill
}

type minified struct {
	M []json.RawMessage `json:"m"`
	B []json.RawMessage `json:"b"`
}

// Encode serializes members and bills into a token safe to embed as a
// URL query value (after standard query escaping).
func Encode(members []models.Member, bills []models.Bill) (string, error) {
	doc := struct {
		M [][]any `json:"m"`
		B [][]any `json:"b"`
	}{
		M: make([][]any, len(members)),
		B: make([][]any, len(bills)),
	}

	for i, m := range members {
		doc.M[i] = []any{m.ID, m.Name}
	}
	for i, b := range bills {
		ids := b.InvolvedIDs
		if ids == nil {
			ids = []string{}
		}
		doc.B[i] = []any{b.ID, b.Title, b.Amount, b.PayerID, ids, b.CreatedAt}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode. Any malformed input — invalid base64, invalid
// JSON, a missing or non-array collection, a wrong-arity tuple, or a
// field of the wrong type — yields nil. Callers treat nil as "not a
// valid snapshot" and fall back to other data sources; decoding never
// panics and never returns a partial result.
func Decode(token string) *Data {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil
	}

	var doc struct {
		M *[]json.RawMessage `json:"m"`
		B *[]json.RawMessage `json:"b"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	if doc.M == nil || doc.B == nil {
		return nil
	}

	data := &Data{
		Members: make([]models.Member, 0, len(*doc.M)),
		Bills:   make([]models.Bill, 0, len(*doc.B)),
	}

	for _, tuple := range *doc.M {
		m, ok := decodeMember(tuple)
		if !ok {
			return nil
		}
		data.Members = append(data.Members, m)
	}
	for _, tuple := range *doc.B {
		b, ok := decodeBill(tuple)
		if !ok {
			return nil
		}
		data.Bills = append(data.Bills, b)
	}

	return data
}

func decodeMember(raw json.RawMessage) (models.Member, bool) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) != 2 {
		return models.Member{}, false
	}

	var m models.Member
	if json.Unmarshal(fields[0], &m.ID) != nil ||
		json.Unmarshal(fields[1], &m.Name) != nil {
		return models.Member{}, false
	}
	return m, true
}

func decodeBill(raw json.RawMessage) (models.Bill, bool) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) != 6 {
		return models.Bill{}, false
	}

	var b models.Bill
	if json.Unmarshal(fields[0], &b.ID) != nil ||
		json.Unmarshal(fields[1], &b.Title) != nil ||
		json.Unmarshal(fields[2], &b.Amount) != nil ||
		json.Unmarshal(fields[3], &b.PayerID) != nil ||
		json.Unmarshal(fields[4], &b.InvolvedIDs) != nil ||
		json.Unmarshal(fields[5], &b.CreatedAt) != nil {
		return models.Bill{}, false
	}
	if b.InvolvedIDs == nil {
		b.InvolvedIDs = []string{}
	}
	return b, true
}
