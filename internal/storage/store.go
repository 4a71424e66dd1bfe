// Package storage provides abstractions for the durable local record.
package storage

import (
	"context"

	"github.com/smartsplit/smartsplit/internal/models"
)

// Store persists the two canonical collections, members and bills, as
// independent records. Each record is a JSON-array-shaped serialization
// of the entity list; the absence of a record is a normal state that
// triggers the caller's default-roster / empty-bills fallback.
//
// The abstraction allows swapping backends (SQLite, flat files, etc.)
// without changing the state store.
type Store interface {
	// LoadMembers returns the stored member list. ok is false when no
	// member record has ever been saved.
	LoadMembers(ctx context.Context) (members []models.Member, ok bool, err error)

	// LoadBills returns the stored bill list. ok is false when no bill
	// record has ever been saved.
	LoadBills(ctx context.Context) (bills []models.Bill, ok bool, err error)

	// SaveMembers replaces the member record wholesale.
	SaveMembers(ctx context.Context, members []models.Member) error

	// SaveBills replaces the bill record wholesale.
	SaveBills(ctx context.Context, bills []models.Bill) error

	// Reset deletes both records.
	Reset(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
