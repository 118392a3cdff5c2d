package store

import (
	"context"
	"errors"
)

const (
	Users         = "user_profiles"
	Sessions      = "sessions"
	Presentations = "presentations"
	Purchases     = "purchases"
	Subscriptions = "subscriptions"
)

var ErrNotFound = errors.New("document not found")

// Store is the document store the service runs on. Each Upsert and Delete is
// atomic per key; nothing here spans more than one document.
type Store interface {
	// Get decodes the document under key into out, or returns ErrNotFound.
	Get(ctx context.Context, collection, key string, out any) error
	// FindOne decodes the first document whose field equals value into out,
	// or returns ErrNotFound.
	FindOne(ctx context.Context, collection, field, value string, out any) error
	// List decodes every document of the collection into out, which must be a
	// pointer to a slice.
	List(ctx context.Context, collection string, out any) error
	// ListByField decodes every document whose field equals value into out.
	ListByField(ctx context.Context, collection, field, value string, out any) error
	// Upsert replaces the document under key, inserting it if absent.
	Upsert(ctx context.Context, collection, key string, doc any) error
	// Delete removes the document under key and reports whether it was present.
	Delete(ctx context.Context, collection, key string) (bool, error)
}
