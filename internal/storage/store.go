// Package storage holds the adapters for the record store (application rows)
// and the blob store (resume files).
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/justsurfingit/job-application-tracker/internal/models"
)

// RecordStore persists Application rows.
type RecordStore interface {
	// Insert stores app and returns it with its assigned id.
	Insert(ctx context.Context, app models.Application) (*models.Application, error)
	// Select returns every row ordered by applied_date, newest first.
	Select(ctx context.Context) ([]models.Application, error)
	Get(ctx context.Context, id string) (*models.Application, error)
	Update(ctx context.Context, id string, patch Patch) (*models.Application, error)
	Delete(ctx context.Context, id string) error
	// AllowedStatuses returns the status values the store itself enforces.
	// enforced is false when the store has no such constraint.
	AllowedStatuses(ctx context.Context) (statuses []string, enforced bool, err error)
}

// Patch lists the mutable columns of an Application. Nil fields are left unchanged.
type Patch struct {
	Status *models.Status
}

// BlobStore holds resume files.
type BlobStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	// PublicURL returns a dereferenceable URL for key with each path segment percent-encoded.
	PublicURL(key string) string
	// KeyFromURL reverses PublicURL. ok is false when url does not belong to this store.
	KeyFromURL(url string) (key string, ok bool)
	Remove(ctx context.Context, key string) error
}

// Kind tags a store error so callers never have to inspect message text.
type Kind int

const (
	KindUnavailable Kind = iota
	KindNotFound
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConstraint:
		return "constraint violation"
	default:
		return "unavailable"
	}
}

// Error is returned by every adapter in this package.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of a store error. Errors that did not come from this
// package are treated as KindUnavailable.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnavailable
}
