package fileutil

import (
	"context"
	"errors"
	"io"
)

// ErrReadOnly is returned when a write operation is attempted on a read-only store.
var ErrReadOnly = errors.New("store is read-only")

// ReadOnlyStore wraps a Store to reject every write operation. It is used to
// mount areas, such as a shipped bundle, that must never be modified.
//
// Example:
//
//	bundle, _ := local.New("/opt/app/bundle")
//	mounts.Mount(fileutil.Library, fileutil.NewReadOnlyStore(bundle))
type ReadOnlyStore struct {
	store          Store
	onWriteAttempt func(op, path string)
}

// ReadOnlyOption is a functional option for configuring ReadOnlyStore.
type ReadOnlyOption func(*ReadOnlyStore)

// WithWriteAttemptHandler sets a callback invoked for each rejected write,
// e.g. for logging. It cannot allow the write.
func WithWriteAttemptHandler(handler func(op, path string)) ReadOnlyOption {
	return func(r *ReadOnlyStore) {
		r.onWriteAttempt = handler
	}
}

// NewReadOnlyStore creates a read-only wrapper around store.
func NewReadOnlyStore(store Store, opts ...ReadOnlyOption) *ReadOnlyStore {
	r := &ReadOnlyStore{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Unwrap returns the underlying Store.
func (r *ReadOnlyStore) Unwrap() Store {
	return r.store
}

func (r *ReadOnlyStore) reject(op, path string) error {
	if r.onWriteAttempt != nil {
		r.onWriteAttempt(op, path)
	}
	return &PathError{Op: op, Path: path, Err: ErrReadOnly}
}

// Stat delegates to the underlying store.
func (r *ReadOnlyStore) Stat(ctx context.Context, path string) (*EntryInfo, error) {
	return r.store.Stat(ctx, path)
}

// List delegates to the underlying store.
func (r *ReadOnlyStore) List(ctx context.Context, path string) ([]EntryInfo, error) {
	return r.store.List(ctx, path)
}

// Read delegates to the underlying store.
func (r *ReadOnlyStore) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	return r.store.Read(ctx, path)
}

// Write returns ErrReadOnly.
func (r *ReadOnlyStore) Write(_ context.Context, path string, _ io.Reader) error {
	return r.reject("write", path)
}

// Delete returns ErrReadOnly.
func (r *ReadOnlyStore) Delete(_ context.Context, path string) error {
	return r.reject("delete", path)
}

// CreateDir returns ErrReadOnly.
func (r *ReadOnlyStore) CreateDir(_ context.Context, path string) error {
	return r.reject("createdir", path)
}

// DeleteDir returns ErrReadOnly.
func (r *ReadOnlyStore) DeleteDir(_ context.Context, path string) error {
	return r.reject("deletedir", path)
}

// Locate delegates to the underlying store if supported.
func (r *ReadOnlyStore) Locate(ctx context.Context, path string) (string, error) {
	if locator, ok := r.store.(CanLocate); ok {
		return locator.Locate(ctx, path)
	}
	return "", &PathError{Op: "locate", Path: path, Err: ErrNotSupported}
}

var (
	_ Store     = (*ReadOnlyStore)(nil)
	_ CanLocate = (*ReadOnlyStore)(nil)
)

// IsReadOnlyError checks if an error is due to read-only restrictions.
func IsReadOnlyError(err error) bool {
	return errors.Is(err, ErrReadOnly)
}
