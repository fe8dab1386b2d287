package fileutil_test

import (
	"context"
	"io"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/gobeaver/fileutil"
)

// mockStore is a testify mock of fileutil.Store.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Stat(ctx context.Context, path string) (*fileutil.EntryInfo, error) {
	args := m.Called(ctx, path)
	info, _ := args.Get(0).(*fileutil.EntryInfo)
	return info, args.Error(1)
}

func (m *mockStore) List(ctx context.Context, path string) ([]fileutil.EntryInfo, error) {
	args := m.Called(ctx, path)
	entries, _ := args.Get(0).([]fileutil.EntryInfo)
	return entries, args.Error(1)
}

func (m *mockStore) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *mockStore) Write(ctx context.Context, path string, r io.Reader) error {
	return m.Called(ctx, path, r).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *mockStore) CreateDir(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *mockStore) DeleteDir(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

// closingStore records whether Close was called.
type closingStore struct {
	mockStore
	closed bool
	err    error
}

func (c *closingStore) Close() error {
	c.closed = true
	return c.err
}

func fileInfo(name string) *fileutil.EntryInfo {
	return &fileutil.EntryInfo{Name: name, Path: name, Kind: fileutil.File}
}

func notExist(path string) error {
	return &fileutil.PathError{Op: "stat", Path: path, Err: fileutil.ErrNotExist}
}

func nopCloser(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}
