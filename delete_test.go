package fileutil_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/fileutil"
)

func TestDeleteEntriesSwallowsFailures(t *testing.T) {
	ctx := context.Background()

	store := new(mockStore)
	store.On("Stat", mock.Anything, "app/a.js").Return(fileInfo("a.js"), nil)
	store.On("Stat", mock.Anything, "app/b.js").Return(nil, notExist("app/b.js"))
	store.On("Stat", mock.Anything, "app/c.js").Return(fileInfo("c.js"), nil)
	store.On("Delete", mock.Anything, "app/a.js").Return(nil).Once()
	store.On("Delete", mock.Anything, "app/c.js").Return(errors.New("device busy")).Once()

	mounts := fileutil.NewMountManager()
	require.NoError(t, mounts.Mount(fileutil.Data, store))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	assert.NotPanics(t, func() {
		fileutil.DeleteEntries(ctx, mounts, at("DATA:app"), []string{"a.js", "b.js", "c.js"}, logger)
	})

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Delete", mock.Anything, "app/b.js")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="could not delete file"`)
	assert.Contains(t, out, "path=DATA:app/c.js")
	assert.Contains(t, out, "device busy")
	assert.NotContains(t, out, "b.js")
}

func TestDeleteEntriesReport(t *testing.T) {
	ctx := context.Background()
	host := newHost(t)
	seed(t, host, map[string]string{
		"DATA:app/a.js":         "a",
		"DATA:app/sub/inner.js": "i",
	})

	u := fileutil.NewFileUtil(host)
	results := u.DeleteEntriesReport(ctx, "app", []string{"a.js", "missing.js", "sub"})
	require.Len(t, results, 3)

	assert.Equal(t, fileutil.Deleted, results[0].Outcome)
	assert.Equal(t, at("DATA:app/a.js"), results[0].Location)
	assert.Equal(t, fileutil.Skipped, results[1].Outcome)
	assert.Equal(t, fileutil.Skipped, results[2].Outcome, "directories are not files")
	for _, r := range results {
		assert.NoError(t, r.Err)
	}

	assert.False(t, u.FileExists(ctx, fileutil.Data, "app/a.js"))
	assert.True(t, u.DataDirectoryExists(ctx, "app/sub"))
}

func TestDeleteEntriesFailedOutcome(t *testing.T) {
	ctx := context.Background()
	host := newHost(t)
	seed(t, host, map[string]string{"LIBRARY:pkg/x.js": "x"})

	mounts := fileutil.NewMountManager()
	lib, err := host.Store(fileutil.Library)
	require.NoError(t, err)
	require.NoError(t, mounts.Mount(fileutil.Library, fileutil.NewReadOnlyStore(lib)))

	results := fileutil.NewFileUtil(mounts).In(fileutil.Library).DeleteEntriesReport(ctx, "pkg", []string{"x.js"})
	require.Len(t, results, 1)
	assert.Equal(t, fileutil.Failed, results[0].Outcome)
	assert.True(t, fileutil.IsReadOnlyError(results[0].Err))
	assert.Equal(t, "failed", results[0].Outcome.String())
}

func TestDeleteEntriesEmptyList(t *testing.T) {
	host := newHost(t)
	u := fileutil.NewFileUtil(host)

	assert.Empty(t, u.DeleteEntriesReport(context.Background(), "nowhere", nil))
	assert.NotPanics(t, func() {
		fileutil.DeleteEntries(context.Background(), host, at("DATA:nowhere"), []string{"x"}, nil)
	})
}
