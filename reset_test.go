package fileutil_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/fileutil"
)

func TestResetDirectoryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	host := newHost(t)
	seed(t, host, map[string]string{
		"DATA:tmp/old.txt":      "x",
		"DATA:tmp/deep/old.txt": "y",
	})

	for i := 0; i < 2; i++ {
		uri, err := fileutil.ResetDirectory(ctx, host, at("DATA:tmp"))
		require.NoError(t, err)
		assert.Equal(t, "memory://data/tmp", uri)

		assert.True(t, fileutil.DirectoryExists(ctx, host, at("DATA:tmp")))
		assert.Empty(t, tree(t, host, at("DATA:tmp")))
	}
}

func TestResetDirectoryCreatesMissing(t *testing.T) {
	ctx := context.Background()
	host := newHost(t)

	_, err := fileutil.ResetDirectory(ctx, host, at("DATA:a/b/c"))
	require.NoError(t, err)
	assert.True(t, fileutil.DirectoryExists(ctx, host, at("DATA:a/b/c")))
}

func TestResetDirectoryOverFile(t *testing.T) {
	ctx := context.Background()
	host := newHost(t)
	seed(t, host, map[string]string{"DATA:tmp": "file"})

	_, err := fileutil.ResetDirectory(ctx, host, at("DATA:tmp"))
	assert.True(t, fileutil.IsExist(err))
	assert.True(t, fileutil.FileExists(ctx, host, at("DATA:tmp")))
}

func TestResetDirectoryFailureLeavesPathAbsent(t *testing.T) {
	ctx := context.Background()
	host := newHost(t)
	seed(t, host, map[string]string{"DATA:tmp/old.txt": "x"})

	boom := errors.New("quota exceeded")
	rec := record(host)
	rec.mkdirErr = boom

	uri, err := fileutil.ResetDirectory(ctx, rec, at("DATA:tmp"))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, uri)
	assert.Equal(t, fileutil.Missing, fileutil.Classify(ctx, host, at("DATA:tmp")))
}

func TestDeleteDirectory(t *testing.T) {
	ctx := context.Background()
	host := newHost(t)
	seed(t, host, map[string]string{"DATA:gone/a/b.txt": "x"})

	require.NoError(t, fileutil.DeleteDirectory(ctx, host, at("DATA:gone")))
	assert.False(t, fileutil.DirectoryExists(ctx, host, at("DATA:gone")))

	err := fileutil.DeleteDirectory(ctx, host, at("DATA:gone"))
	assert.True(t, fileutil.IsNotExist(err))
}
