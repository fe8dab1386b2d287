package billy

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/fileutil"
)

func adapters(t *testing.T) map[string]*Adapter {
	t.Helper()
	local, err := NewLocal(filepath.Join(t.TempDir(), "area"))
	require.NoError(t, err)
	return map[string]*Adapter{
		"memfs": NewMemory(),
		"osfs":  local,
	}
}

func TestAdapter(t *testing.T) {
	ctx := context.Background()

	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("write then read", func(t *testing.T) {
				require.NoError(t, a.Write(ctx, "a/b/file.txt", strings.NewReader("hello")))

				rc, err := a.Read(ctx, "a/b/file.txt")
				require.NoError(t, err)
				data, err := io.ReadAll(rc)
				rc.Close()
				require.NoError(t, err)
				assert.Equal(t, "hello", string(data))

				info, err := a.Stat(ctx, "a/b")
				require.NoError(t, err)
				assert.True(t, info.IsDir())
			})

			t.Run("write replaces", func(t *testing.T) {
				require.NoError(t, a.Write(ctx, "r.txt", strings.NewReader("long content")))
				require.NoError(t, a.Write(ctx, "r.txt", strings.NewReader("short")))

				info, err := a.Stat(ctx, "r.txt")
				require.NoError(t, err)
				assert.Equal(t, int64(5), info.Size)
				assert.Equal(t, fileutil.File, info.Kind)
			})

			t.Run("write under a file fails", func(t *testing.T) {
				require.NoError(t, a.Write(ctx, "plain", strings.NewReader("x")))
				err := a.Write(ctx, "plain/child", strings.NewReader("y"))
				assert.ErrorIs(t, err, fileutil.ErrNotDir)
			})

			t.Run("list is sorted and shallow", func(t *testing.T) {
				require.NoError(t, a.Write(ctx, "l/z.txt", strings.NewReader("z")))
				require.NoError(t, a.Write(ctx, "l/a.txt", strings.NewReader("a")))
				require.NoError(t, a.Write(ctx, "l/sub/deep.txt", strings.NewReader("d")))

				entries, err := a.List(ctx, "l")
				require.NoError(t, err)
				require.Len(t, entries, 3)
				assert.Equal(t, "a.txt", entries[0].Name)
				assert.Equal(t, "l/a.txt", entries[0].Path)
				assert.Equal(t, "sub", entries[1].Name)
				assert.True(t, entries[1].IsDir())
				assert.Equal(t, "z.txt", entries[2].Name)

				_, err = a.List(ctx, "l/a.txt")
				assert.ErrorIs(t, err, fileutil.ErrNotDir)
			})

			t.Run("missing entries", func(t *testing.T) {
				_, err := a.Stat(ctx, "nope")
				assert.True(t, fileutil.IsNotExist(err))
				_, err = a.Read(ctx, "nope")
				assert.True(t, fileutil.IsNotExist(err))
				assert.True(t, fileutil.IsNotExist(a.Delete(ctx, "nope")))
				assert.True(t, fileutil.IsNotExist(a.DeleteDir(ctx, "nope")))
			})

			t.Run("create and delete dir", func(t *testing.T) {
				require.NoError(t, a.CreateDir(ctx, "d/e/f"))
				require.NoError(t, a.CreateDir(ctx, "d/e/f"))
				require.NoError(t, a.Write(ctx, "d/e/f/x.txt", strings.NewReader("x")))

				require.NoError(t, a.DeleteDir(ctx, "d"))
				_, err := a.Stat(ctx, "d")
				assert.True(t, fileutil.IsNotExist(err))
			})

			t.Run("delete refuses directory", func(t *testing.T) {
				require.NoError(t, a.CreateDir(ctx, "keep"))
				assert.ErrorIs(t, a.Delete(ctx, "keep"), fileutil.ErrIsDir)
				assert.ErrorIs(t, a.DeleteDir(ctx, "plain"), fileutil.ErrNotDir)
			})

			t.Run("delete root empties it", func(t *testing.T) {
				require.NoError(t, a.DeleteDir(ctx, ""))
				entries, err := a.List(ctx, "")
				require.NoError(t, err)
				assert.Empty(t, entries)

				info, err := a.Stat(ctx, "")
				require.NoError(t, err)
				assert.True(t, info.IsDir())
			})
		})
	}
}

func TestLocate(t *testing.T) {
	ctx := context.Background()

	_, err := NewMemory().Locate(ctx, "x")
	assert.ErrorIs(t, err, fileutil.ErrNotSupported)

	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	uri, err := local.Locate(ctx, "pkg/info.json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "file://"), uri)
	assert.True(t, strings.HasSuffix(uri, "/pkg/info.json"), uri)
}

func TestWrapChroot(t *testing.T) {
	ctx := context.Background()
	base := memfs.New()
	require.NoError(t, base.MkdirAll("/areas/data", 0755))
	sub, err := base.Chroot("/areas/data")
	require.NoError(t, err)

	a := Wrap(sub)
	require.NoError(t, a.Write(ctx, "f.txt", strings.NewReader("x")))

	_, err = base.Stat("/areas/data/f.txt")
	assert.NoError(t, err)
	assert.Same(t, sub, a.Unwrap())
}

func TestMountedOnManager(t *testing.T) {
	ctx := context.Background()
	mounts := fileutil.NewMountManager()
	require.NoError(t, mounts.Mount(fileutil.Data, NewMemory()))

	require.NoError(t, mounts.WriteFile(ctx, fileutil.At(fileutil.Data, "a.txt"), "hi", fileutil.UTF8))

	uri, err := mounts.ResolveLocator(ctx, fileutil.At(fileutil.Data, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fileutil://data/a.txt", uri)
}

var errFlush = errors.New("flush failed")

// flakyCloseFS hands out files whose Close fails, as a full disk would.
type flakyCloseFS struct {
	billy.Filesystem
}

func (f flakyCloseFS) Create(name string) (billy.File, error) {
	file, err := f.Filesystem.Create(name)
	if err != nil {
		return nil, err
	}
	return flakyCloseFile{file}, nil
}

type flakyCloseFile struct {
	billy.File
}

func (f flakyCloseFile) Close() error {
	_ = f.File.Close()
	return errFlush
}

func TestWriteReportsCloseFailure(t *testing.T) {
	a := Wrap(flakyCloseFS{memfs.New()})

	err := a.Write(context.Background(), "pkg/info.json", strings.NewReader("{}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errFlush)

	var pe *fileutil.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "write", pe.Op)
}

func TestWriteDataFileReportsCloseFailure(t *testing.T) {
	mounts := fileutil.NewMountManager()
	require.NoError(t, mounts.Mount(fileutil.Data, Wrap(flakyCloseFS{memfs.New()})))

	err := fileutil.NewFileUtil(mounts).WriteDataFile(context.Background(), "pkg/info.json", "{}")
	assert.ErrorIs(t, err, errFlush)
}
