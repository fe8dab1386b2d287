// Package billy provides a fileutil.Store backed by a go-billy filesystem,
// either on disk (osfs) or in memory (memfs).
package billy

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/gobeaver/fileutil"
)

// Adapter wraps a billy.Filesystem as a fileutil.Store. Paths are scoped to
// the filesystem root.
type Adapter struct {
	bfs  billy.Filesystem
	root string // absolute OS root, empty for in-memory filesystems
}

// NewLocal creates an adapter over an osfs rooted at root. The root directory
// is created if it does not exist.
func NewLocal(root string) (*Adapter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	bfs := osfs.New(absRoot)
	if err := bfs.MkdirAll("/", 0755); err != nil {
		return nil, err
	}

	return &Adapter{bfs: bfs, root: absRoot}, nil
}

// NewMemory creates an adapter over an empty memfs.
func NewMemory() *Adapter {
	return &Adapter{bfs: memfs.New()}
}

// Wrap creates an adapter over an existing filesystem, e.g. a Chroot of a
// larger one.
func Wrap(bfs billy.Filesystem) *Adapter {
	return &Adapter{bfs: bfs}
}

// Unwrap returns the underlying billy.Filesystem.
func (a *Adapter) Unwrap() billy.Filesystem {
	return a.bfs
}

// billyPath converts a store path to an absolute path inside the filesystem.
func billyPath(p string) string {
	return "/" + strings.Trim(path.Clean("/"+p), "/")
}

// Write implements fileutil.StoreWriter
func (a *Adapter) Write(ctx context.Context, p string, content io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	bp := billyPath(p)
	if bp == "/" {
		return &fileutil.PathError{Op: "write", Path: p, Err: fileutil.ErrIsDir}
	}
	if err := a.checkParents(bp); err != nil {
		return &fileutil.PathError{Op: "write", Path: p, Err: err}
	}
	if info, err := a.bfs.Stat(bp); err == nil && info.IsDir() {
		return &fileutil.PathError{Op: "write", Path: p, Err: fileutil.ErrIsDir}
	}

	if err := a.bfs.MkdirAll(path.Dir(bp), 0755); err != nil {
		return mapError("write", p, err)
	}

	f, err := a.bfs.Create(bp)
	if err != nil {
		return mapError("write", p, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return mapError("write", p, err)
	}
	if err := f.Close(); err != nil {
		return mapError("write", p, err)
	}
	return nil
}

// Read implements fileutil.StoreReader
func (a *Adapter) Read(ctx context.Context, p string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	bp := billyPath(p)
	info, err := a.bfs.Stat(bp)
	if err != nil {
		return nil, mapError("read", p, err)
	}
	if info.IsDir() {
		return nil, &fileutil.PathError{Op: "read", Path: p, Err: fileutil.ErrIsDir}
	}

	f, err := a.bfs.Open(bp)
	if err != nil {
		return nil, mapError("read", p, err)
	}
	return f, nil
}

// Delete implements fileutil.StoreWriter
func (a *Adapter) Delete(ctx context.Context, p string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	bp := billyPath(p)
	info, err := a.bfs.Stat(bp)
	if err != nil {
		return mapError("delete", p, err)
	}
	if info.IsDir() {
		return &fileutil.PathError{Op: "delete", Path: p, Err: fileutil.ErrIsDir}
	}

	if err := a.bfs.Remove(bp); err != nil {
		return mapError("delete", p, err)
	}
	return nil
}

// Stat implements fileutil.StoreReader
func (a *Adapter) Stat(ctx context.Context, p string) (*fileutil.EntryInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	bp := billyPath(p)
	if bp == "/" {
		return &fileutil.EntryInfo{Name: "/", Kind: fileutil.Directory}, nil
	}

	info, err := a.bfs.Stat(bp)
	if err != nil {
		return nil, mapError("stat", p, err)
	}
	return entryInfo(strings.TrimPrefix(bp, "/"), info), nil
}

// List implements fileutil.StoreReader
func (a *Adapter) List(ctx context.Context, p string) ([]fileutil.EntryInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	bp := billyPath(p)
	if bp != "/" {
		info, err := a.bfs.Stat(bp)
		if err != nil {
			return nil, mapError("list", p, err)
		}
		if !info.IsDir() {
			return nil, &fileutil.PathError{Op: "list", Path: p, Err: fileutil.ErrNotDir}
		}
	}

	infos, err := a.bfs.ReadDir(bp)
	if err != nil {
		return nil, mapError("list", p, err)
	}

	entries := make([]fileutil.EntryInfo, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, *entryInfo(strings.TrimPrefix(path.Join(bp, info.Name()), "/"), info))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// CreateDir implements fileutil.StoreWriter
func (a *Adapter) CreateDir(ctx context.Context, p string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	bp := billyPath(p)
	if err := a.checkParents(bp); err != nil {
		return &fileutil.PathError{Op: "createdir", Path: p, Err: err}
	}
	if info, err := a.bfs.Stat(bp); err == nil && !info.IsDir() {
		return &fileutil.PathError{Op: "createdir", Path: p, Err: fileutil.ErrExist}
	}

	if err := a.bfs.MkdirAll(bp, 0755); err != nil {
		return mapError("createdir", p, err)
	}
	return nil
}

// DeleteDir implements fileutil.StoreWriter
func (a *Adapter) DeleteDir(ctx context.Context, p string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	bp := billyPath(p)
	if bp == "/" {
		// Empty the root but keep it.
		infos, err := a.bfs.ReadDir(bp)
		if err != nil {
			return mapError("deletedir", p, err)
		}
		for _, info := range infos {
			if err := util.RemoveAll(a.bfs, path.Join(bp, info.Name())); err != nil {
				return mapError("deletedir", p, err)
			}
		}
		return nil
	}

	info, err := a.bfs.Stat(bp)
	if err != nil {
		return mapError("deletedir", p, err)
	}
	if !info.IsDir() {
		return &fileutil.PathError{Op: "deletedir", Path: p, Err: fileutil.ErrNotDir}
	}

	if err := util.RemoveAll(a.bfs, bp); err != nil {
		return mapError("deletedir", p, err)
	}
	return nil
}

// Locate implements fileutil.CanLocate. Only disk-backed adapters have a
// locator of their own.
func (a *Adapter) Locate(_ context.Context, p string) (string, error) {
	if a.root == "" {
		return "", &fileutil.PathError{Op: "locate", Path: p, Err: fileutil.ErrNotSupported}
	}
	full := filepath.Join(a.root, filepath.FromSlash(billyPath(p)))
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(full)}
	return u.String(), nil
}

// checkParents fails with ErrNotDir when an ancestor of bp is a file.
func (a *Adapter) checkParents(bp string) error {
	for dir := path.Dir(bp); dir != "/" && dir != "."; dir = path.Dir(dir) {
		info, err := a.bfs.Stat(dir)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			return fileutil.ErrNotDir
		}
	}
	return nil
}

func entryInfo(p string, info os.FileInfo) *fileutil.EntryInfo {
	kind := fileutil.File
	if info.IsDir() {
		kind = fileutil.Directory
	}
	return &fileutil.EntryInfo{
		Name:    info.Name(),
		Path:    p,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Kind:    kind,
	}
}

// mapError maps billy errors to fileutil errors
func mapError(op, p string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &fileutil.PathError{Op: op, Path: p, Err: fileutil.ErrNotExist}
	case errors.Is(err, os.ErrPermission):
		return &fileutil.PathError{Op: op, Path: p, Err: fileutil.ErrPermission}
	case errors.Is(err, os.ErrExist):
		return &fileutil.PathError{Op: op, Path: p, Err: fileutil.ErrExist}
	case errors.Is(err, billy.ErrCrossedBoundary):
		return &fileutil.PathError{Op: op, Path: p, Err: fileutil.ErrNotAllowed}
	}
	return &fileutil.PathError{Op: op, Path: p, Err: err}
}

// Ensure Adapter implements interfaces
var (
	_ fileutil.Store     = (*Adapter)(nil)
	_ fileutil.CanLocate = (*Adapter)(nil)
)
