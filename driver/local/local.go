package local

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/gobeaver/fileutil"
)

// Adapter provides a local filesystem implementation of fileutil.Store
// rooted at one directory.
type Adapter struct {
	root string
}

// New creates a new local filesystem adapter. The root directory is created
// if it does not exist.
func New(root string) (*Adapter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	// Ensure the root directory exists
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, err
	}

	return &Adapter{
		root: absRoot,
	}, nil
}

// Root returns the absolute root directory of the adapter.
func (a *Adapter) Root() string {
	return a.root
}

// resolve maps a store path onto the OS, refusing paths outside the root.
func (a *Adapter) resolve(op, path string) (string, error) {
	fullPath := filepath.Join(a.root, filepath.FromSlash(filepath.Clean("/"+path)))
	if !isPathUnderRoot(a.root, fullPath) {
		return "", &fileutil.PathError{Op: op, Path: path, Err: fileutil.ErrNotAllowed}
	}
	return fullPath, nil
}

// Write implements fileutil.StoreWriter
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.resolve("write", path)
	if err != nil {
		return err
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return mapError("write", path, err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return mapError("write", path, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return mapError("write", path, err)
	}
	if err := f.Close(); err != nil {
		return mapError("write", path, err)
	}

	return nil
}

// Read implements fileutil.StoreReader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.resolve("read", path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, mapError("read", path, err)
	}
	return f, nil
}

// Delete implements fileutil.StoreWriter
func (a *Adapter) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.resolve("delete", path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		return mapError("delete", path, err)
	}
	return nil
}

// Stat implements fileutil.StoreReader
func (a *Adapter) Stat(ctx context.Context, path string) (*fileutil.EntryInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.resolve("stat", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, mapError("stat", path, err)
	}

	return entryInfo(path, info), nil
}

// List implements fileutil.StoreReader
func (a *Adapter) List(ctx context.Context, path string) ([]fileutil.EntryInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.resolve("list", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, mapError("list", path, err)
	}
	if !info.IsDir() {
		return nil, &fileutil.PathError{Op: "list", Path: path, Err: fileutil.ErrNotDir}
	}

	dirEntries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, mapError("list", path, err)
	}

	entries := make([]fileutil.EntryInfo, 0, len(dirEntries))
	for _, de := range dirEntries {
		// Follow symlinks so a linked directory is walked like a directory.
		fi, err := os.Stat(filepath.Join(fullPath, de.Name()))
		if err != nil {
			continue
		}
		entries = append(entries, *entryInfo(joinRel(path, de.Name()), fi))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// CreateDir implements fileutil.StoreWriter
func (a *Adapter) CreateDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.resolve("createdir", path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(fullPath, 0755); err != nil {
		return mapError("createdir", path, err)
	}
	return nil
}

// DeleteDir implements fileutil.StoreWriter
func (a *Adapter) DeleteDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.resolve("deletedir", path)
	if err != nil {
		return err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return mapError("deletedir", path, err)
	}
	if !info.IsDir() {
		return &fileutil.PathError{Op: "deletedir", Path: path, Err: fileutil.ErrNotDir}
	}

	if fullPath == a.root {
		// Keep the root itself so the area stays mounted.
		entries, err := os.ReadDir(fullPath)
		if err != nil {
			return mapError("deletedir", path, err)
		}
		for _, e := range entries {
			if err := os.RemoveAll(filepath.Join(fullPath, e.Name())); err != nil {
				return mapError("deletedir", path, err)
			}
		}
		return nil
	}

	if err := os.RemoveAll(fullPath); err != nil {
		return mapError("deletedir", path, err)
	}
	return nil
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Copy implements fileutil.CanCopy for native file copying.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	srcPath, err := a.resolve("copy", src)
	if err != nil {
		return err
	}
	dstPath, err := a.resolve("copy", dst)
	if err != nil {
		return err
	}

	if srcPath == dstPath {
		return &fileutil.PathError{Op: "copy", Path: dst, Err: fileutil.ErrNotAllowed}
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		return mapError("copy", src, err)
	}
	defer srcFile.Close()

	// Create destination directory if needed
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return mapError("copy", dst, err)
	}

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return mapError("copy", dst, err)
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return mapError("copy", dst, err)
	}
	if err := dstFile.Close(); err != nil {
		return mapError("copy", dst, err)
	}

	// Copy file permissions
	if srcInfo, err := srcFile.Stat(); err == nil {
		_ = os.Chmod(dstPath, srcInfo.Mode().Perm())
	}

	return nil
}

// Locate implements fileutil.CanLocate with file:// URIs.
func (a *Adapter) Locate(_ context.Context, path string) (string, error) {
	fullPath, err := a.resolve("locate", path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(fullPath)}
	return u.String(), nil
}

// ============================================================================
// Helpers
// ============================================================================

func entryInfo(path string, info os.FileInfo) *fileutil.EntryInfo {
	kind := fileutil.File
	if info.IsDir() {
		kind = fileutil.Directory
	}
	return &fileutil.EntryInfo{
		Name:    info.Name(),
		Path:    strings.Trim(path, "/"),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Kind:    kind,
	}
}

func joinRel(dir, name string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return !filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// mapError maps OS errors to fileutil errors
func mapError(op, path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &fileutil.PathError{Op: op, Path: path, Err: fileutil.ErrNotExist}
	case errors.Is(err, os.ErrPermission):
		return &fileutil.PathError{Op: op, Path: path, Err: fileutil.ErrPermission}
	case errors.Is(err, os.ErrExist):
		return &fileutil.PathError{Op: op, Path: path, Err: fileutil.ErrExist}
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, syscall.ENOTDIR) {
		return &fileutil.PathError{Op: op, Path: path, Err: fileutil.ErrNotDir}
	}

	return &fileutil.PathError{Op: op, Path: path, Err: err}
}

// Ensure Adapter implements interfaces
var (
	_ fileutil.Store     = (*Adapter)(nil)
	_ fileutil.CanCopy   = (*Adapter)(nil)
	_ fileutil.CanLocate = (*Adapter)(nil)
)
