package fileutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrMountExists is returned when an area already has a store mounted
	ErrMountExists = errors.New("area already mounted")
	// ErrNilStore is returned when trying to mount a nil store
	ErrNilStore = errors.New("store cannot be nil")
	// ErrEmptyArea is returned when the area tag is empty
	ErrEmptyArea = errors.New("area cannot be empty")
)

// MountManager implements Host by routing every Location to the Store
// mounted for its area. Copies between two areas cross stores by streaming.
type MountManager struct {
	mu     sync.RWMutex
	mounts map[Area]Store
}

// NewMountManager creates a new mount manager instance.
func NewMountManager() *MountManager {
	return &MountManager{
		mounts: make(map[Area]Store),
	}
}

// Mount attaches store as the backend of area.
//
// Example:
//
//	mounts.Mount(fileutil.Data, localStore)
//	mounts.Mount(fileutil.Cache, memory.New())
func (m *MountManager) Mount(area Area, store Store) error {
	if store == nil {
		return ErrNilStore
	}
	if area == "" {
		return ErrEmptyArea
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.mounts[area]; exists {
		return fmt.Errorf("%w: %s", ErrMountExists, area)
	}
	m.mounts[area] = store
	return nil
}

// Unmount removes the store mounted for area.
func (m *MountManager) Unmount(area Area) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.mounts[area]; !exists {
		return fmt.Errorf("%w: %s", ErrAreaNotMounted, area)
	}
	delete(m.mounts, area)
	return nil
}

// Areas returns the mounted areas in sorted order.
func (m *MountManager) Areas() []Area {
	m.mu.RLock()
	defer m.mu.RUnlock()

	areas := make([]Area, 0, len(m.mounts))
	for a := range m.mounts {
		areas = append(areas, a)
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i] < areas[j] })
	return areas
}

// Store returns the store mounted for area.
func (m *MountManager) Store(area Area) (Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	store, exists := m.mounts[area]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAreaNotMounted, area)
	}
	return store, nil
}

// resolve finds the store and store-relative path for loc.
func (m *MountManager) resolve(op string, loc Location) (Store, string, error) {
	store, err := m.Store(loc.Area)
	if err != nil {
		return nil, "", &PathError{Op: op, Path: loc.String(), Err: err}
	}
	rel, err := storePath(loc.Path)
	if err != nil {
		return nil, "", &PathError{Op: op, Path: loc.String(), Err: err}
	}
	return store, rel, nil
}

// storePath normalises a location path and rejects parent traversal.
func storePath(p string) (string, error) {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", ErrNotAllowed
		}
	}
	return cleanRel(path.Clean("/" + p)), nil
}

// overlaps reports whether dst is src itself or lies below it.
func overlaps(src, dst string) bool {
	return src == "" || dst == src || strings.HasPrefix(dst, src+"/")
}

// ============================================================================
// Host Implementation
// ============================================================================

// Stat classifies the entry at loc.
func (m *MountManager) Stat(ctx context.Context, loc Location) (*EntryInfo, error) {
	store, rel, err := m.resolve("stat", loc)
	if err != nil {
		return nil, err
	}
	info, err := store.Stat(ctx, rel)
	if err != nil {
		return nil, locError("stat", loc, err)
	}
	return info, nil
}

// List returns the immediate children of the directory at loc.
func (m *MountManager) List(ctx context.Context, loc Location) ([]EntryInfo, error) {
	store, rel, err := m.resolve("list", loc)
	if err != nil {
		return nil, err
	}
	entries, err := store.List(ctx, rel)
	if err != nil {
		return nil, locError("list", loc, err)
	}
	return entries, nil
}

// CopyEntry copies src to dst. A file is copied as a single entry; a
// directory is copied whole onto an absent destination. Copying onto an
// existing directory fails with ErrIsDir. A destination equal to or inside
// the source on the same store fails with ErrNotAllowed.
func (m *MountManager) CopyEntry(ctx context.Context, src, dst Location) error {
	srcStore, srcRel, err := m.resolve("copy", src)
	if err != nil {
		return err
	}
	dstStore, dstRel, err := m.resolve("copy", dst)
	if err != nil {
		return err
	}
	if srcStore == dstStore && overlaps(srcRel, dstRel) {
		return &PathError{Op: "copy", Path: dst.String(), Err: ErrNotAllowed}
	}

	srcInfo, err := srcStore.Stat(ctx, srcRel)
	if err != nil {
		return locError("copy", src, err)
	}
	if dstInfo, err := dstStore.Stat(ctx, dstRel); err == nil && dstInfo.IsDir() {
		return &PathError{Op: "copy", Path: dst.String(), Err: ErrIsDir}
	}

	if srcInfo.IsDir() {
		err = copyDir(ctx, srcStore, srcRel, dstStore, dstRel)
	} else {
		err = copyFile(ctx, srcStore, srcRel, dstStore, dstRel)
	}
	if err != nil {
		return locError("copy", src, err)
	}
	return nil
}

// copyFile copies one file, natively when both paths live on the same store.
func copyFile(ctx context.Context, srcStore Store, srcRel string, dstStore Store, dstRel string) error {
	if srcStore == dstStore {
		if copier, ok := srcStore.(CanCopy); ok {
			return copier.Copy(ctx, srcRel, dstRel)
		}
	}

	reader, err := srcStore.Read(ctx, srcRel)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	defer reader.Close()

	if err := dstStore.Write(ctx, dstRel, reader); err != nil {
		return fmt.Errorf("write destination: %w", err)
	}
	return nil
}

func copyDir(ctx context.Context, srcStore Store, srcRel string, dstStore Store, dstRel string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := dstStore.CreateDir(ctx, dstRel); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	entries, err := srcStore.List(ctx, srcRel)
	if err != nil {
		return fmt.Errorf("list source: %w", err)
	}

	for _, entry := range entries {
		childSrc := path.Join(srcRel, entry.Name)
		childDst := path.Join(dstRel, entry.Name)
		if entry.IsDir() {
			err = copyDir(ctx, srcStore, childSrc, dstStore, childDst)
		} else {
			err = copyFile(ctx, srcStore, childSrc, dstStore, childDst)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// MakeDirectory creates the directory at loc. Without recursive the parent
// must already exist and loc must not.
func (m *MountManager) MakeDirectory(ctx context.Context, loc Location, recursive bool) error {
	store, rel, err := m.resolve("mkdir", loc)
	if err != nil {
		return err
	}

	if info, err := store.Stat(ctx, rel); err == nil {
		if !info.IsDir() || !recursive {
			return &PathError{Op: "mkdir", Path: loc.String(), Err: ErrExist}
		}
	}

	if !recursive {
		if parent := path.Dir(rel); parent != "." && parent != "/" {
			info, err := store.Stat(ctx, parent)
			if err != nil {
				return locError("mkdir", loc, err)
			}
			if !info.IsDir() {
				return &PathError{Op: "mkdir", Path: loc.String(), Err: ErrNotDir}
			}
		}
	}

	if err := store.CreateDir(ctx, rel); err != nil {
		return locError("mkdir", loc, err)
	}
	return nil
}

// RemoveDirectory deletes the directory at loc. Without recursive the
// directory must be empty.
func (m *MountManager) RemoveDirectory(ctx context.Context, loc Location, recursive bool) error {
	store, rel, err := m.resolve("rmdir", loc)
	if err != nil {
		return err
	}

	info, err := store.Stat(ctx, rel)
	if err != nil {
		return locError("rmdir", loc, err)
	}
	if !info.IsDir() {
		return &PathError{Op: "rmdir", Path: loc.String(), Err: ErrNotDir}
	}

	if !recursive {
		entries, err := store.List(ctx, rel)
		if err != nil {
			return locError("rmdir", loc, err)
		}
		if len(entries) > 0 {
			return &PathError{Op: "rmdir", Path: loc.String(), Err: ErrNotEmpty}
		}
	}

	if err := store.DeleteDir(ctx, rel); err != nil {
		return locError("rmdir", loc, err)
	}
	return nil
}

// RemoveFile deletes the file at loc.
func (m *MountManager) RemoveFile(ctx context.Context, loc Location) error {
	store, rel, err := m.resolve("delete", loc)
	if err != nil {
		return err
	}

	info, err := store.Stat(ctx, rel)
	if err != nil {
		return locError("delete", loc, err)
	}
	if info.IsDir() {
		return &PathError{Op: "delete", Path: loc.String(), Err: ErrIsDir}
	}

	if err := store.Delete(ctx, rel); err != nil {
		return locError("delete", loc, err)
	}
	return nil
}

// ReadFile reads the file at loc as text in enc.
func (m *MountManager) ReadFile(ctx context.Context, loc Location, enc Encoding) (string, error) {
	store, rel, err := m.resolve("read", loc)
	if err != nil {
		return "", err
	}

	rc, err := store.Read(ctx, rel)
	if err != nil {
		return "", locError("read", loc, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", locError("read", loc, err)
	}

	text, err := enc.Decode(data)
	if err != nil {
		return "", locError("read", loc, err)
	}
	return text, nil
}

// WriteFile writes data to loc in enc, replacing any existing file.
func (m *MountManager) WriteFile(ctx context.Context, loc Location, data string, enc Encoding) error {
	store, rel, err := m.resolve("write", loc)
	if err != nil {
		return err
	}

	raw, err := enc.Encode(data)
	if err != nil {
		return locError("write", loc, err)
	}

	if err := store.Write(ctx, rel, bytes.NewReader(raw)); err != nil {
		return locError("write", loc, err)
	}
	return nil
}

// ResolveLocator returns the store's own locator when it can produce one,
// otherwise a fileutil:// URI naming the area and path.
func (m *MountManager) ResolveLocator(ctx context.Context, loc Location) (string, error) {
	store, rel, err := m.resolve("locate", loc)
	if err != nil {
		return "", err
	}

	if locator, ok := store.(CanLocate); ok {
		uri, err := locator.Locate(ctx, rel)
		if err == nil {
			return uri, nil
		}
		if !errors.Is(err, ErrNotSupported) {
			return "", locError("locate", loc, err)
		}
	}

	u := url.URL{
		Scheme: "fileutil",
		Host:   strings.ToLower(string(loc.Area)),
		Path:   "/" + rel,
	}
	return u.String(), nil
}

var _ Host = (*MountManager)(nil)

// Close closes every mounted store that holds resources, such as an SFTP
// connection.
func (m *MountManager) Close() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for area, store := range m.mounts {
		if c, ok := store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", area, err))
			}
		}
	}
	return errors.Join(errs...)
}
