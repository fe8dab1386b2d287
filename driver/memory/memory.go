package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/fileutil"
)

// memoryFile represents a file stored in memory
type memoryFile struct {
	content []byte
	modTime time.Time
}

// memoryDir represents a directory in memory
type memoryDir struct {
	modTime time.Time
}

// Adapter provides an in-memory implementation of fileutil.Store.
// Useful for testing and for scratch areas.
type Adapter struct {
	mu      sync.RWMutex
	name    string
	files   map[string]*memoryFile
	dirs    map[string]*memoryDir
	maxSize int64 // Maximum total storage size (0 = unlimited)
	size    int64 // Current total size
}

// Config holds configuration for the memory adapter
type Config struct {
	// Name appears as the host part of memory:// locators
	Name string
	// MaxSize is the maximum total storage size in bytes (0 = unlimited)
	MaxSize int64
}

// ErrNoSpace is returned when a write would exceed MaxSize.
var ErrNoSpace = errors.New("no space left in memory store")

// New creates a new in-memory store
func New(cfg ...Config) *Adapter {
	var c Config
	if len(cfg) > 0 {
		c = cfg[0]
	}
	if c.Name == "" {
		c.Name = "default"
	}

	a := &Adapter{
		name:    c.Name,
		files:   make(map[string]*memoryFile),
		dirs:    make(map[string]*memoryDir),
		maxSize: c.MaxSize,
	}

	// Create root directory
	a.dirs[""] = &memoryDir{modTime: time.Now()}

	return a
}

// Write implements fileutil.StoreWriter
func (a *Adapter) Write(ctx context.Context, p string, content io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p = normalizePath(p)
	if !isValidPath(p) || p == "" {
		return &fileutil.PathError{Op: "write", Path: p, Err: fileutil.ErrNotAllowed}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return &fileutil.PathError{Op: "write", Path: p, Err: err}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, isDir := a.dirs[p]; isDir {
		return &fileutil.PathError{Op: "write", Path: p, Err: fileutil.ErrIsDir}
	}
	if err := a.checkParents(p); err != nil {
		return &fileutil.PathError{Op: "write", Path: p, Err: err}
	}

	newSize := a.size + int64(len(data))
	if existing, exists := a.files[p]; exists {
		newSize -= int64(len(existing.content))
	}
	if a.maxSize > 0 && newSize > a.maxSize {
		return &fileutil.PathError{Op: "write", Path: p, Err: ErrNoSpace}
	}

	a.ensureParentDirs(p)
	a.files[p] = &memoryFile{content: data, modTime: time.Now()}
	a.size = newSize

	return nil
}

// Read implements fileutil.StoreReader
func (a *Adapter) Read(ctx context.Context, p string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[p]
	if !exists {
		if _, isDir := a.dirs[p]; isDir {
			return nil, &fileutil.PathError{Op: "read", Path: p, Err: fileutil.ErrIsDir}
		}
		return nil, &fileutil.PathError{Op: "read", Path: p, Err: fileutil.ErrNotExist}
	}

	// Return a copy of the content to prevent modification
	return io.NopCloser(bytes.NewReader(bytes.Clone(file.content))), nil
}

// Delete implements fileutil.StoreWriter
func (a *Adapter) Delete(ctx context.Context, p string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.Lock()
	defer a.mu.Unlock()

	file, exists := a.files[p]
	if !exists {
		return &fileutil.PathError{Op: "delete", Path: p, Err: fileutil.ErrNotExist}
	}

	a.size -= int64(len(file.content))
	delete(a.files, p)

	return nil
}

// Stat implements fileutil.StoreReader
func (a *Adapter) Stat(ctx context.Context, p string) (*fileutil.EntryInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if file, exists := a.files[p]; exists {
		return &fileutil.EntryInfo{
			Name:    path.Base(p),
			Path:    p,
			Size:    int64(len(file.content)),
			ModTime: file.modTime,
			Kind:    fileutil.File,
		}, nil
	}

	if dir, exists := a.dirs[p]; exists {
		return &fileutil.EntryInfo{
			Name:    path.Base(p),
			Path:    p,
			ModTime: dir.modTime,
			Kind:    fileutil.Directory,
		}, nil
	}

	return nil, &fileutil.PathError{Op: "stat", Path: p, Err: fileutil.ErrNotExist}
}

// List implements fileutil.StoreReader. Entries are sorted by name.
func (a *Adapter) List(ctx context.Context, p string) ([]fileutil.EntryInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, exists := a.dirs[p]; !exists {
		if _, isFile := a.files[p]; isFile {
			return nil, &fileutil.PathError{Op: "list", Path: p, Err: fileutil.ErrNotDir}
		}
		return nil, &fileutil.PathError{Op: "list", Path: p, Err: fileutil.ErrNotExist}
	}

	var entries []fileutil.EntryInfo

	for filePath, file := range a.files {
		if name, ok := childName(p, filePath); ok {
			entries = append(entries, fileutil.EntryInfo{
				Name:    name,
				Path:    filePath,
				Size:    int64(len(file.content)),
				ModTime: file.modTime,
				Kind:    fileutil.File,
			})
		}
	}

	for dirPath, dir := range a.dirs {
		if name, ok := childName(p, dirPath); ok {
			entries = append(entries, fileutil.EntryInfo{
				Name:    name,
				Path:    dirPath,
				ModTime: dir.modTime,
				Kind:    fileutil.Directory,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// childName returns the base name of candidate when it is an immediate child
// of dir.
func childName(dir, candidate string) (string, bool) {
	if candidate == "" || candidate == dir {
		return "", false
	}
	rel := candidate
	if dir != "" {
		if !strings.HasPrefix(candidate, dir+"/") {
			return "", false
		}
		rel = strings.TrimPrefix(candidate, dir+"/")
	}
	if rel == "" || strings.Contains(rel, "/") {
		return "", false
	}
	return rel, true
}

// CreateDir implements fileutil.StoreWriter
func (a *Adapter) CreateDir(ctx context.Context, p string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p = normalizePath(p)
	if !isValidPath(p) {
		return &fileutil.PathError{Op: "createdir", Path: p, Err: fileutil.ErrNotAllowed}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.files[p]; exists {
		return &fileutil.PathError{Op: "createdir", Path: p, Err: fileutil.ErrExist}
	}
	if err := a.checkParents(p); err != nil {
		return &fileutil.PathError{Op: "createdir", Path: p, Err: err}
	}

	a.ensureParentDirs(p)
	if _, exists := a.dirs[p]; !exists {
		a.dirs[p] = &memoryDir{modTime: time.Now()}
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

	p = normalizePath(p)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.dirs[p]; !exists {
		if _, isFile := a.files[p]; isFile {
			return &fileutil.PathError{Op: "deletedir", Path: p, Err: fileutil.ErrNotDir}
		}
		return &fileutil.PathError{Op: "deletedir", Path: p, Err: fileutil.ErrNotExist}
	}

	prefix := p + "/"
	if p == "" {
		prefix = ""
	}

	for filePath, file := range a.files {
		if strings.HasPrefix(filePath, prefix) {
			a.size -= int64(len(file.content))
			delete(a.files, filePath)
		}
	}

	for dirPath := range a.dirs {
		if dirPath != "" && (dirPath == p || strings.HasPrefix(dirPath, prefix)) {
			delete(a.dirs, dirPath)
		}
	}

	return nil
}

// Clear removes all files and directories from the memory store
// Useful for testing cleanup
func (a *Adapter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.files = make(map[string]*memoryFile)
	a.dirs = make(map[string]*memoryDir)
	a.size = 0

	// Recreate root directory
	a.dirs[""] = &memoryDir{modTime: time.Now()}
}

// Size returns the current total size of all stored files
func (a *Adapter) Size() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.size
}

// FileCount returns the number of files stored
func (a *Adapter) FileCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.files)
}

// checkParents fails when an ancestor of p is a file.
// Must be called with lock held
func (a *Adapter) checkParents(p string) error {
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if _, isFile := a.files[dir]; isFile {
			return fileutil.ErrNotDir
		}
	}
	return nil
}

// ensureParentDirs creates all parent directories for a given path
// Must be called with lock held
func (a *Adapter) ensureParentDirs(p string) {
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if _, exists := a.dirs[dir]; !exists {
			a.dirs[dir] = &memoryDir{modTime: time.Now()}
		}
	}
}

// normalizePath normalizes a file path
func normalizePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" || p == "." {
		return ""
	}
	return path.Clean(p)
}

// isValidPath checks if a path is valid (no directory traversal)
func isValidPath(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Copy implements fileutil.CanCopy for in-memory file copying.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	src = normalizePath(src)
	dst = normalizePath(dst)

	if !isValidPath(src) || !isValidPath(dst) || dst == "" || src == dst {
		return &fileutil.PathError{Op: "copy", Path: src, Err: fileutil.ErrNotAllowed}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	srcFile, exists := a.files[src]
	if !exists {
		return &fileutil.PathError{Op: "copy", Path: src, Err: fileutil.ErrNotExist}
	}
	if _, isDir := a.dirs[dst]; isDir {
		return &fileutil.PathError{Op: "copy", Path: dst, Err: fileutil.ErrIsDir}
	}
	if err := a.checkParents(dst); err != nil {
		return &fileutil.PathError{Op: "copy", Path: dst, Err: err}
	}

	newSize := a.size + int64(len(srcFile.content))
	if existing, ok := a.files[dst]; ok {
		newSize -= int64(len(existing.content))
	}
	if a.maxSize > 0 && newSize > a.maxSize {
		return &fileutil.PathError{Op: "copy", Path: dst, Err: ErrNoSpace}
	}

	a.ensureParentDirs(dst)
	a.files[dst] = &memoryFile{
		content: bytes.Clone(srcFile.content),
		modTime: time.Now(),
	}
	a.size = newSize

	return nil
}

// Locate implements fileutil.CanLocate with memory://<name>/<path> URIs.
func (a *Adapter) Locate(_ context.Context, p string) (string, error) {
	u := url.URL{Scheme: "memory", Host: a.name, Path: "/" + normalizePath(p)}
	return u.String(), nil
}

// Ensure Adapter implements interfaces
var (
	_ fileutil.Store     = (*Adapter)(nil)
	_ fileutil.CanCopy   = (*Adapter)(nil)
	_ fileutil.CanLocate = (*Adapter)(nil)
)
