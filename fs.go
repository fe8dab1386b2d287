package fileutil

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Area identifies a storage root recognised by the host filesystem service.
type Area string

// Well-known areas. Data is the private application data area most helpers
// operate on.
const (
	Data      Area = "DATA"
	Cache     Area = "CACHE"
	Documents Area = "DOCUMENTS"
	Library   Area = "LIBRARY"
	External  Area = "EXTERNAL"
)

// KnownAreas lists the well-known areas in a stable order.
var KnownAreas = []Area{Data, Cache, Documents, Library, External}

// Location is an (area, path) pair. Path is a "/"-separated path relative to
// the area root.
type Location struct {
	Area Area
	Path string
}

// At returns the location of path inside area.
func At(area Area, path string) Location {
	return Location{Area: area, Path: path}
}

// ParseLocation parses "AREA:path". Without an area prefix the path is taken
// to be in Data. Area names are case-insensitive.
func ParseLocation(s string) (Location, error) {
	area, p, found := strings.Cut(s, ":")
	if !found {
		return Location{Area: Data, Path: cleanRel(s)}, nil
	}
	if area == "" {
		return Location{}, fmt.Errorf("%w: empty area in %q", ErrInvalidName, s)
	}
	return Location{Area: Area(strings.ToUpper(area)), Path: cleanRel(p)}, nil
}

// Child returns the location of the entry called name directly below l.
func (l Location) Child(name string) Location {
	if l.Path == "" {
		return Location{Area: l.Area, Path: name}
	}
	return Location{Area: l.Area, Path: l.Path + "/" + name}
}

// String renders the location as "AREA:path".
func (l Location) String() string {
	return string(l.Area) + ":" + l.Path
}

// EntryKind classifies what a location refers to.
type EntryKind int

const (
	Missing EntryKind = iota
	File
	Directory
)

func (k EntryKind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return "missing"
	}
}

// EntryInfo represents file/directory metadata
type EntryInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	Kind    EntryKind
}

// IsDir reports whether the entry is a directory.
func (e EntryInfo) IsDir() bool {
	return e.Kind == Directory
}

// ============================================================================
// Host service
// ============================================================================

// Host is the filesystem service every helper in this package delegates to.
// Implementations classify, list, copy, create, remove, read and write entries
// addressed by Location.
type Host interface {
	// Stat classifies the entry at loc. Fails with ErrNotExist if absent.
	Stat(ctx context.Context, loc Location) (*EntryInfo, error)

	// List returns the immediate children of the directory at loc.
	List(ctx context.Context, loc Location) ([]EntryInfo, error)

	// CopyEntry copies src to dst, creating dst's ancestry. It fails with
	// ErrIsDir when dst already exists as a directory.
	CopyEntry(ctx context.Context, src, dst Location) error

	// MakeDirectory creates a directory, with missing ancestors when recursive.
	MakeDirectory(ctx context.Context, loc Location, recursive bool) error

	// RemoveDirectory deletes a directory; with recursive, all contents too.
	RemoveDirectory(ctx context.Context, loc Location, recursive bool) error

	// RemoveFile deletes a single file. Fails with ErrNotExist if absent.
	RemoveFile(ctx context.Context, loc Location) error

	ReadFile(ctx context.Context, loc Location, enc Encoding) (string, error)
	WriteFile(ctx context.Context, loc Location, data string, enc Encoding) error

	// ResolveLocator returns an absolute, stable reference (URI) for loc.
	ResolveLocator(ctx context.Context, loc Location) (string, error)
}

// ============================================================================
// Store interfaces (Interface Segregation)
// ============================================================================

// StoreReader provides read-only access to a single area's backend.
// Paths are relative to the store root and "/"-separated.
type StoreReader interface {
	// Stat returns file/directory metadata.
	Stat(ctx context.Context, path string) (*EntryInfo, error)

	// List returns the immediate children of a directory.
	List(ctx context.Context, path string) ([]EntryInfo, error)

	// Read returns a stream for reading file content.
	Read(ctx context.Context, path string) (io.ReadCloser, error)
}

// StoreWriter provides write operations on a single area's backend.
type StoreWriter interface {
	// Write writes content to path, creating parents and replacing any
	// existing file.
	Write(ctx context.Context, path string, r io.Reader) error

	// Delete removes a file.
	Delete(ctx context.Context, path string) error

	// CreateDir creates a directory (and parents if needed).
	CreateDir(ctx context.Context, path string) error

	// DeleteDir removes a directory and all contents.
	DeleteDir(ctx context.Context, path string) error
}

// Store is a full read-write backend for one area.
type Store interface {
	StoreReader
	StoreWriter
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================
// Drivers may expose optional capabilities. MountManager checks for them with
// a type assertion:
//
//	if copier, ok := store.(CanCopy); ok {
//	    copier.Copy(ctx, src, dst)
//	}

// CanCopy indicates the store supports native single-file copy operations.
type CanCopy interface {
	Copy(ctx context.Context, src, dst string) error
}

// CanLocate indicates the store can produce its own absolute locator for a
// path, such as a file:// or sftp:// URI.
type CanLocate interface {
	Locate(ctx context.Context, path string) (string, error)
}

// cleanRel trims leading and trailing slashes from a store-relative path.
func cleanRel(p string) string {
	return strings.Trim(p, "/")
}
