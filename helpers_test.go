package fileutil_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gobeaver/fileutil"
	"github.com/gobeaver/fileutil/driver/memory"
)

// newHost returns a MountManager with in-memory DATA, CACHE and LIBRARY areas.
func newHost(t *testing.T) *fileutil.MountManager {
	t.Helper()
	m := fileutil.NewMountManager()
	for _, area := range []fileutil.Area{fileutil.Data, fileutil.Cache, fileutil.Library} {
		require.NoError(t, m.Mount(area, memory.New(memory.Config{Name: fileutil.AreaDir(area)})))
	}
	return m
}

// seed writes files given as "AREA:path" -> content.
func seed(t *testing.T, host fileutil.Host, files map[string]string) {
	t.Helper()
	ctx := context.Background()
	for spec, content := range files {
		loc, err := fileutil.ParseLocation(spec)
		require.NoError(t, err)
		require.NoError(t, host.WriteFile(ctx, loc, content, fileutil.UTF8))
	}
}

// tree lists every entry below loc as sorted relative paths. Directories
// carry a trailing slash.
func tree(t *testing.T, host fileutil.Host, loc fileutil.Location) []string {
	t.Helper()
	var out []string
	var walk func(dir fileutil.Location, prefix string)
	walk = func(dir fileutil.Location, prefix string) {
		entries, err := host.List(context.Background(), dir)
		require.NoError(t, err)
		for _, e := range entries {
			if e.IsDir() {
				out = append(out, prefix+e.Name+"/")
				walk(dir.Child(e.Name), prefix+e.Name+"/")
				continue
			}
			out = append(out, prefix+e.Name)
		}
	}
	walk(loc, "")
	sort.Strings(out)
	return out
}

func at(spec string) fileutil.Location {
	loc, err := fileutil.ParseLocation(spec)
	if err != nil {
		panic(err)
	}
	return loc
}

type copyCall struct {
	Src, Dst  fileutil.Location
	SrcIsDir  bool
	DstWasDir bool
}

// recordingHost wraps a Host, recording copy calls and injecting failures.
type recordingHost struct {
	fileutil.Host

	mu       sync.Mutex
	copies   []copyCall
	failCopy map[string]error // keyed by source Location.String()
	mkdirErr error
}

func record(host fileutil.Host) *recordingHost {
	return &recordingHost{Host: host, failCopy: make(map[string]error)}
}

func (r *recordingHost) CopyEntry(ctx context.Context, src, dst fileutil.Location) error {
	call := copyCall{
		Src:       src,
		Dst:       dst,
		SrcIsDir:  fileutil.DirectoryExists(ctx, r.Host, src),
		DstWasDir: fileutil.DirectoryExists(ctx, r.Host, dst),
	}
	r.mu.Lock()
	r.copies = append(r.copies, call)
	err := r.failCopy[src.String()]
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.Host.CopyEntry(ctx, src, dst)
}

func (r *recordingHost) MakeDirectory(ctx context.Context, loc fileutil.Location, recursive bool) error {
	if r.mkdirErr != nil {
		return r.mkdirErr
	}
	return r.Host.MakeDirectory(ctx, loc, recursive)
}

func (r *recordingHost) copiedSources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.copies))
	for _, c := range r.copies {
		out = append(out, c.Src.String())
	}
	return out
}
