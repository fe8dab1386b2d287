package fileutil_test

import (
	"context"
	"net"
	"testing"

	pkgsftp "github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/fileutil"
	"github.com/gobeaver/fileutil/driver/billy"
	"github.com/gobeaver/fileutil/driver/local"
	"github.com/gobeaver/fileutil/driver/memory"
	"github.com/gobeaver/fileutil/driver/sftp"
)

// storeFactories builds a fresh store per area for each driver.
func storeFactories(t *testing.T) map[string]func(area fileutil.Area) fileutil.Store {
	return map[string]func(area fileutil.Area) fileutil.Store{
		"memory": func(area fileutil.Area) fileutil.Store {
			return memory.New(memory.Config{Name: fileutil.AreaDir(area)})
		},
		"local": func(area fileutil.Area) fileutil.Store {
			a, err := local.New(t.TempDir())
			require.NoError(t, err)
			return a
		},
		"billy-memfs": func(fileutil.Area) fileutil.Store {
			return billy.NewMemory()
		},
		"billy-osfs": func(fileutil.Area) fileutil.Store {
			a, err := billy.NewLocal(t.TempDir())
			require.NoError(t, err)
			return a
		},
		"sftp": func(area fileutil.Area) fileutil.Store {
			serverConn, clientConn := net.Pipe()
			server := pkgsftp.NewRequestServer(serverConn, pkgsftp.InMemHandler())
			go func() { _ = server.Serve() }()

			client, err := pkgsftp.NewClientPipe(clientConn, clientConn)
			require.NoError(t, err)

			a := sftp.NewWithClient(client, sftp.WithBasePath("/"+fileutil.AreaDir(area)))
			t.Cleanup(func() {
				_ = a.Close()
				_ = server.Close()
			})
			return a
		},
	}
}

func TestDriversCopyTree(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mounts := fileutil.NewMountManager()
			require.NoError(t, mounts.Mount(fileutil.Library, newStore(fileutil.Library)))
			require.NoError(t, mounts.Mount(fileutil.Data, newStore(fileutil.Data)))

			seed(t, mounts, map[string]string{
				"LIBRARY:www/index.html":        "<html>",
				"LIBRARY:www/.DS_Store":         "x",
				"LIBRARY:www/js/app.js":         "app",
				"LIBRARY:www/js/lib/.DS_Store":  "x",
				"LIBRARY:www/__MACOSX/._app.js": "x",
			})
			copier := fileutil.NewTreeCopier(mounts)

			require.NoError(t, copier.CopyTree(ctx, at("LIBRARY:www"), at("DATA:www")))
			assert.Equal(t, []string{"index.html", "js/", "js/app.js", "js/lib/"}, tree(t, mounts, at("DATA:www")))

			seed(t, mounts, map[string]string{
				"LIBRARY:www/js/app.js": "app v2",
				"DATA:www/config.json":  "{}",
			})
			require.NoError(t, copier.CopyTree(ctx, at("LIBRARY:www"), at("DATA:www")))
			assert.Equal(t, []string{"config.json", "index.html", "js/", "js/app.js", "js/lib/"}, tree(t, mounts, at("DATA:www")))

			text, err := mounts.ReadFile(ctx, at("DATA:www/js/app.js"), fileutil.UTF8)
			require.NoError(t, err)
			assert.Equal(t, "app v2", text)
		})
	}
}

func TestDriversResetAndDelete(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mounts := fileutil.NewMountManager()
			require.NoError(t, mounts.Mount(fileutil.Data, newStore(fileutil.Data)))

			seed(t, mounts, map[string]string{
				"DATA:tmp/a.txt":     "a",
				"DATA:tmp/sub/b.txt": "b",
			})

			uri, err := fileutil.ResetDirectory(ctx, mounts, at("DATA:tmp"))
			require.NoError(t, err)
			assert.NotEmpty(t, uri)
			assert.True(t, fileutil.DirectoryExists(ctx, mounts, at("DATA:tmp")))
			assert.Empty(t, tree(t, mounts, at("DATA:tmp")))

			seed(t, mounts, map[string]string{"DATA:tmp/a.txt": "a"})
			results := fileutil.NewFileUtil(mounts).DeleteEntriesReport(ctx, "tmp", []string{"a.txt", "b.txt"})
			require.Len(t, results, 2)
			assert.Equal(t, fileutil.Deleted, results[0].Outcome)
			assert.Equal(t, fileutil.Skipped, results[1].Outcome)

			require.NoError(t, fileutil.DeleteDirectory(ctx, mounts, at("DATA:tmp")))
			assert.Equal(t, fileutil.Missing, fileutil.Classify(ctx, mounts, at("DATA:tmp")))
		})
	}
}
