// Package fileutil provides directory and file helpers over a host filesystem
// service that addresses entries by area and relative path.
//
// Every helper delegates to a [Host]. The usual Host is a [MountManager],
// which routes each area (DATA, CACHE, LIBRARY, ...) to the [Store] mounted
// for it. Stores are provided by drivers:
//
//   - Local filesystem (github.com/gobeaver/fileutil/driver/local)
//   - go-billy filesystems, osfs or memfs (github.com/gobeaver/fileutil/driver/billy)
//   - SFTP (github.com/gobeaver/fileutil/driver/sftp)
//   - In-memory (github.com/gobeaver/fileutil/driver/memory)
//
// # Basic Usage
//
//	mounts := fileutil.NewMountManager()
//	mounts.Mount(fileutil.Data, memory.New())
//	mounts.Mount(fileutil.Library, fileutil.NewReadOnlyStore(bundle))
//
//	u := fileutil.NewFileUtil(mounts, fileutil.WithLogger(logger))
//
//	// Mirror the shipped bundle into the data area
//	err := u.CopyTree(ctx, fileutil.At(fileutil.Library, "www"), fileutil.At(fileutil.Data, "www"))
//
//	// Empty a scratch directory and get its locator
//	uri, err := u.ResetDataDirectory(ctx, "tmp")
//
//	// Best-effort cleanup; failures are logged, never returned
//	u.DeleteEntriesFromDataDirectory(ctx, "www/js", []string{"old.js", "older.js"})
//
// # Copying Trees
//
// [TreeCopier.CopyTree] skips entries named in [DefaultIgnoreNames] (and any
// caller-supplied names or patterns) at every depth. When the destination is
// an existing directory it merges leaf by leaf and never asks the host to
// copy a directory onto a directory. Otherwise it issues a single copy. The
// first failure aborts the walk.
//
// # Existence Checks
//
// [Probe] separates absence from other host failures. [DirectoryExists],
// [FileExists] and [Classify] treat any failure as absence and never fail.
//
// # Global Instance
//
// Like other beaver-kit packages, fileutil can be configured from the
// environment (BEAVER_FILEUTIL_*) and used through a global instance:
//
//	if err := fileutil.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	fileutil.FU().WriteDataFile(ctx, "pkg/info.json", info)
package fileutil
