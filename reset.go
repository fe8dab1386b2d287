package fileutil

import "context"

// ResetDirectory makes sure loc exists as an empty directory and returns its
// resolved locator. An existing directory is deleted with all its contents
// first. There is no rollback: if creation fails after the delete, loc is
// left absent.
func ResetDirectory(ctx context.Context, host Host, loc Location) (string, error) {
	if DirectoryExists(ctx, host, loc) {
		if err := host.RemoveDirectory(ctx, loc, true); err != nil {
			return "", err
		}
	}

	if err := host.MakeDirectory(ctx, loc, true); err != nil {
		return "", err
	}

	return host.ResolveLocator(ctx, loc)
}

// DeleteDirectory recursively deletes the directory at loc.
func DeleteDirectory(ctx context.Context, host Host, loc Location) error {
	return host.RemoveDirectory(ctx, loc, true)
}
