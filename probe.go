package fileutil

import "context"

// Probe classifies loc. True absence is reported as (Missing, nil); any other
// host failure, such as a permission error, is returned alongside Missing.
func Probe(ctx context.Context, host Host, loc Location) (EntryKind, error) {
	info, err := host.Stat(ctx, loc)
	if err != nil {
		if IsNotExist(err) {
			return Missing, nil
		}
		return Missing, err
	}
	if info.IsDir() {
		return Directory, nil
	}
	return File, nil
}

// Classify is Probe with every failure treated as absence. It never fails.
func Classify(ctx context.Context, host Host, loc Location) EntryKind {
	kind, err := Probe(ctx, host, loc)
	if err != nil {
		return Missing
	}
	return kind
}

// DirectoryExists reports whether loc is an existing directory. A plain file,
// a missing entry or any host failure yields false.
func DirectoryExists(ctx context.Context, host Host, loc Location) bool {
	return Classify(ctx, host, loc) == Directory
}

// FileExists reports whether loc is an existing regular file.
func FileExists(ctx context.Context, host Host, loc Location) bool {
	return Classify(ctx, host, loc) == File
}
