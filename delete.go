package fileutil

import (
	"context"
	"log/slog"
)

// DeleteOutcome is what happened to one entry during a selective delete.
type DeleteOutcome int

const (
	// Deleted means the file existed and was removed.
	Deleted DeleteOutcome = iota
	// Skipped means there was no file to remove.
	Skipped
	// Failed means removal was attempted and the host refused it.
	Failed
)

func (o DeleteOutcome) String() string {
	switch o {
	case Deleted:
		return "deleted"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// DeleteResult records the outcome for a single named entry.
type DeleteResult struct {
	Name     string
	Location Location
	Outcome  DeleteOutcome
	Err      error
}

// DeleteEntries removes the files called names from dir, in order. A name
// that is not an existing file is skipped. A failed removal is logged and
// the remaining names are still processed; DeleteEntries itself never fails.
func DeleteEntries(ctx context.Context, host Host, dir Location, names []string, logger *slog.Logger) {
	_ = deleteEntries(ctx, host, dir, names, logger)
}

func deleteEntries(ctx context.Context, host Host, dir Location, names []string, logger *slog.Logger) []DeleteResult {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	results := make([]DeleteResult, 0, len(names))
	for _, name := range names {
		loc := dir.Child(name)
		res := DeleteResult{Name: name, Location: loc}

		if !FileExists(ctx, host, loc) {
			res.Outcome = Skipped
			results = append(results, res)
			continue
		}

		if err := host.RemoveFile(ctx, loc); err != nil {
			logger.WarnContext(ctx, "could not delete file", "path", loc.String(), "error", err)
			res.Outcome = Failed
			res.Err = err
		} else {
			res.Outcome = Deleted
		}
		results = append(results, res)
	}
	return results
}
