package fileutil

import (
	"context"
	"log/slog"
)

// TreeCopier mirrors a source tree into a destination location through a
// Host, skipping ignored entry names at every depth.
//
// When the destination already is a directory the copier never asks the host
// to copy a directory onto it: it walks the source and issues one leaf copy
// per file, recursing into subdirectories. Otherwise the whole source is
// handed to a single CopyEntry call.
type TreeCopier struct {
	host   Host
	logger *slog.Logger
	ignore IgnoreSet
}

// CopierOption configures a TreeCopier.
type CopierOption func(*TreeCopier)

// WithCopierLogger sets the logger used for per-entry debug output.
func WithCopierLogger(logger *slog.Logger) CopierOption {
	return func(c *TreeCopier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIgnoreSet replaces the base ignore set. Names passed to CopyTree are
// added on top of it for that call only.
func WithIgnoreSet(set IgnoreSet) CopierOption {
	return func(c *TreeCopier) {
		c.ignore = set
	}
}

// NewTreeCopier creates a TreeCopier over host.
func NewTreeCopier(host Host, opts ...CopierOption) *TreeCopier {
	c := &TreeCopier{
		host:   host,
		logger: slog.New(slog.DiscardHandler),
		ignore: NewIgnoreSet(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CopyTree copies src into dst. ignore lists extra bare names to skip in
// addition to DefaultIgnoreNames. The first failing entry aborts the copy;
// entries after it are not attempted.
//
// When dst is not an existing directory the single host copy may bring
// ignored entries along; they are then removed from the new dst tree. The
// source is never modified.
func (c *TreeCopier) CopyTree(ctx context.Context, src, dst Location, ignore ...string) error {
	return c.copyTree(ctx, src, dst, c.ignore.with(ignore))
}

func (c *TreeCopier) copyTree(ctx context.Context, src, dst Location, set IgnoreSet) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !DirectoryExists(ctx, c.host, dst) {
		if err := c.host.CopyEntry(ctx, src, dst); err != nil {
			return locError("copytree", src, err)
		}
		return c.prune(ctx, dst, set)
	}

	entries, err := c.host.List(ctx, src)
	if err != nil {
		return locError("copytree", src, err)
	}

	for _, entry := range entries {
		if set.Contains(entry.Name) {
			continue
		}
		childSrc := src.Child(entry.Name)
		childDst := dst.Child(entry.Name)

		if DirectoryExists(ctx, c.host, childSrc) {
			c.logger.DebugContext(ctx, "copying dir", "from", childSrc.String(), "to", childDst.String())
			if err := c.copyTree(ctx, childSrc, childDst, set); err != nil {
				return err
			}
			continue
		}

		c.logger.DebugContext(ctx, "copying file", "from", childSrc.String(), "to", childDst.String())
		if err := c.host.CopyEntry(ctx, childSrc, childDst); err != nil {
			return locError("copytree", childSrc, err)
		}
	}
	return nil
}

// prune removes ignored entries from a destination tree that was just
// created by a single CopyEntry call. Plain files are left alone.
func (c *TreeCopier) prune(ctx context.Context, dir Location, set IgnoreSet) error {
	if !DirectoryExists(ctx, c.host, dir) {
		return nil
	}

	entries, err := c.host.List(ctx, dir)
	if err != nil {
		return locError("copytree", dir, err)
	}

	for _, entry := range entries {
		child := dir.Child(entry.Name)
		switch {
		case set.Contains(entry.Name):
			c.logger.DebugContext(ctx, "dropping ignored entry", "path", child.String())
			if entry.IsDir() {
				err = c.host.RemoveDirectory(ctx, child, true)
			} else {
				err = c.host.RemoveFile(ctx, child)
			}
			if err != nil {
				return locError("copytree", child, err)
			}
		case entry.IsDir():
			if err := c.prune(ctx, child, set); err != nil {
				return err
			}
		}
	}
	return nil
}
