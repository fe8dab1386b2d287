package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/gobeaver/beaver-kit/config"
)

// Global instance
var (
	defaultFU   *FileUtil
	defaultOnce sync.Once
	defaultErr  error
)

// FileUtil bundles the helpers of this package over one Host. Methods named
// *Data* operate on the configured data area.
type FileUtil struct {
	host     Host
	dataArea Area
	copier   *TreeCopier
	logger   *slog.Logger
	ignore   IgnoreSet
}

// Option configures a FileUtil.
type Option func(*FileUtil)

// WithLogger sets the logger for copy steps and swallowed delete failures.
func WithLogger(logger *slog.Logger) Option {
	return func(u *FileUtil) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// WithDataArea changes the area used by the *Data* helpers.
func WithDataArea(area Area) Option {
	return func(u *FileUtil) {
		if area != "" {
			u.dataArea = area
		}
	}
}

// WithIgnore sets the base ignore set used by CopyTree.
func WithIgnore(set IgnoreSet) Option {
	return func(u *FileUtil) {
		u.ignore = set
	}
}

// NewFileUtil creates a FileUtil over host.
func NewFileUtil(host Host, opts ...Option) *FileUtil {
	u := &FileUtil{
		host:     host,
		dataArea: Data,
		logger:   slog.New(slog.DiscardHandler),
		ignore:   NewIgnoreSet(),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.copier = NewTreeCopier(host, WithCopierLogger(u.logger), WithIgnoreSet(u.ignore))
	return u
}

// Builder provides a way to create FileUtil instances with custom env prefixes
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global FileUtil instance using the builder's prefix
func (b *Builder) Init() error {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return err
	}
	return Init(cfg)
}

// New creates a new FileUtil instance using the builder's prefix
func (b *Builder) New() (*FileUtil, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return New(cfg)
}

// Init initializes the global instance
func Init(configs ...*Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultFU, defaultErr = New(cfg)
	})

	return defaultErr
}

// New mounts one store per well-known area using the configured driver and
// returns a FileUtil over them.
func New(cfg *Config) (*FileUtil, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level, _ := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ignore, err := NewIgnoreSet(splitList(cfg.Ignore)...).WithPatterns(splitList(cfg.IgnorePatterns)...)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	mounts, err := mountAreas(cfg, logger)
	if err != nil {
		return nil, err
	}

	return NewFileUtil(mounts,
		WithDataArea(Area(cfg.DataArea)),
		WithIgnore(ignore),
		WithLogger(logger),
	), nil
}

func mountAreas(cfg *Config, logger *slog.Logger) (*MountManager, error) {
	readOnly := make(map[Area]bool)
	for _, a := range splitList(cfg.ReadOnlyAreas) {
		readOnly[Area(a)] = true
	}

	areas := append([]Area(nil), KnownAreas...)
	if dataArea := Area(cfg.DataArea); !isKnownArea(dataArea) {
		areas = append(areas, dataArea)
	}

	mounts := NewMountManager()
	for _, area := range areas {
		store, err := CreateStore(cfg, area)
		if err != nil {
			_ = mounts.Close()
			return nil, fmt.Errorf("failed to create store for %s: %w", area, err)
		}
		if readOnly[area] {
			store = NewReadOnlyStore(store, WithWriteAttemptHandler(func(op, path string) {
				logger.Warn("write rejected on read-only area", "area", string(area), "op", op, "path", path)
			}))
		}
		if err := mounts.Mount(area, store); err != nil {
			_ = mounts.Close()
			return nil, err
		}
	}
	return mounts, nil
}

func isKnownArea(area Area) bool {
	for _, a := range KnownAreas {
		if a == area {
			return true
		}
	}
	return false
}

// validateConfig checks configuration validity
func validateConfig(cfg *Config) error {
	if cfg.Driver == "" {
		return errors.New("driver is required")
	}
	if cfg.DataArea == "" {
		return errors.New("data area is required")
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}

	switch cfg.Driver {
	case "local":
		if cfg.Root == "" {
			return errors.New("root is required for local driver")
		}
	case "billy":
		if cfg.Root == "" && !cfg.BillyInMemory {
			return errors.New("root is required for billy driver unless in memory")
		}
	case "sftp":
		if cfg.SFTPHost == "" {
			return errors.New("SFTP host is required for sftp driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown driver: %s", cfg.Driver)
	}

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// FU returns the global instance
func FU() *FileUtil {
	if defaultFU == nil {
		_ = Init()
	}
	return defaultFU
}

// Default returns the global instance, initializing if needed with error handling
func Default() (*FileUtil, error) {
	if defaultFU == nil {
		if err := Init(); err != nil {
			return nil, err
		}
	}
	return defaultFU, nil
}

// Reset clears the global instance (for testing)
func Reset() {
	if defaultFU != nil {
		_ = defaultFU.Close()
	}
	defaultFU = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}

// ============================================================================
// Helpers
// ============================================================================

// Host returns the host service the helpers delegate to.
func (u *FileUtil) Host() Host {
	return u.host
}

// DataArea returns the area used by the *Data* helpers.
func (u *FileUtil) DataArea() Area {
	return u.dataArea
}

// In returns a FileUtil sharing u's host, logger and ignore set whose *Data*
// helpers operate on area.
func (u *FileUtil) In(area Area) *FileUtil {
	c := *u
	c.dataArea = area
	return &c
}

func (u *FileUtil) data(path string) Location {
	return Location{Area: u.dataArea, Path: path}
}

// DirectoryExists reports whether path in area is a directory. It never fails.
func (u *FileUtil) DirectoryExists(ctx context.Context, area Area, path string) bool {
	return DirectoryExists(ctx, u.host, At(area, path))
}

// FileExists reports whether path in area is a regular file. It never fails.
func (u *FileUtil) FileExists(ctx context.Context, area Area, path string) bool {
	return FileExists(ctx, u.host, At(area, path))
}

// DataDirectoryExists reports whether path in the data area is a directory.
func (u *FileUtil) DataDirectoryExists(ctx context.Context, path string) bool {
	return DirectoryExists(ctx, u.host, u.data(path))
}

// CopyTree copies the entries of src into dst, skipping ignored names.
func (u *FileUtil) CopyTree(ctx context.Context, src, dst Location, ignore ...string) error {
	return u.copier.CopyTree(ctx, src, dst, ignore...)
}

// Copy issues a single host copy from src to dst.
func (u *FileUtil) Copy(ctx context.Context, src, dst Location) error {
	return u.host.CopyEntry(ctx, src, dst)
}

// ResetDataDirectory makes sure path exists as an empty directory in the data
// area and returns its locator.
func (u *FileUtil) ResetDataDirectory(ctx context.Context, path string) (string, error) {
	return ResetDirectory(ctx, u.host, u.data(path))
}

// DeleteDataDirectory recursively deletes path in the data area.
func (u *FileUtil) DeleteDataDirectory(ctx context.Context, path string) error {
	return DeleteDirectory(ctx, u.host, u.data(path))
}

// DeleteEntriesFromDataDirectory deletes the given files from dirPath in the
// data area. Missing files are skipped and failures are only logged.
func (u *FileUtil) DeleteEntriesFromDataDirectory(ctx context.Context, dirPath string, names []string) {
	DeleteEntries(ctx, u.host, u.data(dirPath), names, u.logger)
}

// DeleteEntriesReport behaves like DeleteEntriesFromDataDirectory and also
// returns the outcome for each name.
func (u *FileUtil) DeleteEntriesReport(ctx context.Context, dirPath string, names []string) []DeleteResult {
	return deleteEntries(ctx, u.host, u.data(dirPath), names, u.logger)
}

// ReadFile reads path in area as UTF-8 text.
func (u *FileUtil) ReadFile(ctx context.Context, area Area, path string) (string, error) {
	return u.host.ReadFile(ctx, At(area, path), UTF8)
}

// ReadDataFile reads path in the data area as UTF-8 text.
func (u *FileUtil) ReadDataFile(ctx context.Context, path string) (string, error) {
	return u.ReadFile(ctx, u.dataArea, path)
}

// WriteFile writes content to path in area as UTF-8 text.
func (u *FileUtil) WriteFile(ctx context.Context, area Area, path string, content string) error {
	if err := u.host.WriteFile(ctx, At(area, path), content, UTF8); err != nil {
		return fmt.Errorf("could not write the current package information file: %w", err)
	}
	return nil
}

// WriteDataFile writes content to path in the data area as UTF-8 text.
func (u *FileUtil) WriteDataFile(ctx context.Context, path string, content string) error {
	return u.WriteFile(ctx, u.dataArea, path, content)
}

// ResolveLocator returns the absolute locator of path in area.
func (u *FileUtil) ResolveLocator(ctx context.Context, area Area, path string) (string, error) {
	return u.host.ResolveLocator(ctx, At(area, path))
}

// ResolveDataLocator returns the absolute locator of path in the data area.
func (u *FileUtil) ResolveDataLocator(ctx context.Context, path string) (string, error) {
	return u.ResolveLocator(ctx, u.dataArea, path)
}

// DataFileChecksum hashes the raw content of path in the data area.
func (u *FileUtil) DataFileChecksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error) {
	cs, ok := u.host.(CanChecksum)
	if !ok {
		return "", &PathError{Op: "checksum", Path: u.data(path).String(), Err: ErrNotSupported}
	}
	return cs.Checksum(ctx, u.data(path), algorithm)
}

// Close releases host resources such as remote connections.
func (u *FileUtil) Close() error {
	if c, ok := u.host.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
