package sftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/gobeaver/fileutil"
)

// Adapter provides an SFTP implementation of fileutil.Store
type Adapter struct {
	mu       sync.Mutex
	client   *sftp.Client
	sshConn  *ssh.Client
	basePath string
	config   Config
}

// Config holds SFTP connection configuration
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	PrivateKey []byte // PEM encoded private key
	BasePath   string

	// HostKeyCallback verifies the server's host key, e.g. one built by
	// knownhosts.New. When nil any host key is accepted.
	HostKeyCallback ssh.HostKeyCallback
}

// AdapterOption is a function that configures SFTP Adapter
type AdapterOption func(*Adapter)

// WithBasePath sets the base path for SFTP operations
func WithBasePath(basePath string) AdapterOption {
	return func(a *Adapter) {
		a.basePath = basePath
	}
}

// New creates a new SFTP store and connects to the server
func New(cfg Config, options ...AdapterOption) (*Adapter, error) {
	adapter := &Adapter{
		config:   cfg,
		basePath: cfg.BasePath,
	}

	for _, option := range options {
		option(adapter)
	}

	if err := adapter.connect(); err != nil {
		return nil, err
	}

	if err := adapter.ensureBase(); err != nil {
		adapter.Close()
		return nil, err
	}

	return adapter, nil
}

// NewWithClient creates a store over an already established SFTP session.
// The adapter does not reconnect it; Close closes the client.
func NewWithClient(client *sftp.Client, options ...AdapterOption) *Adapter {
	adapter := &Adapter{client: client}
	for _, option := range options {
		option(adapter)
	}
	_ = adapter.ensureBase()
	return adapter
}

// ensureBase creates the base path so the store root always exists.
func (a *Adapter) ensureBase() error {
	if a.basePath == "" || a.basePath == "/" {
		return nil
	}
	if err := a.client.MkdirAll(a.basePath); err != nil {
		return fmt.Errorf("failed to create base path %s: %w", a.basePath, err)
	}
	return nil
}

func (a *Adapter) hostKeyCallback() ssh.HostKeyCallback {
	if a.config.HostKeyCallback != nil {
		return a.config.HostKeyCallback
	}
	return ssh.InsecureIgnoreHostKey()
}

// connect establishes SSH and SFTP connections. Must be called with lock held
// or before the adapter is shared.
func (a *Adapter) connect() error {
	sshConfig := &ssh.ClientConfig{
		User:            a.config.Username,
		HostKeyCallback: a.hostKeyCallback(),
	}

	if len(a.config.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(a.config.PrivateKey)
		if err != nil {
			return fmt.Errorf("failed to parse private key: %w", err)
		}
		sshConfig.Auth = append(sshConfig.Auth, ssh.PublicKeys(signer))
	}

	if a.config.Password != "" {
		sshConfig.Auth = append(sshConfig.Auth, ssh.Password(a.config.Password))
	}

	if len(sshConfig.Auth) == 0 {
		return fmt.Errorf("no authentication method provided")
	}

	sshConn, err := ssh.Dial("tcp", a.addr(), sshConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to SSH: %w", err)
	}

	sftpClient, err := sftp.NewClient(sshConn)
	if err != nil {
		sshConn.Close()
		return fmt.Errorf("failed to create SFTP client: %w", err)
	}

	a.sshConn = sshConn
	a.client = sftpClient

	return nil
}

func (a *Adapter) addr() string {
	port := a.config.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(a.config.Host, strconv.Itoa(port))
}

// Close closes the SFTP and SSH connections
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error

	if a.client != nil {
		if err := a.client.Close(); err != nil {
			errs = append(errs, err)
		}
		a.client = nil
	}

	if a.sshConn != nil {
		if err := a.sshConn.Close(); err != nil {
			errs = append(errs, err)
		}
		a.sshConn = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing connections: %w", errors.Join(errs...))
	}

	return nil
}

// session returns a live client, reconnecting when the adapter owns the SSH
// connection and it was lost.
func (a *Adapter) session(op, p string) (*sftp.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		if _, err := a.client.Getwd(); err == nil {
			return a.client, nil
		}
		if a.config.Host == "" {
			return a.client, nil
		}
		// Connection lost, reconnect
		a.client.Close()
		if a.sshConn != nil {
			a.sshConn.Close()
		}
		a.client, a.sshConn = nil, nil
	}

	if a.config.Host == "" {
		return nil, &fileutil.PathError{Op: op, Path: p, Err: errors.New("sftp client closed")}
	}
	if err := a.connect(); err != nil {
		return nil, &fileutil.PathError{Op: op, Path: p, Err: err}
	}
	return a.client, nil
}

// fullPath returns the full path combining base path and relative path.
// Cleaning against "/" keeps the result inside the base path.
func (a *Adapter) fullPath(relativePath string) string {
	cleanPath := path.Clean("/" + relativePath)
	if a.basePath == "" {
		return cleanPath
	}
	return path.Join(a.basePath, cleanPath)
}

// Write implements fileutil.StoreWriter
func (a *Adapter) Write(ctx context.Context, filePath string, content io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	client, err := a.session("write", filePath)
	if err != nil {
		return err
	}

	fullPath := a.fullPath(filePath)

	if info, err := client.Stat(fullPath); err == nil && info.IsDir() {
		return &fileutil.PathError{Op: "write", Path: filePath, Err: fileutil.ErrIsDir}
	}

	// Ensure parent directory exists
	if err := client.MkdirAll(path.Dir(fullPath)); err != nil {
		return mapSFTPError("write", filePath, err)
	}

	file, err := client.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return mapSFTPError("write", filePath, err)
	}
	if _, err := io.Copy(file, content); err != nil {
		file.Close()
		return mapSFTPError("write", filePath, err)
	}
	if err := file.Close(); err != nil {
		return mapSFTPError("write", filePath, err)
	}

	return nil
}

// Read implements fileutil.StoreReader
func (a *Adapter) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	client, err := a.session("read", filePath)
	if err != nil {
		return nil, err
	}

	fullPath := a.fullPath(filePath)

	info, err := client.Stat(fullPath)
	if err != nil {
		return nil, mapSFTPError("read", filePath, err)
	}
	if info.IsDir() {
		return nil, &fileutil.PathError{Op: "read", Path: filePath, Err: fileutil.ErrIsDir}
	}

	file, err := client.Open(fullPath)
	if err != nil {
		return nil, mapSFTPError("read", filePath, err)
	}

	return file, nil
}

// Delete implements fileutil.StoreWriter
func (a *Adapter) Delete(ctx context.Context, filePath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	client, err := a.session("delete", filePath)
	if err != nil {
		return err
	}

	fullPath := a.fullPath(filePath)

	info, err := client.Stat(fullPath)
	if err != nil {
		return mapSFTPError("delete", filePath, err)
	}
	if info.IsDir() {
		return &fileutil.PathError{Op: "delete", Path: filePath, Err: fileutil.ErrIsDir}
	}

	if err := client.Remove(fullPath); err != nil {
		return mapSFTPError("delete", filePath, err)
	}

	return nil
}

// Stat implements fileutil.StoreReader
func (a *Adapter) Stat(ctx context.Context, filePath string) (*fileutil.EntryInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	client, err := a.session("stat", filePath)
	if err != nil {
		return nil, err
	}

	info, err := client.Stat(a.fullPath(filePath))
	if err != nil {
		return nil, mapSFTPError("stat", filePath, err)
	}

	return entryInfo(strings.Trim(filePath, "/"), info), nil
}

// List implements fileutil.StoreReader
func (a *Adapter) List(ctx context.Context, dirPath string) ([]fileutil.EntryInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	client, err := a.session("list", dirPath)
	if err != nil {
		return nil, err
	}

	fullPath := a.fullPath(dirPath)

	info, err := client.Stat(fullPath)
	if err != nil {
		return nil, mapSFTPError("list", dirPath, err)
	}
	if !info.IsDir() {
		return nil, &fileutil.PathError{Op: "list", Path: dirPath, Err: fileutil.ErrNotDir}
	}

	infos, err := client.ReadDir(fullPath)
	if err != nil {
		return nil, mapSFTPError("list", dirPath, err)
	}

	rel := strings.Trim(dirPath, "/")
	entries := make([]fileutil.EntryInfo, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, *entryInfo(strings.TrimPrefix(path.Join(rel, fi.Name()), "/"), fi))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// CreateDir implements fileutil.StoreWriter
func (a *Adapter) CreateDir(ctx context.Context, dirPath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	client, err := a.session("createdir", dirPath)
	if err != nil {
		return err
	}

	if err := client.MkdirAll(a.fullPath(dirPath)); err != nil {
		return mapSFTPError("createdir", dirPath, err)
	}

	return nil
}

// DeleteDir implements fileutil.StoreWriter
func (a *Adapter) DeleteDir(ctx context.Context, dirPath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	client, err := a.session("deletedir", dirPath)
	if err != nil {
		return err
	}

	fullPath := a.fullPath(dirPath)

	info, err := client.Stat(fullPath)
	if err != nil {
		return mapSFTPError("deletedir", dirPath, err)
	}
	if !info.IsDir() {
		return &fileutil.PathError{Op: "deletedir", Path: dirPath, Err: fileutil.ErrNotDir}
	}

	if err := removeAll(ctx, client, fullPath, fullPath != a.fullPath("")); err != nil {
		return mapSFTPError("deletedir", dirPath, err)
	}

	return nil
}

// removeAll recursively removes a directory's contents, and the directory
// itself when self is set.
func removeAll(ctx context.Context, client *sftp.Client, dirPath string, self bool) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	entries, err := client.ReadDir(dirPath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		entryPath := path.Join(dirPath, entry.Name())
		if entry.IsDir() {
			if err := removeAll(ctx, client, entryPath, true); err != nil {
				return err
			}
		} else {
			if err := client.Remove(entryPath); err != nil {
				return err
			}
		}
	}

	if !self {
		return nil
	}
	return client.RemoveDirectory(dirPath)
}

func entryInfo(p string, info os.FileInfo) *fileutil.EntryInfo {
	kind := fileutil.File
	if info.IsDir() {
		kind = fileutil.Directory
	}
	return &fileutil.EntryInfo{
		Name:    path.Base("/" + p),
		Path:    p,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Kind:    kind,
	}
}

// mapSFTPError maps SFTP errors to fileutil errors
func mapSFTPError(op, p string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return &fileutil.PathError{Op: op, Path: p, Err: fileutil.ErrNotExist}
	}

	if errors.Is(err, os.ErrPermission) {
		return &fileutil.PathError{Op: op, Path: p, Err: fileutil.ErrPermission}
	}

	var statusErr *sftp.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.FxCode() {
		case sftp.ErrSSHFxNoSuchFile:
			return &fileutil.PathError{Op: op, Path: p, Err: fileutil.ErrNotExist}
		case sftp.ErrSSHFxPermissionDenied:
			return &fileutil.PathError{Op: op, Path: p, Err: fileutil.ErrPermission}
		}
	}

	return &fileutil.PathError{Op: op, Path: p, Err: err}
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Copy implements fileutil.CanCopy by streaming through the SFTP session.
// SFTP has no server-side copy command.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	client, err := a.session("copy", src)
	if err != nil {
		return err
	}

	srcPath := a.fullPath(src)
	dstPath := a.fullPath(dst)
	if srcPath == dstPath {
		return &fileutil.PathError{Op: "copy", Path: dst, Err: fileutil.ErrNotAllowed}
	}

	srcFile, err := client.Open(srcPath)
	if err != nil {
		return mapSFTPError("copy", src, err)
	}
	defer srcFile.Close()

	if err := client.MkdirAll(path.Dir(dstPath)); err != nil {
		return mapSFTPError("copy", dst, err)
	}

	dstFile, err := client.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return mapSFTPError("copy", dst, err)
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return mapSFTPError("copy", dst, err)
	}
	if err := dstFile.Close(); err != nil {
		return mapSFTPError("copy", dst, err)
	}

	return nil
}

// Locate implements fileutil.CanLocate with sftp://user@host:port/path URIs.
// Adapters built from an existing client have no address to report.
func (a *Adapter) Locate(_ context.Context, p string) (string, error) {
	if a.config.Host == "" {
		return "", &fileutil.PathError{Op: "locate", Path: p, Err: fileutil.ErrNotSupported}
	}
	u := url.URL{
		Scheme: "sftp",
		Host:   a.addr(),
		Path:   a.fullPath(p),
	}
	if a.config.Username != "" {
		u.User = url.User(a.config.Username)
	}
	return u.String(), nil
}

// Ensure Adapter implements required and optional interfaces
var (
	_ fileutil.Store     = (*Adapter)(nil)
	_ fileutil.CanCopy   = (*Adapter)(nil)
	_ fileutil.CanLocate = (*Adapter)(nil)
	_ io.Closer          = (*Adapter)(nil)
)
