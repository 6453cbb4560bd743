// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transfer retrieves archive files from the transfer server: it
// derives record directories, lists them, downloads selected files, and
// unpacks the archives it fetched.
package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/pdiddy/geodataset/pkg/types"
)

// Conn is an open session on the transfer server.
type Conn interface {
	Login(user, password string) error
	NameList(path string) ([]string, error)
	Retr(path string) (io.ReadCloser, error)
	Quit() error
}

// Dialer opens a Conn to addr. timeout bounds connection setup and each
// subsequent command.
type Dialer func(ctx context.Context, addr string, timeout time.Duration) (Conn, error)

// Recorder stores a record of each completed download.
type Recorder interface {
	Record(ctx context.Context, d types.Download) error
}

// DialFTP is the default Dialer.
func DialFTP(ctx context.Context, addr string, timeout time.Duration) (Conn, error) {
	sc, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	return serverConn{sc}, nil
}

// serverConn adapts *ftp.ServerConn to Conn.
type serverConn struct {
	*ftp.ServerConn
}

func (c serverConn) Retr(path string) (io.ReadCloser, error) {
	return c.ServerConn.Retr(path)
}

// Client holds at most one session. It is not safe for concurrent use.
type Client struct {
	cfg      types.TransferConfig
	dial     Dialer
	logger   *slog.Logger
	recorder Recorder

	conn Conn
}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the connection dialer.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dial = d }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithManifest records every completed download in r.
func WithManifest(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// New returns a disconnected Client for cfg. Zero config fields take their
// defaults.
func New(cfg types.TransferConfig, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg.WithDefaults(),
		dial:   DialFTP,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connected reports whether a session is open.
func (c *Client) Connected() bool {
	return c.conn != nil
}

// Connect opens a session and logs in. It does nothing when a session is
// already open.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	conn, err := c.dial(ctx, c.cfg.Host, c.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("%w: connecting to %s: %v", types.ErrTransferFailed, c.cfg.Host, err)
	}
	if err := conn.Login(c.cfg.User, c.cfg.Password); err != nil {
		conn.Quit()
		return fmt.Errorf("%w: logging in to %s: %v", types.ErrTransferFailed, c.cfg.Host, err)
	}

	c.conn = conn
	c.logger.Info("connected", "host", c.cfg.Host)
	return nil
}

// Disconnect closes the session. A failed close is logged, not returned.
func (c *Client) Disconnect() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Quit(); err != nil {
		c.logger.Warn("closing session", "host", c.cfg.Host, "error", err)
	}
	c.conn = nil
	c.logger.Info("disconnected", "host", c.cfg.Host)
}

// List returns the base names of the entries in dir, in server order.
func (c *Client) List(ctx context.Context, dir string) ([]string, error) {
	if c.conn == nil {
		return nil, types.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := c.conn.NameList(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", types.ErrTransferFailed, dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, path.Base(e))
	}
	return names, nil
}

// Download copies remotePath to localPath and returns localPath. An
// existing local file is kept and ErrAlreadyExists returned unless
// overwrite is set. Parent directories are created as needed.
func (c *Client) Download(ctx context.Context, remotePath, localPath string, overwrite bool) (string, error) {
	return c.download(ctx, "", remotePath, localPath, overwrite)
}

func (c *Client) download(ctx context.Context, acc, remotePath, localPath string, overwrite bool) (string, error) {
	if c.conn == nil {
		return "", types.ErrNotConnected
	}
	if !overwrite {
		if _, err := os.Stat(localPath); err == nil {
			return "", fmt.Errorf("%w: %s", types.ErrAlreadyExists, localPath)
		}
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	size, err := c.retrieve(ctx, remotePath, localPath)
	if err != nil {
		return "", fmt.Errorf("%w: downloading %s: %v", types.ErrTransferFailed, remotePath, err)
	}
	c.logger.Info("downloaded", "remote", remotePath, "local", localPath, "bytes", size)

	if c.recorder != nil {
		d := types.Download{
			Accession:    acc,
			RemotePath:   remotePath,
			LocalPath:    localPath,
			Size:         size,
			DownloadedAt: time.Now().UTC(),
		}
		if err := c.recorder.Record(ctx, d); err != nil {
			c.logger.Warn("recording download", "local", localPath, "error", err)
		}
	}
	return localPath, nil
}

// retrieve streams remotePath into a temporary file beside localPath and
// renames it into place once complete.
func (c *Client) retrieve(ctx context.Context, remotePath, localPath string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	body, err := c.conn.Retr(remotePath)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(localPath), ".transfer-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	size, copyErr := io.Copy(tmpFile, &ctxReader{ctx: ctx, r: body})
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, localPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return size, nil
}

// ctxReader stops a copy once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
