// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/geodataset/pkg/accession"
	"github.com/pdiddy/geodataset/pkg/types"
)

// FileKind names a family of series files.
type FileKind string

const (
	FileSOFT   FileKind = "soft"
	FileMINiML FileKind = "miniml"
	FileMatrix FileKind = "matrix"
	FileSuppl  FileKind = "suppl"
)

// DefaultKinds are the series file kinds fetched when none are requested.
var DefaultKinds = []FileKind{FileSOFT, FileMINiML, FileMatrix}

// Matches reports whether filename belongs to kind for the given accession.
// Case is ignored.
func (k FileKind) Matches(filename, acc string) bool {
	name := strings.ToLower(filename)
	acc = strings.ToLower(acc)

	switch k {
	case FileSOFT:
		return strings.HasSuffix(name, ".soft.gz") && strings.Contains(name, acc)
	case FileMINiML:
		return strings.HasSuffix(name, ".xml.tgz") && strings.Contains(name, acc)
	case FileMatrix:
		return strings.HasSuffix(name, "_series_matrix.txt.gz") && strings.Contains(name, acc)
	case FileSuppl:
		for _, ext := range []string{".tar", ".gz", ".txt", ".cel.gz"} {
			if strings.HasSuffix(name, ext) {
				return true
			}
		}
	}
	return false
}

// DownloadSeriesFiles downloads the files of kinds (DefaultKinds when
// empty) for a GSE accession into dir and returns the local paths. Files
// in a sub-directory named after a requested kind are considered too. A
// missing series directory yields an empty result. Files that fail to
// download are logged and skipped.
func (c *Client) DownloadSeriesFiles(ctx context.Context, acc, dir string, kinds []FileKind) ([]string, error) {
	if !accession.Validate(acc) {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidAccession, acc)
	}
	acc = accession.Normalize(acc)
	base, err := accession.DerivePath(acc, types.KindSeries)
	if err != nil {
		return nil, err
	}
	if c.conn == nil {
		return nil, types.ErrNotConnected
	}
	if len(kinds) == 0 {
		kinds = DefaultKinds
	}

	entries, err := c.List(ctx, base)
	if err != nil {
		c.logger.Warn("series directory not listed", "accession", acc, "path", base, "error", err)
		return []string{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e] = true
	}

	downloaded := []string{}
	seen := make(map[string]bool)
	for _, kind := range kinds {
		candidates := remotePaths(base, entries)
		if present[string(kind)] {
			sub := base + string(kind) + "/"
			subEntries, err := c.List(ctx, sub)
			if err != nil {
				c.logger.Warn("kind directory not listed", "accession", acc, "path", sub, "error", err)
			} else {
				candidates = append(candidates, remotePaths(sub, subEntries)...)
			}
		}

		for _, remote := range candidates {
			name := filepath.Base(remote)
			if seen[remote] || !kind.Matches(name, acc) {
				continue
			}
			seen[remote] = true

			local, err := c.download(ctx, acc, remote, filepath.Join(dir, name), false)
			if err != nil {
				if ctx.Err() != nil {
					return downloaded, ctx.Err()
				}
				c.logger.Warn("skipping file", "accession", acc, "remote", remote, "error", err)
				continue
			}
			downloaded = append(downloaded, local)
		}
	}
	return downloaded, nil
}

// DownloadSupplementaryFiles downloads every file in the supplementary
// directory of acc into dir and returns the local paths. A missing
// directory yields an empty result. Files that fail to download are
// logged and skipped.
func (c *Client) DownloadSupplementaryFiles(ctx context.Context, acc, dir string) ([]string, error) {
	suppl, err := accession.SupplementaryPath(acc)
	if err != nil {
		return nil, err
	}
	acc = accession.Normalize(acc)
	if c.conn == nil {
		return nil, types.ErrNotConnected
	}

	entries, err := c.List(ctx, suppl)
	if err != nil {
		c.logger.Warn("no supplementary files", "accession", acc, "path", suppl, "error", err)
		return []string{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	downloaded := []string{}
	for _, remote := range remotePaths(suppl, entries) {
		name := filepath.Base(remote)
		local, err := c.download(ctx, acc, remote, filepath.Join(dir, name), false)
		if err != nil {
			if ctx.Err() != nil {
				return downloaded, ctx.Err()
			}
			c.logger.Warn("skipping file", "accession", acc, "remote", remote, "error", err)
			continue
		}
		downloaded = append(downloaded, local)
	}
	return downloaded, nil
}

// remotePaths joins dir with each entry, dropping "." and "..".
func remotePaths(dir string, entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e == "." || e == ".." || e == "" {
			continue
		}
		out = append(out, dir+e)
	}
	return out
}
