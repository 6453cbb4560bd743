// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transfer

import (
	"context"
	"fmt"

	"github.com/pdiddy/geodataset/pkg/manifest"
	"github.com/pdiddy/geodataset/pkg/accession"
	"github.com/pdiddy/geodataset/pkg/types"
)

// DownloadOptions tunes DownloadGEOFiles.
type DownloadOptions struct {
	// Kinds are the series file kinds to fetch (DefaultKinds when empty).
	Kinds []FileKind

	// Extract unpacks downloaded archives. Nil means true.
	Extract *bool

	// ManifestPath, when set, records every download in a manifest
	// database at that path.
	ManifestPath string
}

func (o *DownloadOptions) extract() bool {
	return o == nil || o.Extract == nil || *o.Extract
}

// DownloadGEOFiles fetches everything available for acc into dir in one
// session: the series files when acc is a GSE accession, then the
// supplementary files. With extraction on, each downloaded archive is
// unpacked beside it and the extraction directories are returned; when
// nothing was extracted, or extraction is off, the downloaded files are
// returned.
func (c *Client) DownloadGEOFiles(ctx context.Context, acc, dir string, opts *DownloadOptions) ([]string, error) {
	if !accession.Validate(acc) {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidAccession, acc)
	}
	acc = accession.Normalize(acc)
	if opts == nil {
		opts = &DownloadOptions{}
	}

	if opts.ManifestPath != "" {
		store, err := manifest.Open(opts.ManifestPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		prev := c.recorder
		c.recorder = store
		defer func() { c.recorder = prev }()
	}

	files, err := c.fetchAll(ctx, acc, dir, opts.Kinds)
	if err != nil {
		return nil, err
	}
	if !opts.extract() {
		return files, nil
	}

	var dirs []string
	for _, f := range files {
		if !IsArchive(f) {
			continue
		}
		target, err := Extract(f, "")
		if err != nil {
			c.logger.Warn("extraction failed", "archive", f, "error", err)
			continue
		}
		c.logger.Info("extracted", "archive", f, "target", target)
		dirs = append(dirs, target)
	}
	if len(dirs) > 0 {
		return dirs, nil
	}
	return files, nil
}

// fetchAll downloads within a session, opening one if needed and closing
// it again afterwards.
func (c *Client) fetchAll(ctx context.Context, acc, dir string, kinds []FileKind) ([]string, error) {
	if !c.Connected() {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
		defer c.Disconnect()
	}

	var files []string
	if types.KindForAccession(acc) == types.KindSeries {
		series, err := c.DownloadSeriesFiles(ctx, acc, dir, kinds)
		if err != nil {
			return nil, err
		}
		files = append(files, series...)
	}

	suppl, err := c.DownloadSupplementaryFiles(ctx, acc, dir)
	if err != nil {
		return nil, err
	}
	return append(files, suppl...), nil
}
