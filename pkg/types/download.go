// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Download records one file fetched from the transfer server.
type Download struct {
	// Accession is the record the file belongs to; empty for ad-hoc downloads.
	Accession string `json:"accession" yaml:"accession"`

	// RemotePath is the path on the transfer server.
	RemotePath string `json:"remote_path" yaml:"remote_path"`

	// LocalPath is where the file was written.
	LocalPath string `json:"local_path" yaml:"local_path"`

	// Size is the number of bytes written.
	Size int64 `json:"size" yaml:"size"`

	DownloadedAt time.Time `json:"downloaded_at" yaml:"downloaded_at"`
}
