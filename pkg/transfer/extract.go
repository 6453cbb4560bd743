// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transfer

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/geodataset/pkg/types"
)

type archiveFormat int

const (
	formatUnknown archiveFormat = iota
	formatTarGz
	formatGzip
	formatTar
	formatZip
)

func detectFormat(name string) archiveFormat {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return formatTarGz
	case strings.HasSuffix(lower, ".gz"):
		return formatGzip
	case strings.HasSuffix(lower, ".tar"):
		return formatTar
	case strings.HasSuffix(lower, ".zip"):
		return formatZip
	default:
		return formatUnknown
	}
}

// IsArchive reports whether Extract understands the file's format.
func IsArchive(name string) bool {
	return detectFormat(name) != formatUnknown
}

// Extract unpacks archive into target and returns target. An empty target
// means the archive's own directory. A plain .gz file is decompressed to
// target/<name without .gz>. Entries that would land outside target are
// skipped.
func Extract(archive, target string) (string, error) {
	if _, err := os.Stat(archive); err != nil {
		return "", fmt.Errorf("archive %s: %w", archive, err)
	}
	format := detectFormat(archive)
	if format == formatUnknown {
		return "", fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, filepath.Base(archive))
	}
	if target == "" {
		target = filepath.Dir(archive)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	var err error
	switch format {
	case formatTarGz:
		err = extractTar(archive, target, true)
	case formatTar:
		err = extractTar(archive, target, false)
	case formatGzip:
		err = gunzip(archive, target)
	case formatZip:
		err = extractZip(archive, target)
	}
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", archive, err)
	}
	return target, nil
}

func extractTar(archive, target string, compressed bool) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gzr.Close()
		r = gzr
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		dest, ok := within(target, hdr.Name)
		if !ok {
			continue
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(dest, tr); err != nil {
				return err
			}
		}
	}
}

func gunzip(archive, target string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gzr.Close()

	name := filepath.Base(archive)
	stem := name[:len(name)-len(filepath.Ext(name))]
	return writeFile(filepath.Join(target, stem), gzr)
}

func extractZip(archive, target string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, zf := range zr.File {
		dest, ok := within(target, zf.Name)
		if !ok {
			continue
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return err
		}
		err = writeFile(dest, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// within joins name onto target, rejecting names that escape it.
func within(target, name string) (string, bool) {
	dest := filepath.Join(target, name)
	rel, err := filepath.Rel(target, dest)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return dest, true
}

func writeFile(dest string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}
