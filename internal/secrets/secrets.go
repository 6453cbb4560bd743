// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads named credentials from a directory holding one
// plain-text file per credential.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Load returns the trimmed contents of each named file in dir, keyed by
// name. Missing files, a missing dir, and files holding only whitespace are
// left out of the result. A name that is not a plain file name, or a file
// that exists but cannot be read, is an error.
func Load(dir string, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, name := range names {
		if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
			return nil, fmt.Errorf("invalid secret name %q", name)
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading secret %s: %w", name, err)
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			out[name] = v
		}
	}
	return out, nil
}
