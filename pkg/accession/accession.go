// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package accession validates archive accessions and derives the transfer
// server paths that hold their files.
package accession

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/geodataset/pkg/types"
)

// accessionPattern matches GPL, GSE, GDS, and GSM accessions after uppercasing.
var accessionPattern = regexp.MustCompile(`^G(PL|SE|DS|SM)\d+$`)

// categories maps each kind to its prefix and top-level directory.
var categories = map[types.Kind]struct{ prefix, dir string }{
	types.KindSeries:   {"GSE", "series"},
	types.KindPlatform: {"GPL", "platforms"},
	types.KindSample:   {"GSM", "samples"},
	types.KindDataset:  {"GDS", "datasets"},
}

// Normalize trims and uppercases an accession.
func Normalize(accession string) string {
	return strings.ToUpper(strings.TrimSpace(accession))
}

// Validate reports whether accession is a well-formed GPL, GSE, GDS, or GSM
// accession. Case is ignored; surrounding whitespace is not.
func Validate(accession string) bool {
	return accessionPattern.MatchString(strings.ToUpper(accession))
}

// ParseKind maps a kind name ("series", "platform", "sample", "dataset") to
// its Kind.
func ParseKind(name string) (types.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "series":
		return types.KindSeries, nil
	case "platform":
		return types.KindPlatform, nil
	case "sample":
		return types.KindSample, nil
	case "dataset":
		return types.KindDataset, nil
	default:
		return types.KindGeneric, fmt.Errorf("%w: unknown kind %q", types.ErrUnsupportedCombination, name)
	}
}

// Bucket returns the directory bucket for the numeric part of an accession:
// the number with its last three digits replaced by "nnn".
func Bucket(number string) string {
	if len(number) < 3 {
		return "nnn"
	}
	return number[:len(number)-3] + "nnn"
}

// DerivePath returns the transfer server directory for accession, e.g.
// "GSE12345" with KindSeries → "/geo/series/GSE12nnn/GSE12345/".
// The kind must own the accession's prefix.
func DerivePath(accession string, kind types.Kind) (string, error) {
	acc := strings.ToUpper(accession)
	if !Validate(acc) {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidAccession, accession)
	}

	prefix, number := acc[:3], acc[3:]
	cat, ok := categories[kind]
	if !ok || cat.prefix != prefix {
		return "", fmt.Errorf("%w: %s with %s", types.ErrUnsupportedCombination, prefix, kind)
	}
	return fmt.Sprintf("/geo/%s/%s%s/%s%s/", cat.dir, prefix, Bucket(number), prefix, number), nil
}

// SupplementaryPath returns the directory holding an accession's
// supplementary files. Datasets have no suppl/ directory; their soft/
// directory is used instead.
func SupplementaryPath(accession string) (string, error) {
	acc := strings.ToUpper(accession)
	if !Validate(acc) {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidAccession, accession)
	}

	kind := types.KindForAccession(acc)
	base, err := DerivePath(acc, kind)
	if err != nil {
		return "", err
	}
	if kind == types.KindDataset {
		return base + "soft/", nil
	}
	return base + "suppl/", nil
}
