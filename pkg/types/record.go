// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Kind identifies a record variant. The set is closed.
type Kind int

const (
	KindGeneric Kind = iota
	KindSeries
	KindDataset
	KindSample
	KindPlatform
)

func (k Kind) String() string {
	switch k {
	case KindSeries:
		return "series"
	case KindDataset:
		return "dataset"
	case KindSample:
		return "sample"
	case KindPlatform:
		return "platform"
	default:
		return "generic"
	}
}

// Prefix returns the accession prefix owned by the kind, or "" for KindGeneric.
func (k Kind) Prefix() string {
	switch k {
	case KindSeries:
		return "GSE"
	case KindDataset:
		return "GDS"
	case KindSample:
		return "GSM"
	case KindPlatform:
		return "GPL"
	default:
		return ""
	}
}

// KindForAccession maps an accession's prefix to its record kind.
// Unknown prefixes map to KindGeneric.
func KindForAccession(accession string) Kind {
	acc := strings.ToUpper(strings.TrimSpace(accession))
	switch {
	case strings.HasPrefix(acc, "GSE"):
		return KindSeries
	case strings.HasPrefix(acc, "GDS"):
		return KindDataset
	case strings.HasPrefix(acc, "GSM"):
		return KindSample
	case strings.HasPrefix(acc, "GPL"):
		return KindPlatform
	default:
		return KindGeneric
	}
}

// Record is one retrieved archive record. The implementations are Generic,
// Series, Dataset, Sample, and Platform; use a type switch to reach the
// variant fields.
type Record interface {
	Kind() Kind
	Common() Base
	Validate() error
	record()
}

// Base holds the fields shared by every variant.
type Base struct {
	UID       string `json:"uid" yaml:"uid"`
	Accession string `json:"accession" yaml:"accession"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	Summary   string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Status    string `json:"status,omitempty" yaml:"status,omitempty"`

	// Extra holds response fields that have no dedicated attribute.
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Common returns a copy of the shared fields.
func (b Base) Common() Base {
	out := b
	if b.Extra != nil {
		out.Extra = make(map[string]string, len(b.Extra))
		for k, v := range b.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Field returns an extra field by name.
func (b Base) Field(name string) (string, bool) {
	v, ok := b.Extra[name]
	return v, ok
}

func (b Base) checkPrefix(k Kind) error {
	if b.Accession == "" || KindForAccession(b.Accession) != k {
		return fmt.Errorf("%w: %q is not a %s accession", ErrAccessionMismatch, b.Accession, k)
	}
	return nil
}

// Generic is a record whose accession has no known prefix.
type Generic struct {
	Base `yaml:",inline"`
}

func (Generic) Kind() Kind { return KindGeneric }

// Validate accepts any accession.
func (Generic) Validate() error { return nil }

func (Generic) record() {}

// Series is a GSE record.
type Series struct {
	Base `yaml:",inline"`

	Organism       string   `json:"organism,omitempty" yaml:"organism,omitempty"`
	PlatformCount  *int     `json:"platform_count,omitempty" yaml:"platform_count,omitempty"`
	SampleCount    *int     `json:"sample_count,omitempty" yaml:"sample_count,omitempty"`
	PubMedIDs      []string `json:"pubmed_ids,omitempty" yaml:"pubmed_ids,omitempty"`
	SubmissionDate string   `json:"submission_date,omitempty" yaml:"submission_date,omitempty"`
	LastUpdate     string   `json:"last_update,omitempty" yaml:"last_update,omitempty"`
}

func (Series) Kind() Kind { return KindSeries }

// Validate returns ErrAccessionMismatch unless the accession starts with GSE.
func (s Series) Validate() error { return s.checkPrefix(KindSeries) }

func (Series) record() {}

// Dataset is a GDS record.
type Dataset struct {
	Base `yaml:",inline"`

	Platform    string   `json:"platform,omitempty" yaml:"platform,omitempty"`
	SampleCount *int     `json:"sample_count,omitempty" yaml:"sample_count,omitempty"`
	GeneCount   *int     `json:"gene_count,omitempty" yaml:"gene_count,omitempty"`
	PubMedIDs   []string `json:"pubmed_ids,omitempty" yaml:"pubmed_ids,omitempty"`
}

func (Dataset) Kind() Kind { return KindDataset }

// Validate returns ErrAccessionMismatch unless the accession starts with GDS.
func (d Dataset) Validate() error { return d.checkPrefix(KindDataset) }

func (Dataset) record() {}

// Sample is a GSM record.
type Sample struct {
	Base `yaml:",inline"`

	Organism        string            `json:"organism,omitempty" yaml:"organism,omitempty"`
	Platform        string            `json:"platform,omitempty" yaml:"platform,omitempty"`
	Series          string            `json:"series,omitempty" yaml:"series,omitempty"`
	Molecule        string            `json:"molecule,omitempty" yaml:"molecule,omitempty"`
	Characteristics map[string]string `json:"characteristics,omitempty" yaml:"characteristics,omitempty"`
}

func (Sample) Kind() Kind { return KindSample }

// Validate returns ErrAccessionMismatch unless the accession starts with GSM.
func (s Sample) Validate() error { return s.checkPrefix(KindSample) }

func (Sample) record() {}

// Platform is a GPL record.
type Platform struct {
	Base `yaml:",inline"`

	Technology   string `json:"technology,omitempty" yaml:"technology,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Distribution string `json:"distribution,omitempty" yaml:"distribution,omitempty"`
	Organism     string `json:"organism,omitempty" yaml:"organism,omitempty"`
}

func (Platform) Kind() Kind { return KindPlatform }

// Validate returns ErrAccessionMismatch unless the accession starts with GPL.
func (p Platform) Validate() error { return p.checkPrefix(KindPlatform) }

func (Platform) record() {}
