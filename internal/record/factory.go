// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package record turns a flat field set extracted from a response into a
// typed record, choosing the variant from the accession prefix.
package record

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/pdiddy/geodataset/pkg/types"
)

// Fields is a flat field set. Values are strings, lists, or nested maps as
// produced by the tree parser.
type Fields = map[string]any

// BaseFields are decoded for every variant. Rest collects the fields
// without a dedicated attribute.
type BaseFields struct {
	UID       string `mapstructure:"uid"`
	Accession string `mapstructure:"accession"`
	Title     string `mapstructure:"title"`
	Summary   string `mapstructure:"summary"`
	Status    string `mapstructure:"status"`

	Rest map[string]any `mapstructure:",remain"`
}

func (b BaseFields) toBase() types.Base {
	return types.Base{
		UID:       strings.TrimSpace(b.UID),
		Accession: strings.TrimSpace(b.Accession),
		Title:     b.Title,
		Summary:   b.Summary,
		Status:    b.Status,
		Extra:     extras(b.Rest),
	}
}

type seriesFields struct {
	BaseFields `mapstructure:",squash"`

	Organism       string   `mapstructure:"organism"`
	PlatformCount  string   `mapstructure:"platform_count"`
	SampleCount    string   `mapstructure:"sample_count"`
	PubMedIDs      []string `mapstructure:"pubmed_ids"`
	SubmissionDate string   `mapstructure:"submission_date"`
	LastUpdate     string   `mapstructure:"last_update"`
}

type datasetFields struct {
	BaseFields `mapstructure:",squash"`

	Platform    string   `mapstructure:"platform"`
	SampleCount string   `mapstructure:"sample_count"`
	GeneCount   string   `mapstructure:"gene_count"`
	PubMedIDs   []string `mapstructure:"pubmed_ids"`
}

type sampleFields struct {
	BaseFields `mapstructure:",squash"`

	Organism        string            `mapstructure:"organism"`
	Platform        string            `mapstructure:"platform"`
	Series          string            `mapstructure:"series"`
	Molecule        string            `mapstructure:"molecule"`
	Characteristics map[string]string `mapstructure:"characteristics"`
}

type platformFields struct {
	BaseFields `mapstructure:",squash"`

	Technology   string `mapstructure:"technology"`
	Manufacturer string `mapstructure:"manufacturer"`
	Distribution string `mapstructure:"distribution"`
	Organism     string `mapstructure:"organism"`
}

// Build constructs the record variant selected by the prefix of the
// "accession" field. An absent or unknown prefix yields types.Generic.
// Numeric fields that are absent or unparsable are left unset. The built
// variant is validated again and ErrAccessionMismatch returned on failure.
func Build(fields Fields) (types.Record, error) {
	var rec types.Record

	switch types.KindForAccession(accessionOf(fields)) {
	case types.KindSeries:
		var f seriesFields
		if err := decode(fields, &f); err != nil {
			return nil, err
		}
		rec = types.Series{
			Base:           f.toBase(),
			Organism:       f.Organism,
			PlatformCount:  optionalInt(f.PlatformCount),
			SampleCount:    optionalInt(f.SampleCount),
			PubMedIDs:      f.PubMedIDs,
			SubmissionDate: f.SubmissionDate,
			LastUpdate:     f.LastUpdate,
		}
	case types.KindDataset:
		var f datasetFields
		if err := decode(fields, &f); err != nil {
			return nil, err
		}
		rec = types.Dataset{
			Base:        f.toBase(),
			Platform:    f.Platform,
			SampleCount: optionalInt(f.SampleCount),
			GeneCount:   optionalInt(f.GeneCount),
			PubMedIDs:   f.PubMedIDs,
		}
	case types.KindSample:
		var f sampleFields
		if err := decode(fields, &f); err != nil {
			return nil, err
		}
		rec = types.Sample{
			Base:            f.toBase(),
			Organism:        f.Organism,
			Platform:        f.Platform,
			Series:          f.Series,
			Molecule:        f.Molecule,
			Characteristics: f.Characteristics,
		}
	case types.KindPlatform:
		var f platformFields
		if err := decode(fields, &f); err != nil {
			return nil, err
		}
		rec = types.Platform{
			Base:         f.toBase(),
			Technology:   f.Technology,
			Manufacturer: f.Manufacturer,
			Distribution: f.Distribution,
			Organism:     f.Organism,
		}
	case types.KindGeneric:
		var f BaseFields
		if err := decode(fields, &f); err != nil {
			return nil, err
		}
		rec = types.Generic{Base: f.toBase()}
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// accessionOf finds the accession field, matching the key case-insensitively.
func accessionOf(fields Fields) string {
	if v, ok := fields["accession"]; ok {
		return flatten(v)
	}
	for k, v := range fields {
		if strings.EqualFold(k, "accession") {
			return flatten(v)
		}
	}
	return ""
}

func decode(fields Fields, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       normalizeHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(fields); err != nil {
		return fmt.Errorf("decoding record fields: %w", err)
	}
	return nil
}

var (
	stringType    = reflect.TypeOf("")
	stringsType   = reflect.TypeOf([]string(nil))
	stringMapType = reflect.TypeOf(map[string]string(nil))
)

// normalizeHook reshapes tree values into what the field types expect:
// nested values become strings, wrapped lists become []string, and
// "key: value; ..." strings become maps.
func normalizeHook(from, to reflect.Type, data any) (any, error) {
	if data == nil {
		return data, nil
	}
	switch to {
	case stringType:
		switch data.(type) {
		case []any, []string, map[string]any:
			return flatten(data), nil
		}
	case stringsType:
		switch t := data.(type) {
		case map[string]any:
			return flattenList(t), nil
		case string:
			if strings.TrimSpace(t) == "" {
				return []string{}, nil
			}
		}
	case stringMapType:
		if s, ok := data.(string); ok {
			return parseCharacteristics(s), nil
		}
	}
	return data, nil
}

// optionalInt parses a non-negative integer, returning nil when s is empty
// or not a valid count.
func optionalInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// flatten renders a tree value as a single string. Lists are joined with
// commas; a map with one key is flattened through that key; other maps are
// JSON-encoded.
func flatten(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, flatten(item))
		}
		return strings.Join(parts, ",")
	case map[string]any:
		if len(t) == 1 {
			for _, inner := range t {
				return flatten(inner)
			}
		}
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	default:
		return fmt.Sprint(t)
	}
}

// flattenList collects the leaf strings under a wrapper map such as
// {"int": ["1", "2"]}, in key order.
func flattenList(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		switch t := m[k].(type) {
		case []any:
			for _, item := range t {
				if s := flatten(item); s != "" {
					out = append(out, s)
				}
			}
		case map[string]any:
			out = append(out, flattenList(t)...)
		default:
			if s := flatten(t); s != "" {
				out = append(out, s)
			}
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// parseCharacteristics reads "key: value; key: value" into a map. Entries
// without a colon are stored under their index.
func parseCharacteristics(s string) map[string]string {
	out := make(map[string]string)
	for i, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			out[strconv.Itoa(i)] = part
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

func extras(rest map[string]any) map[string]string {
	if len(rest) == 0 {
		return nil
	}
	out := make(map[string]string, len(rest))
	for k, v := range rest {
		out[k] = flatten(v)
	}
	return out
}
