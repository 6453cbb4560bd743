// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/geodataset/internal/record"
	"github.com/pdiddy/geodataset/internal/xmltree"
	"github.com/pdiddy/geodataset/pkg/types"
)

// fieldAliases maps lowercased summary field names to record field names.
var fieldAliases = map[string]string{
	"accession":       "accession",
	"title":           "title",
	"summary":         "summary",
	"status":          "status",
	"taxon":           "organism",
	"organism":        "organism",
	"n_samples":       "sample_count",
	"samplecount":     "sample_count",
	"pubmedids":       "pubmed_ids",
	"pdat":            "submission_date",
	"submissiondate":  "submission_date",
	"lastupdatedate":  "last_update",
	"ptechtype":       "technology",
	"technology":      "technology",
	"manufacturer":    "manufacturer",
	"distribution":    "distribution",
	"molecule":        "molecule",
	"characteristics": "characteristics",
	"genecount":       "gene_count",
	"n_genes":         "gene_count",
}

// Summarize returns one record per document summary in the esummary
// response, in response order. version defaults to "2.0". Summaries that
// are not field sets, or that fail to build, are skipped.
func (c *Client) Summarize(ctx context.Context, db string, sel types.Selector, version string) ([]types.Record, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if version == "" {
		version = defaultSummaryVersion
	}

	params := url.Values{}
	params.Set("db", db)
	params.Set("version", version)
	addSelector(params, sel, false)

	body, err := c.dispatcher.Get(ctx, esummaryEndpoint, params)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", db, err)
	}
	doc, err := parse(body)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", db, err)
	}

	var nodes []any
	if doc.Exists("DocumentSummarySet") {
		nodes = xmltree.List(doc.Search("DocumentSummarySet", "DocumentSummary").Data())
	} else {
		nodes = xmltree.List(doc.Search("DocSum").Data())
	}

	records := make([]types.Record, 0, len(nodes))
	for i, node := range nodes {
		m, ok := node.(map[string]any)
		if !ok {
			continue
		}
		rec, err := record.Build(summaryFields(m))
		if err != nil {
			c.logger.Warn("skipping summary", "db", db, "index", i, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// summaryFields flattens one document summary into record fields. Version
// 2.0 summaries carry their fields as child elements and the UID as an
// attribute; legacy DocSum nodes carry an Id and Item entries with Name
// and Value children.
func summaryFields(doc map[string]any) record.Fields {
	raw := make(map[string]any, len(doc))
	var uid string

	if items, ok := doc["Item"]; ok {
		uid = xmltree.Text(doc["Id"])
		for _, item := range xmltree.List(items) {
			im, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name := xmltree.Text(im["Name"])
			value, hasValue := im["Value"]
			if name == "" || !hasValue {
				continue
			}
			raw[name] = value
		}
	} else {
		uid = xmltree.Text(doc[xmltree.AttrPrefix+"uid"])
		if uid == "" {
			uid = xmltree.Text(doc["Id"])
		}
		for k, v := range doc {
			if strings.HasPrefix(k, xmltree.AttrPrefix) || k == "Id" {
				continue
			}
			raw[k] = v
		}
	}

	return canonicalize(raw, uid)
}

// canonicalize renames known upstream fields to record field names and
// derives platform and series references from the GPL and GSE fields.
func canonicalize(raw map[string]any, uid string) record.Fields {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// The canonical name beats a differently cased canonical name, which
	// beats an alias, which beats an unknown key. Ties go to the first key
	// in sorted order.
	fields := make(record.Fields, len(raw)+1)
	rank := make(map[string]int, len(raw))
	for _, k := range keys {
		name, ok := fieldAliases[strings.ToLower(k)]
		r := 0
		switch {
		case !ok:
			name = k
		case k == name:
			r = 3
		case strings.ToLower(k) == name:
			r = 2
		default:
			r = 1
		}
		if prev, taken := rank[name]; taken && prev >= r {
			continue
		}
		rank[name] = r
		fields[name] = raw[k]
	}
	if uid != "" {
		fields["uid"] = uid
	}

	kind := types.KindForAccession(xmltree.Text(fields["accession"]))

	if gpl, ok := fields["GPL"]; ok {
		ids := splitIDs(xmltree.Text(gpl))
		if len(ids) > 0 {
			switch kind {
			case types.KindSeries:
				setDefault(fields, "platform_count", strconv.Itoa(len(ids)))
			case types.KindDataset, types.KindSample:
				setDefault(fields, "platform", "GPL"+ids[0])
			}
		}
	}
	if gse, ok := fields["GSE"]; ok && kind == types.KindSample {
		if ids := splitIDs(xmltree.Text(gse)); len(ids) > 0 {
			setDefault(fields, "series", "GSE"+ids[0])
		}
	}
	return fields
}

func setDefault(fields record.Fields, key, value string) {
	if _, ok := fields[key]; !ok {
		fields[key] = value
	}
}

// splitIDs splits "570;96" style id lists.
func splitIDs(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
