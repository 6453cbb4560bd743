// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/geodataset/pkg/types"
)

const summaryV2 = `<?xml version="1.0" encoding="UTF-8" ?>
<eSummaryResult>
<DocumentSummarySet status="OK">
	<DocumentSummary uid="200012345">
		<Accession>GSE12345</Accession>
		<title>Tumor expression profiles</title>
		<summary>Profiles of tumors.</summary>
		<GPL>570;96</GPL>
		<taxon>Homo sapiens</taxon>
		<n_samples>24</n_samples>
		<PubMedIds><int>111</int><int>222</int></PubMedIds>
		<PDAT>2008/09/01</PDAT>
		<entryType>GSE</entryType>
	</DocumentSummary>
	<DocumentSummary uid="1">
		<Accession>GDS1</Accession>
		<title>Dataset one</title>
		<GPL>5</GPL>
		<n_samples>abc</n_samples>
	</DocumentSummary>
	<DocumentSummary uid="300000001">
		<Accession>GSM7</Accession>
		<GPL>570</GPL>
		<GSE>12345</GSE>
		<taxon>Mus musculus</taxon>
	</DocumentSummary>
	<DocumentSummary uid="100000096">
		<Accession>GPL96</Accession>
		<ptechType>in situ oligonucleotide</ptechType>
	</DocumentSummary>
	<DocumentSummary uid="9">
		<Accession>XYZ9</Accession>
	</DocumentSummary>
</DocumentSummarySet>
</eSummaryResult>`

func TestSummarizeBuildsVariants(t *testing.T) {
	c, seen := newTestClient(t, map[string]string{"/esummary.fcgi": summaryV2})

	records, err := c.Summarize(context.Background(), "gds", types.ByUIDs("200012345", "1"), "")
	require.NoError(t, err)
	require.Len(t, records, 5)

	q := seen.all()[0]
	assert.Equal(t, "2.0", q.Get("version"))
	assert.Equal(t, "200012345,1", q.Get("id"))

	series, ok := records[0].(types.Series)
	require.True(t, ok)
	assert.Equal(t, "200012345", series.UID)
	assert.Equal(t, "GSE12345", series.Accession)
	assert.Equal(t, "Tumor expression profiles", series.Title)
	assert.Equal(t, "Homo sapiens", series.Organism)
	require.NotNil(t, series.SampleCount)
	assert.Equal(t, 24, *series.SampleCount)
	require.NotNil(t, series.PlatformCount)
	assert.Equal(t, 2, *series.PlatformCount)
	assert.Equal(t, []string{"111", "222"}, series.PubMedIDs)
	assert.Equal(t, "2008/09/01", series.SubmissionDate)
	v, ok := series.Field("entryType")
	assert.True(t, ok)
	assert.Equal(t, "GSE", v)

	dataset, ok := records[1].(types.Dataset)
	require.True(t, ok)
	assert.Equal(t, "GPL5", dataset.Platform)
	assert.Nil(t, dataset.SampleCount)
	assert.Nil(t, dataset.GeneCount)

	sample, ok := records[2].(types.Sample)
	require.True(t, ok)
	assert.Equal(t, "GPL570", sample.Platform)
	assert.Equal(t, "GSE12345", sample.Series)
	assert.Equal(t, "Mus musculus", sample.Organism)

	platform, ok := records[3].(types.Platform)
	require.True(t, ok)
	assert.Equal(t, "in situ oligonucleotide", platform.Technology)

	generic, ok := records[4].(types.Generic)
	require.True(t, ok)
	assert.Equal(t, types.KindGeneric, generic.Kind())
}

func TestSummarizeLegacyDocSum(t *testing.T) {
	body := `<eSummaryResult>
	<DocSum>
		<Id>200012345</Id>
		<Item><Name>Accession</Name><Value>GSE12345</Value></Item>
		<Item><Name>title</Name><Value>Legacy series</Value></Item>
		<Item><Name>n_samples</Name><Value>6</Value></Item>
	</DocSum>
</eSummaryResult>`
	c, seen := newTestClient(t, map[string]string{"/esummary.fcgi": body})

	records, err := c.Summarize(context.Background(), "gds", types.ByUIDs("200012345"), "1.0")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1.0", seen.all()[0].Get("version"))

	series, ok := records[0].(types.Series)
	require.True(t, ok)
	assert.Equal(t, "200012345", series.UID)
	assert.Equal(t, "Legacy series", series.Title)
	require.NotNil(t, series.SampleCount)
	assert.Equal(t, 6, *series.SampleCount)
}

func TestSummarizeSkipsNonMappingNodes(t *testing.T) {
	body := `<eSummaryResult><DocumentSummarySet>
		<DocumentSummary></DocumentSummary>
		<DocumentSummary uid="5"><Accession>GPL5</Accession></DocumentSummary>
	</DocumentSummarySet></eSummaryResult>`
	c, _ := newTestClient(t, map[string]string{"/esummary.fcgi": body})

	records, err := c.Summarize(context.Background(), "gds", types.ByUIDs("5"), "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, types.KindPlatform, records[0].Kind())
}

func TestSummarizeEmptySet(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{"/esummary.fcgi": `<eSummaryResult><DocumentSummarySet/></eSummaryResult>`})

	records, err := c.Summarize(context.Background(), "gds", types.ByUIDs("5"), "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"570", "96"}, splitIDs("570; 96"))
	assert.Equal(t, []string{"1", "2"}, splitIDs("1,2,"))
	assert.Nil(t, splitIDs(""))
}

func TestCanonicalizePrefersExactName(t *testing.T) {
	raw := map[string]any{
		"accession": "GSE1",
		"taxon":     "Mus musculus",
		"organism":  "Homo sapiens",
		"Title":     "upper",
		"title":     "lower",
	}
	for i := 0; i < 50; i++ {
		fields := canonicalize(raw, "1")
		assert.Equal(t, "Homo sapiens", fields["organism"])
		assert.Equal(t, "lower", fields["title"])
	}

	fields := canonicalize(map[string]any{"accession": "GSE1", "taxon": "Mus musculus"}, "1")
	assert.Equal(t, "Mus musculus", fields["organism"])
}
