// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/geodataset/pkg/types"
)

func TestTypedSearchesAppendEntryType(t *testing.T) {
	c, seen := newTestClient(t, map[string]string{"/esearch.fcgi": searchTwoIDs})
	ctx := context.Background()

	_, err := c.SearchSeries(ctx, "cancer", nil)
	require.NoError(t, err)
	_, err = c.SearchDatasets(ctx, "cancer", nil)
	require.NoError(t, err)
	_, err = c.SearchSamples(ctx, "cancer", nil)
	require.NoError(t, err)
	_, err = c.SearchPlatforms(ctx, "cancer", nil)
	require.NoError(t, err)

	queries := seen.all()
	require.Len(t, queries, 4)
	want := []string{
		"cancer AND GSE[ETYP]",
		"cancer AND GDS[ETYP]",
		"cancer AND GSM[ETYP]",
		"cancer AND GPL[ETYP]",
	}
	for i, q := range queries {
		assert.Equal(t, "gds", q.Get("db"))
		assert.Equal(t, want[i], q.Get("term"))
	}
}

func TestParseDateRange(t *testing.T) {
	start, end, err := ParseDateRange("2020/01/01:2020/12/31")
	require.NoError(t, err)
	assert.Equal(t, "2020/01/01", start)
	assert.Equal(t, "2020/12/31", end)

	for _, bad := range []string{"", "2020/01/01", "2020-01-01:2020-12-31", "a:b", "2020/01/01:2020/12/31:2021/01/01"} {
		_, _, err := ParseDateRange(bad)
		assert.ErrorIs(t, err, types.ErrInvalidDateRange, bad)
	}
}

func TestSearchByDateRange(t *testing.T) {
	c, seen := newTestClient(t, map[string]string{"/esearch.fcgi": searchTwoIDs})

	_, err := c.SearchByDateRange(context.Background(), "cancer", "2020/01/01:2020/12/31", nil)
	require.NoError(t, err)
	assert.Equal(t, `cancer AND ("2020/01/01"[PDAT] : "2020/12/31"[PDAT])`, seen.all()[0].Get("term"))

	_, err = c.SearchByDateRange(context.Background(), "cancer", "last year", nil)
	assert.ErrorIs(t, err, types.ErrInvalidDateRange)
	assert.Len(t, seen.all(), 1)
}

func TestGetSeriesByAccession(t *testing.T) {
	c, seen := newTestClient(t, map[string]string{
		"/esearch.fcgi":  `<eSearchResult><Count>1</Count><IdList><Id>200012345</Id></IdList></eSearchResult>`,
		"/esummary.fcgi": summaryV2,
	})

	series, found, err := c.GetSeriesByAccession(context.Background(), "gse12345")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "GSE12345", series.Accession)

	queries := seen.all()
	require.Len(t, queries, 2)
	assert.Equal(t, "GSE12345[ACCN]", queries[0].Get("term"))
	assert.Equal(t, "200012345", queries[1].Get("id"))
}

func TestGetByAccessionFirstMatchOfVariant(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"/esearch.fcgi":  `<eSearchResult><IdList><Id>1</Id></IdList></eSearchResult>`,
		"/esummary.fcgi": summaryV2,
	})
	ctx := context.Background()

	platform, found, err := c.GetPlatformByAccession(ctx, "GPL96")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "in situ oligonucleotide", platform.Technology)

	sample, found, err := c.GetSampleByAccession(ctx, "GSM7")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "GSM7", sample.Accession)

	dataset, found, err := c.GetDatasetByAccession(ctx, "GDS1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, dataset.GeneCount)
}

func TestGetByAccessionNotFound(t *testing.T) {
	c, seen := newTestClient(t, map[string]string{
		"/esearch.fcgi": `<eSearchResult><Count>0</Count><IdList/></eSearchResult>`,
	})

	series, found, err := c.GetSeriesByAccession(context.Background(), "GSE99999999")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, series)
	assert.Len(t, seen.all(), 1)
}

func TestGetByAccessionNoMatchingVariant(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"/esearch.fcgi": `<eSearchResult><IdList><Id>5</Id></IdList></eSearchResult>`,
		"/esummary.fcgi": `<eSummaryResult><DocumentSummarySet>
			<DocumentSummary uid="5"><Accession>GPL5</Accession></DocumentSummary>
		</DocumentSummarySet></eSummaryResult>`,
	})

	series, found, err := c.GetSeriesByAccession(context.Background(), "GSE5")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, series)
}

func TestGetByAccessionInvalidSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer ts.Close()
	c := New(types.ClientConfig{BaseURL: ts.URL, MinInterval: -1}, WithHTTPClient(ts.Client()))

	_, found, err := c.GetSeriesByAccession(context.Background(), "INVALID")
	assert.ErrorIs(t, err, types.ErrInvalidAccession)
	assert.False(t, found)
	assert.Equal(t, int32(0), calls.Load())
}
