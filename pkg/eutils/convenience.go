// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/geodataset/pkg/accession"
	"github.com/pdiddy/geodataset/pkg/types"
)

// GEODatabase is the database holding series, datasets, samples, and platforms.
const GEODatabase = "gds"

const dateLayout = "2006/01/02"

// SearchSeries searches GSE records.
func (c *Client) SearchSeries(ctx context.Context, term string, opts *SearchOptions) (*types.SearchResult, error) {
	return c.Search(ctx, GEODatabase, typedTerm(term, types.KindSeries), opts)
}

// SearchDatasets searches GDS records.
func (c *Client) SearchDatasets(ctx context.Context, term string, opts *SearchOptions) (*types.SearchResult, error) {
	return c.Search(ctx, GEODatabase, typedTerm(term, types.KindDataset), opts)
}

// SearchSamples searches GSM records.
func (c *Client) SearchSamples(ctx context.Context, term string, opts *SearchOptions) (*types.SearchResult, error) {
	return c.Search(ctx, GEODatabase, typedTerm(term, types.KindSample), opts)
}

// SearchPlatforms searches GPL records.
func (c *Client) SearchPlatforms(ctx context.Context, term string, opts *SearchOptions) (*types.SearchResult, error) {
	return c.Search(ctx, GEODatabase, typedTerm(term, types.KindPlatform), opts)
}

func typedTerm(term string, kind types.Kind) string {
	return fmt.Sprintf("%s AND %s[ETYP]", term, kind.Prefix())
}

// ParseDateRange splits "YYYY/MM/DD:YYYY/MM/DD" into its two dates.
func ParseDateRange(dateRange string) (start, end string, err error) {
	parts := strings.Split(dateRange, ":")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q", types.ErrInvalidDateRange, dateRange)
	}
	start, end = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	for _, d := range []string{start, end} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return "", "", fmt.Errorf("%w: %q", types.ErrInvalidDateRange, dateRange)
		}
	}
	return start, end, nil
}

// SearchByDateRange restricts a GEO search to records published within
// dateRange ("YYYY/MM/DD:YYYY/MM/DD").
func (c *Client) SearchByDateRange(ctx context.Context, term, dateRange string, opts *SearchOptions) (*types.SearchResult, error) {
	start, end, err := ParseDateRange(dateRange)
	if err != nil {
		return nil, err
	}
	filtered := fmt.Sprintf(`%s AND ("%s"[PDAT] : "%s"[PDAT])`, term, start, end)
	return c.Search(ctx, GEODatabase, filtered, opts)
}

// GetSeriesByAccession returns the series with the given accession. The
// bool is false when nothing matched.
func (c *Client) GetSeriesByAccession(ctx context.Context, acc string) (*types.Series, bool, error) {
	return getByAccession[types.Series](ctx, c, acc)
}

// GetDatasetByAccession returns the dataset with the given accession. The
// bool is false when nothing matched.
func (c *Client) GetDatasetByAccession(ctx context.Context, acc string) (*types.Dataset, bool, error) {
	return getByAccession[types.Dataset](ctx, c, acc)
}

// GetSampleByAccession returns the sample with the given accession. The
// bool is false when nothing matched.
func (c *Client) GetSampleByAccession(ctx context.Context, acc string) (*types.Sample, bool, error) {
	return getByAccession[types.Sample](ctx, c, acc)
}

// GetPlatformByAccession returns the platform with the given accession. The
// bool is false when nothing matched.
func (c *Client) GetPlatformByAccession(ctx context.Context, acc string) (*types.Platform, bool, error) {
	return getByAccession[types.Platform](ctx, c, acc)
}

// getByAccession searches acc[ACCN], summarizes the first hit, and returns
// the first record of variant T in response order.
func getByAccession[T types.Record](ctx context.Context, c *Client, acc string) (*T, bool, error) {
	if !accession.Validate(acc) {
		return nil, false, fmt.Errorf("%w: %q", types.ErrInvalidAccession, acc)
	}

	res, err := c.Search(ctx, GEODatabase, accession.Normalize(acc)+"[ACCN]", nil)
	if err != nil {
		return nil, false, err
	}
	if len(res.UIDs) == 0 {
		return nil, false, nil
	}

	records, err := c.Summarize(ctx, GEODatabase, types.ByUIDs(res.UIDs[0]), "")
	if err != nil {
		return nil, false, err
	}
	for _, rec := range records {
		if v, ok := rec.(T); ok {
			return &v, true, nil
		}
	}
	return nil, false, nil
}
