// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eutils queries the archive's metadata API (esearch, esummary,
// efetch, elink) and turns the responses into results and typed records.
package eutils

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs"

	"github.com/pdiddy/geodataset/internal/httputil"
	"github.com/pdiddy/geodataset/internal/xmltree"
	"github.com/pdiddy/geodataset/pkg/types"
)

const (
	esearchEndpoint  = "esearch.fcgi"
	esummaryEndpoint = "esummary.fcgi"
	efetchEndpoint   = "efetch.fcgi"
	elinkEndpoint    = "elink.fcgi"

	defaultRetMax         = 1000
	defaultSummaryVersion = "2.0"
	defaultRetMode        = "text"
)

// Client issues metadata requests. Requests from one Client are spaced by
// the configured minimum interval.
type Client struct {
	dispatcher *httputil.Dispatcher
	logger     *slog.Logger
}

type clientOptions struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// New returns a Client for cfg. Zero config fields take their defaults.
func New(cfg types.ClientConfig, opts ...Option) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Client{
		dispatcher: httputil.NewDispatcher(cfg, o.httpClient, o.logger),
		logger:     o.logger,
	}
}

// SearchOptions tunes a search.
type SearchOptions struct {
	// MaxResults caps the number of UIDs returned (default 1000).
	MaxResults int

	// UseHistory asks the server for a pagination handle.
	UseHistory bool

	// Params are extra request parameters; they override the defaults.
	Params url.Values
}

// DefaultSearchOptions returns the options used when Search gets nil:
// 1000 results with history mode on.
func DefaultSearchOptions() *SearchOptions {
	return &SearchOptions{MaxResults: defaultRetMax, UseHistory: true}
}

// Search runs term against db and returns the matching UIDs in server order.
func (c *Client) Search(ctx context.Context, db, term string, opts *SearchOptions) (*types.SearchResult, error) {
	if opts == nil {
		opts = DefaultSearchOptions()
	}
	retMax := opts.MaxResults
	if retMax <= 0 {
		retMax = defaultRetMax
	}

	params := url.Values{}
	params.Set("db", db)
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(retMax))
	params.Set("usehistory", "n")
	if opts.UseHistory {
		params.Set("usehistory", "y")
	}
	for k, vs := range opts.Params {
		params[k] = append([]string(nil), vs...)
	}

	body, err := c.dispatcher.Get(ctx, esearchEndpoint, params)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", db, err)
	}
	doc, err := parse(body)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", db, err)
	}

	result := &types.SearchResult{
		UIDs:             xmltree.Texts(doc.Search("IdList", "Id").Data()),
		Count:            atoi(xmltree.Text(doc.Search("Count").Data())),
		QueryTranslation: xmltree.Text(doc.Search("QueryTranslation").Data()),
		Raw:              string(body),
	}
	if opts.UseHistory {
		result.QueryKey = xmltree.Text(doc.Search("QueryKey").Data())
		result.WebEnv = xmltree.Text(doc.Search("WebEnv").Data())
	}
	if doc.Exists("ERROR") {
		c.logger.Warn("search reported an error", "db", db, "error", xmltree.Text(doc.Search("ERROR").Data()))
	}

	c.logger.Debug("search complete", "db", db, "count", result.Count, "returned", len(result.UIDs))
	return result, nil
}

// Fetch returns the raw efetch body for the selected records. retMode
// defaults to "text"; retType is sent only when set.
func (c *Client) Fetch(ctx context.Context, db string, sel types.Selector, retType, retMode string) (string, error) {
	if err := sel.Validate(); err != nil {
		return "", err
	}
	if retMode == "" {
		retMode = defaultRetMode
	}

	params := url.Values{}
	params.Set("db", db)
	params.Set("retmode", retMode)
	if retType != "" {
		params.Set("rettype", retType)
	}
	addSelector(params, sel, false)

	body, err := c.dispatcher.Get(ctx, efetchEndpoint, params)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", db, err)
	}
	return string(body), nil
}

// addSelector adds either the UID list or the pagination handle. When
// repeat is set each UID is sent as its own id parameter.
func addSelector(params url.Values, sel types.Selector, repeat bool) {
	if len(sel.UIDs) == 0 {
		params.Set("query_key", sel.QueryKey)
		params.Set("WebEnv", sel.WebEnv)
		return
	}
	if repeat {
		for _, id := range sel.UIDs {
			params.Add("id", id)
		}
		return
	}
	params.Set("id", strings.Join(sel.UIDs, ","))
}

func parse(body []byte) (*gabs.Container, error) {
	tree, err := xmltree.Parse(body)
	if err != nil {
		return nil, err
	}
	return gabs.Consume(tree)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
