// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Input validation. These never reach the network.
var (
	ErrInvalidAccession       = errors.New("invalid accession")
	ErrUnsupportedCombination = errors.New("unsupported accession/kind combination")
	ErrInvalidDateRange       = errors.New("invalid date range, want YYYY/MM/DD:YYYY/MM/DD")
)

// Caller contract violations.
var (
	ErrMissingSelector   = errors.New("either uids or query_key+web_env must be provided")
	ErrAccessionMismatch = errors.New("accession does not match record variant")
)

// Response failures.
var (
	ErrParseFailure = errors.New("malformed response")
	ErrUpstream     = errors.New("upstream request failed")
)

// Transfer failures.
var (
	ErrNotConnected      = errors.New("not connected to transfer server")
	ErrAlreadyExists     = errors.New("file already exists")
	ErrTransferFailed    = errors.New("transfer failed")
	ErrUnsupportedFormat = errors.New("unsupported archive format")
)

// ParseError reports a response body that could not be parsed. Raw holds
// the offending text.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParseFailure }

// UpstreamError reports a non-2xx response or a transport failure.
// StatusCode is 0 when no response was received.
type UpstreamError struct {
	StatusCode int
	URL        string
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }
