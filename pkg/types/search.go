// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures of the geodataset client:
// records and their variants, search and link results, selectors, download
// manifest entries, configuration, and the error taxonomy.
package types

// SearchResult is the outcome of an esearch call.
type SearchResult struct {
	// UIDs lists the matching record identifiers in server order.
	UIDs []string `json:"uids" yaml:"uids"`

	// Count is the total number of matches; it may exceed len(UIDs).
	Count int `json:"count" yaml:"count"`

	// QueryKey and WebEnv form the pagination handle. They are set only when
	// the search was issued in history mode.
	QueryKey string `json:"query_key,omitempty" yaml:"query_key,omitempty"`
	WebEnv   string `json:"web_env,omitempty" yaml:"web_env,omitempty"`

	// QueryTranslation is the server's expansion of the search term.
	QueryTranslation string `json:"query_translation,omitempty" yaml:"query_translation,omitempty"`

	// Raw is the unmodified response body.
	Raw string `json:"-" yaml:"-"`
}

// Selector picks the records an esummary, efetch, or elink call operates on:
// either an explicit UID list or a pagination handle from an earlier search.
type Selector struct {
	UIDs     []string
	QueryKey string
	WebEnv   string
}

// ByUIDs returns a Selector over an explicit UID list.
func ByUIDs(uids ...string) Selector {
	return Selector{UIDs: uids}
}

// ByHistory returns a Selector over a pagination handle.
func ByHistory(queryKey, webEnv string) Selector {
	return Selector{QueryKey: queryKey, WebEnv: webEnv}
}

// HasHistory reports whether both halves of the pagination handle are set.
func (s Selector) HasHistory() bool {
	return s.QueryKey != "" && s.WebEnv != ""
}

// Validate returns ErrMissingSelector unless exactly one of the UID list
// and the pagination handle is supplied.
func (s Selector) Validate() error {
	hasUIDs := len(s.UIDs) > 0
	if hasUIDs == s.HasHistory() {
		return ErrMissingSelector
	}
	return nil
}

// LinkSet holds the targets linked from one source UID.
type LinkSet struct {
	SourceUID  string   `json:"source_uid" yaml:"source_uid"`
	TargetUIDs []string `json:"target_uids" yaml:"target_uids"`
}

// LinkBatch holds the targets of several sources merged into one set, as
// the server answers when the sources were selected by pagination handle.
// The targets cannot be attributed to individual sources.
type LinkBatch struct {
	SourceUIDs []string `json:"source_uids" yaml:"source_uids"`
	TargetUIDs []string `json:"target_uids" yaml:"target_uids"`
}

// LinkResult is the outcome of an elink call. Sets holds one LinkSet per
// source UID: requested UIDs first, in request order, then any other
// sources in response order. Batches holds merged multi-source sets.
type LinkResult struct {
	Sets    []LinkSet   `json:"sets" yaml:"sets"`
	Batches []LinkBatch `json:"batches,omitempty" yaml:"batches,omitempty"`
}

// Targets returns the linked UIDs for source. The second value is false when
// source did not appear in the response.
func (r LinkResult) Targets(source string) ([]string, bool) {
	for _, s := range r.Sets {
		if s.SourceUID == source {
			return s.TargetUIDs, true
		}
	}
	return nil, false
}
