// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pdiddy/geodataset/internal/xmltree"
	"github.com/pdiddy/geodataset/pkg/types"
)

// Link finds the records in dbTo linked from the selected records in
// dbFrom. UIDs are sent as separate id parameters so the server answers
// with one LinkSet per source. Every requested UID gets an entry, with an
// empty list when it has no links. A set naming several sources, as
// returned for a pagination handle, is kept whole in Batches.
func (c *Client) Link(ctx context.Context, dbFrom, dbTo string, sel types.Selector) (*types.LinkResult, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("dbfrom", dbFrom)
	params.Set("db", dbTo)
	addSelector(params, sel, true)

	body, err := c.dispatcher.Get(ctx, elinkEndpoint, params)
	if err != nil {
		return nil, fmt.Errorf("link %s->%s: %w", dbFrom, dbTo, err)
	}
	doc, err := parse(body)
	if err != nil {
		return nil, fmt.Errorf("link %s->%s: %w", dbFrom, dbTo, err)
	}

	result := &types.LinkResult{Sets: make([]types.LinkSet, 0, len(sel.UIDs))}
	index := make(map[string]int, len(sel.UIDs))
	entry := func(uid string) *types.LinkSet {
		i, ok := index[uid]
		if !ok {
			i = len(result.Sets)
			index[uid] = i
			result.Sets = append(result.Sets, types.LinkSet{SourceUID: uid, TargetUIDs: []string{}})
		}
		return &result.Sets[i]
	}
	for _, uid := range sel.UIDs {
		entry(uid)
	}

	for _, node := range xmltree.List(doc.Search("LinkSet").Data()) {
		set, ok := node.(map[string]any)
		if !ok {
			continue
		}

		var sources []string
		if idList, ok := set["IdList"].(map[string]any); ok {
			sources = xmltree.Texts(idList["Id"])
		} else if id := xmltree.Text(set["Id"]); id != "" {
			sources = []string{id}
		}
		targets := linkTargets(set)

		switch {
		case len(sources) == 1 && sources[0] != "":
			e := entry(sources[0])
			e.TargetUIDs = append(e.TargetUIDs, targets...)
		case len(sources) > 1:
			c.logger.Debug("link set covers several sources", "sources", len(sources), "targets", len(targets))
			result.Batches = append(result.Batches, types.LinkBatch{SourceUIDs: sources, TargetUIDs: targets})
		}
	}
	return result, nil
}

// linkTargets collects Link/Id values from every LinkSetDb of a set, or
// from Link entries directly under the set.
func linkTargets(set map[string]any) []string {
	containers := []any{set}
	if dbs, ok := set["LinkSetDb"]; ok {
		containers = xmltree.List(dbs)
	}

	targets := []string{}
	for _, c := range containers {
		cm, ok := c.(map[string]any)
		if !ok {
			continue
		}
		for _, link := range xmltree.List(cm["Link"]) {
			lm, ok := link.(map[string]any)
			if !ok {
				continue
			}
			if id := xmltree.Text(lm["Id"]); id != "" {
				targets = append(targets, id)
			}
		}
	}
	return targets
}
