// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package xmltree converts an XML response into nested maps, lists, and
// strings. Every response type is parsed into the same shape; callers pick
// the parts they need.
//
// An element with no child elements becomes its whitespace-trimmed text
// ("" when empty). An element with children becomes a map[string]any keyed
// by child tag. A tag seen once maps to its value; on the second occurrence
// the value is promoted to a []any holding every occurrence in document
// order. Elements with children also keep their attributes under "@name"
// keys.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/geodataset/pkg/types"
)

// AttrPrefix marks attribute keys in a parsed element.
const AttrPrefix = "@"

// Parse converts raw XML into the value of its root element. A root without
// child elements yields an empty map. Malformed input returns a
// *types.ParseError carrying raw.
func Parse(raw []byte) (map[string]any, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))

	var root any
	for root == nil {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, parseError(raw, errors.New("no root element"))
		}
		if err != nil {
			return nil, parseError(raw, err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			v, err := parseElement(dec, se)
			if err != nil {
				return nil, parseError(raw, err)
			}
			root = v
		}
	}

	// Only whitespace, comments, and processing instructions may follow.
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError(raw, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return nil, parseError(raw, fmt.Errorf("junk after document element: <%s>", t.Name.Local))
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, parseError(raw, errors.New("junk after document element"))
			}
		}
	}

	m, ok := root.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return m, nil
}

func parseElement(dec *xml.Decoder, start xml.StartElement) (any, error) {
	var text strings.Builder
	var children map[string]any

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("unexpected EOF inside <%s>", start.Name.Local)
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			v, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			if children == nil {
				children = make(map[string]any, len(start.Attr)+1)
				for _, a := range start.Attr {
					children[AttrPrefix+a.Name.Local] = a.Value
				}
			}
			add(children, t.Name.Local, v)
		case xml.CharData:
			if children == nil {
				text.Write(t)
			}
		case xml.EndElement:
			if children != nil {
				return children, nil
			}
			return strings.TrimSpace(text.String()), nil
		}
	}
}

// add stores v under key, promoting to a list on the second occurrence.
func add(m map[string]any, key string, v any) {
	existing, ok := m[key]
	if !ok {
		m[key] = v
		return
	}
	if list, ok := existing.([]any); ok {
		m[key] = append(list, v)
		return
	}
	m[key] = []any{existing, v}
}

func parseError(raw []byte, err error) error {
	return &types.ParseError{Raw: string(raw), Err: err}
}

// List normalizes a parsed value to a list: nil becomes empty, a list is
// returned as is, anything else becomes a one-element list.
func List(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		return t
	default:
		return []any{t}
	}
}

// Text returns v trimmed when it is a leaf string, and "" otherwise.
func Text(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// Texts returns the leaf strings of List(v), skipping non-leaf entries.
func Texts(v any) []string {
	items := List(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
