// Package homepage extracts location hints from station homepages using
// their schema.org JSON-LD blocks.
package homepage

import (
	"bytes"
	"encoding/json"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/e-radio/eradio/internal/foundation/errors"
)

// ExtractJSONLD parses an HTML document and decodes every
// <script type="application/ld+json"> block. Blocks that hold several
// objects on separate lines are split; undecodable blocks are skipped.
func ExtractJSONLD(r io.Reader) ([]any, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").WithSeverity(errors.SeverityError).Build()
	}

	var blocks []any
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" && isJSONLD(n) {
			blocks = append(blocks, decodeBlock(scriptText(n))...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return blocks, nil
}

func isJSONLD(n *html.Node) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, "type") {
			return strings.EqualFold(strings.TrimSpace(a.Val), "application/ld+json")
		}
	}
	return false
}

func scriptText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

// objectStart splits concatenated objects at lines beginning with '{'.
var objectStart = regexp.MustCompile(`\n\s*\{`)

func decodeBlock(text string) []any {
	if text == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return []any{v}
	}

	var out []any
	starts := objectStart.FindAllStringIndex(text, -1)
	prev := 0
	for _, loc := range starts {
		out = appendDecoded(out, text[prev:loc[0]])
		prev = loc[0]
	}
	return appendDecoded(out, text[prev:])
}

func appendDecoded(out []any, chunk string) []any {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return out
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader([]byte(chunk)))
	if err := dec.Decode(&v); err != nil {
		return out
	}
	return append(out, v)
}

// Objects flattens JSON-LD payloads into their node objects, descending into
// arrays and @graph lists.
func Objects(blocks []any) []map[string]any {
	var out []map[string]any
	var visit func(any)
	visit = func(v any) {
		switch t := v.(type) {
		case []any:
			for _, item := range t {
				visit(item)
			}
		case map[string]any:
			if graph, ok := t["@graph"].([]any); ok {
				for _, item := range graph {
					visit(item)
				}
				return
			}
			out = append(out, t)
		}
	}
	for _, b := range blocks {
		visit(b)
	}
	return out
}

var addressKeys = []string{"addressLocality", "addressRegion", "addressArea"}

// PickLocation returns the first location found across objects: a postal
// address field, else the name (or text) of areaServed, contentLocation or
// location.
func PickLocation(objects []map[string]any) string {
	for _, obj := range objects {
		if addr, ok := obj["address"].(map[string]any); ok {
			for _, key := range addressKeys {
				if s := str(addr[key]); s != "" {
					return s
				}
			}
		}
		area := firstPresent(obj, "areaServed", "contentLocation", "location")
		switch a := area.(type) {
		case map[string]any:
			if s := str(a["name"]); s != "" {
				return s
			}
		case string:
			if s := strings.TrimSpace(a); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstPresent(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil && v != "" {
			return v
		}
	}
	return nil
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
