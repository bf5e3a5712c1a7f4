package controller

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"shoptogether/pkg/serrors"
)

const (
	formMaxDepth    = 5
	formMaxIndex    = 20
	formMaxParams   = 1000
	formAppendIndex = ""
)

// ParseForm decodes an url-encoded body with bracket notation:
// "a[b]=1" gives {"a":{"b":"1"}}, "c[]=2&c[]=3" gives {"c":["2","3"]} and
// "d[1]=x&d[0]=y" gives {"d":["y","x"]}. Repeated plain keys collect into an
// array. Only the first 1000 parameters are read.
func ParseForm(body string) (map[string]any, error) {
	root := map[string]any{}

	pairs := strings.Split(body, "&")
	if len(pairs) > formMaxParams {
		pairs = pairs[:formMaxParams]
	}

	for _, pair := range pairs {
		if pair == "" {
			continue
		}

		rawKey, rawVal, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, serrors.Wrap(serrors.ErrBadRequest, err, "malformed urlencoded body")
		}
		val, err := url.QueryUnescape(rawVal)
		if err != nil {
			return nil, serrors.Wrap(serrors.ErrBadRequest, err, "malformed urlencoded body")
		}
		if key == "" {
			continue
		}

		assign(root, splitFormKey(key), val)
	}

	compact(root)

	return root, nil
}

// splitFormKey turns "a[b][]" into ["a", "b", ""]. Segments past the depth limit
// are kept as one literal segment.
func splitFormKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return []string{key}
	}

	segments := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		if len(segments) > formMaxDepth {
			segments = append(segments, rest)
			rest = ""

			break
		}
		segments = append(segments, rest[1:end])
		rest = rest[end+1:]
	}
	if rest != "" {
		segments[len(segments)-1] += rest
	}

	return segments
}

// assign stores val under path. Arrays are built as maps with numeric keys and
// turned into slices by compact.
func assign(node map[string]any, path []string, val string) {
	head := path[0]
	if head == formAppendIndex {
		head = strconv.Itoa(len(node))
	}

	if len(path) == 1 {
		switch cur := node[head].(type) {
		case nil:
			node[head] = val
		case string:
			node[head] = map[string]any{"0": cur, "1": val}
		case map[string]any:
			if isIndexed(cur) {
				cur[strconv.Itoa(len(cur))] = val
			}
		}

		return
	}

	child, ok := node[head].(map[string]any)
	if !ok {
		child = map[string]any{}
		if s, isStr := node[head].(string); isStr {
			child["0"] = s
		}
		node[head] = child
	}

	assign(child, path[1:], val)
}

func isIndexed(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if _, ok := arrayIndex(k); !ok {
			return false
		}
	}

	return true
}

func arrayIndex(k string) (int, bool) {
	i, err := strconv.Atoi(k)
	if err != nil || i < 0 || i > formMaxIndex || strconv.Itoa(i) != k {
		return 0, false
	}

	return i, true
}

// compact replaces every map whose keys are all small indexes by a slice ordered
// by index.
func compact(node map[string]any) {
	for k, v := range node {
		node[k] = compactValue(v)
	}
}

func compactValue(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}

	compact(m)
	if !isIndexed(m) {
		return m
	}

	keys := make([]int, 0, len(m))
	for k := range m {
		i, _ := arrayIndex(k)
		keys = append(keys, i)
	}
	sort.Ints(keys)

	out := make([]any, 0, len(keys))
	for _, i := range keys {
		out = append(out, m[strconv.Itoa(i)])
	}

	return out
}
