// Package textretriever implements spec.md §4.7's "convenience wrapper"
// retrieve hook: something that fetches raw bytes for a URI, parses them
// into a jsonvalue.Value, and wraps the result as a resource.Resource —
// the shape registry.Retrieve needs. It is grounded on
// dirbuild.OpenDir's read-bytes-then-parse-then-wrap sequence, adapted
// from "read one known build file" to "read whatever URI is asked for".
package textretriever

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/signadot/jsonref/jsonvalue"
	"github.com/signadot/jsonref/resource"
)

// Fetch returns the raw bytes named by uri (an absolute URI, fragment
// already stripped by the registry before the hook is invoked).
type Fetch func(uri string) ([]byte, error)

// Parse decodes raw bytes into a jsonvalue.Value.
type Parse func(data []byte) (jsonvalue.Value, error)

// Retriever adapts a Fetch+Parse pair into a registry.Retrieve hook,
// memoizing successfully parsed resources by URI so a given Retriever can
// be shared across several independently-derived registries without
// re-reading/re-parsing the same URI twice (spec.md §4.7: "memoization
// ... is layered on top of, not inside, the pure-function contract").
type Retriever struct {
	fetch Fetch
	parse Parse

	mu    sync.Mutex
	cache map[string]resource.Resource
}

// New builds a Retriever. Use FileFetch (or a caller-supplied Fetch) to
// decide where bytes come from, and JSONParse
// or YAMLParse (or a caller-supplied Parse) to decide how they are read.
func New(fetch Fetch, parse Parse) *Retriever {
	return &Retriever{fetch: fetch, parse: parse, cache: map[string]resource.Resource{}}
}

// Retrieve has the shape registry.Retrieve requires: func(string)
// (resource.Resource, error). Pass t.Retrieve directly to
// registry.Registry.WithRetrieve.
func (t *Retriever) Retrieve(uri string) (resource.Resource, error) {
	t.mu.Lock()
	if res, ok := t.cache[uri]; ok {
		t.mu.Unlock()
		return res, nil
	}
	t.mu.Unlock()

	data, err := t.fetch(uri)
	if err != nil {
		return resource.Resource{}, fmt.Errorf("textretriever: fetching %s: %w", uri, err)
	}
	contents, err := t.parse(data)
	if err != nil {
		return resource.Resource{}, fmt.Errorf("textretriever: parsing %s: %w", uri, err)
	}
	res, ok := resource.FromContents(contents)
	if !ok {
		return resource.Resource{}, fmt.Errorf("textretriever: %s: cannot determine specification", uri)
	}

	t.mu.Lock()
	t.cache[uri] = res
	t.mu.Unlock()
	return res, nil
}

// JSONParse is a Parse that decodes plain JSON text, preserving object key
// order (jsonvalue.Decode).
func JSONParse(data []byte) (jsonvalue.Value, error) {
	return jsonvalue.Decode(bytes.NewReader(data))
}

// YAMLParse is a Parse that decodes YAML text via goccy/go-yaml into a
// generic value and re-renders it through encoding/json so it lands in
// the same jsonvalue.Decode path as JSONParse. Object key order is not
// preserved for YAML-sourced documents (yaml.Unmarshal into `any` uses a
// plain Go map): acceptable here because $id/$anchor/$schema lookups
// never depend on member order, only JSON-sourced resources need the
// ordering jsonvalue.Decode otherwise guarantees.
func YAMLParse(data []byte) (jsonvalue.Value, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return jsonvalue.Value{}, err
	}
	encoded, err := json.Marshal(generic)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.Decode(bytes.NewReader(encoded))
}

// FileFetch returns a Fetch that reads uri as a path relative to root,
// stripping any "file://" scheme first — grounded on dirbuild.OpenDir's
// os.ReadFile calls.
func FileFetch(root string) Fetch {
	return func(uri string) ([]byte, error) {
		p := strings.TrimPrefix(uri, "file://")
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}
