// Package registry implements spec.md §4.5: an immutable URI→Resource
// map, a per-resource anchor index, and a set of URIs awaiting crawl
// (discovery of their child resources' IDs and anchors).
//
// Every exported method here returns a new Registry and never mutates the
// receiver (spec.md's Invariant 1): internally this is done by
// copy-on-write over plain Go maps (see DESIGN.md for why no fetched
// persistent-map library is used), not in-place map writes.
package registry

import (
	"maps"

	"github.com/signadot/jsonref/internal/trace"
	"github.com/signadot/jsonref/jsonvalue"
	"github.com/signadot/jsonref/referr"
	"github.com/signadot/jsonref/resource"
	"github.com/signadot/jsonref/uri"
)

// Retrieve is the injection point of spec.md §4.7: a pure function from a
// URI to the Resource it names. The registry treats it as a read-through
// cache population step: on a Get miss, invoke it once, memoize the
// result in a derived registry, and return.
type Retrieve func(u string) (resource.Resource, error)

type entry struct {
	resource resource.Resource
	anchors  map[string]resource.Anchor
}

// Registry is an immutable value; the zero Registry is empty and has no
// retrieve hook.
type Registry struct {
	contents  map[string]entry
	uncrawled map[string]struct{}
	retrieve  Retrieve
}

// New returns an empty registry.
func New() Registry {
	return Registry{}
}

// WithRetrieve returns a derived registry that will call hook on a Get
// miss. It replaces any previously configured hook.
func (r Registry) WithRetrieve(hook Retrieve) Registry {
	r2 := r
	r2.retrieve = hook
	return r2
}

// Len reports how many URIs are currently registered.
func (r Registry) Len() int { return len(r.contents) }

// URIs returns every registered URI, in no particular order (used for
// iteration, per spec.md §4.5's "length/iteration" surface).
func (r Registry) URIs() []string {
	out := make([]string, 0, len(r.contents))
	for k := range r.contents {
		out = append(out, k)
	}
	return out
}

func normalizeKey(rawURI string) (string, error) {
	u, err := uri.Parse(rawURI)
	if err != nil {
		return "", err
	}
	return uri.WithEmptyFragmentStripped(u).Absolute, nil
}

// ResourcePair is one (uri, Resource) entry for WithResources.
type ResourcePair struct {
	URI      string
	Resource resource.Resource
}

// WithResource registers a single resource under uri (normalized: empty
// fragment stripped). It is an error for uri to already map to a
// different resource.
func (r Registry) WithResource(rawURI string, res resource.Resource) (Registry, error) {
	return r.WithResources([]ResourcePair{{URI: rawURI, Resource: res}})
}

// WithResources registers several resources at once (spec.md §4.5
// with_resources). Every newly added URI is marked uncrawled;
// re-registering the identical resource under a URI it already holds is a
// no-op, and a different resource under such a URI is an error.
func (r Registry) WithResources(pairs []ResourcePair) (Registry, error) {
	contents := maps.Clone(r.contents)
	if contents == nil {
		contents = map[string]entry{}
	}
	uncrawled := maps.Clone(r.uncrawled)
	if uncrawled == nil {
		uncrawled = map[string]struct{}{}
	}
	for _, p := range pairs {
		key, err := normalizeKey(p.URI)
		if err != nil {
			return Registry{}, err
		}
		existing, had := contents[key]
		if had && !existing.resource.Contents.Equal(p.Resource.Contents) {
			return Registry{}, &collisionError{URI: key}
		}
		if had {
			continue
		}
		contents[key] = entry{resource: p.Resource}
		uncrawled[key] = struct{}{}
	}
	return Registry{contents: contents, uncrawled: uncrawled, retrieve: r.retrieve}, nil
}

// ContentsPair is one (uri, parsed JSON) entry for WithContents.
type ContentsPair struct {
	URI      string
	Contents jsonvalue.Value
}

// WithContents infers each pair's dialect from its own "$schema" member
// (spec.md §4.4's FromContents) before registering it.
func (r Registry) WithContents(pairs []ContentsPair) (Registry, error) {
	rps := make([]ResourcePair, 0, len(pairs))
	for _, p := range pairs {
		res, ok := resource.FromContents(p.Contents)
		if !ok {
			return Registry{}, &referr.CannotDetermineSpecification{Contents: p.Contents}
		}
		rps = append(rps, ResourcePair{URI: p.URI, Resource: res})
	}
	return r.WithResources(rps)
}

// WithResourcesByOwnID registers each resource under the URI its own
// id() provides (spec.md §4.5's "convenience operator"). A resource
// without an id() fails the whole call with NoInternalID.
func (r Registry) WithResourcesByOwnID(resources []resource.Resource) (Registry, error) {
	pairs := make([]ResourcePair, 0, len(resources))
	for _, res := range resources {
		id, ok := res.ID()
		if !ok {
			return Registry{}, &referr.NoInternalID{Resource: res.Contents}
		}
		pairs = append(pairs, ResourcePair{URI: id, Resource: res})
	}
	return r.WithResources(pairs)
}

// Combine merges this registry with others; a URI present in more than
// one must name the identical resource everywhere, or Combine fails
// (spec.md §4.5). Uncrawled sets and retrieve hooks are unioned too; if
// more than one registry has a hook configured, the receiver's hook (or
// the first non-nil one found among others) wins.
func (r Registry) Combine(others ...Registry) (Registry, error) {
	contents := maps.Clone(r.contents)
	if contents == nil {
		contents = map[string]entry{}
	}
	uncrawled := maps.Clone(r.uncrawled)
	if uncrawled == nil {
		uncrawled = map[string]struct{}{}
	}
	hook := r.retrieve
	for _, other := range others {
		for key, e := range other.contents {
			if existing, ok := contents[key]; ok {
				if !existing.resource.Contents.Equal(e.resource.Contents) {
					return Registry{}, &collisionError{URI: key}
				}
				continue
			}
			contents[key] = e
		}
		for key := range other.uncrawled {
			uncrawled[key] = struct{}{}
		}
		if hook == nil {
			hook = other.retrieve
		}
	}
	return Registry{contents: contents, uncrawled: uncrawled, retrieve: hook}, nil
}

type collisionError struct {
	URI string
}

func (e *collisionError) Error() string {
	return "registry: conflicting resources registered under " + e.URI
}

// Contents is a shortcut for Get(uri) followed by reading its contents;
// it never returns a bare key-missing error, only NoSuchResource.
func (r Registry) Contents(rawURI string) (jsonvalue.Value, error) {
	res, _, err := r.Get(rawURI)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return res.Contents, nil
}

// Get looks up a resource by absolute URI (any fragment is ignored). If
// absent and a retrieve hook is configured, the hook is invoked and its
// result is registered into the returned Registry; repeated Get calls for
// the same miss only invoke the hook once (spec.md Invariant 9), as long
// as the caller threads the returned Registry through. The returned
// Registry must be used for any subsequent lookups for memoization to
// take effect.
func (r Registry) Get(rawURI string) (resource.Resource, Registry, error) {
	key, err := normalizeKey(rawURI)
	if err != nil {
		return resource.Resource{}, r, err
	}
	if e, ok := r.contents[key]; ok {
		return e.resource, r, nil
	}
	if r.retrieve == nil {
		return resource.Resource{}, r, &referr.NoSuchResource{URI: key}
	}
	if trace.Retrieve() {
		trace.Logf("registry: retrieve miss for %s\n", key)
	}
	res, err := r.retrieve(key)
	if err != nil {
		return resource.Resource{}, r, &referr.NoSuchResource{URI: key, Cause: &referr.Unretrievable{URI: key, Cause: err}}
	}
	next, regErr := r.WithResource(key, res)
	if regErr != nil {
		return resource.Resource{}, r, regErr
	}
	return res, next, nil
}

// Anchor looks up a named anchor within the resource at uri, crawling it
// first if it hasn't been crawled yet.
func (r Registry) Anchor(rawURI, name string) (resource.Anchor, Registry, error) {
	key, err := normalizeKey(rawURI)
	if err != nil {
		return resource.Anchor{}, r, err
	}
	reg := r
	if _, isUncrawled := reg.uncrawled[key]; isUncrawled {
		crawled, err := reg.Crawl()
		if err != nil {
			return resource.Anchor{}, r, err
		}
		reg = crawled
	}
	e, ok := reg.contents[key]
	if !ok {
		return resource.Anchor{}, reg, &referr.NoSuchResource{URI: key}
	}
	a, ok := e.anchors[name]
	if !ok {
		return resource.Anchor{}, reg, &referr.NoSuchAnchor{URI: key, Name: name}
	}
	return a, reg, nil
}
