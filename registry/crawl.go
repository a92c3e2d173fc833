package registry

import (
	"maps"

	"github.com/signadot/jsonref/internal/trace"
	"github.com/signadot/jsonref/resource"
	"github.com/signadot/jsonref/uri"
)

// frame is one resource still to be walked, together with every URI it is
// currently known to be reachable under.
//
// bases accumulates outermost-first as the walk descends: a subresource
// with no id() of its own inherits its parent's bases unchanged, while one
// that does declare an id() adds its rebased canonical URI on top — the
// same accumulate-don't-replace discipline resolver.pushed uses for the
// dynamic scope, so a deeply nested anchor stays reachable from every URI
// an ancestor was ever addressed by, including the very first registration
// URI (spec.md §4.5: anchors are indexed "under both the URI under which
// the resource was registered and its canonical URI").
type frame struct {
	bases []string
	res   resource.Resource
	// root is true only for the frame seeding a freshly uncrawled
	// registration URI. Only a root frame, or a frame whose resource just
	// introduced a new base via its own id(), is allowed to (re)write that
	// base's document contents — a descendant merely passing an inherited
	// base through must never clobber the ancestor document already
	// stored there.
	root bool
}

// Crawl discovers and indexes every id() and anchor() reachable from the
// registry's uncrawled URIs (spec.md §4.5). It is idempotent: crawling an
// already-crawled registry returns an equal registry untouched, since
// uncrawled is empty and the stack never gets seeded.
func (r Registry) Crawl() (Registry, error) {
	if len(r.uncrawled) == 0 {
		return r, nil
	}
	contents := maps.Clone(r.contents)
	uncrawled := maps.Clone(r.uncrawled)

	var stack []frame
	for u := range uncrawled {
		stack = append(stack, frame{bases: []string{u}, res: contents[u].resource, root: true})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		bases := f.bases
		introducedBase := ""
		introduced := false
		if id, ok := f.res.ID(); ok {
			joined, err := joinURI(bases[len(bases)-1], id)
			if err != nil {
				return Registry{}, err
			}
			if joined != bases[len(bases)-1] {
				bases = append(append([]string{}, bases...), joined)
				introducedBase, introduced = joined, true
			}
		}

		anchors := map[string]resource.Anchor{}
		for a := range f.res.Anchors() {
			anchors[a.Name] = a
		}

		for _, u := range bases {
			e := contents[u]
			if f.root || (introduced && u == introducedBase) {
				e.resource = f.res
			}
			if len(e.anchors) == 0 {
				e.anchors = maps.Clone(anchors)
			} else if len(anchors) > 0 {
				merged := maps.Clone(e.anchors)
				maps.Copy(merged, anchors)
				e.anchors = merged
			}
			contents[u] = e
			delete(uncrawled, u)

			if trace.Crawl() {
				trace.Logf("registry: crawled %s (%d anchors)\n", u, len(anchors))
			}
		}

		for child := range f.res.Subresources() {
			stack = append(stack, frame{bases: bases, res: child})
		}
	}

	return Registry{contents: contents, uncrawled: uncrawled, retrieve: r.retrieve}, nil
}

func joinURI(base, ref string) (string, error) {
	baseURI, err := uri.Parse(base)
	if err != nil {
		return "", err
	}
	joined, err := uri.Join(baseURI, ref)
	if err != nil {
		return "", err
	}
	return uri.WithEmptyFragmentStripped(joined).Absolute, nil
}
