// Package uri implements the URI parsing, joining, and fragment
// classification rules spec.md §4.1 requires: RFC 3986 reference
// resolution plus the "strip empty fragment" normalization that lets
// "http://x" and "http://x#" name the same registry entry.
package uri

import (
	"net/url"
	"strings"
)

// Uri is an absolute-part/fragment pair. The zero Uri is the empty URI
// ("" with no fragment), used as the base URI of an anonymous root
// resource.
type Uri struct {
	// Absolute is everything before "#", with scheme and host lowercased.
	// Percent-encoding is not canonicalized: escapes in the path are kept
	// as written (e.g. "%7e" stays "%7e").
	Absolute string
	// Fragment is the text after "#", or "" if there was no "#" at all.
	// HasFragment distinguishes "no fragment" from "empty fragment"
	// (spec.md §3: these are the same case at parse time once collapsed,
	// but a caller needs the distinction before that collapse happens).
	Fragment    string
	HasFragment bool
}

// Parse performs a syntactic parse only; it never fetches anything.
func Parse(s string) (Uri, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Uri{}, err
	}
	frag := u.EscapedFragment()
	hasFragment := strings.Contains(s, "#")
	u.Fragment = ""
	u.RawFragment = ""
	return Uri{
		Absolute:    normalize(u).String(),
		Fragment:    frag,
		HasFragment: hasFragment,
	}, nil
}

// normalize lowercases scheme and host, matching RFC 3986 §6.2.2.1's
// case-normalization rule. Percent-encoding is left as url.URL re-renders
// it, which keeps a valid escaped path exactly as written: hex case is not
// changed and escaped unreserved characters are not decoded.
func normalize(u *url.URL) *url.URL {
	n := *u
	n.Scheme = strings.ToLower(n.Scheme)
	if n.Host != "" {
		n.Host = strings.ToLower(n.Host)
	}
	return &n
}

// String renders the URI back to text, including its fragment if present
// (even if empty, so String() round-trips HasFragment).
func (u Uri) String() string {
	if !u.HasFragment {
		return u.Absolute
	}
	return u.Absolute + "#" + u.Fragment
}

// Join resolves ref against base per RFC 3986 reference resolution. A
// relative reference with an empty fragment ("foo#" or just "#") preserves
// base's path/authority and yields an empty-fragment result, matching
// spec.md §4.1.
func Join(base Uri, ref string) (Uri, error) {
	baseURL, err := url.Parse(base.String())
	if err != nil {
		return Uri{}, err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return Uri{}, err
	}
	resolved := baseURL.ResolveReference(refURL)

	hasFragment := strings.Contains(ref, "#")
	frag := resolved.EscapedFragment()
	resolved.Fragment = ""
	resolved.RawFragment = ""

	return Uri{
		Absolute:    normalize(resolved).String(),
		Fragment:    frag,
		HasFragment: hasFragment,
	}, nil
}

// WithEmptyFragmentStripped removes a present-but-empty fragment, so that
// registering "http://x" and looking up "http://x#" hit the same map key.
func WithEmptyFragmentStripped(u Uri) Uri {
	if u.HasFragment && u.Fragment == "" {
		return Uri{Absolute: u.Absolute}
	}
	return u
}

// FragmentKind classifies a URI's fragment per spec.md §4.1.
type FragmentKind int

const (
	// FragmentNone means the URI had no "#" at all.
	FragmentNone FragmentKind = iota
	// FragmentEmpty means the URI ended in "#" with nothing after it.
	FragmentEmpty
	// FragmentJSONPointer means the fragment is an RFC 6901 pointer
	// starting with "/". An empty fragment is FragmentEmpty instead.
	FragmentJSONPointer
	// FragmentPlainName means the fragment is a non-empty anchor name
	// containing no "/".
	FragmentPlainName
	// FragmentInvalid means the fragment is non-empty, does not start
	// with "/", but contains "/" somewhere (e.g. "#foo/bar").
	FragmentInvalid
)

func ClassifyFragment(u Uri) FragmentKind {
	if !u.HasFragment {
		return FragmentNone
	}
	if u.Fragment == "" {
		return FragmentEmpty
	}
	if strings.HasPrefix(u.Fragment, "/") {
		return FragmentJSONPointer
	}
	if strings.Contains(u.Fragment, "/") {
		return FragmentInvalid
	}
	return FragmentPlainName
}

// InvalidFragmentSuggestion returns the "did you mean `#/…`?" hint spec.md
// §4.1 requires when reporting an InvalidAnchor error for a fragment that
// does not start with "/" but contains one (e.g. "foo/bar" -> "/foo/bar").
// It is only meaningful when ClassifyFragment(u) == FragmentInvalid.
func InvalidFragmentSuggestion(frag string) string {
	return "/" + frag
}
