package uri_test

import (
	"testing"

	"github.com/signadot/jsonref/uri"
)

func TestParseAndString(t *testing.T) {
	u, err := uri.Parse("http://Example.com/a/b#/c/d")
	if err != nil {
		t.Fatal(err)
	}
	if u.Absolute != "http://example.com/a/b" {
		t.Errorf("Absolute = %q, want lowercased host", u.Absolute)
	}
	if !u.HasFragment || u.Fragment != "/c/d" {
		t.Errorf("Fragment = %q HasFragment=%v", u.Fragment, u.HasFragment)
	}
	if got := u.String(); got != "http://example.com/a/b#/c/d" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseNoFragmentVsEmptyFragment(t *testing.T) {
	none, _ := uri.Parse("http://x")
	if none.HasFragment {
		t.Error("no '#' should mean HasFragment == false")
	}
	empty, _ := uri.Parse("http://x#")
	if !empty.HasFragment || empty.Fragment != "" {
		t.Error("trailing '#' should mean HasFragment == true, Fragment == \"\"")
	}
}

func TestWithEmptyFragmentStripped(t *testing.T) {
	u, _ := uri.Parse("http://x#")
	stripped := uri.WithEmptyFragmentStripped(u)
	if stripped.HasFragment {
		t.Error("expected the empty fragment to be stripped")
	}
	if stripped.Absolute != u.Absolute {
		t.Error("stripping should not change Absolute")
	}

	nonEmpty, _ := uri.Parse("http://x#/a")
	same := uri.WithEmptyFragmentStripped(nonEmpty)
	if !same.HasFragment || same.Fragment != "/a" {
		t.Error("a non-empty fragment must be left alone")
	}
}

func TestJoinRelative(t *testing.T) {
	base, _ := uri.Parse("http://x/a/b")
	joined, err := uri.Join(base, "c")
	if err != nil {
		t.Fatal(err)
	}
	if joined.Absolute != "http://x/a/c" {
		t.Errorf("Join = %q, want http://x/a/c", joined.Absolute)
	}
}

func TestJoinAbsolute(t *testing.T) {
	base, _ := uri.Parse("http://x/a/b")
	joined, err := uri.Join(base, "urn:other")
	if err != nil {
		t.Fatal(err)
	}
	if joined.Absolute != "urn:other" {
		t.Errorf("Join = %q, want urn:other", joined.Absolute)
	}
}

func TestClassifyFragment(t *testing.T) {
	cases := []struct {
		uri  string
		want uri.FragmentKind
	}{
		{"http://x", uri.FragmentNone},
		{"http://x#", uri.FragmentEmpty},
		{"http://x#/a/b", uri.FragmentJSONPointer},
		{"http://x#name", uri.FragmentPlainName},
		{"http://x#foo/bar", uri.FragmentInvalid},
	}
	for _, c := range cases {
		u, err := uri.Parse(c.uri)
		if err != nil {
			t.Fatalf("parsing %q: %v", c.uri, err)
		}
		if got := uri.ClassifyFragment(u); got != c.want {
			t.Errorf("ClassifyFragment(%q) = %v, want %v", c.uri, got, c.want)
		}
	}
}

func TestInvalidFragmentSuggestion(t *testing.T) {
	if got := uri.InvalidFragmentSuggestion("foo/bar"); got != "/foo/bar" {
		t.Errorf("InvalidFragmentSuggestion = %q, want /foo/bar", got)
	}
}
