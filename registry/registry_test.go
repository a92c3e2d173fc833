package registry_test

import (
	"errors"
	"testing"

	"github.com/signadot/jsonref/jsonvalue"
	"github.com/signadot/jsonref/referr"
	"github.com/signadot/jsonref/registry"
	"github.com/signadot/jsonref/resource"
	"github.com/signadot/jsonref/spec"
)

func mustDecode(t *testing.T, s string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func mustResource(t *testing.T, s string) resource.Resource {
	t.Helper()
	r, ok := resource.FromContents(mustDecode(t, s))
	if !ok {
		t.Fatal("FromContents failed to detect dialect")
	}
	return r
}

func TestWithResourceThenGet(t *testing.T) {
	reg := registry.New()
	res := mustResource(t, `{"$schema":"`+spec.Draft202012URI+`","$id":"http://x/a.json"}`)
	reg, err := reg.WithResource("http://x/a.json", res)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := reg.Get("http://x/a.json")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Contents.Equal(res.Contents) {
		t.Error("Get returned different contents than registered")
	}
}

func TestGetMissingWithNoHookFails(t *testing.T) {
	reg := registry.New()
	_, _, err := reg.Get("http://x/nope.json")
	var notFound *referr.NoSuchResource
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *referr.NoSuchResource, got %v (%T)", err, err)
	}
}

func TestWithResourcesCollisionFails(t *testing.T) {
	reg := registry.New()
	a := mustResource(t, `{"$schema":"`+spec.Draft202012URI+`","$id":"http://x/a.json"}`)
	b := mustResource(t, `{"$schema":"`+spec.Draft202012URI+`","$id":"http://x/a.json","title":"different"}`)
	reg, err := reg.WithResource("http://x/a.json", a)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.WithResource("http://x/a.json", b); err == nil {
		t.Error("expected a collision error when re-registering a different resource under the same URI")
	}
}

func TestWithResourceIdempotentForIdenticalResource(t *testing.T) {
	reg := registry.New()
	a := mustResource(t, `{"$schema":"`+spec.Draft202012URI+`","$id":"http://x/a.json"}`)
	reg, err := reg.WithResource("http://x/a.json", a)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.WithResource("http://x/a.json", a); err != nil {
		t.Error("re-registering the identical resource under the same URI must be a no-op, not an error")
	}
}

func TestWithResourcesByOwnIDRequiresID(t *testing.T) {
	reg := registry.New()
	noID := mustResource(t, `{"$schema":"`+spec.Draft202012URI+`"}`)
	if _, err := reg.WithResourcesByOwnID([]resource.Resource{noID}); err == nil {
		t.Error("expected NoInternalID when a resource has no id()")
	}
	var target *referr.NoInternalID
	_, err := reg.WithResourcesByOwnID([]resource.Resource{noID})
	if !errors.As(err, &target) {
		t.Errorf("expected *referr.NoInternalID, got %T", err)
	}

	withID := mustResource(t, `{"$schema":"`+spec.Draft202012URI+`","$id":"http://x/b.json"}`)
	reg2, err := reg.WithResourcesByOwnID([]resource.Resource{withID})
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := reg2.Get("http://x/b.json")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Contents.Equal(withID.Contents) {
		t.Error("resource was not registered under its own id()")
	}
}

func TestCombineMergesDistinctRegistries(t *testing.T) {
	a := mustResource(t, `{"$schema":"`+spec.Draft202012URI+`","$id":"http://x/a.json"}`)
	b := mustResource(t, `{"$schema":"`+spec.Draft202012URI+`","$id":"http://x/b.json"}`)
	r1, err := registry.New().WithResource("http://x/a.json", a)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := registry.New().WithResource("http://x/b.json", b)
	if err != nil {
		t.Fatal(err)
	}
	combined, err := r1.Combine(r2)
	if err != nil {
		t.Fatal(err)
	}
	if combined.Len() != 2 {
		t.Errorf("Len() = %d, want 2", combined.Len())
	}
}

func TestCombineConflictingResourceFails(t *testing.T) {
	a := mustResource(t, `{"$schema":"`+spec.Draft202012URI+`","$id":"http://x/a.json"}`)
	aDiff := mustResource(t, `{"$schema":"`+spec.Draft202012URI+`","$id":"http://x/a.json","title":"x"}`)
	r1, _ := registry.New().WithResource("http://x/a.json", a)
	r2, _ := registry.New().WithResource("http://x/a.json", aDiff)
	if _, err := r1.Combine(r2); err == nil {
		t.Error("expected Combine to fail on conflicting resources under the same URI")
	}
}

func TestGetInvokesRetrieveHookOnceAndMemoizes(t *testing.T) {
	calls := 0
	hook := func(u string) (resource.Resource, error) {
		calls++
		contents, err := jsonvalue.DecodeString(`{"$schema":"` + spec.Draft202012URI + `","$id":"` + u + `"}`)
		if err != nil {
			return resource.Resource{}, err
		}
		res, ok := resource.FromContents(contents)
		if !ok {
			return resource.Resource{}, errors.New("could not detect dialect")
		}
		return res, nil
	}
	reg := registry.New().WithRetrieve(hook)
	res, reg2, err := reg.Get("http://x/fetched.json")
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("hook called %d times, want 1", calls)
	}
	id, ok := res.ID()
	if !ok || id != "http://x/fetched.json" {
		t.Errorf("fetched resource id = (%q, %v)", id, ok)
	}
	if _, _, err := reg2.Get("http://x/fetched.json"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("hook called %d times after threading the derived registry, want 1 (memoized)", calls)
	}
	if _, _, err := reg.Get("http://x/fetched.json"); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("re-using the original (unthreaded) registry should invoke the hook again, calls = %d, want 2", calls)
	}
}

func TestGetRetrieveFailurePropagatesAsCause(t *testing.T) {
	wantErr := errors.New("network down")
	hook := func(u string) (resource.Resource, error) { return resource.Resource{}, wantErr }
	reg := registry.New().WithRetrieve(hook)
	_, _, err := reg.Get("http://x/a.json")
	var notFound *referr.NoSuchResource
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *referr.NoSuchResource, got %T", err)
	}
	if !errors.Is(err, wantErr) {
		t.Error("expected the hook's error to be reachable via errors.Is")
	}
}

func TestCrawlIndexesSubresourceAnchorsUnderRebasedID(t *testing.T) {
	root := mustResource(t, `{
		"$schema":"`+spec.Draft202012URI+`",
		"$id":"http://x/root.json",
		"$defs": {
			"c": {"$id":"http://x/child.json","$anchor":"a"}
		}
	}`)
	reg, err := registry.New().WithResource("http://x/root.json", root)
	if err != nil {
		t.Fatal(err)
	}
	reg, err = reg.Crawl()
	if err != nil {
		t.Fatal(err)
	}
	childContents, err := reg.Contents("http://x/child.json")
	if err != nil {
		t.Fatalf("expected the $id-bearing subresource to be independently addressable: %v", err)
	}
	id, ok := childContents.LookupString("$id")
	if !ok || id != "http://x/child.json" {
		t.Errorf("child contents = %#v", childContents)
	}
	anchor, _, err := reg.Anchor("http://x/child.json", "a")
	if err != nil {
		t.Fatal(err)
	}
	if anchor.Name != "a" {
		t.Errorf("anchor.Name = %q, want a", anchor.Name)
	}
}

func TestAnchorCrawlsLazilyWhenUncrawled(t *testing.T) {
	root := mustResource(t, `{
		"$schema":"`+spec.Draft202012URI+`",
		"$id":"http://x/root.json",
		"$anchor":"top"
	}`)
	reg, err := registry.New().WithResource("http://x/root.json", root)
	if err != nil {
		t.Fatal(err)
	}
	anchor, _, err := reg.Anchor("http://x/root.json", "top")
	if err != nil {
		t.Fatal(err)
	}
	if anchor.Name != "top" {
		t.Errorf("anchor.Name = %q, want top", anchor.Name)
	}
}

func TestCrawlIndexesAnchorUnderNonCanonicalRegistrationURI(t *testing.T) {
	root := mustResource(t, `{
		"$schema":"`+spec.Draft202012URI+`",
		"$id":"urn:ex:a",
		"$defs": {"N": {"$anchor":"N","type":"integer"}}
	}`)
	reg, err := registry.New().WithResource("http://x/", root)
	if err != nil {
		t.Fatal(err)
	}
	reg, err = reg.Crawl()
	if err != nil {
		t.Fatal(err)
	}
	anchor, _, err := reg.Anchor("http://x/", "N")
	if err != nil {
		t.Fatalf("anchor N must be reachable from the registration URI, not just the canonical id: %v", err)
	}
	if anchor.Name != "N" {
		t.Errorf("anchor.Name = %q, want N", anchor.Name)
	}
	anchorViaCanonical, _, err := reg.Anchor("urn:ex:a", "N")
	if err != nil {
		t.Fatalf("anchor N must also be reachable from the canonical id: %v", err)
	}
	if anchorViaCanonical.Name != "N" {
		t.Errorf("anchor.Name = %q, want N", anchorViaCanonical.Name)
	}
}

func TestCrawlDoesNotClobberRootDocumentWithAnchorlessSubresource(t *testing.T) {
	root := mustResource(t, `{
		"$schema":"`+spec.Draft202012URI+`",
		"$id":"urn:ex:a",
		"title": "root document",
		"$defs": {"N": {"$anchor":"N","type":"integer"}}
	}`)
	reg, err := registry.New().WithResource("urn:ex:a", root)
	if err != nil {
		t.Fatal(err)
	}

	// Trigger a crawl indirectly via a plain-name anchor lookup (as S2
	// would), exactly like a real caller resolving "urn:ex:a#N" before
	// ever reading the document itself via a JSON pointer (S1).
	if _, _, err := reg.Anchor("urn:ex:a", "N"); err != nil {
		t.Fatal(err)
	}

	got, err := reg.Contents("urn:ex:a")
	if err != nil {
		t.Fatal(err)
	}
	title, ok := got.LookupString("title")
	if !ok || title != "root document" {
		t.Errorf("Contents(\"urn:ex:a\") = %#v, want the root document untouched by crawling its anchor-bearing subresource", got)
	}
}

func TestCrawlIsIdempotent(t *testing.T) {
	root := mustResource(t, `{"$schema":"`+spec.Draft202012URI+`","$id":"http://x/root.json"}`)
	reg, _ := registry.New().WithResource("http://x/root.json", root)
	crawled, err := reg.Crawl()
	if err != nil {
		t.Fatal(err)
	}
	crawledAgain, err := crawled.Crawl()
	if err != nil {
		t.Fatal(err)
	}
	if crawledAgain.Len() != crawled.Len() {
		t.Error("crawling an already-crawled registry should change nothing")
	}
}
