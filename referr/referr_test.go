package referr_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/signadot/jsonref/referr"
)

func TestNoSuchResourceUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := &referr.NoSuchResource{URI: "http://x/a.json", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	var target *referr.NoSuchResource
	if !errors.As(err, &target) {
		t.Error("expected errors.As to match *referr.NoSuchResource")
	}
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}
}

func TestNoSuchResourceWithoutCause(t *testing.T) {
	err := &referr.NoSuchResource{URI: "http://x/a.json"}
	if err.Unwrap() != nil {
		t.Error("Unwrap should be nil when Cause is unset")
	}
}

func TestUnretrievableUnwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := &referr.Unretrievable{URI: "http://x/a.json", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestInvalidAnchorSuggestionInMessage(t *testing.T) {
	err := &referr.InvalidAnchor{URI: "http://x", Name: "foo/bar", Suggestion: "/foo/bar"}
	msg := err.Error()
	if !errors.Is(err, err) {
		t.Fatal("an error must always be errors.Is itself")
	}
	if msg == "" {
		t.Error("Error() should not be empty")
	}
	if !strings.Contains(msg, "#/foo/bar") {
		t.Errorf("Error() = %q, want it to suggest #/foo/bar", msg)
	}
}

func TestErrorTypesAreDistinguishable(t *testing.T) {
	var errs = []error{
		&referr.NoSuchResource{URI: "u"},
		&referr.NoSuchAnchor{URI: "u", Name: "n"},
		&referr.PointerToNowhere{Reference: "/x"},
		&referr.InvalidAnchor{URI: "u", Name: "n"},
		&referr.CannotDetermineSpecification{},
		&referr.NoInternalID{},
		&referr.Unretrievable{URI: "u", Cause: errors.New("e")},
	}
	for _, e := range errs {
		if e.Error() == "" {
			t.Errorf("%T.Error() returned an empty string", e)
		}
	}

	var noSuch *referr.NoSuchResource
	if errors.As(errs[1], &noSuch) {
		t.Error("NoSuchAnchor must not match errors.As(*NoSuchResource)")
	}
}
