// Package referr defines the closed error taxonomy of spec.md §7: one
// struct per failure kind, each implementing error, each usable with
// errors.As. The core never swallows an error and never retries; this
// package exists only to give callers something more structured than a
// formatted string to branch on.
package referr

import (
	"fmt"

	"github.com/signadot/jsonref/jsonvalue"
)

// NoSuchResource reports that a URI is not in the registry and either no
// retrieve hook is configured or the hook failed.
type NoSuchResource struct {
	URI string
	// Cause is the retrieve hook's failure wrapped in an *Unretrievable,
	// when a hook was configured and invoked; nil otherwise.
	Cause error
}

func (e *NoSuchResource) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no such resource %q: %v", e.URI, e.Cause)
	}
	return fmt.Sprintf("no such resource %q", e.URI)
}

func (e *NoSuchResource) Unwrap() error { return e.Cause }

// NoSuchAnchor reports that a resource exists but declares no anchor with
// the requested name.
type NoSuchAnchor struct {
	URI  string
	Name string
}

func (e *NoSuchAnchor) Error() string {
	return fmt.Sprintf("no such anchor %q in %q", e.Name, e.URI)
}

// PointerToNowhere reports that a JSON Pointer step fell off the document.
type PointerToNowhere struct {
	Reference string
	Resource  jsonvalue.Value
}

func (e *PointerToNowhere) Error() string {
	return fmt.Sprintf("pointer to nowhere: %q", e.Reference)
}

// InvalidAnchor reports a malformed fragment: one that contains "/" but
// does not start with it (e.g. "#foo/bar"). Suggestion, when non-empty,
// is a corrected pointer (uri.InvalidFragmentSuggestion).
type InvalidAnchor struct {
	URI        string
	Name       string
	Suggestion string
}

func (e *InvalidAnchor) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("invalid anchor %q in %q", e.Name, e.URI)
	}
	return fmt.Sprintf("invalid anchor %q in %q (did you mean \"#%s\"?)", e.Name, e.URI, e.Suggestion)
}

// CannotDetermineSpecification reports that contents' "$schema" is
// absent, not a string, or not a recognized dialect.
type CannotDetermineSpecification struct {
	Contents jsonvalue.Value
}

func (e *CannotDetermineSpecification) Error() string {
	return "cannot determine specification: missing or unrecognized $schema"
}

// NoInternalID reports an attempt to add a resource via the id-based
// shorthand (WithResourcesByOwnID on a resource that lacks id()).
type NoInternalID struct {
	Resource jsonvalue.Value
}

func (e *NoInternalID) Error() string {
	return "resource has no internal id"
}

// Unretrievable wraps a retrieve hook's failure for propagation. Registry
// methods surface this as the Cause of a NoSuchResource rather than
// returning it directly, so callers only ever need to check for
// NoSuchResource at the top level; it remains its own type so a hook
// author can still errors.As for it specifically.
type Unretrievable struct {
	URI   string
	Cause error
}

func (e *Unretrievable) Error() string {
	return fmt.Sprintf("unretrievable %q: %v", e.URI, e.Cause)
}

func (e *Unretrievable) Unwrap() error { return e.Cause }
