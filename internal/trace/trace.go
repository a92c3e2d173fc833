// Package trace provides the module's ambient, opt-in diagnostic logging:
// env-var gated boolean flags read once at process start, used only at
// the handful of package-internal decision points (crawl, lookup,
// retrieve) where a one-line trace is useful. None of it is required for
// correctness.
package trace

import (
	"fmt"
	"os"
	"strconv"
)

type flags struct {
	Crawl    bool
	Resolve  bool
	Retrieve bool
}

var f *flags

func init() {
	f = &flags{
		Crawl:    boolEnv("TRACE_JSONREF_CRAWL"),
		Resolve:  boolEnv("TRACE_JSONREF_RESOLVE"),
		Retrieve: boolEnv("TRACE_JSONREF_RETRIEVE"),
	}
}

func boolEnv(name string) bool {
	v := os.Getenv(name)
	if v == "" {
		return false
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func Crawl() bool    { return f.Crawl }
func Resolve() bool  { return f.Resolve }
func Retrieve() bool { return f.Retrieve }

// Logf writes a single trace line to stderr. Callers gate it behind
// Crawl()/Resolve()/Retrieve() so formatting work is skipped entirely
// when tracing is off.
func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
