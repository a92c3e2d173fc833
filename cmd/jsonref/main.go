// Command jsonref is a small demonstration CLI over the registry/
// resolver packages: load a directory of JSON/YAML resources, crawl it,
// resolve one reference against it, and print the result. Two optional
// modes exercise the rest of the domain stack: -diff renders the result
// of two references as text and prints their diff, and -select evaluates
// an expr-lang expression against the resolved value.
//
// Grounded on cmd/o/main.go's flag-then-dispatch shape; the
// terminal-color gating follows go-tony/cmd/o/configs.go's
// isatty.IsTerminal check.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/signadot/jsonref/jsonvalue"
	"github.com/signadot/jsonref/registry"
	"github.com/signadot/jsonref/resolver"
	"github.com/signadot/jsonref/resource"
	"github.com/signadot/jsonref/retrieve/textretriever"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "jsonref:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fset := flag.NewFlagSet("jsonref", flag.ContinueOnError)
	dir := fset.String("dir", ".", "directory of .json/.yaml/.yml resources to load")
	root := fset.String("root", "", "URI of the root resource to resolve -ref against (defaults to the first loaded file)")
	ref := fset.String("ref", "#", "reference to resolve, relative to -root")
	diffRef := fset.String("diff", "", "a second reference to resolve and diff against -ref's result")
	selectExpr := fset.String("select", "", "an expr-lang expression evaluated against the resolved value")
	noColor := fset.Bool("no-color", false, "disable colorized output even on a terminal")
	if err := fset.Parse(args); err != nil {
		return err
	}

	reg, roots, err := loadDir(*dir)
	if err != nil {
		return err
	}
	reg, err = reg.Crawl()
	if err != nil {
		return fmt.Errorf("crawling %s: %w", *dir, err)
	}

	baseURI := *root
	if baseURI == "" {
		if len(roots) == 0 {
			return fmt.Errorf("no resources found under %s", *dir)
		}
		baseURI = roots[0]
	}

	resv, err := resolver.New(reg, baseURI)
	if err != nil {
		return fmt.Errorf("building resolver for %s: %w", baseURI, err)
	}

	resolved, err := resv.Lookup(*ref)
	if err != nil {
		return fmt.Errorf("resolving %s against %s: %w", *ref, baseURI, err)
	}

	if *selectExpr != "" {
		return runSelect(resolved.Contents, *selectExpr)
	}

	if *diffRef != "" {
		other, err := resv.Lookup(*diffRef)
		if err != nil {
			return fmt.Errorf("resolving %s against %s: %w", *diffRef, baseURI, err)
		}
		useColor := isatty.IsTerminal(os.Stdout.Fd()) && !*noColor
		return runDiff(resolved.Contents.Encode(), other.Contents.Encode(), useColor)
	}

	fmt.Println(resolved.Contents.Encode())
	return nil
}

// loadDir walks dir for .json/.yaml/.yml files, registers each as a
// resource (by its own $id when it declares one, otherwise under its
// file:// URI), and wires a textretriever.Retriever as the registry's
// retrieve hook so an as-yet-unloaded $ref target under dir is fetched
// lazily instead of failing.
func loadDir(dir string) (registry.Registry, []string, error) {
	retriever := textretriever.New(textretriever.FileFetch(dir), parseAuto)
	reg := registry.New().WithRetrieve(retriever.Retrieve)

	var roots []string
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isResourceFile(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		contents, err := parseByExt(data, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		res, ok := resource.FromContents(contents)
		if !ok {
			return fmt.Errorf("%s: cannot determine specification", path)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		fileURI := "file://" + filepath.ToSlash(rel)
		if id, ok := res.ID(); ok {
			fileURI = id
		}
		reg, err = reg.WithResource(fileURI, res)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		roots = append(roots, fileURI)
		return nil
	})
	if walkErr != nil {
		return registry.Registry{}, nil, walkErr
	}
	return reg, roots, nil
}

func isResourceFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func parseByExt(data []byte, path string) (jsonvalue.Value, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return textretriever.JSONParse(data)
	}
	return textretriever.YAMLParse(data)
}

// parseAuto is the Parse used for URIs discovered only via $ref (the
// retrieve hook), where there is no file extension to dispatch on: try
// JSON first since it is strictly the more common case, then fall back
// to YAML.
func parseAuto(data []byte) (jsonvalue.Value, error) {
	if v, err := textretriever.JSONParse(data); err == nil {
		return v, nil
	}
	return textretriever.YAMLParse(data)
}
