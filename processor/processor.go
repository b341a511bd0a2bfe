/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/suparena/eventgraph"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/registry"
	"github.com/suparena/eventgraph/schema"
)

var macroPattern = regexp.MustCompile(`\{([^}]+)\}`)

// Problem is one inconsistency found by Check.
type Problem struct {
	Schema  string
	Message string
}

func (p Problem) String() string {
	return p.Schema + ": " + p.Message
}

// Check cross-validates schemas and index maps.
func Check(schemas []*schema.Schema, indexMaps []registry.IndexMap) []Problem {
	byName := schema.Index(schemas)
	maps := make(map[string]registry.IndexMap, len(indexMaps))
	for _, m := range indexMaps {
		maps[m.EntityType] = m
	}

	var problems []Problem
	for _, s := range schemas {
		for _, f := range s.References() {
			if _, ok := byName[f.Ref]; !ok {
				problems = append(problems, Problem{s.Name, fmt.Sprintf("field %q references undeclared entity %s", f.Name, f.Ref)})
			}
		}

		m, ok := maps[s.Name]
		if !ok {
			problems = append(problems, Problem{s.Name, "no index map registered"})
			continue
		}
		for _, attr := range sortedKeys(m.Keys) {
			for _, match := range macroPattern.FindAllStringSubmatch(m.Keys[attr], -1) {
				field := match[1]
				if field == "ID" {
					continue
				}
				if _, ok := s.Field(field); !ok {
					problems = append(problems, Problem{s.Name, fmt.Sprintf("%s template %q names unknown field %q", attr, m.Keys[attr], field)})
				}
			}
		}
	}
	return problems
}

// Describe writes a summary of each schema: fields, default rules and key templates.
func Describe(w io.Writer, schemas []*schema.Schema, indexMaps []registry.IndexMap) {
	maps := make(map[string]registry.IndexMap, len(indexMaps))
	for _, m := range indexMaps {
		maps[m.EntityType] = m
	}
	for _, s := range schemas {
		fmt.Fprintf(w, "%s (timestamps=%t)\n", s.Name, s.Timestamps)
		for _, f := range s.Fields {
			var attrs []string
			if f.Required {
				attrs = append(attrs, "required")
			}
			if f.Ref != "" {
				attrs = append(attrs, "ref="+f.Ref)
			}
			if len(f.Enum) > 0 {
				attrs = append(attrs, "enum="+strings.Join(f.Enum, "|"))
			}
			fmt.Fprintf(w, "  %-14s %-9s %s\n", f.Name, f.Kind, strings.Join(attrs, " "))
		}
		for _, b := range s.Backfills() {
			if b.From != "" {
				fmt.Fprintf(w, "  default %s <- %s\n", b.Field, b.From)
			} else {
				fmt.Fprintf(w, "  default %s = %v\n", b.Field, b.Value)
			}
		}
		if m, ok := maps[s.Name]; ok {
			for _, attr := range sortedKeys(m.Keys) {
				fmt.Fprintf(w, "  key %s = %s\n", attr, m.Keys[attr])
			}
		}
	}
}

// Run checks the given schema files, or the embedded schemas when files is empty, and returns
// the process exit code.
func Run(files []string, verbose bool, stdout, stderr io.Writer) int {
	schemas, err := load(files)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	indexMaps := registry.IndexMaps()
	if verbose {
		Describe(stdout, schemas, indexMaps)
	}

	problems := Check(schemas, indexMaps)
	for _, p := range problems {
		fmt.Fprintln(stderr, p)
	}
	if len(problems) > 0 {
		return 1
	}
	fmt.Fprintf(stdout, "%d schemas ok\n", len(schemas))
	return 0
}

// Main parses command line flags and exits with Run's code.
func Main() {
	versionFlag := flag.Bool("version", false, "Show version information")
	verbose := flag.Bool("v", false, "Print each schema")
	flag.Parse()

	if *versionFlag {
		info := eventgraph.GetVersionInfo()
		fmt.Printf("eventgraph schemacheck version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}
	os.Exit(Run(flag.Args(), *verbose, os.Stdout, os.Stderr))
}

func load(files []string) ([]*schema.Schema, error) {
	if len(files) == 0 {
		all, err := models.Schemas()
		if err != nil {
			return nil, err
		}
		out := make([]*schema.Schema, 0, len(all))
		for _, name := range sortedKeys(all) {
			out = append(out, all[name])
		}
		return out, nil
	}

	var out []*schema.Schema
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		parsed, err := schema.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, parsed...)
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
