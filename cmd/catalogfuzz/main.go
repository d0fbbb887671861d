// Command catalogfuzz generates randomized synthetic XML catalogs with
// injected structural faults, for exercising the tolerant loader: weighted
// fault functions mutate a builder, a manifest.json records which faults
// went into which file.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Fault describes a single mutation applied to a generated catalog.
type Fault struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CatalogSpec describes the parameters used to generate one catalog file.
type CatalogSpec struct {
	ID         int     `json:"id"`
	Faults     []Fault `json:"faults"`
	Filename   string  `json:"filename"`
	NumEntries int     `json:"num_entries"`
}

type catalogBuilder struct {
	prefer        string
	omitNamespace bool
	duplicateIDs  bool
	nested        bool
	entries       []entrySpec
}

type entrySpec struct {
	kind string
	attr map[string]string
}

type faultFunc struct {
	name        string
	description string
	apply       func(b *catalogBuilder, rng *rand.Rand)
	weight      int
}

var allFaults = []faultFunc{
	{
		name:        "missing_required_attribute",
		description: "Omit a required attribute (uri) on a system entry",
		weight:      4,
		apply: func(b *catalogBuilder, rng *rand.Rand) {
			b.entries = append(b.entries, entrySpec{kind: "system", attr: map[string]string{"systemId": "urn:fault:missing-uri"}})
		},
	},
	{
		name:        "malformed_uri",
		description: "Use an unparseable URI in a uri attribute",
		weight:      3,
		apply: func(b *catalogBuilder, rng *rand.Rand) {
			b.entries = append(b.entries, entrySpec{kind: "uri", attr: map[string]string{"name": "urn:fault:bad-uri", "uri": "ht!tp://[::not-a-host"}})
		},
	},
	{
		name:        "duplicate_ids",
		description: "Give two entries the same id attribute",
		weight:      2,
		apply: func(b *catalogBuilder, rng *rand.Rand) {
			b.duplicateIDs = true
		},
	},
	{
		name:        "unknown_namespace",
		description: "Drop the catalog namespace declaration so entries are ignored, not errors",
		weight:      2,
		apply: func(b *catalogBuilder, rng *rand.Rand) {
			b.omitNamespace = true
		},
	},
	{
		name:        "delegate_self_cycle",
		description: "Point a delegateSystem entry's catalog attribute at self.xml, a file the generator does not write",
		weight:      2,
		apply: func(b *catalogBuilder, rng *rand.Rand) {
			b.entries = append(b.entries, entrySpec{kind: "delegateSystem", attr: map[string]string{
				"systemIdStartString": "urn:fault:",
				"catalog":             "self.xml",
			}})
		},
	},
	{
		name:        "bad_prefer_value",
		description: "Set prefer to a value outside system/public",
		weight:      2,
		apply: func(b *catalogBuilder, rng *rand.Rand) {
			b.prefer = "maybe"
		},
	},
	{
		name:        "nested_group_override",
		description: "Nest a group with a conflicting prefer value around the entries",
		weight:      2,
		apply: func(b *catalogBuilder, rng *rand.Rand) {
			b.nested = true
		},
	},
}

func main() {
	dir := "testdata/catalogfuzz"
	count := 25
	seed := int64(1)
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if len(os.Args) > 2 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil {
			count = n
		}
	}
	os.MkdirAll(dir, 0o755)

	rng := rand.New(rand.NewSource(seed))
	var specs []CatalogSpec

	for i := 0; i < count; i++ {
		b := &catalogBuilder{prefer: "public"}
		var faults []Fault
		numFaults := rng.Intn(3)
		for f := 0; f < numFaults; f++ {
			ff := pickWeighted(allFaults, rng)
			ff.apply(b, rng)
			faults = append(faults, Fault{Name: ff.name, Description: ff.description})
		}
		numEntries := 3 + rng.Intn(8)
		for e := 0; e < numEntries; e++ {
			b.entries = append(b.entries, entrySpec{kind: "public", attr: map[string]string{
				"publicId": fmt.Sprintf("-//Fuzz//Entry%d//EN", e),
				"uri":      fmt.Sprintf("entry%d.dtd", e),
			}})
		}

		filename := fmt.Sprintf("catalog-%03d.xml", i)
		path := filepath.Join(dir, filename)
		if err := os.WriteFile(path, []byte(b.render()), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "catalogfuzz: writing %s: %v\n", path, err)
			os.Exit(1)
		}
		specs = append(specs, CatalogSpec{ID: i, Faults: faults, Filename: filename, NumEntries: numEntries})
	}

	manifest, err := json.MarshalIndent(specs, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalogfuzz: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), manifest, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "catalogfuzz: writing manifest: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %d catalogs in %s\n", count, dir)
}

func pickWeighted(faults []faultFunc, rng *rand.Rand) faultFunc {
	total := 0
	for _, f := range faults {
		total += f.weight
	}
	n := rng.Intn(total)
	for _, f := range faults {
		if n < f.weight {
			return f
		}
		n -= f.weight
	}
	return faults[0]
}

func (b *catalogBuilder) render() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")

	rootAttr := fmt.Sprintf(` prefer="%s"`, b.prefer)
	if b.omitNamespace {
		sb.WriteString(fmt.Sprintf("<catalog%s>\n", rootAttr))
	} else {
		sb.WriteString(fmt.Sprintf(`<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog"%s>`+"\n", rootAttr))
	}

	if b.nested {
		sb.WriteString(`  <group prefer="system">` + "\n")
	}

	seenID := false
	for i, e := range b.entries {
		id := ""
		if b.duplicateIDs {
			id = ` id="dup"`
			if !seenID {
				seenID = true
			}
		} else {
			id = fmt.Sprintf(` id="e%d"`, i)
		}
		sb.WriteString("    <" + e.kind + id)
		keys := make([]string, 0, len(e.attr))
		for k := range e.attr {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf(` %s=%q`, k, e.attr[k]))
		}
		sb.WriteString("/>\n")
	}

	if b.nested {
		sb.WriteString("  </group>\n")
	}
	sb.WriteString("</catalog>\n")
	return sb.String()
}
