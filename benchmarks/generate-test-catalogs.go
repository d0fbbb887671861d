// generate-test-catalogs.go creates XML catalog files of various entry
// counts for benchmarking the loader, index, and query engine.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	dir := "benchmarks/corpus"
	os.MkdirAll(dir, 0o755)

	sizes := []struct {
		name    string
		entries int
	}{
		{"tiny-10", 10},
		{"small-100", 100},
		{"medium-1000", 1000},
		{"large-10000", 10000},
		{"xlarge-100000", 100000},
	}

	for _, s := range sizes {
		path := filepath.Join(dir, s.name+".xml")
		if err := generateCatalog(path, s.entries); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", path, err)
			os.Exit(1)
		}
		fi, _ := os.Stat(path)
		fmt.Printf("Generated %s (%d KB, %d entries)\n", path, fi.Size()/1024, s.entries)
	}
}

// generateCatalog writes a catalog with a mix of the exact, rewrite and
// suffix entry kinds, split evenly across count entries, so index.go's
// memdb table and radix trees are exercised at scale. It writes no
// delegate*, nextCatalog or TR9401 entries.
func generateCatalog(path string, count int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog" prefer="public">` + "\n")

	kinds := []string{"public", "system", "uri", "rewriteSystem", "rewriteURI", "systemSuffix", "uriSuffix"}
	for i := 0; i < count; i++ {
		switch kinds[i%len(kinds)] {
		case "public":
			fmt.Fprintf(&sb, "  <public publicId=%q uri=%q/>\n",
				fmt.Sprintf("-//Bench//Entry%d//EN", i), fmt.Sprintf("entries/pub-%d.dtd", i))
		case "system":
			fmt.Fprintf(&sb, "  <system systemId=%q uri=%q/>\n",
				fmt.Sprintf("http://example.com/bench/%d.dtd", i), fmt.Sprintf("entries/sys-%d.dtd", i))
		case "uri":
			fmt.Fprintf(&sb, "  <uri name=%q uri=%q/>\n",
				fmt.Sprintf("http://example.com/bench/ns-%d", i), fmt.Sprintf("entries/ns-%d.xsd", i))
		case "rewriteSystem":
			fmt.Fprintf(&sb, "  <rewriteSystem systemIdStartString=%q rewritePrefix=%q/>\n",
				fmt.Sprintf("http://example.com/rw-%d/", i), fmt.Sprintf("entries/rw-%d/", i))
		case "rewriteURI":
			fmt.Fprintf(&sb, "  <rewriteURI uriStartString=%q rewritePrefix=%q/>\n",
				fmt.Sprintf("http://example.com/rwu-%d/", i), fmt.Sprintf("entries/rwu-%d/", i))
		case "systemSuffix":
			fmt.Fprintf(&sb, "  <systemSuffix systemIdSuffix=%q uri=%q/>\n",
				fmt.Sprintf("/suffix-%d.dtd", i), fmt.Sprintf("entries/suf-%d.dtd", i))
		case "uriSuffix":
			fmt.Fprintf(&sb, "  <uriSuffix uriSuffix=%q uri=%q/>\n",
				fmt.Sprintf("/usuffix-%d.xsd", i), fmt.Sprintf("entries/usuf-%d.xsd", i))
		}
	}
	sb.WriteString("</catalog>\n")

	_, err = f.WriteString(sb.String())
	return err
}
