// Command xmlresolve looks up or resolves a single request against a set of
// OASIS XML Catalogs, printing the resolved URI (or JSON) and exiting
// non-zero when nothing matched.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/oasiscat/xmlresolve/pkg/catalog"
	"github.com/oasiscat/xmlresolve/pkg/report"
)

type result struct {
	Found       bool   `json:"found"`
	ResolvedURI string `json:"resolved_uri,omitempty"`
}

func main() {
	var (
		catalogFiles   []string
		systemID       string
		publicID       string
		uriArg         string
		entityName     string
		nature         string
		purpose        string
		propsPath      string
		jsonOut        bool
		lookupOnly     bool
		showVersion    bool
		ignoreWarnings []string
	)

	pflag.StringArrayVar(&catalogFiles, "catalog", nil, "catalog file to consult (repeatable); defaults to XML_CATALOG_FILES")
	pflag.StringVar(&systemID, "system", "", "system identifier to resolve")
	pflag.StringVar(&publicID, "public", "", "public identifier to resolve")
	pflag.StringVar(&entityName, "entity", "", "entity/doctype name to resolve")
	pflag.StringVar(&uriArg, "uri", "", "URI to resolve")
	pflag.StringVar(&nature, "nature", "", "RDDL nature URI constraining a uri match")
	pflag.StringVar(&purpose, "purpose", "", "RDDL purpose URI constraining a uri match")
	pflag.StringVar(&propsPath, "properties", "", "path to a properties file overlaying config")
	pflag.BoolVar(&jsonOut, "json", false, "write JSON to stdout instead of a bare URI")
	pflag.BoolVar(&lookupOnly, "lookup", false, "catalog lookup only, skip the fetch layer")
	pflag.BoolVar(&showVersion, "version", false, "print version and exit")
	pflag.StringArrayVar(&ignoreWarnings, "ignore-warning", nil, "loader warning check ID to downgrade to INFO (repeatable)")
	pflag.Parse()

	if showVersion {
		fmt.Printf("xmlresolve %s\n", catalog.Version())
		return
	}

	cfg := catalog.NewConfig()
	if err := cfg.LoadAll(propsPath); err != nil {
		fmt.Fprintf(os.Stderr, "xmlresolve: loading config: %v\n", err)
		os.Exit(2)
	}
	if len(catalogFiles) > 0 {
		cfg.CatalogFiles = catalogFiles
	}
	if len(cfg.CatalogFiles) == 0 {
		fmt.Fprintln(os.Stderr, "xmlresolve: no catalog files given (set --catalog or XML_CATALOG_FILES)")
		os.Exit(2)
	}

	rpt := report.NewReport()
	resolver := catalog.NewResolver(cfg)
	resolver.Manager.Loader.Report = rpt

	req := &catalog.Request{
		EntityName: entityName,
		SystemID:   systemID,
		PublicID:   publicID,
		URI:        uriArg,
		Nature:     nature,
		Purpose:    purpose,
		OpenStream: !lookupOnly,
	}

	res := runRequest(resolver, req, lookupOnly)

	if len(ignoreWarnings) > 0 {
		downgrade := make(map[string]bool, len(ignoreWarnings))
		for _, id := range ignoreWarnings {
			downgrade[id] = true
		}
		rpt.DowngradeToInfo(downgrade)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(res)
		rpt.WriteJSON(os.Stderr)
	} else {
		if res.Found {
			fmt.Println(res.ResolvedURI)
		} else {
			fmt.Fprintln(os.Stderr, "xmlresolve: unresolved")
		}
		rpt.WriteText(os.Stderr)
	}

	if !res.Found {
		os.Exit(1)
	}
}

func runRequest(resolver *catalog.Resolver, req *catalog.Request, lookupOnly bool) result {
	if lookupOnly {
		r := resolver.Lookup(req)
		return result{Found: r.Found, ResolvedURI: r.ResolvedURI}
	}
	resp, err := resolver.Resolve(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xmlresolve: %v\n", err)
		os.Exit(2)
	}
	if resp.Stream != nil {
		resp.Stream.Close()
	}
	return result{Found: resp.Resolved, ResolvedURI: resp.ResolvedURI}
}
