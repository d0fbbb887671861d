package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/oasiscat/xmlresolve/pkg/report"
)

// Catalog is the parsed, immutable entry tree for one catalog source.
// Entries are grouped by kind, per the "avoid virtual dispatch" design note
// (spec.md §9): the query engine never needs a type switch over a single
// polymorphic list, it walks the slice for the kind it cares about.
type Catalog struct {
	URI    string
	Prefer string // root-level effective prefer, default "public"

	Systems        []*SystemEntry
	Publics        []*PublicEntry
	URIs           []*URIEntry
	RewriteSystems []*RewriteSystemEntry
	RewriteURIs    []*RewriteURIEntry
	SystemSuffixes []*SystemSuffixEntry
	URISuffixes    []*URISuffixEntry
	DelegatePublic []*DelegatePublicEntry
	DelegateSystem []*DelegateSystemEntry
	DelegateURI    []*DelegateURIEntry
	NextCatalogs   []*NextCatalogEntry
	Doctypes       []*DoctypeEntry
	Documents      []*DocumentEntry
	DTDDecls       []*DTDDeclEntry
	Entities       []*EntityEntry
	Linktypes      []*LinktypeEntry
	Notations      []*NotationEntry
	SGMLDecls      []*SGMLDeclEntry

	index *catalogIndex // built lazily, see index.go
}

const (
	catalogNS = "urn:oasis:names:tc:entity:xmlns:xml:catalog"
	tr9401NS  = "urn:oasis:names:tc:entity:xmlns:tr9401:catalog"
	xmlNS     = "http://www.w3.org/XML/1998/namespace"
)

// TokenSource is satisfied by *xml.Decoder and by any caller-supplied XML
// event producer, per spec.md §4.1's "caller-driven event producer" option.
type TokenSource interface {
	Token() (xml.Token, error)
}

// Loader parses catalog sources into Catalog trees. Loaders are stateless;
// the Catalog values they produce are never mutated after Load returns.
type Loader struct {
	Strict  bool // abort with LoadError on a token-level XML error; entries with missing or malformed attributes are dropped with a warning in both modes
	FixWin  bool // fix_windows_system_identifiers
	Report  *report.Report
	HTTPDoc *http.Client
}

// NewLoader returns a tolerant Loader that reports diagnostics into r.
func NewLoader(r *report.Report) *Loader {
	if r == nil {
		r = report.NewReport()
	}
	return &Loader{Report: r, HTTPDoc: http.DefaultClient}
}

// Load fetches and parses the catalog at the given absolute URI.
func (l *Loader) Load(uri string) (*Catalog, error) {
	rc, err := l.openCatalogSource(uri)
	if err != nil {
		return nil, &LoadError{CatalogURI: uri, Err: err}
	}
	defer rc.Close()
	return l.LoadFromTokens(uri, xml.NewDecoder(rc))
}

func (l *Loader) openCatalogSource(uri string) (io.ReadCloser, error) {
	u, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	switch u.Scheme() {
	case "file", "":
		path := strings.TrimPrefix(u.String(), "file://")
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	case "http", "https":
		client := l.HTTPDoc
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Get(u.String())
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("fetching catalog %s: HTTP %d", uri, resp.StatusCode)
		}
		return resp.Body, nil
	default:
		return nil, fmt.Errorf("unsupported catalog scheme %q", u.Scheme())
	}
}

// LoadFromTokens parses a catalog from an arbitrary token source, resolving
// the root catalog's base URI from sourceURI (used for xml:base inheritance
// and for resolving relative attribute URIs).
func (l *Loader) LoadFromTokens(sourceURI string, tokens TokenSource) (*Catalog, error) {
	p := &catalogParser{
		loader: l,
		cat:    &Catalog{URI: sourceURI, Prefer: PreferPublic},
	}
	if err := p.run(sourceURI, tokens); err != nil {
		if l.Strict {
			return nil, &LoadError{CatalogURI: sourceURI, Err: err}
		}
		l.warn("LOAD-001", fmt.Sprintf("catalog %s: %v", sourceURI, err), sourceURI)
	}
	return p.cat, nil
}

func (l *Loader) warn(id, msg, loc string) {
	if l.Report != nil {
		l.Report.AddWithLocation(report.Warning, id, msg, loc)
	}
}

func (l *Loader) abortOrWarn(id, msg, loc string) error {
	if l.Strict {
		return fmt.Errorf("%s: %s", id, msg)
	}
	l.warn(id, msg, loc)
	return nil
}

// scopeFrame tracks the enclosing group/catalog's effective prefer and the
// xml:base stack entry pushed for this element.
type scopeFrame struct {
	prefer string
	base   string
}

type catalogParser struct {
	loader *Loader
	cat    *Catalog
	scopes []scopeFrame
}

func (p *catalogParser) topBase() string {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if p.scopes[i].base != "" {
			return p.scopes[i].base
		}
	}
	return ""
}

func (p *catalogParser) topPrefer() string {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		return p.scopes[i].prefer
	}
	return PreferPublic
}

func (p *catalogParser) run(sourceURI string, tokens TokenSource) error {
	p.scopes = append(p.scopes, scopeFrame{prefer: PreferPublic, base: sourceURI})

	for {
		tok, err := tokens.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.startElement(t); err != nil {
				return err
			}
		case xml.EndElement:
			p.endElement(t)
		}
	}
}

// attr returns the value of a local (namespace-agnostic) attribute.
func attr(se xml.StartElement, local string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func isGroupLevel(local string) bool {
	return local == "catalog" || local == "group"
}

func (p *catalogParser) startElement(se xml.StartElement) error {
	base := p.topBase()
	for _, a := range se.Attr {
		if a.Name.Space == xmlNS && a.Name.Local == "base" {
			resolved, err := ResolveURI(base, a.Value)
			if err == nil {
				base = resolved
			}
		}
	}

	prefer := p.topPrefer()
	if isGroupLevel(se.Name.Local) && (se.Name.Space == catalogNS || se.Name.Space == "") {
		if pv, ok := attr(se, "prefer"); ok && (pv == PreferSystem || pv == PreferPublic) {
			prefer = pv
		}
	}
	if se.Name.Local == "catalog" && (se.Name.Space == catalogNS || se.Name.Space == "") {
		p.cat.Prefer = prefer
	}
	p.scopes = append(p.scopes, scopeFrame{prefer: prefer, base: base})

	if se.Name.Space != catalogNS && se.Name.Space != tr9401NS {
		return nil // unknown namespace elements are ignored, not errors
	}

	return p.addEntry(se, base, prefer)
}

func (p *catalogParser) endElement(_ xml.EndElement) {
	if len(p.scopes) > 0 {
		p.scopes = p.scopes[:len(p.scopes)-1]
	}
}

func (p *catalogParser) resolveAttr(base, loc, name string, se xml.StartElement, required bool) (string, bool) {
	v, ok := attr(se, name)
	if !ok {
		if required {
			p.loader.warn("LOAD-002", fmt.Sprintf("%s: missing required attribute %q", se.Name.Local, name), loc)
		}
		return "", false
	}
	if p.loader.FixWin {
		v = FixWindowsSystemIdentifier(v)
	}
	resolved, err := ResolveURI(base, v)
	if err != nil {
		p.loader.warn("LOAD-003", fmt.Sprintf("%s: malformed URI in %q: %v", se.Name.Local, name, err), loc)
		return "", false
	}
	return NormalizeClasspath(resolved), true
}

func (p *catalogParser) rawAttr(loc, name string, se xml.StartElement, required bool) (string, bool) {
	v, ok := attr(se, name)
	if !ok && required {
		p.loader.warn("LOAD-002", fmt.Sprintf("%s: missing required attribute %q", se.Name.Local, name), loc)
	}
	return v, ok
}

func (p *catalogParser) addEntry(se xml.StartElement, base, prefer string) error {
	loc := p.cat.URI
	id, _ := attr(se, "id")
	bse := baseEntry(id, base)

	switch {
	case se.Name.Space == catalogNS:
		switch se.Name.Local {
		case "catalog", "group":
			return nil // container handled via scope stack, no leaf entry
		case "public":
			pid, ok1 := p.rawAttr(loc, "publicId", se, true)
			u, ok2 := p.resolveAttr(base, loc, "uri", se, true)
			if ok1 && ok2 {
				p.cat.Publics = append(p.cat.Publics, &PublicEntry{base: bse, PublicID: pid, URI: u, Prefer: prefer})
			}
		case "system":
			sid, ok1 := p.rawAttr(loc, "systemId", se, true)
			u, ok2 := p.resolveAttr(base, loc, "uri", se, true)
			if ok1 && ok2 {
				p.cat.Systems = append(p.cat.Systems, &SystemEntry{base: bse, SystemID: sid, URI: u})
			}
		case "uri":
			name, ok1 := p.rawAttr(loc, "name", se, true)
			u, ok2 := p.resolveAttr(base, loc, "uri", se, true)
			nature, _ := attr(se, "nature")
			purpose, _ := attr(se, "purpose")
			if ok1 && ok2 {
				p.cat.URIs = append(p.cat.URIs, &URIEntry{base: bse, Name: name, URI: u, Nature: nature, Purpose: purpose})
			}
		case "rewriteSystem":
			start, ok1 := p.rawAttr(loc, "systemIdStartString", se, true)
			prefixURI, ok2 := p.resolveAttr(base, loc, "rewritePrefix", se, true)
			if ok1 && ok2 {
				p.cat.RewriteSystems = append(p.cat.RewriteSystems, &RewriteSystemEntry{base: bse, SystemIDStart: start, RewritePrefix: prefixURI})
			}
		case "rewriteURI":
			start, ok1 := p.rawAttr(loc, "uriStartString", se, true)
			prefixURI, ok2 := p.resolveAttr(base, loc, "rewritePrefix", se, true)
			if ok1 && ok2 {
				p.cat.RewriteURIs = append(p.cat.RewriteURIs, &RewriteURIEntry{base: bse, URIStart: start, RewritePrefix: prefixURI})
			}
		case "systemSuffix":
			suf, ok1 := p.rawAttr(loc, "systemIdSuffix", se, true)
			u, ok2 := p.resolveAttr(base, loc, "uri", se, true)
			if ok1 && ok2 {
				p.cat.SystemSuffixes = append(p.cat.SystemSuffixes, &SystemSuffixEntry{base: bse, SystemIDSuffix: suf, URI: u})
			}
		case "uriSuffix":
			suf, ok1 := p.rawAttr(loc, "uriSuffix", se, true)
			u, ok2 := p.resolveAttr(base, loc, "uri", se, true)
			if ok1 && ok2 {
				p.cat.URISuffixes = append(p.cat.URISuffixes, &URISuffixEntry{base: bse, URISuffix: suf, URI: u})
			}
		case "delegatePublic":
			start, ok1 := p.rawAttr(loc, "publicIdStartString", se, true)
			cu, ok2 := p.resolveAttr(base, loc, "catalog", se, true)
			if ok1 && ok2 {
				p.cat.DelegatePublic = append(p.cat.DelegatePublic, &DelegatePublicEntry{base: bse, PublicIDStart: start, CatalogURI: cu})
			}
		case "delegateSystem":
			start, ok1 := p.rawAttr(loc, "systemIdStartString", se, true)
			cu, ok2 := p.resolveAttr(base, loc, "catalog", se, true)
			if ok1 && ok2 {
				p.cat.DelegateSystem = append(p.cat.DelegateSystem, &DelegateSystemEntry{base: bse, SystemIDStart: start, CatalogURI: cu})
			}
		case "delegateURI":
			start, ok1 := p.rawAttr(loc, "uriStartString", se, true)
			cu, ok2 := p.resolveAttr(base, loc, "catalog", se, true)
			if ok1 && ok2 {
				p.cat.DelegateURI = append(p.cat.DelegateURI, &DelegateURIEntry{base: bse, URIStart: start, CatalogURI: cu})
			}
		case "nextCatalog":
			cu, ok := p.resolveAttr(base, loc, "catalog", se, true)
			if ok {
				p.cat.NextCatalogs = append(p.cat.NextCatalogs, &NextCatalogEntry{base: bse, CatalogURI: cu})
			}
		default:
			// unknown element in the catalog namespace: ignored, not an error.
		}
	case se.Name.Space == tr9401NS:
		switch se.Name.Local {
		case "doctype":
			name, ok1 := p.rawAttr(loc, "name", se, true)
			u, ok2 := p.resolveAttr(base, loc, "uri", se, true)
			if ok1 && ok2 {
				p.cat.Doctypes = append(p.cat.Doctypes, &DoctypeEntry{base: bse, Name: name, URI: u})
			}
		case "document":
			u, ok := p.resolveAttr(base, loc, "uri", se, true)
			if ok {
				p.cat.Documents = append(p.cat.Documents, &DocumentEntry{base: bse, URI: u})
			}
		case "dtddecl":
			pid, ok1 := p.rawAttr(loc, "publicId", se, true)
			u, ok2 := p.resolveAttr(base, loc, "uri", se, true)
			if ok1 && ok2 {
				p.cat.DTDDecls = append(p.cat.DTDDecls, &DTDDeclEntry{base: bse, PublicID: pid, URI: u})
			}
		case "entity":
			name, ok1 := p.rawAttr(loc, "name", se, true)
			u, ok2 := p.resolveAttr(base, loc, "uri", se, true)
			if ok1 && ok2 {
				p.cat.Entities = append(p.cat.Entities, &EntityEntry{base: bse, Name: name, URI: u})
			}
		case "linktype":
			name, ok1 := p.rawAttr(loc, "name", se, true)
			u, ok2 := p.resolveAttr(base, loc, "uri", se, true)
			if ok1 && ok2 {
				p.cat.Linktypes = append(p.cat.Linktypes, &LinktypeEntry{base: bse, Name: name, URI: u})
			}
		case "notation":
			name, ok1 := p.rawAttr(loc, "name", se, true)
			u, ok2 := p.resolveAttr(base, loc, "uri", se, true)
			if ok1 && ok2 {
				p.cat.Notations = append(p.cat.Notations, &NotationEntry{base: bse, Name: name, URI: u})
			}
		case "sgmldecl":
			u, ok := p.resolveAttr(base, loc, "uri", se, true)
			if ok {
				p.cat.SGMLDecls = append(p.cat.SGMLDecls, &SGMLDeclEntry{base: bse, URI: u})
			}
		}
	}
	return nil
}

func baseEntry(id, baseURI string) base { return base{ID: id, BaseURI: baseURI} }
