package catalog

import (
	"encoding/xml"
	"strings"
	"testing"
)

func mustLoad(t *testing.T, sourceURI, doc string) *Catalog {
	t.Helper()
	l := NewLoader(nil)
	cat, err := l.LoadFromTokens(sourceURI, xml.NewDecoder(strings.NewReader(doc)))
	if err != nil {
		t.Fatalf("LoadFromTokens: %v", err)
	}
	return cat
}

func TestLoadBasicEntries(t *testing.T) {
	doc := `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <public publicId="-//Example//DTD Foo//EN" uri="foo.dtd"/>
  <system systemId="http://example.com/foo.dtd" uri="foo.dtd"/>
  <uri name="http://example.com/ns" uri="ns.xsd"/>
</catalog>`
	cat := mustLoad(t, "file:///cat/catalog.xml", doc)

	if len(cat.Publics) != 1 || cat.Publics[0].PublicID != "-//Example//DTD Foo//EN" {
		t.Fatalf("public entries: %+v", cat.Publics)
	}
	if cat.Publics[0].URI != "file:///cat/foo.dtd" {
		t.Errorf("public URI not resolved against base: %q", cat.Publics[0].URI)
	}
	if len(cat.Systems) != 1 || cat.Systems[0].SystemID != "http://example.com/foo.dtd" {
		t.Fatalf("system entries: %+v", cat.Systems)
	}
	if len(cat.URIs) != 1 || cat.URIs[0].Name != "http://example.com/ns" {
		t.Fatalf("uri entries: %+v", cat.URIs)
	}
}

func TestLoadDefaultPreferIsPublic(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <public publicId="-//Example//DTD Foo//EN" uri="foo.dtd"/>
</catalog>`)
	if cat.Prefer != PreferPublic {
		t.Errorf("default prefer: got %q, want %q", cat.Prefer, PreferPublic)
	}
	if cat.Publics[0].Prefer != PreferPublic {
		t.Errorf("entry prefer: got %q, want %q", cat.Publics[0].Prefer, PreferPublic)
	}
}

func TestLoadGroupPreferOverridesRoot(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog" prefer="public">
  <group prefer="system">
    <public publicId="-//Example//DTD Foo//EN" uri="foo.dtd"/>
  </group>
  <public publicId="-//Example//DTD Bar//EN" uri="bar.dtd"/>
</catalog>`)
	byID := map[string]*PublicEntry{}
	for _, p := range cat.Publics {
		byID[p.PublicID] = p
	}
	if byID["-//Example//DTD Foo//EN"].Prefer != PreferSystem {
		t.Errorf("nested group prefer not inherited: %+v", byID["-//Example//DTD Foo//EN"])
	}
	if byID["-//Example//DTD Bar//EN"].Prefer != PreferPublic {
		t.Errorf("root prefer not applied outside group: %+v", byID["-//Example//DTD Bar//EN"])
	}
}

func TestLoadRootPreferSystemPropagatesToCatalog(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog" prefer="system">
  <public publicId="-//Example//DTD Foo//EN" uri="foo.dtd"/>
</catalog>`)
	if cat.Prefer != PreferSystem {
		t.Errorf("root catalog prefer not recorded: got %q, want %q", cat.Prefer, PreferSystem)
	}
}

func TestLoadXMLBaseOverridesAttributeResolution(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <system xml:base="file:///other/" systemId="urn:x" uri="x.dtd"/>
</catalog>`)
	if cat.Systems[0].URI != "file:///other/x.dtd" {
		t.Errorf("xml:base not honored: %q", cat.Systems[0].URI)
	}
}

func TestLoadDelegateAndNextCatalog(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <delegatePublic publicIdStartString="-//Example//" catalog="delegate.xml"/>
  <delegateSystem systemIdStartString="http://example.com/" catalog="delegate.xml"/>
  <delegateURI uriStartString="http://example.com/ns/" catalog="delegate.xml"/>
  <nextCatalog catalog="next.xml"/>
</catalog>`)
	if len(cat.DelegatePublic) != 1 || cat.DelegatePublic[0].CatalogURI != "file:///cat/delegate.xml" {
		t.Fatalf("delegatePublic: %+v", cat.DelegatePublic)
	}
	if len(cat.DelegateSystem) != 1 || cat.DelegateSystem[0].CatalogURI != "file:///cat/delegate.xml" {
		t.Fatalf("delegateSystem: %+v", cat.DelegateSystem)
	}
	if len(cat.DelegateURI) != 1 || cat.DelegateURI[0].CatalogURI != "file:///cat/delegate.xml" {
		t.Fatalf("delegateURI: %+v", cat.DelegateURI)
	}
	if len(cat.NextCatalogs) != 1 || cat.NextCatalogs[0].CatalogURI != "file:///cat/next.xml" {
		t.Fatalf("nextCatalog: %+v", cat.NextCatalogs)
	}
}

func TestLoadTR9401Entries(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog"
         xmlns:tr="urn:oasis:names:tc:entity:xmlns:tr9401:catalog">
  <tr:doctype name="html" uri="html.dtd"/>
  <tr:document uri="doc.xml"/>
  <tr:dtddecl publicId="-//W3C//DTD HTML 4.01//EN" uri="html4.dtd"/>
  <tr:entity name="amp" uri="amp.ent"/>
  <tr:linktype name="simple" uri="simple.dtd"/>
  <tr:notation name="gif" uri="gif.not"/>
  <tr:sgmldecl uri="decl.dcl"/>
</catalog>`)
	if len(cat.Doctypes) != 1 || cat.Doctypes[0].Name != "html" {
		t.Fatalf("doctype: %+v", cat.Doctypes)
	}
	if len(cat.Documents) != 1 {
		t.Fatalf("document: %+v", cat.Documents)
	}
	if len(cat.DTDDecls) != 1 || cat.DTDDecls[0].PublicID != "-//W3C//DTD HTML 4.01//EN" {
		t.Fatalf("dtddecl: %+v", cat.DTDDecls)
	}
	if len(cat.Entities) != 1 || cat.Entities[0].Name != "amp" {
		t.Fatalf("entity: %+v", cat.Entities)
	}
	if len(cat.Linktypes) != 1 {
		t.Fatalf("linktype: %+v", cat.Linktypes)
	}
	if len(cat.Notations) != 1 {
		t.Fatalf("notation: %+v", cat.Notations)
	}
	if len(cat.SGMLDecls) != 1 {
		t.Fatalf("sgmldecl: %+v", cat.SGMLDecls)
	}
}

func TestLoadMissingRequiredAttributeIsTolerated(t *testing.T) {
	// A tolerant (non-strict) loader drops the malformed entry and reports
	// a diagnostic rather than failing the whole load.
	l := NewLoader(nil)
	cat, err := l.LoadFromTokens("file:///cat/catalog.xml", xml.NewDecoder(strings.NewReader(`<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <system systemId="urn:x"/>
  <system systemId="urn:y" uri="y.dtd"/>
</catalog>`)))
	if err != nil {
		t.Fatalf("LoadFromTokens: %v", err)
	}
	if len(cat.Systems) != 1 || cat.Systems[0].SystemID != "urn:y" {
		t.Fatalf("expected only the well-formed entry to survive: %+v", cat.Systems)
	}
	if l.Report.WarningCount() == 0 && l.Report.ErrorCount() == 0 {
		t.Errorf("expected a diagnostic for the malformed entry")
	}
}

func TestLoadTwiceViaDistinctPathsIsIdempotent(t *testing.T) {
	doc := `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <public publicId="-//Example//DTD Foo//EN" uri="foo.dtd"/>
</catalog>`
	a := mustLoad(t, "file:///cat/catalog.xml", doc)
	b := mustLoad(t, "file:///cat/sub/../catalog.xml", doc)
	if len(a.Publics) != len(b.Publics) || a.Publics[0].URI != b.Publics[0].URI {
		t.Errorf("loads via distinct but equivalent paths diverged: %+v vs %+v", a.Publics, b.Publics)
	}
}
