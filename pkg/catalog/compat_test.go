package catalog

import "testing"

func TestVersion(t *testing.T) {
	if Version() != "1.1.0" {
		t.Errorf("unexpected version: %q", Version())
	}
}

func TestCatalogResolverConvenienceLookups(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, "cat.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <public publicId="-//Example//DTD Foo//EN" uri="file:///foo.dtd"/>
  <system systemId="urn:sys:bar" uri="file:///bar.dtd"/>
  <uri name="http://example.com/baz" uri="urn:example:baz"/>
</catalog>`)

	cfg := NewConfig()
	cfg.CatalogFiles = []string{path}
	cr := NewCatalogResolver(cfg)

	if uri, ok := cr.LookupPublic("-//Example//DTD Foo//EN"); !ok || uri != "file:///foo.dtd" {
		t.Errorf("LookupPublic: got (%q, %v)", uri, ok)
	}
	if uri, ok := cr.LookupSystem("urn:sys:bar"); !ok || uri != "file:///bar.dtd" {
		t.Errorf("LookupSystem: got (%q, %v)", uri, ok)
	}
	if uri, ok := cr.LookupURI("http://example.com/baz"); !ok || uri != "urn:example:baz" {
		t.Errorf("LookupURI: got (%q, %v)", uri, ok)
	}
	if uri, ok := cr.LookupSystem("urn:sys:missing"); ok || uri != "" {
		t.Errorf("LookupSystem for a miss: got (%q, %v)", uri, ok)
	}
	if cr.Manager() == nil {
		t.Error("Manager() returned nil")
	}
}
