package catalog

import "testing"

var identityNorm NormalizeFunc = func(s string) string { return s }

func TestMatchSystemExactWinsOverPublic(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <public publicId="-//Example//DTD Foo//EN" uri="wrong.dtd"/>
  <system systemId="urn:x" uri="right.dtd"/>
</catalog>`)
	uri, ok := matchSystem(cat, identityNorm, "urn:x")
	if !ok || uri != "file:///cat/right.dtd" {
		t.Fatalf("matchSystem: got (%q, %v)", uri, ok)
	}
}

func TestMatchRewriteSystemPicksLongestPrefix(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <rewriteSystem systemIdStartString="http://example.com/" rewritePrefix="file:///short/"/>
  <rewriteSystem systemIdStartString="http://example.com/deep/" rewritePrefix="file:///long/"/>
</catalog>`)
	uri, ok := matchRewriteSystem(cat, identityNorm, "http://example.com/deep/foo.dtd")
	if !ok || uri != "file:///long/foo.dtd" {
		t.Fatalf("matchRewriteSystem: got (%q, %v), want file:///long/foo.dtd", uri, ok)
	}
}

func TestMatchSystemSuffixPicksLongestSuffix(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <systemSuffix systemIdSuffix=".dtd" uri="short.dtd"/>
  <systemSuffix systemIdSuffix="foo.dtd" uri="long.dtd"/>
</catalog>`)
	uri, ok := matchSystemSuffix(cat, identityNorm, "http://example.com/foo.dtd")
	if !ok || uri != "file:///cat/long.dtd" {
		t.Fatalf("matchSystemSuffix: got (%q, %v), want file:///cat/long.dtd", uri, ok)
	}
}

func TestMatchPublicGatedBySystemPresence(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog" prefer="system">
  <public publicId="-//Example//DTD Foo//EN" uri="foo.dtd"/>
</catalog>`)
	if _, ok := matchPublic(cat, identityNorm, "-//Example//DTD Foo//EN", true); ok {
		t.Errorf("public entry under prefer=system scope should not match when a system_id was given")
	}
	uri, ok := matchPublic(cat, identityNorm, "-//Example//DTD Foo//EN", false)
	if !ok || uri != "file:///cat/foo.dtd" {
		t.Fatalf("matchPublic without a system_id: got (%q, %v)", uri, ok)
	}
}

func TestDelegateSystemCandidatesOrderedByStartLength(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <delegateSystem systemIdStartString="http://example.com/" catalog="a.xml"/>
  <delegateSystem systemIdStartString="http://example.com/deep/" catalog="b.xml"/>
</catalog>`)
	cands := delegateSystemCandidates(cat, identityNorm, "http://example.com/deep/foo.dtd")
	if len(cands) != 2 {
		t.Fatalf("expected both delegates to match as prefix candidates, got %d", len(cands))
	}
	if cands[0].SystemIDStart != "http://example.com/deep/" {
		t.Errorf("longest start string should sort first, got %q", cands[0].SystemIDStart)
	}
}

func TestDelegatePublicCandidatesGatedByRootPrefer(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog" prefer="system">
  <delegatePublic publicIdStartString="-//Example//" catalog="delegate.xml"/>
</catalog>`)
	if cat.Prefer != PreferSystem {
		t.Fatalf("test fixture setup: expected root prefer=system, got %q", cat.Prefer)
	}
	if cands := delegatePublicCandidates(cat, identityNorm, "-//Example//DTD Foo//EN", true); cands != nil {
		t.Errorf("delegatePublic should be gated off under prefer=system when a system_id was given, got %+v", cands)
	}
	if cands := delegatePublicCandidates(cat, identityNorm, "-//Example//DTD Foo//EN", false); len(cands) != 1 {
		t.Errorf("delegatePublic should still apply when no system_id was given, got %+v", cands)
	}
}

func TestMatchURIConstrainedByNaturePurpose(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <uri name="http://ns.example/a" uri="schema.xsd" nature="http://www.w3.org/2001/XMLSchema" purpose="http://www.rddl.org/purposes#schema-validation"/>
</catalog>`)
	if _, ok := matchURI(cat, identityNorm, "http://ns.example/a", NatureRelaxNG, PurposeSchemaValidation); ok {
		t.Errorf("mismatched nature should not match")
	}
	uri, ok := matchURI(cat, identityNorm, "http://ns.example/a", NatureXMLSchema, PurposeSchemaValidation)
	if !ok || uri != "file:///cat/schema.xsd" {
		t.Fatalf("matchURI: got (%q, %v)", uri, ok)
	}
	// Request silent on nature/purpose does not exclude an entry that declares them.
	uri, ok = matchURI(cat, identityNorm, "http://ns.example/a", "", "")
	if !ok || uri != "file:///cat/schema.xsd" {
		t.Fatalf("matchURI with unconstrained request: got (%q, %v)", uri, ok)
	}
}

func TestClasspathNormalizationIsIdempotentAcrossSlashVariants(t *testing.T) {
	cat := mustLoad(t, "file:///cat/catalog.xml", `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <uri name="classpath:/x" uri="x.xsd"/>
</catalog>`)
	norm := Normalizer(false)
	a, okA := matchURI(cat, norm, "classpath:/x", "", "")
	b, okB := matchURI(cat, norm, "classpath:x", "", "")
	if !okA || !okB || a != b {
		t.Fatalf("classpath:/x vs classpath:x diverged: (%q,%v) vs (%q,%v)", a, okA, b, okB)
	}
}

func TestSortDelegatesByStartLenBreaksTiesByDocumentOrder(t *testing.T) {
	type d struct{ start string }
	in := []d{{"a"}, {"b"}, {"cc"}}
	sortDelegatesByStartLen(in, func(x d) string { return x.start })
	if in[0].start != "cc" || in[1].start != "a" || in[2].start != "b" {
		t.Fatalf("unexpected order: %+v", in)
	}
}
