package catalog

import "testing"

func TestResolveURIRelativeAgainstBase(t *testing.T) {
	got, err := ResolveURI("file:///cat/catalog.xml", "foo.dtd")
	if err != nil || got != "file:///cat/foo.dtd" {
		t.Fatalf("ResolveURI: got (%q, %v)", got, err)
	}
}

func TestResolveURIAbsoluteRefIgnoresBase(t *testing.T) {
	got, err := ResolveURI("file:///cat/catalog.xml", "http://example.com/x")
	if err != nil || got != "http://example.com/x" {
		t.Fatalf("ResolveURI: got (%q, %v)", got, err)
	}
}

func TestResolveURIMalformedReturnsError(t *testing.T) {
	if _, err := ResolveURI("file:///cat/catalog.xml", "ht!tp://[::bad"); err == nil {
		t.Fatal("expected a MalformedURIError")
	}
}

func TestNormalizerLowercasesSchemeAndHost(t *testing.T) {
	n := Normalizer(false)
	got := n("HTTP://Example.COM/Path")
	want := "http://example.com/Path"
	if got != want {
		t.Fatalf("Normalizer: got %q, want %q", got, want)
	}
}

func TestNormalizerMergesHTTPSWhenConfigured(t *testing.T) {
	n := Normalizer(true)
	a := n("http://example.com/x")
	b := n("https://example.com/x")
	if a != b {
		t.Fatalf("expected http/https to normalize identically, got %q vs %q", a, b)
	}
}

func TestNormalizerKeepsHTTPSDistinctByDefault(t *testing.T) {
	n := Normalizer(false)
	a := n("http://example.com/x")
	b := n("https://example.com/x")
	if a == b {
		t.Fatalf("expected http/https to stay distinct without merge_https, got %q", a)
	}
}

func TestNormalizeClasspathCollapsesLeadingSlash(t *testing.T) {
	cases := map[string]string{
		"classpath:/x":  "classpath:x",
		"classpath://x": "classpath:x",
		"classpath:x":   "classpath:x",
		"http://x/y":    "http://x/y",
	}
	for in, want := range cases {
		if got := NormalizeClasspath(in); got != want {
			t.Errorf("NormalizeClasspath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFixWindowsSystemIdentifier(t *testing.T) {
	got := FixWindowsSystemIdentifier(`C:\docs\foo.dtd`)
	want := "file:///C:/docs/foo.dtd"
	if got != want {
		t.Fatalf("FixWindowsSystemIdentifier: got %q, want %q", got, want)
	}
	if got := FixWindowsSystemIdentifier("http://example.com/foo.dtd"); got != "http://example.com/foo.dtd" {
		t.Errorf("non-Windows path should pass through unchanged, got %q", got)
	}
}

func TestScopeAllowed(t *testing.T) {
	if !ScopeAllowed("all", "http://example.com/x", false) {
		t.Error("expected all to permit http")
	}
	if ScopeAllowed("file", "http://example.com/x", false) {
		t.Error("expected file-only list to forbid http")
	}
	if !ScopeAllowed("file,http", "http://example.com/x", false) {
		t.Error("expected an explicit http entry to permit http")
	}
	if !ScopeAllowed("all", "foo.dtd", false) {
		t.Error("relative references are not subject to access control")
	}
}

func TestScopeAllowedMergesHTTPSScheme(t *testing.T) {
	if ScopeAllowed("http", "https://example.com/x", false) {
		t.Error("without merge_https, an http-only allow list should forbid https")
	}
	if !ScopeAllowed("http", "https://example.com/x", true) {
		t.Error("with merge_https, an http-only allow list should permit https")
	}
}
