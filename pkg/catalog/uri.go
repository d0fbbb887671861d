package catalog

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var errNotAbsolute = errors.New("catalog: no absolute URI available")

// URI wraps url.URL with the resolution and normalization behaviors the
// catalog matcher needs: relative resolution against a base, percent-decode
// awareness for data: URIs, and a comparison-normalized form.
type URI struct {
	u *url.URL
}

// ParseURI parses s leniently; malformed URIs are reported as an error so
// callers can drop the offending entry rather than panic.
func ParseURI(s string) (*URI, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, &MalformedURIError{URI: s, Err: err}
	}
	return &URI{u: u}, nil
}

func (u *URI) IsAbs() bool { return u.u.IsAbs() }

func (u *URI) String() string { return u.u.String() }

func (u *URI) Scheme() string { return strings.ToLower(u.u.Scheme) }

// Resolve resolves ref against u, returning the resulting absolute URI as a
// string. This is ordinary RFC 3986 reference resolution (url.URL.ResolveReference).
func (u *URI) Resolve(ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", &MalformedURIError{URI: ref, Err: err}
	}
	return u.u.ResolveReference(r).String(), nil
}

// ResolveURI resolves ref against base (both as strings) and returns the
// absolute result. If base is empty, ref must already be absolute.
func ResolveURI(base, ref string) (string, error) {
	if ref == "" {
		return base, nil
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", &MalformedURIError{URI: ref, Err: err}
	}
	if r.IsAbs() {
		return r.String(), nil
	}
	if base == "" {
		return r.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", &MalformedURIError{URI: base, Err: err}
	}
	return b.ResolveReference(r).String(), nil
}

// NormalizeFunc is the comparison normalizer N(s) from spec.md §4.2: applied
// symmetrically to request strings and catalog entry match strings before
// any comparison. It never mutates the values used for display.
type NormalizeFunc func(s string) string

// Normalizer builds an N(s) with the configured case-folding and
// http/https-merge behavior.
func Normalizer(mergeHTTPS bool) NormalizeFunc {
	return func(s string) string {
		s = NormalizeClasspath(s)
		u, err := url.Parse(s)
		if err != nil {
			return s
		}
		scheme := strings.ToLower(u.Scheme)
		host := strings.ToLower(u.Host)
		if mergeHTTPS && (scheme == "http" || scheme == "https") {
			scheme = "http"
		}
		u2 := *u
		u2.Scheme = scheme
		u2.Host = host
		return u2.String()
	}
}

// classpathRE matches a leading slash on a classpath: scheme-specific part.
var classpathRE = regexp.MustCompile(`^classpath:/+`)

// NormalizeClasspath rewrites "classpath:/x" to "classpath:x" per the load
// time invariant in spec.md §3.
func NormalizeClasspath(uri string) string {
	if !strings.HasPrefix(uri, "classpath:") {
		return uri
	}
	return "classpath:" + strings.TrimPrefix(classpathRE.ReplaceAllString(uri, "classpath:"), "classpath:")
}

// windowsDriveRE matches a leading drive letter, e.g. "C:\" or "C:/".
var windowsDriveRE = regexp.MustCompile(`^[a-zA-Z]:[\\/]`)

// FixWindowsSystemIdentifier rewrites a Windows-style path (backslashes,
// drive letter) into a file: URI. Non-Windows-looking strings are returned
// unchanged. This mirrors URIUtils.windowsPathURI in the original
// implementation and is applied to catalog entry attribute values at load
// time when fix_windows_system_identifiers is enabled; request URIs are
// not rewritten.
func FixWindowsSystemIdentifier(s string) string {
	if !windowsDriveRE.MatchString(s) {
		return s
	}
	fixed := strings.ReplaceAll(s, `\`, "/")
	return "file:///" + fixed
}

// ScopeAllowed reports whether scheme is permitted by an access list as
// described in spec.md §4.7/§6 ("access_external_entity"/"access_external_document").
// The list is a whitespace or comma separated set of scheme names; "all"
// permits everything and an empty list denies everything. http and https
// are treated as one scheme when mergeHTTPS is set.
func ScopeAllowed(accessList, uri string, mergeHTTPS bool) bool {
	return !forbidAccess(accessList, uri, mergeHTTPS)
}

func forbidAccess(accessList, uri string, mergeHTTPS bool) bool {
	u, err := url.Parse(uri)
	if err != nil {
		return true
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		return false // relative references are not subject to access control
	}
	allowed := splitAccessList(accessList)
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		a = strings.ToLower(a)
		if a == "all" || a == scheme {
			return false
		}
		if mergeHTTPS && (scheme == "http" || scheme == "https") && (a == "http" || a == "https") {
			return false
		}
	}
	return true
}

func splitAccessList(list string) []string {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil
	}
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	return fields
}

// reverseString is used to turn suffix matching into prefix matching for
// the radix tree index (see index.go).
func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
