package catalog

import "sort"

// This file implements one catalog's share of the matching algorithm in
// spec.md §4.3 (external identifier), §4.4 (URI), and §4.5 (doctype). It
// never recurses into delegate or nextCatalog targets itself: that needs a
// Manager to load the target catalog and a visited set to avoid cycles, so
// the recursive orchestration lives in manager.go. Each function here
// answers "does *this* catalog, on its own, resolve the query" and, for the
// delegate* kinds, "which sub-catalogs should be tried, in what order".

// matchSystem is §4.3 step 1: exact system identifier match.
func matchSystem(cat *Catalog, norm NormalizeFunc, systemID string) (string, bool) {
	if systemID == "" {
		return "", false
	}
	e, ok := cat.idx(norm).exactFirst("system", norm(systemID))
	if !ok {
		return "", false
	}
	return e.(*SystemEntry).URI, true
}

// matchSystemSuffix is §4.3 step 2: longest systemIdSuffix match.
func matchSystemSuffix(cat *Catalog, norm NormalizeFunc, systemID string) (string, bool) {
	if systemID == "" {
		return "", false
	}
	e, ok := longestSuffix(cat.idx(norm).systemSuffixes, norm(systemID))
	if !ok {
		return "", false
	}
	return e.(*SystemSuffixEntry).URI, true
}

// matchRewriteSystem is §4.3 step 3: longest systemIdStartString match,
// rewriting the unmatched remainder onto the rewrite prefix.
func matchRewriteSystem(cat *Catalog, norm NormalizeFunc, systemID string) (string, bool) {
	if systemID == "" {
		return "", false
	}
	q := norm(systemID)
	e, n, ok := longestPrefix(cat.idx(norm).rewriteSystems, q)
	if !ok {
		return "", false
	}
	re := e.(*RewriteSystemEntry)
	return re.RewritePrefix + q[n:], true
}

// delegateSystemCandidates is §4.3 step 4: every delegateSystem entry whose
// start string prefixes systemID, longest start string first, document
// order breaking ties.
func delegateSystemCandidates(cat *Catalog, norm NormalizeFunc, systemID string) []*DelegateSystemEntry {
	if systemID == "" {
		return nil
	}
	q := norm(systemID)
	var out []*DelegateSystemEntry
	for _, d := range cat.DelegateSystem {
		if hasPrefix(q, norm(d.SystemIDStart)) {
			out = append(out, d)
		}
	}
	sortDelegatesByStartLen(out, func(d *DelegateSystemEntry) string { return d.SystemIDStart })
	return out
}

// matchPublic is §4.3 step 5a: exact publicId match. The OASIS text gates
// public resolution on "system absent, or the matched entry's scope prefers
// public" (design note 9a/9b); we resolve that gate against the winning
// candidate's own Prefer, which is the nearest enclosing group/catalog's
// effective prefer computed at load time.
func matchPublic(cat *Catalog, norm NormalizeFunc, publicID string, systemGiven bool) (string, bool) {
	if publicID == "" {
		return "", false
	}
	e, ok := cat.idx(norm).exactMatching("public", norm(publicID), func(e Entry) bool {
		pe := e.(*PublicEntry)
		return !systemGiven || pe.Prefer == PreferPublic
	})
	if !ok {
		return "", false
	}
	return e.(*PublicEntry).URI, true
}

// delegatePublicCandidates is §4.3 step 5b. There is no per-entry scope to
// gate delegatePublic on, so the catalog's own root-level Prefer stands in
// for "the matched scope" per design note 9a.
func delegatePublicCandidates(cat *Catalog, norm NormalizeFunc, publicID string, systemGiven bool) []*DelegatePublicEntry {
	if publicID == "" || (systemGiven && cat.Prefer != PreferPublic) {
		return nil
	}
	q := norm(publicID)
	var out []*DelegatePublicEntry
	for _, d := range cat.DelegatePublic {
		if hasPrefix(q, norm(d.PublicIDStart)) {
			out = append(out, d)
		}
	}
	sortDelegatesByStartLen(out, func(d *DelegatePublicEntry) string { return d.PublicIDStart })
	return out
}

// matchDoctype is §4.3 step 6, and also the whole of §4.5's doctype track:
// exact match on the root element/doctype name.
func matchDoctype(cat *Catalog, norm NormalizeFunc, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	e, ok := cat.idx(norm).exactFirst("doctype", norm(name))
	if !ok {
		return "", false
	}
	return e.(*DoctypeEntry).URI, true
}

// matchURI is §4.4 step 1: exact name match, constrained by nature/purpose
// when the entry declares them (an entry silent on an axis is unconstrained
// on that axis; see design note 9b).
func matchURI(cat *Catalog, norm NormalizeFunc, uri, nature, purpose string) (string, bool) {
	if uri == "" {
		return "", false
	}
	e, ok := cat.idx(norm).exactMatching("uri", norm(uri), func(e Entry) bool {
		ue := e.(*URIEntry)
		if ue.Nature != "" && nature != "" && ue.Nature != nature {
			return false
		}
		if ue.Purpose != "" && purpose != "" && ue.Purpose != purpose {
			return false
		}
		return true
	})
	if !ok {
		return "", false
	}
	return e.(*URIEntry).URI, true
}

// matchURISuffix is §4.4 step 2.
func matchURISuffix(cat *Catalog, norm NormalizeFunc, uri string) (string, bool) {
	if uri == "" {
		return "", false
	}
	e, ok := longestSuffix(cat.idx(norm).uriSuffixes, norm(uri))
	if !ok {
		return "", false
	}
	return e.(*URISuffixEntry).URI, true
}

// matchRewriteURI is §4.4 step 3.
func matchRewriteURI(cat *Catalog, norm NormalizeFunc, uri string) (string, bool) {
	if uri == "" {
		return "", false
	}
	q := norm(uri)
	e, n, ok := longestPrefix(cat.idx(norm).rewriteURIs, q)
	if !ok {
		return "", false
	}
	re := e.(*RewriteURIEntry)
	return re.RewritePrefix + q[n:], true
}

// delegateURICandidates is §4.4 step 4.
func delegateURICandidates(cat *Catalog, norm NormalizeFunc, uri string) []*DelegateURIEntry {
	if uri == "" {
		return nil
	}
	q := norm(uri)
	var out []*DelegateURIEntry
	for _, d := range cat.DelegateURI {
		if hasPrefix(q, norm(d.URIStart)) {
			out = append(out, d)
		}
	}
	sortDelegatesByStartLen(out, func(d *DelegateURIEntry) string { return d.URIStart })
	return out
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// sortDelegatesByStartLen sorts delegate candidates by descending start
// string length, stable so equal-length ties keep document order (the
// slices being sorted were built by a single forward scan of cat.Delegate*,
// so they already arrive in document order).
func sortDelegatesByStartLen[T any](delegates []T, start func(T) string) {
	sort.SliceStable(delegates, func(i, j int) bool {
		return len(start(delegates[i])) > len(start(delegates[j]))
	})
}
