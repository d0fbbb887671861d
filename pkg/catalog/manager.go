package catalog

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// CatalogManager owns the set of root catalogs (primary + additions), loads
// and caches them lazily, and drives the recursive delegate/nextCatalog
// chaining that query.go's single-catalog matchers don't know about.
//
// Catalogs are cached in a sync.Map reached through an atomic.Pointer: a
// Reload swaps in a fresh, empty map in one atomic store, so any lookup in
// flight either finishes against the fully-populated old map or starts
// fresh against the new one — never a half-populated mix (spec.md §5).
// Within one map generation, concurrent lookups for the same catalog URI
// share a single load via a per-key sync.Once cell.
type CatalogManager struct {
	Config *Config
	Loader *Loader
	Logger *Logger

	norm NormalizeFunc

	cells     atomic.Pointer[sync.Map]
	rddlCache *lru.Cache
}

type catalogCell struct {
	once sync.Once
	cat  *Catalog
	err  error
}

// NewManager builds a CatalogManager from cfg (NewConfig defaults if nil)
// and loader (a tolerant NewLoader if nil).
func NewManager(cfg *Config, loader *Loader) *CatalogManager {
	if cfg == nil {
		cfg = NewConfig()
	}
	if loader == nil {
		loader = NewLoader(nil)
	}
	m := &CatalogManager{Config: cfg, Loader: loader, norm: cfg.normalizer()}
	m.cells.Store(&sync.Map{})
	if cache, err := lru.New(256); err == nil {
		m.rddlCache = cache
	}
	return m
}

// Reload discards all cached catalogs (including Failed markers); the next
// lookup re-loads from source.
func (m *CatalogManager) Reload() {
	m.cells.Store(&sync.Map{})
}

// load returns the cached Catalog for uri, loading and caching it (success
// or failure) on first reference within the current map generation.
func (m *CatalogManager) load(uri string) (*Catalog, error) {
	cells := m.cells.Load()
	raw, _ := cells.LoadOrStore(uri, &catalogCell{})
	cell := raw.(*catalogCell)
	cell.once.Do(func() {
		cell.cat, cell.err = m.Loader.Load(uri)
		if cell.err != nil && m.Logger != nil {
			m.Logger.Error("", "loading "+uri+": "+cell.err.Error())
		}
	})
	return cell.cat, cell.err
}

func (m *CatalogManager) roots() []string {
	out := make([]string, 0, len(m.Config.CatalogFiles)+len(m.Config.Additions))
	out = append(out, m.Config.CatalogFiles...)
	out = append(out, m.Config.Additions...)
	return out
}

func (m *CatalogManager) rddlCacheGet(key string) (string, bool) {
	if m.rddlCache == nil {
		return "", false
	}
	v, ok := m.rddlCache.Get(key)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (m *CatalogManager) rddlCacheSet(key, value string) {
	if m.rddlCache != nil {
		m.rddlCache.Add(key, value)
	}
}

// LookupEntity runs spec.md §4.3's full external-identifier algorithm across
// every root catalog (primary then additions), each with its own
// delegate*/nextCatalog chaining, sharing one visited set across roots to
// prevent cycles across catalogs that reference each other.
//
// EXPANSION (uri_for_system, original_source Resolver/CatalogQuerier): when
// nothing matches and a system identifier was given, retry it as a URI-track
// lookup before giving up, if Config.URIForSystem is set.
func (m *CatalogManager) LookupEntity(req *Request) LookupResult {
	visited := map[string]bool{}
	if uri, ok := m.lookupExternalIdentifierRoots(visited, req.EntityName, req.SystemID, req.PublicID); ok {
		return LookupResult{Found: true, ResolvedURI: uri}
	}
	if m.Config.URIForSystem && req.SystemID != "" {
		if res := m.LookupURI(req.SystemID, req.Nature, req.Purpose); res.Found {
			return res
		}
	}
	return LookupResult{}
}

// LookupPublic and LookupSystem are narrow convenience entry points used by
// compat.go; both funnel through LookupEntity.
func (m *CatalogManager) LookupPublic(publicID string) LookupResult {
	return m.LookupEntity(&Request{PublicID: publicID})
}

func (m *CatalogManager) LookupSystem(systemID string) LookupResult {
	return m.LookupEntity(&Request{SystemID: systemID})
}

func (m *CatalogManager) lookupExternalIdentifierRoots(visited map[string]bool, name, systemID, publicID string) (string, bool) {
	for _, root := range m.roots() {
		if uri, ok := m.lookupExternalIdentifierTree(root, visited, name, systemID, publicID); ok {
			return uri, true
		}
	}
	return "", false
}

// lookupExternalIdentifierTree matches catURI's own entries (steps 1-6),
// then its nextCatalog entries in document order, depth first, before
// returning not-found to the caller (who moves on to the next root).
func (m *CatalogManager) lookupExternalIdentifierTree(catURI string, visited map[string]bool, name, systemID, publicID string) (string, bool) {
	if visited[catURI] {
		return "", false
	}
	visited[catURI] = true
	cat, err := m.load(catURI)
	if err != nil {
		return "", false
	}
	if uri, ok := m.externalIdentifierInCatalog(cat, visited, name, systemID, publicID); ok {
		return uri, true
	}
	for _, nc := range cat.NextCatalogs {
		if uri, ok := m.lookupExternalIdentifierTree(nc.CatalogURI, visited, name, systemID, publicID); ok {
			return uri, true
		}
	}
	return "", false
}

func (m *CatalogManager) externalIdentifierInCatalog(cat *Catalog, visited map[string]bool, name, systemID, publicID string) (string, bool) {
	if uri, ok := matchSystem(cat, m.norm, systemID); ok {
		return uri, true
	}
	if uri, ok := matchSystemSuffix(cat, m.norm, systemID); ok {
		return uri, true
	}
	if uri, ok := matchRewriteSystem(cat, m.norm, systemID); ok {
		return uri, true
	}
	for _, d := range delegateSystemCandidates(cat, m.norm, systemID) {
		if uri, ok := m.lookupExternalIdentifierTree(d.CatalogURI, visited, name, systemID, publicID); ok {
			return uri, true
		}
	}

	systemGiven := systemID != ""
	if uri, ok := matchPublic(cat, m.norm, publicID, systemGiven); ok {
		return uri, true
	}
	for _, d := range delegatePublicCandidates(cat, m.norm, publicID, systemGiven) {
		if uri, ok := m.lookupExternalIdentifierTree(d.CatalogURI, visited, name, systemID, publicID); ok {
			return uri, true
		}
	}

	if uri, ok := matchDoctype(cat, m.norm, name); ok {
		return uri, true
	}
	return "", false
}

// LookupURI runs spec.md §4.4's URI-track algorithm across every root
// catalog. nature/purpose narrow the match per §4.4 step 1 and
// §4.6's namespace-with-nature/purpose variant.
func (m *CatalogManager) LookupURI(uri, nature, purpose string) LookupResult {
	visited := map[string]bool{}
	for _, root := range m.roots() {
		if u, ok := m.lookupURITree(root, visited, uri, nature, purpose); ok {
			return LookupResult{Found: true, ResolvedURI: u}
		}
	}
	return LookupResult{}
}

// LookupNamespaceWithNaturePurpose is the named operation from SPEC_FULL.md
// §4.2's EXPANSION: a URI-track lookup where the caller's nature/purpose
// both constrain which uri entries may match, distinct from a bare
// LookupURI call made without that context.
func (m *CatalogManager) LookupNamespaceWithNaturePurpose(namespaceURI, nature, purpose string) LookupResult {
	return m.LookupURI(namespaceURI, nature, purpose)
}

func (m *CatalogManager) lookupURITree(catURI string, visited map[string]bool, uri, nature, purpose string) (string, bool) {
	if visited[catURI] {
		return "", false
	}
	visited[catURI] = true
	cat, err := m.load(catURI)
	if err != nil {
		return "", false
	}
	if u, ok := m.uriInCatalog(cat, visited, uri, nature, purpose); ok {
		return u, true
	}
	for _, nc := range cat.NextCatalogs {
		if u, ok := m.lookupURITree(nc.CatalogURI, visited, uri, nature, purpose); ok {
			return u, true
		}
	}
	return "", false
}

func (m *CatalogManager) uriInCatalog(cat *Catalog, visited map[string]bool, uri, nature, purpose string) (string, bool) {
	if u, ok := matchURI(cat, m.norm, uri, nature, purpose); ok {
		return u, true
	}
	if u, ok := matchURISuffix(cat, m.norm, uri); ok {
		return u, true
	}
	if u, ok := matchRewriteURI(cat, m.norm, uri); ok {
		return u, true
	}
	for _, d := range delegateURICandidates(cat, m.norm, uri) {
		if u, ok := m.lookupURITree(d.CatalogURI, visited, uri, nature, purpose); ok {
			return u, true
		}
	}
	return "", false
}

// LookupDoctype runs spec.md §4.5's doctype track across every root catalog.
func (m *CatalogManager) LookupDoctype(name string) LookupResult {
	visited := map[string]bool{}
	for _, root := range m.roots() {
		if u, ok := m.lookupDoctypeTree(root, visited, name); ok {
			return LookupResult{Found: true, ResolvedURI: u}
		}
	}
	return LookupResult{}
}

func (m *CatalogManager) lookupDoctypeTree(catURI string, visited map[string]bool, name string) (string, bool) {
	if visited[catURI] {
		return "", false
	}
	visited[catURI] = true
	cat, err := m.load(catURI)
	if err != nil {
		return "", false
	}
	if u, ok := matchDoctype(cat, m.norm, name); ok {
		return u, true
	}
	for _, nc := range cat.NextCatalogs {
		if u, ok := m.lookupDoctypeTree(nc.CatalogURI, visited, name); ok {
			return u, true
		}
	}
	return "", false
}
