package catalog

// version is reported by Version(), mirroring Resolver.version() /
// BuildConfig.VERSION in the original implementation.
const version = "1.1.0"

// Version returns the resolver's OASIS XML Catalogs implementation version.
func Version() string { return version }

// CatalogResolver is a thin convenience wrapper over Resolver/CatalogManager
// for callers that only want the three classic lookup shapes instead of
// building a Request, mirroring CatalogResolver.java's relationship to
// Resolver/CatalogQuerier in the original implementation.
type CatalogResolver struct {
	resolver *Resolver
}

// NewCatalogResolver builds a CatalogResolver from cfg.
func NewCatalogResolver(cfg *Config) *CatalogResolver {
	return &CatalogResolver{resolver: NewResolver(cfg)}
}

// Manager exposes the underlying CatalogManager for callers that need the
// full Request-based API alongside these convenience methods.
func (cr *CatalogResolver) Manager() *CatalogManager { return cr.resolver.Manager }

// LookupPublic resolves a public identifier.
func (cr *CatalogResolver) LookupPublic(publicID string) (string, bool) {
	res := cr.resolver.Manager.LookupPublic(publicID)
	return res.ResolvedURI, res.Found
}

// LookupSystem resolves a system identifier.
func (cr *CatalogResolver) LookupSystem(systemID string) (string, bool) {
	res := cr.resolver.Manager.LookupSystem(systemID)
	return res.ResolvedURI, res.Found
}

// LookupURI resolves a plain URI, with no nature/purpose constraint.
func (cr *CatalogResolver) LookupURI(uri string) (string, bool) {
	res := cr.resolver.Manager.LookupURI(uri, "", "")
	return res.ResolvedURI, res.Found
}
