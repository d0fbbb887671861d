// Package catalog implements the OASIS XML Catalogs 1.1 resolution engine:
// a typed entry model, a lazily-loaded multi-catalog manager, the
// entity/URI/doctype/namespace matching algorithm, and the fetch layer that
// turns a resolved URI into bytes.
package catalog

// Nature and purpose URIs recognized by the resolver. These mirror the
// RDDL nature/purpose vocabulary used to pick a track (entity vs. URI) and,
// for namespace-with-nature/purpose requests, to select a specific
// resource from a namespace document.
const (
	NatureExternalEntity = "http://www.rddl.org/purposes#external-entity"
	NatureDTD            = "http://www.rddl.org/purposes#dtd"
	NatureXMLSchema      = "http://www.w3.org/2001/XMLSchema"
	NatureXMLSchema11    = "http://www.w3.org/XML/XMLSchema/v1.1"
	NatureRelaxNG        = "http://relaxng.org/ns/structure/1.0"
	NatureAny            = "http://www.rddl.org/purposes#any"

	PurposeSchemaValidation = "http://www.rddl.org/purposes#schema-validation"
	PurposeAny              = "http://www.rddl.org/purposes#any"
)

// Prefer values, as used by the "prefer" attribute on group/catalog.
const (
	PreferSystem = "system"
	PreferPublic = "public"
)

// Request describes a single resolution query. At least one of URI,
// PublicID, or EntityName must be set for the request to be meaningful.
type Request struct {
	URI        string
	BaseURI    string
	EntityName string
	PublicID   string
	SystemID   string

	Nature  string
	Purpose string

	Encoding        string
	FollowRedirects bool
	OpenStream      bool
}

// IsEntityTrack reports whether this request should be resolved on the
// entity track (system+public identifier matching) rather than the URI
// track. Per spec: nature external-entity or dtd select the entity track.
func (r *Request) IsEntityTrack() bool {
	return r.Nature == NatureExternalEntity || r.Nature == NatureDTD
}

// AbsoluteURI resolves URI against BaseURI, falling back to whichever of
// the two is already absolute, mirroring ResourceRequest.getAbsoluteURI in
// the original xmlresolver implementation.
func (r *Request) AbsoluteURI() (string, error) {
	if r.BaseURI != "" {
		base, err := ParseURI(r.BaseURI)
		if err == nil && base.IsAbs() {
			if r.URI == "" {
				return base.String(), nil
			}
			resolved, err := base.Resolve(r.URI)
			if err == nil {
				return resolved, nil
			}
		}
	}
	if r.URI != "" {
		u, err := ParseURI(r.URI)
		if err == nil && u.IsAbs() {
			return u.String(), nil
		}
	}
	return "", errNotAbsolute
}

// LookupResult is the outcome of a catalog-only query: either not found, or
// a resolved URI. A lookup never opens a stream.
type LookupResult struct {
	Found       bool
	ResolvedURI string
}

// Response is the outcome of a full Resolve call: lookup followed by fetch.
type Response struct {
	Request     *Request
	ResolvedURI string
	LocalURI    string
	Stream      ReadCloser
	ContentType string
	Encoding    string
	StatusCode  int
	Headers     map[string][]string
	Resolved    bool
}

// ReadCloser mirrors io.ReadCloser; declared locally so model.go has no
// direct io import for readers that just need the type name in signatures.
type ReadCloser interface {
	Read(p []byte) (n int, err error)
	Close() error
}

// Entry is implemented by every catalog entry variant. Kind distinguishes
// the variant without requiring a type switch at every call site; the
// catalog structure itself groups entries by kind (see Catalog in loader.go)
// so matching never needs virtual dispatch over a single polymorphic list.
type Entry interface {
	Kind() EntryKind
	EntryID() string
}

// EntryKind is the discriminant for the Entry interface.
type EntryKind string

const (
	KindPublic         EntryKind = "public"
	KindSystem         EntryKind = "system"
	KindURI            EntryKind = "uri"
	KindRewriteSystem  EntryKind = "rewriteSystem"
	KindRewriteURI     EntryKind = "rewriteURI"
	KindSystemSuffix   EntryKind = "systemSuffix"
	KindURISuffix      EntryKind = "uriSuffix"
	KindDelegatePublic EntryKind = "delegatePublic"
	KindDelegateSystem EntryKind = "delegateSystem"
	KindDelegateURI    EntryKind = "delegateURI"
	KindNextCatalog    EntryKind = "nextCatalog"
	KindDoctype        EntryKind = "doctype"
	KindDocument       EntryKind = "document"
	KindDTDDecl        EntryKind = "dtddecl"
	KindEntity         EntryKind = "entity"
	KindLinktype       EntryKind = "linktype"
	KindNotation       EntryKind = "notation"
	KindSGMLDecl       EntryKind = "sgmldecl"
	KindGroup          EntryKind = "group"
	KindCatalog        EntryKind = "catalog"
)

type base struct {
	ID      string
	BaseURI string
}

func (b base) EntryID() string { return b.ID }

// PublicEntry maps a public identifier to a URI. Prefer is the effective
// prefer value inherited from the nearest enclosing group/catalog at load
// time (innermost wins, per OASIS 1.1 and design note 9a).
type PublicEntry struct {
	base
	PublicID string
	URI      string
	Prefer   string
}

func (e *PublicEntry) Kind() EntryKind { return KindPublic }

// SystemEntry maps an exact system identifier to a URI.
type SystemEntry struct {
	base
	SystemID string
	URI      string
}

func (e *SystemEntry) Kind() EntryKind { return KindSystem }

// URIEntry maps a URI name to a target URI, optionally constrained by
// nature/purpose (empty string means unconstrained on that axis).
type URIEntry struct {
	base
	Name    string
	URI     string
	Nature  string
	Purpose string
}

func (e *URIEntry) Kind() EntryKind { return KindURI }

// RewriteSystemEntry rewrites any system identifier with the given prefix.
type RewriteSystemEntry struct {
	base
	SystemIDStart string
	RewritePrefix string
}

func (e *RewriteSystemEntry) Kind() EntryKind { return KindRewriteSystem }

// RewriteURIEntry rewrites any URI with the given prefix.
type RewriteURIEntry struct {
	base
	URIStart      string
	RewritePrefix string
}

func (e *RewriteURIEntry) Kind() EntryKind { return KindRewriteURI }

// SystemSuffixEntry maps system identifiers by suffix.
type SystemSuffixEntry struct {
	base
	SystemIDSuffix string
	URI            string
}

func (e *SystemSuffixEntry) Kind() EntryKind { return KindSystemSuffix }

// URISuffixEntry maps URIs by suffix.
type URISuffixEntry struct {
	base
	URISuffix string
	URI       string
}

func (e *URISuffixEntry) Kind() EntryKind { return KindURISuffix }

// DelegatePublicEntry isolates a sub-catalog for public identifiers with
// the given prefix.
type DelegatePublicEntry struct {
	base
	PublicIDStart string
	CatalogURI    string
}

func (e *DelegatePublicEntry) Kind() EntryKind { return KindDelegatePublic }

// DelegateSystemEntry isolates a sub-catalog for system identifiers with
// the given prefix.
type DelegateSystemEntry struct {
	base
	SystemIDStart string
	CatalogURI    string
}

func (e *DelegateSystemEntry) Kind() EntryKind { return KindDelegateSystem }

// DelegateURIEntry isolates a sub-catalog for URIs with the given prefix.
type DelegateURIEntry struct {
	base
	URIStart   string
	CatalogURI string
}

func (e *DelegateURIEntry) Kind() EntryKind { return KindDelegateURI }

// NextCatalogEntry chains to another catalog, consulted after the current
// one is exhausted.
type NextCatalogEntry struct {
	base
	CatalogURI string
}

func (e *NextCatalogEntry) Kind() EntryKind { return KindNextCatalog }

// TR9401 extension entries (legacy SGML catalog vocabulary).

type DoctypeEntry struct {
	base
	Name string
	URI  string
}

func (e *DoctypeEntry) Kind() EntryKind { return KindDoctype }

type DocumentEntry struct {
	base
	URI string
}

func (e *DocumentEntry) Kind() EntryKind { return KindDocument }

type DTDDeclEntry struct {
	base
	PublicID string
	URI      string
}

func (e *DTDDeclEntry) Kind() EntryKind { return KindDTDDecl }

type EntityEntry struct {
	base
	Name string
	URI  string
}

func (e *EntityEntry) Kind() EntryKind { return KindEntity }

type LinktypeEntry struct {
	base
	Name string
	URI  string
}

func (e *LinktypeEntry) Kind() EntryKind { return KindLinktype }

type NotationEntry struct {
	base
	Name string
	URI  string
}

func (e *NotationEntry) Kind() EntryKind { return KindNotation }

type SGMLDeclEntry struct {
	base
	URI string
}

func (e *SGMLDeclEntry) Kind() EntryKind { return KindSGMLDecl }
