package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Resolver is the top-level entry point: Lookup for catalog-only queries,
// Resolve for lookup-then-fetch, matching spec.md §6's two named operations.
// It owns a CatalogManager (loading/caching/matching) and a Fetcher
// (turning a resolved URI into bytes), wired together with RDDL
// post-processing and the always_resolve/mask_jar_uris options.
type Resolver struct {
	Manager *CatalogManager
	Fetcher *Fetcher
	Logger  *Logger
}

// NewResolver builds a Resolver from cfg, with a tolerant loader and a
// discarding logger (set Logger.w via NewLogger to capture trace output).
func NewResolver(cfg *Config) *Resolver {
	if cfg == nil {
		cfg = NewConfig()
	}
	loader := NewLoader(nil)
	loader.FixWin = cfg.FixWindowsSystemIdentifiers
	mgr := NewManager(cfg, loader)
	return &Resolver{Manager: mgr, Fetcher: NewFetcher(cfg), Logger: NewLogger(nil)}
}

// Lookup runs the catalog-only matching algorithm for req: the entity track
// (system/public identifiers) when req selects it, otherwise the URI track.
func (r *Resolver) Lookup(req *Request) LookupResult {
	if req.IsEntityTrack() || req.SystemID != "" || req.PublicID != "" || req.EntityName != "" {
		return r.Manager.LookupEntity(req)
	}
	if req.URI != "" {
		return r.Manager.LookupURI(req.URI, req.Nature, req.Purpose)
	}
	return LookupResult{}
}

// Resolve runs Lookup, then the RDDL post-pass (§4.6), then the fetch layer
// (§4.7), honoring always_resolve (fall back to the request's own absolute
// URI on a catalog miss instead of failing) and mask_jar_uris (§3's
// jar/classpath masking: ResolvedURI stays the requester's own URI while
// LocalURI carries the jar:/classpath: URI actually opened).
func (r *Resolver) Resolve(ctx context.Context, req *Request) (*Response, error) {
	corrID := NewCorrelationID()
	r.Logger.Request(corrID, fmt.Sprintf("uri=%q system=%q public=%q entity=%q", req.URI, req.SystemID, req.PublicID, req.EntityName))

	lookup := r.Lookup(req)
	resolvedURI := lookup.ResolvedURI
	requesterURI, _ := req.AbsoluteURI()

	if !lookup.Found {
		if !r.Manager.Config.AlwaysResolve {
			r.Logger.Response(corrID, "unresolved")
			return &Response{Request: req, Resolved: false}, nil
		}
		if requesterURI == "" {
			r.Logger.Response(corrID, "unresolved, no absolute URI to fall back to")
			return &Response{Request: req, Resolved: false}, nil
		}
		resolvedURI = requesterURI
	}

	if r.Manager.Config.ParseRDDL && req.Nature != "" && req.Purpose != "" && !req.IsEntityTrack() {
		if href, ok := r.rddlResolve(ctx, resolvedURI, req.Nature, req.Purpose); ok {
			resolvedURI = href
		}
	}

	resp, err := r.Fetcher.Fetch(ctx, req, resolvedURI)
	if err != nil {
		r.Logger.Error(corrID, err.Error())
		var denied *AccessDeniedError
		if errors.As(err, &denied) {
			return &Response{Request: req, Resolved: false}, nil
		}
		return nil, err
	}

	if r.Manager.Config.MaskJarURIs && isMaskable(resolvedURI) && requesterURI != "" {
		resp.ResolvedURI = requesterURI
	}

	r.Logger.Response(corrID, resp.ResolvedURI)
	return resp, nil
}

func isMaskable(uri string) bool {
	u, err := ParseURI(uri)
	if err != nil {
		return false
	}
	scheme := u.Scheme()
	return scheme == "jar" || scheme == "classpath"
}

// rddlResolve fetches docURI, scans it for a resource matching nature and
// purpose, and, per the uri_for_system-adjacent EXPANSION in SPEC_FULL.md
// §1 (RDDL lookup recurses through the catalog on the discovered href
// before falling back to the bare href), re-runs a URI-track lookup on the
// discovered href before accepting it directly. Results are cached by
// (docURI, nature, purpose) via the manager's golang-lru cache so repeated
// namespace lookups within one process don't re-fetch/re-parse.
func (r *Resolver) rddlResolve(ctx context.Context, docURI, nature, purpose string) (string, bool) {
	cacheKey := docURI + "|" + nature + "|" + purpose
	if href, ok := r.Manager.rddlCacheGet(cacheKey); ok {
		return href, true
	}

	docResp, err := r.Fetcher.Fetch(ctx, &Request{URI: docURI, OpenStream: true}, docURI)
	if err != nil || docResp == nil || docResp.Stream == nil {
		return "", false
	}
	defer docResp.Stream.Close()

	resources, err := ParseRDDL(docURI, docResp.Stream)
	if err != nil {
		if r.Logger != nil {
			r.Logger.Error("", err.Error())
		}
		return "", false // RDDL failures are always tolerated, per spec.md §7
	}

	match, ok := SelectRDDLResource(resources, nature, purpose)
	if !ok {
		return "", false
	}

	href := match.Href
	if res := r.Manager.LookupURI(href, nature, purpose); res.Found {
		href = res.ResolvedURI
	}

	r.Manager.rddlCacheSet(cacheKey, href)
	return href, true
}
