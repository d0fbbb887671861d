package catalog

import (
	"sync"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/hashicorp/go-memdb"
)

// catalogIndex holds the lazily-built lookup structures for one Catalog.
// Exact-match candidates (system/public/uri-name/doctype) go through an
// in-memory indexed table (go-memdb) so a catalog with thousands of
// entries doesn't pay an O(n) scan per query. Prefix matches
// (rewriteSystem/rewriteURI) and suffix matches (systemSuffix/uriSuffix) go
// through immutable radix trees (go-immutable-radix), which natively
// support "longest key that is a prefix of the query" — exactly the
// semantics spec.md §4.3/§4.4 call for. Suffix matching reuses the same
// prefix primitive against the reversed string.
type catalogIndex struct {
	once sync.Once

	db *memdb.MemDB

	rewriteSystems *iradix.Tree
	rewriteURIs    *iradix.Tree
	systemSuffixes *iradix.Tree // keyed by reversed suffix
	uriSuffixes    *iradix.Tree // keyed by reversed suffix
}

// indexRecord is the memdb row type: a tagged key plus the original entry.
type indexRecord struct {
	Seq   int
	Kind  string
	Key   string
	Entry Entry
}

var indexSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		"entry": {
			Name: "entry",
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "Seq"},
				},
				"lookup": {
					Name:   "lookup",
					Unique: false,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "Kind"},
							&memdb.StringFieldIndex{Field: "Key"},
						},
					},
				},
			},
		},
	},
}

// idx returns the lazily built index for c, with entry keys normalized by
// norm so lookups can normalize the query side and compare like with like.
// A Catalog is only ever consulted through one Manager/config in practice,
// so the norm used to build the index is the norm that matters for it.
func (c *Catalog) idx(norm NormalizeFunc) *catalogIndex {
	if norm == nil {
		norm = func(s string) string { return s }
	}
	if c.index == nil {
		c.index = &catalogIndex{}
	}
	c.index.once.Do(c.index.build(c, norm))
	return c.index
}

func (ix *catalogIndex) build(c *Catalog, norm NormalizeFunc) func() {
	return func() {
		db, err := memdb.NewMemDB(indexSchema)
		if err != nil {
			panic("catalog: building memdb schema: " + err.Error())
		}
		txn := db.Txn(true)
		seq := 0
		put := func(kind, key string, e Entry) {
			_ = txn.Insert("entry", &indexRecord{Seq: seq, Kind: kind, Key: norm(key), Entry: e})
			seq++
		}
		for _, e := range c.Systems {
			put("system", e.SystemID, e)
		}
		for _, e := range c.Publics {
			put("public", e.PublicID, e)
		}
		for _, e := range c.URIs {
			put("uri", e.Name, e)
		}
		for _, e := range c.Doctypes {
			put("doctype", e.Name, e)
		}
		txn.Commit()
		ix.db = db

		ix.rewriteSystems = buildPrefixTree(c.RewriteSystems, func(e *RewriteSystemEntry) string { return norm(e.SystemIDStart) })
		ix.rewriteURIs = buildPrefixTree(c.RewriteURIs, func(e *RewriteURIEntry) string { return norm(e.URIStart) })
		ix.systemSuffixes = buildSuffixTree(c.SystemSuffixes, func(e *SystemSuffixEntry) string { return norm(e.SystemIDSuffix) })
		ix.uriSuffixes = buildSuffixTree(c.URISuffixes, func(e *URISuffixEntry) string { return norm(e.URISuffix) })
	}
}

func buildPrefixTree[T any](entries []T, key func(T) string) *iradix.Tree {
	tree := iradix.New()
	for _, e := range entries {
		k := []byte(key(e))
		if _, ok := tree.Get(k); ok {
			continue // first in document order wins on an exact duplicate start string
		}
		tree, _, _ = tree.Insert(k, e)
	}
	return tree
}

func buildSuffixTree[T any](entries []T, key func(T) string) *iradix.Tree {
	tree := iradix.New()
	for _, e := range entries {
		k := []byte(reverseString(key(e)))
		if _, ok := tree.Get(k); ok {
			continue
		}
		tree, _, _ = tree.Insert(k, e)
	}
	return tree
}

// exactFirst returns the first (document order) entry of kind whose match
// key equals key, using the memdb "lookup" index.
func (ix *catalogIndex) exactFirst(kind, key string) (Entry, bool) {
	return ix.exactMatching(kind, key, func(Entry) bool { return true })
}

// exactMatching returns the first (document order) entry of kind whose
// match key equals key and which satisfies keep, using the memdb "lookup"
// index to avoid scanning entries with a different key entirely.
func (ix *catalogIndex) exactMatching(kind, key string, keep func(Entry) bool) (Entry, bool) {
	txn := ix.db.Txn(false)
	it, err := txn.Get("entry", "lookup", kind, key)
	if err != nil {
		return nil, false
	}
	// memdb orders rows with equal keys by the byte encoding of Seq, which
	// is not numeric order, so the lowest Seq is picked explicitly.
	var best *indexRecord
	for raw := it.Next(); raw != nil; raw = it.Next() {
		rec := raw.(*indexRecord)
		if keep(rec.Entry) && (best == nil || rec.Seq < best.Seq) {
			best = rec
		}
	}
	if best == nil {
		return nil, false
	}
	return best.Entry, true
}

// longestPrefix returns the entry whose start string is the longest prefix
// of query, along with the length of the matched prefix (needed by the
// caller to compute the unmatched remainder for a rewrite).
func longestPrefix(tree *iradix.Tree, query string) (Entry, int, bool) {
	if tree == nil {
		return nil, 0, false
	}
	k, v, ok := tree.Root().LongestPrefix([]byte(query))
	if !ok {
		return nil, 0, false
	}
	return v.(Entry), len(k), true
}

// longestSuffix returns the entry whose suffix string is the longest
// suffix of query, if any, by matching prefixes of the reversed strings.
func longestSuffix(tree *iradix.Tree, query string) (Entry, bool) {
	e, _, ok := longestPrefix(tree, reverseString(query))
	return e, ok
}
