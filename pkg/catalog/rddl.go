package catalog

import (
	"encoding/xml"
	"io"
)

const (
	rddlNS = "http://www.rddl.org/"
	xlinkNS = "http://www.w3.org/1999/xlink"
)

// RDDLResource is one xlink-annotated resource element found while scanning
// a namespace document, per spec.md §4.6. Nature/Purpose come from the
// xlink:role/xlink:arcrole attributes; Href is already resolved against the
// running xml:base (or HTML <base href>) stack.
type RDDLResource struct {
	Nature string
	Purpose string
	Href string
}

// ParseRDDL scans r (the content at baseURI) for RDDL resource elements.
// It tracks xml:base the same way the catalog loader does, plus an HTML
// <base href> (for namespace documents that are HTML/XHTML directories
// rather than XML vocabularies), mirroring the inner RddlQuery SAX handler
// in original_source's Resolver.java.
func ParseRDDL(baseURI string, r io.Reader) ([]RDDLResource, error) {
	dec := xml.NewDecoder(r)
	bases := []string{baseURI}
	var out []RDDLResource

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, &RDDLParseError{URI: baseURI, Err: err}
		}

		switch se := tok.(type) {
		case xml.StartElement:
			base := bases[len(bases)-1]
			for _, a := range se.Attr {
				if a.Name.Space == xmlNS && a.Name.Local == "base" {
					if resolved, err := ResolveURI(base, a.Value); err == nil {
						base = resolved
					}
				}
			}
			if se.Name.Local == "base" {
				if href, ok := attr(se, "href"); ok {
					if resolved, err := ResolveURI(base, href); err == nil {
						base = resolved
						// An HTML <base href> applies to the rest of the
						// document, not only to its own element.
						for i := range bases {
							bases[i] = base
						}
					}
				}
			}
			bases = append(bases, base)

			if se.Name.Space == rddlNS && se.Name.Local == "resource" {
				if href, hasHref := xlinkAttr(se, "href"); hasHref {
					resolved, err := ResolveURI(base, href)
					if err == nil {
						role, _ := xlinkAttr(se, "role")
						arcrole, _ := xlinkAttr(se, "arcrole")
						out = append(out, RDDLResource{Nature: role, Purpose: arcrole, Href: resolved})
					}
				}
			}
		case xml.EndElement:
			if len(bases) > 1 {
				bases = bases[:len(bases)-1]
			}
		}
	}
}

func xlinkAttr(se xml.StartElement, local string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Space == xlinkNS && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// SelectRDDLResource returns the first parsed resource matching nature and
// purpose (an empty request axis matches anything), in document order.
func SelectRDDLResource(resources []RDDLResource, nature, purpose string) (RDDLResource, bool) {
	for _, res := range resources {
		if nature != "" && nature != NatureAny && res.Nature != "" && res.Nature != nature {
			continue
		}
		if purpose != "" && purpose != PurposeAny && res.Purpose != "" && res.Purpose != purpose {
			continue
		}
		return res, true
	}
	return RDDLResource{}, false
}
