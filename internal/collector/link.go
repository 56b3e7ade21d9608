package collector

import "io"

// LinkCollector collects raw link references from a document.
//
// The references are returned as they appear in the document, without resolution or deduplication.
type LinkCollector interface {
	GetLinks(r io.Reader) ([]string, error)
}

// TagAttribute is a pair of an element name and the attribute holding the link of that element.
type TagAttribute struct {
	Tag       string
	Attribute string
}
