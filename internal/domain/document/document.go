package document

import (
	"github.com/kailas-cloud/textdex/internal/domain"
)

// Document is the indexed document aggregate (immutable value object).
// Replacement requires remove + re-add; there is no in-place update.
type Document struct {
	id       string
	content  string
	metadata map[string]any
}

// New validates and creates a Document.
// ID and content are required; metadata is optional.
func New(id, content string, metadata map[string]any) (Document, error) {
	if id == "" {
		return Document{}, domain.NewValidationError("doc_id")
	}
	if content == "" {
		return Document{}, domain.NewValidationError("content")
	}
	return Document{
		id:       id,
		content:  content,
		metadata: cloneMetadata(metadata),
	}, nil
}

// Record is the external ingestion shape of a document.
type Record struct {
	DocID    string         `json:"doc_id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// FromRecord validates and creates a Document from an ingestion record.
func FromRecord(rec Record) (Document, error) {
	return New(rec.DocID, rec.Content, rec.Metadata)
}

// ToRecord converts the document to its external record shape.
func (d *Document) ToRecord() Record {
	return Record{DocID: d.id, Content: d.content, Metadata: d.Metadata()}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Content returns the document text content.
func (d *Document) Content() string { return d.content }

// Metadata returns a copy of the metadata fields.
func (d *Document) Metadata() map[string]any {
	if d.metadata == nil {
		return map[string]any{}
	}
	return cloneMetadata(d.metadata)
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
