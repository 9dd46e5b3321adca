package secondary

import "context"

// DocumentStore defines the secondary port for durable storage of exported
// transcripts.
type DocumentStore interface {
	// Store persists a document and returns a durable reference to it
	// (an attachment URL or a file:// URI).
	Store(ctx context.Context, doc Document) (string, error)
}

// Document is a rendered export ready for storage.
type Document struct {
	Name        string // file name, e.g. sak_12_20260101_120000.html
	ContentType string
	Data        []byte
	CaseID      int64 // 0 for legacy exports
	Caption     string
}
