// Package corpus defines the immutable document model the retrieval
// engine ranks over. Documents are created once at index-build time and
// never mutated; reindexing replaces the whole corpus.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/secwise/kbsearch/internal/textproc"
)

// Document is the unit of retrievable text. Identity is a stable hash of
// content and source, never pointer identity: two independently loaded
// copies of the same document carry the same ID and fuse into one result.
type Document struct {
	// ID is sha256(content + "\x00" + source), hex encoded.
	ID string `json:"id"`

	// Content is the raw document text.
	Content string `json:"content"`

	// Source labels where the document came from (file, feed, chunk ref).
	Source string `json:"source"`

	// Metadata carries arbitrary string key-value pairs owned by the caller.
	Metadata map[string]string `json:"metadata,omitempty"`

	tokenizeOnce sync.Once
	tokens       []string
}

// New creates a Document with a content-derived ID.
func New(content, source string, metadata map[string]string) *Document {
	return &Document{
		ID:       ContentID(content, source),
		Content:  content,
		Source:   source,
		Metadata: metadata,
	}
}

// ContentID computes the stable content identifier for a document.
func ContentID(content, source string) string {
	h := sha256.Sum256([]byte(content + "\x00" + source))
	return hex.EncodeToString(h[:])
}

// Tokens returns the document's filtered token sequence. The sequence is
// derived on first use and cached; documents are immutable so the cache
// never invalidates.
func (d *Document) Tokens() []string {
	d.tokenizeOnce.Do(func() {
		d.tokens = textproc.Tokenize(d.Content)
	})
	return d.tokens
}

// Checksum computes a corpus-level checksum over document IDs in order.
// Two corpora with the same documents in the same order share a checksum;
// any reorder, addition, or removal changes it.
func Checksum(docs []*Document) string {
	h := sha256.New()
	for _, d := range docs {
		h.Write([]byte(d.ID))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
