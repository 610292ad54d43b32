package corpus

import (
	"encoding/json"
	"fmt"
	"os"
)

// fileDocument is the on-disk shape of a corpus entry. The ID is always
// recomputed from content and source on load so a hand-edited file cannot
// desynchronize identity from content.
type fileDocument struct {
	Content  string            `json:"content"`
	Source   string            `json:"source"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// LoadFile reads a JSON corpus file: a list of {content, source, metadata}
// objects in corpus order. How documents are produced upstream (chunking,
// scraping, feeds) is the caller's concern.
func LoadFile(path string) ([]*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file %s: %w", path, err)
	}

	var entries []fileDocument
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus file %s: %w", path, err)
	}

	docs := make([]*Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, New(e.Content, e.Source, e.Metadata))
	}
	return docs, nil
}
