package index

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/secwise/kbsearch/internal/corpus"
	kerrors "github.com/secwise/kbsearch/internal/errors"
)

// bundleVersion is the persisted artifact format version.
const bundleVersion = 1

// idfTolerance bounds float drift when comparing persisted IDF/avgdl
// values against a rebuild of the same corpus.
const idfTolerance = 1e-9

// persistedDoc is the on-disk shape of one corpus document.
type persistedDoc struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Source   string            `json:"source"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// bundle is the serialized index artifact: the document collection in
// original order, the statistics tables, the BM25 parameters used, and
// the corpus checksum for consistency verification.
type bundle struct {
	Version   int            `json:"version"`
	Params    Params         `json:"params"`
	Documents []persistedDoc `json:"documents"`
	DocLen    []int          `json:"doc_len"`
	Avgdl     float64        `json:"avgdl"`
	DF        map[string]int `json:"df"`
	Checksum  string         `json:"checksum"`
}

// Save persists the index bundle as JSON. A flock file lock serializes
// writers so two processes cannot interleave writes to the same
// artifact, and the bundle is written to a temp file and renamed into
// place so a concurrent reader never observes a partially written file.
func (x *Index) Save(path string) error {
	b := bundle{
		Version:  bundleVersion,
		Params:   x.params,
		DocLen:   x.docLen,
		Avgdl:    x.avgdl,
		DF:       x.df,
		Checksum: x.checksum,
	}
	b.Documents = make([]persistedDoc, len(x.docs))
	for i, d := range x.docs {
		b.Documents[i] = persistedDoc{
			ID:       d.ID,
			Content:  d.Content,
			Source:   d.Source,
			Metadata: d.Metadata,
		}
	}

	data, err := json.Marshal(b)
	if err != nil {
		return kerrors.Serialization("encode index bundle", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return kerrors.Serialization(fmt.Sprintf("create index directory for %s", path), err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return kerrors.Serialization(fmt.Sprintf("acquire index lock for %s", path), err)
	}
	defer func() { _ = lock.Unlock() }()

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return kerrors.Serialization(fmt.Sprintf("write index bundle to %s", tmpPath), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return kerrors.Serialization(fmt.Sprintf("rename index bundle to %s", path), err)
	}
	return nil
}

// Load reads a persisted index bundle and rebuilds the index from its
// document collection. The statistics tables stored in the bundle are
// verified against the rebuild; any mismatch means the artifact does not
// describe the corpus it carries and the load fails.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, kerrors.IndexNotFound(path)
	}
	if err != nil {
		return nil, kerrors.Serialization(fmt.Sprintf("read index bundle from %s", path), err)
	}

	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, kerrors.Serialization(fmt.Sprintf("decode index bundle from %s", path), err)
	}
	if b.Version != bundleVersion {
		return nil, kerrors.InconsistentIndex(
			fmt.Sprintf("index bundle version %d, want %d", b.Version, bundleVersion))
	}

	docs := make([]*corpus.Document, len(b.Documents))
	for i, pd := range b.Documents {
		doc := corpus.New(pd.Content, pd.Source, pd.Metadata)
		if doc.ID != pd.ID {
			return nil, kerrors.InconsistentIndex(
				fmt.Sprintf("document %d identity mismatch: stored %s, content hashes to %s", i, pd.ID, doc.ID))
		}
		docs[i] = doc
	}

	x, err := Build(docs, b.Params)
	if err != nil {
		return nil, err
	}

	if err := x.verifyAgainst(&b); err != nil {
		return nil, err
	}
	return x, nil
}

// verifyAgainst checks that the bundle's persisted tables match the
// rebuild of its own document collection.
func (x *Index) verifyAgainst(b *bundle) error {
	if b.Checksum != x.checksum {
		return kerrors.InconsistentIndex(
			fmt.Sprintf("corpus checksum mismatch: bundle %s, corpus %s", b.Checksum, x.checksum))
	}
	if len(b.DocLen) != len(x.docLen) {
		return kerrors.InconsistentIndex(
			fmt.Sprintf("document-length table has %d entries for %d documents", len(b.DocLen), len(x.docLen)))
	}
	for i, l := range b.DocLen {
		if l != x.docLen[i] {
			return kerrors.InconsistentIndex(
				fmt.Sprintf("document %d length mismatch: bundle %d, corpus %d", i, l, x.docLen[i]))
		}
	}
	if math.Abs(b.Avgdl-x.avgdl) > idfTolerance {
		return kerrors.InconsistentIndex(
			fmt.Sprintf("avgdl mismatch: bundle %g, corpus %g", b.Avgdl, x.avgdl))
	}
	if len(b.DF) != len(x.df) {
		return kerrors.InconsistentIndex(
			fmt.Sprintf("document-frequency table has %d terms, corpus has %d", len(b.DF), len(x.df)))
	}
	for term, df := range b.DF {
		if x.df[term] != df {
			return kerrors.InconsistentIndex(
				fmt.Sprintf("term %q document frequency mismatch: bundle %d, corpus %d", term, df, x.df[term]))
		}
	}
	return nil
}
