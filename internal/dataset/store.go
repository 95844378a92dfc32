// Package dataset provides the file-backed store for the StockCal datasets.
//
// Each dataset is one JSON file in the data directory. Files are read in
// full on every access and replaced in full on every write; a write goes to
// a temp file that is renamed over the target, so a reader or a concurrent
// writer only ever observes one complete document.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/leeaandrob/stockcal/internal/models"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotFound means the dataset file does not exist.
	ErrNotFound = errors.New("dataset not found")

	// ErrCorrupt means the dataset file is not a well-formed document.
	ErrCorrupt = errors.New("dataset corrupt")

	// ErrUnknownKind means the kind has no file.
	ErrUnknownKind = errors.New("unknown dataset kind")
)

// Store reads and replaces dataset files under a directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path of a dataset.
func (s *Store) Path(kind models.Kind) string {
	return filepath.Join(s.dir, kind.FileName())
}

// ReadRaw returns the dataset file exactly as stored, after checking that
// it decodes into the kind's document shape.
func (s *Store) ReadRaw(kind models.Kind) ([]byte, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	data, err := os.ReadFile(s.Path(kind))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, kind)
		}
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}

	if _, err := decode(kind, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Load decodes the dataset into a typed document.
func (s *Store) Load(kind models.Kind) (models.Document, error) {
	data, err := s.ReadRaw(kind)
	if err != nil {
		return nil, err
	}
	return decode(kind, data)
}

// Write replaces the dataset file with doc.
func (s *Store) Write(kind models.Kind, doc models.Document) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	data, err := encode(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	if err := writeAtomic(s.Path(kind), data); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}

	log.Debug().
		Str("dataset", string(kind)).
		Int("records", doc.Len()).
		Int("bytes", len(data)).
		Msg("Dataset replaced")

	return nil
}

// Status describes the health of one dataset file.
type Status struct {
	Kind      models.Kind `json:"kind"`
	OK        bool        `json:"ok"`
	UpdatedAt string      `json:"updatedAt,omitempty"`
	Records   int         `json:"records"`
	Stale     int         `json:"stale,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Check loads every dataset and reports its status. Stale counts the events
// outside the rolling calendar window; nothing is modified.
func (s *Store) Check(now time.Time) []Status {
	statuses := make([]Status, 0, len(models.AllKinds))
	for _, kind := range models.AllKinds {
		st := Status{Kind: kind}
		doc, err := s.Load(kind)
		if err != nil {
			st.Error = err.Error()
			statuses = append(statuses, st)
			continue
		}
		st.OK = true
		st.UpdatedAt = doc.Updated()
		st.Records = doc.Len()
		if events, ok := doc.(*models.EventsDocument); ok {
			st.Stale = len(events.Stale(now))
		}
		statuses = append(statuses, st)
	}
	return statuses
}

func decode(kind models.Kind, data []byte) (models.Document, error) {
	doc := kind.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, kind, err)
	}
	if doc.Updated() == "" {
		return nil, fmt.Errorf("%w: %s: missing updatedAt", ErrCorrupt, kind)
	}
	return doc, nil
}

func encode(doc models.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAtomic writes data to a temp file beside path and renames it into
// place. The temp file is removed on any failure.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
