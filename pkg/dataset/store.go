package dataset

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"sort"
	"sync"
)

// ErrDatasetNotFound is returned when a named dataset is not loaded
var ErrDatasetNotFound = errors.New("dataset not found")

// Store keeps named datasets loaded from a data directory. It is safe for
// concurrent use; the server reloads it on a schedule while requests read
// from it.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
}

// NewStore creates an empty dataset store
func NewStore() *Store {
	return &Store{datasets: make(map[string]*Dataset)}
}

// Put stores a dataset under a name, replacing any previous dataset with
// that name.
func (s *Store) Put(name string, d *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[name] = d
}

// Get returns the named dataset.
func (s *Store) Get(name string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.datasets[name]
	if !ok {
		return nil, ErrDatasetNotFound
	}
	return d, nil
}

// Names returns the sorted names of all loaded datasets.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.datasets))
	for name := range s.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Replace swaps the full contents of the store in one step, dropping
// datasets absent from the new set.
func (s *Store) Replace(datasets map[string]*Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets = datasets
}

// Fingerprint returns a stable content hash of the dataset, used to key
// rendered-report caches.
func (d *Dataset) Fingerprint() string {
	h := sha256.New()

	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v)) //nolint:gosec // hashing, not arithmetic
		h.Write(buf[:])
	}
	writeString := func(v string) {
		writeInt(len(v))
		h.Write([]byte(v))
	}

	for _, year := range d.years {
		writeInt(year)
	}
	for i := range d.rows {
		r := &d.rows[i]
		writeInt(r.Year)
		writeInt(r.Period)
		writeString(r.Code1)
		writeString(r.Code2)
		writeString(r.Code3)
		writeString(r.Name1)
		writeString(r.Name2)
		writeString(r.Name3)
		writeString(r.StatementType)
		writeString(r.AccountCode)
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(r.Amount))
		h.Write(buf[:])
	}

	return hex.EncodeToString(h.Sum(nil))
}
