// Package store persists compressed records as a single JSON file with a
// size quota. The backing file maps document id to record and round-trips
// exactly through save/load. A corrupt or missing file yields an empty
// store, never an error.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/parchmentlabs/engram/pkg/logger"
	"github.com/parchmentlabs/engram/pkg/memory"
)

const (
	// FileName is the backing file inside the store directory.
	FileName = "memory.json"

	// DefaultQuotaKB bounds the backing file size when no quota is given.
	DefaultQuotaKB = 2000

	// quotaTarget is the fraction of the quota eviction shrinks to. Going
	// below the limit itself avoids evict/re-grow oscillation at the
	// boundary.
	quotaTarget = 0.9

	// citationWindow is the number of context characters kept on each side
	// of a citation match.
	citationWindow = 100
)

// Store is the durable record store. All mutations funnel through a single
// write lock around the whole mutate-persist-evict sequence; reads share a
// read lock.
type Store struct {
	path    string
	quotaKB uint
	logger  *slog.Logger

	mu      sync.RWMutex
	records map[string]*memory.Record
}

// Config holds configuration for the store.
type Config struct {
	// Dir is the directory holding the backing file. Created if missing.
	Dir string

	// QuotaKB is the maximum backing file size in kilobytes. Defaults to
	// DefaultQuotaKB when zero.
	QuotaKB uint

	// Logger defaults to a no-op logger.
	Logger *slog.Logger
}

// Open creates the store directory if needed and loads the backing file.
func Open(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("store dir is required")
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	quotaKB := cfg.QuotaKB
	if quotaKB == 0 {
		quotaKB = DefaultQuotaKB
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	s := &Store{
		path:    filepath.Join(cfg.Dir, FileName),
		quotaKB: quotaKB,
		logger:  log,
		records: make(map[string]*memory.Record),
	}

	s.load()

	return s, nil
}

// load reads the backing file into memory. Any failure leaves the store
// empty; a record that fails to decode is skipped, not fatal.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("reading backing file", "path", s.path, "error", err)
		}
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Error("backing file is corrupt, starting empty", "path", s.path, "error", err)
		return
	}

	records := make(map[string]*memory.Record, len(raw))
	for id, entry := range raw {
		var record memory.Record
		if err := json.Unmarshal(entry, &record); err != nil {
			s.logger.Warn("skipping undecodable record", "id", id, "error", err)
			continue
		}
		record.Clip()
		records[id] = &record
	}

	s.records = records
	s.logger.Info("loaded memory store", "records", len(records))
}

// Put inserts or overwrites a record, persists, and enforces the quota.
// Persist failures are logged; the in-memory state stays authoritative and
// the file is stale until the next successful persist.
func (s *Store) Put(record *memory.Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("record with id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := cloneRecord(record)
	clone.Clip()
	s.records[clone.ID] = clone

	if err := s.persist(); err != nil {
		s.logger.Error("persisting store", "error", err)
		return nil
	}

	s.enforceQuota()

	return nil
}

// Remove deletes one record and persists.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return memory.ErrNotFound
	}

	delete(s.records, id)

	if err := s.persist(); err != nil {
		s.logger.Error("persisting store", "error", err)
	}

	return nil
}

// Get returns a copy of the record for the given id.
func (s *Store) Get(id string) (*memory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, memory.ErrNotFound
	}

	return cloneRecord(record), nil
}

// List returns listings for every record, sorted by id.
func (s *Store) List() []memory.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listings := make([]memory.Listing, 0, len(s.records))
	for _, record := range s.records {
		listings = append(listings, record.Listing())
	}

	sort.Slice(listings, func(i, j int) bool { return listings[i].ID < listings[j].ID })

	return listings
}

// Snapshot returns copies of every record, sorted by id.
func (s *Store) Snapshot() []*memory.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*memory.Record, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, cloneRecord(record))
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	return records
}

// FindCitation searches a record's raw text for the query, case-insensitive,
// and returns a window of surrounding context clipped to the text bounds.
func (s *Store) FindCitation(id, query string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return "", memory.ErrNotFound
	}

	idx := strings.Index(strings.ToLower(record.RawText), strings.ToLower(query))
	if idx < 0 || query == "" {
		return "", memory.ErrNoCitation
	}

	start := idx - citationWindow
	if start < 0 {
		start = 0
	}
	end := idx + len(query) + citationWindow
	if end > len(record.RawText) {
		end = len(record.RawText)
	}

	// Window edges land at byte offsets, not rune boundaries. Shrink
	// toward the match until both ends are rune starts; the match itself
	// is a valid substring so it is never cut.
	for start < idx && !utf8.RuneStart(record.RawText[start]) {
		start++
	}
	for end > idx && end < len(record.RawText) && !utf8.RuneStart(record.RawText[end]) {
		end--
	}

	return record.RawText[start:end], nil
}

// Reload replaces the in-memory state with the current backing file
// contents. Used when an external writer changes the file.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
}

// Close releases store resources.
func (s *Store) Close() error {
	return nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// persist atomically writes the full record map. The payload goes to a
// uniquely-named temp file in the same directory and is renamed into place,
// so a crash mid-write cannot corrupt a previously valid file.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	tmp := s.path + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing store file: %w", err)
	}

	return nil
}

// enforceQuota evicts records in ascending id order until the backing file
// is at or below the eviction target, re-persisting and re-measuring after
// each eviction. Ascending id approximates oldest-first; ids are hashes, so
// the order is content-oblivious.
func (s *Store) enforceQuota() {
	quotaBytes := float64(s.quotaKB) * 1024
	size := s.fileSize()

	s.logger.Debug("memory check", "size_kb", size/1024, "quota_kb", s.quotaKB)

	if size <= quotaBytes {
		return
	}

	target := quotaBytes * quotaTarget

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	s.logger.Warn("memory quota exceeded, evicting", "size_kb", size/1024, "target_kb", target/1024)

	for size > target && len(ids) > 0 {
		oldest := ids[0]
		ids = ids[1:]
		delete(s.records, oldest)

		s.logger.Info("evicted record", "id", oldest)

		if err := s.persist(); err != nil {
			s.logger.Error("persisting store during eviction", "error", err)
			return
		}
		size = s.fileSize()
	}

	if len(s.records) == 0 && size > target {
		s.logger.Error("store emptied but file still over eviction target", "size_kb", size/1024)
	}
}

func (s *Store) fileSize() float64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return float64(info.Size())
}

func cloneRecord(r *memory.Record) *memory.Record {
	clone := *r
	clone.KeyConcepts = append([]string(nil), r.KeyConcepts...)
	clone.Facts = append([]string(nil), r.Facts...)
	clone.Glossary = make(map[string]string, len(r.Glossary))
	for term, defn := range r.Glossary {
		clone.Glossary[term] = defn
	}
	return &clone
}

// Ensure Store implements memory.Store
var _ memory.Store = (*Store)(nil)
