// Package snapshots persists trending snapshots to disk. Each
// (entity, range) pair gets a directory holding period-keyed archive files
// plus a latest.json pointer overwritten on every run. Writes go through a
// temp file and rename so concurrent readers never observe a partial file.
package snapshots

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gsoc-backend/domain/trending"
)

const latestFile = "latest.json"

// Store reads and writes snapshot files under a base directory.
type Store struct {
	baseDir string
}

// NewStore creates a snapshot store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// PeriodKey returns the archive filename stem for a range at time t.
// Yearly uses YYYY, weekly the ISO-8601 week (Monday-start, week 1 holds
// the year's first Thursday), and both monthly and daily use YYYY-MM —
// daily runs share their month's archive file, matching the upstream
// naming.
func PeriodKey(rng trending.Range, t time.Time) string {
	t = t.UTC()
	switch rng {
	case trending.RangeYearly:
		return fmt.Sprintf("%04d", t.Year())
	case trending.RangeWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return t.Format("2006-01")
	}
}

// Write persists snap twice: to its period-keyed archive file and to the
// latest pointer. Both writes are atomic (temp file + rename).
func (s *Store) Write(snap trending.Snapshot, at time.Time) error {
	dir := s.dirFor(snap.Entity, snap.Range)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	archive := filepath.Join(dir, PeriodKey(snap.Range, at)+".json")
	if err := writeAtomic(archive, data); err != nil {
		return fmt.Errorf("write archive %s: %w", archive, err)
	}

	latest := filepath.Join(dir, latestFile)
	if err := writeAtomic(latest, data); err != nil {
		return fmt.Errorf("write latest pointer %s: %w", latest, err)
	}

	return nil
}

// LoadPrevious returns the prior snapshot for (entity, rng): the latest
// pointer if present, otherwise the newest archive file by name, otherwise
// nil for a cold start.
func (s *Store) LoadPrevious(entity trending.Entity, rng trending.Range) (*trending.Snapshot, error) {
	dir := s.dirFor(entity, rng)

	snap, err := s.readFile(filepath.Join(dir, latestFile))
	if err == nil {
		return snap, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	archives, err := s.archiveNames(dir)
	if err != nil || len(archives) == 0 {
		return nil, err
	}
	return s.readFile(filepath.Join(dir, archives[0]))
}

// ReadLatest returns the most recent snapshot for (entity, rng), or nil if
// none has been generated yet.
func (s *Store) ReadLatest(entity trending.Entity, rng trending.Range) (*trending.Snapshot, error) {
	snap, err := s.readFile(filepath.Join(s.dirFor(entity, rng), latestFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	return snap, err
}

func (s *Store) dirFor(entity trending.Entity, rng trending.Range) string {
	return filepath.Join(s.baseDir, string(entity), string(rng))
}

// archiveNames lists archive files newest-first by filename. Period keys
// sort lexicographically in chronological order within a range.
func (s *Store) archiveNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == latestFile || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (s *Store) readFile(path string) (*trending.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap trending.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// writeAtomic writes data to a temp file in the target directory and
// renames it over path. Readers see either the old file or the new one,
// never a truncated one.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
