// Package store implements sim.ResultStore on a directory tree:
//
//	<root>/<solver>/<identifier>.csv              per-trial table
//	<root>/<solver>/assignments/<key>.yaml        cached assignment
//
// Result tables are read by external plotting tools, so the column names
// (load, delay, encode, reduce, covered) and the identifier scheme are a
// compatibility contract.
package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/codedsim/sim"
	"github.com/inference-sim/codedsim/sim/assignment"
)

// resultColumns is the header of every result table.
var resultColumns = []string{"load", "delay", "encode", "reduce", "covered"}

// DirStore is a directory-backed sim.ResultStore. Loaded assignments are
// memoised by path and kind and cloned on every return, so callers may
// mutate them.
//
// Thread-safety: safe for concurrent use; concurrent writers of the same key
// race at the filesystem level (last rename wins).
type DirStore struct {
	root  string
	cache *xsync.MapOf[string, sim.Assignment]
}

var _ sim.ResultStore = (*DirStore)(nil)

// New returns a DirStore rooted at root. The directory is created lazily on
// the first write.
func New(root string) *DirStore {
	return &DirStore{root: root, cache: xsync.NewMapOf[string, sim.Assignment]()}
}

// Root returns the store's root directory.
func (s *DirStore) Root() string {
	return s.root
}

// AssignmentPath returns the file holding the assignment for (solver, key).
func (s *DirStore) AssignmentPath(solver, key string) string {
	return filepath.Join(s.root, solver, "assignments", key+".yaml")
}

// ResultPath returns the file holding the trial table for (solver, identifier).
func (s *DirStore) ResultPath(solver, identifier string) string {
	return filepath.Join(s.root, solver, identifier+".csv")
}

// LoadAssignment implements sim.ResultStore.
func (s *DirStore) LoadAssignment(solver, key, kind string) (sim.Assignment, error) {
	path := s.AssignmentPath(solver, key)
	ck := cacheKey(path, kind)
	if a, ok := s.cache.Load(ck); ok {
		return a.Clone(), nil
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	id, a, err := assignment.Decode(bytes.NewReader(data), kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if id != key {
		return nil, fmt.Errorf("%s: holds assignment %q, want %q: %w", path, id, key, sim.ErrCorrupt)
	}
	s.cache.Store(ck, a)
	return a.Clone(), nil
}

// SaveAssignment implements sim.ResultStore.
func (s *DirStore) SaveAssignment(solver, key string, a sim.Assignment) error {
	path := s.AssignmentPath(solver, key)
	var buf bytes.Buffer
	if err := assignment.Encode(&buf, key, a); err != nil {
		return err
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	// the next load decodes the new file in whatever kind it asks for
	for kind := range sim.ValidAssignmentKinds {
		s.cache.Delete(cacheKey(path, kind))
	}
	logrus.Debugf("saved assignment %s", path)
	return nil
}

// SaveResult implements sim.ResultStore. One row is written per trial.
func (s *DirStore) SaveResult(r *sim.Result) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(resultColumns); err != nil {
		return err
	}
	for _, t := range r.Samples {
		row := []string{
			formatFloat(t.Load),
			formatFloat(t.Delay),
			formatFloat(t.Encode),
			formatFloat(t.Reduce),
			strconv.Itoa(t.Covered),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	path := s.ResultPath(r.Solver, r.Identifier)
	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	logrus.Debugf("saved %d trials to %s", len(r.Samples), path)
	return nil
}

// LoadResult implements sim.ResultStore. The encode, reduce and covered
// columns are optional; missing ones read as zero.
func (s *DirStore) LoadResult(solver string, p sim.Parameters) (*sim.Result, error) {
	path := s.ResultPath(solver, p.Identifier())
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	samples, err := parseTable(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, sim.ErrCorrupt)
	}
	return sim.NewResult(p, solver, len(samples), 1, samples), nil
}

// parseTable reads a result table. load and delay are required columns.
func parseTable(r io.Reader) ([]sim.TrialSample, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty table")
	}
	col := make(map[string]int)
	for i, name := range records[0] {
		col[name] = i
	}
	for _, required := range []string{"load", "delay"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	samples := make([]sim.TrialSample, 0, len(records)-1)
	for line, rec := range records[1:] {
		var t sim.TrialSample
		fields := []struct {
			name string
			dst  *float64
		}{{"load", &t.Load}, {"delay", &t.Delay}, {"encode", &t.Encode}, {"reduce", &t.Reduce}}
		for _, f := range fields {
			i, ok := col[f.name]
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line+2, f.name, err)
			}
			*f.dst = v
		}
		if i, ok := col["covered"]; ok {
			n, err := strconv.Atoi(rec[i])
			if err != nil {
				return nil, fmt.Errorf("line %d column covered: %w", line+2, err)
			}
			t.Covered = n
		}
		samples = append(samples, t)
	}
	return samples, nil
}

// readFile maps a missing file to sim.ErrNotFound and other failures to
// sim.ErrStorageIO.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%s: %w", path, sim.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("reading %s: %v: %w", path, err, sim.ErrStorageIO)
	}
	return data, nil
}

// writeFile writes data through a temporary file and a rename so readers
// never observe a partial artifact.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %v: %w", filepath.Dir(path), err, sim.ErrStorageIO)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("writing %s: %v: %w", path, err, sim.ErrStorageIO)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %v: %w", path, err, sim.ErrStorageIO)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %v: %w", path, err, sim.ErrStorageIO)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %v: %w", path, err, sim.ErrStorageIO)
	}
	return nil
}

// cacheKey identifies a memoised assignment by file and representation.
func cacheKey(path, kind string) string {
	if kind == "" {
		kind = sim.DefaultAssignmentKind
	}
	return kind + ":" + path
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
