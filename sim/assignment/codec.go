package assignment

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/codedsim/sim"
)

// codecVersion is the document version written by Encode.
const codecVersion = 1

// maxDecodedRows bounds the rows a document may hold. Decode checks it
// before replaying any count.
const maxDecodedRows = 1 << 26

// document is the persisted form of an assignment. Only non-zero cells are
// written, one row per non-empty batch.
type document struct {
	Version    int      `yaml:"version"`
	Identifier string   `yaml:"identifier"`
	Batches    int      `yaml:"batches"`
	Partitions int      `yaml:"partitions"`
	Checksum   string   `yaml:"checksum"`
	Rows       []rowDoc `yaml:"rows"`
}

type rowDoc struct {
	Batch  int         `yaml:"batch"`
	Counts map[int]int `yaml:"counts,flow"`
}

// Encode writes a as a YAML document keyed by identifier. Only non-zero
// cells are visited, so a Sparse assignment is never expanded to a table.
func Encode(w io.Writer, identifier string, a sim.Assignment) error {
	doc := document{
		Version:    codecVersion,
		Identifier: identifier,
		Batches:    a.NumBatches(),
		Partitions: a.NumPartitions(),
		Checksum:   checksum(a),
	}
	for b := 0; b < a.NumBatches(); b++ {
		var counts map[int]int
		a.ForEachNonZero(b, func(p, n int) {
			if counts == nil {
				counts = make(map[int]int)
			}
			counts[p] = n
		})
		if counts != nil {
			doc.Rows = append(doc.Rows, rowDoc{Batch: b, Counts: counts})
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding assignment %s: %w", identifier, err)
	}
	return enc.Close()
}

// Decode reads a document written by Encode into an assignment of the given
// kind. Unknown fields, out-of-range cells, non-positive counts, oversized
// shapes or totals and checksum mismatches are reported as sim.ErrCorrupt.
func Decode(r io.Reader, kind string) (string, sim.Assignment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("reading assignment: %w", err)
	}
	var doc document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return "", nil, fmt.Errorf("parsing assignment: %v: %w", err, sim.ErrCorrupt)
	}
	if doc.Version != codecVersion {
		return "", nil, fmt.Errorf("assignment version %d, want %d: %w", doc.Version, codecVersion, sim.ErrCorrupt)
	}
	if doc.Batches > sim.MaxBatches || doc.Partitions > maxDecodedRows {
		return "", nil, fmt.Errorf("assignment %s shape %dx%d exceeds %dx%d: %w",
			doc.Identifier, doc.Batches, doc.Partitions, sim.MaxBatches, maxDecodedRows, sim.ErrCorrupt)
	}
	a, err := New(kind, doc.Batches, doc.Partitions)
	if err != nil {
		return "", nil, fmt.Errorf("assignment %s: %v: %w", doc.Identifier, err, sim.ErrCorrupt)
	}
	total := 0
	for _, row := range doc.Rows {
		for _, p := range sortedPartitions(row.Counts) {
			n := row.Counts[p]
			if n <= 0 {
				return "", nil, fmt.Errorf("cell (%d, %d) has count %d: %w", row.Batch, p, n, sim.ErrCorrupt)
			}
			if n > maxDecodedRows-total {
				return "", nil, fmt.Errorf("cell (%d, %d) count %d takes the document past %d rows: %w",
					row.Batch, p, n, maxDecodedRows, sim.ErrCorrupt)
			}
			total += n
			for i := 0; i < n; i++ {
				if err := a.Increment(row.Batch, p); err != nil {
					return "", nil, fmt.Errorf("assignment %s: %v: %w", doc.Identifier, err, sim.ErrCorrupt)
				}
			}
		}
	}
	if got := checksum(a); got != doc.Checksum {
		return "", nil, fmt.Errorf("assignment %s checksum %s, want %s: %w", doc.Identifier, got, doc.Checksum, sim.ErrCorrupt)
	}
	return doc.Identifier, a, nil
}

// checksum hashes the shape and every non-zero cell in (batch, partition)
// order, streaming cells into xxh3 without materialising the table.
func checksum(a sim.Assignment) string {
	h := xxh3.New()
	var buf [8]byte
	write := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	write(a.NumBatches())
	write(a.NumPartitions())
	for b := 0; b < a.NumBatches(); b++ {
		a.ForEachNonZero(b, func(p, n int) {
			write(b)
			write(p)
			write(n)
		})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// sortedPartitions returns the keys of counts in ascending order.
func sortedPartitions(counts map[int]int) []int {
	keys := make([]int, 0, len(counts))
	for p := range counts {
		keys = append(keys, p)
	}
	sort.Ints(keys)
	return keys
}
