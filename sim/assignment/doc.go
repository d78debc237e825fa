// Package assignment implements sim.Assignment.
//
// Dense stores the full batch-by-partition table and suits instances with few
// partitions. Sparse keeps only non-zero cells per batch and suits instances
// where T is large and every batch touches a handful of partitions. Both keep
// running batch and partition totals so the invariant checks in
// sim.VerifyAssignment are O(B + T).
//
// Encode and Decode persist an assignment as a YAML document with an xxh3
// checksum over the cell table.
package assignment
