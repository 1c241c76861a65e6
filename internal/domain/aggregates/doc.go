// Package aggregates defines domain-facing aggregate contracts and the coded error taxonomy.
//
// Contracts avoid persistence and transport details; they mark the write boundaries
// where conversation invariants are enforced atomically.
package aggregates
