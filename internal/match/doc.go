// Package match owns the live match state shown on the overlay.
//
// Store holds the single authoritative State and applies mutations to it.
// Service is the mutation layer: it validates incoming updates, applies
// them to the Store one at a time and hands every resulting snapshot to a
// Publisher so connected viewers stay in sync.
package match
