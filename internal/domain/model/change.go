package model

import "time"

// ChangeKind names the store mutation that produced a Change.
type ChangeKind string

// Change kinds.
const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Change describes one committed store mutation together with the full
// state it produced. Snapshot tournaments are never mutated after publication.
type Change struct {
	Version      uint64
	Kind         ChangeKind
	Operation    string
	TournamentID string
	Snapshot     []*Tournament
	At           time.Time
}
