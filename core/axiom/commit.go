/*
   Copyright The containerd Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package axiom is the verification layer: the single gate every syscall
// passes through, and the sole owner of the system log and the
// hash-chained commit log. Nothing outside this package appends to either.
package axiom

// CommitKind is the commit_type discriminant. This order is frozen: it
// participates in the commit hash byte-for-byte, so renumbering it breaks
// every previously computed hash chain.
type CommitKind uint8

const (
	CommitGenesis CommitKind = iota
	CommitProcessCreated
	CommitProcessExited
	CommitProcessFaulted
	CommitCapInserted
	CommitCapRemoved
	CommitCapGranted
	CommitEndpointCreated
	CommitEndpointDestroyed
	CommitMessageSent
)

// CommitType carries the fields for whichever CommitKind it holds. Go has
// no tagged union, so this is a flat struct with a Kind discriminant and
// per-variant fields left zero when unused — the same shape the wire
// encoding and the hash function both key off of.
type CommitType struct {
	Kind CommitKind

	// ProcessCreated
	PID         uint64
	Parent      uint64
	ProcessName string

	// ProcessExited
	Code int32

	// ProcessFaulted
	Reason      uint32
	Description string

	// CapInserted / CapRemoved (PID, Slot also used here)
	Slot       uint32
	CapID      uint64
	ObjectType uint8
	ObjectID   uint64
	Perms      uint8

	// CapGranted
	FromPID  uint64
	ToPID    uint64
	FromSlot uint32
	ToSlot   uint32
	NewCapID uint64

	// EndpointCreated / EndpointDestroyed
	EndpointID uint64
	Owner      uint64

	// MessageSent (FromPID and EndpointID double as from_pid/to_endpoint)
	Tag  uint32
	Size uint64
}

// CommitID is a 32-byte hash chain link.
type CommitID [32]byte

// EventID is a SysLog request id; a commit's CausedBy points to the
// request that produced it.
type EventID uint64

// Commit is one entry in the hash-chained log. Message payloads are never
// stored here, only metadata (see CommitType's MessageSent fields).
type Commit struct {
	ID         CommitID
	PrevCommit CommitID
	Seq        uint64
	Timestamp  uint64
	Type       CommitType
	CausedBy   *EventID
}

// computeHash reproduces the field order hashed upstream: prev_commit,
// seq, timestamp, discriminant byte, then the type-specific fields in
// declaration order.
func computeHash(c Commit) CommitID {
	f := NewHasher()
	f.WriteBytes(c.PrevCommit[:])
	f.WriteU64(c.Seq)
	f.WriteU64(c.Timestamp)
	f.WriteByte(byte(c.Type.Kind))

	t := c.Type
	switch t.Kind {
	case CommitGenesis:
		// no fields
	case CommitProcessCreated:
		f.WriteU64(t.PID)
		f.WriteU64(t.Parent)
		f.WriteStr(t.ProcessName)
	case CommitProcessExited:
		f.WriteU64(t.PID)
		f.WriteI32(t.Code)
	case CommitProcessFaulted:
		f.WriteU64(t.PID)
		f.WriteU32(t.Reason)
		f.WriteStr(t.Description)
	case CommitCapInserted:
		f.WriteU64(t.PID)
		f.WriteU32(t.Slot)
		f.WriteU64(t.CapID)
		f.WriteByte(t.ObjectType)
		f.WriteU64(t.ObjectID)
		f.WriteByte(t.Perms)
	case CommitCapRemoved:
		f.WriteU64(t.PID)
		f.WriteU32(t.Slot)
	case CommitCapGranted:
		f.WriteU64(t.FromPID)
		f.WriteU64(t.ToPID)
		f.WriteU32(t.FromSlot)
		f.WriteU32(t.ToSlot)
		f.WriteU64(t.NewCapID)
		f.WriteByte(t.Perms)
	case CommitEndpointCreated:
		f.WriteU64(t.EndpointID)
		f.WriteU64(t.Owner)
	case CommitEndpointDestroyed:
		f.WriteU64(t.EndpointID)
	case CommitMessageSent:
		f.WriteU64(t.FromPID)
		f.WriteU64(t.EndpointID)
		f.WriteU32(t.Tag)
		f.WriteU64(t.Size)
	}

	return CommitID(f.Sum())
}
