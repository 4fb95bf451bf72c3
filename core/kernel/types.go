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

// Package kernel implements the execution layer of the capability-secured
// core: the process table, capability spaces, endpoints, and the syscall
// handlers that mutate them. Every mutating path here returns the commits
// its caller (the axiom gateway) must append; KernelCore never appends to
// a commit log itself.
package kernel

import "fmt"

// ProcessID identifies a process. pid 0 is reserved for the supervisor and
// pid 1 for the init process; both are assigned during bootstrap.
type ProcessID uint64

// CapSlot is a dense, per-process slot number inside a CapabilitySpace.
type CapSlot uint32

// EndpointID identifies a message-queue object.
type EndpointID uint64

// CapID is the monotonic, system-wide identity of a capability, distinct
// from the slot it currently occupies.
type CapID uint64

// ObjectType names the kind of kernel object a capability refers to.
type ObjectType uint8

const (
	ObjectTypeEndpoint ObjectType = iota
	ObjectTypeProcess
	ObjectTypeMemory
	ObjectTypeIRQ
	ObjectTypeIoPort
	ObjectTypeConsole
)

func (t ObjectType) String() string {
	switch t {
	case ObjectTypeEndpoint:
		return "Endpoint"
	case ObjectTypeProcess:
		return "Process"
	case ObjectTypeMemory:
		return "Memory"
	case ObjectTypeIRQ:
		return "IRQ"
	case ObjectTypeIoPort:
		return "IoPort"
	case ObjectTypeConsole:
		return "Console"
	default:
		return fmt.Sprintf("ObjectType(%d)", uint8(t))
	}
}

// ProcessState tracks a process's position in its lifecycle.
type ProcessState uint8

const (
	ProcessStateRunning ProcessState = iota
	ProcessStateBlocked
	ProcessStateZombie
)

func (s ProcessState) String() string {
	switch s {
	case ProcessStateRunning:
		return "Running"
	case ProcessStateBlocked:
		return "Blocked"
	case ProcessStateZombie:
		return "Zombie"
	default:
		return fmt.Sprintf("ProcessState(%d)", uint8(s))
	}
}

// Permissions is the read/write/grant triple carried by every capability.
// A capability's permission set is never mutated in place: derivation and
// grant always produce a new, narrower (or equal) set.
type Permissions struct {
	Read  bool
	Write bool
	Grant bool
}

// ReadOnly returns {read}.
func ReadOnly() Permissions { return Permissions{Read: true} }

// WriteOnly returns {write}.
func WriteOnly() Permissions { return Permissions{Write: true} }

// ReadWrite returns {read, write}.
func ReadWrite() Permissions { return Permissions{Read: true, Write: true} }

// Full returns {read, write, grant}.
func Full() Permissions { return Permissions{Read: true, Write: true, Grant: true} }

// Subset reports whether p grants nothing that other does not.
func (p Permissions) Subset(other Permissions) bool {
	if p.Read && !other.Read {
		return false
	}
	if p.Write && !other.Write {
		return false
	}
	if p.Grant && !other.Grant {
		return false
	}
	return true
}

// ToByte packs the triple into the single-byte form stored in commits,
// bit 0 = read, bit 1 = write, bit 2 = grant.
func (p Permissions) ToByte() uint8 {
	var b uint8
	if p.Read {
		b |= 0x1
	}
	if p.Write {
		b |= 0x2
	}
	if p.Grant {
		b |= 0x4
	}
	return b
}

// PermissionsFromByte unpacks the single-byte commit form.
func PermissionsFromByte(b uint8) Permissions {
	return Permissions{
		Read:  b&0x1 != 0,
		Write: b&0x2 != 0,
		Grant: b&0x4 != 0,
	}
}

// SystemMetrics is a read-only snapshot of kernel-wide bookkeeping, never
// part of replayed state.
type SystemMetrics struct {
	ProcessCount  int
	TotalIPCCount uint64
	TotalMemory   uint64
	UptimeNanos   uint64
}
