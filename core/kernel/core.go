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

package kernel

import (
	"sort"

	"github.com/nullframe/axiomkernel/core/axiom"
)

// CommitType is re-exported so kernel handlers can build commit
// descriptors without importing axiom under a different name at every
// call site. Kernel methods return these bare descriptors, not full
// axiom.Commit values — id, seq and prev_commit are the commit log's
// business, computed when the gateway actually appends one.
type CommitType = axiom.CommitType

// KernelCore owns every byte of kernel state: the process table, the
// endpoint table, and one CapabilitySpace per process. It never appends to
// a log; every mutating method returns the commits its caller (the axiom
// gateway) must record. KernelCore is single-threaded by design — see the
// concurrency model: there is exactly one writer, the supervisor goroutine
// that drives process_syscall.
type KernelCore struct {
	processes   map[ProcessID]*Process
	endpoints   map[EndpointID]*Endpoint
	capSpaces   map[ProcessID]*CapabilitySpace
	derivations *derivationIndex

	nextEndpointID EndpointID
	nextCapID      CapID
	totalIPCCount  uint64
}

// NewKernelCore returns an empty kernel with no processes registered. The
// caller is expected to run the bootstrap sequence (see
// supervisor.Supervisor.Bootstrap)
// before handing any ordinary syscalls to it.
func NewKernelCore() *KernelCore {
	return &KernelCore{
		processes:   make(map[ProcessID]*Process),
		endpoints:   make(map[EndpointID]*Endpoint),
		capSpaces:   make(map[ProcessID]*CapabilitySpace),
		derivations: newDerivationIndex(),
	}
}

func (k *KernelCore) allocEndpointID() EndpointID {
	k.nextEndpointID++
	return k.nextEndpointID
}

func (k *KernelCore) allocCapID() CapID {
	k.nextCapID++
	return k.nextCapID
}

// RegisterProcess creates a process table entry and its (initially empty)
// capability space, returning a ProcessCreated commit. The caller chooses
// the pid: ordinary processes get one from a host-side allocator, while
// pid 0 and pid 1 are reserved for the two bootstrap registrations.
func (k *KernelCore) RegisterProcess(pid, parent ProcessID, name string, timestamp uint64) (ProcessID, []CommitType) {
	_ = timestamp
	k.processes[pid] = &Process{PID: pid, Parent: parent, Name: name, State: ProcessStateRunning}
	k.capSpaces[pid] = NewCapabilitySpace()

	ct := CommitType{
		Kind:        axiom.CommitProcessCreated,
		PID:         uint64(pid),
		Parent:      uint64(parent),
		ProcessName: name,
	}
	return pid, []CommitType{ct}
}

// GetProcess returns the process table entry for pid.
func (k *KernelCore) GetProcess(pid ProcessID) (*Process, bool) {
	p, ok := k.processes[pid]
	return p, ok
}

// ListProcesses returns every table entry (including Zombies), sorted by
// pid, as handle_list_processes does in the reference implementation.
func (k *KernelCore) ListProcesses() []Process {
	out := make([]Process, 0, len(k.processes))
	for _, p := range k.processes {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// GetCapSpace returns the capability space belonging to pid.
func (k *KernelCore) GetCapSpace(pid ProcessID) (*CapabilitySpace, bool) {
	cs, ok := k.capSpaces[pid]
	return cs, ok
}

// GetEndpoint returns the endpoint table entry for id.
func (k *KernelCore) GetEndpoint(id EndpointID) (*Endpoint, bool) {
	e, ok := k.endpoints[id]
	return e, ok
}

// ListEndpoints returns every endpoint's read-only projection, sorted by id.
func (k *KernelCore) ListEndpoints() []EndpointInfo {
	out := make([]EndpointInfo, 0, len(k.endpoints))
	for _, e := range k.endpoints {
		out = append(out, e.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TotalMemory sums every live process's reported memory size.
func (k *KernelCore) TotalMemory() uint64 {
	var total uint64
	for _, p := range k.processes {
		if p.State == ProcessStateZombie {
			continue
		}
		total += p.Metrics.MemorySize
	}
	return total
}

// TotalPendingMessages sums queue depth across every endpoint.
func (k *KernelCore) TotalPendingMessages() int {
	total := 0
	for _, e := range k.endpoints {
		total += len(e.queue)
	}
	return total
}

// GetSystemMetrics is a read-only aggregate over the live process table and
// IPC counter; a supplemented feature beyond the raw kernel/replay split,
// exposed for the "axiomd inspect metrics" command.
func (k *KernelCore) GetSystemMetrics(uptimeNanos uint64) SystemMetrics {
	live := 0
	for _, p := range k.processes {
		if p.State != ProcessStateZombie {
			live++
		}
	}
	return SystemMetrics{
		ProcessCount:  live,
		TotalIPCCount: k.totalIPCCount,
		TotalMemory:   k.TotalMemory(),
		UptimeNanos:   uptimeNanos,
	}
}

// AxiomCheck is the predicate that authenticates a capability: it looks up
// slot, confirms the object type (when one is required), and confirms the
// held permissions are a superset of required. Every permission-gated use
// of a capability in this package (Send, Receive, SendWithCaps, CapGrant,
// Kill) goes through here. DeriveCapability, DeleteCapability and
// InspectCapability require no held permission and look the slot up
// directly instead.
func AxiomCheck(cs *CapabilitySpace, slot CapSlot, required Permissions, requiredType *ObjectType) (Capability, error) {
	cap, ok := cs.Get(slot)
	if !ok {
		return Capability{}, ErrInvalidCapability
	}
	if requiredType != nil && cap.ObjectType != *requiredType {
		return Capability{}, ErrPermissionDenied
	}
	if !required.Subset(cap.Permissions) {
		return Capability{}, ErrPermissionDenied
	}
	return cap, nil
}

func objectType(t ObjectType) *ObjectType { return &t }
