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

package hostadapter

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/nullframe/axiomkernel/core/kernel"
)

// ProcessHandle is the abstract operations the kernel can perform against
// a worker context, per §6's host adaptation contract. The kernel never
// holds one directly — a fault or exit commit is the kernel's view of what
// a handle's owner (the host) reports happened.
type ProcessHandle interface {
	IsAlive() bool
	Kill() error
	SendBytes(data []byte) error
	MemorySize() uint64
}

// WorkerContext pairs a spawned ProcessHandle with the pid the kernel
// assigned it and a host-side correlation id, minted the way containerd
// mints lease and transfer ids, for log correlation rather than kernel
// identity — the kernel only ever knows the pid.
type WorkerContext struct {
	PID         kernel.ProcessID
	Binary      string
	Correlation uuid.UUID
	Handle      ProcessHandle
	Mailbox     *Mailbox
}

// Registry tracks the live worker contexts a host is juggling, keyed by
// pid, so the poll loop has somewhere to look up a Mailbox for a pid it
// sees in a pending-syscall batch.
type Registry struct {
	contexts map[kernel.ProcessID]*WorkerContext
}

// NewRegistry returns an empty worker-context registry.
func NewRegistry() *Registry {
	return &Registry{contexts: make(map[kernel.ProcessID]*WorkerContext)}
}

// Spawn registers a freshly created worker context under pid, minting a
// correlation id for it.
func (r *Registry) Spawn(pid kernel.ProcessID, binary string, handle ProcessHandle, mailboxPayloadWords int) *WorkerContext {
	wc := &WorkerContext{
		PID:         pid,
		Binary:      binary,
		Correlation: uuid.New(),
		Handle:      handle,
		Mailbox:     NewMailbox(mailboxPayloadWords),
	}
	r.contexts[pid] = wc
	return wc
}

// Get returns the worker context registered for pid.
func (r *Registry) Get(pid kernel.ProcessID) (*WorkerContext, bool) {
	wc, ok := r.contexts[pid]
	return wc, ok
}

// Remove drops pid's worker context, e.g. once the host has finished
// tearing down a context whose process exited or was killed.
func (r *Registry) Remove(pid kernel.ProcessID) {
	delete(r.contexts, pid)
}

// All returns every registered worker context, sorted by pid, for the poll
// loop to scan.
func (r *Registry) All() []*WorkerContext {
	out := make([]*WorkerContext, 0, len(r.contexts))
	for _, wc := range r.contexts {
		out = append(out, wc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// ErrUnknownContext is returned when a pid has no registered worker
// context.
var ErrUnknownContext = fmt.Errorf("no worker context registered for pid")
