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

// StateHash is the deterministic 32-byte digest over the canonical
// serialization of {process table sorted by pid, capability spaces sorted
// by (pid, slot), endpoint table sorted by id}. Message queues, metrics and
// anything clock-derived are excluded — they are volatile, per §4.3. It
// reuses axiom's commit-hash mixer so one H serves both roles the spec
// describes.
func (k *KernelCore) StateHash() [32]byte {
	h := axiom.NewHasher()

	procs := k.ListProcesses()
	h.WriteU64(uint64(len(procs)))
	for _, p := range procs {
		h.WriteU64(uint64(p.PID))
		h.WriteU64(uint64(p.Parent))
		h.WriteStr(p.Name)
		h.WriteByte(byte(p.State))
	}

	pids := make([]ProcessID, 0, len(k.capSpaces))
	for pid := range k.capSpaces {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	h.WriteU64(uint64(len(pids)))
	for _, pid := range pids {
		cs := k.capSpaces[pid]
		caps := cs.List()
		h.WriteU64(uint64(pid))
		h.WriteU64(uint64(len(caps)))
		for _, c := range caps {
			h.WriteU32(uint32(c.Slot))
			h.WriteU64(uint64(c.ID))
			h.WriteByte(uint8(c.ObjectType))
			h.WriteU64(c.ObjectID)
			h.WriteByte(c.Permissions.ToByte())
		}
	}

	endpoints := k.ListEndpoints()
	h.WriteU64(uint64(len(endpoints)))
	for _, e := range endpoints {
		h.WriteU64(uint64(e.ID))
		h.WriteU64(uint64(e.Owner))
	}

	return h.Sum()
}
