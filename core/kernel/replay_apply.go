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

import "github.com/nullframe/axiomkernel/core/axiom"

// ApplyCommit is the pure mutator core/replay folds over a commit slice. It
// never allocates a fresh id or slot — every field it needs (pid, slot,
// cap id, endpoint id) is data already recorded in the commit, per R3 —
// and it never touches a clock, per R4. It is the only place KernelCore is
// mutated without also being asked to produce a commit: replay isn't
// re-deriving state, it's reproducing state that was already derived once.
func (k *KernelCore) ApplyCommit(ct CommitType) error {
	switch ct.Kind {
	case axiom.CommitGenesis:
		return nil

	case axiom.CommitProcessCreated:
		pid := ProcessID(ct.PID)
		k.processes[pid] = &Process{PID: pid, Parent: ProcessID(ct.Parent), Name: ct.ProcessName, State: ProcessStateRunning}
		k.capSpaces[pid] = NewCapabilitySpace()
		return nil

	case axiom.CommitProcessExited:
		if p, ok := k.processes[ProcessID(ct.PID)]; ok {
			p.State = ProcessStateZombie
		}
		return nil

	case axiom.CommitProcessFaulted:
		if p, ok := k.processes[ProcessID(ct.PID)]; ok {
			p.State = ProcessStateZombie
		}
		return nil

	case axiom.CommitCapInserted:
		pid := ProcessID(ct.PID)
		cs, ok := k.capSpaces[pid]
		if !ok {
			return ErrProcessNotFound
		}
		cap := Capability{
			ID:          CapID(ct.CapID),
			ObjectType:  ObjectType(ct.ObjectType),
			ObjectID:    ct.ObjectID,
			Permissions: PermissionsFromByte(ct.Perms),
		}
		cs.InsertAt(CapSlot(ct.Slot), cap)
		k.bumpCapWatermark(CapID(ct.CapID))
		return nil

	case axiom.CommitCapRemoved:
		if cs, ok := k.capSpaces[ProcessID(ct.PID)]; ok {
			cs.Remove(CapSlot(ct.Slot))
		}
		return nil

	case axiom.CommitCapGranted:
		// Metadata only: the state mutation for the recipient is the
		// CapInserted commit that follows it in the log. Recorded here
		// only to keep the derivation index consistent for a replayed
		// kernel that is later asked to revoke.
		// The parent is still at (FromPID, FromSlot) at this point in the log.
		parentID := CapID(0)
		if cs, ok := k.capSpaces[ProcessID(ct.FromPID)]; ok {
			if parent, ok := cs.Get(CapSlot(ct.FromSlot)); ok {
				parentID = parent.ID
			}
		}
		k.derivations.record(parentID, CapID(ct.NewCapID))
		k.bumpCapWatermark(CapID(ct.NewCapID))
		return nil

	case axiom.CommitEndpointCreated:
		id := EndpointID(ct.EndpointID)
		k.endpoints[id] = newEndpoint(id, ProcessID(ct.Owner))
		k.bumpEndpointWatermark(id)
		return nil

	case axiom.CommitEndpointDestroyed:
		delete(k.endpoints, EndpointID(ct.EndpointID))
		return nil

	case axiom.CommitMessageSent:
		// Message queues are volatile and excluded from state_hash; a
		// replayed kernel never needs to reconstruct in-flight messages.
		return nil

	default:
		return ErrInvalidArgument
	}
}

func (k *KernelCore) bumpCapWatermark(id CapID) {
	if id > k.nextCapID {
		k.nextCapID = id
	}
}

func (k *KernelCore) bumpEndpointWatermark(id EndpointID) {
	if id > k.nextEndpointID {
		k.nextEndpointID = id
	}
}
