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

// Exit terminates pid with code, transitioning it to Zombie and tearing
// down everything it owned. Per §4.2.5 the commit order is fixed:
// ProcessExited, then one EndpointDestroyed per owned endpoint, then one
// CapRemoved per occupied CSpace slot.
func (k *KernelCore) Exit(pid ProcessID, code int32, timestamp uint64) ([]CommitType, error) {
	proc, ok := k.processes[pid]
	if !ok || proc.State == ProcessStateZombie {
		return nil, ErrProcessNotFound
	}
	proc.State = ProcessStateZombie

	commits := []CommitType{{Kind: axiom.CommitProcessExited, PID: uint64(pid), Code: code}}
	commits = append(commits, k.teardown(pid)...)
	return commits, nil
}

// Kill requires the caller to hold a Process capability with write
// permission over target and terminates it as Exit would, with exit code
// 0. The caller's own state is untouched.
func (k *KernelCore) Kill(callerPID ProcessID, callerSlot CapSlot, target ProcessID, timestamp uint64) ([]CommitType, error) {
	cs, ok := k.capSpaces[callerPID]
	if !ok {
		return nil, ErrProcessNotFound
	}
	cap, err := AxiomCheck(cs, callerSlot, WriteOnly(), objectType(ObjectTypeProcess))
	if err != nil {
		return nil, err
	}
	if cap.ObjectID != uint64(target) {
		return nil, ErrPermissionDenied
	}

	proc, ok := k.processes[target]
	if !ok || proc.State == ProcessStateZombie {
		return nil, ErrProcessNotFound
	}
	proc.State = ProcessStateZombie

	commits := []CommitType{{Kind: axiom.CommitProcessExited, PID: uint64(target), Code: 0}}
	commits = append(commits, k.teardown(target)...)
	return commits, nil
}

// Fault is invoked by the host when a worker context traps or otherwise
// misbehaves; it is data, not an exception crossing the kernel boundary
// (see §9 re-architecting notes). It produces ProcessFaulted plus the same
// teardown sequence as Exit/Kill.
func (k *KernelCore) Fault(pid ProcessID, reason uint32, description string, timestamp uint64) ([]CommitType, error) {
	proc, ok := k.processes[pid]
	if !ok || proc.State == ProcessStateZombie {
		return nil, ErrProcessNotFound
	}
	proc.State = ProcessStateZombie

	commits := []CommitType{{Kind: axiom.CommitProcessFaulted, PID: uint64(pid), Reason: reason, Description: description}}
	commits = append(commits, k.teardown(pid)...)
	return commits, nil
}

// teardown destroys every endpoint pid owns, then removes every capability
// from pid's CSpace, in that order. Other processes holding capabilities
// to the destroyed endpoints keep them; they fail cleanly at use time with
// EndpointNotFound, per the design's chosen dangling-capability model.
func (k *KernelCore) teardown(pid ProcessID) []CommitType {
	var commits []CommitType

	var owned []EndpointID
	for id, ep := range k.endpoints {
		if ep.Owner == pid {
			owned = append(owned, id)
		}
	}
	sortEndpointIDs(owned)
	for _, id := range owned {
		delete(k.endpoints, id)
		commits = append(commits, CommitType{Kind: axiom.CommitEndpointDestroyed, EndpointID: uint64(id)})
	}

	if cs, ok := k.capSpaces[pid]; ok {
		for _, info := range cs.List() {
			cs.Remove(info.Slot)
			k.derivations.forget(info.ID)
			commits = append(commits, CommitType{Kind: axiom.CommitCapRemoved, PID: uint64(pid), Slot: uint32(info.Slot)})
		}
	}

	return commits
}

func sortEndpointIDs(ids []EndpointID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
