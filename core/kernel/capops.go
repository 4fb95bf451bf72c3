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

// RevokeNotification describes a capability that CapRevoke removed, for a
// service layer to turn into an out-of-band message to affected holders.
// See DESIGN.md for why revocation is "cheap" (slot deletion plus this
// notification) rather than a true transitive walk.
type RevokeNotification struct {
	PID        ProcessID
	Slot       CapSlot
	ObjectType ObjectType
	ObjectID   uint64
	Children   []CapID
}

// ListCaps returns every capability held by pid.
func (k *KernelCore) ListCaps(pid ProcessID) ([]CapInfo, error) {
	cs, ok := k.capSpaces[pid]
	if !ok {
		return nil, ErrProcessNotFound
	}
	return cs.List(), nil
}

// GrantCapability requires grant permission on fromSlot and copies that
// capability into toPID's CSpace with permissions no greater than the
// parent's. Emits CapGranted then CapInserted on the recipient.
func (k *KernelCore) GrantCapability(fromPID ProcessID, fromSlot CapSlot, toPID ProcessID, newPerms Permissions, timestamp uint64) (CapSlot, []CommitType, error) {
	fromCS, ok := k.capSpaces[fromPID]
	if !ok {
		return 0, nil, ErrProcessNotFound
	}
	toCS, ok := k.capSpaces[toPID]
	if !ok {
		return 0, nil, ErrProcessNotFound
	}

	parent, err := AxiomCheck(fromCS, fromSlot, Permissions{Grant: true}, nil)
	if err != nil {
		return 0, nil, err
	}
	if !newPerms.Subset(parent.Permissions) {
		return 0, nil, ErrPermissionDenied
	}

	newCapID := k.allocCapID()
	child := Capability{ID: newCapID, ObjectType: parent.ObjectType, ObjectID: parent.ObjectID, Permissions: newPerms}
	toSlot := toCS.Insert(child)
	k.derivations.record(parent.ID, newCapID)

	commits := []CommitType{
		{
			Kind:     axiom.CommitCapGranted,
			FromPID:  uint64(fromPID),
			ToPID:    uint64(toPID),
			FromSlot: uint32(fromSlot),
			ToSlot:   uint32(toSlot),
			NewCapID: uint64(newCapID),
			Perms:    newPerms.ToByte(),
		},
		{
			Kind:       axiom.CommitCapInserted,
			PID:        uint64(toPID),
			Slot:       uint32(toSlot),
			CapID:      uint64(newCapID),
			ObjectType: uint8(child.ObjectType),
			ObjectID:   child.ObjectID,
			Perms:      newPerms.ToByte(),
		},
	}
	return toSlot, commits, nil
}

// DeriveCapability creates a new, strictly-weaker capability in the same
// CSpace. Emits CapInserted.
func (k *KernelCore) DeriveCapability(pid ProcessID, slot CapSlot, newPerms Permissions, timestamp uint64) (CapSlot, []CommitType, error) {
	cs, ok := k.capSpaces[pid]
	if !ok {
		return 0, nil, ErrProcessNotFound
	}
	parent, ok := cs.Get(slot)
	if !ok {
		return 0, nil, ErrInvalidCapability
	}
	if !newPerms.Subset(parent.Permissions) || newPerms == parent.Permissions {
		return 0, nil, ErrPermissionDenied
	}

	newCapID := k.allocCapID()
	child := Capability{ID: newCapID, ObjectType: parent.ObjectType, ObjectID: parent.ObjectID, Permissions: newPerms}
	newSlot := cs.Insert(child)
	k.derivations.record(parent.ID, newCapID)

	commit := CommitType{
		Kind:       axiom.CommitCapInserted,
		PID:        uint64(pid),
		Slot:       uint32(newSlot),
		CapID:      uint64(newCapID),
		ObjectType: uint8(child.ObjectType),
		ObjectID:   child.ObjectID,
		Perms:      newPerms.ToByte(),
	}
	return newSlot, []CommitType{commit}, nil
}

// DeleteCapability drops a capability from its owner's CSpace, emitting
// CapRemoved.
func (k *KernelCore) DeleteCapability(pid ProcessID, slot CapSlot, timestamp uint64) ([]CommitType, error) {
	cs, ok := k.capSpaces[pid]
	if !ok {
		return nil, ErrProcessNotFound
	}
	cap, ok := cs.Remove(slot)
	if !ok {
		return nil, ErrInvalidCapability
	}
	k.derivations.forget(cap.ID)

	return []CommitType{{Kind: axiom.CommitCapRemoved, PID: uint64(pid), Slot: uint32(slot)}}, nil
}

// DeleteCapabilityWithNotification deletes a capability and returns a
// RevokeNotification describing what was removed and the cap ids of any
// known derived children, for out-of-band notification of their holders.
func (k *KernelCore) DeleteCapabilityWithNotification(pid ProcessID, slot CapSlot, timestamp uint64) (RevokeNotification, []CommitType, error) {
	cs, ok := k.capSpaces[pid]
	if !ok {
		return RevokeNotification{}, nil, ErrProcessNotFound
	}
	cap, ok := cs.Get(slot)
	if !ok {
		return RevokeNotification{}, nil, ErrInvalidCapability
	}
	children := k.derivations.childrenOf(cap.ID)

	commits, err := k.DeleteCapability(pid, slot, timestamp)
	if err != nil {
		return RevokeNotification{}, nil, err
	}

	return RevokeNotification{
		PID:        pid,
		Slot:       slot,
		ObjectType: cap.ObjectType,
		ObjectID:   cap.ObjectID,
		Children:   children,
	}, commits, nil
}

// RevokeCapability implements the chosen "cheap revocation" design: it
// deletes the direct slot and returns the set of known derived cap ids so
// a service layer can notify their holders out of band. A transitive walk
// of those descendants is possible via repeated calls once the caller
// resolves each child cap id back to a (pid, slot); today this method does
// not perform that walk itself.
func (k *KernelCore) RevokeCapability(pid ProcessID, slot CapSlot, timestamp uint64) (RevokeNotification, []CommitType, error) {
	return k.DeleteCapabilityWithNotification(pid, slot, timestamp)
}

// InspectCapability returns metadata without mutation; no commit.
func (k *KernelCore) InspectCapability(pid ProcessID, slot CapSlot) (CapInfo, error) {
	cs, ok := k.capSpaces[pid]
	if !ok {
		return CapInfo{}, ErrProcessNotFound
	}
	cap, ok := cs.Get(slot)
	if !ok {
		return CapInfo{}, ErrInvalidCapability
	}
	return infoFromCap(slot, cap), nil
}
