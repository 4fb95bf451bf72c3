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

// Capability is a typed, permissioned, forgery-proof reference to a kernel
// object. It only ever exists inside exactly one CapabilitySpace, or
// transiently inside an in-flight Message's transfer list.
type Capability struct {
	ID          CapID
	ObjectType  ObjectType
	ObjectID    uint64
	Permissions Permissions
}

// CapInfo is the read-only projection returned by ListCaps / CapInspect; it
// never exposes anything that would let a caller forge a capability.
type CapInfo struct {
	Slot        CapSlot
	ID          CapID
	ObjectType  ObjectType
	ObjectID    uint64
	Permissions Permissions
}

func infoFromCap(slot CapSlot, c Capability) CapInfo {
	return CapInfo{
		Slot:        slot,
		ID:          c.ID,
		ObjectType:  c.ObjectType,
		ObjectID:    c.ObjectID,
		Permissions: c.Permissions,
	}
}

// TransferredCap is a capability in flight inside a Message, stripped from
// the sender's CSpace and not yet installed in the receiver's.
type TransferredCap struct {
	Capability Capability
}

// derivationIndex tracks parent->child relationships between capability ids
// so a future transitive revoke can walk a derivation tree without a
// data-model change, per the chosen "cheap revocation" design (see
// CapRevoke in capops.go). It is not part of the state hash. Replay
// rebuilds the grant relationships from CapGranted commits; a CapDerive
// emits only a CapInserted, which names no parent, so derive relationships
// are not rebuilt by replay.
type derivationIndex struct {
	parentOf map[CapID]CapID
	children map[CapID][]CapID
}

func newDerivationIndex() *derivationIndex {
	return &derivationIndex{
		parentOf: make(map[CapID]CapID),
		children: make(map[CapID][]CapID),
	}
}

func (d *derivationIndex) record(parent, child CapID) {
	d.parentOf[child] = parent
	d.children[parent] = append(d.children[parent], child)
}

func (d *derivationIndex) childrenOf(parent CapID) []CapID {
	return append([]CapID(nil), d.children[parent]...)
}

func (d *derivationIndex) forget(id CapID) {
	parent, ok := d.parentOf[id]
	if ok {
		siblings := d.children[parent]
		for i, c := range siblings {
			if c == id {
				d.children[parent] = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
		delete(d.parentOf, id)
	}
	delete(d.children, id)
}
