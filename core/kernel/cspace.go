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

import "sort"

// CapabilitySpace is a process's slot -> capability table. Slots are dense
// small integers; a fresh slot is always the lowest unused number, which
// keeps CreateEndpoint's conventional "slot 0 is the primary endpoint"
// promise self-enforcing for a process that consumes slots in order.
type CapabilitySpace struct {
	slots map[CapSlot]Capability
}

// NewCapabilitySpace returns an empty capability space.
func NewCapabilitySpace() *CapabilitySpace {
	return &CapabilitySpace{slots: make(map[CapSlot]Capability)}
}

// Get returns the capability at slot, if any.
func (c *CapabilitySpace) Get(slot CapSlot) (Capability, bool) {
	cap, ok := c.slots[slot]
	return cap, ok
}

// Insert places cap at the first free slot and returns that slot.
func (c *CapabilitySpace) Insert(cap Capability) CapSlot {
	slot := c.firstFree()
	c.slots[slot] = cap
	return slot
}

// InsertAt places cap at an explicit slot, overwriting any capability
// already there. Used by replay, where the slot is data recorded in the
// commit rather than something to be recomputed.
func (c *CapabilitySpace) InsertAt(slot CapSlot, cap Capability) {
	c.slots[slot] = cap
}

// Remove deletes the capability at slot and returns it, if present.
func (c *CapabilitySpace) Remove(slot CapSlot) (Capability, bool) {
	cap, ok := c.slots[slot]
	if ok {
		delete(c.slots, slot)
	}
	return cap, ok
}

// List returns every capability in the space as CapInfo, ordered by slot.
func (c *CapabilitySpace) List() []CapInfo {
	out := make([]CapInfo, 0, len(c.slots))
	for slot, cap := range c.slots {
		out = append(out, infoFromCap(slot, cap))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

// Len returns the number of occupied slots.
func (c *CapabilitySpace) Len() int {
	return len(c.slots)
}

func (c *CapabilitySpace) firstFree() CapSlot {
	for slot := CapSlot(0); ; slot++ {
		if _, ok := c.slots[slot]; !ok {
			return slot
		}
	}
}
