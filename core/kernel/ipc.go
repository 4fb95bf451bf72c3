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

// CreateEndpoint allocates a fresh endpoint owned by pid and installs its
// capability at the caller's first free slot, emitting EndpointCreated
// then CapInserted in that order.
func (k *KernelCore) CreateEndpoint(pid ProcessID, timestamp uint64) (EndpointID, CapSlot, []CommitType, error) {
	cs, ok := k.capSpaces[pid]
	if !ok {
		return 0, 0, nil, ErrProcessNotFound
	}

	id := k.allocEndpointID()
	k.endpoints[id] = newEndpoint(id, pid)

	capID := k.allocCapID()
	cap := Capability{ID: capID, ObjectType: ObjectTypeEndpoint, ObjectID: uint64(id), Permissions: ReadWrite()}
	slot := cs.Insert(cap)

	commits := []CommitType{
		{Kind: axiom.CommitEndpointCreated, EndpointID: uint64(id), Owner: uint64(pid)},
		{Kind: axiom.CommitCapInserted, PID: uint64(pid), Slot: uint32(slot), CapID: uint64(capID), ObjectType: uint8(ObjectTypeEndpoint), ObjectID: uint64(id), Perms: cap.Permissions.ToByte()},
	}
	return id, slot, commits, nil
}

// IPCSend requires write permission on an Endpoint capability at
// endpointSlot. It queues the message and emits MessageSent.
func (k *KernelCore) IPCSend(fromPID ProcessID, endpointSlot CapSlot, tag uint32, data []byte, timestamp uint64) ([]CommitType, error) {
	if len(data) > MaxMessageSize {
		return nil, ErrInvalidArgument
	}

	endpointID, err := k.validateSendCap(fromPID, endpointSlot)
	if err != nil {
		return nil, err
	}

	if err := k.queueMessage(endpointID, Message{From: fromPID, Tag: tag, Data: data}); err != nil {
		return nil, err
	}
	k.updateSendMetrics(fromPID, endpointID, len(data), timestamp)

	return []CommitType{
		{Kind: axiom.CommitMessageSent, FromPID: uint64(fromPID), EndpointID: uint64(endpointID), Tag: tag, Size: uint64(len(data))},
	}, nil
}

// IPCSendWithCaps validates every cap slot exists before removing any
// (two-phase, to preserve atomicity), removes them from the sender's
// CSpace, and attaches them to the message's transfer list.
func (k *KernelCore) IPCSendWithCaps(fromPID ProcessID, endpointSlot CapSlot, tag uint32, data []byte, capSlots []CapSlot, timestamp uint64) ([]CommitType, error) {
	if len(data) > MaxMessageSize {
		return nil, ErrInvalidArgument
	}
	if len(capSlots) > MaxCapsPerMessage {
		return nil, ErrInvalidArgument
	}

	endpointID, err := k.validateSendCap(fromPID, endpointSlot)
	if err != nil {
		return nil, err
	}
	cs := k.capSpaces[fromPID]
	if _, ok := k.endpoints[endpointID]; !ok {
		return nil, ErrEndpointNotFound
	}

	// Phase 1: validate every named slot exists (and is not the endpoint
	// capability itself) before removing anything.
	for _, slot := range capSlots {
		if slot == endpointSlot {
			return nil, ErrInvalidCapability
		}
		if _, ok := cs.Get(slot); !ok {
			return nil, ErrInvalidCapability
		}
	}

	// Phase 2: remove and build the transfer list.
	var commits []CommitType
	transferred := make([]TransferredCap, 0, len(capSlots))
	for _, slot := range capSlots {
		cap, _ := cs.Remove(slot)
		transferred = append(transferred, TransferredCap{Capability: cap})
		commits = append(commits, CommitType{Kind: axiom.CommitCapRemoved, PID: uint64(fromPID), Slot: uint32(slot)})
	}

	if err := k.queueMessage(endpointID, Message{From: fromPID, Tag: tag, Data: data, TransferredCaps: transferred}); err != nil {
		return commits, err
	}
	k.updateSendMetrics(fromPID, endpointID, len(data), timestamp)

	return commits, nil
}

// IPCReceive is non-blocking: it pops the FIFO head, or returns a nil
// message and a nil error when the queue is empty (Execute turns that into
// ErrWouldBlock). Receiving never produces a commit — message payloads are
// not persistent state.
func (k *KernelCore) IPCReceive(pid ProcessID, endpointSlot CapSlot, timestamp uint64) (*Message, error) {
	endpointID, err := k.validateReceiveCap(pid, endpointSlot)
	if err != nil {
		return nil, err
	}

	ep, ok := k.endpoints[endpointID]
	if !ok {
		return nil, ErrEndpointNotFound
	}

	msg, ok := ep.pop()
	if !ok {
		return nil, nil
	}

	if receiver, ok := k.processes[pid]; ok {
		receiver.Metrics.IPCReceived++
		receiver.Metrics.IPCBytesReceived += uint64(len(msg.Data))
		receiver.Metrics.LastActiveNanos = timestamp
	}

	return &msg, nil
}

// IPCReceiveWithCaps is the formatter-level follow-up described in the
// component design: after a raw receive succeeds, every capability in the
// message's transfer list is installed into the receiver's CSpace, one
// CapInserted commit per cap, and the newly assigned slots are reported
// back to the caller. It exists as a convenience wrapper for callers (and
// tests) that want both steps in one call; the axiom gateway instead calls
// IPCReceive and InstallTransferredCaps as two separate steps (§4.1 step 3
// vs step 5), since receive-with-caps is logically two operations that
// happen to share one syscall.
func (k *KernelCore) IPCReceiveWithCaps(pid ProcessID, endpointSlot CapSlot, timestamp uint64) (*Message, []CapSlot, []CommitType, error) {
	msg, err := k.IPCReceive(pid, endpointSlot, timestamp)
	if err != nil || msg == nil {
		return msg, nil, nil, err
	}
	slots, commits, err := k.InstallTransferredCaps(pid, msg)
	return msg, slots, commits, err
}

// InstallTransferredCaps installs every capability in msg's transfer list
// into pid's CSpace, one CapInserted commit per cap, and reports the newly
// assigned slots. Called by the axiom gateway's formatting step, after the
// raw receive is known to have succeeded, so the two commit sets either
// both land or (if the syscall is abandoned before this runs) neither does.
func (k *KernelCore) InstallTransferredCaps(pid ProcessID, msg *Message) ([]CapSlot, []CommitType, error) {
	if msg == nil || len(msg.TransferredCaps) == 0 {
		return nil, nil, nil
	}

	cs, ok := k.capSpaces[pid]
	if !ok {
		return nil, nil, ErrProcessNotFound
	}

	slots := make([]CapSlot, 0, len(msg.TransferredCaps))
	var commits []CommitType
	for _, tc := range msg.TransferredCaps {
		slot := cs.Insert(tc.Capability)
		slots = append(slots, slot)
		commits = append(commits, CommitType{
			Kind:       axiom.CommitCapInserted,
			PID:        uint64(pid),
			Slot:       uint32(slot),
			CapID:      uint64(tc.Capability.ID),
			ObjectType: uint8(tc.Capability.ObjectType),
			ObjectID:   tc.Capability.ObjectID,
			Perms:      tc.Capability.Permissions.ToByte(),
		})
	}
	return slots, commits, nil
}

// IPCHasMessage reports whether an endpoint has a pending message, without
// removing it.
func (k *KernelCore) IPCHasMessage(pid ProcessID, endpointSlot CapSlot) (bool, error) {
	endpointID, err := k.validateReceiveCap(pid, endpointSlot)
	if err != nil {
		return false, err
	}
	ep, ok := k.endpoints[endpointID]
	if !ok {
		return false, ErrEndpointNotFound
	}
	return ep.hasMessage(), nil
}

func (k *KernelCore) validateSendCap(pid ProcessID, slot CapSlot) (EndpointID, error) {
	cs, ok := k.capSpaces[pid]
	if !ok {
		return 0, ErrProcessNotFound
	}
	cap, err := AxiomCheck(cs, slot, WriteOnly(), objectType(ObjectTypeEndpoint))
	if err != nil {
		return 0, err
	}
	return EndpointID(cap.ObjectID), nil
}

func (k *KernelCore) validateReceiveCap(pid ProcessID, slot CapSlot) (EndpointID, error) {
	cs, ok := k.capSpaces[pid]
	if !ok {
		return 0, ErrProcessNotFound
	}
	cap, err := AxiomCheck(cs, slot, ReadOnly(), objectType(ObjectTypeEndpoint))
	if err != nil {
		return 0, err
	}
	return EndpointID(cap.ObjectID), nil
}

func (k *KernelCore) queueMessage(id EndpointID, m Message) error {
	ep, ok := k.endpoints[id]
	if !ok {
		return ErrEndpointNotFound
	}
	ep.push(m)
	return nil
}

func (k *KernelCore) updateSendMetrics(fromPID ProcessID, endpointID EndpointID, dataLen int, timestamp uint64) {
	if ep, ok := k.endpoints[endpointID]; ok {
		ep.Metrics.TotalMessages++
		ep.Metrics.TotalBytes += uint64(dataLen)
	}
	if sender, ok := k.processes[fromPID]; ok {
		sender.Metrics.IPCSent++
		sender.Metrics.IPCBytesSent += uint64(dataLen)
		sender.Metrics.LastActiveNanos = timestamp
	}
	k.totalIPCCount++
}
