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
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullframe/axiomkernel/core/axiom"
)

func newTestKernelWithProcess(t *testing.T, pid ProcessID) *KernelCore {
	t.Helper()
	k := NewKernelCore()
	k.RegisterProcess(pid, 0, "proc", 1)
	return k
}

func TestExecuteGetPidAndGetTime(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)

	out, commits, err := k.Execute(1, SyscallRequest{Num: SyscallGetPid}, 42)
	require.NoError(t, err)
	assert.Nil(t, commits)
	assert.Equal(t, uint64(1), out.Value)

	out, _, err = k.Execute(1, SyscallRequest{Num: SyscallGetTime}, 42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), out.Value)
}

func TestExecuteCreateEndpointThenSendReceive(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)

	out, commits, err := k.Execute(1, SyscallRequest{Num: SyscallCreateEndpoint}, 1)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	slot := CapSlot(out.Value >> 32)

	_, commits, err = k.Execute(1, SyscallRequest{
		Num:  SyscallSend,
		Args: [4]uint32{uint32(slot), 7},
		Data: []byte("hello"),
	}, 2)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, axiom.CommitMessageSent, commits[0].Kind)

	out, _, err = k.Execute(1, SyscallRequest{Num: SyscallReceive, Args: [4]uint32{uint32(slot)}}, 3)
	require.NoError(t, err)
	require.NotNil(t, out.Message)
	assert.Equal(t, "hello", string(out.Message.Data))
	assert.Equal(t, uint32(7), out.Message.Tag)
}

func TestExecuteReceiveWithNoMessageReturnsWouldBlock(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	out, _, err := k.Execute(1, SyscallRequest{Num: SyscallCreateEndpoint}, 1)
	require.NoError(t, err)
	slot := CapSlot(out.Value >> 32)

	_, _, err = k.Execute(1, SyscallRequest{Num: SyscallReceive, Args: [4]uint32{uint32(slot)}}, 2)
	assert.ErrorIs(t, err, ErrWouldBlock)
}

func TestExecuteUnknownSyscallIsInvalidArgument(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	_, _, err := k.Execute(1, SyscallRequest{Num: SyscallNum(0xFF)}, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDecodeCapSlotsRejectsTooManySlots(t *testing.T) {
	_, _, err := decodeCapSlots(nil, MaxCapsPerMessage+1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDecodeCapSlotsSplitsHeaderFromPayload(t *testing.T) {
	data := []byte{1, 0, 0, 0, 2, 0, 0, 0, 'h', 'i'}
	slots, payload, err := decodeCapSlots(data, 2)
	require.NoError(t, err)
	assert.Equal(t, []CapSlot{1, 2}, slots)
	assert.Equal(t, "hi", string(payload))
}

// TestExecuteSendWithCapsTransfersCapabilityOnReceive drives S3/P5 end to
// end through Execute: pid 1 creates two endpoints (A at slot 0, B at slot
// 1), sends A's capability across B via SendWithCaps, then receives on B
// and installs the transferred cap. The cap must be gone from its original
// slot and present at the slot the receive reports.
func TestExecuteSendWithCapsTransfersCapabilityOnReceive(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)

	outA, commits, err := k.Execute(1, SyscallRequest{Num: SyscallCreateEndpoint}, 1)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	slotA := CapSlot(outA.Value >> 32)

	outB, commits, err := k.Execute(1, SyscallRequest{Num: SyscallCreateEndpoint}, 2)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	slotB := CapSlot(outB.Value >> 32)

	data := make([]byte, 4+len("payload"))
	binary.LittleEndian.PutUint32(data[0:4], uint32(slotA))
	copy(data[4:], "payload")

	_, commits, err = k.Execute(1, SyscallRequest{
		Num:  SyscallSendWithCaps,
		Args: [4]uint32{uint32(slotB), 0xCA, 1},
		Data: data,
	}, 3)
	require.NoError(t, err)
	require.Len(t, commits, 1, "one CapRemoved for the single transferred slot")
	assert.Equal(t, axiom.CommitCapRemoved, commits[0].Kind)

	cs, ok := k.GetCapSpace(1)
	require.True(t, ok)
	_, stillPresent := cs.Get(slotA)
	assert.False(t, stillPresent, "transferred cap must be removed from the sender's original slot")

	out, _, err := k.Execute(1, SyscallRequest{Num: SyscallReceive, Args: [4]uint32{uint32(slotB)}}, 4)
	require.NoError(t, err)
	require.NotNil(t, out.Message)
	require.Len(t, out.Message.TransferredCaps, 1)
	assert.Equal(t, "payload", string(out.Message.Data))

	slots, installCommits, err := k.InstallTransferredCaps(1, out.Message)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Len(t, installCommits, 1)
	assert.Equal(t, axiom.CommitCapInserted, installCommits[0].Kind)

	got, ok := cs.Get(slots[0])
	require.True(t, ok, "transferred cap must be present in the receiver's CSpace at the reported slot")
	assert.Equal(t, ObjectTypeEndpoint, got.ObjectType)
	assert.Equal(t, slotA, slots[0], "first-free allocation reinstalls the cap at the slot the transfer vacated")
}

// TestIPCSendWithCapsNonexistentSlotFailsAtomically covers the two-phase
// boundary behaviour: naming a slot that doesn't exist among cap_slots must
// fail the whole syscall with InvalidCapability, produce zero commits, and
// leave every real capability exactly where it was (no partial removal).
func TestIPCSendWithCapsNonexistentSlotFailsAtomically(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)

	_, _, commits, err := k.CreateEndpoint(1, 1)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	cs, ok := k.GetCapSpace(1)
	require.True(t, ok)
	realSlot := cs.Insert(Capability{ID: 99, ObjectType: ObjectTypeEndpoint, ObjectID: 42, Permissions: ReadWrite()})

	_, slotB, commits, err := k.CreateEndpoint(1, 2)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	missingSlot := CapSlot(999)
	commits, err = k.IPCSendWithCaps(1, slotB, 0xAB, []byte("x"), []CapSlot{realSlot, missingSlot}, 3)
	assert.ErrorIs(t, err, ErrInvalidCapability)
	assert.Empty(t, commits, "no commits, not even for the slot that did exist")

	_, stillPresent := cs.Get(realSlot)
	assert.True(t, stillPresent, "validation failure must not remove any capability, not even ones earlier in the list")
}
