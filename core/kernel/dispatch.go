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

import "encoding/binary"

// SyscallRequest is the decoded form of a mailbox entry: the syscall number,
// its four argument words (the host's mailbox carries three; the fourth is
// always zero unless a caller further up constructs a request directly),
// and the variable-length data blob. Argument packing per operation:
//
//	Debug                 data = UTF-8 message
//	Exit                  args[0] = exit code
//	Kill                  args[0] = caller's Process-cap slot, args[1..2] = target pid (lo, hi)
//	CreateEndpoint        (no args)
//	Send / Call           args[0] = endpoint slot, args[1] = tag; data = payload
//	Receive               args[0] = endpoint slot
//	SendWithCaps          args[0] = endpoint slot, args[1] = tag, args[2] = cap slot count N;
//	                      data = N little-endian uint32 cap slots, then the payload
//	ListCaps              (no args)
//	CapGrant              args[0] = from slot, args[1..2] = target pid (lo, hi), args[3] = perms byte
//	CapRevoke/CapDelete   args[0] = slot
//	CapInspect            args[0] = slot
//	CapDerive             args[0] = slot, args[1] = new perms byte
//	GetTime / Yield       (no args)
type SyscallRequest struct {
	Num  SyscallNum
	Args [4]uint32
	Data []byte
}

// Outcome is whichever typed payload a syscall produced, for the axiom
// gateway's step-5 formatter to turn into a rich_result and response bytes.
// Exactly one field is populated per syscall kind; the rest are zero
// values. This is the "package results" half of the dispatcher's job.
type Outcome struct {
	Value             uint64
	Message           *Message
	Processes         []Process
	Caps              []CapInfo
	CapInfo           *CapInfo
	Notification      *RevokeNotification
	InstalledCapSlots []CapSlot
}

// Execute decodes req and invokes the matching handler, incrementing the
// caller's syscall_count and last_active_ns metrics first (every syscall
// does this, even ones that go on to fail). It returns the error-or-nil
// result (the axiom gateway turns this into a result_code via ResultCode),
// the Outcome for formatting, and the commit descriptors produced — never
// more than what the taxonomy in §4.2.1 allows.
func (k *KernelCore) Execute(pid ProcessID, req SyscallRequest, timestamp uint64) (Outcome, []CommitType, error) {
	p, ok := k.processes[pid]
	if ok {
		p.Metrics.SyscallCount++
		p.Metrics.LastActiveNanos = timestamp
	}
	if ok && p.State == ProcessStateZombie {
		return Outcome{}, nil, ErrProcessNotFound
	}

	switch req.Num {
	case SyscallDebug:
		return Outcome{}, nil, nil

	case SyscallGetTime:
		return Outcome{Value: timestamp}, nil, nil

	case SyscallGetPid:
		return Outcome{Value: uint64(pid)}, nil, nil

	case SyscallYield:
		return Outcome{}, nil, nil

	case SyscallListProcesses:
		return Outcome{Processes: k.ListProcesses()}, nil, nil

	case SyscallExit:
		code := int32(req.Args[0])
		commits, err := k.Exit(pid, code, timestamp)
		return Outcome{}, commits, err

	case SyscallKill:
		callerSlot := CapSlot(req.Args[0])
		target := ProcessID(uint64(req.Args[1]) | uint64(req.Args[2])<<32)
		commits, err := k.Kill(pid, callerSlot, target, timestamp)
		return Outcome{}, commits, err

	case SyscallCreateEndpoint:
		epID, slot, commits, err := k.CreateEndpoint(pid, timestamp)
		if err != nil {
			return Outcome{}, commits, err
		}
		return Outcome{Value: (uint64(slot) << 32) | (uint64(epID) & 0xFFFFFFFF)}, commits, nil

	case SyscallSend, SyscallCall:
		slot := CapSlot(req.Args[0])
		tag := req.Args[1]
		commits, err := k.IPCSend(pid, slot, tag, req.Data, timestamp)
		if err == nil {
			return Outcome{}, commits, nil
		}
		return Outcome{}, commits, err

	case SyscallSendWithCaps:
		slot := CapSlot(req.Args[0])
		tag := req.Args[1]
		n := int(req.Args[2])
		slots, payload, err := decodeCapSlots(req.Data, n)
		if err != nil {
			return Outcome{}, nil, err
		}
		commits, err := k.IPCSendWithCaps(pid, slot, tag, payload, slots, timestamp)
		return Outcome{}, commits, err

	case SyscallReceive:
		slot := CapSlot(req.Args[0])
		msg, err := k.IPCReceive(pid, slot, timestamp)
		if err != nil {
			return Outcome{}, nil, err
		}
		if msg == nil {
			return Outcome{}, nil, ErrWouldBlock
		}
		return Outcome{Message: msg}, nil, nil

	case SyscallListCaps:
		caps, err := k.ListCaps(pid)
		return Outcome{Caps: caps}, nil, err

	case SyscallCapGrant:
		fromSlot := CapSlot(req.Args[0])
		toPID := ProcessID(uint64(req.Args[1]) | uint64(req.Args[2])<<32)
		perms := PermissionsFromByte(uint8(req.Args[3]))
		slot, commits, err := k.GrantCapability(pid, fromSlot, toPID, perms, timestamp)
		return Outcome{Value: uint64(slot)}, commits, err

	case SyscallCapDerive:
		slot := CapSlot(req.Args[0])
		perms := PermissionsFromByte(uint8(req.Args[1]))
		newSlot, commits, err := k.DeriveCapability(pid, slot, perms, timestamp)
		return Outcome{Value: uint64(newSlot)}, commits, err

	case SyscallCapDelete:
		slot := CapSlot(req.Args[0])
		commits, err := k.DeleteCapability(pid, slot, timestamp)
		return Outcome{}, commits, err

	case SyscallCapRevoke:
		slot := CapSlot(req.Args[0])
		note, commits, err := k.RevokeCapability(pid, slot, timestamp)
		if err != nil {
			return Outcome{}, commits, err
		}
		return Outcome{Notification: &note}, commits, nil

	case SyscallCapInspect:
		slot := CapSlot(req.Args[0])
		info, err := k.InspectCapability(pid, slot)
		if err != nil {
			return Outcome{}, nil, err
		}
		return Outcome{CapInfo: &info}, nil, nil

	default:
		return Outcome{}, nil, ErrInvalidArgument
	}
}

// decodeCapSlots splits a SendWithCaps data blob into its n-slot header and
// the message payload that follows it.
func decodeCapSlots(data []byte, n int) ([]CapSlot, []byte, error) {
	if n < 0 || n > MaxCapsPerMessage {
		return nil, nil, ErrInvalidArgument
	}
	headerLen := n * 4
	if len(data) < headerLen {
		return nil, nil, ErrInvalidArgument
	}
	slots := make([]CapSlot, n)
	for i := 0; i < n; i++ {
		slots[i] = CapSlot(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
	}
	return slots, data[headerLen:], nil
}
