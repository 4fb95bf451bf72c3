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

package supervisor

import (
	"encoding/binary"

	"github.com/nullframe/axiomkernel/core/kernel"
)

// encodeResponse packages a kernel.Outcome into the bytes the host copies
// into the mailbox's response payload region (offset 7.. per §6). Exactly
// one branch applies per syscall; an Outcome with none of its pointer
// fields set degenerates to its bare Value word, which covers GetTime,
// GetPid, CreateEndpoint, CapGrant and CapDerive.
func encodeResponse(o kernel.Outcome) []byte {
	switch {
	case o.Message != nil:
		return encodeMessage(o)
	case o.Processes != nil:
		return encodeProcesses(o.Processes)
	case o.Caps != nil:
		return encodeCapList(o.Caps)
	case o.CapInfo != nil:
		return encodeCapInfo(*o.CapInfo)
	case o.Notification != nil:
		return encodeNotification(*o.Notification)
	default:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, o.Value)
		return buf
	}
}

func encodeMessage(o kernel.Outcome) []byte {
	m := o.Message
	buf := make([]byte, 0, 16+len(m.Data)+4+4*len(o.InstalledCapSlots))
	buf = appendU64(buf, uint64(m.From))
	buf = appendU32(buf, m.Tag)
	buf = appendU32(buf, uint32(len(m.Data)))
	buf = append(buf, m.Data...)
	buf = appendU32(buf, uint32(len(o.InstalledCapSlots)))
	for _, slot := range o.InstalledCapSlots {
		buf = appendU32(buf, uint32(slot))
	}
	return buf
}

func encodeProcesses(procs []kernel.Process) []byte {
	buf := appendU32(nil, uint32(len(procs)))
	for _, p := range procs {
		buf = appendU64(buf, uint64(p.PID))
		buf = appendU64(buf, uint64(p.Parent))
		buf = append(buf, byte(p.State))
		buf = appendU16(buf, uint16(len(p.Name)))
		buf = append(buf, p.Name...)
	}
	return buf
}

func encodeCapList(caps []kernel.CapInfo) []byte {
	buf := appendU32(nil, uint32(len(caps)))
	for _, c := range caps {
		buf = appendCapInfo(buf, c)
	}
	return buf
}

func encodeCapInfo(c kernel.CapInfo) []byte {
	return appendCapInfo(nil, c)
}

func appendCapInfo(buf []byte, c kernel.CapInfo) []byte {
	buf = appendU32(buf, uint32(c.Slot))
	buf = appendU64(buf, uint64(c.ID))
	buf = append(buf, byte(c.ObjectType))
	buf = appendU64(buf, c.ObjectID)
	buf = append(buf, c.Permissions.ToByte())
	return buf
}

func encodeNotification(n kernel.RevokeNotification) []byte {
	buf := appendU64(nil, uint64(n.PID))
	buf = appendU32(buf, uint32(n.Slot))
	buf = append(buf, byte(n.ObjectType))
	buf = appendU64(buf, n.ObjectID)
	buf = appendU32(buf, uint32(len(n.Children)))
	for _, c := range n.Children {
		buf = appendU64(buf, uint64(c))
	}
	return buf
}

func appendU16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}
