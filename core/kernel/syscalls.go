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

// SyscallNum is a frozen, hex-assigned syscall number. Numbers are fixed
// for every worker runtime; the design's invariants don't depend on the
// specific values, but a concrete implementation has to pick one table and
// never renumber it. 0x06 is left unassigned, matching the gap between
// Random and ConsoleWrite in the representative table this numbering is
// taken from.
type SyscallNum uint32

const (
	SyscallDebug          SyscallNum = 0x01
	SyscallGetTime        SyscallNum = 0x02
	SyscallGetPid         SyscallNum = 0x03
	SyscallYield          SyscallNum = 0x04
	SyscallRandom         SyscallNum = 0x05
	SyscallConsoleWrite   SyscallNum = 0x07
	SyscallCreateEndpoint SyscallNum = 0x08
	SyscallSend           SyscallNum = 0x09
	SyscallReceive        SyscallNum = 0x0A
	SyscallSendWithCaps   SyscallNum = 0x0B
	SyscallListCaps       SyscallNum = 0x0C
	SyscallCapGrant       SyscallNum = 0x0D
	SyscallCapRevoke      SyscallNum = 0x0E
	SyscallCapDelete      SyscallNum = 0x0F
	SyscallCapInspect     SyscallNum = 0x10
	SyscallCapDerive      SyscallNum = 0x11
	SyscallListProcesses  SyscallNum = 0x12
	SyscallExit           SyscallNum = 0x13
	SyscallKill           SyscallNum = 0x14
	SyscallCall           SyscallNum = 0x15
)

func (n SyscallNum) String() string {
	switch n {
	case SyscallDebug:
		return "Debug"
	case SyscallGetTime:
		return "GetTime"
	case SyscallGetPid:
		return "GetPid"
	case SyscallYield:
		return "Yield"
	case SyscallRandom:
		return "Random"
	case SyscallConsoleWrite:
		return "ConsoleWrite"
	case SyscallCreateEndpoint:
		return "CreateEndpoint"
	case SyscallSend:
		return "Send"
	case SyscallReceive:
		return "Receive"
	case SyscallSendWithCaps:
		return "SendWithCaps"
	case SyscallListCaps:
		return "ListCaps"
	case SyscallCapGrant:
		return "CapGrant"
	case SyscallCapRevoke:
		return "CapRevoke"
	case SyscallCapDelete:
		return "CapDelete"
	case SyscallCapInspect:
		return "CapInspect"
	case SyscallCapDerive:
		return "CapDerive"
	case SyscallListProcesses:
		return "ListProcesses"
	case SyscallExit:
		return "Exit"
	case SyscallKill:
		return "Kill"
	case SyscallCall:
		return "Call"
	default:
		return "Unknown"
	}
}
