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

package axiom

// MaxSysLogEntries bounds how many events are kept; the oldest are
// dropped once the log is full, same trim policy as the commit log.
const MaxSysLogEntries = 100000

// SysEventKind distinguishes a Request from its Response.
type SysEventKind uint8

const (
	SysEventRequest SysEventKind = iota
	SysEventResponse
)

// SysEvent is one entry in the request/response audit trail. A Request
// carries the raw syscall arguments; a Response carries the request id it
// answers and the result code the kernel produced.
type SysEvent struct {
	Kind      SysEventKind
	ID        EventID
	Sender    uint64
	Timestamp uint64

	// Request
	SyscallNum uint32
	Args       [4]uint32

	// Response
	RequestID  EventID
	ResultCode int64
}

// SysLog is the append-only request/response log owned by AxiomGateway.
// Nothing outside this package appends to it.
type SysLog struct {
	events []SysEvent
	nextID EventID
}

// NewSysLog returns an empty log.
func NewSysLog() *SysLog {
	return &SysLog{}
}

// LogRequest appends a Request event and returns its freshly minted id.
func (l *SysLog) LogRequest(sender uint64, syscallNum uint32, args [4]uint32, timestamp uint64) EventID {
	l.nextID++
	id := l.nextID
	l.events = append(l.events, SysEvent{
		Kind:       SysEventRequest,
		ID:         id,
		Sender:     sender,
		Timestamp:  timestamp,
		SyscallNum: syscallNum,
		Args:       args,
	})
	l.trimIfNeeded()
	return id
}

// LogResponse appends a Response event answering reqID.
func (l *SysLog) LogResponse(sender uint64, reqID EventID, resultCode int64, timestamp uint64) EventID {
	l.nextID++
	id := l.nextID
	l.events = append(l.events, SysEvent{
		Kind:       SysEventResponse,
		ID:         id,
		Sender:     sender,
		Timestamp:  timestamp,
		RequestID:  reqID,
		ResultCode: resultCode,
	})
	l.trimIfNeeded()
	return id
}

// Events returns every retained event, oldest first.
func (l *SysLog) Events() []SysEvent {
	return l.events
}

// Len returns the number of retained events.
func (l *SysLog) Len() int { return len(l.events) }

func (l *SysLog) trimIfNeeded() {
	if len(l.events) <= MaxSysLogEntries {
		return
	}
	drain := len(l.events) - MaxSysLogEntries
	l.events = l.events[drain:]
}
